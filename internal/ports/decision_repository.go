package ports

import (
	"context"

	"github.com/emiliopalmerini/xsvn/internal/domain"
)

type DecisionRepository interface {
	Create(ctx context.Context, d *domain.Decision) error
	ListRecent(ctx context.Context, filter DecisionFilter) ([]*domain.Decision, error)
}

type DecisionFilter struct {
	RepositoryID string
	Username     string
	Limit        int64
}
