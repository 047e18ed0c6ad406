package turso

import (
	"context"

	"github.com/emiliopalmerini/xsvn/internal/domain"
	"github.com/emiliopalmerini/xsvn/internal/ports"
)

// NoOpDecisionRepository discards decisions when auditing is disabled.
type NoOpDecisionRepository struct{}

func NewNoOpDecisionRepository() *NoOpDecisionRepository {
	return &NoOpDecisionRepository{}
}

func (r *NoOpDecisionRepository) Create(ctx context.Context, d *domain.Decision) error {
	return nil
}

func (r *NoOpDecisionRepository) ListRecent(ctx context.Context, filter ports.DecisionFilter) ([]*domain.Decision, error) {
	return nil, nil
}
