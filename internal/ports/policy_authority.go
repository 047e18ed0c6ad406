package ports

import (
	"context"

	"github.com/emiliopalmerini/xsvn/internal/domain"
)

// PolicyAuthority decides whether an operation may write its items.
type PolicyAuthority interface {
	HasWriteAccess(ctx context.Context, op *domain.CommitOperation, items map[string]domain.OperationItem) (bool, error)
	// AccessErrors returns the reasons for the most recent denial. It is only
	// valid immediately after HasWriteAccess returned false.
	AccessErrors(ctx context.Context) ([]string, error)
}
