package ports

import (
	"context"

	"github.com/emiliopalmerini/xsvn/internal/domain"
)

// TransactionReader inspects a pending commit transaction.
type TransactionReader interface {
	// Author returns the committing username, trimmed. An empty string means
	// the backend succeeded but reported no author.
	Author(ctx context.Context, tx string) (string, error)
	// Changes returns the paths touched by the transaction.
	Changes(ctx context.Context, tx string) ([]domain.ChangeEntry, error)
}
