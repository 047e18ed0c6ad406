package hook

import (
	"context"
	"fmt"

	"github.com/emiliopalmerini/xsvn/internal/domain"
	"github.com/emiliopalmerini/xsvn/internal/ports"
)

// Gate turns a policy authority's answer into an AccessVerdict.
type Gate struct {
	authority ports.PolicyAuthority
}

func NewGate(authority ports.PolicyAuthority) *Gate {
	return &Gate{authority: authority}
}

// Check asks for write access to every item of op. Denial reasons are only
// fetched when access is refused.
func (g *Gate) Check(ctx context.Context, op *domain.CommitOperation) (domain.AccessVerdict, error) {
	allowed, err := g.authority.HasWriteAccess(ctx, op, op.Items)
	if err != nil {
		return domain.AccessVerdict{}, fmt.Errorf("%w: %v", domain.ErrAuthorityUnavailable, err)
	}
	if allowed {
		return domain.AccessVerdict{Allowed: true}, nil
	}

	reasons, err := g.authority.AccessErrors(ctx)
	if err != nil {
		return domain.AccessVerdict{}, fmt.Errorf("%w: retrieving access errors: %v", domain.ErrAuthorityUnavailable, err)
	}
	return domain.AccessVerdict{Allowed: false, Reasons: reasons}, nil
}
