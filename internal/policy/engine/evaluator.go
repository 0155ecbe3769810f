package engine

import (
	"context"

	dealdomain "multi-tenant-crm/backend/internal/deal/domain"
	memberdomain "multi-tenant-crm/backend/internal/membership/domain"
)

// Evaluator decides whether a role may move a deal between two pipeline stages.
type Evaluator interface {
	// AllowStageTransition reports whether role may move a deal from stage from to stage to.
	// Forward and level moves are always allowed; only rollbacks consult the role set.
	AllowStageTransition(ctx context.Context, role memberdomain.Role, from, to dealdomain.Stage) (bool, error)
}
