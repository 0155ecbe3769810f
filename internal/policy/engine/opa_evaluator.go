package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"

	dealdomain "multi-tenant-crm/backend/internal/deal/domain"
	memberdomain "multi-tenant-crm/backend/internal/membership/domain"
)

const stageQuery = "data.crm.deal_stage.allow"

// Stage rollback policy. A move to a stage with a lower order is a rollback and needs one of the
// allowed roles.
const stageRegoPolicy = `package crm.deal_stage

default allow := false

rollback if {
	input.new_stage_order < input.current_stage_order
}

allow if {
	not rollback
}

allow if {
	rollback
	input.allowed_roles[_] == input.role
}
`

// DefaultRollbackRoles are the roles allowed to move a deal backwards when none are configured.
var DefaultRollbackRoles = []memberdomain.Role{memberdomain.RoleOwner, memberdomain.RoleAdmin}

// OPAEvaluator evaluates the stage rollback policy with OPA Rego.
type OPAEvaluator struct {
	compiler *ast.Compiler
	roles    []memberdomain.Role
}

// NewOPAEvaluator compiles the stage policy for the given rollback roles. An empty role list uses
// DefaultRollbackRoles. member can never be granted rollback.
func NewOPAEvaluator(roles []memberdomain.Role) (*OPAEvaluator, error) {
	if len(roles) == 0 {
		roles = DefaultRollbackRoles
	}
	for _, r := range roles {
		if !r.Valid() {
			return nil, &memberdomain.InvalidRoleError{Role: string(r)}
		}
		if r == memberdomain.RoleMember {
			return nil, fmt.Errorf("policy: role %q may not roll back deal stages", r)
		}
	}
	compiler, err := ast.CompileModules(map[string]string{"deal_stage.rego": stageRegoPolicy})
	if err != nil {
		return nil, fmt.Errorf("compile stage policy: %w", err)
	}
	return &OPAEvaluator{compiler: compiler, roles: append([]memberdomain.Role(nil), roles...)}, nil
}

// Roles returns the roles allowed to roll back deal stages.
func (e *OPAEvaluator) Roles() []memberdomain.Role {
	return append([]memberdomain.Role(nil), e.roles...)
}

// AllowStageTransition implements Evaluator.
func (e *OPAEvaluator) AllowStageTransition(ctx context.Context, role memberdomain.Role, from, to dealdomain.Stage) (bool, error) {
	return e.eval(ctx, e.buildInput(role, from, to))
}

// HealthCheck verifies that the in-process OPA engine evaluates the compiled policy. Returns nil on
// success.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	allowed, err := e.eval(ctx, e.buildInput(memberdomain.RoleMember, dealdomain.StageQualification, dealdomain.StageProposal))
	if err != nil {
		return err
	}
	if !allowed {
		return fmt.Errorf("stage policy rejected a forward move")
	}
	return nil
}

func (e *OPAEvaluator) buildInput(role memberdomain.Role, from, to dealdomain.Stage) map[string]interface{} {
	allowed := make([]interface{}, len(e.roles))
	for i, r := range e.roles {
		allowed[i] = string(r)
	}
	return map[string]interface{}{
		"role":                strings.ToLower(string(role)),
		"current_stage":       string(from),
		"new_stage":           string(to),
		"current_stage_order": from.Order(),
		"new_stage_order":     to.Order(),
		"allowed_roles":       allowed,
	}
}

func (e *OPAEvaluator) eval(ctx context.Context, input map[string]interface{}) (bool, error) {
	q := rego.New(
		rego.Query(stageQuery),
		rego.Compiler(e.compiler),
		rego.Input(input),
	)
	rs, err := q.Eval(ctx)
	if err != nil {
		return false, fmt.Errorf("eval stage policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return false, fmt.Errorf("stage policy query returned no result")
	}
	allowed, ok := rs[0].Expressions[0].Value.(bool)
	if !ok {
		return false, fmt.Errorf("stage policy returned %T, want bool", rs[0].Expressions[0].Value)
	}
	return allowed, nil
}
