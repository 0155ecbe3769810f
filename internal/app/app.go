// Package app is the composition root: it builds repositories, services and handlers and registers
// every command and query with the mediator.
package app

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	activityhandler "multi-tenant-crm/backend/internal/activity/handler"
	activityrepo "multi-tenant-crm/backend/internal/activity/repository"
	activityservice "multi-tenant-crm/backend/internal/activity/service"
	contacthandler "multi-tenant-crm/backend/internal/contact/handler"
	contactrepo "multi-tenant-crm/backend/internal/contact/repository"
	contactservice "multi-tenant-crm/backend/internal/contact/service"
	dealhandler "multi-tenant-crm/backend/internal/deal/handler"
	dealrepo "multi-tenant-crm/backend/internal/deal/repository"
	dealservice "multi-tenant-crm/backend/internal/deal/service"
	"multi-tenant-crm/backend/internal/logger"
	"multi-tenant-crm/backend/internal/mediator"
	memberdomain "multi-tenant-crm/backend/internal/membership/domain"
	memberhandler "multi-tenant-crm/backend/internal/membership/handler"
	memberrepo "multi-tenant-crm/backend/internal/membership/repository"
	memberservice "multi-tenant-crm/backend/internal/membership/service"
	orghandler "multi-tenant-crm/backend/internal/organization/handler"
	orgrepo "multi-tenant-crm/backend/internal/organization/repository"
	orgservice "multi-tenant-crm/backend/internal/organization/service"
	"multi-tenant-crm/backend/internal/platform/rbac"
	"multi-tenant-crm/backend/internal/policy/engine"
	taskhandler "multi-tenant-crm/backend/internal/task/handler"
	taskrepo "multi-tenant-crm/backend/internal/task/repository"
	taskservice "multi-tenant-crm/backend/internal/task/service"
	otelsetup "multi-tenant-crm/backend/internal/telemetry/otel"
)

// Options configures New. A nil Pool selects the in-memory repositories. Empty RollbackRoles uses
// engine.DefaultRollbackRoles. A nil LoggerProvider disables activity mirroring.
type Options struct {
	Pool           *pgxpool.Pool
	RollbackRoles  []memberdomain.Role
	Logger         *zap.Logger
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
	LoggerProvider *sdklog.LoggerProvider
	// Clock overrides the time source of every service; nil uses the current UTC time.
	Clock func() time.Time
}

// App is the assembled application.
type App struct {
	Mediator *mediator.Mediator
	Policy   *engine.OPAEvaluator
	// Access is the authorization policy shared by the handlers.
	Access *rbac.Policy
}

type repositories struct {
	orgs       orgservice.OrganizationRepo
	members    memberservice.MembershipRepo
	contacts   contactservice.ContactRepo
	deals      dealrepo.Repository
	tasks      taskservice.TaskRepo
	activities activityservice.ActivityRepo
}

func newRepositories(pool *pgxpool.Pool) repositories {
	if pool != nil {
		return repositories{
			orgs:       orgrepo.NewPostgresRepository(pool),
			members:    memberrepo.NewPostgresRepository(pool),
			contacts:   contactrepo.NewPostgresRepository(pool),
			deals:      dealrepo.NewPostgresRepository(pool),
			tasks:      taskrepo.NewPostgresRepository(pool),
			activities: activityrepo.NewPostgresRepository(pool),
		}
	}
	deals := dealrepo.NewMemoryRepository()
	return repositories{
		orgs:       orgrepo.NewMemoryRepository(),
		members:    memberrepo.NewMemoryRepository(),
		contacts:   contactrepo.NewMemoryRepository(),
		deals:      deals,
		tasks:      taskrepo.NewMemoryRepository(deals),
		activities: activityrepo.NewMemoryRepository(),
	}
}

// New wires the application.
func New(opts Options) (*App, error) {
	log := logger.OrNop(opts.Logger)
	roles := opts.RollbackRoles
	if len(roles) == 0 {
		roles = engine.DefaultRollbackRoles
	}
	evaluator, err := engine.NewOPAEvaluator(roles)
	if err != nil {
		return nil, err
	}
	policy := rbac.NewPolicy(evaluator)

	var mirror activityservice.Mirror
	if opts.LoggerProvider != nil {
		mirror = otelsetup.NewActivityMirror(opts.LoggerProvider, log)
	}

	repos := newRepositories(opts.Pool)
	orgs := orgservice.NewOrganizationService(repos.orgs, opts.Clock)
	members := memberservice.NewMemberService(repos.members, opts.Clock)
	deals := dealservice.NewDealService(repos.deals, opts.Clock)
	contacts := contactservice.NewContactService(repos.contacts, repos.deals, opts.Clock)
	tasks := taskservice.NewTaskService(repos.tasks, repos.deals, opts.Clock)
	activities := activityservice.NewActivityService(repos.activities, mirror, opts.Clock)

	reg := mediator.NewRegistry()
	registerOrganizations(reg, orghandler.NewHandlers(orgs, members), memberhandler.NewHandlers(members, orgs))
	registerContacts(reg, contacthandler.NewHandlers(contacts, policy))
	registerDeals(reg, dealhandler.NewHandlers(deals, contacts, activities, policy))
	registerTasks(reg, taskhandler.NewHandlers(tasks, repos.deals, activities, policy))
	registerActivities(reg, activityhandler.NewHandlers(activities, deals, policy))

	m := reg.Build(
		mediator.WithLogger(log),
		mediator.WithTracerProvider(opts.TracerProvider),
		mediator.WithMeterProvider(opts.MeterProvider),
	)
	return &App{Mediator: m, Policy: evaluator, Access: policy}, nil
}
