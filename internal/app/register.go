package app

import (
	"context"

	activitydomain "multi-tenant-crm/backend/internal/activity/domain"
	activityhandler "multi-tenant-crm/backend/internal/activity/handler"
	contactdomain "multi-tenant-crm/backend/internal/contact/domain"
	contacthandler "multi-tenant-crm/backend/internal/contact/handler"
	dealdomain "multi-tenant-crm/backend/internal/deal/domain"
	dealhandler "multi-tenant-crm/backend/internal/deal/handler"
	dealservice "multi-tenant-crm/backend/internal/deal/service"
	"multi-tenant-crm/backend/internal/mediator"
	memberdomain "multi-tenant-crm/backend/internal/membership/domain"
	memberhandler "multi-tenant-crm/backend/internal/membership/handler"
	orgdomain "multi-tenant-crm/backend/internal/organization/domain"
	orghandler "multi-tenant-crm/backend/internal/organization/handler"
	taskdomain "multi-tenant-crm/backend/internal/task/domain"
	taskhandler "multi-tenant-crm/backend/internal/task/handler"
)

// CreateOrganization has two handlers: the organization is created first, then the creator
// becomes its owner. Results are *orgdomain.Organization and *memberdomain.Membership (nil without
// a creator).
func registerOrganizations(reg *mediator.Registry, orgs *orghandler.Handlers, members *memberhandler.Handlers) {
	mediator.RegisterCommand[orghandler.CreateOrganization, any](reg,
		mediator.CommandHandlerFunc[orghandler.CreateOrganization, any](anyResult(orgs.CreateOrganization)),
		mediator.CommandHandlerFunc[orghandler.CreateOrganization, any](anyResult(members.AddCreatorAsOwner)),
	)
	mediator.RegisterCommand[memberhandler.AddMember, *memberdomain.Membership](reg,
		mediator.CommandHandlerFunc[memberhandler.AddMember, *memberdomain.Membership](members.AddMember))

	mediator.RegisterQuery[orghandler.GetOrganizationByID, *orgdomain.Organization](reg,
		mediator.QueryHandlerFunc[orghandler.GetOrganizationByID, *orgdomain.Organization](orgs.GetOrganizationByID))
	mediator.RegisterQuery[orghandler.GetUserOrganizations, *orghandler.UserOrganizations](reg,
		mediator.QueryHandlerFunc[orghandler.GetUserOrganizations, *orghandler.UserOrganizations](orgs.GetUserOrganizations))
	mediator.RegisterQuery[memberhandler.GetMember, *memberdomain.Membership](reg,
		mediator.QueryHandlerFunc[memberhandler.GetMember, *memberdomain.Membership](members.GetMember))
}

func registerContacts(reg *mediator.Registry, h *contacthandler.Handlers) {
	mediator.RegisterCommand[contacthandler.CreateContact, *contactdomain.Contact](reg,
		mediator.CommandHandlerFunc[contacthandler.CreateContact, *contactdomain.Contact](h.CreateContact))
	mediator.RegisterCommand[contacthandler.DeleteContact, struct{}](reg,
		mediator.CommandHandlerFunc[contacthandler.DeleteContact, struct{}](h.DeleteContact))

	mediator.RegisterQuery[contacthandler.GetContactByID, *contactdomain.Contact](reg,
		mediator.QueryHandlerFunc[contacthandler.GetContactByID, *contactdomain.Contact](h.GetContactByID))
	mediator.RegisterQuery[contacthandler.GetContacts, *contacthandler.ContactPage](reg,
		mediator.QueryHandlerFunc[contacthandler.GetContacts, *contacthandler.ContactPage](h.GetContacts))
}

func registerDeals(reg *mediator.Registry, h *dealhandler.Handlers) {
	mediator.RegisterCommand[dealhandler.CreateDeal, *dealdomain.Deal](reg,
		mediator.CommandHandlerFunc[dealhandler.CreateDeal, *dealdomain.Deal](h.CreateDeal))
	mediator.RegisterCommand[dealhandler.UpdateDealStatus, *dealhandler.DealStatusResult](reg,
		mediator.CommandHandlerFunc[dealhandler.UpdateDealStatus, *dealhandler.DealStatusResult](h.UpdateDealStatus))
	mediator.RegisterCommand[dealhandler.UpdateDealStage, *dealhandler.DealStageResult](reg,
		mediator.CommandHandlerFunc[dealhandler.UpdateDealStage, *dealhandler.DealStageResult](h.UpdateDealStage))
	mediator.RegisterCommand[dealhandler.UpdateDeal, *dealdomain.Deal](reg,
		mediator.CommandHandlerFunc[dealhandler.UpdateDeal, *dealdomain.Deal](h.UpdateDeal))

	mediator.RegisterQuery[dealhandler.GetDealByID, *dealdomain.Deal](reg,
		mediator.QueryHandlerFunc[dealhandler.GetDealByID, *dealdomain.Deal](h.GetDealByID))
	mediator.RegisterQuery[dealhandler.GetDeals, *dealhandler.DealPage](reg,
		mediator.QueryHandlerFunc[dealhandler.GetDeals, *dealhandler.DealPage](h.GetDeals))
	mediator.RegisterQuery[dealhandler.GetDealSummary, *dealservice.DealSummary](reg,
		mediator.QueryHandlerFunc[dealhandler.GetDealSummary, *dealservice.DealSummary](h.GetDealSummary))
	mediator.RegisterQuery[dealhandler.GetDealFunnel, *dealservice.DealFunnel](reg,
		mediator.QueryHandlerFunc[dealhandler.GetDealFunnel, *dealservice.DealFunnel](h.GetDealFunnel))
}

func registerTasks(reg *mediator.Registry, h *taskhandler.Handlers) {
	mediator.RegisterCommand[taskhandler.CreateTask, *taskdomain.Task](reg,
		mediator.CommandHandlerFunc[taskhandler.CreateTask, *taskdomain.Task](h.CreateTask))
	mediator.RegisterCommand[taskhandler.UpdateTask, *taskdomain.Task](reg,
		mediator.CommandHandlerFunc[taskhandler.UpdateTask, *taskdomain.Task](h.UpdateTask))

	mediator.RegisterQuery[taskhandler.GetTaskByID, *taskdomain.Task](reg,
		mediator.QueryHandlerFunc[taskhandler.GetTaskByID, *taskdomain.Task](h.GetTaskByID))
	mediator.RegisterQuery[taskhandler.GetTasks, *taskhandler.TaskPage](reg,
		mediator.QueryHandlerFunc[taskhandler.GetTasks, *taskhandler.TaskPage](h.GetTasks))
}

func registerActivities(reg *mediator.Registry, h *activityhandler.Handlers) {
	mediator.RegisterCommand[activityhandler.CreateActivity, *activitydomain.Activity](reg,
		mediator.CommandHandlerFunc[activityhandler.CreateActivity, *activitydomain.Activity](h.CreateActivity))
	mediator.RegisterCommand[activityhandler.CreateCommentActivity, *activitydomain.Activity](reg,
		mediator.CommandHandlerFunc[activityhandler.CreateCommentActivity, *activitydomain.Activity](h.CreateCommentActivity))

	mediator.RegisterQuery[activityhandler.GetActivitiesByDealID, []*activitydomain.Activity](reg,
		mediator.QueryHandlerFunc[activityhandler.GetActivitiesByDealID, []*activitydomain.Activity](h.GetActivitiesByDealID))
}

// anyResult adapts a typed handler for registration under a multi-handler command whose handlers
// return different result types.
func anyResult[C, R any](fn func(ctx context.Context, cmd C) (R, error)) func(ctx context.Context, cmd C) (any, error) {
	return func(ctx context.Context, cmd C) (any, error) {
		return fn(ctx, cmd)
	}
}
