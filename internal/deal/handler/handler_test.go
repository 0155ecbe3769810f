package handler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	activitydomain "multi-tenant-crm/backend/internal/activity/domain"
	activityrepo "multi-tenant-crm/backend/internal/activity/repository"
	activityservice "multi-tenant-crm/backend/internal/activity/service"
	contactrepo "multi-tenant-crm/backend/internal/contact/repository"
	contactservice "multi-tenant-crm/backend/internal/contact/service"
	"multi-tenant-crm/backend/internal/deal/domain"
	"multi-tenant-crm/backend/internal/deal/repository"
	"multi-tenant-crm/backend/internal/deal/service"
	memberdomain "multi-tenant-crm/backend/internal/membership/domain"
	"multi-tenant-crm/backend/internal/platform/errs"
	"multi-tenant-crm/backend/internal/platform/rbac"
)

type fixture struct {
	h          *Handlers
	contacts   *contactservice.ContactService
	activities *activityservice.ActivityService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	deals := repository.NewMemoryRepository()
	contacts := contactservice.NewContactService(contactrepo.NewMemoryRepository(), deals, nil)
	activities := activityservice.NewActivityService(activityrepo.NewMemoryRepository(), nil, nil)
	h := NewHandlers(service.NewDealService(deals, nil), contacts, activities, rbac.NewPolicy(nil))
	return &fixture{h: h, contacts: contacts, activities: activities}
}

func member(orgID, userID string, role memberdomain.Role) rbac.Caller {
	return rbac.Caller{OrganizationID: orgID, UserID: userID, Role: role}
}

func (f *fixture) deal(t *testing.T, c rbac.Caller, amount int64) *domain.Deal {
	t.Helper()
	ctx := context.Background()
	contact, err := f.contacts.Create(ctx, contactservice.CreateParams{
		OrganizationID: c.OrganizationID,
		OwnerUserID:    c.UserID,
		Name:           "Jane Doe",
	})
	require.NoError(t, err)
	d, err := f.h.CreateDeal(ctx, CreateDeal{
		Caller:    c,
		ContactID: contact.ID,
		Title:     "Website redesign",
		Amount:    amount,
		Currency:  "USD",
	})
	require.NoError(t, err)
	return d
}

func (f *fixture) activityLog(t *testing.T, dealID string) []*activitydomain.Activity {
	t.Helper()
	list, err := f.activities.ListByDeal(context.Background(), dealID)
	require.NoError(t, err)
	return list
}

func TestHandlers_CreateDeal_DefaultsOwnerToCaller(t *testing.T) {
	f := newFixture(t)
	u := member("acme", "u1", memberdomain.RoleMember)

	d := f.deal(t, u, 1000)
	assert.Equal(t, "acme", d.OrgID)
	assert.Equal(t, "u1", d.OwnerUserID)
	assert.Equal(t, domain.StatusNew, d.Status)
	assert.Equal(t, domain.StageQualification, d.Stage)
}

func TestHandlers_CreateDeal_ContactFromOtherOrganization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	contact, err := f.contacts.Create(ctx, contactservice.CreateParams{OrganizationID: "globex", OwnerUserID: "u2", Name: "Hank"})
	require.NoError(t, err)

	_, err = f.h.CreateDeal(ctx, CreateDeal{
		Caller:    member("acme", "u1", memberdomain.RoleAdmin),
		ContactID: contact.ID,
		Title:     "Cross tenant",
		Amount:    10,
		Currency:  "EUR",
	})
	var mismatch *domain.ContactOrganizationMismatchError
	require.ErrorAs(t, err, &mismatch)
}

func TestHandlers_CreateDeal_MemberCannotAssignOthers(t *testing.T) {
	f := newFixture(t)
	_, err := f.h.CreateDeal(context.Background(), CreateDeal{
		Caller:      member("acme", "u1", memberdomain.RoleMember),
		OwnerUserID: "u2",
		Title:       "Not mine",
		Amount:      10,
		Currency:    "USD",
	})
	assert.Equal(t, errs.AccessDenied, errs.KindOf(err))
}

func TestHandlers_UpdateDealStatus_WonRecordsActivity(t *testing.T) {
	f := newFixture(t)
	u := member("acme", "u1", memberdomain.RoleMember)
	d := f.deal(t, u, 1000)

	res, err := f.h.UpdateDealStatus(context.Background(), UpdateDealStatus{Caller: u, DealID: d.ID, NewStatus: "won"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWon, res.Deal.Status)
	require.NotNil(t, res.PreviousStatus)
	assert.Equal(t, domain.StatusNew, *res.PreviousStatus)

	log := f.activityLog(t, d.ID)
	require.Len(t, log, 1)
	assert.Equal(t, activitydomain.TypeStatusChanged, log[0].Type)
	assert.Equal(t, map[string]any{"old_status": "new", "new_status": "won"}, log[0].Payload)
	assert.Nil(t, log[0].AuthorUserID)
}

func TestHandlers_UpdateDealStatus_ZeroAmountCannotClose(t *testing.T) {
	f := newFixture(t)
	u := member("acme", "u1", memberdomain.RoleMember)
	d := f.deal(t, u, 0)
	ctx := context.Background()

	_, err := f.h.UpdateDealStatus(ctx, UpdateDealStatus{Caller: u, DealID: d.ID, NewStatus: "won"})
	var cannot *domain.CannotCloseWithZeroAmountError
	require.ErrorAs(t, err, &cannot)

	got, err := f.h.GetDealByID(ctx, GetDealByID{Caller: u, DealID: d.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNew, got.Status)
	assert.Empty(t, f.activityLog(t, d.ID))
}

func TestHandlers_UpdateDealStatus_UnchangedIsNoop(t *testing.T) {
	f := newFixture(t)
	u := member("acme", "u1", memberdomain.RoleMember)
	d := f.deal(t, u, 1000)

	res, err := f.h.UpdateDealStatus(context.Background(), UpdateDealStatus{Caller: u, DealID: d.ID, NewStatus: "new"})
	require.NoError(t, err)
	assert.Nil(t, res.PreviousStatus)
	assert.Empty(t, f.activityLog(t, d.ID))
}

func TestHandlers_UpdateDealStage_Rollback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := member("acme", "u1", memberdomain.RoleMember)
	admin := member("acme", "a1", memberdomain.RoleAdmin)
	d := f.deal(t, u, 1000)

	_, err := f.h.UpdateDealStage(ctx, UpdateDealStage{Caller: u, DealID: d.ID, NewStage: "negotiation"})
	require.NoError(t, err)

	_, err = f.h.UpdateDealStage(ctx, UpdateDealStage{Caller: u, DealID: d.ID, NewStage: "proposal"})
	var rollback *domain.StageRollbackNotAllowedError
	require.ErrorAs(t, err, &rollback)

	res, err := f.h.UpdateDealStage(ctx, UpdateDealStage{Caller: admin, DealID: d.ID, NewStage: "proposal"})
	require.NoError(t, err)
	assert.Equal(t, domain.StageProposal, res.Deal.Stage)
	require.NotNil(t, res.PreviousStage)
	assert.Equal(t, domain.StageNegotiation, *res.PreviousStage)

	log := f.activityLog(t, d.ID)
	require.Len(t, log, 2)
	assert.Equal(t, map[string]any{"old_stage": "qualification", "new_stage": "negotiation"}, log[0].Payload)
	assert.Equal(t, map[string]any{"old_stage": "negotiation", "new_stage": "proposal"}, log[1].Payload)
	assert.Nil(t, log[1].AuthorUserID)
}

func TestHandlers_UpdateDeal_ValidatesBeforeWriting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := member("acme", "u1", memberdomain.RoleMember)
	d := f.deal(t, u, 1000)

	won, bogus := "won", "bogus"
	_, err := f.h.UpdateDeal(ctx, UpdateDeal{Caller: u, DealID: d.ID, NewStatus: &won, NewStage: &bogus})
	assert.Equal(t, errs.Validation, errs.KindOf(err))

	got, err := f.h.GetDealByID(ctx, GetDealByID{Caller: u, DealID: d.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNew, got.Status)

	closed := "closed"
	updated, err := f.h.UpdateDeal(ctx, UpdateDeal{Caller: u, DealID: d.ID, NewStatus: &won, NewStage: &closed})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWon, updated.Status)
	assert.Equal(t, domain.StageClosed, updated.Stage)
	assert.Len(t, f.activityLog(t, d.ID), 2)
}

func TestHandlers_GetDealByID_Isolation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := member("acme", "u1", memberdomain.RoleMember)
	d := f.deal(t, u, 1000)

	tests := []struct {
		name   string
		caller rbac.Caller
		fails  bool
		kind   errs.Kind
	}{
		{"other organization", member("globex", "u1", memberdomain.RoleOwner), true, errs.NotFound},
		{"other member", member("acme", "u2", memberdomain.RoleMember), true, errs.AccessDenied},
		{"manager", member("acme", "m1", memberdomain.RoleManager), false, errs.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.h.GetDealByID(ctx, GetDealByID{Caller: tt.caller, DealID: d.ID})
			if !tt.fails {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.kind, errs.KindOf(err))
		})
	}
}

func TestHandlers_GetDeals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1 := member("acme", "u1", memberdomain.RoleMember)
	u2 := member("acme", "u2", memberdomain.RoleMember)
	admin := member("acme", "a1", memberdomain.RoleAdmin)
	f.deal(t, u1, 100)
	f.deal(t, u1, 200)
	f.deal(t, u2, 300)
	f.deal(t, member("globex", "g1", memberdomain.RoleOwner), 400)

	page, err := f.h.GetDeals(ctx, GetDeals{Caller: u1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)

	page, err = f.h.GetDeals(ctx, GetDeals{Caller: admin})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)

	page, err = f.h.GetDeals(ctx, GetDeals{Caller: admin, OwnerID: "u2"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)

	_, err = f.h.GetDeals(ctx, GetDeals{Caller: u1, OwnerID: "u2"})
	assert.Equal(t, errs.AccessDenied, errs.KindOf(err))

	floor := int64(150)
	page, err = f.h.GetDeals(ctx, GetDeals{Caller: admin, MinAmount: &floor, OrderBy: "amount", Ascending: true})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.EqualValues(t, 200, page.Items[0].Amount)
	assert.EqualValues(t, 300, page.Items[1].Amount)
}

func TestHandlers_GetDeals_StatusTokens(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := member("acme", "a1", memberdomain.RoleAdmin)
	f.deal(t, admin, 100)

	page, err := f.h.GetDeals(ctx, GetDeals{Caller: admin, Statuses: []string{"new", "bogus"}})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)

	_, err = f.h.GetDeals(ctx, GetDeals{Caller: admin, Statuses: []string{"bogus"}})
	var invalid *domain.InvalidStatusError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "bogus", invalid.Status)
}

func TestHandlers_GetDealSummary_ScopedForMembers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1 := member("acme", "u1", memberdomain.RoleMember)
	u2 := member("acme", "u2", memberdomain.RoleMember)
	d := f.deal(t, u1, 500)
	f.deal(t, u2, 700)
	_, err := f.h.UpdateDealStatus(ctx, UpdateDealStatus{Caller: u1, DealID: d.ID, NewStatus: "won"})
	require.NoError(t, err)

	sum, err := f.h.GetDealSummary(ctx, GetDealSummary{Caller: u1})
	require.NoError(t, err)
	assert.EqualValues(t, 1, sum.Total)
	assert.EqualValues(t, 1, sum.Won)
	assert.EqualValues(t, 500, sum.TotalWonAmount)

	sum, err = f.h.GetDealSummary(ctx, GetDealSummary{Caller: member("acme", "o1", memberdomain.RoleOwner)})
	require.NoError(t, err)
	assert.EqualValues(t, 2, sum.Total)
	assert.EqualValues(t, 1, sum.New)

	funnel, err := f.h.GetDealFunnel(ctx, GetDealFunnel{Caller: u2})
	require.NoError(t, err)
	assert.EqualValues(t, 1, funnel.Qualification)
}
