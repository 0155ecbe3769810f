// seed inserts development sample data and prints bearer tokens for the seeded users.
// Idempotent: skips inserts if the dev owner already belongs to an organization.
// Requires DATABASE_URL and JWT_PRIVATE_KEY.
package main

import (
	"context"
	"fmt"
	"log"

	"multi-tenant-crm/backend/internal/app"
	contactdomain "multi-tenant-crm/backend/internal/contact/domain"
	contacthandler "multi-tenant-crm/backend/internal/contact/handler"
	"multi-tenant-crm/backend/internal/config"
	"multi-tenant-crm/backend/internal/db"
	dealdomain "multi-tenant-crm/backend/internal/deal/domain"
	dealhandler "multi-tenant-crm/backend/internal/deal/handler"
	"multi-tenant-crm/backend/internal/mediator"
	memberdomain "multi-tenant-crm/backend/internal/membership/domain"
	memberhandler "multi-tenant-crm/backend/internal/membership/handler"
	orgdomain "multi-tenant-crm/backend/internal/organization/domain"
	orghandler "multi-tenant-crm/backend/internal/organization/handler"
	"multi-tenant-crm/backend/internal/platform/rbac"
	"multi-tenant-crm/backend/internal/security"
	taskdomain "multi-tenant-crm/backend/internal/task/domain"
	taskhandler "multi-tenant-crm/backend/internal/task/handler"
)

const (
	devOwnerID   = "00000000-0000-4000-8000-000000000001"
	devManagerID = "00000000-0000-4000-8000-000000000002"
	devMemberID  = "00000000-0000-4000-8000-000000000003"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if !cfg.DatabaseEnabled() {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}
	tokens, err := security.LoadTokenProvider(cfg.JWTPrivateKey, cfg.JWTPublicKey, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL())
	if err != nil {
		log.Fatalf("tokens: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	a, err := app.New(app.Options{Pool: pool})
	if err != nil {
		log.Fatalf("app: %v", err)
	}

	orgID, err := seed(ctx, a.Mediator)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}

	fmt.Printf("Organization: %s (header X-Organization-ID)\n", orgID)
	for _, u := range []struct{ role, id string }{
		{"owner", devOwnerID},
		{"manager", devManagerID},
		{"member", devMemberID},
	} {
		tok, exp, err := tokens.IssueAccess(u.id)
		if err != nil {
			log.Fatalf("issue %s token: %v", u.role, err)
		}
		fmt.Printf("%s %s token (expires %s):\n%s\n", u.role, u.id, exp.Format("15:04:05 MST"), tok)
	}
}

// seed creates the dev organization with one user per role, a contact, a deal and a task. It
// returns the existing organization when the owner already has one.
func seed(ctx context.Context, m *mediator.Mediator) (string, error) {
	existing, err := mediator.Ask[*orghandler.UserOrganizations](ctx, m, orghandler.GetUserOrganizations{UserID: devOwnerID})
	if err != nil {
		return "", err
	}
	if len(existing.Members) > 0 {
		log.Println("Seed already applied (dev owner has an organization). Skipping.")
		return existing.Members[0].OrgID, nil
	}

	results, err := m.HandleCommand(ctx, orghandler.NewCreateOrganization("Acme Dev", devOwnerID))
	if err != nil {
		return "", fmt.Errorf("create organization: %w", err)
	}
	org := results[0].(*orgdomain.Organization)

	for _, u := range []struct {
		id   string
		role memberdomain.Role
	}{
		{devManagerID, memberdomain.RoleManager},
		{devMemberID, memberdomain.RoleMember},
	} {
		if _, err := mediator.SendOne[*memberdomain.Membership](ctx, m, memberhandler.AddMember{
			OrganizationID: org.ID,
			UserID:         u.id,
			Role:           string(u.role),
		}); err != nil {
			return "", fmt.Errorf("add %s: %w", u.role, err)
		}
	}

	member := rbac.Caller{OrganizationID: org.ID, UserID: devMemberID, Role: memberdomain.RoleMember}
	email := "jane.roe@example.com"
	contact, err := mediator.SendOne[*contactdomain.Contact](ctx, m, contacthandler.CreateContact{
		Caller: member,
		Name:   "Jane Roe",
		Email:  &email,
	})
	if err != nil {
		return "", fmt.Errorf("create contact: %w", err)
	}
	deal, err := mediator.SendOne[*dealdomain.Deal](ctx, m, dealhandler.CreateDeal{
		Caller:    member,
		ContactID: contact.ID,
		Title:     "Website redesign",
		Amount:    1500000,
		Currency:  "USD",
	})
	if err != nil {
		return "", fmt.Errorf("create deal: %w", err)
	}
	if _, err := mediator.SendOne[*taskdomain.Task](ctx, m, taskhandler.CreateTask{
		Caller: member,
		DealID: deal.ID,
		Title:  "Send proposal",
	}); err != nil {
		return "", fmt.Errorf("create task: %w", err)
	}
	log.Println("Seed completed successfully.")
	return org.ID, nil
}
