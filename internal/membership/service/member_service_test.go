package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"multi-tenant-crm/backend/internal/membership/domain"
	"multi-tenant-crm/backend/internal/membership/repository"
	"multi-tenant-crm/backend/internal/platform/errs"
)

func TestMemberService_Add(t *testing.T) {
	svc := NewMemberService(repository.NewMemoryRepository(), nil)
	ctx := context.Background()

	m, err := svc.Add(ctx, "org-1", "user-1", " Manager ")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleManager, m.Role)

	got, err := svc.Get(ctx, "org-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)
}

func TestMemberService_Add_Errors(t *testing.T) {
	svc := NewMemberService(repository.NewMemoryRepository(), nil)
	ctx := context.Background()
	_, err := svc.Add(ctx, "org-1", "user-1", "member")
	require.NoError(t, err)

	tests := []struct {
		name     string
		orgID    string
		userID   string
		role     string
		wantKind errs.Kind
	}{
		{"duplicate pair", "org-1", "user-1", "admin", errs.Conflict},
		{"empty role", "org-1", "user-2", "", errs.Validation},
		{"unknown role", "org-1", "user-2", "superuser", errs.Validation},
		{"missing user", "org-1", "", "member", errs.Validation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Add(ctx, tt.orgID, tt.userID, tt.role)
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, errs.KindOf(err))
		})
	}
}

func TestMemberService_Get_NotMember(t *testing.T) {
	svc := NewMemberService(repository.NewMemoryRepository(), nil)
	_, err := svc.Get(context.Background(), "org-1", "user-9")
	var nm *domain.NotMemberError
	require.True(t, errors.As(err, &nm), "err = %v, want *NotMemberError", err)
	assert.Equal(t, "user-9", nm.UserID)
	assert.Equal(t, "org-1", nm.OrganizationID)
}

func TestMemberService_ListByUser(t *testing.T) {
	svc := NewMemberService(repository.NewMemoryRepository(), nil)
	ctx := context.Background()
	_, err := svc.Add(ctx, "org-1", "user-1", "owner")
	require.NoError(t, err)
	_, err = svc.Add(ctx, "org-2", "user-1", "member")
	require.NoError(t, err)
	_, err = svc.Add(ctx, "org-2", "user-2", "member")
	require.NoError(t, err)

	list, err := svc.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
