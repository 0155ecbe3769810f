package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"multi-tenant-crm/backend/internal/organization/domain"
	"multi-tenant-crm/backend/internal/organization/repository"
	"multi-tenant-crm/backend/internal/platform/errs"
)

func fixedClock() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

func TestOrganizationService_Create(t *testing.T) {
	svc := NewOrganizationService(repository.NewMemoryRepository(), fixedClock)
	ctx := context.Background()

	org, err := svc.Create(ctx, "", "  Acme  ")
	require.NoError(t, err)
	assert.Equal(t, "Acme", org.Name)
	assert.NotEmpty(t, org.ID)
	assert.Equal(t, fixedClock(), org.CreatedAt)

	got, err := svc.GetByID(ctx, org.ID)
	require.NoError(t, err)
	assert.Equal(t, org.Name, got.Name)
}

func TestOrganizationService_Create_Validation(t *testing.T) {
	svc := NewOrganizationService(repository.NewMemoryRepository(), nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, "", "   ")
	assert.ErrorIs(t, err, domain.ErrEmptyOrganizationName)

	_, err = svc.Create(ctx, "", strings.Repeat("a", 256))
	var tooLong *errs.TooLongError
	assert.True(t, errors.As(err, &tooLong), "err = %v, want *errs.TooLongError", err)
}

func TestOrganizationService_GetByID_NotFound(t *testing.T) {
	svc := NewOrganizationService(repository.NewMemoryRepository(), nil)
	_, err := svc.GetByID(context.Background(), "missing")
	var nf *domain.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "missing", nf.OrganizationID)
}

func TestOrganizationService_GetByIDs(t *testing.T) {
	svc := NewOrganizationService(repository.NewMemoryRepository(), nil)
	ctx := context.Background()
	a, err := svc.Create(ctx, "org-a", "A")
	require.NoError(t, err)
	b, err := svc.Create(ctx, "", "B")
	require.NoError(t, err)

	assert.Equal(t, "org-a", a.ID)

	got, err := svc.GetByIDs(ctx, []string{a.ID, b.ID, "unknown"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "B", got[b.ID].Name)

	empty, err := svc.GetByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
