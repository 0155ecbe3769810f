package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	testCases := []struct {
		in   string
		want Role
	}{
		{"owner", RoleOwner},
		{"admin", RoleAdmin},
		{"manager", RoleManager},
		{"member", RoleMember},
		{" Admin ", RoleAdmin},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseRole(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseRole_Errors(t *testing.T) {
	_, err := ParseRole("")
	assert.ErrorIs(t, err, ErrEmptyRole)

	_, err = ParseRole("superuser")
	var invalid *InvalidRoleError
	require.True(t, errors.As(err, &invalid), "err = %v, want *InvalidRoleError", err)
	assert.Equal(t, "superuser", invalid.Role)
}

func TestRole_Privileged(t *testing.T) {
	assert.True(t, RoleOwner.Privileged())
	assert.True(t, RoleAdmin.Privileged())
	assert.True(t, RoleManager.Privileged())
	assert.False(t, RoleMember.Privileged())
	assert.False(t, Role("").Privileged())
}

func TestMembership_Validate(t *testing.T) {
	m := &Membership{OrgID: "org-1", UserID: "user-1", Role: RoleMember}
	assert.NoError(t, m.Validate())

	m.Role = "root"
	assert.Error(t, m.Validate())

	m = &Membership{UserID: "user-1", Role: RoleMember}
	assert.Error(t, m.Validate())
}
