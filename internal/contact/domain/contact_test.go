package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"multi-tenant-crm/backend/internal/platform/errs"
)

func strPtr(s string) *string { return &s }

func TestContactFields_RoundTrip(t *testing.T) {
	testCases := []struct {
		name, email, phone string
	}{
		{"Jane Doe", "jane.doe@example.com", "+1 (555) 123-4567"},
		{"ACME Corp", "sales+crm@acme.co.uk", "79991234567"},
		{"Ян", "x_y%z@mail.example.org", "+44 20 7946 0958"},
		{" Bob ", "bob@example.com", "5551234567"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			name, err := NormalizeName(tc.name)
			require.NoError(t, err)
			email, err := ValidateEmail(strPtr(tc.email))
			require.NoError(t, err)
			phone, err := ValidatePhone(strPtr(tc.phone))
			require.NoError(t, err)

			assert.Equal(t, tc.name, name)
			assert.Equal(t, tc.email, *email)
			assert.Equal(t, tc.phone, *phone)
		})
	}
}

func TestNormalizeName_Errors(t *testing.T) {
	_, err := NormalizeName("")
	assert.ErrorIs(t, err, ErrEmptyContactName)

	_, err = NormalizeName(" \t ")
	assert.ErrorIs(t, err, ErrEmptyContactName)

	_, err = NormalizeName(strings.Repeat("n", 256))
	var tooLong *errs.TooLongError
	assert.True(t, errors.As(err, &tooLong))
}

func TestValidateEmail(t *testing.T) {
	got, err := ValidateEmail(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	for _, bad := range []string{"", "plain", "a@b", "a@b.c", "a b@example.com", "@example.com"} {
		t.Run(bad, func(t *testing.T) {
			_, err := ValidateEmail(strPtr(bad))
			var invalid *InvalidEmailError
			require.True(t, errors.As(err, &invalid), "err = %v, want *InvalidEmailError", err)
			assert.Equal(t, bad, invalid.Email)
		})
	}
}

func TestValidatePhone(t *testing.T) {
	got, err := ValidatePhone(nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = ValidatePhone(strPtr(""))
	assert.ErrorIs(t, err, ErrEmptyContactPhone)

	testCases := []struct {
		name  string
		phone string
	}{
		{"too few digits", "12345"},
		{"too many digits", "1234567890123456"},
		{"letters", "555-CALL-NOW-1"},
		{"plus in the middle", "555+1234567"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidatePhone(strPtr(tc.phone))
			var invalid *InvalidPhoneError
			require.True(t, errors.As(err, &invalid), "err = %v, want *InvalidPhoneError", err)
			assert.Equal(t, tc.phone, invalid.Phone)
		})
	}
}
