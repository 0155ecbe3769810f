package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	for _, typ := range Types {
		got, err := ParseType(string(typ))
		require.NoError(t, err)
		assert.Equal(t, typ, got)
	}

	_, err := ParseType("")
	assert.ErrorIs(t, err, ErrEmptyActivityType)

	_, err = ParseType("email_sent")
	var invalid *InvalidTypeError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "email_sent", invalid.Type)
}
