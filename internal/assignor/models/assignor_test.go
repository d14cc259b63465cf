package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "aprovame/pkg/domain"
	dErrors "aprovame/pkg/domain-errors"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func TestNewAssignor(t *testing.T) {
	t.Run("normalizes document and email", func(t *testing.T) {
		a, err := NewAssignor(id.NewAssignorID(), "123.456.789-09", " Finance@Bankme.COM ", "11999990000", "Bankme Ltda", now)
		require.NoError(t, err)
		assert.Equal(t, "12345678909", a.Document)
		assert.Equal(t, "finance@bankme.com", a.Email)
		assert.Equal(t, now, a.CreatedAt)
		assert.False(t, a.IsDeleted())
	})

	cases := map[string][4]string{
		"bad checksum": {"12345678900", "a@b.com", "1199", "Ana"},
		"bad email":    {"12345678909", "not-an-email", "1199", "Ana"},
		"no phone":     {"12345678909", "a@b.com", "  ", "Ana"},
		"long phone":   {"12345678909", "a@b.com", "123456789012345678901", "Ana"},
		"short name":   {"12345678909", "a@b.com", "1199", "A"},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewAssignor(id.NewAssignorID(), c[0], c[1], c[2], c[3], now)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}
}

func TestApply(t *testing.T) {
	a, err := NewAssignor(id.NewAssignorID(), "12345678909", "a@b.com", "1199", "Ana", now)
	require.NoError(t, err)

	later := now.Add(time.Hour)
	require.NoError(t, a.Apply(Patch{Name: strPtr("Ana Maria"), Document: strPtr("11.222.333/0001-81")}, later))
	assert.Equal(t, "Ana Maria", a.Name)
	assert.Equal(t, "11222333000181", a.Document)
	assert.Equal(t, later, a.UpdatedAt)

	err = a.Apply(Patch{Email: strPtr("broken")}, later.Add(time.Hour))
	require.Error(t, err)
	assert.Equal(t, "a@b.com", a.Email, "failed patch leaves the record unchanged")
	assert.Equal(t, later, a.UpdatedAt)
}

func TestSoftDelete(t *testing.T) {
	a, err := NewAssignor(id.NewAssignorID(), "12345678909", "a@b.com", "1199", "Ana", now)
	require.NoError(t, err)

	require.NoError(t, a.SoftDelete(now))
	assert.True(t, a.IsDeleted())

	err = a.SoftDelete(now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	assert.Error(t, a.Apply(Patch{Name: strPtr("Other")}, now))
}
