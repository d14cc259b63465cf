package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "aprovame/pkg/domain"
	dErrors "aprovame/pkg/domain-errors"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func TestValidateValue(t *testing.T) {
	tests := []struct {
		value string
		msg   string
	}{
		{"100.50", ""},
		{"0.01", ""},
		{"7.100", ""},
		{"0", MsgValueNotPositive},
		{"-3", MsgValueNotPositive},
		{"1.001", MsgValuePrecision},
		{"9999999999999.99", ""},
		{"10000000000000", MsgValueTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			err := ValidateValue(decimal.RequireFromString(tt.value))
			if tt.msg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
			assert.Equal(t, tt.msg, dErrors.Message(err))
		})
	}
}

func TestValidateEmissionDate(t *testing.T) {
	assert.NoError(t, ValidateEmissionDate(now, now), "now itself is allowed")
	assert.NoError(t, ValidateEmissionDate(now.AddDate(0, 0, -30), now))

	err := ValidateEmissionDate(now.Add(time.Second), now)
	assert.Equal(t, MsgEmissionInFuture, dErrors.Message(err))

	err = ValidateEmissionDate(time.Time{}, now)
	assert.Equal(t, MsgEmissionRequired, dErrors.Message(err))
}

func TestNewPayable(t *testing.T) {
	assignorID := id.NewAssignorID()
	p, err := NewPayable(id.NewPayableID(), decimal.RequireFromString("10.50"), now.AddDate(0, 0, -1), assignorID, now)
	require.NoError(t, err)
	assert.True(t, p.Value.Equal(decimal.RequireFromString("10.5")))
	assert.Equal(t, assignorID, p.AssignorID)

	_, err = NewPayable(id.NewPayableID(), decimal.NewFromInt(1), now, id.AssignorID{}, now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestApply(t *testing.T) {
	p, err := NewPayable(id.NewPayableID(), decimal.NewFromInt(10), now, id.NewAssignorID(), now)
	require.NoError(t, err)

	bad := decimal.NewFromInt(-1)
	later := now.Add(time.Hour)
	future := later.Add(time.Hour)
	assert.Error(t, p.Apply(Patch{Value: &bad}, later))
	assert.Error(t, p.Apply(Patch{EmissionDate: &future}, later))
	assert.True(t, p.Value.Equal(decimal.NewFromInt(10)), "rejected patch leaves the payable unchanged")

	good := decimal.RequireFromString("99.99")
	require.NoError(t, p.Apply(Patch{Value: &good}, later))
	assert.True(t, p.Value.Equal(good))
	assert.Equal(t, later, p.UpdatedAt)
}
