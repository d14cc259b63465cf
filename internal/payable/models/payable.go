package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	id "aprovame/pkg/domain"
	dErrors "aprovame/pkg/domain-errors"
	"aprovame/pkg/platform/sentinel"
)

// Messages shared by synchronous creation, batch intake and batch processing.
const (
	MsgValueNotPositive = "the value must be greater than zero"
	MsgValuePrecision   = "the value must have at most 2 decimal places"
	MsgValueTooLarge    = "the value must be less than 10000000000000"
	MsgEmissionInFuture = "the emission date cannot be in the future"
	MsgEmissionRequired = "the emission date is required"
)

// MaxValue is the exclusive upper bound of the NUMERIC(15, 2) value column.
var MaxValue = decimal.New(1, 13)

// ErrAssignorMissing is returned by stores when the referenced assignor row is gone.
var ErrAssignorMissing = fmt.Errorf("assignor does not exist: %w", sentinel.ErrNotFound)

// Payable is a receivable owed to an assignor.
type Payable struct {
	ID           id.PayableID
	Value        decimal.Decimal
	EmissionDate time.Time
	AssignorID   id.AssignorID
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

func (p *Payable) IsDeleted() bool {
	return p.DeletedAt != nil
}

// ValidateValue enforces 0 < value < MaxValue with at most two decimal places.
func ValidateValue(v decimal.Decimal) error {
	if !v.IsPositive() {
		return dErrors.New(dErrors.CodeValidation, MsgValueNotPositive)
	}
	if v.GreaterThanOrEqual(MaxValue) {
		return dErrors.New(dErrors.CodeValidation, MsgValueTooLarge)
	}
	if !v.Equal(v.Round(2)) {
		return dErrors.New(dErrors.CodeValidation, MsgValuePrecision)
	}
	return nil
}

// ValidateEmissionDate rejects zero and future dates relative to now.
func ValidateEmissionDate(d, now time.Time) error {
	if d.IsZero() {
		return dErrors.New(dErrors.CodeValidation, MsgEmissionRequired)
	}
	if d.After(now) {
		return dErrors.New(dErrors.CodeValidation, MsgEmissionInFuture)
	}
	return nil
}

// NewPayable builds a live payable. Assignor existence is checked by the caller.
func NewPayable(payableID id.PayableID, value decimal.Decimal, emission time.Time, assignorID id.AssignorID, now time.Time) (*Payable, error) {
	if err := ValidateValue(value); err != nil {
		return nil, err
	}
	if err := ValidateEmissionDate(emission, now); err != nil {
		return nil, err
	}
	if assignorID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "assignor is required")
	}
	return &Payable{
		ID:           payableID,
		Value:        value.Round(2),
		EmissionDate: emission.UTC(),
		AssignorID:   assignorID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Patch carries a partial update; nil fields are left untouched.
type Patch struct {
	Value        *decimal.Decimal
	EmissionDate *time.Time
	AssignorID   *id.AssignorID
}

// Apply merges p into the payable after validating every provided field.
func (p *Payable) Apply(patch Patch, now time.Time) error {
	if p.IsDeleted() {
		return dErrors.New(dErrors.CodeInvariantViolation, "payable is deleted")
	}
	if patch.Value != nil {
		if err := ValidateValue(*patch.Value); err != nil {
			return err
		}
	}
	if patch.EmissionDate != nil {
		if err := ValidateEmissionDate(*patch.EmissionDate, now); err != nil {
			return err
		}
	}
	if patch.AssignorID != nil && patch.AssignorID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "assignor is required")
	}

	if patch.Value != nil {
		p.Value = patch.Value.Round(2)
	}
	if patch.EmissionDate != nil {
		p.EmissionDate = patch.EmissionDate.UTC()
	}
	if patch.AssignorID != nil {
		p.AssignorID = *patch.AssignorID
	}
	p.UpdatedAt = now
	return nil
}
