package handler

import (
	"github.com/shopspring/decimal"

	"aprovame/internal/payable/models"
	"aprovame/internal/payable/service"
	id "aprovame/pkg/domain"
	dErrors "aprovame/pkg/domain-errors"
	"aprovame/pkg/validation"
)

type CreatePayableRequest struct {
	Value        decimal.Decimal `json:"value" validate:"maxdecimals2"`
	EmissionDate id.ISOTime      `json:"emissionDate"`
	Assignor     string          `json:"assignor" validate:"required,uuid"`
}

func (r *CreatePayableRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validation.Validate(r); err != nil {
		return err
	}
	if r.EmissionDate.IsZero() {
		return dErrors.New(dErrors.CodeValidation, models.MsgEmissionRequired)
	}
	return nil
}

// ToCommand assumes Validate passed, so the assignor id parses.
func (r *CreatePayableRequest) ToCommand() (service.CreateCommand, error) {
	assignorID, err := id.ParseAssignorID(r.Assignor)
	if err != nil {
		return service.CreateCommand{}, err
	}
	return service.CreateCommand{
		Value:        r.Value,
		EmissionDate: r.EmissionDate.Time,
		AssignorID:   assignorID,
	}, nil
}

type UpdatePayableRequest struct {
	Value        *decimal.Decimal `json:"value" validate:"omitempty,maxdecimals2"`
	EmissionDate *id.ISOTime      `json:"emissionDate"`
	Assignor     *string          `json:"assignor" validate:"omitempty,uuid"`
}

func (r *UpdatePayableRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.Value == nil && r.EmissionDate == nil && r.Assignor == nil {
		return dErrors.New(dErrors.CodeValidation, "at least one field must be provided")
	}
	return validation.Validate(r)
}

func (r *UpdatePayableRequest) ToPatch() (models.Patch, error) {
	var patch models.Patch
	patch.Value = r.Value
	if r.EmissionDate != nil {
		t := r.EmissionDate.Time
		patch.EmissionDate = &t
	}
	if r.Assignor != nil {
		assignorID, err := id.ParseAssignorID(*r.Assignor)
		if err != nil {
			return models.Patch{}, err
		}
		patch.AssignorID = &assignorID
	}
	return patch, nil
}
