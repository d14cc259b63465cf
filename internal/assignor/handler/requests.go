package handler

import (
	"strings"

	"aprovame/internal/assignor/models"
	"aprovame/internal/assignor/service"
	dErrors "aprovame/pkg/domain-errors"
	"aprovame/pkg/validation"
)

type CreateAssignorRequest struct {
	Document string `json:"document" validate:"required,max=30,document"`
	Email    string `json:"email" validate:"required,max=140,email"`
	Phone    string `json:"phone" validate:"required,notblank,max=20"`
	Name     string `json:"name" validate:"required,notblank,min=2,max=140"`
}

func (r *CreateAssignorRequest) Normalize() {
	if r == nil {
		return
	}
	r.Document = strings.TrimSpace(r.Document)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Name = strings.TrimSpace(r.Name)
}

func (r *CreateAssignorRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

func (r *CreateAssignorRequest) ToCommand() service.CreateCommand {
	return service.CreateCommand{
		Document: r.Document,
		Email:    r.Email,
		Phone:    r.Phone,
		Name:     r.Name,
	}
}

// UpdateAssignorRequest is a partial update; omitted fields keep their value.
type UpdateAssignorRequest struct {
	Document *string `json:"document" validate:"omitempty,max=30,document"`
	Email    *string `json:"email" validate:"omitempty,max=140,email"`
	Phone    *string `json:"phone" validate:"omitempty,notblank,max=20"`
	Name     *string `json:"name" validate:"omitempty,notblank,min=2,max=140"`
}

func (r *UpdateAssignorRequest) Normalize() {
	if r == nil {
		return
	}
	for _, f := range []*string{r.Document, r.Email, r.Phone, r.Name} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
}

func (r *UpdateAssignorRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.Document == nil && r.Email == nil && r.Phone == nil && r.Name == nil {
		return dErrors.New(dErrors.CodeValidation, "at least one field must be provided")
	}
	return validation.Validate(r)
}

func (r *UpdateAssignorRequest) ToPatch() models.Patch {
	return models.Patch{
		Document: r.Document,
		Email:    r.Email,
		Phone:    r.Phone,
		Name:     r.Name,
	}
}
