package models

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"aprovame/pkg/document"
	id "aprovame/pkg/domain"
	dErrors "aprovame/pkg/domain-errors"
	"aprovame/pkg/platform/sentinel"
	"aprovame/pkg/platform/validation"
)

// Uniqueness failures reported by stores. Both wrap sentinel.ErrAlreadyUsed.
var (
	ErrDocumentTaken = fmt.Errorf("document already registered: %w", sentinel.ErrAlreadyUsed)
	ErrEmailTaken    = fmt.Errorf("email already registered: %w", sentinel.ErrAlreadyUsed)
)

// Assignor is the party on whose behalf payables are created.
// Document holds digits only so formatted and bare inputs collide on uniqueness.
type Assignor struct {
	ID        id.AssignorID
	Document  string
	Email     string
	Phone     string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// IsDeleted reports whether the assignor was soft-deleted.
func (a *Assignor) IsDeleted() bool {
	return a.DeletedAt != nil
}

// NewAssignor builds a live assignor after checking field invariants.
func NewAssignor(assignorID id.AssignorID, doc, email, phone, name string, now time.Time) (*Assignor, error) {
	a := &Assignor{
		ID:        assignorID,
		Document:  document.Normalize(doc),
		Email:     normalizeEmail(email),
		Phone:     strings.TrimSpace(phone),
		Name:      strings.TrimSpace(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Patch carries a partial update; nil fields are left untouched.
type Patch struct {
	Document *string
	Email    *string
	Phone    *string
	Name     *string
}

// Apply merges p into a and re-checks invariants. On error a is unchanged.
func (a *Assignor) Apply(p Patch, now time.Time) error {
	if a.IsDeleted() {
		return dErrors.New(dErrors.CodeInvariantViolation, "assignor is deleted")
	}
	next := *a
	if p.Document != nil {
		next.Document = document.Normalize(*p.Document)
	}
	if p.Email != nil {
		next.Email = normalizeEmail(*p.Email)
	}
	if p.Phone != nil {
		next.Phone = strings.TrimSpace(*p.Phone)
	}
	if p.Name != nil {
		next.Name = strings.TrimSpace(*p.Name)
	}
	if err := next.validate(); err != nil {
		return err
	}
	next.UpdatedAt = now
	*a = next
	return nil
}

// SoftDelete stamps the deletion time.
func (a *Assignor) SoftDelete(now time.Time) error {
	if a.IsDeleted() {
		return dErrors.New(dErrors.CodeInvariantViolation, "assignor is already deleted")
	}
	a.DeletedAt = &now
	a.UpdatedAt = now
	return nil
}

func (a *Assignor) validate() error {
	if !document.IsValid(a.Document) {
		return dErrors.New(dErrors.CodeValidation, "document must be a valid CPF or CNPJ")
	}
	if _, err := mail.ParseAddress(a.Email); err != nil || !strings.Contains(a.Email, "@") {
		return dErrors.New(dErrors.CodeValidation, "email must be a valid email")
	}
	if err := validation.CheckStringLength("email", a.Email, validation.MaxEmailLength); err != nil {
		return err
	}
	if a.Phone == "" {
		return dErrors.New(dErrors.CodeValidation, "phone is required")
	}
	if err := validation.CheckStringLength("phone", a.Phone, validation.MaxPhoneLength); err != nil {
		return err
	}
	if len([]rune(a.Name)) < validation.MinNameLength {
		return dErrors.New(dErrors.CodeValidation, "name must be at least 2 characters")
	}
	return validation.CheckStringLength("name", a.Name, validation.MaxNameLength)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
