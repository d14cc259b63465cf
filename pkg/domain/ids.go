// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"github.com/google/uuid"

	dErrors "aprovame/pkg/domain-errors"
)

// Distinct ID types - compiler prevents passing a PayableID where an AssignorID is expected.
type (
	AssignorID uuid.UUID
	PayableID  uuid.UUID
	BatchID    uuid.UUID
)

func NewAssignorID() AssignorID { return AssignorID(uuid.New()) }
func NewPayableID() PayableID   { return PayableID(uuid.New()) }
func NewBatchID() BatchID       { return BatchID(uuid.New()) }

// Parse functions - use at trust boundaries (handlers, queue payloads).

func ParseAssignorID(s string) (AssignorID, error) {
	id, err := parseUUID(s, "assignor ID")
	return AssignorID(id), err
}

func ParsePayableID(s string) (PayableID, error) {
	id, err := parseUUID(s, "payable ID")
	return PayableID(id), err
}

func ParseBatchID(s string) (BatchID, error) {
	id, err := parseUUID(s, "batch ID")
	return BatchID(id), err
}

func (id AssignorID) String() string { return uuid.UUID(id).String() }
func (id PayableID) String() string  { return uuid.UUID(id).String() }
func (id BatchID) String() string    { return uuid.UUID(id).String() }

func (id AssignorID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id PayableID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id BatchID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// Text marshaling keeps IDs readable in JSON bodies and queue payloads.

func (id AssignorID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id PayableID) MarshalText() ([]byte, error)  { return uuid.UUID(id).MarshalText() }
func (id BatchID) MarshalText() ([]byte, error)    { return uuid.UUID(id).MarshalText() }

func (id *AssignorID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id *PayableID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func (id *BatchID) UnmarshalText(b []byte) error {
	return (*uuid.UUID)(id).UnmarshalText(b)
}

func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, label+" cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, "invalid "+label+" format")
	}
	if id == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeBadRequest, label+" cannot be nil")
	}
	return id, nil
}
