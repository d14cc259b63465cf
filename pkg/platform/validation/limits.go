package validation

import (
	"fmt"

	dErrors "aprovame/pkg/domain-errors"
)

// HTTP body limits
const (
	// MaxBodySize bounds single-record request bodies (64 KB).
	MaxBodySize = 64 * 1024

	// MaxBatchBodySize bounds batch submissions: 10 000 items at roughly
	// 120 bytes of JSON each, with headroom for whitespace.
	MaxBatchBodySize = 4 * 1024 * 1024
)

// Batch limits
const (
	MinBatchItems = 1
	MaxBatchItems = 10_000
)

// String length limits for assignor fields.
const (
	MaxDocumentLength = 30
	MaxEmailLength    = 140
	MaxPhoneLength    = 20
	MaxNameLength     = 140
	MinNameLength     = 2
)

// CheckBatchSize validates the item count of a batch submission.
func CheckBatchSize(count int) error {
	if count < MinBatchItems {
		return dErrors.New(dErrors.CodeValidation, "batch must contain at least one payable")
	}
	if count > MaxBatchItems {
		return dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("batch must contain at most %d payables", MaxBatchItems))
	}
	return nil
}

// CheckStringLength validates that a string does not exceed the maximum length.
func CheckStringLength(fieldName, value string, max int) error {
	if len(value) > max {
		return dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("%s must be at most %d characters", fieldName, max))
	}
	return nil
}
