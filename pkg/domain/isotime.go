package domain

import (
	"encoding/json"
	"strings"
	"time"

	dErrors "aprovame/pkg/domain-errors"
)

// ISOTime accepts either a calendar date ("2026-03-10", midnight UTC) or an
// RFC 3339 timestamp on input, and always renders RFC 3339 in UTC.
type ISOTime struct {
	time.Time
}

var isoLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", time.DateOnly}

// ParseISOTime parses s with the layouts ISOTime accepts.
func ParseISOTime(s string) (ISOTime, error) {
	s = strings.TrimSpace(s)
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return ISOTime{Time: t.UTC()}, nil
		}
	}
	return ISOTime{}, dErrors.New(dErrors.CodeValidation, "invalid date: expected YYYY-MM-DD or RFC 3339")
}

func (t ISOTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

func (t *ISOTime) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*t = ISOTime{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return dErrors.New(dErrors.CodeValidation, "invalid date: expected a string")
	}
	parsed, err := ParseISOTime(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
