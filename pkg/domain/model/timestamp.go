package model

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// Timestamp is a time decoded leniently from the backend. It accepts the
// layouts of ParseTimestamp, empty strings and null. Any other string decodes
// to the zero time so one odd value does not fail the whole document.
type Timestamp struct {
	time.Time
}

const dateLayout = time.DateOnly

// timestampLayouts are tried in order. Layouts without a zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	time.RFC1123Z,
	time.RFC1123,
	dateLayout,
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return goerr.Wrap(err, "timestamp must be a string", goerr.V("raw", string(data)))
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		t.Time = time.Time{}
		return nil
	}
	t.Time = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// Date returns the calendar date part as YYYY-MM-DD, or "" for a zero timestamp.
func (t Timestamp) Date() string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// ParseTimestamp parses s as RFC 3339, an ISO or SQL style date-time with or
// without a zone, RFC 1123 or YYYY-MM-DD. An empty string yields the zero time.
func ParseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, goerr.New("unrecognized timestamp", goerr.V("value", s))
}

// DatePart returns the portion of s before any "T" separator, so both
// "2024-03-01T10:00:00Z" and "2024-03-01" yield "2024-03-01".
func DatePart(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == 'T' {
			return s[:i]
		}
	}
	return s
}
