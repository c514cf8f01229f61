package domain

import (
	"fmt"
	"time"
)

// Wire layouts for persisted dates and timestamps. Both are naive: no
// timezone offset is written or expected, so values round-trip byte-for-byte.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02T15:04:05"
)

// Date is a calendar date with no time component.
type Date struct {
	t time.Time
}

// NewDate builds a Date from calendar components.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current local calendar date.
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), now.Month(), now.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t: t}, nil
}

func (d Date) String() string { return d.t.Format(DateLayout) }

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool { return d.t.Before(other.t) }

func (d Date) Equal(other Date) bool { return d.t.Equal(other.t) }

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.t.Format(DateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s, err := unquote(data)
	if err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DateTime is a local timestamp with second precision and no offset.
type DateTime struct {
	t time.Time
}

// Now captures the current local wall clock, truncated to the second. The
// wall-clock fields are stored without a zone so that encode/decode of the
// same instant compares equal.
func Now() DateTime {
	n := time.Now()
	return DateTime{t: time.Date(n.Year(), n.Month(), n.Day(), n.Hour(), n.Minute(), n.Second(), 0, time.UTC)}
}

// ParseDateTime parses a YYYY-MM-DDTHH:MM:SS string.
func ParseDateTime(s string) (DateTime, error) {
	t, err := time.Parse(DateTimeLayout, s)
	if err != nil {
		return DateTime{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return DateTime{t: t}, nil
}

func (dt DateTime) String() string { return dt.t.Format(DateTimeLayout) }

func (dt DateTime) Equal(other DateTime) bool { return dt.t.Equal(other.t) }

func (dt DateTime) Before(other DateTime) bool { return dt.t.Before(other.t) }

// IsZero reports whether the timestamp is unset.
func (dt DateTime) IsZero() bool { return dt.t.IsZero() }

func (dt DateTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + dt.t.Format(DateTimeLayout) + `"`), nil
}

func (dt *DateTime) UnmarshalJSON(data []byte) error {
	s, err := unquote(data)
	if err != nil {
		return err
	}
	parsed, err := ParseDateTime(s)
	if err != nil {
		return err
	}
	*dt = parsed
	return nil
}

func unquote(data []byte) (string, error) {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return "", fmt.Errorf("expected JSON string, got %s", data)
	}
	return string(data[1 : len(data)-1]), nil
}
