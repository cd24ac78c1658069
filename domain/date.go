package domain

import (
	"errors"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

var errBadDate = errors.New("date must be YYYY-MM-DD")

// Date is a calendar date without time-of-day semantics. Due dates compare
// by day regardless of the clock or zone the remote service used.
type Date struct {
	t time.Time
}

// NewDate builds a Date from its calendar parts.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate accepts YYYY-MM-DD, tolerating a trailing time component the
// planification service sometimes appends to stored due dates.
func ParseDate(s string) (Date, error) {
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		s = s[:i]
	}
	if i := strings.IndexByte(s, ' '); i >= 0 {
		s = s[:i]
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, errBadDate
	}
	return Date{t: t}, nil
}

// IsZero reports whether d holds no date.
func (d Date) IsZero() bool { return d.t.IsZero() }

// Before reports whether d falls strictly before o.
func (d Date) Before(o Date) bool { return d.t.Before(o.t) }

// After reports whether d falls strictly after o.
func (d Date) After(o Date) bool { return d.t.After(o.t) }

// Equal reports whether d and o are the same calendar date.
func (d Date) Equal(o Date) bool { return d.t.Equal(o.t) }

// AddDays returns the date n days after d.
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// StartOfWeek returns the Monday of the week containing d.
func (d Date) StartOfWeek() Date {
	wd := int(d.t.Weekday())
	if wd == 0 {
		wd = 7
	}
	return d.AddDays(1 - wd)
}

// EndOfWeek returns the Sunday of the week containing d.
func (d Date) EndOfWeek() Date { return d.StartOfWeek().AddDays(6) }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(dateLayout)
}

// MarshalJSON renders the date as "YYYY-MM-DD", or null when unset.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.t.Format(dateLayout) + `"`), nil
}

// UnmarshalJSON parses "YYYY-MM-DD" or a full timestamp string.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		*d = Date{}
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return errBadDate
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
