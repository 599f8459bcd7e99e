package domain

import (
	"fmt"
	"time"
)

// Period is a calendar month. Its text form is the column label of the wide table, e.g. "January 2024".
type Period struct {
	Year  int
	Month time.Month
}

// PeriodOf returns the month containing t, in UTC
func PeriodOf(t time.Time) Period {
	t = t.UTC()
	return Period{Year: t.Year(), Month: t.Month()}
}

// ParsePeriod parses a column label such as "March 2023"
func ParsePeriod(label string) (Period, error) {
	t, err := time.Parse(PERIOD_LABEL_LAYOUT, label)
	if err != nil {
		return Period{}, fmt.Errorf("invalid period label %q: %w", label, err)
	}
	return PeriodOf(t), nil
}

// Start returns the first instant of the month in UTC
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Label returns the human-readable column label
func (p Period) Label() string {
	return p.Start().Format(PERIOD_LABEL_LAYOUT)
}

// String implements fmt.Stringer
func (p Period) String() string {
	return p.Label()
}

// Before reports whether p is chronologically before o
func (p Period) Before(o Period) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	return p.Month < o.Month
}

// MarshalText encodes the period as its label
func (p Period) MarshalText() ([]byte, error) {
	return []byte(p.Label()), nil
}

// UnmarshalText decodes the period from its label
func (p *Period) UnmarshalText(text []byte) error {
	parsed, err := ParsePeriod(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
