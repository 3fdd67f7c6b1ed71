package payment

import (
	"time"

	"github.com/pkg/errors"
)

const monthLayout = "2006-01"

// Month is a calendar-month billing key: a year and month with no day component.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the Month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth parses a "YYYY-MM" key.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return Month{}, errors.Wrapf(err, "parsing month %q", s)
	}
	return MonthOf(t), nil
}

func (m Month) String() string {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).Format(monthLayout)
}

func (m Month) IsZero() bool { return m.Year == 0 && m.Month == 0 }

func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

func (m Month) After(o Month) bool { return o.Before(m) }

// AddMonths steps n whole months forward (or back), normalizing year rollover.
func (m Month) AddMonths(n int) Month {
	t := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	return MonthOf(t)
}

func (m Month) Next() Month { return m.AddMonths(1) }

// MonthsUntil returns the number of whole-month steps from m to o.
// Zero when equal, negative when o precedes m.
func (m Month) MonthsUntil(o Month) int {
	return (o.Year-m.Year)*12 + int(o.Month) - int(m.Month)
}

func (m Month) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Month) UnmarshalText(text []byte) error {
	parsed, err := ParseMonth(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
