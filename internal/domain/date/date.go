package date

import (
	"encoding/json"
	"fmt"
	"time"
)

// Layout is the ISO-8601 calendar day layout used for storage and JSON.
const Layout = "2006-01-02"

const readLayout = "2006-1-2"

// Date is a calendar day with no time component. Days are anchored in UTC.
type Date struct {
	y int
	m time.Month
	d int
}

// New returns a normalized Date, so New(2025, 1, 32) is 2025-02-01.
func New(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.Time().Date()
	return d
}

// Of returns the UTC calendar day of t.
func Of(t time.Time) Date {
	return New(t.UTC().Date())
}

// Today returns the calendar day of now.
func Today(now time.Time) Date { return Of(now) }

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

func (d Date) Year() int          { return d.y }
func (d Date) Month() time.Month  { return d.m }
func (d Date) Day() int           { return d.d }
func (d Date) IsZero() bool       { return d == Date{} }
func (d Date) Add(days int) Date  { return New(d.y, d.m, d.d+days) }
func (d Date) Before(x Date) bool { return d.Time().Before(x.Time()) }
func (d Date) After(x Date) bool  { return d.Time().After(x.Time()) }
func (d Date) Equal(x Date) bool  { return d == x }

// DaysSince returns the number of days from x to d.
func (d Date) DaysSince(x Date) int {
	return int(d.Time().Sub(x.Time()) / (24 * time.Hour))
}

func (d Date) String() string { return d.Time().Format(Layout) }

// Parse accepts "2025-01-02" as well as the lenient "2025-1-2".
func Parse(s string) (Date, error) {
	t, err := time.Parse(readLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q want format %q: %w", s, Layout, err)
	}
	return Of(t), nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// Range returns every day from first to last inclusive. It is empty when last is before first.
func Range(first, last Date) []Date {
	if last.Before(first) {
		return nil
	}
	days := make([]Date, 0, last.DaysSince(first)+1)
	for d := first; !d.After(last); d = d.Add(1) {
		days = append(days, d)
	}
	return days
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

var _ json.Marshaler = Date{}
var _ json.Unmarshaler = (*Date)(nil)
