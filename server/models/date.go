package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const DATE_LAYOUT = "2006-01-02"

// Date is a calendar date with no time of day. It's stored as a SQL 'date'
// and encoded in JSON as "YYYY-MM-DD".
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of 't' in UTC.
func DateOf(t time.Time) Date {
	t = t.UTC()
	return NewDate(t.Year(), t.Month(), t.Day())
}

func ParseDate(value string) (Date, error) {
	value = strings.TrimSpace(value)

	t, err := time.Parse(DATE_LAYOUT, value)
	if err == nil {
		return DateOf(t), nil
	}

	// Accept full timestamps too, only the date part is kept
	t, err = time.Parse(time.RFC3339, value)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}

	return NewDate(t.Year(), t.Month(), t.Day()), nil
}

func (d Date) String() string {
	return d.Format(DATE_LAYOUT)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var value *string
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("invalid date, expected YYYY-MM-DD string")
	}

	if value == nil || *value == "" {
		*d = Date{}
		return nil
	}

	parsed, err := ParseDate(*value)
	if err != nil {
		return err
	}

	*d = parsed
	return nil
}

func (Date) GormDataType() string {
	return "date"
}

// Value writes the date as text so month/day extraction in sqlite isn't
// shifted by a timezone suffix.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

func (d *Date) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*d = Date{}
	case time.Time:
		*d = NewDate(v.Year(), v.Month(), v.Day())
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	default:
		return fmt.Errorf("unable to scan %T into Date", value)
	}

	return nil
}

func (d *Date) scanString(value string) error {
	// sqlite may hand back "YYYY-MM-DD" or a full timestamp
	if len(value) >= len(DATE_LAYOUT) {
		value = value[:len(DATE_LAYOUT)]
	}

	parsed, err := time.Parse(DATE_LAYOUT, value)
	if err != nil {
		return fmt.Errorf("unable to scan %q into Date: %v", value, err)
	}

	*d = NewDate(parsed.Year(), parsed.Month(), parsed.Day())
	return nil
}
