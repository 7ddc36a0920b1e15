package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the textual format for calendar dates in CSV input, query
// parameters, and JSON output.
const DateLayout = "2006-01-02"

// Date is a calendar day without a time-of-day component. It serializes as
// YYYY-MM-DD in JSON and maps to a SQL DATE column.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar day.
func NewDate(t time.Time) Date {
	return Date{time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{t}, nil
}

// String returns the date in YYYY-MM-DD form.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Scan implements sql.Scanner for DATE columns.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		d.Time = v
		return nil
	case string:
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	return d.Time, nil
}

// HousingRecord is one row of the housing price index dataset. The natural key
// (Date, Region, Category) is unique; a second write with the same key
// overwrites the index value (last write wins).
type HousingRecord struct {
	ID         int       `json:"id"                      db:"id"`
	Date       Date      `json:"tarih"                   db:"tarih"`
	Region     string    `json:"istanbul_turkiye"        db:"istanbul_turkiye"`
	Category   string    `json:"yeni_yeni_olmayan_konut" db:"yeni_yeni_olmayan_konut"`
	IndexValue float64   `json:"fiyat_endeksi"           db:"fiyat_endeksi"`
	CreatedAt  time.Time `json:"created_at"              db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"              db:"updated_at"`
}

// HousingRow is one parsed CSV data row bound for upsert.
type HousingRow struct {
	Date       Date
	Region     string
	Category   string
	IndexValue float64
}

// HousingFilter narrows housing data reads. Zero-valued fields impose no
// constraint; filters combine with AND. Date bounds are inclusive.
type HousingFilter struct {
	Location  string
	Category  string
	StartDate *Date
	EndDate   *Date
}

// HousingStats is the KPI block derived for one (location, category) series.
type HousingStats struct {
	LastIndex       float64 `json:"last_month_index"`
	ChangeFromStart float64 `json:"change_from_start_percentage"`
	YearOverYear    float64 `json:"last_year_increase_percentage"`
	MaxValue        float64 `json:"max_value"`
	MinValue        float64 `json:"min_value"`
	LastDate        Date    `json:"last_month_date"`
}

// ImportResult reports the outcome of a CSV import call. RowsRead counts data
// rows parsed; RowsAffected is the database-reported affected count, which may
// include no-op updates.
type ImportResult struct {
	RowsRead     int
	RowsAffected int64
}
