package core

import (
	"fmt"
	"time"
)

// YearMonth identifies a calendar month, the competency of a charge.
// The wire format is "YYYY-MM", matching the persisted record layout.
type YearMonth struct {
	Year  int
	Month time.Month
}

// YM builds a YearMonth, normalizing month overflow (YM(2024, 13) is 2025-01).
func YM(year int, month int) YearMonth {
	t := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// YearMonthOf returns the month a calendar date falls in.
func YearMonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// ParseYearMonth parses a "YYYY-MM" key.
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return YearMonth{}, fmt.Errorf("parse year-month %q: %w", s, err)
	}
	return YearMonth{Year: t.Year(), Month: t.Month()}, nil
}

// Add shifts the month by delta whole months. Delta may be negative;
// year rollover is normalized.
func (ym YearMonth) Add(delta int) YearMonth {
	t := time.Date(ym.Year, ym.Month+time.Month(delta), 1, 0, 0, 0, 0, time.UTC)
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

func (ym YearMonth) IsZero() bool {
	return ym.Year == 0 && ym.Month == 0
}

// Compare orders two months chronologically: -1, 0 or +1.
func (ym YearMonth) Compare(other YearMonth) int {
	a := ym.Year*12 + int(ym.Month)
	b := other.Year*12 + int(other.Month)
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (ym YearMonth) Before(other YearMonth) bool { return ym.Compare(other) < 0 }
func (ym YearMonth) After(other YearMonth) bool  { return ym.Compare(other) > 0 }

// MarshalText implements encoding.TextMarshaler so the type serializes as
// "YYYY-MM" in JSON records and URL parameters alike.
func (ym YearMonth) MarshalText() ([]byte, error) {
	return []byte(ym.String()), nil
}

func (ym *YearMonth) UnmarshalText(data []byte) error {
	parsed, err := ParseYearMonth(string(data))
	if err != nil {
		return err
	}
	*ym = parsed
	return nil
}

// SeriesStart derives the due month of a series' first installment from any
// member's due month and 1-based position. Positions below 1 are treated as 1.
func SeriesStart(due YearMonth, installmentNumber int) YearMonth {
	if installmentNumber < 1 {
		installmentNumber = 1
	}
	return due.Add(-(installmentNumber - 1))
}
