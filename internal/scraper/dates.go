package scraper

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/victorvsmirnov/udiinformer/internal/models"
)

var (
	ErrUnparsableHeader = errors.New("unparsable month header")
	ErrUnparsableDate   = errors.New("unparsable booked date")
	ErrInvalidDay       = errors.New("day out of range for month")
)

const (
	monthHeaderLayout = "January 2006"
	bookedDateLayout  = "Monday January 2, 2006"
)

// ParseMonthHeader parses a calendar header such as "March 2024"
func ParseMonthHeader(text string) (models.Month, error) {
	t, err := time.Parse(monthHeaderLayout, strings.TrimSpace(text))
	if err != nil {
		return models.Month{}, fmt.Errorf("%w: %q", ErrUnparsableHeader, text)
	}
	return models.Month{Year: t.Year(), Month: t.Month()}, nil
}

// ParseBookedDate parses a booking date such as "Monday March 4, 2024"
func ParseBookedDate(text string) (time.Time, error) {
	t, err := time.Parse(bookedDateLayout, strings.TrimSpace(text))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnparsableDate, text)
	}
	return t, nil
}

// Resolve builds the calendar date for a day of a month page
func Resolve(m models.Month, day int) (time.Time, error) {
	if m.Month < time.January || m.Month > time.December {
		return time.Time{}, fmt.Errorf("%w: month %d", ErrInvalidDay, int(m.Month))
	}
	last := time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day < 1 || day > last {
		return time.Time{}, fmt.Errorf("%w: %s-%02d", ErrInvalidDay, m, day)
	}
	return time.Date(m.Year, m.Month, day, 0, 0, 0, 0, time.UTC), nil
}

// IsEarlier compares the calendar dates of a and b, ignoring time of day
// and location.
func IsEarlier(a, b time.Time) bool {
	return civil(a).Before(civil(b))
}

func civil(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
