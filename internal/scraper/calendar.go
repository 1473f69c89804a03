package scraper

import (
	"regexp"
	"strconv"

	"github.com/victorvsmirnov/udiinformer/internal/models"
)

// NoAppointmentsMarker is the text the portal renders in a closed day cell
const NoAppointmentsMarker = "No available appointments"

var (
	// closedCell matches blank cells and "<day>No available appointments".
	// The pattern follows observed portal output; keep it permissive.
	closedCell = regexp.MustCompile(`^(?:\d{1,2})?` + regexp.QuoteMeta(NoAppointmentsMarker) + `\s*$|^\s*$`)
	leadingDay = regexp.MustCompile(`^(\d{1,2})`)
)

// IsAvailable reports whether a calendar cell represents an open day
func IsAvailable(cell string) bool {
	return !closedCell.MatchString(cell)
}

// dayNumber extracts the leading day number of an open cell
func dayNumber(cell string) (int, bool) {
	m := leadingDay.FindStringSubmatch(cell)
	if m == nil {
		return 0, false
	}
	day, err := strconv.Atoi(m[1])
	if err != nil || day < 1 || day > 31 {
		return 0, false
	}
	return day, true
}

// FindAvailable returns the first open day of a calendar grid, scanning rows
// top to bottom and cells left to right. Within one month that order is
// ascending by day. Open cells without a readable day number are skipped.
func FindAvailable(grid [][]string) models.Availability {
	for _, week := range grid {
		for _, cell := range week {
			if !IsAvailable(cell) {
				continue
			}
			if day, ok := dayNumber(cell); ok {
				return models.Availability{Day: day}
			}
		}
	}
	return models.Availability{}
}

// ScanPage runs FindAvailable over a month page
func ScanPage(page models.MonthPage) models.Availability {
	return FindAvailable(page.Grid)
}
