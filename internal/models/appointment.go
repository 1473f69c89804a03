package models

import (
	"fmt"
	"time"
)

// Month identifies one page of the portal calendar
type Month struct {
	Year  int
	Month time.Month
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// BookedAppointment is the appointment the user already holds
type BookedAppointment struct {
	Date      time.Time `json:"date"`
	TimeLabel string    `json:"time_label"`
	// DateLabel is the date text exactly as the portal rendered it
	DateLabel string `json:"date_label"`
}

// MonthPage is a single calendar page: its header month and the table
// cells as text, row by row.
type MonthPage struct {
	Month Month
	Grid  [][]string
}

// Availability is the earliest open day found on a MonthPage.
// Day is zero when nothing is open.
type Availability struct {
	Day int
}

// Found reports whether an open day was found
func (a Availability) Found() bool {
	return a.Day > 0
}
