package models

import "time"

// OutcomeKind tags the terminal result of a check
type OutcomeKind int

const (
	OutcomeEarlierFound OutcomeKind = iota + 1
	OutcomeNoEarlierFound
	OutcomeNoBookingFound
	OutcomeLoginFailed
	OutcomePortalUnreachable
	OutcomeCalendarUnreadable
)

var outcomeNames = map[OutcomeKind]string{
	OutcomeEarlierFound:       "earlier_found",
	OutcomeNoEarlierFound:     "no_earlier_found",
	OutcomeNoBookingFound:     "no_booking_found",
	OutcomeLoginFailed:        "login_failed",
	OutcomePortalUnreachable:  "portal_unreachable",
	OutcomeCalendarUnreadable: "calendar_unreadable",
}

func (k OutcomeKind) String() string {
	if s, ok := outcomeNames[k]; ok {
		return s
	}
	return "unknown"
}

// CheckOutcome is produced exactly once per check.
//
// Date is set for OutcomeEarlierFound (the earlier slot) and
// OutcomeNoEarlierFound (the earliest slot the portal offers). Booked is set
// once the existing appointment has been read. Err carries the failure that
// was folded into a failure outcome, for logging only.
type CheckOutcome struct {
	Kind   OutcomeKind
	Date   time.Time
	Booked *BookedAppointment
	Err    error
}

// EarlierFound builds an OutcomeEarlierFound result
func EarlierFound(date time.Time, booked BookedAppointment) CheckOutcome {
	return CheckOutcome{Kind: OutcomeEarlierFound, Date: date, Booked: &booked}
}

// NoEarlierFound builds an OutcomeNoEarlierFound result
func NoEarlierFound(earliest time.Time, booked BookedAppointment) CheckOutcome {
	return CheckOutcome{Kind: OutcomeNoEarlierFound, Date: earliest, Booked: &booked}
}

// Failed builds one of the failure outcomes
func Failed(kind OutcomeKind, err error) CheckOutcome {
	return CheckOutcome{Kind: kind, Err: err}
}
