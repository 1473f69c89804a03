package navigator

// State is a step of the portal flow. States only move forward; the
// calendar search repeats itself at most MaxSearchMonths times.
type State int

const (
	StateStart State = iota
	StateLoggingIn
	StateApplicationSelected
	StateBookingRead
	StateCalendarSearch
)

var stateNames = [...]string{
	StateStart:               "start",
	StateLoggingIn:           "logging_in",
	StateApplicationSelected: "application_selected",
	StateBookingRead:         "booking_read",
	StateCalendarSearch:      "calendar_search",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}
