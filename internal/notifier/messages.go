package notifier

import (
	"fmt"
	"time"

	"github.com/victorvsmirnov/udiinformer/internal/models"
)

const dateLayout = "Monday January 2, 2006"

// StartMessage is sent when a check begins
func StartMessage() string {
	return "Started checking the UDI's availability"
}

// BookingMessage is sent once the existing appointment has been read
func BookingMessage(b models.BookedAppointment) string {
	return fmt.Sprintf("I found your existing appointment: %s %s\nChecking if I can find an earlier time slot",
		b.TimeLabel, b.DateLabel)
}

// OutcomeMessage renders the terminal outcome of a check. Every outcome has
// its own wording so the user knows what to do next.
func OutcomeMessage(o models.CheckOutcome, portalURL string) string {
	switch o.Kind {
	case models.OutcomeEarlierFound:
		return fmt.Sprintf("I found a time slot %s which is earlier than the one you have! Go to %s and book it first!",
			formatDate(o.Date), portalURL)
	case models.OutcomeNoEarlierFound:
		return fmt.Sprintf("I couldn't find any earlier time slot :( The earliest now is %s. Come back next time!",
			formatDate(o.Date))
	case models.OutcomeNoBookingFound:
		return "Unable to find the appointment. Have you booked one?"
	case models.OutcomeLoginFailed:
		return "Unable to login. Check credentials"
	case models.OutcomePortalUnreachable:
		return "Unable to reach udi.no. Try again later"
	case models.OutcomeCalendarUnreadable:
		return "I couldn't get the UDI's calendar. Please try again later"
	default:
		return "Something went wrong while checking. Please try again later"
	}
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}
