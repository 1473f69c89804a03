package models

// Landmarks are the CSS selectors the navigator waits on, reads from and
// clicks. They follow the portal markup and can be overridden in config when
// the portal layout changes.
type Landmarks struct {
	HomeReady         string `yaml:"home_ready"`
	IdentifierInput   string `yaml:"identifier_input"`
	SecretInput       string `yaml:"secret_input"`
	LoginSubmit       string `yaml:"login_submit"`
	ApplicationLink   string `yaml:"application_link"`
	ChangeAppointment string `yaml:"change_appointment"`
	BookedDate        string `yaml:"booked_date"`
	BookedTime        string `yaml:"booked_time"`
	CalendarReady     string `yaml:"calendar_ready"`
	MonthHeader       string `yaml:"month_header"`
	CalendarTable     string `yaml:"calendar_table"`
	NextMonth         string `yaml:"next_month"`
}

const (
	bookingBox      = "#root > div > main > div > div > div > div:nth-child(5) > div:nth-child(1)"
	reservationBase = "#ctl00_BodyRegion_PageRegion_MainRegion_appointmentReservation"
)

// DefaultLandmarks returns the selectors matching the current my.udi.no markup
func DefaultLandmarks() Landmarks {
	return Landmarks{
		HomeReady:         "#api > div > div.entry > div:nth-child(1) > label",
		IdentifierInput:   "#logonIdentifier",
		SecretInput:       "#password",
		LoginSubmit:       "#next",
		ApplicationLink:   "#root > div > div:nth-child(9) > div > div > div.ApplicationList__table-wrapper___1g7-a > table > tbody > tr > td.ApplicationList__white-space-nowrap___1g7-a > a",
		ChangeAppointment: bookingBox + " > div.book > div > button",
		BookedDate:        bookingBox + " > div.box.mb-1 > div > div > h3",
		BookedTime:        bookingBox + " > div.box.mb-1 > div > div > p",
		CalendarReady:     reservationBase + "_btnCancel",
		MonthHeader:       reservationBase + "_appointmentCalendar_pnlCalendarTop > div > div.col-xs-12.col-sm-pull-4.col-sm-4.p-x-0.month.text-xs-center > h2",
		CalendarTable:     reservationBase + "_appointmentCalendar_ccCalendar > tbody",
		NextMonth:         reservationBase + "_appointmentCalendar_btnNext",
	}
}

// Merge returns l with every empty field taken from defaults
func (l Landmarks) Merge(defaults Landmarks) Landmarks {
	fill := func(v *string, d string) {
		if *v == "" {
			*v = d
		}
	}
	fill(&l.HomeReady, defaults.HomeReady)
	fill(&l.IdentifierInput, defaults.IdentifierInput)
	fill(&l.SecretInput, defaults.SecretInput)
	fill(&l.LoginSubmit, defaults.LoginSubmit)
	fill(&l.ApplicationLink, defaults.ApplicationLink)
	fill(&l.ChangeAppointment, defaults.ChangeAppointment)
	fill(&l.BookedDate, defaults.BookedDate)
	fill(&l.BookedTime, defaults.BookedTime)
	fill(&l.CalendarReady, defaults.CalendarReady)
	fill(&l.MonthHeader, defaults.MonthHeader)
	fill(&l.CalendarTable, defaults.CalendarTable)
	fill(&l.NextMonth, defaults.NextMonth)
	return l
}
