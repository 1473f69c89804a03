// Package navigator drives a portal session from login to the appointment
// calendar and decides whether an earlier slot than the booked one exists.
package navigator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/victorvsmirnov/udiinformer/internal/auth"
	"github.com/victorvsmirnov/udiinformer/internal/models"
	"github.com/victorvsmirnov/udiinformer/internal/portal"
	"github.com/victorvsmirnov/udiinformer/internal/scraper"
)

const (
	// MaxSearchMonths bounds the calendar search
	MaxSearchMonths = 12
	DefaultBaseURL  = "https://my.udi.no"
	DefaultTimeout  = 10 * time.Second
)

// ErrSearchExhausted is folded into OutcomeCalendarUnreadable when no month
// within the search horizon had an open day.
var ErrSearchExhausted = errors.New("no available day within search horizon")

// GridParser converts calendar table markup into rows of cell text
type GridParser func(markup string) ([][]string, error)

// Listener receives progress of a running check. Calls happen on the
// goroutine running the check.
type Listener interface {
	BookingFound(ctx context.Context, booked models.BookedAppointment)
}

// Config holds the portal specifics of a Navigator
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	Landmarks models.Landmarks
	// ParseGrid defaults to scraper.ParseGrid
	ParseGrid GridParser
}

// Navigator runs checks. It is safe for concurrent use: each Run takes its
// own session from the factory.
type Navigator struct {
	sessions portal.SessionFactory
	cfg      Config
	log      zerolog.Logger
}

// New creates a Navigator, filling unset config with defaults
func New(sessions portal.SessionFactory, cfg Config, log zerolog.Logger) *Navigator {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.ParseGrid == nil {
		cfg.ParseGrid = scraper.ParseGrid
	}
	cfg.Landmarks = cfg.Landmarks.Merge(models.DefaultLandmarks())

	return &Navigator{
		sessions: sessions,
		cfg:      cfg,
		log:      log.With().Str("component", "navigator").Logger(),
	}
}

// Run performs one check with cred and returns its terminal outcome.
// The session is released on every path. l may be nil.
func (n *Navigator) Run(ctx context.Context, cred auth.Credential, l Listener) models.CheckOutcome {
	log := n.log.With().Str("identifier", cred.Identifier).Logger()

	sess, err := n.sessions.NewSession(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to open browser session")
		return models.Failed(models.OutcomePortalUnreachable, err)
	}
	defer func() {
		if err := sess.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close browser session")
		}
	}()

	c := &check{cfg: n.cfg, page: sess, log: log}

	if err := c.step(StateStart, func() error { return c.openHome(ctx) }); err != nil {
		return c.stop(StateStart, models.OutcomePortalUnreachable, err)
	}
	if err := c.step(StateLoggingIn, func() error { return c.login(ctx, cred) }); err != nil {
		return c.stop(StateLoggingIn, models.OutcomeLoginFailed, err)
	}
	if err := c.step(StateApplicationSelected, func() error { return c.selectApplication(ctx) }); err != nil {
		return c.stop(StateApplicationSelected, models.OutcomeNoBookingFound, err)
	}

	var booked models.BookedAppointment
	if err := c.step(StateBookingRead, func() (err error) {
		booked, err = c.readBooking(ctx)
		return err
	}); err != nil {
		return c.stop(StateBookingRead, models.OutcomeNoBookingFound, err)
	}
	log.Info().
		Str("date", booked.DateLabel).
		Str("time", booked.TimeLabel).
		Msg("existing booking found")
	if l != nil {
		l.BookingFound(ctx, booked)
	}

	outcome := c.search(ctx, booked)
	if outcome.Booked == nil {
		outcome.Booked = &booked
	}
	return outcome
}

// check is the state of one Run
type check struct {
	cfg  Config
	page portal.Page
	log  zerolog.Logger
}

// step runs fn as state s, converting a panic into an error
func (c *check) step(s State, fn func() error) (err error) {
	c.log.Debug().Stringer("state", s).Msg("entering state")
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: unexpected panic: %v", s, r)
		}
	}()
	return fn()
}

func (c *check) stop(s State, kind models.OutcomeKind, err error) models.CheckOutcome {
	c.log.Warn().
		Err(err).
		Stringer("state", s).
		Stringer("outcome", kind).
		Msg("check stopped")
	return models.Failed(kind, err)
}

func (c *check) openHome(ctx context.Context) error {
	if err := c.page.Navigate(ctx, c.cfg.BaseURL); err != nil {
		return fmt.Errorf("failed to open %s: %w", c.cfg.BaseURL, err)
	}
	if err := c.page.WaitFor(ctx, c.cfg.Landmarks.HomeReady, c.cfg.Timeout); err != nil {
		return fmt.Errorf("home page not ready: %w", err)
	}
	return nil
}

func (c *check) login(ctx context.Context, cred auth.Credential) error {
	lm := c.cfg.Landmarks
	if err := c.page.FillText(ctx, lm.IdentifierInput, cred.Identifier); err != nil {
		return fmt.Errorf("failed to enter username: %w", err)
	}
	if err := c.page.FillText(ctx, lm.SecretInput, cred.Secret); err != nil {
		return fmt.Errorf("failed to enter password: %w", err)
	}
	if err := c.page.Click(ctx, lm.LoginSubmit); err != nil {
		return fmt.Errorf("failed to submit login form: %w", err)
	}
	if err := c.page.WaitFor(ctx, lm.ApplicationLink, c.cfg.Timeout); err != nil {
		return fmt.Errorf("application list not shown: %w", err)
	}
	return nil
}

func (c *check) selectApplication(ctx context.Context) error {
	lm := c.cfg.Landmarks
	if err := c.page.Click(ctx, lm.ApplicationLink); err != nil {
		return fmt.Errorf("failed to open application: %w", err)
	}
	if err := c.page.WaitFor(ctx, lm.ChangeAppointment, c.cfg.Timeout); err != nil {
		return fmt.Errorf("change appointment control not shown: %w", err)
	}
	return nil
}

func (c *check) readBooking(ctx context.Context) (models.BookedAppointment, error) {
	lm := c.cfg.Landmarks
	dateText, err := c.page.ReadText(ctx, lm.BookedDate)
	if err != nil {
		return models.BookedAppointment{}, fmt.Errorf("failed to read booked date: %w", err)
	}
	timeText, err := c.page.ReadText(ctx, lm.BookedTime)
	if err != nil {
		return models.BookedAppointment{}, fmt.Errorf("failed to read booked time: %w", err)
	}
	date, err := scraper.ParseBookedDate(dateText)
	if err != nil {
		return models.BookedAppointment{}, err
	}
	return models.BookedAppointment{
		Date:      date,
		TimeLabel: strings.TrimSpace(timeText),
		DateLabel: strings.TrimSpace(dateText),
	}, nil
}

// search walks the calendar month by month and stops at the first month
// that has any open day, earlier than the booking or not.
func (c *check) search(ctx context.Context, booked models.BookedAppointment) models.CheckOutcome {
	if err := c.step(StateCalendarSearch, func() error {
		return c.page.Click(ctx, c.cfg.Landmarks.ChangeAppointment)
	}); err != nil {
		return c.stop(StateCalendarSearch, models.OutcomeCalendarUnreadable, err)
	}

	for i := 0; i < MaxSearchMonths; i++ {
		var (
			page  models.MonthPage
			avail models.Availability
			date  time.Time
		)
		err := c.step(StateCalendarSearch, func() error {
			var err error
			if page, err = c.readMonth(ctx); err != nil {
				return err
			}
			if avail = scraper.ScanPage(page); !avail.Found() {
				return nil
			}
			date, err = scraper.Resolve(page.Month, avail.Day)
			return err
		})
		if err != nil {
			return c.stop(StateCalendarSearch, models.OutcomeCalendarUnreadable, err)
		}

		c.log.Debug().
			Int("page", i+1).
			Stringer("month", page.Month).
			Int("day", avail.Day).
			Msg("calendar month scanned")

		if avail.Found() {
			if scraper.IsEarlier(date, booked.Date) {
				c.log.Info().Time("date", date).Msg("earlier slot found")
				return models.EarlierFound(date, booked)
			}
			c.log.Info().Time("date", date).Msg("no earlier slot")
			return models.NoEarlierFound(date, booked)
		}

		if i == MaxSearchMonths-1 {
			break
		}
		if err := c.step(StateCalendarSearch, func() error {
			return c.page.Click(ctx, c.cfg.Landmarks.NextMonth)
		}); err != nil {
			return c.stop(StateCalendarSearch, models.OutcomeCalendarUnreadable,
				fmt.Errorf("failed to open next month: %w", err))
		}
	}

	return c.stop(StateCalendarSearch, models.OutcomeCalendarUnreadable, ErrSearchExhausted)
}

func (c *check) readMonth(ctx context.Context) (models.MonthPage, error) {
	lm := c.cfg.Landmarks
	if err := c.page.WaitFor(ctx, lm.CalendarReady, c.cfg.Timeout); err != nil {
		return models.MonthPage{}, fmt.Errorf("calendar not shown: %w", err)
	}
	header, err := c.page.ReadText(ctx, lm.MonthHeader)
	if err != nil {
		return models.MonthPage{}, fmt.Errorf("failed to read month header: %w", err)
	}
	month, err := scraper.ParseMonthHeader(header)
	if err != nil {
		return models.MonthPage{}, err
	}
	markup, err := c.page.ReadMarkup(ctx, lm.CalendarTable)
	if err != nil {
		return models.MonthPage{}, fmt.Errorf("failed to read calendar table: %w", err)
	}
	grid, err := c.cfg.ParseGrid(markup)
	if err != nil {
		return models.MonthPage{}, err
	}
	return models.MonthPage{Month: month, Grid: grid}, nil
}
