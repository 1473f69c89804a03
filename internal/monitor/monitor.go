// Package monitor runs unattended checks for every stored user on a cron
// schedule and alerts once per newly found earlier slot.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/victorvsmirnov/udiinformer/internal/checker"
	"github.com/victorvsmirnov/udiinformer/internal/models"
	"github.com/victorvsmirnov/udiinformer/internal/notifier"
)

// Checker runs a single check for a user
type Checker interface {
	Check(ctx context.Context, userID string) (models.CheckOutcome, error)
}

// UserLister lists users with stored credentials
type UserLister interface {
	Users(ctx context.Context) ([]string, error)
}

// Config configures a Monitor
type Config struct {
	Schedule  string
	Cooldown  time.Duration
	PortalURL string
}

// Monitor manages the periodic check job
type Monitor struct {
	cron    *cron.Cron
	checker Checker
	users   UserLister
	alert   notifier.Notifier
	cfg     Config
	log     zerolog.Logger
	now     func() time.Time

	// last alert per user and slot date
	notified map[string]time.Time
	mu       sync.Mutex
}

// New creates a Monitor. alert receives one message per earlier slot.
func New(c Checker, users UserLister, alert notifier.Notifier, cfg Config, log zerolog.Logger) *Monitor {
	log = log.With().Str("component", "monitor").Logger()
	return &Monitor{
		cron: cron.New(cron.WithChain(
			cron.Recover(cron.PrintfLogger(&log)),
			cron.SkipIfStillRunning(cron.PrintfLogger(&log)),
		)),
		checker:  c,
		users:    users,
		alert:    alert,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
		notified: make(map[string]time.Time),
	}
}

// Start schedules the job and starts the cron loop. Checks run with ctx.
func (m *Monitor) Start(ctx context.Context) error {
	if _, err := m.cron.AddFunc(m.cfg.Schedule, func() { m.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("invalid monitor schedule %q: %w", m.cfg.Schedule, err)
	}
	m.cron.Start()
	m.log.Info().Str("schedule", m.cfg.Schedule).Msg("monitor started")
	return nil
}

// Stop waits for a running check to finish and stops the scheduler
func (m *Monitor) Stop() {
	<-m.cron.Stop().Done()
	m.log.Info().Msg("monitor stopped")
}

// RunOnce checks every stored user. Users are checked concurrently; each
// check uses its own browser session.
func (m *Monitor) RunOnce(ctx context.Context) {
	users, err := m.users.Users(ctx)
	if err != nil {
		m.log.Error().Err(err).Msg("failed to list users")
		return
	}

	var wg sync.WaitGroup
	for _, userID := range users {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			m.checkUser(ctx, userID)
		}(userID)
	}
	wg.Wait()
}

func (m *Monitor) checkUser(ctx context.Context, userID string) {
	log := m.log.With().Str("user", userID).Logger()

	outcome, err := m.checker.Check(ctx, userID)
	if errors.Is(err, checker.ErrCredentialMissing) {
		log.Debug().Msg("skipping user without credentials")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("check failed to start")
		return
	}
	if outcome.Kind != models.OutcomeEarlierFound || m.alert == nil {
		return
	}
	if !m.shouldAlert(userID, outcome.Date) {
		log.Debug().Time("date", outcome.Date).Msg("slot already reported")
		return
	}

	if err := m.alert.Notify(ctx, userID, notifier.OutcomeMessage(outcome, m.cfg.PortalURL)); err != nil {
		log.Error().Err(err).Msg("failed to send alert")
		m.forget(userID, outcome.Date)
		return
	}
	log.Info().Time("date", outcome.Date).Msg("alert sent")
}

func (m *Monitor) shouldAlert(userID string, date time.Time) bool {
	key := alertKey(userID, date)
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	if last, ok := m.notified[key]; ok && now.Sub(last) < m.cfg.Cooldown {
		return false
	}
	m.notified[key] = now
	return true
}

func (m *Monitor) forget(userID string, date time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.notified, alertKey(userID, date))
}

func alertKey(userID string, date time.Time) string {
	return userID + "|" + date.Format("2006-01-02")
}
