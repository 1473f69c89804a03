package monitor

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/victorvsmirnov/udiinformer/internal/checker"
	"github.com/victorvsmirnov/udiinformer/internal/models"
)

type users []string

func (u users) Users(context.Context) ([]string, error) { return u, nil }

type brokenUsers struct{}

func (brokenUsers) Users(context.Context) ([]string, error) { return nil, errors.New("db locked") }

type fakeChecker struct {
	mu       sync.Mutex
	outcomes map[string]models.CheckOutcome
	errs     map[string]error
	checked  []string
}

func (f *fakeChecker) Check(_ context.Context, userID string) (models.CheckOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checked = append(f.checked, userID)
	return f.outcomes[userID], f.errs[userID]
}

type alerts struct {
	mu   sync.Mutex
	sent map[string]int
	err  error
}

func (a *alerts) Notify(_ context.Context, userID, _ string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.sent[userID]++
	return nil
}

var slot = time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)

func newFixture() (*fakeChecker, *alerts) {
	booked := models.BookedAppointment{Date: time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)}
	fc := &fakeChecker{
		outcomes: map[string]models.CheckOutcome{
			"a": models.EarlierFound(slot, booked),
			"b": models.NoEarlierFound(slot.AddDate(0, 3, 0), booked),
		},
		errs: map[string]error{"c": checker.ErrCredentialMissing},
	}
	return fc, &alerts{sent: map[string]int{}}
}

func TestRunOnceChecksEveryUser(t *testing.T) {
	fc, al := newFixture()
	m := New(fc, users{"a", "b", "c"}, al, Config{Cooldown: time.Hour}, zerolog.Nop())

	m.RunOnce(context.Background())

	sort.Strings(fc.checked)
	assert.Equal(t, []string{"a", "b", "c"}, fc.checked)
	assert.Equal(t, map[string]int{"a": 1}, al.sent)
}

func TestRunOnceRespectsCooldown(t *testing.T) {
	fc, al := newFixture()
	m := New(fc, users{"a"}, al, Config{Cooldown: time.Hour}, zerolog.Nop())
	now := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	m.RunOnce(context.Background())
	m.RunOnce(context.Background())
	assert.Equal(t, 1, al.sent["a"])

	now = now.Add(2 * time.Hour)
	m.RunOnce(context.Background())
	assert.Equal(t, 2, al.sent["a"])
}

func TestFailedAlertIsRetried(t *testing.T) {
	fc, al := newFixture()
	al.err = errors.New("smtp down")
	m := New(fc, users{"a"}, al, Config{Cooldown: time.Hour}, zerolog.Nop())

	m.RunOnce(context.Background())
	al.err = nil
	m.RunOnce(context.Background())

	assert.Equal(t, 1, al.sent["a"])
}

func TestRunOnceUserListError(t *testing.T) {
	fc, al := newFixture()
	m := New(fc, brokenUsers{}, al, Config{}, zerolog.Nop())

	m.RunOnce(context.Background())
	assert.Empty(t, fc.checked)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	fc, al := newFixture()
	m := New(fc, users{}, al, Config{Schedule: "every now and then"}, zerolog.Nop())

	assert.Error(t, m.Start(context.Background()))
}

func TestStartStop(t *testing.T) {
	fc, al := newFixture()
	m := New(fc, users{}, al, Config{Schedule: "@every 1h"}, zerolog.Nop())

	require.NoError(t, m.Start(context.Background()))
	m.Stop()
}
