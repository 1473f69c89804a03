package checker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/victorvsmirnov/udiinformer/internal/auth"
	"github.com/victorvsmirnov/udiinformer/internal/models"
	"github.com/victorvsmirnov/udiinformer/internal/navigator"
	"github.com/victorvsmirnov/udiinformer/internal/notifier"
)

type memStore struct {
	creds map[string]auth.Credential
	err   error
}

func newMemStore() *memStore {
	return &memStore{creds: map[string]auth.Credential{}}
}

func (m *memStore) Get(_ context.Context, userID string) (auth.Credential, bool, error) {
	if m.err != nil {
		return auth.Credential{}, false, m.err
	}
	c, ok := m.creds[userID]
	return c, ok, nil
}

func (m *memStore) SetIdentifier(_ context.Context, userID, identifier string) error {
	c := m.creds[userID]
	c.Identifier = identifier
	m.creds[userID] = c
	return nil
}

func (m *memStore) SetSecret(_ context.Context, userID, secret string) error {
	c := m.creds[userID]
	c.Secret = secret
	m.creds[userID] = c
	return nil
}

type scriptedRunner struct {
	outcome models.CheckOutcome
	booked  *models.BookedAppointment
	got     []auth.Credential
}

func (r *scriptedRunner) Run(ctx context.Context, cred auth.Credential, l navigator.Listener) models.CheckOutcome {
	r.got = append(r.got, cred)
	if r.booked != nil {
		l.BookingFound(ctx, *r.booked)
	}
	return r.outcome
}

type inbox struct {
	mu   sync.Mutex
	msgs []string
}

func (i *inbox) Notify(_ context.Context, _, text string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.msgs = append(i.msgs, text)
	return nil
}

func newService(store CredentialStore, runner Runner, box *inbox) *Service {
	return New(store, runner, box, "https://my.udi.no", zerolog.Nop())
}

func TestCheckRequiresCredential(t *testing.T) {
	store := newMemStore()
	runner := &scriptedRunner{}
	box := &inbox{}
	svc := newService(store, runner, box)

	_, err := svc.Check(context.Background(), "42")
	assert.ErrorIs(t, err, ErrCredentialMissing)

	store.creds["42"] = auth.Credential{Identifier: "ola@mail.no"}
	_, err = svc.Check(context.Background(), "42")
	assert.ErrorIs(t, err, ErrCredentialMissing)

	assert.Empty(t, runner.got)
	assert.Empty(t, box.msgs)
}

func TestCheckStoreError(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("disk full")
	svc := newService(store, &scriptedRunner{}, &inbox{})

	_, err := svc.Check(context.Background(), "42")
	assert.ErrorContains(t, err, "disk full")
}

func TestCheckReportsMilestones(t *testing.T) {
	store := newMemStore()
	store.creds["42"] = auth.Credential{Identifier: "ola@mail.no", Secret: "pw"}
	booked := models.BookedAppointment{
		Date:      time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC),
		TimeLabel: "09:15",
		DateLabel: "Monday March 4, 2024",
	}
	found := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	runner := &scriptedRunner{outcome: models.EarlierFound(found, booked), booked: &booked}
	box := &inbox{}
	svc := newService(store, runner, box)

	out, err := svc.Check(context.Background(), "42")
	require.NoError(t, err)

	assert.Equal(t, models.OutcomeEarlierFound, out.Kind)
	require.Len(t, runner.got, 1)
	assert.Equal(t, store.creds["42"], runner.got[0])
	assert.Equal(t, []string{
		notifier.StartMessage(),
		notifier.BookingMessage(booked),
		notifier.OutcomeMessage(out, "https://my.udi.no"),
	}, box.msgs)
}

func TestCheckFailureOutcomeIsNotAnError(t *testing.T) {
	store := newMemStore()
	store.creds["42"] = auth.Credential{Identifier: "ola@mail.no", Secret: "pw"}
	runner := &scriptedRunner{outcome: models.Failed(models.OutcomeLoginFailed, errors.New("timeout"))}
	box := &inbox{}
	svc := newService(store, runner, box)

	out, err := svc.Check(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeLoginFailed, out.Kind)
	assert.Equal(t, "Unable to login. Check credentials", box.msgs[len(box.msgs)-1])
}

func TestSetIdentifier(t *testing.T) {
	store := newMemStore()
	svc := newService(store, &scriptedRunner{}, &inbox{})
	ctx := context.Background()

	err := svc.SetIdentifier(ctx, "42", "not-an-email")
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
	assert.ErrorContains(t, err, "not-an-email")
	assert.Empty(t, store.creds)

	require.NoError(t, svc.SetIdentifier(ctx, "42", "ola@mail.no"))
	id, ok, err := svc.Identifier(ctx, "42")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ola@mail.no", id)
}

func TestSetSecret(t *testing.T) {
	store := newMemStore()
	svc := newService(store, &scriptedRunner{}, &inbox{})
	ctx := context.Background()

	assert.ErrorIs(t, svc.SetSecret(ctx, "42", ""), ErrInvalidSecret)
	require.NoError(t, svc.SetSecret(ctx, "42", "pw"))
	assert.Equal(t, "pw", store.creds["42"].Secret)

	_, ok, err := svc.Identifier(ctx, "42")
	require.NoError(t, err)
	assert.False(t, ok)
}
