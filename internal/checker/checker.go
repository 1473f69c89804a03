// Package checker is the entry point used by commands: it guards the stored
// credential, runs one navigation and reports the milestones to the user.
package checker

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/victorvsmirnov/udiinformer/internal/auth"
	"github.com/victorvsmirnov/udiinformer/internal/models"
	"github.com/victorvsmirnov/udiinformer/internal/navigator"
	"github.com/victorvsmirnov/udiinformer/internal/notifier"
)

var (
	ErrCredentialMissing = errors.New("username and password are not set")
	ErrInvalidIdentifier = errors.New("invalid username")
	ErrInvalidSecret     = errors.New("invalid password")
)

// CredentialStore is the per-user credential storage
type CredentialStore interface {
	Get(ctx context.Context, userID string) (auth.Credential, bool, error)
	SetIdentifier(ctx context.Context, userID, identifier string) error
	SetSecret(ctx context.Context, userID, secret string) error
}

// Runner performs one navigation with a credential
type Runner interface {
	Run(ctx context.Context, cred auth.Credential, l navigator.Listener) models.CheckOutcome
}

// Service ties the credential store, the navigator and the notifier together
type Service struct {
	store     CredentialStore
	runner    Runner
	notify    notifier.Notifier
	portalURL string
	log       zerolog.Logger
}

// New creates a Service. portalURL is quoted in the message that announces an
// earlier slot.
func New(store CredentialStore, runner Runner, notify notifier.Notifier, portalURL string, log zerolog.Logger) *Service {
	return &Service{
		store:     store,
		runner:    runner,
		notify:    notify,
		portalURL: portalURL,
		log:       log.With().Str("component", "checker").Logger(),
	}
}

// SetIdentifier validates and stores the login e-mail of userID
func (s *Service) SetIdentifier(ctx context.Context, userID, identifier string) error {
	if !auth.ValidIdentifier(identifier) {
		return fmt.Errorf("%w %s", ErrInvalidIdentifier, identifier)
	}
	if err := s.store.SetIdentifier(ctx, userID, identifier); err != nil {
		return err
	}
	s.log.Info().Str("user", userID).Str("identifier", identifier).Msg("username set")
	return nil
}

// SetSecret validates and stores the password of userID
func (s *Service) SetSecret(ctx context.Context, userID, secret string) error {
	if !auth.ValidSecret(secret) {
		return ErrInvalidSecret
	}
	if err := s.store.SetSecret(ctx, userID, secret); err != nil {
		return err
	}
	s.log.Info().Str("user", userID).Msg("password set")
	return nil
}

// Identifier returns the stored login e-mail of userID, if any
func (s *Service) Identifier(ctx context.Context, userID string) (string, bool, error) {
	cred, ok, err := s.store.Get(ctx, userID)
	if err != nil || !ok || cred.Identifier == "" {
		return "", false, err
	}
	return cred.Identifier, true, nil
}

// Check runs one availability check for userID. The returned error is only
// set when the check could not start; portal problems are reported through
// the outcome.
func (s *Service) Check(ctx context.Context, userID string) (models.CheckOutcome, error) {
	cred, ok, err := s.store.Get(ctx, userID)
	if err != nil {
		return models.CheckOutcome{}, err
	}
	if !ok || !cred.Valid() {
		return models.CheckOutcome{}, ErrCredentialMissing
	}

	log := s.log.With().
		Str("check_id", uuid.NewString()).
		Str("user", userID).
		Logger()
	log.Info().Str("identifier", cred.Identifier).Msg("check started")
	s.send(ctx, log, userID, notifier.StartMessage())

	outcome := s.runner.Run(ctx, cred, &progress{svc: s, log: log, userID: userID})

	log.Info().
		Stringer("outcome", outcome.Kind).
		Time("date", outcome.Date).
		AnErr("cause", outcome.Err).
		Msg("check finished")
	s.send(ctx, log, userID, notifier.OutcomeMessage(outcome, s.portalURL))
	return outcome, nil
}

func (s *Service) send(ctx context.Context, log zerolog.Logger, userID, text string) {
	if s.notify == nil {
		return
	}
	if err := s.notify.Notify(ctx, userID, text); err != nil {
		log.Warn().Err(err).Msg("failed to notify user")
	}
}

// progress forwards navigator milestones to the user
type progress struct {
	svc    *Service
	log    zerolog.Logger
	userID string
}

func (p *progress) BookingFound(ctx context.Context, booked models.BookedAppointment) {
	p.svc.send(ctx, p.log, p.userID, notifier.BookingMessage(booked))
}
