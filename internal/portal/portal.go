// Package portal describes the remote page capability the navigator drives.
// The browser package implements it with playwright; tests script it.
package portal

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrTimeout means a landmark did not appear before the wait expired
	ErrTimeout = errors.New("portal: landmark wait timed out")
	// ErrTransport means the remote call itself failed
	ErrTransport = errors.New("portal: transport failure")
)

// Page is the set of blocking operations a check performs on one page
type Page interface {
	Navigate(ctx context.Context, url string) error
	// WaitFor blocks until selector is visible. It returns an error wrapping
	// ErrTimeout when the landmark does not appear within timeout.
	WaitFor(ctx context.Context, selector string, timeout time.Duration) error
	FillText(ctx context.Context, selector, value string) error
	Click(ctx context.Context, selector string) error
	ReadText(ctx context.Context, selector string) (string, error)
	ReadMarkup(ctx context.Context, selector string) (string, error)
}

// Session is an isolated page context owned by a single check
type Session interface {
	Page
	Close() error
}

// SessionFactory hands out a fresh isolated Session per check
type SessionFactory interface {
	NewSession(ctx context.Context) (Session, error)
}
