package notifier

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

// Notifier delivers a text message to a user
type Notifier interface {
	Notify(ctx context.Context, userID, text string) error
}

// ConsoleNotifier prints messages to a writer, one per line
type ConsoleNotifier struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsoleNotifier creates a ConsoleNotifier writing to out
func NewConsoleNotifier(out io.Writer) *ConsoleNotifier {
	return &ConsoleNotifier{out: out}
}

func (c *ConsoleNotifier) Notify(_ context.Context, userID, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.out, "[%s] %s\n", userID, text)
	return err
}

// Multi sends every message to all of its notifiers and joins their errors
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, userID, text string) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, userID, text); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
