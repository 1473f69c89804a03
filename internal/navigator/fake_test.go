package navigator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/victorvsmirnov/udiinformer/internal/models"
	"github.com/victorvsmirnov/udiinformer/internal/portal"
)

type fakeMonth struct {
	header string
	markup string
}

// fakePortal is a scripted portal: landmarks are present unless listed in
// missing, texts answer ReadText, and months are served in order as the
// next-month control is clicked.
type fakePortal struct {
	mu sync.Mutex

	lm      models.Landmarks
	missing map[string]bool
	texts   map[string]string
	months  []fakeMonth
	current int
	panicOn string
	openErr error

	calls    []string
	sessions int
	closed   int
}

func newFakePortal() *fakePortal {
	lm := models.DefaultLandmarks()
	return &fakePortal{
		lm:      lm,
		missing: map[string]bool{},
		texts: map[string]string{
			lm.BookedDate: "Monday March 4, 2024",
			lm.BookedTime: " 09:15 ",
		},
	}
}

func (f *fakePortal) NewSession(context.Context) (portal.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.openErr != nil {
		return nil, f.openErr
	}
	f.sessions++
	return f, nil
}

func (f *fakePortal) record(op, arg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op+" "+arg)
	if f.panicOn != "" && arg == f.panicOn {
		panic("scripted failure")
	}
}

func (f *fakePortal) Navigate(_ context.Context, url string) error {
	f.record("navigate", url)
	return nil
}

func (f *fakePortal) WaitFor(_ context.Context, selector string, timeout time.Duration) error {
	f.record("wait", selector)
	if f.missing[selector] {
		return fmt.Errorf("%w: %s after %s", portal.ErrTimeout, selector, timeout)
	}
	return nil
}

func (f *fakePortal) FillText(_ context.Context, selector, _ string) error {
	f.record("fill", selector)
	return nil
}

func (f *fakePortal) Click(_ context.Context, selector string) error {
	f.record("click", selector)
	if f.missing[selector] {
		return fmt.Errorf("%w: no element %s", portal.ErrTransport, selector)
	}
	if selector == f.lm.NextMonth {
		f.mu.Lock()
		f.current++
		f.mu.Unlock()
	}
	return nil
}

func (f *fakePortal) ReadText(_ context.Context, selector string) (string, error) {
	f.record("read", selector)
	if selector == f.lm.MonthHeader {
		m, err := f.month()
		return m.header, err
	}
	if t, ok := f.texts[selector]; ok {
		return t, nil
	}
	return "", fmt.Errorf("%w: no element %s", portal.ErrTransport, selector)
}

func (f *fakePortal) ReadMarkup(_ context.Context, selector string) (string, error) {
	f.record("markup", selector)
	m, err := f.month()
	return m.markup, err
}

func (f *fakePortal) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func (f *fakePortal) month() (fakeMonth, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current >= len(f.months) {
		return fakeMonth{}, errors.New("calendar ran out of months")
	}
	return f.months[f.current], nil
}

// called reports whether any recorded call starts with op and targets selector
func (f *fakePortal) called(op, selector string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == op+" "+selector {
			return true
		}
	}
	return false
}

func (f *fakePortal) count(op, selector string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == op+" "+selector {
			n++
		}
	}
	return n
}

// closedMonth renders a month page on which every day is unavailable
func closedMonth(header string) fakeMonth {
	var b strings.Builder
	b.WriteString("<tr><td></td>")
	for d := 1; d <= 28; d++ {
		if d%7 == 0 {
			b.WriteString("</tr><tr>")
		}
		fmt.Fprintf(&b, "<td>%dNo available appointments</td>", d)
	}
	b.WriteString("</tr>")
	return fakeMonth{header: header, markup: b.String()}
}

// openMonth renders a month page with the given day open
func openMonth(header string, day int) fakeMonth {
	var b strings.Builder
	b.WriteString("<tr><td></td>")
	for d := 1; d <= 28; d++ {
		if d == day {
			fmt.Fprintf(&b, "<td><a href=\"#\">%d</a></td>", d)
			continue
		}
		fmt.Fprintf(&b, "<td>%dNo available appointments</td>", d)
	}
	b.WriteString("</tr>")
	return fakeMonth{header: header, markup: b.String()}
}
