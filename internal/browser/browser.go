package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/rs/zerolog"

	"github.com/victorvsmirnov/udiinformer/internal/portal"
)

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Options configures the Chromium process and the contexts created from it
type Options struct {
	Headless  bool
	UserAgent string
	Width     int
	Height    int
	// ActionTimeout bounds clicks, fills and reads that do not take an explicit timeout
	ActionTimeout time.Duration
}

// Engine owns one Chromium process. Every check gets its own BrowserContext
// from it, so cookies and storage never leak between users.
type Engine struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	opts    Options
	log     zerolog.Logger

	mu     sync.Mutex
	closed bool
}

// Launch starts playwright and Chromium. Browsers must be installed beforehand:
//
//	go run github.com/playwright-community/playwright-go/cmd/playwright@latest install chromium
func Launch(opts Options, log zerolog.Logger) (*Engine, error) {
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 1280, 720
	}
	if opts.ActionTimeout <= 0 {
		opts.ActionTimeout = 30 * time.Second
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
			"--disable-setuid-sandbox",
		},
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	log.Info().Bool("headless", opts.Headless).Msg("browser started")
	return &Engine{
		pw:      pw,
		browser: browser,
		opts:    opts,
		log:     log.With().Str("component", "browser").Logger(),
	}, nil
}

// NewSession opens an isolated context with a single page
func (e *Engine) NewSession(ctx context.Context) (portal.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return nil, fmt.Errorf("%w: browser engine closed", portal.ErrTransport)
	}

	bctx, err := e.browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(e.opts.UserAgent),
		Viewport: &playwright.Size{
			Width:  e.opts.Width,
			Height: e.opts.Height,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create context: %v", portal.ErrTransport, err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		return nil, fmt.Errorf("%w: failed to create page: %v", portal.ErrTransport, err)
	}
	ms := float64(e.opts.ActionTimeout.Milliseconds())
	page.SetDefaultTimeout(ms)
	page.SetDefaultNavigationTimeout(ms)

	return &session{ctx: bctx, page: page, log: e.log}, nil
}

// Close shuts down Chromium and the playwright driver
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true

	var errs []error
	if e.browser != nil {
		errs = append(errs, e.browser.Close())
	}
	if e.pw != nil {
		errs = append(errs, e.pw.Stop())
	}
	return errors.Join(errs...)
}

// session implements portal.Session on top of one playwright page
type session struct {
	ctx  playwright.BrowserContext
	page playwright.Page
	log  zerolog.Logger
}

func (s *session) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.log.Debug().Str("url", url).Msg("navigate")
	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	return classify(err)
}

func (s *session) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	return classify(err)
}

func (s *session) FillText(ctx context.Context, selector, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return classify(s.page.Locator(selector).First().Fill(value))
}

func (s *session) Click(ctx context.Context, selector string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return classify(s.page.Locator(selector).First().Click())
}

func (s *session) ReadText(ctx context.Context, selector string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, err := s.page.Locator(selector).First().TextContent()
	return text, classify(err)
}

func (s *session) ReadMarkup(ctx context.Context, selector string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	html, err := s.page.Locator(selector).First().InnerHTML()
	return html, classify(err)
}

// Close releases the page and its context
func (s *session) Close() error {
	return errors.Join(s.page.Close(), s.ctx.Close())
}

// classify maps playwright errors onto the portal error kinds
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, playwright.ErrTimeout):
		return fmt.Errorf("%w: %v", portal.ErrTimeout, err)
	default:
		return fmt.Errorf("%w: %v", portal.ErrTransport, err)
	}
}
