package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/victorvsmirnov/udiinformer/internal/browser"
	"github.com/victorvsmirnov/udiinformer/internal/checker"
	"github.com/victorvsmirnov/udiinformer/internal/config"
	"github.com/victorvsmirnov/udiinformer/internal/logger"
	"github.com/victorvsmirnov/udiinformer/internal/navigator"
	"github.com/victorvsmirnov/udiinformer/internal/notifier"
	"github.com/victorvsmirnov/udiinformer/internal/store"
)

var (
	configPath string
	userID     string
	headful    bool
)

// app holds what every command needs once config is loaded
type app struct {
	cfg   *config.Config
	log   zerolog.Logger
	store *store.Store
}

var current app

var rootCmd = &cobra.Command{
	Use:          "udiinformer",
	Short:        "Checks my.udi.no for an appointment earlier than the one you booked",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "init-config" {
			return nil
		}
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if headful {
			cfg.Browser.Headless = false
		}
		if userID == "" {
			userID = cfg.Auth.User
		}

		log := logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
		st, err := store.Open(cfg.Storage.Path)
		if err != nil {
			return err
		}
		current = app{cfg: cfg, log: log, store: st}
		return seedCredential(cmd.Context())
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if current.store != nil {
			return current.store.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (searched when empty)")
	rootCmd.PersistentFlags().StringVar(&userID, "user", "", "user the credentials belong to (default from config)")
	rootCmd.PersistentFlags().BoolVar(&headful, "show-browser", false, "run Chromium with a visible window")

	rootCmd.AddCommand(setUsernameCmd, setPasswordCmd, whoamiCmd, forgetCmd, checkCmd, monitorCmd, initConfigCmd)
}

// Execute runs the command tree until done or interrupted
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// seedCredential copies credentials from the config file into the store for
// users that have nothing stored yet.
func seedCredential(ctx context.Context) error {
	a := current.cfg.Auth
	if a.Username == "" && a.Password == "" {
		return nil
	}
	if _, ok, err := current.store.Get(ctx, a.User); err != nil || ok {
		return err
	}
	if a.Username != "" {
		if err := current.store.SetIdentifier(ctx, a.User, a.Username); err != nil {
			return err
		}
	}
	if a.Password != "" {
		if err := current.store.SetSecret(ctx, a.User, a.Password); err != nil {
			return err
		}
	}
	current.log.Info().Str("user", a.User).Msg("credentials seeded from config")
	return nil
}

// newService builds a checker service. The returned close func releases the
// browser engine, if one was started.
func newService(withBrowser bool, notify notifier.Notifier) (*checker.Service, func(), error) {
	cfg := current.cfg
	if !withBrowser {
		return checker.New(current.store, nil, notify, cfg.Portal.BaseURL, current.log), func() {}, nil
	}

	engine, err := browser.Launch(browser.Options{
		Headless:      cfg.Browser.Headless,
		UserAgent:     cfg.Browser.UserAgent,
		Width:         cfg.Browser.Width,
		Height:        cfg.Browser.Height,
		ActionTimeout: 3 * cfg.Portal.Timeout(),
	}, current.log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start browser: %w", err)
	}

	nav := navigator.New(engine, navigator.Config{
		BaseURL:   cfg.Portal.BaseURL,
		Timeout:   cfg.Portal.Timeout(),
		Landmarks: cfg.Portal.Landmarks,
	}, current.log)

	closeFn := func() {
		if err := engine.Close(); err != nil {
			current.log.Warn().Err(err).Msg("failed to close browser")
		}
	}
	return checker.New(current.store, nav, notify, cfg.Portal.BaseURL, current.log), closeFn, nil
}
