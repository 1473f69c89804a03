package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/victorvsmirnov/udiinformer/internal/auth"
	"github.com/victorvsmirnov/udiinformer/internal/models"
	"github.com/victorvsmirnov/udiinformer/internal/navigator"
	"github.com/victorvsmirnov/udiinformer/internal/notifier"
)

const appDir = ".udiinformer"

// Config represents the application configuration
type Config struct {
	Auth    AuthConfig           `yaml:"auth"`
	Portal  PortalConfig         `yaml:"portal"`
	Browser BrowserConfig        `yaml:"browser"`
	Storage StorageConfig        `yaml:"storage"`
	Monitor MonitorConfig        `yaml:"monitor"`
	Email   notifier.EmailConfig `yaml:"email"`
	Log     LogConfig            `yaml:"log"`
}

// AuthConfig optionally seeds the credential of the default user
type AuthConfig struct {
	User     string `yaml:"user"`
	Username string `yaml:"username" validate:"omitempty,udi_identifier"`
	Password string `yaml:"password"`
}

// PortalConfig describes where the portal lives and how long to wait for it
type PortalConfig struct {
	BaseURL        string           `yaml:"base_url" validate:"required,url"`
	TimeoutSeconds int              `yaml:"timeout_seconds" validate:"min=1,max=300"`
	Landmarks      models.Landmarks `yaml:"landmarks"`
}

// Timeout returns the per-step landmark timeout
func (p PortalConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// BrowserConfig represents Chromium settings
type BrowserConfig struct {
	Headless  bool   `yaml:"headless"`
	UserAgent string `yaml:"user_agent"`
	Width     int    `yaml:"width" validate:"min=0"`
	Height    int    `yaml:"height" validate:"min=0"`
}

// StorageConfig represents the credential database location
type StorageConfig struct {
	Path string `yaml:"path" validate:"required"`
}

// MonitorConfig represents monitoring settings
type MonitorConfig struct {
	Schedule        string `yaml:"schedule" validate:"required"`
	CooldownMinutes int    `yaml:"cooldown_minutes" validate:"min=0"`
}

// Cooldown returns how long an already reported slot stays quiet
func (m MonitorConfig) Cooldown() time.Duration {
	return time.Duration(m.CooldownMinutes) * time.Minute
}

// LogConfig represents logger settings
type LogConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=trace debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=console json"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Auth: AuthConfig{User: "default"},
		Portal: PortalConfig{
			BaseURL:        navigator.DefaultBaseURL,
			TimeoutSeconds: int(navigator.DefaultTimeout / time.Second),
		},
		Browser: BrowserConfig{Headless: true, Width: 1280, Height: 720},
		Storage: StorageConfig{Path: filepath.Join(homeDir, appDir, "bot_status.db")},
		Monitor: MonitorConfig{Schedule: "@every 30m", CooldownMinutes: 60},
		Email:   notifier.EmailConfig{Subject: "UDI appointment check"},
		Log:     LogConfig{Level: "info", Format: "console"},
	}
}

// GetConfigPath finds the configuration file path
func GetConfigPath() string {
	// 1. configs/config.yaml next to the executable
	if execPath, err := os.Executable(); err == nil {
		configPath := filepath.Join(filepath.Dir(execPath), "configs", "config.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
	}

	// 2. configs/config.yaml in the working directory
	configPath := filepath.Join("configs", "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return configPath
	}

	// 3. ~/.udiinformer/config.yaml
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, appDir, "config.yaml")
}

// Load reads the configuration file on top of Default. A missing file is
// not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = GetConfigPath()
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves the configuration to file
func Save(path string, cfg *Config) error {
	if path == "" {
		path = GetConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	// 0600: the file may hold portal and SMTP passwords
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("udi_identifier", func(fl validator.FieldLevel) bool {
		return auth.ValidIdentifier(fl.Field().String())
	})
	return v
}

// Validate checks field constraints of cfg
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
