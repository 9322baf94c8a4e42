// Package config loads the client settings from the environment and manages
// the state directory holding the persisted session.
package config

import (
	"os"
	"path/filepath"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	// AppName is the application directory name under XDG config.
	AppName = "taskdeck"

	// SessionFile is the persisted session filename.
	SessionFile = "session.json"
)

// Config holds backend settings and state paths.
type Config struct {
	// BackendURL is the base URL of the hosted backend project.
	BackendURL string `env:"TASKDECK_BACKEND_URL" validate:"required,url"`

	// AnonKey is the public API key sent with every request.
	AnonKey string `env:"TASKDECK_ANON_KEY" validate:"required"`

	// LogLevel controls the zap logger level.
	LogLevel string `env:"TASKDECK_LOG_LEVEL" validate:"loglevel"`

	// ResetRedirectURL is the fixed, pre-registered page the password-reset
	// email links back to.
	ResetRedirectURL string `env:"TASKDECK_RESET_REDIRECT_URL" validate:"url"`

	// StateDir is the directory holding the session file.
	StateDir string `env:"TASKDECK_STATE_DIR"`

	// Quiet suppresses informational output. Set by the dispatcher.
	Quiet bool

	// Debug bumps the log level to debug. Set by the dispatcher.
	Debug bool
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	allowedLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
	}

	return allowedLogLevels[fieldLevel.Field().String()]
}

func validate(cfg *Config) error {
	v := validator.New()

	if err := v.RegisterValidation("loglevel", validateLogLevel); err != nil {
		return err
	}

	return v.Struct(cfg)
}

// InitOption is a functional option for New.
type InitOption func(*initOptions)

type initOptions struct {
	skipDotenv bool
	stateDir   string
}

// WithSkipDotenv disables loading a .env file (used by tests).
func WithSkipDotenv(skip bool) InitOption {
	return func(options *initOptions) {
		options.skipDotenv = skip
	}
}

// WithStateDir overrides the state directory (used by tests).
func WithStateDir(dir string) InitOption {
	return func(options *initOptions) {
		options.stateDir = dir
	}
}

// New builds a Config from defaults overlaid with environment variables, and
// validates the result. A .env file in the working directory is loaded first
// when present.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	if !options.skipDotenv {
		// Missing .env is the normal case; anything found just feeds the
		// env.Parse below.
		_ = godotenv.Load()
	}

	cfg := &Config{
		LogLevel:         "info",
		ResetRedirectURL: "https://taskdeck.app/reset-password",
		StateDir:         DefaultStateDir(),
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if options.stateDir != "" {
		cfg.StateDir = options.stateDir
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DefaultStateDir returns the default state directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultStateDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// SessionPath returns the path to the persisted session file.
func (c *Config) SessionPath() string {
	return filepath.Join(c.StateDir, SessionFile)
}

// EnsureStateDir creates the state directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureStateDir() error {
	return os.MkdirAll(c.StateDir, 0700)
}

// HasSession checks if a persisted session file exists.
func (c *Config) HasSession() bool {
	_, err := os.Stat(c.SessionPath())
	return err == nil
}

// RemoveSession deletes the session file.
func (c *Config) RemoveSession() error {
	return os.Remove(c.SessionPath())
}
