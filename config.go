package assistant

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config is the static application record the assistant is registered with.
// Only APIKey comes from the environment by default; the rest are fixed
// project literals that may be overridden for staging projects.
type Config struct {
	APIKey            string `env:"FIREBASE_API_KEY" validate:"required"`
	AuthDomain        string `env:"FIREBASE_AUTH_DOMAIN" validate:"required,hostname"`
	ProjectID         string `env:"FIREBASE_PROJECT_ID" validate:"required"`
	StorageBucket     string `env:"FIREBASE_STORAGE_BUCKET" validate:"required"`
	MessagingSenderID string `env:"FIREBASE_MESSAGING_SENDER_ID" validate:"required,numeric"`
	AppID             string `env:"FIREBASE_APP_ID" validate:"required"`
	MeasurementID     string `env:"FIREBASE_MEASUREMENT_ID" validate:"omitempty,startswith=G-"`

	// Model, Backend and Location select what the process-wide handle binds
	// to. They are optional on the record; empty means the defaults.
	Model    string `env:"ASSISTANT_MODEL"`
	Backend  string `env:"ASSISTANT_BACKEND" validate:"omitempty,oneof=googleai vertexai"`
	Location string `env:"ASSISTANT_LOCATION"`
}

// Fixed project literals.
const (
	DefaultAuthDomain        = "godot4-gamemaker-assistant.firebaseapp.com"
	DefaultProjectID         = "godot4-gamemaker-assistant"
	DefaultStorageBucket     = "godot4-gamemaker-assistant.firebasestorage.app"
	DefaultMessagingSenderID = "705783289749"
	DefaultAppID             = "1:705783289749:web:36e59d03d1e9c54eccc89c"
	DefaultMeasurementID     = "G-P5Z0WYFZWQ"
)

// DefaultConfig returns the project's configuration record without a key.
func DefaultConfig() Config {
	return Config{
		AuthDomain:        DefaultAuthDomain,
		ProjectID:         DefaultProjectID,
		StorageBucket:     DefaultStorageBucket,
		MessagingSenderID: DefaultMessagingSenderID,
		AppID:             DefaultAppID,
		MeasurementID:     DefaultMeasurementID,
		Model:             DefaultModelName,
		Backend:           BackendGoogleAI,
	}
}

// ConfigOption customises LoadConfig.
type ConfigOption func(*loadConfig)

type loadConfig struct {
	envFiles    []string
	environment map[string]string
}

// WithEnvFiles loads the given dotenv files before reading the environment.
// Missing files are skipped; variables already set are not overwritten.
func WithEnvFiles(paths ...string) ConfigOption {
	return func(c *loadConfig) {
		c.envFiles = append(c.envFiles, paths...)
	}
}

// WithEnvironment reads variables from m instead of the process environment.
func WithEnvironment(m map[string]string) ConfigOption {
	return func(c *loadConfig) {
		c.environment = m
	}
}

// LoadConfig overlays environment variables on DefaultConfig. It does not
// validate; InitializeApp does.
func LoadConfig(opts ...ConfigOption) (Config, error) {
	var lc loadConfig
	for _, opt := range opts {
		opt(&lc)
	}

	for _, path := range lc.envFiles {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return Config{}, fmt.Errorf("load env file %s: %w", path, err)
		}
	}

	cfg := DefaultConfig()
	envOpts := env.Options{}
	if lc.environment != nil {
		envOpts.Environment = lc.environment
	}
	if err := env.ParseWithOptions(&cfg, envOpts); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	cfg.Backend = NormalizeBackend(cfg.Backend)
	return cfg, nil
}

// NormalizeBackend folds a backend name to the form Config.Backend and
// ParseBackend expect.
func NormalizeBackend(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the record. A missing key is reported as ErrMissingAPIKey
// so callers can tell it apart from a malformed literal.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Field() == "APIKey" {
			return ErrMissingAPIKey
		}
		fields = append(fields, fe.Field()+" ("+fe.Tag()+")")
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(fields, ", "))
}

// Redacted returns a copy safe to log.
func (c Config) Redacted() Config {
	if n := len(c.APIKey); n > 4 {
		c.APIKey = strings.Repeat("*", n-4) + c.APIKey[n-4:]
	} else if n > 0 {
		c.APIKey = "****"
	}
	return c
}
