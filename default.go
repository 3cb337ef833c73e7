package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// defaultEnvFiles are read, when present, before the default handle loads its
// configuration.
var defaultEnvFiles = []string{".env.local", ".env"}

var defaultModel = sync.OnceValues(func() (*GenerativeModel, error) {
	return newDefaultModel(context.Background(), slog.Default(), WithEnvFiles(defaultEnvFiles...))
})

// Model returns the process-wide model handle, building it on first call:
// configuration from the environment, the "[DEFAULT]" app, the backend named
// by ASSISTANT_BACKEND and the model named by ASSISTANT_MODEL
// (gemini-2.5-flash unless overridden). Concurrent first callers share one
// construction. A failure, such as a missing FIREBASE_API_KEY, is returned to
// every caller for the life of the process.
func Model() (*GenerativeModel, error) {
	return defaultModel()
}

// MustModel is like Model but panics if the handle cannot be built.
func MustModel() *GenerativeModel {
	m, err := Model()
	if err != nil {
		panic(err)
	}
	return m
}

func newDefaultModel(ctx context.Context, log *slog.Logger, opts ...ConfigOption) (*GenerativeModel, error) {
	cfg, err := LoadConfig(opts...)
	if err != nil {
		return nil, err
	}
	log.Debug("loaded configuration", "config", fmt.Sprintf("%+v", cfg.Redacted()))

	app, err := InitializeApp(cfg, WithAppLogger(log))
	if err != nil {
		return nil, err
	}
	backend, err := ParseBackend(cfg.Backend, cfg.Location)
	if err != nil {
		return nil, err
	}
	ai, err := GetAI(ctx, app, WithBackend(backend))
	if err != nil {
		return nil, err
	}
	return GetGenerativeModel(ai, ModelParams{Model: cfg.Model})
}
