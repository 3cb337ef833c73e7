package assistant

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

const testAPIKey = "AIzaSy-test-key-0000"

// resetRegistry empties the app registry for the duration of a test.
func resetRegistry(t *testing.T) {
	t.Helper()
	reset := func() {
		registryMu.Lock()
		registry = make(map[string]*App)
		registryMu.Unlock()
	}
	reset()
	t.Cleanup(reset)
}

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.APIKey = testAPIKey
	return cfg
}

// fakeAI builds an AI service on top of a fake models client.
func fakeAI(models modelsAPI) *AI {
	return &AI{
		backend: GoogleAIBackend{},
		models:  models,
		log:     slog.Default(),
	}
}

func newTestApp(t *testing.T, opts ...AppOption) *App {
	t.Helper()
	app, err := InitializeApp(validConfig(), opts...)
	require.NoError(t, err)
	return app
}
