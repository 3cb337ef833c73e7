package assistant

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

// DefaultAppName names the app created when no WithAppName is given.
const DefaultAppName = "[DEFAULT]"

// App is a registered application handle. Its configuration is fixed at
// InitializeApp time.
type App struct {
	name string
	cfg  Config
	log  *slog.Logger

	mu      sync.Mutex
	deleted bool
	ais     map[string]*AI // keyed by Backend.key()
}

// AppOption customises InitializeApp.
type AppOption func(*appOptions)

type appOptions struct {
	name string
	log  *slog.Logger
}

// WithAppName registers the app under name instead of DefaultAppName.
func WithAppName(name string) AppOption {
	return func(o *appOptions) { o.name = name }
}

// WithAppLogger sets the logger inherited by AI services and models of the app.
func WithAppLogger(log *slog.Logger) AppOption {
	return func(o *appOptions) { o.log = log }
}

var (
	registryMu sync.Mutex
	registry   = make(map[string]*App)
)

// InitializeApp validates cfg and registers an App for it. Initializing the
// same name twice with an identical record returns the existing App.
func InitializeApp(cfg Config, opts ...AppOption) (*App, error) {
	o := appOptions{name: DefaultAppName}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = slog.Default()
	}
	if o.name == "" {
		return nil, fmt.Errorf("%w: empty app name", ErrInvalidConfig)
	}

	if err := cfg.Validate(); err != nil {
		o.log.Debug("config validation failed", "app", o.name, "error", err)
		return nil, fmt.Errorf("initialize app %q: %w", o.name, err)
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if existing, ok := registry[o.name]; ok {
		if existing.cfg == cfg {
			o.log.Debug("app already initialized", "app", o.name)
			return existing, nil
		}
		return nil, fmt.Errorf("%w: %q", ErrDuplicateApp, o.name)
	}

	app := &App{
		name: o.name,
		cfg:  cfg,
		log:  o.log.With("app", o.name),
		ais:  make(map[string]*AI),
	}
	registry[o.name] = app
	app.log.Debug("app initialized", "project_id", cfg.ProjectID, "app_id", cfg.AppID)
	return app, nil
}

// GetApp returns a previously initialized app.
func GetApp(name string) (*App, error) {
	registryMu.Lock()
	defer registryMu.Unlock()
	app, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoApp, name)
	}
	return app, nil
}

// Apps lists the registered apps ordered by name.
func Apps() []*App {
	registryMu.Lock()
	defer registryMu.Unlock()
	out := make([]*App, 0, len(registry))
	for _, app := range registry {
		out = append(out, app)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// DeleteApp unregisters app and drops its AI services. Handles already
// obtained keep working; new GetAI calls on app fail with ErrAppDeleted.
func DeleteApp(app *App) error {
	if app == nil {
		return fmt.Errorf("%w: nil app", ErrNoApp)
	}
	registryMu.Lock()
	if registry[app.name] == app {
		delete(registry, app.name)
	}
	registryMu.Unlock()

	app.mu.Lock()
	defer app.mu.Unlock()
	if app.deleted {
		return fmt.Errorf("%w: %q", ErrAppDeleted, app.name)
	}
	app.deleted = true
	app.ais = nil
	app.log.Debug("app deleted")
	return nil
}

// Name returns the registered name.
func (a *App) Name() string { return a.name }

// Options returns a copy of the configuration record.
func (a *App) Options() Config { return a.cfg }
