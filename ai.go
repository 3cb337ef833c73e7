package assistant

import (
	"context"
	"fmt"
	"iter"
	"log/slog"

	"google.golang.org/genai"
)

// modelsAPI is the slice of genai.Models the package calls. It lets tests
// swap the SDK for a fake.
type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateContentStream(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]
	CountTokens(ctx context.Context, model string, contents []*genai.Content, config *genai.CountTokensConfig) (*genai.CountTokensResponse, error)
}

// AI is the service handle for one app bound to one backend.
type AI struct {
	app     *App
	backend Backend
	client  *genai.Client
	models  modelsAPI
	log     *slog.Logger
}

// AIOption customises GetAI.
type AIOption func(*aiOptions)

type aiOptions struct {
	backend Backend
	http    *genai.HTTPOptions
}

// WithBackend selects the backend. GoogleAIBackend is the default.
func WithBackend(b Backend) AIOption {
	return func(o *aiOptions) { o.backend = b }
}

// WithHTTPOptions overrides base URL, API version, headers or timeout of the
// underlying client.
func WithHTTPOptions(h genai.HTTPOptions) AIOption {
	return func(o *aiOptions) { o.http = &h }
}

// GetAI returns the AI service of app for the selected backend, creating the
// SDK client on first use. Later calls with an equal backend return the same
// handle; WithHTTPOptions only applies to that first call.
func GetAI(ctx context.Context, app *App, opts ...AIOption) (*AI, error) {
	if app == nil {
		return nil, fmt.Errorf("%w: nil app", ErrNoApp)
	}
	o := aiOptions{backend: GoogleAIBackend{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.backend == nil {
		o.backend = GoogleAIBackend{}
	}

	app.mu.Lock()
	defer app.mu.Unlock()
	if app.deleted {
		return nil, fmt.Errorf("%w: %q", ErrAppDeleted, app.name)
	}
	if ai, ok := app.ais[o.backend.key()]; ok {
		return ai, nil
	}

	cc := o.backend.clientConfig(app.cfg)
	if o.http != nil {
		cc.HTTPOptions = *o.http
	}
	app.log.Debug("creating genai client", "backend", o.backend.String())
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		app.log.Debug("genai client creation failed", "backend", o.backend.String(), "error", err)
		return nil, fmt.Errorf("get AI (%s): %w", o.backend, err)
	}

	ai := &AI{
		app:     app,
		backend: o.backend,
		client:  client,
		models:  client.Models,
		log:     app.log.With("backend", o.backend.String()),
	}
	app.ais[o.backend.key()] = ai
	return ai, nil
}

// App returns the app the service belongs to.
func (a *AI) App() *App { return a.app }

// Backend returns the backend binding.
func (a *AI) Backend() Backend { return a.backend }

// Client exposes the SDK client for calls this package does not wrap.
func (a *AI) Client() *genai.Client { return a.client }
