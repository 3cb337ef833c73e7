package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// DefaultModelName is the hosted model the assistant is built against.
const DefaultModelName = "gemini-2.5-flash"

// GenerationConfig holds per-model sampling defaults. Nil pointers leave the
// service default in place.
type GenerationConfig struct {
	Temperature      *float32
	TopP             *float32
	TopK             *float32
	CandidateCount   int32
	MaxOutputTokens  int32
	StopSequences    []string
	ResponseMIMEType string
}

// ModelParams describes the model a GenerativeModel is bound to.
type ModelParams struct {
	Model             string
	GenerationConfig  *GenerationConfig
	SafetySettings    []*genai.SafetySetting
	SystemInstruction string
	Tools             []*genai.Tool
}

// GenerativeModel is an immutable handle to one hosted model. It is safe for
// concurrent use.
type GenerativeModel struct {
	name    string
	backend Backend
	models  modelsAPI
	config  *genai.GenerateContentConfig
	log     *slog.Logger

	maxRetries int
	backoff    time.Duration
	limiter    *rate.Limiter
}

// ModelOption customises GetGenerativeModel.
type ModelOption func(*GenerativeModel)

// WithRetry retries failed generate calls up to max times with exponential
// backoff starting at backoff.
func WithRetry(max int, backoff time.Duration) ModelOption {
	return func(m *GenerativeModel) {
		m.maxRetries = max
		m.backoff = backoff
	}
}

// WithRateLimit throttles outgoing requests to rps with the given burst.
func WithRateLimit(rps float64, burst int) ModelOption {
	return func(m *GenerativeModel) {
		m.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger replaces the logger inherited from the AI service.
func WithLogger(log *slog.Logger) ModelOption {
	return func(m *GenerativeModel) {
		if log != nil {
			m.log = log
		}
	}
}

// GetGenerativeModel binds ai to the model named in params.
func GetGenerativeModel(ai *AI, params ModelParams, opts ...ModelOption) (*GenerativeModel, error) {
	if ai == nil {
		return nil, fmt.Errorf("get generative model: nil AI service")
	}
	if params.Model == "" {
		return nil, ErrModelMissing
	}
	config, err := params.contentConfig()
	if err != nil {
		return nil, fmt.Errorf("get generative model %q: %w", params.Model, err)
	}

	m := &GenerativeModel{
		name:    params.Model,
		backend: ai.backend,
		models:  ai.models,
		config:  config,
		log:     ai.log,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With("model", m.name)
	m.log.Debug("generative model ready")
	return m, nil
}

func (p ModelParams) contentConfig() (*genai.GenerateContentConfig, error) {
	cfg := &genai.GenerateContentConfig{
		SafetySettings: p.SafetySettings,
		Tools:          p.Tools,
	}
	if p.SystemInstruction != "" {
		cfg.SystemInstruction = genai.NewContentFromText(p.SystemInstruction, genai.RoleUser)
	}
	g := p.GenerationConfig
	if g == nil {
		return cfg, nil
	}
	if g.Temperature != nil && (*g.Temperature < 0 || *g.Temperature > 2) {
		return nil, fmt.Errorf("temperature %v must be between 0.0 and 2.0", *g.Temperature)
	}
	if g.TopP != nil && (*g.TopP < 0 || *g.TopP > 1) {
		return nil, fmt.Errorf("topP %v must be between 0.0 and 1.0", *g.TopP)
	}
	if g.TopK != nil && *g.TopK <= 0 {
		return nil, fmt.Errorf("topK %v must be greater than 0", *g.TopK)
	}
	if g.MaxOutputTokens < 0 {
		return nil, fmt.Errorf("maxOutputTokens %d must not be negative", g.MaxOutputTokens)
	}
	cfg.Temperature = g.Temperature
	cfg.TopP = g.TopP
	cfg.TopK = g.TopK
	cfg.CandidateCount = g.CandidateCount
	cfg.MaxOutputTokens = g.MaxOutputTokens
	cfg.StopSequences = g.StopSequences
	cfg.ResponseMIMEType = g.ResponseMIMEType
	return cfg, nil
}

// Name returns the model identifier.
func (m *GenerativeModel) Name() string { return m.name }

// Backend returns the backend the model routes through.
func (m *GenerativeModel) Backend() Backend { return m.backend }

// GenerateContent sends a single user turn made of parts.
func (m *GenerativeModel) GenerateContent(ctx context.Context, parts ...*genai.Part) (*genai.GenerateContentResponse, error) {
	if len(parts) == 0 {
		return nil, ErrEmptyPrompt
	}
	return m.generate(ctx, []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, m.config)
}

// GenerateText is GenerateContent for a plain text prompt, returning the text
// of the first candidate.
func (m *GenerativeModel) GenerateText(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", ErrEmptyPrompt
	}
	resp, err := m.GenerateContent(ctx, genai.NewPartFromText(prompt))
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// GenerateJSON asks for an application/json response and decodes it into dst.
func (m *GenerativeModel) GenerateJSON(ctx context.Context, prompt string, dst any) error {
	if prompt == "" {
		return ErrEmptyPrompt
	}
	cfg := *m.config
	cfg.ResponseMIMEType = "application/json"
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	resp, err := m.generate(ctx, contents, &cfg)
	if err != nil {
		return err
	}
	raw := SanitizeJSONResponse([]byte(resp.Text()))
	if err := json.Unmarshal(raw, dst); err != nil {
		m.log.Debug("json decode failed", "error", err, "response_length", len(raw))
		return fmt.Errorf("decode model response: %w", err)
	}
	return nil
}

// GenerateContentStream streams the response to a single user turn. The
// sequence yields one error and stops on failure.
func (m *GenerativeModel) GenerateContentStream(ctx context.Context, parts ...*genai.Part) iter.Seq2[*genai.GenerateContentResponse, error] {
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	return m.stream(ctx, contents)
}

func (m *GenerativeModel) stream(ctx context.Context, contents []*genai.Content) iter.Seq2[*genai.GenerateContentResponse, error] {
	return func(yield func(*genai.GenerateContentResponse, error) bool) {
		if len(contents) == 0 || len(contents[len(contents)-1].Parts) == 0 {
			yield(nil, ErrEmptyPrompt)
			return
		}
		if err := m.wait(ctx); err != nil {
			yield(nil, err)
			return
		}
		m.log.Debug("streaming content", "content_count", len(contents))
		chunks := 0
		for resp, err := range m.models.GenerateContentStream(ctx, m.name, contents, m.config) {
			if err != nil {
				m.log.Debug("stream failed", "chunks", chunks, "error", err)
				yield(nil, fmt.Errorf("stream content: %w", err))
				return
			}
			chunks++
			if !yield(resp, nil) {
				return
			}
		}
		m.log.Debug("stream complete", "chunks", chunks)
	}
}

// CountTokens reports how many input tokens parts would use.
func (m *GenerativeModel) CountTokens(ctx context.Context, parts ...*genai.Part) (int32, error) {
	if len(parts) == 0 {
		return 0, ErrEmptyPrompt
	}
	if err := m.wait(ctx); err != nil {
		return 0, err
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	resp, err := m.models.CountTokens(ctx, m.name, contents, nil)
	if err != nil {
		return 0, fmt.Errorf("count tokens: %w", err)
	}
	return resp.TotalTokens, nil
}

func (m *GenerativeModel) generate(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	m.log.Debug("generating content", "content_count", len(contents))

	var resp *genai.GenerateContentResponse
	err := retryable(ctx, func() error {
		if err := m.wait(ctx); err != nil {
			return err
		}
		r, err := m.models.GenerateContent(ctx, m.name, contents, config)
		if err != nil {
			return err
		}
		resp = r
		return nil
	}, m.maxRetries, m.backoff, m.log)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 {
		m.log.Debug("no candidates in response")
		return nil, ErrNoCandidates
	}
	if u := resp.UsageMetadata; u != nil {
		m.log.Debug("received response",
			"candidates_count", len(resp.Candidates),
			"prompt_tokens", u.PromptTokenCount,
			"total_tokens", u.TotalTokenCount)
	}
	return resp, nil
}

func (m *GenerativeModel) wait(ctx context.Context) error {
	if m.limiter == nil {
		return nil
	}
	if err := m.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}
	return nil
}
