package assistant

import (
	"context"
	"errors"
	"iter"
	"log/slog"
	"strings"
	"sync"

	"google.golang.org/genai"
)

// scriptedModels is a fake modelsAPI that answers with canned replies in
// order and records every request and the model it was addressed to.
type scriptedModels struct {
	mu       sync.Mutex
	replies  []string
	errs     []error
	models   []string
	requests [][]*genai.Content
	configs  []*genai.GenerateContentConfig
}

func (s *scriptedModels) next(model string, contents []*genai.Content, config *genai.GenerateContentConfig) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.models = append(s.models, model)
	s.requests = append(s.requests, contents)
	s.configs = append(s.configs, config)
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return "", err
		}
	}
	if len(s.replies) == 0 {
		return "", errors.New("no scripted reply left")
	}
	reply := s.replies[0]
	s.replies = s.replies[1:]
	return reply, nil
}

func (s *scriptedModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	reply, err := s.next(model, contents, config)
	if err != nil {
		return nil, err
	}
	return textResponse(reply), nil
}

// GenerateContentStream yields the next reply one word per chunk.
func (s *scriptedModels) GenerateContentStream(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
	return func(yield func(*genai.GenerateContentResponse, error) bool) {
		reply, err := s.next(model, contents, config)
		if err != nil {
			yield(nil, err)
			return
		}
		for i, w := range strings.Fields(reply) {
			if i > 0 {
				w = " " + w
			}
			if !yield(textResponse(w), nil) {
				return
			}
		}
	}
}

// CountTokens counts whitespace-separated words of text parts.
func (s *scriptedModels) CountTokens(ctx context.Context, model string, contents []*genai.Content, config *genai.CountTokensConfig) (*genai.CountTokensResponse, error) {
	s.mu.Lock()
	s.models = append(s.models, model)
	s.mu.Unlock()

	var n int32
	for _, c := range contents {
		for _, p := range c.Parts {
			n += int32(len(strings.Fields(p.Text)))
		}
	}
	return &genai.CountTokensResponse{TotalTokens: n}, nil
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: genai.NewContentFromText(text, genai.RoleModel),
		}},
	}
}

// NewModelForTesting returns a GenerativeModel that answers with replies in
// order without contacting any backend.
func NewModelForTesting(replies ...string) *GenerativeModel {
	return newScriptedModel(&scriptedModels{replies: replies})
}

func newScriptedModel(s *scriptedModels, opts ...ModelOption) *GenerativeModel {
	m := &GenerativeModel{
		name:    DefaultModelName,
		backend: GoogleAIBackend{},
		models:  s,
		config:  &genai.GenerateContentConfig{},
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}
