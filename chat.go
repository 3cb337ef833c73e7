package assistant

import (
	"context"
	"iter"
	"sync"

	"github.com/google/uuid"
	"google.golang.org/genai"
)

// ChatSession keeps a multi-turn conversation with a GenerativeModel. The
// lock only guards history, so a caller may inspect History or send again
// while a streamed reply is being consumed. Each send sees the history as of
// its start; turns are recorded in completion order.
type ChatSession struct {
	ID string

	model   *GenerativeModel
	mu      sync.Mutex
	history []*genai.Content
}

// StartChat opens a session seeded with history.
func (m *GenerativeModel) StartChat(history ...*genai.Content) *ChatSession {
	cs := &ChatSession{
		ID:      uuid.NewString(),
		model:   m,
		history: append([]*genai.Content(nil), history...),
	}
	m.log.Debug("chat started", "chat_id", cs.ID, "history_len", len(history))
	return cs
}

// SendMessage appends a user turn, generates the reply and records both.
// On failure the history is left unchanged.
func (cs *ChatSession) SendMessage(ctx context.Context, parts ...*genai.Part) (*genai.GenerateContentResponse, error) {
	if len(parts) == 0 {
		return nil, ErrEmptyPrompt
	}
	user := genai.NewContentFromParts(parts, genai.RoleUser)
	contents := append(cs.History(), user)
	resp, err := cs.model.generate(ctx, contents, cs.model.config)
	if err != nil {
		return nil, err
	}
	cs.record(user, resp.Candidates[0].Content)
	return resp, nil
}

// SendMessageStream is SendMessage with a streamed reply. The turn is
// recorded once the stream has been fully consumed without error.
func (cs *ChatSession) SendMessageStream(ctx context.Context, parts ...*genai.Part) iter.Seq2[*genai.GenerateContentResponse, error] {
	return func(yield func(*genai.GenerateContentResponse, error) bool) {
		user := genai.NewContentFromParts(parts, genai.RoleUser)
		contents := append(cs.History(), user)
		var reply []*genai.Part
		for resp, err := range cs.model.stream(ctx, contents) {
			if err != nil {
				yield(nil, err)
				return
			}
			if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
				reply = append(reply, resp.Candidates[0].Content.Parts...)
			}
			if !yield(resp, nil) {
				return
			}
		}
		cs.record(user, genai.NewContentFromParts(reply, genai.RoleModel))
	}
}

// History returns a copy of the recorded turns.
func (cs *ChatSession) History() []*genai.Content {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.snapshot()
}

func (cs *ChatSession) snapshot() []*genai.Content {
	return append([]*genai.Content(nil), cs.history...)
}

func (cs *ChatSession) record(user, reply *genai.Content) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if reply == nil {
		reply = genai.NewContentFromParts(nil, genai.RoleModel)
	}
	if reply.Role == "" {
		reply.Role = string(genai.RoleModel)
	}
	cs.history = append(cs.history, user, reply)
	cs.model.log.Debug("chat turn recorded", "chat_id", cs.ID, "history_len", len(cs.history))
}
