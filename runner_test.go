package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// echoModels answers every prompt with "echo: <prompt>" and fails prompts
// starting with "fail". Each call holds for delay and records the peak
// number of calls in flight.
type echoModels struct {
	scriptedModels
	delay time.Duration

	mu       sync.Mutex
	calls    int
	inFlight int32
	peak     int32
}

func (e *echoModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	n := atomic.AddInt32(&e.inFlight, 1)
	defer atomic.AddInt32(&e.inFlight, -1)

	e.mu.Lock()
	e.calls++
	e.peak = max(e.peak, n)
	e.mu.Unlock()

	prompt := contents[len(contents)-1].Parts[0].Text
	if strings.HasPrefix(prompt, "fail") {
		return nil, fmt.Errorf("refused %q", prompt)
	}
	if e.delay > 0 {
		select {
		case <-time.After(e.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return textResponse("echo: " + prompt), nil
}

func newEchoModel(delay time.Duration) (*GenerativeModel, *echoModels) {
	fake := &echoModels{delay: delay}
	m := newScriptedModel(&scriptedModels{})
	m.models = fake
	return m, fake
}

func TestGenerateBatch_KeepsOrder(t *testing.T) {
	m, fake := newEchoModel(0)

	prompts := []string{"signals", "tweens", "tilemaps", "shaders", "export"}
	got, err := m.GenerateBatch(context.Background(), prompts, 2)
	require.NoError(t, err)
	require.Len(t, got, len(prompts))
	for i, p := range prompts {
		assert.Equal(t, "echo: "+p, got[i])
	}
	assert.Equal(t, len(prompts), fake.calls)
}

func TestGenerateBatch_BoundsConcurrency(t *testing.T) {
	tests := []struct {
		name        string
		concurrency int
		want        int32
	}{
		{"two", 2, 2},
		{"one", 1, 1},
		{"non positive runs serially", 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, fake := newEchoModel(5 * time.Millisecond)

			prompts := make([]string, 8)
			for i := range prompts {
				prompts[i] = fmt.Sprintf("prompt %d", i)
			}
			_, err := m.GenerateBatch(context.Background(), prompts, tt.concurrency)
			require.NoError(t, err)
			assert.LessOrEqual(t, fake.peak, tt.want)
			assert.Equal(t, len(prompts), fake.calls)
		})
	}
}

func TestGenerateBatch_FirstErrorWins(t *testing.T) {
	m, _ := newEchoModel(0)

	got, err := m.GenerateBatch(context.Background(), []string{"ok", "fail now", "ok again"}, 1)
	require.Error(t, err)
	assert.Nil(t, got)
	assert.Contains(t, err.Error(), "refused")
}

func TestGenerateBatch_ErrorCancelsPending(t *testing.T) {
	m, fake := newEchoModel(time.Second)

	start := time.Now()
	_, err := m.GenerateBatch(context.Background(), []string{"slow", "fail fast", "slow too"}, 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refused")
	assert.Less(t, time.Since(start), 500*time.Millisecond, "in-flight calls must see the cancellation")
	assert.LessOrEqual(t, fake.calls, 3)
}

func TestGenerateBatch_ContextCanceled(t *testing.T) {
	m, _ := newEchoModel(time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := m.GenerateBatch(ctx, []string{"a", "b"}, 2)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestGenerateBatch_EmptyPrompts(t *testing.T) {
	m, fake := newEchoModel(0)

	_, err := m.GenerateBatch(context.Background(), nil, 4)
	assert.True(t, errors.Is(err, ErrEmptyPrompt))

	_, err = m.GenerateBatch(context.Background(), []string{}, 4)
	assert.True(t, errors.Is(err, ErrEmptyPrompt))
	assert.Zero(t, fake.calls)
}

func TestNewErrGroupRunner(t *testing.T) {
	ctx := context.Background()
	r := newErrGroupRunner(ctx, 2)

	require.NotNil(t, r.eg)
	assert.NotEqual(t, ctx, r.ctx, "tasks must share a derived context")
	assert.Equal(t, 2, cap(r.sem))
	assert.NoError(t, r.Wait(), "an empty runner waits cleanly")
}
