package assistant

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// errGroupRunner runs tasks on an errgroup behind a concurrency gate. The
// first error cancels ctx for the remaining tasks.
type errGroupRunner struct {
	ctx context.Context // derived ctx shared by all tasks
	eg  *errgroup.Group
	sem chan struct{} // concurrency gate
}

func newErrGroupRunner(parent context.Context, maxConcurrency int) *errGroupRunner {
	eg, ctx := errgroup.WithContext(parent)
	return &errGroupRunner{
		ctx: ctx,
		eg:  eg,
		sem: make(chan struct{}, maxConcurrency),
	}
}

func (r *errGroupRunner) Go(fn func() error) {
	r.eg.Go(func() error {
		r.sem <- struct{}{}        // acquire
		defer func() { <-r.sem }() // release
		return fn()
	})
}

func (r *errGroupRunner) Wait() error { return r.eg.Wait() }

// GenerateBatch answers each prompt independently with at most concurrency
// requests in flight. Results keep the order of prompts. The first failure
// cancels the remaining calls and is returned.
func (m *GenerativeModel) GenerateBatch(ctx context.Context, prompts []string, concurrency int) ([]string, error) {
	if len(prompts) == 0 {
		return nil, ErrEmptyPrompt
	}
	r := newErrGroupRunner(ctx, max(concurrency, 1))
	out := make([]string, len(prompts))
	m.log.Debug("batch started", "prompts", len(prompts), "concurrency", cap(r.sem))
	for i, p := range prompts {
		r.Go(func() error {
			text, err := m.GenerateText(r.ctx, p)
			if err != nil {
				return err
			}
			out[i] = text
			return nil
		})
	}
	if err := r.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
