package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestGetAI_GoogleAIBackend(t *testing.T) {
	resetRegistry(t)
	app := newTestApp(t)

	ai, err := GetAI(context.Background(), app, WithBackend(GoogleAIBackend{}))
	require.NoError(t, err)
	require.NotNil(t, ai)

	assert.Same(t, app, ai.App())
	assert.Equal(t, GoogleAIBackend{}, ai.Backend())
	require.NotNil(t, ai.Client())
	assert.NotNil(t, ai.Client().Models)
}

func TestGetAI_DefaultsToGoogleAI(t *testing.T) {
	resetRegistry(t)
	app := newTestApp(t)

	ai, err := GetAI(context.Background(), app)
	require.NoError(t, err)
	assert.Equal(t, GoogleAIBackend{}, ai.Backend())

	viaNil, err := GetAI(context.Background(), app, WithBackend(nil))
	require.NoError(t, err)
	assert.Same(t, ai, viaNil)
}

func TestGetAI_CachedPerBackend(t *testing.T) {
	resetRegistry(t)
	app := newTestApp(t)
	ctx := context.Background()

	first, err := GetAI(ctx, app)
	require.NoError(t, err)
	second, err := GetAI(ctx, app, WithBackend(GoogleAIBackend{}))
	require.NoError(t, err)
	assert.Same(t, first, second)

	other := newTestApp(t, WithAppName("other"))
	third, err := GetAI(ctx, other)
	require.NoError(t, err)
	assert.NotSame(t, first, third, "services are per app")
}

func TestGetAI_HTTPOptions(t *testing.T) {
	resetRegistry(t)
	app := newTestApp(t)

	ai, err := GetAI(context.Background(), app, WithHTTPOptions(genai.HTTPOptions{
		BaseURL:    "https://proxy.example.com/",
		APIVersion: "v1beta",
	}))
	require.NoError(t, err)
	require.NotNil(t, ai.Client())

	// Options only apply when the service is first created.
	again, err := GetAI(context.Background(), app, WithHTTPOptions(genai.HTTPOptions{APIVersion: "v1"}))
	require.NoError(t, err)
	assert.Same(t, ai, again)
}

func TestGetAI_NilApp(t *testing.T) {
	_, err := GetAI(context.Background(), nil)
	assert.True(t, errors.Is(err, ErrNoApp))
}
