package assistant

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimplePromptProvider_GetPrompt(t *testing.T) {
	provider := SimplePromptProvider{
		"godot": "You help with Godot.",
	}

	t.Run("existing prompt", func(t *testing.T) {
		prompt, err := provider.GetPrompt("godot")
		require.NoError(t, err)
		assert.Equal(t, "You help with Godot.", prompt)
	})

	t.Run("non-existing prompt", func(t *testing.T) {
		prompt, err := provider.GetPrompt("unity")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
		assert.Empty(t, prompt)
	})
}

func TestStickPromptProvider(t *testing.T) {
	t.Run("empty provider", func(t *testing.T) {
		provider, err := NewStickPromptProvider()
		require.NoError(t, err)

		_, err = provider.GetPrompt("nonexistent")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("with templates", func(t *testing.T) {
		provider, err := NewStickPromptProvider(WithTemplates(map[string]string{
			"test": "Hello {{ tag }}",
		}))
		require.NoError(t, err)

		prompt, err := provider.GetPrompt("test")
		require.NoError(t, err)
		assert.Equal(t, "Hello test", prompt)
	})

	t.Run("with var", func(t *testing.T) {
		provider, err := NewStickPromptProvider(
			WithTemplates(map[string]string{"test": "Engine: {{ engine }}"}),
			WithVar("engine", "GameMaker"),
		)
		require.NoError(t, err)

		prompt, err := provider.GetPrompt("test")
		require.NoError(t, err)
		assert.Equal(t, "Engine: GameMaker", prompt)
	})

	t.Run("add template", func(t *testing.T) {
		provider, err := NewStickPromptProvider()
		require.NoError(t, err)

		provider.AddTemplate("new", "  New template\n")
		prompt, err := provider.GetPrompt("new")
		require.NoError(t, err)
		assert.Equal(t, "New template", prompt)
	})
}

func TestWithFS(t *testing.T) {
	fsys := fstest.MapFS{
		"tpl/godot.twig":     {Data: []byte("Godot {{ tag }}")},
		"tpl/nested/gm.twig": {Data: []byte("GameMaker")},
		"tpl/readme.md":      {Data: []byte("ignored")},
	}

	provider, err := NewStickPromptProvider(WithFS(fsys, "tpl"))
	require.NoError(t, err)

	prompt, err := provider.GetPrompt("godot")
	require.NoError(t, err)
	assert.Equal(t, "Godot godot", prompt)

	prompt, err = provider.GetPrompt("gm")
	require.NoError(t, err)
	assert.Equal(t, "GameMaker", prompt)

	_, err = provider.GetPrompt("readme")
	assert.Error(t, err)
}

func TestWithFS_MissingDir(t *testing.T) {
	_, err := NewStickPromptProvider(WithFS(fstest.MapFS{}, "nope"))
	assert.Error(t, err)
}

func TestAssistantPrompts(t *testing.T) {
	provider, err := AssistantPrompts(WithVar("engine", "Godot 4"))
	require.NoError(t, err)

	for _, tag := range []string{"system", EngineGodot, EngineGameMaker} {
		prompt, err := provider.GetPrompt(tag)
		require.NoError(t, err, tag)
		assert.NotEmpty(t, prompt, tag)
	}

	system, err := provider.GetPrompt("system")
	require.NoError(t, err)
	assert.Contains(t, system, "specialised in Godot 4")
}

func TestSystemInstructionFor(t *testing.T) {
	godot, err := SystemInstructionFor("Godot")
	require.NoError(t, err)
	assert.Contains(t, godot, "Godot 4")
	assert.Contains(t, godot, "GDScript")

	gm, err := SystemInstructionFor(EngineGameMaker)
	require.NoError(t, err)
	assert.Contains(t, gm, "GML")

	_, err = SystemInstructionFor("unity")
	assert.Error(t, err)
}

func TestSystemInstructionFor_NoEngine(t *testing.T) {
	generic, err := SystemInstructionFor("")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(generic, "You are a game development assistant."))
	assert.NotContains(t, generic, "specialised")
	assert.Contains(t, generic, "working code first")
}
