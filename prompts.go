package assistant

import (
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/tyler-sommer/stick"
)

//go:embed prompts/*.twig
var builtinPrompts embed.FS

// Engines the built-in system prompts know about.
const (
	EngineGodot     = "godot"
	EngineGameMaker = "gamemaker"
)

// PromptProvider returns the system instruction text for a tag.
type PromptProvider interface {
	GetPrompt(tag string) (string, error)
}

// StickPromptProvider renders twig templates with stick. It is fs-agnostic.
type StickPromptProvider struct {
	env       *stick.Env
	templates map[string]string
	vars      map[string]stick.Value
}

// PromptOption configures a StickPromptProvider.
type PromptOption func(*StickPromptProvider) error

// WithFS loads every *.twig file found under dir in the supplied FS.
func WithFS(fsys fs.FS, dir string) PromptOption {
	return func(p *StickPromptProvider) error {
		return fs.WalkDir(fsys, dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !strings.HasSuffix(path, ".twig") {
				return nil
			}
			content, readErr := fs.ReadFile(fsys, path)
			if readErr != nil {
				return fmt.Errorf("read %s: %w", path, readErr)
			}
			tag := strings.TrimSuffix(filepath.Base(path), ".twig")
			p.templates[tag] = string(content)
			return nil
		})
	}
}

// WithTemplates injects an in-memory map.
func WithTemplates(m map[string]string) PromptOption {
	return func(p *StickPromptProvider) error {
		for k, v := range m {
			p.templates[k] = v
		}
		return nil
	}
}

// WithVar adds a variable available in all templates.
func WithVar(key string, value any) PromptOption {
	return func(p *StickPromptProvider) error {
		p.vars[key] = value
		return nil
	}
}

// NewStickPromptProvider builds a provider from any combination of options.
func NewStickPromptProvider(opts ...PromptOption) (*StickPromptProvider, error) {
	p := &StickPromptProvider{
		env:       stick.New(nil),
		templates: make(map[string]string),
		vars:      make(map[string]stick.Value),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// AssistantPrompts returns a provider preloaded with the built-in assistant
// templates ("system", "godot", "gamemaker").
func AssistantPrompts(opts ...PromptOption) (*StickPromptProvider, error) {
	return NewStickPromptProvider(append([]PromptOption{WithFS(builtinPrompts, "prompts")}, opts...)...)
}

// AddTemplate updates or inserts one template.
func (p *StickPromptProvider) AddTemplate(tag, tpl string) { p.templates[tag] = tpl }

// GetPrompt renders the template for tag.
func (p *StickPromptProvider) GetPrompt(tag string) (string, error) {
	tpl, ok := p.templates[tag]
	if !ok {
		return "", fmt.Errorf("template %q not found", tag)
	}

	ctx := make(map[string]stick.Value, len(p.vars)+1)
	ctx["tag"] = tag
	for k, v := range p.vars {
		ctx[k] = v
	}

	var out strings.Builder
	if err := p.env.Execute(tpl, &out, ctx); err != nil {
		return "", fmt.Errorf("execute %q: %w", tag, err)
	}
	return strings.TrimSpace(out.String()), nil
}

// SimplePromptProvider serves prompts verbatim.
type SimplePromptProvider map[string]string

func (s SimplePromptProvider) GetPrompt(tag string) (string, error) {
	if tpl, ok := s[tag]; ok {
		return tpl, nil
	}
	return "", fmt.Errorf("prompt %q not found", tag)
}

// SystemInstructionFor renders the system prompt for engine ("godot" or
// "gamemaker") with the built-in templates. An empty engine renders the
// generic "system" prompt.
func SystemInstructionFor(engine string) (string, error) {
	engine = strings.ToLower(strings.TrimSpace(engine))
	tag := engine
	switch engine {
	case "":
		tag = "system"
	case EngineGodot, EngineGameMaker:
	default:
		return "", fmt.Errorf("unknown engine %q", engine)
	}
	p, err := AssistantPrompts(WithVar("engine", engine))
	if err != nil {
		return "", err
	}
	return p.GetPrompt(tag)
}
