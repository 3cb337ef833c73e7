package assistant

import (
	"fmt"

	"google.golang.org/genai"
)

// Backend names accepted by ParseBackend and Config.Backend.
const (
	BackendGoogleAI = "googleai"
	BackendVertexAI = "vertexai"
)

// DefaultVertexLocation is used when VertexAIBackend.Location is empty.
const DefaultVertexLocation = "us-central1"

// Backend selects the inference service an AI handle routes requests to.
type Backend interface {
	String() string
	clientConfig(cfg Config) *genai.ClientConfig
	key() string
}

// GoogleAIBackend routes through the Gemini Developer API using the app's key.
type GoogleAIBackend struct{}

func (GoogleAIBackend) String() string { return BackendGoogleAI }
func (GoogleAIBackend) key() string    { return BackendGoogleAI }

func (GoogleAIBackend) clientConfig(cfg Config) *genai.ClientConfig {
	return &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
}

// VertexAIBackend routes through Vertex AI in the app's project. Credentials
// come from Application Default Credentials.
type VertexAIBackend struct {
	Location string
}

func (b VertexAIBackend) String() string { return BackendVertexAI + "/" + b.location() }
func (b VertexAIBackend) key() string    { return b.String() }

func (b VertexAIBackend) location() string {
	if b.Location == "" {
		return DefaultVertexLocation
	}
	return b.Location
}

func (b VertexAIBackend) clientConfig(cfg Config) *genai.ClientConfig {
	return &genai.ClientConfig{
		Project:  cfg.ProjectID,
		Location: b.location(),
		Backend:  genai.BackendVertexAI,
	}
}

// ParseBackend maps a backend name to a Backend. location only applies to
// Vertex AI.
func ParseBackend(name, location string) (Backend, error) {
	switch NormalizeBackend(name) {
	case "", BackendGoogleAI:
		return GoogleAIBackend{}, nil
	case BackendVertexAI:
		return VertexAIBackend{Location: location}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBackend, name)
	}
}
