package assistant

import (
	"fmt"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"google.golang.org/genai"
)

// NewTextPart creates a text part.
func NewTextPart(text string) *genai.Part {
	return genai.NewPartFromText(text)
}

// NewInlineDataPart creates an inline data part, sniffing the MIME type from
// data. Screenshots of the editor are the usual payload.
func NewInlineDataPart(data []byte) *genai.Part {
	return genai.NewPartFromBytes(data, mimetype.Detect(data).String())
}

// NewFilePart reads path and returns it as an inline data part.
func NewFilePart(path string) (*genai.Part, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return NewInlineDataPart(data), nil
}

// NewURIPart references a file already uploaded to the Files API or Cloud
// Storage.
func NewURIPart(uri, mimeType string) *genai.Part {
	return genai.NewPartFromURI(uri, mimeType)
}
