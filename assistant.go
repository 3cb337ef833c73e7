package assistant

import "errors"

var (
	ErrMissingAPIKey      = errors.New("api key is required")
	ErrInvalidConfig      = errors.New("invalid configuration")
	ErrDuplicateApp       = errors.New("app already exists with a different configuration")
	ErrNoApp              = errors.New("no such app")
	ErrAppDeleted         = errors.New("app has been deleted")
	ErrUnsupportedBackend = errors.New("unsupported backend")
	ErrModelMissing       = errors.New("model not specified")
	ErrEmptyPrompt        = errors.New("prompt is empty")
	ErrNoCandidates       = errors.New("no candidates in response")
)
