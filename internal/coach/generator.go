package coach

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned by generators when the model produced no text.
var ErrEmptyResponse = errors.New("empty response from model")

// ErrMissingAPIKey is returned by constructors given no API key.
var ErrMissingAPIKey = errors.New("api key is required")

// Generator is a text-completion backend.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Sampling parameters shared by every backend.
const (
	Temperature     = 0.3
	TopP            = 0.8
	TopK            = 40
	MaxOutputTokens = 500
)
