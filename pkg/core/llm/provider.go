// Package llm abstracts the model providers used to generate assumption
// suggestions. The engine only needs "prompt in, text out"; provider quirks
// (JSON mode, temperature, auth) stay behind this interface.
package llm

import (
	"context"
)

// Provider is the interface every model backend implements.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
}

// JSONMode is the conventional options entry requesting structured output.
func JSONMode() map[string]interface{} {
	return map[string]interface{}{
		"response_format": map[string]interface{}{"type": "json_object"},
	}
}
