package intent

import "context"

// LLMClient sends a prompt to the language model and returns its raw text.
type LLMClient interface {
	Chat(ctx context.Context, prompt, system string) (string, error)
}
