package llm

import (
	"context"

	"github.com/akolanti/PDFChat/internal/domain/chatModel"
)

// Prompt is a chat request: system instruction, prior turns, then the user message.
type Prompt struct {
	System  string
	History []chatModel.Turn
	User    string
}

type Provider interface {
	Generate(ctx context.Context, prompt Prompt) (string, error)
}
