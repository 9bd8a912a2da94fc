package chatModel

import (
	"context"
	"strings"
)

type Turn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ConversationStore keeps the ordered turns of each chat session.
type ConversationStore interface {
	Append(ctx context.Context, sessionId string, turn Turn) error
	History(ctx context.Context, sessionId string) ([]Turn, error)
	Reset(ctx context.Context, sessionId string) error
}

// RenderHistory writes each turn as a "Human:" line followed by an "Assistant:" line.
func RenderHistory(turns []Turn) string {
	var sb strings.Builder
	for i, t := range turns {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("Human: ")
		sb.WriteString(t.Question)
		sb.WriteString("\nAssistant: ")
		sb.WriteString(t.Answer)
	}
	return sb.String()
}
