package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/akolanti/PDFChat/internal/appErrors"
	"github.com/akolanti/PDFChat/internal/config"
	"github.com/akolanti/PDFChat/internal/domain/chatModel"
	"github.com/akolanti/PDFChat/internal/rag/llm"
	"github.com/akolanti/PDFChat/pkg/logger_i"
)

type Answer struct {
	Text    string
	Context string
	Sources []string
}

type Generator struct {
	retriever     *Retriever
	provider      llm.Provider
	conversations chatModel.ConversationStore
	logger        *logger_i.Logger
}

func NewGenerator(retriever *Retriever, provider llm.Provider, conversations chatModel.ConversationStore) *Generator {
	return &Generator{
		retriever:     retriever,
		provider:      provider,
		conversations: conversations,
		logger:        logger_i.NewLogger("Answer Generator"),
	}
}

// Answer retrieves context for question, asks the model and records the turn
// in the session on success.
func (g *Generator) Answer(ctx context.Context, sessionId string, question string) (Answer, error) {
	log := g.logger.FromContext(ctx).With("sessionId", sessionId)
	if strings.TrimSpace(question) == "" {
		return Answer{}, appErrors.Validation("rag.Answer", "No question provided")
	}

	chunks, err := g.retriever.Retrieve(ctx, question, config.RetrieveK)
	if err != nil {
		log.Error("Retrieval failed", "error", err)
		return Answer{}, err
	}

	contextText := config.NoContextPlaceholder
	if len(chunks) > 0 {
		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Text
		}
		contextText = strings.Join(texts, "\n")
	}

	history, err := g.conversations.History(ctx, sessionId)
	if err != nil {
		log.Warn("Could not load conversation history", "error", err)
		history = nil
	}

	prompt := llm.Prompt{
		System:  config.SystemPrompt,
		History: history,
		User:    buildUserMessage(question, chatModel.RenderHistory(history), contextText),
	}

	text, err := executeLLMStep(ctx, log, g.provider, prompt)
	if err != nil {
		log.Error("LLM generation failed", "error", err)
		return Answer{}, appErrors.Upstream("rag.generate", err)
	}

	if err := g.conversations.Append(ctx, sessionId, chatModel.Turn{Question: question, Answer: text}); err != nil {
		log.Warn("Could not save conversation turn", "error", err)
	}

	return Answer{Text: text, Context: contextText, Sources: distinctSources(chunks)}, nil
}

func buildUserMessage(question, history, contextText string) string {
	combined := fmt.Sprintf("Previous conversation:\n%s\n\nCurrent context:\n%s", history, contextText)
	return fmt.Sprintf("Question: %s\n\nRelevant context:\n%s\n\nAnswer:", question, combined)
}
