package usecase

import (
	"strings"

	"rag-chatbot/internal/domain"
)

const (
	promptHistoryTurns = 5

	systemInstruction = "You are a helpful AI assistant. Use the provided context to answer questions accurately and helpfully. " +
		"If you don't know something, say so. Be concise but informative."
)

// AssemblePrompt renders the model prompt: system instruction, retrieved
// context, the most recent turns in chronological order, the current message
// and a trailing "Assistant:" cue. history is most-recent-first.
func AssemblePrompt(message, retrieved string, history []domain.Turn) string {
	var sb strings.Builder
	sb.WriteString("System: ")
	sb.WriteString(systemInstruction)
	sb.WriteString("\n\nContext: ")
	sb.WriteString(retrieved)
	sb.WriteString("\n\n")
	sb.WriteString(formatHistory(history))
	sb.WriteString("Human: ")
	sb.WriteString(message)
	sb.WriteString("\n\nAssistant:")
	return sb.String()
}

// formatHistory takes the promptHistoryTurns most recent turns and renders
// them oldest first, one "Label: content" line each.
func formatHistory(history []domain.Turn) string {
	n := min(len(history), promptHistoryTurns)
	var sb strings.Builder
	for i := n - 1; i >= 0; i-- {
		sb.WriteString(roleLabel(history[i].Role))
		sb.WriteString(": ")
		sb.WriteString(history[i].Content)
		sb.WriteString("\n")
	}
	return sb.String()
}

func roleLabel(role string) string {
	if role == domain.RoleUser {
		return "Human"
	}
	return "Assistant"
}
