package model

import (
	"strings"
	"time"
)

const turnSummaryLength = 100

// Turn is one question and answer exchange of a conversation
type Turn struct {
	UserMessage   string            `json:"user_message"`
	Timestamp     time.Time         `json:"timestamp"`
	Result        AnswerWithSources `json:"result"`
	AnswerSummary string            `json:"answer_summary"`
}

// NewTurn creates a turn and summarizes the answer to its first characters on one line
func NewTurn(userMessage string, result AnswerWithSources, timestamp time.Time) Turn {
	summary := []rune(strings.TrimSpace(result.Answer))
	if len(summary) > turnSummaryLength {
		summary = summary[:turnSummaryLength]
	}

	return Turn{
		UserMessage:   userMessage,
		Timestamp:     timestamp,
		Result:        result,
		AnswerSummary: strings.ReplaceAll(string(summary), "\n", " "),
	}
}

// ConversationState is the exportable state of a conversation
type ConversationState struct {
	ID          string    `json:"id"`
	Turns       []Turn    `json:"turns"`
	CreatedAt   time.Time `json:"created_at"`
	LastUpdated time.Time `json:"last_updated"`
}
