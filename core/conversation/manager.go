package conversation

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/siherrmann/grounder/helper"
	"github.com/siherrmann/grounder/model"
)

const (
	// DefaultContextWindow is the number of recent turns returned by ContextWindow
	DefaultContextWindow = 3
	// PromptHistoryTurns is the number of recent turns added to a prompt
	PromptHistoryTurns = 5

	timeFormat     = "15:04:05"
	dateTimeFormat = "2006-01-02 15:04:05"
)

// Manager keeps the turns of one conversation
type Manager struct {
	mu    sync.RWMutex
	state model.ConversationState
	now   func() time.Time
}

// NewManager creates an empty conversation, a new id is generated if id is empty
func NewManager(id string) *Manager {
	m := &Manager{now: time.Now}
	m.reset(id)
	return m
}

func (m *Manager) reset(id string) {
	if id == "" {
		id = "chat-" + uuid.NewString()
	}
	now := m.now()
	m.state = model.ConversationState{
		ID:          id,
		Turns:       []model.Turn{},
		CreatedAt:   now,
		LastUpdated: now,
	}
}

// ID returns the conversation id
func (m *Manager) ID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.ID
}

// TurnCount returns the number of turns
func (m *Manager) TurnCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.state.Turns)
}

// AddTurn appends a question and its answer
func (m *Manager) AddTurn(userMessage string, result model.AnswerWithSources) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.state.Turns = append(m.state.Turns, model.NewTurn(userMessage, result, now))
	m.state.LastUpdated = now
}

// History returns a copy of all turns
func (m *Manager) History() []model.Turn {
	m.mu.RLock()
	defer m.mu.RUnlock()

	turns := make([]model.Turn, len(m.state.Turns))
	copy(turns, m.state.Turns)
	return turns
}

// ContextWindow returns the last size turns
func (m *Manager) ContextWindow(size int) []model.Turn {
	turns := m.History()
	if size < 0 {
		size = 0
	}
	if len(turns) > size {
		return turns[len(turns)-size:]
	}
	return turns
}

// FormatHistoryForPrompt renders the recent turns for a prompt, "" without turns
func (m *Manager) FormatHistoryForPrompt() string {
	turns := m.ContextWindow(PromptHistoryTurns)
	if len(turns) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Previous conversation:\n")
	for _, turn := range turns {
		fmt.Fprintf(&b, "User: %s\n", turn.UserMessage)
		fmt.Fprintf(&b, "Assistant: %s\n\n", turn.AnswerSummary)
	}
	return b.String()
}

// FormatHistoryForDisplay renders all turns for a terminal
func (m *Manager) FormatHistoryForDisplay() string {
	turns := m.History()
	if len(turns) == 0 {
		return "Conversation history is empty."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Conversation history (%d turns):\n", len(turns))
	b.WriteString(strings.Repeat("─", 80) + "\n\n")

	for i, turn := range turns {
		fmt.Fprintf(&b, "[Turn %d] %s\n", i+1, turn.Timestamp.Format(timeFormat))
		fmt.Fprintf(&b, "Q: %s\n", turn.UserMessage)
		fmt.Fprintf(&b, "A: %s...\n", turn.AnswerSummary)
		fmt.Fprintf(&b, "   Sources: %s\n\n", sourceIDs(turn.Result.Sources))
	}

	b.WriteString(strings.Repeat("─", 80))
	return b.String()
}

// ExportJSON returns the conversation state as indented JSON
func (m *Manager) ExportJSON() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, err := json.MarshalIndent(m.state, "", "  ")
	if err != nil {
		return "", helper.NewError("export conversation", err)
	}
	return string(data), nil
}

// ExportText returns the full conversation with answers and source previews
func (m *Manager) ExportText() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var b strings.Builder
	fmt.Fprintf(&b, "Conversation ID: %s\n", m.state.ID)
	fmt.Fprintf(&b, "Started: %s\n", m.state.CreatedAt.Format(dateTimeFormat))
	fmt.Fprintf(&b, "Last updated: %s\n", m.state.LastUpdated.Format(dateTimeFormat))
	b.WriteString("\n" + strings.Repeat("=", 80) + "\n\n")

	for i, turn := range m.state.Turns {
		fmt.Fprintf(&b, "--- Turn %d ---\n", i+1)
		fmt.Fprintf(&b, "Time: %s\n", turn.Timestamp.Format(timeFormat))
		fmt.Fprintf(&b, "User: %s\n", turn.UserMessage)
		fmt.Fprintf(&b, "Assistant: %s\n", turn.Result.Answer)
		b.WriteString("Sources:\n")
		for _, source := range turn.Result.Sources {
			fmt.Fprintf(&b, "  %s %s: %q\n", source.ID, source.File, source.Preview)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// Clear removes all turns and starts a new conversation id
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset("")
}

// AllSources returns the sources of all turns, unique by file and chunk id
func (m *Manager) AllSources() []model.CitationSource {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := map[string]bool{}
	sources := []model.CitationSource{}
	for _, turn := range m.state.Turns {
		for _, source := range turn.Result.Sources {
			key := source.File + "::" + source.ChunkID
			if seen[key] {
				continue
			}
			seen[key] = true
			sources = append(sources, source)
		}
	}
	return sources
}

func sourceIDs(sources []model.CitationSource) string {
	if len(sources) == 0 {
		return "none"
	}
	ids := make([]string, len(sources))
	for i, source := range sources {
		ids[i] = source.ID
	}
	return strings.Join(ids, ", ")
}
