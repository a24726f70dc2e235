package conversation

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/siherrmann/grounder/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(id string) *Manager {
	m := NewManager(id)
	current := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time {
		current = current.Add(time.Minute)
		return current
	}
	return m
}

func answer(text string, sources ...model.CitationSource) model.AnswerWithSources {
	return model.AnswerWithSources{Answer: text, Sources: sources}
}

func source(id, file, chunkID string) model.CitationSource {
	return model.CitationSource{ID: id, File: file, ChunkID: chunkID, Preview: "preview of " + chunkID}
}

func TestNewManager(t *testing.T) {
	t.Run("Generates an id", func(t *testing.T) {
		m := NewManager("")
		assert.True(t, strings.HasPrefix(m.ID(), "chat-"))
		assert.NotEqual(t, m.ID(), NewManager("").ID())
		assert.Equal(t, 0, m.TurnCount())
	})

	t.Run("Keeps a given id", func(t *testing.T) {
		assert.Equal(t, "support-1", NewManager("support-1").ID())
	})
}

func TestManagerTurns(t *testing.T) {
	m := newTestManager("c1")
	for i := 1; i <= 6; i++ {
		m.AddTurn("question "+string(rune('0'+i)), answer("answer "+string(rune('0'+i))))
	}

	t.Run("History keeps all turns in order", func(t *testing.T) {
		history := m.History()
		require.Len(t, history, 6)
		assert.Equal(t, "question 1", history[0].UserMessage)
		assert.Equal(t, "answer 6", history[5].AnswerSummary)
	})

	t.Run("Context window returns the last turns", func(t *testing.T) {
		window := m.ContextWindow(DefaultContextWindow)
		require.Len(t, window, 3)
		assert.Equal(t, "question 4", window[0].UserMessage)
		assert.Len(t, m.ContextWindow(100), 6)
		assert.Empty(t, m.ContextWindow(0))
	})

	t.Run("Prompt history uses the last five turns", func(t *testing.T) {
		history := m.FormatHistoryForPrompt()

		assert.True(t, strings.HasPrefix(history, "Previous conversation:\n"))
		assert.NotContains(t, history, "question 1\n")
		assert.Contains(t, history, "User: question 2\nAssistant: answer 2\n\n")
		assert.Contains(t, history, "User: question 6\nAssistant: answer 6\n\n")
	})
}

func TestManagerFormatting(t *testing.T) {
	t.Run("Empty conversation", func(t *testing.T) {
		m := newTestManager("c1")
		assert.Equal(t, "", m.FormatHistoryForPrompt())
		assert.Equal(t, "Conversation history is empty.", m.FormatHistoryForDisplay())
	})

	t.Run("Display lists turns with sources", func(t *testing.T) {
		m := newTestManager("c1")
		m.AddTurn("How long is the vacation?", answer("28 days [1].", source("[1]", "handbook.md", "handbook.md-chunk-0")))
		m.AddTurn("Unknown?", answer(model.NoInformationAnswer))

		display := m.FormatHistoryForDisplay()

		assert.Contains(t, display, "Conversation history (2 turns):")
		assert.Contains(t, display, "[Turn 1] 10:01:00")
		assert.Contains(t, display, "Q: How long is the vacation?")
		assert.Contains(t, display, "Sources: [1]")
		assert.Contains(t, display, "Sources: none")
	})

	t.Run("Text export contains full answers and previews", func(t *testing.T) {
		m := newTestManager("c1")
		long := strings.Repeat("long answer ", 20)
		m.AddTurn("q", answer(long, source("[1]", "faq.md", "faq.md-chunk-1")))

		exported := m.ExportText()

		assert.Contains(t, exported, "Conversation ID: c1")
		assert.Contains(t, exported, "Assistant: "+long)
		assert.Contains(t, exported, `[1] faq.md: "preview of faq.md-chunk-1"`)
	})

	t.Run("JSON export", func(t *testing.T) {
		m := newTestManager("c1")
		m.AddTurn("q", answer("a [1]", source("[1]", "faq.md", "faq.md-chunk-1")))

		exported, err := m.ExportJSON()
		require.NoError(t, err)

		var state model.ConversationState
		require.NoError(t, json.Unmarshal([]byte(exported), &state))
		assert.Equal(t, "c1", state.ID)
		require.Len(t, state.Turns, 1)
		assert.Equal(t, "faq.md", state.Turns[0].Result.Sources[0].File)
	})
}

func TestManagerSourcesAndClear(t *testing.T) {
	m := newTestManager("c1")
	m.AddTurn("q1", answer("a", source("[1]", "a.md", "a.md-chunk-0"), source("[2]", "b.md", "b.md-chunk-0")))
	m.AddTurn("q2", answer("b", source("[1]", "b.md", "b.md-chunk-0"), source("[2]", "a.md", "a.md-chunk-1")))

	t.Run("Sources are unique by file and chunk", func(t *testing.T) {
		sources := m.AllSources()

		require.Len(t, sources, 3)
		assert.Equal(t, "a.md-chunk-0", sources[0].ChunkID)
		assert.Equal(t, "b.md-chunk-0", sources[1].ChunkID)
		assert.Equal(t, "a.md-chunk-1", sources[2].ChunkID)
	})

	t.Run("Clear starts a new conversation", func(t *testing.T) {
		m.Clear()

		assert.Equal(t, 0, m.TurnCount())
		assert.NotEqual(t, "c1", m.ID())
		assert.Empty(t, m.AllSources())
	})
}
