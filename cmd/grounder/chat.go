package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/siherrmann/grounder"
	"github.com/siherrmann/grounder/core/conversation"
	"github.com/siherrmann/grounder/model"
)

const chatHelp = `COMMANDS:
  /help              Show this help
  /history           Show the conversation history
  /clear             Clear the history and start over
  /sources           Show the sources of the last answer and of the conversation
  /export [format]   Export the conversation (text or json)
  /exit, /quit       Leave the chat

Any other input is answered from the documents with sources.`

// chatSession is an interactive chat over a Grounder with conversation memory
type chatSession struct {
	grounder  *grounder.Grounder
	config    model.QueryConfig
	chat      *conversation.Manager
	last      *model.AnswerWithSources
	out       io.Writer
	exportDir string
}

func newChatSession(g *grounder.Grounder, config model.QueryConfig, out io.Writer) *chatSession {
	return &chatSession{
		grounder:  g,
		config:    config,
		chat:      g.NewConversation(""),
		out:       out,
		exportDir: "data",
	}
}

// run reads lines from in until /exit or end of input
func (s *chatSession) run(ctx context.Context, in io.Reader) error {
	fmt.Fprintln(s.out, "Chat started. Ask questions about your documents or type /help for commands.")
	fmt.Fprintln(s.out, rule("-"))

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, "\nYou: ")
		if !scanner.Scan() {
			break
		}
		if s.handleLine(ctx, scanner.Text()) {
			break
		}
	}
	fmt.Fprintf(s.out, "\nBye. Turns in this conversation: %d\n", s.chat.TurnCount())

	return scanner.Err()
}

// handleLine processes one input line and reports whether the session should end
func (s *chatSession) handleLine(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if strings.HasPrefix(line, "/") {
		return s.handleCommand(line)
	}

	result, err := s.grounder.Chat(ctx, s.chat, line, s.config)
	if err != nil {
		fmt.Fprintf(s.out, "Error answering question: %v\n", err)
		return false
	}

	s.last = result
	fmt.Fprintln(s.out, rule("-"))
	printAnswer(s.out, result)
	fmt.Fprintln(s.out, rule("-"))
	return false
}

func (s *chatSession) handleCommand(line string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case "/help":
		fmt.Fprintln(s.out, chatHelp)
	case "/history":
		fmt.Fprintln(s.out, s.chat.FormatHistoryForDisplay())
	case "/clear":
		s.chat.Clear()
		s.last = nil
		fmt.Fprintln(s.out, "Conversation history cleared.")
	case "/sources":
		s.printSources()
	case "/export":
		format := "text"
		if len(parts) > 1 {
			format = strings.ToLower(parts[1])
		}
		s.export(format)
	case "/exit", "/quit":
		return true
	default:
		fmt.Fprintf(s.out, "Unknown command: %s\n\n%s\n", command, chatHelp)
	}

	return false
}

func (s *chatSession) printSources() {
	if s.last == nil || len(s.last.Sources) == 0 {
		fmt.Fprintln(s.out, "No sources for the last answer.")
		return
	}

	fmt.Fprintf(s.out, "Sources of the last answer: %d\n", len(s.last.Sources))
	all := s.chat.AllSources()
	fmt.Fprintf(s.out, "Unique sources in this conversation: %d\n\n", len(all))
	for i, source := range all {
		fmt.Fprintf(s.out, "[%d] %s - %s\n", i+1, source.File, source.ChunkID)
		fmt.Fprintf(s.out, "    Score: %.4f\n", source.Score)
		fmt.Fprintf(s.out, "    \"%s\"\n\n", source.Preview)
	}
}

func (s *chatSession) export(format string) {
	var content string
	var extension string

	switch format {
	case "json":
		exported, err := s.chat.ExportJSON()
		if err != nil {
			fmt.Fprintf(s.out, "Error exporting conversation: %v\n", err)
			return
		}
		content, extension = exported, "json"
	case "text", "txt":
		content, extension = s.chat.ExportText(), "txt"
	default:
		fmt.Fprintf(s.out, "Unknown export format: %s (use text or json)\n", format)
		return
	}

	if err := os.MkdirAll(s.exportDir, 0750); err != nil {
		fmt.Fprintf(s.out, "Error exporting conversation: %v\n", err)
		return
	}
	path := filepath.Join(s.exportDir, fmt.Sprintf("conversation-%s.%s", s.chat.ID(), extension))
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		fmt.Fprintf(s.out, "Error exporting conversation: %v\n", err)
		return
	}

	fmt.Fprintf(s.out, "Conversation exported to %s\n", path)
}
