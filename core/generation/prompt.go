package generation

import (
	"fmt"
	"strings"

	"github.com/siherrmann/grounder/core/citation"
	"github.com/siherrmann/grounder/model"
)

// RefusalAnswer is the exact answer the model is told to give without supporting context
const RefusalAnswer = "There is no information in the documents on this question."

// BuildContext numbers the chunks in order, "[n] (Source: file)" followed by the text
func BuildContext(chunks []model.ScoredChunk) string {
	parts := make([]string, len(chunks))
	for i, chunk := range chunks {
		parts[i] = fmt.Sprintf("%s (Source: %s)\n%s", citation.Label(i+1), chunk.Chunk.Source, chunk.Chunk.Text)
	}
	return strings.Join(parts, "\n\n")
}

// GroundedPrompt asks the model to answer only from the numbered chunks and to cite them.
// history is prepended when not empty.
func GroundedPrompt(question string, chunks []model.ScoredChunk, history string) string {
	var b strings.Builder

	b.WriteString("You are a documentation assistant. You answer ONLY with information from the documents below.\n\n")
	if history != "" {
		b.WriteString(history)
		b.WriteString("\n")
	}
	b.WriteString("DOCUMENTS (CONTEXT):\n")
	b.WriteString(BuildContext(chunks))
	b.WriteString("\n\nQUESTION: ")
	b.WriteString(question)
	b.WriteString("\n\nRULES (FOLLOW EXACTLY):\n\n")
	b.WriteString("1. Use ONLY the information from the documents above. Do not add your own knowledge.\n")
	b.WriteString("2. Every sentence with a fact, number or name MUST carry its source number [1], [2], [3] right after the fact.\n")
	b.WriteString("   Correct: \"The price is 100 EUR [1]\". Wrong: \"According to the documents the price is 100 EUR\".\n")
	b.WriteString("3. If information comes from source [1] write [1], if from [2] write [2].\n")
	b.WriteString("4. Do not invent, assume or add context.\n")
	fmt.Fprintf(&b, "5. If the documents do not contain the answer, write ONLY: \"%s\"\n", RefusalAnswer)
	b.WriteString("6. Answer briefly and clearly, in the language of the question.\n\n")
	b.WriteString("ANSWER:")

	return b.String()
}

// PlainPrompt asks the model to answer from its own knowledge, used as baseline
func PlainPrompt(question string) string {
	return fmt.Sprintf("You are a helpful assistant. Answer the question clearly and precisely.\n\nQuestion: %s\n\nAnswer:", question)
}
