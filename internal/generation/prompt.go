package generation

import "fmt"

// SystemPrompt is the fixed instruction sent to every provider. Providers
// must not vary it; interchangeability depends on all variants requesting
// the same response shape.
const SystemPrompt = `You are a helpful assistant that generates flashcards from text. ` +
	`Create 5-10 high-quality flashcards with a question on the front and an answer on the back. ` +
	`Each flashcard should cover a key concept from the text. ` +
	`Format your response as a JSON array with objects containing "front" and "back" properties. ` +
	`JSON only, no extra text, tags or delimiters.`

// Sampling parameters shared by all providers.
const (
	Temperature     = 0.7
	MaxOutputTokens = 2000
)

// UserPrompt embeds the verbatim source text into the shared user
// instruction. The FRONT/BACK format described here is the fallback shape
// the parser recovers when a model ignores the JSON instruction.
func UserPrompt(sourceText string) string {
	return fmt.Sprintf(
		"Create flashcards from the following text. Generate 5-10 flashcards that cover the key concepts, "+
			"definitions, and important information.\n\n"+
			"Format each flashcard as:\n"+
			"FRONT: [question or prompt]\n"+
			"BACK: [answer or explanation]\n"+
			"---\n\n"+
			"Make the questions clear and concise. Make the answers informative but not too long.\n\n"+
			"Text to process:\n%s", sourceText)
}
