// Package generation defines the boundary between the application core and
// external LLM services. It holds the Generator capability that providers
// implement, the prompt contract all providers share, and the response parser
// that turns free-form model output into flashcard proposals.
package generation
