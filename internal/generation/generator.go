package generation

import (
	"context"

	"github.com/mkowalczyk/cardgen-api/internal/domain"
)

// Output is the result of one provider invocation: the parsed proposals and
// the identifier of the model that produced them.
type Output struct {
	Proposals []domain.FlashcardProposal
	Model     string
}

// Generator defines the capability of turning source text into flashcard
// proposals via an external LLM service. Implementations differ only in
// transport and authentication; the prompt and parsing contracts are shared,
// which keeps providers interchangeable.
//
// A response from which zero proposals can be extracted is a valid Output,
// not an error. An error is returned only when the provider itself fails:
// network failure, timeout, non-success status, or a response body the
// transport cannot decode at all. Such errors wrap ErrProviderFailure.
type Generator interface {
	GenerateProposals(ctx context.Context, sourceText string) (*Output, error)
}
