package generation

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/mkowalczyk/cardgen-api/internal/domain"
)

// Fallback label patterns. Labels are case-sensitive anchors that may span
// multiple lines; the non-greedy group stops at the opposite label or at the
// end of the segment.
var (
	frontPattern = regexp.MustCompile(`(?s)FRONT:\s*(.*?)(?:BACK:|$)`)
	backPattern  = regexp.MustCompile(`(?s)BACK:\s*(.*?)(?:FRONT:|$)`)
)

// structuredProposal mirrors the JSON shape providers are instructed to
// return. Pointers distinguish absent fields from empty ones; unknown
// members are ignored.
type structuredProposal struct {
	Front *string `json:"front"`
	Back  *string `json:"back"`
}

// ParseProposals extracts flashcard proposals from raw provider output.
// It never fails: input from which nothing can be recovered yields an empty
// slice. Proposals keep their discovery order and are tagged as unedited AI
// output.
//
// Parsing is a two-phase, first-match-wins pipeline. The structured phase
// accepts the input only when it is, in its entirety, a JSON array of
// objects carrying non-empty front and back strings; any defect discards the phase as
// a whole rather than salvaging a prefix. Only then does the pattern phase
// split the text on "---" and recover FRONT:/BACK: labelled segments
// independently, dropping segments missing either side.
func ParseProposals(raw string) []domain.FlashcardProposal {
	if proposals, ok := parseStructured(raw); ok {
		return proposals
	}
	return parseLabelled(raw)
}

// parseStructured attempts the strict-JSON phase. The boolean reports
// whether the phase succeeded; a false return carries no partial result.
func parseStructured(raw string) ([]domain.FlashcardProposal, bool) {
	var items []structuredProposal
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, false
	}

	proposals := make([]domain.FlashcardProposal, 0, len(items))
	for _, item := range items {
		if item.Front == nil || item.Back == nil || *item.Front == "" || *item.Back == "" {
			// An element missing either field, or carrying it empty, makes
			// the whole input non-conforming; no partial acceptance.
			return nil, false
		}
		proposals = append(proposals, domain.NewProposal(*item.Front, *item.Back))
	}

	return proposals, true
}

// parseLabelled is the fallback phase: split on the literal "---" delimiter
// and extract one proposal per segment that carries both labels with
// non-empty content. Defective segments are dropped, never fatal.
func parseLabelled(raw string) []domain.FlashcardProposal {
	var proposals []domain.FlashcardProposal

	for _, segment := range strings.Split(raw, "---") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}

		frontMatch := frontPattern.FindStringSubmatch(segment)
		backMatch := backPattern.FindStringSubmatch(segment)
		if frontMatch == nil || backMatch == nil {
			continue
		}

		front := strings.TrimSpace(frontMatch[1])
		back := strings.TrimSpace(backMatch[1])
		if front == "" || back == "" {
			continue
		}

		proposals = append(proposals, domain.NewProposal(front, back))
	}

	return proposals
}
