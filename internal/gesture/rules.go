package gesture

import (
	"errors"
	"fmt"
)

// ErrUnknownMode is returned for a mode with no rule table.
var ErrUnknownMode = errors.New("gesture: unknown mode")

// Mode selects a rule table.
type Mode string

const (
	ModeLetter Mode = "letter"
	ModeWord   Mode = "word"
)

// Rule maps a predicate over features to a label.
type Rule struct {
	Name  string
	Match func(Features) bool
	Label Label
}

// Evaluate returns the label of the first matching rule, or Unknown.
func Evaluate(rules []Rule, f Features) Label {
	for _, r := range rules {
		if r.Match(f) {
			return r.Label
		}
	}
	return Unknown
}

// DefaultMirror keeps the camera's view: an index tip right of the wrist reads "Me".
const DefaultMirror = false

// WordOptions configures the word table.
type WordOptions struct {
	// Mirror swaps the Me/You side test for mirrored video.
	Mirror bool
}

// Classifier evaluates the letter and word rule tables.
// It holds no per-frame state and is safe for concurrent use.
type Classifier struct {
	letters []Rule
	words   []Rule
}

// NewClassifier builds a classifier with the canonical tables.
func NewClassifier(opts WordOptions) *Classifier {
	return &Classifier{
		letters: LetterRules(),
		words:   WordRules(opts),
	}
}

// Rules returns the ordered table for mode.
func (c *Classifier) Rules(mode Mode) ([]Rule, error) {
	switch mode {
	case ModeLetter:
		return c.letters, nil
	case ModeWord:
		return c.words, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

// Classify maps a feature vector to a label. The first matching rule wins;
// Unknown is returned when none match.
func (c *Classifier) Classify(f Features, mode Mode) (Label, error) {
	if err := f.Validate(); err != nil {
		return Unknown, err
	}
	rules, err := c.Rules(mode)
	if err != nil {
		return Unknown, err
	}
	return Evaluate(rules, f), nil
}
