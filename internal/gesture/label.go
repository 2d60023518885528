package gesture

// Kind tags what a Label holds.
type Kind int

const (
	KindUnknown Kind = iota
	KindLetter
	KindWord
)

// String returns the kind name used in logs and the API.
func (k Kind) String() string {
	switch k {
	case KindLetter:
		return "letter"
	case KindWord:
		return "word"
	default:
		return "unknown"
	}
}

// DefaultPlaceholder is how an unknown label is rendered.
const DefaultPlaceholder = "..."

// Label is a classification result: a letter, a word, or unknown.
// The zero value is Unknown.
type Label struct {
	Kind  Kind
	Value string
}

// Unknown is the no-detection label.
var Unknown = Label{}

// Letter returns a letter label.
func Letter(s string) Label { return Label{Kind: KindLetter, Value: s} }

// Word returns a word label.
func Word(s string) Label { return Label{Kind: KindWord, Value: s} }

// IsUnknown reports whether l is the no-detection label.
func (l Label) IsUnknown() bool { return l.Kind == KindUnknown }

// String returns the label value, empty for unknown.
func (l Label) String() string { return l.Value }

// Render returns the display text, substituting placeholder for unknown.
func (l Label) Render(placeholder string) string {
	if l.IsUnknown() {
		return placeholder
	}
	return l.Value
}

// Letters is the recognized alphabet subset. H, J, K, X and Z need motion
// or orientation the rule tables cannot see.
var Letters = []string{
	"A", "B", "C", "D", "E", "F", "G", "I", "L", "M", "N",
	"O", "P", "Q", "R", "S", "T", "U", "V", "W", "Y",
}

// Word catalog.
const (
	WordILoveYou = "I love you"
	WordPhone    = "Phone"
	WordRock     = "Rock"
	WordOK       = "OK"
	WordPeace    = "Peace"
	WordCool     = "Cool/Good"
	WordBad      = "Bad"
	WordHi       = "Hi"
	WordMe       = "Me"
	WordYou      = "You"
	WordEat      = "Eat"
	WordDrink    = "Drink"
	WordMoney    = "Money"
)

// Words lists the catalog in rule order.
var Words = []string{
	WordILoveYou, WordPhone, WordRock, WordOK, WordPeace, WordCool, WordBad,
	WordHi, WordMe, WordYou, WordEat, WordDrink, WordMoney,
}
