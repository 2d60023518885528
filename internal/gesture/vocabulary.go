package gesture

// Display languages.
const (
	LangEnglish    = "en"
	LangPortuguese = "pt-BR"
)

var portuguese = map[string]string{
	WordILoveYou: "Eu te amo",
	WordPhone:    "Telefone",
	WordRock:     "Rock",
	WordOK:       "OK",
	WordPeace:    "Paz",
	WordCool:     "Legal / Bom",
	WordBad:      "Ruim",
	WordHi:       "Oi",
	WordMe:       "Eu",
	WordYou:      "Você",
	WordEat:      "Comer",
	WordDrink:    "Beber",
	WordMoney:    "Dinheiro",
}

// Translate renders a label in lang. Letters and unrecognized languages
// keep the canonical value; unknown renders as the empty string.
func Translate(l Label, lang string) string {
	if l.Kind == KindWord && lang == LangPortuguese {
		if s, ok := portuguese[l.Value]; ok {
			return s
		}
	}
	return l.Value
}

// SupportedLanguage reports whether Translate knows lang.
func SupportedLanguage(lang string) bool {
	return lang == LangEnglish || lang == LangPortuguese
}
