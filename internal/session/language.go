package session

import (
	"strconv"
	"strings"
)

// DefaultLanguage is used when no language has been chosen or the choice is not recognized.
const DefaultLanguage = "english"

// Languages lists the selectable languages in menu order (1-based on screen).
var Languages = []string{"english", "italian", "spanish", "french"}

// ResolveLanguage maps a menu number or a language name to a supported
// language. Unrecognized input falls back to DefaultLanguage.
func ResolveLanguage(input string) string {
	choice := strings.ToLower(strings.TrimSpace(input))
	for i, lang := range Languages {
		if choice == lang || choice == strconv.Itoa(i+1) {
			return lang
		}
	}
	return DefaultLanguage
}

func normalize(language string) string {
	return strings.ToLower(strings.TrimSpace(language))
}
