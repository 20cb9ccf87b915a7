package mention

import (
	"strings"
	"unicode"
)

// Match is a detected trigger occurrence.
type Match struct {
	Trigger *Trigger
	Query   string
	// Index is the byte offset of the trigger character in the scanned text.
	Index int
}

// Detect finds the trigger whose last occurrence in text is closest to the end and is
// not followed by whitespace. Callers skip detection while a composition is active.
func Detect(text string, triggers []Trigger) (Match, bool) {
	var best Match
	found := false
	for i := range triggers {
		char := triggers[i].Char
		if char == "" {
			continue
		}
		idx := strings.LastIndex(text, char)
		if idx < 0 {
			continue
		}
		query := text[idx+len(char):]
		if strings.IndexFunc(query, unicode.IsSpace) >= 0 {
			continue
		}
		if !found || idx > best.Index {
			best = Match{Trigger: &triggers[i], Query: query, Index: idx}
			found = true
		}
	}
	return best, found
}
