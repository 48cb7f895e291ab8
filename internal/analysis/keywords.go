package analysis

import "unicode/utf8"

// DefaultKeywordLimit is the number of keywords reports show.
const DefaultKeywordLimit = 10

var stopwords = map[string]bool{}

func init() {
	for _, w := range []string{
		"el", "la", "los", "las", "un", "una", "unos", "unas", "de", "del", "al",
		"y", "o", "u", "e", "en", "con", "por", "para", "que", "se", "su", "sus",
		"es", "son", "esta", "este", "estos", "estas", "eso", "esa", "ese", "lo",
		"le", "les", "me", "mi", "mis", "muy", "mas", "pero", "como", "cuando",
		"tiene", "tienen", "hay", "ha", "han", "ser", "estar", "sin", "sobre",
		"entre", "tambien", "ya", "aun", "todo", "toda", "todos", "todas", "no",
		"si", "desde", "hasta", "durante", "cada", "otro", "otra", "nos", "ni",
		"the", "and", "for", "with", "has", "have", "was", "are", "this", "that",
		"not", "but", "his", "her", "very",
	} {
		stopwords[fold(w)] = true
	}
}

// Keywords returns up to limit distinct content words of text in first-seen
// order. Words keep their accents; comparison ignores them.
func Keywords(text string, limit int) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, w := range words(lower(text)) {
		if len(out) >= limit {
			break
		}
		key := fold(w)
		if utf8.RuneCountInString(key) < 3 || stopwords[key] || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, w)
	}
	return out
}
