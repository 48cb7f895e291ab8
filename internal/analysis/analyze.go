// Package analysis turns free-text teacher observations into tone, keywords,
// themes and canned strategies.
package analysis

// Analysis bundles every heuristic for one observation.
type Analysis struct {
	Polarity       float64        `json:"polarity"`
	Sentiment      string         `json:"sentiment"`
	Keywords       []string       `json:"keywords"`
	Topics         Topics         `json:"topics"`
	Classification Classification `json:"classification"`
	Advice         Advice         `json:"advice"`
}

func Analyze(text string) Analysis {
	p := Polarity(text)
	return Analysis{
		Polarity:       Round(p, 2),
		Sentiment:      SentimentLabel(p),
		Keywords:       Keywords(text, DefaultKeywordLimit),
		Topics:         DetectTopics(text),
		Classification: Classify(text),
		Advice:         Advise(text),
	}
}
