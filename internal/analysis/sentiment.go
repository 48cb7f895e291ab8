package analysis

import "math"

const (
	Positive = "positivo"
	Negative = "negativo"
	Neutral  = "neutro"
)

var lexicon = map[string]float64{}

var rawLexicon = map[string]float64{
	"excelente": 1.0, "sobresaliente": 0.9, "destacado": 0.8, "destacada": 0.8,
	"bueno": 0.7, "buena": 0.7, "buen": 0.7, "bien": 0.5, "mejor": 0.5,
	"feliz": 0.8, "alegre": 0.7, "motivado": 0.6, "motivada": 0.6,
	"positivo": 0.5, "positiva": 0.5, "responsable": 0.5, "respetuoso": 0.5,
	"respetuosa": 0.5, "amable": 0.6, "creativo": 0.5, "creativa": 0.5,
	"puntual": 0.4, "participativo": 0.5, "participativa": 0.5,
	"activamente": 0.3, "participa": 0.3, "colabora": 0.4, "progreso": 0.5,
	"malo": -0.7, "mala": -0.7, "mal": -0.6, "peor": -0.8,
	"triste": -0.6, "ansioso": -0.5, "ansiosa": -0.5, "ansiedad": -0.5,
	"agresivo": -0.7, "agresiva": -0.7, "conflicto": -0.4, "conflictos": -0.4,
	"dificultad": -0.4, "dificultades": -0.4, "deficiente": -0.7, "bajo": -0.3,
	"problema": -0.4, "problemas": -0.4, "miedo": -0.5, "deprimido": -0.8,
	"deprimida": -0.8, "aislado": -0.4, "aislada": -0.4, "estresado": -0.5,
	"estresada": -0.5, "inseguro": -0.4, "insegura": -0.4, "fracaso": -0.8,
	"irrespeto": -0.6, "pelea": -0.6, "peleas": -0.6, "indisciplina": -0.5,
	"reprobo": -0.6, "grosero": -0.7, "grosera": -0.7, "distraido": -0.3,
	"distraida": -0.3,
	"good": 0.7, "great": 0.8, "excellent": 1.0, "happy": 0.8, "nice": 0.6,
	"bad": -0.7, "poor": -0.4, "sad": -0.5, "angry": -0.5, "anxious": -0.25,
	"terrible": -1.0, "awful": -1.0,
}

var intensifiers = map[string]float64{
	"muy": 1.3, "bastante": 1.3, "sumamente": 1.3, "very": 1.3, "really": 1.3,
}

var negators = map[string]bool{
	"no": true, "nunca": true, "jamas": true, "tampoco": true, "sin": true,
	"not": true, "never": true,
}

const (
	negationFactor = -0.5
	negationWindow = 3
)

func init() {
	for w, v := range rawLexicon {
		lexicon[fold(w)] = v
	}
}

// Polarity scores text in [-1, 1] as the mean of its polar words. A preceding
// intensifier scales a word, a negator within a few words flips and halves it.
func Polarity(text string) float64 {
	var sum float64
	var count int
	intensity := 1.0
	negated := 0

	for _, w := range words(Normalize(text)) {
		if negators[w] {
			negated = negationWindow
			continue
		}
		if f, ok := intensifiers[w]; ok {
			intensity *= f
			continue
		}
		score, ok := lexicon[w]
		if !ok {
			if negated > 0 {
				negated--
			}
			intensity = 1
			continue
		}
		score *= intensity
		if negated > 0 {
			score *= negationFactor
		}
		sum += math.Max(-1, math.Min(1, score))
		count++
		intensity, negated = 1, 0
	}
	if count == 0 {
		return 0
	}
	return math.Max(-1, math.Min(1, sum/float64(count)))
}

// Tone buckets a polarity for strategy advice.
func Tone(p float64) string {
	switch {
	case p > 0.2:
		return Positive
	case p < -0.2:
		return Negative
	default:
		return Neutral
	}
}

// SentimentLabel buckets a polarity for reports, with a narrower neutral band than Tone.
func SentimentLabel(p float64) string {
	switch {
	case p > 0.1:
		return "Positivo"
	case p < -0.1:
		return "Negativo"
	default:
		return "Neutral"
	}
}

// Round rounds to the given number of decimals.
func Round(v float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(v*pow) / pow
}
