package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "reprobo el examen", Normalize("  Reprobó el EXAMEN "))
	assert.Equal(t, "nino", Normalize("Niño"))
}

func TestPolarity(t *testing.T) {
	assert.Zero(t, Polarity(""))
	assert.Zero(t, Polarity("Asiste a clase"))
	assert.InDelta(t, 0.91, Polarity("Muy bueno"), 1e-9)
	assert.InDelta(t, -0.35, Polarity("No es bueno"), 1e-9)
	assert.InDelta(t, -0.7, Polarity("Se ve triste y deprimido"), 1e-9)
	assert.InDelta(t, 1.0, Polarity("Muy muy excelente"), 1e-9)
}

func TestToneAndSentimentLabel(t *testing.T) {
	assert.Equal(t, Positive, Tone(0.5))
	assert.Equal(t, Negative, Tone(-0.5))
	assert.Equal(t, Neutral, Tone(0.15))
	assert.Equal(t, "Positivo", SentimentLabel(0.15))
	assert.Equal(t, "Negativo", SentimentLabel(-0.15))
	assert.Equal(t, "Neutral", SentimentLabel(0.05))
}

func TestKeywords(t *testing.T) {
	text := "El estudiante participa activamente en la clase de matemáticas y participa mucho"

	assert.Equal(t, []string{"estudiante", "participa", "activamente", "clase", "matemáticas", "mucho"}, Keywords(text, 10))
	assert.Equal(t, []string{"estudiante", "participa", "activamente"}, Keywords(text, 3))
	assert.Empty(t, Keywords("", 10))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		text     string
		category string
	}{
		{"Se muestra ansioso en clase", "Apoyo emocional"},
		{"Triste y agresivo con sus compañeros", "Apoyo emocional"},
		{"Es agresivo con compañeros", "Dificultad conductual"},
		{"Participa activamente", "Alto desempeño"},
		{"Reprobo el examen final", "Dificultad académica"},
		{"Dificultad con la concentración", "Dificultad académica"},
		{"Requiere apoyo emocional", "Observación general"},
		{"", "Observación general"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.category, Classify(tt.text).Category)
		})
	}
}

func TestAdvise(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		tone    string
		teacher string
		family  string
	}{
		{
			name: "blank", text: "   ", tone: Neutral,
			teacher: "Monitoreo general del estudiante.",
			family:  "Comunicación regular con la familia.",
		},
		{
			name: "high achiever", text: "Excelente rendimiento", tone: Positive,
			teacher: "Fomentar retos académicos y liderazgo en el aula. Reforzar los comportamientos positivos observados.",
			family:  "Reconocer logros y fortalecer la motivación intrínseca.",
		},
		{
			name: "low academic", text: "Necesita mejorar la convivencia", tone: Neutral,
			teacher: "Diseñar plan de refuerzo académico personalizado y acompañar el proceso.",
			family:  "Involucrar a la familia para reforzar hábitos de estudio en casa.",
		},
		{
			name: "emotional keeps plain strategy", text: "Se ve triste y deprimido", tone: Negative,
			teacher: "Favorecer ambientes de confianza y apoyo emocional en clase.",
			family:  "Remitir a orientación escolar y fomentar comunicación familiar.",
		},
		{
			name: "negative discipline", text: "Tiene un conflicto grave", tone: Negative,
			teacher: "Aplicar estrategias de disciplina positiva y trabajo colaborativo. Mantener seguimiento cercano para revertir tendencia negativa.",
			family:  "Reforzar normas y límites desde el hogar.",
		},
		{
			name: "leadership", text: "Es un líder natural", tone: Neutral,
			teacher: "Potenciar liderazgo y promover tutorías entre pares.",
			family:  "Reconocer positivamente el compromiso del estudiante.",
		},
		{
			name: "family", text: "Habló con la madre", tone: Neutral,
			teacher: "Coordinar acciones conjuntas con los padres o acudientes.",
			family:  "Orientar estrategias familiares para acompañamiento académico.",
		},
		{
			name: "nothing matched", text: "Requiere apoyo emocional", tone: Neutral,
			teacher: "Monitoreo y acompañamiento continuo.",
			family:  "Comunicación periódica con la familia.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Advise(tt.text)
			assert.Equal(t, tt.tone, got.Tone)
			assert.Equal(t, tt.teacher, got.Teacher)
			assert.Equal(t, tt.family, got.CounselingFamily)
		})
	}
}

func TestDetectTopics(t *testing.T) {
	topics := DetectTopics("Es agresivo y discute; no entrega tareas")

	assert.Equal(t, Topics{Conflict: true, Academic: true}, topics)
	assert.Equal(t, []string{"conflictos interpersonales", "bajo rendimiento académico"}, topics.Labels())
	assert.Equal(t, Topics{Emotional: true}, DetectTopics("Muestra ANSIEDAD"))
	assert.Empty(t, DetectTopics("").Labels())
}

func TestAnalyze(t *testing.T) {
	a := Analyze("Muy bueno en matemáticas")

	assert.Equal(t, 0.91, a.Polarity)
	assert.Equal(t, "Positivo", a.Sentiment)
	assert.Equal(t, []string{"bueno", "matemáticas"}, a.Keywords)
	assert.Equal(t, "Observación general", a.Classification.Category)
	assert.Equal(t, Positive, a.Advice.Tone)
}
