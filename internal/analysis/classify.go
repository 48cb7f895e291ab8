package analysis

import "strings"

// Classification is a category with one strategy per audience.
type Classification struct {
	Category   string `json:"category"`
	Teacher    string `json:"teacher"`
	Counseling string `json:"counseling"`
	Family     string `json:"family"`
}

type rule struct {
	keywords []string
	result   Classification
}

// categoryRules are checked in order; the first match wins.
var categoryRules = []rule{
	{
		keywords: normalizeAll("ansioso", "triste", "baja autoestima", "miedo", "inseguro"),
		result: Classification{
			Category:   "Apoyo emocional",
			Teacher:    "Proponer actividades de refuerzo positivo y crear un ambiente seguro.",
			Counseling: "Evaluar causas emocionales; sesiones individuales para fortalecer autoestima.",
			Family:     "Promover espacios de escucha en casa y validar emociones del estudiante.",
		},
	},
	{
		keywords: normalizeAll("agresivo", "conflicto", "indisciplina", "respeto"),
		result: Classification{
			Category:   "Dificultad conductual",
			Teacher:    "Reforzar normas de convivencia y usar mediación positiva.",
			Counseling: "Sesiones de control de impulsos o trabajo grupal en resolución de conflictos.",
			Family:     "Establecer límites claros y coherencia entre escuela y hogar.",
		},
	},
	{
		keywords: normalizeAll("participa", "liderazgo", "colabora", "destacado"),
		result: Classification{
			Category:   "Alto desempeño",
			Teacher:    "Delegar liderazgo y fomentar tutorías entre pares.",
			Counseling: "Estimular proyectos de autonomía personal y social.",
			Family:     "Reconocer logros y mantener motivación con nuevos retos.",
		},
	},
	{
		keywords: normalizeAll("dificultad", "no comprende", "bajo rendimiento", "reprobó"),
		result: Classification{
			Category:   "Dificultad académica",
			Teacher:    "Aplicar refuerzos diferenciados y adaptar estrategias didácticas.",
			Counseling: "Evaluar estilo de aprendizaje; apoyo cognitivo si es necesario.",
			Family:     "Acompañar tareas y reforzar hábitos de estudio en casa.",
		},
	},
}

var generalObservation = Classification{
	Category:   "Observación general",
	Teacher:    "Continuar seguimiento regular y reforzar aspectos positivos.",
	Counseling: "Monitoreo sin intervención directa por ahora.",
	Family:     "Mantener comunicación constante con el docente.",
}

// Classify maps an observation to the first matching category.
func Classify(text string) Classification {
	normalized := Normalize(text)
	for _, r := range categoryRules {
		if containsAny(normalized, r.keywords) {
			return r.result
		}
	}
	return generalObservation
}

// Advice is a tone-aware pair of strategies.
type Advice struct {
	Tone             string `json:"tone"`
	Teacher          string `json:"teacher"`
	CounselingFamily string `json:"counseling_family"`
}

var (
	lowAcademic   = normalizeAll("bajo", "deficiente", "dificultad", "mejorar", "fracaso")
	highAcademic  = normalizeAll("excelente", "destacado", "sobresaliente", "muy bueno")
	lowDiscipline = normalizeAll("indisciplina", "falta", "conflicto", "castigo", "problema")
	unstable      = normalizeAll("ansioso", "estresado", "triste", "deprimido", "miedo", "aislado")
	leadership    = normalizeAll("lider", "apoya", "coopera", "ejemplo", "ayuda")
	familyContext = normalizeAll("padre", "madre", "acudiente", "familia")
)

const (
	negativeFollowUp = " Mantener seguimiento cercano para revertir tendencia negativa."
	positiveFollowUp = " Reforzar los comportamientos positivos observados."
)

var blankAdvice = Advice{
	Tone:             Neutral,
	Teacher:          "Monitoreo general del estudiante.",
	CounselingFamily: "Comunicación regular con la familia.",
}

// Advise picks strategies from keyword groups in fixed precedence and then
// adjusts the teacher strategy to the detected tone.
func Advise(text string) Advice {
	if strings.TrimSpace(text) == "" {
		return blankAdvice
	}
	normalized := Normalize(text)

	advice := Advice{
		Tone:             Tone(Polarity(text)),
		Teacher:          "Monitoreo y acompañamiento continuo.",
		CounselingFamily: "Comunicación periódica con la familia.",
	}
	emotional := containsAny(normalized, unstable)

	switch {
	case containsAny(normalized, lowAcademic):
		advice.Teacher = "Diseñar plan de refuerzo académico personalizado y acompañar el proceso."
		advice.CounselingFamily = "Involucrar a la familia para reforzar hábitos de estudio en casa."
	case containsAny(normalized, highAcademic):
		advice.Teacher = "Fomentar retos académicos y liderazgo en el aula."
		advice.CounselingFamily = "Reconocer logros y fortalecer la motivación intrínseca."
	case containsAny(normalized, lowDiscipline):
		advice.Teacher = "Aplicar estrategias de disciplina positiva y trabajo colaborativo."
		advice.CounselingFamily = "Reforzar normas y límites desde el hogar."
	case emotional:
		advice.Teacher = "Favorecer ambientes de confianza y apoyo emocional en clase."
		advice.CounselingFamily = "Remitir a orientación escolar y fomentar comunicación familiar."
	case containsAny(normalized, leadership):
		advice.Teacher = "Potenciar liderazgo y promover tutorías entre pares."
		advice.CounselingFamily = "Reconocer positivamente el compromiso del estudiante."
	case containsAny(normalized, familyContext):
		advice.Teacher = "Coordinar acciones conjuntas con los padres o acudientes."
		advice.CounselingFamily = "Orientar estrategias familiares para acompañamiento académico."
	}

	switch {
	case advice.Tone == Negative && !emotional:
		advice.Teacher += negativeFollowUp
	case advice.Tone == Positive:
		advice.Teacher += positiveFollowUp
	}
	return advice
}

// Topics flags the themes an observation touches.
type Topics struct {
	Conflict  bool `json:"conflict"`
	Emotional bool `json:"emotional"`
	Academic  bool `json:"academic"`
}

var (
	conflictStems  = normalizeAll("agresiv", "conflict", "pelea", "discute", "irrespeto")
	emotionalStems = normalizeAll("triste", "ansios", "ansiedad", "aislad", "estresad", "miedo", "depres")
	academicStems  = normalizeAll("dificultad", "no comprende", "no entiende", "bajo rendimiento", "no entrega", "reprob")
)

// DetectTopics matches observation text against the theme stems.
func DetectTopics(text string) Topics {
	normalized := Normalize(text)
	return Topics{
		Conflict:  containsAny(normalized, conflictStems),
		Emotional: containsAny(normalized, emotionalStems),
		Academic:  containsAny(normalized, academicStems),
	}
}

// Labels names the detected themes.
func (t Topics) Labels() []string {
	labels := []string{}
	if t.Conflict {
		labels = append(labels, "conflictos interpersonales")
	}
	if t.Emotional {
		labels = append(labels, "situaciones emocionales")
	}
	if t.Academic {
		labels = append(labels, "bajo rendimiento académico")
	}
	return labels
}
