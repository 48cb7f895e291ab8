// Package strategy derives per-student intervention plans from scores and notes.
package strategy

import (
	"studentdash/internal/analysis"
	"studentdash/internal/model"
)

// Plan holds one strategy per audience for a student.
type Plan struct {
	StudentID  int    `json:"student_id"`
	Teacher    string `json:"teacher"`
	Counseling string `json:"counseling"`
	Family     string `json:"family"`
}

// ForStudent applies the score thresholds and observation themes.
func ForStudent(s model.Student) Plan {
	topics := analysis.DetectTopics(s.Observations)
	academic := s.Academic
	discipline := float64(s.Discipline)
	emotional := float64(s.Emotional)

	p := Plan{StudentID: s.ID}

	switch {
	case academic < 3:
		p.Teacher = "Implementar tutoría individualizada y plan de refuerzo, seguimiento de tareas y rutinas."
	case academic < 4:
		p.Teacher = "Refuerzo por grupos pequeños y tareas prácticas; seguimiento semanal."
	default:
		p.Teacher = "Proponer actividades de liderazgo y retos académicos para mantener motivación."
	}

	switch {
	case emotional < 5 || topics.Emotional:
		p.Counseling = "Atención psicoorientadora individual: trabajo en manejo emocional y autoestima."
	case topics.Conflict:
		p.Counseling = "Intervención en habilidades sociales y mediación entre pares."
	default:
		p.Counseling = "Acompañamiento preventivo y seguimiento periódico del bienestar emocional."
	}

	switch {
	case discipline < 5 || topics.Academic:
		p.Family = "Coordinar reunión con familia para establecer rutinas y acuerdos de seguimiento."
	case emotional < 5:
		p.Family = "Orientar a la familia sobre escucha activa y apoyo emocional en casa."
	default:
		p.Family = "Involucrar a la familia en refuerzo positivo y seguimiento del progreso."
	}
	return p
}

// ForStudents maps ForStudent over students, keeping their order.
func ForStudents(students []model.Student) []Plan {
	plans := make([]Plan, 0, len(students))
	for _, s := range students {
		plans = append(plans, ForStudent(s))
	}
	return plans
}
