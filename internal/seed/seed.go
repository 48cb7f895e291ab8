// Package seed generates fictitious students for demos and local testing.
package seed

import (
	"math"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"studentdash/internal/model"
)

var (
	Grades = []string{"6A", "6B", "7A", "7B", "8A"}

	Observations = []string{
		"Participa activamente",
		"Requiere apoyo emocional",
		"Dificultad con la concentración",
		"Excelente rendimiento",
		"Necesita mejorar la convivencia",
	}
)

// Generate returns n students with sequential IDs from model.FirstID. Every
// (grade, name) pair is unique, so each record stays reachable by identity.
func Generate(n int, faker *gofakeit.Faker, now time.Time) []model.Student {
	if n <= 0 {
		return []model.Student{}
	}

	taken := make(map[string]bool, n)
	students := make([]model.Student, 0, n)
	for i := 0; i < n; i++ {
		grade := faker.RandomString(Grades)
		name := faker.Name()
		for taken[identity(grade, name)] {
			name = faker.Name()
		}
		taken[identity(grade, name)] = true

		students = append(students, model.Student{
			ID:           model.FirstID + i,
			Name:         name,
			Grade:        grade,
			Academic:     math.Round(faker.Float64Range(model.AcademicMin, model.AcademicMax)*100) / 100,
			Discipline:   faker.IntRange(model.ScoreMin, model.ScoreMax),
			Emotional:    faker.IntRange(model.ScoreMin, model.ScoreMax),
			Observations: faker.RandomString(Observations),
			LastUpdated:  now,
		})
	}
	return students
}

func identity(grade, name string) string {
	return grade + "\x00" + strings.ToLower(strings.TrimSpace(name))
}
