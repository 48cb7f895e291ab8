package model

import (
	"strings"
	"time"
)

// Score bounds and the values a newly registered student starts with.
const (
	AcademicMin = 1.0
	AcademicMax = 5.0
	ScoreMin    = 0
	ScoreMax    = 10

	DefaultAcademic   = 3.0
	DefaultDiscipline = 5
	DefaultEmotional  = 5

	// FirstID is assigned when the table is empty.
	FirstID = 1200
)

// TimeLayout is the on-disk format of LastUpdated.
const TimeLayout = "2006-01-02 15:04:05"

// Student is one row of the follow-up table.
type Student struct {
	ID           int       `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name         string    `gorm:"index:idx_grade_name" json:"name"`
	Grade        string    `gorm:"index:idx_grade_name" json:"grade"`
	Academic     float64   `json:"academic"`
	Discipline   int       `json:"discipline"`
	Emotional    int       `json:"emotional"`
	Observations string    `json:"observations"`
	LastUpdated  time.Time `json:"last_updated"`
}

// Matches reports whether s is the record identified by (grade, name).
// Grades compare exactly, names case-insensitively.
func (s Student) Matches(grade, name string) bool {
	return s.Grade == grade && strings.EqualFold(strings.TrimSpace(s.Name), strings.TrimSpace(name))
}

// NextID returns the identifier for a record appended to students. Records
// without an ID yet are ignored.
func NextID(students []Student) int {
	highest := 0
	for _, s := range students {
		if s.ID > highest {
			highest = s.ID
		}
	}
	if highest == 0 {
		return FirstID
	}
	return highest + 1
}

var newlines = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// NormalizeNewlines rewrites CRLF and lone CR line breaks as LF, the only
// form that survives a CSV round trip.
func NormalizeNewlines(text string) string {
	return newlines.Replace(text)
}
