// Package report renders grade reports and enriched exports.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"

	"studentdash/internal/analysis"
	"studentdash/internal/database"
	"studentdash/internal/model"
	"studentdash/internal/strategy"
)

var ErrNoRecords = errors.New("no records for grade")

// Extra columns of the enriched export.
const (
	ColumnCluster    = "Perfil Clúster"
	ColumnTeacher    = "Estrategia Docente"
	ColumnCounseling = "Estrategia Psicoorientación"
	ColumnFamily     = "Estrategia Familiar"
)

func ofGrade(students []model.Student, grade string) []model.Student {
	out := []model.Student{}
	for _, s := range students {
		if s.Grade == grade {
			out = append(out, s)
		}
	}
	return out
}

// GradeText summarises the advice for every student of grade.
func GradeText(students []model.Student, grade string) string {
	selected := ofGrade(students, grade)
	if len(selected) == 0 {
		return fmt.Sprintf("No hay registros disponibles para el grado %s.", grade)
	}

	parts := []string{fmt.Sprintf("Informe general del grado %s\n", grade)}
	for _, s := range selected {
		advice := analysis.Advise(s.Observations)
		parts = append(parts, fmt.Sprintf(
			"- %s (%s):\n  - Estrategia docente: %s\n  - Psicoorientación / Familia: %s\n",
			s.Name, advice.Tone, advice.Teacher, advice.CounselingFamily,
		))
	}
	return strings.Join(parts, "\n")
}

// WriteGradePDF writes an A4 follow-up report for grade to w.
func WriteGradePDF(w io.Writer, students []model.Student, grade string) error {
	selected := ofGrade(students, grade)
	if len(selected) == 0 {
		return errors.Wrapf(ErrNoRecords, "grade %s", grade)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetTitle("Informe de Seguimiento - Grado "+grade, true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr("Informe de Seguimiento - Grado "+grade), "", 1, "C", false, 0, "")

	for _, s := range selected {
		a := analysis.Analyze(s.Observations)
		updated := ""
		if !s.LastUpdated.IsZero() {
			updated = s.LastUpdated.Format(model.TimeLayout)
		}

		pdf.Ln(8)
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 10, tr(fmt.Sprintf("Estudiante: %s (ID: %d)", s.Name, s.ID)), "", 1, "", false, 0, "")
		pdf.SetFont("Arial", "", 11)
		for _, line := range []string{
			fmt.Sprintf("%s: %s", database.ColumnAcademic, strconv.FormatFloat(s.Academic, 'f', -1, 64)),
			fmt.Sprintf("%s: %d", database.ColumnDiscipline, s.Discipline),
			fmt.Sprintf("%s: %d", database.ColumnEmotional, s.Emotional),
			fmt.Sprintf("%s: %s", database.ColumnObservations, s.Observations),
			fmt.Sprintf("Sentimiento: %s (Polaridad: %s)", a.Sentiment, strconv.FormatFloat(analysis.Round(analysis.Polarity(s.Observations), 3), 'f', -1, 64)),
			fmt.Sprintf("Palabras clave: %s", strings.Join(a.Keywords, ", ")),
			fmt.Sprintf("%s: %s", database.ColumnLastUpdated, updated),
		} {
			pdf.MultiCell(0, 8, tr(line), "", "", false)
		}
		y := pdf.GetY()
		pdf.Line(10, y, 200, y)
	}

	if err := pdf.Error(); err != nil {
		return errors.Wrap(err, "render pdf")
	}
	return errors.Wrap(pdf.Output(w), "write pdf")
}

// WriteEnrichedCSV writes the table with each student's cluster label and
// plan appended. labels and plans are indexed like students.
func WriteEnrichedCSV(w io.Writer, students []model.Student, labels []int, plans []strategy.Plan) error {
	if len(labels) != len(students) || len(plans) != len(students) {
		return errors.Errorf("enriched export: %d students, %d labels, %d plans", len(students), len(labels), len(plans))
	}
	if _, err := io.WriteString(w, "\ufeff"); err != nil {
		return errors.Wrap(err, "write BOM")
	}

	writer := csv.NewWriter(w)
	header := append(append([]string{}, database.Header...), ColumnCluster, ColumnTeacher, ColumnCounseling, ColumnFamily)
	if err := writer.Write(header); err != nil {
		return errors.Wrap(err, "write header")
	}
	for i, s := range students {
		record := append(database.EncodeRecord(s), strconv.Itoa(labels[i]), plans[i].Teacher, plans[i].Counseling, plans[i].Family)
		if err := writer.Write(record); err != nil {
			return errors.Wrapf(err, "write student %d", s.ID)
		}
	}
	writer.Flush()
	return errors.Wrap(writer.Error(), "flush csv")
}
