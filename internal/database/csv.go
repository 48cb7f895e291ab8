package database

import (
	"bufio"
	"context"
	"encoding/csv"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"studentdash/internal/model"
)

// Column names of the data file. They are part of the file contract.
const (
	ColumnID           = "ID"
	ColumnName         = "Nombre"
	ColumnGrade        = "Grado"
	ColumnAcademic     = "Desempeño Académico"
	ColumnDiscipline   = "Disciplina"
	ColumnEmotional    = "Aspecto Emocional"
	ColumnObservations = "Observaciones Docente"
	ColumnLastUpdated  = "Última Actualización"
)

// Header is the column order written by WriteCSV.
var Header = []string{
	ColumnID,
	ColumnName,
	ColumnGrade,
	ColumnAcademic,
	ColumnDiscipline,
	ColumnEmotional,
	ColumnObservations,
	ColumnLastUpdated,
}

var ErrMissingColumn = errors.New("missing required column")

const bom = "\ufeff"

// CSVStore keeps the table in a single CSV file that is rewritten on every save.
type CSVStore struct {
	path string
	mu   sync.Mutex
}

func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

func (s *CSVStore) Path() string {
	return s.path
}

// Load reads the whole file. A missing file is an empty table.
func (s *CSVStore) Load(_ context.Context) ([]model.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []model.Student{}, nil
		}
		return nil, errors.Wrap(err, "open data file")
	}
	defer file.Close()

	students, err := ReadCSV(file)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", s.path)
	}
	return students, nil
}

// Save writes the table to a temporary file and renames it over the data file.
func (s *CSVStore) Save(_ context.Context, students []model.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create data directory")
	}

	tmp, err := os.CreateTemp(dir, ".students-*.csv")
	if err != nil {
		return errors.Wrap(err, "create temporary file")
	}
	tmpName := tmp.Name()

	if err := WriteCSV(tmp, students); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "close temporary file")
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "replace data file")
	}
	return nil
}

// WriteCSV encodes students with the fixed header, prefixed by a UTF-8 BOM.
func WriteCSV(w io.Writer, students []model.Student) error {
	if _, err := io.WriteString(w, bom); err != nil {
		return errors.Wrap(err, "write BOM")
	}
	writer := csv.NewWriter(w)
	if err := writer.Write(Header); err != nil {
		return errors.Wrap(err, "write header")
	}
	for _, s := range students {
		if err := writer.Write(EncodeRecord(s)); err != nil {
			return errors.Wrapf(err, "write student %d", s.ID)
		}
	}
	writer.Flush()
	return errors.Wrap(writer.Error(), "flush csv")
}

// EncodeRecord returns the cells of s in Header order.
func EncodeRecord(s model.Student) []string {
	updated := ""
	if !s.LastUpdated.IsZero() {
		updated = s.LastUpdated.Format(model.TimeLayout)
	}
	return []string{
		strconv.Itoa(s.ID),
		s.Name,
		s.Grade,
		strconv.FormatFloat(s.Academic, 'f', -1, 64),
		strconv.Itoa(s.Discipline),
		strconv.Itoa(s.Emotional),
		model.NormalizeNewlines(s.Observations),
		updated,
	}
}

// ReadCSV decodes a whole table. Rows without an ID get one allocated after
// the highest ID in the file.
func ReadCSV(r io.Reader) ([]model.Student, error) {
	reader := NewCSVReader(r)

	header, err := reader.Read()
	if err == io.EOF {
		return []model.Student{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read header")
	}
	decoder, err := NewCSVDecoder(header)
	if err != nil {
		return nil, err
	}

	students := []model.Student{}
	var missingID []int
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "read record")
		}
		line, _ := reader.FieldPos(0)
		student, err := decoder.Decode(record)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		if student.ID == 0 {
			missingID = append(missingID, len(students))
		}
		students = append(students, student)
	}

	for _, i := range missingID {
		students[i].ID = model.NextID(students)
	}
	return students, nil
}

// NewCSVReader returns a csv.Reader over r with any leading BOM removed.
func NewCSVReader(r io.Reader) *csv.Reader {
	buffered := bufio.NewReader(r)
	if head, err := buffered.Peek(len(bom)); err == nil && string(head) == bom {
		_, _ = buffered.Discard(len(bom))
	}
	reader := csv.NewReader(buffered)
	reader.FieldsPerRecord = -1
	return reader
}

// CSVDecoder maps records to students using the column positions of a header.
// It holds no mutable state and may be shared between goroutines.
type CSVDecoder struct {
	index map[string]int
}

func NewCSVDecoder(header []string) (*CSVDecoder, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, bom))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	for _, required := range []string{ColumnName, ColumnGrade} {
		if _, ok := index[required]; !ok {
			return nil, errors.Wrapf(ErrMissingColumn, "%q", required)
		}
	}
	return &CSVDecoder{index: index}, nil
}

func (d *CSVDecoder) cell(record []string, column string) string {
	i, ok := d.index[column]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}

// Decode converts one record. Empty numeric cells take the new-record
// defaults; an empty ID decodes as 0.
func (d *CSVDecoder) Decode(record []string) (model.Student, error) {
	s := model.Student{
		Name:         strings.TrimSpace(d.cell(record, ColumnName)),
		Grade:        strings.TrimSpace(d.cell(record, ColumnGrade)),
		Academic:     model.DefaultAcademic,
		Discipline:   model.DefaultDiscipline,
		Emotional:    model.DefaultEmotional,
		Observations: model.NormalizeNewlines(d.cell(record, ColumnObservations)),
	}

	var err error
	if s.ID, err = d.intCell(record, ColumnID, 0); err != nil {
		return s, err
	}
	if v := strings.TrimSpace(d.cell(record, ColumnAcademic)); v != "" {
		if s.Academic, err = strconv.ParseFloat(v, 64); err != nil {
			return s, errors.Wrapf(err, "column %q", ColumnAcademic)
		}
	}
	if s.Discipline, err = d.intCell(record, ColumnDiscipline, model.DefaultDiscipline); err != nil {
		return s, err
	}
	if s.Emotional, err = d.intCell(record, ColumnEmotional, model.DefaultEmotional); err != nil {
		return s, err
	}
	if v := strings.TrimSpace(d.cell(record, ColumnLastUpdated)); v != "" {
		if s.LastUpdated, err = time.ParseInLocation(model.TimeLayout, v, time.Local); err != nil {
			return s, errors.Wrapf(err, "column %q", ColumnLastUpdated)
		}
	}
	return s, nil
}

// intCell accepts integral floats such as "7.0", which spreadsheet tools emit.
func (d *CSVDecoder) intCell(record []string, column string, def int) (int, error) {
	v := strings.TrimSpace(d.cell(record, column))
	if v == "" {
		return def, nil
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, errors.Errorf("column %q: %q is not an integer", column, v)
	}
	return int(f), nil
}
