package service

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"studentdash/internal/database"
	"studentdash/internal/model"
	"studentdash/internal/validation"
)

var (
	ErrStudentNotFound = errors.New("student not found")
	ErrInvalidQuery    = errors.New("invalid query")
)

// StudentInput is the editable part of a record. Name and grade identify it.
type StudentInput struct {
	Name         string  `json:"name" validate:"required,notblank,max=120"`
	Grade        string  `json:"grade" validate:"required,notblank,max=20"`
	Academic     float64 `json:"academic" validate:"gte=1,lte=5"`
	Discipline   int     `json:"discipline" validate:"gte=0,lte=10"`
	Emotional    int     `json:"emotional" validate:"gte=0,lte=10"`
	Observations string  `json:"observations" validate:"max=2000"`
}

// NewStudentInput returns an input carrying the new-record defaults.
func NewStudentInput(grade, name string) StudentInput {
	return StudentInput{
		Name:       name,
		Grade:      grade,
		Academic:   model.DefaultAcademic,
		Discipline: model.DefaultDiscipline,
		Emotional:  model.DefaultEmotional,
	}
}

// ListQuery selects, orders and pages students.
type ListQuery struct {
	Page        int
	Limit       int
	SortBy      string
	SortOrder   string
	Name        string
	Grade       string
	AcademicMin float64
	AcademicMax float64
}

type lessFunc func(c *collate.Collator, a, b model.Student) bool

var sortKeys = map[string]lessFunc{
	"id":           func(_ *collate.Collator, a, b model.Student) bool { return a.ID < b.ID },
	"name":         func(c *collate.Collator, a, b model.Student) bool { return c.CompareString(a.Name, b.Name) < 0 },
	"grade":        func(_ *collate.Collator, a, b model.Student) bool { return a.Grade < b.Grade },
	"academic":     func(_ *collate.Collator, a, b model.Student) bool { return a.Academic < b.Academic },
	"discipline":   func(_ *collate.Collator, a, b model.Student) bool { return a.Discipline < b.Discipline },
	"emotional":    func(_ *collate.Collator, a, b model.Student) bool { return a.Emotional < b.Emotional },
	"last_updated": func(_ *collate.Collator, a, b model.Student) bool { return a.LastUpdated.Before(b.LastUpdated) },
}

// StudentService owns every read-modify-write cycle over the store.
type StudentService struct {
	store database.Store
	log   logrus.FieldLogger
	now   func() time.Time
	mu    sync.Mutex
}

func NewStudentService(store database.Store, log logrus.FieldLogger) *StudentService {
	return &StudentService{store: store, log: log, now: time.Now}
}

// All returns the whole table in stored order.
func (s *StudentService) All(ctx context.Context) ([]model.Student, error) {
	return s.store.Load(ctx)
}

func (s *StudentService) List(ctx context.Context, q ListQuery) ([]model.Student, int64, int, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 10
	}
	if q.SortBy == "" {
		q.SortBy = "name"
	}
	if q.SortOrder == "" {
		q.SortOrder = "asc"
	}
	less, ok := sortKeys[q.SortBy]
	if !ok {
		return nil, 0, 0, errors.Wrapf(ErrInvalidQuery, "unknown sort_by %q", q.SortBy)
	}
	if q.SortOrder != "asc" && q.SortOrder != "desc" {
		return nil, 0, 0, errors.Wrapf(ErrInvalidQuery, "unknown sort_order %q", q.SortOrder)
	}

	all, err := s.store.Load(ctx)
	if err != nil {
		return nil, 0, 0, err
	}

	// Apply filters
	name := strings.ToLower(strings.TrimSpace(q.Name))
	filtered := make([]model.Student, 0, len(all))
	for _, st := range all {
		if name != "" && !strings.Contains(strings.ToLower(st.Name), name) {
			continue
		}
		if q.Grade != "" && st.Grade != q.Grade {
			continue
		}
		if q.AcademicMin > 0 && st.Academic < q.AcademicMin {
			continue
		}
		if q.AcademicMax > 0 && st.Academic > q.AcademicMax {
			continue
		}
		filtered = append(filtered, st)
	}

	// Apply sorting. Collators are not safe for concurrent use.
	collator := collate.New(language.Spanish, collate.IgnoreCase)
	sort.SliceStable(filtered, func(i, j int) bool {
		if q.SortOrder == "desc" {
			return less(collator, filtered[j], filtered[i])
		}
		return less(collator, filtered[i], filtered[j])
	})

	// Pagination
	totalCount := int64(len(filtered))
	totalPages := int(math.Ceil(float64(totalCount) / float64(q.Limit)))
	start := (q.Page - 1) * q.Limit
	if start > len(filtered) {
		start = len(filtered)
	}
	end := min(start+q.Limit, len(filtered))

	return filtered[start:end], totalCount, totalPages, nil
}

func (s *StudentService) Get(ctx context.Context, id int) (model.Student, error) {
	all, err := s.store.Load(ctx)
	if err != nil {
		return model.Student{}, err
	}
	for _, st := range all {
		if st.ID == id {
			return st, nil
		}
	}
	return model.Student{}, errors.Wrapf(ErrStudentNotFound, "id %d", id)
}

// Find looks a record up by its (grade, name) pair.
func (s *StudentService) Find(ctx context.Context, grade, name string) (model.Student, error) {
	all, err := s.store.Load(ctx)
	if err != nil {
		return model.Student{}, err
	}
	if i := indexOf(all, grade, name); i >= 0 {
		return all[i], nil
	}
	return model.Student{}, errors.Wrapf(ErrStudentNotFound, "%s (%s)", name, grade)
}

// Upsert updates the record matching (grade, name) or appends a new one.
func (s *StudentService) Upsert(ctx context.Context, in StudentInput) (model.Student, bool, error) {
	in = trimInput(in)
	if err := validation.Struct(in); err != nil {
		return model.Student{}, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.store.Load(ctx)
	if err != nil {
		return model.Student{}, false, err
	}
	all, i, created := s.apply(all, in)
	if err := s.store.Save(ctx, all); err != nil {
		return model.Student{}, false, err
	}

	s.log.WithFields(logrus.Fields{"id": all[i].ID, "grade": in.Grade, "created": created}).Info("Student saved")
	return all[i], created, nil
}

// Merge applies many inputs with one load and one save. Invalid inputs fail
// the whole merge.
func (s *StudentService) Merge(ctx context.Context, inputs []StudentInput) (created, updated int, err error) {
	clean := make([]StudentInput, len(inputs))
	for k, in := range inputs {
		clean[k] = trimInput(in)
		if err := validation.Struct(clean[k]); err != nil {
			return 0, 0, errors.Wrapf(err, "input %d", k)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.store.Load(ctx)
	if err != nil {
		return 0, 0, err
	}
	for _, in := range clean {
		var isNew bool
		all, _, isNew = s.apply(all, in)
		if isNew {
			created++
		} else {
			updated++
		}
	}
	if err := s.store.Save(ctx, all); err != nil {
		return 0, 0, err
	}

	s.log.WithFields(logrus.Fields{"created": created, "updated": updated}).Info("Students merged")
	return created, updated, nil
}

func (s *StudentService) Delete(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	kept := all[:0]
	found := false
	for _, st := range all {
		if st.ID == id {
			found = true
			continue
		}
		kept = append(kept, st)
	}
	if !found {
		return errors.Wrapf(ErrStudentNotFound, "id %d", id)
	}
	if err := s.store.Save(ctx, kept); err != nil {
		return err
	}

	s.log.WithField("id", id).Info("Student deleted")
	return nil
}

// Grades returns the distinct grade labels, sorted.
func (s *StudentService) Grades(ctx context.Context) ([]string, error) {
	all, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	grades := []string{}
	for _, st := range all {
		if st.Grade == "" || seen[st.Grade] {
			continue
		}
		seen[st.Grade] = true
		grades = append(grades, st.Grade)
	}
	sort.Strings(grades)
	return grades, nil
}

// ByGrade returns the students of one grade in stored order.
func (s *StudentService) ByGrade(ctx context.Context, grade string) ([]model.Student, error) {
	all, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return filterGrade(all, grade), nil
}

// apply changes all in memory and returns the index of the touched record.
func (s *StudentService) apply(all []model.Student, in StudentInput) ([]model.Student, int, bool) {
	now := s.now().Truncate(time.Second)
	if i := indexOf(all, in.Grade, in.Name); i >= 0 {
		all[i].Academic = in.Academic
		all[i].Discipline = in.Discipline
		all[i].Emotional = in.Emotional
		all[i].Observations = in.Observations
		all[i].LastUpdated = now
		return all, i, false
	}
	all = append(all, model.Student{
		ID:           model.NextID(all),
		Name:         in.Name,
		Grade:        in.Grade,
		Academic:     in.Academic,
		Discipline:   in.Discipline,
		Emotional:    in.Emotional,
		Observations: in.Observations,
		LastUpdated:  now,
	})
	return all, len(all) - 1, true
}

func indexOf(all []model.Student, grade, name string) int {
	for i, st := range all {
		if st.Matches(grade, name) {
			return i
		}
	}
	return -1
}

func filterGrade(all []model.Student, grade string) []model.Student {
	out := []model.Student{}
	for _, st := range all {
		if st.Grade == grade {
			out = append(out, st)
		}
	}
	return out
}

func trimInput(in StudentInput) StudentInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Grade = strings.TrimSpace(in.Grade)
	in.Observations = model.NormalizeNewlines(in.Observations)
	return in
}
