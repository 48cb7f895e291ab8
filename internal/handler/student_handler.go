package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"studentdash/internal/model"
	"studentdash/internal/service"
)

type StudentService interface {
	List(ctx context.Context, q service.ListQuery) ([]model.Student, int64, int, error)
	Get(ctx context.Context, id int) (model.Student, error)
	Upsert(ctx context.Context, in service.StudentInput) (model.Student, bool, error)
	Delete(ctx context.Context, id int) error
	Grades(ctx context.Context) ([]string, error)
}

type StudentHandler struct {
	studentService StudentService
	log            logrus.FieldLogger
}

func NewStudentHandler(studentService StudentService, log logrus.FieldLogger) *StudentHandler {
	return &StudentHandler{studentService: studentService, log: log}
}

func (h *StudentHandler) ListStudents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page, _ := strconv.Atoi(query.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(query.Get("limit"))
	if limit < 1 {
		limit = 10
	}
	academicMin, _ := strconv.ParseFloat(query.Get("academic_min"), 64)
	academicMax, _ := strconv.ParseFloat(query.Get("academic_max"), 64)

	students, totalCount, totalPages, err := h.studentService.List(r.Context(), service.ListQuery{
		Page:        page,
		Limit:       limit,
		SortBy:      query.Get("sort_by"),
		SortOrder:   query.Get("sort_order"),
		Name:        query.Get("name"),
		Grade:       query.Get("grade"),
		AcademicMin: academicMin,
		AcademicMax: academicMax,
	})
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":       students,
		"page":       page,
		"limit":      limit,
		"total":      totalCount,
		"totalPages": totalPages,
	})
}

func (h *StudentHandler) GetStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	student, err := h.studentService.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, student)
}

// SaveStudent creates or updates the student named in the body. Omitted
// scores take the new-record defaults.
func (h *StudentHandler) SaveStudent(w http.ResponseWriter, r *http.Request) {
	in := service.NewStudentInput("", "")
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	student, created, err := h.studentService.Upsert(r.Context(), in)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, student)
}

func (h *StudentHandler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.studentService.Delete(r.Context(), id); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *StudentHandler) ListGrades(w http.ResponseWriter, r *http.Request) {
	grades, err := h.studentService.Grades(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, grades)
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid student id")
		return 0, false
	}
	return id, true
}
