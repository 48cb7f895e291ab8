package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"studentdash/internal/handler"
	"studentdash/internal/logger"
)

func testRouter(students *MockStudentService) http.Handler {
	log := logger.Discard()
	return handler.NewRouter(handler.Handlers{
		Students: handler.NewStudentHandler(students, log),
		Insights: handler.NewInsightHandler(new(MockInsightService), log),
		Uploads:  handler.NewUploadHandler(new(MockImporter), "uploads", 1<<20, log),
		Progress: handler.NewProgressHandler(new(MockProgressService), log),
	}, log, []string{"http://localhost:3000"})
}

func TestRouterAssignsRequestID(t *testing.T) {
	students := new(MockStudentService)
	students.On("Grades", mock.Anything).Return([]string{"6A"}, nil)

	w := httptest.NewRecorder()
	testRouter(students).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/grades", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	_, err := uuid.Parse(w.Header().Get(handler.RequestIDHeader))
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/grades", nil)
	req.Header.Set(handler.RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	testRouter(students).ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(handler.RequestIDHeader))
}

func TestRouterRecoversFromPanic(t *testing.T) {
	students := new(MockStudentService)
	students.On("Grades", mock.Anything).Run(func(mock.Arguments) { panic("boom") }).Return(nil, nil)

	w := httptest.NewRecorder()
	testRouter(students).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/grades", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRouterCORS(t *testing.T) {
	students := new(MockStudentService)
	students.On("Grades", mock.Anything).Return([]string{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/grades", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	testRouter(students).ServeHTTP(w, req)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/grades", nil)
	req.Header.Set("Origin", "http://evil.test")
	w = httptest.NewRecorder()
	testRouter(students).ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouterUnknownRoute(t *testing.T) {
	w := httptest.NewRecorder()
	testRouter(new(MockStudentService)).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/students/abc", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	assert.JSONEq(t, `{"error":"route not found"}`, w.Body.String())
}

func TestRouterMethodNotAllowed(t *testing.T) {
	w := httptest.NewRecorder()
	testRouter(new(MockStudentService)).ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/students", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.JSONEq(t, `{"error":"method not allowed"}`, w.Body.String())
}
