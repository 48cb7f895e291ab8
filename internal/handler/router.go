package handler

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type Handlers struct {
	Students *StudentHandler
	Insights *InsightHandler
	Uploads  *UploadHandler
	Progress *ProgressHandler
}

// NewRouter wires every route behind request ID, logging, recovery and CORS.
func NewRouter(h Handlers, log logrus.FieldLogger, allowedOrigins []string) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.HandleFunc("/students", h.Students.ListStudents).Methods(http.MethodGet)
	r.HandleFunc("/students", h.Students.SaveStudent).Methods(http.MethodPost)
	r.HandleFunc("/students/{id:[0-9]+}", h.Students.GetStudent).Methods(http.MethodGet)
	r.HandleFunc("/students/{id:[0-9]+}", h.Students.DeleteStudent).Methods(http.MethodDelete)
	r.HandleFunc("/grades", h.Students.ListGrades).Methods(http.MethodGet)

	r.HandleFunc("/clusters", h.Insights.Clusters).Methods(http.MethodGet)
	r.HandleFunc("/strategies", h.Insights.Strategies).Methods(http.MethodGet)
	r.HandleFunc("/analysis", h.Insights.Analyze).Methods(http.MethodPost)
	r.HandleFunc("/reports/{grade}", h.Insights.GradeReport).Methods(http.MethodGet)
	r.HandleFunc("/reports/{grade}/pdf", h.Insights.GradePDF).Methods(http.MethodGet)
	r.HandleFunc("/export", h.Insights.Export).Methods(http.MethodGet)

	r.HandleFunc("/upload", h.Uploads.UploadCSV).Methods(http.MethodPost)
	r.HandleFunc("/progress", h.Progress.GetAllProgress).Methods(http.MethodGet)
	r.HandleFunc("/progress/file", h.Progress.GetFileProgress).Methods(http.MethodGet)
	r.HandleFunc("/progress/sse", h.Progress.SSEProgress).Methods(http.MethodGet)

	recovery := handlers.RecoveryHandler(handlers.RecoveryLogger(log), handlers.PrintRecoveryStack(true))
	cors := handlers.CORS(
		handlers.AllowedOrigins(allowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", RequestIDHeader}),
		handlers.ExposedHeaders([]string{RequestIDHeader, "Content-Disposition"}),
	)

	return RequestID(Logging(log)(recovery(cors(r))))
}
