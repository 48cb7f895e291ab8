package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"studentdash/internal/analysis"
	"studentdash/internal/service"
	"studentdash/internal/strategy"
)

type InsightService interface {
	Clusters(ctx context.Context) (service.Clustering, error)
	Strategies(ctx context.Context, grade string) ([]strategy.Plan, error)
	Analyze(text string) analysis.Analysis
	GradeReport(ctx context.Context, grade string) (string, error)
	WriteGradePDF(ctx context.Context, w io.Writer, grade string) error
	Export(ctx context.Context, w io.Writer, enriched bool) error
}

type InsightHandler struct {
	insights InsightService
	log      logrus.FieldLogger
}

func NewInsightHandler(insights InsightService, log logrus.FieldLogger) *InsightHandler {
	return &InsightHandler{insights: insights, log: log}
}

func (h *InsightHandler) Clusters(w http.ResponseWriter, r *http.Request) {
	res, err := h.insights.Clusters(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *InsightHandler) Strategies(w http.ResponseWriter, r *http.Request) {
	plans, err := h.insights.Strategies(r.Context(), r.URL.Query().Get("grade"))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

func (h *InsightHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	writeJSON(w, http.StatusOK, h.insights.Analyze(body.Text))
}

func (h *InsightHandler) GradeReport(w http.ResponseWriter, r *http.Request) {
	grade := mux.Vars(r)["grade"]
	text, err := h.insights.GradeReport(r.Context(), grade)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"grade": grade, "report": text})
}

// GradePDF renders into memory first so a failure can still become a JSON error.
func (h *InsightHandler) GradePDF(w http.ResponseWriter, r *http.Request) {
	grade := mux.Vars(r)["grade"]
	var buf bytes.Buffer
	if err := h.insights.WriteGradePDF(r.Context(), &buf, grade); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "informe_"+grade+".pdf"))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}

func (h *InsightHandler) Export(w http.ResponseWriter, r *http.Request) {
	enriched, _ := strconv.ParseBool(r.URL.Query().Get("enriched"))
	name := "students_data.csv"
	if enriched {
		name = "students_enriched.csv"
	}

	var buf bytes.Buffer
	if err := h.insights.Export(r.Context(), &buf, enriched); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	_, _ = buf.WriteTo(w)
}
