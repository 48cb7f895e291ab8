package handler

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"studentdash/internal/service"
)

type ProgressService interface {
	GetFileProgress(fileName string) *service.ProgressInfo
	GetAllFileProgress() []*service.ProgressInfo
	RegisterProgressListener(ch chan *service.ProgressInfo)
	UnregisterProgressListener(ch chan *service.ProgressInfo)
}

type ProgressHandler struct {
	progressService ProgressService
	log             logrus.FieldLogger
	done            chan struct{}
	closeOnce       sync.Once
}

func NewProgressHandler(progressService ProgressService, log logrus.FieldLogger) *ProgressHandler {
	return &ProgressHandler{progressService: progressService, log: log, done: make(chan struct{})}
}

// Close ends every open event stream. http.Server.Shutdown does not cancel
// request contexts, so it is registered with RegisterOnShutdown.
func (h *ProgressHandler) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// GetFileProgress returns the progress for a specific file
func (h *ProgressHandler) GetFileProgress(w http.ResponseWriter, r *http.Request) {
	fileName := r.URL.Query().Get("fileName")
	if fileName == "" {
		writeError(w, http.StatusBadRequest, "fileName parameter is required")
		return
	}

	progress := h.progressService.GetFileProgress(filepath.Base(fileName))
	if progress == nil {
		writeError(w, http.StatusNotFound, "File not found or not being processed")
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

// GetAllProgress returns the progress for all files
func (h *ProgressHandler) GetAllProgress(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.progressService.GetAllFileProgress())
}

// SSEProgress streams progress updates to the client using Server-Sent Events
func (h *ProgressHandler) SSEProgress(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	progressChan := make(chan *service.ProgressInfo, 16)
	h.progressService.RegisterProgressListener(progressChan)
	defer h.progressService.UnregisterProgressListener(progressChan)

	for {
		select {
		case progress := <-progressChan:
			data, err := json.Marshal(progress)
			if err != nil {
				h.log.WithError(err).Error("Error marshaling progress")
				continue
			}
			if _, err := w.Write([]byte("data: " + string(data) + "\n\n")); err != nil {
				h.log.WithError(err).Debug("Error writing SSE data")
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			h.log.Debug("SSE client disconnected")
			return

		case <-h.done:
			h.log.Debug("SSE stream closed for shutdown")
			return
		}
	}
}
