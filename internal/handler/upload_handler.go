package handler

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Importer interface {
	ProcessCSV(ctx context.Context, filePath string) error
}

type UploadHandler struct {
	importer  Importer
	uploadDir string
	maxBytes  int64
	log       logrus.FieldLogger
}

func NewUploadHandler(importer Importer, uploadDir string, maxBytes int64, log logrus.FieldLogger) *UploadHandler {
	return &UploadHandler{importer: importer, uploadDir: uploadDir, maxBytes: maxBytes, log: log}
}

// UploadCSV stores every file of the "files" field and imports them in the
// background. The response lists the stored file names, which are the keys
// for the progress endpoints.
func (h *UploadHandler) UploadCSV(w http.ResponseWriter, r *http.Request) {
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		h.log.WithError(err).Error("Failed to create uploads directory")
		writeError(w, http.StatusInternalServerError, "failed to create uploads directory")
		return
	}

	if r.ContentLength > h.maxBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "No files uploaded")
		return
	}

	ctx := context.WithoutCancel(r.Context())
	var wg sync.WaitGroup
	fileNames := make([]string, 0, len(files))

	for _, header := range files {
		// A unique prefix keeps concurrent uploads of one file name apart; the
		// stored name is also the progress key.
		name := uuid.NewString()[:8] + "_" + filepath.Base(header.Filename)
		savePath := filepath.Join(h.uploadDir, name)
		if err := saveUpload(header, savePath); err != nil {
			h.log.WithError(err).WithField("file", name).Error("Failed to store upload")
			continue
		}
		fileNames = append(fileNames, name)

		wg.Add(1)
		go func(filePath string) {
			defer wg.Done()
			if err := h.importer.ProcessCSV(ctx, filePath); err != nil {
				h.log.WithError(err).WithField("file", filePath).Warn("Import did not complete")
			}
		}(savePath)
	}

	go func() {
		wg.Wait()
		h.log.WithField("files", len(fileNames)).Info("All uploaded files processed")
	}()

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"message": "Files uploaded successfully and processing started",
		"files":   fileNames,
	})
}

func saveUpload(header *multipart.FileHeader, savePath string) error {
	file, err := header.Open()
	if err != nil {
		return errors.Wrap(err, "open upload")
	}
	defer file.Close()

	outFile, err := os.Create(savePath)
	if err != nil {
		return errors.Wrap(err, "create file")
	}
	if _, err := io.Copy(outFile, file); err != nil {
		outFile.Close()
		return errors.Wrap(err, "write file")
	}
	return errors.Wrap(outFile.Close(), "close file")
}
