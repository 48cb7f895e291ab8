package handler_test

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"studentdash/internal/handler"
	"studentdash/internal/logger"
	"studentdash/internal/service"
)

func progressRouter(svc handler.ProgressService) *mux.Router {
	h := handler.NewProgressHandler(svc, logger.Discard())
	router := mux.NewRouter()
	router.HandleFunc("/progress", h.GetAllProgress)
	router.HandleFunc("/progress/file", h.GetFileProgress)
	router.HandleFunc("/progress/sse", h.SSEProgress)
	return router
}

func TestGetFileProgress(t *testing.T) {
	mockService := new(MockProgressService)
	progress := &service.ProgressInfo{
		FileName:     "test.csv",
		TotalRecords: 100,
		Processed:    50,
		Status:       service.StatusProcessing,
	}
	mockService.On("GetFileProgress", "test.csv").Return(progress)

	w := httptest.NewRecorder()
	progressRouter(mockService).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/progress/file?fileName=uploads/test.csv", nil))

	resp := w.Result()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var response service.ProgressInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
	assert.Equal(t, "test.csv", response.FileName)
	assert.Equal(t, 100, response.TotalRecords)
	assert.Equal(t, 50, response.Processed)
	assert.Equal(t, service.StatusProcessing, response.Status)
}

func TestGetFileProgress_MissingAndUnknown(t *testing.T) {
	mockService := new(MockProgressService)
	mockService.On("GetFileProgress", "nonexistent.csv").Return(nil)
	router := progressRouter(mockService)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/progress/file", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/progress/file?fileName=nonexistent.csv", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetAllProgress(t *testing.T) {
	mockService := new(MockProgressService)
	mockService.On("GetAllFileProgress").Return([]*service.ProgressInfo{
		{FileName: "a.csv", Status: service.StatusCompleted},
		{FileName: "b.csv", Status: service.StatusError, Error: "boom"},
	})

	w := httptest.NewRecorder()
	progressRouter(mockService).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/progress", nil))

	var response []service.ProgressInfo
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Len(t, response, 2)
	assert.Equal(t, "boom", response[1].Error)
}

func TestSSEProgress(t *testing.T) {
	mockService := new(MockProgressService)
	registered := make(chan chan *service.ProgressInfo, 1)
	mockService.On("RegisterProgressListener", mock.Anything).Run(func(args mock.Arguments) {
		registered <- args.Get(0).(chan *service.ProgressInfo)
	}).Return()
	mockService.On("UnregisterProgressListener", mock.Anything).Return()

	server := httptest.NewServer(progressRouter(mockService))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/progress/sse", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	var ch chan *service.ProgressInfo
	select {
	case ch = <-registered:
	case <-time.After(2 * time.Second):
		t.Fatal("listener was not registered")
	}
	ch <- &service.ProgressInfo{FileName: "live.csv", Processed: 3, Status: service.StatusProcessing}

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(line, "data: "), line)

	var got service.ProgressInfo
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(strings.TrimSpace(line), "data: ")), &got))
	assert.Equal(t, "live.csv", got.FileName)
	assert.Equal(t, 3, got.Processed)
}

func TestSSEProgressEndsOnClose(t *testing.T) {
	mockService := new(MockProgressService)
	registered := make(chan struct{}, 1)
	mockService.On("RegisterProgressListener", mock.Anything).Run(func(mock.Arguments) {
		registered <- struct{}{}
	}).Return()
	mockService.On("UnregisterProgressListener", mock.Anything).Return()

	h := handler.NewProgressHandler(mockService, logger.Discard())
	server := httptest.NewServer(http.HandlerFunc(h.SSEProgress))
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	select {
	case <-registered:
	case <-time.After(2 * time.Second):
		t.Fatal("listener was not registered")
	}

	h.Close()
	h.Close()

	finished := make(chan error, 1)
	go func() {
		_, err := io.ReadAll(resp.Body)
		finished <- err
	}()
	select {
	case err := <-finished:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("stream stayed open after Close")
	}
	mockService.AssertCalled(t, "UnregisterProgressListener", mock.Anything)
}
