package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("STORAGE_DRIVER", "csv")
	t.Setenv("DATA_PATH", filepath.Join(dir, "students_data.csv"))
	t.Setenv("BACKUP_DIR", filepath.Join(dir, "backups"))
	t.Setenv("LOG_LEVEL", "error")
	return dir
}

func TestSeedExportAndReport(t *testing.T) {
	dir := setupEnv(t)

	out, err := run(t, "seed", "--count", "25", "--seed", "42")
	require.NoError(t, err)
	assert.Contains(t, out, "Generated 25 students")

	_, err = run(t, "seed", "--count", "5")
	assert.ErrorContains(t, err, "--force")

	out, err = run(t, "export", "--enriched")
	require.NoError(t, err)
	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(out, "\ufeff"))).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 26)
	assert.Len(t, records[0], 12)

	grade := records[1][2]
	out, err = run(t, "report", grade)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Informe general del grado "+grade))

	out, err = run(t, "cluster")
	require.NoError(t, err)
	assert.Contains(t, out, "CLUSTER")

	pdfPath := filepath.Join(dir, "grade.pdf")
	_, err = run(t, "report", grade, "--pdf", pdfPath)
	require.NoError(t, err)
	content, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte("%PDF")))

	out, err = run(t, "backup")
	require.NoError(t, err)
	assert.FileExists(t, strings.TrimSpace(out))
}

func TestReportEmptyGradePDF(t *testing.T) {
	dir := setupEnv(t)
	pdfPath := filepath.Join(dir, "none.pdf")

	_, err := run(t, "report", "9Z", "--pdf", pdfPath)
	assert.Error(t, err)
	assert.NoFileExists(t, pdfPath)
}

func TestInvalidConfig(t *testing.T) {
	setupEnv(t)
	t.Setenv("STORAGE_DRIVER", "excel")

	_, err := run(t, "cluster")
	assert.ErrorContains(t, err, "STORAGE_DRIVER")
}

func TestSeedRejectsNegativeCount(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "seed", "--count", "-1")
	assert.ErrorContains(t, err, "must not be negative")
}

func TestServeShutsDownWithOpenEventStream(t *testing.T) {
	dir := setupEnv(t)
	t.Setenv("UPLOAD_DIR", filepath.Join(dir, "uploads"))

	a := &app{}
	require.NoError(t, a.load())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- a.serveOn(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/progress/sse")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down while an event stream was open")
	}

	_, err = bufio.NewReader(resp.Body).ReadString('\n')
	assert.Error(t, err)
}
