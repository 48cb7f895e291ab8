package service

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"studentdash/internal/database"
	"studentdash/internal/validation"
)

const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusError      = "error"
)

type ProgressInfo struct {
	FileName     string    `json:"fileName"`
	TotalRecords int       `json:"totalRecords"`
	Processed    int       `json:"processed"`
	Imported     int       `json:"imported"`
	Skipped      int       `json:"skipped"`
	Status       string    `json:"status"` // "processing", "completed", "error"
	Error        string    `json:"error,omitempty"`
	StartTime    time.Time `json:"startTime"`
	EndTime      time.Time `json:"endTime"`
}

// ImportService merges uploaded CSV files into the student table and tracks
// per-file progress.
type ImportService struct {
	students          *StudentService
	log               logrus.FieldLogger
	fileProgressMap   map[string]*ProgressInfo
	fileProgressLock  sync.RWMutex
	progressListeners map[chan *ProgressInfo]bool // SSE listeners
	listenerLock      sync.RWMutex

	workerSemaphore chan struct{} // limits workers across concurrent imports
}

func NewImportService(students *StudentService, log logrus.FieldLogger) *ImportService {
	return &ImportService{
		students:          students,
		log:               log,
		fileProgressMap:   make(map[string]*ProgressInfo),
		progressListeners: make(map[chan *ProgressInfo]bool),
		workerSemaphore:   make(chan struct{}, runtime.NumCPU()*2),
	}
}

func (s *ImportService) RegisterProgressListener(ch chan *ProgressInfo) {
	s.listenerLock.Lock()
	defer s.listenerLock.Unlock()
	s.progressListeners[ch] = true
}

// UnregisterProgressListener removes a client from receiving progress updates
func (s *ImportService) UnregisterProgressListener(ch chan *ProgressInfo) {
	s.listenerLock.Lock()
	defer s.listenerLock.Unlock()
	delete(s.progressListeners, ch)
}

// BroadcastProgress sends a copy of progress to every listener that is ready.
func (s *ImportService) BroadcastProgress(progress *ProgressInfo) {
	s.listenerLock.RLock()
	defer s.listenerLock.RUnlock()

	for listener := range s.progressListeners {
		snapshot := *progress
		select {
		case listener <- &snapshot:
		default:
			// Skip if the listener is not ready
		}
	}
}

func (s *ImportService) GetFileProgress(fileName string) *ProgressInfo {
	s.fileProgressLock.RLock()
	defer s.fileProgressLock.RUnlock()

	if progress, exists := s.fileProgressMap[fileName]; exists {
		copyProgress := *progress
		return &copyProgress
	}
	return nil
}

func (s *ImportService) GetAllFileProgress() []*ProgressInfo {
	s.fileProgressLock.RLock()
	defer s.fileProgressLock.RUnlock()

	result := make([]*ProgressInfo, 0, len(s.fileProgressMap))
	for _, progress := range s.fileProgressMap {
		copyProgress := *progress
		result = append(result, &copyProgress)
	}
	return result
}

func (s *ImportService) updateProgress(fileName string, processed int) {
	s.fileProgressLock.Lock()
	defer s.fileProgressLock.Unlock()

	if progress, exists := s.fileProgressMap[fileName]; exists {
		progress.Processed += processed
		if progress.Processed > progress.TotalRecords {
			progress.Processed = progress.TotalRecords
		}
		s.BroadcastProgress(progress)
	}
}

func (s *ImportService) updateProgressError(fileName string, err error) error {
	s.fileProgressLock.Lock()
	defer s.fileProgressLock.Unlock()

	if progress, exists := s.fileProgressMap[fileName]; exists {
		progress.Status = StatusError
		progress.Error = err.Error()
		progress.EndTime = time.Now()
		s.BroadcastProgress(progress)
	}
	s.log.WithError(err).WithField("file", fileName).Error("Import failed")
	return err
}

type job struct {
	index  int
	record []string
}

// row is the outcome of decoding one record. A nil input marks a skipped row.
type row struct {
	input *StudentInput
}

// ProcessCSV imports one file. Invalid rows are skipped, and a row whose
// (grade, name) pair already appeared earlier in the file is dropped.
func (s *ImportService) ProcessCSV(ctx context.Context, filePath string) error {
	fileName := filepath.Base(filePath)
	startTime := time.Now()

	s.fileProgressLock.Lock()
	s.fileProgressMap[fileName] = &ProgressInfo{
		FileName:  fileName,
		Status:    StatusProcessing,
		StartTime: startTime,
	}
	s.fileProgressLock.Unlock()

	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return s.updateProgressError(fileName, errors.Wrap(err, "failed to get file info"))
	}

	numWorkers := calculateWorkers(fileInfo.Size())
	log := s.log.WithFields(logrus.Fields{"file": fileName, "workers": numWorkers, "size": fileInfo.Size()})
	log.Info("Import started")

	totalRecords, err := countRecords(filePath)
	if err != nil {
		return s.updateProgressError(fileName, errors.Wrap(err, "failed to count records"))
	}

	s.fileProgressLock.Lock()
	s.fileProgressMap[fileName].TotalRecords = totalRecords
	s.fileProgressLock.Unlock()

	file, err := os.Open(filePath)
	if err != nil {
		return s.updateProgressError(fileName, errors.Wrap(err, "failed to open file"))
	}
	defer file.Close()

	reader := database.NewCSVReader(file)
	header, err := reader.Read()
	if err != nil && err != io.EOF {
		return s.updateProgressError(fileName, errors.Wrap(err, "failed to read header"))
	}
	var decoder *database.CSVDecoder
	if err == nil {
		if decoder, err = database.NewCSVDecoder(header); err != nil {
			return s.updateProgressError(fileName, err)
		}
	}

	rows := make([]row, totalRecords)
	if decoder != nil {
		if err := s.decodeAll(ctx, fileName, reader, decoder, rows, numWorkers); err != nil {
			return s.updateProgressError(fileName, err)
		}
	}

	inputs, skipped := dedupe(rows)
	created, updated := 0, 0
	if len(inputs) > 0 {
		if created, updated, err = s.students.Merge(ctx, inputs); err != nil {
			return s.updateProgressError(fileName, errors.Wrap(err, "failed to merge records"))
		}
	}

	s.fileProgressLock.Lock()
	if progress, exists := s.fileProgressMap[fileName]; exists {
		progress.Status = StatusCompleted
		progress.EndTime = time.Now()
		progress.Processed = progress.TotalRecords
		progress.Imported = created + updated
		progress.Skipped = skipped
		s.BroadcastProgress(progress)
	}
	s.fileProgressLock.Unlock()

	log.WithFields(logrus.Fields{
		"created":  created,
		"updated":  updated,
		"skipped":  skipped,
		"duration": time.Since(startTime),
	}).Info("Import completed")
	return nil
}

type recordReader interface {
	Read() ([]string, error)
}

func (s *ImportService) decodeAll(ctx context.Context, fileName string, reader recordReader, decoder *database.CSVDecoder, rows []row, numWorkers int) error {
	jobs := make(chan job, max(1000, numWorkers*100))
	var wg sync.WaitGroup

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go s.worker(fileName, decoder, jobs, rows, &wg)
	}

	var readErr error
	for index := 0; ; index++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			readErr = errors.Wrapf(err, "record %d", index+1)
			break
		}
		if index >= len(rows) {
			break
		}
		select {
		case jobs <- job{index: index, record: record}:
		case <-ctx.Done():
			readErr = ctx.Err()
		}
		if readErr != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()
	return readErr
}

func (s *ImportService) worker(fileName string, decoder *database.CSVDecoder, jobs <-chan job, rows []row, wg *sync.WaitGroup) {
	s.workerSemaphore <- struct{}{}
	defer func() {
		<-s.workerSemaphore
		wg.Done()
	}()

	processedCount := 0
	pending := 0
	for j := range jobs {
		rows[j.index] = decodeRow(decoder, j.record)
		if rows[j.index].input == nil {
			s.log.WithFields(logrus.Fields{"file": fileName, "record": j.index + 1}).Debug("Skipping invalid record")
		}
		processedCount++
		pending++

		// Update progress periodically
		if processedCount%100 == 0 {
			s.updateProgress(fileName, pending)
			pending = 0
		}
	}
	if pending > 0 {
		s.updateProgress(fileName, pending)
	}
}

func decodeRow(decoder *database.CSVDecoder, record []string) row {
	st, err := decoder.Decode(record)
	if err != nil {
		return row{}
	}
	in := trimInput(StudentInput{
		Name:         st.Name,
		Grade:        st.Grade,
		Academic:     st.Academic,
		Discipline:   st.Discipline,
		Emotional:    st.Emotional,
		Observations: st.Observations,
	})
	if validation.Struct(in) != nil {
		return row{}
	}
	return row{input: &in}
}

// dedupe keeps the first valid row of every (grade, name) pair in file order.
func dedupe(rows []row) ([]StudentInput, int) {
	seen := make(map[string]bool, len(rows))
	inputs := make([]StudentInput, 0, len(rows))
	skipped := 0
	for _, r := range rows {
		if r.input == nil {
			skipped++
			continue
		}
		key := r.input.Grade + "\x00" + strings.ToLower(r.input.Name)
		if seen[key] {
			skipped++
			continue
		}
		seen[key] = true
		inputs = append(inputs, *r.input)
	}
	return inputs, skipped
}

// calculateWorkers determines the number of workers based on file size
func calculateWorkers(fileSize int64) int {
	cpus := runtime.NumCPU()

	switch {
	case fileSize < 1_000_000:
		return min(2, cpus)
	case fileSize < 10_000_000:
		return min(4, cpus)
	case fileSize < 100_000_000:
		return min(8, cpus)
	case fileSize < 1_000_000_000:
		return min(16, cpus)
	default:
		return cpus
	}
}

// countRecords returns the number of data records after the header.
func countRecords(filePath string) (int, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	reader := database.NewCSVReader(file)
	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return 0, nil
		}
		return 0, err
	}

	count := 0
	for {
		_, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}
