package handler_test

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"studentdash/internal/analysis"
	"studentdash/internal/model"
	"studentdash/internal/service"
	"studentdash/internal/strategy"
)

type MockStudentService struct {
	mock.Mock
}

func (m *MockStudentService) List(ctx context.Context, q service.ListQuery) ([]model.Student, int64, int, error) {
	args := m.Called(ctx, q)
	students, _ := args.Get(0).([]model.Student)
	return students, args.Get(1).(int64), args.Int(2), args.Error(3)
}

func (m *MockStudentService) Get(ctx context.Context, id int) (model.Student, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Student), args.Error(1)
}

func (m *MockStudentService) Upsert(ctx context.Context, in service.StudentInput) (model.Student, bool, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(model.Student), args.Bool(1), args.Error(2)
}

func (m *MockStudentService) Delete(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockStudentService) Grades(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	grades, _ := args.Get(0).([]string)
	return grades, args.Error(1)
}

type MockInsightService struct {
	mock.Mock
}

func (m *MockInsightService) Clusters(ctx context.Context) (service.Clustering, error) {
	args := m.Called(ctx)
	return args.Get(0).(service.Clustering), args.Error(1)
}

func (m *MockInsightService) Strategies(ctx context.Context, grade string) ([]strategy.Plan, error) {
	args := m.Called(ctx, grade)
	plans, _ := args.Get(0).([]strategy.Plan)
	return plans, args.Error(1)
}

func (m *MockInsightService) Analyze(text string) analysis.Analysis {
	return m.Called(text).Get(0).(analysis.Analysis)
}

func (m *MockInsightService) GradeReport(ctx context.Context, grade string) (string, error) {
	args := m.Called(ctx, grade)
	return args.String(0), args.Error(1)
}

func (m *MockInsightService) WriteGradePDF(ctx context.Context, w io.Writer, grade string) error {
	args := m.Called(ctx, w, grade)
	if body := args.String(0); body != "" {
		_, _ = io.WriteString(w, body)
	}
	return args.Error(1)
}

func (m *MockInsightService) Export(ctx context.Context, w io.Writer, enriched bool) error {
	args := m.Called(ctx, w, enriched)
	_, _ = io.WriteString(w, args.String(0))
	return args.Error(1)
}

type MockImporter struct {
	mock.Mock
}

func (m *MockImporter) ProcessCSV(ctx context.Context, filePath string) error {
	return m.Called(filePath).Error(0)
}

type MockProgressService struct {
	mock.Mock
}

func (m *MockProgressService) GetFileProgress(fileName string) *service.ProgressInfo {
	args := m.Called(fileName)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*service.ProgressInfo)
}

func (m *MockProgressService) GetAllFileProgress() []*service.ProgressInfo {
	args := m.Called()
	return args.Get(0).([]*service.ProgressInfo)
}

func (m *MockProgressService) RegisterProgressListener(ch chan *service.ProgressInfo) {
	m.Called(ch)
}

func (m *MockProgressService) UnregisterProgressListener(ch chan *service.ProgressInfo) {
	m.Called(ch)
}
