package service

import (
	"context"
	"io"

	"studentdash/internal/analysis"
	"studentdash/internal/cluster"
	"studentdash/internal/database"
	"studentdash/internal/model"
	"studentdash/internal/report"
	"studentdash/internal/strategy"
)

// LabelledStudent is a student with its cluster label.
type LabelledStudent struct {
	model.Student
	Cluster int `json:"cluster"`
}

// ClusterSummary describes one cluster in original units.
type ClusterSummary struct {
	Label      int     `json:"label"`
	Size       int     `json:"size"`
	Academic   float64 `json:"academic"`
	Discipline float64 `json:"discipline"`
	Emotional  float64 `json:"emotional"`
}

type Clustering struct {
	Students []LabelledStudent `json:"students"`
	Clusters []ClusterSummary  `json:"clusters"`
}

// InsightService computes the derived views over the current table.
type InsightService struct {
	students *StudentService
}

func NewInsightService(students *StudentService) *InsightService {
	return &InsightService{students: students}
}

func features(students []model.Student) []cluster.Point {
	points := make([]cluster.Point, len(students))
	for i, s := range students {
		points[i] = cluster.Point{s.Academic, float64(s.Discipline), float64(s.Emotional)}
	}
	return points
}

// Cluster groups students; the result is parallel to students.
func Cluster(students []model.Student) Clustering {
	res := cluster.Fit(features(students))
	out := Clustering{
		Students: make([]LabelledStudent, len(students)),
		Clusters: make([]ClusterSummary, len(res.Centroids)),
	}
	for i, s := range students {
		out.Students[i] = LabelledStudent{Student: s, Cluster: res.Labels[i]}
	}
	for k, c := range res.Centroids {
		out.Clusters[k] = ClusterSummary{
			Label:      k,
			Size:       res.Sizes[k],
			Academic:   analysis.Round(c[0], 2),
			Discipline: analysis.Round(c[1], 2),
			Emotional:  analysis.Round(c[2], 2),
		}
	}
	return out
}

func (s *InsightService) Clusters(ctx context.Context) (Clustering, error) {
	all, err := s.students.All(ctx)
	if err != nil {
		return Clustering{}, err
	}
	return Cluster(all), nil
}

// Strategies returns one plan per student, restricted to grade when it is set.
func (s *InsightService) Strategies(ctx context.Context, grade string) ([]strategy.Plan, error) {
	all, err := s.students.All(ctx)
	if err != nil {
		return nil, err
	}
	if grade != "" {
		all = filterGrade(all, grade)
	}
	return strategy.ForStudents(all), nil
}

func (s *InsightService) Analyze(text string) analysis.Analysis {
	return analysis.Analyze(text)
}

func (s *InsightService) GradeReport(ctx context.Context, grade string) (string, error) {
	all, err := s.students.All(ctx)
	if err != nil {
		return "", err
	}
	return report.GradeText(all, grade), nil
}

// WriteGradePDF returns report.ErrNoRecords (wrapped) for an empty grade.
func (s *InsightService) WriteGradePDF(ctx context.Context, w io.Writer, grade string) error {
	all, err := s.students.All(ctx)
	if err != nil {
		return err
	}
	return report.WriteGradePDF(w, all, grade)
}

// Export writes the table as CSV, with cluster labels and plans when enriched.
func (s *InsightService) Export(ctx context.Context, w io.Writer, enriched bool) error {
	all, err := s.students.All(ctx)
	if err != nil {
		return err
	}
	if !enriched {
		return database.WriteCSV(w, all)
	}
	res := cluster.Fit(features(all))
	return report.WriteEnrichedCSV(w, all, res.Labels, strategy.ForStudents(all))
}
