// Package scheduler takes periodic CSV snapshots of the student table.
package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"studentdash/internal/database"
)

const fileLayout = "students_20060102_150405.csv"

type BackupScheduler struct {
	cronEngine *cron.Cron
	store      database.Store
	dir        string
	spec       string
	logger     logrus.FieldLogger
	now        func() time.Time
}

func NewBackupScheduler(store database.Store, dir, spec string, logger logrus.FieldLogger) *BackupScheduler {
	return &BackupScheduler{
		cronEngine: cron.New(cron.WithLocation(time.Local)),
		store:      store,
		dir:        dir,
		spec:       spec,
		logger:     logger,
		now:        time.Now,
	}
}

// Start registers the backup job. An empty spec leaves the scheduler idle.
func (s *BackupScheduler) Start() error {
	if s.spec == "" {
		s.logger.Info("Backups disabled")
		return nil
	}

	_, err := s.cronEngine.AddFunc(s.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := s.RunOnce(ctx); err != nil {
			s.logger.WithError(err).Error("Backup failed")
		}
	})
	if err != nil {
		return errors.Wrapf(err, "invalid BACKUP_CRON %q", s.spec)
	}

	s.cronEngine.Start()
	s.logger.WithField("spec", s.spec).Info("Backup scheduler started")
	return nil
}

// Stop waits for a running backup to finish.
func (s *BackupScheduler) Stop() {
	<-s.cronEngine.Stop().Done()
	s.logger.Info("Backup scheduler stopped")
}

// RunOnce writes one snapshot and returns its path.
func (s *BackupScheduler) RunOnce(ctx context.Context) (string, error) {
	students, err := s.store.Load(ctx)
	if err != nil {
		return "", errors.Wrap(err, "load students")
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", errors.Wrap(err, "create backup directory")
	}

	path := filepath.Join(s.dir, s.now().Format(fileLayout))
	file, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "create backup file")
	}
	if err := database.WriteCSV(file, students); err != nil {
		file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", errors.Wrap(err, "close backup file")
	}

	s.logger.WithFields(logrus.Fields{"path": path, "students": len(students)}).Info("Backup written")
	return path, nil
}
