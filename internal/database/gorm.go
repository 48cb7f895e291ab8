package database

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"studentdash/internal/model"
)

const insertBatchSize = 500

// GormStore keeps the table in a relational database. Save rewrites every row
// inside one transaction so readers never see a partial table.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore migrates the students table and wraps db.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&model.Student{}); err != nil {
		return nil, errors.Wrap(err, "auto-migrate students")
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Load(ctx context.Context) ([]model.Student, error) {
	students := []model.Student{}
	if err := s.db.WithContext(ctx).Order("id").Find(&students).Error; err != nil {
		return nil, errors.Wrap(err, "load students")
	}
	return students, nil
}

func (s *GormStore) Save(ctx context.Context, students []model.Student) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Student{}).Error; err != nil {
			return errors.Wrap(err, "clear students")
		}
		if len(students) == 0 {
			return nil
		}
		return errors.Wrap(tx.CreateInBatches(&students, insertBatchSize).Error, "insert students")
	})
}
