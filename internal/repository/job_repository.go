package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/fadilmartias/career-intel/internal/model"
	"gorm.io/gorm"
)

type JobRepositoryInterface interface {
	FindJobWithOrganization(ctx context.Context, id int64) (*model.Job, error)
}

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db}
}

// FindJobWithOrganization returns nil when the job no longer exists.
func (r *JobRepository) FindJobWithOrganization(ctx context.Context, id int64) (*model.Job, error) {
	var j model.Job
	err := r.db.WithContext(ctx).Preload("Organization").First(&j, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find job %d: %w", id, err)
	}
	return &j, nil
}
