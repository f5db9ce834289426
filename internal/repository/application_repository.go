package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/fadilmartias/career-intel/internal/domain"
	"github.com/fadilmartias/career-intel/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ApplicationRepositoryInterface interface {
	FindByID(ctx context.Context, id int64) (*model.Application, error)
	FindByCandidateUUID(ctx context.Context, candidateID uuid.UUID) (*model.Application, error)
	LatestCareerCardFile(ctx context.Context, applicationID int64) (*model.CareerCardFile, error)
}

// schemaInspector is the subset of gorm.Migrator used for introspection.
type schemaInspector interface {
	HasTable(dst interface{}) bool
	HasColumn(dst interface{}, field string) bool
}

type ApplicationRepository struct {
	db        *gorm.DB
	inspector schemaInspector
	schema    sync.Map
}

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db, inspector: db.Migrator()}
}

func (r *ApplicationRepository) FindByID(ctx context.Context, id int64) (*model.Application, error) {
	var app model.Application
	err := r.db.WithContext(ctx).First(&app, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: application %d", domain.ErrCandidateNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("find application %d: %w", id, err)
	}
	return &app, nil
}

// FindByCandidateUUID looks the candidate up on applications.candidate_uuid,
// then on the legacy link table. Either lookup is skipped when its schema is
// not present.
func (r *ApplicationRepository) FindByCandidateUUID(ctx context.Context, candidateID uuid.UUID) (*model.Application, error) {
	if r.hasColumn(&model.Application{}, "applications", "candidate_uuid") {
		var app model.Application
		err := r.db.WithContext(ctx).
			Where("candidate_uuid = ?", candidateID).
			Order("created_at DESC").
			First(&app).Error
		if err == nil {
			return &app, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("find application by candidate %s: %w", candidateID, err)
		}
	}

	if r.hasTable(&model.LegacyApplication{}, "legacy_candidate_applications") {
		var link model.LegacyApplication
		err := r.db.WithContext(ctx).First(&link, "candidate_id = ?", candidateID).Error
		if err == nil {
			return r.FindByID(ctx, link.ApplicationID)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("find legacy application for %s: %w", candidateID, err)
		}
	}

	return nil, fmt.Errorf("%w: candidate %s", domain.ErrCandidateNotFound, candidateID)
}

// LatestCareerCardFile returns nil when the application has no uploads.
func (r *ApplicationRepository) LatestCareerCardFile(ctx context.Context, applicationID int64) (*model.CareerCardFile, error) {
	var file model.CareerCardFile
	err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("created_at DESC, id DESC").
		First(&file).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find career card file for application %d: %w", applicationID, err)
	}
	return &file, nil
}

// ResetSchemaCache forgets memoised introspection results, e.g. after a migration.
func (r *ApplicationRepository) ResetSchemaCache() {
	r.schema.Range(func(key, _ any) bool {
		r.schema.Delete(key)
		return true
	})
}

func (r *ApplicationRepository) hasColumn(dst any, table, column string) bool {
	key := "column:" + table + "." + column
	if v, ok := r.schema.Load(key); ok {
		return v.(bool)
	}
	present := r.inspector.HasColumn(dst, column)
	r.schema.Store(key, present)
	return present
}

func (r *ApplicationRepository) hasTable(dst any, table string) bool {
	key := "table:" + table
	if v, ok := r.schema.Load(key); ok {
		return v.(bool)
	}
	present := r.inspector.HasTable(dst)
	r.schema.Store(key, present)
	return present
}
