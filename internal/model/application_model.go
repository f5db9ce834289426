package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Application is a locally created candidate application. CandidateUUID was
// added later and is absent on older schemas.
type Application struct {
	ID             int64          `gorm:"primaryKey" json:"id"`
	CandidateUUID  *uuid.UUID     `gorm:"column:candidate_uuid;type:uuid;index" json:"candidate_uuid"`
	JobID          *int64         `gorm:"column:job_id;index" json:"job_id"`
	FullName       string         `gorm:"type:varchar(255)" json:"full_name"`
	Email          string         `gorm:"type:varchar(255)" json:"email"`
	CareerCardData datatypes.JSON `gorm:"column:career_card_data;type:jsonb" json:"career_card_data"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func (a *Application) TableName() string {
	return "applications"
}

type CareerCardFile struct {
	ID               int64     `gorm:"primaryKey" json:"id"`
	ApplicationID    int64     `gorm:"column:application_id;index" json:"application_id"`
	StoredPath       string    `gorm:"column:stored_path;type:text" json:"stored_path"`
	MimeType         string    `gorm:"column:mime_type;type:varchar(127)" json:"mime_type"`
	OriginalFilename string    `gorm:"column:original_filename;type:varchar(255)" json:"original_filename"`
	SizeBytes        int64     `gorm:"column:size_bytes" json:"size_bytes"`
	CreatedAt        time.Time `json:"created_at"`
}

func (f *CareerCardFile) TableName() string {
	return "career_card_files"
}

// LegacyApplication links externally issued candidate UUIDs to applications
// created before applications.candidate_uuid existed.
type LegacyApplication struct {
	ID            int64     `gorm:"primaryKey" json:"id"`
	CandidateID   uuid.UUID `gorm:"column:candidate_id;type:uuid;uniqueIndex" json:"candidate_id"`
	ApplicationID int64     `gorm:"column:application_id" json:"application_id"`
	CreatedAt     time.Time `json:"created_at"`
}

func (l *LegacyApplication) TableName() string {
	return "legacy_candidate_applications"
}
