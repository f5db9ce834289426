package model

import (
	"time"
)

type Organization struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(255)" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CultureText string    `gorm:"column:culture_text;type:text" json:"culture_text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (o *Organization) TableName() string {
	return "organizations"
}

type Job struct {
	ID               int64         `gorm:"primaryKey" json:"id"`
	OrgID            *int64        `gorm:"column:org_id;index" json:"org_id"`
	Title            string        `gorm:"type:varchar(255)" json:"title"`
	Description      string        `gorm:"type:text" json:"description"`
	Requirements     string        `gorm:"type:text" json:"requirements"`
	Responsibilities string        `gorm:"type:text" json:"responsibilities"`
	Organization     *Organization `gorm:"foreignKey:OrgID" json:"organization,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

func (j *Job) TableName() string {
	return "jobs"
}
