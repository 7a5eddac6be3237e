package model

import (
	"time"

	"gorm.io/gorm"
)

// NoteCategory tags a note
type NoteCategory string

const (
	NoteCategoryUnit NoteCategory = "UNIT"
	NoteCategoryPYQ  NoteCategory = "PYQ"
	NoteCategoryLive NoteCategory = "LIVE"
)

// Note is a study document attached to a subject
type Note struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
	SubjectID  uint           `gorm:"not null;index" json:"subject_id"`
	Title      string         `gorm:"not null" json:"title"`
	Category   NoteCategory   `gorm:"type:varchar(10);default:'UNIT';index" json:"category"`
	FileURL    string         `gorm:"type:varchar(1000);not null" json:"file_url"`
	StorageKey string         `gorm:"type:varchar(500)" json:"-"`
	PageCount  int            `json:"page_count,omitempty"`

	Subject *Subject `gorm:"foreignKey:SubjectID" json:"subject,omitempty"`
}

// Lecture is a recorded video
type Lecture struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	SubjectID uint           `gorm:"not null;index" json:"subject_id"`
	Title     string         `gorm:"not null" json:"title"`
	URL       string         `gorm:"type:varchar(1000);not null" json:"url"`

	Subject *Subject `gorm:"foreignKey:SubjectID" json:"subject,omitempty"`
}

// LiveSession is a scheduled online class
type LiveSession struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	SubjectID uint           `gorm:"not null;index" json:"subject_id"`
	Title     string         `gorm:"not null" json:"title"`
	MeetLink  string         `gorm:"type:varchar(1000);not null" json:"meet_link"`
	StartsAt  time.Time      `gorm:"not null;index" json:"starts_at"`

	Subject *Subject `gorm:"foreignKey:SubjectID" json:"subject,omitempty"`
}

// Assignment is homework for a subject
type Assignment struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	SubjectID   uint           `gorm:"not null;index" json:"subject_id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	DueDate     *time.Time     `json:"due_date,omitempty"`

	Subject *Subject `gorm:"foreignKey:SubjectID" json:"subject,omitempty"`
}
