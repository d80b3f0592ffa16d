package model

import "time"

// Document is one uploaded file. StoragePath points at the stored bytes under
// the configured upload root; Name is the user-facing display name used for
// source attribution.
type Document struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Name        string    `gorm:"size:256;not null" json:"name"`
	StoragePath string    `gorm:"size:512;not null" json:"-"`
	Size        int64     `gorm:"not null" json:"size"`
	UploadedAt  time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
}
