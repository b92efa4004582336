package models

import (
	"time"

	"bendahara/internal/uuid"

	"gorm.io/gorm"
)

// Base holds the identity and bookkeeping columns shared by every table.
type Base struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate assigns a time-ordered UUIDv7 when the caller left ID empty.
// GORM runs it once per element on batch inserts as well.
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New()
	}
	return nil
}
