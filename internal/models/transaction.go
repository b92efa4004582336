package models

import "time"

// HandoverStatus tracks custody of cash collected by an admin.
type HandoverStatus string

const (
	HandoverStatusNone      HandoverStatus = "NONE"
	HandoverStatusPending   HandoverStatus = "PENDING"
	HandoverStatusCompleted HandoverStatus = "COMPLETED"
)

// InitialHandoverStatus returns the status a new row starts in.
// Status is NONE exactly when the row does not take part in handover.
func InitialHandoverStatus(isHandover bool) HandoverStatus {
	if isHandover {
		return HandoverStatusPending
	}
	return HandoverStatusNone
}

// Transaction is a single cash movement. Type holds a category code and is
// deliberately not a foreign key: deleting a category leaves rows untouched.
type Transaction struct {
	Base
	Type           string         `gorm:"size:64;not null;index" json:"type"`
	Amount         int64          `gorm:"type:bigint;not null" json:"amount"`
	Date           time.Time      `gorm:"not null;index" json:"date"`
	Description    string         `json:"description"`
	StudentID      *string        `gorm:"type:uuid;index" json:"student_id,omitempty"`
	CreatorID      string         `gorm:"type:uuid;not null;index" json:"creator_id"`
	IsHandover     bool           `gorm:"not null;default:false" json:"is_handover"`
	HandoverStatus HandoverStatus `gorm:"type:varchar(16);not null;default:'NONE';index" json:"handover_status"`
	HandoverDate   *time.Time     `json:"handover_date,omitempty"`

	// Relationships
	Creator *User `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Student *User `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}
