package models

// SppInstallmentSetting marks a student as paying SPP in installments.
// While active, the student is exempt from the monthly duplicate-payment check.
type SppInstallmentSetting struct {
	Base
	StudentID string `gorm:"type:uuid;uniqueIndex;not null" json:"student_id"`
	IsActive  bool   `gorm:"not null;default:false" json:"is_active"`
}
