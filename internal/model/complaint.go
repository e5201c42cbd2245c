package model

import (
	"time"

	"campus-laundry-backend/internal/laundry"
)

// Complaint is a student's feedback ticket.
type Complaint struct {
	SessionID   string                  `gorm:"primaryKey;size:64" json:"-"`
	ID          string                  `gorm:"primaryKey;size:16" json:"id"`
	Seq         int                     `gorm:"not null" json:"-"`
	StudentID   string                  `gorm:"size:64;not null" json:"studentId"`
	Subject     string                  `gorm:"size:256;not null" json:"subject"`
	Description string                  `gorm:"type:text;not null" json:"description"`
	Date        string                  `gorm:"size:10;not null" json:"date"`
	Status      laundry.ComplaintStatus `gorm:"size:16;not null;index" json:"status"`
	CreatedAt   time.Time               `json:"-"`
	UpdatedAt   time.Time               `json:"-"`
}
