package model

import (
	"time"

	"campus-laundry-backend/internal/laundry"
)

// Order is a student's laundry drop-off, scoped to the session that owns it.
type Order struct {
	SessionID     string              `gorm:"primaryKey;size:64" json:"-"`
	ID            string              `gorm:"primaryKey;size:16" json:"id"`
	Seq           int                 `gorm:"not null" json:"-"`
	StudentID     string              `gorm:"size:64;not null" json:"studentId"`
	WashType      string              `gorm:"size:64;not null" json:"washType"`
	DetergentType string              `gorm:"size:64;not null" json:"detergentType"`
	ClothCount    int                 `gorm:"not null" json:"clothCount"`
	GivenDate     string              `gorm:"size:10;not null" json:"givenDate"`
	ReturnDate    string              `gorm:"size:10;not null" json:"returnDate"`
	Status        laundry.OrderStatus `gorm:"size:16;not null;index" json:"status"`
	CreatedAt     time.Time           `json:"-"`
	UpdatedAt     time.Time           `json:"-"`
}
