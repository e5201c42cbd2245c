package model

import "time"

// Stock is one detergent or supply line in the store room.
type Stock struct {
	SessionID     string    `gorm:"primaryKey;size:64" json:"-"`
	ID            string    `gorm:"primaryKey;size:16" json:"id"`
	Seq           int       `gorm:"not null" json:"-"`
	DetergentType string    `gorm:"size:64;not null" json:"detergentType"`
	CurrentStock  int       `gorm:"not null" json:"currentStock"`
	MinThreshold  int       `gorm:"not null" json:"minThreshold"`
	Unit          string    `gorm:"size:8;not null" json:"unit"`
	UpdatedAt     time.Time `json:"-"`
}
