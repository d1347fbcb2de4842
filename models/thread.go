package models

import "time"

// Thread represents a discussion started by a user inside a category.
type Thread struct {
	ID          uint32    `gorm:"primaryKey"`
	CategoryID  uint32    `gorm:"index;not null"`
	UserID      uint32    `gorm:"index;not null"`
	Title       string    `gorm:"size:255;not null"`
	Description string    `gorm:"type:text;not null"`
	Timestamp   time.Time `gorm:"autoCreateTime;not null"`
	Hidden      bool      `gorm:"not null;default:false;index"`
	Category    Category  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	User        User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
}

func (r Thread) Key() uint32 { return r.ID }

func (Thread) TableName() string { return "threads" }
