package models

import "time"

// Comment represents a reply inside a thread, optionally answering another comment.
type Comment struct {
	ID        uint32    `gorm:"primaryKey"`
	ThreadID  uint32    `gorm:"index;not null"`
	ParentID  *uint32   `gorm:"index"`
	UserID    uint32    `gorm:"index;not null"`
	Content   string    `gorm:"type:text;not null"`
	Timestamp time.Time `gorm:"autoCreateTime;not null"`
	Hidden    bool      `gorm:"not null;default:false;index"`
	Thread    Thread    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	Parent    *Comment  `gorm:"foreignKey:ParentID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
}

func (r Comment) Key() uint32 { return r.ID }

func (Comment) TableName() string { return "comments" }

// All lists every persisted model in dependency order, for migrations.
func All() []interface{} {
	return []interface{}{&User{}, &Category{}, &Thread{}, &Comment{}}
}
