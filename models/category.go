package models

// Category groups threads. Hidden categories are left out of listings and search.
type Category struct {
	ID          uint32 `gorm:"primaryKey"`
	Title       string `gorm:"size:255;not null"`
	Description string `gorm:"type:text;not null"`
	Hidden      bool   `gorm:"not null;default:false;index"`
}

func (r Category) Key() uint32 { return r.ID }

func (Category) TableName() string { return "categories" }
