package models

// User represents a forum user. The id is assigned by the caller (the account service),
// never by the database.
type User struct {
	ID          uint32  `gorm:"primaryKey;autoIncrement:false"`
	Username    string  `gorm:"size:64;not null"`
	Description *string `gorm:"type:text"`
	Avatar      *string `gorm:"size:512"`
}

// Key returns the primary key.
func (r User) Key() uint32 { return r.ID }

func (User) TableName() string { return "users" }
