package payload

import (
	"time"

	"github.com/cppla/bbscontroller/fields"
)

type User struct {
	ID          fields.UserID       `json:"id"`
	Username    fields.Username     `json:"username"`
	Description *fields.Description `json:"description"`
	Avatar      *fields.Avatar      `json:"avatar"`
}

type Category struct {
	ID          fields.CategoryID  `json:"id"`
	Title       fields.Title       `json:"title"`
	Description fields.Description `json:"description"`
	Hidden      bool               `json:"hidden"`
}

type Thread struct {
	ID          fields.ThreadID    `json:"id"`
	CategoryID  fields.CategoryID  `json:"category_id"`
	UserID      fields.UserID      `json:"user_id"`
	Title       fields.Title       `json:"title"`
	Description fields.Description `json:"description"`
	Timestamp   time.Time          `json:"timestamp"`
	Hidden      bool               `json:"hidden"`
}

type Comment struct {
	ID        fields.CommentID      `json:"id"`
	ThreadID  fields.ThreadID       `json:"thread_id"`
	UserID    fields.UserID         `json:"user_id"`
	ParentID  *fields.CommentID     `json:"parent_id"`
	Content   fields.CommentContent `json:"content"`
	Timestamp time.Time             `json:"timestamp"`
	Hidden    bool                  `json:"hidden"`
}

// SearchResults merges the matches of every entity kind.
type SearchResults struct {
	Categories []Category `json:"categories"`
	Threads    []Thread   `json:"threads"`
	Comments   []Comment  `json:"comments"`
	Users      []User     `json:"users"`
}
