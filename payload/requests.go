// Package payload defines the request and response shapes of every RPC method. Field values
// are validated while the JSON is decoded; Validate then checks that required fields were
// actually present.
package payload

import "github.com/cppla/bbscontroller/fields"

// Request is implemented by every request payload.
type Request interface {
	Validate() error
}

type zeroer interface {
	IsZero() bool
}

// required returns a validation error for the first named value that was never set.
func required(values ...interface{}) error {
	for i := 0; i+1 < len(values); i += 2 {
		name := values[i].(string)
		if v, ok := values[i+1].(zeroer); ok && v.IsZero() {
			return &fields.ValidationError{Field: name, Reason: "is required"}
		}
	}
	return nil
}

type GetUserRequest struct {
	ID fields.UserID `json:"id"`
}

func (r GetUserRequest) Validate() error { return required("id", r.ID) }

type AddUserRequest struct {
	ID       fields.UserID   `json:"id"`
	Username fields.Username `json:"username"`
}

func (r AddUserRequest) Validate() error { return required("id", r.ID, "username", r.Username) }

// EditUserRequest changes only the fields that are present. The username cannot be changed.
type EditUserRequest struct {
	ID          fields.UserID       `json:"id"`
	Description *fields.Description `json:"description"`
	Avatar      *fields.Avatar      `json:"avatar"`
}

func (r EditUserRequest) Validate() error { return required("id", r.ID) }

type UploadAvatarRequest struct {
	ID     fields.UserID `json:"id"`
	Avatar fields.Avatar `json:"avatar"`
}

func (r UploadAvatarRequest) Validate() error { return required("id", r.ID, "avatar", r.Avatar) }

type GetCategoryRequest struct {
	ID            fields.CategoryID `json:"id"`
	IncludeHidden bool              `json:"include_hidden"`
}

func (r GetCategoryRequest) Validate() error { return required("id", r.ID) }

type GetCategoriesRequest struct {
	IncludeHidden bool `json:"include_hidden"`
}

func (r GetCategoriesRequest) Validate() error { return nil }

type AddCategoryRequest struct {
	Title       fields.Title       `json:"title"`
	Description fields.Description `json:"description"`
}

func (r AddCategoryRequest) Validate() error { return required("title", r.Title) }

type EditCategoryRequest struct {
	ID          fields.CategoryID   `json:"id"`
	Title       *fields.Title       `json:"title"`
	Description *fields.Description `json:"description"`
}

func (r EditCategoryRequest) Validate() error { return required("id", r.ID) }

type HideCategoryRequest struct {
	ID   fields.CategoryID `json:"id"`
	Hide bool              `json:"hide"`
}

func (r HideCategoryRequest) Validate() error { return required("id", r.ID) }

type GetThreadRequest struct {
	ID            fields.ThreadID `json:"id"`
	IncludeHidden bool            `json:"include_hidden"`
}

func (r GetThreadRequest) Validate() error { return required("id", r.ID) }

type GetThreadsRequest struct {
	CategoryID    fields.CategoryID `json:"category_id"`
	IncludeHidden bool              `json:"include_hidden"`
}

func (r GetThreadsRequest) Validate() error { return required("category_id", r.CategoryID) }

type GetAllThreadsRequest struct {
	IncludeHidden bool `json:"include_hidden"`
}

func (r GetAllThreadsRequest) Validate() error { return nil }

type AddThreadRequest struct {
	CategoryID  fields.CategoryID  `json:"category_id"`
	UserID      fields.UserID      `json:"user_id"`
	Title       fields.Title       `json:"title"`
	Description fields.Description `json:"description"`
}

func (r AddThreadRequest) Validate() error {
	return required("category_id", r.CategoryID, "user_id", r.UserID, "title", r.Title)
}

type EditThreadRequest struct {
	ID          fields.ThreadID     `json:"id"`
	Title       *fields.Title       `json:"title"`
	Description *fields.Description `json:"description"`
}

func (r EditThreadRequest) Validate() error { return required("id", r.ID) }

type HideThreadRequest struct {
	ID   fields.ThreadID `json:"id"`
	Hide bool            `json:"hide"`
}

func (r HideThreadRequest) Validate() error { return required("id", r.ID) }

type GetCommentRequest struct {
	ID            fields.CommentID `json:"id"`
	IncludeHidden bool             `json:"include_hidden"`
}

func (r GetCommentRequest) Validate() error { return required("id", r.ID) }

type GetCommentsRequest struct {
	ThreadID      fields.ThreadID `json:"thread_id"`
	IncludeHidden bool            `json:"include_hidden"`
}

func (r GetCommentsRequest) Validate() error { return required("thread_id", r.ThreadID) }

type GetAllCommentsRequest struct {
	IncludeHidden bool `json:"include_hidden"`
}

func (r GetAllCommentsRequest) Validate() error { return nil }

type AddCommentRequest struct {
	ThreadID fields.ThreadID       `json:"thread_id"`
	UserID   fields.UserID         `json:"user_id"`
	ParentID *fields.CommentID     `json:"parent_id"`
	Content  fields.CommentContent `json:"content"`
}

func (r AddCommentRequest) Validate() error {
	return required("thread_id", r.ThreadID, "user_id", r.UserID, "content", r.Content)
}

// EditCommentRequest only succeeds for the comment's author.
type EditCommentRequest struct {
	ID      fields.CommentID      `json:"id"`
	UserID  fields.UserID         `json:"user_id"`
	Content fields.CommentContent `json:"content"`
}

func (r EditCommentRequest) Validate() error {
	return required("id", r.ID, "user_id", r.UserID, "content", r.Content)
}

// HideCommentRequest only succeeds for the comment's author.
type HideCommentRequest struct {
	ID     fields.CommentID `json:"id"`
	UserID fields.UserID    `json:"user_id"`
	Hide   bool             `json:"hide"`
}

func (r HideCommentRequest) Validate() error { return required("id", r.ID, "user_id", r.UserID) }

type SearchRequest struct {
	Query         fields.SearchQuery `json:"query"`
	IncludeHidden bool               `json:"include_hidden"`
}

func (r SearchRequest) Validate() error { return required("query", r.Query) }
