package fields

import (
	"strconv"
)

type id struct {
	value uint32
}

func (i id) Uint32() uint32 { return i.value }
func (i id) IsZero() bool   { return i.value == 0 }
func (i id) String() string { return strconv.FormatUint(uint64(i.value), 10) }

func (i id) MarshalJSON() ([]byte, error) {
	return strconv.AppendUint(nil, uint64(i.value), 10), nil
}

func checkID(field string, v uint32) error {
	if v == 0 {
		return &ValidationError{Field: field, Reason: "must be a positive integer"}
	}
	return nil
}

// decodeID parses a JSON number into a uint32; null decodes to ok=false.
func decodeID(field string, b []byte) (v uint32, ok bool, err error) {
	if string(b) == "null" {
		return 0, false, nil
	}
	n, err := strconv.ParseUint(string(b), 10, 32)
	if err != nil {
		return 0, false, &ValidationError{Field: field, Reason: "must be a positive 32-bit integer"}
	}
	if err := checkID(field, uint32(n)); err != nil {
		return 0, false, err
	}
	return uint32(n), true, nil
}

// UserID identifies a user. User ids are assigned by the caller, not the store.
type UserID struct{ id }

func NewUserID(v uint32) (UserID, error) {
	if err := checkID("user id", v); err != nil {
		return UserID{}, err
	}
	return UserID{id{v}}, nil
}

func (u *UserID) UnmarshalJSON(b []byte) error {
	v, ok, err := decodeID("user id", b)
	if ok {
		*u = UserID{id{v}}
	}
	return err
}

// CategoryID identifies a category.
type CategoryID struct{ id }

func NewCategoryID(v uint32) (CategoryID, error) {
	if err := checkID("category id", v); err != nil {
		return CategoryID{}, err
	}
	return CategoryID{id{v}}, nil
}

func (c *CategoryID) UnmarshalJSON(b []byte) error {
	v, ok, err := decodeID("category id", b)
	if ok {
		*c = CategoryID{id{v}}
	}
	return err
}

// ThreadID identifies a thread.
type ThreadID struct{ id }

func NewThreadID(v uint32) (ThreadID, error) {
	if err := checkID("thread id", v); err != nil {
		return ThreadID{}, err
	}
	return ThreadID{id{v}}, nil
}

func (t *ThreadID) UnmarshalJSON(b []byte) error {
	v, ok, err := decodeID("thread id", b)
	if ok {
		*t = ThreadID{id{v}}
	}
	return err
}

// CommentID identifies a comment.
type CommentID struct{ id }

func NewCommentID(v uint32) (CommentID, error) {
	if err := checkID("comment id", v); err != nil {
		return CommentID{}, err
	}
	return CommentID{id{v}}, nil
}

func (c *CommentID) UnmarshalJSON(b []byte) error {
	v, ok, err := decodeID("comment id", b)
	if ok {
		*c = CommentID{id{v}}
	}
	return err
}
