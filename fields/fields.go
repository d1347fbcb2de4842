// Package fields holds the validated value types that cross the RPC boundary. A value of
// any of these types can only be built by a constructor that enforces its constraints, so
// code further in can rely on them without checking again.
package fields

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Length bounds, counted in runes after trimming surrounding whitespace.
const (
	MaxUsernameLength       = 32
	MaxTitleLength          = 128
	MaxDescriptionLength    = 4096
	MaxCommentContentLength = 8192
	MaxAvatarLength         = 512
	MaxSearchQueryLength    = 128
)

// ValidationError reports a value that does not satisfy its field's constraints.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

type rule struct {
	field     string
	min       int
	max       int
	noControl bool
}

func (r rule) check(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !utf8.ValidString(s) {
		return "", &ValidationError{Field: r.field, Reason: "not valid utf-8"}
	}
	n := utf8.RuneCountInString(s)
	if n < r.min {
		if r.min == 1 {
			return "", &ValidationError{Field: r.field, Reason: "must not be empty"}
		}
		return "", &ValidationError{Field: r.field, Reason: fmt.Sprintf("must be at least %d characters", r.min)}
	}
	if n > r.max {
		return "", &ValidationError{Field: r.field, Reason: fmt.Sprintf("must be at most %d characters", r.max)}
	}
	if r.noControl && strings.IndexFunc(s, unicode.IsControl) >= 0 {
		return "", &ValidationError{Field: r.field, Reason: "must not contain control characters"}
	}
	return s, nil
}

var (
	usernameRule    = rule{field: "username", min: 1, max: MaxUsernameLength, noControl: true}
	titleRule       = rule{field: "title", min: 1, max: MaxTitleLength}
	descriptionRule = rule{field: "description", min: 0, max: MaxDescriptionLength}
	contentRule     = rule{field: "content", min: 1, max: MaxCommentContentLength}
	avatarRule      = rule{field: "avatar", min: 1, max: MaxAvatarLength, noControl: true}
	queryRule       = rule{field: "query", min: 1, max: MaxSearchQueryLength}
)

type text struct {
	value string
}

func (t text) String() string { return t.value }

// IsZero reports whether the value was never set.
func (t text) IsZero() bool { return t.value == "" }

func (t text) MarshalJSON() ([]byte, error) { return json.Marshal(t.value) }

// decodeString reads a JSON string; null decodes to ok=false.
func decodeString(field string, b []byte) (s string, ok bool, err error) {
	if string(b) == "null" {
		return "", false, nil
	}
	if err := json.Unmarshal(b, &s); err != nil {
		return "", false, &ValidationError{Field: field, Reason: "must be a string"}
	}
	return s, true, nil
}

// decodeText reads a JSON string into a field built by newFn. The caller's text is kept as
// sent; when plain is set, text holding HTML markup is refused instead of rewritten.
func decodeText[T any](field string, b []byte, plain bool, newFn func(string) (T, error)) (v T, ok bool, err error) {
	s, ok, err := decodeString(field, b)
	if err != nil || !ok {
		return v, false, err
	}
	if v, err = newFn(s); err != nil {
		return v, false, err
	}
	if plain && ContainsMarkup(s) {
		return v, false, &ValidationError{Field: field, Reason: "must not contain HTML markup"}
	}
	return v, true, nil
}

// Username is a user's display name. It is immutable once the user exists.
type Username struct{ text }

func NewUsername(s string) (Username, error) {
	v, err := usernameRule.check(s)
	if err != nil {
		return Username{}, err
	}
	return Username{text{v}}, nil
}

func (u *Username) UnmarshalJSON(b []byte) error {
	v, ok, err := decodeText(usernameRule.field, b, true, NewUsername)
	if ok {
		*u = v
	}
	return err
}

// Title is the heading of a category or thread.
type Title struct{ text }

func NewTitle(s string) (Title, error) {
	v, err := titleRule.check(s)
	if err != nil {
		return Title{}, err
	}
	return Title{text{v}}, nil
}

func (t *Title) UnmarshalJSON(b []byte) error {
	v, ok, err := decodeText(titleRule.field, b, true, NewTitle)
	if ok {
		*t = v
	}
	return err
}

// Description is free text attached to users, categories and threads. It may be empty.
type Description struct{ text }

func NewDescription(s string) (Description, error) {
	v, err := descriptionRule.check(s)
	if err != nil {
		return Description{}, err
	}
	return Description{text{v}}, nil
}

func (d *Description) UnmarshalJSON(b []byte) error {
	v, ok, err := decodeText(descriptionRule.field, b, true, NewDescription)
	if ok {
		*d = v
	}
	return err
}

// CommentContent is the body of a comment.
type CommentContent struct{ text }

func NewCommentContent(s string) (CommentContent, error) {
	v, err := contentRule.check(s)
	if err != nil {
		return CommentContent{}, err
	}
	return CommentContent{text{v}}, nil
}

func (c *CommentContent) UnmarshalJSON(b []byte) error {
	v, ok, err := decodeText(contentRule.field, b, true, NewCommentContent)
	if ok {
		*c = v
	}
	return err
}

// Avatar is an opaque reference (path or URL) to a user's picture. It is not interpreted.
type Avatar struct{ text }

func NewAvatar(s string) (Avatar, error) {
	v, err := avatarRule.check(s)
	if err != nil {
		return Avatar{}, err
	}
	return Avatar{text{v}}, nil
}

func (a *Avatar) UnmarshalJSON(b []byte) error {
	v, ok, err := decodeText(avatarRule.field, b, false, NewAvatar)
	if ok {
		*a = v
	}
	return err
}

// SearchQuery is the needle of a substring search, matched against stored text as sent.
type SearchQuery struct{ text }

func NewSearchQuery(s string) (SearchQuery, error) {
	v, err := queryRule.check(s)
	if err != nil {
		return SearchQuery{}, err
	}
	return SearchQuery{text{v}}, nil
}

func (q *SearchQuery) UnmarshalJSON(b []byte) error {
	v, ok, err := decodeText(queryRule.field, b, false, NewSearchQuery)
	if ok {
		*q = v
	}
	return err
}
