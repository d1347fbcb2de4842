package store

import (
	"github.com/cppla/bbscontroller/fields"
	"github.com/cppla/bbscontroller/models"
)

// NewComment holds the caller supplied fields of a comment. ParentID is nil for a top level reply.
type NewComment struct {
	ThreadID fields.ThreadID
	UserID   fields.UserID
	ParentID *fields.CommentID
	Content  fields.CommentContent
}

// CommentChanges is a partial update of a comment. Nil fields are left unchanged.
type CommentChanges struct {
	Content *fields.CommentContent
	Hidden  *bool
}

func (c CommentChanges) columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if c.Content != nil {
		cols["content"] = c.Content.String()
	}
	if c.Hidden != nil {
		cols["hidden"] = *c.Hidden
	}
	return cols
}

// InsertComment creates a comment, as a reply when ParentID is set.
func (s *Store) InsertComment(c NewComment) (*models.Comment, error) {
	row := &models.Comment{
		ThreadID: c.ThreadID.Uint32(),
		UserID:   c.UserID.Uint32(),
		Content:  c.Content.String(),
	}
	if c.ParentID != nil {
		parent := c.ParentID.Uint32()
		row.ParentID = &parent
	}
	return insert(s.db, commentsTable, "insert comment", row)
}

// GetComment returns the comment with id; hidden ones only when includeHidden is set.
func (s *Store) GetComment(id fields.CommentID, includeHidden bool) (*models.Comment, error) {
	return get[models.Comment](s.db, commentsTable, "get comment", id.Uint32(), includeHidden)
}

// GetCommentsInThread lists the newest comments of one thread.
func (s *Store) GetCommentsInThread(thread fields.ThreadID, includeHidden bool) ([]models.Comment, error) {
	return list[models.Comment](s.db, commentsTable, "get comments", includeHidden, thread.Uint32())
}

// GetAllComments lists the newest comments across all threads.
func (s *Store) GetAllComments(includeHidden bool) ([]models.Comment, error) {
	return list[models.Comment](s.db, commentsTable, "get all comments", includeHidden, 0)
}

// UpdateComment changes a comment only when owner wrote it. Someone else's comment is
// reported exactly like a missing one.
func (s *Store) UpdateComment(id fields.CommentID, owner fields.UserID, changes CommentChanges) (*models.Comment, error) {
	return update[models.Comment](s.db, commentsTable, "update comment", scope{id: id.Uint32(), owner: owner.Uint32()}, changes.columns())
}
