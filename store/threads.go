package store

import (
	"github.com/cppla/bbscontroller/fields"
	"github.com/cppla/bbscontroller/models"
)

// NewThread holds the caller supplied fields of a thread; id and timestamp come from the store.
type NewThread struct {
	CategoryID  fields.CategoryID
	UserID      fields.UserID
	Title       fields.Title
	Description fields.Description
}

// ThreadChanges is a partial update of a thread. Nil fields are left unchanged.
type ThreadChanges struct {
	Title       *fields.Title
	Description *fields.Description
	Hidden      *bool
}

func (c ThreadChanges) columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if c.Title != nil {
		cols["title"] = c.Title.String()
	}
	if c.Description != nil {
		cols["description"] = c.Description.String()
	}
	if c.Hidden != nil {
		cols["hidden"] = *c.Hidden
	}
	return cols
}

// InsertThread creates a thread. A category or user that does not exist fails the insert
// with a query error from the foreign key.
func (s *Store) InsertThread(t NewThread) (*models.Thread, error) {
	return insert(s.db, threadsTable, "insert thread", &models.Thread{
		CategoryID:  t.CategoryID.Uint32(),
		UserID:      t.UserID.Uint32(),
		Title:       t.Title.String(),
		Description: t.Description.String(),
	})
}

// GetThread returns the thread with id; hidden ones only when includeHidden is set.
func (s *Store) GetThread(id fields.ThreadID, includeHidden bool) (*models.Thread, error) {
	return get[models.Thread](s.db, threadsTable, "get thread", id.Uint32(), includeHidden)
}

// GetThreadsInCategory lists the newest threads of one category.
func (s *Store) GetThreadsInCategory(category fields.CategoryID, includeHidden bool) ([]models.Thread, error) {
	return list[models.Thread](s.db, threadsTable, "get threads", includeHidden, category.Uint32())
}

// GetAllThreads lists the newest threads across all categories.
func (s *Store) GetAllThreads(includeHidden bool) ([]models.Thread, error) {
	return list[models.Thread](s.db, threadsTable, "get all threads", includeHidden, 0)
}

// UpdateThread applies changes to a thread, hidden or not.
func (s *Store) UpdateThread(id fields.ThreadID, changes ThreadChanges) (*models.Thread, error) {
	return update[models.Thread](s.db, threadsTable, "update thread", scope{id: id.Uint32()}, changes.columns())
}
