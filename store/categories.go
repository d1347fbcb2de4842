package store

import (
	"github.com/cppla/bbscontroller/fields"
	"github.com/cppla/bbscontroller/models"
)

// CategoryChanges is a partial update of a category. Nil fields are left unchanged.
type CategoryChanges struct {
	Title       *fields.Title
	Description *fields.Description
	Hidden      *bool
}

func (c CategoryChanges) columns() map[string]interface{} {
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

// InsertCategory creates a visible category.
func (s *Store) InsertCategory(title fields.Title, description fields.Description) (*models.Category, error) {
	return insert(s.db, categoriesTable, "insert category", &models.Category{
		Title:       title.String(),
		Description: description.String(),
	})
}

// GetCategory returns the category with id; hidden ones only when includeHidden is set.
func (s *Store) GetCategory(id fields.CategoryID, includeHidden bool) (*models.Category, error) {
	return get[models.Category](s.db, categoriesTable, "get category", id.Uint32(), includeHidden)
}

// GetCategories lists the newest categories.
func (s *Store) GetCategories(includeHidden bool) ([]models.Category, error) {
	return list[models.Category](s.db, categoriesTable, "get categories", includeHidden, 0)
}

// UpdateCategory applies changes to a category, hidden or not.
func (s *Store) UpdateCategory(id fields.CategoryID, changes CategoryChanges) (*models.Category, error) {
	return update[models.Category](s.db, categoriesTable, "update category", scope{id: id.Uint32()}, changes.columns())
}
