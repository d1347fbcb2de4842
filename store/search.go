package store

import (
	"github.com/cppla/bbscontroller/fields"
	"github.com/cppla/bbscontroller/models"
)

// Results holds the matches of each table. Every list is capped at MaxRows on its own.
type Results struct {
	Users      []models.User
	Categories []models.Category
	Threads    []models.Thread
	Comments   []models.Comment
}

// Search looks for query as a substring of usernames, category titles, thread titles and
// descriptions, and comment contents. The first failing scan aborts the whole search.
func (s *Store) Search(query fields.SearchQuery, includeHidden bool) (*Results, error) {
	pattern := containsPattern(query.String())

	var (
		res Results
		err error
	)
	if res.Users, err = search[models.User](s.db, usersTable, "search users", pattern, includeHidden, "username"); err != nil {
		return nil, err
	}
	if res.Categories, err = search[models.Category](s.db, categoriesTable, "search categories", pattern, includeHidden, "title"); err != nil {
		return nil, err
	}
	if res.Threads, err = search[models.Thread](s.db, threadsTable, "search threads", pattern, includeHidden, "title", "description"); err != nil {
		return nil, err
	}
	if res.Comments, err = search[models.Comment](s.db, commentsTable, "search comments", pattern, includeHidden, "content"); err != nil {
		return nil, err
	}
	return &res, nil
}
