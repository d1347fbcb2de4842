package store

import (
	"github.com/cppla/bbscontroller/apperr"
	"github.com/cppla/bbscontroller/fields"
	"github.com/cppla/bbscontroller/models"
)

// UserChanges is a partial update of a user. Nil fields are left unchanged.
type UserChanges struct {
	Description *fields.Description
	Avatar      *fields.Avatar
}

func (c UserChanges) columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if c.Description != nil {
		cols["description"] = c.Description.String()
	}
	if c.Avatar != nil {
		cols["avatar"] = c.Avatar.String()
	}
	return cols
}

// InsertUser creates a user under the id chosen by the caller.
func (s *Store) InsertUser(id fields.UserID, username fields.Username) (*models.User, error) {
	return insert(s.db, usersTable, "insert user", &models.User{
		ID:       id.Uint32(),
		Username: username.String(),
	})
}

// GetUser returns the user with id.
func (s *Store) GetUser(id fields.UserID) (*models.User, error) {
	return get[models.User](s.db, usersTable, "get user", id.Uint32(), true)
}

// UpdateUser applies changes to a user and returns the updated row.
func (s *Store) UpdateUser(id fields.UserID, changes UserChanges) (*models.User, error) {
	return update[models.User](s.db, usersTable, "update user", scope{id: id.Uint32()}, changes.columns())
}

// DeleteUser removes a user outright. It fails while the user still owns threads or comments.
func (s *Store) DeleteUser(id fields.UserID) error {
	res := s.db.Delete(&models.User{}, id.Uint32())
	if res.Error != nil {
		return classify("delete user", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.New(apperr.ContentNotFound, "delete user")
	}
	return nil
}
