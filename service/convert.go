package service

import (
	"go.uber.org/zap"

	"github.com/cppla/bbscontroller/apperr"
	"github.com/cppla/bbscontroller/fields"
	"github.com/cppla/bbscontroller/models"
	"github.com/cppla/bbscontroller/payload"
	"github.com/cppla/bbscontroller/utils"
)

// Stored rows are re-validated on the way out; a row that no longer satisfies the field
// rules is a server side ValidationError, never MissingContent.

func invalid(op string, err error) error {
	return apperr.Wrap(apperr.ValidationError, op, err)
}

func toUser(row *models.User) (payload.User, error) {
	const op = "convert user"
	id, err := fields.NewUserID(row.ID)
	if err != nil {
		return payload.User{}, invalid(op, err)
	}
	name, err := fields.NewUsername(row.Username)
	if err != nil {
		return payload.User{}, invalid(op, err)
	}
	out := payload.User{ID: id, Username: name}
	if row.Description != nil {
		// A bad profile text should not hide the whole user; drop it and keep going.
		if d, err := fields.NewDescription(*row.Description); err == nil {
			out.Description = &d
		} else {
			utils.Logger.Warn("dropping invalid stored user description", zap.Uint32("user_id", row.ID), zap.Error(err))
		}
	}
	if row.Avatar != nil {
		a, err := fields.NewAvatar(*row.Avatar)
		if err != nil {
			return payload.User{}, invalid(op, err)
		}
		out.Avatar = &a
	}
	return out, nil
}

func toCategory(row *models.Category) (payload.Category, error) {
	const op = "convert category"
	id, err := fields.NewCategoryID(row.ID)
	if err != nil {
		return payload.Category{}, invalid(op, err)
	}
	title, err := fields.NewTitle(row.Title)
	if err != nil {
		return payload.Category{}, invalid(op, err)
	}
	desc, err := fields.NewDescription(row.Description)
	if err != nil {
		return payload.Category{}, invalid(op, err)
	}
	return payload.Category{ID: id, Title: title, Description: desc, Hidden: row.Hidden}, nil
}

func toThread(row *models.Thread) (payload.Thread, error) {
	const op = "convert thread"
	id, err := fields.NewThreadID(row.ID)
	if err != nil {
		return payload.Thread{}, invalid(op, err)
	}
	category, err := fields.NewCategoryID(row.CategoryID)
	if err != nil {
		return payload.Thread{}, invalid(op, err)
	}
	user, err := fields.NewUserID(row.UserID)
	if err != nil {
		return payload.Thread{}, invalid(op, err)
	}
	title, err := fields.NewTitle(row.Title)
	if err != nil {
		return payload.Thread{}, invalid(op, err)
	}
	desc, err := fields.NewDescription(row.Description)
	if err != nil {
		return payload.Thread{}, invalid(op, err)
	}
	return payload.Thread{
		ID:          id,
		CategoryID:  category,
		UserID:      user,
		Title:       title,
		Description: desc,
		Timestamp:   row.Timestamp,
		Hidden:      row.Hidden,
	}, nil
}

func toComment(row *models.Comment) (payload.Comment, error) {
	const op = "convert comment"
	id, err := fields.NewCommentID(row.ID)
	if err != nil {
		return payload.Comment{}, invalid(op, err)
	}
	thread, err := fields.NewThreadID(row.ThreadID)
	if err != nil {
		return payload.Comment{}, invalid(op, err)
	}
	user, err := fields.NewUserID(row.UserID)
	if err != nil {
		return payload.Comment{}, invalid(op, err)
	}
	content, err := fields.NewCommentContent(row.Content)
	if err != nil {
		return payload.Comment{}, invalid(op, err)
	}
	out := payload.Comment{
		ID:        id,
		ThreadID:  thread,
		UserID:    user,
		Content:   content,
		Timestamp: row.Timestamp,
		Hidden:    row.Hidden,
	}
	if row.ParentID != nil {
		parent, err := fields.NewCommentID(*row.ParentID)
		if err != nil {
			return payload.Comment{}, invalid(op, err)
		}
		out.ParentID = &parent
	}
	return out, nil
}

// convertAll converts every row or fails on the first one that does not convert.
func convertAll[R, P any](rows []R, conv func(*R) (P, error)) ([]P, error) {
	out := make([]P, 0, len(rows))
	for i := range rows {
		p, err := conv(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
