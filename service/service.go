// Package service implements the RPC methods. Each call runs its whole pipeline (store
// access and row conversion) on a dispatcher worker and returns either the payload or a
// *payload.ResponseError.
package service

import (
	"context"

	"gorm.io/gorm"

	"github.com/cppla/bbscontroller/dispatch"
	"github.com/cppla/bbscontroller/payload"
	"github.com/cppla/bbscontroller/store"
)

type Service struct {
	d *dispatch.Dispatcher
}

func New(d *dispatch.Dispatcher) *Service {
	return &Service{d: d}
}

// call runs fn on a worker with a store bound to the job's connection. Any error comes
// back as a *payload.ResponseError.
func call[T any](ctx context.Context, s *Service, method string, fn func(st *store.Store) (T, error)) (T, error) {
	out, err := dispatch.Run(ctx, s.d, func(tx *gorm.DB) (T, error) {
		return fn(store.New(tx))
	})
	if err != nil {
		var zero T
		return zero, respond(method, err)
	}
	return out, nil
}

func one[R, P any](row *R, err error, conv func(*R) (P, error)) (P, error) {
	if err != nil {
		var zero P
		return zero, err
	}
	return conv(row)
}

func many[R, P any](rows []R, err error, conv func(*R) (P, error)) ([]P, error) {
	if err != nil {
		return nil, err
	}
	return convertAll(rows, conv)
}

// Users

func (s *Service) GetUser(ctx context.Context, req payload.GetUserRequest) (payload.User, error) {
	return call(ctx, s, "get_user", func(st *store.Store) (payload.User, error) {
		row, err := st.GetUser(req.ID)
		return one(row, err, toUser)
	})
}

func (s *Service) AddUser(ctx context.Context, req payload.AddUserRequest) (payload.User, error) {
	return call(ctx, s, "add_user", func(st *store.Store) (payload.User, error) {
		row, err := st.InsertUser(req.ID, req.Username)
		return one(row, err, toUser)
	})
}

func (s *Service) EditUser(ctx context.Context, req payload.EditUserRequest) (payload.User, error) {
	return call(ctx, s, "edit_user", func(st *store.Store) (payload.User, error) {
		row, err := st.UpdateUser(req.ID, store.UserChanges{Description: req.Description, Avatar: req.Avatar})
		return one(row, err, toUser)
	})
}

func (s *Service) UploadAvatar(ctx context.Context, req payload.UploadAvatarRequest) (payload.User, error) {
	return call(ctx, s, "upload_avatar", func(st *store.Store) (payload.User, error) {
		avatar := req.Avatar
		row, err := st.UpdateUser(req.ID, store.UserChanges{Avatar: &avatar})
		return one(row, err, toUser)
	})
}

// Categories

func (s *Service) GetCategory(ctx context.Context, req payload.GetCategoryRequest) (payload.Category, error) {
	return call(ctx, s, "get_category", func(st *store.Store) (payload.Category, error) {
		row, err := st.GetCategory(req.ID, req.IncludeHidden)
		return one(row, err, toCategory)
	})
}

func (s *Service) GetCategories(ctx context.Context, req payload.GetCategoriesRequest) ([]payload.Category, error) {
	return call(ctx, s, "get_categories", func(st *store.Store) ([]payload.Category, error) {
		rows, err := st.GetCategories(req.IncludeHidden)
		return many(rows, err, toCategory)
	})
}

func (s *Service) AddCategory(ctx context.Context, req payload.AddCategoryRequest) (payload.Category, error) {
	return call(ctx, s, "add_category", func(st *store.Store) (payload.Category, error) {
		row, err := st.InsertCategory(req.Title, req.Description)
		return one(row, err, toCategory)
	})
}

func (s *Service) EditCategory(ctx context.Context, req payload.EditCategoryRequest) (payload.Category, error) {
	return call(ctx, s, "edit_category", func(st *store.Store) (payload.Category, error) {
		row, err := st.UpdateCategory(req.ID, store.CategoryChanges{Title: req.Title, Description: req.Description})
		return one(row, err, toCategory)
	})
}

func (s *Service) HideCategory(ctx context.Context, req payload.HideCategoryRequest) (payload.Category, error) {
	return call(ctx, s, "hide_category", func(st *store.Store) (payload.Category, error) {
		hide := req.Hide
		row, err := st.UpdateCategory(req.ID, store.CategoryChanges{Hidden: &hide})
		return one(row, err, toCategory)
	})
}

// Threads

func (s *Service) GetThread(ctx context.Context, req payload.GetThreadRequest) (payload.Thread, error) {
	return call(ctx, s, "get_thread", func(st *store.Store) (payload.Thread, error) {
		row, err := st.GetThread(req.ID, req.IncludeHidden)
		return one(row, err, toThread)
	})
}

func (s *Service) GetThreads(ctx context.Context, req payload.GetThreadsRequest) ([]payload.Thread, error) {
	return call(ctx, s, "get_threads", func(st *store.Store) ([]payload.Thread, error) {
		rows, err := st.GetThreadsInCategory(req.CategoryID, req.IncludeHidden)
		return many(rows, err, toThread)
	})
}

func (s *Service) GetAllThreads(ctx context.Context, req payload.GetAllThreadsRequest) ([]payload.Thread, error) {
	return call(ctx, s, "get_all_threads", func(st *store.Store) ([]payload.Thread, error) {
		rows, err := st.GetAllThreads(req.IncludeHidden)
		return many(rows, err, toThread)
	})
}

func (s *Service) AddThread(ctx context.Context, req payload.AddThreadRequest) (payload.Thread, error) {
	return call(ctx, s, "add_thread", func(st *store.Store) (payload.Thread, error) {
		row, err := st.InsertThread(store.NewThread{
			CategoryID:  req.CategoryID,
			UserID:      req.UserID,
			Title:       req.Title,
			Description: req.Description,
		})
		return one(row, err, toThread)
	})
}

func (s *Service) EditThread(ctx context.Context, req payload.EditThreadRequest) (payload.Thread, error) {
	return call(ctx, s, "edit_thread", func(st *store.Store) (payload.Thread, error) {
		row, err := st.UpdateThread(req.ID, store.ThreadChanges{Title: req.Title, Description: req.Description})
		return one(row, err, toThread)
	})
}

func (s *Service) HideThread(ctx context.Context, req payload.HideThreadRequest) (payload.Thread, error) {
	return call(ctx, s, "hide_thread", func(st *store.Store) (payload.Thread, error) {
		hide := req.Hide
		row, err := st.UpdateThread(req.ID, store.ThreadChanges{Hidden: &hide})
		return one(row, err, toThread)
	})
}

// Comments

func (s *Service) GetComment(ctx context.Context, req payload.GetCommentRequest) (payload.Comment, error) {
	return call(ctx, s, "get_comment", func(st *store.Store) (payload.Comment, error) {
		row, err := st.GetComment(req.ID, req.IncludeHidden)
		return one(row, err, toComment)
	})
}

func (s *Service) GetComments(ctx context.Context, req payload.GetCommentsRequest) ([]payload.Comment, error) {
	return call(ctx, s, "get_comments", func(st *store.Store) ([]payload.Comment, error) {
		rows, err := st.GetCommentsInThread(req.ThreadID, req.IncludeHidden)
		return many(rows, err, toComment)
	})
}

func (s *Service) GetAllComments(ctx context.Context, req payload.GetAllCommentsRequest) ([]payload.Comment, error) {
	return call(ctx, s, "get_all_comments", func(st *store.Store) ([]payload.Comment, error) {
		rows, err := st.GetAllComments(req.IncludeHidden)
		return many(rows, err, toComment)
	})
}

func (s *Service) AddComment(ctx context.Context, req payload.AddCommentRequest) (payload.Comment, error) {
	return call(ctx, s, "add_comment", func(st *store.Store) (payload.Comment, error) {
		row, err := st.InsertComment(store.NewComment{
			ThreadID: req.ThreadID,
			UserID:   req.UserID,
			ParentID: req.ParentID,
			Content:  req.Content,
		})
		return one(row, err, toComment)
	})
}

func (s *Service) EditComment(ctx context.Context, req payload.EditCommentRequest) (payload.Comment, error) {
	return call(ctx, s, "edit_comment", func(st *store.Store) (payload.Comment, error) {
		content := req.Content
		row, err := st.UpdateComment(req.ID, req.UserID, store.CommentChanges{Content: &content})
		return one(row, err, toComment)
	})
}

func (s *Service) HideComment(ctx context.Context, req payload.HideCommentRequest) (payload.Comment, error) {
	return call(ctx, s, "hide_comment", func(st *store.Store) (payload.Comment, error) {
		hide := req.Hide
		row, err := st.UpdateComment(req.ID, req.UserID, store.CommentChanges{Hidden: &hide})
		return one(row, err, toComment)
	})
}

// Search

func (s *Service) Search(ctx context.Context, req payload.SearchRequest) (payload.SearchResults, error) {
	return call(ctx, s, "search", func(st *store.Store) (payload.SearchResults, error) {
		res, err := st.Search(req.Query, req.IncludeHidden)
		if err != nil {
			return payload.SearchResults{}, err
		}
		var out payload.SearchResults
		if out.Users, err = convertAll(res.Users, toUser); err != nil {
			return payload.SearchResults{}, err
		}
		if out.Categories, err = convertAll(res.Categories, toCategory); err != nil {
			return payload.SearchResults{}, err
		}
		if out.Threads, err = convertAll(res.Threads, toThread); err != nil {
			return payload.SearchResults{}, err
		}
		if out.Comments, err = convertAll(res.Comments, toComment); err != nil {
			return payload.SearchResults{}, err
		}
		return out, nil
	})
}

// Stats combines table sizes with the dispatcher counters.
type Stats struct {
	store.Counts
	Dispatch dispatch.Stats `json:"dispatch"`
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return call(ctx, s, "stats", func(st *store.Store) (Stats, error) {
		counts, err := st.Counts()
		if err != nil {
			return Stats{}, err
		}
		return Stats{Counts: counts, Dispatch: s.d.Stats()}, nil
	})
}
