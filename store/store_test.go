package store

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cppla/bbscontroller/apperr"
	"github.com/cppla/bbscontroller/config"
	"github.com/cppla/bbscontroller/fields"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "forum.db")
	db, err := gorm.Open(sqlite.Open(config.SQLiteDSN(path, "")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return New(db)
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func title(s string) fields.Title { return must(fields.NewTitle(s)) }
func desc(s string) fields.Description { return must(fields.NewDescription(s)) }
func content(s string) fields.CommentContent { return must(fields.NewCommentContent(s)) }
func userID(v uint32) fields.UserID { return must(fields.NewUserID(v)) }
func categoryID(v uint32) fields.CategoryID { return must(fields.NewCategoryID(v)) }
func threadID(v uint32) fields.ThreadID { return must(fields.NewThreadID(v)) }
func commentID(v uint32) fields.CommentID { return must(fields.NewCommentID(v)) }
func query(s string) fields.SearchQuery { return must(fields.NewSearchQuery(s)) }
func username(s string) fields.Username { return must(fields.NewUsername(s)) }
func boolPtr(b bool) *bool { return &b }
func titlePtr(s string) *fields.Title { v := title(s); return &v }
func descPtr(s string) *fields.Description { v := desc(s); return &v }
func contentPtr(s string) *fields.CommentContent { v := content(s); return &v }

// seed creates user 1, a category, a thread and a comment.
func seed(t *testing.T, s *Store) (fields.UserID, fields.CategoryID, fields.ThreadID, fields.CommentID) {
	t.Helper()
	_, err := s.InsertUser(userID(1), username("TestUser"))
	require.NoError(t, err)
	cat, err := s.InsertCategory(title("T"), desc("D"))
	require.NoError(t, err)
	thread, err := s.InsertThread(NewThread{
		CategoryID:  categoryID(cat.ID),
		UserID:      userID(1),
		Title:       title("TT"),
		Description: desc("TD"),
	})
	require.NoError(t, err)
	comment, err := s.InsertComment(NewComment{
		ThreadID: threadID(thread.ID),
		UserID:   userID(1),
		Content:  content("hi"),
	})
	require.NoError(t, err)
	return userID(1), categoryID(cat.ID), threadID(thread.ID), commentID(comment.ID)
}

func TestInsertThenGetCategory(t *testing.T) {
	s := newTestStore(t)

	inserted, err := s.InsertCategory(title("General"), desc("Talk about anything"))
	require.NoError(t, err)
	require.NotZero(t, inserted.ID)

	got, err := s.GetCategory(categoryID(inserted.ID), false)
	require.NoError(t, err)
	assert.Equal(t, inserted.ID, got.ID)
	assert.Equal(t, "General", got.Title)
	assert.Equal(t, "Talk about anything", got.Description)
	assert.False(t, got.Hidden)
}

func TestInsertReturnsItsOwnRow(t *testing.T) {
	s := newTestStore(t)

	first, err := s.InsertCategory(title("first"), desc(""))
	require.NoError(t, err)
	second, err := s.InsertCategory(title("second"), desc(""))
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, "first", first.Title)
	assert.Equal(t, "second", second.Title)
}

func TestInsertThreadAssignsTimestamp(t *testing.T) {
	s := newTestStore(t)
	_, _, tid, _ := seed(t, s)

	a, err := s.GetThread(tid, false)
	require.NoError(t, err)
	b, err := s.GetThread(tid, false)
	require.NoError(t, err)
	assert.False(t, a.Timestamp.IsZero())
	assert.True(t, a.Timestamp.Equal(b.Timestamp))
}

func TestHiddenCategory(t *testing.T) {
	s := newTestStore(t)
	cat, err := s.InsertCategory(title("secret"), desc("d"))
	require.NoError(t, err)
	id := categoryID(cat.ID)

	hidden, err := s.UpdateCategory(id, CategoryChanges{Hidden: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, hidden.Hidden)
	assert.Equal(t, "secret", hidden.Title)

	_, err = s.GetCategory(id, false)
	assert.True(t, apperr.Is(err, apperr.ContentNotFound))

	got, err := s.GetCategory(id, true)
	require.NoError(t, err)
	assert.True(t, got.Hidden)

	visible, err := s.GetCategories(false)
	require.NoError(t, err)
	assert.Empty(t, visible)

	all, err := s.GetCategories(true)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestHiddenThreadAndComment(t *testing.T) {
	s := newTestStore(t)
	uid, cid, tid, mid := seed(t, s)

	_, err := s.UpdateThread(tid, ThreadChanges{Hidden: boolPtr(true)})
	require.NoError(t, err)
	_, err = s.GetThread(tid, false)
	assert.True(t, apperr.Is(err, apperr.ContentNotFound))
	thread, err := s.GetThread(tid, true)
	require.NoError(t, err)
	assert.True(t, thread.Hidden)

	threads, err := s.GetThreadsInCategory(cid, false)
	require.NoError(t, err)
	assert.Empty(t, threads)
	threads, err = s.GetAllThreads(true)
	require.NoError(t, err)
	assert.Len(t, threads, 1)

	_, err = s.UpdateComment(mid, uid, CommentChanges{Hidden: boolPtr(true)})
	require.NoError(t, err)
	_, err = s.GetComment(mid, false)
	assert.True(t, apperr.Is(err, apperr.ContentNotFound))
	comment, err := s.GetComment(mid, true)
	require.NoError(t, err)
	assert.True(t, comment.Hidden)

	comments, err := s.GetCommentsInThread(tid, false)
	require.NoError(t, err)
	assert.Empty(t, comments)
	comments, err = s.GetAllComments(true)
	require.NoError(t, err)
	assert.Len(t, comments, 1)

	// unhide
	_, err = s.UpdateComment(mid, uid, CommentChanges{Hidden: boolPtr(false)})
	require.NoError(t, err)
	_, err = s.GetComment(mid, false)
	assert.NoError(t, err)
}

func TestPartialUpdateLeavesOtherFields(t *testing.T) {
	s := newTestStore(t)
	cat, err := s.InsertCategory(title("Keep me"), desc("old"))
	require.NoError(t, err)

	updated, err := s.UpdateCategory(categoryID(cat.ID), CategoryChanges{Description: descPtr("new")})
	require.NoError(t, err)
	assert.Equal(t, "Keep me", updated.Title)
	assert.Equal(t, "new", updated.Description)
	assert.False(t, updated.Hidden)

	updated, err = s.UpdateCategory(categoryID(cat.ID), CategoryChanges{Title: titlePtr("Renamed")})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, "new", updated.Description)
}

func TestUpdateWithSameValuesStillFindsRow(t *testing.T) {
	s := newTestStore(t)
	cat, err := s.InsertCategory(title("same"), desc("same"))
	require.NoError(t, err)

	updated, err := s.UpdateCategory(categoryID(cat.ID), CategoryChanges{Title: titlePtr("same")})
	require.NoError(t, err)
	assert.Equal(t, "same", updated.Title)
}

func TestEmptyChangesetChecksExistence(t *testing.T) {
	s := newTestStore(t)
	cat, err := s.InsertCategory(title("exists"), desc(""))
	require.NoError(t, err)

	got, err := s.UpdateCategory(categoryID(cat.ID), CategoryChanges{})
	require.NoError(t, err)
	assert.Equal(t, "exists", got.Title)

	_, err = s.UpdateCategory(categoryID(cat.ID+100), CategoryChanges{})
	assert.True(t, apperr.Is(err, apperr.ContentNotFound))
}

func TestUpdateMissingIDIsNotFound(t *testing.T) {
	s := newTestStore(t)
	uid, _, _, _ := seed(t, s)

	_, err := s.UpdateCategory(categoryID(999), CategoryChanges{Hidden: boolPtr(true)})
	assert.Equal(t, apperr.ContentNotFound, apperr.KindOf(err))

	_, err = s.UpdateThread(threadID(999), ThreadChanges{Title: titlePtr("x")})
	assert.Equal(t, apperr.ContentNotFound, apperr.KindOf(err))

	_, err = s.UpdateComment(commentID(999), uid, CommentChanges{Content: contentPtr("x")})
	assert.Equal(t, apperr.ContentNotFound, apperr.KindOf(err))

	avatar := must(fields.NewAvatar("/img/a.png"))
	_, err = s.UpdateUser(userID(999), UserChanges{Avatar: &avatar})
	assert.Equal(t, apperr.ContentNotFound, apperr.KindOf(err))

	_, err = s.GetUser(userID(999))
	assert.Equal(t, apperr.ContentNotFound, apperr.KindOf(err))
}

func TestCommentEditByOtherUserLooksMissing(t *testing.T) {
	s := newTestStore(t)
	uid, _, _, mid := seed(t, s)
	_, err := s.InsertUser(userID(2), username("Other"))
	require.NoError(t, err)

	_, wrongOwner := s.UpdateComment(mid, userID(2), CommentChanges{Content: contentPtr("hijack")})
	_, missing := s.UpdateComment(commentID(999), uid, CommentChanges{Content: contentPtr("hijack")})
	assert.Equal(t, apperr.ContentNotFound, apperr.KindOf(wrongOwner))
	assert.Equal(t, apperr.KindOf(missing), apperr.KindOf(wrongOwner))

	_, wrongOwner = s.UpdateComment(mid, userID(2), CommentChanges{})
	assert.Equal(t, apperr.ContentNotFound, apperr.KindOf(wrongOwner))

	got, err := s.GetComment(mid, true)
	require.NoError(t, err)
	assert.Equal(t, "hi", got.Content)

	edited, err := s.UpdateComment(mid, uid, CommentChanges{Content: contentPtr("hello")})
	require.NoError(t, err)
	assert.Equal(t, "hello", edited.Content)
}

func TestUserUpdateAndDescription(t *testing.T) {
	s := newTestStore(t)
	u, err := s.InsertUser(userID(7), username("seven"))
	require.NoError(t, err)
	assert.Equal(t, uint32(7), u.ID)
	assert.Nil(t, u.Description)
	assert.Nil(t, u.Avatar)

	updated, err := s.UpdateUser(userID(7), UserChanges{Description: descPtr("hello there")})
	require.NoError(t, err)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "hello there", *updated.Description)
	assert.Nil(t, updated.Avatar)
	assert.Equal(t, "seven", updated.Username)

	_, err = s.InsertUser(userID(7), username("dup"))
	assert.Equal(t, apperr.QueryError, apperr.KindOf(err))
}

func TestListsAreCappedNewestFirst(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < MaxRows+5; i++ {
		_, err := s.InsertCategory(title(fmt.Sprintf("c%d", i)), desc(""))
		require.NoError(t, err)
	}

	rows, err := s.GetCategories(false)
	require.NoError(t, err)
	require.Len(t, rows, MaxRows)
	assert.Equal(t, fmt.Sprintf("c%d", MaxRows+4), rows[0].Title)
	for i := 1; i < len(rows); i++ {
		assert.Greater(t, rows[i-1].ID, rows[i].ID)
	}
}

func TestThreadsInCategoryFilter(t *testing.T) {
	s := newTestStore(t)
	uid, cid, _, _ := seed(t, s)
	other, err := s.InsertCategory(title("other"), desc(""))
	require.NoError(t, err)
	_, err = s.InsertThread(NewThread{CategoryID: categoryID(other.ID), UserID: uid, Title: title("elsewhere"), Description: desc("")})
	require.NoError(t, err)

	threads, err := s.GetThreadsInCategory(cid, false)
	require.NoError(t, err)
	require.Len(t, threads, 1)
	assert.Equal(t, "TT", threads[0].Title)

	all, err := s.GetAllThreads(false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestReplyComment(t *testing.T) {
	s := newTestStore(t)
	uid, _, tid, mid := seed(t, s)

	reply, err := s.InsertComment(NewComment{ThreadID: tid, UserID: uid, ParentID: &mid, Content: content("re: hi")})
	require.NoError(t, err)
	require.NotNil(t, reply.ParentID)
	assert.Equal(t, mid.Uint32(), *reply.ParentID)

	missingParent := commentID(999)
	_, err = s.InsertComment(NewComment{ThreadID: tid, UserID: uid, ParentID: &missingParent, Content: content("orphan")})
	assert.Equal(t, apperr.QueryError, apperr.KindOf(err))
}

func TestForeignKeysSurfaceAsQueryError(t *testing.T) {
	s := newTestStore(t)
	uid, cid, _, _ := seed(t, s)

	_, err := s.InsertThread(NewThread{CategoryID: categoryID(999), UserID: uid, Title: title("x"), Description: desc("")})
	assert.Equal(t, apperr.QueryError, apperr.KindOf(err))

	_, err = s.InsertComment(NewComment{ThreadID: threadID(999), UserID: uid, Content: content("x")})
	assert.Equal(t, apperr.QueryError, apperr.KindOf(err))

	// a user who owns content cannot be deleted
	assert.Equal(t, apperr.QueryError, apperr.KindOf(s.DeleteUser(uid)))

	_, err = s.InsertUser(userID(5), username("Leaving"))
	require.NoError(t, err)
	require.NoError(t, s.DeleteUser(userID(5)))
	_, err = s.InsertThread(NewThread{CategoryID: cid, UserID: userID(5), Title: title("TT"), Description: desc("TD")})
	assert.Equal(t, apperr.QueryError, apperr.KindOf(err))

	assert.Equal(t, apperr.ContentNotFound, apperr.KindOf(s.DeleteUser(userID(5))))
}

func TestSearch(t *testing.T) {
	s := newTestStore(t)
	uid, _, _, _ := seed(t, s)
	cat, err := s.InsertCategory(title("aaaaaaaaaaaa"), desc(""))
	require.NoError(t, err)
	_, err = s.InsertThread(NewThread{CategoryID: categoryID(cat.ID), UserID: uid, Title: title("plain"), Description: desc("has aaa inside")})
	require.NoError(t, err)

	res, err := s.Search(query("aaa"), true)
	require.NoError(t, err)
	require.Len(t, res.Categories, 1)
	assert.Equal(t, cat.ID, res.Categories[0].ID)
	require.Len(t, res.Threads, 1)
	assert.Equal(t, "plain", res.Threads[0].Title)
	assert.Empty(t, res.Users)
	assert.Empty(t, res.Comments)

	res, err = s.Search(query("TestUs"), false)
	require.NoError(t, err)
	assert.Len(t, res.Users, 1)

	res, err = s.Search(query("zzqqxxjj"), true)
	require.NoError(t, err)
	assert.Empty(t, res.Users)
	assert.Empty(t, res.Categories)
	assert.Empty(t, res.Threads)
	assert.Empty(t, res.Comments)
}

func TestSearchRespectsHidden(t *testing.T) {
	s := newTestStore(t)
	cat, err := s.InsertCategory(title("needle"), desc(""))
	require.NoError(t, err)
	_, err = s.UpdateCategory(categoryID(cat.ID), CategoryChanges{Hidden: boolPtr(true)})
	require.NoError(t, err)

	res, err := s.Search(query("needle"), false)
	require.NoError(t, err)
	assert.Empty(t, res.Categories)

	res, err = s.Search(query("needle"), true)
	require.NoError(t, err)
	assert.Len(t, res.Categories, 1)
}

func TestSearchEscapesWildcards(t *testing.T) {
	s := newTestStore(t)
	_, err := s.InsertCategory(title("100% done"), desc(""))
	require.NoError(t, err)
	_, err = s.InsertCategory(title("1000 done"), desc(""))
	require.NoError(t, err)
	_, err = s.InsertCategory(title("a_b"), desc(""))
	require.NoError(t, err)
	_, err = s.InsertCategory(title("axb"), desc(""))
	require.NoError(t, err)

	res, err := s.Search(query("0%"), true)
	require.NoError(t, err)
	require.Len(t, res.Categories, 1)
	assert.Equal(t, "100% done", res.Categories[0].Title)

	res, err = s.Search(query("a_b"), true)
	require.NoError(t, err)
	require.Len(t, res.Categories, 1)
	assert.Equal(t, "a_b", res.Categories[0].Title)
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%abc%", containsPattern("abc"))
	assert.Equal(t, "%50!%!_off!!%", containsPattern("50%_off!"))
}

func TestCountsAndClearAll(t *testing.T) {
	s := newTestStore(t)
	uid, _, tid, mid := seed(t, s)
	_, err := s.InsertComment(NewComment{ThreadID: tid, UserID: uid, ParentID: &mid, Content: content("reply")})
	require.NoError(t, err)

	c, err := s.Counts()
	require.NoError(t, err)
	assert.Equal(t, Counts{Users: 1, Categories: 1, Threads: 1, Comments: 2}, c)

	require.NoError(t, s.ClearAll())
	c, err = s.Counts()
	require.NoError(t, err)
	assert.Equal(t, Counts{}, c)
}
