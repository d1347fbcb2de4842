// Package store reads and writes forum content. Every entity goes through the same small
// set of generic operations, parameterised by the table's metadata.
package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/bbscontroller/apperr"
	"github.com/cppla/bbscontroller/models"
	"github.com/cppla/bbscontroller/utils"
)

// MaxRows caps every list and search query.
const MaxRows = 30

// table describes how the generic operations treat one entity table.
type table struct {
	name string
	// hidden is true when the table has a hidden column to filter on
	hidden bool
	// parent is the foreign key column used by scoped listings
	parent string
	// owner, when set, must match on every update
	owner string
}

var (
	usersTable      = table{name: "users"}
	categoriesTable = table{name: "categories", hidden: true}
	threadsTable    = table{name: "threads", hidden: true, parent: "category_id"}
	commentsTable   = table{name: "comments", hidden: true, parent: "thread_id", owner: "user_id"}
)

type keyed interface {
	Key() uint32
}

// Store runs queries on one database handle, usually a connection pinned for a single request.
type Store struct {
	db *gorm.DB
}

// New wraps db. Callers hand in a fresh session so conditions never leak between queries.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// scope is the identity an update has to match.
type scope struct {
	id    uint32
	owner uint32
}

func (t table) where(s scope) map[string]interface{} {
	cond := map[string]interface{}{"id": s.id}
	if t.owner != "" {
		cond[t.owner] = s.owner
	}
	return cond
}

func (t table) visible(q *gorm.DB, includeHidden bool) *gorm.DB {
	if t.hidden && !includeHidden {
		return q.Where("hidden = ?", false)
	}
	return q
}

func get[T any](db *gorm.DB, t table, op string, id uint32, includeHidden bool) (*T, error) {
	var row T
	q := t.visible(db.Where("id = ?", id), includeHidden)
	if err := q.Take(&row).Error; err != nil {
		return nil, classify(op, err)
	}
	return &row, nil
}

// list returns up to MaxRows rows, newest first. parent of zero lists the whole table.
func list[T any](db *gorm.DB, t table, op string, includeHidden bool, parent uint32) ([]T, error) {
	q := db
	if parent != 0 {
		q = q.Where(t.parent+" = ?", parent)
	}
	rows := make([]T, 0)
	if err := t.visible(q, includeHidden).Order("id DESC").Limit(MaxRows).Find(&rows).Error; err != nil {
		return nil, classify(op, err)
	}
	return rows, nil
}

// insert writes row and reads it back by the key the insert itself reported.
func insert[T keyed](db *gorm.DB, t table, op string, row *T) (*T, error) {
	if err := db.Omit(clause.Associations).Create(row).Error; err != nil {
		return nil, classify(op, err)
	}
	id := (*row).Key()
	utils.Sugar.Debugf("store %s: inserted %s id=%d", op, t.name, id)
	return get[T](db, t, op, id, true)
}

// update applies changes in one statement and rereads the row including hidden ones.
// An empty changeset only checks that the row exists.
func update[T any](db *gorm.DB, t table, op string, s scope, changes map[string]interface{}) (*T, error) {
	if len(changes) == 0 {
		var row T
		if err := db.Where(t.where(s)).Take(&row).Error; err != nil {
			return nil, classify(op, err)
		}
		return &row, nil
	}

	res := db.Model(new(T)).Where(t.where(s)).Updates(changes)
	if res.Error != nil {
		return nil, classify(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.New(apperr.ContentNotFound, op)
	}
	utils.Sugar.Debugf("store %s: updated %s id=%d columns=%d", op, t.name, s.id, len(changes))
	return get[T](db, t, op, s.id, true)
}

// search matches pattern against any of columns, newest first, capped at MaxRows.
func search[T any](db *gorm.DB, t table, op string, pattern string, includeHidden bool, columns ...string) ([]T, error) {
	match := db.Where(columns[0]+" LIKE ? ESCAPE '!'", pattern)
	for _, col := range columns[1:] {
		match = match.Or(col+" LIKE ? ESCAPE '!'", pattern)
	}
	rows := make([]T, 0)
	if err := t.visible(db.Where(match), includeHidden).Order("id DESC").Limit(MaxRows).Find(&rows).Error; err != nil {
		return nil, classify(op, err)
	}
	return rows, nil
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// containsPattern builds a LIKE pattern matching s anywhere, with '!' as the escape character.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// classify wraps err with the kind the service layer maps to an external error.
func classify(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.Wrap(apperr.ContentNotFound, op, err)
	case errors.Is(err, driver.ErrBadConn), errors.Is(err, sql.ErrConnDone), errors.Is(err, gorm.ErrInvalidDB):
		return apperr.Wrap(apperr.ConnectionError, op, err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return apperr.Wrap(apperr.ConnectionError, op, err)
	default:
		return apperr.Wrap(apperr.QueryError, op, err)
	}
}

// Counts is the number of rows per table, hidden ones included.
type Counts struct {
	Users      int64 `json:"users"`
	Categories int64 `json:"categories"`
	Threads    int64 `json:"threads"`
	Comments   int64 `json:"comments"`
}

// Counts reports table sizes for the stats endpoint.
func (s *Store) Counts() (Counts, error) {
	var c Counts
	targets := []struct {
		model interface{}
		dst   *int64
	}{
		{&models.User{}, &c.Users},
		{&models.Category{}, &c.Categories},
		{&models.Thread{}, &c.Threads},
		{&models.Comment{}, &c.Comments},
	}
	for _, target := range targets {
		if err := s.db.Model(target.model).Count(target.dst).Error; err != nil {
			return Counts{}, classify("counts", err)
		}
	}
	return c, nil
}

// ClearAll deletes every row of every table, children first.
func (s *Store) ClearAll() error {
	all := s.db.Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range []interface{}{&models.Comment{}, &models.Thread{}, &models.Category{}, &models.User{}} {
		if err := all.Delete(model).Error; err != nil {
			return classify("clear", err)
		}
	}
	return nil
}
