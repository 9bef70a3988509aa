// Package store is the data access layer. Each entity is mutated through a
// small set of named methods; reads of users and projects are served from
// an explicit cache that those methods invalidate.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sitecrew/apperr"
	"sitecrew/model"
)

const (
	entityUser    = "user"
	entityProject = "project"
)

type Store struct {
	db    *gorm.DB
	cache *Cache

	// tx is set on stores bound to an open transaction. Their reads bypass
	// the cache and the keys they invalidate are invalidated again once the
	// transaction ends.
	tx *txState
}

type txState struct {
	touched [][2]string
}

func New(db *gorm.DB, cache *Cache) *Store {
	return &Store{db: db, cache: cache}
}

// DB exposes the underlying handle for callers that run raw statements.
func (s *Store) DB() *gorm.DB {
	return s.db
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// WithTx runs fn against a Store bound to a single database transaction.
// Returning an error from fn rolls the transaction back.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	st := &txState{}
	defer s.flush(st)
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, cache: s.cache, tx: st})
	})
}

// Begin opens a transaction the caller must Commit or Rollback.
func (s *Store) Begin(ctx context.Context) (*Store, error) {
	tx := s.conn(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &Store{db: tx, cache: s.cache, tx: &txState{}}, nil
}

func (s *Store) Commit() error {
	defer s.flush(s.tx)
	return s.db.Commit().Error
}

func (s *Store) Rollback() {
	defer s.flush(s.tx)
	s.db.Rollback()
}

// readCache is nil inside a transaction so uncommitted rows never reach
// readers outside it.
func (s *Store) readCache() *Cache {
	if s.tx != nil {
		return nil
	}
	return s.cache
}

func (s *Store) invalidate(entity, id string) {
	s.cache.Invalidate(entity, id)
	if s.tx != nil {
		s.tx.touched = append(s.tx.touched, [2]string{entity, id})
	}
}

func (s *Store) flush(st *txState) {
	if st == nil {
		return
	}
	for _, k := range st.touched {
		s.cache.Invalidate(k[0], k[1])
	}
	st.touched = nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(model.All()...)
}

func wrapRead(target string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFoundf("%s not found", target)
	}
	return apperr.Persistencef(err, "failed to read %s", target)
}

func wrapWrite(target string, err error) error {
	return apperr.Persistencef(err, "failed to write %s", target)
}

func wrapDelete(target string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFoundf("%s not found", target)
	}
	return apperr.Persistencef(err, "failed to delete %s", target)
}

// dedupe drops empty and repeated ids, keeping first-seen order.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func newID() string {
	return uuid.NewString()
}
