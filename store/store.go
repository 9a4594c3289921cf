// Package store is the persistence layer for posts, tags, comments, links and
// accounts. Methods take a context and map gorm errors onto the common error
// taxonomy: a missing row is common.ErrNotFound and a rejected input is a
// *common.ValidationError.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"presslog/common"
)

type Store struct {
	db *gorm.DB

	// BcryptCost is used when hashing new passwords.
	BcryptCost int

	// OnTagConflict is called when a tag insert lost to a concurrent insert of
	// the same slug.
	OnTagConflict func()
}

func New(db *gorm.DB) *Store {
	return &Store{db: db, BcryptCost: bcrypt.DefaultCost}
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn in a database transaction bound to ctx.
func (s *Store) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}

var validate = validator.New()

// check runs a validator tag against value and records msg for field on failure.
func check(ve *common.ValidationError, field, value, tag, msg string) {
	if err := validate.Var(value, tag); err != nil {
		ve.Add(field, msg)
	}
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, common.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", what, err)
}

// Page is one page of an ordered listing.
type Page[T any] struct {
	Items   []T   `json:"items"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
	HasPrev bool  `json:"has_prev"`
	HasNext bool  `json:"has_next"`
}

// paginate counts the rows of query and loads one page of them in order with the
// named associations preloaded. A page past the end, other than the first, is
// ErrNotFound.
func paginate[T any](query func() *gorm.DB, order string, page, perPage int, preload ...string) (*Page[T], error) {
	if page < 1 {
		page = 1
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, err
	}

	pages := int((total + int64(perPage) - 1) / int64(perPage))
	if page > 1 && page > pages {
		return nil, common.ErrNotFound
	}

	items := []T{}
	find := query().Order(order)
	for _, assoc := range preload {
		find = find.Preload(assoc)
	}
	if err := find.Offset((page - 1) * perPage).Limit(perPage).Find(&items).Error; err != nil {
		return nil, err
	}

	return &Page[T]{
		Items:   items,
		Page:    page,
		PerPage: perPage,
		Total:   total,
		Pages:   pages,
		HasPrev: page > 1,
		HasNext: page < pages,
	}, nil
}
