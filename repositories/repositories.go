// Package repositories holds the gorm-backed persistence for every entity.
package repositories

import (
	"github.com/pkg/errors"
	"github.com/yeremiapane/startup-platform/utils"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned by single-row lookups that match nothing.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique key already exists.
	ErrDuplicate = errors.New("duplicate key")
	// ErrStale is returned when an optimistic version check fails.
	ErrStale = errors.New("stale version")
	// ErrNotPending is returned when an offer edit finds the offer already decided.
	ErrNotPending = errors.New("offer not pending")
)

// translate maps gorm sentinel errors onto the package sentinels and wraps
// everything else with op.
func translate(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return errors.Wrap(err, op)
	}
}

// paginate applies LIMIT/OFFSET for req.
func paginate(req utils.PageRequest) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(req.Offset()).Limit(req.Size)
	}
}

// findPage counts the rows matched by query and loads the requested slice.
func findPage[T any](query *gorm.DB, req utils.PageRequest, order string, op string) ([]T, int64, error) {
	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, translate(err, op)
	}
	var rows []T
	if err := query.Session(&gorm.Session{}).Order(order).Scopes(paginate(req)).Find(&rows).Error; err != nil {
		return nil, 0, translate(err, op)
	}
	return rows, total, nil
}
