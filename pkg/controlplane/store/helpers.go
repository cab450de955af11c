package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// findOne loads the row matching where. gorm.ErrRecordNotFound becomes
// notFound.
func findOne[T any](ctx context.Context, db *gorm.DB, notFound error, where string, args ...any) (*T, error) {
	var row T
	err := db.WithContext(ctx).Where(where, args...).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// insert creates row, reporting a unique violation as duplicate.
func insert[T any](ctx context.Context, db *gorm.DB, row *T, duplicate error) error {
	err := db.WithContext(ctx).Create(row).Error
	if err != nil && isDuplicate(err) {
		return duplicate
	}
	return err
}

// mustAffect turns a write that matched nothing into notFound.
func mustAffect(tx *gorm.DB, notFound error) error {
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return notFound
	}
	return nil
}
