package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/marmos91/smbmanager/pkg/controlplane/models"
)

// DefaultHistoryLimit caps ListApplies when the filter sets no limit.
const DefaultHistoryLimit = 100

func (s *GORMStore) RecordApply(ctx context.Context, record *models.ApplyRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	return s.db.WithContext(ctx).Create(record).Error
}

func (s *GORMStore) GetApply(ctx context.Context, id string) (*models.ApplyRecord, error) {
	return findOne[models.ApplyRecord](ctx, s.db, models.ErrApplyRecordNotFound, "id = ?", id)
}

func (s *GORMStore) ListApplies(ctx context.Context, filter ApplyFilter) ([]*models.ApplyRecord, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	q := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if filter.Section != "" {
		q = q.Where("section = ?", filter.Section)
	}

	records := []*models.ApplyRecord{}
	if err := q.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
