package repository

import (
	"context"
	"errors"

	"github.com/giftvault/internal/models"

	"gorm.io/gorm"
)

// GiftCardEventLogRepository persists the lifecycle audit trail.
type GiftCardEventLogRepository interface {
	Create(ctx context.Context, entry *models.GiftCardEventLog) error
	ListByCode(ctx context.Context, code string) ([]models.GiftCardEventLog, error)
}

// GormGiftCardEventLogRepository is the GORM implementation.
type GormGiftCardEventLogRepository struct {
	db *gorm.DB
}

// NewGiftCardEventLogRepository creates an event log repository.
func NewGiftCardEventLogRepository(db *gorm.DB) *GormGiftCardEventLogRepository {
	return &GormGiftCardEventLogRepository{db: db}
}

// Create inserts an audit entry.
func (r *GormGiftCardEventLogRepository) Create(ctx context.Context, entry *models.GiftCardEventLog) error {
	if entry == nil {
		return errors.New("invalid event log entry")
	}
	entry.Code = NormalizeCode(entry.Code)
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListByCode returns the audit entries for a code in event order.
func (r *GormGiftCardEventLogRepository) ListByCode(ctx context.Context, code string) ([]models.GiftCardEventLog, error) {
	code = NormalizeCode(code)
	if code == "" {
		return []models.GiftCardEventLog{}, nil
	}
	var entries []models.GiftCardEventLog
	if err := r.db.WithContext(ctx).Where("code = ?", code).Order("id asc").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
