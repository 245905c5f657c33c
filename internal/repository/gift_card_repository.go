package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/giftvault/internal/constants"
	"github.com/giftvault/internal/models"

	"gorm.io/gorm"
)

// GiftCardListFilter narrows gift card listings. Status accepts the stored
// statuses plus the derived "expired".
type GiftCardListFilter struct {
	Code       string
	Status     string
	IssuedBy   string
	UsedBy     string
	IssuedFrom *time.Time
	IssuedTo   *time.Time
	Page       int
	PageSize   int
}

// GiftCardRepository is the persistence contract for the lifecycle engine.
// TransitionStatus is the status-guarded conditional write: it updates a card
// only while its stored status still matches the expected prior status, and
// reports the number of rows affected.
type GiftCardRepository interface {
	Create(ctx context.Context, card *models.GiftCard) error
	GetByCode(ctx context.Context, code string) (*models.GiftCard, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	TransitionStatus(ctx context.Context, code, expectedStatus string, updates map[string]interface{}) (int64, error)
	List(ctx context.Context, filter GiftCardListFilter) ([]models.GiftCard, int64, error)
}

// GormGiftCardRepository is the GORM implementation.
type GormGiftCardRepository struct {
	db *gorm.DB
}

// NewGiftCardRepository creates a gift card repository.
func NewGiftCardRepository(db *gorm.DB) *GormGiftCardRepository {
	return &GormGiftCardRepository{db: db}
}

// IsDuplicateCode reports whether an insert failed on the unique code index.
func IsDuplicateCode(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate key")
}

// Create inserts a card. The unique index on code is the final authority on
// code uniqueness; callers retry on IsDuplicateCode.
func (r *GormGiftCardRepository) Create(ctx context.Context, card *models.GiftCard) error {
	if card == nil {
		return errors.New("invalid gift card")
	}
	card.Code = NormalizeCode(card.Code)
	return r.db.WithContext(ctx).Create(card).Error
}

// GetByCode returns the card for a code, or nil when absent.
func (r *GormGiftCardRepository) GetByCode(ctx context.Context, code string) (*models.GiftCard, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, nil
	}
	var card models.GiftCard
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &card, nil
}

// ExistsByCode reports whether a card exists for the code.
func (r *GormGiftCardRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	code = NormalizeCode(code)
	if code == "" {
		return false, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.GiftCard{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// TransitionStatus applies a status-guarded conditional update. At most one
// concurrent caller observes RowsAffected == 1 for the same code.
func (r *GormGiftCardRepository) TransitionStatus(ctx context.Context, code, expectedStatus string, updates map[string]interface{}) (int64, error) {
	code = NormalizeCode(code)
	if code == "" || len(updates) == 0 {
		return 0, nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	result := r.db.WithContext(ctx).Model(&models.GiftCard{}).
		Where("code = ? AND status = ?", code, expectedStatus).
		Updates(updates)
	return result.RowsAffected, result.Error
}

// List returns cards matching the filter plus the total count.
func (r *GormGiftCardRepository) List(ctx context.Context, filter GiftCardListFilter) ([]models.GiftCard, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.GiftCard{})
	if code := NormalizeCode(filter.Code); code != "" {
		query = query.Where("code LIKE ?", "%"+code+"%")
	}
	if status := strings.TrimSpace(strings.ToLower(filter.Status)); status != "" {
		now := time.Now()
		switch status {
		case constants.GiftCardStatusExpired:
			query = query.Where("status = ? AND expires_at < ?", constants.GiftCardStatusActive, now)
		case constants.GiftCardStatusActive:
			query = query.Where("status = ? AND expires_at >= ?", constants.GiftCardStatusActive, now)
		default:
			query = query.Where("status = ?", status)
		}
	}
	if issuedBy := normalizeEmail(filter.IssuedBy); issuedBy != "" {
		query = query.Where("issued_by = ?", issuedBy)
	}
	if usedBy := normalizeEmail(filter.UsedBy); usedBy != "" {
		query = query.Where("used_by = ?", usedBy)
	}
	if filter.IssuedFrom != nil {
		query = query.Where("issued_at >= ?", *filter.IssuedFrom)
	}
	if filter.IssuedTo != nil {
		query = query.Where("issued_at <= ?", *filter.IssuedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Limit(filter.PageSize).Offset((page - 1) * filter.PageSize)
	}

	var cards []models.GiftCard
	if err := query.Order("id desc").Find(&cards).Error; err != nil {
		return nil, 0, err
	}
	return cards, total, nil
}

// NormalizeCode uppercases and trims a voucher code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
