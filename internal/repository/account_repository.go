package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/giftvault/internal/models"

	"gorm.io/gorm"
)

// AccountRepository is the identity lookup the auth gate consults.
type AccountRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	GetByID(ctx context.Context, id uint) (*models.Account, error)
	Create(ctx context.Context, account *models.Account) error
	Update(ctx context.Context, account *models.Account) error
}

// GormAccountRepository is the GORM implementation.
type GormAccountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates an account repository.
func NewAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// GetByEmail returns the account for an email, or nil when absent.
func (r *GormAccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, nil
	}
	var account models.Account
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// ExistsByEmail reports whether an account exists for the email.
func (r *GormAccountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" {
		return false, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Account{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetByID returns the account for an id, or nil when absent.
func (r *GormAccountRepository) GetByID(ctx context.Context, id uint) (*models.Account, error) {
	if id == 0 {
		return nil, nil
	}
	var account models.Account
	if err := r.db.WithContext(ctx).First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// Create inserts an account.
func (r *GormAccountRepository) Create(ctx context.Context, account *models.Account) error {
	if account == nil {
		return errors.New("invalid account")
	}
	account.Email = normalizeEmail(account.Email)
	return r.db.WithContext(ctx).Create(account).Error
}

// Update saves an account.
func (r *GormAccountRepository) Update(ctx context.Context, account *models.Account) error {
	if account == nil {
		return errors.New("invalid account")
	}
	return r.db.WithContext(ctx).Save(account).Error
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
