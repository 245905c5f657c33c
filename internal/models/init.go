package models

import (
	"strings"

	"github.com/giftvault/internal/constants"
	"github.com/giftvault/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

// InitDefaultAdmin creates the initial administrator account when the
// accounts table is empty.
func InitDefaultAdmin(email, password string) error {
	var count int64
	DB.Model(&Account{}).Where("role = ?", constants.RoleAdministrator).Count(&count)
	if count > 0 {
		return nil
	}

	if strings.TrimSpace(email) == "" {
		email = "admin@admin.com"
	}
	if password == "" {
		password = "admin123"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	account := Account{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hash),
		Role:         constants.RoleAdministrator,
	}
	if err := DB.Create(&account).Error; err != nil {
		return err
	}

	if password == "admin123" {
		logger.Warnw("default_admin_created_with_default_password", "email", account.Email)
		logger.Warnw("default_admin_password_change_required", "email", account.Email)
	} else {
		logger.Warnw("default_admin_created", "email", account.Email, "password_hidden", true)
	}
	return nil
}
