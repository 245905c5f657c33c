package main

import (
	"time"

	"github.com/giftvault/internal/config"
	"github.com/giftvault/internal/constants"
	"github.com/giftvault/internal/logger"
	"github.com/giftvault/internal/models"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("failed to connect database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("failed to migrate database: %v", err)
	}

	accounts := []struct {
		Email    string
		Password string
		Role     string
	}{
		{Email: "admin@admin.com", Password: "admin123", Role: constants.RoleAdministrator},
		{Email: "user@example.com", Password: "user1234", Role: constants.RoleOrdinary},
	}
	for _, seed := range accounts {
		var existing models.Account
		if err := models.DB.Where("email = ?", seed.Email).First(&existing).Error; err == nil {
			stdLog.Printf("account already exists: %s", seed.Email)
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
		if err != nil {
			stdLog.Fatalf("failed to hash password for %s: %v", seed.Email, err)
		}
		account := models.Account{
			Email:        seed.Email,
			PasswordHash: string(hash),
			Role:         seed.Role,
		}
		if err := models.DB.Create(&account).Error; err != nil {
			stdLog.Printf("failed to create account %s: %v", seed.Email, err)
		} else {
			stdLog.Printf("created account: %s (%s)", seed.Email, seed.Role)
		}
	}

	now := time.Now()
	usedAt := now.Add(-24 * time.Hour)
	cards := []models.GiftCard{
		{
			Code:      "CLLW-2QQ4-QY4A-PWZ6W9",
			Value:     50000,
			Status:    constants.GiftCardStatusActive,
			IssuedAt:  now.Add(-48 * time.Hour),
			ExpiresAt: now.Add(cfg.GiftCard.Validity()),
			IssuedBy:  "admin@admin.com",
		},
		{
			Code:      "A9KM-0USD-FW5V-2VPXO5",
			Value:     10000,
			Status:    constants.GiftCardStatusUsed,
			IssuedAt:  now.Add(-72 * time.Hour),
			ExpiresAt: now.Add(cfg.GiftCard.Validity()),
			IssuedBy:  "admin@admin.com",
			UsedAt:    &usedAt,
			UsedBy:    "user@example.com",
		},
		{
			// Stored active but past its expiry, so reads derive "expired".
			Code:      "G4UX-AKWG-LEUV-5NZ278",
			Value:     250000,
			Status:    constants.GiftCardStatusActive,
			IssuedAt:  now.Add(-2 * cfg.GiftCard.Validity()),
			ExpiresAt: now.Add(-24 * time.Hour),
			IssuedBy:  "admin@admin.com",
		},
	}
	for _, card := range cards {
		var existing models.GiftCard
		if err := models.DB.Where("code = ?", card.Code).First(&existing).Error; err == nil {
			stdLog.Printf("gift card already exists: %s", card.Code)
			continue
		}
		if err := models.DB.Create(&card).Error; err != nil {
			stdLog.Printf("failed to create gift card %s: %v", card.Code, err)
		} else {
			stdLog.Printf("created gift card: %s (%s)", card.Code, card.Status)
		}
	}

	stdLog.Printf("seed finished")
}
