package router

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/giftvault/internal/authz"
	"github.com/giftvault/internal/config"
	"github.com/giftvault/internal/constants"
	"github.com/giftvault/internal/models"
	"github.com/giftvault/internal/provider"
	"github.com/giftvault/internal/repository"
	"github.com/giftvault/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type apiEnvelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

func setupRouterTest(t *testing.T) (*gin.Engine, *gorm.DB, *provider.Container) {
	t.Helper()
	dsn := fmt.Sprintf("file:router_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Account{},
		&models.GiftCard{},
		&models.GiftCardEventLog{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	az, err := authz.NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	if err := az.Bootstrap(); err != nil {
		t.Fatalf("bootstrap authz failed: %v", err)
	}

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "release"},
		JWT: config.JWTConfig{
			SecretKey:   "router-test-secret-0123456789abcdef",
			ExpireHours: 1,
		},
		GiftCard: config.GiftCardConfig{
			MinValue:        10000,
			MaxValue:        10000000,
			ValidityDays:    365,
			CodeMaxAttempts: 5,
			StoreTimeoutMS:  3000,
		},
		Captcha: config.CaptchaConfig{Provider: constants.CaptchaProviderNone},
	}

	accountRepo := repository.NewAccountRepository(db)
	giftCardRepo := repository.NewGiftCardRepository(db)
	eventRepo := repository.NewGiftCardEventLogRepository(db)
	tokens := service.NewTokenService(cfg)
	auth := service.NewAuthService(cfg, accountRepo, tokens, az)
	codes := service.NewCodeGenerator(giftCardRepo, cfg.GiftCard.CodeMaxAttempts)

	container := &provider.Container{
		Config:          cfg,
		AccountRepo:     accountRepo,
		GiftCardRepo:    giftCardRepo,
		EventLogRepo:    eventRepo,
		AuthzService:    az,
		TokenService:    tokens,
		AuthService:     auth,
		CaptchaService:  service.NewCaptchaService(cfg.Captcha),
		CodeGenerator:   codes,
		GiftCardService: service.NewGiftCardService(cfg, giftCardRepo, eventRepo, codes, auth, nil),
	}

	for _, seed := range []struct {
		email    string
		password string
		role     string
	}{
		{"admin@admin.com", "admin123", constants.RoleAdministrator},
		{"user@example.com", "user1234", constants.RoleOrdinary},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(seed.password), bcrypt.DefaultCost)
		if err != nil {
			t.Fatalf("hash password failed: %v", err)
		}
		account := models.Account{Email: seed.email, PasswordHash: string(hash), Role: seed.role}
		if err := db.Create(&account).Error; err != nil {
			t.Fatalf("seed account failed: %v", err)
		}
	}

	return Setup(cfg, container), db, container
}

func doRequest(t *testing.T, engine *gin.Engine, method, target, token, body string) (*httptest.ResponseRecorder, apiEnvelope) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	var envelope apiEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response failed (%s %s, status %d): %v", method, target, rec.Code, err)
	}
	return rec, envelope
}

func loginFor(t *testing.T, engine *gin.Engine, email, password string) string {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec, envelope := doRequest(t, engine, http.MethodPost, "/api/auth/login", "", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("login for %s failed with status %d: %s", email, rec.Code, rec.Body.String())
	}
	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		t.Fatalf("decode login data failed: %v", err)
	}
	if data.Token == "" {
		t.Fatalf("expected non-empty token for %s", email)
	}
	return data.Token
}

func issueCard(t *testing.T, engine *gin.Engine, token string, value int64) string {
	t.Helper()
	rec, envelope := doRequest(t, engine, http.MethodPost, fmt.Sprintf("/api/gift-card/issue?value=%d", value), token, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("issue value=%d failed with status %d: %s", value, rec.Code, rec.Body.String())
	}
	var card struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(envelope.Data, &card); err != nil {
		t.Fatalf("decode issue data failed: %v", err)
	}
	if card.Code == "" {
		t.Fatalf("expected non-empty code")
	}
	return card.Code
}

func TestAPIRequiresAuthentication(t *testing.T) {
	engine, _, _ := setupRouterTest(t)

	rec, envelope := doRequest(t, engine, http.MethodPost, "/api/gift-card/issue?value=10000", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got: %d", rec.Code)
	}
	if envelope.StatusCode != 401 {
		t.Fatalf("expected business code 401, got: %d", envelope.StatusCode)
	}

	rec, _ = doRequest(t, engine, http.MethodPost, "/api/gift-card/use?code=CLLW-2QQ4-QY4A-PWZ6W9", "garbage-token", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with garbage token, got: %d", rec.Code)
	}
}

func TestAPIIssueValidation(t *testing.T) {
	engine, _, _ := setupRouterTest(t)
	admin := loginFor(t, engine, "admin@admin.com", "admin123")

	for _, value := range []int64{9999, 10000001} {
		rec, _ := doRequest(t, engine, http.MethodPost, fmt.Sprintf("/api/gift-card/issue?value=%d", value), admin, "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for value=%d, got: %d", value, rec.Code)
		}
	}

	code := issueCard(t, engine, admin, 10000)
	if len(code) != 21 {
		t.Fatalf("unexpected code length: %s", code)
	}
}

func TestAPIIssueForbiddenForOrdinary(t *testing.T) {
	engine, _, _ := setupRouterTest(t)
	user := loginFor(t, engine, "user@example.com", "user1234")

	rec, _ := doRequest(t, engine, http.MethodPost, "/api/gift-card/issue?value=10000", user, "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for ordinary issue, got: %d", rec.Code)
	}
	rec, _ = doRequest(t, engine, http.MethodDelete, "/api/gift-card/dispose?code=ANY", user, "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for ordinary dispose, got: %d", rec.Code)
	}
}

func TestAPIUseLifecycle(t *testing.T) {
	engine, _, _ := setupRouterTest(t)
	admin := loginFor(t, engine, "admin@admin.com", "admin123")
	user := loginFor(t, engine, "user@example.com", "user1234")

	rec, _ := doRequest(t, engine, http.MethodPost, "/api/gift-card/use?code=ZZZZ-ZZZZ-ZZZZ-ZZZZZZ", user, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown code, got: %d", rec.Code)
	}

	code := issueCard(t, engine, admin, 50000)

	rec, envelope := doRequest(t, engine, http.MethodPost, "/api/gift-card/use?code="+code, user, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for first use, got: %d (%s)", rec.Code, rec.Body.String())
	}
	var card struct {
		Status string `json:"status"`
		UsedBy string `json:"used_by"`
	}
	if err := json.Unmarshal(envelope.Data, &card); err != nil {
		t.Fatalf("decode use data failed: %v", err)
	}
	if card.Status != constants.GiftCardStatusUsed || card.UsedBy != "user@example.com" {
		t.Fatalf("unexpected used card: %+v", card)
	}

	rec, _ = doRequest(t, engine, http.MethodPost, "/api/gift-card/use?code="+code, user, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for second use, got: %d", rec.Code)
	}

	rec, _ = doRequest(t, engine, http.MethodDelete, "/api/gift-card/dispose?code="+code, admin, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for dispose after use, got: %d", rec.Code)
	}
}

func TestAPIDisposeBlocksUse(t *testing.T) {
	engine, _, _ := setupRouterTest(t)
	admin := loginFor(t, engine, "admin@admin.com", "admin123")
	user := loginFor(t, engine, "user@example.com", "user1234")

	code := issueCard(t, engine, admin, 10000)

	rec, _ := doRequest(t, engine, http.MethodDelete, "/api/gift-card/dispose?code="+code, admin, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for dispose, got: %d (%s)", rec.Code, rec.Body.String())
	}

	rec, _ = doRequest(t, engine, http.MethodPost, "/api/gift-card/use?code="+code, user, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for use after dispose, got: %d", rec.Code)
	}
}

func TestAPIUseExpiredCard(t *testing.T) {
	engine, db, _ := setupRouterTest(t)
	user := loginFor(t, engine, "user@example.com", "user1234")

	card := models.GiftCard{
		Code:      "G4UX-AKWG-LEUV-5NZ278",
		Value:     250000,
		Status:    constants.GiftCardStatusActive,
		IssuedAt:  time.Now().Add(-48 * time.Hour),
		ExpiresAt: time.Now().Add(-time.Hour),
		IssuedBy:  "admin@admin.com",
	}
	if err := db.Create(&card).Error; err != nil {
		t.Fatalf("seed expired card failed: %v", err)
	}

	rec, _ := doRequest(t, engine, http.MethodPost, "/api/gift-card/use?code="+card.Code, user, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for expired card, got: %d", rec.Code)
	}

	rec, envelope := doRequest(t, engine, http.MethodGet, "/api/gift-card/"+card.Code, user, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for get, got: %d", rec.Code)
	}
	var view struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(envelope.Data, &view); err != nil {
		t.Fatalf("decode get data failed: %v", err)
	}
	if view.Status != constants.GiftCardStatusExpired {
		t.Fatalf("expected derived expired status, got: %s", view.Status)
	}
}

type timedOutGiftCardRepo struct{}

func (timedOutGiftCardRepo) Create(ctx context.Context, card *models.GiftCard) error {
	return context.DeadlineExceeded
}

func (timedOutGiftCardRepo) GetByCode(ctx context.Context, code string) (*models.GiftCard, error) {
	return nil, context.DeadlineExceeded
}

func (timedOutGiftCardRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	return false, context.DeadlineExceeded
}

func (timedOutGiftCardRepo) TransitionStatus(ctx context.Context, code, fromStatus string, updates map[string]interface{}) (int64, error) {
	return 0, context.DeadlineExceeded
}

func (timedOutGiftCardRepo) List(ctx context.Context, filter repository.GiftCardListFilter) ([]models.GiftCard, int64, error) {
	return nil, 0, context.DeadlineExceeded
}

func TestAPIStoreTimeoutMapsTo504(t *testing.T) {
	engine, _, container := setupRouterTest(t)
	user := loginFor(t, engine, "user@example.com", "user1234")

	repo := timedOutGiftCardRepo{}
	container.GiftCardService = service.NewGiftCardService(
		container.Config, repo, container.EventLogRepo,
		service.NewCodeGenerator(repo, 1), container.AuthService, nil,
	)

	rec, envelope := doRequest(t, engine, http.MethodPost, "/api/gift-card/use?code=CLLW-2QQ4-QY4A-PWZ6W9", user, "")
	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504 for store timeout, got: %d (%s)", rec.Code, rec.Body.String())
	}
	if envelope.StatusCode != 504 {
		t.Fatalf("expected business code 504, got: %d", envelope.StatusCode)
	}
}

func TestAPIListRequiresAdmin(t *testing.T) {
	engine, _, _ := setupRouterTest(t)
	admin := loginFor(t, engine, "admin@admin.com", "admin123")
	user := loginFor(t, engine, "user@example.com", "user1234")

	issueCard(t, engine, admin, 10000)

	rec, _ := doRequest(t, engine, http.MethodGet, "/api/gift-card", user, "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for ordinary list, got: %d", rec.Code)
	}

	rec, envelope := doRequest(t, engine, http.MethodGet, "/api/gift-card?status=active", admin, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin list, got: %d (%s)", rec.Code, rec.Body.String())
	}
	var cards []struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(envelope.Data, &cards); err != nil {
		t.Fatalf("decode list data failed: %v", err)
	}
	if len(cards) != 1 {
		t.Fatalf("expected 1 active card, got: %d", len(cards))
	}
}
