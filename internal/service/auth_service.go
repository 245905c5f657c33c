package service

import (
	"context"
	"strings"
	"time"

	"github.com/giftvault/internal/authz"
	"github.com/giftvault/internal/cache"
	"github.com/giftvault/internal/config"
	"github.com/giftvault/internal/logger"
	"github.com/giftvault/internal/models"
	"github.com/giftvault/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// Principal is the authenticated caller a request acts as.
type Principal struct {
	AccountID uint   `json:"account_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

// AuthService authenticates bearer tokens and authorizes lifecycle actions.
type AuthService struct {
	cfg         *config.Config
	accountRepo repository.AccountRepository
	tokens      *TokenService
	authz       *authz.Service
}

// NewAuthService creates the auth service.
func NewAuthService(cfg *config.Config, accountRepo repository.AccountRepository, tokens *TokenService, az *authz.Service) *AuthService {
	return &AuthService{
		cfg:         cfg,
		accountRepo: accountRepo,
		tokens:      tokens,
		authz:       az,
	}
}

// HashPassword hashes a password with bcrypt.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword checks a password against its hash.
func (s *AuthService) VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// Login checks credentials and issues a bearer token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.Account, string, time.Time, error) {
	account, err := s.accountRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if account == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if err := s.VerifyPassword(account.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(account.Email, account.Role)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	now := time.Now()
	account.LastLoginAt = &now
	if err := s.accountRepo.Update(ctx, account); err != nil {
		return nil, "", time.Time{}, err
	}
	_ = cache.SetAccountAuthState(ctx, cache.BuildAccountAuthState(account))

	return account, token, expiresAt, nil
}

// Authenticate resolves a bearer token to its principal. The token is parsed
// first, then the account is resolved from the cached auth snapshot or the
// store so a deleted account stops working before its token expires.
func (s *AuthService) Authenticate(ctx context.Context, bearerToken string) (*Principal, error) {
	tokenString := stripBearerPrefix(bearerToken)
	if tokenString == "" {
		return nil, ErrUnauthorized
	}

	claims, err := s.tokens.Parse(tokenString)
	if err != nil {
		return nil, ErrUnauthorized
	}

	// The snapshot stands in for the account for at most its cache TTL; any
	// flow that removes an account must call cache.DelAccountAuthState.
	if state, hit, cerr := cache.GetAccountAuthState(ctx, claims.Email); cerr == nil && hit && state != nil {
		return &Principal{AccountID: state.AccountID, Email: state.Email, Role: state.Role}, nil
	}

	account, err := s.accountRepo.GetByEmail(ctx, claims.Email)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrUnauthorized
	}
	_ = cache.SetAccountAuthState(ctx, cache.BuildAccountAuthState(account))

	return &Principal{AccountID: account.ID, Email: account.Email, Role: account.Role}, nil
}

// Authorize checks whether a principal's role may perform an action.
func (s *AuthService) Authorize(principal *Principal, object, action string) error {
	if principal == nil {
		return ErrUnauthorized
	}
	allowed, err := s.authz.EnforceRole(principal.Role, object, action)
	if err != nil {
		logger.Errorw("authz_enforce_failed",
			"role", principal.Role,
			"object", object,
			"action", action,
			"error", err,
		)
		return err
	}
	if !allowed {
		return ErrForbidden
	}
	return nil
}

func stripBearerPrefix(token string) string {
	token = strings.TrimSpace(token)
	if len(token) > 7 && strings.EqualFold(token[:7], "Bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}
