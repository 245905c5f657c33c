package service

import (
	"testing"

	"github.com/giftvault/internal/constants"
)

func TestTokenServiceRoundTrip(t *testing.T) {
	cfg := testConfig()
	tokens := NewTokenService(cfg)

	token, expiresAt, err := tokens.Issue("Admin@Admin.com", constants.RoleAdministrator)
	if err != nil {
		t.Fatalf("issue token failed: %v", err)
	}
	if expiresAt.IsZero() {
		t.Fatalf("expected non-zero expiry")
	}

	claims, err := tokens.Parse(token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.Email != "admin@admin.com" {
		t.Fatalf("expected lowercased email, got: %s", claims.Email)
	}
	if claims.Role != constants.RoleAdministrator {
		t.Fatalf("expected role=%s, got: %s", constants.RoleAdministrator, claims.Role)
	}
}

func TestTokenServiceRejectsWrongSecret(t *testing.T) {
	tokens := NewTokenService(testConfig())
	token, _, err := tokens.Issue("user@example.com", constants.RoleOrdinary)
	if err != nil {
		t.Fatalf("issue token failed: %v", err)
	}

	otherCfg := testConfig()
	otherCfg.JWT.SecretKey = "another-secret-key-0123456789abcd"
	if _, err := NewTokenService(otherCfg).Parse(token); err == nil {
		t.Fatalf("expected parse to fail with wrong secret")
	}
}

func TestTokenServiceRejectsExpiredToken(t *testing.T) {
	cfg := testConfig()
	cfg.JWT.ExpireHours = -1
	token, _, err := NewTokenService(cfg).Issue("user@example.com", constants.RoleOrdinary)
	if err != nil {
		t.Fatalf("issue token failed: %v", err)
	}
	if _, err := NewTokenService(testConfig()).Parse(token); err == nil {
		t.Fatalf("expected parse to fail for expired token")
	}
}

func TestTokenServiceRejectsGarbage(t *testing.T) {
	if _, err := NewTokenService(testConfig()).Parse("not-a-token"); err == nil {
		t.Fatalf("expected parse to fail for malformed token")
	}
}
