package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/giftvault/internal/models"
)

const authStateCacheTTL = 10 * time.Minute

// AccountAuthState is the server-side snapshot the auth gate consults before
// falling back to the account store.
type AccountAuthState struct {
	AccountID uint   `json:"account_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	UpdatedAt int64  `json:"updated_at"`
}

func accountAuthStateKey(email string) string {
	return fmt.Sprintf("auth:account:%s", strings.ToLower(strings.TrimSpace(email)))
}

// BuildAccountAuthState builds a snapshot from an account record.
func BuildAccountAuthState(account *models.Account) *AccountAuthState {
	if account == nil {
		return nil
	}
	return &AccountAuthState{
		AccountID: account.ID,
		Email:     strings.ToLower(strings.TrimSpace(account.Email)),
		Role:      account.Role,
		UpdatedAt: time.Now().Unix(),
	}
}

// GetAccountAuthState reads the snapshot for an email.
func GetAccountAuthState(ctx context.Context, email string) (*AccountAuthState, bool, error) {
	if strings.TrimSpace(email) == "" {
		return nil, false, nil
	}
	var state AccountAuthState
	hit, err := GetJSON(ctx, accountAuthStateKey(email), &state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &state, true, nil
}

// SetAccountAuthState writes the snapshot for an account.
func SetAccountAuthState(ctx context.Context, state *AccountAuthState) error {
	if state == nil || state.Email == "" {
		return nil
	}
	return SetJSON(ctx, accountAuthStateKey(state.Email), state, authStateCacheTTL)
}

// DelAccountAuthState drops the snapshot for an email.
func DelAccountAuthState(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return nil
	}
	return Del(ctx, accountAuthStateKey(email))
}
