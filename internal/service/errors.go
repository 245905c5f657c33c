package service

import (
	"context"
	"errors"
)

// Sentinel errors surfaced to the HTTP layer. Handlers branch on these with
// errors.Is and map them to response codes.
var (
	ErrUnauthorized           = errors.New("authentication required")
	ErrForbidden              = errors.New("operation not permitted for this role")
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrAccountNotFound        = errors.New("account not found")
	ErrAccountExists          = errors.New("account already exists")
	ErrInvalidAmount          = errors.New("gift card value out of bounds")
	ErrGiftCardNotFound       = errors.New("gift card not found")
	ErrGiftCardUsedOrDisposed = errors.New("gift card already used or disposed")
	ErrGiftCardExpired        = errors.New("gift card expired")
	ErrConflict               = errors.New("concurrent modification conflict")
	ErrStoreTimeout           = errors.New("store operation timed out")
	ErrCodeGeneration         = errors.New("unable to generate a unique code")
	ErrCaptchaRequired        = errors.New("captcha verification required")
	ErrCaptchaInvalid         = errors.New("captcha verification failed")
)

// mapStoreErr folds context deadline failures from the bounded store calls
// into the timeout sentinel.
func mapStoreErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrStoreTimeout
	}
	return err
}
