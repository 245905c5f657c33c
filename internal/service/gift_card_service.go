package service

import (
	"context"
	"time"

	"github.com/giftvault/internal/config"
	"github.com/giftvault/internal/constants"
	"github.com/giftvault/internal/logger"
	"github.com/giftvault/internal/models"
	"github.com/giftvault/internal/queue"
	"github.com/giftvault/internal/repository"
)

// GiftCardView is a card as returned to callers. Status carries the derived
// state: a stored-active card past its expiry reads as expired.
type GiftCardView struct {
	Code       string       `json:"code"`
	Value      int64        `json:"value"`
	Amount     models.Money `json:"amount"`
	Status     string       `json:"status"`
	IssuedAt   time.Time    `json:"issued_at"`
	ExpiresAt  time.Time    `json:"expires_at"`
	UsedAt     *time.Time   `json:"used_at,omitempty"`
	DisposedAt *time.Time   `json:"disposed_at,omitempty"`
	IssuedBy   string       `json:"issued_by"`
	UsedBy     string       `json:"used_by,omitempty"`
}

// GiftCardService drives the voucher lifecycle: issue, use, dispose.
type GiftCardService struct {
	cfg          *config.Config
	giftCardRepo repository.GiftCardRepository
	eventRepo    repository.GiftCardEventLogRepository
	codes        *CodeGenerator
	auth         *AuthService
	queueClient  *queue.Client
}

// NewGiftCardService creates the lifecycle service.
func NewGiftCardService(
	cfg *config.Config,
	giftCardRepo repository.GiftCardRepository,
	eventRepo repository.GiftCardEventLogRepository,
	codes *CodeGenerator,
	auth *AuthService,
	queueClient *queue.Client,
) *GiftCardService {
	return &GiftCardService{
		cfg:          cfg,
		giftCardRepo: giftCardRepo,
		eventRepo:    eventRepo,
		codes:        codes,
		auth:         auth,
		queueClient:  queueClient,
	}
}

// storeCtx bounds a store round trip. Exceeding the deadline surfaces as
// ErrStoreTimeout through mapStoreErr.
func (s *GiftCardService) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.cfg.GiftCard.StoreTimeout())
}

// Issue creates a card worth value minor units. Administrator only.
func (s *GiftCardService) Issue(ctx context.Context, principal *Principal, value int64) (*GiftCardView, error) {
	if err := s.auth.Authorize(principal, constants.GiftCardObject, constants.GiftCardActionIssue); err != nil {
		return nil, err
	}
	if value < s.cfg.GiftCard.MinValue || value > s.cfg.GiftCard.MaxValue {
		return nil, ErrInvalidAmount
	}

	now := time.Now()
	maxAttempts := s.cfg.GiftCard.CodeMaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 5
	}

	var card *models.GiftCard
	for attempt := 0; attempt < maxAttempts; attempt++ {
		sctx, cancel := s.storeCtx(ctx)
		code, err := s.codes.Generate(sctx)
		if err != nil {
			cancel()
			return nil, mapStoreErr(err)
		}

		candidate := &models.GiftCard{
			Code:      code,
			Value:     value,
			Status:    constants.GiftCardStatusActive,
			IssuedAt:  now,
			ExpiresAt: now.Add(s.cfg.GiftCard.Validity()),
			IssuedBy:  principal.Email,
		}
		err = s.giftCardRepo.Create(sctx, candidate)
		cancel()
		if err == nil {
			card = candidate
			break
		}
		if repository.IsDuplicateCode(err) {
			logger.Warnw("gift_card_code_collision", "code", code, "attempt", attempt+1)
			continue
		}
		return nil, mapStoreErr(err)
	}
	if card == nil {
		return nil, ErrCodeGeneration
	}

	s.publishEvent(card.Code, constants.GiftCardEventIssued, principal.Email, card.Value)
	logger.Infow("gift_card_issued", "code", card.Code, "value", card.Value, "issued_by", principal.Email)
	return s.toView(card), nil
}

// Use redeems a card. Any authenticated principal may redeem; the transition
// commits at most once even under concurrent attempts.
func (s *GiftCardService) Use(ctx context.Context, principal *Principal, code string) (*GiftCardView, error) {
	if err := s.auth.Authorize(principal, constants.GiftCardObject, constants.GiftCardActionUse); err != nil {
		return nil, err
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":  constants.GiftCardStatusUsed,
		"used_at": now,
		"used_by": principal.Email,
	}
	card, err := s.transition(ctx, code, updates, func(card *models.GiftCard) error {
		if card.IsExpired(now) {
			return ErrGiftCardExpired
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	card.Status = constants.GiftCardStatusUsed
	card.UsedAt = &now
	card.UsedBy = principal.Email
	s.publishEvent(card.Code, constants.GiftCardEventUsed, principal.Email, card.Value)
	logger.Infow("gift_card_used", "code", card.Code, "used_by", principal.Email)
	return s.toView(card), nil
}

// Dispose retires a card so it can never be redeemed. Administrator only.
// Expired cards may still be disposed.
func (s *GiftCardService) Dispose(ctx context.Context, principal *Principal, code string) (*GiftCardView, error) {
	if err := s.auth.Authorize(principal, constants.GiftCardObject, constants.GiftCardActionDispose); err != nil {
		return nil, err
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":      constants.GiftCardStatusDisposed,
		"disposed_at": now,
	}
	card, err := s.transition(ctx, code, updates, nil)
	if err != nil {
		return nil, err
	}

	card.Status = constants.GiftCardStatusDisposed
	card.DisposedAt = &now
	s.publishEvent(card.Code, constants.GiftCardEventDisposed, principal.Email, card.Value)
	logger.Infow("gift_card_disposed", "code", card.Code, "disposed_by", principal.Email)
	return s.toView(card), nil
}

// transition loads a card and applies a guarded active-to-terminal update.
// A guard losing the race is retried once against fresh state before the
// conflict is surfaced.
func (s *GiftCardService) transition(ctx context.Context, code string, updates map[string]interface{}, check func(*models.GiftCard) error) (*models.GiftCard, error) {
	const attempts = 2
	for attempt := 0; attempt < attempts; attempt++ {
		sctx, cancel := s.storeCtx(ctx)
		card, err := s.giftCardRepo.GetByCode(sctx, code)
		if err != nil {
			cancel()
			return nil, mapStoreErr(err)
		}
		if card == nil {
			cancel()
			return nil, ErrGiftCardNotFound
		}
		if !card.IsActive() {
			cancel()
			return nil, ErrGiftCardUsedOrDisposed
		}
		if check != nil {
			if err := check(card); err != nil {
				cancel()
				return nil, err
			}
		}

		rows, err := s.giftCardRepo.TransitionStatus(sctx, card.Code, constants.GiftCardStatusActive, cloneUpdates(updates))
		cancel()
		if err != nil {
			return nil, mapStoreErr(err)
		}
		if rows > 0 {
			return card, nil
		}
		logger.Warnw("gift_card_transition_conflict", "code", card.Code, "attempt", attempt+1)
	}
	return nil, ErrConflict
}

// Get returns a card by code for any authenticated principal.
func (s *GiftCardService) Get(ctx context.Context, principal *Principal, code string) (*GiftCardView, error) {
	if principal == nil {
		return nil, ErrUnauthorized
	}
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	card, err := s.giftCardRepo.GetByCode(sctx, code)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if card == nil {
		return nil, ErrGiftCardNotFound
	}
	return s.toView(card), nil
}

// List returns cards matching the filter. Administrator only.
func (s *GiftCardService) List(ctx context.Context, principal *Principal, filter repository.GiftCardListFilter) ([]GiftCardView, int64, error) {
	if err := s.auth.Authorize(principal, constants.GiftCardObject, constants.GiftCardActionList); err != nil {
		return nil, 0, err
	}
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	cards, total, err := s.giftCardRepo.List(sctx, filter)
	if err != nil {
		return nil, 0, mapStoreErr(err)
	}
	views := make([]GiftCardView, 0, len(cards))
	for i := range cards {
		views = append(views, *s.toView(&cards[i]))
	}
	return views, total, nil
}

// Events returns the audit trail for a code. Administrator only.
func (s *GiftCardService) Events(ctx context.Context, principal *Principal, code string) ([]models.GiftCardEventLog, error) {
	if err := s.auth.Authorize(principal, constants.GiftCardObject, constants.GiftCardActionList); err != nil {
		return nil, err
	}
	sctx, cancel := s.storeCtx(ctx)
	defer cancel()
	events, err := s.eventRepo.ListByCode(sctx, repository.NormalizeCode(code))
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return events, nil
}

func (s *GiftCardService) publishEvent(code, event, actor string, value int64) {
	if s.queueClient == nil {
		return
	}
	err := s.queueClient.EnqueueGiftCardEvent(queue.GiftCardEventPayload{
		Code:  code,
		Event: event,
		Actor: actor,
		Value: value,
	})
	if err != nil {
		logger.Errorw("gift_card_event_enqueue_failed", "code", code, "event", event, "error", err)
	}
}

func (s *GiftCardService) toView(card *models.GiftCard) *GiftCardView {
	status := card.Status
	if status == constants.GiftCardStatusActive && card.IsExpired(time.Now()) {
		status = constants.GiftCardStatusExpired
	}
	return &GiftCardView{
		Code:       card.Code,
		Value:      card.Value,
		Amount:     card.Amount(),
		Status:     status,
		IssuedAt:   card.IssuedAt,
		ExpiresAt:  card.ExpiresAt,
		UsedAt:     card.UsedAt,
		DisposedAt: card.DisposedAt,
		IssuedBy:   card.IssuedBy,
		UsedBy:     card.UsedBy,
	}
}

func cloneUpdates(updates map[string]interface{}) map[string]interface{} {
	cloned := make(map[string]interface{}, len(updates))
	for k, v := range updates {
		cloned[k] = v
	}
	return cloned
}
