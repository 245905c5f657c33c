package worker

import (
	"context"
	"encoding/json"

	"github.com/giftvault/internal/logger"
	"github.com/giftvault/internal/models"
	"github.com/giftvault/internal/provider"
	"github.com/giftvault/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer handles queued lifecycle events.
type Consumer struct {
	*provider.Container
}

// NewConsumer creates a consumer.
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{Container: c}
}

// Register attaches task handlers to the mux.
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskGiftCardEvent, c.handleGiftCardEvent)
}

// handleGiftCardEvent appends one lifecycle transition to the audit trail.
// Persistence failures are returned so asynq retries the task.
func (c *Consumer) handleGiftCardEvent(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_gift_card_event_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.GiftCardEventPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_gift_card_event_unmarshal_failed", "error", err)
		return err
	}
	if payload.Code == "" || payload.Event == "" {
		logger.Debugw("worker_gift_card_event_skip_invalid_payload", "code", payload.Code, "event", payload.Event)
		return nil
	}

	entry := &models.GiftCardEventLog{
		Code:  payload.Code,
		Event: payload.Event,
		Actor: payload.Actor,
		Value: payload.Value,
	}
	if err := c.EventLogRepo.Create(ctx, entry); err != nil {
		logger.Warnw("worker_gift_card_event_persist_failed", "code", payload.Code, "event", payload.Event, "error", err)
		return err
	}
	logger.Infow("worker_gift_card_event_recorded", "code", payload.Code, "event", payload.Event, "actor", payload.Actor)
	return nil
}
