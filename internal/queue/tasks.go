package queue

import (
	"encoding/json"

	"github.com/giftvault/internal/constants"

	"github.com/hibiken/asynq"
)

// TaskGiftCardEvent carries one lifecycle transition to the audit worker.
const TaskGiftCardEvent = constants.TaskGiftCardEvent

// GiftCardEventPayload is the task body for a lifecycle transition.
type GiftCardEventPayload struct {
	Code  string `json:"code"`
	Event string `json:"event"`
	Actor string `json:"actor"`
	Value int64  `json:"value"`
}

// NewGiftCardEventTask builds a gift card event task.
func NewGiftCardEventTask(payload GiftCardEventPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskGiftCardEvent, body), nil
}
