package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/giftvault/internal/constants"
	"github.com/giftvault/internal/models"
	"github.com/giftvault/internal/provider"
	"github.com/giftvault/internal/queue"
	"github.com/giftvault/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

func setupConsumerTest(t *testing.T) (*Consumer, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:consumer_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.GiftCardEventLog{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	container := &provider.Container{
		EventLogRepo: repository.NewGiftCardEventLogRepository(db),
	}
	return NewConsumer(container), db
}

func TestConsumerPersistsGiftCardEvent(t *testing.T) {
	consumer, db := setupConsumerTest(t)

	payload := queue.GiftCardEventPayload{
		Code:  "CLLW-2QQ4-QY4A-PWZ6W9",
		Event: constants.GiftCardEventUsed,
		Actor: "user@example.com",
		Value: 50000,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload failed: %v", err)
	}
	task := asynq.NewTask(queue.TaskGiftCardEvent, body)

	if err := consumer.handleGiftCardEvent(context.Background(), task); err != nil {
		t.Fatalf("handle gift card event failed: %v", err)
	}

	var entries []models.GiftCardEventLog
	if err := db.Where("code = ?", payload.Code).Find(&entries).Error; err != nil {
		t.Fatalf("load event logs failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 event log entry, got: %d", len(entries))
	}
	if entries[0].Event != constants.GiftCardEventUsed || entries[0].Actor != "user@example.com" || entries[0].Value != 50000 {
		t.Fatalf("unexpected event log entry: %+v", entries[0])
	}
}

func TestConsumerSkipsInvalidPayload(t *testing.T) {
	consumer, db := setupConsumerTest(t)

	task := asynq.NewTask(queue.TaskGiftCardEvent, []byte(`{"code":"","event":""}`))
	if err := consumer.handleGiftCardEvent(context.Background(), task); err != nil {
		t.Fatalf("expected invalid payload to be skipped, got: %v", err)
	}

	var count int64
	if err := db.Model(&models.GiftCardEventLog{}).Count(&count).Error; err != nil {
		t.Fatalf("count event logs failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no event log entries, got: %d", count)
	}
}

func TestConsumerRejectsMalformedPayload(t *testing.T) {
	consumer, _ := setupConsumerTest(t)
	task := asynq.NewTask(queue.TaskGiftCardEvent, []byte("not json"))
	if err := consumer.handleGiftCardEvent(context.Background(), task); err == nil {
		t.Fatalf("expected malformed payload to fail")
	}
}
