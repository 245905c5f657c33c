package models

import "time"

// GiftCardEventLog is one row of the lifecycle audit trail, written by the
// queue worker after each successful transition.
type GiftCardEventLog struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Code      string    `gorm:"type:varchar(32);index;not null" json:"code"`
	Event     string    `gorm:"type:varchar(24);index;not null" json:"event"`
	Actor     string    `gorm:"type:varchar(255);index" json:"actor"`
	Value     int64     `json:"value"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName sets the table name.
func (GiftCardEventLog) TableName() string {
	return "gift_card_event_logs"
}
