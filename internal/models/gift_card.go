package models

import (
	"time"

	"github.com/giftvault/internal/constants"
)

// GiftCard is a prepaid value voucher. Cards are never physically deleted;
// used and disposed cards are retained for audit.
type GiftCard struct {
	ID         uint       `gorm:"primarykey" json:"id"`
	Code       string     `gorm:"type:varchar(32);uniqueIndex;not null" json:"code"`
	Value      int64      `gorm:"not null" json:"value"` // smallest currency unit
	Status     string     `gorm:"type:varchar(24);index;not null;default:'active'" json:"status"`
	IssuedAt   time.Time  `gorm:"not null" json:"issued_at"`
	ExpiresAt  time.Time  `gorm:"index;not null" json:"expires_at"`
	UsedAt     *time.Time `gorm:"index" json:"used_at"`
	DisposedAt *time.Time `gorm:"index" json:"disposed_at"`
	IssuedBy   string     `gorm:"type:varchar(255);index" json:"issued_by"`
	UsedBy     string     `gorm:"type:varchar(255);index" json:"used_by,omitempty"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"index" json:"updated_at"`
}

// TableName sets the table name.
func (GiftCard) TableName() string {
	return "gift_cards"
}

// IsExpired reports whether the card is past its expiry at the given time.
// Expiry is derived here and never stored as a status.
func (g *GiftCard) IsExpired(now time.Time) bool {
	if g == nil || g.ExpiresAt.IsZero() {
		return false
	}
	return now.After(g.ExpiresAt)
}

// IsActive reports whether the stored status still permits a transition.
func (g *GiftCard) IsActive() bool {
	return g != nil && g.Status == constants.GiftCardStatusActive
}

// Amount returns the card value as a display money amount.
func (g *GiftCard) Amount() Money {
	if g == nil {
		return NewMoneyFromMinorUnits(0)
	}
	return NewMoneyFromMinorUnits(g.Value)
}
