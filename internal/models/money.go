package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is a display amount with two decimal places, derived from values
// stored in the smallest currency unit.
type Money struct {
	decimal.Decimal
}

// NewMoneyFromMinorUnits converts a minor-unit integer amount.
func NewMoneyFromMinorUnits(v int64) Money {
	return Money{Decimal: decimal.NewFromInt(v).Shift(-2)}
}

// MarshalJSON renders a fixed two-decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Decimal.StringFixed(2))
}

// UnmarshalJSON accepts a string or a number.
func (m *Money) UnmarshalJSON(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return err
		}
		m.Decimal = d.Round(2)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	m.Decimal = decimal.NewFromFloat(f).Round(2)
	return nil
}

// Value implements driver.Valuer.
func (m Money) Value() (driver.Value, error) {
	return m.Decimal.StringFixed(2), nil
}

// Scan implements sql.Scanner.
func (m *Money) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		m.Decimal = decimal.Zero
		return nil
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return err
		}
		m.Decimal = d
		return nil
	case []byte:
		d, err := decimal.NewFromString(string(v))
		if err != nil {
			return err
		}
		m.Decimal = d
		return nil
	case float64:
		m.Decimal = decimal.NewFromFloat(v)
		return nil
	case int64:
		m.Decimal = decimal.NewFromInt(v)
		return nil
	default:
		return fmt.Errorf("unsupported money type %T", value)
	}
}
