package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// HistoryRecord is a stored calculation. It is never recalculated on read.
type HistoryRecord struct {
	ID        string            `json:"id"`
	Direction Direction         `json:"direction"`
	Input     decimal.Decimal   `json:"input"`
	Result    CalculationResult `json:"result"`
	CreatedAt time.Time         `json:"created_at"`
}
