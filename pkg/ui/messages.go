package ui

import (
	"github.com/fd1az/resale-pricer/business/pricing/domain"
)

// CalculatedMsg carries the outcome of one calculation round.
type CalculatedMsg struct {
	MaxPurchase  *domain.CalculationResult
	RequiredSale *domain.CalculationResult
	Options      []domain.ShippingOption
	Err          error
}
