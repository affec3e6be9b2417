// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fd1az/resale-pricer/business/pricing/domain"
	"github.com/fd1az/resale-pricer/internal/asset"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	positiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	negativeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
)

// BreakdownComponent renders one calculation result.
type BreakdownComponent struct {
	result *domain.CalculationResult
}

// NewBreakdownComponent creates an empty breakdown.
func NewBreakdownComponent() *BreakdownComponent {
	return &BreakdownComponent{}
}

// Update replaces the displayed result.
func (b *BreakdownComponent) Update(r domain.CalculationResult) {
	b.result = &r
}

// Clear drops the displayed result.
func (b *BreakdownComponent) Clear() {
	b.result = nil
}

// Result returns the displayed result, or nil.
func (b *BreakdownComponent) Result() *domain.CalculationResult {
	return b.result
}

// View renders the breakdown.
func (b *BreakdownComponent) View() string {
	if b.result == nil {
		return dimStyle.Render("No calculation yet")
	}
	r := b.result

	var s strings.Builder
	row := func(label, value string) {
		fmt.Fprintf(&s, "%-20s %s\n", label, value)
	}

	if r.Direction == domain.DirectionMaxPurchase {
		s.WriteString(headerStyle.Render("MAX PURCHASE PRICE"))
	} else {
		s.WriteString(headerStyle.Render("REQUIRED SALE PRICE"))
	}
	s.WriteString("\n\n")

	row("Sale (duty incl.)", asset.Format(asset.USD, r.DutyInclusivePriceUSD)+"  "+asset.Format(asset.JPY, r.DutyInclusivePriceJPY))
	row("Sale (duty excl.)", asset.Format(asset.USD, r.DutyExclusivePriceUSD)+"  "+asset.Format(asset.JPY, r.DutyExclusivePriceJPY))
	row("Fees", asset.Format(asset.JPY, r.Fees.TotalFees()))
	row("Net proceeds", asset.Format(asset.JPY, r.Fees.NetProceeds))
	row("Duty", asset.Format(asset.JPY, r.DutyJPY))

	ship := fmt.Sprintf("%s %s", asset.Format(asset.JPY, r.Shipping.Cost), r.Shipping.MethodName)
	if r.UsedFallbackShipping {
		ship += " " + warnStyle.Render("(flat)")
	}
	row("Shipping", ship)
	s.WriteString("\n")

	if r.Direction == domain.DirectionMaxPurchase {
		row("Break-even", asset.Format(asset.JPY, r.BreakEvenPurchasePrice))
		row("Max purchase", headerStyle.Render(asset.Format(asset.JPY, r.MaxPurchasePrice)))
	} else {
		row("Purchase cost", asset.Format(asset.JPY, r.PurchaseCost))
		row("Sell at", headerStyle.Render(asset.Format(asset.USD, r.DutyInclusivePriceUSD)))
	}

	profit := fmt.Sprintf("%s (%s%%)", asset.Format(asset.JPY, r.Profit), r.ProfitRate.StringFixed(1))
	if r.Profit.IsNegative() {
		profit = negativeStyle.Render(profit)
	} else {
		profit = positiveStyle.Render(profit)
	}
	row("Profit", profit)

	if !r.Converged {
		s.WriteString(warnStyle.Render(fmt.Sprintf("not converged after %d iterations", r.IterationsUsed)))
		s.WriteString("\n")
	}
	s.WriteString(dimStyle.Render(fmt.Sprintf("rate %s JPY/USD · table %s", r.ExchangeRate.String(), r.RateTableVersion)))
	return s.String()
}
