// Package console prints calculation results for the CLI mode.
package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fd1az/resale-pricer/business/pricing/domain"
	"github.com/fd1az/resale-pricer/internal/asset"
)

const ruleWidth = 64

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	lossStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	gainStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
)

// Printer writes human-readable breakdowns.
type Printer struct {
	out io.Writer
}

func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

func (p *Printer) rule(ch string) {
	fmt.Fprintln(p.out, strings.Repeat(ch, ruleWidth))
}

func (p *Printer) row(label, value string) {
	fmt.Fprintf(p.out, "  %-24s %s\n", label+":", value)
}

// PrintResult prints one calculation.
func (p *Printer) PrintResult(r domain.CalculationResult) {
	p.rule("=")
	switch r.Direction {
	case domain.DirectionMaxPurchase:
		fmt.Fprintln(p.out, titleStyle.Render("MAXIMUM PURCHASE PRICE"))
	default:
		fmt.Fprintln(p.out, titleStyle.Render("REQUIRED SALE PRICE"))
	}
	p.rule("=")

	fmt.Fprintln(p.out, "SALE")
	p.row("Price (duty incl.)", asset.Format(asset.USD, r.DutyInclusivePriceUSD)+"  "+asset.Format(asset.JPY, r.DutyInclusivePriceJPY))
	p.row("Price (duty excl.)", asset.Format(asset.USD, r.DutyExclusivePriceUSD)+"  "+asset.Format(asset.JPY, r.DutyExclusivePriceJPY))
	p.row("Exchange rate", r.ExchangeRate.String()+" JPY/USD")
	p.rule("-")

	fmt.Fprintln(p.out, "FEES")
	p.row("Marketplace", asset.Format(asset.JPY, r.Fees.MarketplaceFee))
	p.row("Advertising", asset.Format(asset.JPY, r.Fees.AdFee))
	p.row("Payment processor", asset.Format(asset.JPY, r.Fees.ProcessorFee))
	p.row("Net proceeds", asset.Format(asset.JPY, r.Fees.NetProceeds))
	p.rule("-")

	fmt.Fprintln(p.out, "COSTS")
	p.row("Duty", asset.Format(asset.USD, r.DutyUSD)+"  "+asset.Format(asset.JPY, r.DutyJPY))
	ship := fmt.Sprintf("%s  %s @ %d g", asset.Format(asset.JPY, r.Shipping.Cost), r.Shipping.MethodName, r.Shipping.ChargeableWeight)
	if r.UsedFallbackShipping {
		ship += "  " + warnStyle.Render("(flat cost fallback)")
	}
	p.row("Shipping", ship)
	p.rule("-")

	fmt.Fprintln(p.out, "RESULT")
	if r.Direction == domain.DirectionMaxPurchase {
		p.row("Break-even purchase", asset.Format(asset.JPY, r.BreakEvenPurchasePrice))
		p.row("Max purchase price", titleStyle.Render(asset.Format(asset.JPY, r.MaxPurchasePrice)))
	} else {
		p.row("Purchase cost", asset.Format(asset.JPY, r.PurchaseCost))
	}
	p.row("Target profit", fmt.Sprintf("%s (%s%%)", asset.Format(asset.JPY, r.TargetProfit), r.TargetProfitMargin.String()))

	profit := fmt.Sprintf("%s (%s%%)", asset.Format(asset.JPY, r.Profit), r.ProfitRate.StringFixed(1))
	if r.Profit.IsNegative() {
		profit = lossStyle.Render(profit)
	} else {
		profit = gainStyle.Render(profit)
	}
	p.row("Profit", profit)

	if !r.Converged {
		fmt.Fprintln(p.out, warnStyle.Render(fmt.Sprintf("  solver stopped after %d iterations without converging", r.IterationsUsed)))
	}
	fmt.Fprintf(p.out, "  rate table %s\n", r.RateTableVersion)
	p.rule("=")
}

// PrintOptions prints the shipping comparison table.
func (p *Printer) PrintOptions(opts []domain.ShippingOption) {
	p.rule("=")
	fmt.Fprintln(p.out, titleStyle.Render("SHIPPING OPTIONS"))
	p.rule("=")
	fmt.Fprintf(p.out, "  %-4s %-15s %10s %12s  %s\n", "", "METHOD", "WEIGHT", "COST", "")
	for _, o := range opts {
		var marks []string
		if o.Selected {
			marks = append(marks, "selected")
		}
		if o.Cheapest {
			marks = append(marks, "cheapest")
		}
		if !o.Available && o.MaxWeight > 0 {
			marks = append(marks, fmt.Sprintf("limit %d g", o.MaxWeight))
		}
		fmt.Fprintf(p.out, "  %-4s %-15s %8d g %12s  %s\n",
			o.Method, o.MethodName, o.ChargeableWeight, o.CostLabel(), strings.Join(marks, ", "))
	}
	p.rule("=")
}
