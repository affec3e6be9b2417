package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/fd1az/resale-pricer/business/pricing/domain"
)

// OptionsComponent renders the shipping comparison table.
type OptionsComponent struct {
	options []domain.ShippingOption
}

// NewOptionsComponent creates an empty comparison table.
func NewOptionsComponent() *OptionsComponent {
	return &OptionsComponent{}
}

// Update replaces the displayed options.
func (o *OptionsComponent) Update(opts []domain.ShippingOption) {
	o.options = opts
}

// Options returns the displayed options.
func (o *OptionsComponent) Options() []domain.ShippingOption {
	return o.options
}

// View renders the table.
func (o *OptionsComponent) View() string {
	if len(o.options) == 0 {
		return dimStyle.Render("No shipping options")
	}

	rows := make([][]string, 0, len(o.options))
	for _, opt := range o.options {
		var marks []string
		if opt.Selected {
			marks = append(marks, "selected")
		}
		if opt.Cheapest {
			marks = append(marks, "cheapest")
		}
		if !opt.Available && opt.MaxWeight > 0 {
			marks = append(marks, fmt.Sprintf("limit %d g", opt.MaxWeight))
		}
		rows = append(rows, []string{
			string(opt.Method),
			opt.MethodName,
			fmt.Sprintf("%d g", opt.ChargeableWeight),
			opt.CostLabel(),
			strings.Join(marks, ", "),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(dimStyle).
		Headers("CODE", "METHOD", "WEIGHT", "COST", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return base.Inherit(headerStyle)
			}
			if row < 0 || row >= len(o.options) {
				return base
			}
			opt := o.options[row]
			switch {
			case !opt.Available:
				return base.Inherit(dimStyle)
			case opt.Cheapest && col == 3:
				return base.Inherit(positiveStyle)
			}
			return base
		})

	return headerStyle.Render("SHIPPING OPTIONS") + "\n" + t.Render()
}
