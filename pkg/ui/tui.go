package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/fd1az/resale-pricer/business/pricing/domain"
	"github.com/fd1az/resale-pricer/pkg/ui/components"
)

const calculationTimeout = 5 * time.Second

// Calculator is the part of the pricing service the TUI drives.
type Calculator interface {
	ComputeMaxPurchasePrice(ctx context.Context, price decimal.Decimal, dutyInclusive bool) (domain.CalculationResult, error)
	ComputeRequiredSalePrice(ctx context.Context, cost decimal.Decimal) (domain.CalculationResult, error)
	EnumerateShippingOptions(ctx context.Context, parcel domain.Parcel, reference decimal.Decimal) ([]domain.ShippingOption, error)
}

// Model is the main TUI model.
type Model struct {
	svc    Calculator
	parcel domain.Parcel

	keys   KeyMap
	help   help.Model
	inputs []textinput.Model
	focus  field

	dutyInclusive bool

	maxPurchase  *components.BreakdownComponent
	requiredSale *components.BreakdownComponent
	options      *components.OptionsComponent

	err      error
	busy     bool
	width    int
	quitting bool
}

// New creates a calculator model. parcel prefills the package fields.
func New(svc Calculator, parcel domain.Parcel) Model {
	return Model{
		svc:          svc,
		parcel:       parcel,
		keys:         DefaultKeyMap(),
		help:         help.New(),
		inputs:       newInputs(parcel),
		maxPurchase:  components.NewBreakdownComponent(),
		requiredSale: components.NewBreakdownComponent(),
		options:      components.NewOptionsComponent(),
		width:        80,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case CalculatedMsg:
		m.busy = false
		m.err = msg.Err
		if msg.Err != nil {
			return m, nil
		}
		setBreakdown(m.maxPurchase, msg.MaxPurchase)
		setBreakdown(m.requiredSale, msg.RequiredSale)
		m.options.Update(msg.Options)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Next):
			return m, m.setFocus((m.focus + 1) % fieldCount)
		case key.Matches(msg, m.keys.Prev):
			return m, m.setFocus((m.focus + fieldCount - 1) % fieldCount)
		case key.Matches(msg, m.keys.Toggle):
			m.dutyInclusive = !m.dutyInclusive
			return m, nil
		case key.Matches(msg, m.keys.Clear):
			m.reset()
			return m, nil
		case key.Matches(msg, m.keys.Calculate):
			if m.busy {
				return m, nil
			}
			in, err := readInputs(m.inputs)
			if err != nil {
				m.err = err
				return m, nil
			}
			m.busy = true
			m.err = nil
			return m, calculate(m.svc, in, m.dutyInclusive)
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) setFocus(f field) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = f
	return m.inputs[m.focus].Focus()
}

func (m *Model) reset() {
	m.inputs = newInputs(m.parcel)
	m.focus = fieldPrice
	m.dutyInclusive = false
	m.err = nil
	m.maxPurchase.Clear()
	m.requiredSale.Clear()
	m.options.Update(nil)
}

func setBreakdown(b *components.BreakdownComponent, r *domain.CalculationResult) {
	if r == nil {
		b.Clear()
		return
	}
	b.Update(*r)
}

// calculate runs every direction the form asks for, then compares shipping
// methods for the entered package. The comparison is referenced on the
// purchase cost when given, else on the computed purchase ceiling.
func calculate(svc Calculator, in calcInput, dutyInclusive bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), calculationTimeout)
		defer cancel()

		var msg CalculatedMsg
		reference := decimal.Zero

		if in.hasPrice {
			r, err := svc.ComputeMaxPurchasePrice(ctx, in.price, dutyInclusive)
			if err != nil {
				return CalculatedMsg{Err: err}
			}
			msg.MaxPurchase = &r
			reference = r.MaxPurchasePrice
		}
		if in.hasCost {
			r, err := svc.ComputeRequiredSalePrice(ctx, in.cost)
			if err != nil {
				return CalculatedMsg{Err: err}
			}
			msg.RequiredSale = &r
			reference = in.cost
		}

		opts, err := svc.EnumerateShippingOptions(ctx, in.parcel, reference)
		if err != nil {
			return CalculatedMsg{Err: err}
		}
		msg.Options = opts
		return msg
	}
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return "\n  Goodbye!\n\n"
	}

	var b strings.Builder

	b.WriteString(TitleStyle.Render(" Resale Pricer "))
	b.WriteString("\n\n")

	b.WriteString(BoxStyle.Render(m.renderForm()))
	b.WriteString("\n")

	switch {
	case m.busy:
		b.WriteString(BusyStyle.Render("  calculating..."))
	case m.err != nil:
		b.WriteString(ErrorStyle.Render("  " + m.err.Error()))
	}
	b.WriteString("\n")

	var results []string
	for _, c := range []*components.BreakdownComponent{m.maxPurchase, m.requiredSale} {
		if c.Result() != nil {
			results = append(results, c.View())
		}
	}
	switch {
	case len(results) == 2 && m.width > 100:
		left := BoxStyle.Width(m.width/2 - 2).Render(results[0])
		right := BoxStyle.Width(m.width/2 - 2).Render(results[1])
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
		b.WriteString("\n")
	default:
		for _, r := range results {
			b.WriteString(BoxStyle.Render(r))
			b.WriteString("\n")
		}
	}

	if len(m.options.Options()) > 0 {
		b.WriteString(m.options.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(HelpStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m Model) renderForm() string {
	var b strings.Builder
	b.WriteString(HeaderStyle.Render("Calculate"))
	b.WriteString("\n")

	for i := range m.inputs {
		f := field(i)
		if f == fieldWeight {
			b.WriteString("\n")
			b.WriteString(HeaderStyle.Render("Package"))
			b.WriteString("\n")
		}

		label := LabelStyle
		if f == m.focus {
			label = FocusedLabelStyle
		}
		b.WriteString(label.Render(fieldLabels[f]))
		b.WriteString(m.inputs[f].View())
		b.WriteString("\n")

		if f == fieldPrice {
			b.WriteString(LabelStyle.Render("Duty inclusive"))
			if m.dutyInclusive {
				b.WriteString(ToggleOnStyle.Render("[x] yes"))
			} else {
				b.WriteString(MutedValue.Render("[ ] no"))
			}
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// Run starts the Bubble Tea program.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
