package domain

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var (
	// MaxSoldPrice bounds plausible marketplace prices; anything at or
	// above it is a parsing artefact.
	MaxSoldPrice = decimal.NewFromInt(100_000)

	// MaxYenPrice bounds plausible domestic listing prices.
	MaxYenPrice = decimal.NewFromInt(100_000_000)

	usdNumber = regexp.MustCompile(`\d+(?:\.\d+)?`)
	yenNumber = regexp.MustCompile(`\d+`)
)

// ParseUSDPrice reads a displayed dollar price such as "$1,234.50",
// "US $20.00" or a range "$10.00 to $20.00". A range yields the mean of its
// ends, and only when both ends parse. ok is false when no positive amount
// was found.
func ParseUSDPrice(text string) (decimal.Decimal, bool) {
	for _, sep := range []string{" to ", "〜"} {
		if !strings.Contains(text, sep) {
			continue
		}
		parts := strings.SplitN(text, sep, 2)
		lo, okLo := extractUSD(parts[0])
		hi, okHi := extractUSD(parts[1])
		if !okLo || !okHi {
			return decimal.Zero, false
		}
		return lo.Add(hi).Div(decimal.NewFromInt(2)), true
	}
	return extractUSD(text)
}

func extractUSD(text string) (decimal.Decimal, bool) {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r == ',' || r == '$' || r == 'U' || r == 'S' || r == 'D':
			return -1
		case unicode.IsSpace(r):
			return -1
		}
		return r
	}, text)

	m := usdNumber.FindString(cleaned)
	if m == "" {
		return decimal.Zero, false
	}
	v, err := decimal.NewFromString(m)
	if err != nil || !v.IsPositive() {
		return decimal.Zero, false
	}
	return v, true
}

// ValidSoldPrice reports 0 < p < MaxSoldPrice.
func ValidSoldPrice(p decimal.Decimal) bool {
	return p.IsPositive() && p.LessThan(MaxSoldPrice)
}

// ParseYenPrice reads a domestic listing price such as "¥12,800" or
// "12，800円". ok is false unless 0 < p < MaxYenPrice.
func ParseYenPrice(text string) (decimal.Decimal, bool) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '¥', '￥', '円', ',', '，':
			return -1
		}
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)

	m := yenNumber.FindString(cleaned)
	if m == "" {
		return decimal.Zero, false
	}
	v, err := decimal.NewFromString(m)
	if err != nil || !v.IsPositive() || !v.LessThan(MaxYenPrice) {
		return decimal.Zero, false
	}
	return v, true
}
