package asset

import "golang.org/x/text/language"

// Currencies used by the pricing engine. Domestic amounts are whole yen,
// marketplace prices are dollars and cents.
var (
	JPY = NewAsset("JPY", "¥", "Japanese Yen", 0, language.Japanese)
	USD = NewAsset("USD", "$", "US Dollar", 2, language.AmericanEnglish)
)

// ByCode returns a well-known currency.
func ByCode(code string) (*Asset, bool) {
	switch code {
	case "JPY", "jpy":
		return JPY, true
	case "USD", "usd":
		return USD, true
	}
	return nil, false
}
