// Package asset describes the fiat currencies prices are quoted in and how
// amounts in each are rounded and displayed.
package asset

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Asset is a currency's display and rounding metadata.
type Asset struct {
	code     string
	symbol   string
	name     string
	decimals int32
	locale   language.Tag
}

// NewAsset creates a currency with the given minor-unit precision.
func NewAsset(code, symbol, name string, decimals int32, locale language.Tag) *Asset {
	if code == "" {
		panic("asset: empty code")
	}
	if decimals != 0 && decimals != 2 {
		panic("asset: unsupported decimals")
	}
	return &Asset{
		code:     code,
		symbol:   symbol,
		name:     name,
		decimals: decimals,
		locale:   locale,
	}
}

// Code returns the ISO 4217 code.
func (a *Asset) Code() string {
	return a.code
}

// Name returns the human-readable name.
func (a *Asset) Name() string {
	if a.name == "" {
		return a.code
	}
	return a.name
}

func (a *Asset) printer() *message.Printer {
	return message.NewPrinter(a.locale)
}

func (a *Asset) String() string {
	return a.code
}
