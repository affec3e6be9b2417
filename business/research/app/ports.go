// Package app contains the research service and the ports it drives.
package app

import (
	"context"
	"io"

	"github.com/shopspring/decimal"

	"github.com/fd1az/resale-pricer/business/research/domain"
)

// KeywordGenerator turns a domestic listing title into marketplace search
// keywords.
type KeywordGenerator interface {
	Generate(ctx context.Context, title string) (string, error)
}

// ListingParser extracts sold prices from a captured results page.
type ListingParser interface {
	Parse(ctx context.Context, source domain.Source, page io.Reader) ([]decimal.Decimal, error)
}
