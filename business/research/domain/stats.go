package domain

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/fd1az/resale-pricer/internal/asset"
)

// PriceStats summarises a set of sold prices in USD.
type PriceStats struct {
	Count   int             `json:"count"`
	Min     decimal.Decimal `json:"min"`
	Max     decimal.Decimal `json:"max"`
	Average decimal.Decimal `json:"average"`
	Median  decimal.Decimal `json:"median"`
}

// ComputeStats returns zero stats for an empty input. Average and median
// are rounded to cents; the median of an even count is the mean of the two
// middle prices.
func ComputeStats(prices []decimal.Decimal) PriceStats {
	if len(prices) == 0 {
		return PriceStats{}
	}

	sorted := make([]decimal.Decimal, len(prices))
	copy(sorted, prices)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })

	n := len(sorted)
	sum := decimal.Sum(sorted[0], sorted[1:]...)

	mid := n / 2
	median := sorted[mid]
	if n%2 == 0 {
		median = sorted[mid-1].Add(sorted[mid]).Div(decimal.NewFromInt(2))
	}

	return PriceStats{
		Count:   n,
		Min:     sorted[0],
		Max:     sorted[n-1],
		Average: asset.Round(asset.USD, sum.Div(decimal.NewFromInt(int64(n)))),
		Median:  asset.Round(asset.USD, median),
	}
}
