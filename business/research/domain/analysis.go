// Package domain holds the research context: reading sold-listing prices
// and turning domestic listing titles into marketplace search keywords.
package domain

import (
	pricingDomain "github.com/fd1az/resale-pricer/business/pricing/domain"
)

// SoldListingAnalysis is the outcome of reading one captured results page.
// Suggestion is the purchase ceiling at the median price; it is nil when no
// prices were found or no pricing service is wired.
type SoldListingAnalysis struct {
	Source     Source                           `json:"source"`
	Stats      PriceStats                       `json:"stats"`
	Suggestion *pricingDomain.CalculationResult `json:"suggestion"`
}
