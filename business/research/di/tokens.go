// Package di contains dependency injection tokens for the research context.
package di

import (
	"github.com/fd1az/resale-pricer/business/research/app"
	"github.com/fd1az/resale-pricer/internal/di"
)

// Public service tokens - exposed to other modules
var (
	ResearchService = di.NewToken[*app.ResearchService]("research.ResearchService")
)

// Private dependency tokens - internal to research module
var (
	KeywordGenerator = di.NewToken[app.KeywordGenerator]("research:keywordGenerator")
	ListingParser    = di.NewToken[app.ListingParser]("research:listingParser")
)

func GetResearchService(c di.ServiceRegistry) *app.ResearchService {
	return di.GetToken(c, ResearchService)
}

func GetKeywordGenerator(c di.ServiceRegistry) app.KeywordGenerator {
	return di.GetToken(c, KeywordGenerator)
}

func GetListingParser(c di.ServiceRegistry) app.ListingParser {
	return di.GetToken(c, ListingParser)
}
