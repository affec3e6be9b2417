package domain

import (
	"net/url"

	"github.com/fd1az/resale-pricer/internal/apperror"
)

// Source identifies the page a set of sold listings was captured from.
type Source string

const (
	SourceEbay     Source = "ebay"
	SourceTerapeak Source = "terapeak"
)

// ParseSource accepts "ebay" and "terapeak"; empty means ebay.
func ParseSource(s string) (Source, error) {
	switch Source(s) {
	case "", SourceEbay:
		return SourceEbay, nil
	case SourceTerapeak:
		return SourceTerapeak, nil
	}
	return "", apperror.Validationf(apperror.CodeInvalidInput, "unknown listing source %q", s)
}

// KeywordOrigin records how a keyword string was produced.
type KeywordOrigin string

const (
	OriginLLM       KeywordOrigin = "llm"
	OriginHeuristic KeywordOrigin = "heuristic"
)

// KeywordSuggestion is the search material generated for one title.
type KeywordSuggestion struct {
	Title       string        `json:"title"`
	Keywords    string        `json:"keywords"`
	Origin      KeywordOrigin `json:"origin"`
	SoldURL     string        `json:"sold_url"`
	ResearchURL string        `json:"research_url"`
}

// SoldSearchURL links to completed, sold, fixed-price listings, most
// recent first.
func SoldSearchURL(keywords string) string {
	q := url.Values{}
	q.Set("_nkw", keywords)
	q.Set("LH_Complete", "1")
	q.Set("LH_Sold", "1")
	q.Set("_sop", "13")
	q.Set("LH_BIN", "1")
	return "https://www.ebay.com/sch/i.html?" + q.Encode()
}

// ResearchURL links to 90 days of sold data in the seller research tool.
func ResearchURL(keywords string) string {
	q := url.Values{}
	q.Set("marketplace", "EBAY-US")
	q.Set("keywords", keywords)
	q.Set("dayRange", "90")
	q.Set("tabName", "SOLD")
	return "https://www.ebay.com/sh/research?" + q.Encode()
}
