// Package soldlistings extracts sold prices from captured marketplace
// result pages.
package soldlistings

import (
	"context"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"github.com/fd1az/resale-pricer/business/research/app"
	"github.com/fd1az/resale-pricer/business/research/domain"
	"github.com/fd1az/resale-pricer/internal/apperror"
)

// rowKeyLength is how much of a table row's first cell identifies it when
// deduplicating research-tool rows.
const rowKeyLength = 50

var (
	// Compile-time check that Parser implements app.ListingParser
	_ app.ListingParser = (*Parser)(nil)

	dollarAmount = regexp.MustCompile(`\$([\d,]+\.\d{2})`)

	// Tried in order inside each result row.
	ebayPriceSelectors = []string{
		".s-item__price span.POSITIVE",
		".s-item__price span.BOLD",
		".s-item__price span",
		".s-item__price",
	}

	minResearchPrice = decimal.NewFromInt(1)
)

// Parser reads search-results and research-tool pages with goquery.
type Parser struct{}

// NewParser creates a Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse returns the sold prices found on a page captured from source, in
// page order. A page with no recognisable prices yields an empty slice.
func (p *Parser) Parse(_ context.Context, source domain.Source, page io.Reader) ([]decimal.Decimal, error) {
	doc, err := goquery.NewDocumentFromReader(page)
	if err != nil {
		return nil, apperror.New(apperror.CodeListingParseFailed,
			apperror.WithCause(err),
			apperror.WithContext(string(source)))
	}

	switch source {
	case domain.SourceTerapeak:
		return researchPrices(doc), nil
	case domain.SourceEbay:
		return searchPrices(doc), nil
	}
	return nil, apperror.Validationf(apperror.CodeInvalidInput, "unknown listing source %q", source)
}

// searchPrices reads sold search results. Rows come first; when no row
// yields a price, loose price spans are tried, then any dollar amount in
// the page text.
func searchPrices(doc *goquery.Document) []decimal.Decimal {
	var out []decimal.Decimal

	doc.Find(".s-item").Each(func(i int, item *goquery.Selection) {
		// the first row is often a template placeholder
		if i == 0 && item.Find(".s-item__link").Length() == 0 {
			return
		}
		for _, sel := range ebayPriceSelectors {
			el := item.Find(sel).First()
			if el.Length() == 0 {
				continue
			}
			if price, ok := domain.ParseUSDPrice(strings.TrimSpace(el.Text())); ok && domain.ValidSoldPrice(price) {
				out = append(out, price)
			}
			return
		}
	})
	if len(out) > 0 {
		return out
	}

	doc.Find(".s-item__price span").Each(func(_ int, el *goquery.Selection) {
		text := strings.TrimSpace(el.Text())
		if !strings.HasPrefix(text, "$") {
			return
		}
		if price, ok := domain.ParseUSDPrice(text); ok && domain.ValidSoldPrice(price) {
			out = append(out, price)
		}
	})
	if len(out) > 0 {
		return out
	}

	for _, m := range dollarAmount.FindAllString(doc.Find("body").Text(), -1) {
		if price, ok := domain.ParseUSDPrice(m); ok && domain.ValidSoldPrice(price) {
			out = append(out, price)
		}
	}
	return out
}

// researchPrices reads the research tool's sold table. Each listing is
// marked by a span[data-item-id]; the first dollar amount in its row is the
// average sold price. Without markers every data row of the table is read.
func researchPrices(doc *goquery.Document) []decimal.Decimal {
	var out []decimal.Decimal

	seen := make(map[string]bool)
	doc.Find("span[data-item-id]").Each(func(_ int, span *goquery.Selection) {
		id, _ := span.Attr("data-item-id")
		if seen[id] {
			return
		}
		seen[id] = true

		row := span.Closest("tr")
		if row.Length() == 0 {
			row = span.Closest(`[class*="row"]`)
		}
		if row.Length() == 0 {
			return
		}
		if price, ok := rowPrice(row); ok {
			out = append(out, price)
		}
	})
	if len(out) > 0 {
		return out
	}

	rows := doc.Find("table tbody tr")
	if rows.Length() == 0 {
		rows = doc.Find("table tr")
	}

	processed := make(map[string]bool)
	rows.Each(func(_ int, row *goquery.Selection) {
		if row.Find("th").Length() > 0 {
			return
		}
		cells := row.Find("td")
		if cells.Length() == 0 {
			return
		}

		key := strings.TrimSpace(cells.First().Text())
		if r := []rune(key); len(r) > rowKeyLength {
			key = string(r[:rowKeyLength])
		}
		if processed[key] {
			return
		}
		processed[key] = true

		if price, ok := rowPrice(row); ok {
			out = append(out, price)
		}
	})
	return out
}

func rowPrice(row *goquery.Selection) (decimal.Decimal, bool) {
	m := dollarAmount.FindStringSubmatch(row.Text())
	if m == nil {
		return decimal.Zero, false
	}
	price, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", ""))
	if err != nil || price.LessThan(minResearchPrice) || !price.LessThan(domain.MaxSoldPrice) {
		return decimal.Zero, false
	}
	return price, true
}
