package soldlistings

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/resale-pricer/business/research/domain"
	"github.com/fd1az/resale-pricer/internal/apperror"
)

func parseFixture(t *testing.T, source domain.Source, name string) []string {
	t.Helper()
	f, err := os.Open(filepath.Join("testdata", name))
	require.NoError(t, err)
	defer f.Close()

	prices, err := NewParser().Parse(context.Background(), source, f)
	require.NoError(t, err)
	return strs(prices)
}

func parseString(t *testing.T, source domain.Source, html string) []string {
	t.Helper()
	prices, err := NewParser().Parse(context.Background(), source, strings.NewReader(html))
	require.NoError(t, err)
	return strs(prices)
}

func strs(prices []decimal.Decimal) []string {
	out := make([]string, len(prices))
	for i, p := range prices {
		out[i] = p.String()
	}
	return out
}

func TestParse_EbayResultRows(t *testing.T) {
	// placeholder row skipped, range averaged, out of range and missing price ignored
	got := parseFixture(t, domain.SourceEbay, "ebay_sold.html")
	assert.Equal(t, []string{"1250", "980.5", "150"}, got)
}

func TestParse_EbayFirstRowWithLinkIsKept(t *testing.T) {
	html := `<ul>
	<li class="s-item"><a class="s-item__link" href="#">A</a><span class="s-item__price">$12.00</span></li>
	<li class="s-item"><a class="s-item__link" href="#">B</a><span class="s-item__price">$14.00</span></li>
	</ul>`
	assert.Equal(t, []string{"12", "14"}, parseString(t, domain.SourceEbay, html))
}

func TestParse_EbayLooseSpanFallback(t *testing.T) {
	// rows without prices fall through to stray price spans
	html := `<div class="s-item"><a class="s-item__link" href="#">A</a></div>
	<div class="s-item__price"><span>Sold</span><span>$45.00</span><span>$55.00</span></div>`
	assert.Equal(t, []string{"45", "55"}, parseString(t, domain.SourceEbay, html))
}

func TestParse_EbayPageTextFallback(t *testing.T) {
	html := `<html><body><p>Sold for $1,020.00 on Mar 3</p><p>Sold for $980.00</p><p>$5</p></body></html>`
	assert.Equal(t, []string{"1020", "980"}, parseString(t, domain.SourceEbay, html))
}

func TestParse_EbayNothingFound(t *testing.T) {
	assert.Empty(t, parseString(t, domain.SourceEbay, `<html><body>No exact matches found</body></html>`))
}

func TestParse_ResearchRows(t *testing.T) {
	// duplicate item ids counted once, prices under $1 ignored
	got := parseFixture(t, domain.SourceTerapeak, "terapeak_sold.html")
	assert.Equal(t, []string{"289.99", "1149"}, got)
}

func TestParse_ResearchClassRowContainer(t *testing.T) {
	html := `<div class="result-row"><span data-item-id="9">Camera</span><div>$310.00</div></div>`
	assert.Equal(t, []string{"310"}, parseString(t, domain.SourceTerapeak, html))
}

func TestParse_ResearchTableFallback(t *testing.T) {
	html := `<table>
	<tr><th>Listing</th><th>Price</th></tr>
	<tr><td>Leica M6 body</td><td>$2,450.00</td></tr>
	<tr><td>Leica M6 body</td><td>$2,600.00</td></tr>
	<tr><td>Leica strap</td><td>$35.50</td></tr>
	<tr><td>Leica cap</td><td>n/a</td></tr>
	</table>`
	// rows deduplicated by their first cell
	assert.Equal(t, []string{"2450", "35.5"}, parseString(t, domain.SourceTerapeak, html))
}

func TestParse_UnknownSource(t *testing.T) {
	_, err := NewParser().Parse(context.Background(), domain.Source("mercari"), strings.NewReader("<html></html>"))
	assert.Equal(t, apperror.CodeInvalidInput, apperror.GetCode(err))
}
