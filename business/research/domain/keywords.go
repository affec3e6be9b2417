package domain

import (
	"regexp"
	"strings"
)

// MaxHeuristicWords caps the keywords kept from a cleaned title.
const MaxHeuristicWords = 5

// noiseWords are listing boilerplate that never helps a sold search:
// condition grades, shipping terms and seller notes.
var noiseWords = []string{
	"コメントなし購入OK", "確実正規品", "保存袋付き", "値下げ不可", "最終値下げ",
	"早い者勝ち", "送料込み", "送料無料", "匿名配送", "即購入OK", "即購入可",
	"取り置き", "極美品", "超美品", "様専用", "送料込", "未使用", "正規品",
	"箱なし", "箱付き", "値下げ", "美品", "新品", "中古", "専用", "本物",
	"限定", "レア", "USED", "SALE",
}

var (
	noisePattern   = buildNoisePattern()
	bracketPattern = regexp.MustCompile(`[【】「」『』（）()［］\[\]｛｝{}]`)
	symbolPattern  = regexp.MustCompile(`[★☆◆◇●○■□▲△▼▽♪♫]`)
	punctPattern   = regexp.MustCompile(`[！!？?。、,・]`)
	spacePattern   = regexp.MustCompile(`\s+`)
)

func buildNoisePattern() *regexp.Regexp {
	alts := make([]string, 0, len(noiseWords)+2)
	for _, w := range noiseWords {
		alts = append(alts, regexp.QuoteMeta(w))
	}
	alts = append(alts, `\d+回使用`, `\d+回着用`)
	return regexp.MustCompile(`(?i)` + strings.Join(alts, "|"))
}

// HeuristicKeywords derives search keywords from a listing title without
// any external service: noise words, brackets and decorative symbols are
// removed and the first MaxHeuristicWords words are kept.
func HeuristicKeywords(title string) string {
	s := noisePattern.ReplaceAllString(title, " ")
	s = bracketPattern.ReplaceAllString(s, " ")
	s = symbolPattern.ReplaceAllString(s, "")
	s = punctPattern.ReplaceAllString(s, " ")
	s = strings.TrimSpace(spacePattern.ReplaceAllString(s, " "))

	words := strings.Fields(s)
	if len(words) > MaxHeuristicWords {
		words = words[:MaxHeuristicWords]
	}
	return strings.Join(words, " ")
}
