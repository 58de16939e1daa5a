package cleaner

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// applySelector compiles selector with cascadia and returns the concatenated
// outer HTML of all matched elements. ok is false when nothing matched.
func applySelector(doc *goquery.Document, selector string) (html string, ok bool, err error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return "", false, err
	}

	matches := doc.FindMatcher(sel)
	if matches.Length() == 0 {
		return "", false, nil
	}

	var buf strings.Builder
	for i := range matches.Nodes {
		h, err := goquery.OuterHtml(matches.Eq(i))
		if err != nil {
			return "", false, err
		}
		buf.WriteString(h)
	}
	return buf.String(), true, nil
}
