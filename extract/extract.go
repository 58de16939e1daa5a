// Package extract holds the extraction strategies that turn rendered wiki
// pages into typed records. Every strategy is a pure function of the
// document: optional fields that are absent come back as zero values, and
// only structurally required elements produce an error wrapping ErrMissing.
package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// ErrMissing reports that an element a strategy cannot work without is
// absent, usually because the page has not finished rendering or its
// layout changed.
var ErrMissing = errors.New("required element missing")

func missing(what string) error {
	return fmt.Errorf("%w: %s", ErrMissing, what)
}

// fullWidthColon separates keys from values in wiki tag and info cells.
const fullWidthColon = "："

var itemHrefRe = regexp.MustCompile(`/mc/item/(\d+)`)

// ItemID extracts the numeric item id from an item link, falling back to the
// raw href when it does not point at an item page.
//
//	"/mc/item/1429457793942482944?wkFrom=catalogue" -> "1429457793942482944"
func ItemID(href string) string {
	if m := itemHrefRe.FindStringSubmatch(href); m != nil {
		return m[1]
	}
	return href
}

// sel compiles a CSS selector once. Panics on a malformed selector, so every
// selector in this package is checked at init.
func sel(s string) cascadia.Selector {
	return cascadia.MustCompile(s)
}

// text returns the whitespace-normalised text of the selection.
func text(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}

// lines returns the text of the selection with each whitespace run turned
// into a newline.
func lines(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), "\n")
}

// attr returns the trimmed value of the first element's attribute.
func attr(s *goquery.Selection, name string) string {
	v, _ := s.First().Attr(name)
	return strings.TrimSpace(v)
}

// imageURL returns the lazy-load source of an image, falling back to src.
func imageURL(s *goquery.Selection) string {
	if v := attr(s, "data-src"); v != "" {
		return v
	}
	return attr(s, "src")
}

// srcs returns the non-empty src attributes of every matched element.
func srcs(s *goquery.Selection) []string {
	var out []string
	s.Each(func(_ int, img *goquery.Selection) {
		if v := imageURL(img); v != "" {
			out = append(out, v)
		}
	})
	return out
}

// splitPair splits "key：value" on the first full-width colon.
func splitPair(s string) (key, value string, ok bool) {
	key, value, ok = strings.Cut(s, fullWidthColon)
	if !ok {
		return s, "", false
	}
	return strings.TrimSpace(key), strings.TrimSpace(value), true
}

// requireMain returns the page's <main> element.
func requireMain(doc *goquery.Document) (*goquery.Selection, error) {
	main := doc.FindMatcher(mainSel)
	if main.Length() == 0 {
		return nil, missing("main")
	}
	return main.First(), nil
}

var mainSel = sel("main")
