package cleaner

import (
	"github.com/PuerkitoBio/goquery"
)

// Scope returns the outer HTML of the elements matching keep, after removing
// every element matching one of drop. doc is not modified.
//
// If keep matches nothing the whole document (minus dropped elements) is
// returned, so downstream processing still has something to work with.
func Scope(doc *goquery.Document, keep string, drop []string) (string, error) {
	clone := goquery.CloneDocument(doc)

	for _, selector := range drop {
		clone.Find(selector).Remove()
	}

	if keep != "" {
		if scoped, ok, err := applySelector(clone, keep); err != nil {
			return "", err
		} else if ok {
			return scoped, nil
		}
	}
	return clone.Html()
}
