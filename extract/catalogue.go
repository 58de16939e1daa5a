package extract

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/wikidex/models"
)

const unknownName = "Unknown"

var (
	cardSel      = sel("div.entry-wrapper")
	cardLinkSel  = sel("a")
	cardNameSel  = sel("div.card-footer-inner")
	cardTitleSel = sel("div.card-footer")
	cardAttrSel  = sel("div.card-skill-attr-icon > img")
	cardImageSel = sel("div.card-content-inner > img")
	cardCoverSel = sel("div.card-content-inner img")
)

// CatalogueEntries extracts the cards of an encyclopedia list page.
// A page without any card has not rendered its list and is an error.
func CatalogueEntries(doc *goquery.Document) ([]models.CatalogueEntry, error) {
	cards := doc.FindMatcher(cardSel)
	if cards.Length() == 0 {
		return nil, missing("catalogue cards")
	}

	entries := make([]models.CatalogueEntry, 0, cards.Length())
	cards.Each(func(_ int, card *goquery.Selection) {
		name := text(card.FindMatcher(cardNameSel))
		if name == "" {
			name = unknownName
		}
		entries = append(entries, models.CatalogueEntry{
			Name:             name,
			ItemID:           ItemID(attr(card.FindMatcher(cardLinkSel), "href")),
			ImageURL:         imageURL(card.FindMatcher(cardImageSel)),
			AttributeIconURL: attr(card.FindMatcher(cardAttrSel), "src"),
		})
	})
	return entries, nil
}

// MediaEntries extracts the cards of a media or strategy guide collection.
func MediaEntries(doc *goquery.Document) ([]models.MediaEntry, error) {
	cards := doc.FindMatcher(cardSel)
	if cards.Length() == 0 {
		return nil, missing("collection cards")
	}

	entries := make([]models.MediaEntry, 0, cards.Length())
	cards.Each(func(_ int, card *goquery.Selection) {
		entries = append(entries, models.MediaEntry{
			Title:    text(card.FindMatcher(cardTitleSel)),
			CoverURL: imageURL(card.FindMatcher(cardCoverSel)),
			ItemID:   ItemID(attr(card.FindMatcher(cardLinkSel), "href")),
		})
	})
	return entries, nil
}
