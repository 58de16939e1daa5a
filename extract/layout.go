package extract

import (
	"github.com/PuerkitoBio/goquery"
)

// Item pages are laid out as a column of modules, each holding a container
// of components (basic tables, tab groups, text blocks):
//
//	main > div.module-layout > div            module
//	  div.component-container                 container
//	    div.basic-component | div.tabs-component
var (
	moduleSel    = sel("main > div.module-layout > div")
	containerSel = sel("div.component-container")
	rowsSel      = sel("table > tbody > tr")
	bodySel      = sel("table > tbody")
	tableSel     = sel("table")
	cellSel      = sel("td")
	imgSel       = sel("img")
	pSel         = sel("p")
	strongSel    = sel("strong")
	tabPaneSel   = sel("div.component-content-tabs-component > div > div")
)

// container returns the component container of the i-th module.
func container(doc *goquery.Document, i int) *goquery.Selection {
	return doc.FindMatcher(moduleSel).Eq(i).ChildrenMatcher(containerSel).First()
}

// component returns the i-th component of a container.
func component(c *goquery.Selection, i int) *goquery.Selection {
	return c.Children().Eq(i)
}

// tabPanes returns the panes of the first tab group under s.
func tabPanes(s *goquery.Selection) *goquery.Selection {
	return s.FindMatcher(tabPaneSel)
}

// pairRows collects two-cell table rows into a map. When the value cell has
// no text its image source is used instead.
func pairRows(rows *goquery.Selection, out map[string]string) {
	rows.Each(func(_ int, row *goquery.Selection) {
		cells := row.FindMatcher(cellSel)
		if cells.Length() != 2 {
			return
		}
		key := text(cells.Eq(0))
		if key == "" {
			return
		}
		value := text(cells.Eq(1))
		if value == "" {
			value = attr(cells.Eq(1).FindMatcher(imgSel), "src")
		}
		out[key] = value
	})
}
