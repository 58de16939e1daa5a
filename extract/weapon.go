package extract

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/wikidex/models"
)

var tdSpanSel = sel("td span")

// WeaponDetails extracts a weapon item page.
//
// The first component is the base table: its first row holds the weapon
// image, the rest are key/value rows. The second component is the
// description table, made of either three-paragraph rows (title, blank,
// content) or single-span "key：value" rows.
func WeaponDetails(doc *goquery.Document) (models.WeaponDetails, error) {
	if _, err := requireMain(doc); err != nil {
		return models.WeaponDetails{}, err
	}

	c := container(doc, 0)
	baseRows := component(c, 0).FindMatcher(rowsSel)
	if baseRows.Length() == 0 {
		return models.WeaponDetails{}, missing("weapon base table")
	}

	w := models.WeaponDetails{
		ImageURL:    attr(baseRows.First().FindMatcher(imgSel), "src"),
		BaseInfo:    make(map[string]string),
		Description: make(map[string]string),
	}
	pairRows(baseRows.Slice(1, goquery.ToEnd), w.BaseInfo)

	component(c, 1).FindMatcher(rowsSel).Each(func(_ int, row *goquery.Selection) {
		ps := row.FindMatcher(cellSel).ChildrenMatcher(pSel)
		switch {
		case ps.Length() == 3:
			if title := text(ps.Eq(0)); title != "" {
				w.Description[title] = text(ps.Eq(2))
			}
		case row.FindMatcher(tdSpanSel).Length() == 1:
			line := text(row)
			if key, value, ok := splitPair(line); ok {
				w.Description[key] = value
			} else if line != "" {
				w.Description[line] = line
			}
		}
	})

	return w, nil
}
