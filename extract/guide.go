package extract

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/wikidex/models"
)

var (
	guideNameSel     = sel("div.name.text-ellipsis")
	guideDescSel     = sel("div.description")
	guideImageSel    = sel("div.role-images img")
	guideAttrSel     = sel("div.role-profile > div.main-info > div.left-attribute img")
	guideBriefSel    = sel("div.role-description")
	guideTagsSel     = sel("div.role-profile > div.role-tags > div")
	secondCellSel    = sel("tr > td:nth-child(2)")
	secondCellParSel = sel("tr > td:nth-child(2) > p")
)

// basicFlow keys an output-process paragraph that has no "step：" prefix.
const basicFlow = "基础流程"

// CharacterGuide extracts a character strategy page. Its modules are, in
// order: fighting style, skill point recommendation, core mechanism and
// output process (two tabs), echo set recommendation.
func CharacterGuide(doc *goquery.Document) (models.CharacterGuide, error) {
	main, err := requireMain(doc)
	if err != nil {
		return models.CharacterGuide{}, err
	}
	name := text(main.FindMatcher(guideNameSel).First())
	if name == "" {
		return models.CharacterGuide{}, missing("guide character name")
	}

	g := models.CharacterGuide{
		Name:              name,
		Description:       text(main.FindMatcher(guideDescSel).First()),
		ProfileImageURL:   attr(main.FindMatcher(guideImageSel), "src"),
		AttributeImageURL: attr(main.FindMatcher(guideAttrSel), "src"),
		Brief:             text(main.FindMatcher(guideBriefSel).First()),
	}

	main.FindMatcher(guideTagsSel).Each(func(_ int, tag *goquery.Selection) {
		if key, value, ok := splitPair(text(tag)); ok {
			if g.RoleTags == nil {
				g.RoleTags = make(map[string]string)
			}
			g.RoleTags[key] = value
		}
	})

	g.FightingStyles = fightingStyles(container(doc, 0).ChildrenMatcher(chainTableSel).First().FindMatcher(rowsSel))

	g.SkillPointRecommendation = text(container(doc, 1).FindMatcher(tableSel).First().FindMatcher(secondCellSel))

	mechanics := tabPanes(container(doc, 2))
	g.CoreMechanism = text(mechanics.Eq(0).FindMatcher(secondCellSel))
	mechanics.Eq(1).FindMatcher(secondCellParSel).Each(func(_ int, p *goquery.Selection) {
		line := text(p)
		if line == "" {
			return
		}
		if g.OutputProcess == nil {
			g.OutputProcess = make(map[string]string)
		}
		if key, value, ok := splitPair(line); ok {
			g.OutputProcess[key] = value
		} else {
			g.OutputProcess[basicFlow] = line
		}
	})

	tabPanes(container(doc, 3)).Eq(0).FindMatcher(rowsSel).Each(func(_ int, row *goquery.Selection) {
		cells := row.FindMatcher(cellSel)
		if cells.Length() < 2 {
			return
		}
		g.EchoSets = append(g.EchoSets, models.EchoSetRecommend{
			Name:             text(cells.Eq(0)),
			AttributeIconURL: attr(cells.Eq(0).FindMatcher(imgSel), "src"),
			IconURLs:         srcs(cells.Eq(1).FindMatcher(imgSel)),
			Description:      text(cells.Eq(1)),
		})
	})

	return g, nil
}
