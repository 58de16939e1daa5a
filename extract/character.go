package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/wikidex/models"
)

var (
	charNameSel      = sel("div.main-info div.name")
	charDescSel      = sel("div.main-info div.description")
	roleDescTitleSel = sel("div.role-profile div.role-description-title")
	roleDescSel      = sel("div.role-profile div.role-description")
	roleTagsSel      = sel("div.role-profile div.role-tags div")
	roleImagesSel    = sel("div.role-images img")
	profileTableSel  = sel("div.basic-component.component-size-small")
	statsTabsSel     = sel("div.tabs-component")
	chainTableSel    = sel("div.basic-component.component-size-large")
	skillTabSel      = sel("div.component-content-text")
	stageSel         = sel("div.component-content-inner > div")
	materialNameSel  = sel("p > a")
	materialIconSel  = sel("p img")
	trSel            = sel("tr")
)

// statLevels are the character levels of the statistics tabs, in tab order.
var statLevels = []int{1, 20, 40, 50, 60, 70, 80, 90}

// skillKinds names the skill introduction tabs, in tab order.
var skillKinds = []string{"常态攻击", "共鸣技能", "共鸣回路", "共鸣解放", "变奏技能", "延奏技能"}

// CharacterDetails extracts a resonator item page.
func CharacterDetails(doc *goquery.Document) (models.CharacterDetails, error) {
	if _, err := requireMain(doc); err != nil {
		return models.CharacterDetails{}, err
	}
	name := text(doc.FindMatcher(charNameSel).First())
	if name == "" {
		return models.CharacterDetails{}, missing("character name")
	}

	info := models.CharacterInfo{
		Name:                 name,
		Description:          text(doc.FindMatcher(charDescSel).First()),
		RoleDescriptionTitle: text(doc.FindMatcher(roleDescTitleSel).First()),
		RoleDescription:      text(doc.FindMatcher(roleDescSel).First()),
		RoleImages:           srcs(doc.FindMatcher(roleImagesSel)),
	}
	doc.FindMatcher(roleTagsSel).Each(func(_ int, tag *goquery.Selection) {
		if t := text(tag); t != "" {
			info.RoleTags = append(info.RoleTags, t)
		}
	})

	base := container(doc, 0)
	skills := container(doc, 1)

	return models.CharacterDetails{
		Info:           info,
		Profile:        characterProfile(base),
		Statistics:     characterStatistics(base),
		FightingStyles: fightingStyles(component(base, 3).FindMatcher(rowsSel)),
		Skills:         characterSkills(component(skills, 0)),
		ResonanceChain: resonanceChain(skills),
		Breakthroughs:  breakthroughs(component(skills, 2)),
	}, nil
}

func characterProfile(base *goquery.Selection) models.CharacterProfile {
	kv := make(map[string]string)
	pairRows(base.ChildrenMatcher(profileTableSel).First().FindMatcher(rowsSel), kv)
	return models.CharacterProfile{
		Identity:       kv["身份"],
		Affiliation:    kv["所属"],
		SpecialCuisine: kv["特殊料理"],
		ChineseCV:      kv["中文CV"],
		JapaneseCV:     kv["日文CV"],
		EnglishCV:      kv["英文CV"],
		KoreanCV:       kv["韩文CV"],
		ReleaseVersion: kv["实装版本"],
	}
}

// characterStatistics reads one table per level tab. Rows come in two
// shapes: "key value key value", and "key low high key value" where the
// first stat is a range.
func characterStatistics(base *goquery.Selection) map[int]map[string]string {
	stats := make(map[int]map[string]string)
	base.ChildrenMatcher(statsTabsSel).First().FindMatcher(bodySel).Each(func(i int, body *goquery.Selection) {
		if i >= len(statLevels) {
			return
		}
		level := make(map[string]string)
		body.Children().Each(func(_ int, row *goquery.Selection) {
			cells := row.FindMatcher(cellSel)
			switch cells.Length() {
			case 4:
				if k := text(cells.Eq(0)); k != "" {
					level[k] = text(cells.Eq(1))
				}
				if k := text(cells.Eq(2)); k != "" {
					level[k] = text(cells.Eq(3))
				}
			case 5:
				if k := text(cells.Eq(0)); k != "" {
					level[k] = text(cells.Eq(1)) + "-" + text(cells.Eq(2))
				}
				if k := text(cells.Eq(3)); k != "" {
					level[k] = text(cells.Eq(4))
				}
			}
		})
		if len(level) > 0 {
			stats[statLevels[i]] = level
		}
	})
	return stats
}

// fightingStyles reads rows of icon cell + two-paragraph cell.
func fightingStyles(rows *goquery.Selection) []models.FightingStyle {
	var out []models.FightingStyle
	rows.Each(func(_ int, row *goquery.Selection) {
		cells := row.FindMatcher(cellSel)
		if cells.Length() < 2 {
			return
		}
		ps := cells.Eq(1).ChildrenMatcher(pSel)
		name := text(ps.Eq(0))
		if name == "" {
			return
		}
		out = append(out, models.FightingStyle{
			IconURL:     attr(cells.Eq(0).FindMatcher(imgSel), "src"),
			Name:        name,
			Description: text(ps.Eq(1)),
		})
	})
	return out
}

// characterSkills reads the skill tabs. The first paragraph of a tab is the
// skill heading (name in <strong>, icon). A tab with a single following
// paragraph is a plain description; otherwise every following paragraph is
// a move: its first word is the move name, the rest its description.
func characterSkills(tabs *goquery.Selection) []models.Skill {
	var out []models.Skill
	tabs.FindMatcher(skillTabSel).Each(func(i int, tab *goquery.Selection) {
		if i >= len(skillKinds) {
			return
		}
		paragraphs := tab.ChildrenMatcher(pSel)
		if paragraphs.Length() == 0 {
			return
		}

		head := paragraphs.First()
		skill := models.Skill{
			Kind:    skillKinds[i],
			Name:    text(head.FindMatcher(strongSel).Last()),
			IconURL: attr(head.FindMatcher(imgSel), "src"),
		}
		if skill.Name == "" {
			skill.Name = text(head)
		}

		rest := paragraphs.Slice(1, goquery.ToEnd)
		if rest.Length() == 1 {
			skill.Description = lines(rest)
		} else {
			rest.Each(func(_ int, p *goquery.Selection) {
				words := strings.Fields(p.Text())
				if len(words) < 2 {
					return
				}
				if skill.Items == nil {
					skill.Items = make(map[string]string)
				}
				skill.Items[words[0]] = strings.Join(words[1:], "\n")
			})
		}
		out = append(out, skill)
	})
	return out
}

// resonanceChain reads the sequence node table, skipping its header row.
func resonanceChain(skills *goquery.Selection) []models.ResonanceChainNode {
	var out []models.ResonanceChainNode
	rows := skills.ChildrenMatcher(chainTableSel).First().FindMatcher(rowsSel)
	rows.Slice(1, goquery.ToEnd).Each(func(_ int, row *goquery.Selection) {
		cells := row.FindMatcher(cellSel)
		if cells.Length() < 2 {
			return
		}
		out = append(out, models.ResonanceChainNode{
			Name:        text(cells.Eq(0)),
			IconURL:     attr(cells.Eq(0).FindMatcher(imgSel), "src"),
			Description: lines(cells.Eq(1)),
		})
	})
	return out
}

// breakthroughs reads the ascension tabs. Each stage holds a level table
// (required level, level cap) and a material table whose cells read
// "<a>name</a> <img> x<count>".
func breakthroughs(tabs *goquery.Selection) []models.Breakthrough {
	var out []models.Breakthrough
	tabs.FindMatcher(stageSel).Each(func(i int, stage *goquery.Selection) {
		tables := stage.FindMatcher(tableSel)
		if tables.Length() < 2 {
			return
		}
		levels := tables.Eq(0).FindMatcher(trSel)
		b := models.Breakthrough{
			Stage:         i + 1,
			RequiredLevel: text(levels.Eq(0).FindMatcher(cellSel).Eq(1)),
			LevelCap:      text(levels.Eq(1).FindMatcher(cellSel).Eq(1)),
		}
		tables.Eq(1).FindMatcher(cellSel).Each(func(_ int, cell *goquery.Selection) {
			name := text(cell.FindMatcher(materialNameSel))
			if name == "" {
				return
			}
			b.Materials = append(b.Materials, models.Material{
				Name:    name,
				IconURL: attr(cell.FindMatcher(materialIconSel), "src"),
				Count:   materialCount(text(cell.FindMatcher(pSel))),
			})
		})
		out = append(out, b)
	})
	return out
}

// materialCount returns what follows the last "x" or "×" in s.
func materialCount(s string) string {
	i := strings.LastIndexAny(s, "x×")
	if i < 0 {
		return ""
	}
	_, size := utf8.DecodeRuneInString(s[i:])
	return strings.TrimSpace(s[i+size:])
}
