package models

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// DefaultBaseURL is the wiki origin every catalogue address is built from.
const DefaultBaseURL = "https://wiki.kurobbs.com"

const (
	catalogueFID = 1099
	mediaFID     = 1292
	guideFID     = 1322
)

// Category is a catalogue section of the encyclopedia.
type Category struct {
	Slug  string `json:"slug"`
	Label string `json:"label"`
	SID   int    `json:"sid"`
}

// Categories lists the encyclopedia sections in display order.
var Categories = []Category{
	{Slug: "characters", Label: "共鸣者", SID: 1105},
	{Slug: "weapons", Label: "武器", SID: 1106},
	{Slug: "weapon-projections", Label: "武器投影", SID: 1315},
	{Slug: "echoes", Label: "声骸", SID: 1107},
	{Slug: "resonance-effects", Label: "合鸣效果", SID: 1219},
	{Slug: "enemies", Label: "敌人", SID: 1158},
	{Slug: "holographic-strategy", Label: "全息战略", SID: 1313},
	{Slug: "craftable-items", Label: "可合成道具", SID: 1264},
	{Slug: "crafting-blueprints", Label: "道具合成图纸", SID: 1265},
	{Slug: "special-items", Label: "特殊道具", SID: 1223},
	{Slug: "supplies", Label: "补给", SID: 1217},
	{Slug: "resources", Label: "资源", SID: 1161},
	{Slug: "materials", Label: "素材", SID: 1218},
	{Slug: "journey-stamps", Label: "羁旅印章", SID: 1350},
	{Slug: "avatars", Label: "头像", SID: 1363},
}

// MediaTypes lists the media collections in display order.
var MediaTypes = []Category{
	{Slug: "fan-art", Label: "同人绘画", SID: 1343},
	{Slug: "emoticons", Label: "表情包", SID: 1344},
	{Slug: "wallpapers", Label: "壁纸合集", SID: 1342},
	{Slug: "version-pv", Label: "版本PV", SID: 1348},
	{Slug: "character-pv", Label: "共鸣者PV", SID: 1339},
	{Slug: "combat-demo", Label: "共鸣者战斗演示", SID: 1340},
	{Slug: "story-animation", Label: "剧情动画", SID: 1347},
	{Slug: "radio-ep", Label: "先约电台EP", SID: 1341},
	{Slug: "radio-ost", Label: "先约电台OST", SID: 1346},
	{Slug: "other-media", Label: "其他影音", SID: 1286},
}

// LookupCategory finds a catalogue category by slug.
func LookupCategory(slug string) (Category, bool) {
	return lookup(Categories, slug)
}

// LookupMediaType finds a media collection by slug.
func LookupMediaType(slug string) (Category, bool) {
	return lookup(MediaTypes, slug)
}

func lookup(list []Category, slug string) (Category, bool) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	for _, c := range list {
		if c.Slug == slug {
			return c, true
		}
	}
	return Category{}, false
}

// Slugs returns the sorted slugs of list, for help text and error messages.
func Slugs(list []Category) []string {
	out := make([]string, len(list))
	for i, c := range list {
		out[i] = c.Slug
	}
	sort.Strings(out)
	return out
}

// Addresses builds fetch addresses relative to a wiki origin.
type Addresses struct {
	Base string
}

// NewAddresses returns an Addresses for base, falling back to DefaultBaseURL.
func NewAddresses(base string) Addresses {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return Addresses{Base: base}
}

// Catalogue returns the list page address for an encyclopedia category.
func (a Addresses) Catalogue(c Category) string {
	return fmt.Sprintf("%s/mc/catalogue/list?fid=%d&sid=%d", a.Base, catalogueFID, c.SID)
}

// Media returns the list page address for a media collection.
func (a Addresses) Media(c Category) string {
	return fmt.Sprintf("%s/mc/catalogue/list?fid=%d&sid=%d", a.Base, mediaFID, c.SID)
}

// Guides returns the strategy guide collection address.
func (a Addresses) Guides() string {
	return fmt.Sprintf("%s/mc/catalogue/list?fid=%d", a.Base, guideFID)
}

// Item returns the detail page address for an item id.
func (a Addresses) Item(itemID string) string {
	return a.Base + "/mc/item/" + url.PathEscape(itemID)
}
