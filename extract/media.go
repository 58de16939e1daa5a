package extract

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/wikidex/models"
)

var (
	h1Sel             = sel("h1")
	moduleTitleSel    = sel("div.module-title")
	componentTitleSel = sel("div.component-title-wrapper")
	componentImgSel   = sel("div.component-content-inner img")
	emoticonImgSel    = sel("main > div.module-layout table img")
	textBlockSel      = sel("div.component-content-text")
	videoSel          = sel("video")
)

// WallpaperDetails extracts a wallpaper collection: one module per
// character, one component per wallpaper set.
func WallpaperDetails(doc *goquery.Document) (models.WallpaperDetails, error) {
	if _, err := requireMain(doc); err != nil {
		return models.WallpaperDetails{}, err
	}

	w := models.WallpaperDetails{Title: text(doc.FindMatcher(h1Sel).First())}
	doc.FindMatcher(moduleSel).Each(func(_ int, module *goquery.Selection) {
		group := models.CharacterWallpapers{
			CharacterName: text(module.FindMatcher(moduleTitleSel).First()),
		}
		module.ChildrenMatcher(containerSel).Children().Each(func(_ int, set *goquery.Selection) {
			urls := srcs(set.FindMatcher(componentImgSel))
			if len(urls) == 0 {
				return
			}
			group.Sets = append(group.Sets, models.WallpaperSet{
				Title: text(set.FindMatcher(componentTitleSel).First()),
				URLs:  urls,
			})
		})
		if len(group.Sets) > 0 {
			w.Groups = append(w.Groups, group)
		}
	})
	return w, nil
}

// EmoticonDetails extracts an emoticon pack page.
func EmoticonDetails(doc *goquery.Document) (models.EmoticonDetails, error) {
	if _, err := requireMain(doc); err != nil {
		return models.EmoticonDetails{}, err
	}
	return models.EmoticonDetails{
		Title: text(doc.FindMatcher(h1Sel).First()),
		URLs:  srcs(doc.FindMatcher(emoticonImgSel)),
	}, nil
}

// FanArtImages extracts the images of a fan-art post, in page order.
func FanArtImages(doc *goquery.Document) (models.FanArt, error) {
	blocks := doc.FindMatcher(textBlockSel)
	if blocks.Length() == 0 {
		return models.FanArt{}, missing("post body")
	}
	return models.FanArt{ImageURLs: srcs(blocks.FindMatcher(imgSel))}, nil
}

// VideoDetails extracts a video page. The <video> element is required; it
// is injected by the player script, so its absence means the page has not
// finished rendering.
func VideoDetails(doc *goquery.Document) (models.VideoDetails, error) {
	video := doc.FindMatcher(videoSel).First()
	if video.Length() == 0 {
		return models.VideoDetails{}, missing("video")
	}
	src := attr(video, "src")
	if src == "" {
		src = attr(video.FindMatcher(sourceSel), "src")
	}
	return models.VideoDetails{
		Title:        text(doc.FindMatcher(h1Sel).First()),
		VideoURL:     src,
		ThumbnailURL: attr(video, "poster"),
	}, nil
}

var sourceSel = sel("source")
