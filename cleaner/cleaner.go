package cleaner

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/wikidex/models"
)

// noise lists page chrome that never belongs to a strategy article.
var noise = []string{
	"header", "footer", "nav", "aside",
	"div.comment-wrapper", "div.side-bar", "div.download-bar",
}

// Cleaner reduces a rendered strategy page to Markdown.
//
//	Stage 1 (scope):       drop page chrome, keep <main> when present
//	Stage 2 (readability): extract the article body and metadata
//	Stage 3 (markdown):    convert the body to Markdown
//
// The converter is created once and reused (goroutine-safe).
type Cleaner struct {
	md *converter.Converter
}

// New creates a Cleaner.
func New() *Cleaner {
	return &Cleaner{md: newMarkdownConverter()}
}

// Article converts doc into a GuideArticle. source resolves relative links
// and may be nil, in which case doc.Url is used.
func (c *Cleaner) Article(doc *goquery.Document, source *url.URL) (models.GuideArticle, error) {
	if source == nil {
		source = doc.Url
	}
	if source == nil {
		return models.GuideArticle{}, errors.New("cleaner: no source URL")
	}

	// ── 1. Scope ────────────────────────────────────────────────────
	rawHTML, err := Scope(doc, "main", noise)
	if err != nil {
		return models.GuideArticle{}, fmt.Errorf("cleaner: scope: %w", err)
	}

	// ── 2. Readability ──────────────────────────────────────────────
	article, ok := extractArticle(rawHTML, source)
	title := strings.TrimSpace(article.Title)
	if !ok || title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}

	// ── 3. Markdown ─────────────────────────────────────────────────
	md, err := c.md.ConvertString(article.Content, converter.WithDomain(source.Scheme+"://"+source.Host))
	if err != nil {
		return models.GuideArticle{}, fmt.Errorf("cleaner: markdown conversion: %w", err)
	}
	md = strings.TrimSpace(md)

	return models.GuideArticle{
		Title:           title,
		Byline:          strings.TrimSpace(article.Byline),
		Excerpt:         strings.TrimSpace(article.Excerpt),
		Markdown:        md,
		EstimatedTokens: EstimateTokens(md),
	}, nil
}

// EstimateTokens provides a fast token count estimate.
//
// Heuristic: utf8 rune count / 2. Guide pages are mostly CJK, which averages
// ~1.5 chars/token, mixed with English terms and numbers.
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	if est := n / 2; est > 0 {
		return est
	}
	return 1
}
