package extract

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/wikidex/cleaner"
	"github.com/use-agent/wikidex/models"
)

// GuideArticle returns a strategy that reduces a free-form strategy page to
// Markdown with c. Relative links resolve against the document URL.
func GuideArticle(c *cleaner.Cleaner) func(*goquery.Document) (models.GuideArticle, error) {
	return func(doc *goquery.Document) (models.GuideArticle, error) {
		if _, err := requireMain(doc); err != nil {
			return models.GuideArticle{}, err
		}
		a, err := c.Article(doc, nil)
		if err != nil {
			return models.GuideArticle{}, err
		}
		if a.Markdown == "" {
			return models.GuideArticle{}, missing("article body")
		}
		return a, nil
	}
}
