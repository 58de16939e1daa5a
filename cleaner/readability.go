package cleaner

import (
	"log/slog"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// minContentLength is the minimum TextContent length (in characters) for
// readability output to be considered valid. Below this threshold we assume
// the algorithm failed to locate the main content.
const minContentLength = 50

// extractArticle runs the Mozilla Readability algorithm on rawHTML.
//
// Guide pages are table-heavy and readability sometimes discards them, so on
// error or a too-short result the scoped HTML itself becomes the content.
// ok reports whether readability's output was used.
func extractArticle(rawHTML string, source *url.URL) (article readability.Article, ok bool) {
	article, err := readability.FromReader(strings.NewReader(rawHTML), source)
	if err != nil {
		slog.Warn("readability: extraction failed, using scoped HTML",
			"url", source.String(), "error", err,
		)
		return readability.Article{Content: rawHTML}, false
	}

	if n := len(strings.TrimSpace(article.TextContent)); n < minContentLength {
		slog.Debug("readability: extracted content too short, using scoped HTML",
			"url", source.String(), "length", n,
		)
		return readability.Article{
			Title:   article.Title,
			Byline:  article.Byline,
			Excerpt: article.Excerpt,
			Content: rawHTML,
		}, false
	}

	return article, true
}
