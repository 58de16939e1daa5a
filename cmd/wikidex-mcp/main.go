package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/use-agent/wikidex/models"
	"github.com/use-agent/wikidex/wiki"
)

func main() {
	apiURL := strings.TrimRight(os.Getenv("WIKIDEX_API_URL"), "/")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	c := newClient(apiURL, os.Getenv("WIKIDEX_API_KEY"))

	s := server.NewMCPServer(
		"wikidex",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	listCatalogueTool := mcp.NewTool("list_catalogue",
		mcp.WithDescription("List the entries of a Wuthering Waves wiki encyclopedia category (characters, weapons, echoes, ...). Each entry has a name and an item_id usable with get_item."),
		mcp.WithString("category",
			mcp.Required(),
			mcp.Description("Catalogue category slug"),
			mcp.Enum(models.Slugs(models.Categories)...),
		),
		mcp.WithBoolean("refresh",
			mcp.Description("Re-render the page instead of using the cached list (default: false)"),
		),
	)
	s.AddTool(listCatalogueTool, handleListCatalogue(c))

	listMediaTool := mcp.NewTool("list_media",
		mcp.WithDescription("List a media collection (wallpapers, emoticons, PVs, fan art, ...) or, with type 'guides', the strategy guide collection."),
		mcp.WithString("type",
			mcp.Required(),
			mcp.Description("Media collection slug, or 'guides'"),
			mcp.Enum(append(models.Slugs(models.MediaTypes), "guides")...),
		),
		mcp.WithBoolean("refresh",
			mcp.Description("Re-render the page instead of using the cached list (default: false)"),
		),
	)
	s.AddTool(listMediaTool, handleListMedia(c))

	getItemTool := mcp.NewTool("get_item",
		mcp.WithDescription("Fetch a wiki item page as structured JSON: weapon stats, character skills and ascension materials, strategy guides, wallpapers, emoticons, fan art, videos, or a free-form article rendered as Markdown."),
		mcp.WithString("kind",
			mcp.Required(),
			mcp.Description("How to read the page"),
			mcp.Enum(wiki.ItemKinds...),
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Numeric item id, as returned by list_catalogue or list_media"),
		),
		mcp.WithBoolean("refresh",
			mcp.Description("Re-render the page instead of using the cached record (default: false)"),
		),
	)
	s.AddTool(getItemTool, handleGetItem(c))

	clearCacheTool := mcp.NewTool("clear_cache",
		mcp.WithDescription("Drop cached pages so the next request re-renders them. Without arguments every cache is cleared."),
		mcp.WithString("kind",
			mcp.Description("Only clear this cache (catalogue, media, or an item kind)"),
		),
		mcp.WithString("address",
			mcp.Description("Only clear this page address; requires kind"),
		),
	)
	s.AddTool(clearCacheTool, handleClearCache(c))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}
