package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func refreshQuery(request mcp.CallToolRequest) url.Values {
	q := url.Values{}
	if request.GetBool("refresh", false) {
		q.Set("refresh", "true")
	}
	return q
}

// handleListCatalogue creates the handler for the list_catalogue tool.
func handleListCatalogue(c *client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		category, err := request.RequireString("category")
		if err != nil {
			return mcp.NewToolResultError("category is required"), nil
		}
		resp, err := c.do(ctx, http.MethodGet, "/api/v1/catalogue/"+url.PathEscape(category), refreshQuery(request))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(format("Catalogue: "+category, resp)), nil
	}
}

// handleListMedia creates the handler for the list_media tool.
func handleListMedia(c *client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		kind, err := request.RequireString("type")
		if err != nil {
			return mcp.NewToolResultError("type is required"), nil
		}
		path := "/api/v1/media/" + url.PathEscape(kind)
		if kind == "guides" {
			path = "/api/v1/guides"
		}
		resp, err := c.do(ctx, http.MethodGet, path, refreshQuery(request))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(format("Media: "+kind, resp)), nil
	}
}

// handleGetItem creates the handler for the get_item tool.
func handleGetItem(c *client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		kind, err := request.RequireString("kind")
		if err != nil {
			return mcp.NewToolResultError("kind is required"), nil
		}
		id, err := request.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError("id is required"), nil
		}
		path := "/api/v1/items/" + url.PathEscape(kind) + "/" + url.PathEscape(id)
		resp, err := c.do(ctx, http.MethodGet, path, refreshQuery(request))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(format(kind+" "+id, resp)), nil
	}
}

// handleClearCache creates the handler for the clear_cache tool.
func handleClearCache(c *client) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		q := url.Values{}
		if kind := request.GetString("kind", ""); kind != "" {
			q.Set("kind", kind)
		}
		if address := request.GetString("address", ""); address != "" {
			q.Set("address", address)
		}
		resp, err := c.do(ctx, http.MethodDelete, "/api/v1/cache", q)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		var counts map[string]int
		if err := json.Unmarshal(resp.Data, &counts); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse cache counts: %v", err)), nil
		}
		total := 0
		for _, n := range counts {
			total += n
		}
		return mcp.NewToolResultText("Cache cleared. Records still cached: " + strconv.Itoa(total)), nil
	}
}

// format renders a header line with cache provenance followed by the
// indented JSON payload.
func format(title string, resp *apiResponse) string {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, resp.Data, "", "  "); err != nil {
		// Fall back to raw JSON.
		pretty.Reset()
		pretty.Write(resp.Data)
	}

	header := title
	if resp.CacheStatus != "" {
		header += " (cache " + resp.CacheStatus
		if resp.FetchedAt != nil {
			header += ", fetched " + resp.FetchedAt.Format(time.RFC3339)
		}
		header += ")"
	}
	return header + "\n\n" + pretty.String()
}
