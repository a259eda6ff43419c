// Package mediaserver registers the media search tool on an MCP server.
package mediaserver

import (
	"context"
	"errors"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_media/internal/engine"
)

// Searcher runs one aggregation. *engine.Aggregator satisfies it.
type Searcher interface {
	Aggregate(ctx context.Context, query string) (engine.SearchOutput, error)
}

// RegisterTools registers media_search on the given MCP server.
func RegisterTools(server *mcp.Server, searcher Searcher) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "media_search",
		Description: "Search images (DuckDuckGo), web links (DuckDuckGo HTML) and videos (YouTube) for a keyword. Returns one deduplicated list of up to 60 results: images first with a video every third slot, links last.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, searchHandler(searcher))
}

func searchHandler(searcher Searcher) mcp.ToolHandlerFor[engine.SearchInput, engine.SearchOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input engine.SearchInput) (*mcp.CallToolResult, engine.SearchOutput, error) {
		out, err := searcher.Aggregate(ctx, input.Query)
		if err != nil {
			if errors.Is(err, engine.ErrEmptyQuery) {
				return nil, engine.SearchOutput{}, errors.New("query is required")
			}
			slog.Error("media_search failed", slog.String("query", input.Query), slog.Any("error", err))
			return nil, engine.SearchOutput{}, err
		}
		return nil, out, nil
	}
}
