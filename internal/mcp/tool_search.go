package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/funcscrape/internal/search"
)

// SearchToolName is the MCP tool registered by AddSearchTool.
const SearchToolName = "search_functions"

// SearchRequest is the argument schema of the search_functions tool.
type SearchRequest struct {
	Query    string `json:"query" jsonschema:"required,description=Bleve query string"`
	Limit    int    `json:"limit,omitempty" jsonschema:"minimum=1,maximum=100,default=15"`
	Language string `json:"language,omitempty"`
}

// SearchResponse is the JSON body returned by the search_functions tool.
type SearchResponse struct {
	Query    string           `json:"query"`
	Results  []*search.Result `json:"results"`
	Total    int              `json:"total"`
	TookMs   int64            `json:"took_ms"`
	Language string           `json:"language,omitempty"`
}

// AddSearchTool registers the search_functions tool with an MCP server.
func AddSearchTool(s *server.MCPServer, searcher search.Searcher) {
	tool := mcp.NewTool(
		SearchToolName,
		mcp.WithDescription(`Full-text search over functions extracted from the corpus.

Supports bleve query syntax:
- Field scoping: name:parse, text:socket, file:http, language:python
- Boolean operators: AND, OR, NOT, +required, -excluded
- Phrase search: "return nil"
- Wildcards: pars* (prefix matching)
- Fuzzy: sokcet~1 (edit distance)

Unscoped terms search the function text (header and body).`),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Bleve query string")),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results to return (1-100, default: 15)")),
		mcp.WithString("language",
			mcp.Description("Restrict hits to one language, e.g. python, go, c")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createSearchHandler(searcher))
}

// createSearchHandler creates the handler function for the search_functions tool.
func createSearchHandler(searcher search.Searcher) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		startTime := time.Now()

		argsMap, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}

		var args SearchRequest
		var err error
		if args.Query, err = stringArg(argsMap, "query", true); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if args.Language, err = stringArg(argsMap, "language", false); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		args.Limit = limitArg(argsMap, "limit", search.DefaultLimit, search.MaxLimit)

		results, err := searcher.Search(ctx, args.Query, &search.Options{Limit: args.Limit, Language: args.Language})
		if err != nil {
			return nil, fmt.Errorf("search failed: %w", err)
		}

		response := &SearchResponse{
			Query:    args.Query,
			Results:  results,
			Total:    len(results),
			TookMs:   time.Since(startTime).Milliseconds(),
			Language: args.Language,
		}

		jsonData, err := json.Marshal(response)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response: %w", err)
		}

		// Return as text result (mcp-go convention)
		return mcp.NewToolResultText(string(jsonData)), nil
	}
}
