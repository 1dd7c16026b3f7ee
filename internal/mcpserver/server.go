// Package mcpserver implements an MCP (Model Context Protocol) server
// that exposes ramltools capabilities as MCP tools over stdio.
package mcpserver

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/ramltools"
)

const serverInstructions = `ramltools MCP server: resolves RAML 0.8 and 1.0 documents (traits, resource types, includes, URI parameters) and validates data against RAML types.

Configuration: All defaults are configurable via RAMLTOOLS_* environment variables set in your MCP client config.

Key settings:
- RAMLTOOLS_CONFIG: path to a YAML resolver config that extends the allowed media types, protocols, auth schemes, response codes and HTTP methods
- RAMLTOOLS_CACHE_FILE_TTL (default: 15m): cache TTL for local file documents
- RAMLTOOLS_CACHE_ENABLED (default: true): disable document caching entirely
- RAMLTOOLS_WALK_LIMIT (default: 100): default result limit for walk tools
- RAMLTOOLS_WALK_DETAIL_LIMIT (default: 25): default limit in detail mode

Caching: Parsed documents are cached per session. File entries use path+mtime as key (auto-invalidated on change). A background sweeper removes expired entries every 60s.`

// Run starts the MCP server over stdio and blocks until the client disconnects
// or the context is cancelled.
func Run(ctx context.Context) error {
	if cfg.CacheEnabled {
		specCache.startSweeper(ctx, cfg.CacheSweepInterval)
	}

	server := mcp.NewServer(
		&mcp.Implementation{Name: "ramltools", Version: ramltools.Version()},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	registerAllTools(server)
	return server.Run(ctx, &mcp.StdioTransport{})
}

func registerAllTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "parse",
		Description: "Parse and resolve a RAML document. Returns a structural summary: title, API version, RAML version, base URI, counts of resources, methods, traits, resource types, security schemes and types, plus the number of findings. For DataType fragments the summary names the fragment kind and type. Use walk_* tools to explore specific sections.",
	}, handleParse)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate",
		Description: "Validate a RAML document. Resolves every resource and method and returns the collected findings (invalid protocols, media types, response codes, parameter types, undefined security schemes and similar) with their document locations. Use offset/limit to paginate through results.",
	}, handleValidate)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "walk_resources",
		Description: "Walk and query resolved resources in a RAML document. Each result is one resource path and HTTP method with traits, resource type and security applied. Filter by path pattern, method, resource type, or trait. Path patterns support * (one segment) and ** (zero or more segments). Returns summaries by default or full resolved attributes (parameters, bodies, responses) with detail=true. Use group_by (method, type, trait or segment) to get distribution counts instead of individual items.",
	}, handleWalkResources)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "walk_types",
		Description: "Walk and query the data types declared in a RAML 1.0 document. Filter by name (supports * glob) or kind (object, array, string, number, integer, boolean, date, file, any). Returns summaries by default or facets and properties with detail=true. Use group_by=kind to get distribution counts.",
	}, handleWalkTypes)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "check_instance",
		Description: "Check a JSON value against a RAML data type. The type is either a named type declared in the document or, when the document is a DataType fragment, the fragment itself. Returns whether the value conforms and, when it does not, the position and reason of the first violation.",
	}, handleCheckInstance)
}

// paginate applies offset/limit pagination to a slice, returning the
// requested page. A non-positive limit defaults to cfg.WalkLimit.
func paginate[T any](items []T, offset, limit int) []T {
	if limit <= 0 {
		limit = cfg.WalkLimit
	}
	if limit > cfg.MaxLimit {
		limit = cfg.MaxLimit
	}
	if offset < 0 || offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end < offset || end > len(items) { // overflow or beyond slice
		end = len(items)
	}
	return items[offset:end]
}

// detailLimit returns a lower default limit for detail mode output.
// When the user hasn't specified an explicit limit (limit <= 0),
// detail mode defaults to cfg.WalkDetailLimit to keep output manageable.
func detailLimit(limit int) int {
	if limit <= 0 {
		return cfg.WalkDetailLimit
	}
	return limit
}

// makeSlice returns nil when n is 0 (preserving omitempty JSON semantics),
// otherwise returns make([]T, 0, n) for pre-allocated appending.
func makeSlice[T any](n int) []T {
	if n == 0 {
		return nil
	}
	return make([]T, 0, n)
}

// sanitizeError strips absolute filesystem paths from error messages
// to prevent leaking internal directory structure to MCP clients.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*)`)

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return pathPattern.ReplaceAllString(err.Error(), "<path>")
}

// errResult creates an MCP error result from an error.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}

// groupCount represents a single group in group_by results.
type groupCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// groupAndSort groups items by key, sorts by count descending (ties
// broken alphabetically by key), and returns the sorted groups.
func groupAndSort[T any](items []T, keyFn func(T) []string) []groupCount {
	counts := make(map[string]int)
	for _, item := range items {
		for _, key := range keyFn(item) {
			counts[key]++
		}
	}
	groups := make([]groupCount, 0, len(counts))
	for key, count := range counts {
		groups = append(groups, groupCount{Key: key, Count: count})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].Count != groups[j].Count {
			return groups[i].Count > groups[j].Count
		}
		return groups[i].Key < groups[j].Key
	})
	return groups
}

// validateGroupBy checks that group_by is a valid value and is not combined with detail.
func validateGroupBy(groupBy string, detail bool, allowed []string) error {
	if groupBy == "" {
		return nil
	}
	if detail {
		return fmt.Errorf("cannot use both group_by and detail")
	}
	for _, a := range allowed {
		if strings.EqualFold(groupBy, a) {
			return nil
		}
	}
	return fmt.Errorf("invalid group_by value %q; valid values: %s", groupBy, strings.Join(allowed, ", "))
}

// validateGlobPattern checks whether a glob pattern is syntactically valid.
// Call this once before a filter loop so matchGlobName never
// encounter an invalid pattern at match time.
func validateGlobPattern(pattern string) error {
	if pattern == "" || !strings.ContainsAny(pattern, "*?[") {
		return nil
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
	}
	return nil
}
