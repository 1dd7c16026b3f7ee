package mcpserver

import (
	"context"
	"encoding/json"
	"slices"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// petsAPI is a small RAML 1.0 API used across tool tests.
const petsAPI = `#%RAML 1.0
title: Pets API
version: v1
baseUri: https://api.example.com/{version}
mediaType: application/json
types:
  Pet:
    type: object
    properties:
      name:
        type: string
        minLength: 1
      age?:
        type: integer
        minimum: 0
  Dog:
    type: Pet
    properties:
      breed: string
traits:
  paged:
    queryParameters:
      page:
        type: integer
        default: 1
resourceTypes:
  collection:
    get:
      responses:
        200:
          body:
            application/json:
              type: <<item>>[]
/pets:
  type: { collection: { item: Pet } }
  get:
    is: [paged]
  post:
    body:
      application/json:
        type: Pet
  /{petId}:
    get:
      responses:
        200:
          body:
            application/json:
              type: Pet
/stores:
  get:
`

// startTestSession creates an in-process MCP server/client pair and returns
// the connected client session. The server is shut down when the test ends.
func startTestSession(t *testing.T) *mcp.ClientSession {
	t.Helper()

	server := mcp.NewServer(
		&mcp.Implementation{Name: "ramltools-test", Version: "test"},
		nil,
	)
	registerAllTools(server)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	done := make(chan error, 1)
	go func() {
		done <- server.Run(ctx, serverTransport)
	}()

	client := mcp.NewClient(
		&mcp.Implementation{Name: "test-client", Version: "test"},
		nil,
	)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = session.Close()
		cancel()
		<-done
	})

	return session
}

func TestIntegration_ListTools(t *testing.T) {
	session := startTestSession(t)

	result, err := session.ListTools(context.Background(), &mcp.ListToolsParams{})
	require.NoError(t, err)
	require.NotNil(t, result)

	names := make([]string, 0, len(result.Tools))
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
		assert.NotEmpty(t, tool.Description, "tool %q has empty description", tool.Name)
	}
	slices.Sort(names)
	assert.Equal(t, []string{"check_instance", "parse", "validate", "walk_resources", "walk_types"}, names)
}

func TestIntegration_CallTool_Validate(t *testing.T) {
	specCache.reset()
	session := startTestSession(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name: "validate",
		Arguments: map[string]any{
			"spec": map[string]any{"content": petsAPI},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsError, "validate should succeed on a valid document")

	structured := unmarshalStructured(t, result)
	assert.Equal(t, true, structured["valid"])
	assert.Equal(t, "1.0", structured["version"])
	assert.Equal(t, float64(0), structured["error_count"])
}

func TestIntegration_CallTool_Parse(t *testing.T) {
	specCache.reset()
	session := startTestSession(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name: "parse",
		Arguments: map[string]any{
			"spec": map[string]any{"content": petsAPI},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsError, "parse should succeed on a valid document")

	structured := unmarshalStructured(t, result)
	assert.Equal(t, "1.0", structured["raml_version"])
	assert.Equal(t, "Pets API", structured["title"])
	assert.Equal(t, float64(3), structured["path_count"])
	assert.Equal(t, float64(4), structured["method_count"])
	assert.Equal(t, float64(2), structured["type_count"])
}

func TestIntegration_CallTool_WalkResources(t *testing.T) {
	specCache.reset()
	session := startTestSession(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name: "walk_resources",
		Arguments: map[string]any{
			"spec":   map[string]any{"content": petsAPI},
			"method": "get",
		},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsError, "walk_resources should succeed")

	structured := unmarshalStructured(t, result)
	assert.Equal(t, float64(4), structured["total"])
	assert.Equal(t, float64(3), structured["matched"])

	summaries, ok := structured["summaries"].([]any)
	require.True(t, ok, "summaries should be an array")
	paths := make([]string, 0, len(summaries))
	for _, s := range summaries {
		m, ok := s.(map[string]any)
		require.True(t, ok, "expected summary to be map[string]any, got %T", s)
		paths = append(paths, m["path"].(string))
	}
	assert.Equal(t, []string{"/pets", "/pets/{petId}", "/stores"}, paths)
}

func TestIntegration_CallTool_CheckInstance(t *testing.T) {
	specCache.reset()
	session := startTestSession(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name: "check_instance",
		Arguments: map[string]any{
			"spec":     map[string]any{"content": petsAPI},
			"type":     "Pet",
			"instance": map[string]any{"name": "Rex", "age": -1},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.IsError)

	structured := unmarshalStructured(t, result)
	assert.Equal(t, false, structured["valid"])
	assert.Equal(t, "Pet.age", structured["position"])
}

func TestIntegration_CallTool_Error_InvalidSpec(t *testing.T) {
	session := startTestSession(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name: "validate",
		Arguments: map[string]any{
			"spec": map[string]any{
				"content": "this is not a RAML document",
			},
		},
	})
	require.NoError(t, err, "MCP protocol call should succeed even on tool error")
	require.NotNil(t, result)
	assert.True(t, result.IsError, "validate should return IsError for unparseable input")

	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "error content should be TextContent")
	assert.NotEmpty(t, text.Text)
}

func TestIntegration_CallTool_Error_MissingSpec(t *testing.T) {
	session := startTestSession(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name: "parse",
		Arguments: map[string]any{
			"spec": map[string]any{},
		},
	})
	require.NoError(t, err, "MCP protocol call should succeed even on tool error")
	require.NotNil(t, result)
	assert.True(t, result.IsError, "parse should return IsError when no document source is provided")
}

// unmarshalStructured extracts the structured output from a CallToolResult.
// It first checks StructuredContent, then falls back to parsing the first TextContent.
func unmarshalStructured(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()

	// Prefer structured content if available.
	if result.StructuredContent != nil {
		data, err := json.Marshal(result.StructuredContent)
		require.NoError(t, err)
		var m map[string]any
		require.NoError(t, json.Unmarshal(data, &m))
		return m
	}

	// Fall back to parsing text content.
	require.NotEmpty(t, result.Content, "expected at least one content item")
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])

	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &m), "failed to parse text content as JSON")
	return m
}
