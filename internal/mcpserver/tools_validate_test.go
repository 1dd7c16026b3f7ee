package mcpserver

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleValidate_ValidDocument(t *testing.T) {
	specCache.reset()
	result, output, err := handleValidate(context.Background(), &mcp.CallToolRequest{}, validateInput{
		Spec: specInput{File: filepath.Join(testdataDir, "library.raml")},
	})
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.True(t, output.Valid)
	assert.Equal(t, "1.0", output.Version)
	assert.Zero(t, output.ErrorCount)
	assert.Empty(t, output.Errors)
}

func TestHandleValidate_Findings(t *testing.T) {
	specCache.reset()
	input := validateInput{Spec: specInput{File: filepath.Join(testdataDir, "invalid", "findings.raml")}}

	result, output, err := handleValidate(context.Background(), &mcp.CallToolRequest{}, input)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.False(t, output.Valid)
	assert.Equal(t, "0.8", output.Version)
	assert.GreaterOrEqual(t, output.ErrorCount, 7)
	assert.Len(t, output.Errors, output.ErrorCount)

	messages := make([]string, 0, len(output.Errors))
	for _, e := range output.Errors {
		assert.NotEmpty(t, e.Kind)
		messages = append(messages, e.Message)
	}
	assert.Contains(t, messages, "RAML File does not define an API title.")

	t.Run("pagination", func(t *testing.T) {
		input := input
		input.Offset = 1
		input.Limit = 2
		_, page, err := handleValidate(context.Background(), &mcp.CallToolRequest{}, input)
		require.NoError(t, err)
		assert.Equal(t, output.ErrorCount, page.ErrorCount, "counts are reported before pagination")
		require.Len(t, page.Errors, 2)
		assert.Equal(t, 2, page.Returned)
		assert.Equal(t, output.Errors[1], page.Errors[0])
	})
}

func TestHandleValidate_LoadError(t *testing.T) {
	result, output, err := handleValidate(context.Background(), &mcp.CallToolRequest{}, validateInput{
		Spec: specInput{Content: "not raml"},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
	assert.Equal(t, validateOutput{}, output)
}
