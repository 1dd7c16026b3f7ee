package raml

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/ramltools/config"
	"github.com/erraggy/ramltools/document"
	"github.com/erraggy/ramltools/loader"
	"github.com/erraggy/ramltools/ramlerrors"
)

func testdataPath(parts ...string) string {
	return filepath.Join(append([]string{"..", "testdata"}, parts...)...)
}

func TestApplyOptions(t *testing.T) {
	t.Run("no input source", func(t *testing.T) {
		_, err := applyOptions()
		require.Error(t, err)
		assert.ErrorIs(t, err, ramlerrors.ErrConfig)
		assert.Contains(t, err.Error(), "must specify an input source")
	})

	t.Run("several input sources", func(t *testing.T) {
		_, err := applyOptions(WithFilePath("a.raml"), WithBytes([]byte("x")))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must specify exactly one input source")
	})

	t.Run("nil inputs", func(t *testing.T) {
		for name, opt := range map[string]Option{
			"reader":   WithReader(nil),
			"bytes":    WithBytes(nil),
			"document": WithDocument(nil),
		} {
			_, err := applyOptions(opt)
			var ce *ramlerrors.ConfigError
			require.ErrorAs(t, err, &ce, name)
			assert.Equal(t, name, ce.Option)
		}
	})

	t.Run("config and config file", func(t *testing.T) {
		_, err := applyOptions(WithFilePath("a.raml"), WithConfig(config.Default()), WithConfigFile("c.yaml"))
		assert.ErrorIs(t, err, ramlerrors.ErrConfig)
	})

	t.Run("valid", func(t *testing.T) {
		pc, err := applyOptions(WithFilePath("a.raml"), WithValidate(false), WithBaseDir("dir"))
		require.NoError(t, err)
		assert.Equal(t, "a.raml", *pc.filePath)
		assert.False(t, *pc.validate)
		assert.Equal(t, "dir", pc.baseDir)
	})
}

func TestParseWithOptionsFile(t *testing.T) {
	path := testdataPath("widgets.raml")
	result, err := ParseWithOptions(WithFilePath(path))
	require.NoError(t, err)

	assert.Equal(t, path, result.SourcePath)
	assert.Equal(t, "0.8", result.Version)
	assert.Equal(t, document.FragmentRoot, result.Fragment)
	require.NotNil(t, result.Root)
	assert.Nil(t, result.DataType)
	assert.Empty(t, result.Findings())
	assert.Equal(t, DocumentStats{
		PathCount:         2,
		MethodCount:       2,
		TraitCount:        1,
		ResourceTypeCount: 1,
	}, result.Stats)
}

func TestParseWithOptionsIncludes(t *testing.T) {
	check := func(t *testing.T, result *ParseResult) {
		t.Helper()
		widgets := result.Root.Resource("/widgets", "get")
		require.NotNil(t, widgets)
		assert.Equal(t, []string{"page", "limit"}, paramNames(widgets.QueryParams))
		schema, ok := widgets.Responses[0].Body[0].Schema.(*document.Map)
		require.True(t, ok, "named schema should resolve to the included JSON tree")
		assert.Equal(t, "object", document.GetString(schema, "type", ""))
		assert.Empty(t, result.Findings())
	}

	t.Run("file", func(t *testing.T) {
		result, err := ParseWithOptions(WithFilePath(testdataPath("includes", "api.raml")))
		require.NoError(t, err)
		check(t, result)
	})

	t.Run("reader with base dir", func(t *testing.T) {
		data, err := os.ReadFile(testdataPath("includes", "api.raml"))
		require.NoError(t, err)
		result, err := ParseWithOptions(
			WithReader(bytes.NewReader(data)),
			WithBaseDir(testdataPath("includes")),
		)
		require.NoError(t, err)
		assert.Equal(t, "bytes.raml", result.SourcePath)
		check(t, result)
	})
}

func TestParseWithOptionsValidate(t *testing.T) {
	src := []byte("#%RAML 0.8\nbaseUri: http://a\n/a:\n  get:\n")

	result, err := ParseWithOptions(WithBytes(src))
	require.Error(t, err, "validation is on by default")
	require.NotNil(t, result)
	var invalid *ramlerrors.InvalidDocumentError
	require.ErrorAs(t, err, &invalid)
	assert.Len(t, invalid.Errors, len(result.Findings()))
	assert.Equal(t, 1, result.Stats.FindingCount)

	result, err = ParseWithOptions(WithBytes(src), WithValidate(false))
	require.NoError(t, err)
	assert.Len(t, result.Findings(), 1)
}

func TestParseWithOptionsConfig(t *testing.T) {
	cfg := config.Default()
	cfg.ResponseCodes = []int{200}
	cfg.Validate = false

	result, err := ParseWithOptions(WithFilePath(testdataPath("widgets.raml")), WithConfig(cfg))
	require.NoError(t, err)
	require.Len(t, result.Findings(), 2, "reported for the resource type and for the resource")
	assert.Contains(t, result.Findings()[0].Message, "'429' not a valid HTTP response code")

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "ramltools.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("validate: false\ncustom:\n  media_types: [application/x-widget]\n"), 0o600))
	result, err = ParseWithOptions(
		WithBytes([]byte("#%RAML 0.8\ntitle: x\nmediaType: application/x-widget\n/a:\n  get:\n")),
		WithConfigFile(cfgPath),
	)
	require.NoError(t, err)
	assert.Empty(t, result.Findings())

	_, err = ParseWithOptions(WithBytes([]byte("#%RAML 0.8\ntitle: x\n")), WithConfigFile(filepath.Join(dir, "absent.yaml")))
	assert.ErrorIs(t, err, ramlerrors.ErrConfig)
}

func TestParseWithOptionsFragments(t *testing.T) {
	result, err := ParseWithOptions(WithFilePath(testdataPath("person.raml")))
	require.NoError(t, err)
	assert.Nil(t, result.Root)
	require.NotNil(t, result.DataType)
	assert.Equal(t, document.FragmentDataType, result.Fragment)
	assert.Empty(t, result.Findings())

	_, err = ParseWithOptions(WithBytes([]byte("#%RAML 1.0 Library\ntypes: {}\n")))
	assert.ErrorIs(t, err, ramlerrors.ErrFragment)

	_, err = ParseWithOptions(WithBytes([]byte("not raml")))
	assert.ErrorIs(t, err, ramlerrors.ErrLoad)
}

func TestParseWithOptionsDocument(t *testing.T) {
	doc, err := loader.New().LoadBytes([]byte("#%RAML 1.0\ntitle: Preloaded\n/a:\n  get:\n"))
	require.NoError(t, err)
	result, err := ParseWithOptions(WithDocument(doc))
	require.NoError(t, err)
	assert.Same(t, doc, result.Document)
	assert.Equal(t, "Preloaded", result.Root.Title)
}

func TestParseWithOptionsLogger(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	_, err := ParseWithOptions(
		WithFilePath(testdataPath("widgets.raml")),
		WithLogger(NewSlogAdapter(slog.New(handler))),
	)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "loaded RAML document")
	assert.Contains(t, out, "built resource")
	assert.Contains(t, out, "resolved document")
	assert.True(t, strings.Contains(out, "path=/widgets"), out)
}
