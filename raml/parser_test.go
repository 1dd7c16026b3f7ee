package raml

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erraggy/ramltools/datatype"
	"github.com/erraggy/ramltools/document"
	"github.com/erraggy/ramltools/loader"
	"github.com/erraggy/ramltools/ramlerrors"
)

// parseString resolves src with validation mode off, so findings are
// inspected on the returned root.
func parseString(t *testing.T, src string) (*RootNode, error) {
	t.Helper()
	doc, err := loader.New().LoadBytes([]byte(src))
	require.NoError(t, err)
	p := New()
	p.Config.Validate = false
	return p.Parse(doc)
}

func mustParse(t *testing.T, src string) *RootNode {
	t.Helper()
	root, err := parseString(t, src)
	require.NoError(t, err)
	require.NotNil(t, root)
	return root
}

func mustParseFile(t *testing.T, name string) *RootNode {
	t.Helper()
	doc, err := loader.New().Load(filepath.Join("..", "testdata", name))
	require.NoError(t, err)
	p := New()
	p.Config.Validate = false
	root, err := p.Parse(doc)
	require.NoError(t, err)
	return root
}

func findingMessages(root *RootNode) []string {
	var out []string
	for _, f := range root.Errors() {
		out = append(out, f.Message)
	}
	return out
}

func assertFinding(t *testing.T, root *RootNode, substr string) {
	t.Helper()
	for _, msg := range findingMessages(root) {
		if strings.Contains(msg, substr) {
			return
		}
	}
	assert.Failf(t, "finding not reported", "no finding contains %q; got %v", substr, findingMessages(root))
}

func responseCodes(responses []*Response) []int {
	out := make([]int, 0, len(responses))
	for _, r := range responses {
		out = append(out, r.Code)
	}
	return out
}

func TestParseWidgets(t *testing.T) {
	root := mustParseFile(t, "widgets.raml")

	assert.Equal(t, "0.8", root.RAMLVersion)
	assert.Equal(t, "Widgets API", root.Title)
	assert.Equal(t, "https://api.example.com/v1", root.BaseURI)
	assert.Equal(t, []string{"HTTPS"}, root.Protocols)
	assert.Equal(t, filepath.Join("..", "testdata", "widgets.raml"), root.SourcePath)
	assert.Empty(t, root.BaseURIParams, "version is never a parameter")
	assert.Empty(t, root.Errors())
	assert.NoError(t, root.Err())
	require.Len(t, root.Resources, 2)

	widgets := root.Resource("/widgets", "get")
	require.NotNil(t, widgets)
	assert.Same(t, root.Resources[0], widgets)
	assert.Equal(t, "base", widgets.TypeName)
	assert.Equal(t, []string{"paged"}, widgets.Is)
	assert.Equal(t, "application/json", widgets.MediaType)
	assert.Equal(t, "https://api.example.com/v1/widgets", widgets.AbsoluteURI)
	assert.Same(t, root, widgets.Root())

	require.Len(t, widgets.QueryParams, 1)
	page := widgets.QueryParams[0]
	assert.Equal(t, "page", page.Name)
	assert.Equal(t, "integer", page.Type)
	assert.Equal(t, QueryParam, page.Kind)
	assert.False(t, page.Required)
	require.NotNil(t, page.Minimum)
	assert.Equal(t, 1.0, *page.Minimum)

	assert.Equal(t, []int{200, 429}, responseCodes(widgets.Responses))
	ok := widgets.Responses[0]
	require.Len(t, ok.Body, 1)
	assert.Equal(t, "application/json", ok.Body[0].MimeType)
	assert.Equal(t, "[]", ok.Body[0].Example)
	limited := widgets.Responses[1]
	assert.Equal(t, "Rate limit exceeded", limited.Description)
	require.Len(t, limited.Headers, 1)
	assert.Equal(t, "X-RateLimit-Limit", limited.Headers[0].Name)
	assert.Equal(t, HeaderParam, limited.Headers[0].Kind)
	assert.Equal(t, "get", limited.Headers[0].Method)
	assert.False(t, limited.Headers[0].Required)

	require.NotNil(t, widgets.ResourceType)
	assert.Equal(t, "base", widgets.ResourceType.Name)
	assert.True(t, widgets.ResourceType.Optional)
	require.Len(t, widgets.Traits, 1)
	assert.Equal(t, "paged", widgets.Traits[0].Name)

	byID := root.Resource("/widgets/{id}", "get")
	require.NotNil(t, byID)
	assert.Same(t, widgets, byID.Parent)
	assert.Equal(t, []*ResourceNode{byID}, widgets.Children)
	assert.Equal(t, "/{id}", byID.Name)
	require.Len(t, byID.URIParams, 1)
	assert.Equal(t, "id", byID.URIParams[0].Name)
	assert.Equal(t, "string", byID.URIParams[0].Type)
	assert.True(t, byID.URIParams[0].Required)
	assert.Equal(t, []int{200}, responseCodes(byID.Responses))
	assert.Equal(t, "https://api.example.com/v1/widgets/{id}", byID.AbsoluteURI)
	assert.Empty(t, byID.QueryParams, "traits are not inherited from the parent")
}

func TestParseLibrary(t *testing.T) {
	root := mustParseFile(t, "library.raml")

	assert.Equal(t, "1.0", root.RAMLVersion)
	assert.Equal(t, "https://{region}.example.com/v2", root.BaseURI)
	assert.Equal(t, []string{"HTTP", "HTTPS"}, root.Protocols)
	assert.Empty(t, findingMessages(root))

	require.Len(t, root.BaseURIParams, 1)
	assert.Equal(t, "region", root.BaseURIParams[0].Name)
	assert.Equal(t, "us", root.BaseURIParams[0].Default)
	assert.Equal(t, []any{"eu", "us"}, root.BaseURIParams[0].Enum)

	require.Len(t, root.Types, 1)
	book := root.Types[0]
	assert.Equal(t, "Book", book.Info().Name)
	assert.Equal(t, datatype.KindObject, book.Kind())
	assert.Same(t, book, mustLookup(t, root.TypeRegistry, "Book"))

	require.Len(t, root.SecuritySchemes, 1)
	oauth := root.SecuritySchemes[0]
	assert.Equal(t, "OAuth 2.0", oauth.Type)
	assert.Equal(t, "https://auth.example.com/token", document.GetString(oauth.Settings, "accessTokenUri", ""))
	require.Len(t, oauth.Headers, 1)
	assert.Equal(t, "Authorization", oauth.Headers[0].Name)

	books := root.Resource("/books", "get")
	require.NotNil(t, books)
	assert.Nil(t, root.Resource("/books", "post"), "resource type methods are not added to the resource")
	assert.Equal(t, "collection", books.TypeName)
	assert.Equal(t, "All books", books.Description)
	assert.Equal(t, []string{"searchable"}, books.Is)
	assert.Equal(t, []string{"oauth"}, books.SecuredBy)
	require.Len(t, books.SecuritySchemes, 1)
	assert.Same(t, oauth, books.SecuritySchemes[0])
	assert.Equal(t, "https://{region}.example.com/v2/books", books.AbsoluteURI)
	assert.Equal(t, []string{"region"}, paramNames(books.BaseURIParams))

	require.Len(t, books.QueryParams, 1)
	q := books.QueryParams[0]
	assert.Equal(t, "q", q.Name)
	assert.Equal(t, "Search books by title", q.Description)
	require.NotNil(t, q.DataType)
	assert.Equal(t, datatype.KindString, q.DataType.Kind())

	assert.Equal(t, []int{200, 500}, responseCodes(books.Responses))
	list := books.Responses[0].Body
	require.Len(t, list, 1)
	require.NotNil(t, list[0].DataType)
	assert.Equal(t, datatype.KindArray, list[0].DataType.Kind())
	assert.NoError(t, datatype.Validate(list[0].DataType,
		[]any{map[string]any{"title": "Dune", "isbn": "978-0441013593"}}, "books"))
	err := datatype.Validate(list[0].DataType, []any{map[string]any{"title": "Dune", "isbn": "x"}}, "books")
	assert.ErrorIs(t, err, ramlerrors.ErrDataTypeValidation)

	byISBN := root.Resource("/books/{isbn}", "get")
	require.NotNil(t, byISBN)
	require.Len(t, byISBN.URIParams, 1)
	assert.Equal(t, "^[0-9-]+$", byISBN.URIParams[0].Pattern)
	assert.True(t, byISBN.URIParams[0].Required)
	assert.Equal(t, []string{"oauth"}, byISBN.SecuredBy, "securedBy is inherited")

	collectionGet := root.ResourceType("collection", "get")
	require.NotNil(t, collectionGet)
	assert.Equal(t, "base", collectionGet.TypeName)
	assert.Equal(t, "a collection of <<resourcePathName>>", collectionGet.Usage)
	assert.Equal(t, []string{"searchable"}, collectionGet.Is)
	assert.NotNil(t, root.ResourceType("collection", "post"))
	assert.Nil(t, root.ResourceType("collection", "delete"))
}

func mustLookup(t *testing.T, r *datatype.Registry, name string) datatype.DataType {
	t.Helper()
	dt, ok := r.Lookup(name)
	require.True(t, ok, "type %s not registered", name)
	return dt
}

func TestParseDuplicateTraitAssignment(t *testing.T) {
	root := mustParse(t, `#%RAML 0.8
title: Dedup
traits:
  - paged:
      queryParameters:
        page:
          type: integer
/items:
  get:
    is: [paged, paged]
`)
	items := root.Resource("/items", "get")
	require.NotNil(t, items)
	assert.Equal(t, []string{"paged"}, items.Is)
	assert.Len(t, items.Traits, 1)
	assert.Len(t, items.QueryParams, 1)
	assert.Empty(t, root.Errors())
}

func TestParseParametersNamedAfterMethods(t *testing.T) {
	root := mustParse(t, `#%RAML 0.8
title: Items
traits:
  - filtered:
      queryParameters:
        options:
          type: string
        head:
          type: boolean
resourceTypes:
  - listing:
      headers:
        post:
          type: string
      get?:
        queryParameters:
          delete:
            description: from the type
/items:
  type: listing
  is: [filtered]
  queryParameters:
    delete:
      type: boolean
  get:
    queryParameters:
      limit:
        type: integer
`)
	items := root.Resource("/items", "get")
	require.NotNil(t, items)
	assert.Equal(t, []string{"limit", "delete", "options", "head"}, paramNames(items.QueryParams))
	assert.Equal(t, "boolean", items.QueryParams[1].Type, "resource value wins")
	assert.Equal(t, "from the type", items.QueryParams[1].Description, "missing facet inherited")
	assert.Equal(t, []string{"post"}, paramNames(items.Headers))
	assert.Empty(t, root.Errors())
}

func TestParseTraitParameters(t *testing.T) {
	root := mustParse(t, `#%RAML 0.8
title: Params
traits:
  - secured:
      headers:
        <<tokenName>>:
          description: A valid <<tokenName>> is required
      queryParameters:
        limit:
          type: integer
          maximum: <<max>>
/songs:
  get:
    is: [ secured: { tokenName: apiKey, max: 50 } ]
`)
	songs := root.Resource("/songs", "get")
	require.NotNil(t, songs)
	require.Len(t, songs.Headers, 1)
	assert.Equal(t, "apiKey", songs.Headers[0].Name)
	assert.Equal(t, "A valid apiKey is required", songs.Headers[0].Description)
	require.Len(t, songs.QueryParams, 1)
	require.NotNil(t, songs.QueryParams[0].Maximum)
	assert.Equal(t, 50.0, *songs.QueryParams[0].Maximum)
	assert.Empty(t, root.Errors())

	trait := root.Trait("secured")
	require.NotNil(t, trait)
	require.Len(t, trait.Headers, 1)
	assert.Equal(t, "<<tokenName>>", trait.Headers[0].Name, "trait nodes keep their placeholders")
}

func TestParseReservedParameters(t *testing.T) {
	root := mustParse(t, `#%RAML 0.8
title: Reserved
resourceTypes:
  - collection:
      description: <<methodName | !uppercase>> on <<resourcePathName | !singularize>> at <<resourcePath>>
/users:
  type: collection
  get:
`)
	users := root.Resource("/users", "get")
	require.NotNil(t, users)
	assert.Equal(t, "GET on user at /users", users.Description)
}

func TestParseUnknownTransformIsFatal(t *testing.T) {
	root, err := parseString(t, `#%RAML 0.8
title: Transforms
traits:
  - loud:
      description: <<name | !shout>>
/a:
  get:
    is: [ loud: { name: x } ]
`)
	require.Error(t, err)
	assert.Nil(t, root)
	assert.ErrorIs(t, err, ramlerrors.ErrTransform)
}

func TestParseInheritancePrecedence(t *testing.T) {
	root := mustParse(t, `#%RAML 0.8
title: Precedence
mediaType: application/json
resourceTypes:
  - item:
      description: from type
      get:
        queryParameters:
          fields:
            type: string
            description: from type
traits:
  - described:
      description: from trait
      queryParameters:
        fields:
          description: from trait
          maxLength: 10
/own:
  type: item
  description: from resource
  get:
    is: [described]
    queryParameters:
      fields:
        required: true
/inherited:
  type: item
  get:
    is: [described]
/traitOnly:
  get:
    is: [described]
`)
	own := root.Resource("/own", "get")
	require.NotNil(t, own)
	assert.Equal(t, "from resource", own.Description)
	require.Len(t, own.QueryParams, 1)
	fields := own.QueryParams[0]
	assert.True(t, fields.Required)
	assert.Equal(t, "from type", fields.Description, "resource type merges before traits")
	require.NotNil(t, fields.MaxLength)
	assert.Equal(t, 10, *fields.MaxLength)

	inherited := root.Resource("/inherited", "get")
	require.NotNil(t, inherited)
	assert.Equal(t, "from type", inherited.Description)

	traitOnly := root.Resource("/traitOnly", "get")
	require.NotNil(t, traitOnly)
	assert.Equal(t, "from trait", traitOnly.Description)
	assert.Equal(t, "application/json", traitOnly.MediaType)
	assert.Empty(t, root.Errors())
}

func TestParseResourceTypeMethods(t *testing.T) {
	root := mustParse(t, `#%RAML 0.8
title: Methods
resourceTypes:
  - crud:
      get:
        description: read
      delete?:
        description: remove
      post:
        description: create
/things:
  type: crud
  get:
  delete:
`)
	assert.Equal(t, "read", root.Resource("/things", "get").Description)
	assert.Equal(t, "remove", root.Resource("/things", "delete").Description)
	assert.Nil(t, root.Resource("/things", "post"))
	require.Len(t, root.Resources, 2)

	assert.False(t, root.ResourceType("crud", "get").Optional)
	assert.True(t, root.ResourceType("crud", "delete").Optional)
}

func TestParseResourceTypeChain(t *testing.T) {
	t.Run("chained types merge", func(t *testing.T) {
		root := mustParse(t, `#%RAML 0.8
title: Chain
resourceTypes:
  - base:
      get?:
        responses:
          500:
            description: failure
  - readable:
      type: base
      get:
        responses:
          200:
            description: ok
/items:
  type: readable
  get:
`)
		items := root.Resource("/items", "get")
		require.NotNil(t, items)
		assert.Equal(t, []int{200, 500}, responseCodes(items.Responses))
		assert.Empty(t, root.Errors())
	})

	t.Run("circular chain is reported", func(t *testing.T) {
		root := mustParse(t, `#%RAML 0.8
title: Loop
resourceTypes:
  - a:
      type: b
  - b:
      type: a
/items:
  type: a
  get:
`)
		assertFinding(t, root, "circular resource type chain")
	})
}

func TestParseUndefinedReferences(t *testing.T) {
	root := mustParse(t, `#%RAML 0.8
title: Undefined
/a:
  type: ghost
  get:
    is: [nope]
    securedBy: [phantom]
`)
	a := root.Resource("/a", "get")
	require.NotNil(t, a)
	assert.Equal(t, []string{"nope"}, a.Is)
	assert.Empty(t, a.Traits)
	assert.Nil(t, a.ResourceType)
	assertFinding(t, root, "resource type 'ghost' is assigned but not defined")
	assertFinding(t, root, "trait 'nope' is assigned but not defined")
	assertFinding(t, root, "security scheme 'phantom' is assigned but not defined")
}

func TestParseTooManyResourceTypes(t *testing.T) {
	root := mustParse(t, `#%RAML 0.8
title: Types
resourceTypes:
  - one:
      description: one
  - two:
      description: two
/a:
  type: [one, two]
  get:
`)
	assertFinding(t, root, "too many resource types applied to '/a'")
	assert.Equal(t, "one", root.Resource("/a", "get").TypeName)
}

func TestParseNamedDefinitionForms(t *testing.T) {
	t.Run("0.8 list", func(t *testing.T) {
		root := mustParse(t, `#%RAML 0.8
title: List
traits:
  - a:
      description: first
  - b:
      description: second
  - a:
      description: again
/x:
  get:
`)
		assert.Len(t, root.Traits, 2)
		assertFinding(t, root, "duplicate traits definition 'a'")
	})

	t.Run("1.0 map", func(t *testing.T) {
		root := mustParse(t, `#%RAML 1.0
title: Map
traits:
  a:
    description: first
  b:
    description: second
/x:
  get:
`)
		require.Len(t, root.Traits, 2)
		assert.Equal(t, "first", root.Trait("a").Description)
		assert.Empty(t, root.Errors())
	})
}

func TestParseNestedURIParams(t *testing.T) {
	root := mustParse(t, `#%RAML 0.8
title: Nested
baseUri: http://api.example.com
/users/{userId}:
  uriParameters:
    userId:
      type: integer
  get:
  /posts/{postId}:
    get:
`)
	post := root.Resource("/users/{userId}/posts/{postId}", "get")
	require.NotNil(t, post)
	require.Len(t, post.URIParams, 2)
	assert.Equal(t, "userId", post.URIParams[0].Name)
	assert.Equal(t, "integer", post.URIParams[0].Type, "declared on the parent")
	assert.Equal(t, "postId", post.URIParams[1].Name)
	assert.Equal(t, "string", post.URIParams[1].Type)
	assert.Equal(t, "http://api.example.com/users/{userId}/posts/{postId}", post.AbsoluteURI)
}

func TestParseMethodlessResource(t *testing.T) {
	root := mustParse(t, `#%RAML 0.8
title: Segments
/a:
  description: container
  /b:
    get:
`)
	require.Len(t, root.Resources, 2)
	a := root.Resource("/a", "")
	require.NotNil(t, a)
	assert.Equal(t, "container", a.Description)
	b := root.Resource("/a/b", "get")
	require.NotNil(t, b)
	assert.Same(t, a, b.Parent)
}

func TestParseParameterDefaults(t *testing.T) {
	root := mustParse(t, `#%RAML 1.0
title: Defaults
/items/{id}:
  get:
    headers:
      X-Trace: string
    queryParameters:
      limit?:
        type: integer
      sort:
        type: string
        required: true
      q:
`)
	items := root.Resource("/items/{id}", "get")
	require.NotNil(t, items)
	assert.True(t, items.URIParams[0].Required)

	require.Len(t, items.QueryParams, 3)
	limit, sort, q := items.QueryParams[0], items.QueryParams[1], items.QueryParams[2]
	assert.Equal(t, "limit", limit.Name)
	assert.False(t, limit.Required)
	assert.Equal(t, datatype.KindInteger, limit.DataType.Kind())
	assert.True(t, sort.Required)
	assert.False(t, q.Required)
	assert.Equal(t, "string", q.Type)

	require.Len(t, items.Headers, 1)
	assert.Equal(t, "string", items.Headers[0].Type)
	assert.False(t, items.Headers[0].Required)
	assert.Empty(t, root.Errors())
}

func TestParseParameterFindings(t *testing.T) {
	root := mustParse(t, `#%RAML 0.8
title: Facets
/a:
  get:
    queryParameters:
      count:
        type: integer
        pattern: ^[0-9]+$
      name:
        type: string
        minimum: 1
      ratio:
        type: float
`)
	assertFinding(t, root, "'pattern' is only valid for string parameters, not integer")
	assertFinding(t, root, "'minimum' is only valid for number or integer parameters, not string")
	assertFinding(t, root, "'float' is not a valid primitive parameter type")

	f := root.Errors()[0]
	assert.Equal(t, "/a.get.queryParameters.count", f.Path)
	assert.Equal(t, "pattern", f.Field)
}

func TestParseUnknownParameterTypeIsFatal(t *testing.T) {
	_, err := parseString(t, `#%RAML 1.0
title: Types
/a:
  get:
    queryParameters:
      when:
        type: Moment
`)
	require.Error(t, err)
	var te *ramlerrors.TypeExpressionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "Moment", te.Expression)
}

func TestParseUnknownDeclaredTypeIsFatal(t *testing.T) {
	_, err := parseString(t, `#%RAML 1.0
title: Types
types:
  Pet:
    type: Animal
/a:
  get:
`)
	assert.ErrorIs(t, err, ramlerrors.ErrTypeExpression)
}

func TestParseBodies(t *testing.T) {
	t.Run("form body with schema", func(t *testing.T) {
		root := mustParse(t, `#%RAML 0.8
title: Forms
/upload:
  post:
    body:
      multipart/form-data:
        schema: '{"type": "object"}'
`)
		assertFinding(t, root, "Form-encoded body 'multipart/form-data' must not define schema")
		assertFinding(t, root, "Form-encoded body 'multipart/form-data' must define formParameters")
	})

	t.Run("form body with form parameters", func(t *testing.T) {
		root := mustParse(t, `#%RAML 0.8
title: Forms
/upload:
  post:
    body:
      application/x-www-form-urlencoded:
        formParameters:
          name:
            type: string
`)
		upload := root.Resource("/upload", "post")
		require.Len(t, upload.Body, 1)
		require.Len(t, upload.Body[0].FormParams, 1)
		assert.Equal(t, FormParam, upload.Body[0].FormParams[0].Kind)
		assert.Empty(t, root.Errors())
	})

	t.Run("form parameters on a json body", func(t *testing.T) {
		root := mustParse(t, `#%RAML 0.8
title: Forms
/upload:
  post:
    body:
      application/json:
        formParameters:
          name:
`)
		assertFinding(t, root, "formParameters are only valid for form-encoded bodies")
	})

	t.Run("body without media type uses the default", func(t *testing.T) {
		root := mustParse(t, `#%RAML 1.0
title: Default body
mediaType: application/json
types:
  Item:
    properties:
      id: integer
/items:
  post:
    body:
      type: Item
`)
		items := root.Resource("/items", "post")
		require.Len(t, items.Body, 1)
		assert.Equal(t, "application/json", items.Body[0].MimeType)
		require.NotNil(t, items.Body[0].DataType)
		assert.Equal(t, datatype.KindObject, items.Body[0].DataType.Kind())
		assert.Empty(t, root.Errors())
	})

	t.Run("named schema is resolved", func(t *testing.T) {
		root := mustParse(t, `#%RAML 0.8
title: Schemas
schemas:
  - widget: '{"type": "object"}'
/w:
  get:
    responses:
      200:
        body:
          application/json:
            schema: widget
`)
		body := root.Resource("/w", "get").Responses[0].Body[0]
		assert.Equal(t, `{"type": "object"}`, body.Schema)
	})

	t.Run("unsupported media type", func(t *testing.T) {
		root := mustParse(t, `#%RAML 0.8
title: Media
/w:
  post:
    body:
      application/x-made-up:
`)
		assertFinding(t, root, "Unsupported MIME Type 'application/x-made-up'.")
	})

	t.Run("malformed media type", func(t *testing.T) {
		root := mustParse(t, `#%RAML 0.8
title: Media
mediaType: "*/json"
/w:
  post:
    body:
      text/:
`)
		assertFinding(t, root, "Invalid MIME Type '*/json'.")
		assertFinding(t, root, "Invalid MIME Type 'text/'.")
		for _, msg := range findingMessages(root) {
			assert.NotContains(t, msg, "Unsupported", "syntax errors are not also allow-list errors")
		}
	})
}

func TestParseResponses(t *testing.T) {
	root := mustParse(t, `#%RAML 0.8
title: Responses
/r:
  get:
    responses:
      404:
        description: missing
      200:
        description: ok
      201:
        description: created
      999:
        description: bogus
`)
	r := root.Resource("/r", "get")
	require.NotNil(t, r)
	assert.Equal(t, []int{0, 200, 201, 404}, responseCodes(r.Responses))
	assert.Equal(t, "999", r.Responses[0].RawCode)
	assertFinding(t, root, "'999' not a valid HTTP response code")
}

func TestParseProtocolsAndAbsoluteURI(t *testing.T) {
	root := mustParse(t, `#%RAML 0.8
title: Protocols
baseUri: https://api.example.com/
/secure:
  get:
/plain:
  protocols: [http]
  get:
`)
	assert.Equal(t, "https://api.example.com/secure", root.Resource("/secure", "get").AbsoluteURI)
	plain := root.Resource("/plain", "get")
	assert.Equal(t, []string{"HTTP"}, plain.Protocols)
	assert.Equal(t, "http://api.example.com/plain", plain.AbsoluteURI)
}

func TestParseRootFindings(t *testing.T) {
	root := mustParseFile(t, filepath.Join("invalid", "findings.raml"))

	assertFinding(t, root, "RAML File does not define an API title.")
	assertFinding(t, root, "RAML File does not define the baseUri version.")
	assertFinding(t, root, "'FTP' not a valid protocol for a RAML-defined API.")
	assertFinding(t, root, "Unsupported MIME Type 'application/x-unknown'.")
	assertFinding(t, root, "security scheme 'missing' is assigned but not defined")
	assertFinding(t, root, "must not define schema")
	assertFinding(t, root, "'999' not a valid HTTP response code")

	t.Run("no resources", func(t *testing.T) {
		root := mustParse(t, "#%RAML 0.8\ntitle: Empty\n")
		assertFinding(t, root, "RAML File does not define any resources.")
	})

	t.Run("base uri parameter without default", func(t *testing.T) {
		root := mustParse(t, `#%RAML 0.8
title: Base
baseUri: https://{host}.example.com
baseUriParameters:
  host:
    description: tenant
/a:
  get:
`)
		assertFinding(t, root, "The 'default' parameter is not set for base URI parameter 'host'.")
		assert.Equal(t, []string{"host"}, paramNames(root.Resource("/a", "get").BaseURIParams))
	})

	t.Run("documentation entries", func(t *testing.T) {
		root := mustParse(t, `#%RAML 0.8
title: Docs
documentation:
  - title: Intro
    content: Hello
  - title: Empty
/a:
  get:
`)
		require.Len(t, root.Documentation, 2)
		assert.Equal(t, Documentation{Title: "Intro", Content: "Hello"}, root.Documentation[0])
		assertFinding(t, root, "API Documentation requires content defined.")
	})
}

func TestParseSecuritySchemes(t *testing.T) {
	root := mustParse(t, `#%RAML 0.8
title: Security
securitySchemes:
  - oauth1:
      type: OAuth 1.0
      settings:
        requestTokenUri: https://a/request
  - oauth2:
      type: OAuth 2.0
      settings:
        accessTokenUri: https://a/token
        authorizationGrants: [client_credentials]
  - implicit:
      type: OAuth 2.0
      settings:
        accessTokenUri: https://a/token
        authorizationGrants: [token]
  - kerberos:
      type: Kerberos
  - custom:
      type: x-custom
  - untyped:
      description: no type
/a:
  securedBy: [null, custom]
  get:
`)
	require.Len(t, root.SecuritySchemes, 6)
	assertFinding(t, root, "OAuth 1.0 security scheme 'oauth1' requires the 'authorizationUri' setting")
	assertFinding(t, root, "OAuth 1.0 security scheme 'oauth1' requires the 'tokenCredentialsUri' setting")
	assertFinding(t, root, "OAuth 2.0 security scheme 'implicit' requires the 'authorizationUri' setting")
	assertFinding(t, root, "'Kerberos' is not a valid Security Scheme type")
	assertFinding(t, root, "security scheme 'untyped' does not define a type")
	for _, msg := range findingMessages(root) {
		assert.NotContains(t, msg, "'oauth2'")
		assert.NotContains(t, msg, "'custom'")
	}

	a := root.Resource("/a", "get")
	assert.Equal(t, []string{"null", "custom"}, a.SecuredBy)
	require.Len(t, a.SecuritySchemes, 1)
	assert.Equal(t, "custom", a.SecuritySchemes[0].Name)
}

func TestParseTypeExamples(t *testing.T) {
	root := mustParse(t, `#%RAML 1.0
title: Examples
types:
  Code:
    type: string
    pattern: ^[A-Z]{3}$
    example: abc
  Count:
    type: integer
    examples:
      good: 3
      bad:
        value: many
/a:
  get:
`)
	assertFinding(t, root, "example is invalid")
	assertFinding(t, root, "example 'bad' is invalid")
	for _, f := range root.Errors() {
		assert.NotContains(t, f.Message, "'good'")
	}
}

func TestParseValidateMode(t *testing.T) {
	doc, err := loader.New().Load(filepath.Join("..", "testdata", "invalid", "findings.raml"))
	require.NoError(t, err)

	root, err := New().Parse(doc)
	require.Error(t, err)
	require.NotNil(t, root, "the resolved tree is returned with the findings")

	var invalid *ramlerrors.InvalidDocumentError
	require.ErrorAs(t, err, &invalid)
	assert.Len(t, invalid.Errors, len(root.Errors()))
	assert.Equal(t, doc.SourcePath, invalid.Source)
	assert.ErrorIs(t, err, ramlerrors.ErrValidation)

	var first *ramlerrors.ValidationError
	require.True(t, errors.As(invalid.Errors[0], &first))
	assert.NotEmpty(t, first.Message)

	assert.Error(t, root.Err())
	assert.Len(t, root.Resources[0].Errors(), len(root.Errors()), "findings are shared by every node")
}

func TestParseFatalErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		target error
	}{
		{"unsupported version", "#%RAML 2.0\ntitle: x\n", ramlerrors.ErrVersion},
		{"data type fragment", "#%RAML 1.0 DataType\ntype: string\n", ramlerrors.ErrFragment},
		{"library fragment", "#%RAML 1.0 Library\ntypes: {}\n", ramlerrors.ErrFragment},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, err := parseString(t, tt.input)
			assert.Nil(t, root)
			assert.ErrorIs(t, err, tt.target)
		})
	}

	t.Run("nil document", func(t *testing.T) {
		_, err := New().Parse(nil)
		assert.ErrorIs(t, err, ramlerrors.ErrLoad)
	})

	t.Run("version allow-list", func(t *testing.T) {
		doc, err := loader.New().LoadBytes([]byte("#%RAML 0.8\ntitle: x\n"))
		require.NoError(t, err)
		p := New()
		p.Config.RAMLVersions = []string{"1.0"}
		_, err = p.Parse(doc)
		var ve *ramlerrors.VersionError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "0.8", ve.Version)
	})
}

func TestParseDataTypeFragment(t *testing.T) {
	doc, err := loader.New().Load(filepath.Join("..", "testdata", "person.raml"))
	require.NoError(t, err)

	dt, err := New().ParseDataType(doc)
	require.NoError(t, err)
	require.Equal(t, datatype.KindObject, dt.Kind())

	assert.NoError(t, datatype.Validate(dt, map[string]any{"name": "Ada"}, "person"))
	assert.NoError(t, datatype.Validate(dt, map[string]any{"name": "Ada", "age": 36}, "person"))

	err = datatype.Validate(dt, map[string]any{"name": "foo"}, "person")
	var dve *ramlerrors.DataTypeValidationError
	require.ErrorAs(t, err, &dve)
	assert.Equal(t, "person.name", dve.Position)
	assert.Contains(t, dve.Reason, "does not match pattern")

	err = datatype.Validate(dt, map[string]any{"name": "Ada", "age": -1}, "person")
	assert.ErrorIs(t, err, ramlerrors.ErrDataTypeValidation)

	rootDoc, err := loader.New().LoadBytes([]byte("#%RAML 1.0\ntitle: x\n"))
	require.NoError(t, err)
	_, err = New().ParseDataType(rootDoc)
	assert.ErrorIs(t, err, ramlerrors.ErrFragment)
}

func TestRootNodeLookups(t *testing.T) {
	root := mustParse(t, `#%RAML 0.8
title: Lookups
resourceTypes:
  - plain:
      description: no methods
/a:
  type: plain
  get:
`)
	rt := root.ResourceType("plain", "get")
	require.NotNil(t, rt, "a methodless template matches every method")
	assert.Equal(t, "", rt.Method)
	assert.Same(t, rt, root.Resource("/a", "get").ResourceType)
	assert.Nil(t, root.ResourceType("missing", "get"))
	assert.Nil(t, root.Trait("missing"))
	assert.Nil(t, root.SecurityScheme("missing"))
	assert.Nil(t, root.Resource("/a", "post"))

	var inheritable Inheritable = root.Resource("/a", "get")
	assert.Equal(t, "no methods", inheritable.Attrs().Description)
}

func TestParamKind(t *testing.T) {
	assert.Equal(t, "uriParameters", URIParam.String())
	assert.Equal(t, "headers", HeaderParam.String())
	assert.Equal(t, "parameters", ParamKind(99).String())
	assert.True(t, URIParam.RequiredByDefault())
	assert.True(t, BaseURIParam.RequiredByDefault())
	assert.False(t, QueryParam.RequiredByDefault())
	assert.False(t, FormParam.RequiredByDefault())
	assert.False(t, HeaderParam.RequiredByDefault())
}
