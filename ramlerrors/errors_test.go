package ramlerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		err := &LoadError{
			Path:    "api.raml",
			Line:    3,
			Message: "bad indentation",
			Cause:   errors.New("yaml: line 3"),
		}
		assert.Equal(t, "load error in api.raml at line 3: bad indentation: yaml: line 3", err.Error())
	})

	t.Run("Error message with minimal fields", func(t *testing.T) {
		assert.Equal(t, "load error", (&LoadError{}).Error())
	})

	t.Run("Unwrap and Is", func(t *testing.T) {
		cause := errors.New("missing")
		err := fmt.Errorf("wrapped: %w", &LoadError{Cause: cause})
		assert.ErrorIs(t, err, ErrLoad)
		assert.ErrorIs(t, err, cause)
		assert.NotErrorIs(t, err, ErrVersion)
	})
}

func TestVersionError(t *testing.T) {
	err := &VersionError{Version: "2.0", Supported: []string{"0.8", "1.0"}}
	assert.Equal(t, `unsupported RAML version "2.0" (supported: 0.8, 1.0)`, err.Error())
	assert.ErrorIs(t, err, ErrVersion)

	assert.Contains(t, (&VersionError{}).Error(), "no version declared")
}

func TestFragmentError(t *testing.T) {
	err := &FragmentError{Fragment: "Library", Expected: "Root"}
	assert.Equal(t, "unsupported fragment Library (expected Root)", err.Error())
	assert.ErrorIs(t, err, ErrFragment)
}

func TestTypeExpressionError(t *testing.T) {
	err := &TypeExpressionError{Name: "Pet", Expression: "Animal"}
	assert.Equal(t, `unknown/unsupported data type expression "Animal" for type Pet`, err.Error())
	assert.ErrorIs(t, err, ErrTypeExpression)

	var target *TypeExpressionError
	require.ErrorAs(t, fmt.Errorf("parse: %w", err), &target)
	assert.Equal(t, "Pet", target.Name)
}

func TestTransformError(t *testing.T) {
	err := &TransformError{Transform: "shout", Parameter: "name"}
	assert.Equal(t, "unknown transform !shout applied to parameter <<name>>", err.Error())
	assert.ErrorIs(t, err, ErrTransform)
}

func TestDataTypeValidationError(t *testing.T) {
	err := &DataTypeValidationError{Position: "person.name", Value: "foo", Reason: "does not match pattern"}
	assert.Equal(t, "person.name: foo does not match pattern", err.Error())
	assert.ErrorIs(t, err, ErrDataTypeValidation)
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Kind: "root", Path: "title", Message: "RAML File does not define an API title"}
	assert.Equal(t, "root validation error at title: RAML File does not define an API title", err.Error())
	assert.ErrorIs(t, err, ErrValidation)
}

func TestInvalidDocumentError(t *testing.T) {
	first := &ValidationError{Kind: "root", Message: "no title"}
	second := &ValidationError{Kind: "parameter", Path: "/a", Message: "bad type"}
	err := &InvalidDocumentError{Source: "api.raml", Errors: []error{first, second}}

	msg := err.Error()
	assert.Contains(t, msg, "invalid RAML document api.raml: 2 error(s)")
	assert.Contains(t, msg, "no title")
	assert.Contains(t, msg, "bad type")

	assert.ErrorIs(t, err, ErrValidation)
	var target *ValidationError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, "root", target.Kind)
}

func TestConfigError(t *testing.T) {
	err := &ConfigError{Option: "input", Value: 2, Message: "must specify exactly one input source"}
	assert.Equal(t, "configuration error for input (value: 2): must specify exactly one input source", err.Error())
	assert.ErrorIs(t, err, ErrConfig)
	assert.Nil(t, err.Unwrap())
}
