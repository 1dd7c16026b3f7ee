// Package config holds the allow-lists and mode flags the RAML resolver
// validates against.
//
// Default returns the built-in values. Setup additionally reads a YAML file
// whose "custom" section extends the built-in lists:
//
//	validate: true
//	custom:
//	  auth_schemes: [x-custom-token]
//	  media_types: [application/x-foo]
//	  resp_codes: [599]
//	  protocols: [WS]
package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"go.yaml.in/yaml/v4"

	"github.com/erraggy/ramltools/internal/httputil"
	"github.com/erraggy/ramltools/ramlerrors"
)

// Config is the resolver's configuration.
type Config struct {
	// HTTPMethods are the method keys recognised on resources (lower case)
	HTTPMethods []string
	// AuthSchemes are the allowed security scheme types; "x-" prefixed types
	// are always allowed
	AuthSchemes []string
	// ResponseCodes are the allowed response status codes
	ResponseCodes []int
	// Protocols are the allowed protocol names (upper case)
	Protocols []string
	// MediaTypes are the allowed body / root media types
	MediaTypes []string
	// PrimitiveTypes are the allowed named-parameter types
	PrimitiveTypes []string
	// RAMLVersions are the supported RAML versions
	RAMLVersions []string
	// Validate surfaces collected findings as an error after a full parse
	Validate bool
	// Production disables development conveniences (currently: debug logging
	// of every resolved node)
	Production bool
}

// Default returns the built-in configuration. Each call returns fresh
// slices, so callers may append to them.
func Default() *Config {
	return &Config{
		HTTPMethods:    slices.Clone(httputil.Methods),
		AuthSchemes:    slices.Clone(httputil.DefaultAuthSchemes),
		ResponseCodes:  httputil.StandardStatusCodes(),
		Protocols:      slices.Clone(httputil.DefaultProtocols),
		MediaTypes:     slices.Clone(httputil.DefaultMediaTypes),
		PrimitiveTypes: []string{"string", "number", "integer", "date", "boolean", "file"},
		RAMLVersions:   []string{"0.8", "1.0"},
		Validate:       true,
	}
}

// fileConfig mirrors the YAML config file layout.
type fileConfig struct {
	Validate   *bool `yaml:"validate"`
	Production *bool `yaml:"production"`
	Custom     struct {
		AuthSchemes []string `yaml:"auth_schemes"`
		MediaTypes  []string `yaml:"media_types"`
		RespCodes   []int    `yaml:"resp_codes"`
		Protocols   []string `yaml:"protocols"`
		HTTPMethods []string `yaml:"http_methods"`
	} `yaml:"custom"`
}

// Setup returns the default configuration extended by the YAML file at
// path. An empty path returns Default().
func Setup(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ramlerrors.ConfigError{Option: "config file", Value: path, Message: "cannot read", Cause: err}
	}
	if err := cfg.apply(data); err != nil {
		return nil, &ramlerrors.ConfigError{Option: "config file", Value: path, Message: "invalid YAML", Cause: err}
	}
	return cfg, nil
}

// SetupBytes is Setup for an in-memory config document.
func SetupBytes(data []byte) (*Config, error) {
	cfg := Default()
	if err := cfg.apply(data); err != nil {
		return nil, &ramlerrors.ConfigError{Option: "config", Message: "invalid YAML", Cause: err}
	}
	return cfg, nil
}

func (c *Config) apply(data []byte) error {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return err
	}
	if fc.Validate != nil {
		c.Validate = *fc.Validate
	}
	if fc.Production != nil {
		c.Production = *fc.Production
	}
	c.AuthSchemes = appendUnique(c.AuthSchemes, fc.Custom.AuthSchemes...)
	c.MediaTypes = appendUnique(c.MediaTypes, fc.Custom.MediaTypes...)
	for _, p := range fc.Custom.Protocols {
		c.Protocols = appendUnique(c.Protocols, strings.ToUpper(p))
	}
	for _, m := range fc.Custom.HTTPMethods {
		c.HTTPMethods = appendUnique(c.HTTPMethods, strings.ToLower(m))
	}
	for _, code := range fc.Custom.RespCodes {
		if code < httputil.MinStatusCode || code > httputil.MaxStatusCode {
			return fmt.Errorf("response code %d outside %d-%d", code, httputil.MinStatusCode, httputil.MaxStatusCode)
		}
		if !slices.Contains(c.ResponseCodes, code) {
			c.ResponseCodes = append(c.ResponseCodes, code)
		}
	}
	slices.Sort(c.ResponseCodes)
	return nil
}

func appendUnique(list []string, values ...string) []string {
	for _, v := range values {
		if v != "" && !slices.Contains(list, v) {
			list = append(list, v)
		}
	}
	return list
}

// IsMethod reports whether key is a configured HTTP method, with or
// without the resource-type "?" suffix.
func (c *Config) IsMethod(key string) bool {
	return httputil.IsMethod(key, c.HTTPMethods)
}

// MethodName normalises a method key; see httputil.MethodName.
func (c *Config) MethodName(key string) string {
	return httputil.MethodName(key, c.HTTPMethods)
}

// AllowsResponseCode reports whether code is in the allow-list.
func (c *Config) AllowsResponseCode(code int) bool {
	return slices.Contains(c.ResponseCodes, code)
}

// AllowsProtocol reports whether p (any case) is an allowed protocol.
func (c *Config) AllowsProtocol(p string) bool {
	return slices.Contains(c.Protocols, strings.ToUpper(p))
}

// AllowsMediaType reports whether mt is listed or is a json/xml vendor type.
func (c *Config) AllowsMediaType(mt string) bool {
	base := strings.TrimSpace(strings.SplitN(mt, ";", 2)[0])
	return slices.Contains(c.MediaTypes, base) || httputil.IsVendorMediaType(base)
}

// AllowsAuthScheme reports whether t is a known scheme type or an "x-"
// custom type.
func (c *Config) AllowsAuthScheme(t string) bool {
	return strings.HasPrefix(t, "x-") || slices.Contains(c.AuthSchemes, t)
}

// AllowsPrimitiveType reports whether t is a named-parameter primitive.
func (c *Config) AllowsPrimitiveType(t string) bool {
	return slices.Contains(c.PrimitiveTypes, t)
}

// SupportsVersion reports whether v is a supported RAML version.
func (c *Config) SupportsVersion(v string) bool {
	return slices.Contains(c.RAMLVersions, v)
}
