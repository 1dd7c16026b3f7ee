// Package httputil provides HTTP-related constants and validation helpers
// shared by the config allow-lists and the RAML resolver.
package httputil

import (
	"mime"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// HTTP Status Code Constants
const (
	StatusCodeLength = 3   // Standard length of HTTP status codes (e.g., "200", "404")
	MinStatusCode    = 100 // Minimum valid HTTP status code
	MaxStatusCode    = 599 // Maximum valid HTTP status code
)

// HTTP Method Constants
const (
	MethodGet     = "get"
	MethodPut     = "put"
	MethodPost    = "post"
	MethodDelete  = "delete"
	MethodOptions = "options"
	MethodHead    = "head"
	MethodPatch   = "patch"
	MethodTrace   = "trace"
	MethodConnect = "connect"
)

// OptionalSuffix marks a resource-type method that is applied only when the
// resource implements it (e.g. "get?").
const OptionalSuffix = "?"

// Methods lists the HTTP methods RAML recognises, in declaration order.
var Methods = []string{
	MethodGet, MethodPost, MethodPut, MethodDelete, MethodPatch,
	MethodHead, MethodOptions, MethodTrace, MethodConnect,
}

// StandardHTTPStatusCodes contains the RFC 9110 defined HTTP status codes,
// plus the WebDAV and RFC 6585 codes commonly found in API descriptions.
var StandardHTTPStatusCodes = map[int]bool{
	// 1xx Informational
	100: true, 101: true, 102: true, 103: true,
	// 2xx Success
	200: true, 201: true, 202: true, 203: true, 204: true, 205: true,
	206: true, 207: true, 208: true, 226: true,
	// 3xx Redirection
	300: true, 301: true, 302: true, 303: true, 304: true, 305: true,
	306: true, 307: true, 308: true,
	// 4xx Client Error
	400: true, 401: true, 402: true, 403: true, 404: true, 405: true,
	406: true, 407: true, 408: true, 409: true, 410: true, 411: true,
	412: true, 413: true, 414: true, 415: true, 416: true, 417: true,
	418: true, 420: true, 421: true, 422: true, 423: true, 424: true,
	425: true, 426: true, 428: true, 429: true, 431: true, 444: true,
	449: true, 450: true, 451: true, 499: true,
	// 5xx Server Error
	500: true, 501: true, 502: true, 503: true, 504: true, 505: true,
	506: true, 507: true, 508: true, 509: true, 510: true, 511: true,
	598: true, 599: true,
}

// StandardStatusCodes returns the standard codes in ascending order.
func StandardStatusCodes() []int {
	codes := make([]int, 0, len(StandardHTTPStatusCodes))
	for c := range StandardHTTPStatusCodes {
		codes = append(codes, c)
	}
	sort.Ints(codes)
	return codes
}

// ParseStatusCode coerces a response key into a numeric status code.
// It accepts three-digit strings and integral numbers in the 100-599 range.
func ParseStatusCode(key string) (int, bool) {
	key = strings.TrimSpace(key)
	if len(key) != StatusCodeLength {
		return 0, false
	}
	code, err := strconv.Atoi(key)
	if err != nil || code < MinStatusCode || code > MaxStatusCode {
		return 0, false
	}
	return code, true
}

// IsMethod reports whether key names an HTTP method, optionally with the
// resource-type "?" suffix.
func IsMethod(key string, methods []string) bool {
	return MethodName(key, methods) != ""
}

// MethodName returns the lower-case method named by key with any "?"
// suffix removed, or "" if key is not a method.
func MethodName(key string, methods []string) string {
	name := strings.ToLower(strings.TrimSuffix(key, OptionalSuffix))
	for _, m := range methods {
		if m == name {
			return name
		}
	}
	return ""
}

// IsOptionalMethod reports whether key is a "?"-suffixed method key.
func IsOptionalMethod(key string) bool {
	return strings.HasSuffix(key, OptionalSuffix)
}

// FormMediaTypes are the body media types that carry formParameters.
var FormMediaTypes = []string{"multipart/form-data", "application/x-www-form-urlencoded"}

// IsFormMediaType reports whether mediaType is a form-encoded kind.
func IsFormMediaType(mediaType string) bool {
	for _, m := range FormMediaTypes {
		if strings.EqualFold(m, mediaType) {
			return true
		}
	}
	return false
}

// vendorMediaType matches structured-suffix types such as
// application/vnd.github.v3+json that are not enumerated in allow-lists.
var vendorMediaType = regexp.MustCompile(`^application/[A-Za-z0-9.+\-]*?(json|xml)$`)

// IsVendorMediaType reports whether mediaType is a json/xml structured type.
func IsVendorMediaType(mediaType string) bool {
	return vendorMediaType.MatchString(mediaType)
}

// IsValidMediaType validates a media type string according to RFC 2045/2046.
// Handles wildcards (*/* and type/*) and rejects */subtype.
func IsValidMediaType(mediaType string) bool {
	mt, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return false
	}
	if mt == "*/*" {
		return true
	}
	typ, sub, ok := strings.Cut(mt, "/")
	return ok && typ != "" && typ != "*" && sub != ""
}

// DefaultMediaTypes is the built-in media type allow-list.
var DefaultMediaTypes = []string{
	"application/json",
	"application/xml",
	"application/x-www-form-urlencoded",
	"multipart/form-data",
	"multipart/mixed",
	"application/octet-stream",
	"application/pdf",
	"application/zip",
	"application/gzip",
	"application/javascript",
	"application/ld+json",
	"application/hal+json",
	"application/problem+json",
	"application/problem+xml",
	"application/merge-patch+json",
	"application/json-patch+json",
	"application/atom+xml",
	"application/rss+xml",
	"application/soap+xml",
	"application/xhtml+xml",
	"application/yaml",
	"application/raml+yaml",
	"application/x-yaml",
	"application/x-ndjson",
	"application/vnd.api+json",
	"text/plain",
	"text/html",
	"text/csv",
	"text/xml",
	"text/css",
	"text/markdown",
	"text/event-stream",
	"text/yaml",
	"image/png",
	"image/jpeg",
	"image/gif",
	"image/svg+xml",
	"image/webp",
	"audio/mpeg",
	"video/mp4",
	"*/*",
}

// DefaultProtocols lists the protocols RAML allows.
var DefaultProtocols = []string{"HTTP", "HTTPS"}

// DefaultAuthSchemes lists the built-in security scheme types.
var DefaultAuthSchemes = []string{
	"OAuth 1.0",
	"OAuth 2.0",
	"Basic Authentication",
	"Digest Authentication",
	"Pass Through",
}

// URIScheme returns the upper-case scheme of uri ("HTTP", "HTTPS") or "".
func URIScheme(uri string) string {
	i := strings.Index(uri, "://")
	if i <= 0 {
		return ""
	}
	return strings.ToUpper(uri[:i])
}

// ReplaceScheme swaps the scheme of uri for protocol (lower-cased), adding
// one if uri has none.
func ReplaceScheme(uri, protocol string) string {
	rest := uri
	if i := strings.Index(uri, "://"); i >= 0 {
		rest = uri[i+3:]
	}
	return strings.ToLower(protocol) + "://" + rest
}
