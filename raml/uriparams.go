package raml

import "regexp"

const (
	// versionToken is supplied by the root version, never as a parameter.
	versionToken = "version"
	// mediaTypeExtensionToken is always ordered last.
	mediaTypeExtensionToken = "mediaTypeExtension"
)

var uriTokenPattern = regexp.MustCompile(`\{([^{}]+)\}`)

// uriTokens returns the {token} names of template in left-to-right order,
// without repeats.
func uriTokens(template string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range uriTokenPattern.FindAllStringSubmatch(template, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	return out
}

// orderURIParams returns one parameter per {token} of template, in path
// order. For each token the first candidate list holding a parameter of
// that name wins; candidate lists are given in precedence order. A token
// with no candidate gets a synthesized required string parameter, except
// version, which is never materialized. mediaTypeExtension is moved to the
// end. The result is nil when template has no tokens.
func orderURIParams(template string, kind ParamKind, candidates ...[]*Param) []*Param {
	tokens := uriTokens(template)
	if len(tokens) == 0 {
		return nil
	}
	out := make([]*Param, 0, len(tokens))
	var extension *Param
	for _, token := range tokens {
		if token == versionToken {
			continue
		}
		p := findParam(token, candidates)
		if p == nil {
			p = &Param{
				Kind:        kind,
				Name:        token,
				DisplayName: token,
				Type:        "string",
				Required:    true,
			}
		}
		if token == mediaTypeExtensionToken {
			extension = p
			continue
		}
		out = append(out, p)
	}
	if extension != nil {
		out = append(out, extension)
	}
	return out
}

func findParam(name string, candidates [][]*Param) *Param {
	for _, list := range candidates {
		for _, p := range list {
			if p != nil && p.Name == name {
				return p
			}
		}
	}
	return nil
}
