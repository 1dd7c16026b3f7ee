package naming

import (
	"strings"
	"unicode"

	"github.com/jinzhu/inflection"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Casers carry state and must not be shared between goroutines, so each
// conversion builds its own.
func upper(s string) string { return cases.Upper(language.English).String(s) }
func lower(s string) string { return cases.Lower(language.English).String(s) }
func title(s string) string { return cases.Title(language.English).String(s) }

// Words splits s into lower-case words on separators (underscore, hyphen,
// dot, slash, space) and on case humps. Acronym runs stay together:
// "userID" -> [user id], "HTTPServer" -> [http server].
func Words(s string) []string {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, lower(string(cur)))
			cur = cur[:0]
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == '.' || r == '/' || unicode.IsSpace(r):
			flush()
		case unicode.IsUpper(r):
			if len(cur) > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					flush()
				}
			}
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
	}
	flush()
	return words
}

// ToPascalCase converts a string to PascalCase.
// Example: "user_profile" -> "UserProfile"
func ToPascalCase(s string) string {
	var b strings.Builder
	for _, w := range Words(s) {
		b.WriteString(title(w))
	}
	return b.String()
}

// ToCamelCase converts a string to camelCase.
// Example: "user_profile" -> "userProfile"
func ToCamelCase(s string) string {
	words := Words(s)
	if len(words) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(words[0])
	for _, w := range words[1:] {
		b.WriteString(title(w))
	}
	return b.String()
}

// ToSnakeCase converts a string to snake_case.
// Example: "UserProfile" -> "user_profile"
func ToSnakeCase(s string) string {
	return strings.Join(Words(s), "_")
}

// ToKebabCase converts a string to kebab-case.
// Example: "UserProfile" -> "user-profile"
func ToKebabCase(s string) string {
	return strings.Join(Words(s), "-")
}

// ToUpper upper-cases s.
func ToUpper(s string) string {
	return upper(s)
}

// ToLower lower-cases s.
func ToLower(s string) string {
	return lower(s)
}

// Pluralize returns the English plural of a noun: "track" -> "tracks".
func Pluralize(s string) string {
	return inflection.Plural(s)
}

// Singularize returns the English singular of a noun: "users" -> "user".
func Singularize(s string) string {
	return inflection.Singular(s)
}

// Transform is a named string function usable in <<param | !name>> clauses.
type Transform func(string) string

// Transforms is the registry of template transform functions.
var Transforms = map[string]Transform{
	"singularize":         Singularize,
	"pluralize":           Pluralize,
	"uppercase":           ToUpper,
	"lowercase":           ToLower,
	"lowercamelcase":      ToCamelCase,
	"uppercamelcase":      ToPascalCase,
	"lowerunderscorecase": ToSnakeCase,
	"upperunderscorecase": func(s string) string { return ToUpper(ToSnakeCase(s)) },
	"lowerhyphencase":     ToKebabCase,
	"upperhyphencase":     func(s string) string { return ToUpper(ToKebabCase(s)) },
}

// Lookup returns the transform registered under name.
func Lookup(name string) (Transform, bool) {
	fn, ok := Transforms[name]
	return fn, ok
}
