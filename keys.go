package jscanpartial

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// KeyDecodingStrategy transforms object keys before they're matched
// against struct fields or stored as dictionary keys.
// A nil strategy leaves keys unchanged.
type KeyDecodingStrategy func(key string) string

// KeyDecodingUseDefault returns key unchanged.
func KeyDecodingUseDefault(key string) string { return key }

// ConvertFromSnakeCase converts snake_case keys to camelCase.
// Leading and trailing underscores are preserved, the interior is split
// on underscores, the first component is lowercased and all following
// components are capitalized. A key with a single interior component
// is returned unchanged.
func ConvertFromSnakeCase(key string) string {
	first := strings.IndexFunc(key, notUnderscore)
	if first < 0 {
		return key // Empty or only underscores.
	}
	last := strings.LastIndexFunc(key, notUnderscore)
	components := strings.FieldsFunc(key[first:last+1], isUnderscore)
	if len(components) < 2 {
		return key
	}

	var b strings.Builder
	b.Grow(len(key))
	b.WriteString(key[:first])
	b.WriteString(strings.ToLower(components[0]))
	for _, c := range components[1:] {
		r, size := utf8.DecodeRuneInString(c)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(strings.ToLower(c[size:]))
	}
	b.WriteString(key[last+1:])
	return b.String()
}

func isUnderscore(r rune) bool  { return r == '_' }
func notUnderscore(r rune) bool { return r != '_' }
