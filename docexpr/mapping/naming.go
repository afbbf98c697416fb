package mapping

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NameConvention derives the stored name of a member that carries no
// explicit name. The zero value is NameLower, which is what the bson struct
// codec writes for untagged fields.
type NameConvention string

const (
	NameAsIs  NameConvention = "as-is"
	NameLower NameConvention = "lower"
	NameCamel NameConvention = "camel"
)

// ParseNameConvention parses a convention name; empty means lower
func ParseNameConvention(s string) (NameConvention, error) {
	switch NameConvention(s) {
	case "", NameLower:
		return NameLower, nil
	case NameAsIs, NameCamel:
		return NameConvention(s), nil
	}
	return "", fmt.Errorf("unknown naming convention %q (want as-is, lower or camel)", s)
}

// Apply returns the stored form of a declared member name
func (c NameConvention) Apply(name string) string {
	switch c {
	case NameAsIs:
		return name
	case NameCamel:
		return camel(name)
	default:
		return strings.ToLower(name)
	}
}

// camel lower-cases the leading upper-case run, keeping the last letter of a
// multi-letter run when it starts the next word: ID -> id, UserID -> userID,
// HTTPServer -> httpServer.
func camel(name string) string {
	if name == "" {
		return name
	}

	end := 0
	for end < len(name) {
		r, size := utf8.DecodeRuneInString(name[end:])
		if !unicode.IsUpper(r) {
			break
		}
		end += size
	}

	// Casers hold state and must not be shared between goroutines
	lower := cases.Lower(language.Und)
	switch {
	case end == 0:
		return name
	case end == len(name):
		return lower.String(name)
	}

	_, first := utf8.DecodeRuneInString(name)
	if end > first {
		// step back over the rune that begins the next word
		_, size := utf8.DecodeLastRuneInString(name[:end])
		if r, _ := utf8.DecodeRuneInString(name[end:]); unicode.IsLetter(r) {
			end -= size
		}
	}
	return lower.String(name[:end]) + name[end:]
}
