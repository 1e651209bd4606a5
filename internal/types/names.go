package types

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// capitalize follows the bean convention: the first letter is upper-cased
// unless the second one already is.
func capitalize(name string) string {
	if name == "" {
		return name
	}
	r, size := utf8.DecodeRuneInString(name)
	if len(name) > size {
		next, _ := utf8.DecodeRuneInString(name[size:])
		if unicode.IsUpper(next) {
			return name
		}
	}
	return string(unicode.ToUpper(r)) + name[size:]
}

// GetterNames returns the accessor names tried for reading prop, the
// regular getter first.
func GetterNames(prop string) []string {
	c := capitalize(prop)
	return []string{"get" + c, "is" + c}
}

// SetterName returns the accessor name used for writing prop.
func SetterName(prop string) string {
	return "set" + capitalize(prop)
}

// PropertyName returns the property an accessor stands for and whether name
// is an accessor at all.
func PropertyName(name string) (string, bool) {
	for _, prefix := range []string{"get", "set", "is"} {
		rest, ok := strings.CutPrefix(name, prefix)
		if !ok || rest == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(rest)
		if !unicode.IsUpper(r) {
			continue
		}
		if len(rest) > size {
			next, _ := utf8.DecodeRuneInString(rest[size:])
			if unicode.IsUpper(next) {
				return rest, true
			}
		}
		return string(unicode.ToLower(r)) + rest[size:], true
	}
	return "", false
}
