package ast

import "strings"

// Modifier is a bit set of declaration modifiers.
type Modifier uint16

const (
	Public Modifier = 1 << iota
	Protected
	Private
	Static
	Final
	Abstract
	Interface
	Default
	VarArgs
)

var modifierNames = []struct {
	mod  Modifier
	name string
}{
	{Public, "public"},
	{Protected, "protected"},
	{Private, "private"},
	{Static, "static"},
	{Final, "final"},
	{Abstract, "abstract"},
	{Interface, "interface"},
	{Default, "default"},
	{VarArgs, "varargs"},
}

// Has reports whether all bits of other are set.
func (m Modifier) Has(other Modifier) bool {
	return m&other == other
}

// PackagePrivate reports whether no visibility modifier is set.
func (m Modifier) PackagePrivate() bool {
	return m&(Public|Protected|Private) == 0
}

func (m Modifier) String() string {
	var parts []string
	for _, mn := range modifierNames {
		if m.Has(mn.mod) {
			parts = append(parts, mn.name)
		}
	}
	return strings.Join(parts, " ")
}

// ParseModifier returns the modifier named s.
func ParseModifier(s string) (Modifier, bool) {
	for _, mn := range modifierNames {
		if mn.name == s {
			return mn.mod, true
		}
	}
	return 0, false
}
