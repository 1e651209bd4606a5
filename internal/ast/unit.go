package ast

// Unit is one compilation unit: the classes declared by a single source.
type Unit struct {
	Name string
	Path string
	// Classes are the primary classes compiled in this unit.
	Classes []*ClassNode
	// Imported are read-only classes made visible by imports.
	Imported []*ClassNode
}

// Class returns the class declared in the unit with the given name, matching
// the qualified or the simple name.
func (u *Unit) Class(name string) *ClassNode {
	for _, c := range u.Classes {
		if c.Name == name || c.SimpleName() == name {
			return c
		}
	}
	for _, c := range u.Imported {
		if c.Name == name || c.SimpleName() == name {
			return c
		}
	}
	return nil
}

// AddClass declares c as a primary class of the unit.
func (u *Unit) AddClass(c *ClassNode) *ClassNode {
	c.Primary = true
	u.Classes = append(u.Classes, c)
	return c
}
