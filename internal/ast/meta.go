package ast

import (
	"strings"

	"github.com/hashicorp/go-set/v3"
)

// Delegation describes how unqualified references inside a closure are
// resolved.
type Delegation struct {
	Type     *ClassNode
	Strategy Strategy
	// Parent is the delegation of the enclosing closure, if any.
	Parent *Delegation
}

// ExprMeta holds the checker's annotations for one expression. Every write
// overwrites the previous value.
type ExprMeta struct {
	InferredType *ClassNode
	// InferredReturnType is the return type of a closure body, distinct from
	// the Closure<T> type of the expression itself.
	InferredReturnType *ClassNode
	DirectTarget       *MethodNode
	CallParamTypes     []*ClassNode
	CallReturnType     *ClassNode
	Delegation         *Delegation
	ReadOnly           bool
	ImplicitReceiver   string
	ClosureArgTypes    []*ClassNode
	// Dynamic marks a call or reference left to runtime dispatch.
	Dynamic bool
	// PropertyOwner is the class a property access was resolved on.
	PropertyOwner *ClassNode
}

// Reset clears every annotation.
func (m *ExprMeta) Reset() {
	*m = ExprMeta{}
}

// VariableMeta holds annotations for a variable.
type VariableMeta struct {
	InferredType *ClassNode
	// DeclarationInferredType is widened with every type assigned to a
	// dynamic variable over the whole method.
	DeclarationInferredType *ClassNode
	ClosureShared           bool
}

// MethodMeta holds annotations for a method.
type MethodMeta struct {
	InferredReturnType *ClassNode
	Checked            bool
}

// ClassMeta records members accessed across nested class boundaries, used
// to synthesize bridge accessors.
type ClassMeta struct {
	Checked bool

	fieldsRead    *set.TreeSet[*FieldNode]
	fieldsWritten *set.TreeSet[*FieldNode]
	methods       *set.TreeSet[*MethodNode]
}

func compareFields(a, b *FieldNode) int {
	return strings.Compare(a.Name, b.Name)
}

func compareMethods(a, b *MethodNode) int {
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return strings.Compare(a.TypeDescriptor(), b.TypeDescriptor())
}

// RecordFieldRead notes that f was read from a nested class.
func (m *ClassMeta) RecordFieldRead(f *FieldNode) {
	if m.fieldsRead == nil {
		m.fieldsRead = set.NewTreeSet[*FieldNode](compareFields)
	}
	m.fieldsRead.Insert(f)
}

// RecordFieldWrite notes that f was written from a nested class.
func (m *ClassMeta) RecordFieldWrite(f *FieldNode) {
	if m.fieldsWritten == nil {
		m.fieldsWritten = set.NewTreeSet[*FieldNode](compareFields)
	}
	m.fieldsWritten.Insert(f)
}

// RecordMethod notes that mn was called from a nested class.
func (m *ClassMeta) RecordMethod(mn *MethodNode) {
	if m.methods == nil {
		m.methods = set.NewTreeSet[*MethodNode](compareMethods)
	}
	m.methods.Insert(mn)
}

// FieldsRead returns the recorded field reads ordered by name.
func (m *ClassMeta) FieldsRead() []*FieldNode {
	if m.fieldsRead == nil {
		return nil
	}
	return m.fieldsRead.Slice()
}

// FieldsWritten returns the recorded field writes ordered by name.
func (m *ClassMeta) FieldsWritten() []*FieldNode {
	if m.fieldsWritten == nil {
		return nil
	}
	return m.fieldsWritten.Slice()
}

// MethodsCalled returns the recorded method calls ordered by signature.
func (m *ClassMeta) MethodsCalled() []*MethodNode {
	if m.methods == nil {
		return nil
	}
	return m.methods.Slice()
}
