// Package extension provides the table of extension methods: static helper
// methods whose first parameter is the receiver, offered to method
// resolution as if they were declared on the receiver type.
//
// Modules are registered by name. All registry methods are safe for
// concurrent use, so one registry can serve checkers running on different
// units at the same time.
package extension

import (
	"fmt"
	"sync"

	"martianoff/stc/internal/ast"
	"martianoff/stc/internal/types"
)

// Module is a named set of extension methods declared on a helper class.
type Module struct {
	Name    string         // Module name, as used in configuration: "default"
	Owner   *ast.ClassNode // Helper class declaring the static methods
	Methods []*ast.MethodNode
}

// Registry indexes extension methods by name.
//
// Thread-safe: all methods can be called concurrently.
type Registry struct {
	mu sync.RWMutex

	// modules maps module name to the registered module
	modules map[string]*Module

	// order keeps registration order for deterministic lookups
	order []string

	// methodIndex maps method name to the static helpers of that name
	methodIndex map[string][]*ast.MethodNode
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		modules:     make(map[string]*Module),
		methodIndex: make(map[string][]*ast.MethodNode),
	}
}

// Register adds a module. Every method must be static and take the receiver
// as its first parameter.
func (r *Registry) Register(m Module) error {
	for _, mn := range m.Methods {
		if !mn.IsStatic() || len(mn.Params) == 0 {
			return &InvalidMethodError{Module: m.Name, Method: mn.Name}
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.modules[m.Name]; ok {
		return &ConflictError{Name: m.Name}
	}
	mod := m
	r.modules[m.Name] = &mod
	r.order = append(r.order, m.Name)
	for _, mn := range m.Methods {
		r.methodIndex[mn.Name] = append(r.methodIndex[mn.Name], mn)
	}
	return nil
}

// Has reports whether a module with the given name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.modules[name]
	return ok
}

// Modules returns the registered modules in registration order.
func (r *Registry) Modules() []*Module {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Module, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.modules[name])
	}
	return result
}

// Lookup returns extension views of every helper called name whose receiver
// parameter accepts receiver. A view drops the receiver parameter, is owned
// by receiver and links back to the helper through Extension.
func (r *Registry) Lookup(receiver *ast.ClassNode, name string) []*ast.MethodNode {
	if receiver == nil {
		return nil
	}
	r.mu.RLock()
	helpers := r.methodIndex[name]
	r.mu.RUnlock()

	var views []*ast.MethodNode
	for _, h := range helpers {
		if !Accepts(h, receiver) {
			continue
		}
		views = append(views, View(h, receiver))
	}
	return views
}

// Accepts reports whether helper can be called on receiver.
func Accepts(helper *ast.MethodNode, receiver *ast.ClassNode) bool {
	self := helper.Params[0].VarType()
	if types.IsNull(receiver) {
		return false
	}
	if receiver.IsPrimitive() {
		receiver = types.Box(receiver)
	}
	return types.IsAssignableTo(receiver, self)
}

// View returns the instance-method view of helper on receiver.
func View(helper *ast.MethodNode, receiver *ast.ClassNode) *ast.MethodNode {
	return &ast.MethodNode{
		Name:       helper.Name,
		Modifiers:  ast.Public,
		Owner:      receiver,
		Params:     helper.Params[1:],
		ReturnType: helper.ReturnType,
		Generics:   helper.Generics,
		Dynamic:    helper.Dynamic,
		Pos:        helper.Pos,
		Extension:  helper,
	}
}

// ConflictError is returned when a module name is registered twice.
type ConflictError struct {
	Name string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("extension module '%s' is already registered", e.Name)
}

// InvalidMethodError is returned for a helper that cannot act as an
// extension method.
type InvalidMethodError struct {
	Module string
	Method string
}

func (e *InvalidMethodError) Error() string {
	return fmt.Sprintf("extension module '%s': method '%s' must be static and take the receiver as first parameter",
		e.Module, e.Method)
}
