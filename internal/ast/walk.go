package ast

import (
	"fmt"
	"reflect"
)

// Children returns the direct child nodes of n in source order.
func Children(n Node) []Node {
	var out []Node
	add := func(ns ...Node) {
		for _, c := range ns {
			if c != nil && !isNilNode(c) {
				out = append(out, c)
			}
		}
	}
	addExprs := func(es []Expr) {
		for _, e := range es {
			add(e)
		}
	}
	switch n := n.(type) {
	case *VariableExpr, *ConstantExpr, *ClassExpr:
	case *PropertyExpr:
		add(n.Object)
	case *MethodCallExpr:
		add(n.Object)
		addExprs(n.Args)
	case *StaticMethodCallExpr:
		addExprs(n.Args)
	case *ConstructorCallExpr:
		addExprs(n.Args)
	case *BinaryExpr:
		add(n.Left, n.Right)
	case *UnaryExpr:
		add(n.Expr)
	case *NotExpr:
		add(n.Expr)
	case *PostfixExpr:
		add(n.Expr)
	case *PrefixExpr:
		add(n.Expr)
	case *ListExpr:
		addExprs(n.Elems)
	case *MapEntryExpr:
		add(n.Key, n.Value)
	case *MapExpr:
		for _, e := range n.Entries {
			add(e)
		}
	case *RangeExpr:
		add(n.From, n.To)
	case *ClosureExpr:
		add(n.Body)
	case *CastExpr:
		add(n.Expr)
	case *TernaryExpr:
		add(n.Cond, n.Then, n.Else)
	case *ElvisExpr:
		add(n.Value, n.Else)
	case *MethodPointerExpr:
		add(n.Object)
	case *SpreadExpr:
		add(n.Expr)
	case *SpreadMapExpr:
		add(n.Expr)
	case *DeclarationExpr:
		add(n.Var, n.Init)
	case *GStringExpr:
		addExprs(n.Values)

	case *BlockStmt:
		for _, s := range n.Stmts {
			add(s)
		}
	case *ExprStmt:
		add(n.Expr)
	case *ReturnStmt:
		add(n.Expr)
	case *IfStmt:
		add(n.Cond, n.Then, n.Else)
	case *WhileStmt:
		add(n.Cond, n.Body)
	case *ForStmt:
		add(n.Collection, n.Init, n.Cond, n.Update, n.Body)
	case *CaseStmt:
		add(n.Expr, n.Body)
	case *SwitchStmt:
		add(n.Subject)
		for _, c := range n.Cases {
			add(c)
		}
		add(n.Default)
	case *ThrowStmt:
		add(n.Expr)
	case *CatchStmt:
		add(n.Body)
	case *TryCatchStmt:
		add(n.Try)
		for _, c := range n.Catches {
			add(c)
		}
		add(n.Finally)
	case *BreakStmt, *ContinueStmt, *EmptyStmt:
	default:
		panic(fmt.Sprintf("ast: unexpected node %T", n))
	}
	return out
}

// Inspect walks the tree rooted at n depth first, calling f for every node.
// Children are skipped when f returns false.
func Inspect(n Node, f func(Node) bool) {
	if n == nil || isNilNode(n) || !f(n) {
		return
	}
	for _, c := range Children(n) {
		Inspect(c, f)
	}
}

// isNilNode catches typed nil pointers stored in interface fields.
func isNilNode(n Node) bool {
	v := reflect.ValueOf(n)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
