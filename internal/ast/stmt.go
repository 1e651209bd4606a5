package ast

// Stmt is a statement. The set of implementations is closed.
type Stmt interface {
	Node
	stmtNode()
}

type stmtBase struct {
	Pos Position
}

func (s *stmtBase) Position() Position     { return s.Pos }
func (s *stmtBase) SetPosition(p Position) { s.Pos = p }
func (*stmtBase) stmtNode()                {}

// BlockStmt is a sequence of statements with its own scope.
type BlockStmt struct {
	stmtBase
	Stmts []Stmt
}

// NewBlock returns a block of stmts.
func NewBlock(stmts ...Stmt) *BlockStmt {
	return &BlockStmt{Stmts: stmts}
}

// ExprStmt is an expression used as a statement.
type ExprStmt struct {
	stmtBase
	Expr Expr
}

// NewExprStmt wraps e, taking its position.
func NewExprStmt(e Expr) *ExprStmt {
	s := &ExprStmt{Expr: e}
	s.Pos = e.Position()
	return s
}

// ReturnStmt returns Expr, which is nil for a bare return.
type ReturnStmt struct {
	stmtBase
	Expr Expr
}

// NewReturn returns a return statement for e.
func NewReturn(e Expr) *ReturnStmt {
	s := &ReturnStmt{Expr: e}
	if e != nil {
		s.Pos = e.Position()
	}
	return s
}

// IfStmt is if/else. Else may be nil.
type IfStmt struct {
	stmtBase
	Cond Expr
	Then Stmt
	Else Stmt
}

// WhileStmt is a while loop.
type WhileStmt struct {
	stmtBase
	Cond Expr
	Body Stmt
}

// ForStmt is either for (Var in Collection) or the classic three-clause
// loop when Var is nil.
type ForStmt struct {
	stmtBase
	Var        *Parameter
	Collection Expr
	Init       Expr
	Cond       Expr
	Update     Expr
	Body       Stmt
}

// IsForIn reports whether f iterates over a collection.
func (f *ForStmt) IsForIn() bool {
	return f.Var != nil
}

// CaseStmt is one case of a switch.
type CaseStmt struct {
	stmtBase
	Expr Expr
	Body Stmt
}

// SwitchStmt is a switch. Default may be nil.
type SwitchStmt struct {
	stmtBase
	Subject Expr
	Cases   []*CaseStmt
	Default Stmt
}

// BreakStmt is break.
type BreakStmt struct {
	stmtBase
	Label string
}

// ContinueStmt is continue.
type ContinueStmt struct {
	stmtBase
	Label string
}

// ThrowStmt is throw.
type ThrowStmt struct {
	stmtBase
	Expr Expr
}

// CatchStmt is one catch clause.
type CatchStmt struct {
	stmtBase
	Param *Parameter
	Body  Stmt
}

// TryCatchStmt is try/catch/finally. Finally may be nil.
type TryCatchStmt struct {
	stmtBase
	Try     Stmt
	Catches []*CatchStmt
	Finally Stmt
}

// EmptyStmt does nothing.
type EmptyStmt struct {
	stmtBase
}

// ExitsAbruptly reports whether s always leaves the enclosing block through
// return, throw, break or continue.
func ExitsAbruptly(s Stmt) bool {
	switch s := s.(type) {
	case *ReturnStmt, *ThrowStmt, *BreakStmt, *ContinueStmt:
		return true
	case *BlockStmt:
		if len(s.Stmts) == 0 {
			return false
		}
		return ExitsAbruptly(s.Stmts[len(s.Stmts)-1])
	case *IfStmt:
		return s.Else != nil && ExitsAbruptly(s.Then) && ExitsAbruptly(s.Else)
	}
	return false
}
