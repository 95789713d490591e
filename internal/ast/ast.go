// Package ast defines the abstract syntax tree the analyzer walks: node
// interfaces, the visitor contract, and the mutable annotation fields
// (eval_type, prom_type, var_symbol, symbols) the analyzer writes during
// that walk.
//
// Parsing to this shape is an out-of-scope external collaborator — this
// package describes the tree's shape, not how it gets built.
package ast

import (
	"github.com/dcarvalho/amanda/internal/symtab"
	"github.com/dcarvalho/amanda/internal/token"
	"github.com/dcarvalho/amanda/internal/types"
)

// Node is the base interface every AST node implements.
type Node interface {
	Pos() token.Position
}

// Expr is any node that produces a value. Every Expr carries mutable
// EvalType/PromType fields the analyzer fills in — dedicated fields
// pre-declared on the variants rather than a side table keyed by node
// id, for locality.
type Expr interface {
	Node
	Accept(v Visitor) (interface{}, error)
	Annotation() *Annot
	exprNode()
}

// Stmt is any node that performs an action rather than producing a value.
type Stmt interface {
	Node
	Accept(v Visitor) error
	stmtNode()
}

// Decl is a Stmt that additionally introduces a new name. Declarations
// are only legal in certain positions (function and class declarations
// only at the top level) but are otherwise ordinary statements.
type Decl interface {
	Stmt
	declNode()
}

// Annot holds the two type annotations the analyzer attaches to every
// expression: the type the expression evaluates to, and — when the
// surrounding context requires an implicit coercion — the type it is
// promoted to (nil if none applies).
type Annot struct {
	EvalType types.Type
	PromType types.Type
}

// Visitor dispatches by concrete node variant — a tagged-variant
// pattern match instead of reflective name dispatch, so an unhandled
// node kind is a compile-time hole rather than a runtime surprise.
type Visitor interface {
	// Expressions
	VisitBinOp(n *BinOp) (interface{}, error)
	VisitUnaryOp(n *UnaryOp) (interface{}, error)
	VisitConstant(n *Constant) (interface{}, error)
	VisitListLiteral(n *ListLiteral) (interface{}, error)
	VisitVariable(n *Variable) (interface{}, error)
	VisitGet(n *Get) (interface{}, error)
	VisitSet(n *Set) (interface{}, error)
	VisitIndex(n *Index) (interface{}, error)
	VisitConverte(n *Converte) (interface{}, error)
	VisitCall(n *Call) (interface{}, error)
	VisitAssign(n *Assign) (interface{}, error)
	VisitEu(n *Eu) (interface{}, error)

	// Statements
	VisitExprStmt(n *ExprStmt) error
	VisitBlock(n *Block) error
	VisitSe(n *Se) error
	VisitEnquanto(n *Enquanto) error
	VisitPara(n *Para) error
	VisitRetorna(n *Retorna) error
	VisitMostra(n *Mostra) error
	VisitUsa(n *Usa) error
	VisitEscolha(n *Escolha) error

	// Declarations
	VisitVarDecl(n *VarDecl) error
	VisitFuncDecl(n *FuncDecl) error
	VisitClassDecl(n *ClassDecl) error
}

// Program is the root of one source file's AST.
type Program struct {
	Path     string
	Children []Stmt
	Scope    *symtab.Scope
}

func (p *Program) Pos() token.Position {
	if len(p.Children) == 0 {
		return token.Position{Filename: p.Path, Line: 1, Column: 1}
	}
	return p.Children[0].Pos()
}

// TypeRef is a type annotation as written in source (e.g. "int",
// "lista(int)") — resolved by the analyzer into a types.Type. It is not
// itself an Expr: it names a type, it does not produce a value.
type TypeRef struct {
	Name   string
	IsList bool
	Dim    int
	Tok    token.Token
}

func (t *TypeRef) Pos() token.Position { return t.Tok.Position }
