package ast

import (
	"github.com/dcarvalho/amanda/internal/symtab"
	"github.com/dcarvalho/amanda/internal/token"
)

func (*Annot) exprNode() {}

// Each concrete expression type below embeds Annot and implements
// Annotation by returning a pointer to that embedded block.

// BinOp is a binary operator expression (+ - * / // % < > <= >= == !=
// e ou).
type BinOp struct {
	Annot
	Left, Right Expr
	Op          token.Token
}

func (n *BinOp) Pos() token.Position            { return n.Op.Position }
func (n *BinOp) Annotation() *Annot              { return &n.Annot }
func (n *BinOp) Accept(v Visitor) (interface{}, error) { return v.VisitBinOp(n) }

// UnaryOp is a prefix operator expression (+ - nao).
type UnaryOp struct {
	Annot
	Op      token.Token
	Operand Expr
}

func (n *UnaryOp) Pos() token.Position            { return n.Op.Position }
func (n *UnaryOp) Annotation() *Annot              { return &n.Annot }
func (n *UnaryOp) Accept(v Visitor) (interface{}, error) { return v.VisitUnaryOp(n) }

// Constant is a literal: int, real, string, bool, or nulo.
type Constant struct {
	Annot
	Tok  token.Token
	Kind token.Type // token.Integer, token.Real, token.String, token.True, token.False, token.Nulo
}

func (n *Constant) Pos() token.Position            { return n.Tok.Position }
func (n *Constant) Annotation() *Annot              { return &n.Annot }
func (n *Constant) Accept(v Visitor) (interface{}, error) { return v.VisitConstant(n) }

// ListLiteral is a bracketed list of element expressions with a declared
// element type, e.g. [int: 1, 2, 3].
type ListLiteral struct {
	Annot
	Tok         token.Token
	ElementType *TypeRef
	Elements    []Expr
}

func (n *ListLiteral) Pos() token.Position            { return n.Tok.Position }
func (n *ListLiteral) Annotation() *Annot              { return &n.Annot }
func (n *ListLiteral) Accept(v Visitor) (interface{}, error) { return v.VisitListLiteral(n) }

// Variable is a bare name reference. VarSymbol is filled in by the
// analyzer once the name resolves.
type Variable struct {
	Annot
	Name      token.Token
	VarSymbol *symtab.Symbol
}

func (n *Variable) Pos() token.Position            { return n.Name.Position }
func (n *Variable) Annotation() *Annot              { return &n.Annot }
func (n *Variable) Accept(v Visitor) (interface{}, error) { return v.VisitVariable(n) }

// Get is member access: target.member.
type Get struct {
	Annot
	Target Expr
	Member token.Token
	Sym    *symtab.Symbol
}

func (n *Get) Pos() token.Position            { return n.Member.Position }
func (n *Get) Annotation() *Annot              { return &n.Annot }
func (n *Get) Accept(v Visitor) (interface{}, error) { return v.VisitGet(n) }

// Set is field assignment: target.member = value. Target is a *Get whose
// own Target is the receiver expression.
type Set struct {
	Annot
	Target *Get
	Value  Expr
}

func (n *Set) Pos() token.Position            { return n.Target.Pos() }
func (n *Set) Annotation() *Annot              { return &n.Annot }
func (n *Set) Accept(v Visitor) (interface{}, error) { return v.VisitSet(n) }

// Index is list indexing: target[index].
type Index struct {
	Annot
	Tok    token.Token
	Target Expr
	Idx    Expr
}

func (n *Index) Pos() token.Position            { return n.Tok.Position }
func (n *Index) Annotation() *Annot              { return &n.Annot }
func (n *Index) Accept(v Visitor) (interface{}, error) { return v.VisitIndex(n) }

// Converte is an explicit cast: converte(value) como Tipo.
type Converte struct {
	Annot
	Tok    token.Token
	Value  Expr
	Target *TypeRef
}

func (n *Converte) Pos() token.Position            { return n.Tok.Position }
func (n *Converte) Annotation() *Annot              { return &n.Annot }
func (n *Converte) Accept(v Visitor) (interface{}, error) { return v.VisitConverte(n) }

// Call is a function/constructor call, or one of the three intrinsics
// (lista, matriz, anexe) dispatched by Callee's name.
type Call struct {
	Annot
	Tok    token.Token
	Callee Expr
	Args   []Expr
	Sym    *symtab.Symbol
}

func (n *Call) Pos() token.Position            { return n.Tok.Position }
func (n *Call) Annotation() *Annot              { return &n.Annot }
func (n *Call) Accept(v Visitor) (interface{}, error) { return v.VisitCall(n) }

// Assign is plain variable assignment: name = value.
type Assign struct {
	Annot
	Target *Variable
	Value  Expr
}

func (n *Assign) Pos() token.Position            { return n.Target.Pos() }
func (n *Assign) Annotation() *Annot              { return &n.Annot }
func (n *Assign) Accept(v Visitor) (interface{}, error) { return v.VisitAssign(n) }

// Eu is the self-reference expression, legal only inside a method body.
type Eu struct {
	Annot
	Tok token.Token
}

func (n *Eu) Pos() token.Position            { return n.Tok.Position }
func (n *Eu) Annotation() *Annot              { return &n.Annot }
func (n *Eu) Accept(v Visitor) (interface{}, error) { return v.VisitEu(n) }
