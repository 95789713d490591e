// Package emitter is the bytecode emitter: a second tree walker that,
// given a fully annotated AST and its scopes, produces a two-section
// textual bytecode file — a constants pool followed by an opcode
// stream.
package emitter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dcarvalho/amanda/internal/ast"
	"github.com/dcarvalho/amanda/internal/symtab"
	"github.com/dcarvalho/amanda/internal/token"
	"github.com/dcarvalho/amanda/internal/types"
)

// NotImplementedError marks a node kind the emitter deliberately does
// not cover yet. It is an implementation fault, not a user-addressable
// diagnostic — callers should treat it differently from a CompileError.
type NotImplementedError struct {
	Node string
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("emitter: geração de código ainda não implementada para %s", e.Node)
}

func notImplemented(nodeName string) error {
	return &NotImplementedError{Node: nodeName}
}

// Emitter walks an analyzed AST and produces bytecode text. It
// implements ast.Visitor but deliberately covers only a subset of node
// kinds; everything else returns a *NotImplementedError.
type Emitter struct {
	scope  *symtab.Scope
	depth  int
	lineno int

	constOrder []string
	constIndex map[string]int

	ops strings.Builder
}

// New creates an Emitter with an empty constant pool.
func New() *Emitter {
	return &Emitter{depth: -1, lineno: 1, constIndex: make(map[string]int)}
}

// Emit compiles program into the final ".data"/".ops" bytecode text.
func (e *Emitter) Emit(program *ast.Program) (string, error) {
	if err := e.compileBlock(program.Children, program.Scope); err != nil {
		return "", err
	}

	var out strings.Builder
	out.WriteString(".data\n")
	for _, c := range e.constOrder {
		out.WriteString(c)
		out.WriteByte('\n')
	}
	out.WriteString(".ops\n")
	out.WriteString(e.ops.String())
	return out.String(), nil
}

// internConstant assigns literal the next dense index on first sight, or
// returns its existing one, so repeated mentions round-trip to the same
// pool slot.
func (e *Emitter) internConstant(literal string) int {
	if idx, ok := e.constIndex[literal]; ok {
		return idx
	}
	idx := len(e.constOrder)
	e.constIndex[literal] = idx
	e.constOrder = append(e.constOrder, literal)
	return idx
}

func (e *Emitter) writeOp(op OpCode, args ...int) {
	e.ops.WriteString(strconv.Itoa(int(op)))
	for _, a := range args {
		e.ops.WriteByte(' ')
		e.ops.WriteString(strconv.Itoa(a))
	}
	e.ops.WriteByte('\n')
}

func (e *Emitter) updateLine(pos token.Position) {
	if pos.IsValid() {
		e.lineno = pos.Line
	}
}

// compileBlock walks stmts in scope, incrementing depth for the
// duration — the shared logic behind both VisitBlock and the top-level
// Program walk, mirroring ByteGen.compile_block.
func (e *Emitter) compileBlock(stmts []ast.Stmt, scope *symtab.Scope) error {
	e.depth++
	e.scope = scope
	for _, stmt := range stmts {
		if err := stmt.Accept(e); err != nil {
			return err
		}
	}
	e.depth--
	if scope != nil {
		e.scope = scope.Parent
	}
	return nil
}

func (e *Emitter) gen(expr ast.Expr) error {
	_, err := expr.Accept(e)
	return err
}

// VisitBlock handles a nested block statement.
func (e *Emitter) VisitBlock(n *ast.Block) error {
	e.updateLine(n.Pos())
	return e.compileBlock(n.Stmts, n.Symbols)
}

// VisitConstant interns the literal lexeme and emits LOAD_CONST.
func (e *Emitter) VisitConstant(n *ast.Constant) (interface{}, error) {
	e.updateLine(n.Pos())
	idx := e.internConstant(n.Tok.Lexeme)
	e.writeOp(LOAD_CONST, idx)
	return nil, nil
}

// VisitVariable interns the resolved symbol's out_id and emits GET_GLOBAL.
func (e *Emitter) VisitVariable(n *ast.Variable) (interface{}, error) {
	e.updateLine(n.Pos())
	sym := n.VarSymbol
	if sym == nil && e.scope != nil {
		sym, _ = e.scope.Resolve(n.Name.Lexeme)
	}
	if sym == nil {
		return nil, fmt.Errorf("emitter: variável '%s' sem símbolo resolvido", n.Name.Lexeme)
	}
	idx := e.internConstant(sym.OutID)
	e.writeOp(GET_GLOBAL, idx)
	return nil, nil
}

// VisitVarDecl emits the initializer (if any), then DEF_GLOBAL.
func (e *Emitter) VisitVarDecl(n *ast.VarDecl) error {
	e.updateLine(n.Pos())
	if n.Init != nil {
		if err := e.gen(n.Init); err != nil {
			return err
		}
	}
	sym := n.Sym
	outID := n.Name.Lexeme
	if sym != nil {
		outID = sym.OutID
	}
	tc, err := typeCodeOf(n.ResolvedType)
	if err != nil {
		return err
	}
	idIdx := e.internConstant(outID)
	e.writeOp(DEF_GLOBAL, idIdx, int(tc))
	return nil
}

func typeCodeOf(t types.Type) (TypeCode, error) {
	switch {
	case t == nil:
		return 0, fmt.Errorf("emitter: variável sem tipo resolvido")
	case t.Equals(types.Int):
		return TypeCodeInt, nil
	case t.Equals(types.Real):
		return TypeCodeReal, nil
	case t.Equals(types.Bool):
		return TypeCodeBool, nil
	case t.Equals(types.Texto):
		return TypeCodeTexto, nil
	default:
		return 0, notImplemented(fmt.Sprintf("DEF_GLOBAL de tipo %s", t))
	}
}

// VisitUnaryOp emits the operand, then OP_INVERT for unary minus — the
// sole unary the target opcode set can express.
func (e *Emitter) VisitUnaryOp(n *ast.UnaryOp) (interface{}, error) {
	e.updateLine(n.Pos())
	if err := e.gen(n.Operand); err != nil {
		return nil, err
	}
	if n.Op.Type != token.Minus {
		return nil, notImplemented(fmt.Sprintf("operador unário '%s'", n.Op.Lexeme))
	}
	e.writeOp(OP_INVERT)
	return nil, nil
}

// VisitBinOp emits left, then right, then the arithmetic opcode.
func (e *Emitter) VisitBinOp(n *ast.BinOp) (interface{}, error) {
	e.updateLine(n.Pos())
	if err := e.gen(n.Left); err != nil {
		return nil, err
	}
	if err := e.gen(n.Right); err != nil {
		return nil, err
	}
	switch n.Op.Type {
	case token.Plus:
		e.writeOp(OP_ADD)
	case token.Minus:
		e.writeOp(OP_MINUS)
	case token.Star:
		e.writeOp(OP_MUL)
	case token.Slash:
		e.writeOp(OP_DIV)
	case token.DoubleSlash:
		e.writeOp(OP_FLOORDIV)
	case token.Percent:
		e.writeOp(OP_MODULO)
	default:
		return nil, notImplemented(fmt.Sprintf("operador binário '%s'", n.Op.Lexeme))
	}
	return nil, nil
}

// VisitMostra emits the expression, then MOSTRA.
func (e *Emitter) VisitMostra(n *ast.Mostra) error {
	e.updateLine(n.Pos())
	if err := e.gen(n.Value); err != nil {
		return err
	}
	e.writeOp(MOSTRA)
	return nil
}

// Every remaining node kind is outside the deliberate emitter subset.

func (e *Emitter) VisitListLiteral(n *ast.ListLiteral) (interface{}, error) {
	return nil, notImplemented("ListLiteral")
}
func (e *Emitter) VisitGet(n *ast.Get) (interface{}, error)           { return nil, notImplemented("Get") }
func (e *Emitter) VisitSet(n *ast.Set) (interface{}, error)           { return nil, notImplemented("Set") }
func (e *Emitter) VisitIndex(n *ast.Index) (interface{}, error)       { return nil, notImplemented("Index") }
func (e *Emitter) VisitConverte(n *ast.Converte) (interface{}, error) { return nil, notImplemented("Converte") }
func (e *Emitter) VisitCall(n *ast.Call) (interface{}, error)         { return nil, notImplemented("Call") }
func (e *Emitter) VisitAssign(n *ast.Assign) (interface{}, error)     { return nil, notImplemented("Assign") }
func (e *Emitter) VisitEu(n *ast.Eu) (interface{}, error)             { return nil, notImplemented("Eu") }

func (e *Emitter) VisitExprStmt(n *ast.ExprStmt) error { return notImplemented("ExprStmt") }
func (e *Emitter) VisitSe(n *ast.Se) error             { return notImplemented("Se") }
func (e *Emitter) VisitEnquanto(n *ast.Enquanto) error { return notImplemented("Enquanto") }
func (e *Emitter) VisitPara(n *ast.Para) error         { return notImplemented("Para") }
func (e *Emitter) VisitRetorna(n *ast.Retorna) error   { return notImplemented("Retorna") }
func (e *Emitter) VisitUsa(n *ast.Usa) error           { return notImplemented("Usa") }
func (e *Emitter) VisitEscolha(n *ast.Escolha) error   { return notImplemented("Escolha") }
func (e *Emitter) VisitFuncDecl(n *ast.FuncDecl) error { return notImplemented("FuncDecl") }
func (e *Emitter) VisitClassDecl(n *ast.ClassDecl) error {
	return notImplemented("ClassDecl")
}

var _ ast.Visitor = (*Emitter)(nil)
