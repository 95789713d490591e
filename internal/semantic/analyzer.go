// Package semantic implements the analyzer: the tree walker that
// resolves names, assigns eval_type/prom_type to every expression,
// rewrites select statements into conditionals, and enforces every
// static rule the language has.
package semantic

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/dcarvalho/amanda/internal/ast"
	"github.com/dcarvalho/amanda/internal/compileerror"
	"github.com/dcarvalho/amanda/internal/config"
	"github.com/dcarvalho/amanda/internal/symtab"
	"github.com/dcarvalho/amanda/internal/token"
	"github.com/dcarvalho/amanda/internal/types"
)

// Parser is the external collaborator the analyzer asks to turn a
// module path into an AST — parsing is out of this package's scope; the
// analyzer only ever consumes the result.
type Parser interface {
	ParseFile(path string) (*ast.Program, error)
}

// Analyzer is a two-role visitor: the Visit methods perform resolution
// and type checking, while hasReturn (see control.go) statically asks
// whether a subtree guarantees a return.
type Analyzer struct {
	cfg      *config.Config
	registry *symtab.Registry
	global   *symtab.Scope
	current  *symtab.Scope
	parser   Parser
	log      *zap.Logger

	// currentClass is non-nil while analyzing a class's field/method
	// bodies, giving Eu its eval_type and gating its legality.
	currentClass types.Type

	// currentPath is the absolute path of the module currently being
	// analyzed, used to stamp CompileError.File and to resolve "usa"
	// targets relative to the importing file.
	currentPath string

	// currentFunc is non-nil while analyzing a function/method body,
	// giving Retorna something to type-check against and gating its
	// legality.
	currentFunc *symtab.Symbol

	// classSymbols maps a declared class's Type identity back to the
	// Symbol carrying its Members/Constructor — ClassType (internal/types)
	// only stores member *types*, so Get/Set/constructor-call resolution
	// goes through this side table instead of overloading the type system
	// with symbol-table concerns.
	classSymbols map[*types.ClassType]*symtab.Symbol
}

// Intrinsic function names dispatched specially at call sites.
const (
	intrinsicLista  = "lista"
	intrinsicMatriz = "matriz"
	intrinsicAnexe  = "anexe"
)

// New constructs an Analyzer and loads the built-in module. Names in
// builtinSymbols not already defined by the built-in module's own source
// are merged into the global scope afterward, preferring the module's
// own definitions on any clash.
func New(cfg *config.Config, parser Parser, builtinSymbols map[string]*symtab.Symbol, log *zap.Logger) (*Analyzer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	a := &Analyzer{
		cfg:          cfg,
		registry:     symtab.NewRegistry(),
		global:       symtab.NewScope(nil),
		parser:       parser,
		log:          log,
		classSymbols: make(map[*types.ClassType]*symtab.Symbol),
	}
	a.current = a.global
	a.registerPrimitiveTypes()

	if err := a.loadBuiltins(builtinSymbols); err != nil {
		return nil, err
	}
	return a, nil
}

// registerPrimitiveTypes defines the seven primitive type names
// directly in the global scope as Type-kind symbols, before the
// built-in module loads.
func (a *Analyzer) registerPrimitiveTypes() {
	prims := []struct {
		name string
		t    types.Type
	}{
		{"int", types.Int}, {"real", types.Real}, {"bool", types.Bool},
		{"texto", types.Texto}, {"vazio", types.Vazio},
		{"indef", types.Indef}, {"nulo", types.Nulo},
	}
	for _, p := range prims {
		sym := &symtab.Symbol{Name: p.name, OutID: p.name, Type: p.t, Kind: symtab.KindType}
		_ = a.global.Define(sym)
	}
}

// getType resolves a surface type annotation into a concrete types.Type.
// A nil ref means the declaration has no explicit type, which resolves
// to vazio, the void return type.
func (a *Analyzer) getType(ref *ast.TypeRef) (types.Type, error) {
	if ref == nil {
		return types.Vazio, nil
	}
	sym, ok := a.current.Resolve(ref.Name)
	if !ok || (sym.Kind != symtab.KindType && sym.Kind != symtab.KindClass) {
		return nil, a.errf(ref.Pos(), "o tipo '%s' não foi declarado", ref.Name)
	}
	if ref.IsList {
		dim := ref.Dim
		if dim < 1 {
			dim = 1
		}
		return types.NewList(sym.Type, dim), nil
	}
	return sym.Type, nil
}

// visitExpr runs expr through the visitor and returns the *symtab.Symbol
// it resolved to, if any — Variable/Get/Call return one; literals and
// operators return nil. validateGet consults the returned symbol.
func (a *Analyzer) visitExpr(expr ast.Expr) (*symtab.Symbol, error) {
	res, err := expr.Accept(a)
	if err != nil {
		return nil, err
	}
	sym, _ := res.(*symtab.Symbol)
	return sym, nil
}

// validateGet fails if expr is a Get node whose resolved member symbol
// cannot stand alone as a value — used everywhere a sub-expression's
// result is about to be read.
func (a *Analyzer) validateGet(expr ast.Expr, sym *symtab.Symbol) error {
	if _, ok := expr.(*ast.Get); ok && sym != nil && !sym.CanEvaluate() {
		return a.errf(expr.Pos(), "o identificador '%s' não é uma referência válida", sym.Name)
	}
	return nil
}

// typesMatch reports whether received can stand in for expected: either
// they're the same type, or received promotes to expected. Used
// throughout assignment/argument/return checking.
func typesMatch(expected, received types.Type) bool {
	if expected == nil || received == nil {
		return false
	}
	return expected.Equals(received) || received.PromoteTo(expected) != nil
}

// loadBuiltins loads the built-in module from the configured standard
// library directory, then merges any registry symbols not already
// defined by the module's own source, preferring the module's
// definitions on a clash.
func (a *Analyzer) loadBuiltins(builtinSymbols map[string]*symtab.Symbol) error {
	path := filepath.Join(a.cfg.StdLib, "embutidos.ama")
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	a.log.Debug("carregando módulo embutido", zap.String("path", absPath))
	if err := a.loadModule(absPath, token.Position{Filename: absPath, Line: 0}); err != nil {
		return err
	}

	for name, sym := range builtinSymbols {
		if _, exists := a.global.Get(name); !exists {
			_ = a.global.Define(sym)
		}
	}
	return nil
}

// Analyze runs full analysis of program, the main compilation unit,
// recursively loading any modules it imports via "usa".
func (a *Analyzer) Analyze(path string, program *ast.Program) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	mod := symtab.NewModule(absPath)
	a.registry.Register(mod)
	mod.AST = program

	a.currentPath = absPath
	if err := a.analyzeProgram(program); err != nil {
		return err
	}
	mod.Loaded = true
	return nil
}

// analyzeProgram walks program's top-level statements directly into the
// global scope — module-level declarations are depth-zero regardless of
// which module (built-in, imported, or main) they came from, so imports
// behave as a textual merge into one global namespace rather than a
// qualified-namespace import.
func (a *Analyzer) analyzeProgram(program *ast.Program) error {
	program.Scope = a.global
	rewritten, err := a.visitChildren(program.Children, a.global)
	if err != nil {
		return err
	}
	program.Children = rewritten
	return nil
}

// visitChildren visits each statement via visitOrTransform inside scope,
// replacing each child with its (possibly rewritten, possibly dropped)
// result.
func (a *Analyzer) visitChildren(stmts []ast.Stmt, scope *symtab.Scope) ([]ast.Stmt, error) {
	prev := a.current
	a.current = scope
	defer func() { a.current = prev }()

	out := make([]ast.Stmt, 0, len(stmts))
	for _, stmt := range stmts {
		rewritten, err := a.visitOrTransform(stmt)
		if err != nil {
			return nil, err
		}
		if rewritten != nil {
			out = append(out, rewritten)
		}
	}
	return out, nil
}

// visitOrTransform is the statement-rewriting pass: it desugars Escolha
// into a chain of Se nodes, drops pure-expression statements, and
// otherwise just visits the node in place.
func (a *Analyzer) visitOrTransform(stmt ast.Stmt) (ast.Stmt, error) {
	switch n := stmt.(type) {
	case *ast.Escolha:
		se, err := a.desugarEscolha(n)
		if err != nil {
			return nil, err
		}
		if se == nil {
			return nil, nil
		}
		if err := se.Accept(a); err != nil {
			return nil, err
		}
		return se, nil

	case *ast.ExprStmt:
		switch n.Inner.(type) {
		case *ast.Assign, *ast.Call, *ast.Set:
			if err := stmt.Accept(a); err != nil {
				return nil, err
			}
			return stmt, nil
		default:
			return nil, nil
		}

	default:
		if err := stmt.Accept(a); err != nil {
			return nil, err
		}
		return stmt, nil
	}
}

// outIDFor assigns the emitter-facing identifier for a definition: the
// source name itself when safe and at depth zero, else a synthesized
// "_r{depth}{count}_" guaranteed unique within the scope.
func (a *Analyzer) outIDFor(scope *symtab.Scope, name string) string {
	if scope.Depth == 0 && a.cfg.IsValidName(name) {
		return name
	}
	return fmt.Sprintf("_r%d%d_", scope.Depth, scope.Count())
}

func (a *Analyzer) errf(pos token.Position, format string, args ...interface{}) error {
	return compileerror.New(a.currentPath, fmt.Sprintf(format, args...), pos.Line)
}

var _ ast.Visitor = (*Analyzer)(nil)
