package semantic

import (
	"github.com/dcarvalho/amanda/internal/ast"
	"github.com/dcarvalho/amanda/internal/symtab"
	"github.com/dcarvalho/amanda/internal/types"
)

// VisitCall resolves the callee (plain name, member access, or "not
// callable"), dispatches the three intrinsics by name, treats a
// class-valued callee as a constructor call, and otherwise validates an
// ordinary function call.
func (a *Analyzer) VisitCall(n *ast.Call) (interface{}, error) {
	var sym *symtab.Symbol
	switch callee := n.Callee.(type) {
	case *ast.Variable:
		name := callee.Name.Lexeme
		resolved, ok := a.current.Resolve(name)
		if !ok {
			return nil, a.errf(n.Pos(), "o identificador '%s' não foi definido neste escopo", name)
		}
		sym = resolved
		callee.VarSymbol = resolved
	case *ast.Get:
		resolved, err := a.visitExpr(callee)
		if err != nil {
			return nil, err
		}
		sym = resolved
	case *ast.Call:
		return nil, a.errf(n.Pos(), "Não pode invocar o resultado de uma invocação")
	default:
		return nil, a.errf(n.Pos(), "o símbolo '%s' não é invocável", calleeLexeme(n.Callee))
	}

	if sym.Kind == symtab.KindClass {
		if err := a.validateCall(sym.Constructor, n.Args, n); err != nil {
			return nil, err
		}
		n.EvalType = sym.Type
		n.Sym = sym
		return sym, nil
	}

	switch sym.Name {
	case intrinsicLista, intrinsicMatriz, intrinsicAnexe:
		if err := a.builtinCall(sym.Name, n); err != nil {
			return nil, err
		}
		return sym, nil
	}

	if err := a.validateCall(sym, n.Args, n); err != nil {
		return nil, err
	}
	n.EvalType = sym.Type
	n.Sym = sym
	return sym, nil
}

// validateCall checks an ordinary (or constructor) call against sym:
// callable, exact arity, and each argument matching or promoting to its
// parameter's type.
func (a *Analyzer) validateCall(sym *symtab.Symbol, args []ast.Expr, n *ast.Call) error {
	if sym == nil || sym.Kind != symtab.KindFunction {
		name := "?"
		if sym != nil {
			name = sym.Name
		}
		return a.errf(n.Pos(), "identificador '%s' não é invocável", name)
	}
	for _, arg := range args {
		if _, err := a.visitExpr(arg); err != nil {
			return err
		}
	}
	if err := a.checkArity(args, sym.Name, len(sym.Params), n); err != nil {
		return err
	}
	for i, param := range sym.Params {
		arg := args[i]
		argType := arg.Annotation().EvalType
		arg.Annotation().PromType = argType.PromoteTo(param.Type)
		if !typesMatch(param.Type, argType) {
			return a.errf(arg.Pos(), "argumento inválido. Esperava-se um argumento do tipo '%s' mas recebeu o tipo '%s'", param.Type, argType)
		}
	}
	return nil
}

func (a *Analyzer) checkArity(args []ast.Expr, name string, paramLen int, n *ast.Call) error {
	if len(args) != paramLen {
		return a.errf(n.Pos(), "número incorrecto de argumentos para a função %s. Esperava %d argumento(s), porém recebeu %d", name, paramLen, len(args))
	}
	return nil
}

// builtinCall handles the three intrinsics dispatched specially by
// name. The type-name first argument of lista/matriz is never evaluated
// as an expression — it names a type, it does not produce a value.
func (a *Analyzer) builtinCall(name string, n *ast.Call) error {
	switch name {
	case intrinsicLista:
		if err := a.checkArity(n.Args, name, 2, n); err != nil {
			return err
		}
		typeName, ok := n.Args[0].(*ast.Variable)
		if !ok {
			return a.errf(n.Pos(), "O argumento 1 da função 'lista' deve ser um tipo")
		}
		listType, err := a.getType(&ast.TypeRef{Name: typeName.Name.Lexeme, IsList: true, Dim: 1, Tok: typeName.Name})
		if err != nil {
			return err
		}
		n.EvalType = listType
		size := n.Args[1]
		if _, err := a.visitExpr(size); err != nil {
			return err
		}
		if !types.Int.Equals(size.Annotation().EvalType) {
			return a.errf(size.Pos(), "O tamanho de uma lista deve ser representado por um inteiro")
		}

	case intrinsicMatriz:
		if err := a.checkArity(n.Args, name, 3, n); err != nil {
			return err
		}
		typeName, ok := n.Args[0].(*ast.Variable)
		if !ok {
			return a.errf(n.Pos(), "O argumento 1 da função 'matriz' deve ser um tipo")
		}
		matrixType, err := a.getType(&ast.TypeRef{Name: typeName.Name.Lexeme, IsList: true, Dim: 2, Tok: typeName.Name})
		if err != nil {
			return err
		}
		n.EvalType = matrixType
		for i, arg := range n.Args[1:] {
			if _, err := a.visitExpr(arg); err != nil {
				return err
			}
			if !types.Int.Equals(arg.Annotation().EvalType) {
				return a.errf(arg.Pos(), "O argumento %d da função matriz deve ser um inteiro", i+2)
			}
		}

	case intrinsicAnexe:
		if err := a.checkArity(n.Args, name, 2, n); err != nil {
			return err
		}
		listArg, value := n.Args[0], n.Args[1]
		if _, err := a.visitExpr(listArg); err != nil {
			return err
		}
		if _, err := a.visitExpr(value); err != nil {
			return err
		}
		listType, ok := listArg.Annotation().EvalType.(*types.ListType)
		if !ok {
			return a.errf(listArg.Pos(), "O argumento 1 da função 'anexe' deve ser uma lista")
		}
		valueType := value.Annotation().EvalType
		value.Annotation().PromType = valueType.PromoteTo(listType.Element)
		// The match test deliberately uses the pre-promotion type.
		if !typesMatch(listType.Element, valueType) {
			return a.errf(value.Pos(), "incompatibilidade de tipos entre a lista e o valor a anexar: '%s' != '%s'", listType.Element, valueType)
		}
		n.EvalType = types.Vazio
	}
	return nil
}

// calleeLexeme recovers a printable spelling for a callee that is
// neither a name nor a member access, for the "not callable" diagnostic.
func calleeLexeme(e ast.Expr) string {
	switch n := e.(type) {
	case *ast.Constant:
		return n.Tok.Lexeme
	case *ast.Eu:
		return "eu"
	default:
		return "expressão"
	}
}
