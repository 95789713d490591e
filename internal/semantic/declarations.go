package semantic

import (
	"github.com/dcarvalho/amanda/internal/ast"
	"github.com/dcarvalho/amanda/internal/symtab"
	"github.com/dcarvalho/amanda/internal/types"
)

// maxParams is the fixed parameter-count ceiling.
const maxParams = 255

// VisitVarDecl enforces the variable declaration rules: no local
// redeclaration, no initializer that is the bare name being declared,
// and an initializer whose type must match or promote to the declared
// type. A reference to the name nested inside a larger initializer
// expression (e.g. "x + 1") is not detected and resolves to the new
// symbol.
func (a *Analyzer) VisitVarDecl(n *ast.VarDecl) error {
	name := n.Name.Lexeme
	if _, exists := a.current.Get(name); exists {
		return a.errf(n.Pos(), "O identificador '%s' já foi declarado neste escopo", name)
	}

	varType, err := a.getType(n.TypeName)
	if err != nil {
		return err
	}
	n.ResolvedType = varType

	outID := a.outIDFor(a.current, name)
	sym := symtab.NewVariable(name, outID, varType, n.Pos())
	if err := a.current.Define(sym); err != nil {
		return a.errf(n.Pos(), "O identificador '%s' já foi declarado neste escopo", name)
	}
	a.current.AddLocal(outID)
	n.Sym = sym

	if n.Init != nil {
		if v, ok := n.Init.(*ast.Variable); ok && v.Name.Lexeme == name {
			return a.errf(n.Init.Pos(), "Erro ao inicializar variável. Não pode referenciar uma variável durante a sua declaração")
		}
		initSym, err := a.visitExpr(n.Init)
		if err != nil {
			return err
		}
		if err := a.validateGet(n.Init, initSym); err != nil {
			return err
		}
		initType := n.Init.Annotation().EvalType
		n.Init.Annotation().PromType = initType.PromoteTo(varType)
		if !typesMatch(varType, initType) {
			return a.errf(n.Pos(), "atribuição inválida. incompatibilidade entre os operandos da atribuição: '%s' e '%s'", varType, initType)
		}
	}

	if a.current.Depth == 0 {
		sym.IsGlobal = true
	}
	return nil
}

// VisitFuncDecl enforces the function declaration rules: global-only,
// arity-capped, self-referenceable (the symbol is defined before the
// body is analyzed), and a guaranteed return for non-void bodies. The
// body is analyzed at the declaration, so it sees only names declared
// before it; a function declared later in the module is not yet visible.
func (a *Analyzer) VisitFuncDecl(n *ast.FuncDecl) error {
	if a.current.Depth != 0 {
		return a.errf(n.Pos(), "As funções só podem ser declaradas no escopo global")
	}

	name := n.Name.Lexeme
	if _, exists := a.current.Get(name); exists {
		return a.errf(n.Pos(), "O identificador '%s' já foi declarado neste escopo", name)
	}
	if len(n.Params) > maxParams {
		return a.errf(n.Pos(), "As funções só podem ter até 255 parâmetros")
	}

	returnType, err := a.getType(n.ReturnType)
	if err != nil {
		return err
	}

	outID := a.outIDFor(a.current, name)
	sym := symtab.NewFunction(name, outID, returnType, n.Pos())
	sym.IsGlobal = true
	sym.IsNative = n.IsNative
	if err := a.current.Define(sym); err != nil {
		return a.errf(n.Pos(), "O identificador '%s' já foi declarado neste escopo", name)
	}
	a.current.AddLocal(outID)
	n.Sym = sym

	scope, params, err := a.defineFuncScope(n.Params)
	if err != nil {
		return err
	}
	sym.Params = params
	sym.BodyScope = scope

	if n.IsNative {
		return nil
	}

	if !hasReturn(n.Body) && !returnType.Equals(types.Vazio) {
		return a.errf(n.Pos(), "a função '%s' não possui a instrução 'retorna'", name)
	}

	prevFunc := a.currentFunc
	a.currentFunc = sym
	err = a.visitBlockInScope(n.Body, scope)
	a.currentFunc = prevFunc
	return err
}

// defineFuncScope builds the child scope a function body shares with
// its parameter symbols: each parameter is its own variable symbol, one
// depth below the declaring scope, recorded as an emitter-visible
// local.
func (a *Analyzer) defineFuncScope(params []*ast.Param) (*symtab.Scope, []symtab.Param, error) {
	scope := symtab.NewScope(a.current)
	seen := make(map[string]bool, len(params))
	out := make([]symtab.Param, 0, len(params))
	for _, p := range params {
		pname := p.Name.Lexeme
		if seen[pname] {
			return nil, nil, a.errf(p.Name.Position, "o parâmetro '%s' já foi especificado nesta função", pname)
		}
		seen[pname] = true
		ptype, err := a.getType(p.TypeName)
		if err != nil {
			return nil, nil, err
		}
		outID := a.outIDFor(scope, pname)
		psym := symtab.NewVariable(pname, outID, ptype, p.Name.Position)
		if err := scope.Define(psym); err != nil {
			return nil, nil, a.errf(p.Name.Position, "o parâmetro '%s' já foi especificado nesta função", pname)
		}
		scope.AddLocal(outID)
		out = append(out, symtab.Param{Name: pname, Type: ptype})
	}
	return scope, out, nil
}

// VisitClassDecl performs the two-pass class body walk: fields first
// (so the constructor snapshot sees every instance variable), then a
// constructor is synthesized, then methods, and finally every member is
// tagged as a property. Each method body is analyzed as its method is
// declared: it sees every field, the method itself and the methods
// declared before it; a method declared later is not yet a member.
func (a *Analyzer) VisitClassDecl(n *ast.ClassDecl) error {
	if a.current.Depth != 0 {
		return a.errf(n.Pos(), "As classes só podem ser declaradas no escopo global")
	}
	name := n.Name.Lexeme
	if _, exists := a.current.Get(name); exists {
		return a.errf(n.Pos(), "O identificador '%s' já foi declarado neste escopo", name)
	}

	classType := types.NewClass(name)
	outID := a.outIDFor(a.current, name)
	classSym := symtab.NewClass(name, outID, classType, n.Pos())
	if err := a.current.Define(classSym); err != nil {
		return a.errf(n.Pos(), "O identificador '%s' já foi declarado neste escopo", name)
	}
	a.classSymbols[classType] = classSym

	// The class body resolves at depth zero: members keep their source
	// out_ids and method declarations pass the global-only rule, exactly
	// as if they had been declared at the top level.
	bodyScope := symtab.NewScope(a.current)
	bodyScope.Depth = 0
	// Members aliases the body scope's map, so a method becomes visible
	// to member access the moment it is defined — including to its own
	// body.
	classSym.Members = bodyScope.Symbols

	prevScope := a.current
	a.current = bodyScope
	prevClass := a.currentClass
	a.currentClass = classType
	defer func() {
		a.current = prevScope
		a.currentClass = prevClass
	}()

	for _, field := range n.Fields {
		if err := a.VisitVarDecl(field); err != nil {
			return err
		}
		classType.Members[field.Name.Lexeme] = field.ResolvedType
	}

	// Snapshot the members map (fields only, at this point) as the
	// synthesized constructor's ordered parameter list.
	ctorParams := make([]symtab.Param, 0, len(n.Fields))
	for _, field := range n.Fields {
		ctorParams = append(ctorParams, symtab.Param{Name: field.Name.Lexeme, Type: field.ResolvedType})
	}
	ctor := symtab.NewFunction(name, outID, classType, n.Pos())
	ctor.Params = ctorParams
	classSym.Constructor = ctor

	for _, method := range n.Methods {
		if err := a.VisitFuncDecl(method); err != nil {
			return err
		}
	}

	for _, member := range classSym.Members {
		member.IsProperty = true
	}

	classSym.IsGlobal = true
	n.Sym = classSym
	return nil
}
