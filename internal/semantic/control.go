package semantic

import (
	"github.com/dcarvalho/amanda/internal/ast"
	"github.com/dcarvalho/amanda/internal/symtab"
	"github.com/dcarvalho/amanda/internal/token"
	"github.com/dcarvalho/amanda/internal/types"
)

// hasReturn statically asks whether a control-flow subtree guarantees a
// return.
//
// Two deliberate over-approximations are preserved: loops answer for
// their body even though a zero-iteration loop never runs it, and an if
// chain answers for its else branch alone, ignoring elif branches.
func hasReturn(node ast.Node) bool {
	switch n := node.(type) {
	case *ast.Block:
		for _, child := range n.Stmts {
			if hasReturn(child) {
				return true
			}
		}
		return false
	case *ast.Se:
		if n.Else == nil {
			return false
		}
		return hasReturn(n.Else)
	case *ast.Enquanto:
		return hasReturn(n.Body)
	case *ast.Para:
		return hasReturn(n.Body)
	case *ast.Retorna:
		return true
	default:
		return false
	}
}

// visitBlockInScope visits b's statements inside scope, creating a fresh
// child scope when the caller has none prepared — the optional
// pre-constructed scope lets function bodies share the scope already
// populated with parameter symbols.
func (a *Analyzer) visitBlockInScope(b *ast.Block, scope *symtab.Scope) error {
	if scope == nil {
		scope = symtab.NewScope(a.current)
	}
	stmts, err := a.visitChildren(b.Stmts, scope)
	if err != nil {
		return err
	}
	b.Stmts = stmts
	b.Symbols = scope
	return nil
}

func (a *Analyzer) VisitBlock(n *ast.Block) error {
	return a.visitBlockInScope(n, nil)
}

func (a *Analyzer) VisitExprStmt(n *ast.ExprStmt) error {
	_, err := a.visitExpr(n.Inner)
	return err
}

// checkCond visits cond and requires it to be bool, naming stmt in the
// error ("se", "senaose", "enquanto").
func (a *Analyzer) checkCond(cond ast.Expr, stmt string) error {
	if _, err := a.visitExpr(cond); err != nil {
		return err
	}
	if !types.Bool.Equals(cond.Annotation().EvalType) {
		return a.errf(cond.Pos(), "a condição da instrução '%s' deve ser um valor lógico", stmt)
	}
	return nil
}

func (a *Analyzer) VisitSe(n *ast.Se) error {
	if err := a.checkCond(n.Cond, "se"); err != nil {
		return err
	}
	if err := a.visitBlockInScope(n.Then, nil); err != nil {
		return err
	}
	for _, branch := range n.ElseIfs {
		if err := a.checkCond(branch.Cond, "senaose"); err != nil {
			return err
		}
		if err := a.visitBlockInScope(branch.Body, nil); err != nil {
			return err
		}
	}
	if n.Else != nil {
		return a.visitBlockInScope(n.Else, nil)
	}
	return nil
}

func (a *Analyzer) VisitEnquanto(n *ast.Enquanto) error {
	if err := a.checkCond(n.Cond, "enquanto"); err != nil {
		return err
	}
	return a.visitBlockInScope(n.Body, nil)
}

// VisitPara declares the loop's int control variable in a fresh child
// scope and requires the whole start/end/inc range to be int. A missing
// inc defaults to the int literal 1, stamped with the loop's own
// position — never an invented line number.
func (a *Analyzer) VisitPara(n *ast.Para) error {
	if _, err := a.visitExpr(n.Range.Start); err != nil {
		return err
	}
	if _, err := a.visitExpr(n.Range.End); err != nil {
		return err
	}
	if n.Range.Inc == nil {
		n.Range.Inc = &ast.Constant{
			Tok:  token.Token{Type: token.Integer, Lexeme: "1", Position: n.Tok.Position},
			Kind: token.Integer,
		}
	}
	if _, err := a.visitExpr(n.Range.Inc); err != nil {
		return err
	}
	for _, part := range []ast.Expr{n.Range.Start, n.Range.End, n.Range.Inc} {
		if !types.Int.Equals(part.Annotation().EvalType) {
			return a.errf(part.Pos(), "os parâmetros de uma série devem ser do tipo 'int'")
		}
	}

	name := n.Var.Lexeme
	scope := symtab.NewScope(a.current)
	outID := a.outIDFor(scope, name)
	sym := symtab.NewVariable(name, outID, types.Int, n.Var.Position)
	if err := scope.Define(sym); err != nil {
		return a.errf(n.Var.Position, "O identificador '%s' já foi declarado neste escopo", name)
	}
	scope.AddLocal(outID)
	n.Scope = scope
	return a.visitBlockInScope(n.Body, scope)
}

func (a *Analyzer) VisitRetorna(n *ast.Retorna) error {
	if a.currentFunc == nil {
		return a.errf(n.Pos(), "A directiva 'retorna' só pode ser usada dentro de uma função")
	}
	funcType := a.currentFunc.Type
	isVoid := types.Vazio.Equals(funcType)
	if isVoid && n.Value != nil {
		return a.errf(n.Pos(), "Não pode retornar um valor de uma função vazia")
	}
	if !isVoid && n.Value == nil {
		return a.errf(n.Pos(), "A instrução de retorno vazia só pode ser usada dentro de uma função vazia")
	}
	if n.Value == nil {
		return nil
	}
	if _, err := a.visitExpr(n.Value); err != nil {
		return err
	}
	valType := n.Value.Annotation().EvalType
	n.Value.Annotation().PromType = valType.PromoteTo(funcType)
	if !typesMatch(funcType, valType) {
		return a.errf(n.Pos(), "expressão de retorno inválida. O tipo do valor de retorno é incompatível com o tipo de retorno da função")
	}
	return nil
}

func (a *Analyzer) VisitMostra(n *ast.Mostra) error {
	sym, err := a.visitExpr(n.Value)
	if err != nil {
		return err
	}
	return a.validateGet(n.Value, sym)
}

// checkEscolha type-checks the select's subject and case values: the
// subject must be int or texto, and every case value must match (or
// promote to) the subject's type. Case blocks are not visited here —
// they are visited after the desugared chain replaces the node.
func (a *Analyzer) checkEscolha(n *ast.Escolha) error {
	if _, err := a.visitExpr(n.Subject); err != nil {
		return err
	}
	subjectType := n.Subject.Annotation().EvalType
	if !types.Int.Equals(subjectType) && !types.Texto.Equals(subjectType) {
		return a.errf(n.Pos(), "A directiva escolha só pode ser usada para avaliar números inteiros e strings")
	}
	for _, c := range n.Cases {
		if _, err := a.visitExpr(c.Value); err != nil {
			return err
		}
		caseType := c.Value.Annotation().EvalType
		if !typesMatch(subjectType, caseType) {
			return a.errf(c.Value.Pos(), "O tipo do valor do caso (%s) deve ser igual ao tipo do valor que está a ser avaliado (%s)", caseType, subjectType)
		}
	}
	return nil
}

// VisitEscolha covers the rare path where an Escolha node is visited
// directly rather than through visitOrTransform: checks plus a walk of
// each arm's block.
func (a *Analyzer) VisitEscolha(n *ast.Escolha) error {
	if err := a.checkEscolha(n); err != nil {
		return err
	}
	for _, c := range n.Cases {
		if err := a.visitBlockInScope(c.Body, nil); err != nil {
			return err
		}
	}
	if n.Default != nil {
		return a.visitBlockInScope(n.Default, nil)
	}
	return nil
}

// desugarEscolha rewrites a select into a chain of conditionals. All
// synthesized tokens carry the original select token's line/column. The
// returned Se has not itself been visited; visitOrTransform does that,
// so the rewrite is not re-entrant and the arm blocks are scoped exactly
// once.
func (a *Analyzer) desugarEscolha(n *ast.Escolha) (*ast.Se, error) {
	if err := a.checkEscolha(n); err != nil {
		return nil, err
	}

	newTok := func(tt token.Type, lexeme string) token.Token {
		return token.Token{Type: tt, Lexeme: lexeme, Position: n.Tok.Position}
	}
	equalityOp := func(left, right ast.Expr) ast.Expr {
		return &ast.BinOp{Op: newTok(token.DoubleEqual, "=="), Left: left, Right: right}
	}

	switch {
	case len(n.Cases) == 0 && n.Default == nil:
		return nil, nil
	case len(n.Cases) == 0:
		return &ast.Se{
			Tok:  n.Tok,
			Cond: &ast.Constant{Tok: newTok(token.True, "verdadeiro"), Kind: token.True},
			Then: n.Default,
		}, nil
	}

	first, rest := n.Cases[0], n.Cases[1:]
	se := &ast.Se{
		Tok:  n.Tok,
		Cond: equalityOp(first.Value, n.Subject),
		Then: first.Body,
		Else: n.Default,
	}
	for _, c := range rest {
		se.ElseIfs = append(se.ElseIfs, &ast.SenaoSe{
			Tok:  n.Tok,
			Cond: equalityOp(c.Value, n.Subject),
			Body: c.Body,
		})
	}
	return se, nil
}
