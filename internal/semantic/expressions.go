package semantic

import (
	"github.com/dcarvalho/amanda/internal/ast"
	"github.com/dcarvalho/amanda/internal/symtab"
	"github.com/dcarvalho/amanda/internal/token"
	"github.com/dcarvalho/amanda/internal/types"
)

func (a *Analyzer) VisitConstant(n *ast.Constant) (interface{}, error) {
	switch n.Kind {
	case token.Integer:
		n.EvalType = types.Int
	case token.Real:
		n.EvalType = types.Real
	case token.String:
		n.EvalType = types.Texto
	case token.True, token.False:
		n.EvalType = types.Bool
	case token.Nulo:
		n.EvalType = types.Nulo
	default:
		return nil, a.errf(n.Pos(), "literal inválido: '%s'", n.Tok.Lexeme)
	}
	return nil, nil
}

func (a *Analyzer) VisitListLiteral(n *ast.ListLiteral) (interface{}, error) {
	elemType, err := a.getType(n.ElementType)
	if err != nil {
		return nil, err
	}
	n.EvalType = types.NewList(elemType, 1)
	for i, element := range n.Elements {
		if _, err := a.visitExpr(element); err != nil {
			return nil, err
		}
		elementType := element.Annotation().EvalType
		if !typesMatch(elemType, elementType) {
			return nil, a.errf(element.Pos(), "O tipo do elemento %d da lista não condiz com o tipo da lista", i)
		}
		element.Annotation().PromType = elementType.PromoteTo(elemType)
	}
	return nil, nil
}

func (a *Analyzer) VisitVariable(n *ast.Variable) (interface{}, error) {
	name := n.Name.Lexeme
	sym, ok := a.current.Resolve(name)
	if !ok {
		return nil, a.errf(n.Pos(), "o identificador '%s' não foi declarado", name)
	}
	if !sym.CanEvaluate() {
		return nil, a.errf(n.Pos(), "o identificador '%s' não é uma referência válida", name)
	}
	n.EvalType = sym.Type
	n.VarSymbol = sym
	return sym, nil
}

func (a *Analyzer) VisitGet(n *ast.Get) (interface{}, error) {
	if _, err := a.visitExpr(n.Target); err != nil {
		return nil, err
	}
	classType, ok := n.Target.Annotation().EvalType.(*types.ClassType)
	if !ok {
		return nil, a.errf(n.Pos(), "Tipos primitivos não possuem atributos")
	}
	member := n.Member.Lexeme
	classSym := a.classSymbols[classType]
	var memberSym *symtab.Symbol
	if classSym != nil {
		memberSym = classSym.Members[member]
	}
	if memberSym == nil {
		return nil, a.errf(n.Pos(), "O objecto do tipo '%s' não possui o atributo %s", classType.Name, member)
	}
	n.Sym = memberSym
	n.EvalType = memberSym.Type
	return memberSym, nil
}

func (a *Analyzer) VisitSet(n *ast.Set) (interface{}, error) {
	targetSym, err := a.visitExpr(n.Target)
	if err != nil {
		return nil, err
	}
	valueSym, err := a.visitExpr(n.Value)
	if err != nil {
		return nil, err
	}
	if err := a.validateGet(n.Target, targetSym); err != nil {
		return nil, err
	}
	if err := a.validateGet(n.Value, valueSym); err != nil {
		return nil, err
	}
	targetType := n.Target.Annotation().EvalType
	valueType := n.Value.Annotation().EvalType
	n.Value.Annotation().PromType = valueType.PromoteTo(targetType)
	if !typesMatch(targetType, valueType) {
		return nil, a.errf(n.Pos(), "atribuição inválida. incompatibilidade entre os operandos da atribuição: '%s' e '%s'", targetType, valueType)
	}
	n.EvalType = targetType
	return nil, nil
}

func (a *Analyzer) VisitIndex(n *ast.Index) (interface{}, error) {
	if _, err := a.visitExpr(n.Idx); err != nil {
		return nil, err
	}
	if !types.Int.Equals(n.Idx.Annotation().EvalType) {
		return nil, a.errf(n.Idx.Pos(), "Os índices de uma lista devem ser inteiros")
	}
	if _, err := a.visitExpr(n.Target); err != nil {
		return nil, err
	}
	targetType := n.Target.Annotation().EvalType
	listType, ok := targetType.(*types.ListType)
	if !ok {
		return nil, a.errf(n.Pos(), "O valor do tipo '%s' não é indexável", targetType)
	}
	n.EvalType = listType.Element
	return nil, nil
}

// VisitConverte only resolves and records the target type; the
// conversion table is deliberately not enforced at analysis time.
func (a *Analyzer) VisitConverte(n *ast.Converte) (interface{}, error) {
	if _, err := a.visitExpr(n.Value); err != nil {
		return nil, err
	}
	targetType, err := a.getType(n.Target)
	if err != nil {
		return nil, err
	}
	n.EvalType = targetType
	return nil, nil
}

func (a *Analyzer) VisitBinOp(n *ast.BinOp) (interface{}, error) {
	leftSym, err := a.visitExpr(n.Left)
	if err != nil {
		return nil, err
	}
	rightSym, err := a.visitExpr(n.Right)
	if err != nil {
		return nil, err
	}
	if err := a.validateGet(n.Left, leftSym); err != nil {
		return nil, err
	}
	if err := a.validateGet(n.Right, rightSym); err != nil {
		return nil, err
	}
	leftType := n.Left.Annotation().EvalType
	rightType := n.Right.Annotation().EvalType
	result := binopResult(leftType, n.Op.Type, rightType)
	if result == nil {
		return nil, a.errf(n.Pos(), "os tipos '%s' e '%s' não suportam operações com o operador '%s'", leftType, rightType, n.Op.Lexeme)
	}
	n.EvalType = result
	n.Left.Annotation().PromType = leftType.PromoteTo(rightType)
	n.Right.Annotation().PromType = rightType.PromoteTo(leftType)
	return nil, nil
}

// binopResult is the operator result table: the result type of applying
// op to operands of the given types, or nil when the pairing is
// invalid.
func binopResult(lhs types.Type, op token.Type, rhs types.Type) types.Type {
	if !types.IsOperable(lhs) || !types.IsOperable(rhs) {
		return nil
	}
	switch op {
	case token.Plus, token.Minus, token.Star, token.Slash, token.DoubleSlash, token.Percent:
		if lhs.IsNumeric() && rhs.IsNumeric() {
			if lhs.Equals(types.Int) && rhs.Equals(types.Int) && op != token.Slash {
				return types.Int
			}
			return types.Real
		}
	case token.Greater, token.Less, token.GreaterEqual, token.LessEqual:
		if lhs.IsNumeric() && rhs.IsNumeric() {
			return types.Bool
		}
	case token.DoubleEqual, token.NotEqual:
		if (lhs.IsNumeric() && rhs.IsNumeric()) || lhs.Equals(rhs) ||
			lhs.PromoteTo(rhs) != nil || rhs.PromoteTo(lhs) != nil {
			return types.Bool
		}
	case token.E, token.Ou:
		if types.Bool.Equals(lhs) && types.Bool.Equals(rhs) {
			return types.Bool
		}
	}
	return nil
}

func (a *Analyzer) VisitUnaryOp(n *ast.UnaryOp) (interface{}, error) {
	operandSym, err := a.visitExpr(n.Operand)
	if err != nil {
		return nil, err
	}
	if err := a.validateGet(n.Operand, operandSym); err != nil {
		return nil, err
	}
	operandType := n.Operand.Annotation().EvalType
	switch n.Op.Type {
	case token.Plus, token.Minus:
		if !operandType.IsNumeric() {
			return nil, a.errf(n.Pos(), "o operador unário %s não pode ser usado com o tipo '%s' ", n.Op.Lexeme, operandType)
		}
	case token.Nao:
		if !types.Bool.Equals(operandType) {
			return nil, a.errf(n.Pos(), "o operador unário %s não pode ser usado com o tipo '%s' ", n.Op.Lexeme, operandType)
		}
	}
	n.EvalType = operandType
	return nil, nil
}

func (a *Analyzer) VisitAssign(n *ast.Assign) (interface{}, error) {
	valueSym, err := a.visitExpr(n.Value)
	if err != nil {
		return nil, err
	}
	if _, err := a.visitExpr(n.Target); err != nil {
		return nil, err
	}
	if err := a.validateGet(n.Value, valueSym); err != nil {
		return nil, err
	}
	targetType := n.Target.Annotation().EvalType
	valueType := n.Value.Annotation().EvalType
	n.EvalType = targetType
	n.PromType = nil
	n.Value.Annotation().PromType = valueType.PromoteTo(targetType)
	if !typesMatch(targetType, valueType) {
		return nil, a.errf(n.Pos(), "atribuição inválida. incompatibilidade entre os operandos da atribuição: '%s' e '%s'", targetType, valueType)
	}
	return nil, nil
}

func (a *Analyzer) VisitEu(n *ast.Eu) (interface{}, error) {
	if a.currentClass == nil || a.currentFunc == nil {
		return nil, a.errf(n.Pos(), "a palavra reservada 'eu' só pode ser usada dentro de um método")
	}
	n.EvalType = a.currentClass
	return symtab.NewVariable("eu", "eu", a.currentClass, n.Pos()), nil
}
