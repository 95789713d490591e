package parser

import (
	"github.com/dcarvalho/amanda/internal/token"
)

// Precedence represents operator precedence levels for the Pratt parser
// driving expression parsing.
//
// DESIGN CHOICE: integer levels via iota — easy to compare, easy to
// insert a level between two existing ones. The language has no bitwise
// operators, no exponent operator, and no compound assignment, so no
// levels exist for them.
type Precedence int

const (
	PrecNone Precedence = iota
	PrecOr             // ou
	PrecAnd            // e
	PrecEquality       // == !=
	PrecComparison     // < <= > >=
	PrecTerm           // + -
	PrecFactor         // * / // %
	PrecUnary          // + - nao (prefix only)
	PrecCall           // . [] ()
	PrecPrimary
)

// getPrecedence returns the infix precedence level for tokenType, or
// PrecNone if it never introduces an infix/postfix operator.
func getPrecedence(tokenType token.Type) Precedence {
	switch tokenType {
	case token.Ou:
		return PrecOr
	case token.E:
		return PrecAnd
	case token.DoubleEqual, token.NotEqual:
		return PrecEquality
	case token.Less, token.LessEqual, token.Greater, token.GreaterEqual:
		return PrecComparison
	case token.Plus, token.Minus:
		return PrecTerm
	case token.Star, token.Slash, token.DoubleSlash, token.Percent:
		return PrecFactor
	case token.Dot, token.LeftBracket, token.LeftParen:
		return PrecCall
	default:
		return PrecNone
	}
}
