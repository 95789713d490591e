package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dcarvalho/amanda/internal/token"
)

func TestGetPrecedence(t *testing.T) {
	tests := []struct {
		name     string
		tok      token.Type
		expected Precedence
	}{
		{"ou", token.Ou, PrecOr},
		{"e", token.E, PrecAnd},
		{"double equal", token.DoubleEqual, PrecEquality},
		{"not equal", token.NotEqual, PrecEquality},
		{"less", token.Less, PrecComparison},
		{"less equal", token.LessEqual, PrecComparison},
		{"greater", token.Greater, PrecComparison},
		{"greater equal", token.GreaterEqual, PrecComparison},
		{"plus", token.Plus, PrecTerm},
		{"minus", token.Minus, PrecTerm},
		{"star", token.Star, PrecFactor},
		{"slash", token.Slash, PrecFactor},
		{"double slash", token.DoubleSlash, PrecFactor},
		{"percent", token.Percent, PrecFactor},
		{"dot", token.Dot, PrecCall},
		{"left bracket", token.LeftBracket, PrecCall},
		{"left paren", token.LeftParen, PrecCall},
		{"identifier", token.Identifier, PrecNone},
		{"integer", token.Integer, PrecNone},
		{"colon", token.Colon, PrecNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, getPrecedence(tt.tok))
		})
	}
}

func TestPrecedenceOrdering(t *testing.T) {
	require.Less(t, int(PrecOr), int(PrecAnd))
	require.Less(t, int(PrecAnd), int(PrecEquality))
	require.Less(t, int(PrecEquality), int(PrecComparison))
	require.Less(t, int(PrecComparison), int(PrecTerm))
	require.Less(t, int(PrecTerm), int(PrecFactor))
	require.Less(t, int(PrecFactor), int(PrecUnary))
	require.Less(t, int(PrecUnary), int(PrecCall))
	require.Less(t, int(PrecCall), int(PrecPrimary))
}
