package token

// Type identifies the lexical category of a Token.
//
// DESIGN CHOICE: int-based enum via iota — fast comparisons, no string
// allocation on the hot path.
type Type int

const (
	EOF Type = iota
	Invalid

	// Literals
	Integer
	Real
	String
	True
	False
	Nulo

	Identifier

	// Keywords — declarations
	Var
	Func
	Classe
	Usa
	Nativa

	// Keywords — control flow
	Se
	Senao
	SenaoSe
	Enquanto
	Para
	De
	Ate
	Inc
	Faca
	Escolha
	Caso
	Contrario

	// Keywords — statements / operators-as-words
	Mostra
	Retorna
	Eu
	Nao
	E
	Ou
	Converte
	Como

	// Operators
	Plus
	Minus
	Star
	Slash
	DoubleSlash
	Percent
	DoubleEqual
	NotEqual
	Less
	LessEqual
	Greater
	GreaterEqual
	Equal // assignment '='
	Dot
	Comma
	Colon

	// Delimiters
	LeftParen
	RightParen
	LeftBrace
	RightBrace
	LeftBracket
	RightBracket
)

// keywords maps the Portuguese surface spelling to its Type. Built once;
// the lexer consults it after scanning a bare identifier.
var keywords = map[string]Type{
	"var":       Var,
	"func":      Func,
	"classe":    Classe,
	"usa":       Usa,
	"nativa":    Nativa,
	"se":        Se,
	"senao":     Senao,
	"senaose":   SenaoSe,
	"enquanto":  Enquanto,
	"para":      Para,
	"de":        De,
	"ate":       Ate,
	"inc":       Inc,
	"faca":      Faca,
	"escolha":   Escolha,
	"caso":      Caso,
	"contrario": Contrario,
	"mostra":    Mostra,
	"retorna":   Retorna,
	"eu":        Eu,
	"nao":       Nao,
	"e":         E,
	"ou":        Ou,
	"converte":  Converte,
	"como":      Como,
	"verdadeiro": True,
	"falso":     False,
	"nulo":      Nulo,
}

// Lookup returns the keyword Type for name, or (Identifier, false) if name
// is not a reserved word.
func Lookup(name string) (Type, bool) {
	if t, ok := keywords[name]; ok {
		return t, true
	}
	return Identifier, false
}

// Token is the unit the lexer produces and the parser consumes: a kind,
// the source lexeme, and where it was read.
type Token struct {
	Type     Type
	Lexeme   string
	Position Position
}

func (t Token) Line() int   { return t.Position.Line }
func (t Token) Column() int { return t.Position.Column }
