// Package parser implements a recursive-descent parser, with Pratt
// (precedence-climbing) parsing for expressions, that turns a stream of
// internal/token.Token values into an internal/ast tree.
//
// The analyzer and emitter treat parsing as an external collaborator,
// consumed only through the token.Token and ast.Program contracts; this
// package exists so they have something real to consume end to end: a
// struct holding lookahead state, one parse method per grammar
// production.
package parser

import (
	"fmt"
	"os"

	"github.com/dcarvalho/amanda/internal/ast"
	"github.com/dcarvalho/amanda/internal/lexer"
	"github.com/dcarvalho/amanda/internal/token"
)

// FileParser reads and parses whole source files from disk. It is the
// concrete implementation of internal/semantic's Parser interface,
// wiring the lexer and the parser together the way internal/semantic
// expects to be handed a ready-made ast.Program for a module path.
type FileParser struct{}

// ParseFile reads path, lexes it, and parses it into a Program.
func (FileParser) ParseFile(path string) (*ast.Program, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	lex := lexer.New(string(src), path)
	p, err := New(lex, path)
	if err != nil {
		return nil, err
	}
	return p.ParseProgram()
}

// Lexer is the external collaborator the parser pulls tokens from —
// lexical scanning is out of this package's scope.
type Lexer interface {
	NextToken() (token.Token, error)
}

// Parser converts a token stream into an ast.Program. It fails fast on
// the first syntax error, matching the fail-fast convention the rest of
// this compiler (internal/semantic's CompileError) follows.
type Parser struct {
	lex      Lexer
	filename string

	current  token.Token
	previous token.Token
}

// New creates a Parser reading from lex, reporting positions against
// filename.
func New(lex Lexer, filename string) (*Parser, error) {
	p := &Parser{lex: lex, filename: filename}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

// ParseProgram parses the entire token stream into a Program.
func (p *Parser) ParseProgram() (*ast.Program, error) {
	prog := &ast.Program{Path: p.filename}
	for !p.check(token.EOF) {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		prog.Children = append(prog.Children, stmt)
	}
	return prog, nil
}

func (p *Parser) advance() error {
	p.previous = p.current
	tok, err := p.lex.NextToken()
	if err != nil {
		return err
	}
	p.current = tok
	return nil
}

func (p *Parser) check(t token.Type) bool {
	return p.current.Type == t
}

func (p *Parser) match(t token.Type) (bool, error) {
	if !p.check(t) {
		return false, nil
	}
	if err := p.advance(); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Parser) expect(t token.Type, what string) (token.Token, error) {
	if !p.check(t) {
		return token.Token{}, p.errf("esperava-se %s mas encontrou '%s'", what, p.current.Lexeme)
	}
	tok := p.current
	if err := p.advance(); err != nil {
		return token.Token{}, err
	}
	return tok, nil
}

func (p *Parser) errf(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %s", p.current.Position.String(), fmt.Sprintf(format, args...))
}

// ---------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------

func (p *Parser) parseStmt() (ast.Stmt, error) {
	switch p.current.Type {
	case token.Var:
		return p.parseVarDecl()
	case token.Func:
		return p.parseFuncDecl()
	case token.Classe:
		return p.parseClassDecl()
	case token.Se:
		return p.parseSe()
	case token.Enquanto:
		return p.parseEnquanto()
	case token.Para:
		return p.parsePara()
	case token.Escolha:
		return p.parseEscolha()
	case token.Retorna:
		return p.parseRetorna()
	case token.Mostra:
		return p.parseMostra()
	case token.Usa:
		return p.parseUsa()
	case token.LeftBrace:
		return p.parseBlock()
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parseBlock() (*ast.Block, error) {
	tok, err := p.expect(token.LeftBrace, "'{'")
	if err != nil {
		return nil, err
	}
	block := &ast.Block{Tok: tok}
	for !p.check(token.RightBrace) && !p.check(token.EOF) {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		block.Stmts = append(block.Stmts, stmt)
	}
	if _, err := p.expect(token.RightBrace, "'}'"); err != nil {
		return nil, err
	}
	return block, nil
}

// parseTypeRef parses a type annotation: a bare name, or "lista(" /
// "matriz(" wrapping one, giving dimensionality 1 or 2 respectively.
func (p *Parser) parseTypeRef() (*ast.TypeRef, error) {
	tok := p.current
	if p.check(token.Identifier) && (tok.Lexeme == "lista" || tok.Lexeme == "matriz") {
		dim := 1
		if tok.Lexeme == "matriz" {
			dim = 2
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		if _, err := p.expect(token.LeftParen, "'('"); err != nil {
			return nil, err
		}
		inner, err := p.expect(token.Identifier, "um nome de tipo")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RightParen, "')'"); err != nil {
			return nil, err
		}
		return &ast.TypeRef{Name: inner.Lexeme, IsList: true, Dim: dim, Tok: tok}, nil
	}
	name, err := p.expect(token.Identifier, "um nome de tipo")
	if err != nil {
		return nil, err
	}
	return &ast.TypeRef{Name: name.Lexeme, Tok: name}, nil
}

func (p *Parser) parseVarDecl() (*ast.VarDecl, error) {
	tok, err := p.expect(token.Var, "'var'")
	if err != nil {
		return nil, err
	}
	name, err := p.expect(token.Identifier, "um identificador")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Colon, "':'"); err != nil {
		return nil, err
	}
	typeName, err := p.parseTypeRef()
	if err != nil {
		return nil, err
	}
	decl := &ast.VarDecl{Tok: tok, Name: name, TypeName: typeName}
	if hasInit, err := p.match(token.Equal); err != nil {
		return nil, err
	} else if hasInit {
		init, err := p.parseExpr(PrecOr)
		if err != nil {
			return nil, err
		}
		decl.Init = init
	}
	return decl, nil
}

func (p *Parser) parseParams() ([]*ast.Param, error) {
	if _, err := p.expect(token.LeftParen, "'('"); err != nil {
		return nil, err
	}
	var params []*ast.Param
	for !p.check(token.RightParen) {
		if len(params) > 0 {
			if _, err := p.expect(token.Comma, "','"); err != nil {
				return nil, err
			}
		}
		name, err := p.expect(token.Identifier, "um nome de parâmetro")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Colon, "':'"); err != nil {
			return nil, err
		}
		typeName, err := p.parseTypeRef()
		if err != nil {
			return nil, err
		}
		params = append(params, &ast.Param{Name: name, TypeName: typeName})
	}
	if _, err := p.expect(token.RightParen, "')'"); err != nil {
		return nil, err
	}
	return params, nil
}

func (p *Parser) parseFuncDecl() (*ast.FuncDecl, error) {
	tok, err := p.expect(token.Func, "'func'")
	if err != nil {
		return nil, err
	}
	name, err := p.expect(token.Identifier, "um identificador")
	if err != nil {
		return nil, err
	}
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	decl := &ast.FuncDecl{Tok: tok, Name: name, Params: params}
	if hasRet, err := p.match(token.Colon); err != nil {
		return nil, err
	} else if hasRet {
		rt, err := p.parseTypeRef()
		if err != nil {
			return nil, err
		}
		decl.ReturnType = rt
	}
	if isNative, err := p.match(token.Nativa); err != nil {
		return nil, err
	} else if isNative {
		decl.IsNative = true
		return decl, nil
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	decl.Body = body
	return decl, nil
}

func (p *Parser) parseClassDecl() (*ast.ClassDecl, error) {
	tok, err := p.expect(token.Classe, "'classe'")
	if err != nil {
		return nil, err
	}
	name, err := p.expect(token.Identifier, "um identificador")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LeftBrace, "'{'"); err != nil {
		return nil, err
	}
	decl := &ast.ClassDecl{Tok: tok, Name: name}
	for !p.check(token.RightBrace) && !p.check(token.EOF) {
		switch p.current.Type {
		case token.Var:
			field, err := p.parseVarDecl()
			if err != nil {
				return nil, err
			}
			decl.Fields = append(decl.Fields, field)
		case token.Func:
			method, err := p.parseFuncDecl()
			if err != nil {
				return nil, err
			}
			decl.Methods = append(decl.Methods, method)
		default:
			return nil, p.errf("esperava-se um campo ou método de classe mas encontrou '%s'", p.current.Lexeme)
		}
	}
	if _, err := p.expect(token.RightBrace, "'}'"); err != nil {
		return nil, err
	}
	return decl, nil
}

func (p *Parser) parseSe() (*ast.Se, error) {
	tok, err := p.expect(token.Se, "'se'")
	if err != nil {
		return nil, err
	}
	cond, err := p.parseExpr(PrecOr)
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	se := &ast.Se{Tok: tok, Cond: cond, Then: then}
	for p.check(token.SenaoSe) {
		eiTok := p.current
		if err := p.advance(); err != nil {
			return nil, err
		}
		eiCond, err := p.parseExpr(PrecOr)
		if err != nil {
			return nil, err
		}
		eiBody, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		se.ElseIfs = append(se.ElseIfs, &ast.SenaoSe{Tok: eiTok, Cond: eiCond, Body: eiBody})
	}
	if hasElse, err := p.match(token.Senao); err != nil {
		return nil, err
	} else if hasElse {
		elseBlock, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		se.Else = elseBlock
	}
	return se, nil
}

func (p *Parser) parseEnquanto() (*ast.Enquanto, error) {
	tok, err := p.expect(token.Enquanto, "'enquanto'")
	if err != nil {
		return nil, err
	}
	cond, err := p.parseExpr(PrecOr)
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.Enquanto{Tok: tok, Cond: cond, Body: body}, nil
}

func (p *Parser) parsePara() (*ast.Para, error) {
	tok, err := p.expect(token.Para, "'para'")
	if err != nil {
		return nil, err
	}
	varName, err := p.expect(token.Identifier, "um identificador")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.De, "'de'"); err != nil {
		return nil, err
	}
	start, err := p.parseExpr(PrecOr)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Ate, "'ate'"); err != nil {
		return nil, err
	}
	end, err := p.parseExpr(PrecOr)
	if err != nil {
		return nil, err
	}
	rng := &ast.RangeExpr{Start: start, End: end}
	if hasInc, err := p.match(token.Inc); err != nil {
		return nil, err
	} else if hasInc {
		inc, err := p.parseExpr(PrecOr)
		if err != nil {
			return nil, err
		}
		rng.Inc = inc
	}
	if _, err := p.expect(token.Faca, "'faca'"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.Para{Tok: tok, Var: varName, Range: rng, Body: body}, nil
}

func (p *Parser) parseEscolha() (*ast.Escolha, error) {
	tok, err := p.expect(token.Escolha, "'escolha'")
	if err != nil {
		return nil, err
	}
	subject, err := p.parseExpr(PrecOr)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LeftBrace, "'{'"); err != nil {
		return nil, err
	}
	esc := &ast.Escolha{Tok: tok, Subject: subject}
	for p.check(token.Caso) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		value, err := p.parseExpr(PrecOr)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Colon, "':'"); err != nil {
			return nil, err
		}
		body, err := p.parseCaseBody()
		if err != nil {
			return nil, err
		}
		esc.Cases = append(esc.Cases, &ast.Case{Value: value, Body: body})
	}
	if hasDefault, err := p.match(token.Contrario); err != nil {
		return nil, err
	} else if hasDefault {
		if _, err := p.expect(token.Colon, "':'"); err != nil {
			return nil, err
		}
		body, err := p.parseCaseBody()
		if err != nil {
			return nil, err
		}
		esc.Default = body
	}
	if _, err := p.expect(token.RightBrace, "'}'"); err != nil {
		return nil, err
	}
	return esc, nil
}

// parseCaseBody parses the statements belonging to one "caso"/"contrario"
// arm: either a braced block, or a run of statements up to the next
// "caso", "contrario", or the enclosing "}".
func (p *Parser) parseCaseBody() (*ast.Block, error) {
	if p.check(token.LeftBrace) {
		return p.parseBlock()
	}
	tok := p.current
	block := &ast.Block{Tok: tok}
	for !p.check(token.Caso) && !p.check(token.Contrario) && !p.check(token.RightBrace) && !p.check(token.EOF) {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		block.Stmts = append(block.Stmts, stmt)
	}
	return block, nil
}

func (p *Parser) parseRetorna() (*ast.Retorna, error) {
	tok, err := p.expect(token.Retorna, "'retorna'")
	if err != nil {
		return nil, err
	}
	ret := &ast.Retorna{Tok: tok}
	if !p.startsExpr() {
		return ret, nil
	}
	value, err := p.parseExpr(PrecOr)
	if err != nil {
		return nil, err
	}
	ret.Value = value
	return ret, nil
}

func (p *Parser) parseMostra() (*ast.Mostra, error) {
	tok, err := p.expect(token.Mostra, "'mostra'")
	if err != nil {
		return nil, err
	}
	value, err := p.parseExpr(PrecOr)
	if err != nil {
		return nil, err
	}
	return &ast.Mostra{Tok: tok, Value: value}, nil
}

func (p *Parser) parseUsa() (*ast.Usa, error) {
	tok, err := p.expect(token.Usa, "'usa'")
	if err != nil {
		return nil, err
	}
	path, err := p.expect(token.String, "uma string de caminho")
	if err != nil {
		return nil, err
	}
	return &ast.Usa{Tok: tok, Path: path}, nil
}

func (p *Parser) parseExprStmt() (*ast.ExprStmt, error) {
	tok := p.current
	expr, err := p.parseExpr(PrecOr)
	if err != nil {
		return nil, err
	}
	if hasEq, err := p.match(token.Equal); err != nil {
		return nil, err
	} else if hasEq {
		rhs, err := p.parseExpr(PrecOr)
		if err != nil {
			return nil, err
		}
		switch target := expr.(type) {
		case *ast.Variable:
			expr = &ast.Assign{Target: target, Value: rhs}
		case *ast.Get:
			expr = &ast.Set{Target: target, Value: rhs}
		default:
			return nil, p.errf("destino de atribuição inválido")
		}
	}
	return &ast.ExprStmt{Tok: tok, Inner: expr}, nil
}

// startsExpr reports whether the current token can begin an expression —
// used to distinguish a bare "retorna" from "retorna <expr>".
func (p *Parser) startsExpr() bool {
	switch p.current.Type {
	case token.RightBrace, token.EOF, token.Caso, token.Contrario:
		return false
	default:
		return true
	}
}

// ---------------------------------------------------------------------
// Expressions (Pratt / precedence climbing)
// ---------------------------------------------------------------------

func (p *Parser) parseExpr(minPrec Precedence) (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		prec := getPrecedence(p.current.Type)
		if prec == PrecNone || prec < minPrec {
			return left, nil
		}
		switch p.current.Type {
		case token.Dot:
			left, err = p.finishGet(left)
		case token.LeftBracket:
			left, err = p.finishIndex(left)
		case token.LeftParen:
			left, err = p.finishCall(left)
		default:
			left, err = p.finishBinary(left, prec)
		}
		if err != nil {
			return nil, err
		}
	}
}

func (p *Parser) finishBinary(left ast.Expr, prec Precedence) (ast.Expr, error) {
	op := p.current
	if err := p.advance(); err != nil {
		return nil, err
	}
	right, err := p.parseExpr(prec + 1)
	if err != nil {
		return nil, err
	}
	return &ast.BinOp{Left: left, Right: right, Op: op}, nil
}

func (p *Parser) finishGet(target ast.Expr) (ast.Expr, error) {
	if err := p.advance(); err != nil { // consume '.'
		return nil, err
	}
	member, err := p.expect(token.Identifier, "um nome de membro")
	if err != nil {
		return nil, err
	}
	return &ast.Get{Target: target, Member: member}, nil
}

func (p *Parser) finishIndex(target ast.Expr) (ast.Expr, error) {
	tok := p.current
	if err := p.advance(); err != nil { // consume '['
		return nil, err
	}
	idx, err := p.parseExpr(PrecOr)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RightBracket, "']'"); err != nil {
		return nil, err
	}
	return &ast.Index{Tok: tok, Target: target, Idx: idx}, nil
}

func (p *Parser) finishCall(callee ast.Expr) (ast.Expr, error) {
	tok := p.current
	if err := p.advance(); err != nil { // consume '('
		return nil, err
	}
	var args []ast.Expr
	for !p.check(token.RightParen) {
		if len(args) > 0 {
			if _, err := p.expect(token.Comma, "','"); err != nil {
				return nil, err
			}
		}
		arg, err := p.parseExpr(PrecOr)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	if _, err := p.expect(token.RightParen, "')'"); err != nil {
		return nil, err
	}
	return &ast.Call{Tok: tok, Callee: callee, Args: args}, nil
}


func (p *Parser) parseUnary() (ast.Expr, error) {
	switch p.current.Type {
	case token.Plus, token.Minus, token.Nao:
		op := p.current
		if err := p.advance(); err != nil {
			return nil, err
		}
		operand, err := p.parseExpr(PrecUnary)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Op: op, Operand: operand}, nil
	default:
		return p.parsePrimary()
	}
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.current
	switch tok.Type {
	case token.Integer:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Constant{Tok: tok, Kind: token.Integer}, nil
	case token.Real:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Constant{Tok: tok, Kind: token.Real}, nil
	case token.String:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Constant{Tok: tok, Kind: token.String}, nil
	case token.True:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Constant{Tok: tok, Kind: token.True}, nil
	case token.False:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Constant{Tok: tok, Kind: token.False}, nil
	case token.Nulo:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Constant{Tok: tok, Kind: token.Nulo}, nil
	case token.Eu:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Eu{Tok: tok}, nil
	case token.Converte:
		return p.parseConverte()
	case token.LeftBracket:
		return p.parseListLiteral()
	case token.LeftParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseExpr(PrecOr)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RightParen, "')'"); err != nil {
			return nil, err
		}
		return inner, nil
	case token.Identifier:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Variable{Name: tok}, nil
	default:
		return nil, p.errf("esperava-se uma expressão mas encontrou '%s'", tok.Lexeme)
	}
}

// parseConverte parses "converte ( expr ) como Tipo".
func (p *Parser) parseConverte() (ast.Expr, error) {
	ctok, err := p.expect(token.Converte, "'converte'")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LeftParen, "'('"); err != nil {
		return nil, err
	}
	value, err := p.parseExpr(PrecOr)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RightParen, "')'"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Como, "'como'"); err != nil {
		return nil, err
	}
	target, err := p.parseTypeRef()
	if err != nil {
		return nil, err
	}
	return &ast.Converte{Tok: ctok, Value: value, Target: target}, nil
}


// parseListLiteral parses "[ tipo : e1, e2, e3 ]" ("[ tipo : ]" for an
// empty list).
func (p *Parser) parseListLiteral() (ast.Expr, error) {
	tok, err := p.expect(token.LeftBracket, "'['")
	if err != nil {
		return nil, err
	}
	elemType, err := p.parseTypeRef()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Colon, "':'"); err != nil {
		return nil, err
	}
	lit := &ast.ListLiteral{Tok: tok, ElementType: elemType}
	for !p.check(token.RightBracket) {
		if len(lit.Elements) > 0 {
			if _, err := p.expect(token.Comma, "','"); err != nil {
				return nil, err
			}
		}
		elem, err := p.parseExpr(PrecOr)
		if err != nil {
			return nil, err
		}
		lit.Elements = append(lit.Elements, elem)
	}
	if _, err := p.expect(token.RightBracket, "']'"); err != nil {
		return nil, err
	}
	return lit, nil
}
