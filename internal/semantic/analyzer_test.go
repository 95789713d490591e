package semantic

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dcarvalho/amanda/internal/ast"
	"github.com/dcarvalho/amanda/internal/compileerror"
	"github.com/dcarvalho/amanda/internal/config"
	"github.com/dcarvalho/amanda/internal/emitter"
	"github.com/dcarvalho/amanda/internal/lexer"
	"github.com/dcarvalho/amanda/internal/parser"
	"github.com/dcarvalho/amanda/internal/types"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load([]byte(`
std_lib: testdata
reserved_words: [LOAD_CONST, MOSTRA]
builtins: [vm]
`))
	require.NoError(t, err)
	return cfg
}

func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	a, err := New(testConfig(t), parser.FileParser{}, nil, nil)
	require.NoError(t, err)
	return a
}

func parseSrc(t *testing.T, src string) *ast.Program {
	t.Helper()
	lex := lexer.New(src, "main.ama")
	p, err := parser.New(lex, "main.ama")
	require.NoError(t, err)
	prog, err := p.ParseProgram()
	require.NoError(t, err)
	return prog
}

func analyzeSrc(t *testing.T, src string) (*ast.Program, error) {
	t.Helper()
	a := newTestAnalyzer(t)
	prog := parseSrc(t, src)
	return prog, a.Analyze("main.ama", prog)
}

func requireCompileError(t *testing.T, err error, fragment string) *compileerror.CompileError {
	t.Helper()
	require.Error(t, err)
	var ce *compileerror.CompileError
	require.ErrorAs(t, err, &ce)
	require.Contains(t, ce.Message, fragment)
	return ce
}

func TestAnalyze_IntPromotion(t *testing.T) {
	prog, err := analyzeSrc(t, "var x : real = 1 + 2")
	require.NoError(t, err)

	decl := prog.Children[0].(*ast.VarDecl)
	bin := decl.Init.(*ast.BinOp)
	require.True(t, types.Int.Equals(bin.EvalType))
	require.True(t, types.Real.Equals(bin.PromType))
	require.True(t, types.Real.Equals(decl.ResolvedType))
	require.Equal(t, "x", decl.Sym.OutID)
	require.True(t, decl.Sym.IsGlobal)
}

func TestAnalyze_SelfReferenceInDeclFails(t *testing.T) {
	_, err := analyzeSrc(t, "var x : int = x")
	requireCompileError(t, err, "Não pode referenciar uma variável durante a sua declaração")
}

func TestAnalyze_RedeclarationFails(t *testing.T) {
	_, err := analyzeSrc(t, "var x : int\nvar x : int")
	requireCompileError(t, err, "já foi declarado neste escopo")
}

func TestAnalyze_UndeclaredVariableFails(t *testing.T) {
	_, err := analyzeSrc(t, "mostra y")
	requireCompileError(t, err, "o identificador 'y' não foi declarado")
}

func TestAnalyze_EscolhaDesugarsToSeChain(t *testing.T) {
	prog, err := analyzeSrc(t, `var x : int = 1
escolha x {
	caso 1: mostra 10
	caso 2: mostra 20
	contrario: mostra 0
}`)
	require.NoError(t, err)
	require.Len(t, prog.Children, 2)

	se, ok := prog.Children[1].(*ast.Se)
	require.True(t, ok, "escolha deve ser reescrita como se")
	require.Len(t, se.ElseIfs, 1)
	require.NotNil(t, se.Else)

	cond := se.Cond.(*ast.BinOp)
	require.Equal(t, "==", cond.Op.Lexeme)
	require.Equal(t, 2, cond.Op.Position.Line, "tokens sintetizados mantêm a posição do escolha")
	subject := cond.Right.(*ast.Variable)
	require.Equal(t, "x", subject.Name.Lexeme)
	require.True(t, types.Bool.Equals(cond.EvalType))

	elifCond := se.ElseIfs[0].Cond.(*ast.BinOp)
	require.Equal(t, "==", elifCond.Op.Lexeme)
	require.True(t, types.Bool.Equals(elifCond.EvalType))
}

func TestAnalyze_EmptyEscolhaRemoved(t *testing.T) {
	prog, err := analyzeSrc(t, "var x : int = 1\nescolha x { }")
	require.NoError(t, err)
	require.Len(t, prog.Children, 1)
}

func TestAnalyze_EscolhaDefaultOnlyBecomesIfTrue(t *testing.T) {
	prog, err := analyzeSrc(t, "var x : int = 1\nescolha x { contrario: mostra 0 }")
	require.NoError(t, err)
	require.Len(t, prog.Children, 2)
	se := prog.Children[1].(*ast.Se)
	cond := se.Cond.(*ast.Constant)
	require.Equal(t, "verdadeiro", cond.Tok.Lexeme)
	require.Empty(t, se.ElseIfs)
	require.Nil(t, se.Else)
}

func TestAnalyze_EscolhaSubjectMustBeIntOrTexto(t *testing.T) {
	_, err := analyzeSrc(t, "var b : bool = verdadeiro\nescolha b { caso verdadeiro: mostra 1 }")
	requireCompileError(t, err, "A directiva escolha só pode ser usada para avaliar números inteiros e strings")
}

func TestAnalyze_MissingReturnFails(t *testing.T) {
	_, err := analyzeSrc(t, `func f(): int {
	se verdadeiro {
		retorna 1
	}
}`)
	requireCompileError(t, err, "a função 'f' não possui a instrução 'retorna'")
}

func TestAnalyze_ElseBranchSatisfiesReturn(t *testing.T) {
	_, err := analyzeSrc(t, `func f(): int {
	se verdadeiro {
		retorna 1
	} senao {
		retorna 2
	}
}`)
	require.NoError(t, err)
}

func TestAnalyze_LoopBodyCountsAsReturn(t *testing.T) {
	// A zero-iteration loop never runs its body; the structural check
	// accepts it anyway. Preserved source behavior.
	_, err := analyzeSrc(t, `func f(): int {
	enquanto verdadeiro {
		retorna 1
	}
}`)
	require.NoError(t, err)
}

func TestAnalyze_ReturnTypeRules(t *testing.T) {
	_, err := analyzeSrc(t, "func f(): vazio { retorna 1 }")
	requireCompileError(t, err, "Não pode retornar um valor de uma função vazia")

	_, err = analyzeSrc(t, "func f(): int { retorna }")
	requireCompileError(t, err, "A instrução de retorno vazia só pode ser usada dentro de uma função vazia")

	_, err = analyzeSrc(t, "func f(): int { retorna verdadeiro }")
	requireCompileError(t, err, "expressão de retorno inválida")

	_, err = analyzeSrc(t, "retorna 1")
	requireCompileError(t, err, "A directiva 'retorna' só pode ser usada dentro de uma função")
}

func TestAnalyze_NestedFunctionFails(t *testing.T) {
	_, err := analyzeSrc(t, `func f(): vazio {
	func g(): vazio {
	}
}`)
	requireCompileError(t, err, "As funções só podem ser declaradas no escopo global")
}

func TestAnalyze_ListaIntrinsic(t *testing.T) {
	prog, err := analyzeSrc(t, "var xs : lista(int) = lista(int, 5)")
	require.NoError(t, err)

	decl := prog.Children[0].(*ast.VarDecl)
	call := decl.Init.(*ast.Call)
	listType, ok := call.EvalType.(*types.ListType)
	require.True(t, ok)
	require.True(t, types.Int.Equals(listType.Element))
	require.Equal(t, 1, listType.Dim)
	require.True(t, types.Int.Equals(call.Args[1].Annotation().EvalType))
}

func TestAnalyze_ListaArityEnforced(t *testing.T) {
	_, err := analyzeSrc(t, "var xs : lista(int) = lista(int)")
	requireCompileError(t, err, "número incorrecto de argumentos para a função lista. Esperava 2 argumento(s), porém recebeu 1")
}

func TestAnalyze_MatrizIntrinsic(t *testing.T) {
	prog, err := analyzeSrc(t, "matriz(int, 2, 3)")
	require.NoError(t, err)

	stmt := prog.Children[0].(*ast.ExprStmt)
	call := stmt.Inner.(*ast.Call)
	outer, ok := call.EvalType.(*types.ListType)
	require.True(t, ok)
	require.Equal(t, 2, outer.Dim)
	inner, ok := outer.Element.(*types.ListType)
	require.True(t, ok)
	require.True(t, types.Int.Equals(inner.Element))
}

func TestAnalyze_AnexeIntrinsic(t *testing.T) {
	prog, err := analyzeSrc(t, "var xs : lista(real) = lista(real, 2)\nanexe(xs, 1)")
	require.NoError(t, err)

	stmt := prog.Children[1].(*ast.ExprStmt)
	call := stmt.Inner.(*ast.Call)
	require.True(t, types.Vazio.Equals(call.EvalType))
	require.True(t, types.Real.Equals(call.Args[1].Annotation().PromType))
}

func TestAnalyze_AnexeElementTypeMismatchFails(t *testing.T) {
	_, err := analyzeSrc(t, `var xs : lista(real) = lista(real, 2)
anexe(xs, "ola")`)
	requireCompileError(t, err, "incompatibilidade de tipos entre a lista e o valor a anexar")
}

func TestAnalyze_ConstructorSynthesis(t *testing.T) {
	prog, err := analyzeSrc(t, `classe Ponto {
	var x : int
	var y : int
	func soma(): int {
		retorna eu.x + eu.y
	}
}
var p : Ponto = Ponto(1, 2)
mostra p.x`)
	require.NoError(t, err)

	cd := prog.Children[0].(*ast.ClassDecl)
	ctor := cd.Sym.Constructor
	require.NotNil(t, ctor)
	require.Len(t, ctor.Params, 2)
	require.Equal(t, "x", ctor.Params[0].Name)
	require.Equal(t, "y", ctor.Params[1].Name)
	require.True(t, ctor.Type.Equals(cd.Sym.Type))

	for _, member := range cd.Sym.Members {
		require.True(t, member.IsProperty)
	}

	decl := prog.Children[1].(*ast.VarDecl)
	call := decl.Init.(*ast.Call)
	require.True(t, call.EvalType.Equals(cd.Sym.Type))
}

func TestAnalyze_MethodCallAndFieldSet(t *testing.T) {
	prog, err := analyzeSrc(t, `classe Contador {
	var n : int
	func incrementa(): vazio {
		eu.n = eu.n + 1
	}
}
var c : Contador = Contador(0)
c.incrementa()
c.n = 5`)
	require.NoError(t, err)
	require.Len(t, prog.Children, 4)

	call := prog.Children[2].(*ast.ExprStmt).Inner.(*ast.Call)
	require.True(t, types.Vazio.Equals(call.EvalType))

	set := prog.Children[3].(*ast.ExprStmt).Inner.(*ast.Set)
	require.True(t, types.Int.Equals(set.EvalType))
}

func TestAnalyze_BareMethodReferenceFails(t *testing.T) {
	_, err := analyzeSrc(t, `classe Contador {
	var n : int
	func valor(): int {
		retorna eu.n
	}
}
var c : Contador = Contador(0)
mostra c.valor`)
	requireCompileError(t, err, "não é uma referência válida")
}

func TestAnalyze_EuOutsideMethodFails(t *testing.T) {
	_, err := analyzeSrc(t, "mostra eu")
	requireCompileError(t, err, "a palavra reservada 'eu' só pode ser usada dentro de um método")
}

func TestAnalyze_BinOpTypeMismatchFails(t *testing.T) {
	_, err := analyzeSrc(t, "var x : int = 1 + verdadeiro")
	requireCompileError(t, err, "não suportam operações com o operador '+'")
}

func TestAnalyze_DivisionAlwaysReal(t *testing.T) {
	prog, err := analyzeSrc(t, "var x : real = 4 / 2")
	require.NoError(t, err)
	bin := prog.Children[0].(*ast.VarDecl).Init.(*ast.BinOp)
	require.True(t, types.Real.Equals(bin.EvalType))
}

func TestAnalyze_ConditionsMustBeBool(t *testing.T) {
	_, err := analyzeSrc(t, "se 1 { }")
	requireCompileError(t, err, "a condição da instrução 'se' deve ser um valor lógico")

	_, err = analyzeSrc(t, "enquanto 1 { }")
	requireCompileError(t, err, "a condição da instrução 'enquanto' deve ser um valor lógico")
}

func TestAnalyze_ParaDeclaresIntControlVariable(t *testing.T) {
	prog, err := analyzeSrc(t, "para i de 0 ate 10 faca { mostra i }")
	require.NoError(t, err)

	para := prog.Children[0].(*ast.Para)
	require.NotNil(t, para.Range.Inc, "inc em falta recebe o literal 1")
	inc := para.Range.Inc.(*ast.Constant)
	require.Equal(t, "1", inc.Tok.Lexeme)
	require.Equal(t, para.Tok.Position.Line, inc.Tok.Position.Line)

	sym, ok := para.Scope.Get("i")
	require.True(t, ok)
	require.True(t, types.Int.Equals(sym.Type))
	require.Equal(t, "_r10_", sym.OutID)
}

func TestAnalyze_ParaRangeMustBeInt(t *testing.T) {
	_, err := analyzeSrc(t, "para i de 0 ate verdadeiro faca { }")
	requireCompileError(t, err, "os parâmetros de uma série devem ser do tipo 'int'")
}

func TestAnalyze_PureExpressionStatementsDropped(t *testing.T) {
	prog, err := analyzeSrc(t, "var x : int = 1\nx + 1\nmostra x")
	require.NoError(t, err)
	require.Len(t, prog.Children, 2)
	_, ok := prog.Children[1].(*ast.Mostra)
	require.True(t, ok)
}

func TestAnalyze_CallArityAndArgumentPromotion(t *testing.T) {
	prog, err := analyzeSrc(t, `func soma(a: real, b: real): real {
	retorna a + b
}
var r : real = soma(1, 2)`)
	require.NoError(t, err)

	decl := prog.Children[1].(*ast.VarDecl)
	call := decl.Init.(*ast.Call)
	require.True(t, types.Real.Equals(call.EvalType))
	for _, arg := range call.Args {
		require.True(t, types.Real.Equals(arg.Annotation().PromType))
	}

	_, err = analyzeSrc(t, `func soma(a: real, b: real): real {
	retorna a + b
}
var r : real = soma(1)`)
	requireCompileError(t, err, "número incorrecto de argumentos para a função soma")
}

func TestAnalyze_ArgumentTypeMismatchFails(t *testing.T) {
	_, err := analyzeSrc(t, `func dobro(a: int): int {
	retorna a * 2
}
var r : int = dobro(verdadeiro)`)
	requireCompileError(t, err, "argumento inválido. Esperava-se um argumento do tipo 'int' mas recebeu o tipo 'bool'")
}

func TestAnalyze_BuiltinModuleFunctionsAvailable(t *testing.T) {
	_, err := analyzeSrc(t, `escreva("ola")`)
	require.NoError(t, err)
}

func TestAnalyze_LocalOutIDsAreSynthesized(t *testing.T) {
	prog, err := analyzeSrc(t, `func f(a: int): int {
	var b : int = a
	retorna b
}`)
	require.NoError(t, err)

	fn := prog.Children[0].(*ast.FuncDecl)
	aSym, ok := fn.Sym.BodyScope.Get("a")
	require.True(t, ok)
	require.Equal(t, "_r10_", aSym.OutID)
	bSym, ok := fn.Sym.BodyScope.Get("b")
	require.True(t, ok)
	require.Equal(t, "_r11_", bSym.OutID)
}

func TestAnalyze_ReservedNamesGetSyntheticOutIDs(t *testing.T) {
	prog, err := analyzeSrc(t, "var LOAD_CONST : int\nvar __x__ : int")
	require.NoError(t, err)

	first := prog.Children[0].(*ast.VarDecl)
	require.True(t, strings.HasPrefix(first.Sym.OutID, "_r0"))
	second := prog.Children[1].(*ast.VarDecl)
	require.True(t, strings.HasPrefix(second.Sym.OutID, "_r0"))
	require.NotEqual(t, first.Sym.OutID, second.Sym.OutID)
}

func TestAnalyze_AssignPromotion(t *testing.T) {
	prog, err := analyzeSrc(t, "var x : real\nx = 3")
	require.NoError(t, err)

	assign := prog.Children[1].(*ast.ExprStmt).Inner.(*ast.Assign)
	require.True(t, types.Real.Equals(assign.EvalType))
	require.True(t, types.Real.Equals(assign.Value.Annotation().PromType))

	_, err = analyzeSrc(t, "var x : int\nx = 3.5")
	requireCompileError(t, err, "atribuição inválida")
}

func TestAnalyze_IndexRules(t *testing.T) {
	prog, err := analyzeSrc(t, "var xs : lista(int) = lista(int, 3)\nmostra xs[0]")
	require.NoError(t, err)
	idx := prog.Children[1].(*ast.Mostra).Value.(*ast.Index)
	require.True(t, types.Int.Equals(idx.EvalType))

	_, err = analyzeSrc(t, "var xs : lista(int) = lista(int, 3)\nmostra xs[verdadeiro]")
	requireCompileError(t, err, "Os índices de uma lista devem ser inteiros")

	_, err = analyzeSrc(t, "var x : int = 1\nmostra x[0]")
	requireCompileError(t, err, "não é indexável")
}

func TestAnalyze_ConverteSetsTargetType(t *testing.T) {
	prog, err := analyzeSrc(t, `var s : texto = converte(1) como texto`)
	require.NoError(t, err)
	conv := prog.Children[0].(*ast.VarDecl).Init.(*ast.Converte)
	require.True(t, types.Texto.Equals(conv.EvalType))
}

func TestAnalyze_UnaryOperatorRules(t *testing.T) {
	_, err := analyzeSrc(t, "var x : int = -1")
	require.NoError(t, err)

	_, err = analyzeSrc(t, "var b : bool = nao verdadeiro")
	require.NoError(t, err)

	_, err = analyzeSrc(t, `var x : int = -"ola"`)
	requireCompileError(t, err, "o operador unário - não pode ser usado com o tipo")
}

func TestAnalyze_CyclicImport(t *testing.T) {
	dir := t.TempDir()
	pathA := filepath.Join(dir, "a.ama")
	pathB := filepath.Join(dir, "b.ama")
	require.NoError(t, os.WriteFile(pathA, []byte("usa \"b\"\n"), 0o644))
	require.NoError(t, os.WriteFile(pathB, []byte("usa \"a\"\n"), 0o644))

	a := newTestAnalyzer(t)
	prog, err := parser.FileParser{}.ParseFile(pathA)
	require.NoError(t, err)

	err = a.Analyze(pathA, prog)
	ce := requireCompileError(t, err, compileerror.CyclicImport)
	require.Equal(t, pathB, ce.File)

	modA, ok := a.registry.Get(pathA)
	require.True(t, ok)
	require.False(t, modA.Loaded)
	modB, ok := a.registry.Get(pathB)
	require.True(t, ok)
	require.False(t, modB.Loaded)
}

func TestAnalyze_ImportMergesIntoGlobalScope(t *testing.T) {
	dir := t.TempDir()
	libPath := filepath.Join(dir, "lib.ama")
	mainPath := filepath.Join(dir, "main.ama")
	require.NoError(t, os.WriteFile(libPath, []byte("func dobra(x: int): int {\n\tretorna x * 2\n}\n"), 0o644))
	require.NoError(t, os.WriteFile(mainPath, []byte("usa \"lib\"\nvar y : int = dobra(21)\n"), 0o644))

	a := newTestAnalyzer(t)
	prog, err := parser.FileParser{}.ParseFile(mainPath)
	require.NoError(t, err)
	require.NoError(t, a.Analyze(mainPath, prog))

	mod, ok := a.registry.Get(libPath)
	require.True(t, ok)
	require.True(t, mod.Loaded)
}

func TestAnalyze_ImportMissingFileFails(t *testing.T) {
	_, err := analyzeSrc(t, "usa \"inexistente\"")
	requireCompileError(t, err, "não é um ficheiro válido")
}

func TestAnalyze_BlocksHaveScopesChainedToGlobal(t *testing.T) {
	prog, err := analyzeSrc(t, `var x : int = 1
se verdadeiro {
	var y : int = x
}`)
	require.NoError(t, err)

	se := prog.Children[1].(*ast.Se)
	require.NotNil(t, se.Then.Symbols)
	scope := se.Then.Symbols
	for scope.Parent != nil {
		scope = scope.Parent
	}
	require.True(t, scope.IsGlobal())
	require.Same(t, prog.Scope, scope)
}

func TestHasReturn_Structure(t *testing.T) {
	prog := parseSrc(t, `func f(): int {
	enquanto verdadeiro {
		retorna 1
	}
}`)
	fn := prog.Children[0].(*ast.FuncDecl)
	require.True(t, hasReturn(fn.Body))

	prog = parseSrc(t, `func f(): int {
	se verdadeiro {
		retorna 1
	} senaose falso {
		retorna 2
	}
}`)
	fn = prog.Children[0].(*ast.FuncDecl)
	require.False(t, hasReturn(fn.Body), "ramos senaose não garantem retorno sem senao")
}

func TestPipeline_AnalyzeThenEmit(t *testing.T) {
	prog, err := analyzeSrc(t, "var x : real = 1 + 2")
	require.NoError(t, err)

	out, err := emitter.New().Emit(prog)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Equal(t, []string{".data", "1", "2", "x", ".ops", "1 0", "1 1", "2", "9 2 1"}, lines)
}
