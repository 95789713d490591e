package semantic

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/dcarvalho/amanda/internal/ast"
	"github.com/dcarvalho/amanda/internal/compileerror"
	"github.com/dcarvalho/amanda/internal/symtab"
	"github.com/dcarvalho/amanda/internal/token"
)

// VisitUsa resolves an import path: strips the surrounding quotes,
// appends the default extension when missing, anchors relative paths at
// the importing file's directory, and loads the module.
func (a *Analyzer) VisitUsa(n *ast.Usa) error {
	fpath := strings.Trim(n.Path.Lexeme, `"'`)
	head, tail := filepath.Split(fpath)
	if tail == "" {
		return a.errf(n.Pos(), "Erro ao importar módulo. O caminho '%s' não é um ficheiro válido", fpath)
	}
	if filepath.Ext(tail) != ".ama" {
		tail += ".ama"
	}
	fpath = filepath.Join(head, tail)
	if !filepath.IsAbs(fpath) {
		fpath = filepath.Join(filepath.Dir(a.currentPath), fpath)
	}
	if info, err := os.Stat(fpath); err != nil || info.IsDir() {
		return a.errf(n.Pos(), "Erro ao importar módulo. O caminho '%s' não é um ficheiro válido", strings.Trim(n.Path.Lexeme, `"'`))
	}
	absPath, err := filepath.Abs(fpath)
	if err != nil {
		return compileerror.Wrap(err, a.currentPath, "Erro ao importar módulo", n.Pos().Line)
	}
	return a.loadModule(absPath, n.Pos())
}

// loadModule parses and analyzes the module at absPath, registering it
// as "in progress" first so a re-entrant load of the same not-yet-loaded
// path is reported as a cyclic import.
func (a *Analyzer) loadModule(absPath string, pos token.Position) error {
	if existing, ok := a.registry.Get(absPath); ok {
		if existing.Loaded {
			return nil
		}
		return a.errf(pos, "%s", compileerror.CyclicImport)
	}

	mod := symtab.NewModule(absPath)
	a.registry.Register(mod)

	prevPath := a.currentPath
	a.currentPath = absPath
	a.log.Debug("carregando módulo", zap.String("path", absPath))

	program, err := a.parser.ParseFile(absPath)
	if err != nil {
		a.currentPath = prevPath
		return compileerror.Wrap(err, absPath, "não foi possível carregar o módulo", pos.Line)
	}
	mod.AST = program

	if err := a.analyzeProgram(program); err != nil {
		return err
	}
	mod.Loaded = true
	a.currentPath = prevPath
	return nil
}
