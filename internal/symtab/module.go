package symtab

// Module tracks one source file's import state: its absolute path, its
// parsed AST root once loaded, and whether analysis of it has completed.
//
// AST is stored as interface{} rather than a concrete *ast.Program:
// internal/ast annotates expression and block nodes with *Symbol/*Scope,
// so internal/ast already imports internal/symtab — Module holding a
// typed ast.Program field would close that into an import cycle. The analyzer, which imports
// both packages, stores the *ast.Program it parsed here; reading it back
// takes a type assertion.
type Module struct {
	Path   string
	AST    interface{}
	Loaded bool
}

// NewModule creates the module for path in the "in progress" state — not
// yet loaded. Registry.Register records it.
func NewModule(path string) *Module {
	return &Module{Path: path}
}

// Registry maps an absolute module path to its Module — an explicit
// context object threaded through analysis rather than a process-wide
// singleton, so callers construct one per compilation and discard it
// afterward.
type Registry struct {
	modules map[string]*Module
}

// NewRegistry creates an empty module registry.
func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]*Module)}
}

// Get returns the registered module for path, if any.
func (r *Registry) Get(path string) (*Module, bool) {
	m, ok := r.modules[path]
	return m, ok
}

// Register records m under its Path, overwriting any prior entry.
func (r *Registry) Register(m *Module) {
	r.modules[m.Path] = m
}
