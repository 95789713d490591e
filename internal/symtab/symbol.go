package symtab

import (
	"fmt"

	"github.com/dcarvalho/amanda/internal/token"
	"github.com/dcarvalho/amanda/internal/types"
)

// Kind distinguishes the polymorphic cases a Symbol can be.
type Kind int

const (
	KindVariable Kind = iota
	KindFunction
	KindClass
	KindType
	KindModule
)

func (k Kind) String() string {
	switch k {
	case KindVariable:
		return "variável"
	case KindFunction:
		return "função"
	case KindClass:
		return "classe"
	case KindType:
		return "tipo"
	case KindModule:
		return "módulo"
	default:
		return "desconhecido"
	}
}

// Param is one entry of a function symbol's ordered parameter list.
// DESIGN CHOICE: a slice, not a map — parameter order is semantically
// significant (argument binding, constructor field order) and a map
// would lose it.
type Param struct {
	Name string
	Type types.Type
}

// Symbol is the unit the scope table stores: every declared name in the
// language — variable, function, class, type alias, or imported module —
// is one Symbol, distinguished by Kind.
type Symbol struct {
	Name       string
	OutID      string
	Type       types.Type
	Kind       Kind
	IsGlobal   bool
	IsProperty bool
	Pos        token.Position

	// Function-only.
	Params     []Param
	BodyScope  *Scope
	IsNative   bool

	// Class-only.
	Members     map[string]*Symbol
	Constructor *Symbol
}

// NewVariable creates a Variable symbol.
func NewVariable(name, outID string, t types.Type, pos token.Position) *Symbol {
	return &Symbol{Name: name, OutID: outID, Type: t, Kind: KindVariable, Pos: pos}
}

// NewFunction creates a Function symbol with no parameters yet attached;
// callers populate Params and BodyScope once the body scope is built.
func NewFunction(name, outID string, returnType types.Type, pos token.Position) *Symbol {
	return &Symbol{Name: name, OutID: outID, Type: returnType, Kind: KindFunction, Pos: pos}
}

// NewClass creates a Class symbol with an empty member map.
func NewClass(name, outID string, classType types.Type, pos token.Position) *Symbol {
	return &Symbol{
		Name:    name,
		OutID:   outID,
		Type:    classType,
		Kind:    KindClass,
		Pos:     pos,
		Members: make(map[string]*Symbol),
	}
}

// CanEvaluate reports whether a bare reference to this symbol can stand
// alone as an expression — false for e.g. a class or function name with
// no call context.
func (s *Symbol) CanEvaluate() bool {
	switch s.Kind {
	case KindClass, KindType, KindModule, KindFunction:
		return false
	default:
		return types.CanEvaluate(s.Type)
	}
}

func (s *Symbol) String() string {
	return fmt.Sprintf("%s %s: %s", s.Kind, s.Name, s.Type)
}
