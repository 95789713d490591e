// Package types implements the language's type system: the closed set of
// primitive and composite types, structural/nominal equality, and the
// promotion lattice that implicit numeric coercion is built on.
package types

import "fmt"

// Type is the interface every value type in the language implements.
//
// DESIGN CHOICE: an interface with a private kind() method, not a struct
// with a "kind" field — so each case is its own Go type (pattern-matchable
// via type switch) and the set of implementations is closed to this
// package.
type Type interface {
	String() string
	Equals(other Type) bool

	// IsNumeric reports whether the type participates in arithmetic.
	IsNumeric() bool
	// IsOperable reports whether the type can appear as an operand of
	// equality/relational comparison.
	IsOperable() bool
	// CanEvaluate reports whether a value of this type can stand alone as
	// an expression (false only for vazio; a bare class name is rejected
	// by the symbol's kind, not by its type).
	CanEvaluate() bool

	// PromoteTo returns the type a value of this type implicitly coerces
	// to in a context expecting other, or nil if no promotion applies.
	// PromoteTo(self) always returns nil — there is no self-promotion.
	PromoteTo(other Type) Type

	kind() kind
}

type kind int

const (
	kindInt kind = iota
	kindReal
	kindBool
	kindTexto
	kindVazio
	kindIndef
	kindNulo
	kindList
	kindClass
)

type primitive struct{ k kind }

func (p *primitive) kind() kind { return p.k }

func (p *primitive) String() string {
	switch p.k {
	case kindInt:
		return "int"
	case kindReal:
		return "real"
	case kindBool:
		return "bool"
	case kindTexto:
		return "texto"
	case kindVazio:
		return "vazio"
	case kindIndef:
		return "indef"
	case kindNulo:
		return "nulo"
	}
	return "<desconhecido>"
}

func (p *primitive) Equals(other Type) bool {
	o, ok := other.(*primitive)
	return ok && o.k == p.k
}

func (p *primitive) IsNumeric() bool {
	return p.k == kindInt || p.k == kindReal
}

func (p *primitive) IsOperable() bool {
	switch p.k {
	case kindInt, kindReal, kindBool, kindTexto:
		return true
	default:
		return false
	}
}

func (p *primitive) CanEvaluate() bool {
	return p.k != kindVazio
}

// PromoteTo implements the fixed promotion table:
//
//	int → real
//	{int, real, bool, texto, nulo} → indef
//	indef → {int, real, bool, texto}
//	class → indef
//	everything else → none
func (p *primitive) PromoteTo(other Type) Type {
	if p.Equals(other) {
		return nil
	}
	switch p.k {
	case kindInt:
		if other.Equals(Real) {
			return Real
		}
		if other.Equals(Indef) {
			return Indef
		}
	case kindReal, kindBool, kindTexto, kindNulo:
		if other.Equals(Indef) {
			return Indef
		}
	case kindIndef:
		switch other.(type) {
		case *primitive:
			o := other.(*primitive)
			if o.k == kindInt || o.k == kindReal || o.k == kindBool || o.k == kindTexto {
				return other
			}
		}
	}
	return nil
}

// Singleton primitive instances — avoids reallocating a fresh type value
// for every literal, and makes Equals cheap for the common cases.
var (
	Int   Type = &primitive{kindInt}
	Real  Type = &primitive{kindReal}
	Bool  Type = &primitive{kindBool}
	Texto Type = &primitive{kindTexto}
	Vazio Type = &primitive{kindVazio}
	Indef Type = &primitive{kindIndef}
	Nulo  Type = &primitive{kindNulo}
)

// ListType is a homogeneous list of Element. Dim records the declared
// dimensionality for diagnostics; it is not load-bearing for equality,
// which follows the Element nesting alone.
type ListType struct {
	Element Type
	Dim     int
}

// NewList builds a list type of the given dimensionality. Dimensions
// greater than one are represented by nesting: NewList(T, 2) is
// List(List(T, dim=1), dim=2), not a flat 2D marker — so Equals stays
// purely structural over the Element chain.
func NewList(element Type, dim int) *ListType {
	if dim <= 1 {
		return &ListType{Element: element, Dim: 1}
	}
	return &ListType{Element: NewList(element, dim-1), Dim: dim}
}

func (l *ListType) kind() kind { return kindList }

func (l *ListType) String() string {
	return fmt.Sprintf("lista(%s)", l.Element.String())
}

// Equals is structural: two lists are equal iff their element types are
// equal (dimensionality follows from element nesting, not compared here).
func (l *ListType) Equals(other Type) bool {
	o, ok := other.(*ListType)
	return ok && l.Element.Equals(o.Element)
}

func (l *ListType) IsNumeric() bool    { return false }
func (l *ListType) IsOperable() bool   { return false }
func (l *ListType) CanEvaluate() bool  { return true }
func (l *ListType) PromoteTo(Type) Type { return nil }

// ClassType is nominal: two classes are equal iff they are the same
// declared symbol, represented here by pointer identity of the ClassType
// value itself (one ClassType is allocated per class declaration).
type ClassType struct {
	Name    string
	Members map[string]Type
}

func NewClass(name string) *ClassType {
	return &ClassType{Name: name, Members: make(map[string]Type)}
}

func (c *ClassType) kind() kind { return kindClass }

func (c *ClassType) String() string { return c.Name }

func (c *ClassType) Equals(other Type) bool {
	o, ok := other.(*ClassType)
	return ok && o == c
}

func (c *ClassType) IsNumeric() bool   { return false }
func (c *ClassType) IsOperable() bool  { return false }
func (c *ClassType) CanEvaluate() bool { return true }

// PromoteTo implements "class → indef (nullable reference types)".
func (c *ClassType) PromoteTo(other Type) Type {
	if other.Equals(Indef) {
		return Indef
	}
	return nil
}

// IsNumeric, IsOperable and CanEvaluate are also exposed as free functions
// for callers that prefer not to invoke the method on a possibly-nil Type.

func IsNumeric(t Type) bool   { return t != nil && t.IsNumeric() }
func IsOperable(t Type) bool  { return t != nil && t.IsOperable() }
func CanEvaluate(t Type) bool { return t != nil && t.CanEvaluate() }
