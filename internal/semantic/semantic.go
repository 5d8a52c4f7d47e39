// Package semantic is the host-neutral form of a method body. Host front-ends
// lower their syntax trees into it and answer type questions through a
// TypeOracle, so the analysis core never depends on a particular parser.
package semantic

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/vk/genmaths/internal/numeric"
)

// Symbol identifies a declaration in the host program.
type Symbol struct {
	Package string
	Name    string
}

func (s Symbol) String() string {
	if s.Package == "" {
		return s.Name
	}
	return s.Package + "." + s.Name
}

// Method is one method body to analyze.
type Method struct {
	Name   string
	Symbol Symbol
	Range  hcl.Range
	Params []*Parameter
	Body   []Statement
}

// Parameter is a method input.
type Parameter struct {
	Name  string
	Range hcl.Range
}

// Node is implemented by every statement and expression.
type Node interface {
	Range() hcl.Range
}

// Statement is a statement of a method body.
type Statement interface {
	Node
	isStatement()
}

// Expression is an expression of a method body.
type Expression interface {
	Node
	isExpression()
}

// LocalDeclaration binds Name to the value of Init.
type LocalDeclaration struct {
	Name     string
	Init     Expression
	SrcRange hcl.Range
}

// Return returns Results from the method.
type Return struct {
	Results  []Expression
	SrcRange hcl.Range
}

// UnsupportedStatement is any statement the front-end could not lower.
type UnsupportedStatement struct {
	Description string
	SrcRange    hcl.Range
}

func (s *LocalDeclaration) Range() hcl.Range     { return s.SrcRange }
func (s *Return) Range() hcl.Range               { return s.SrcRange }
func (s *UnsupportedStatement) Range() hcl.Range { return s.SrcRange }

func (*LocalDeclaration) isStatement()     {}
func (*Return) isStatement()               {}
func (*UnsupportedStatement) isStatement() {}

// Literal is a numeric or boolean literal in source spelling.
type Literal struct {
	Text     string
	SrcRange hcl.Range
}

// LocalReference reads a local declared in the method body.
type LocalReference struct {
	Name     string
	SrcRange hcl.Range
}

// ParameterReference reads a method parameter.
type ParameterReference struct {
	Name     string
	SrcRange hcl.Range
}

// Binary is a binary operator expression. Operator is the source token.
type Binary struct {
	Operator    string
	Left, Right Expression
	SrcRange    hcl.Range
}

// Unary is a unary operator expression. Operator is the source token.
type Unary struct {
	Operator string
	Operand  Expression
	SrcRange hcl.Range
}

// Conversion converts Operand to the type the oracle reports for the
// conversion expression itself.
type Conversion struct {
	Operand  Expression
	SrcRange hcl.Range
}

// Unsupported is any expression the front-end could not lower, such as a
// closure or a call.
type Unsupported struct {
	Description string
	SrcRange    hcl.Range
}

func (e *Literal) Range() hcl.Range            { return e.SrcRange }
func (e *LocalReference) Range() hcl.Range     { return e.SrcRange }
func (e *ParameterReference) Range() hcl.Range { return e.SrcRange }
func (e *Binary) Range() hcl.Range             { return e.SrcRange }
func (e *Unary) Range() hcl.Range              { return e.SrcRange }
func (e *Conversion) Range() hcl.Range         { return e.SrcRange }
func (e *Unsupported) Range() hcl.Range        { return e.SrcRange }

func (*Literal) isExpression()            {}
func (*LocalReference) isExpression()     {}
func (*ParameterReference) isExpression() {}
func (*Binary) isExpression()             {}
func (*Unary) isExpression()              {}
func (*Conversion) isExpression()         {}
func (*Unsupported) isExpression()        {}

// TypeID is a resolved type as reported by the host.
type TypeID struct {
	Name    string
	Kind    numeric.Kind
	Bits    int
	Generic bool
}

// Numeric returns the numeric type a literal of this TypeID is parsed as.
// Generic types are parsed as their constraint's core type when the host
// knows one, otherwise as an untyped value of Kind.
func (t TypeID) Numeric() numeric.Type {
	if !t.Generic {
		if nt, ok := numeric.Lookup(t.Name); ok {
			return nt
		}
	}
	return numeric.Of(t.Kind, t.Bits)
}

// TypeOracle answers type questions about a lowered method. It is only valid
// for the duration of one analysis.
type TypeOracle interface {
	// TypeOf returns the resolved type of e. The second result is false when
	// the host has no type information for e.
	TypeOf(e Expression) (TypeID, bool)
	// IsMarkedForSpecialization reports whether the method named by s is in
	// scope for analysis.
	IsMarkedForSpecialization(s Symbol) bool
}

// MapOracle is a TypeOracle backed by maps. Front-ends fill it while lowering.
type MapOracle struct {
	Types  map[Expression]TypeID
	Marked map[Symbol]bool
}

func NewMapOracle() *MapOracle {
	return &MapOracle{
		Types:  make(map[Expression]TypeID),
		Marked: make(map[Symbol]bool),
	}
}

func (o *MapOracle) TypeOf(e Expression) (TypeID, bool) {
	t, ok := o.Types[e]
	return t, ok
}

func (o *MapOracle) IsMarkedForSpecialization(s Symbol) bool {
	return o.Marked[s]
}

// Walk visits e and its sub-expressions in pre-order.
func Walk(e Expression, fn func(Expression)) {
	if e == nil {
		return
	}
	fn(e)
	switch e := e.(type) {
	case *Binary:
		Walk(e.Left, fn)
		Walk(e.Right, fn)
	case *Unary:
		Walk(e.Operand, fn)
	case *Conversion:
		Walk(e.Operand, fn)
	}
}
