// Package value is the expression graph genmaths builds for a method body.
//
// A graph is made of three node kinds: Constant, VariableRef and Operation.
// Nodes are immutable once constructed, so subtrees may be shared freely
// between parents and between Variables. Every node carries a step number:
// leaves are step 0 and an Operation is one more than its deepest operand.
package value

import (
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/genmaths/internal/numeric"
)

// Value is a node of the expression graph.
type Value interface {
	// Children returns the operands of the node in order. Leaves return nil.
	Children() []Value
	// Step is the data-flow depth of the node.
	Step() int
	String() string
}

// Constant is a literal known at analysis time.
type Constant struct {
	Literal numeric.Literal
}

func NewConstant(l numeric.Literal) *Constant { return &Constant{Literal: l} }

func (c *Constant) Children() []Value { return nil }
func (c *Constant) Step() int         { return 0 }
func (c *Constant) String() string    { return c.Literal.String() }

// VariableRef reads a Variable. It refers to the Variable, it never holds a
// copy of its definition.
type VariableRef struct {
	Variable *Variable
}

func NewRef(v *Variable) *VariableRef { return &VariableRef{Variable: v} }

func (r *VariableRef) Children() []Value { return nil }
func (r *VariableRef) Step() int         { return 0 }
func (r *VariableRef) String() string    { return r.Variable.Name }

// Operation applies an operator to ordered operands.
type Operation struct {
	Op       Operator
	Operands []Value

	step int
}

// NewOperation builds an Operation and assigns its step from the operands.
// Operand count is not checked here.
func NewOperation(op Operator, operands ...Value) *Operation {
	step := 0
	for _, o := range operands {
		step = max(step, o.Step())
	}
	return &Operation{Op: op, Operands: operands, step: step + 1}
}

func (o *Operation) Children() []Value { return o.Operands }
func (o *Operation) Step() int         { return o.step }

func (o *Operation) String() string {
	switch len(o.Operands) {
	case 1:
		return o.Op.Symbol() + o.Operands[0].String()
	case 2:
		return "(" + o.Operands[0].String() + " " + o.Op.Symbol() + " " + o.Operands[1].String() + ")"
	}
	parts := make([]string, len(o.Operands))
	for i, c := range o.Operands {
		parts[i] = c.String()
	}
	return o.Op.String() + "(" + strings.Join(parts, ", ") + ")"
}

// With returns o itself when every operand is identical to the current one,
// otherwise a new Operation over the given operands.
func (o *Operation) With(operands []Value) *Operation {
	if len(operands) == len(o.Operands) {
		same := true
		for i := range operands {
			if operands[i] != o.Operands[i] {
				same = false
				break
			}
		}
		if same {
			return o
		}
	}
	return NewOperation(o.Op, operands...)
}

// Variable is a named binding of a method body. Parameters are inputs of the
// method: they have no defining Value.
type Variable struct {
	Name      string
	Value     Value
	Parameter bool
	Range     hcl.Range
}

func (v *Variable) String() string {
	if v.Parameter {
		return "param " + v.Name
	}
	if v.Value == nil {
		return v.Name + " = <nil>"
	}
	return v.Name + " = " + v.Value.String()
}

// Walk visits v and its descendants in pre-order. Children of a node are
// skipped when fn returns false. Shared subtrees are visited once per parent.
func Walk(v Value, fn func(Value) bool) {
	if v == nil || !fn(v) {
		return
	}
	for _, c := range v.Children() {
		Walk(c, fn)
	}
}

// Identical reports whether two graphs are structurally equal. Variable
// references are equal when they name the same Variable.
func Identical(a, b Value) bool {
	switch a := a.(type) {
	case nil:
		return b == nil
	case *Constant:
		bc, ok := b.(*Constant)
		return ok && a.Literal.Equal(bc.Literal)
	case *VariableRef:
		br, ok := b.(*VariableRef)
		return ok && a.Variable == br.Variable
	case *Operation:
		bo, ok := b.(*Operation)
		if !ok || a.Op != bo.Op || len(a.Operands) != len(bo.Operands) {
			return false
		}
		for i := range a.Operands {
			if !Identical(a.Operands[i], bo.Operands[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// WalkOnce is Walk over the distinct nodes of v: a subtree shared by several
// parents is visited the first time it is reached only.
func WalkOnce(v Value, fn func(Value) bool) {
	seen := make(map[Value]struct{})
	Walk(v, func(n Value) bool {
		if _, dup := seen[n]; dup {
			return false
		}
		seen[n] = struct{}{}
		return fn(n)
	})
}

// Refs returns the distinct Variables read anywhere in v, in first-seen order.
func Refs(v Value) []*Variable {
	var out []*Variable
	seen := make(map[*Variable]struct{})
	WalkOnce(v, func(n Value) bool {
		if r, ok := n.(*VariableRef); ok {
			if _, dup := seen[r.Variable]; !dup {
				seen[r.Variable] = struct{}{}
				out = append(out, r.Variable)
			}
		}
		return true
	})
	return out
}
