// Package steps partitions a finished value graph into ordered execution
// steps.
package steps

import (
	"maps"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/genmaths/internal/diag"
	"github.com/vk/genmaths/internal/value"
)

// Step is a batch of values that can be computed together once every value
// in Required is known. Order within Values carries no meaning.
type Step struct {
	Number   int
	Values   []value.Value
	Required []value.Value
}

// Resolve buckets every distinct value reachable from the non-parameter
// Variables by its step number and returns the buckets in ascending order.
// A value shared by several parents is placed once. Parameter references are
// inputs of the method: they can be required but are never produced.
//
// No Variables, or only parameters, yield no Steps.
func Resolve(vars []*value.Variable) ([]Step, error) {
	// Seed in reverse so the first Variable is expanded first.
	var stack []value.Value
	for i := len(vars) - 1; i >= 0; i-- {
		v := vars[i]
		if v.Parameter {
			continue
		}
		if v.Value == nil {
			return nil, diag.Internal(v.Range, "local %s has no definition", v.Name)
		}
		stack = append(stack, v.Value)
	}

	seen := make(map[value.Value]struct{})
	buckets := make(map[int][]value.Value)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}

		if isInput(n) {
			continue
		}
		buckets[n.Step()] = append(buckets[n.Step()], n)

		children := n.Children()
		for i := len(children) - 1; i >= 0; i-- {
			c := children[i]
			if c == nil {
				return nil, diag.Internal(hcl.Range{}, "nil operand in %s", n)
			}
			if c.Step() > n.Step() {
				return nil, diag.Internal(hcl.Range{}, "step of %s (%d) exceeds step of parent %s (%d)", c, c.Step(), n, n.Step())
			}
			stack = append(stack, c)
		}
	}

	out := make([]Step, 0, len(buckets))
	produced := make(map[value.Value]struct{}, len(seen))
	for _, number := range slices.Sorted(maps.Keys(buckets)) {
		values := buckets[number]
		step := Step{Number: number, Values: values, Required: required(values)}
		for _, r := range step.Required {
			if _, ok := produced[r]; !ok && !isInput(r) {
				return nil, diag.Internal(hcl.Range{}, "step %d requires %s, which no earlier step produces", number, r)
			}
		}
		for _, v := range values {
			produced[v] = struct{}{}
		}
		out = append(out, step)
	}
	return out, nil
}

// required is the de-duplicated union of the children of values.
func required(values []value.Value) []value.Value {
	var out []value.Value
	seen := make(map[value.Value]struct{})
	for _, v := range values {
		for _, c := range v.Children() {
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}

func isInput(v value.Value) bool {
	r, ok := v.(*value.VariableRef)
	return ok && r.Variable.Parameter
}
