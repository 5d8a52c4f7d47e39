package processor

import (
	"errors"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/genmaths/internal/dag"
	"github.com/vk/genmaths/internal/diag"
	"github.com/vk/genmaths/internal/value"
)

// VariableInliner replaces every reference to a local Variable with that
// Variable's definition, so each root expression is self-contained.
// References to parameters are kept. Definitions are substituted as shared
// subtrees, not copied.
//
// Locals are inlined in dependency order, which is computed up front; a self
// or mutual reference is reported as a CyclicDefinition before any
// substitution happens.
type VariableInliner struct{}

func (VariableInliner) Name() string { return "variable-inliner" }

func (VariableInliner) Process(vars []*value.Variable) ([]*value.Variable, error) {
	g := dag.New()
	byName := make(map[string]*value.Variable, len(vars))
	for _, v := range vars {
		if v.Parameter {
			continue
		}
		byName[v.Name] = v
		g.AddNode(v.Name)
	}

	for _, v := range vars {
		if v.Parameter {
			continue
		}
		if v.Value == nil {
			return nil, diag.Internal(v.Range, "local %s has no definition", v.Name)
		}
		for _, ref := range value.Refs(v.Value) {
			if ref.Parameter {
				continue
			}
			if byName[ref.Name] != ref {
				return nil, diag.Internal(v.Range, "%s reads %s, which is not a local of this method", v.Name, ref.Name)
			}
			if err := g.AddEdge(ref.Name, v.Name); err != nil {
				return nil, cycleError(err, byName)
			}
		}
	}

	order, err := g.TopologicalOrder()
	if err != nil {
		return nil, cycleError(err, byName)
	}

	memo := make(map[value.Value]value.Value)
	for _, name := range order {
		v := byName[name]
		v.Value = substitute(v.Value, memo)
	}
	return vars, nil
}

// substitute rewrites v with every local reference replaced by the
// referenced Variable's current definition. Callers guarantee that
// definition is already inlined.
func substitute(v value.Value, memo map[value.Value]value.Value) value.Value {
	if out, ok := memo[v]; ok {
		return out
	}
	var out value.Value
	switch n := v.(type) {
	case *value.VariableRef:
		if n.Variable.Parameter {
			out = n
		} else {
			out = n.Variable.Value
		}
	case *value.Operation:
		operands := make([]value.Value, len(n.Operands))
		for i, c := range n.Operands {
			operands[i] = substitute(c, memo)
		}
		out = n.With(operands)
	default:
		out = v
	}
	memo[v] = out
	return out
}

func cycleError(err error, byName map[string]*value.Variable) error {
	var cycle *dag.CycleError
	if !errors.As(err, &cycle) {
		return diag.Internal(hcl.Range{}, "dependency graph: %s", err)
	}
	var rng hcl.Range
	if v, ok := byName[cycle.Path[0]]; ok {
		rng = v.Range
	}
	return diag.Cyclic(rng, cycle.Path)
}
