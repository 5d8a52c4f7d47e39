// Package render prints analysis results as step plans.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/vk/genmaths/internal/analysis"
	"github.com/vk/genmaths/internal/value"
)

// Format selects a renderer.
type Format string

const (
	Text Format = "text"
	HCL  Format = "hcl"
	JSON Format = "json"
	TOML Format = "toml"
)

// Formats lists every supported format.
var Formats = []Format{Text, HCL, JSON, TOML}

// ParseFormat validates a format name. An empty name is Text.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return Text, nil
	}
	for _, f := range Formats {
		if string(f) == strings.ToLower(s) {
			return f, nil
		}
	}
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return "", fmt.Errorf("unknown format %q, want one of %s", s, strings.Join(names, ", "))
}

// Write renders results in format f.
func Write(w io.Writer, f Format, results []*analysis.Result) error {
	switch f {
	case Text, "":
		return WriteText(w, results)
	case HCL:
		return WriteHCL(w, results)
	case JSON:
		return WriteJSON(w, results)
	case TOML:
		return WriteTOML(w, results)
	}
	return fmt.Errorf("unknown format %q", f)
}

// Plan is the serializable form of a batch of results.
type Plan struct {
	Methods []MethodPlan `json:"methods" toml:"method"`
}

type MethodPlan struct {
	Name      string         `json:"name" toml:"name"`
	Symbol    string         `json:"symbol" toml:"symbol"`
	Source    string         `json:"source" toml:"source"`
	Types     []string       `json:"types" toml:"types"`
	OK        bool           `json:"ok" toml:"ok"`
	Error     *ErrorPlan     `json:"error,omitempty" toml:"error,omitempty"`
	Params    []string       `json:"params" toml:"params"`
	Variables []VariablePlan `json:"variables" toml:"variable"`
	Steps     []StepPlan     `json:"steps" toml:"step"`
}

type ErrorPlan struct {
	Code    string `json:"code" toml:"code"`
	Kind    string `json:"kind" toml:"kind"`
	Message string `json:"message" toml:"message"`
}

type VariablePlan struct {
	Name  string `json:"name" toml:"name"`
	Value string `json:"value" toml:"value"`
}

type StepPlan struct {
	Number   int      `json:"number" toml:"number"`
	Values   []string `json:"values" toml:"values"`
	Required []string `json:"required" toml:"required"`
}

// NewPlan converts results. Slices are never nil so JSON output always has
// arrays.
func NewPlan(results []*analysis.Result) *Plan {
	p := &Plan{Methods: make([]MethodPlan, 0, len(results))}
	for _, r := range results {
		p.Methods = append(p.Methods, methodPlan(r))
	}
	return p
}

func methodPlan(r *analysis.Result) MethodPlan {
	m := MethodPlan{
		Name:      r.Method,
		Symbol:    r.Symbol.String(),
		Source:    r.Range.String(),
		Types:     make([]string, 0, len(r.Types)),
		OK:        r.OK(),
		Params:    []string{},
		Variables: []VariablePlan{},
		Steps:     make([]StepPlan, 0, len(r.Steps)),
	}
	for _, t := range r.Types {
		m.Types = append(m.Types, t.Name)
	}
	if !m.OK {
		m.Error = errorPlan(r)
	}
	for _, v := range r.Variables {
		if v.Parameter {
			m.Params = append(m.Params, v.Name)
			continue
		}
		m.Variables = append(m.Variables, VariablePlan{Name: v.Name, Value: v.Value.String()})
	}
	for _, s := range r.Steps {
		m.Steps = append(m.Steps, StepPlan{
			Number:   s.Number,
			Values:   strs(s.Values),
			Required: strs(s.Required),
		})
	}
	return m
}

func errorPlan(r *analysis.Result) *ErrorPlan {
	if e := r.Err(); e != nil {
		return &ErrorPlan{Code: e.Kind.Code(), Kind: e.Kind.String(), Message: e.Message}
	}
	for _, d := range r.Diagnostics {
		return &ErrorPlan{Message: d.Detail}
	}
	return nil
}

func strs(values []value.Value) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.String()
	}
	return out
}
