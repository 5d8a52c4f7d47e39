// Package explore is an interactive shell for trying the analysis on
// expressions written in HCL syntax.
package explore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/vk/genmaths/internal/analysis"
	"github.com/vk/genmaths/internal/hclfront"
	"github.com/vk/genmaths/internal/render"
	"github.com/vk/genmaths/internal/semantic"
	"github.com/vk/genmaths/internal/walker"
)

// ErrQuit is returned by Eval for the :quit command.
var ErrQuit = errors.New("quit")

const methodName = "explore"

const help = `name = expr   define or replace a local
expr          show the analyzed value of an expression
:params a b   declare method parameters
:vars         list the analyzed locals
:steps        print the step plan
:reset        forget every local and parameter
:quit         leave
`

var commands = []string{":help", ":params", ":vars", ":steps", ":reset", ":quit"}

type local struct {
	name string
	src  []byte
	expr hclsyntax.Expression
}

// Session holds the locals and parameters defined so far. It is not safe
// for concurrent use.
type Session struct {
	analyzer *analysis.Analyzer
	params   []string
	locals   []local
}

// NewSession returns an empty session. A nil analyzer uses the default
// pipeline.
func NewSession(analyzer *analysis.Analyzer) *Session {
	if analyzer == nil {
		analyzer = analysis.New(nil)
	}
	return &Session{analyzer: analyzer}
}

// Eval runs one input line and returns the text to show.
func (s *Session) Eval(ctx context.Context, line string) (string, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", nil
	}
	if strings.HasPrefix(line, ":") {
		return s.command(ctx, line)
	}
	if name, expr, ok, err := parseDefinition(line); ok {
		if err != nil {
			return "", err
		}
		return s.define(ctx, name, line, expr)
	}
	return s.evalExpr(ctx, line)
}

func (s *Session) command(ctx context.Context, line string) (string, error) {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":quit", ":q":
		return "", ErrQuit
	case ":help":
		return help, nil
	case ":reset":
		s.params, s.locals = nil, nil
		return "", nil
	case ":params":
		var params []string
		for _, p := range fields[1:] {
			if s.index(p) >= 0 {
				return "", fmt.Errorf("%s is already a local", p)
			}
			if !slices.Contains(params, p) {
				params = append(params, p)
			}
		}
		s.params = params
		return "params: " + strings.Join(s.params, ", ") + "\n", nil
	case ":vars":
		res, err := s.analyze(ctx, nil)
		if err != nil {
			return "", err
		}
		var b strings.Builder
		for _, v := range res.Variables {
			fmt.Fprintln(&b, v)
		}
		return b.String(), nil
	case ":steps":
		res, err := s.analyze(ctx, nil)
		if err != nil {
			return "", err
		}
		var buf bytes.Buffer
		if err := render.WriteText(&buf, []*analysis.Result{res}); err != nil {
			return "", err
		}
		return buf.String(), nil
	}
	return "", fmt.Errorf("unknown command %s, try :help", fields[0])
}

// parseDefinition reads "name = expr". ok is false when line is not an
// assignment, so comparisons like a == b are left to evalExpr.
func parseDefinition(line string) (string, hclsyntax.Expression, bool, error) {
	file, diags := hclsyntax.ParseConfig([]byte(line+"\n"), "<input>", hcl.InitialPos)
	if diags.HasErrors() {
		return "", nil, false, nil
	}
	attrs := file.Body.(*hclsyntax.Body).Attributes
	if len(attrs) != 1 {
		return "", nil, false, nil
	}
	for name, attr := range attrs {
		if name == walker.ReturnName {
			return "", nil, true, fmt.Errorf("%s is reserved", name)
		}
		return name, attr.Expr, true, nil
	}
	return "", nil, false, nil
}

func (s *Session) index(name string) int {
	return slices.IndexFunc(s.locals, func(l local) bool { return l.name == name })
}

// define adds or replaces a local. A definition the analysis rejects is
// rolled back.
func (s *Session) define(ctx context.Context, name, line string, expr hclsyntax.Expression) (string, error) {
	if slices.Contains(s.params, name) {
		return "", fmt.Errorf("%s is a parameter", name)
	}

	previous := slices.Clone(s.locals)
	l := local{name: name, src: []byte(line + "\n"), expr: expr}
	if i := s.index(name); i >= 0 {
		s.locals[i] = l
	} else {
		s.locals = append(s.locals, l)
	}

	res, err := s.analyze(ctx, nil)
	if err != nil {
		s.locals = previous
		return "", err
	}
	for _, v := range res.Variables {
		if v.Name == name {
			return v.String() + "\n", nil
		}
	}
	return "", nil
}

func (s *Session) evalExpr(ctx context.Context, line string) (string, error) {
	src := []byte(line)
	expr, diags := hclfront.ParseExpression("<input>", src)
	if diags.HasErrors() {
		return "", errors.New(diags.Error())
	}
	res, err := s.analyze(ctx, &local{src: src, expr: expr})
	if err != nil {
		return "", err
	}
	last := res.Variables[len(res.Variables)-1]
	return last.Value.String() + "\n", nil
}

// analyze runs the session as one method. A non-nil result becomes the
// method's return value.
func (s *Session) analyze(ctx context.Context, result *local) (*analysis.Result, error) {
	oracle := semantic.NewMapOracle()
	m := &semantic.Method{Name: methodName, Symbol: semantic.Symbol{Name: methodName}}
	for _, p := range s.params {
		m.Params = append(m.Params, &semantic.Parameter{Name: p})
	}
	for _, l := range s.locals {
		lowerer := hclfront.NewLowerer(l.src, oracle, s.params...)
		m.Body = append(m.Body, &semantic.LocalDeclaration{Name: l.name, Init: lowerer.Expr(l.expr)})
	}
	if result != nil {
		lowerer := hclfront.NewLowerer(result.src, oracle, s.params...)
		m.Body = append(m.Body, &semantic.Return{Results: []semantic.Expression{lowerer.Expr(result.expr)}})
	}

	res := s.analyzer.Analyze(ctx, m, oracle)
	if !res.OK() {
		if e := res.Err(); e != nil {
			return nil, e
		}
		return nil, errors.New(res.Diagnostics.Error())
	}
	return res, nil
}

// Complete suggests commands and known names for the word being typed.
func (s *Session) Complete(line string) []string {
	start := strings.LastIndexAny(line, " ()+-*/%<>=!") + 1
	prefix, word := line[:start], line[start:]

	candidates := slices.Clone(s.params)
	for _, l := range s.locals {
		candidates = append(candidates, l.name)
	}
	if start == 0 {
		candidates = append(candidates, commands...)
	}
	sort.Strings(candidates)

	var out []string
	for _, c := range candidates {
		if word != "" && strings.HasPrefix(c, word) {
			out = append(out, prefix+c)
		}
	}
	return out
}
