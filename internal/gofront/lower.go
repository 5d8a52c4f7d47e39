package gofront

import (
	"fmt"
	"go/ast"
	"go/constant"
	"go/token"
	"go/types"
	"strconv"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/genmaths/internal/numeric"
	"github.com/vk/genmaths/internal/semantic"
)

// lowerer converts one function body. Locals that are assigned more than
// once are split into versions: the second definition of x is named x.1, the
// third x.2, and every read refers to the version current at that point.
type lowerer struct {
	fset   *token.FileSet
	info   *types.Info
	oracle *semantic.MapOracle

	params   map[string]bool
	current  map[string]string
	versions map[string]int
}

func newLowerer(fset *token.FileSet, info *types.Info, oracle *semantic.MapOracle) *lowerer {
	return &lowerer{
		fset:     fset,
		info:     info,
		oracle:   oracle,
		params:   make(map[string]bool),
		current:  make(map[string]string),
		versions: make(map[string]int),
	}
}

// Lower converts fn into a semantic.Method. pkgPath qualifies its Symbol.
func (l *lowerer) Lower(pkgPath string, fn *ast.FuncDecl) *semantic.Method {
	m := &semantic.Method{
		Name:   funcName(fn),
		Symbol: semantic.Symbol{Package: pkgPath, Name: funcName(fn)},
		Range:  nodeRange(l.fset, fn.Name),
	}
	if fn.Type.Params != nil {
		for _, field := range fn.Type.Params.List {
			for _, name := range field.Names {
				if name.Name == "_" {
					continue
				}
				l.params[name.Name] = true
				m.Params = append(m.Params, &semantic.Parameter{Name: name.Name, Range: nodeRange(l.fset, name)})
			}
		}
	}
	if fn.Body != nil {
		for _, stmt := range fn.Body.List {
			m.Body = append(m.Body, l.stmt(stmt)...)
		}
	}
	return m
}

func funcName(fn *ast.FuncDecl) string {
	if fn.Recv == nil || len(fn.Recv.List) == 0 {
		return fn.Name.Name
	}
	recv := fn.Recv.List[0].Type
	for {
		switch r := recv.(type) {
		case *ast.StarExpr:
			recv = r.X
			continue
		case *ast.IndexExpr:
			recv = r.X
			continue
		case *ast.IndexListExpr:
			recv = r.X
			continue
		case *ast.Ident:
			return r.Name + "." + fn.Name.Name
		}
		return fn.Name.Name
	}
}

func (l *lowerer) unsupportedStmt(n ast.Node, what string) []semantic.Statement {
	return []semantic.Statement{&semantic.UnsupportedStatement{Description: what, SrcRange: nodeRange(l.fset, n)}}
}

func (l *lowerer) stmt(s ast.Stmt) []semantic.Statement {
	switch s := s.(type) {
	case *ast.EmptyStmt:
		return nil

	case *ast.AssignStmt:
		return l.assign(s)

	case *ast.DeclStmt:
		gen, ok := s.Decl.(*ast.GenDecl)
		if !ok || (gen.Tok != token.VAR && gen.Tok != token.CONST) {
			return l.unsupportedStmt(s, "declaration")
		}
		var out []semantic.Statement
		for _, spec := range gen.Specs {
			vs := spec.(*ast.ValueSpec)
			if len(vs.Values) != 0 && len(vs.Values) != len(vs.Names) {
				return l.unsupportedStmt(vs, "multi-value declaration")
			}
			for i, name := range vs.Names {
				if name.Name == "_" {
					continue
				}
				var init semantic.Expression
				if len(vs.Values) == 0 {
					init = l.zero(name)
				} else {
					init = l.exprIn(vs.Values[i], l.info.TypeOf(name))
				}
				out = append(out, l.define(name, init))
			}
		}
		return out

	case *ast.IncDecStmt:
		id, ok := s.X.(*ast.Ident)
		if !ok {
			return l.unsupportedStmt(s, "increment of a non-local")
		}
		op := "+"
		if s.Tok == token.DEC {
			op = "-"
		}
		one := &semantic.Literal{Text: "1", SrcRange: nodeRange(l.fset, s)}
		if t, ok := typeID(l.info.TypeOf(s.X)); ok {
			l.oracle.Types[one] = t
		}
		init := &semantic.Binary{Operator: op, Left: l.expr(id), Right: one, SrcRange: nodeRange(l.fset, s)}
		return []semantic.Statement{l.define(id, init)}

	case *ast.ReturnStmt:
		ret := &semantic.Return{SrcRange: nodeRange(l.fset, s)}
		for _, r := range s.Results {
			ret.Results = append(ret.Results, l.expr(r))
		}
		return []semantic.Statement{ret}

	case *ast.BlockStmt:
		return l.unsupportedStmt(s, "nested block")
	case *ast.IfStmt:
		return l.unsupportedStmt(s, "if statement")
	case *ast.ForStmt, *ast.RangeStmt:
		return l.unsupportedStmt(s, "loop")
	case *ast.SwitchStmt, *ast.TypeSwitchStmt, *ast.SelectStmt:
		return l.unsupportedStmt(s, "switch statement")
	case *ast.ExprStmt:
		return l.unsupportedStmt(s, "expression statement")
	case *ast.GoStmt, *ast.DeferStmt:
		return l.unsupportedStmt(s, "go or defer statement")
	}
	return l.unsupportedStmt(s, fmt.Sprintf("%T", s))
}

var compoundOps = map[token.Token]string{
	token.ADD_ASSIGN: "+",
	token.SUB_ASSIGN: "-",
	token.MUL_ASSIGN: "*",
	token.QUO_ASSIGN: "/",
	token.REM_ASSIGN: "%",
	token.SHL_ASSIGN: "<<",
	token.SHR_ASSIGN: ">>",
	token.AND_ASSIGN: "&",
	token.OR_ASSIGN:  "|",
	token.XOR_ASSIGN: "^",
}

func (l *lowerer) assign(s *ast.AssignStmt) []semantic.Statement {
	if len(s.Lhs) != len(s.Rhs) {
		return l.unsupportedStmt(s, "multi-value assignment")
	}

	// All right-hand sides are evaluated before any left-hand side changes,
	// so a, b = b, a reads the old versions.
	inits := make([]semantic.Expression, len(s.Rhs))
	for i, rhs := range s.Rhs {
		var outer types.Type
		if s.Tok != token.SHL_ASSIGN && s.Tok != token.SHR_ASSIGN {
			outer = l.info.TypeOf(s.Lhs[i])
		}
		init := l.exprIn(rhs, outer)
		if op, ok := compoundOps[s.Tok]; ok {
			init = &semantic.Binary{Operator: op, Left: l.expr(s.Lhs[i]), Right: init, SrcRange: nodeRange(l.fset, s)}
		}
		inits[i] = init
	}

	var out []semantic.Statement
	for i, lhs := range s.Lhs {
		id, ok := lhs.(*ast.Ident)
		if !ok {
			return l.unsupportedStmt(lhs, "assignment to a non-local")
		}
		if id.Name == "_" {
			continue
		}
		out = append(out, l.define(id, inits[i]))
	}
	return out
}

// define records a new version of the local named by id.
func (l *lowerer) define(id *ast.Ident, init semantic.Expression) semantic.Statement {
	name := id.Name
	version, seen := l.versions[name]
	if seen || l.params[name] {
		version++
		name = id.Name + "." + strconv.Itoa(version)
	}
	l.versions[id.Name] = version
	l.current[id.Name] = name
	return &semantic.LocalDeclaration{Name: name, Init: init, SrcRange: nodeRange(l.fset, id)}
}

// zero is the implicit initializer of a var declaration without a value.
func (l *lowerer) zero(name *ast.Ident) semantic.Expression {
	text := "0"
	t, ok := typeID(l.info.TypeOf(name))
	if ok && t.Kind == numeric.Bool {
		text = "false"
	}
	lit := &semantic.Literal{Text: text, SrcRange: nodeRange(l.fset, name)}
	if ok {
		l.oracle.Types[lit] = t
	}
	return lit
}

func (l *lowerer) expr(e ast.Expr) semantic.Expression {
	return l.exprIn(e, nil)
}

// exprIn lowers e as an operand of an expression of type outer. go/types
// leaves the operands of a constant expression untyped even when the whole
// expression converts to a typed value, so an untyped e takes outer instead.
func (l *lowerer) exprIn(e ast.Expr, outer types.Type) semantic.Expression {
	t := l.info.TypeOf(e)
	if isUntyped(t) && outer != nil && !isUntyped(outer) {
		t = outer
	}
	out := l.lowerExpr(e, t)
	if _, isLit := out.(*semantic.Literal); !isLit {
		if tid, ok := typeID(t); ok {
			l.oracle.Types[out] = tid
		}
	}
	return out
}

func isUntyped(t types.Type) bool {
	b, ok := t.(*types.Basic)
	return ok && b.Info()&types.IsUntyped != 0
}

// literal records t as the type of a literal produced from a constant.
func (l *lowerer) literal(text string, t types.Type, rng hcl.Range) *semantic.Literal {
	lit := &semantic.Literal{Text: text, SrcRange: rng}
	if tid, ok := typeID(t); ok {
		l.oracle.Types[lit] = tid
	}
	return lit
}

func (l *lowerer) unsupported(e ast.Node, what string) semantic.Expression {
	return &semantic.Unsupported{Description: what, SrcRange: nodeRange(l.fset, e)}
}

// lowerExpr converts e, whose type is t.
func (l *lowerer) lowerExpr(e ast.Expr, t types.Type) semantic.Expression {
	rng := nodeRange(l.fset, e)

	switch e := e.(type) {
	case *ast.ParenExpr:
		return l.exprIn(e.X, t)

	case *ast.BasicLit:
		if e.Kind != token.INT && e.Kind != token.FLOAT && e.Kind != token.CHAR {
			return l.unsupported(e, litKind(e.Kind)+" literal")
		}
		return l.literal(e.Value, t, rng)

	case *ast.Ident:
		if name, ok := l.current[e.Name]; ok {
			return &semantic.LocalReference{Name: name, SrcRange: rng}
		}
		if l.params[e.Name] {
			return &semantic.ParameterReference{Name: e.Name, SrcRange: rng}
		}
		// Package-level constants and true/false become literals.
		if _, isConst := l.info.Uses[e].(*types.Const); isConst {
			if text, ok := constantText(l.info.Types[e].Value); ok {
				return l.literal(text, t, rng)
			}
		}
		return l.unsupported(e, "reference to "+e.Name)

	case *ast.BinaryExpr:
		left, right := t, t
		switch e.Op {
		case token.EQL, token.NEQ, token.LSS, token.LEQ, token.GTR, token.GEQ:
			// Operands of a comparison share a type that is not the result's.
			left, right = l.info.TypeOf(e.Y), l.info.TypeOf(e.X)
		case token.SHL, token.SHR:
			right = nil
		}
		return &semantic.Binary{
			Operator: e.Op.String(),
			Left:     l.exprIn(e.X, left),
			Right:    l.exprIn(e.Y, right),
			SrcRange: rng,
		}

	case *ast.UnaryExpr:
		return &semantic.Unary{Operator: e.Op.String(), Operand: l.exprIn(e.X, t), SrcRange: rng}

	case *ast.CallExpr:
		if tv, ok := l.info.Types[e.Fun]; ok && tv.IsType() && len(e.Args) == 1 {
			conv := &semantic.Conversion{Operand: l.exprIn(e.Args[0], tv.Type), SrcRange: rng}
			if tid, ok := typeID(tv.Type); ok {
				l.oracle.Types[conv] = tid
			}
			return conv
		}
		return l.unsupported(e, "function call")

	case *ast.FuncLit:
		return l.unsupported(e, "function literal")
	case *ast.CompositeLit:
		return l.unsupported(e, "composite literal")
	case *ast.IndexExpr, *ast.IndexListExpr:
		return l.unsupported(e, "index expression")
	case *ast.SelectorExpr:
		return l.unsupported(e, "selector expression")
	case *ast.StarExpr:
		return l.unsupported(e, "pointer dereference")
	case *ast.TypeAssertExpr:
		return l.unsupported(e, "type assertion")
	case *ast.SliceExpr:
		return l.unsupported(e, "slice expression")
	}
	return l.unsupported(e, fmt.Sprintf("%T", e))
}

func litKind(k token.Token) string {
	switch k {
	case token.STRING:
		return "string"
	case token.IMAG:
		return "imaginary"
	}
	return k.String()
}

func constantText(v constant.Value) (string, bool) {
	if v == nil {
		return "", false
	}
	switch v.Kind() {
	case constant.Bool:
		return strconv.FormatBool(constant.BoolVal(v)), true
	case constant.Int:
		return v.ExactString(), true
	case constant.Float:
		f, _ := constant.Float64Val(v)
		s := strconv.FormatFloat(f, 'g', -1, 64)
		if _, err := strconv.ParseInt(s, 10, 64); err == nil {
			s += ".0"
		}
		return s, true
	}
	return "", false
}
