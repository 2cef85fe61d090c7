package evaluation

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"
)

// ExprPredicate is a boolean expr-lang expression such as
//
//	activePart == "editor" && len(selection) > 0
//
// Its variables are the root identifiers of the expression, found without running it.
type ExprPredicate struct {
	source  string
	program *vm.Program
	vars    []string
}

// Expr compiles source. Undefined variables evaluate to nil.
func Expr(source string) (*ExprPredicate, error) {
	tree, err := parser.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parse expression %q: %w", source, err)
	}

	program, err := expr.Compile(source,
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("compile expression %q: %w", source, err)
	}

	return &ExprPredicate{
		source:  source,
		program: program,
		vars:    rootIdentifiers(tree.Node),
	}, nil
}

// MustExpr is like Expr but panics on error.
func MustExpr(source string) *ExprPredicate {
	p, err := Expr(source)
	if err != nil {
		panic(err)
	}

	return p
}

func (p *ExprPredicate) Evaluate(ctx VariableContext) (bool, error) {
	env := make(map[string]any, len(p.vars))
	for _, name := range p.vars {
		if v, ok := ctx.Variable(name); ok {
			env[name] = v
		}
	}

	out, err := expr.Run(p.program, env)
	if err != nil {
		return false, fmt.Errorf("evaluate %q: %w", p.source, err)
	}

	result, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("evaluate %q: got %T, want bool", p.source, out)
	}

	return result, nil
}

func (p *ExprPredicate) Variables() []string { return p.vars }

func (p *ExprPredicate) String() string { return p.source }

type identifierCollector struct {
	refs     map[string]int
	names    []string
	declared map[string]struct{}
	// called counts identifiers used only as the callee of a call
	called map[string]int
}

func (c *identifierCollector) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.IdentifierNode:
		if c.refs[n.Value] == 0 {
			c.names = append(c.names, n.Value)
		}
		c.refs[n.Value]++
	case *ast.VariableDeclaratorNode:
		c.declared[n.Name] = struct{}{}
	case *ast.CallNode:
		if callee, ok := n.Callee.(*ast.IdentifierNode); ok {
			c.called[callee.Value]++
		}
	}
}

// rootIdentifiers lists the free identifiers of an expression in order of appearance.
// Member access reads its root, so `part.id` reads `part`. Neither `let` bindings
// nor names that are only ever called, like `foo` in `foo(x)`, are variables.
func rootIdentifiers(node ast.Node) []string {
	c := &identifierCollector{
		refs:     make(map[string]int),
		declared: make(map[string]struct{}),
		called:   make(map[string]int),
	}
	ast.Walk(&node, c)

	names := make([]string, 0, len(c.names))
	for _, name := range c.names {
		if _, ok := c.declared[name]; ok {
			continue
		}
		if c.called[name] == c.refs[name] {
			continue
		}
		names = append(names, name)
	}

	return names
}
