// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package calc

import (
	"errors"
	"fmt"
	"iter"
	"math"
	"strconv"
	"strings"

	"github.com/bufbuild/oak/language"
	"github.com/bufbuild/oak/red"
	"github.com/bufbuild/oak/report"
	"github.com/bufbuild/oak/source"
)

type redNode = red.Node[Token, Element]

// Func is a builtin function callable from calc.
type Func func(args ...float64) (float64, error)

// Program is the result of evaluating a document.
type Program struct {
	// Let bindings, in the order they were evaluated.
	Bindings []Binding
	// The values of expression statements.
	Results []Result
}

// Binding is a name defined by a let statement.
type Binding struct {
	Name  string
	Value float64
}

// Result is the value of an expression statement.
type Result struct {
	Span  source.Span
	Value float64
}

// Evaluator evaluates calc documents.
//
// Expressions containing syntax errors are skipped without further
// diagnostics, since the parser has already reported them. Everything else
// that goes wrong, such as an undefined name or a division by zero, is
// reported and also skips the statement.
type Evaluator struct {
	// Predeclared names.
	Globals map[string]float64
	// Callable functions.
	Funcs map[string]Func
}

var _ language.Builder[redNode, *Program] = (*Evaluator)(nil)

// NewEvaluator returns an evaluator with the standard globals and functions.
func NewEvaluator() *Evaluator {
	return &Evaluator{
		Globals: map[string]float64{
			"pi": math.Pi,
			"e":  math.E,
		},
		Funcs: map[string]Func{
			"abs":   unary(math.Abs),
			"sqrt":  unary(math.Sqrt),
			"floor": unary(math.Floor),
			"min":   fold(math.Min),
			"max":   fold(math.Max),
		},
	}
}

func unary(f func(float64) float64) Func {
	return func(args ...float64) (float64, error) {
		if len(args) != 1 {
			return 0, fmt.Errorf("expected 1 argument, got %d", len(args))
		}
		return f(args[0]), nil
	}
}

func fold(f func(a, b float64) float64) Func {
	return func(args ...float64) (float64, error) {
		if len(args) == 0 {
			return 0, errors.New("expected at least 1 argument")
		}
		v := args[0]
		for _, a := range args[1:] {
			v = f(v, a)
		}
		return v, nil
	}
}

// Build implements [language.Builder].
func (e *Evaluator) Build(root redNode, src source.Source, r *report.Report) *Program {
	ev := &evaluation{
		Evaluator: e,
		src:       src,
		report:    r,
		env:       make(map[string]float64, len(e.Globals)),
	}
	for k, v := range e.Globals {
		ev.env[k] = v
	}

	prog := new(Program)
	for stmt := range nodes(root) {
		switch stmt.Kind() {
		case LetStmt:
			name, ok := first(stmt, Name)
			if !ok {
				continue
			}
			expr, ok := operand(stmt, 0)
			if !ok {
				continue
			}
			v, ok := ev.eval(expr)
			if !ok {
				continue
			}
			text := name.Text(src)
			ev.env[text] = v
			prog.Bindings = append(prog.Bindings, Binding{Name: text, Value: v})

		case ExprStmt:
			expr, ok := operand(stmt, 0)
			if !ok {
				continue
			}
			if v, ok := ev.eval(expr); ok {
				prog.Results = append(prog.Results, Result{Span: expr.Span(src.File()), Value: v})
			}
		}
	}
	return prog
}

type evaluation struct {
	*Evaluator
	src    source.Source
	report *report.Report
	env    map[string]float64
}

func (ev *evaluation) errorf(n redNode, format string, args ...any) {
	ev.report.Error(report.SyntaxError{
		Span:    n.Span(ev.src.File()),
		Message: fmt.Sprintf(format, args...),
	})
}

func (ev *evaluation) eval(n redNode) (float64, bool) {
	switch n.Kind() {
	case Literal:
		return ev.literal(n)

	case NameRef:
		name := n.Text(ev.src)
		v, ok := ev.env[name]
		if !ok {
			ev.errorf(n, "undefined: %s", name)
		}
		return v, ok

	case Paren:
		inner, ok := operand(n, 0)
		if !ok {
			return 0, false
		}
		return ev.eval(inner)

	case Unary:
		op, _ := operator(n)
		x, ok := ev.operand(n, 0)
		if !ok {
			return 0, false
		}
		if op == Bang {
			return truth(x == 0), true
		}
		return -x, true

	case Binary:
		return ev.binary(n)

	case Postfix:
		x, ok := ev.operand(n, 0)
		if !ok {
			return 0, false
		}
		if x < 0 || x != math.Trunc(x) || x > 170 {
			ev.errorf(n, "factorial of %v is not defined", x)
			return 0, false
		}
		v := 1.0
		for i := 2.0; i <= x; i++ {
			v *= i
		}
		return v, true

	case Call:
		return ev.call(n)

	case Index:
		ev.errorf(n, "indexing is not supported")
		return 0, false

	case Field:
		ev.errorf(n, "fields are not supported")
		return 0, false

	default:
		// Error nodes, which were already reported.
		return 0, false
	}
}

func (ev *evaluation) operand(n redNode, i int) (float64, bool) {
	x, ok := operand(n, i)
	if !ok {
		return 0, false
	}
	return ev.eval(x)
}

func (ev *evaluation) literal(n redNode) (float64, bool) {
	tok, _ := operator(n)
	text := n.Text(ev.src)
	switch tok {
	case True:
		return 1, true
	case False:
		return 0, true
	case String:
		ev.errorf(n, "strings cannot be used as numbers")
		return 0, false
	}

	text = strings.ReplaceAll(text, "_", "")
	if len(text) > 2 && text[0] == '0' {
		base := 0
		switch text[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			v, err := strconv.ParseUint(text[2:], base, 64)
			if err != nil {
				ev.errorf(n, "invalid number %s: %v", n.Text(ev.src), err.(*strconv.NumError).Err)
				return 0, false
			}
			return float64(v), true
		}
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		ev.errorf(n, "invalid number %s: %v", n.Text(ev.src), err.(*strconv.NumError).Err)
		return 0, false
	}
	return v, true
}

func (ev *evaluation) binary(n redNode) (float64, bool) {
	x, ok := ev.operand(n, 0)
	if !ok {
		return 0, false
	}
	y, ok := ev.operand(n, 1)
	if !ok {
		return 0, false
	}

	op, _ := operator(n)
	switch op {
	case Plus:
		return x + y, true
	case Minus:
		return x - y, true
	case Star:
		return x * y, true
	case Slash:
		if y == 0 {
			ev.errorf(n, "division by zero")
			return 0, false
		}
		return x / y, true
	case Caret:
		return math.Pow(x, y), true
	case EqEq:
		return truth(x == y), true
	default:
		return 0, false
	}
}

func (ev *evaluation) call(n redNode) (float64, bool) {
	callee, ok := operand(n, 0)
	if !ok {
		return 0, false
	}
	if callee.Kind() != NameRef {
		ev.errorf(callee, "only named functions can be called")
		return 0, false
	}
	name := callee.Text(ev.src)
	fn, ok := ev.Funcs[name]
	if !ok {
		ev.errorf(callee, "undefined function: %s", name)
		return 0, false
	}

	list, ok := first(n, ArgList)
	if !ok {
		return 0, false
	}
	var args []float64
	for arg := range nodes(list) {
		v, ok := ev.eval(arg)
		if !ok {
			return 0, false
		}
		args = append(args, v)
	}

	v, err := fn(args...)
	if err != nil {
		ev.errorf(n, "%s: %v", name, err)
		return 0, false
	}
	return v, true
}

func truth(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// nodes yields the node children of n.
func nodes(n redNode) iter.Seq[redNode] {
	return func(yield func(redNode) bool) {
		for c := range n.Children() {
			if sub, ok := c.Node(); ok && !yield(sub) {
				return
			}
		}
	}
}

// first returns the first node child of n with the given kind.
func first(n redNode, kind Element) (redNode, bool) {
	for c := range nodes(n) {
		if c.Kind() == kind {
			return c, true
		}
	}
	return redNode{}, false
}

// operand returns the ith node child of n that is an expression, rather than
// a name or an argument list.
func operand(n redNode, i int) (redNode, bool) {
	for c := range nodes(n) {
		if c.Kind() == Name || c.Kind() == ArgList {
			continue
		}
		if i == 0 {
			return c, true
		}
		i--
	}
	return redNode{}, false
}

// operator returns the kind of the first significant token directly under n.
func operator(n redNode) (Token, bool) {
	for c := range n.Children() {
		if leaf, ok := c.Leaf(); ok && !language.IsIgnored(leaf.Kind) {
			return leaf.Kind, true
		}
	}
	return Unknown, false
}
