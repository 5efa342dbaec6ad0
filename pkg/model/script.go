package model

import (
	"math"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/matzehuels/lineup/pkg/errors"
)

// DefaultScript is the expression of a script column created without one.
const DefaultScript = "max(values)"

// scriptEnv is the environment a script is compiled and evaluated against.
//
//	values   substituted child values of the visible children
//	weights  weights of the visible children
//	raws     child values before substitution (NaN when missing)
//	n        number of visible children
func scriptEnv(values, weights, raws []float64) map[string]any {
	return map[string]any{
		"values":  values,
		"weights": weights,
		"raws":    raws,
		"n":       len(values),
	}
}

// ScriptColumn is a numeric composite whose reduction is a user expression.
type ScriptColumn struct {
	CompositeNumberColumn

	script  string
	program *vm.Program
}

// NewScriptColumn creates a script column. The descriptor's script is
// compiled up front; an invalid script fails with INVALID_SCRIPT.
func NewScriptColumn(desc *Descriptor) (*ScriptColumn, error) {
	desc = descOf(desc, KindScript)
	c := &ScriptColumn{}
	c.init(c, desc, nil)
	c.reduce = c.run
	src := desc.Script
	if src == "" {
		src = DefaultScript
	}
	if err := c.compile(src); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *ScriptColumn) compile(src string) error {
	program, err := expr.Compile(src, expr.Env(scriptEnv(nil, nil, nil)))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidScript, err, "compile script of %s", c.id)
	}
	c.script = src
	c.program = program
	return nil
}

// Script returns the current expression.
func (c *ScriptColumn) Script() string { return c.script }

// SetScript compiles and installs a new expression. On error the previous
// script stays in effect.
func (c *ScriptColumn) SetScript(src string) error {
	if src == c.script {
		return nil
	}
	old := c.script
	if err := c.compile(src); err != nil {
		return err
	}
	c.emit(Event{Kind: EventDirtyValues, Source: c.self, Old: old, New: src})
	return nil
}

// Number evaluates the script over the visible children.
func (c *ScriptColumn) Number(row Row, index int) float64 {
	vis := c.visibleChildren()
	raws := make([]float64, len(vis))
	for i, ch := range vis {
		raws[i] = ch.(NumberColumnLike).Number(row, index)
	}
	values, weights := c.terms(row, index)
	return c.eval(values, weights, raws)
}

func (c *ScriptColumn) run(values, weights []float64) float64 {
	return c.eval(values, weights, values)
}

// eval runs the program; evaluation errors and non-numeric results are NaN.
func (c *ScriptColumn) eval(values, weights, raws []float64) float64 {
	out, err := expr.Run(c.program, scriptEnv(values, weights, raws))
	if err != nil {
		return math.NaN()
	}
	v, _ := toFloat(out)
	return v
}

func (c *ScriptColumn) Dump(toRef func(*Descriptor) string) Dump {
	d := c.CompositeNumberColumn.Dump(toRef)
	d.Script = c.script
	return d
}

func (c *ScriptColumn) restore(d Dump, f Factory, rec Recover) error {
	if d.Script != "" {
		if err := c.compile(d.Script); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDump, err, "script column")
		}
	}
	return c.CompositeNumberColumn.restore(d, f, rec)
}
