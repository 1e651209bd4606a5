// Package checker implements the static type checker. It walks the classes
// of a compilation unit depth first, class to method to statement to
// expression, annotates every expression with its inferred type and
// resolved target, and reports diagnostics through a single collector.
package checker

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"martianoff/stc/internal/ast"
	"martianoff/stc/internal/config"
	"martianoff/stc/internal/extension"
	"martianoff/stc/stcerr"
)

// Checker holds what is shared between units: configuration, the extension
// registry and the logger. A Checker can check several units concurrently;
// each unit gets its own Context.
type Checker struct {
	cfg      *config.Config
	registry *extension.Registry
	log      *logrus.Entry
}

// Option configures a Checker.
type Option func(*Checker)

// WithRegistry sets the extension registry consulted by method resolution.
func WithRegistry(r *extension.Registry) Option {
	return func(c *Checker) { c.registry = r }
}

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(c *Checker) { c.cfg = cfg }
}

// WithLogger sets the log entry used for debug output.
func WithLogger(l *logrus.Entry) Option {
	return func(c *Checker) { c.log = l }
}

// New returns a Checker. Without options it uses the default configuration
// and every built-in extension module.
func New(opts ...Option) *Checker {
	c := &Checker{}
	for _, o := range opts {
		o(c)
	}
	if c.cfg == nil {
		c.cfg = config.DefaultConfig()
	}
	if c.log == nil {
		l := logrus.New()
		l.SetLevel(c.cfg.Level())
		c.log = logrus.NewEntry(l)
	}
	if c.registry == nil {
		r, err := c.cfg.Registry()
		if err != nil {
			c.log.WithError(err).Warn("falling back to the built-in extension modules")
			r = extension.Default()
		}
		c.registry = r
	}
	return c
}

// Report is the outcome of checking one unit.
type Report struct {
	RunID       uuid.UUID
	Unit        *ast.Unit
	Diagnostics []*stcerr.Diagnostic
}

// HasErrors reports whether any diagnostic was produced.
func (r *Report) HasErrors() bool {
	return len(r.Diagnostics) > 0
}

// Err returns the diagnostics as a *stcerr.MultiError, or nil.
func (r *Report) Err() error {
	if len(r.Diagnostics) == 0 {
		return nil
	}
	errs := make([]error, len(r.Diagnostics))
	for i, d := range r.Diagnostics {
		errs[i] = d
	}
	return &stcerr.MultiError{Errors: errs}
}

// CheckUnit checks every primary class of unit. Diagnostics are returned in
// the report; the error is non-nil only when the checker hit an internal
// error, in which case the report holds what was collected before it.
func (c *Checker) CheckUnit(unit *ast.Unit) (report *Report, err error) {
	report = &Report{RunID: uuid.New(), Unit: unit}
	ctx := NewContext(c.cfg.Debug)
	v := &visitor{
		Checker: c,
		ctx:     ctx,
		unit:    unit,
		log:     c.log.WithFields(logrus.Fields{"unit": unit.Name, "run": report.RunID.String()}),
	}

	defer func() {
		report.Diagnostics = v.diagnostics()
		r := recover()
		if r == nil {
			return
		}
		ie, ok := r.(*stcerr.InternalError)
		if !ok {
			panic(r)
		}
		v.log.WithError(ie).Error("aborting unit on internal error")
		err = ie
	}()

	v.log.Debug("checking unit")
	for _, cn := range unit.Classes {
		v.visitClass(cn)
	}
	v.log.WithField("diagnostics", ctx.errors.Len()).Debug("unit checked")
	return report, nil
}

// CheckAll checks units concurrently, one Context per unit. Reports are
// returned in input order; internal errors are joined.
func (c *Checker) CheckAll(units []*ast.Unit) ([]*Report, error) {
	reports := make([]*Report, len(units))
	errs := make([]error, len(units))
	var wg sync.WaitGroup
	for i, u := range units {
		wg.Add(1)
		go func(i int, u *ast.Unit) {
			defer wg.Done()
			reports[i], errs[i] = c.CheckUnit(u)
			if errs[i] != nil {
				errs[i] = fmt.Errorf("%s: %w", u.Name, errs[i])
			}
		}(i, u)
	}
	wg.Wait()
	return reports, errors.Join(errs...)
}

// TypeOf returns the type inferred for e by a previous check, or nil when
// e was not visited.
func TypeOf(e ast.Expr) *ast.ClassNode {
	return e.Meta().InferredType
}

// Target returns the method or constructor a call was resolved to.
func Target(e ast.Expr) *ast.MethodNode {
	return e.Meta().DirectTarget
}

// visitor walks one unit.
type visitor struct {
	*Checker
	ctx  *Context
	unit *ast.Unit
	log  *logrus.Entry
}

func (v *visitor) diagnostics() []*stcerr.Diagnostic {
	diags := v.ctx.Diagnostics()
	if v.unit.Path == "" {
		return diags
	}
	for i, d := range diags {
		if d.FilePath == "" {
			diags[i] = d.InFile(v.unit.Path)
		}
	}
	return diags
}

// addError reports a diagnostic anchored at n.
func (v *visitor) addError(n ast.Node, t stcerr.ErrorType, format string, args ...any) {
	p := n.Position()
	d := stcerr.NewDiagnosticAt(t, p.Line, p.Column, p.EndLine, p.EndColumn, fmt.Sprintf(format, args...))
	if !v.ctx.errors.Add(d) {
		v.log.WithField("diagnostic", d.Error()).Trace("diagnostic dropped")
	}
}
