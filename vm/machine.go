package vm

import (
	"fmt"

	"github.com/tliron/commonlog"

	"github.com/chazu/folio/pkg/ast"
	"github.com/chazu/folio/pkg/bytecode"
	"github.com/chazu/folio/pkg/diag"
	"github.com/chazu/folio/pkg/value"
)

var log = commonlog.GetLogger("folio.vm")

// Default resource limits.
const (
	DefaultMaxCallDepth  = 64
	DefaultMaxIterations = 10_000
)

// Library is the immutable base scope the compiler resolved globals
// against.
type Library interface {
	Get(name string) (value.Value, bool)
}

// World resolves imports. from is the name of the importing module.
type World interface {
	Import(from, path string, span ast.Span) (*value.Module, error)
}

// Config holds the collaborators and limits of a VM. Zero limits select
// the defaults.
type Config struct {
	World         World
	Memo          Memo
	MaxCallDepth  int
	MaxIterations int
	Trace         bool
}

// VM evaluates units against a library. A VM is not safe for concurrent
// use; the units it runs may be shared between VMs.
type VM struct {
	lib   Library
	cfg   Config
	depth int
}

// New creates a VM.
func New(lib Library, cfg Config) *VM {
	if cfg.MaxCallDepth <= 0 {
		cfg.MaxCallDepth = DefaultMaxCallDepth
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	return &VM{lib: lib, cfg: cfg}
}

// RunModule evaluates a module unit and collects its exports.
func (vm *VM) RunModule(u *bytecode.Unit) (*value.Module, error) {
	f := vm.newFrame(u, u.Name)
	j := newJoiner(vm, u.Display)
	fl, err := f.run(0, len(u.Code), j)
	if err != nil {
		return nil, err
	}
	if fl != flowNone {
		panic(fmt.Sprintf("vm: %s escaped module %s", fl, u.Name))
	}
	out, err := j.finish()
	if err != nil {
		return nil, diag.At(u.Span, err)
	}

	scope := value.NewScope()
	for _, e := range u.Exports {
		scope.Define(e.Name, value.Take(&f.regs[e.Register]))
	}
	log.Debugf("evaluated module %s: %d exports", u.Name, len(u.Exports))
	return &value.Module{Name: u.Name, Scope: scope, Content: value.ToContent(out)}, nil
}

// Call invokes a function value. It implements value.Engine.
func (vm *VM) Call(fn value.Func, args *value.Args) (value.Value, error) {
	switch c := fn.Callable().(type) {
	case *value.NativeFunc:
		return c.Fn(vm, args)
	case *value.Element:
		out, err := c.Construct(args)
		if err != nil {
			return nil, err
		}
		return out, nil
	case *Closure:
		return vm.callClosure(fn, c, args)
	}
	return nil, diag.Errorf(args.Span, "cannot call %s", value.Repr(fn))
}
