package vm

import (
	"fmt"

	"github.com/chazu/folio/pkg/ast"
	"github.com/chazu/folio/pkg/bytecode"
	"github.com/chazu/folio/pkg/diag"
	"github.com/chazu/folio/pkg/value"
)

// access resolves an access descriptor to the slot it denotes. The slot
// stays valid until the next mutation of any container on its path.
// Resolution never allocates registers.
func (f *frame) access(id bytecode.AccessID) (*value.Value, error) {
	a := f.unit.Accesses[id]
	switch a.Kind {
	case bytecode.AccessRegister:
		return &f.regs[a.Register], nil

	case bytecode.AccessGlobal:
		return nil, diag.Errorf(ast.Detached, "cannot mutate a built-in: %s", f.unit.Strings[a.Name])

	case bytecode.AccessTemp:
		return nil, diag.Errorf(ast.Detached, "cannot mutate a temporary value")

	case bytecode.AccessField:
		parent, err := f.access(a.Parent)
		if err != nil {
			return nil, err
		}
		d, ok := (*parent).(value.Dict)
		if !ok {
			return nil, diag.Errorf(ast.Detached, "cannot mutate fields on %s", (*parent).Type())
		}
		slot, err := d.AtMut(f.unit.Strings[a.Name])
		*parent = d
		return slot, err

	case bytecode.AccessMethod:
		parent, err := f.access(a.Parent)
		if err != nil {
			return nil, err
		}
		args := f.read(a.Value).(*value.Args)
		return value.Accessor(parent, f.unit.Strings[a.Name], args)
	}
	panic(fmt.Sprintf("vm: bad access kind %d", a.Kind))
}
