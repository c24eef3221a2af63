package vm

import (
	"github.com/chazu/folio/pkg/ast"
	"github.com/chazu/folio/pkg/bytecode"
	"github.com/chazu/folio/pkg/diag"
	"github.com/chazu/folio/pkg/value"
)

// destructure binds v to a pattern.
func (f *frame) destructure(id bytecode.PatternID, v value.Value) error {
	p := f.unit.Patterns[id]
	switch p.Kind {
	case bytecode.PatternPlaceholder:
		return nil
	case bytecode.PatternSingle:
		slot, err := f.access(p.Access)
		if err != nil {
			return err
		}
		*slot = v
		return nil
	}

	switch x := v.(type) {
	case value.Array:
		return f.destructureArray(p, x)
	case value.Dict:
		return f.destructureDict(p, x)
	}
	return diag.Errorf(ast.Detached, "cannot destructure %s", v.Type())
}

func (f *frame) destructureArray(p bytecode.Pattern, arr value.Array) error {
	items := arr.Items()
	fixed, spread := 0, false
	for _, it := range p.Items {
		switch it.Kind {
		case bytecode.ItemNamed:
			return diag.Errorf(ast.Detached, "cannot destructure named pattern from an array")
		case bytecode.ItemSpread:
			spread = true
		default:
			fixed++
		}
	}
	switch {
	case len(items) < fixed:
		return diag.Errorf(ast.Detached, "not enough elements to destructure").
			WithHint("the provided array has a length of %d", len(items))
	case len(items) > fixed && !spread:
		return diag.Errorf(ast.Detached, "too many elements to destructure").
			WithHint("the provided array has a length of %d", len(items))
	}

	i := 0
	for _, it := range p.Items {
		if it.Kind == bytecode.ItemSpread {
			n := len(items) - fixed
			if it.HasPattern {
				rest := make([]value.Value, n)
				for k := range rest {
					rest[k] = value.Clone(items[i+k])
				}
				if err := f.destructure(it.Pattern, value.NewArray(rest...)); err != nil {
					return err
				}
			}
			i += n
			continue
		}
		if err := f.destructure(it.Pattern, value.Clone(items[i])); err != nil {
			return err
		}
		i++
	}
	return nil
}

func (f *frame) destructureDict(p bytecode.Pattern, d value.Dict) error {
	used := make(map[string]bool, len(p.Items))
	var sink *bytecode.PatternItem
	for k := range p.Items {
		it := &p.Items[k]
		if it.Kind == bytecode.ItemSpread {
			sink = it
			continue
		}
		if !it.HasKey {
			return diag.Errorf(ast.Detached, "cannot destructure unnamed pattern from dictionary")
		}
		key := f.unit.Strings[it.Key]
		v, err := d.At(key)
		if err != nil {
			return err
		}
		used[key] = true
		if err := f.destructure(it.Pattern, v); err != nil {
			return err
		}
	}
	if sink == nil || !sink.HasPattern {
		return nil
	}
	rest := value.NewDict(d.Len() - len(used))
	for k, v := range d.All() {
		if !used[k] {
			rest.Insert(k, value.Clone(v))
		}
	}
	return f.destructure(sink.Pattern, rest)
}
