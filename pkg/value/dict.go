package value

import (
	"iter"
	"sync/atomic"
)

// ---------------------------------------------------------------------------
// Dict: copy-on-write insertion-ordered map
// ---------------------------------------------------------------------------

type dictRep struct {
	owners atomic.Int32
	keys   []string
	vals   []Value
	index  map[string]int
}

// Dict maps string keys to values, remembering insertion order. The zero
// Dict is empty.
type Dict struct {
	rep *dictRep
}

// NewDict returns an empty dictionary with room for n entries.
func NewDict(n int) Dict {
	rep := &dictRep{
		keys:  make([]string, 0, n),
		vals:  make([]Value, 0, n),
		index: make(map[string]int, n),
	}
	rep.owners.Store(1)
	return Dict{rep: rep}
}

func (Dict) Type() Type { return TypeDict }

// Clone registers another owner of the backing storage.
func (d Dict) Clone() Dict {
	if d.rep != nil {
		d.rep.owners.Add(1)
	}
	return d
}

// Len returns the number of entries.
func (d Dict) Len() int {
	if d.rep == nil {
		return 0
	}
	return len(d.rep.keys)
}

func (d *Dict) makeMut() *dictRep {
	switch {
	case d.rep == nil:
		*d = NewDict(0)
	case d.rep.owners.Load() > 1:
		fresh := NewDict(len(d.rep.keys))
		for i, k := range d.rep.keys {
			fresh.rep.index[k] = i
			fresh.rep.keys = append(fresh.rep.keys, k)
			fresh.rep.vals = append(fresh.rep.vals, Clone(d.rep.vals[i]))
		}
		d.rep.owners.Add(-1)
		*d = fresh
	}
	return d.rep
}

func (d Dict) lookup(key string) (int, bool) {
	if d.rep == nil {
		return 0, false
	}
	i, ok := d.rep.index[key]
	return i, ok
}

// Has reports whether key is present.
func (d Dict) Has(key string) bool {
	_, ok := d.lookup(key)
	return ok
}

// Get returns an owned copy of the value under key.
func (d Dict) Get(key string) (Value, bool) {
	i, ok := d.lookup(key)
	if !ok {
		return nil, false
	}
	return Clone(d.rep.vals[i]), true
}

// At is Get with the standard missing-key error.
func (d Dict) At(key string) (Value, error) {
	v, ok := d.Get(key)
	if !ok {
		return nil, missingKey(key)
	}
	return v, nil
}

func missingKey(key string) error {
	return errorf("dictionary does not contain key %q", key).
		WithHint("use `insert` to add or update values")
}

// Insert adds key or replaces its value, keeping the original position of
// an existing key.
func (d *Dict) Insert(key string, v Value) {
	rep := d.makeMut()
	if i, ok := rep.index[key]; ok {
		rep.vals[i] = v
		return
	}
	rep.index[key] = len(rep.keys)
	rep.keys = append(rep.keys, key)
	rep.vals = append(rep.vals, v)
}

// AtMut returns a pointer to the value under an existing key. Missing keys
// are an error; mutation through a field never creates entries.
func (d *Dict) AtMut(key string) (*Value, error) {
	if _, ok := d.lookup(key); !ok {
		return nil, missingKey(key)
	}
	rep := d.makeMut()
	return &rep.vals[rep.index[key]], nil
}

// Remove deletes key and returns its value.
func (d *Dict) Remove(key string) (Value, bool) {
	if _, ok := d.lookup(key); !ok {
		return nil, false
	}
	rep := d.makeMut()
	i := rep.index[key]
	v := rep.vals[i]
	rep.keys = append(rep.keys[:i], rep.keys[i+1:]...)
	rep.vals = append(rep.vals[:i], rep.vals[i+1:]...)
	delete(rep.index, key)
	for j := i; j < len(rep.keys); j++ {
		rep.index[rep.keys[j]] = j
	}
	return v, true
}

// Keys returns the keys in insertion order.
func (d Dict) Keys() []string {
	if d.rep == nil {
		return nil
	}
	out := make([]string, len(d.rep.keys))
	copy(out, d.rep.keys)
	return out
}

// All iterates over the entries in insertion order. Yielded values are
// borrowed.
func (d Dict) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if d.rep == nil {
			return
		}
		for i, k := range d.rep.keys {
			if !yield(k, d.rep.vals[i]) {
				return
			}
		}
	}
}

// Concat merges other into the receiver, later keys overwriting earlier
// ones.
func (d Dict) Concat(other Dict) Dict {
	d.makeMut()
	for k, v := range other.All() {
		d.Insert(k, Clone(v))
	}
	return d
}
