package value

import (
	"sync/atomic"
)

// ---------------------------------------------------------------------------
// Array: copy-on-write sequence of values
// ---------------------------------------------------------------------------

type arrayRep struct {
	owners atomic.Int32
	items  []Value
}

// Array is an ordered sequence of values. The zero Array is empty.
type Array struct {
	rep *arrayRep
}

// NewArray builds an array that takes ownership of items.
func NewArray(items ...Value) Array {
	rep := &arrayRep{items: items}
	rep.owners.Store(1)
	return Array{rep: rep}
}

func (Array) Type() Type { return TypeArray }

// Clone registers another owner of the backing storage.
func (a Array) Clone() Array {
	if a.rep != nil {
		a.rep.owners.Add(1)
	}
	return a
}

// Len returns the number of items.
func (a Array) Len() int {
	if a.rep == nil {
		return 0
	}
	return len(a.rep.items)
}

// Items returns the backing items. The slice is borrowed: callers must not
// modify it and must Clone items they store elsewhere.
func (a Array) Items() []Value {
	if a.rep == nil {
		return nil
	}
	return a.rep.items
}

// shared reports whether more than one owner references the storage.
func (a Array) shared() bool {
	return a.rep != nil && a.rep.owners.Load() > 1
}

// MakeMut returns the items for in-place mutation, copying them first if
// the storage is shared.
func (a *Array) MakeMut() []Value {
	switch {
	case a.rep == nil:
		*a = NewArray()
	case a.shared():
		items := cloneAll(a.rep.items)
		a.rep.owners.Add(-1)
		*a = NewArray(items...)
	}
	return a.rep.items
}

// locate resolves a possibly negative index against the array length.
func (a Array) locate(index int64, end bool) (int, bool) {
	n := int64(a.Len())
	if index < 0 {
		index += n
	}
	limit := n
	if end {
		limit = n + 1
	}
	if index < 0 || index >= limit {
		return 0, false
	}
	return int(index), true
}

func outOfBounds(index int64, n int) error {
	return errorf("array index out of bounds (index: %d, len: %d)", index, n).
		WithHint("use `at` with a `default` value to avoid this error")
}

// At returns an owned copy of the item at index.
func (a Array) At(index int64) (Value, error) {
	i, ok := a.locate(index, false)
	if !ok {
		return nil, outOfBounds(index, a.Len())
	}
	return Clone(a.rep.items[i]), nil
}

// AtMut returns a pointer to the item at index for in-place mutation.
func (a *Array) AtMut(index int64) (*Value, error) {
	i, ok := a.locate(index, false)
	if !ok {
		return nil, outOfBounds(index, a.Len())
	}
	items := a.MakeMut()
	return &items[i], nil
}

// FirstMut returns a pointer to the first item.
func (a *Array) FirstMut() (*Value, error) {
	if a.Len() == 0 {
		return nil, errorf("array is empty")
	}
	items := a.MakeMut()
	return &items[0], nil
}

// LastMut returns a pointer to the last item.
func (a *Array) LastMut() (*Value, error) {
	if a.Len() == 0 {
		return nil, errorf("array is empty")
	}
	items := a.MakeMut()
	return &items[len(items)-1], nil
}

// Push appends v.
func (a *Array) Push(v Value) {
	items := a.MakeMut()
	a.rep.items = append(items, v)
}

// Pop removes and returns the last item.
func (a *Array) Pop() (Value, error) {
	if a.Len() == 0 {
		return nil, errorf("array is empty")
	}
	items := a.MakeMut()
	last := items[len(items)-1]
	items[len(items)-1] = nil
	a.rep.items = items[:len(items)-1]
	return last, nil
}

// Insert places v before index. An index equal to the length appends.
func (a *Array) Insert(index int64, v Value) error {
	i, ok := a.locate(index, true)
	if !ok {
		return outOfBounds(index, a.Len())
	}
	items := a.MakeMut()
	items = append(items, nil)
	copy(items[i+1:], items[i:])
	items[i] = v
	a.rep.items = items
	return nil
}

// Remove deletes and returns the item at index.
func (a *Array) Remove(index int64) (Value, error) {
	i, ok := a.locate(index, false)
	if !ok {
		return nil, outOfBounds(index, a.Len())
	}
	items := a.MakeMut()
	removed := items[i]
	copy(items[i:], items[i+1:])
	items[len(items)-1] = nil
	a.rep.items = items[:len(items)-1]
	return removed, nil
}

// Slice returns the items in [start, end) as a new array. A nil end means
// the end of the array.
func (a Array) Slice(start int64, end *int64) (Array, error) {
	s, ok := a.locate(start, true)
	if !ok {
		return Array{}, outOfBounds(start, a.Len())
	}
	e := a.Len()
	if end != nil {
		if e, ok = a.locate(*end, true); !ok {
			return Array{}, outOfBounds(*end, a.Len())
		}
	}
	if e < s {
		e = s
	}
	return NewArray(cloneAll(a.Items()[s:e])...), nil
}

// Concat appends the items of other, reusing the receiver's storage when it
// is not shared.
func (a Array) Concat(other Array) Array {
	items := a.MakeMut()
	a.rep.items = append(items, cloneAll(other.Items())...)
	return a
}

// Repeat concatenates the array with itself n times.
func (a Array) Repeat(n int64) (Array, error) {
	if n < 0 {
		return Array{}, errorf("number must be at least zero")
	}
	out := make([]Value, 0, a.Len()*int(n))
	for i := int64(0); i < n; i++ {
		out = append(out, cloneAll(a.Items())...)
	}
	return NewArray(out...), nil
}

// Contains reports whether an item equal to v exists.
func (a Array) Contains(v Value) bool {
	for _, item := range a.Items() {
		if Equal(item, v) {
			return true
		}
	}
	return false
}

func cloneAll(items []Value) []Value {
	out := make([]Value, len(items))
	for i, v := range items {
		out[i] = Clone(v)
	}
	return out
}
