package bytecode

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"math"

	"github.com/fxamacker/cbor/v2"
)

// ErrCapacity is returned when a table would exceed the 16-bit id space.
var ErrCapacity = errors.New("too many entries in table")

var hashEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("bytecode: failed to create CBOR enc mode: %v", err))
	}
	hashEncMode = em
}

// Digest returns the SHA-256 of the canonical CBOR encoding of key. Keys
// are built from slices, strings, integers and plain structs so that equal
// keys always encode to the same bytes.
func Digest(key any) ([32]byte, error) {
	data, err := hashEncMode.Marshal(key)
	if err != nil {
		return [32]byte{}, fmt.Errorf("bytecode: encode hash key: %w", err)
	}
	return sha256.Sum256(data), nil
}

// Remapper is a deduplicating table. Inserting an item whose structural
// hash is already present returns the existing id; otherwise the item is
// appended under the next sequential id.
//
// Two items are considered the same when their hashes are equal. There is
// no equality check behind the hash: a SHA-256 collision would alias two
// distinct items.
type Remapper[T any] struct {
	key   func(T) any
	items []T
	ids   map[[32]byte]uint16
}

// NewRemapper returns a table hashing items through key.
func NewRemapper[T any](key func(T) any) *Remapper[T] {
	return &Remapper[T]{key: key, ids: make(map[[32]byte]uint16)}
}

// Insert returns the id of item, adding it if needed.
func (r *Remapper[T]) Insert(item T) (uint16, error) {
	h, err := Digest(r.key(item))
	if err != nil {
		return 0, err
	}
	if id, ok := r.ids[h]; ok {
		return id, nil
	}
	if len(r.items) > math.MaxUint16 {
		return 0, ErrCapacity
	}
	id := uint16(len(r.items))
	r.items = append(r.items, item)
	r.ids[h] = id
	return id, nil
}

// Len returns the number of distinct items.
func (r *Remapper[T]) Len() int { return len(r.items) }

// Values returns the items in id order.
func (r *Remapper[T]) Values() []T {
	out := make([]T, len(r.items))
	copy(out, r.items)
	return out
}
