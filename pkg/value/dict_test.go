package value

import (
	"reflect"
	"testing"
)

func TestDictInsertionOrder(t *testing.T) {
	d := NewDict(0)
	d.Insert("b", Int(1))
	d.Insert("a", Int(2))
	d.Insert("c", Int(3))
	d.Insert("a", Int(20))

	if got, want := d.Keys(), []string{"b", "a", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("keys = %v, want %v", got, want)
	}
	if v, _ := d.Get("a"); !Equal(v, Int(20)) {
		t.Errorf("a = %s, want 20", Repr(v))
	}

	if _, ok := d.Remove("b"); !ok {
		t.Fatal("Remove(b) found nothing")
	}
	if got, want := d.Keys(), []string{"a", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("keys after remove = %v, want %v", got, want)
	}
	if v, _ := d.Get("c"); !Equal(v, Int(3)) {
		t.Errorf("c = %s after remove, want 3", Repr(v))
	}
}

func TestDictCopyOnWrite(t *testing.T) {
	d := NewDict(0)
	d.Insert("x", Int(1))
	snapshot := d.Clone()

	slot, err := d.AtMut("x")
	if err != nil {
		t.Fatal(err)
	}
	*slot = Int(2)
	d.Insert("y", Int(3))

	if got := Repr(snapshot); got != "(x: 1)" {
		t.Errorf("snapshot = %s, want (x: 1)", got)
	}
	if got := Repr(d); got != "(x: 2, y: 3)" {
		t.Errorf("dict = %s, want (x: 2, y: 3)", got)
	}
}

func TestDictMissingKey(t *testing.T) {
	d := NewDict(0)
	if _, err := d.At("nope"); err == nil {
		t.Error("At on missing key succeeded")
	}
	if _, err := d.AtMut("nope"); err == nil {
		t.Error("AtMut on missing key succeeded")
	}
	if d.Len() != 0 {
		t.Errorf("AtMut created an entry")
	}
}

func TestDictConcat(t *testing.T) {
	a := NewDict(0)
	a.Insert("x", Int(1))
	a.Insert("y", Int(2))
	b := NewDict(0)
	b.Insert("y", Int(20))
	b.Insert("z", Int(30))

	got := a.Clone().Concat(b)
	if Repr(got) != "(x: 1, y: 20, z: 30)" {
		t.Errorf("got %s, want (x: 1, y: 20, z: 30)", Repr(got))
	}
	if Repr(a) != "(x: 1, y: 2)" {
		t.Errorf("receiver changed to %s", Repr(a))
	}
}
