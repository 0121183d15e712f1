package json

import (
	"fmt"
	"strconv"

	"github.com/mcvoid/streamjson/internal/arena"
)

// Type is the tag discriminating which of the seven variants a Value
// currently holds. The tag is an integer index into the type list.
type Type int

const (
	Null Type = iota
	Boolean
	IntegralNumber
	FloatNumber
	String
	Array
	Object
	numTypes
	typeUnknown Type = -1
)

var typeStrings = [numTypes]string{
	"<null>",
	"<boolean>",
	"<integer>",
	"<float>",
	"<string>",
	"<array>",
	"<object>",
}

func (t Type) String() string {
	if t < 0 || t >= numTypes {
		return "<unknown>"
	}
	return typeStrings[t]
}

// ObjectValue is an ordered, unique-keyed string-to-Value mapping. Key
// ordering is insertion order; this backend always preserves it.
type ObjectValue struct {
	keys  []string
	index map[string]int
	vals  []*Value
}

func newObjectValue() *ObjectValue {
	return &ObjectValue{index: make(map[string]int)}
}

// Set inserts or overwrites key per the caller's policy. checkDuplicate
// true rejects a repeat key (returns dup=true, no mutation); false
// overwrites in place, last-write-wins, without disturbing the key's
// original position.
func (o *ObjectValue) Set(key string, v *Value, checkDuplicate bool) (dup bool) {
	if i, ok := o.index[key]; ok {
		if checkDuplicate {
			return true
		}
		o.vals[i] = v
		return false
	}
	o.index[key] = len(o.keys)
	o.keys = append(o.keys, key)
	o.vals = append(o.vals, v)
	return false
}

// Get returns the value for key and whether it was present.
func (o *ObjectValue) Get(key string) (*Value, bool) {
	i, ok := o.index[key]
	if !ok {
		return nil, false
	}
	return o.vals[i], true
}

// Keys returns the keys in insertion order. The returned slice must not
// be mutated by the caller.
func (o *ObjectValue) Keys() []string { return o.keys }

// Len returns the number of key/value pairs.
func (o *ObjectValue) Len() int { return len(o.keys) }

// Range calls f for every pair in insertion order until f returns false.
func (o *ObjectValue) Range(f func(key string, v *Value) bool) {
	for i, k := range o.keys {
		if !f(k, o.vals[i]) {
			return
		}
	}
}

// Value is a polymorphic tagged union: exactly one of
// {Null, Boolean, IntegralNumber, FloatNumber, String, Array, Object} is
// active at a time.
type Value struct {
	typ   Type
	b     bool
	i     int64
	f     float64
	s     string
	arr   []*Value
	obj   *ObjectValue
	arena *arena.Arena // nil => unmanaged (plain Go GC), non-nil => arena-owned
}

// NewNull, NewBool, NewInt, NewFloat, NewStringValue, NewArray, and
// NewObject construct a Value of the named variant, optionally bound to
// an Arena. A nil Arena means ordinary garbage-collected ownership.
func NewNull(a *arena.Arena) *Value { return &Value{typ: Null, arena: a} }

func NewBool(b bool, a *arena.Arena) *Value { return &Value{typ: Boolean, b: b, arena: a} }

func NewInt(i int64, a *arena.Arena) *Value { return &Value{typ: IntegralNumber, i: i, arena: a} }

func NewFloat(f float64, a *arena.Arena) *Value { return &Value{typ: FloatNumber, f: f, arena: a} }

func NewStringValue(s string, a *arena.Arena) *Value {
	if a != nil {
		s = a.AllocString(s)
	}
	return &Value{typ: String, s: s, arena: a}
}

func NewArray(a *arena.Arena) *Value { return &Value{typ: Array, arr: []*Value{}, arena: a} }

func NewObject(a *arena.Arena) *Value { return &Value{typ: Object, obj: newObjectValue(), arena: a} }

// Type returns the active variant.
func (v *Value) Type() Type {
	if v == nil || v.typ < 0 || v.typ >= numTypes {
		return typeUnknown
	}
	return v.typ
}

// Which returns the tag as a plain int.
func (v *Value) Which() int { return int(v.Type()) }

// Arena returns the Arena this Value is bound to, or nil.
func (v *Value) Arena() *arena.Arena { return v.arena }

// adopt returns a Value equivalent to v but owned by dst's arena,
// re-constructing it if v carries a different (or no) allocator. The
// container's allocator always takes precedence: an element built under
// a foreign allocator gets re-constructed under the container's.
func adopt(v *Value, dst *arena.Arena) *Value {
	if v == nil || v.arena == dst {
		return v
	}
	switch v.typ {
	case Null:
		return NewNull(dst)
	case Boolean:
		return NewBool(v.b, dst)
	case IntegralNumber:
		return NewInt(v.i, dst)
	case FloatNumber:
		return NewFloat(v.f, dst)
	case String:
		return NewStringValue(v.s, dst)
	case Array:
		out := NewArray(dst)
		for _, e := range v.arr {
			out.arr = append(out.arr, adopt(e, dst))
		}
		return out
	case Object:
		out := NewObject(dst)
		v.obj.Range(func(k string, e *Value) bool {
			out.obj.Set(k, adopt(e, dst), false)
			return true
		})
		return out
	default:
		return v
	}
}

// AppendElement appends elem to an Array value, adopting it into the
// array's arena if necessary.
func (v *Value) AppendElement(elem *Value) error {
	if v.typ != Array {
		return fmt.Errorf("%w: AppendElement on non-array value %v", ErrType, v.typ)
	}
	v.arr = append(v.arr, adopt(elem, v.arena))
	return nil
}

// SetField inserts key:val into an Object value, adopting val into the
// object's arena if necessary. checkDuplicate mirrors Options'
// check-duplicate-key setting.
func (v *Value) SetField(key string, val *Value, checkDuplicate bool) (dup bool, err error) {
	if v.typ != Object {
		return false, fmt.Errorf("%w: SetField on non-object value %v", ErrType, v.typ)
	}
	return v.obj.Set(key, adopt(val, v.arena), checkDuplicate), nil
}

// Emplace destroys the current payload and constructs a new one in
// place, updating the tag.
func (v *Value) Emplace(payload any) error {
	a := v.arena
	*v = Value{arena: a}
	switch p := payload.(type) {
	case nil:
		v.typ = Null
	case bool:
		v.typ, v.b = Boolean, p
	case int64:
		v.typ, v.i = IntegralNumber, p
	case float64:
		v.typ, v.f = FloatNumber, p
	case string:
		v.typ, v.s = String, p
		if v.arena != nil {
			v.s = v.arena.AllocString(v.s)
		}
	case []*Value:
		v.typ, v.arr = Array, p
	case *ObjectValue:
		v.typ, v.obj = Object, p
	default:
		return fmt.Errorf("%w: cannot emplace %T", ErrType, payload)
	}
	return nil
}

// ---- checked accessors ----

func (v *Value) AsNull() (struct{}, error) {
	if v.typ == Null {
		return struct{}{}, nil
	}
	return struct{}{}, fmt.Errorf("%w: value not null (%v)", ErrType, v.typ)
}

func (v *Value) AsBoolean() (bool, error) {
	if v.typ == Boolean {
		return v.b, nil
	}
	return false, fmt.Errorf("%w: value not boolean (%v)", ErrType, v.typ)
}

func (v *Value) AsInteger() (int64, error) {
	if v.typ == IntegralNumber {
		return v.i, nil
	}
	return 0, fmt.Errorf("%w: value not an integer (%v)", ErrType, v.typ)
}

// AsNumber returns a float64 view of any numeric variant. Use AsInteger
// when integer precision matters.
func (v *Value) AsNumber() (float64, error) {
	switch v.typ {
	case IntegralNumber:
		return float64(v.i), nil
	case FloatNumber:
		return v.f, nil
	default:
		return 0, fmt.Errorf("%w: value not numeric (%v)", ErrType, v.typ)
	}
}

func (v *Value) AsString() (string, error) {
	if v.typ == String {
		return v.s, nil
	}
	return "", fmt.Errorf("%w: value not a string (%v)", ErrType, v.typ)
}

func (v *Value) AsArray() ([]*Value, error) {
	if v.typ == Array {
		return v.arr, nil
	}
	return nil, fmt.Errorf("%w: value not an array (%v)", ErrType, v.typ)
}

func (v *Value) AsObject() (*ObjectValue, error) {
	if v.typ == Object {
		return v.obj, nil
	}
	return nil, fmt.Errorf("%w: value not an object (%v)", ErrType, v.typ)
}

// ---- unchecked accessors: return the zero value of the requested
// field on a tag mismatch instead of panicking or erroring ----

func (v *Value) MustAsBoolean() bool        { return v.b }
func (v *Value) MustAsInteger() int64       { return v.i }
func (v *Value) MustAsString() string       { return v.s }
func (v *Value) MustAsArray() []*Value      { return v.arr }
func (v *Value) MustAsObject() *ObjectValue { return v.obj }

func (v *Value) MustAsNumber() float64 {
	if v.typ == IntegralNumber {
		return float64(v.i)
	}
	return v.f
}

// Index is a fluent array accessor returning an untyped sentinel Value
// instead of an error on out-of-range or non-array access, so chained
// lookups (v.Index(0).Key("x")) stay panic-free on a miss.
func (v *Value) Index(i int) *Value {
	if v.typ != Array || i < 0 || i >= len(v.arr) {
		return &Value{typ: typeUnknown}
	}
	return v.arr[i]
}

// Key is a fluent object accessor; returns an untyped sentinel Value
// when the key is absent or v is not an object.
func (v *Value) Key(k string) *Value {
	if v.typ != Object {
		return &Value{typ: typeUnknown}
	}
	val, ok := v.obj.Get(k)
	if !ok {
		return &Value{typ: typeUnknown}
	}
	return val
}

// Equal implements variant-equality: same tag AND payload equal;
// distinct tags are never equal.
func (v *Value) Equal(other *Value) bool {
	if v == nil || other == nil {
		return v == other
	}
	if v.typ != other.typ {
		return false
	}
	switch v.typ {
	case Null:
		return true
	case Boolean:
		return v.b == other.b
	case IntegralNumber:
		return v.i == other.i
	case FloatNumber:
		return v.f == other.f
	case String:
		return v.s == other.s
	case Array:
		if len(v.arr) != len(other.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(other.arr[i]) {
				return false
			}
		}
		return true
	case Object:
		if v.obj.Len() != other.obj.Len() {
			return false
		}
		eq := true
		v.obj.Range(func(k string, val *Value) bool {
			ov, ok := other.obj.Get(k)
			if !ok || !val.Equal(ov) {
				eq = false
				return false
			}
			return true
		})
		return eq
	default:
		return false
	}
}

// Swap exchanges the contents of v and other. When both hold the same
// tag it delegates to swapping just that payload; otherwise it falls
// back to a full struct swap (the Go equivalent of a pairwise
// move-construct+destroy fallback).
func (v *Value) Swap(other *Value) {
	if v.typ == other.typ {
		switch v.typ {
		case Boolean:
			v.b, other.b = other.b, v.b
		case IntegralNumber:
			v.i, other.i = other.i, v.i
		case FloatNumber:
			v.f, other.f = other.f, v.f
		case String:
			v.s, other.s = other.s, v.s
		case Array:
			v.arr, other.arr = other.arr, v.arr
		case Object:
			v.obj, other.obj = other.obj, v.obj
		}
		return
	}
	*v, *other = *other, *v
}

// Visitor dispatches over a Value's active variant, via a
// function-pointer table indexed by tag. A nil method is treated as a
// no-op returning (nil, nil).
type Visitor struct {
	VisitNull   func() (any, error)
	VisitBool   func(bool) (any, error)
	VisitInt    func(int64) (any, error)
	VisitFloat  func(float64) (any, error)
	VisitString func(string) (any, error)
	VisitArray  func([]*Value) (any, error)
	VisitObject func(*ObjectValue) (any, error)
}

// Apply dispatches v's payload to the matching Visitor method through a
// tag-indexed table.
func (v *Value) Apply(vis Visitor) (any, error) {
	table := [numTypes]func() (any, error){
		Null:           func() (any, error) { return call0(vis.VisitNull) },
		Boolean:        func() (any, error) { return callBool(vis.VisitBool, v.b) },
		IntegralNumber: func() (any, error) { return callInt(vis.VisitInt, v.i) },
		FloatNumber:    func() (any, error) { return callFloat(vis.VisitFloat, v.f) },
		String:         func() (any, error) { return callString(vis.VisitString, v.s) },
		Array:          func() (any, error) { return callArray(vis.VisitArray, v.arr) },
		Object:         func() (any, error) { return callObject(vis.VisitObject, v.obj) },
	}
	fn := table[v.Type()]
	if fn == nil {
		return nil, fmt.Errorf("%w: no visitor for %v", ErrType, v.typ)
	}
	return fn()
}

func call0(f func() (any, error)) (any, error) {
	if f == nil {
		return nil, nil
	}
	return f()
}
func callBool(f func(bool) (any, error), b bool) (any, error) {
	if f == nil {
		return nil, nil
	}
	return f(b)
}
func callInt(f func(int64) (any, error), i int64) (any, error) {
	if f == nil {
		return nil, nil
	}
	return f(i)
}
func callFloat(f func(float64) (any, error), fv float64) (any, error) {
	if f == nil {
		return nil, nil
	}
	return f(fv)
}
func callString(f func(string) (any, error), s string) (any, error) {
	if f == nil {
		return nil, nil
	}
	return f(s)
}
func callArray(f func([]*Value) (any, error), a []*Value) (any, error) {
	if f == nil {
		return nil, nil
	}
	return f(a)
}
func callObject(f func(*ObjectValue) (any, error), o *ObjectValue) (any, error) {
	if f == nil {
		return nil, nil
	}
	return f(o)
}

// String returns a debug representation. NOT valid JSON output — use
// Marshal (generator.go) for that.
func (v *Value) String() string {
	switch v.typ {
	case Null:
		return "null"
	case IntegralNumber:
		return strconv.FormatInt(v.i, 10)
	case FloatNumber:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case String:
		return strconv.Quote(v.s)
	case Boolean:
		if v.b {
			return "true"
		}
		return "false"
	case Array:
		s := "["
		for i, e := range v.arr {
			if i > 0 {
				s += ", "
			}
			s += e.String()
		}
		return s + "]"
	case Object:
		s := "{"
		first := true
		v.obj.Range(func(k string, e *Value) bool {
			if !first {
				s += ", "
			}
			first = false
			s += strconv.Quote(k) + ": " + e.String()
			return true
		})
		return s + "}"
	default:
		return "<unknown>"
	}
}
