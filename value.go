// FILE: lixenwraith/compose/value.go
package compose

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
)

// Kind identifies which variant a Value holds
type Kind int

const (
	KindNull Kind = iota
	KindScalar
	KindSequence
	KindMapping
)

// String returns the lowercase kind name
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindScalar:
		return "scalar"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a decoded configuration value. It is implemented only by Null,
// Scalar, Sequence and Mapping.
type Value interface {
	Kind() Kind
	clone() Value
}

// Null is an explicit null (YAML ~, JSON null)
type Null struct{}

// Scalar holds a leaf value: string, bool, int64, uint64, float64, time.Time
// or any other non-collection value a decoder produced.
type Scalar struct {
	V any
}

// Sequence is an ordered list of values. It is atomic for merging.
type Sequence []Value

// Mapping is a string-keyed table of values. Documents are mappings.
type Mapping map[string]Value

func (Null) Kind() Kind     { return KindNull }
func (Scalar) Kind() Kind   { return KindScalar }
func (Sequence) Kind() Kind { return KindSequence }
func (Mapping) Kind() Kind  { return KindMapping }

func (n Null) clone() Value   { return n }
func (s Scalar) clone() Value { return s }

func (s Sequence) clone() Value {
	if s == nil {
		return Sequence(nil)
	}
	out := make(Sequence, len(s))
	for i, v := range s {
		out[i] = cloneValue(v)
	}
	return out
}

func (m Mapping) clone() Value { return m.Clone() }

// Clone returns a deep copy. A nil mapping clones to an empty one.
func (m Mapping) Clone() Mapping {
	out := make(Mapping, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

// Keys returns the mapping keys in sorted order
func (m Mapping) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// cloneValue deep-copies v, treating a nil interface as Null
func cloneValue(v Value) Value {
	if v == nil {
		return Null{}
	}
	return v.clone()
}

// Equal reports whether two values are structurally equal.
// Scalars compare with reflect.DeepEqual.
func Equal(a, b Value) bool {
	if a == nil {
		a = Null{}
	}
	if b == nil {
		b = Null{}
	}
	if a.Kind() != b.Kind() {
		return false
	}

	switch av := a.(type) {
	case Null:
		return true
	case Scalar:
		return reflect.DeepEqual(av.V, b.(Scalar).V)
	case Sequence:
		bv := b.(Sequence)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Mapping:
		bv := b.(Mapping)
		if len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			other, ok := bv[k]
			if !ok || !Equal(v, other) {
				return false
			}
		}
		return true
	}
	return false
}

// FromAny converts decoder output into a Value. Maps of any key type become
// Mapping with keys rendered by fmt.Sprint, slices and arrays become Sequence,
// and integers are normalised to int64 (uint64 when they do not fit).
func FromAny(v any) Value {
	switch tv := v.(type) {
	case nil:
		return Null{}
	case Value:
		return cloneValue(tv)
	case map[string]any:
		m := make(Mapping, len(tv))
		for k, item := range tv {
			m[k] = FromAny(item)
		}
		return m
	case []any:
		s := make(Sequence, len(tv))
		for i, item := range tv {
			s[i] = FromAny(item)
		}
		return s
	case []byte:
		return Scalar{V: string(tv)}
	case string, bool, int64, float64:
		return Scalar{V: tv}
	case json.Number:
		if i, err := tv.Int64(); err == nil {
			return Scalar{V: i}
		}
		if f, err := tv.Float64(); err == nil {
			return Scalar{V: f}
		}
		return Scalar{V: tv.String()}
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null{}
		}
		return FromAny(rv.Elem().Interface())
	case reflect.Map:
		if rv.IsNil() {
			return Null{}
		}
		m := make(Mapping, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[fmt.Sprint(iter.Key().Interface())] = FromAny(iter.Value().Interface())
		}
		return m
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return Null{}
		}
		s := make(Sequence, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			s[i] = FromAny(rv.Index(i).Interface())
		}
		return s
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Scalar{V: rv.Int()}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return Scalar{V: u}
		}
		return Scalar{V: int64(u)}
	case reflect.Float32, reflect.Float64:
		return Scalar{V: rv.Float()}
	case reflect.String:
		return Scalar{V: rv.String()}
	case reflect.Bool:
		return Scalar{V: rv.Bool()}
	}

	return Scalar{V: v}
}

// ToAny converts a Value back into plain Go data: map[string]any, []any,
// scalars and nil.
func ToAny(v Value) any {
	switch tv := v.(type) {
	case nil, Null:
		return nil
	case Scalar:
		return tv.V
	case Sequence:
		if tv == nil {
			return []any(nil)
		}
		out := make([]any, len(tv))
		for i, item := range tv {
			out[i] = ToAny(item)
		}
		return out
	case Mapping:
		out := make(map[string]any, len(tv))
		for k, item := range tv {
			out[k] = ToAny(item)
		}
		return out
	}
	return nil
}
