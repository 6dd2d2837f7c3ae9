// FILE: lixenwraith/compose/simarrays/simarrays.go

// Package simarrays allocates groups of related arrays for vectorised
// simulation code. All arrays in a group describe one kind of thing (grain
// types, particles present) and start with the same number of rows; a subset
// can later be extended to more rows.
//
// Arrays are nested Go slices: a scalar sample value of type float64 yields a
// []float64 with one element per row, a sample []float64 of length 3 yields a
// [][]float64 of rows×3, and so on.
package simarrays

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrLength is returned when descriptor lists do not line up
	ErrLength = errors.New("descriptor list lengths differ")
	// ErrUnknownName is returned for a variable name not in the descriptor
	ErrUnknownName = errors.New("unknown variable name")
	// ErrShape is returned when a value does not fit the array row it is copied into
	ErrShape = errors.New("value does not match array shape")
	// ErrRows is returned for an invalid number of rows
	ErrRows = errors.New("invalid number of rows")
)

// SimArrays is a group of arrays described by one NTVI
type SimArrays struct {
	ntvi0  *NTVI
	rows   int
	shapes map[string][]int
	arrays map[string]reflect.Value
}

// NewZero allocates zero-filled arrays with the given number of rows, one per
// variable in ntvi. A nil ntvi gives an empty group.
func NewZero(ntvi *NTVI, rows int) (*SimArrays, error) {
	if rows < 0 {
		return nil, fmt.Errorf("%w: %d", ErrRows, rows)
	}
	return allocate(ntvi, rows)
}

// NewFromNTVIs allocates one row per descriptor and fills row r of every
// array from ntvis[r].Vals. ntvis[0] fixes names, types and shapes. An empty
// list gives an empty group.
func NewFromNTVIs(ntvis []*NTVI) (*SimArrays, error) {
	if len(ntvis) == 0 {
		return allocate(nil, 0)
	}

	s, err := allocate(ntvis[0], len(ntvis))
	if err != nil {
		return nil, err
	}

	for c, name := range s.ntvi0.Names {
		array := s.arrays[name]
		depth := len(s.shapes[name])
		for r, ntvi := range ntvis {
			if ntvi == nil || len(ntvi.Vals) <= c {
				return nil, fmt.Errorf("%w: descriptor %d has no value for %q", ErrLength, r, name)
			}
			if err := assign(array.Index(r), reflect.ValueOf(ntvi.Vals[c]), depth); err != nil {
				return nil, fmt.Errorf("%q row %d: %w", name, r, err)
			}
		}
	}
	return s, nil
}

// NewFromValues allocates arrays described by ntvi and fills them from
// vlists. vlists[c] is a list of slices whose elements are concatenated into
// the leading rows of the c'th array. Arrays with no entry in vlists stay
// zero-filled. The row count is the longest concatenation and must be at
// least one.
func NewFromValues(ntvi *NTVI, vlists [][]any) (*SimArrays, error) {
	if ntvi == nil {
		return allocate(nil, 0)
	}

	rows := 0
	for c, vlist := range vlists {
		n := 0
		for i, part := range vlist {
			pv := reflect.ValueOf(part)
			if pv.Kind() != reflect.Slice && pv.Kind() != reflect.Array {
				return nil, fmt.Errorf("%w: vlists[%d][%d] is %T, not a slice", ErrShape, c, i, part)
			}
			n += pv.Len()
		}
		rows = max(rows, n)
	}
	if rows < 1 {
		return nil, fmt.Errorf("%w: value lists hold no rows", ErrRows)
	}

	s, err := allocate(ntvi, rows)
	if err != nil {
		return nil, err
	}

	for c, name := range s.ntvi0.Names {
		if c >= len(vlists) {
			break
		}
		array := s.arrays[name]
		depth := len(s.shapes[name])
		row := 0
		for _, part := range vlists[c] {
			pv := reflect.ValueOf(part)
			for i := 0; i < pv.Len(); i++ {
				if err := assign(array.Index(row), pv.Index(i), depth); err != nil {
					return nil, fmt.Errorf("%q row %d: %w", name, row, err)
				}
				row++
			}
		}
	}
	return s, nil
}

// allocate creates zero-filled arrays for every variable in ntvi
func allocate(ntvi *NTVI, rows int) (*SimArrays, error) {
	s := &SimArrays{
		rows:   rows,
		shapes: make(map[string][]int),
		arrays: make(map[string]reflect.Value),
	}
	if ntvi == nil {
		return s, nil
	}
	if len(ntvi.Types) != len(ntvi.Names) || len(ntvi.Vals) != len(ntvi.Names) {
		return nil, fmt.Errorf("%w: %d names, %d types, %d values", ErrLength, len(ntvi.Names), len(ntvi.Types), len(ntvi.Vals))
	}
	s.ntvi0 = ntvi.Copy()

	for c, name := range ntvi.Names {
		etype := ntvi.Types[c]
		if etype == nil {
			return nil, fmt.Errorf("%w: no element type for %q", ErrShape, name)
		}
		shape := shapeOf(ntvi.Vals[c])
		s.shapes[name] = shape
		s.arrays[name] = zeros(etype, append([]int{rows}, shape...))
	}
	return s, nil
}

// Extend reallocates the named arrays with erows rows. The original rows are
// copied and the new rows are zero. erows must be at least the original row
// count. Names not in the group are ignored.
func (s *SimArrays) Extend(names []string, erows int) error {
	if erows < s.rows {
		return fmt.Errorf("%w: extend to %d rows is less than the original %d", ErrRows, erows, s.rows)
	}
	if s.ntvi0 == nil {
		return nil
	}

	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = true
	}

	for c, name := range s.ntvi0.Names {
		if !wanted[name] {
			continue
		}
		shape := s.shapes[name]
		extended := zeros(s.ntvi0.Types[c], append([]int{erows}, shape...))
		old := s.arrays[name]
		for r := 0; r < s.rows; r++ {
			if err := assign(extended.Index(r), old.Index(r), len(shape)); err != nil {
				return fmt.Errorf("%q row %d: %w", name, r, err)
			}
		}
		s.arrays[name] = extended
	}
	return nil
}

// Rows returns the row count the group was created with
func (s *SimArrays) Rows() int {
	return s.rows
}

// Names returns the variable names in descriptor order
func (s *SimArrays) Names() []string {
	if s.ntvi0 == nil {
		return nil
	}
	return append([]string(nil), s.ntvi0.Names...)
}

// Descriptor returns a copy of the NTVI that fixed names, types and shapes
func (s *SimArrays) Descriptor() *NTVI {
	if s.ntvi0 == nil {
		return nil
	}
	return s.ntvi0.Copy()
}

// Array returns the named array as a nested slice
func (s *SimArrays) Array(name string) (any, bool) {
	v, ok := s.arrays[name]
	if !ok {
		return nil, false
	}
	return v.Interface(), true
}

// Get returns the named array with its concrete slice type
func Get[T any](s *SimArrays, name string) (T, bool) {
	var zero T
	v, ok := s.arrays[name]
	if !ok {
		return zero, false
	}
	typed, ok := v.Interface().(T)
	return typed, ok
}

// shapeOf returns the dimensions of a sample value, empty for scalars
func shapeOf(v any) []int {
	var shape []int
	rv := reflect.ValueOf(v)
	for rv.IsValid() && (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) {
		shape = append(shape, rv.Len())
		if rv.Len() == 0 {
			break
		}
		rv = rv.Index(0)
		for rv.Kind() == reflect.Interface && !rv.IsNil() {
			rv = rv.Elem()
		}
	}
	return shape
}

// zeros builds a zero-filled nested slice of etype with the given dimensions
func zeros(etype reflect.Type, dims []int) reflect.Value {
	t := etype
	for range dims {
		t = reflect.SliceOf(t)
	}
	return build(t, dims)
}

func build(t reflect.Type, dims []int) reflect.Value {
	s := reflect.MakeSlice(t, dims[0], dims[0])
	if len(dims) > 1 {
		for i := 0; i < dims[0]; i++ {
			s.Index(i).Set(build(t.Elem(), dims[1:]))
		}
	}
	return s
}

// assign copies src into dst, descending depth slice levels and converting
// leaf values to the element type.
func assign(dst, src reflect.Value, depth int) error {
	for src.Kind() == reflect.Interface && !src.IsNil() {
		src = src.Elem()
	}
	if !src.IsValid() || (src.Kind() == reflect.Interface && src.IsNil()) {
		return fmt.Errorf("%w: nil value", ErrShape)
	}

	if depth > 0 {
		if src.Kind() != reflect.Slice && src.Kind() != reflect.Array {
			return fmt.Errorf("%w: expected %d elements, got %s", ErrShape, dst.Len(), src.Type())
		}
		if src.Len() != dst.Len() {
			return fmt.Errorf("%w: expected %d elements, got %d", ErrShape, dst.Len(), src.Len())
		}
		for i := 0; i < src.Len(); i++ {
			if err := assign(dst.Index(i), src.Index(i), depth-1); err != nil {
				return err
			}
		}
		return nil
	}

	switch {
	case src.Type().AssignableTo(dst.Type()):
		dst.Set(src)
	case src.Type().ConvertibleTo(dst.Type()):
		dst.Set(src.Convert(dst.Type()))
	default:
		return fmt.Errorf("%w: cannot store %s in %s array", ErrShape, src.Type(), dst.Type())
	}
	return nil
}
