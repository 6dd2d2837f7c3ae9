// FILE: lixenwraith/compose/simarrays/ntvi.go
package simarrays

import (
	"fmt"
	"reflect"
)

// NTVI holds parallel lists of variable names, element types and values,
// plus free-form info strings. Values are either actual values or samples
// that convey the shape of each row of an array to be allocated: a scalar
// sample gives a one-dimensional array, a slice sample of length n gives
// rows of n elements, and so on.
type NTVI struct {
	Names []string
	Types []reflect.Type
	Vals  []any
	Infos []string // need not match the other lists in length
}

// NewNTVI builds a descriptor. names, types and vals must have equal lengths.
func NewNTVI(names []string, types []reflect.Type, vals []any, infos ...string) (*NTVI, error) {
	if len(types) != len(names) || len(vals) != len(names) {
		return nil, fmt.Errorf("%w: %d names, %d types, %d values", ErrLength, len(names), len(types), len(vals))
	}
	return &NTVI{
		Names: append([]string(nil), names...),
		Types: append([]reflect.Type(nil), types...),
		Vals:  append([]any(nil), vals...),
		Infos: append([]string(nil), infos...),
	}, nil
}

// index returns the position of name, or -1
func (n *NTVI) index(name string) int {
	for i, candidate := range n.Names {
		if candidate == name {
			return i
		}
	}
	return -1
}

// Val returns the value stored for name
func (n *NTVI) Val(name string) (any, bool) {
	i := n.index(name)
	if i < 0 {
		return nil, false
	}
	return n.Vals[i], true
}

// ReplaceVal replaces the value stored for name
func (n *NTVI) ReplaceVal(name string, val any) error {
	i := n.index(name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownName, name)
	}
	n.Vals[i] = val
	return nil
}

// InsertVal inserts a variable before position index. A negative index or one
// past the end appends. info, when given, is inserted into Infos at the same
// position, clamped to the end of Infos.
func (n *NTVI) InsertVal(index int, name string, etype reflect.Type, val any, info ...string) {
	if index < 0 || index > len(n.Names) {
		index = len(n.Names)
	}
	n.Names = insertAt(n.Names, index, name)
	n.Types = insertAt(n.Types, index, etype)
	n.Vals = insertAt(n.Vals, index, val)

	if len(info) > 0 {
		infoIndex := min(index, len(n.Infos))
		n.Infos = insertAt(n.Infos, infoIndex, info[0])
	}
}

// Merge appends every list of other to n. A nil other is a no-op.
func (n *NTVI) Merge(other *NTVI) {
	if other == nil {
		return
	}
	n.Names = append(n.Names, other.Names...)
	n.Types = append(n.Types, other.Types...)
	n.Vals = append(n.Vals, other.Vals...)
	n.Infos = append(n.Infos, other.Infos...)
}

// Copy returns a descriptor with copied lists. Values themselves are shared.
func (n *NTVI) Copy() *NTVI {
	return &NTVI{
		Names: append([]string(nil), n.Names...),
		Types: append([]reflect.Type(nil), n.Types...),
		Vals:  append([]any(nil), n.Vals...),
		Infos: append([]string(nil), n.Infos...),
	}
}

// Len returns the number of variables
func (n *NTVI) Len() int {
	return len(n.Names)
}

func insertAt[T any](s []T, i int, v T) []T {
	var zero T
	s = append(s, zero)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}
