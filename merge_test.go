// FILE: lixenwraith/compose/merge_test.go
package compose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func i64(v int64) Scalar { return Scalar{V: v} }
func str(v string) Scalar { return Scalar{V: v} }

// TestMerge covers the override rules on hand-written documents
func TestMerge(t *testing.T) {
	tests := []struct {
		name     string
		base     Mapping
		override Mapping
		expected Mapping
	}{
		{
			name:     "DisjointKeys",
			base:     Mapping{"a": i64(1)},
			override: Mapping{"b": i64(2)},
			expected: Mapping{"a": i64(1), "b": i64(2)},
		},
		{
			name:     "NestedMappingsMerge",
			base:     Mapping{"a": i64(1), "b": Mapping{"x": i64(1), "y": i64(2)}},
			override: Mapping{"b": Mapping{"y": i64(9)}},
			expected: Mapping{"a": i64(1), "b": Mapping{"x": i64(1), "y": i64(9)}},
		},
		{
			name:     "SequenceReplacesWhole",
			base:     Mapping{"l": Sequence{i64(1), i64(2), i64(3)}},
			override: Mapping{"l": Sequence{i64(4)}},
			expected: Mapping{"l": Sequence{i64(4)}},
		},
		{
			name:     "ScalarReplacesMapping",
			base:     Mapping{"b": Mapping{"x": i64(1)}},
			override: Mapping{"b": str("flat")},
			expected: Mapping{"b": str("flat")},
		},
		{
			name:     "MappingReplacesScalar",
			base:     Mapping{"b": i64(3)},
			override: Mapping{"b": Mapping{"x": i64(1)}},
			expected: Mapping{"b": Mapping{"x": i64(1)}},
		},
		{
			name:     "NullOverrides",
			base:     Mapping{"a": i64(1)},
			override: Mapping{"a": Null{}},
			expected: Mapping{"a": Null{}},
		},
		{
			name:     "MappingOverNull",
			base:     Mapping{"a": Null{}},
			override: Mapping{"a": Mapping{"x": i64(1)}},
			expected: Mapping{"a": Mapping{"x": i64(1)}},
		},
		{
			name:     "DeepRecursion",
			base:     Mapping{"a": Mapping{"b": Mapping{"c": i64(1), "d": i64(2)}}},
			override: Mapping{"a": Mapping{"b": Mapping{"d": i64(3), "e": i64(4)}}},
			expected: Mapping{"a": Mapping{"b": Mapping{"c": i64(1), "d": i64(3), "e": i64(4)}}},
		},
		{
			name:     "NilBase",
			base:     nil,
			override: Mapping{"a": i64(1)},
			expected: Mapping{"a": i64(1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Merge(tt.base, tt.override))
		})
	}
}

func TestMergeDoesNotAlias(t *testing.T) {
	base := Mapping{"b": Mapping{"x": i64(1)}, "l": Sequence{i64(1)}}
	override := Mapping{"b": Mapping{"y": i64(2)}, "m": Mapping{"z": i64(3)}}
	baseCopy := base.Clone()
	overrideCopy := override.Clone()

	result := Merge(base, override)
	result["b"].(Mapping)["x"] = i64(100)
	result["l"].(Sequence)[0] = i64(100)
	result["m"].(Mapping)["z"] = i64(100)

	assert.Equal(t, baseCopy, base)
	assert.Equal(t, overrideCopy, override)
}

func TestMergeFuncReportsCoercion(t *testing.T) {
	var paths []string
	var discarded []Value
	onCoerce := func(path string, v Value) {
		paths = append(paths, path)
		discarded = append(discarded, v)
	}

	base := Mapping{"a": i64(3), "n": Mapping{"s": Sequence{i64(1)}}, "z": Null{}}
	override := Mapping{"a": Mapping{"x": i64(1)}, "n": Mapping{"s": Mapping{"y": i64(2)}}, "z": Mapping{}}

	result := MergeFunc(base, override, onCoerce)

	assert.ElementsMatch(t, []string{"a", "n.s"}, paths)
	assert.ElementsMatch(t, []Value{i64(3), Sequence{i64(1)}}, discarded)
	assert.Equal(t, Mapping{
		"a": Mapping{"x": i64(1)},
		"n": Mapping{"s": Mapping{"y": i64(2)}},
		"z": Mapping{},
	}, result)
}

func TestFold(t *testing.T) {
	assert.Equal(t, Mapping{}, Fold())

	a := Mapping{"a": i64(1), "b": Mapping{"x": i64(1)}}
	b := Mapping{"b": Mapping{"y": i64(2)}}
	c := Mapping{"a": i64(3)}

	assert.Equal(t, Mapping{"a": i64(3), "b": Mapping{"x": i64(1), "y": i64(2)}}, Fold(a, b, c))
}

// genValue draws a value of bounded nesting depth. Keys come from a small
// alphabet so that generated documents collide often.
func genValue(depth int) *rapid.Generator[Value] {
	return rapid.Custom(func(t *rapid.T) Value {
		kind := rapid.IntRange(0, 3).Draw(t, "kind")
		if depth <= 0 && kind == 3 {
			kind = 1
		}
		switch kind {
		case 0:
			return Null{}
		case 1:
			return Scalar{V: rapid.Int64Range(-3, 3).Draw(t, "int")}
		case 2:
			n := rapid.IntRange(0, 2).Draw(t, "len")
			seq := make(Sequence, n)
			for i := range seq {
				seq[i] = Scalar{V: rapid.StringN(0, 3, -1).Draw(t, "item")}
			}
			return seq
		default:
			return genMapping(depth - 1).Draw(t, "mapping")
		}
	})
}

func genMapping(depth int) *rapid.Generator[Mapping] {
	return rapid.Custom(func(t *rapid.T) Mapping {
		n := rapid.IntRange(0, 4).Draw(t, "size")
		m := make(Mapping, n)
		for i := 0; i < n; i++ {
			key := rapid.SampledFrom([]string{"a", "b", "c", "type"}).Draw(t, "key")
			m[key] = genValue(depth).Draw(t, "value")
		}
		return m
	})
}

func TestMergeProperties(t *testing.T) {
	t.Run("EmptyOverrideIsIdentity", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			a := genMapping(3).Draw(t, "a")
			if !Equal(Merge(a, Mapping{}), a) {
				t.Fatalf("merge(A, {}) != A for %v", a)
			}
		})
	})

	t.Run("EmptyBaseIsIdentity", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			b := genMapping(3).Draw(t, "b")
			if !Equal(Merge(Mapping{}, b), b) {
				t.Fatalf("merge({}, B) != B for %v", b)
			}
		})
	})

	t.Run("SequentialMergeEqualsFold", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			a := genMapping(3).Draw(t, "a")
			b := genMapping(3).Draw(t, "b")
			c := genMapping(3).Draw(t, "c")
			if !Equal(Merge(Merge(a, b), c), Fold(a, b, c)) {
				t.Fatalf("merge(merge(A,B),C) != fold(A,B,C)")
			}
		})
	})

	t.Run("KeyRules", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			a := genMapping(3).Draw(t, "a")
			b := genMapping(3).Draw(t, "b")
			result := Merge(a, b)

			for k, av := range a {
				if _, inB := b[k]; !inB && !Equal(result[k], av) {
					t.Fatalf("key %q only in base changed", k)
				}
			}
			for k, bv := range b {
				am, aIsMap := a[k].(Mapping)
				bm, bIsMap := bv.(Mapping)
				switch {
				case aIsMap && bIsMap:
					if !Equal(result[k], Merge(am, bm)) {
						t.Fatalf("key %q did not merge recursively", k)
					}
				default:
					if !Equal(result[k], bv) {
						t.Fatalf("key %q: override did not win", k)
					}
				}
			}
			if len(result) != len(unionKeys(a, b)) {
				t.Fatalf("result has %d keys, expected %d", len(result), len(unionKeys(a, b)))
			}
		})
	})

	t.Run("InputsUnchanged", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			a := genMapping(3).Draw(t, "a")
			b := genMapping(3).Draw(t, "b")
			aCopy, bCopy := a.Clone(), b.Clone()
			_ = Merge(a, b)
			if !Equal(a, aCopy) || !Equal(b, bCopy) {
				t.Fatalf("merge modified its inputs")
			}
		})
	})
}

func unionKeys(a, b Mapping) map[string]struct{} {
	keys := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		keys[k] = struct{}{}
	}
	for k := range b {
		keys[k] = struct{}{}
	}
	return keys
}
