// FILE: lixenwraith/compose/merge.go
package compose

// CoerceFunc is called when an override mapping replaces a non-mapping base
// value. path is the dot-notation location of the discarded value.
type CoerceFunc func(path string, discarded Value)

// Merge returns a new mapping with override recursively applied over base.
// Keys only in base are kept, keys only in override are added. Where both
// sides hold a mapping the merge recurses; otherwise the override value wins.
// Neither input is modified and the result shares no storage with them.
func Merge(base, override Mapping) Mapping {
	return mergeMappings(base, override, "", nil)
}

// MergeFunc is Merge with a callback for every base value that is discarded
// because override holds a mapping at the same key.
func MergeFunc(base, override Mapping, onCoerce CoerceFunc) Mapping {
	return mergeMappings(base, override, "", onCoerce)
}

// Fold merges docs left to right starting from an empty mapping, so later
// documents take precedence over earlier ones.
func Fold(docs ...Mapping) Mapping {
	return FoldFunc(nil, docs...)
}

// FoldFunc is Fold with a coercion callback
func FoldFunc(onCoerce CoerceFunc, docs ...Mapping) Mapping {
	acc := Mapping{}
	for _, doc := range docs {
		acc = mergeMappings(acc, doc, "", onCoerce)
	}
	return acc
}

func mergeMappings(base, override Mapping, prefix string, onCoerce CoerceFunc) Mapping {
	result := make(Mapping, len(base)+len(override))
	for key, value := range base {
		if _, overridden := override[key]; overridden {
			continue
		}
		result[key] = cloneValue(value)
	}

	for key, value := range override {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}

		switch ov := value.(type) {
		case Mapping:
			var sub Mapping
			switch bv := base[key].(type) {
			case Mapping:
				sub = bv
			case nil, Null:
				// Absent or null base: merge onto empty
			case Scalar, Sequence:
				if onCoerce != nil {
					onCoerce(path, cloneValue(bv))
				}
			}
			result[key] = mergeMappings(sub, ov, path, onCoerce)
		case Sequence, Scalar, Null:
			result[key] = ov.clone()
		case nil:
			result[key] = Null{}
		}
	}

	return result
}
