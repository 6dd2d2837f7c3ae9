// FILE: lixenwraith/compose/resolve.go
package compose

// Combined is one resolved combination: the folded mapping and the index of
// the document chosen from each file sequence, in file order.
type Combined struct {
	Indices []int
	Data    Mapping
}

// Combine folds every combination of one document per sequence. Combinations
// are produced in Cartesian-product order with the last sequence varying
// fastest; within a combination earlier sequences have lower precedence.
//
// No sequences yields a single empty mapping. Any empty sequence yields no
// combinations at all.
func Combine(seqs [][]Mapping) []Combined {
	return CombineFunc(seqs, nil)
}

// CombineFunc is Combine with a coercion callback passed through to every merge
func CombineFunc(seqs [][]Mapping, onCoerce CoerceFunc) []Combined {
	total := 1
	for _, seq := range seqs {
		total *= len(seq)
	}
	if total == 0 {
		return []Combined{}
	}

	results := make([]Combined, 0, total)
	indices := make([]int, len(seqs))
	combo := make([]Mapping, len(seqs))

	for {
		for i, seq := range seqs {
			combo[i] = seq[indices[i]]
		}
		results = append(results, Combined{
			Indices: append([]int(nil), indices...),
			Data:    FoldFunc(onCoerce, combo...),
		})

		// Advance like an odometer, last position fastest
		pos := len(indices) - 1
		for pos >= 0 {
			indices[pos]++
			if indices[pos] < len(seqs[pos]) {
				break
			}
			indices[pos] = 0
			pos--
		}
		if pos < 0 {
			return results
		}
	}
}
