// FILE: lixenwraith/compose/units/units.go

// Package units picks engineering-notation prefixes for printing numbers.
package units

import (
	"fmt"
	"math"
)

// Prefix is one engineering prefix step
type Prefix struct {
	Threshold float64 // magnitudes strictly above this use the prefix
	Mult      float64 // multiply the number by Mult before printing
	Symbol    string  // plain-text prefix
	LaTeX     string  // prefix for plot labels
}

// prefixes is ordered by decreasing threshold. Magnitudes at or below the
// last threshold fall through to pico.
var prefixes = []Prefix{
	{1e12, 1e-12, "T", "T"},
	{1e9, 1e-9, "G", "G"},
	{1e6, 1e-6, "M", "M"},
	{1e3, 1e-3, "k", "k"},
	{1.0, 1.0, "", ""},
	{1e-3, 1e3, "m", "m"},
	{1e-6, 1e6, "micro-", `$\mu$`},
	{1e-9, 1e9, "n", "n"},
}

var pico = Prefix{0, 1e12, "p", "p"}

// Lookup returns the prefix step for num, chosen by its magnitude
func Lookup(num float64) Prefix {
	mag := math.Abs(num)
	for _, p := range prefixes {
		if mag > p.Threshold {
			return p
		}
	}
	return pico
}

// Engineering returns the multiplier and prefixes for printing num: print
// num*mult followed by prefix (or latex in plot labels) and the unit.
func Engineering(num float64) (mult float64, prefix, latex string) {
	p := Lookup(num)
	return p.Mult, p.Symbol, p.LaTeX
}

// Format renders num with three decimals in engineering units, e.g.
// Format(4.5e-5, "m") is "45.000 micro-m".
func Format(num float64, unit string) string {
	p := Lookup(num)
	return fmt.Sprintf("%.3f %s%s", num*p.Mult, p.Symbol, unit)
}
