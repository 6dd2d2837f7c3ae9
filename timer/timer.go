// FILE: lixenwraith/compose/timer/timer.go

// Package timer accumulates wall-clock time for named code segments and
// prints a profile of them. Segments are additive: every Mark closes the
// segment opened by the previous mark.
//
//	t := timer.New("solver", timer.WithItems(
//	    timer.Item{Name: "setup", Desc: "grid setup"},
//	    timer.Item{Name: "step", Desc: "time steps"},
//	))
//	setup()
//	t.Mark("setup")
//	for i := 0; i < n; i++ {
//	    step()
//	    t.Mark("step")
//	}
//	t.PrintTimes(os.Stdout)
package timer

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Prefix starts every printed line
const Prefix = "- "

const (
	ruleWidth   = 70
	descWidth   = 37
	nestedWidth = 30
	nestIndent  = "   "
)

// Item is a predefined timer item. Name is passed to Mark, Desc is printed.
type Item struct {
	Name string
	Desc string
}

// Option configures a CPUTimer
type Option func(*CPUTimer)

// WithItems sets predefined items, printed first and in the given order
func WithItems(items ...Item) Option {
	return func(t *CPUTimer) {
		t.items = append([]Item(nil), items...)
	}
}

// Disabled turns every method into a no-op, so profiling can be switched off
// without removing Mark calls.
func Disabled() Option {
	return func(t *CPUTimer) {
		t.off = true
	}
}

// WithClock replaces time.Now, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(t *CPUTimer) {
		t.now = now
	}
}

// CPUTimer keeps cumulative times for a set of items. Several timers may be
// used to profile overlapping segments. Safe for concurrent use.
type CPUTimer struct {
	mu    sync.Mutex
	name  string
	off   bool
	items []Item
	now   func() time.Time

	last  time.Time
	times map[string]time.Duration
	nests map[string]string
	order []string // first-seen order of marked items
}

// New creates a timer and starts timing
func New(name string, opts ...Option) *CPUTimer {
	t := &CPUTimer{
		name: name,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.Zero()
	return t
}

// Start marks the beginning of a segment without closing one. Time since the
// previous mark is not attributed to any item.
func (t *CPUTimer) Start() {
	t.MarkNested("", "")
}

// Mark closes the current segment, adding its duration to item, and opens
// the next one.
func (t *CPUTimer) Mark(item string) {
	t.MarkNested(item, "")
}

// MarkNested is Mark for items outside the predefined set. nesting, taken from
// the first mark of an item, orders the item in PrintTimes: nested items are
// sorted by nesting string and indented once per '.' in it.
func (t *CPUTimer) MarkNested(item, nesting string) {
	if t.off {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	prev := t.last
	t.last = t.now()
	if item == "" {
		return
	}

	if _, seen := t.times[item]; !seen {
		t.nests[item] = nesting
		t.order = append(t.order, item)
	}
	t.times[item] += t.last.Sub(prev)
}

// Time returns the cumulative time for item, zero when never marked
func (t *CPUTimer) Time(item string) time.Duration {
	if t.off {
		return 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.times[item]
}

// Total returns the cumulative time of all items up to the latest mark
func (t *CPUTimer) Total() time.Duration {
	if t.off {
		return 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total()
}

func (t *CPUTimer) total() time.Duration {
	var sum time.Duration
	for _, d := range t.times {
		sum += d
	}
	return sum
}

// Zero clears all cumulative times and starts timing again
func (t *CPUTimer) Zero() {
	if t.off {
		return
	}

	t.mu.Lock()
	t.times = make(map[string]time.Duration)
	t.nests = make(map[string]string)
	t.order = nil
	t.mu.Unlock()

	t.Start()
}

type nestedLine struct {
	nesting string
	desc    string
	d       time.Duration
}

// PrintTimes writes the total and per-item times. Predefined items come first
// in definition order, then other items without nesting in the order they
// were first marked, then nested items.
func (t *CPUTimer) PrintTimes(w io.Writer) error {
	if t.off {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	p := message.NewPrinter(language.English)
	lw := &lineWriter{w: w}

	total := t.total()
	seconds := total.Seconds()

	rule := Prefix + strings.Repeat("-", ruleWidth) + "\n"
	lw.printf("%s", rule)
	lw.printf("%s%*s%11ss = %sh\n", Prefix, descWidth, "Total time for "+t.name,
		p.Sprintf("%.3f", seconds), p.Sprintf("%.3f", seconds/3600))

	predefined := make(map[string]bool, len(t.items))
	for _, item := range t.items {
		predefined[item.Name] = true
		if d, ok := t.times[item.Name]; ok {
			lw.printf("%s%*s%11ss, %4.1f%% of total\n", Prefix, descWidth, item.Desc,
				p.Sprintf("%.3f", d.Seconds()), percent(d, total))
		}
	}

	var nested []nestedLine
	for _, name := range t.order {
		if predefined[name] {
			continue
		}
		d := t.times[name]
		nesting := t.nests[name]
		if nesting == "" {
			lw.printf("%s%*s%11ss, %4.1f%% of total\n", Prefix, descWidth, name,
				p.Sprintf("%.3f", d.Seconds()), percent(d, total))
			continue
		}
		desc := strings.Repeat(nestIndent, strings.Count(nesting, ".")) + nesting + " " + name
		nested = append(nested, nestedLine{nesting: nesting, desc: desc, d: d})
	}

	sort.SliceStable(nested, func(i, j int) bool {
		return nested[i].nesting < nested[j].nesting
	})
	for _, line := range nested {
		lw.printf("%s%7s%s%11ss, %4.1f%% of total\n", Prefix, "", dotPad(line.desc, nestedWidth),
			p.Sprintf("%.3f", line.d.Seconds()), percent(line.d, total))
	}

	lw.printf("%s", rule)
	return lw.err
}

// percent returns d as a percentage of total, guarding a zero total
func percent(d, total time.Duration) float64 {
	denom := total.Seconds()
	if denom < 1e-10 {
		denom = 1e-10
	}
	return 100 * d.Seconds() / denom
}

// dotPad left-justifies s in a field of width filled with dots
func dotPad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(".", width-n)
	}
	return s
}

// lineWriter keeps the first write error
type lineWriter struct {
	w   io.Writer
	err error
}

func (lw *lineWriter) printf(format string, args ...any) {
	if lw.err != nil {
		return
	}
	_, lw.err = fmt.Fprintf(lw.w, format, args...)
}
