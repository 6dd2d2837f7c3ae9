// FILE: lixenwraith/compose/example/main.go
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lixenwraith/compose"
	"github.com/lixenwraith/compose/timer"
	"github.com/lixenwraith/compose/units"
)

// RunConfig is the typed view of one resolved configuration
type RunConfig struct {
	Type string `yaml:"type"`
	Grid struct {
		Cells   int     `yaml:"cells"`
		Spacing float64 `yaml:"spacing"`
	} `yaml:"grid"`
	Solver struct {
		Steps   int           `yaml:"steps"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"solver"`
}

const defaultsFile = `type: solver
grid:
  cells: 64
  spacing: 0.001
solver:
  steps: 100
  timeout: 30s
`

// Two documents: every run in the sweep is combined with both grids
const gridsFile = `grid:
  cells: 128
---
grid:
  cells: 256
  spacing: 0.0005
`

const sweepFile = `solver:
  steps: 200
---
solver:
  steps: 400
`

func main() {
	dir, err := os.MkdirTemp("", "compose-example")
	if err != nil {
		log.Fatalf("Failed to create work directory: %v", err)
	}
	defer os.RemoveAll(dir)

	for name, content := range map[string]string{
		"defaults.yaml": defaultsFile,
		"grids.yaml":    gridsFile,
		"sweep.yaml":    sweepFile,
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			log.Fatalf("Failed to write %s: %v", name, err)
		}
	}

	tm := timer.New("example", timer.WithItems(
		timer.Item{Name: "compose", Desc: "compose configurations"},
		timer.Item{Name: "scan", Desc: "scan into structs"},
	))

	c, err := compose.NewBuilder().
		WithSearchPaths(dir).
		WithTypes("solver").
		WithVerbosity(compose.VerbosityFull).
		WithLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))).
		Build()
	if err != nil {
		log.Fatalf("Failed to build composer: %v", err)
	}

	ids := []string{"defaults", "grids.yml", "sweep"}
	configs, err := c.Compose(ids...)
	if err != nil {
		log.Fatalf("Failed to compose: %v", err)
	}
	tm.Mark("compose")

	for _, cfg := range configs {
		var run RunConfig
		if err := cfg.Scan("", &run); err != nil {
			log.Fatalf("Failed to scan config %d: %v", cfg.Index+1, err)
		}
		log.Printf("run %d %v: %d cells at %s, %d steps (timeout %s)",
			cfg.Index+1, cfg.Combination, run.Grid.Cells,
			units.Format(run.Grid.Spacing, "m"), run.Solver.Steps, run.Solver.Timeout)
	}
	tm.Mark("scan")

	// Watch for edits and re-resolve
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	opts := compose.DefaultWatchOptions()
	opts.PollInterval = compose.MinPollInterval
	opts.Debounce = 100 * time.Millisecond

	w, err := c.Watch(ctx, ids, []string{"solver"}, opts)
	if err != nil {
		log.Fatalf("Failed to start watcher: %v", err)
	}
	defer w.Stop()

	updates := w.Subscribe()
	if err := os.WriteFile(filepath.Join(dir, "sweep.yaml"), []byte("solver:\n  steps: 800\n"), 0644); err != nil {
		log.Fatalf("Failed to rewrite sweep.yaml: %v", err)
	}

	select {
	case u := <-updates:
		if u.Err != nil {
			log.Printf("Re-resolution failed: %v", u.Err)
			break
		}
		log.Printf("%v changed, now %d configuration(s)", u.Changed, len(u.Configurations))
	case <-ctx.Done():
		log.Println("No update observed before timeout")
	}
	tm.MarkNested("watch", "1")

	if err := tm.PrintTimes(os.Stdout); err != nil {
		log.Printf("Failed to print times: %v", err)
	}
}
