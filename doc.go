// File: lixenwraith/compose/doc.go

// Package compose builds program configurations from an ordered list of
// multi-document files. Later files override earlier ones key by key, nested
// mappings merge recursively, and every combination of one document per file
// yields its own configuration.
//
// Features:
//   - YAML, JSON and TOML input, detected by extension or content
//   - Multi-document files expand into a Cartesian product of configurations
//   - Recursive merge where sequences and scalars replace, mappings merge
//   - Optional "type" tag check against an allowed set
//   - Summary and full reporting with a "- " line prefix
//   - Struct defaults and mapstructure decoding into typed structs
//   - Polling file watcher that re-resolves on change
//
// Quick Start:
//
//	configs, err := compose.GetConfigurations(
//	    []string{"defaults", "site", "run"}, []string{"solver"}, compose.VerbositySummary)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, cfg := range configs {
//	    var run RunConfig
//	    if err := cfg.Scan("", &run); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// Given base.yaml:
//
//	a: 1
//	b: {x: 1, y: 2}
//
// and sweep.yaml holding two documents:
//
//	b: {y: 9}
//	---
//	c: 3
//
// GetConfigurations([]string{"base", "sweep"}, nil, VerbosityQuiet) returns
// {a: 1, b: {x: 1, y: 9}} and {a: 1, b: {x: 1, y: 2}, c: 3}.
//
// Identifiers have their suffix replaced by ".yaml", so "run" and "run.yml"
// both read run.yaml. Use a Builder to change the extension, search paths,
// format or defaults.
//
// Thread Safety:
//
// A Composer holds no mutable state after construction. Each Configuration
// owns its data; concurrent readers are safe, writers must synchronise.
package compose
