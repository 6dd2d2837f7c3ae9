// FILE: lixenwraith/compose/timing.go
package compose

import "time"

// Core timing constants for file watching.
const (
	// File watching intervals (ordered by frequency)
	SpinWaitInterval     = 5 * time.Millisecond   // CPU-friendly busy-wait quantum
	MinPollInterval      = 100 * time.Millisecond // Hard floor for file stat polling
	ShutdownTimeout      = 100 * time.Millisecond // Graceful watcher termination window
	DefaultDebounce      = 500 * time.Millisecond // File change coalescence period
	DefaultPollInterval  = time.Second            // Standard file monitoring frequency
	DefaultReloadTimeout = 5 * time.Second        // Maximum duration for a re-resolution
)

const (
	// DefaultMaxWatchers bounds subscriber channels per watcher
	DefaultMaxWatchers = 100

	// subscriberBuffer is the capacity of each subscriber channel
	subscriberBuffer = 10
)
