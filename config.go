// FILE: lixenwraith/compose/config.go
package compose

import (
	"strings"
)

// Configuration is one fully resolved configuration: the fold of one document
// from each input file. Each Configuration owns its data exclusively.
type Configuration struct {
	// Index is the zero-based position in the resolved list
	Index int
	// Combination holds the document index chosen from each file, in file order
	Combination []int
	// Files are the resolved paths that contributed, lowest precedence first
	Files []string

	data Mapping
}

// NewConfiguration wraps data as a standalone configuration. data is copied.
func NewConfiguration(data Mapping) *Configuration {
	return &Configuration{data: data.Clone()}
}

// Data returns the resolved mapping. Changes made to it are visible through
// this configuration only.
func (c *Configuration) Data() Mapping {
	return c.data
}

// Map returns a plain map[string]any copy of the configuration
func (c *Configuration) Map() map[string]any {
	return ToAny(c.data).(map[string]any)
}

// Len returns the number of top-level keys
func (c *Configuration) Len() int {
	return len(c.data)
}

// Value retrieves the value at a dot-separated path.
// The second return value reports whether the path exists.
func (c *Configuration) Value(path string) (Value, bool) {
	if path == "" {
		return c.data, true
	}

	var current Value = c.data
	for _, segment := range strings.Split(path, ".") {
		m, ok := current.(Mapping)
		if !ok {
			return nil, false
		}
		next, exists := m[segment]
		if !exists {
			return nil, false
		}
		current = next
	}
	return current, true
}

// Get retrieves a plain Go value at a dot-separated path
func (c *Configuration) Get(path string) (any, bool) {
	v, ok := c.Value(path)
	if !ok {
		return nil, false
	}
	return ToAny(v), true
}

// Has reports whether a path exists
func (c *Configuration) Has(path string) bool {
	_, ok := c.Value(path)
	return ok
}

// Type returns the string tag stored under key. ok is false when the key is
// missing or does not hold a string.
func (c *Configuration) Type(key string) (string, bool) {
	v, exists := c.data[key]
	if !exists {
		return "", false
	}
	s, isScalar := v.(Scalar)
	if !isScalar {
		return "", false
	}
	str, isString := s.V.(string)
	return str, isString
}

// Paths returns every leaf path in sorted order
func (c *Configuration) Paths() []string {
	flat := c.Flatten()
	paths := make([]string, 0, len(flat))
	for p := range flat {
		paths = append(paths, p)
	}
	return sortedStrings(paths)
}

// Flatten returns the configuration as dot-notation path -> plain value pairs.
// Empty mappings do not appear.
func (c *Configuration) Flatten() map[string]any {
	return flattenMap(c.Map(), "")
}

// Clone creates a deep copy of the configuration
func (c *Configuration) Clone() *Configuration {
	return &Configuration{
		Index:       c.Index,
		Combination: append([]int(nil), c.Combination...),
		Files:       append([]string(nil), c.Files...),
		data:        c.data.Clone(),
	}
}

// Equal reports whether two configurations hold structurally equal data
func (c *Configuration) Equal(other *Configuration) bool {
	if c == nil || other == nil {
		return c == other
	}
	return Equal(c.data, other.data)
}
