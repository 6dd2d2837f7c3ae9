// File: lixenwraith/compose/builder.go
package compose

import (
	"fmt"
	"io"
	"log/slog"
)

// Builder provides a fluent interface for building a Composer
type Builder struct {
	opts     Options
	defaults any
	tagName  string
	err      error
}

// NewBuilder creates a new composer builder
func NewBuilder() *Builder {
	return &Builder{
		opts:    DefaultOptions(),
		tagName: DefaultTagName,
	}
}

// WithExtension sets the extension that replaces each identifier's suffix
func (b *Builder) WithExtension(ext string) *Builder {
	b.opts.Extension = ext
	return b
}

// WithSearchPaths sets the directories searched for relative identifiers
func (b *Builder) WithSearchPaths(paths ...string) *Builder {
	b.opts.SearchPaths = append([]string(nil), paths...)
	return b
}

// WithDiscovery sets the search paths from discovery options
func (b *Builder) WithDiscovery(opts DiscoveryOptions) *Builder {
	b.opts.SearchPaths = opts.SearchPaths()
	return b
}

// WithFormat forces a document format ("yaml", "json", "toml" or "auto")
func (b *Builder) WithFormat(format string) *Builder {
	f, err := ParseFormat(format)
	if err != nil && b.err == nil {
		b.err = err
	}
	b.opts.Format = f
	return b
}

// WithTypes sets the allowed type tags checked by Compose
func (b *Builder) WithTypes(types ...string) *Builder {
	b.opts.Types = append([]string(nil), types...)
	return b
}

// WithTypeKey sets the key holding the type tag
func (b *Builder) WithTypeKey(key string) *Builder {
	if key == "" && b.err == nil {
		b.err = fmt.Errorf("type key cannot be empty")
	}
	b.opts.TypeKey = key
	return b
}

// WithVerbosity sets the verbosity used by Compose
func (b *Builder) WithVerbosity(v Verbosity) *Builder {
	b.opts.Verbosity = v
	return b
}

// WithOutput sets where report lines are written
func (b *Builder) WithOutput(w io.Writer) *Builder {
	b.opts.Output = w
	return b
}

// WithLogger sets the diagnostic logger
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.opts.Logger = logger
	return b
}

// WithSecurityOptions sets file access restrictions
func (b *Builder) WithSecurityOptions(opts SecurityOptions) *Builder {
	b.opts.Security = opts
	return b
}

// WithDefaults sets a struct whose values form a document merged beneath every file
func (b *Builder) WithDefaults(defaults any) *Builder {
	b.defaults = defaults
	return b
}

// WithTagName sets the struct tag used to name WithDefaults fields
func (b *Builder) WithTagName(tagName string) *Builder {
	switch tagName {
	case "toml", "json", "yaml":
		b.tagName = tagName
	default:
		if b.err == nil {
			b.err = fmt.Errorf("unsupported tag name %q, must be toml, json, or yaml", tagName)
		}
	}
	return b
}

// Build creates the Composer with all specified options
func (b *Builder) Build() (*Composer, error) {
	if b.err != nil {
		return nil, b.err
	}

	c := NewWithOptions(b.opts)

	if b.defaults != nil {
		doc, err := DocumentFromStruct(b.defaults, b.tagName)
		if err != nil {
			return nil, fmt.Errorf("failed to register defaults: %w", err)
		}
		c.defaults = doc
	}

	return c, nil
}

// MustBuild is like Build but panics on error
func (b *Builder) MustBuild() *Composer {
	c, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("composer build failed: %v", err))
	}
	return c
}
