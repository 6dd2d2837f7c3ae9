// FILE: lixenwraith/compose/composer.go
package compose

import (
	"io"
	"log/slog"
)

// Options configures a Composer
type Options struct {
	// Extension replaces the suffix of every file identifier (default ".yaml")
	Extension string

	// SearchPaths are tried in order for relative identifiers
	SearchPaths []string

	// Format forces a document syntax; FormatAuto detects it per file
	Format Format

	// Security restricts which files are read
	Security SecurityOptions

	// TypeKey is the key holding the type tag (default "type")
	TypeKey string

	// Types is the allowed type set used by Compose; empty disables the check
	Types []string

	// Verbosity used by Compose
	Verbosity Verbosity

	// Output receives report lines (default stdout)
	Output io.Writer

	// Logger receives diagnostics (default discards)
	Logger *slog.Logger
}

// DefaultOptions returns the standard composer options
func DefaultOptions() Options {
	return Options{
		Extension: DefaultExtension,
		TypeKey:   DefaultTypeKey,
		Verbosity: VerbositySummary,
	}
}

// Composer loads file sequences and resolves every combination of their
// documents. A Composer holds no mutable state after construction and is safe
// for concurrent use.
type Composer struct {
	opts     Options
	loader   *Loader
	reporter *Reporter
	logger   *slog.Logger
	defaults Mapping // lowest-precedence document, nil when unset
}

// New creates a Composer with DefaultOptions
func New() *Composer {
	return NewWithOptions(DefaultOptions())
}

// NewWithOptions creates a Composer with custom options
func NewWithOptions(opts Options) *Composer {
	if opts.Extension == "" {
		opts.Extension = DefaultExtension
	}
	if opts.TypeKey == "" {
		opts.TypeKey = DefaultTypeKey
	}
	logger := opts.Logger
	if logger == nil {
		logger = discardLogger()
	}

	return &Composer{
		opts: opts,
		loader: &Loader{
			Extension:   opts.Extension,
			SearchPaths: append([]string(nil), opts.SearchPaths...),
			Format:      opts.Format,
			Security:    opts.Security,
		},
		reporter: NewReporter(opts.Output, logger),
		logger:   logger,
	}
}

// Options returns a copy of the composer's options
func (c *Composer) Options() Options {
	opts := c.opts
	opts.SearchPaths = append([]string(nil), c.opts.SearchPaths...)
	opts.Types = append([]string(nil), c.opts.Types...)
	return opts
}

// Reporter returns the composer's reporter
func (c *Composer) Reporter() *Reporter {
	return c.reporter
}

// Load reads the document sequence of every identifier, in order.
// The first missing or malformed file aborts the load.
func (c *Composer) Load(ids []string) ([]FileSequence, error) {
	seqs := make([]FileSequence, 0, len(ids))
	for _, id := range ids {
		seq, err := c.loader.Load(id)
		if err != nil {
			c.logger.Debug("config file load failed", "id", id, "error", err)
			return nil, err
		}
		c.logger.Debug("config file loaded", "id", id, "path", seq.Path, "format", seq.Format, "documents", len(seq.Documents))
		seqs = append(seqs, seq)
	}
	return seqs, nil
}

// Resolve loads ids and returns one configuration per combination of their
// documents, without reporting or type validation.
func (c *Composer) Resolve(ids ...string) ([]*Configuration, error) {
	seqs, err := c.Load(ids)
	if err != nil {
		return nil, err
	}
	return c.resolveSequences(seqs), nil
}

// GetConfigurations resolves ids, reports at the given verbosity and, when
// types is non-empty, requires every configuration's type tag to be one of
// them. On a type mismatch no configurations are returned.
func (c *Composer) GetConfigurations(ids []string, types []string, verbosity Verbosity) ([]*Configuration, error) {
	seqs, err := c.Load(ids)
	if err != nil {
		return nil, err
	}

	configs := c.resolveSequences(seqs)

	files := make([]string, len(seqs))
	for i, seq := range seqs {
		files[i] = seq.Path
	}
	c.reporter.Summary(verbosity, configs, files)

	if err := Validate(configs, types, c.opts.TypeKey); err != nil {
		return nil, c.reporter.Fail("GetConfigurations", err, false)
	}

	return configs, nil
}

// Compose is GetConfigurations using the types and verbosity from the options
func (c *Composer) Compose(ids ...string) ([]*Configuration, error) {
	return c.GetConfigurations(ids, c.opts.Types, c.opts.Verbosity)
}

// resolveSequences combines loaded sequences into configurations
func (c *Composer) resolveSequences(seqs []FileSequence) []*Configuration {
	docs := make([][]Mapping, 0, len(seqs)+1)
	if c.defaults != nil {
		docs = append(docs, []Mapping{c.defaults})
	}
	files := make([]string, len(seqs))
	for i, seq := range seqs {
		docs = append(docs, seq.Documents)
		files[i] = seq.Path
	}

	combined := CombineFunc(docs, c.onCoerce)

	configs := make([]*Configuration, len(combined))
	for i, comb := range combined {
		indices := comb.Indices
		if c.defaults != nil {
			indices = indices[1:]
		}
		configs[i] = &Configuration{
			Index:       i,
			Combination: indices,
			Files:       append([]string(nil), files...),
			data:        comb.Data,
		}
	}
	return configs
}

// onCoerce logs base values discarded by a mapping override
func (c *Composer) onCoerce(path string, discarded Value) {
	c.logger.Warn("mapping override discards non-mapping value",
		"path", path,
		"kind", discarded.Kind().String(),
		"value", ToAny(discarded))
}
