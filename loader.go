// FILE: lixenwraith/compose/loader.go
package compose

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// DefaultExtension is appended to every file identifier unless overridden
const DefaultExtension = ".yaml"

// Format names a document syntax
type Format string

const (
	// FormatAuto picks the format from the file extension, then from content
	FormatAuto Format = ""
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// ParseFormat validates a format name. "auto" and "" both mean FormatAuto.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return FormatAuto, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	case "toml", "tml":
		return FormatTOML, nil
	default:
		return FormatAuto, fmt.Errorf("unsupported file format %q", name)
	}
}

// SecurityOptions restricts which files the loader will read
type SecurityOptions struct {
	// PreventPathTraversal rejects relative identifiers that escape the working or search directory
	PreventPathTraversal bool
	// MaxFileSize in bytes, 0 for no limit
	MaxFileSize int64
}

// FileSequence is the ordered list of documents decoded from one input file
type FileSequence struct {
	ID        string // identifier as supplied by the caller
	Path      string // resolved path on disk
	Format    Format
	Documents []Mapping
}

// Loader resolves file identifiers to files and decodes every document in them.
// The zero value is not usable; use NewLoader.
type Loader struct {
	// Extension replaces the suffix of each identifier (default ".yaml")
	Extension string
	// SearchPaths are tried in order for relative identifiers; empty means the working directory
	SearchPaths []string
	// Format forces a document syntax instead of detecting it
	Format   Format
	Security SecurityOptions
}

// NewLoader returns a loader using DefaultExtension and the working directory
func NewLoader() *Loader {
	return &Loader{Extension: DefaultExtension}
}

// Path maps an identifier to a file name by replacing the suffix of its last
// element with the loader's extension: "base" and "base.yml" both become
// "base.yaml".
func (l *Loader) Path(id string) (string, error) {
	if strings.TrimSpace(id) == "" {
		return "", fmt.Errorf("%w: empty identifier", ErrInvalidIdentifier)
	}

	clean := filepath.Clean(id)
	name := filepath.Base(clean)
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return "", fmt.Errorf("%w: %q has no file name", ErrInvalidIdentifier, id)
	}

	ext := l.Extension
	if ext == "" {
		return clean, nil
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	// A leading dot starts a name, not a suffix
	if suffix := filepath.Ext(name); suffix != "" && suffix != name {
		clean = strings.TrimSuffix(clean, suffix)
	}
	return clean + ext, nil
}

// Locate returns the path of the existing file an identifier refers to
func (l *Loader) Locate(id string) (string, error) {
	path, err := l.Path(id)
	if err != nil {
		return "", err
	}

	if l.Security.PreventPathTraversal && !filepath.IsAbs(path) {
		if path == ".." || strings.HasPrefix(path, ".."+string(filepath.Separator)) {
			return "", fmt.Errorf("potential path traversal detected in config path: %s", id)
		}
	}

	if filepath.IsAbs(path) || len(l.SearchPaths) == 0 {
		if err := checkFile(path); err != nil {
			return "", err
		}
		return path, nil
	}

	var tried []string
	for _, dir := range l.SearchPaths {
		candidate := filepath.Join(dir, path)
		err := checkFile(candidate)
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, ErrFileNotFound) {
			return "", err
		}
		tried = append(tried, candidate)
	}
	return "", fmt.Errorf("%w: '%s' (searched %s): %w", ErrFileNotFound, path, strings.Join(tried, ", "), os.ErrNotExist)
}

// checkFile reports whether path is an existing regular file
func checkFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: '%s': %w", ErrFileNotFound, path, err)
		}
		return fmt.Errorf("failed to stat config file '%s': %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: '%s' is a directory", ErrFileNotFound, path)
	}
	return nil
}

// Load resolves id and decodes all documents in the file, in file order
func (l *Loader) Load(id string) (FileSequence, error) {
	path, err := l.Locate(id)
	if err != nil {
		return FileSequence{}, err
	}

	data, err := l.readFile(path)
	if err != nil {
		return FileSequence{}, err
	}

	format := l.Format
	if format == FormatAuto {
		format = detectFileFormat(path)
		if format == FormatAuto {
			format = detectFormatFromContent(data)
			if format == FormatAuto {
				return FileSequence{}, fmt.Errorf("unable to determine config format for file '%s'", path)
			}
		}
	}

	docs, err := DecodeDocuments(bytes.NewReader(data), format, path)
	if err != nil {
		return FileSequence{}, err
	}

	return FileSequence{
		ID:        id,
		Path:      path,
		Format:    format,
		Documents: docs,
	}, nil
}

// LoadAll loads every identifier in order, stopping at the first failure
func (l *Loader) LoadAll(ids []string) ([]FileSequence, error) {
	seqs := make([]FileSequence, 0, len(ids))
	for _, id := range ids {
		seq, err := l.Load(id)
		if err != nil {
			return nil, err
		}
		seqs = append(seqs, seq)
	}
	return seqs, nil
}

// readFile reads path honouring the size limit. The file is closed on every path.
func (l *Loader) readFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: '%s': %w", ErrFileNotFound, path, err)
		}
		return nil, fmt.Errorf("failed to open config file '%s': %w", path, err)
	}
	defer file.Close()

	var reader io.Reader = file
	if limit := l.Security.MaxFileSize; limit > 0 {
		info, err := file.Stat()
		if err != nil {
			return nil, fmt.Errorf("failed to stat config file '%s': %w", path, err)
		}
		if info.Size() > limit {
			return nil, fmt.Errorf("%w: '%s' exceeds maximum size %d bytes", ErrFileTooLarge, path, limit)
		}
		// File may grow between stat and read
		reader = io.LimitReader(file, limit+1)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}
	if limit := l.Security.MaxFileSize; limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: '%s' exceeds maximum size %d bytes", ErrFileTooLarge, path, limit)
	}
	return data, nil
}

// DecodeDocuments decodes every document in r. YAML and JSON streams may hold
// any number of documents; TOML always holds exactly one. path is used only in
// error messages.
func DecodeDocuments(r io.Reader, format Format, path string) ([]Mapping, error) {
	var docs []Mapping

	switch format {
	case FormatYAML:
		decoder := yaml.NewDecoder(r)
		for i := 0; ; i++ {
			var raw any
			if err := decoder.Decode(&raw); err != nil {
				if errors.Is(err, io.EOF) {
					break
				}
				return nil, &ParseError{Path: path, Format: string(format), Document: i, Err: err}
			}
			doc, err := toDocument(raw)
			if err != nil {
				return nil, &ParseError{Path: path, Format: string(format), Document: i, Err: err}
			}
			docs = append(docs, doc)
		}

	case FormatJSON:
		decoder := json.NewDecoder(r)
		decoder.UseNumber() // Preserve integer precision
		for i := 0; ; i++ {
			var raw any
			if err := decoder.Decode(&raw); err != nil {
				if errors.Is(err, io.EOF) {
					break
				}
				return nil, &ParseError{Path: path, Format: string(format), Document: i, Err: err}
			}
			doc, err := toDocument(raw)
			if err != nil {
				return nil, &ParseError{Path: path, Format: string(format), Document: i, Err: err}
			}
			docs = append(docs, doc)
		}

	case FormatTOML:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
		}
		raw := make(map[string]any)
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, &ParseError{Path: path, Format: string(format), Document: -1, Err: err}
		}
		docs = append(docs, FromAny(raw).(Mapping))

	default:
		return nil, fmt.Errorf("unsupported config format %q for file '%s'", format, path)
	}

	return docs, nil
}

// toDocument accepts a mapping or null (an empty document) as a top-level value
func toDocument(raw any) (Mapping, error) {
	switch v := FromAny(raw).(type) {
	case Mapping:
		return v, nil
	case Null:
		return Mapping{}, nil
	default:
		return nil, fmt.Errorf("top-level %s is not a mapping", v.Kind())
	}
}

// detectFileFormat determines format from file extension
func detectFileFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	case ".toml", ".tml":
		return FormatTOML
	default:
		return FormatAuto
	}
}

// detectFormatFromContent attempts to detect format by parsing
func detectFormatFromContent(data []byte) Format {
	// JSON first, it is the strictest
	var jsonTest any
	if err := json.Unmarshal(data, &jsonTest); err == nil {
		return FormatJSON
	}

	// Only accept YAML that decodes to a mapping, plain text is a valid YAML scalar
	var yamlTest map[string]any
	if err := yaml.Unmarshal(data, &yamlTest); err == nil {
		return FormatYAML
	}

	var tomlTest map[string]any
	if err := toml.Unmarshal(data, &tomlTest); err == nil {
		return FormatTOML
	}

	return FormatAuto
}
