// FILE: lixenwraith/compose/loader_test.go
package compose

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig writes content to dir/name and returns the full path
func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoaderPath(t *testing.T) {
	l := NewLoader()

	tests := []struct {
		id       string
		expected string
	}{
		{"base", "base.yaml"},
		{"base.yml", "base.yaml"},
		{"base.yaml", "base.yaml"},
		{"run.v2.json", "run.v2.yaml"},
		{"dir/site", filepath.Join("dir", "site.yaml")},
		{"./dir/../site.toml", "site.yaml"},
		{".hidden", ".hidden.yaml"},
		{"/etc/app/base.conf", "/etc/app/base.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			path, err := l.Path(tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, path)
		})
	}

	t.Run("CustomExtensionWithoutDot", func(t *testing.T) {
		l := &Loader{Extension: "toml"}
		path, err := l.Path("base.yaml")
		require.NoError(t, err)
		assert.Equal(t, "base.toml", path)
	})

	t.Run("EmptyExtensionKeepsName", func(t *testing.T) {
		l := &Loader{}
		path, err := l.Path("base.json")
		require.NoError(t, err)
		assert.Equal(t, "base.json", path)
	})

	t.Run("InvalidIdentifiers", func(t *testing.T) {
		for _, id := range []string{"", "   ", ".", "..", "/"} {
			_, err := l.Path(id)
			assert.ErrorIs(t, err, ErrInvalidIdentifier, "id %q", id)
		}
	})
}

func TestLoaderLocate(t *testing.T) {
	tmpDir := t.TempDir()
	first := filepath.Join(tmpDir, "first")
	second := filepath.Join(tmpDir, "second")
	writeConfig(t, second, "app.yaml", "a: 1\n")
	writeConfig(t, first, "shared.yaml", "a: 1\n")
	writeConfig(t, second, "shared.yaml", "a: 2\n")

	l := &Loader{Extension: DefaultExtension, SearchPaths: []string{first, second}}

	t.Run("SearchOrder", func(t *testing.T) {
		path, err := l.Locate("shared")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(first, "shared.yaml"), path)

		path, err = l.Locate("app.yml")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(second, "app.yaml"), path)
	})

	t.Run("AbsoluteIgnoresSearchPaths", func(t *testing.T) {
		path, err := l.Locate(filepath.Join(second, "app"))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(second, "app.yaml"), path)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := l.Locate("missing")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrFileNotFound)
		assert.ErrorIs(t, err, os.ErrNotExist)
		assert.Contains(t, err.Error(), "missing.yaml")
	})

	t.Run("DirectoryIsNotAFile", func(t *testing.T) {
		require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "dir.yaml"), 0755))
		_, err := NewLoader().Locate(filepath.Join(tmpDir, "dir"))
		assert.ErrorIs(t, err, ErrFileNotFound)
	})

	t.Run("PathTraversal", func(t *testing.T) {
		secure := &Loader{
			Extension: DefaultExtension,
			Security:  SecurityOptions{PreventPathTraversal: true},
		}
		_, err := secure.Locate("../../etc/passwd")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "path traversal")
	})
}

func TestLoaderLoad(t *testing.T) {
	tmpDir := t.TempDir()
	l := &Loader{Extension: "", SearchPaths: []string{tmpDir}}

	t.Run("MultiDocumentYAML", func(t *testing.T) {
		writeConfig(t, tmpDir, "multi.yaml", "a: 1\n---\na: 2\nb: [x, y]\n")
		seq, err := l.Load("multi.yaml")
		require.NoError(t, err)

		assert.Equal(t, "multi.yaml", seq.ID)
		assert.Equal(t, filepath.Join(tmpDir, "multi.yaml"), seq.Path)
		assert.Equal(t, FormatYAML, seq.Format)
		require.Len(t, seq.Documents, 2)
		assert.Equal(t, Mapping{"a": i64(1)}, seq.Documents[0])
		assert.Equal(t, Mapping{"a": i64(2), "b": Sequence{str("x"), str("y")}}, seq.Documents[1])
	})

	t.Run("NullDocumentIsEmpty", func(t *testing.T) {
		writeConfig(t, tmpDir, "nulls.yaml", "---\n~\n---\na: 1\n")
		seq, err := l.Load("nulls.yaml")
		require.NoError(t, err)
		require.Len(t, seq.Documents, 2)
		assert.Equal(t, Mapping{}, seq.Documents[0])
	})

	t.Run("EmptyFileHasNoDocuments", func(t *testing.T) {
		writeConfig(t, tmpDir, "empty.yaml", "")
		seq, err := l.Load("empty.yaml")
		require.NoError(t, err)
		assert.Empty(t, seq.Documents)
	})

	t.Run("JSONStream", func(t *testing.T) {
		writeConfig(t, tmpDir, "stream.json", `{"a": 1, "big": 9007199254740993} {"a": 2.5}`)
		seq, err := l.Load("stream.json")
		require.NoError(t, err)
		assert.Equal(t, FormatJSON, seq.Format)
		require.Len(t, seq.Documents, 2)
		assert.Equal(t, i64(9007199254740993), seq.Documents[0]["big"])
		assert.Equal(t, Scalar{V: 2.5}, seq.Documents[1]["a"])
	})

	t.Run("TOMLSingleDocument", func(t *testing.T) {
		writeConfig(t, tmpDir, "app.toml", "type = \"svc\"\n[server]\nport = 8080\n")
		seq, err := l.Load("app.toml")
		require.NoError(t, err)
		assert.Equal(t, FormatTOML, seq.Format)
		require.Len(t, seq.Documents, 1)
		assert.Equal(t, Mapping{"type": str("svc"), "server": Mapping{"port": i64(8080)}}, seq.Documents[0])
	})

	t.Run("ContentDetection", func(t *testing.T) {
		writeConfig(t, tmpDir, "noext", "a: 1\nb: two\n")
		seq, err := l.Load("noext")
		require.NoError(t, err)
		assert.Equal(t, FormatYAML, seq.Format)

		writeConfig(t, tmpDir, "plain", "just some words")
		_, err = l.Load("plain")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unable to determine config format")
	})

	t.Run("ForcedFormat", func(t *testing.T) {
		writeConfig(t, tmpDir, "forced.conf", "[s]\nk = 1\n")
		forced := &Loader{SearchPaths: []string{tmpDir}, Format: FormatTOML}
		seq, err := forced.Load("forced.conf")
		require.NoError(t, err)
		assert.Equal(t, Mapping{"s": Mapping{"k": i64(1)}}, seq.Documents[0])
	})
}

func TestLoaderParseErrors(t *testing.T) {
	tmpDir := t.TempDir()
	l := &Loader{SearchPaths: []string{tmpDir}}

	tests := []struct {
		name     string
		file     string
		content  string
		document int
	}{
		{"BadYAMLSecondDocument", "bad.yaml", "a: 1\n---\nb: [1, 2\n", 1},
		{"TopLevelSequence", "seq.yaml", "- 1\n- 2\n", 0},
		{"TopLevelScalar", "scalar.yaml", "a: 1\n---\n42\n", 1},
		{"BadJSON", "bad.json", `{"a": }`, 0},
		{"BadTOML", "bad.toml", "a = = 1\n", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tmpDir, tt.file, tt.content)
			_, err := l.Load(tt.file)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrParse)

			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr))
			assert.Equal(t, path, parseErr.Path)
			assert.Equal(t, tt.document, parseErr.Document)
		})
	}
}

func TestLoaderSecurity(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, "big.yaml", "data: "+strings.Repeat("x", 2048)+"\n")

	l := &Loader{
		Extension:   DefaultExtension,
		SearchPaths: []string{tmpDir},
		Security:    SecurityOptions{MaxFileSize: 1024},
	}
	_, err := l.Load("big")
	assert.ErrorIs(t, err, ErrFileTooLarge)

	l.Security.MaxFileSize = 4096
	seq, err := l.Load("big")
	require.NoError(t, err)
	assert.Len(t, seq.Documents, 1)
}

func TestLoadAllStopsAtFirstFailure(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, "a.yaml", "a: 1\n")
	l := &Loader{Extension: DefaultExtension, SearchPaths: []string{tmpDir}}

	seqs, err := l.LoadAll([]string{"a", "a"})
	require.NoError(t, err)
	assert.Len(t, seqs, 2)

	seqs, err = l.LoadAll([]string{"a", "nope", "a"})
	assert.ErrorIs(t, err, ErrFileNotFound)
	assert.Nil(t, seqs)
}

func TestParseFormat(t *testing.T) {
	for name, expected := range map[string]Format{
		"":     FormatAuto,
		"auto": FormatAuto,
		"YAML": FormatYAML,
		"yml":  FormatYAML,
		"json": FormatJSON,
		"tml":  FormatTOML,
	} {
		f, err := ParseFormat(name)
		require.NoError(t, err)
		assert.Equal(t, expected, f)
	}

	_, err := ParseFormat("ini")
	assert.Error(t, err)
}
