// FILE: lixenwraith/compose/io_test.go
package compose

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	cfg := NewConfiguration(Mapping{
		"name":   str("app"),
		"server": Mapping{"port": i64(8080)},
		"unset":  Null{},
	})

	t.Run("YAML", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, cfg.Encode(&buf, FormatYAML))
		assert.Equal(t, "name: app\nserver:\n  port: 8080\nunset: null\n", buf.String())
	})

	t.Run("JSON", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, cfg.Encode(&buf, FormatJSON))
		assert.JSONEq(t, `{"name":"app","server":{"port":8080},"unset":null}`, buf.String())
	})

	t.Run("TOMLDropsNulls", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, cfg.Encode(&buf, FormatTOML))
		assert.Contains(t, buf.String(), `name = "app"`)
		assert.Contains(t, buf.String(), "[server]")
		assert.NotContains(t, buf.String(), "unset")
	})

	t.Run("UnknownFormat", func(t *testing.T) {
		assert.Error(t, cfg.Encode(&bytes.Buffer{}, Format("ini")))
	})
}

// TestSaveRoundTrip saves a configuration in each format and reads it back
func TestSaveRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := NewConfiguration(Mapping{
		"type":   str("svc"),
		"server": Mapping{"host": str("localhost"), "port": i64(8080)},
	})

	for _, name := range []string{"out.yaml", "out.json", "out.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(tmpDir, "nested", name)
			require.NoError(t, cfg.Save(path))

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(0644), info.Mode().Perm())

			l := &Loader{}
			seq, err := l.Load(path)
			require.NoError(t, err)
			require.Len(t, seq.Documents, 1)
			assert.True(t, Equal(cfg.Data(), seq.Documents[0]), "round trip of %s", name)
		})
	}

	entries, err := os.ReadDir(filepath.Join(tmpDir, "nested"))
	require.NoError(t, err)
	assert.Len(t, entries, 3, "temporary files must not remain")
}
