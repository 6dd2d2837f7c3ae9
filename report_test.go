// FILE: lixenwraith/compose/report_test.go
package compose

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReporterSummary(t *testing.T) {
	configs := configsOf(
		Mapping{"a": i64(1)},
		Mapping{"a": i64(2), "b": Mapping{"x": str("v")}},
	)
	files := []string{"base.yaml", "run.yaml"}

	t.Run("Quiet", func(t *testing.T) {
		var buf bytes.Buffer
		NewReporter(&buf, nil).Summary(VerbosityQuiet, configs, files)
		assert.Empty(t, buf.String())
	})

	t.Run("Summary", func(t *testing.T) {
		var buf bytes.Buffer
		NewReporter(&buf, nil).Summary(VerbositySummary, configs, files)
		assert.Equal(t, "- Read 2 config(s) from base.yaml << run.yaml\n", buf.String())
	})

	t.Run("Full", func(t *testing.T) {
		var buf bytes.Buffer
		NewReporter(&buf, nil).Summary(VerbosityFull, configs, files)
		expected := "- Read 2 config(s) from base.yaml << run.yaml\n" +
			"- CONFIG 1/2:\na: 1\n" +
			"- CONFIG 2/2:\na: 2\nb:\n  x: v\n"
		assert.Equal(t, expected, buf.String())
	})

	t.Run("NoConfigurations", func(t *testing.T) {
		var buf bytes.Buffer
		NewReporter(&buf, nil).Summary(VerbosityFull, nil, []string{"empty.yaml"})
		assert.Equal(t, "- Read 0 config(s) from empty.yaml\n", buf.String())
	})
}

func TestReporterFail(t *testing.T) {
	cause := errors.New("something broke")

	t.Run("Warning", func(t *testing.T) {
		var buf bytes.Buffer
		err := NewReporter(&buf, nil).Fail("loader", cause, true)
		assert.NoError(t, err)
		assert.Equal(t, "- WARNING from loader - something broke\n", buf.String())
	})

	t.Run("Fatal", func(t *testing.T) {
		var out, logs bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&logs, nil))

		err := NewReporter(&out, logger).Fail("loader", cause, false)
		require.Error(t, err)
		assert.Empty(t, out.String())
		assert.Equal(t, "ERROR from loader - something broke", err.Error())
		assert.ErrorIs(t, err, cause)

		var fatal *FatalError
		require.True(t, errors.As(err, &fatal))
		assert.Equal(t, "loader", fatal.Source)
		assert.Contains(t, logs.String(), "level=ERROR")
		assert.Contains(t, logs.String(), "source=loader")
	})
}
