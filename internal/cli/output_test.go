package cli

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Success(map[string]string{"path": ".plotcheck.yaml"}))

	resp := decodeResponse(t, buf.String())
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Error)
	assert.Equal(t, map[string]any{"path": ".plotcheck.yaml"}, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Error(ErrCodeNotFound, "expectation file not found", map[string]string{"file": "x.cue"}))

	resp := decodeResponse(t, buf.String())
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
	assert.Equal(t, "expectation file not found", resp.Error.Message)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_Result(t *testing.T) {
	t.Run("json ok", func(t *testing.T) {
		buf := &bytes.Buffer{}
		formatter := &OutputFormatter{Format: "json", Writer: buf}
		require.NoError(t, formatter.Result(TestResult{Total: 1, Passed: 1}, nil))
		assert.Equal(t, "ok", decodeResponse(t, buf.String()).Status)
	})

	t.Run("json failed keeps data", func(t *testing.T) {
		buf := &bytes.Buffer{}
		formatter := &OutputFormatter{Format: "json", Writer: buf}
		require.NoError(t, formatter.Result(TestResult{Total: 1, Failed: 1}, &CLIError{Code: ErrCodeTestFailed, Message: "1 scenario(s) failed"}))

		resp := decodeResponse(t, buf.String())
		assert.Equal(t, "error", resp.Status)
		assert.NotNil(t, resp.Data)
		assert.Equal(t, ErrCodeTestFailed, resp.Error.Code)
	})

	t.Run("text writes nothing", func(t *testing.T) {
		buf := &bytes.Buffer{}
		formatter := &OutputFormatter{Format: "text", Writer: buf}
		require.NoError(t, formatter.Result(TestResult{}, nil))
		assert.Empty(t, buf.String())
	})
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf, Verbose: true}

	require.NoError(t, formatter.Error(ErrCodeConfig, "invalid configuration", map[string]string{"field": "parallel"}))
	assert.Contains(t, buf.String(), "Error [E_CONFIG]: invalid configuration")
	assert.Contains(t, buf.String(), "Details:")
}

func TestOutputFormatter_VerboseLogGoesToErrWriter(t *testing.T) {
	out, diag := &bytes.Buffer{}, &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: out, ErrWriter: diag, Verbose: true}

	formatter.VerboseLog("Running %d scenario(s)", 3)
	assert.Empty(t, out.String())
	assert.Equal(t, "Running 3 scenario(s)\n", diag.String())

	formatter.Verbose = false
	formatter.VerboseLog("hidden")
	assert.NotContains(t, diag.String(), "hidden")
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"failure", NewExitError(ExitFailure, "2 checks failed"), ExitFailure},
		{"wrapped", fmt.Errorf("outer: %w", WrapExitError(ExitCommandError, "bad config", errors.New("boom"))), ExitCommandError},
		{"plain error", errors.New("accepts 1 arg(s), received 0"), ExitCommandError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestExitError_Message(t *testing.T) {
	err := WrapExitError(ExitCommandError, "invalid configuration", errors.New("parallel must be at least 1"))
	assert.Equal(t, "invalid configuration: parallel must be at least 1", err.Error())
	assert.Equal(t, "parse failed", NewExitError(ExitFailure, "parse failed").Error())
}
