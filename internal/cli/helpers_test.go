package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const passScenario = `name: colors
figure:
  canvas: {x: 0, y: 0, width: 640, height: 480}
  subplots:
    - id: ax0
      groups:
        - kind: point-cloud
          elements:
            - {color: "#ff0000", marker: o}
            - {color: "#00ff00", marker: o}
expect:
  expected_channels:
    ax0: [color]
`

const failScenario = `name: constant_marker
figure:
  canvas: {x: 0, y: 0, width: 640, height: 480}
  subplots:
    - id: ax0
      groups:
        - kind: point-cloud
          elements:
            - {color: "#ff0000", marker: o}
            - {color: "#00ff00", marker: o}
expect:
  expected_channels:
    ax0: [marker]
want_pass: false
`

// newRootOpts returns options isolated from any project config in the
// working directory.
func newRootOpts(t *testing.T, format string) *RootOptions {
	t.Helper()
	return &RootOptions{Format: format, NoColor: true, ProjectDir: t.TempDir()}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func execute(cmd *cobra.Command, args ...string) (string, error) {
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func decodeResponse(t *testing.T, out string) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	return resp
}
