package cli

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		t.Fatalf("read stdout: %v", err)
	}
	return buf.String()
}

// resetFlags clears flag variables left over from a previous RootCmd.Execute.
func resetFlags() {
	rootPath, configPath, logLevel = "", "", ""
	listJSON, syncJSON, configForce = false, false, false
	serveAddr, serveLogFormat = "", ""
	mcpTransport, mcpAddr = "stdio", ":8080"
}

// runCLI executes the root command against a workspace and returns what it printed.
func runCLI(t *testing.T, root string, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	t.Setenv("KANBAN_GOOGLE_TASKS_ENABLED", "false")
	t.Setenv("KANBAN_LOG_LEVEL", "error")

	var stderr bytes.Buffer
	RootCmd.SetErr(&stderr)
	RootCmd.SetArgs(append([]string{"--root", root}, args...))

	var err error
	out := captureStdout(t, func() {
		err = RootCmd.Execute()
	})
	return out, err
}

// createTask runs "kanban create" and returns the new id.
func createTask(t *testing.T, root string, args ...string) string {
	t.Helper()
	out, err := runCLI(t, root, append([]string{"create"}, args...)...)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	fields := strings.Fields(out)
	if len(fields) < 3 || fields[0] != "Created" {
		t.Fatalf("unexpected create output %q", out)
	}
	return fields[2]
}
