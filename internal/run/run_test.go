package run

import (
	"errors"
	"strings"
	"testing"
)

func TestExecCapturesOutput(t *testing.T) {
	res, err := Exec{}.Run(t.Context(), Command{
		Path: "sh",
		Args: []string{"-c", "echo out; echo err >&2"},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.ExitCode != 0 {
		t.Fatalf("Run() exit code = %d, want 0", res.ExitCode)
	}
	if got := strings.TrimSpace(res.Stdout); got != "out" {
		t.Fatalf("Run() stdout = %q, want %q", got, "out")
	}
	if got := strings.TrimSpace(res.Stderr); got != "err" {
		t.Fatalf("Run() stderr = %q, want %q", got, "err")
	}
}

func TestExecReportsExitCode(t *testing.T) {
	res, err := Exec{}.Run(t.Context(), Command{
		Path: "sh",
		Args: []string{"-c", "exit 7"},
	})
	if err != nil {
		t.Fatalf("Run() error = %v, want exit code as data", err)
	}
	if res.ExitCode != 7 {
		t.Fatalf("Run() exit code = %d, want 7", res.ExitCode)
	}
}

func TestExecStartFailure(t *testing.T) {
	_, err := Exec{}.Run(t.Context(), Command{
		Path: "sgdk-helper-does-not-exist",
	})
	if !errors.Is(err, ErrStart) {
		t.Fatalf("Run() error = %v, want ErrStart", err)
	}
}

func TestExecWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	res, err := Exec{}.Run(t.Context(), Command{
		Path: "pwd",
		Dir:  dir,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := strings.TrimSpace(res.Stdout); got != dir {
		t.Fatalf("Run() in %q ran in %q", dir, got)
	}
}
