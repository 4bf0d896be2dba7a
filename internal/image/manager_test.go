package image

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tlsa/sgdk-helper/internal/engine"
	"github.com/tlsa/sgdk-helper/internal/run"
)

// Records engine invocations and snapshots each build's context
// directory, since the manager removes it afterwards.
type fakeEngine struct {
	commands []run.Command
	codes    []int
	contexts [][]string
}

func (f *fakeEngine) Run(_ context.Context, cmd run.Command) (*run.Result, error) {
	i := len(f.commands)
	f.commands = append(f.commands, cmd)

	if cmd.Args[0] == "build" {
		dir := cmd.Args[len(cmd.Args)-1]
		entries, _ := os.ReadDir(dir)
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		slices.Sort(names)
		f.contexts = append(f.contexts, names)
	}

	code := 0
	if i < len(f.codes) {
		code = f.codes[i]
	}
	return &run.Result{ExitCode: code}, nil
}

func (f *fakeEngine) ops() []string {
	var out []string
	for _, cmd := range f.commands {
		switch cmd.Args[0] {
		case "image":
			out = append(out, "inspect "+cmd.Args[2])
		case "build":
			out = append(out, "build "+cmd.Args[2])
		}
	}
	return out
}

func testManager(t *testing.T, fake *fakeEngine) *Manager {
	t.Helper()
	m := NewManager(engine.New("docker", fake), false)
	m.runtimeDir = t.TempDir()

	self := filepath.Join(t.TempDir(), "sgdk-helper")
	if err := os.WriteFile(self, []byte("fake binary"), 0o755); err != nil {
		t.Fatal(err)
	}
	m.executable = func() (string, error) { return self, nil }
	return m
}

func assertRuntimeDirEmpty(t *testing.T, m *Manager) {
	t.Helper()
	entries, err := os.ReadDir(m.runtimeDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("transient context left behind: %v", entries)
	}
}

func TestEnsureToolchainShortCircuits(t *testing.T) {
	fake := &fakeEngine{codes: []int{0}}
	m := testManager(t, fake)

	if err := m.EnsureToolchain(t.Context()); err != nil {
		t.Fatalf("EnsureToolchain() error = %v", err)
	}

	want := []string{"inspect " + ToolchainTag}
	if diff := cmp.Diff(want, fake.ops()); diff != "" {
		t.Fatalf("engine ops mismatch (-want +got):\n%s", diff)
	}
}

func TestEnsureToolchainBuildsWhenAbsent(t *testing.T) {
	fake := &fakeEngine{codes: []int{1, 0}}
	m := testManager(t, fake)

	if err := m.EnsureToolchain(t.Context()); err != nil {
		t.Fatalf("EnsureToolchain() error = %v", err)
	}

	want := []string{
		"inspect " + ToolchainTag,
		"build " + ToolchainTag,
	}
	if diff := cmp.Diff(want, fake.ops()); diff != "" {
		t.Fatalf("engine ops mismatch (-want +got):\n%s", diff)
	}

	// The context held the instructions and the tool at build time.
	wantCtx := []string{"Dockerfile", "sgdk-helper"}
	if diff := cmp.Diff(wantCtx, fake.contexts[0]); diff != "" {
		t.Fatalf("build context mismatch (-want +got):\n%s", diff)
	}
	assertRuntimeDirEmpty(t, m)
}

func TestBuildProjectBuildsMissingToolchainFirst(t *testing.T) {
	fake := &fakeEngine{codes: []int{1, 0, 0}}
	m := testManager(t, fake)

	if err := m.BuildProject(t.Context()); err != nil {
		t.Fatalf("BuildProject() error = %v", err)
	}

	want := []string{
		"inspect " + ToolchainTag,
		"build " + ToolchainTag,
		"build " + ProjectTag,
	}
	if diff := cmp.Diff(want, fake.ops()); diff != "" {
		t.Fatalf("engine ops mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildProjectSkipsExistingToolchain(t *testing.T) {
	fake := &fakeEngine{codes: []int{0, 0}}
	m := testManager(t, fake)

	if err := m.BuildProject(t.Context()); err != nil {
		t.Fatalf("BuildProject() error = %v", err)
	}

	want := []string{
		"inspect " + ToolchainTag,
		"build " + ProjectTag,
	}
	if diff := cmp.Diff(want, fake.ops()); diff != "" {
		t.Fatalf("engine ops mismatch (-want +got):\n%s", diff)
	}

	// The project layer inherits the tool from its base.
	wantCtx := []string{"Dockerfile"}
	if diff := cmp.Diff(wantCtx, fake.contexts[0]); diff != "" {
		t.Fatalf("build context mismatch (-want +got):\n%s", diff)
	}
}

func TestEnsureProjectShortCircuits(t *testing.T) {
	fake := &fakeEngine{codes: []int{0}}
	m := testManager(t, fake)

	if err := m.EnsureProject(t.Context()); err != nil {
		t.Fatalf("EnsureProject() error = %v", err)
	}

	want := []string{"inspect " + ProjectTag}
	if diff := cmp.Diff(want, fake.ops()); diff != "" {
		t.Fatalf("engine ops mismatch (-want +got):\n%s", diff)
	}
}

func TestEnsureProjectBuildsWholeChain(t *testing.T) {
	fake := &fakeEngine{codes: []int{1, 1, 0, 0}}
	m := testManager(t, fake)

	if err := m.EnsureProject(t.Context()); err != nil {
		t.Fatalf("EnsureProject() error = %v", err)
	}

	want := []string{
		"inspect " + ProjectTag,
		"inspect " + ToolchainTag,
		"build " + ToolchainTag,
		"build " + ProjectTag,
	}
	if diff := cmp.Diff(want, fake.ops()); diff != "" {
		t.Fatalf("engine ops mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildRemovesContextOnFailure(t *testing.T) {
	fake := &fakeEngine{codes: []int{1, 1}}
	m := testManager(t, fake)

	err := m.EnsureToolchain(t.Context())
	if !errors.Is(err, engine.ErrEngine) {
		t.Fatalf("EnsureToolchain() error = %v, want ErrEngine", err)
	}
	assertRuntimeDirEmpty(t, m)
}
