package registry

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoad(t *testing.T) {
	table, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var names []string
	for _, d := range table.All() {
		names = append(names, d.Name)
	}

	want := []string{"binutils", "gcc", "sjasm", "sgdk"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("declaration order mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadBuildSets(t *testing.T) {
	table, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	toolchain := table.Toolchain()
	if len(toolchain) != 2 {
		t.Fatalf("len(Toolchain()) = %d, want 2", len(toolchain))
	}
	if toolchain[0].Name != "binutils" || toolchain[1].Name != "gcc" {
		t.Fatalf("toolchain set = %v, want binutils before gcc", toolchain)
	}

	deps := table.Deps()
	if len(deps) != 2 {
		t.Fatalf("len(Deps()) = %d, want 2", len(deps))
	}
	if deps[0].Name != "sjasm" || deps[1].Name != "sgdk" {
		t.Fatalf("deps set = %v, want sjasm before sgdk", deps)
	}
}

func TestLookup(t *testing.T) {
	table, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sgdk, ok := table.Lookup("sgdk")
	if !ok {
		t.Fatal("Lookup(sgdk) not found")
	}
	if sgdk.Kind != KindGit {
		t.Fatalf("sgdk kind = %q, want %q", sgdk.Kind, KindGit)
	}
	if len(sgdk.Sparse) == 0 {
		t.Fatal("sgdk has no sparse allow-list")
	}
	if sgdk.Sparse[len(sgdk.Sparse)-1] != "!/bin" {
		t.Fatalf("sgdk sparse = %v, want trailing !/bin exclusion", sgdk.Sparse)
	}
	if len(sgdk.Build.Variants) != 2 {
		t.Fatalf("sgdk variants = %d, want 2", len(sgdk.Build.Variants))
	}

	if _, ok := table.Lookup("vasm"); ok {
		t.Fatal("Lookup(vasm) = true, want false")
	}
}

func TestVariantOutputsDoNotCollide(t *testing.T) {
	table, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := make(map[string]string)
	for _, d := range table.All() {
		for _, v := range d.Build.Variants {
			for _, out := range v.Outputs {
				if prev, ok := seen[out.Dest]; ok {
					t.Fatalf("output %q produced by both %q and %q", out.Dest, prev, v.Name)
				}
				seen[out.Dest] = v.Name
			}
		}
	}
}

func TestParseRejectsInvalidTables(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "unknown kind",
			raw:  "- name: x\n  kind: svn\n  location: http://example.com\n",
		},
		{
			name: "empty location",
			raw:  "- name: x\n  kind: git\n  ref: main\n",
		},
		{
			name: "git without ref",
			raw:  "- name: x\n  kind: git\n  location: http://example.com\n",
		},
		{
			name: "archive with ref",
			raw:  "- name: x\n  kind: archive\n  location: http://example.com\n  ref: main\n",
		},
		{
			name: "archive with sparse paths",
			raw:  "- name: x\n  kind: archive\n  location: http://example.com\n  sparse: [\"/*\"]\n",
		},
		{
			name: "git with digest",
			raw:  "- name: x\n  kind: git\n  location: http://example.com\n  ref: main\n  digest: sha256:abc\n",
		},
		{
			name: "malformed digest",
			raw:  "- name: x\n  kind: archive\n  location: http://example.com\n  digest: not-a-digest\n",
		},
		{
			name: "duplicate names",
			raw: "- name: x\n  kind: git\n  location: http://example.com\n  ref: main\n" +
				"- name: x\n  kind: git\n  location: http://example.com\n  ref: main\n",
		},
		{
			name: "absolute output dest",
			raw: "- name: x\n  kind: git\n  location: http://example.com\n  ref: main\n" +
				"  build:\n    outputs:\n      - source: a\n        dest: /etc/a\n",
		},
		{
			name: "output dest escaping the tree",
			raw: "- name: x\n  kind: git\n  location: http://example.com\n  ref: main\n" +
				"  build:\n    outputs:\n      - source: a\n        dest: ../a\n",
		},
		{
			name: "variant without name",
			raw: "- name: x\n  kind: git\n  location: http://example.com\n  ref: main\n" +
				"  build:\n    variants:\n      - goals: [release]\n",
		},
		{
			name: "not yaml",
			raw:  "{{{",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse([]byte(tt.raw))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrInvalidTable) {
				t.Fatalf("error = %v, want ErrInvalidTable", err)
			}
		})
	}
}

func TestParseValidDescriptor(t *testing.T) {
	raw := "- name: x\n  kind: archive\n  location: http://example.com/x.tar.xz\n" +
		"  digest: sha256:9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08\n"

	table, err := parse([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	d, ok := table.Lookup("x")
	if !ok {
		t.Fatal("Lookup(x) not found")
	}
	if d.Digest.Algorithm().String() != "sha256" {
		t.Fatalf("digest algorithm = %q, want sha256", d.Digest.Algorithm())
	}
}
