package registry

import (
	_ "embed"
	"fmt"
	"path"
	"strings"

	"github.com/opencontainers/go-digest"
	"gopkg.in/yaml.v3"
)

// Source kind of a dependency.
type Kind string

const (
	// A flat archive downloaded over HTTP and unpacked in place.
	KindArchive Kind = "archive"

	// A git repository, partially cloned and pinned to a ref.
	KindGit Kind = "git"
)

// Declaration of the dependency table, embedded at build time.
//
//go:embed deps.yaml
var rawTable []byte

// Immutable description of one managed dependency.
type Descriptor struct {
	Name      string        `yaml:"name"`      // Unique name; also the source subdirectory.
	Kind      Kind          `yaml:"kind"`      // Source kind.
	Location  string        `yaml:"location"`  // Archive URL or git clone URL.
	Ref       string        `yaml:"ref"`       // Pinned git ref. Git only.
	Sparse    []string      `yaml:"sparse"`    // Sparse checkout allow-list globs. Git only.
	Digest    digest.Digest `yaml:"digest"`    // Optional content digest. Archives only.
	Toolchain bool          `yaml:"toolchain"` // Member of the cross toolchain build set.
	Build     Rule          `yaml:"build"`     // How to build the fetched source.
}

// Build instructions for a dependency.
//
// $SRC, $OUT, and $PREFIX placeholders in configure arguments, goals, and
// env values are expanded by the builder against the resolved layout.
type Rule struct {
	Subdir    string            `yaml:"subdir"`    // Directory under the source dir holding the build files.
	Configure []string          `yaml:"configure"` // Arguments for a ./configure step, when present.
	File      string            `yaml:"file"`      // Alternate makefile, passed via -f.
	Env       map[string]string `yaml:"env"`       // Extra environment for build commands.
	Goals     []string          `yaml:"goals"`     // Make goals and variable assignments.
	Variants  []Variant         `yaml:"variants"`  // Variant builds; each is cleaned before building.
	Outputs   []Output          `yaml:"outputs"`   // Artifacts installed into the output tree.
}

// One named build configuration of a dependency.
type Variant struct {
	Name    string   `yaml:"name"`    // Variant name (e.g., "release").
	Goals   []string `yaml:"goals"`   // Goals appended to the rule's goals.
	Outputs []Output `yaml:"outputs"` // Artifacts produced by this variant.
}

// A build artifact installed into the shared output tree.
type Output struct {
	Source string `yaml:"source"` // Path relative to the build directory.
	Dest   string `yaml:"dest"`   // Path relative to the output tree.
	Strip  bool   `yaml:"strip"`  // Strip debug symbols before installing.
}

// Ordered, name-indexed dependency table.
type Table struct {
	descriptors []Descriptor
	byName      map[string]int
}

// Parses the embedded dependency table.
//
// The table is static data; Load fails only when the embedded declaration
// is structurally invalid, which is a build defect rather than a runtime
// condition.
func Load() (*Table, error) {
	return parse(rawTable)
}

// Parses and validates a dependency table declaration.
func parse(raw []byte) (*Table, error) {
	var descriptors []Descriptor
	if err := yaml.Unmarshal(raw, &descriptors); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTable, err)
	}

	t := &Table{
		descriptors: descriptors,
		byName:      make(map[string]int, len(descriptors)),
	}

	for i, d := range descriptors {
		if err := validate(d); err != nil {
			return nil, err
		}
		if _, dup := t.byName[d.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrInvalidTable, d.Name)
		}
		t.byName[d.Name] = i
	}

	return t, nil
}

// Returns all descriptors in declaration order.
func (t *Table) All() []Descriptor {
	return append([]Descriptor(nil), t.descriptors...)
}

// Returns the toolchain build set in declaration order.
func (t *Table) Toolchain() []Descriptor {
	return t.filter(true)
}

// Returns the non-toolchain build set in declaration order.
func (t *Table) Deps() []Descriptor {
	return t.filter(false)
}

func (t *Table) filter(toolchain bool) []Descriptor {
	var out []Descriptor
	for _, d := range t.descriptors {
		if d.Toolchain == toolchain {
			out = append(out, d)
		}
	}
	return out
}

// Looks up a descriptor by name.
func (t *Table) Lookup(name string) (Descriptor, bool) {
	i, ok := t.byName[name]
	if !ok {
		return Descriptor{}, false
	}
	return t.descriptors[i], true
}

// Checks a single descriptor for structural defects.
func validate(d Descriptor) error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s: %s", ErrInvalidTable, d.Name, fmt.Sprintf(format, args...))
	}

	if d.Name == "" {
		return fmt.Errorf("%w: descriptor with empty name", ErrInvalidTable)
	}
	if d.Location == "" {
		return fail("empty location")
	}

	switch d.Kind {
	case KindArchive:
		if d.Ref != "" {
			return fail("ref is only valid for git dependencies")
		}
		if len(d.Sparse) > 0 {
			return fail("sparse paths are only valid for git dependencies")
		}
		if d.Digest != "" {
			if err := d.Digest.Validate(); err != nil {
				return fail("invalid digest: %v", err)
			}
		}
	case KindGit:
		if d.Ref == "" {
			return fail("git dependencies require a pinned ref")
		}
		if d.Digest != "" {
			return fail("digest is only valid for archive dependencies")
		}
	default:
		return fail("unknown kind %q", d.Kind)
	}

	for _, out := range allOutputs(d.Build) {
		if err := validateOutput(out); err != nil {
			return fail("%v", err)
		}
	}
	for _, v := range d.Build.Variants {
		if v.Name == "" {
			return fail("variant with empty name")
		}
	}

	return nil
}

// Returns the rule's outputs plus every variant's outputs.
func allOutputs(r Rule) []Output {
	outs := append([]Output(nil), r.Outputs...)
	for _, v := range r.Variants {
		outs = append(outs, v.Outputs...)
	}
	return outs
}

// Checks that an output has both paths and that the destination stays
// inside the output tree.
func validateOutput(out Output) error {
	if out.Source == "" || out.Dest == "" {
		return fmt.Errorf("output requires source and dest")
	}
	if strings.HasPrefix(out.Dest, "/") {
		return fmt.Errorf("output dest %q must be relative", out.Dest)
	}
	if clean := path.Clean(out.Dest); clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("output dest %q escapes the output tree", out.Dest)
	}
	return nil
}
