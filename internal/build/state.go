package build

import (
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/tlsa/sgdk-helper/internal/paths"
)

// Tracks the environment a dependency build runs in.
//
// Values flow linearly through a build: placeholders resolve against
// the configured layout, rule environment entries overlay the process
// environment, and the output directories are prepended to the search
// path so earlier builds' tools resolve first.
type buildState struct {
	cfg  paths.Config
	env  map[string]string
	vars map[string]string
}

// Creates a build state for the configured layout.
func newBuildState(cfg paths.Config) *buildState {
	return &buildState{
		cfg: cfg,
		env: make(map[string]string),
		vars: map[string]string{
			"SRC":    cfg.Src,
			"OUT":    cfg.Out,
			"PREFIX": cfg.ToolchainDir(),
		},
	}
}

// Persists environment entries, expanding placeholders in the values.
func (s *buildState) apply(env map[string]string) {
	for key, value := range env {
		s.env[key] = s.expand(value)
	}
}

// Expands $SRC, $OUT and $PREFIX placeholders against the layout.
// Unknown placeholders pass through untouched for the build tool to
// interpret.
func (s *buildState) expand(value string) string {
	return os.Expand(value, func(name string) string {
		if resolved, ok := s.vars[name]; ok {
			return resolved
		}
		return "$" + name
	})
}

// Expands every argument in the list.
func (s *buildState) expandAll(args []string) []string {
	out := make([]string, len(args))
	for i, arg := range args {
		out[i] = s.expand(arg)
	}
	return out
}

// Formats the environment for a build command: the given base
// environment with the output directories prepended to PATH and the
// accumulated entries overlaid, rendered in stable order.
func (s *buildState) environ(base []string) []string {
	merged := make(map[string]string, len(base)+len(s.env)+1)
	for _, kv := range base {
		if key, value, ok := strings.Cut(kv, "="); ok {
			merged[key] = value
		}
	}

	searchPath := s.cfg.BinDir() + string(os.PathListSeparator) + s.cfg.ToolchainBin()
	if current := merged["PATH"]; current != "" {
		searchPath += string(os.PathListSeparator) + current
	}
	merged["PATH"] = searchPath
	maps.Copy(merged, s.env)

	env := make([]string, 0, len(merged))
	for _, key := range slices.Sorted(maps.Keys(merged)) {
		env = append(env, key+"="+merged[key])
	}
	return env
}
