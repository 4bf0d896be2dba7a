package build

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/tlsa/sgdk-helper/internal/paths"
)

func lookupEnv(t *testing.T, env []string, key string) string {
	t.Helper()
	for _, kv := range env {
		if v, ok := strings.CutPrefix(kv, key+"="); ok {
			return v
		}
	}
	t.Fatalf("env is missing %s: %v", key, env)
	return ""
}

func TestNewBuildState(t *testing.T) {
	cfg := paths.FromRoot("/deps")
	s := newBuildState(cfg)

	if len(s.env) != 0 {
		t.Fatalf("env = %v, want empty", s.env)
	}
	if got := s.vars["SRC"]; got != cfg.Src {
		t.Fatalf("vars[SRC] = %q, want %q", got, cfg.Src)
	}
	if got := s.vars["OUT"]; got != cfg.Out {
		t.Fatalf("vars[OUT] = %q, want %q", got, cfg.Out)
	}
	if got := s.vars["PREFIX"]; got != cfg.ToolchainDir() {
		t.Fatalf("vars[PREFIX] = %q, want %q", got, cfg.ToolchainDir())
	}
}

func TestApplyExpandsPlaceholders(t *testing.T) {
	cfg := paths.FromRoot("/deps")
	s := newBuildState(cfg)

	s.apply(map[string]string{"GDK": "$SRC/sgdk"})

	want := filepath.Join(cfg.Src, "sgdk")
	if got := s.env["GDK"]; got != want {
		t.Fatalf("env[GDK] = %q, want %q", got, want)
	}
}

func TestExpand(t *testing.T) {
	cfg := paths.FromRoot("/deps")
	s := newBuildState(cfg)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "src", in: "$SRC/sgdk", want: "/deps/src/sgdk"},
		{name: "out", in: "LTO=$OUT/toolchain/lib.so", want: "LTO=/deps/out/toolchain/lib.so"},
		{name: "prefix", in: "--prefix=$PREFIX", want: "--prefix=/deps/out/toolchain"},
		{name: "braced", in: "${OUT}/bin", want: "/deps/out/bin"},
		{name: "unknown kept", in: "$HOME/x", want: "$HOME/x"},
		{name: "no placeholder", in: "release", want: "release"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.expand(tt.in); got != tt.want {
				t.Fatalf("expand(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEnvironPrependsSearchPath(t *testing.T) {
	cfg := paths.FromRoot("/deps")
	s := newBuildState(cfg)

	env := s.environ([]string{"PATH=/usr/bin", "HOME=/root"})

	want := "/deps/out/bin:/deps/out/toolchain/bin:/usr/bin"
	if got := lookupEnv(t, env, "PATH"); got != want {
		t.Fatalf("PATH = %q, want %q", got, want)
	}
	if got := lookupEnv(t, env, "HOME"); got != "/root" {
		t.Fatalf("HOME = %q, want %q", got, "/root")
	}
}

func TestEnvironWithoutBasePath(t *testing.T) {
	cfg := paths.FromRoot("/deps")
	s := newBuildState(cfg)

	env := s.environ(nil)

	want := "/deps/out/bin:/deps/out/toolchain/bin"
	if got := lookupEnv(t, env, "PATH"); got != want {
		t.Fatalf("PATH = %q, want %q", got, want)
	}
}

func TestEnvironOverlayWins(t *testing.T) {
	cfg := paths.FromRoot("/deps")
	s := newBuildState(cfg)
	s.apply(map[string]string{"GDK": "$SRC/sgdk"})

	env := s.environ([]string{"GDK=/elsewhere"})

	want := filepath.Join(cfg.Src, "sgdk")
	if got := lookupEnv(t, env, "GDK"); got != want {
		t.Fatalf("GDK = %q, want %q", got, want)
	}
}

func TestEnvironIsStable(t *testing.T) {
	cfg := paths.FromRoot("/deps")
	s := newBuildState(cfg)
	s.apply(map[string]string{"B": "2", "A": "1", "C": "3"})

	want := strings.Join(s.environ(nil), "\x00")
	for range 16 {
		if got := strings.Join(s.environ(nil), "\x00"); got != want {
			t.Fatalf("environ() not stable:\n%q\n%q", want, got)
		}
	}
}
