package config

import (
	"strings"
	"testing"
)

func TestParse_FullConfig(t *testing.T) {
	data := []byte(`
work_root: /opt/toolchains
targets:
  - name: engine
    steps:
      - name: fetch
        program: git
        args: ["clone", "https://example.com/engine.git"]
        unless_exists: engine
      - name: build
        program: ninja
        dir: engine
        spinner: true
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.WorkRoot != "/opt/toolchains" {
		t.Fatalf("WorkRoot = %q", cfg.WorkRoot)
	}
	if len(cfg.Targets) != 1 || cfg.Targets[0].Name != "engine" {
		t.Fatalf("Targets = %+v", cfg.Targets)
	}
	steps := cfg.Targets[0].Steps
	if len(steps) != 2 || steps[0].UnlessExists != "engine" || !steps[1].Spinner {
		t.Fatalf("Steps = %+v", steps)
	}
}

func TestParse_RequiredFields(t *testing.T) {
	cases := []struct {
		name string
		data string
		want string
	}{
		{"missing target name", "targets:\n  - steps:\n      - name: x\n", "name is required"},
		{"no steps", "targets:\n  - name: empty\n", "defines no steps"},
		{"missing step name", "targets:\n  - name: t\n    steps:\n      - program: git\n", "name is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want %q", err, tc.want)
			}
		})
	}
}

func TestParse_MalformedYAML(t *testing.T) {
	if _, err := Parse([]byte("targets: [unclosed")); err == nil {
		t.Fatal("expected error")
	}
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse(nil): %v", err)
	}
	if len(cfg.Targets) != 0 {
		t.Fatalf("Targets = %+v", cfg.Targets)
	}
}
