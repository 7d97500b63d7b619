package cli

import (
	"os"
	"slices"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

func resolveFlag(t *testing.T, r kong.Resolver, name string) any {
	t.Helper()

	v, err := r.Resolve(nil, nil, &kong.Flag{Value: &kong.Value{Name: name}})
	if err != nil {
		t.Fatalf("Resolve(%s): %v", name, err)
	}

	return v
}

func TestLoadVerse(t *testing.T) {
	src := `# flags
log_level := "debug"
log_pretty := false
depth := 2 * 3
ratio := 0.25
path := "/opt/verse,/srv/verse"
`

	r, err := loadVerse(t.Context())(strings.NewReader(src))
	if err != nil {
		t.Fatalf("loadVerse: %v", err)
	}

	tests := []struct {
		flag string
		want any
	}{
		{"log_level", "debug"},
		{"log-level", "debug"},
		{"log-pretty", false},
		{"depth", "6"},
		{"ratio", "0.25"},
		{"path", "/opt/verse,/srv/verse"},
		{"missing", nil},
	}

	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			if got := resolveFlag(t, r, tt.flag); got != tt.want {
				t.Errorf("%s = %#v, want %#v", tt.flag, got, tt.want)
			}
		})
	}
}

func TestLoadVerse_Broken(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", `log_level := (`},
		{"runtime", `log_level := 1 / 0`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := loadVerse(t.Context())(strings.NewReader(tt.src))
			if err != nil {
				t.Fatalf("loadVerse: %v", err)
			}

			if got := resolveFlag(t, r, "log-level"); got != nil {
				t.Errorf("log-level = %#v, want nil", got)
			}
		})
	}
}

func TestLoadYAML(t *testing.T) {
	src := `log-level: warn
log_caller: true
depth: 4
path:
  - /a
  - /b
`

	r, err := loadYAML(strings.NewReader(src))
	if err != nil {
		t.Fatalf("loadYAML: %v", err)
	}

	if got := resolveFlag(t, r, "log-level"); got != "warn" {
		t.Errorf("log-level = %#v", got)
	}

	if got := resolveFlag(t, r, "log-caller"); got != true {
		t.Errorf("log-caller = %#v", got)
	}

	if got := resolveFlag(t, r, "depth"); got != "4" {
		t.Errorf("depth = %#v", got)
	}

	list, ok := resolveFlag(t, r, "path").([]any)
	if !ok || !slices.Equal(list, []any{"/a", "/b"}) {
		t.Errorf("path = %#v", list)
	}
}

func TestLoadYAML_Empty(t *testing.T) {
	r, err := loadYAML(strings.NewReader(""))
	if err != nil {
		t.Fatalf("loadYAML: %v", err)
	}

	if got := resolveFlag(t, r, "anything"); got != nil {
		t.Errorf("anything = %#v", got)
	}
}

func TestLoadYAML_Invalid(t *testing.T) {
	if _, err := loadYAML(strings.NewReader("key: [unclosed")); err == nil {
		t.Error("expected error")
	}
}

func TestFlagValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want any
	}{
		{"int", 7, "7"},
		{"int64", int64(-3), "-3"},
		{"uint64", uint64(9), "9"},
		{"float", 1.5, "1.5"},
		{"bool", true, true},
		{"string", "s", "s"},
		{"nil", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := flagValue(tt.in); got != tt.want {
				t.Errorf("flagValue(%#v) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}

	got, ok := flagValue([]string{"x", "y"}).([]any)
	if !ok || !slices.Equal(got, []any{"x", "y"}) {
		t.Errorf("flagValue([]string) = %#v", got)
	}

	nested, ok := flagValue([]any{1, "z"}).([]any)
	if !ok || !slices.Equal(nested, []any{"1", "z"}) {
		t.Errorf("flagValue([]any) = %#v", nested)
	}
}

func TestSearchPath(t *testing.T) {
	sep := string(os.PathListSeparator)

	t.Setenv(pathEnv, strings.Join([]string{"/b", "", "/c"}, sep))

	got := searchPath([]string{"/a", "/b"})
	if !slices.Equal(got, []string{"/a", "/b", "/c"}) {
		t.Errorf("searchPath = %q", got)
	}

	t.Setenv(pathEnv, "")

	if got := searchPath(nil); len(got) != 0 {
		t.Errorf("empty searchPath = %q", got)
	}
}

func TestBoolFlag(t *testing.T) {
	tests := []struct {
		value    string
		assigned bool
		negated  bool
		on, ok   bool
	}{
		{"", false, false, true, true},
		{"", false, true, false, true},
		{"false", true, false, false, true},
		{"true", true, true, false, true},
		{"maybe", true, false, false, false},
	}

	for _, tt := range tests {
		on, ok := boolFlag(tt.value, tt.assigned, tt.negated)
		if on != tt.on || ok != tt.ok {
			t.Errorf("boolFlag(%q, %v, %v) = %v, %v; want %v, %v",
				tt.value, tt.assigned, tt.negated, on, ok, tt.on, tt.ok)
		}
	}
}

func TestLogConfig_Scan(t *testing.T) {
	var f logConfig

	f.Pretty = true

	f.scan([]string{"run", "--log-level", "debug", "--no-log-pretty", "--log-caller=true", "--", "--log-format=json"})

	if f.Level != "debug" {
		t.Errorf("Level = %q", f.Level)
	}

	if f.Pretty {
		t.Error("Pretty not negated")
	}

	if !f.Caller {
		t.Error("Caller not set")
	}

	if f.Format != "" {
		t.Errorf("Format = %q, flags after -- must be ignored", f.Format)
	}
}
