package http

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseFunction_Defaults(t *testing.T) {
	fn, err := ParseFunction([]byte("description: test\n"), "hello")
	if err != nil {
		t.Fatal(err)
	}
	if fn.Name != "hello" || fn.Handler != "hello" {
		t.Errorf("name/handler = %q/%q", fn.Name, fn.Handler)
	}
	if fn.Timeout != DefaultTimeout || fn.Memory != DefaultMemory {
		t.Errorf("timeout/memory = %d/%d", fn.Timeout, fn.Memory)
	}
	if fn.Alias != "hello" {
		t.Errorf("Alias = %q", fn.Alias)
	}
}

func TestParseFunction_EnvSubstitution(t *testing.T) {
	t.Setenv("HELLO_STAGE", "dev")
	t.Setenv("HELLO_TABLE", "items")

	b := []byte(`
function_name: hello-${HELLO_STAGE}
handler: hello
timeout: 10
environment:
  TABLE: ${HELLO_TABLE}-${HELLO_STAGE}
  PORT: 8080
`)
	fn, err := ParseFunction(b, "hello")
	if err != nil {
		t.Fatal(err)
	}
	if fn.Name != "hello-dev" {
		t.Errorf("Name = %q", fn.Name)
	}
	if fn.Timeout != 10 {
		t.Errorf("Timeout = %d", fn.Timeout)
	}
	if fn.Environment["TABLE"] != "items-dev" || fn.Environment["PORT"] != "8080" {
		t.Errorf("Environment = %v", fn.Environment)
	}
}

func TestParseFunction_NumericFieldsFromEnv(t *testing.T) {
	t.Setenv("HELLO_TIMEOUT", "10")
	t.Setenv("HELLO_MEMORY", " 256 ")

	fn, err := ParseFunction([]byte("handler: hello\ntimeout: ${HELLO_TIMEOUT}\nmemory: ${HELLO_MEMORY}\n"), "hello")
	if err != nil {
		t.Fatalf("ParseFunction() error = %v", err)
	}
	if fn.Timeout != 10 || fn.Memory != 256 {
		t.Errorf("timeout/memory = %d/%d, want 10/256", fn.Timeout, fn.Memory)
	}

	t.Setenv("HELLO_TIMEOUT", "soon")
	if _, err := ParseFunction([]byte("timeout: ${HELLO_TIMEOUT}\n"), "hello"); err == nil || !strings.Contains(err.Error(), `invalid integer "soon"`) {
		t.Errorf("error = %v, want invalid integer", err)
	}
}

func TestParseFunction_UndefinedVariable(t *testing.T) {
	_, err := ParseFunction([]byte("function_name: ${HELLO_SURELY_UNDEFINED_VAR}\n"), "hello")
	if err == nil || !strings.Contains(err.Error(), "HELLO_SURELY_UNDEFINED_VAR is not defined") {
		t.Errorf("error = %v", err)
	}
}

func TestLoadFunctions(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("hello.yaml", "function_name: hello-world\n")
	write("other.yml", "handler: hello\n")
	write("README.md", "ignored")

	functions, err := LoadFunctions(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(functions) != 2 {
		t.Fatalf("len = %d, want 2", len(functions))
	}

	table, err := newFunctionTable(functions)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"hello-world", "hello", "other"} {
		if _, ok := table[name]; !ok {
			t.Errorf("function %q not resolvable", name)
		}
	}
	if table["hello"] != table["hello-world"] {
		t.Error("alias should point at the same function")
	}
}

func TestLoadFunctions_Errors(t *testing.T) {
	if _, err := LoadFunctions(filepath.Join(t.TempDir(), "missing")); err == nil || !strings.Contains(err.Error(), "config directory not found") {
		t.Errorf("error = %v", err)
	}
	if _, err := LoadFunctions(t.TempDir()); err == nil || !strings.Contains(err.Error(), "no function configs found") {
		t.Errorf("error = %v", err)
	}
}

func TestNewFunctionTable_Duplicate(t *testing.T) {
	_, err := newFunctionTable([]Function{
		{Name: "hello", Alias: "a"},
		{Name: "hello", Alias: "b"},
	})
	if err == nil || !strings.Contains(err.Error(), "duplicate function name") {
		t.Errorf("error = %v", err)
	}
}

func TestNewFunctionTable_NameBeatsAlias(t *testing.T) {
	first := Function{Name: "hello-world", Alias: "hello", Handler: "a"}
	second := Function{Name: "hello", Alias: "other", Handler: "b"}

	table, err := newFunctionTable([]Function{first, second})
	if err != nil {
		t.Fatalf("newFunctionTable() error = %v", err)
	}
	if got := table["hello"].Handler; got != "b" {
		t.Errorf("hello resolves to handler %q, want the function named hello", got)
	}
	if got := table["hello-world"].Handler; got != "a" {
		t.Errorf("hello-world resolves to handler %q", got)
	}
	if got := table["other"].Handler; got != "b" {
		t.Errorf("alias other resolves to handler %q", got)
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("HELLO_FROM_ENV_FILE=yes\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HELLO_FROM_ENV_FILE", "")
	os.Unsetenv("HELLO_FROM_ENV_FILE")

	if err := LoadEnvFile(path); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv("HELLO_FROM_ENV_FILE"); got != "yes" {
		t.Errorf("HELLO_FROM_ENV_FILE = %q", got)
	}

	if err := LoadEnvFile(filepath.Join(dir, "missing.env")); err != nil {
		t.Errorf("missing env file should be skipped, got %v", err)
	}
}
