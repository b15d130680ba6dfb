package probe

import (
	"os"
	"path/filepath"
	"testing"
)

func writeProject(t *testing.T, packageJSON string, extraFiles ...string) string {
	t.Helper()
	dir := t.TempDir()
	if packageJSON != "" {
		if err := os.WriteFile(filepath.Join(dir, "package.json"), []byte(packageJSON), 0o644); err != nil {
			t.Fatalf("write package.json: %v", err)
		}
	}
	for _, name := range extraFiles {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func TestProbe_NoManifest(t *testing.T) {
	p := New(t.TempDir())

	if p.HasDependency("eslint") {
		t.Error("no manifest should mean no dependencies")
	}
	if p.HasScript("build") {
		t.Error("no manifest should mean no scripts")
	}
	if p.HasLinter() || p.HasTypeChecker() || p.HasBuild() || p.HasTests() {
		t.Error("bare directory must probe negative for every tool")
	}
}

func TestProbe_MalformedManifest(t *testing.T) {
	dir := writeProject(t, "{not json")
	p := New(dir)

	if p.HasDependency("eslint") || p.HasScript("test") {
		t.Error("unparsable manifest must behave like a missing one")
	}
}

func TestProbe_Dependencies(t *testing.T) {
	dir := writeProject(t, `{
		"dependencies": {"react": "^18.0.0"},
		"devDependencies": {"eslint": "^9.0.0", "typescript": "^5.4.0"}
	}`)
	p := New(dir)

	tests := []struct {
		name string
		dep  string
		want bool
	}{
		{"RuntimeDep", "react", true},
		{"DevDep", "eslint", true},
		{"DevDep2", "typescript", true},
		{"Absent", "vitest", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.HasDependency(tt.dep); got != tt.want {
				t.Errorf("HasDependency(%q) = %v, want %v", tt.dep, got, tt.want)
			}
		})
	}

	if !p.HasLinter() {
		t.Error("eslint devDependency should enable the linter probe")
	}
	if !p.HasTypeChecker() {
		t.Error("typescript devDependency should enable the typecheck probe")
	}
}

func TestProbe_ConfigFileFallbacks(t *testing.T) {
	// No deps declared, but config files exist on disk.
	dir := writeProject(t, `{"scripts": {}}`, "eslint.config.js", "tsconfig.json")
	p := New(dir)

	if !p.HasLinter() {
		t.Error("eslint.config.js should enable the linter probe")
	}
	if !p.HasTypeChecker() {
		t.Error("tsconfig.json should enable the typecheck probe")
	}
}

func TestProbe_Scripts(t *testing.T) {
	dir := writeProject(t, `{
		"scripts": {
			"build": "next build",
			"test": "vitest run",
			"dev": "next dev --port 4100",
			"start": "node server.js"
		}
	}`)
	p := New(dir)

	if !p.HasBuild() {
		t.Error("declared build script should probe positive")
	}
	if !p.HasTests() {
		t.Error("declared test script should probe positive")
	}
	if got := p.Script("build"); got != "next build" {
		t.Errorf("Script(build) = %q", got)
	}
	if got := p.StartCommand(); got != "next dev --port 4100" {
		t.Errorf("StartCommand should prefer dev over start, got %q", got)
	}
}

func TestProbe_StartCommandFallsBackToStart(t *testing.T) {
	dir := writeProject(t, `{"scripts": {"start": "node server.js"}}`)
	p := New(dir)

	if got := p.StartCommand(); got != "node server.js" {
		t.Errorf("StartCommand = %q, want start script", got)
	}
}
