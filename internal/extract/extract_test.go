package extract

import (
	"strings"
	"testing"

	"github.com/IshaanBansal2006/p5-sub000/internal/types"
)

func TestErrors_ESLint(t *testing.T) {
	raw := strings.Join([]string{
		"src/app.ts:10:5: error 'x' is assigned a value but never used",
		"src/app.ts:22:1: warning Unexpected console statement",
		"",
		"2 problems",
	}, "\n")

	errs := Errors("lint", raw, types.TaskResult{Name: "lint", DurationMs: 1200})

	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %d: %+v", len(errs), errs)
	}

	first := errs[0]
	if first.Kind != types.KindLint {
		t.Errorf("kind = %q, want lint", first.Kind)
	}
	if first.Severity != types.SeverityError {
		t.Errorf("severity = %q, want error", first.Severity)
	}
	if first.Message != "'x' is assigned a value but never used" {
		t.Errorf("message = %q", first.Message)
	}
	if first.Location == nil || first.Location.File != "src/app.ts" || first.Location.Line != 10 || first.Location.Column != 5 {
		t.Errorf("location = %+v", first.Location)
	}
	if first.DurationMs != 1200 {
		t.Errorf("duration = %d, want 1200", first.DurationMs)
	}

	if errs[1].Severity != types.SeverityWarning {
		t.Errorf("second severity = %q, want warning", errs[1].Severity)
	}
}

func TestErrors_TSC(t *testing.T) {
	raw := "src/model.ts(3,1): error TS2322: Type 'string' is not assignable to type 'number'."

	errs := Errors("typecheck", raw, types.TaskResult{Name: "typecheck"})

	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d", len(errs))
	}
	e := errs[0]
	if e.Kind != types.KindTypecheck {
		t.Errorf("kind = %q, want typecheck", e.Kind)
	}
	if e.Message != "TS2322: Type 'string' is not assignable to type 'number'." {
		t.Errorf("message = %q", e.Message)
	}
	if e.Location == nil || e.Location.File != "src/model.ts" || e.Location.Line != 3 || e.Location.Column != 1 {
		t.Errorf("location = %+v", e.Location)
	}
}

func TestErrors_FallbackGeneric(t *testing.T) {
	raw := "npm ERR! Build failed\nwebpack exited with code 2"

	errs := Errors("build", raw, types.TaskResult{Name: "build"})

	if len(errs) != 1 {
		t.Fatalf("expected single generic error, got %d", len(errs))
	}
	e := errs[0]
	if e.Kind != types.KindBuild {
		t.Errorf("kind = %q, want build", e.Kind)
	}
	if e.Message != strings.TrimSpace(raw) {
		t.Errorf("message = %q", e.Message)
	}
	if e.RawOutput != raw {
		t.Errorf("raw output must carry the full text")
	}
}

func TestErrors_FallbackEmptyOutput(t *testing.T) {
	errs := Errors("test", "", types.TaskResult{Name: "test"})

	if len(errs) != 1 {
		t.Fatalf("expected single generic error, got %d", len(errs))
	}
	if errs[0].Message != "test failed with no diagnostic output" {
		t.Errorf("message = %q", errs[0].Message)
	}
	if errs[0].Kind != types.KindTest {
		t.Errorf("kind = %q, want test", errs[0].Kind)
	}
}

func TestErrors_UnparseableLintFallsBack(t *testing.T) {
	// Lint output in an unexpected format still yields one record.
	raw := "Oops, eslint could not load its config"

	errs := Errors("lint", raw, types.TaskResult{Name: "lint"})

	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d", len(errs))
	}
	if errs[0].Location != nil {
		t.Errorf("generic record should carry no location, got %+v", errs[0].Location)
	}
}

func TestKindForTask(t *testing.T) {
	tests := []struct {
		task string
		want types.ErrorKind
	}{
		{"lint", types.KindLint},
		{"typecheck", types.KindTypecheck},
		{"build", types.KindBuild},
		{"test", types.KindTest},
		{"website", types.KindWebsite},
		{"mystery", types.KindUnknown},
	}
	for _, tt := range tests {
		if got := kindForTask(tt.task); got != tt.want {
			t.Errorf("kindForTask(%q) = %q, want %q", tt.task, got, tt.want)
		}
	}
}
