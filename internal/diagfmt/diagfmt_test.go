package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gscript/internal/diag"
	"gscript/internal/source"
)

func newFixture(t *testing.T) (*diag.Bag, *source.FileSet) {
	t.Helper()
	fs := source.NewFileSet()
	fid := fs.AddVirtual("sample.sp", []byte("int y = x + 1;\n"))

	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.ErrUndefinedSymbol, source.Span{File: fid, Start: 8, End: 9}, "undefined symbol 'x'").
		WithNote(source.Span{File: fid, Start: 4, End: 5}, "declared here"))
	return bag, fs
}

func TestPrettyRendersHeaderAndExcerpt(t *testing.T) {
	bag, fs := newFixture(t)

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Color: false, PathMode: PathModeBasename, ShowNotes: true, ShowFixes: true})

	out := buf.String()
	if !strings.Contains(out, "sample.sp:1:9") {
		t.Fatalf("expected header with file:line:col, got:\n%s", out)
	}
	if !strings.Contains(out, "E0017") {
		t.Fatalf("expected diagnostic code in output, got:\n%s", out)
	}
	if !strings.Contains(out, "int y = x + 1;") {
		t.Fatalf("expected source excerpt line, got:\n%s", out)
	}
	if !strings.Contains(out, "declared here") {
		t.Fatalf("expected note to be rendered when ShowNotes is set, got:\n%s", out)
	}
}

func TestPrettyOmitsNotesWhenDisabled(t *testing.T) {
	bag, fs := newFixture(t)

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename, ShowNotes: false})

	if strings.Contains(buf.String(), "declared here") {
		t.Fatalf("expected note to be omitted when ShowNotes is false")
	}
}

func TestJSONEncodesOneObjectPerDiagnostic(t *testing.T) {
	bag, fs := newFixture(t)

	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{PathMode: PathModeBasename, IncludeNotes: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected exactly one JSON line for one diagnostic, got %d", len(lines))
	}

	var got DiagnosticJSON
	if err := json.Unmarshal([]byte(lines[0]), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.Code != "E0017" {
		t.Fatalf("expected code E0017, got %q", got.Code)
	}
	if got.Severity != "ERROR" {
		t.Fatalf("expected severity 'ERROR', got %q", got.Severity)
	}
	if len(got.Notes) != 1 {
		t.Fatalf("expected one note in JSON output, got %d", len(got.Notes))
	}
	if got.Location.File != "sample.sp" {
		t.Fatalf("expected basename path, got %q", got.Location.File)
	}
}

func TestJSONOmitsNotesWhenDisabled(t *testing.T) {
	bag, fs := newFixture(t)

	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{PathMode: PathModeBasename}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got DiagnosticJSON
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(got.Notes) != 0 {
		t.Fatalf("expected no notes when IncludeNotes is false, got %+v", got.Notes)
	}
}
