package diagfmt

import (
	"bufio"
	"encoding/json"
	"io"

	"gscript/internal/diag"
	"gscript/internal/source"
)

// LocationJSON is the JSON rendering of a source.Span.
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line"`
	StartCol  uint32 `json:"start_col"`
	EndLine   uint32 `json:"end_line"`
	EndCol    uint32 `json:"end_col"`
}

// NoteJSON is the JSON rendering of a diag.Note.
type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// FixEditJSON is the JSON rendering of a diag.FixEdit.
type FixEditJSON struct {
	Location LocationJSON `json:"location"`
	NewText  string       `json:"new_text"`
}

// FixJSON is the JSON rendering of a diag.Fix.
type FixJSON struct {
	Title string        `json:"title"`
	Edits []FixEditJSON `json:"edits,omitempty"`
}

// DiagnosticJSON is one line of the JSON output stream.
type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Title    string       `json:"title"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
	Fixes    []FixJSON    `json:"fixes,omitempty"`
}

func makeLocation(span source.Span, fs *source.FileSet, mode PathMode) LocationJSON {
	loc := LocationJSON{StartByte: span.Start, EndByte: span.End}
	if fs == nil {
		return loc
	}
	f := fs.Get(span.File)
	start, end := fs.Resolve(span)
	switch mode {
	case PathModeAbsolute:
		loc.File = f.FormatPath("absolute", "")
	case PathModeRelative:
		loc.File = f.FormatPath("relative", fs.BaseDir())
	case PathModeBasename:
		loc.File = f.FormatPath("basename", "")
	default:
		loc.File = f.FormatPath("auto", "")
	}
	loc.StartLine, loc.StartCol = start.Line, start.Col
	loc.EndLine, loc.EndCol = end.Line, end.Col
	return loc
}

func toDiagnosticJSON(d diag.Diagnostic, fs *source.FileSet, opts JSONOpts) DiagnosticJSON {
	out := DiagnosticJSON{
		Severity: d.Severity.String(),
		Code:     d.Code.ID(),
		Title:    d.Code.Title(),
		Message:  d.Message,
		Location: makeLocation(d.Primary, fs, opts.PathMode),
	}
	if opts.IncludeNotes {
		for _, n := range d.Notes {
			out.Notes = append(out.Notes, NoteJSON{Message: n.Msg, Location: makeLocation(n.Span, fs, opts.PathMode)})
		}
	}
	if opts.IncludeFixes {
		for _, fx := range d.Fixes {
			fj := FixJSON{Title: fx.Title}
			for _, e := range fx.Edits {
				fj.Edits = append(fj.Edits, FixEditJSON{Location: makeLocation(e.Span, fs, opts.PathMode), NewText: e.NewText})
			}
			out.Fixes = append(out.Fixes, fj)
		}
	}
	return out
}

// JSON renders bag as line-delimited JSON, one object per diagnostic, in
// whatever order bag.Items() already holds (the caller Sort()s first for
// deterministic output).
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for _, d := range bag.Items() {
		if err := enc.Encode(toDiagnosticJSON(d, fs, opts)); err != nil {
			return err
		}
	}
	return bw.Flush()
}
