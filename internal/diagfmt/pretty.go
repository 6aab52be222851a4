package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"gscript/internal/diag"
	"gscript/internal/source"
)

var (
	errorColor = color.New(color.FgRed, color.Bold)
	warnColor  = color.New(color.FgYellow, color.Bold)
	infoColor  = color.New(color.FgCyan, color.Bold)
	pathColor  = color.New(color.Bold)
	caretColor = color.New(color.FgGreen, color.Bold)
	noteColor  = color.New(color.FgBlue)
)

func severityColor(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return errorColor
	case diag.SevWarning:
		return warnColor
	default:
		return infoColor
	}
}

// Pretty renders bag (expected already Sort()ed and Dedup()ed by the
// caller) as human-readable diagnostics: one `path:line:col: SEVERITY
// Exxxx: message` header per entry, a source-line excerpt with a
// caret/tilde underline of the primary span, then any notes in the
// same format.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	color.NoColor = !opts.Color
	for _, d := range bag.Items() {
		writeHeader(w, d.Severity, d.Code, d.Primary, d.Message, fs, opts)
		writeExcerpt(w, d.Primary, fs, opts)
		if opts.ShowNotes {
			for _, n := range d.Notes {
				writeHeader(w, diag.SevInfo, d.Code, n.Span, n.Msg, fs, opts)
				writeExcerpt(w, n.Span, fs, opts)
			}
		}
		if opts.ShowFixes {
			for _, fix := range d.Fixes {
				fmt.Fprintf(w, "  help: %s\n", fix.Title)
			}
		}
	}
}

func writeHeader(w io.Writer, sev diag.Severity, code diag.Code, span source.Span, msg string, fs *source.FileSet, opts PrettyOpts) {
	loc := formatLocation(span, fs, opts.PathMode)
	sevColor := severityColor(sev)
	fmt.Fprintf(w, "%s: %s %s: %s\n",
		pathColor.Sprint(loc),
		sevColor.Sprint(strings.ToLower(sev.String())),
		code.ID(),
		msg,
	)
}

func formatLocation(span source.Span, fs *source.FileSet, mode PathMode) string {
	if fs == nil {
		return span.String()
	}
	f := fs.Get(span.File)
	start, _ := fs.Resolve(span)
	var path string
	switch mode {
	case PathModeAbsolute:
		path = f.FormatPath("absolute", "")
	case PathModeRelative:
		path = f.FormatPath("relative", fs.BaseDir())
	case PathModeBasename:
		path = f.FormatPath("basename", "")
	default:
		path = f.FormatPath("auto", "")
	}
	return fmt.Sprintf("%s:%d:%d", path, start.Line, start.Col)
}

func writeExcerpt(w io.Writer, span source.Span, fs *source.FileSet, opts PrettyOpts) {
	if fs == nil {
		return
	}
	f := fs.Get(span.File)
	start, end := fs.Resolve(span)
	line := f.GetLine(start.Line)
	if line == "" {
		return
	}
	fmt.Fprintf(w, "  %s\n", strings.TrimRight(line, "\n"))

	underlineLen := 1
	if end.Line == start.Line && end.Col > start.Col {
		underlineLen = int(end.Col - start.Col)
	}
	pad := strings.Repeat(" ", int(start.Col-1))
	underline := strings.Repeat("~", underlineLen)
	fmt.Fprintf(w, "  %s%s\n", pad, caretColor.Sprint("^"+strings.TrimPrefix(underline, "~")))
}
