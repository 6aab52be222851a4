package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"gscript/internal/ast"
	"gscript/internal/source"
)

// CheckSpanInvariants runs a minimal set of span invariants on a parsed
// tree: the file span is non-empty and within content bounds, every
// top-level declaration's span is non-empty, belongs to the same file,
// and is contained in the file span, and the file span covers the
// union of every declaration span it contains.
func CheckSpanInvariants(tree *ast.Tree, sf *source.File) error {
	if tree == nil || tree.File == nil || sf == nil {
		return fmt.Errorf("nil tree, tree.File, or source file")
	}
	f := tree.File

	if f.Span.End <= f.Span.Start {
		return fmt.Errorf("file span is empty: %v", f.Span)
	}
	if f.Span.File != sf.ID {
		return fmt.Errorf("file span points to different file id: got=%d want=%d", f.Span.File, sf.ID)
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if f.Span.End > lenContent {
		return fmt.Errorf("file span end beyond content: %d > %d", f.Span.End, lenContent)
	}

	var union source.Span
	var haveItem bool
	check := func(label string, sp source.Span) error {
		if sp.End <= sp.Start {
			return fmt.Errorf("empty %s span: %v", label, sp)
		}
		if sp.File != sf.ID {
			return fmt.Errorf("%s span file mismatch: got=%d want=%d", label, sp.File, sf.ID)
		}
		if sp.Start < f.Span.Start || sp.End > f.Span.End {
			return fmt.Errorf("%s span %v is outside file span %v", label, sp, f.Span)
		}
		if !haveItem {
			union = sp
			haveItem = true
		} else {
			union = union.Cover(sp)
		}
		return nil
	}

	for i := range f.Enums {
		if err := check("enum", f.Enums[i].Span); err != nil {
			return err
		}
	}
	for i := range f.EnumStructs {
		if err := check("enum struct", f.EnumStructs[i].Span); err != nil {
			return err
		}
	}
	for i := range f.Methodmaps {
		if err := check("methodmap", f.Methodmaps[i].Span); err != nil {
			return err
		}
	}
	for i := range f.PStructs {
		if err := check("pseudo-struct", f.PStructs[i].Span); err != nil {
			return err
		}
	}
	for _, fid := range f.Funcs {
		fn := tree.Funcs.Get(fid)
		if fn == nil {
			return fmt.Errorf("nil function for id=%d", fid)
		}
		if err := check("function", fn.Span); err != nil {
			return err
		}
	}
	for _, sid := range f.Globals {
		st := tree.Stmts.Get(sid)
		if st == nil {
			return fmt.Errorf("nil global statement for id=%d", sid)
		}
		if err := check("global", st.Span); err != nil {
			return err
		}
	}

	if haveItem {
		if union.Start < f.Span.Start || union.End > f.Span.End {
			return fmt.Errorf("file span %v does not cover union of declarations %v", f.Span, union)
		}
	}
	return nil
}
