package testkit

import (
	"testing"

	"gscript/internal/ast"
	"gscript/internal/source"
)

func TestCheckSpanInvariantsAcceptsWellFormedTree(t *testing.T) {
	fs := source.NewFileSet()
	fid := fs.AddVirtual("ok.sp", []byte("public void OnPluginStart() {}"))
	sf := fs.Get(fid)
	interner := source.NewInterner()

	tree := ast.NewTree("ok.sp")
	tree.File.Span = source.Span{File: fid, Start: 0, End: 30}

	body := tree.Stmts.NewBlock(source.Span{File: fid, Start: 28, End: 30}, nil)
	fnID := tree.Funcs.New(ast.Func{
		Name: interner.Intern("OnPluginStart"),
		Body: body,
		Span: source.Span{File: fid, Start: 0, End: 30},
	})
	tree.File.Funcs = []ast.FuncID{fnID}

	if err := CheckSpanInvariants(tree, sf); err != nil {
		t.Fatalf("unexpected invariant failure: %v", err)
	}
}

func TestCheckSpanInvariantsRejectsEmptyFileSpan(t *testing.T) {
	fs := source.NewFileSet()
	fid := fs.AddVirtual("empty.sp", []byte("x"))
	sf := fs.Get(fid)

	tree := ast.NewTree("empty.sp")
	tree.File.Span = source.Span{File: fid, Start: 0, End: 0}

	if err := CheckSpanInvariants(tree, sf); err == nil {
		t.Fatalf("expected an error for an empty file span")
	}
}

func TestCheckSpanInvariantsRejectsDeclarationOutsideFileSpan(t *testing.T) {
	fs := source.NewFileSet()
	fid := fs.AddVirtual("escape.sp", []byte("stock void Helper() {}"))
	sf := fs.Get(fid)
	interner := source.NewInterner()

	tree := ast.NewTree("escape.sp")
	tree.File.Span = source.Span{File: fid, Start: 0, End: 5}

	body := tree.Stmts.NewBlock(source.Span{File: fid, Start: 20, End: 22}, nil)
	fnID := tree.Funcs.New(ast.Func{
		Name: interner.Intern("Helper"),
		Body: body,
		Span: source.Span{File: fid, Start: 0, End: 22},
	})
	tree.File.Funcs = []ast.FuncID{fnID}

	if err := CheckSpanInvariants(tree, sf); err == nil {
		t.Fatalf("expected an error for a function span that escapes the file span")
	}
}

func TestCheckSpanInvariantsRejectsCrossFileSpan(t *testing.T) {
	fs := source.NewFileSet()
	fid := fs.AddVirtual("a.sp", []byte("public void OnPluginStart() {}"))
	otherFid := fs.AddVirtual("b.sp", []byte("x"))
	sf := fs.Get(fid)
	interner := source.NewInterner()

	tree := ast.NewTree("a.sp")
	tree.File.Span = source.Span{File: fid, Start: 0, End: 30}

	body := tree.Stmts.NewBlock(source.Span{File: fid, Start: 28, End: 30}, nil)
	fnID := tree.Funcs.New(ast.Func{
		Name: interner.Intern("OnPluginStart"),
		Body: body,
		Span: source.Span{File: otherFid, Start: 0, End: 1},
	})
	tree.File.Funcs = []ast.FuncID{fnID}

	if err := CheckSpanInvariants(tree, sf); err == nil {
		t.Fatalf("expected an error for a function span belonging to a different file")
	}
}
