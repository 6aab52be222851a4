package main

import (
	"fmt"

	"gscript/internal/driver"
	"gscript/internal/source"
)

// FrontEnd turns a file or directory path into the translation units the
// semantic core analyzes. Lexing and parsing a Pawn-family source file
// into an ast.Tree is an external collaborator's job (§1) — this module
// owns everything from a built ast.Tree onward. A real CLI build links
// in a front end with RegisterFrontEnd; without one, diagnose/check
// report a clear error rather than silently doing nothing.
type FrontEnd func(path string, fs *source.FileSet, interner *source.Interner) ([]driver.TranslationUnit, error)

var registeredFrontEnd FrontEnd

// RegisterFrontEnd installs the lexer/parser front end this binary uses
// to turn source paths into driver.TranslationUnit values. Called from
// an init() in a build that links a front end package in alongside this
// one; gscript itself ships none.
func RegisterFrontEnd(fe FrontEnd) {
	registeredFrontEnd = fe
}

func requireFrontEnd() (FrontEnd, error) {
	if registeredFrontEnd == nil {
		return nil, fmt.Errorf("no front end registered: this build of gscript has no lexer/parser linked in — RegisterFrontEnd must be called before Execute")
	}
	return registeredFrontEnd, nil
}
