package driver

import (
	"context"
	"crypto/sha256"
	"runtime"

	"golang.org/x/sync/errgroup"

	"gscript/internal/ast"
	"gscript/internal/diag"
	"gscript/internal/project"
	"gscript/internal/sema"
	"gscript/internal/source"
	"gscript/internal/symbols"
	"gscript/internal/types"
)

// TranslationUnit is one already-parsed source file handed to the
// semantic core by its external collaborators (lexer/parser, outside
// this module's scope per §1). AnalyzeProject owns nothing upstream of
// this: Tree is assumed fully built and FileID already registered in a
// shared source.FileSet.
type TranslationUnit struct {
	Path    string
	FileID  source.FileID
	Content []byte
	Tree    *ast.Tree
}

// UnitResult is one translation unit's outcome: its own diagnostic bag
// (not yet merged into the project bag) plus the exported symbols a
// cache entry remembers.
type UnitResult struct {
	Path    string
	Bag     *diag.Bag
	Exports []sema.Export
	Cached  bool
}

// Options configures a project-wide analysis run.
type Options struct {
	MaxDiagnostics int
	Jobs           int // 0 selects GOMAXPROCS
	Cache          *DiskCache
	Interner       *source.Interner
}

// AnalyzeProject runs the semantic core over every unit concurrently
// (§5): each goroutine gets its own types.Registry, symbols.Table and
// sema.Checker, so nothing mutable is shared across units. Diagnostics
// are collected per-unit then merged into one project-wide Bag, sorted
// and deduplicated for deterministic output regardless of completion
// order (§8 S9).
func AnalyzeProject(ctx context.Context, units []TranslationUnit, opts Options) (*diag.Bag, []UnitResult, error) {
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	if jobs > len(units) && len(units) > 0 {
		jobs = len(units)
	}

	results := make([]UnitResult, len(units))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, unit := range units {
		i, unit := i, unit
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = analyzeUnit(unit, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	maxDiag := opts.MaxDiagnostics
	if maxDiag <= 0 {
		maxDiag = 200
	}
	merged := diag.NewBag(maxDiag)
	for _, r := range results {
		if r.Bag != nil {
			merged.Merge(r.Bag)
		}
	}
	merged.Sort()
	merged.Dedup()
	return merged, results, nil
}

func analyzeUnit(unit TranslationUnit, opts Options) UnitResult {
	contentHash := project.Digest(sha256.Sum256(unit.Content))

	if opts.Cache != nil {
		var payload DiskPayload
		if hit, _ := opts.Cache.Get(contentHash, &payload); hit && !payload.Broken {
			return UnitResult{Path: unit.Path, Bag: diag.NewBag(1), Cached: true}
		}
	}

	reg := types.NewRegistry()
	tbl := symbols.NewTable()
	bag := diag.NewBag(1000)
	rep := diag.NewDedupReporter(diag.BagReporter{Bag: bag})
	interner := opts.Interner
	if interner == nil {
		interner = source.NewInterner()
	}

	checker := sema.New(unit.Tree, reg, tbl, interner, rep, unit.FileID)
	checker.Analyze()

	exports := checker.Exports()
	if opts.Cache != nil {
		cacheExports := make([]ExportedSymbol, len(exports))
		for i, e := range exports {
			cacheExports[i] = ExportedSymbol{Name: e.Name, Tag: int32(e.Tag)}
		}
		_ = opts.Cache.Put(contentHash, &DiskPayload{
			Schema:      diskCacheSchemaVersion,
			Path:        unit.Path,
			ContentHash: contentHash,
			Broken:      bag.HasErrors(),
			Exports:     cacheExports,
		})
	}

	return UnitResult{Path: unit.Path, Bag: bag, Exports: exports}
}
