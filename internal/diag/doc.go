// Package diag defines the diagnostic model shared by every phase of the
// pipeline: the parser (external to this module), the semantic analysis
// core, and the CLI driver.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – tri-level enum (Info, Warning, Error).
//   - Code – stable numeric identifier (see codes.go); part of the
//     external ABI, centralized in one registry.
//   - Message – short, actionable text.
//   - Primary span – the source.Span the diagnostic anchors to.
//   - Notes – optional secondary spans/messages for extra context.
//   - Fixes – optional structured edits a caller may apply.
//
// # Emitting diagnostics
//
// Producers depend on the Reporter interface, not on a concrete sink.
// BagReporter accumulates into a Bag, which supports Sort, Dedup and
// HasErrors/HasWarnings. DedupReporter wraps another Reporter and drops
// exact repeats (same code, span and message) — used by the driver's
// per-unit analysis (internal/driver analyzeUnit) so a report repeated
// within one translation unit reaches its Bag once.
//
// internal/diagfmt renders a Bag to a terminal or to JSON; neither
// formatting nor fix application belongs in this package.
package diag
