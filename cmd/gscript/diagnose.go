package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"gscript/internal/diag"
	"gscript/internal/diagfmt"
	"gscript/internal/driver"
	"gscript/internal/observ"
	"gscript/internal/project"
	"gscript/internal/source"
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose [flags] <file|directory>",
	Short: "Run the semantic analyzer and print every diagnostic found",
	Args:  cobra.ExactArgs(1),
	RunE:  runDiagnose,
}

var checkCmd = &cobra.Command{
	Use:   "check [flags] <file|directory>",
	Short: "Run the semantic analyzer as a pass/fail gate (CI-friendly)",
	Long:  `Like diagnose, but with the default empty --format it prints no diagnostics, on success or failure; it exits non-zero only when an error-severity diagnostic was found, and warnings fail the command only when --warnings-as-errors is set.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [flags] <file|directory>",
	Short: "Run the semantic analyzer and print machine-readable JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	diagnoseCmd.Flags().String("format", "pretty", "output format (pretty|json|golden)")
	analyzeCmd.Flags().String("format", "json", "output format (pretty|json|golden)")
	checkCmd.Flags().String("format", "", "output format (pretty|json|golden); empty prints no diagnostics")
	for _, cmd := range []*cobra.Command{diagnoseCmd, checkCmd, analyzeCmd} {
		cmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors for the exit code")
		cmd.Flags().Int("jobs", 0, "max parallel translation units (0=GOMAXPROCS)")
		cmd.Flags().Bool("disk-cache", false, "skip re-analysis of unchanged files using the on-disk cache")
		cmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	}
	rootCmd.AddCommand(analyzeCmd)
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	return run(cmd, args)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	return run(cmd, args)
}

func runCheck(cmd *cobra.Command, args []string) error {
	return run(cmd, args)
}

// run wires the shared pipeline every diagnostic subcommand drives:
// load gscript.toml, resolve the front end, analyze the project, render
// (unless --format is left empty, as check's default is), and set the
// exit code.
func run(cmd *cobra.Command, args []string) error {
	path := args[0]

	cleanupProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer cleanupProfiling()

	fe, err := requireFrontEnd()
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	warnAsErr, _ := cmd.Flags().GetBool("warnings-as-errors")
	jobs, _ := cmd.Flags().GetInt("jobs")
	withNotes, _ := cmd.Flags().GetBool("with-notes")
	useDiskCache, _ := cmd.Flags().GetBool("disk-cache")
	maxDiagnostics, _ := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	showTimings, _ := cmd.Root().PersistentFlags().GetBool("timings")
	colorMode, _ := cmd.Root().PersistentFlags().GetString("color")

	manifest, _, err := project.LoadManifest(path)
	cfg := project.DefaultConfig()
	if err == nil && manifest != nil {
		cfg = manifest.Config
	}
	if maxDiagnostics > 0 {
		cfg.Diagnostics.MaxDiagnostics = maxDiagnostics
	}

	timer := observ.NewTimer()
	feIdx := timer.Begin("frontend")
	fs := source.NewFileSet()
	interner := source.NewInterner()
	units, err := fe(path, fs, interner)
	timer.End(feIdx, fmt.Sprintf("%d unit(s)", len(units)))
	if err != nil {
		return fmt.Errorf("front end: %w", err)
	}

	var cache *driver.DiskCache
	if useDiskCache {
		cache, err = driver.OpenDiskCache("gscript")
		if err != nil {
			return fmt.Errorf("disk cache: %w", err)
		}
	}

	anIdx := timer.Begin("analyze")
	bag, _, err := driver.AnalyzeProject(context.Background(), units, driver.Options{
		MaxDiagnostics: cfg.Diagnostics.MaxDiagnostics,
		Jobs:           jobs,
		Cache:          cache,
		Interner:       interner,
	})
	timer.End(anIdx, "")
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	bag.PromoteSeverity(cfg.StrictCodes())

	if format != "" {
		if err := render(cmd, bag, fs, format, colorMode, withNotes); err != nil {
			return err
		}
	}
	if showTimings {
		fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
	}

	if bag.HasErrors() || (warnAsErr && bag.HasWarnings()) {
		return fmt.Errorf("%d diagnostic(s) found", bag.Len())
	}
	return nil
}

func render(cmd *cobra.Command, bag *diag.Bag, fs *source.FileSet, format, colorMode string, withNotes bool) error {
	out := cmd.OutOrStdout()
	switch format {
	case "golden":
		items := bag.Items()
		diags := make([]*diag.Diagnostic, len(items))
		for i := range items {
			diags[i] = &items[i]
		}
		if output := diag.FormatGoldenDiagnostics(diags, fs, withNotes); output != "" {
			fmt.Fprintln(out, output)
		}
		return nil
	case "json":
		return diagfmt.JSON(out, bag, fs, diagfmt.JSONOpts{
			PathMode:     diagfmt.PathModeAuto,
			IncludeNotes: withNotes,
			IncludeFixes: true,
		})
	case "pretty":
		diagfmt.Pretty(out, bag, fs, diagfmt.PrettyOpts{
			Color:     useColor(colorMode),
			PathMode:  diagfmt.PathModeAuto,
			ShowNotes: withNotes,
			ShowFixes: true,
		})
		return nil
	default:
		return fmt.Errorf("unsupported format %q (must be pretty, json, or golden)", format)
	}
}

func useColor(mode string) bool {
	switch strings.ToLower(mode) {
	case "on":
		return true
	case "off":
		return false
	default:
		return term.IsTerminal(int(os.Stdout.Fd()))
	}
}
