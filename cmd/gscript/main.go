package main

import (
	"os"

	"github.com/spf13/cobra"

	"gscript/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "gscript",
	Short: "Semantic analysis core for the gscript Pawn-family compiler pipeline",
	Long:  `gscript checks tags, methodmaps, enum-structs and control flow for a Pawn-family scripting language. It is the semantic-analysis stage of a larger pipeline; lexing and parsing are supplied by a front end registered via RegisterFrontEnd.`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(diagnoseCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 200, "maximum number of diagnostics to show")
	rootCmd.PersistentFlags().String("cpu-profile", "", "write a CPU profile to the given path")
	rootCmd.PersistentFlags().String("mem-profile", "", "write a heap profile to the given path")
	rootCmd.PersistentFlags().String("runtime-trace", "", "write a runtime trace to the given path")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
