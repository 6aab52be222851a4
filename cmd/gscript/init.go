package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"gscript/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Create a new gscript.toml project manifest",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	target, err := os.Getwd()
	if err != nil {
		return err
	}
	if len(args) == 1 && args[0] != "." {
		if filepath.IsAbs(args[0]) {
			target = args[0]
		} else {
			target = filepath.Join(target, args[0])
		}
	}

	if st, err := os.Stat(target); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err := os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", target, err)
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	manifestPath := filepath.Join(target, project.ManifestName)
	if _, err := os.Stat(manifestPath); err == nil {
		return fmt.Errorf("project already initialized: %s exists", manifestPath)
	}

	name := strings.TrimSpace(filepath.Base(target))
	if name == "" || name == "." {
		name = "gscript-project"
	}
	manifest := fmt.Sprintf(`[package]
name = "%s"

[diagnostics]
strict_warnings = []
tab_width = 4
max_diagnostics = 200
`, name)

	if err := os.WriteFile(manifestPath, []byte(manifest), 0o600); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "initialized gscript project: %s\n", manifestPath)
	return nil
}
