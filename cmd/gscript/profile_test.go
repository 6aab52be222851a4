package main

import (
	"testing"

	"github.com/spf13/cobra"
)

func TestSetupProfilingNoopWithoutFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "noop"}
	cmd.PersistentFlags().String("cpu-profile", "", "")
	cmd.PersistentFlags().String("mem-profile", "", "")
	cmd.PersistentFlags().String("runtime-trace", "", "")

	cleanup, err := setupProfiling(cmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cleanup == nil {
		t.Fatalf("expected a non-nil cleanup function")
	}
	cleanup()
	cleanup() // must be safe to call twice
}

func TestSetupProfilingErrorsWhenFlagsAreMissing(t *testing.T) {
	cmd := &cobra.Command{Use: "missing-flags"}
	if _, err := setupProfiling(cmd); err == nil {
		t.Fatalf("expected an error when the profiling flags are not registered")
	}
}

func TestSetupProfilingWritesCPUProfile(t *testing.T) {
	cmd := &cobra.Command{Use: "cpu"}
	path := t.TempDir() + "/cpu.prof"
	cmd.PersistentFlags().String("cpu-profile", path, "")
	cmd.PersistentFlags().String("mem-profile", "", "")
	cmd.PersistentFlags().String("runtime-trace", "", "")

	cleanup, err := setupProfiling(cmd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cleanup()
}
