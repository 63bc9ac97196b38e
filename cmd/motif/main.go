// Command motif is a command-line shell over a project file: create,
// inspect, and version-control a project without a GUI.
//
// Grounded on the teacher's go.mod declaring spf13/cobra (unused by the
// teacher's own flag-based main.go) — this wires that dependency into
// real use rather than dropping it.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "motif",
		Short: "motif manages a MIDI sequencer project file and its revision history",
	}
	root.AddCommand(
		newInitCmd(),
		newTrackAddCmd(),
		newStatusCmd(),
		newCommitCmd(),
		newLogCmd(),
		newCheckoutCmd(),
		newMergeCmd(),
		newStashCmd(),
		newExportCmd(),
	)
	return root
}
