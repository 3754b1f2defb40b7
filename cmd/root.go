// Package cmd is the thin cobra-based CLI personality wired over isotree,
// drive, growth and command/transport: manual exercise of the core's
// public API (graft, mkdir, setfilter, setattr, boot-attach, commit/emit,
// scan/grab/probe/write/release), not a mkisofs/cdrecord replacement.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/isoburn/isoburn/internal/logs"
	"github.com/isoburn/isoburn/internal/message"
)

// Root is the top-level command every subcommand attaches to, grounded on
// rclone's cmd.Root pattern of a single shared cobra.Command tree.
var Root = &cobra.Command{
	Use:   "isoburn",
	Short: "Build and inspect ISO 9660/Rock Ridge/Joliet images over SCSI/MMC optical media",
}

var verbose bool

func init() {
	Root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print DEBUG-level log lines")
	Root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if verbose {
			logs.SetLevel(message.DEBUG)
		}
	}
}

// Execute runs the command tree, the sole entry point cmd/isoburn/main.go
// calls.
func Execute() {
	if err := Root.Execute(); err != nil {
		os.Exit(1)
	}
}

// CheckArgs enforces an inclusive [min, max] positional argument count,
// printing usage and exiting on violation — the same contract rclone's
// cmd.CheckArgs gives every subcommand Run function.
func CheckArgs(min, max int, cmd *cobra.Command, args []string) {
	if len(args) < min {
		fmt.Fprintf(os.Stderr, "%s: not enough arguments (got %d, need at least %d)\n", cmd.Name(), len(args), min)
		_ = cmd.Usage()
		os.Exit(1)
	}
	if max >= 0 && len(args) > max {
		fmt.Fprintf(os.Stderr, "%s: too many arguments (got %d, max %d)\n", cmd.Name(), len(args), max)
		_ = cmd.Usage()
		os.Exit(1)
	}
}

// Run executes fn, printing any returned error and setting the process
// exit code, rclone's cmd.Run collapsed to this CLI's simpler
// single-shot-command needs (no retry/stats wrapping, since a write
// session cannot be safely retried once started.).
func Run(fn func() error) {
	if err := fn(); err != nil {
		logs.Errorf("isoburn", "%v", err)
		os.Exit(1)
	}
}

// flagString is a small helper subcommands use to read an optional string
// flag without repeating the ignored-error pattern everywhere.
func flagString(flags *pflag.FlagSet, name string) string {
	v, _ := flags.GetString(name)
	return v
}
