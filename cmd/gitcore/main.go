// Command gitcore is a thin CLI wrapper around the gitcore plumbing
// library: init, hash-object, cat-file, ls-files, inflate.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// globalFlags holds the flags shared by every subcommand.
type globalFlags struct {
	// C mirrors git's -C: run as if started in the given directory.
	C string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error: %s", err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := &globalFlags{}

	cmd := &cobra.Command{
		Use:           "gitcore",
		Short:         "a git plumbing toolkit",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.PersistentFlags().StringVarP(&cfg.C, "C", "C", "", "run as if gitcore was started in the provided path instead of the current working directory")

	cmd.AddCommand(
		newInitCmd(cfg),
		newHashObjectCmd(cfg),
		newCatFileCmd(cfg),
		newLsFilesCmd(cfg),
		newInflateCmd(cfg),
		newVersionCmd(),
	)
	return cmd
}

// version is the CLI's reported version, fixed at this point in the
// project's lifecycle.
const version = "0.1.0"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the version and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), "gitcore version "+version)
			return nil
		},
	}
}
