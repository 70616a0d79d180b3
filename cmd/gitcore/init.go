package main

import (
	"fmt"
	"io"

	"github.com/hollowtree/gitcore/repository"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

type initCmdFlags struct {
	initialBranch string
	bare          bool
}

func newInitCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "create an empty git repository",
		Args:  cobra.MaximumNArgs(1),
	}

	flags := initCmdFlags{}
	cmd.Flags().StringVarP(&flags.initialBranch, "initial-branch", "b", "", "name of the initial branch (defaults to main)")
	cmd.Flags().BoolVar(&flags.bare, "bare", false, "create a bare repository")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		dir := ""
		if len(args) > 0 {
			dir = args[0]
		}
		return initRun(cmd.OutOrStdout(), flags, dir)
	}
	return cmd
}

func initRun(out io.Writer, flags initCmdFlags, dir string) error {
	r, err := repository.Setup(afero.NewOsFs(), repository.SetupOptions{
		Name:          dir,
		InitialBranch: flags.initialBranch,
		Bare:          flags.bare,
	})
	if err != nil {
		return err
	}
	name, err := r.Name()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Initialized empty Git repository in %s\n", name)
	return nil
}
