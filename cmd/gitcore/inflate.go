package main

import (
	"fmt"
	"io"

	"github.com/hollowtree/gitcore/objectops"
	"github.com/spf13/cobra"
)

func newInflateCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inflate <object>",
		Short: "print the raw encoded (inflated, undecoded) bytes of an object",
		Args:  cobra.ExactArgs(1),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return inflateRun(cmd.OutOrStdout(), cfg, args[0])
	}
	return cmd
}

func inflateRun(out io.Writer, cfg *globalFlags, name string) error {
	r, err := loadRepository(cfg)
	if err != nil {
		return err
	}

	data, err := objectops.ReadEncodedData(r.Objects(), name)
	if err != nil {
		return err
	}

	fmt.Fprint(out, string(data))
	return nil
}
