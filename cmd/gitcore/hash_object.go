package main

import (
	"fmt"
	"io"
	"os"

	"github.com/hollowtree/gitcore/objectops"
	"github.com/hollowtree/gitcore/objectstore"
	"github.com/spf13/cobra"
)

type hashObjectFlags struct {
	typ       string
	write     bool
	stdin     bool
	literally bool
}

func newHashObjectCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash-object [file...]",
		Short: "compute the object id for file content, optionally persisting it",
		Args:  cobra.ArbitraryArgs,
	}

	flags := hashObjectFlags{}
	cmd.Flags().StringVarP(&flags.typ, "type", "t", "blob", "type of the object to create")
	cmd.Flags().BoolVarP(&flags.write, "write", "w", false, "write the object into the object database")
	cmd.Flags().BoolVar(&flags.stdin, "stdin", false, "read the object content from stdin")
	cmd.Flags().BoolVar(&flags.literally, "literally", false, "skip format validation, allowing any type name")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return hashObjectRun(cmd.OutOrStdout(), cmd.InOrStdin(), cfg, flags, args)
	}
	return cmd
}

func hashObjectRun(out io.Writer, stdin io.Reader, cfg *globalFlags, flags hashObjectFlags, files []string) error {
	var store *objectstore.Store
	if flags.write {
		r, err := loadRepository(cfg)
		if err != nil {
			return err
		}
		store = r.Objects()
	}

	hash := func(r io.Reader) error {
		name, err := objectops.HashObject(store, r, flags.typ, !flags.literally, flags.write)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, name)
		return nil
	}

	if flags.stdin {
		return hash(stdin)
	}

	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		err = hash(f)
		_ = f.Close()
		if err != nil {
			return err
		}
	}
	return nil
}
