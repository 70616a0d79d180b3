package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/hollowtree/gitcore/ginternals"
	"github.com/hollowtree/gitcore/ginternals/object"
	"github.com/hollowtree/gitcore/internal/gitpath"
	"github.com/hollowtree/gitcore/objectops"
	"github.com/hollowtree/gitcore/repository"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"
)

// errNotFound is returned by cat-file -e when the object doesn't exist.
var errNotFound = errors.New("object does not exist")

type catFileFlags struct {
	exists           bool
	typeOnly         bool
	sizeOnly         bool
	prettyPrint      bool
	allowUnknownType bool
}

func newCatFileCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cat-file (TYPE OBJECT | -e|-p|-t|-s OBJECT)",
		Short: "provide content or type/size information for a repository object",
		Args:  cobra.RangeArgs(1, 2),
	}

	flags := catFileFlags{}
	cmd.Flags().BoolVarP(&flags.exists, "e", "e", false, "exit with zero status if <object> exists and is valid")
	cmd.Flags().BoolVarP(&flags.prettyPrint, "p", "p", false, "pretty-print the contents of <object> based on its type")
	cmd.Flags().BoolVarP(&flags.typeOnly, "t", "t", false, "show the object type")
	cmd.Flags().BoolVarP(&flags.sizeOnly, "s", "s", false, "show the object size")
	cmd.Flags().BoolVar(&flags.allowUnknownType, "allow-unknown-type", false, "allow -t/-s to report on a malformed/unknown type")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		p := catFileParams{objectName: args[0]}
		if len(args) == 2 {
			p.typ = args[0]
			p.objectName = args[1]
		}
		return catFileRun(cmd.OutOrStdout(), cfg, flags, p)
	}
	return cmd
}

type catFileParams struct {
	objectName string
	typ        string
}

func catFileRun(out io.Writer, cfg *globalFlags, flags catFileFlags, p catFileParams) error {
	if p.typ == "" && !flags.exists && !flags.typeOnly && !flags.sizeOnly && !flags.prettyPrint {
		return errors.New("one of TYPE, -e, -p, -t or -s is required")
	}

	r, err := loadRepository(cfg)
	if err != nil {
		return err
	}

	oid, err := resolveObjectName(r, p.objectName)
	if err != nil {
		return err
	}

	if flags.exists {
		_, err := r.GetObject(oid)
		if err != nil {
			return errNotFound
		}
		return nil
	}

	if flags.typeOnly || flags.sizeOnly {
		typ, size, err := objectops.ReadTypeAndSize(r.Objects(), oid.String(), flags.allowUnknownType)
		if err != nil {
			return err
		}
		if flags.typeOnly {
			fmt.Fprintln(out, typ)
		} else {
			fmt.Fprintln(out, strconv.Itoa(size))
		}
		return nil
	}

	o, err := r.GetObject(oid)
	if err != nil {
		return err
	}

	if p.typ != "" {
		if _, err := object.NewTypeFromString(p.typ); err != nil {
			return xerrors.Errorf("%s: %w", p.typ, err)
		}
		if o.Type().String() != p.typ {
			return xerrors.Errorf("%s: object is a %s, not a %s", p.objectName, o.Type(), p.typ)
		}
	}

	return printObject(out, o)
}

// resolveObjectName accepts either a full 40-hex object id or a
// reference name (HEAD, a branch, a tag, ...).
func resolveObjectName(r *repository.Repository, name string) (ginternals.Oid, error) {
	oid, err := ginternals.NewOidFromStr(name)
	if err == nil {
		return oid, nil
	}

	candidates := []string{
		name,
		gitpath.RefFullName(name),
		gitpath.LocalBranchFullName(name),
		gitpath.LocalTagFullName(name),
	}
	for _, candidate := range candidates {
		ref, refErr := r.Reference(candidate)
		if refErr == nil {
			return ref.Target(), nil
		}
		if !errors.Is(refErr, ginternals.ErrRefNotFound) {
			return nil, xerrors.Errorf("could not resolve %s: %w", candidate, refErr)
		}
	}
	return nil, xerrors.Errorf("not a valid object name %s", name)
}

func printObject(out io.Writer, o *object.Object) error {
	switch o.Type() {
	case object.TypeCommit:
		c, err := o.AsCommit()
		if err != nil {
			return xerrors.Errorf("could not parse commit: %w", err)
		}
		fmt.Fprintf(out, "tree %s\n", c.TreeID().String())
		for _, id := range c.ParentIDs() {
			fmt.Fprintf(out, "parent %s\n", id.String())
		}
		fmt.Fprintf(out, "author %s\n", c.Author().String())
		fmt.Fprintf(out, "committer %s\n", c.Committer().String())
		if c.GPGSig() != "" {
			fmt.Fprintf(out, "gpgsig %s\n", c.GPGSig())
		}
		fmt.Fprintln(out)
		fmt.Fprint(out, c.Message())
	case object.TypeTag:
		tag, err := o.AsTag()
		if err != nil {
			return xerrors.Errorf("could not parse tag: %w", err)
		}
		fmt.Fprintf(out, "object %s\n", tag.Target().String())
		fmt.Fprintf(out, "type %s\n", tag.Type().String())
		fmt.Fprintf(out, "tag %s\n", tag.Name())
		fmt.Fprintf(out, "tagger %s\n", tag.Tagger().String())
		if tag.GPGSig() != "" {
			fmt.Fprintf(out, "gpgsig %s\n", tag.GPGSig())
		}
		fmt.Fprintln(out)
		fmt.Fprint(out, tag.Message())
	case object.TypeTree:
		tree, err := o.AsTree()
		if err != nil {
			return xerrors.Errorf("could not parse tree: %w", err)
		}
		for _, e := range tree.Entries() {
			fmt.Fprintf(out, "%06o %s %s\t%s\n", e.Mode, e.Mode.ObjectType().String(), e.ID.String(), e.Path)
		}
	case object.TypeBlob:
		fmt.Fprint(out, string(o.Bytes()))
	default:
		return xerrors.Errorf("pretty-print not supported for type %s", o.Type())
	}
	return nil
}
