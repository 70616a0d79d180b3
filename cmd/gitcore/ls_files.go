package main

import (
	"fmt"
	"io"

	"github.com/hollowtree/gitcore/repository"
	"github.com/spf13/cobra"
)

func newLsFilesCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls-files",
		Short: "show information about files tracked and in the worktree",
	}

	opts := repository.FileListingOptions{}
	nul := false
	cmd.Flags().BoolVarP(&opts.Cached, "cached", "c", false, "show cached files in the output")
	cmd.Flags().BoolVarP(&opts.Others, "others", "o", false, "show untracked files in the output")
	cmd.Flags().BoolVarP(&opts.Deleted, "deleted", "d", false, "show deleted files in the output")
	cmd.Flags().BoolVarP(&opts.Modified, "modified", "m", false, "show modified files in the output")
	cmd.Flags().BoolVarP(&opts.Unmerged, "unmerged", "u", false, "show unmerged files in the output")
	cmd.Flags().BoolVarP(&opts.Killed, "killed", "k", false, "show files on the filesystem that need to be removed")
	cmd.Flags().BoolVarP(&opts.StageInfo, "stage", "s", false, "show staged contents' object id, mode bits and stage number")
	cmd.Flags().BoolVarP(&nul, "z", "z", false, "terminate entries with NUL instead of newline")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return lsFilesRun(cmd.OutOrStdout(), cfg, opts, nul)
	}
	return cmd
}

func lsFilesRun(out io.Writer, cfg *globalFlags, opts repository.FileListingOptions, nulTerminated bool) error {
	r, err := loadRepository(cfg)
	if err != nil {
		return err
	}

	records, err := r.ListFiles(opts)
	if err != nil {
		return err
	}

	terminator := "\n"
	if nulTerminated {
		terminator = "\x00"
	}

	for _, rec := range records {
		if opts.StageInfo && rec.Mode != nil && rec.MergeStage != nil && rec.ObjectID != nil {
			fmt.Fprintf(out, "%06o %s %d\t%s%s", *rec.Mode, rec.ObjectID.String(), *rec.MergeStage, rec.Path, terminator)
			continue
		}
		fmt.Fprintf(out, "%s%s", rec.Path, terminator)
	}
	return nil
}
