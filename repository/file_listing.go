package repository

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/emirpasic/gods/utils"
	"github.com/hollowtree/gitcore/ginternals"
	"github.com/hollowtree/gitcore/ginternals/object"
	"github.com/hollowtree/gitcore/index"
	"github.com/hollowtree/gitcore/internal/gitpath"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// FileListingOptions configures ListFiles, mirroring git's ls-files
// selection flags.
type FileListingOptions struct {
	// Cached selects every tracked entry from the index.
	Cached bool
	// Others selects files present in the worktree but not tracked.
	Others bool
	// Deleted selects tracked entries missing from the worktree.
	Deleted bool
	// Modified selects tracked entries whose worktree content no
	// longer matches the index's recorded metadata.
	Modified bool
	// Unmerged restricts tracked output to entries with a non-zero
	// merge stage, and implies StageInfo.
	Unmerged bool
	// Killed selects on-disk paths that block materialising a tracked
	// entry (a file sitting where a tracked directory needs to exist).
	Killed bool
	// StageInfo requests that ObjectID, Mode and MergeStage be
	// populated on tracked-entry records.
	StageInfo bool
}

// FileRecord is one row of ListFiles' output.
type FileRecord struct {
	Path       string
	ObjectID   ginternals.Oid
	Mode       *uint32
	MergeStage *index.Stage
}

// ListFiles enumerates worktree and/or index entries per opts, the way
// git ls-files does.
func (r *Repository) ListFiles(opts FileListingOptions) ([]FileRecord, error) {
	if opts.Unmerged {
		opts.StageInfo = true
	}
	if !opts.Cached && !opts.Others && !opts.Deleted && !opts.Modified && !opts.Unmerged && !opts.Killed {
		opts.Cached = true
	}

	worktree, hasWorktree := r.Worktree()
	if (opts.Others || opts.Killed || opts.Deleted || opts.Modified) && !hasWorktree {
		return nil, ErrMissingWorktree
	}

	idx, err := r.LoadIndex()
	if err != nil {
		return nil, xerrors.Errorf("could not load index: %w", err)
	}

	var records []FileRecord

	if opts.Others || opts.Killed {
		others, killed, err := r.scanWorktree(worktree, idx)
		if err != nil {
			return nil, xerrors.Errorf("could not scan worktree: %w", err)
		}
		if opts.Others {
			records = append(records, others...)
		}
		if opts.Killed {
			records = append(records, killed...)
		}
	}

	for _, e := range idx.Entries {
		if r.classifyEntry(e, worktree, opts) {
			records = append(records, fileRecordFor(e, opts.StageInfo))
		}
	}

	sortRecords(records)
	return records, nil
}

// classifyEntry decides, in priority order, whether a tracked index
// entry belongs in the result: deleted-from-disk first, then
// modified-on-disk, then the plain tracked/stage-info case.
func (r *Repository) classifyEntry(e index.Entry, worktree string, opts FileListingOptions) bool {
	if opts.Deleted {
		if _, err := r.fs.Stat(filepath.Join(worktree, e.Path)); err != nil && os.IsNotExist(err) {
			return true
		}
	}
	if opts.Modified {
		info, err := r.fs.Stat(filepath.Join(worktree, e.Path))
		if err == nil && entryChanged(e, info) {
			return true
		}
	}
	if opts.Cached || opts.StageInfo {
		return !opts.Unmerged || e.Stage != index.StageNone
	}
	return false
}

// entryChanged reports whether a worktree file's stat metadata no
// longer matches what the index recorded for it.
func entryChanged(e index.Entry, info os.FileInfo) bool {
	if uint32(info.Size()) != e.Size {
		return true
	}
	if uint32(info.ModTime().Unix()) != e.MTimeSec {
		return true
	}
	return diskMode(info) != e.Mode
}

func diskMode(info os.FileInfo) uint32 {
	if info.Mode()&0o111 != 0 {
		return uint32(object.ModeExecutable)
	}
	return uint32(object.ModeFile)
}

func fileRecordFor(e index.Entry, stageInfo bool) FileRecord {
	rec := FileRecord{Path: e.Path}
	if stageInfo {
		rec.ObjectID = e.Oid
		mode := e.Mode
		rec.Mode = &mode
		stage := e.Stage
		rec.MergeStage = &stage
	}
	return rec
}

// scanWorktree walks the worktree depth-first, skipping .git, and
// splits on-disk-but-untracked paths into "others" (no relation to a
// tracked entry) and "killed" (a prefix of one).
func (r *Repository) scanWorktree(worktree string, idx *index.Index) (others, killed []FileRecord, err error) {
	err = afero.Walk(r.fs, worktree, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, relErr := filepath.Rel(worktree, path)
		if relErr != nil {
			return relErr
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if info.IsDir() {
			if rel == gitpath.DotGitPath || strings.HasPrefix(rel, gitpath.DotGitPath+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if idx.Contains(rel) {
			return nil
		}
		if idx.ContainsPrefix(rel, false) {
			killed = append(killed, FileRecord{Path: rel})
		} else {
			others = append(others, FileRecord{Path: rel})
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	sortRecords(others)
	sortRecords(killed)
	return others, killed, nil
}

func sortRecords(records []FileRecord) {
	boxed := make([]interface{}, len(records))
	for i, r := range records {
		boxed[i] = r
	}
	utils.Sort(boxed, func(a, b interface{}) int {
		return strings.Compare(a.(FileRecord).Path, b.(FileRecord).Path)
	})
	for i, v := range boxed {
		records[i] = v.(FileRecord)
	}
}
