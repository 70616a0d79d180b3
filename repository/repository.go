// Package repository implements git repository discovery, initialization,
// and the handful of operations (object store access, index loading,
// reference resolution) that sit on top of it.
package repository

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/hollowtree/gitcore/ginternals"
	"github.com/hollowtree/gitcore/ginternals/object"
	"github.com/hollowtree/gitcore/index"
	"github.com/hollowtree/gitcore/internal/env"
	"github.com/hollowtree/gitcore/internal/gitpath"
	"github.com/hollowtree/gitcore/internal/pathutil"
	"github.com/hollowtree/gitcore/objectops"
	"github.com/hollowtree/gitcore/objectstore"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// List of errors returned by Repository
var (
	ErrGitDirNotFound  = errors.New("not a git repository (or any parent up to $HOME)")
	ErrRepositoryExists = errors.New("repository already exists")
	ErrMissingWorktree = errors.New("operation requires a worktree")

	// maxIndexSize caps how much of <git_dir>/index LoadIndex will read.
	maxIndexSize int64 = 1 << 30
)

// state models the lifecycle of a Repository handle.
type state int8

const (
	stateUninitialised state = iota
	stateOpened
	stateClosed
)

// SetupOptions configures Setup.
type SetupOptions struct {
	// Name is the directory to create the repository in. If empty, the
	// current working directory is used.
	Name string
	// InitialBranch is the branch HEAD will point at. Defaults to "main".
	InitialBranch string
	// Bare, when true, creates a bare repository (no worktree): the
	// target directory itself becomes the git directory, rather than a
	// .git subdirectory of it.
	Bare bool
}

// Repository represents an open git repository: its git directory, its
// (optional) worktree, and the object store backing it.
type Repository struct {
	fs afero.Fs

	gitDirPath   string
	worktreePath string // empty for bare repositories

	objects *objectstore.Store

	state state
}

// Setup initializes a new repository on disk. Running Setup against an
// existing repository must not overwrite existing data: only missing
// pieces (HEAD, refs/heads, refs/tags) are created.
func Setup(fs afero.Fs, opts SetupOptions) (*Repository, error) {
	if opts.InitialBranch == "" {
		opts.InitialBranch = "main"
	}

	root := "."
	if opts.Name != "" {
		root = opts.Name
		if err := fs.MkdirAll(root, 0o750); err != nil {
			return nil, xerrors.Errorf("could not create %s: %w", root, err)
		}
	}

	gitDirPath := root
	if !opts.Bare {
		gitDirPath = filepath.Join(root, gitpath.DotGitPath)
	}
	if override := env.NewFromOs().Get("GIT_DIR"); override != "" {
		gitDirPath = override
	}

	r := &Repository{
		fs:         fs,
		gitDirPath: gitDirPath,
	}
	if !opts.Bare {
		r.worktreePath = root
	}

	for _, d := range []string{gitpath.RefsHeadsPath, gitpath.RefsTagsPath} {
		if err := fs.MkdirAll(filepath.Join(gitDirPath, d), 0o750); err != nil {
			return nil, xerrors.Errorf("could not create %s: %w", d, err)
		}
	}

	r.objects = objectstore.New(fs, r.objectsDir())
	if err := r.objects.Setup(); err != nil {
		return nil, xerrors.Errorf("could not set up object store: %w", err)
	}

	headPath := filepath.Join(gitDirPath, gitpath.HEADPath)
	if _, err := fs.Stat(headPath); os.IsNotExist(err) {
		content := "ref: " + gitpath.LocalBranchFullName(opts.InitialBranch) + "\n"
		f, err := fs.OpenFile(headPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err != nil {
			return nil, xerrors.Errorf("could not create HEAD: %w", err)
		}
		if _, err := f.WriteString(content); err != nil {
			_ = f.Close()
			return nil, xerrors.Errorf("could not write HEAD: %w", err)
		}
		if err := f.Close(); err != nil {
			return nil, xerrors.Errorf("could not close HEAD: %w", err)
		}
	} else if err != nil {
		return nil, xerrors.Errorf("could not stat HEAD: %w", err)
	}

	r.state = stateOpened
	return r, nil
}

// Open discovers and opens an existing repository.
//
// If GIT_DIR is set in the environment, it is used directly, bypassing
// discovery. Otherwise Open walks upward from startDir (the current
// directory if empty) looking for a .git entry, stopping at the
// filesystem root or the user's home directory.
func Open(fs afero.Fs, startDir string) (*Repository, error) {
	e := env.NewFromOs()

	gitDirPath, err := e.GetNonEmpty("GIT_DIR")
	if err != nil {
		return nil, xerrors.Errorf("GIT_DIR: %w", err)
	}

	if gitDirPath == "" {
		if startDir == "" {
			startDir, err = os.Getwd()
			if err != nil {
				return nil, xerrors.Errorf("could not get working directory: %w", err)
			}
		}
		gitDirPath, err = pathutil.RepoRootFromPath(startDir)
		if err != nil {
			if errors.Is(err, pathutil.ErrNoRepo) {
				return nil, ErrGitDirNotFound
			}
			return nil, err
		}
		// RepoRootFromPath returns the directory *containing* .git (or the
		// bare repo itself, if it found a HEAD file directly).
		if info, statErr := fs.Stat(filepath.Join(gitDirPath, gitpath.DotGitPath)); statErr == nil && info.IsDir() {
			gitDirPath = filepath.Join(gitDirPath, gitpath.DotGitPath)
		}
	}

	info, err := fs.Stat(gitDirPath)
	if err != nil {
		return nil, xerrors.Errorf("could not open %s: %w", gitDirPath, err)
	}
	if !info.IsDir() {
		return nil, xerrors.Errorf("%s is not a directory: %w", gitDirPath, ErrGitDirNotFound)
	}

	objDir := gitDirPath
	if override, err := e.GetNonEmpty("GIT_OBJECT_DIRECTORY"); err != nil {
		return nil, xerrors.Errorf("GIT_OBJECT_DIRECTORY: %w", err)
	} else if override != "" {
		objDir = override
	}

	r := &Repository{
		fs:         fs,
		gitDirPath: gitDirPath,
		objects:    objectstore.New(fs, filepath.Join(objDir, gitpath.ObjectsPath)),
		state:      stateOpened,
	}
	if filepath.Base(gitDirPath) == gitpath.DotGitPath {
		r.worktreePath = filepath.Dir(gitDirPath)
	}
	return r, nil
}

func (r *Repository) objectsDir() string {
	return filepath.Join(r.gitDirPath, gitpath.ObjectsPath)
}

// Name returns the canonical absolute path of the git directory.
func (r *Repository) Name() (string, error) {
	abs, err := filepath.Abs(r.gitDirPath)
	if err != nil {
		return "", xerrors.Errorf("could not resolve absolute path: %w", err)
	}
	return abs, nil
}

// Worktree returns the worktree path as recorded when the repository was
// set up or opened (it is not made absolute), or ("", false) for a bare
// repository.
func (r *Repository) Worktree() (string, bool) {
	if r.worktreePath == "" {
		return "", false
	}
	return r.worktreePath, true
}

// Objects returns the object store backing this repository, for
// callers (such as the CLI) that need to perform lower-level
// object-store operations directly.
func (r *Repository) Objects() *objectstore.Store {
	return r.objects
}

// Close releases any resources held by the repository.
func (r *Repository) Close() error {
	r.state = stateClosed
	return nil
}

// GetObject returns the object matching the given oid.
func (r *Repository) GetObject(oid ginternals.Oid) (*object.Object, error) {
	data, err := r.objects.Read(oid.String())
	if err != nil {
		return nil, xerrors.Errorf("could not read object %s: %w", oid.String(), err)
	}
	decoded, err := objectops.Decode(data, objectops.DecodeOptions{})
	if err != nil {
		return nil, err
	}
	return object.NewWithID(oid, decoded.Type, decoded.Data), nil
}

// WriteObject persists o to the object store and returns its id.
func (r *Repository) WriteObject(o *object.Object) (ginternals.Oid, error) {
	data := objectops.Encode(o.Type(), o.Bytes())
	if err := r.objects.Write(o.ID().String(), data); err != nil {
		return ginternals.NullOid, xerrors.Errorf("could not persist object %s: %w", o.ID().String(), err)
	}
	return o.ID(), nil
}

// Reference resolves and returns the named reference (following
// symbolic references).
func (r *Repository) Reference(name string) (*ginternals.Reference, error) {
	return ginternals.ResolveReference(name, r.readRefContent)
}

func (r *Repository) readRefContent(name string) ([]byte, error) {
	p := filepath.Join(r.gitDirPath, name)
	data, err := afero.ReadFile(r.fs, p)
	if err != nil {
		return nil, xerrors.Errorf("could not read ref %s: %w", name, ginternals.ErrRefNotFound)
	}
	return data, nil
}

// LoadIndex reads and parses <git_dir>/index.
func (r *Repository) LoadIndex() (*index.Index, error) {
	p := filepath.Join(r.gitDirPath, "index")
	f, err := r.fs.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return index.New(2), nil
		}
		return nil, xerrors.Errorf("could not open index: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, xerrors.Errorf("could not stat index: %w", err)
	}
	if info.Size() > maxIndexSize {
		return nil, xerrors.Errorf("index file exceeds the %d byte cap", maxIndexSize)
	}

	data := make([]byte, info.Size())
	if _, err := readFull(f, data); err != nil {
		return nil, xerrors.Errorf("could not read index: %w", err)
	}

	idx, err := index.Parse(data)
	if err != nil {
		return nil, xerrors.Errorf("could not parse index: %w", err)
	}
	return idx, nil
}

func readFull(f afero.File, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := f.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
		if n == 0 {
			break
		}
	}
	return total, nil
}
