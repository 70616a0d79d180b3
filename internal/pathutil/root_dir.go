package pathutil

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/hollowtree/gitcore/internal/env"
	"github.com/hollowtree/gitcore/internal/gitpath"
	"golang.org/x/xerrors"
)

// ErrNoRepo is an error returned when no repo are found
var ErrNoRepo = errors.New("not a git repository (or any of the parent directories)")

// RepoRoot returns the absolute path to the root of the repo
func RepoRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", xerrors.Errorf("could not get current working directory: %w", err)
	}
	return RepoRootFromPath(wd)
}

// RepoRootFromPath returns the absolute path to the root of a repo containing
// the provided directory.
//
// The search walks up the directory tree and stops, without finding a repo,
// as soon as it reaches either the filesystem root or the user's home
// directory, whichever comes first. This mirrors git's own refusal to climb
// past $HOME when discovering a repository.
func RepoRootFromPath(p string) (string, error) {
	boundary, err := homeBoundary()
	if err != nil {
		return "", err
	}
	prev := ""
	for p != prev {
		// Regular repo
		info, err := os.Stat(filepath.Join(p, gitpath.DotGitPath))
		if err == nil && info.IsDir() {
			return p, nil
		}
		// Bare repo
		info, err = os.Stat(filepath.Join(p, gitpath.HEADPath))
		if err == nil && !info.IsDir() && info.Size() > 0 {
			return p, nil
		}

		if boundary != "" && p == boundary {
			break
		}

		prev = p
		p = filepath.Dir(p)
	}
	return "", ErrNoRepo
}

// WorkingTree returns the absolute path to the working tree
func WorkingTree() (path string, err error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", xerrors.Errorf("could not get current working directory: %w", err)
	}
	return WorkingTreeFromPath(wd)
}

// WorkingTreeFromPath returns the absolute path to the root of a non-bare
// repo containing the provided directory. Unlike RepoRootFromPath, bare
// repos (a directory containing only a HEAD file) never match.
func WorkingTreeFromPath(p string) (path string, err error) {
	boundary, err := homeBoundary()
	if err != nil {
		return "", err
	}
	prev := ""
	for p != prev {
		info, err := os.Stat(filepath.Join(p, gitpath.DotGitPath))
		if err == nil && info.IsDir() {
			return p, nil
		}

		if boundary != "" && p == boundary {
			break
		}

		prev = p
		p = filepath.Dir(p)
	}
	return "", ErrNoRepo
}

// homeBoundary returns the cleaned path of the user's home directory, as
// resolved by HOME, or "" if it is unset. Discovery never climbs past
// this directory. An explicitly-empty HOME is an error, not "unset":
// it's propagated as env.ErrEmptyValue rather than silently treated as
// "no boundary".
func homeBoundary() (string, error) {
	home, err := env.NewFromOs().GetNonEmpty("HOME")
	if err != nil {
		return "", xerrors.Errorf("could not resolve home directory: %w", err)
	}
	if home == "" {
		return "", nil
	}
	return filepath.Clean(home), nil
}
