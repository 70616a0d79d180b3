package repository_test

import (
	"testing"

	"github.com/hollowtree/gitcore/ginternals"
	"github.com/hollowtree/gitcore/index"
	"github.com/hollowtree/gitcore/repository"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepoWithIndex(t *testing.T) (*repository.Repository, afero.Fs) {
	t.Helper()

	fs := afero.NewMemMapFs()
	r, err := repository.Setup(fs, repository.SetupOptions{Name: "repo"})
	require.NoError(t, err)

	oid, err := ginternals.NewOidFromStr("e69de29bb2d1d6434b8b29ae775ad8c2e48c5391")
	require.NoError(t, err)

	idx := index.New(2)
	idx.Entries = []index.Entry{
		{Path: "tracked.txt", Mode: 0o100644, Size: 5, MTimeSec: 1_600_000_000, Oid: oid},
	}
	data, err := idx.Serialize()
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, "repo/.git/index", data, 0o644))

	require.NoError(t, afero.WriteFile(fs, "repo/tracked.txt", []byte("hello"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "repo/untracked.txt", []byte("new"), 0o644))

	return r, fs
}

func TestListFilesDefaultsToCached(t *testing.T) {
	t.Parallel()

	r, _ := setupRepoWithIndex(t)

	records, err := r.ListFiles(repository.FileListingOptions{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "tracked.txt", records[0].Path)
}

func TestListFilesOthers(t *testing.T) {
	t.Parallel()

	r, _ := setupRepoWithIndex(t)

	records, err := r.ListFiles(repository.FileListingOptions{Others: true})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "untracked.txt", records[0].Path)
}

func TestListFilesDeleted(t *testing.T) {
	t.Parallel()

	r, fs := setupRepoWithIndex(t)
	require.NoError(t, fs.Remove("repo/tracked.txt"))

	records, err := r.ListFiles(repository.FileListingOptions{Deleted: true})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "tracked.txt", records[0].Path)
}

func TestListFilesModified(t *testing.T) {
	t.Parallel()

	r, fs := setupRepoWithIndex(t)
	require.NoError(t, afero.WriteFile(fs, "repo/tracked.txt", []byte("changed content"), 0o644))

	records, err := r.ListFiles(repository.FileListingOptions{Modified: true})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "tracked.txt", records[0].Path)
}

func TestListFilesStageInfoPopulatesFields(t *testing.T) {
	t.Parallel()

	r, _ := setupRepoWithIndex(t)

	records, err := r.ListFiles(repository.FileListingOptions{Cached: true, StageInfo: true})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].Mode)
	assert.Equal(t, uint32(0o100644), *records[0].Mode)
	require.NotNil(t, records[0].MergeStage)
	assert.Equal(t, index.StageNone, *records[0].MergeStage)
}

func TestListFilesOthersWithoutWorktreeFails(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	r, err := repository.Setup(fs, repository.SetupOptions{Name: "repo.git", Bare: true})
	require.NoError(t, err)

	_, err = r.ListFiles(repository.FileListingOptions{Others: true})
	assert.ErrorIs(t, err, repository.ErrMissingWorktree)
}

func TestListFilesKilled(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	r, err := repository.Setup(fs, repository.SetupOptions{Name: "repo"})
	require.NoError(t, err)

	oid, err := ginternals.NewOidFromStr("e69de29bb2d1d6434b8b29ae775ad8c2e48c5391")
	require.NoError(t, err)

	idx := index.New(2)
	idx.Entries = []index.Entry{
		{Path: "dir/nested.txt", Mode: 0o100644, Oid: oid},
	}
	data, err := idx.Serialize()
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, "repo/.git/index", data, 0o644))

	// a plain file sits where the tracked directory "dir" needs to be
	require.NoError(t, afero.WriteFile(fs, "repo/dir", []byte("blocking"), 0o644))

	records, err := r.ListFiles(repository.FileListingOptions{Killed: true})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "dir", records[0].Path)
}
