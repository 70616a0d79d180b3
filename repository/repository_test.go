package repository_test

import (
	"testing"

	"github.com/hollowtree/gitcore/ginternals/object"
	"github.com/hollowtree/gitcore/repository"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupCreatesSkeleton(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	r, err := repository.Setup(fs, repository.SetupOptions{Name: "repo"})
	require.NoError(t, err)

	name, err := r.Name()
	require.NoError(t, err)
	assert.Contains(t, name, "repo/.git")

	worktree, ok := r.Worktree()
	require.True(t, ok)
	assert.Contains(t, worktree, "repo")

	for _, p := range []string{
		"repo/.git/HEAD",
		"repo/.git/refs/heads",
		"repo/.git/refs/tags",
		"repo/.git/objects/info",
		"repo/.git/objects/pack",
	} {
		_, statErr := fs.Stat(p)
		assert.NoError(t, statErr, p)
	}

	head, err := afero.ReadFile(fs, "repo/.git/HEAD")
	require.NoError(t, err)
	assert.Equal(t, "ref: refs/heads/main\n", string(head))
}

func TestSetupIsIdempotent(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	_, err := repository.Setup(fs, repository.SetupOptions{Name: "repo"})
	require.NoError(t, err)

	// a second Setup against the same directory must not fail or
	// clobber the existing HEAD
	_, err = repository.Setup(fs, repository.SetupOptions{Name: "repo"})
	require.NoError(t, err)
}

func TestSetupBareRepository(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	r, err := repository.Setup(fs, repository.SetupOptions{Name: "repo.git", Bare: true})
	require.NoError(t, err)

	_, ok := r.Worktree()
	assert.False(t, ok)

	_, statErr := fs.Stat("repo.git/HEAD")
	assert.NoError(t, statErr)
}

func TestWriteObjectThenGetObject(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	r, err := repository.Setup(fs, repository.SetupOptions{Name: "repo"})
	require.NoError(t, err)

	blob := object.New(object.TypeBlob, []byte("hello world"))
	oid, err := r.WriteObject(blob)
	require.NoError(t, err)
	assert.Equal(t, blob.ID(), oid)

	got, err := r.GetObject(oid)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello world"), got.Bytes())
	assert.Equal(t, object.TypeBlob, got.Type())
}

func TestOpenDiscoversRepository(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	_, err := repository.Setup(fs, repository.SetupOptions{Name: "/work/repo"})
	require.NoError(t, err)

	require.NoError(t, fs.MkdirAll("/work/repo/src/nested", 0o750))

	r, err := repository.Open(fs, "/work/repo/src/nested")
	require.NoError(t, err)

	name, err := r.Name()
	require.NoError(t, err)
	assert.Contains(t, name, "/work/repo/.git")
}

func TestReferenceResolvesHEAD(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	r, err := repository.Setup(fs, repository.SetupOptions{Name: "repo", InitialBranch: "main"})
	require.NoError(t, err)

	blob := object.New(object.TypeBlob, []byte("content"))
	_, err = r.WriteObject(blob)
	require.NoError(t, err)

	require.NoError(t, afero.WriteFile(fs, "repo/.git/refs/heads/main", []byte(blob.ID().String()+"\n"), 0o644))

	ref, err := r.Reference("HEAD")
	require.NoError(t, err)
	assert.Equal(t, blob.ID(), ref.Target())
}

func TestLoadIndexMissingReturnsEmpty(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	r, err := repository.Setup(fs, repository.SetupOptions{Name: "repo"})
	require.NoError(t, err)

	idx, err := r.LoadIndex()
	require.NoError(t, err)
	assert.Empty(t, idx.Entries)
}
