package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/hollowtree/gitcore/internal/testhelper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepoWithBlob(t *testing.T) (dir, oid string) {
	t.Helper()

	dir, cleanup := testhelper.TempDir(t)
	t.Cleanup(cleanup)

	require.NoError(t, initRun(bytes.NewBufferString(""), initCmdFlags{}, dir))

	out := bytes.NewBufferString("")
	require.NoError(t, hashObjectRun(out, strings.NewReader("hello world"), &globalFlags{C: dir}, hashObjectFlags{
		typ:   "blob",
		write: true,
		stdin: true,
	}, nil))
	return dir, strings.TrimSpace(out.String())
}

func TestCatFileTypeOnly(t *testing.T) {
	t.Parallel()

	dir, oid := setupRepoWithBlob(t)

	out := bytes.NewBufferString("")
	require.NoError(t, catFileRun(out, &globalFlags{C: dir}, catFileFlags{typeOnly: true}, catFileParams{objectName: oid}))
	assert.Equal(t, "blob\n", out.String())
}

func TestCatFileSizeOnly(t *testing.T) {
	t.Parallel()

	dir, oid := setupRepoWithBlob(t)

	out := bytes.NewBufferString("")
	require.NoError(t, catFileRun(out, &globalFlags{C: dir}, catFileFlags{sizeOnly: true}, catFileParams{objectName: oid}))
	assert.Equal(t, "11\n", out.String())
}

func TestCatFileExists(t *testing.T) {
	t.Parallel()

	dir, oid := setupRepoWithBlob(t)

	require.NoError(t, catFileRun(bytes.NewBufferString(""), &globalFlags{C: dir}, catFileFlags{exists: true}, catFileParams{objectName: oid}))

	err := catFileRun(bytes.NewBufferString(""), &globalFlags{C: dir}, catFileFlags{exists: true}, catFileParams{
		objectName: "000000000000000000000000000000000000000a",
	})
	assert.ErrorIs(t, err, errNotFound)
}

func TestCatFileRequiresAMode(t *testing.T) {
	t.Parallel()

	dir, oid := setupRepoWithBlob(t)

	err := catFileRun(bytes.NewBufferString(""), &globalFlags{C: dir}, catFileFlags{}, catFileParams{objectName: oid})
	assert.Error(t, err)
}
