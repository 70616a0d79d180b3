package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/hollowtree/gitcore/internal/gitpath"
	"github.com/hollowtree/gitcore/internal/testhelper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitCreatesRepository(t *testing.T) {
	t.Parallel()

	dir, cleanup := testhelper.TempDir(t)
	t.Cleanup(cleanup)

	out := bytes.NewBufferString("")
	require.NoError(t, initRun(out, initCmdFlags{}, dir))

	gitDir := filepath.Join(dir, gitpath.DotGitPath)
	info, err := os.Stat(gitDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Contains(t, out.String(), "Initialized empty Git repository in")
}

func TestInitIsIdempotent(t *testing.T) {
	t.Parallel()

	dir, cleanup := testhelper.TempDir(t)
	t.Cleanup(cleanup)

	require.NoError(t, initRun(bytes.NewBufferString(""), initCmdFlags{}, dir))
	require.NoError(t, initRun(bytes.NewBufferString(""), initCmdFlags{}, dir))
}

func TestInitWithCustomBranch(t *testing.T) {
	t.Parallel()

	dir, cleanup := testhelper.TempDir(t)
	t.Cleanup(cleanup)

	require.NoError(t, initRun(bytes.NewBufferString(""), initCmdFlags{initialBranch: "trunk"}, dir))

	data, err := os.ReadFile(filepath.Join(dir, gitpath.DotGitPath, gitpath.HEADPath))
	require.NoError(t, err)
	assert.Equal(t, "ref: refs/heads/trunk\n", string(data))
}
