package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/hollowtree/gitcore/ginternals/object"
	"github.com/hollowtree/gitcore/internal/testhelper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashObjectWithoutWrite(t *testing.T) {
	t.Parallel()

	out := bytes.NewBufferString("")
	err := hashObjectRun(out, strings.NewReader("hello world"), &globalFlags{}, hashObjectFlags{
		typ:   "blob",
		stdin: true,
	}, nil)
	require.NoError(t, err)

	expected := object.New(object.TypeBlob, []byte("hello world")).ID().String()
	assert.Equal(t, expected+"\n", out.String())
}

func TestHashObjectWithWritePersists(t *testing.T) {
	t.Parallel()

	dir, cleanup := testhelper.TempDir(t)
	t.Cleanup(cleanup)

	require.NoError(t, initRun(bytes.NewBufferString(""), initCmdFlags{}, dir))

	out := bytes.NewBufferString("")
	err := hashObjectRun(out, strings.NewReader("hello world"), &globalFlags{C: dir}, hashObjectFlags{
		typ:   "blob",
		write: true,
		stdin: true,
	}, nil)
	require.NoError(t, err)

	name := strings.TrimSpace(out.String())

	catOut := bytes.NewBufferString("")
	require.NoError(t, catFileRun(catOut, &globalFlags{C: dir}, catFileFlags{}, catFileParams{
		typ:        "blob",
		objectName: name,
	}))
	assert.Equal(t, "hello world", catOut.String())
}
