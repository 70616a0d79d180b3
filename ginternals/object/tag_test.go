package object_test

import (
	"errors"
	"testing"

	"github.com/hollowtree/gitcore/ginternals/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func persistedCommit(t *testing.T) *object.Commit {
	t.Helper()
	tree := object.NewTree(nil)
	c := object.NewCommit(tree.ID(), object.NewSignature("author", "author@domain.tld"), &object.CommitOptions{
		Message: "initial commit",
	})
	return c
}

func TestNewTag(t *testing.T) {
	t.Run("NewTag with all data sets", func(t *testing.T) {
		t.Parallel()

		commit := persistedCommit(t)

		tag, err := object.NewTag(&object.TagParams{
			Target:    commit.ToObject(),
			Message:   "message",
			OptGPGSig: "gpgsig",
			Name:      "v10.5.0",
			Tagger:    object.NewSignature("tagger", "tagger@domain.tld"),
		})
		require.NoError(t, err)
		assert.False(t, tag.ID().IsZero())
		assert.Equal(t, commit.ID(), tag.Target())
		assert.Equal(t, object.TypeCommit, tag.Type())
		assert.Equal(t, "message", tag.Message())
		assert.Equal(t, "v10.5.0", tag.Name())
		assert.Equal(t, "gpgsig", tag.GPGSig())
		assert.Equal(t, "tagger", tag.Tagger().Name)
	})

	t.Run("nil target should fail", func(t *testing.T) {
		t.Parallel()

		_, err := object.NewTag(&object.TagParams{
			Target:    nil,
			Message:   "message",
			OptGPGSig: "gpgsig",
			Name:      "v10.5.0",
			Tagger:    object.NewSignature("tagger", "tagger@domain.tld"),
		})
		require.Error(t, err)
		require.True(t, errors.Is(err, object.ErrObjectInvalid), "invalid error")
	})
}

func TestTagToObject(t *testing.T) {
	t.Run("ToObject should return the raw object", func(t *testing.T) {
		t.Parallel()

		commit := persistedCommit(t)
		tag, err := object.NewTag(&object.TagParams{
			Target:  commit.ToObject(),
			Message: "message",
			Name:    "annotated",
			Tagger:  object.NewSignature("tagger", "tagger@domain.tld"),
		})
		require.NoError(t, err)

		o := tag.ToObject()
		assert.Equal(t, tag.ID(), o.ID())

		tag2, err := o.AsTag()
		require.NoError(t, err)
		assert.Equal(t, tag.Message(), tag2.Message())
	})

	t.Run("round-trips through ToObject/NewTagFromObject", func(t *testing.T) {
		t.Parallel()

		commit := persistedCommit(t)
		tag, err := object.NewTag(&object.TagParams{
			Target:    commit.ToObject(),
			Message:   "message",
			Name:      "v10.5.0",
			OptGPGSig: "-----BEGIN PGP SIGNATURE-----\n\ndata\n-----END PGP SIGNATURE-----",
			Tagger:    object.NewSignature("tagger", "tagger@domain.tld"),
		})
		require.NoError(t, err)

		o := tag.ToObject()
		tag2, err := o.AsTag()
		require.NoError(t, err)

		assert.Equal(t, tag.Message(), tag2.Message())
		assert.Equal(t, tag.Tagger().Name, tag2.Tagger().Name)
		assert.Equal(t, tag.Name(), tag2.Name())
		assert.Equal(t, tag.GPGSig(), tag2.GPGSig())
		assert.Equal(t, tag.Target(), tag2.Target())
	})
}
