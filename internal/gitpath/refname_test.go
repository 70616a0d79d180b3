package gitpath_test

import (
	"testing"

	"github.com/hollowtree/gitcore/internal/gitpath"
	"github.com/stretchr/testify/require"
)

func TestLocalTagFullName(t *testing.T) {
	t.Parallel()

	out := gitpath.LocalTagFullName("my-tag/nested")
	require.Equal(t, "refs/tags/my-tag/nested", out)
}

func TestLocalTagShortName(t *testing.T) {
	t.Parallel()

	out := gitpath.LocalTagShortName("refs/tags/my-tag/nested")
	require.Equal(t, "my-tag/nested", out)
}

func TestLocalBranchFullName(t *testing.T) {
	t.Parallel()

	out := gitpath.LocalBranchFullName("my-branch/nested")
	require.Equal(t, "refs/heads/my-branch/nested", out)
}

func TestLocalBranchShortName(t *testing.T) {
	t.Parallel()

	out := gitpath.LocalBranchShortName("refs/heads/my-branch/nested")
	require.Equal(t, "my-branch/nested", out)
}

func TestRefFullName(t *testing.T) {
	t.Parallel()

	out := gitpath.RefFullName("HEAD")
	require.Equal(t, "refs/HEAD", out)
}

func TestLooseObjectPath(t *testing.T) {
	t.Parallel()

	out := gitpath.LooseObjectPath("fcfe68a0e44e04bd7fd564fc0b75f1ae457e18b3")
	require.Equal(t, "fc/fe68a0e44e04bd7fd564fc0b75f1ae457e18b3", out)
}
