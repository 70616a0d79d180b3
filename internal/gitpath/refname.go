package gitpath

import (
	"path"
	"strings"
)

// LocalTagFullName returns the full name of a tag
// ex. for `my-tag` returns `refs/tags/my-tag`
func LocalTagFullName(shortName string) string {
	return path.Join(RefsTagsPath, shortName)
}

// LocalTagShortName returns the short name of a tag
// ex. for refs/tags/my-tag returns my-tag
func LocalTagShortName(fullName string) string {
	return strings.TrimPrefix(fullName, RefsTagsPath+"/")
}

// LocalBranchFullName returns the full name of branch
// ex. for `main` returns `refs/heads/main`
func LocalBranchFullName(shortName string) string {
	return path.Join(RefsHeadsPath, shortName)
}

// LocalBranchShortName returns the short name of a branch
// ex. for `refs/heads/main` returns `main`
func LocalBranchShortName(fullName string) string {
	return strings.TrimPrefix(fullName, RefsHeadsPath+"/")
}

// RefFullName returns the UNIX path of a ref, relative to the refs
// directory. ex. for `heads/main` returns `refs/heads/main`
func RefFullName(shortName string) string {
	return path.Join(RefsPath, shortName)
}

// LooseObjectPath returns the on-disk path of a loose object relative to
// the objects directory: the first two hex characters name a
// subdirectory, the remaining 38 name the file.
//
// Ex. the path of fcfe68a0e44e04bd7fd564fc0b75f1ae457e18b3 is
// fc/fe68a0e44e04bd7fd564fc0b75f1ae457e18b3
func LooseObjectPath(sha string) string {
	return path.Join(sha[:2], sha[2:])
}
