// Package mirror knows the on-disk layout of the download mirror and the public URLs that map onto it.
//
//	ROOT/submitted/BUILD/metadata          who uploaded BUILD, when, and why
//	ROOT/build/BUILD/DIR                   the raw artifact tree
//	ROOT/build_index/BUILD.temp/DIR/size_kb the sidecar tree, with precomputed sizes
//	ROOT/tree.temp/BRANCH/DIR              where branch indexes are written
//
// The web server maps /downloads/build onto build_index, so index pages are linked under /downloads/build.
// Those URL prefixes are load-bearing: the rewrite rules depend on them.
package mirror

import (
	"strconv"
	"strings"
)

// Public URL prefixes.
const (
	BuildURL = "/downloads/build"
	AllURL   = "/downloads/all"
	TreeURL  = "/downloads/tree"
)

// Layout resolves paths under the mirror root.
type Layout struct{ Root string }

// Metadata is the path of a build's metadata file.
func (l Layout) Metadata(build string) string {
	return l.Root + "/submitted/" + build + "/metadata"
}

// SourceDir is the raw artifact directory for dir in build. dir may be empty for the build's top level.
func (l Layout) SourceDir(build, dir string) string {
	return l.Root + "/build/" + build + slash(dir)
}

// SidecarDir is the directory holding size_kb for dir while the build's index is being generated.
func (l Layout) SidecarDir(build, dir string) string {
	return l.Root + "/build_index/" + build + ".temp" + slash(dir)
}

// SizeFile is the size_kb sidecar inside dir.
func SizeFile(dir string) string { return dir + "/size_kb" }

// BuildPrefix is what every branch-index input dir starts with.
func (l Layout) BuildPrefix() string { return l.Root + "/build/" }

// TreePrefix is what every branch-index destination starts with.
func (l Layout) TreePrefix() string { return l.Root + "/tree.temp/" }

// SplitBuildDir splits an input dir like ROOT/build/17/trunk/egs into build number 17 and the part after ROOT/build/ ("17/trunk/egs").
// The digits must be followed by a slash or the end of the path.
func (l Layout) SplitBuildDir(dir string) (build uint64, unique string, err error) {
	prefix := l.BuildPrefix()
	unique, ok := strings.CutPrefix(dir, prefix)
	if !ok {
		return 0, "", &PrefixError{Path: dir, Prefix: prefix + "(digits)/"}
	}
	digits, _, _ := strings.Cut(unique, "/")
	build, err = strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0, "", &PrefixError{Path: dir, Prefix: prefix + "(digits)/"}
	}
	return build, unique, nil
}

// IndexDir is where the finished index for the unique part of an input dir lives: ROOT/build_index/UNIQUE.
func (l Layout) IndexDir(unique string) string { return l.Root + "/build_index/" + unique }

// TreeDir splits a branch-index destination ROOT/tree.temp/BRANCH/DIR into its public URL (/downloads/tree/BRANCH/DIR)
// and the part after the branch name ("/DIR", or "" at the top of the branch).
func (l Layout) TreeDir(branch, destdir string) (url, dir string, err error) {
	rest, ok := strings.CutPrefix(destdir, l.TreePrefix())
	if !ok {
		return "", "", &PrefixError{Path: destdir, Prefix: l.TreePrefix()}
	}
	dir, ok = strings.CutPrefix(destdir, l.TreePrefix()+branch)
	if !ok || (dir != "" && !strings.HasPrefix(dir, "/")) {
		return "", "", &PrefixError{Path: destdir, Prefix: l.TreePrefix() + branch}
	}
	return TreeURL + "/" + rest, dir, nil
}

// BuildDirURL is the public URL of dir within build, with a trailing slash.
func BuildDirURL(build, dir string) string { return BuildURL + "/" + build + slash(dir) + "/" }

// BuildFileURL is the public URL of name inside dir within build.
func BuildFileURL(build, dir, name string) string { return BuildURL + "/" + build + slash(dir) + "/" + name }

// ArchiveURL is the tarball of dir within build.
func ArchiveURL(build, dir string) string { return BuildFileURL(build, dir, "archive.tar.gz") }

// AllBuildsURL is the cross-build view of dir within a build.
func AllBuildsURL(dir string) string { return AllURL + slash(dir) + "/" }

// AllBranchesURL is the cross-branch view of a branch-relative dir ("" or "/a/b").
func AllBranchesURL(branchDir string) string { return AllURL + branchDir }

// UniqueURL is the public URL of the index for the unique part of an input dir.
func UniqueURL(unique string) string { return BuildURL + "/" + unique }

// DisplayDir renders dir the way page headers show it: "/" for the top, "/a/b/" otherwise.
func DisplayDir(dir string) string {
	if dir = strings.Trim(dir, "/"); dir == "" {
		return "/"
	}
	return "/" + dir + "/"
}

func slash(dir string) string {
	if dir == "" {
		return ""
	}
	return "/" + dir
}
