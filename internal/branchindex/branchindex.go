// Package branchindex builds the per-branch view of one directory: which builds contain it, and which subdirectories
// exist in at least one of them.
package branchindex

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"gitlab.com/efronlicht/dlindex/internal/humansize"
	"gitlab.com/efronlicht/dlindex/internal/metadata"
	"gitlab.com/efronlicht/dlindex/internal/mirror"
	"gitlab.com/efronlicht/dlindex/internal/page"
)

// ErrNoInputs is returned by Build when given no input directories.
var ErrNoInputs = errors.New("no input directories")

// DuplicateBuildError is two input directories from the same build.
type DuplicateBuildError struct {
	Build      uint64
	First, Dup string
}

func (err *DuplicateBuildError) Error() string {
	return fmt.Sprintf("multiple instances of build %d on command line: %s and %s", err.Build, err.First, err.Dup)
}

// BuildInfo is one row of the builds table.
type BuildInfo struct {
	Number   uint64
	ID       string // Number as written in the input directory.
	InputDir string // ROOT/build/ID/...
	Unique   string // InputDir minus ROOT/build/
	Meta     metadata.Record
	SizeKB   uint64 // from ROOT/build_index/UNIQUE/size_kb
	URL      string // public URL of that build's index of this directory.
}

// Page is everything a branch index shows.
type Page struct {
	Branch  string
	URL     string      // public URL of the page itself.
	Dir     string      // the part of the destination after the branch name: "" at the top of the branch, otherwise "/a/b".
	Builds  []BuildInfo // ascending by Number.
	Subdirs []string    // union over all inputs, sorted.

	cfg mirror.Config
}

// Build gathers the page written to destdir for branch, from one input directory per build.
func Build(cfg mirror.Config, l mirror.Layout, branch, destdir string, inputs []string) (*Page, error) {
	if len(inputs) == 0 {
		return nil, ErrNoInputs
	}
	seen := make(map[uint64]string, len(inputs))
	builds := make([]BuildInfo, 0, len(inputs))
	for _, dir := range inputs {
		n, unique, err := l.SplitBuildDir(dir)
		if err != nil {
			return nil, err
		}
		if first, ok := seen[n]; ok {
			return nil, &DuplicateBuildError{Build: n, First: first, Dup: dir}
		}
		seen[n] = dir
		id, _, _ := strings.Cut(unique, "/")
		builds = append(builds, BuildInfo{Number: n, ID: id, InputDir: dir, Unique: unique})
	}
	slices.SortFunc(builds, func(a, b BuildInfo) int { return cmp.Compare(a.Number, b.Number) })

	for i := range builds {
		b := &builds[i]
		meta, err := metadata.Load(l.Metadata(b.ID), cfg.Location)
		if err != nil {
			return nil, fmt.Errorf("build %d: %w", b.Number, err)
		}
		b.Meta = meta
		if b.SizeKB, err = mirror.ReadSizeKB(mirror.SizeFile(l.IndexDir(b.Unique))); err != nil {
			return nil, fmt.Errorf("build %d: %w", b.Number, err)
		}
		b.URL = mirror.UniqueURL(b.Unique)
	}

	url, dir, err := l.TreeDir(branch, destdir)
	if err != nil {
		return nil, err
	}
	subdirs, err := Subdirs(inputs)
	if err != nil {
		return nil, err
	}
	return &Page{Branch: branch, URL: url, Dir: dir, Builds: builds, Subdirs: subdirs, cfg: cfg}, nil
}

// Subdirs lists, sorted, every name that is a real directory (not a symlink to one) in at least one of dirs.
func Subdirs(dirs []string) ([]string, error) {
	set := make(map[string]bool)
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("listing input directory: %w", err)
		}
		for _, e := range entries {
			if e.IsDir() {
				set[e.Name()] = true
			}
		}
	}
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

type buildRow struct {
	Number                                    uint64
	URL, Uploader, Date, Revision, Size, Note string
}

type subdirLink struct{ Href, Name string }

// Render writes the page as HTML.
func (p *Page) Render(w io.Writer) error {
	view := struct {
		Dir, Branch, AllURL, Project, ParentURL string
		Builds                                  []buildRow
		Subdirs                                 []subdirLink
	}{
		Dir:     mirror.DisplayDir(p.Dir),
		Branch:  p.Branch,
		AllURL:  mirror.AllBranchesURL(p.Dir),
		Project: p.cfg.Project,
	}
	if p.Dir != "" {
		view.ParentURL = p.URL + "/.."
	}
	for _, b := range p.Builds {
		view.Builds = append(view.Builds, buildRow{
			Number:   b.Number,
			URL:      b.URL,
			Uploader: b.Meta.Name,
			Date:     b.Meta.Date,
			Revision: b.Meta.Revision,
			Size:     humansize.FormatKB(b.SizeKB),
			Note:     b.Meta.Note,
		})
	}
	for _, name := range p.Subdirs {
		view.Subdirs = append(view.Subdirs, subdirLink{Href: p.URL + "/" + name, Name: name})
	}
	return page.Render(w, tmpl, p.cfg.SiteName, view)
}

var tmpl = page.Must(`
        <h3>
          Index of {{.Dir}} in branch {{.Branch}}; <a href="{{.AllURL}}">[see all branches]</a>
        </h3>

        <h3>Builds available for this directory:</h3>

        <table style="margin-top:0.2em">
          <tr><th>Build number</th><th>Uploader</th><th>Date</th><th>{{.Project}} revision</th><th>Size</th><th>Note</th></tr>
{{- range .Builds}}
          <tr><td><a href="{{.URL}}">{{.Number}}</a></td><td>{{.Uploader}}</td><td>{{.Date}}</td><td>r{{.Revision}}</td><td>{{.Size}}</td><td>{{.Note}}</td></tr>
{{- end}}
        </table>

        <h3>Subdirectories:</h3>
{{- range .Subdirs}}
        <a href="{{.Href}}">{{.Name}}/</a><br>
{{- end}}
{{- if .ParentURL}}
        <p></p>
        <a href="{{.ParentURL}}">[parent directory]</a><br>
{{- end}}
`)
