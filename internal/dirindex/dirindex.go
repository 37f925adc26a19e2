// Package dirindex builds the index page for one directory of one build:
// its subdirectories (largest first), its files (largest first), and its symlinks (by name), plus the build's metadata and a download link.
package dirindex

import (
	"cmp"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"

	"gitlab.com/efronlicht/dlindex/internal/humansize"
	"gitlab.com/efronlicht/dlindex/internal/metadata"
	"gitlab.com/efronlicht/dlindex/internal/mirror"
	"gitlab.com/efronlicht/dlindex/internal/page"
)

// Kind is what a directory entry turned out to be.
type Kind uint8

const (
	KindFile Kind = iota
	KindDir
	KindSymlink
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	case KindSymlink:
		return "symlink"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Entry is one listed item.
type Entry struct {
	Name   string
	Kind   Kind
	Size   uint64 // bytes. for a subdirectory, 1024 * its size_kb.
	Target string // symlinks only.
}

// EntryTypeError is a directory entry that is neither a file, a directory, nor a symlink: a socket, a fifo, a device...
type EntryTypeError struct {
	Path string
	Mode fs.FileMode
}

func (err *EntryTypeError) Error() string {
	return fmt.Sprintf("directory entry %s is neither a directory, nor link, nor file (mode %s)", err.Path, err.Mode)
}

// Page is everything the index of one directory shows.
type Page struct {
	Build, Dir string // Dir is relative to the build's top level; "" for the top itself.
	Meta       metadata.Record
	SizeKB     uint64 // total size of Dir, from its size_kb sidecar.
	Subdirs    []Entry
	Files      []Entry
	Links      []Entry

	cfg mirror.Config
}

// Build gathers the page for dir in build: metadata, the directory's own size, and its sorted entries.
// Any missing or malformed input fails the whole page.
func Build(cfg mirror.Config, l mirror.Layout, build, dir string) (*Page, error) {
	meta, err := metadata.Load(l.Metadata(build), cfg.Location)
	if err != nil {
		return nil, err
	}
	sidecar := l.SidecarDir(build, dir)
	sizeKB, err := mirror.ReadSizeKB(mirror.SizeFile(sidecar))
	if err != nil {
		return nil, err
	}
	entries, err := Scan(l.SourceDir(build, dir), sidecar)
	if err != nil {
		return nil, err
	}
	p := &Page{Build: build, Dir: dir, Meta: meta, SizeKB: sizeKB, cfg: cfg}
	for _, e := range entries {
		switch e.Kind {
		case KindDir:
			p.Subdirs = append(p.Subdirs, e)
		case KindFile:
			p.Files = append(p.Files, e)
		case KindSymlink:
			p.Links = append(p.Links, e)
		}
	}
	slices.SortFunc(p.Subdirs, bySizeDesc)
	slices.SortFunc(p.Files, bySizeDesc)
	slices.SortFunc(p.Links, byName)
	return p, nil
}

func byName(a, b Entry) int { return cmp.Compare(a.Name, b.Name) }

// largest first; equal sizes by name.
func bySizeDesc(a, b Entry) int {
	if c := cmp.Compare(b.Size, a.Size); c != 0 {
		return c
	}
	return byName(a, b)
}

// Scan classifies every entry of src. Subdirectory sizes come from the matching size_kb under sidecar;
// file sizes come from the filesystem; symlinks are not followed, only read.
func Scan(src, sidecar string) ([]Entry, error) {
	dirents, err := os.ReadDir(src)
	if err != nil {
		return nil, fmt.Errorf("could not open source directory %s for reading: %w", src, err)
	}
	entries := make([]Entry, 0, len(dirents))
	for _, d := range dirents {
		path := src + "/" + d.Name()
		e := Entry{Name: d.Name()}
		switch t := d.Type(); {
		case t&fs.ModeSymlink != 0:
			e.Kind = KindSymlink
			if e.Target, err = os.Readlink(path); err != nil {
				return nil, fmt.Errorf("error getting text of soft link %s: %w", path, err)
			}
		case t.IsDir():
			e.Kind = KindDir
			kb, err := mirror.ReadSizeKB(mirror.SizeFile(sidecar + "/" + d.Name()))
			if err != nil {
				return nil, fmt.Errorf("sub-directory %s: %w", path, err)
			}
			e.Size = 1024 * kb
		case t.IsRegular():
			e.Kind = KindFile
			info, err := d.Info()
			if err != nil {
				return nil, fmt.Errorf("error getting size of file %s: %w", path, err)
			}
			e.Size = uint64(info.Size())
		default:
			return nil, &EntryTypeError{Path: path, Mode: t}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// TooBig reports whether the directory is over the download limit, and so gets no archive link.
func (p *Page) TooBig() bool { return 1024*p.SizeKB > p.cfg.MaxDownloadBytes }

// Truncate cuts s to n runes, the last two of them "..". Strings of n runes or fewer are left alone.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-2]) + ".."
}

type row struct{ Href, Label, Size string }

type link struct{ Name, Target string }

// Render writes the page as HTML.
func (p *Page) Render(w io.Writer) error {
	view := struct {
		Dir, Build, AllURL                      string
		Date, Uploader, Revision, Note, Project string
		TooBig, Slow                            bool
		Size, ArchiveURL                        string
		Rows                                    []row
		Links                                   []link
	}{
		Dir:        mirror.DisplayDir(p.Dir),
		Build:      p.Build,
		AllURL:     mirror.AllBuildsURL(p.Dir),
		Date:       p.Meta.Date,
		Uploader:   p.Meta.Name,
		Revision:   p.Meta.Revision,
		Note:       p.Meta.Note,
		Project:    p.cfg.Project,
		TooBig:     p.TooBig(),
		Slow:       p.SizeKB > 1000,
		Size:       humansize.FormatKB(p.SizeKB),
		ArchiveURL: mirror.ArchiveURL(p.Build, p.Dir),
	}
	for _, e := range p.Subdirs {
		view.Rows = append(view.Rows, row{
			Href:  mirror.BuildFileURL(p.Build, p.Dir, e.Name+"/index.html"),
			Label: e.Name + "/",
			Size:  humansize.Format(e.Size),
		})
	}
	for _, e := range p.Files {
		view.Rows = append(view.Rows, row{
			Href:  mirror.BuildFileURL(p.Build, p.Dir, e.Name),
			Label: e.Name,
			Size:  humansize.Format(e.Size),
		})
	}
	for _, e := range p.Links {
		view.Links = append(view.Links, link{Name: e.Name, Target: Truncate(e.Target, p.cfg.LinkTargetMax)})
	}
	return page.Render(w, tmpl, p.cfg.SiteName, view)
}

var tmpl = page.Must(`
        <h3>
          Index of {{.Dir}} in build {{.Build}}; <a href="{{.AllURL}}">[see all builds]</a>
        </h3>

        <div class="boxed">
          Build <span class="content">{{.Build}}</span> was uploaded on <span class="content">{{.Date}}</span> by <span class="content">{{.Uploader}}.</span><br>
          It was made with revision number <span class="content">{{.Revision}}</span> of {{.Project}}.<br>
          <span class="content">{{.Note}}</span>
        </div>
{{if .TooBig}}
        [This directory is too big to download] Un-compressed size is {{.Size}}<br>
{{else}}
        <a href="{{.ArchiveURL}}">[Download archive of this directory]</a> Un-compressed size is {{.Size}}.{{if .Slow}} Expect a short delay.{{end}}<br>
{{end}}
        <table style="margin-top:0.2em">
          <tr><th>Name</th><th>Size</th></tr>
{{- range .Rows}}
          <tr><td><a href="{{.Href}}">{{.Label}}</a></td><td>{{.Size}}</td></tr>
{{- end}}
{{- range .Links}}
          <tr><td>{{.Name}} &rarr; {{.Target}}</td><td>-</td></tr>
{{- end}}
        </table>
`)
