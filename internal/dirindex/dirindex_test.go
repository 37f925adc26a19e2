package dirindex

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"gitlab.com/efronlicht/dlindex/internal/metadata"
	"gitlab.com/efronlicht/dlindex/internal/mirror"
)

const meta = `branch=trunk
name=Dan
root=/mnt/kaldi-asr-data
revision=4180
time=1396152000
note=first <b>upload</b>
`

// 60 characters.
const longTarget = "../../../../shared/models/tri4b/final.mdl.with.a.long.suffix"

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// fixture lays out build 6, directory trunk/egs:
//
//	big/     subdirectory, 4096 KB
//	small/   subdirectory, 1 KB
//	run.sh   2048 bytes
//	README   10 bytes
//	latest   -> longTarget
//	best     -> exp/tri3
func fixture(t *testing.T) mirror.Layout {
	t.Helper()
	l := mirror.Layout{Root: t.TempDir()}
	write(t, l.Metadata("6"), meta)
	src, sidecar := l.SourceDir("6", "trunk/egs"), l.SidecarDir("6", "trunk/egs")
	write(t, mirror.SizeFile(sidecar), "4200\n")
	for name, kb := range map[string]string{"big": "4096\n", "small": "1\n"} {
		if err := os.MkdirAll(filepath.Join(src, name), 0o755); err != nil {
			t.Fatal(err)
		}
		write(t, mirror.SizeFile(filepath.Join(sidecar, name)), kb)
	}
	write(t, filepath.Join(src, "run.sh"), strings.Repeat("x", 2048))
	write(t, filepath.Join(src, "README"), "0123456789")
	for name, target := range map[string]string{"latest": longTarget, "best": "exp/tri3"} {
		if err := os.Symlink(target, filepath.Join(src, name)); err != nil {
			t.Fatal(err)
		}
	}
	return l
}

func render(t *testing.T, p *Page) *goquery.Document {
	t.Helper()
	var buf bytes.Buffer
	if err := p.Render(&buf); err != nil {
		t.Fatal(err)
	}
	doc, err := goquery.NewDocumentFromReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestBuild(t *testing.T) {
	if len(longTarget) != 60 {
		t.Fatalf("longTarget is %d characters", len(longTarget))
	}
	p, err := Build(mirror.DefaultConfig(), fixture(t), "6", "trunk/egs")
	if err != nil {
		t.Fatal(err)
	}
	names := func(es []Entry) (out []string) {
		for _, e := range es {
			out = append(out, e.Name)
		}
		return out
	}
	for _, tt := range []struct {
		name      string
		got, want []string
	}{
		{"subdirs", names(p.Subdirs), []string{"big", "small"}},
		{"files", names(p.Files), []string{"run.sh", "README"}},
		{"links", names(p.Links), []string{"best", "latest"}},
	} {
		if strings.Join(tt.got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
	if p.Subdirs[0].Size != 4096*1024 || p.Files[0].Size != 2048 {
		t.Errorf("sizes: big %d, run.sh %d", p.Subdirs[0].Size, p.Files[0].Size)
	}
	if p.Links[1].Target != longTarget {
		t.Errorf("latest target = %q", p.Links[1].Target)
	}
	if p.SizeKB != 4200 || p.Meta.Name != "Dan" {
		t.Errorf("SizeKB, Meta.Name = %d, %q", p.SizeKB, p.Meta.Name)
	}
}

func TestRender(t *testing.T) {
	p, err := Build(mirror.DefaultConfig(), fixture(t), "6", "trunk/egs")
	if err != nil {
		t.Fatal(err)
	}
	doc := render(t, p)

	type cell struct{ text, href, size string }
	var got []cell
	doc.Find("table tr").Each(func(i int, s *goquery.Selection) {
		if i == 0 {
			return // header
		}
		td := s.Find("td")
		href, _ := td.First().Find("a").Attr("href")
		got = append(got, cell{strings.TrimSpace(td.First().Text()), href, strings.TrimSpace(td.Last().Text())})
	})
	want := []cell{
		{"big/", "/downloads/build/6/trunk/egs/big/index.html", "4.0M"},
		{"small/", "/downloads/build/6/trunk/egs/small/index.html", "1.0K"},
		{"run.sh", "/downloads/build/6/trunk/egs/run.sh", "2.0K"},
		{"README", "/downloads/build/6/trunk/egs/README", "10"},
		{"best → exp/tri3", "", "-"},
		{"latest → " + longTarget[:38] + "..", "", "-"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d rows, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	h3 := strings.Join(strings.Fields(doc.Find("h3").First().Text()), " ")
	if h3 != "Index of /trunk/egs/ in build 6; [see all builds]" {
		t.Errorf("heading = %q", h3)
	}
	if href, _ := doc.Find("h3 a").Attr("href"); href != "/downloads/all/trunk/egs/" {
		t.Errorf("all builds href = %q", href)
	}
	box := strings.Join(strings.Fields(doc.Find(".boxed").Text()), " ")
	for _, s := range []string{"Build 6 was uploaded on 30 Mar 2014 by Dan.", "revision number 4180 of Kaldi", "first <b>upload</b>"} {
		if !strings.Contains(box, s) {
			t.Errorf("metadata box %q does not contain %q", box, s)
		}
	}
	if doc.Find(".boxed b").Length() != 0 {
		t.Error("note was interpolated as markup")
	}
	archive := doc.Find(`a[href="/downloads/build/6/trunk/egs/archive.tar.gz"]`)
	if archive.Length() != 1 {
		t.Fatal("missing archive link")
	}
	if body := doc.Find("#mainContent").Text(); !strings.Contains(body, "Un-compressed size is 4.1M. Expect a short delay.") {
		t.Errorf("missing size line in %q", body)
	}
}

func TestRenderTooBig(t *testing.T) {
	l := fixture(t)
	write(t, mirror.SizeFile(l.SidecarDir("6", "trunk/egs")), "10000000\n") // 1.024e10 bytes
	p, err := Build(mirror.DefaultConfig(), l, "6", "trunk/egs")
	if err != nil {
		t.Fatal(err)
	}
	if !p.TooBig() {
		t.Fatal("TooBig() = false")
	}
	doc := render(t, p)
	if n := doc.Find(`a[href$="archive.tar.gz"]`).Length(); n != 0 {
		t.Errorf("found %d archive links on a too-big directory", n)
	}
	if body := doc.Find("#mainContent").Text(); !strings.Contains(body, "[This directory is too big to download] Un-compressed size is 9.5G") {
		t.Errorf("missing too-big message in %q", body)
	}
}

func TestRenderTopLevel(t *testing.T) {
	l := mirror.Layout{Root: t.TempDir()}
	write(t, l.Metadata("6"), meta)
	write(t, mirror.SizeFile(l.SidecarDir("6", "")), "12\n")
	write(t, filepath.Join(l.SourceDir("6", ""), "tiny"), "x")
	p, err := Build(mirror.DefaultConfig(), l, "6", "")
	if err != nil {
		t.Fatal(err)
	}
	doc := render(t, p)
	if href, _ := doc.Find(`a[href$="tiny"]`).Attr("href"); href != "/downloads/build/6/tiny" {
		t.Errorf("file href = %q", href)
	}
	if href, _ := doc.Find("h3 a").Attr("href"); href != "/downloads/all/" {
		t.Errorf("all builds href = %q", href)
	}
	if body := doc.Find("#mainContent").Text(); strings.Contains(body, "Expect a short delay") {
		t.Error("small directory warned of a delay")
	}
}

func TestBuildErrors(t *testing.T) {
	for _, tt := range []struct {
		name   string
		mangle func(t *testing.T, l mirror.Layout)
		check  func(error) bool
	}{
		{
			name:   "missing subdirectory size",
			mangle: func(t *testing.T, l mirror.Layout) { os.Remove(mirror.SizeFile(l.SidecarDir("6", "trunk/egs/big"))) },
			check:  func(err error) bool { var e *mirror.SizeFileError; return errors.As(err, &e) && errors.Is(err, os.ErrNotExist) },
		},
		{
			name:   "malformed subdirectory size",
			mangle: func(t *testing.T, l mirror.Layout) { write(t, mirror.SizeFile(l.SidecarDir("6", "trunk/egs/small")), "lots\n") },
			check:  func(err error) bool { return errors.Is(err, mirror.ErrMalformedSize) },
		},
		{
			name:   "missing directory size",
			mangle: func(t *testing.T, l mirror.Layout) { os.Remove(mirror.SizeFile(l.SidecarDir("6", "trunk/egs"))) },
			check:  func(err error) bool { var e *mirror.SizeFileError; return errors.As(err, &e) },
		},
		{
			name:   "missing metadata field",
			mangle: func(t *testing.T, l mirror.Layout) { write(t, l.Metadata("6"), strings.Replace(meta, "revision=", "rev=", 1)) },
			check:  func(err error) bool { var e *metadata.MissingFieldError; return errors.As(err, &e) && e.Field == "revision" },
		},
		{
			name:   "bad metadata line",
			mangle: func(t *testing.T, l mirror.Layout) { write(t, l.Metadata("6"), meta+"oops\n") },
			check:  func(err error) bool { var e *metadata.BadLineError; return errors.As(err, &e) },
		},
		{
			name:   "missing source directory",
			mangle: func(t *testing.T, l mirror.Layout) { os.RemoveAll(l.SourceDir("6", "trunk/egs")) },
			check:  func(err error) bool { return errors.Is(err, os.ErrNotExist) },
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			l := fixture(t)
			tt.mangle(t, l)
			_, err := Build(mirror.DefaultConfig(), l, "6", "trunk/egs")
			if err == nil {
				t.Fatal("expected an error")
			}
			if !tt.check(err) {
				t.Errorf("Build() error = %v (%T): wrong kind", err, err)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	for _, tt := range []struct {
		in   string
		n    int
		want string
	}{
		{"short", 40, "short"},
		{strings.Repeat("a", 40), 40, strings.Repeat("a", 40)},
		{strings.Repeat("a", 41), 40, strings.Repeat("a", 38) + ".."},
		{"héllo wörld", 6, "héll.."},
	} {
		if got := Truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
