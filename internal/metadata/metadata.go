// Package metadata parses the key=value metadata file submitted alongside each build.
//
//	branch=trunk
//	name=Dan
//	root=/mnt/kaldi-asr-data
//	revision=4180
//	time=1396152000
//	note=first upload
package metadata

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"time"
)

// Required lists the fields every metadata file must set.
var Required = [...]string{"branch", "name", "root", "revision", "time", "note"}

// DateLayout is how Record.Date is formatted: like 30 Mar 2014.
const DateLayout = "02 Jan 2006"

// minLines is the fewest lines (blank ones included) a metadata file may have.
const minLines = 3

var (
	lineRE  = regexp.MustCompile(`^([a-zA-Z0-9_]+)=(.+)$`)
	blankRE = regexp.MustCompile(`^\s*$`)
)

// Record is a validated metadata file.
type Record struct {
	Branch, Name, Root, Revision, Note string
	Time  time.Time         // from the unix timestamp in the 'time' field.
	Date  string            // Time formatted with DateLayout in the caller's location.
	Extra map[string]string // fields we don't use, kept as-is.
}

// ErrTooSmall is returned for a metadata file with fewer than three lines.
var ErrTooSmall = errors.New("metadata file is too small")

// BadLineError is a line that is neither blank nor key=value.
type BadLineError struct {
	Path   string
	LineNo int
	Line   string
}

func (err *BadLineError) Error() string {
	return fmt.Sprintf("bad line %d in file %s: %q", err.LineNo, err.Path, err.Line)
}

// MissingFieldError is a required field that never appeared.
type MissingFieldError struct{ Path, Field string }

func (err *MissingFieldError) Error() string {
	return fmt.Sprintf("variable %s not set in metadata file %s", err.Field, err.Path)
}

// BadFieldError is a required field whose value couldn't be interpreted.
type BadFieldError struct {
	Path, Field, Value string
	Err                error
}

func (err *BadFieldError) Error() string {
	return fmt.Sprintf("field %s=%q in metadata file %s: %v", err.Field, err.Value, err.Path, err.Err)
}
func (err *BadFieldError) Unwrap() error { return err.Err }

// Load reads and validates the metadata file at path. See Parse.
func Load(path string, loc *time.Location) (Record, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Record{}, fmt.Errorf("reading metadata: %w", err)
	}
	return parse(path, bytes.NewReader(b), loc)
}

// Parse reads key=value lines from r, checks that every Required field is present, and formats the date in loc.
// Blank lines are skipped; any other line that isn't key=value is a *BadLineError. The last of a repeated key wins.
func Parse(r io.Reader, loc *time.Location) (Record, error) { return parse("<input>", r, loc) }

func parse(path string, r io.Reader, loc *time.Location) (Record, error) {
	fields := make(map[string]string)
	var n int
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		n++
		line := bytes.TrimSuffix(scanner.Bytes(), []byte{'\r'})
		if m := lineRE.FindSubmatch(line); m != nil {
			fields[string(m[1])] = string(m[2])
			continue
		}
		if !blankRE.Match(line) {
			return Record{}, &BadLineError{Path: path, LineNo: n, Line: string(line)}
		}
	}
	if err := scanner.Err(); err != nil {
		return Record{}, fmt.Errorf("reading %s: %w", path, err)
	}
	if n < minLines {
		return Record{}, fmt.Errorf("%s: %w (%d lines)", path, ErrTooSmall, n)
	}
	for _, k := range Required {
		if _, ok := fields[k]; !ok {
			return Record{}, &MissingFieldError{Path: path, Field: k}
		}
	}
	unix, err := strconv.ParseInt(fields["time"], 10, 64)
	if err != nil {
		return Record{}, &BadFieldError{Path: path, Field: "time", Value: fields["time"], Err: err}
	}
	rec := Record{
		Branch:   fields["branch"],
		Name:     fields["name"],
		Root:     fields["root"],
		Revision: fields["revision"],
		Note:     fields["note"],
		Time:     time.Unix(unix, 0).In(loc),
	}
	rec.Date = rec.Time.Format(DateLayout)
	for _, k := range Required {
		delete(fields, k)
	}
	if len(fields) > 0 {
		rec.Extra = fields
	}
	return rec, nil
}
