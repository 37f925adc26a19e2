package mirror

import (
	"errors"
	"fmt"
	"strings"
)

// UsageError is a command line with the wrong number or shape of arguments.
type UsageError struct {
	Args  []string
	Usage string
}

func (err *UsageError) Error() string {
	return fmt.Sprintf("called with wrong arguments: %s\nusage:\t%s", strings.Join(err.Args, " "), err.Usage)
}

// PrefixError is a path that doesn't start where the layout says it must.
type PrefixError struct{ Path, Prefix string }

func (err *PrefixError) Error() string {
	return fmt.Sprintf("expected %s to begin with %s", err.Path, err.Prefix)
}

// ErrMalformedSize is wrapped by SizeFileError when size_kb exists but doesn't hold exactly one line of digits.
var ErrMalformedSize = errors.New("size_kb must hold exactly one line of digits")

// SizeFileError is a size_kb sidecar that couldn't be read or parsed.
type SizeFileError struct {
	Path string
	Err  error
}

func (err *SizeFileError) Error() string {
	return fmt.Sprintf("error getting size of data from %s: %v", err.Path, err.Err)
}
func (err *SizeFileError) Unwrap() error { return err.Err }
