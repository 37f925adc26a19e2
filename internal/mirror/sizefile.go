package mirror

import (
	"bytes"
	"os"
	"strconv"
)

// ReadSizeKB reads a size_kb sidecar: a single line of decimal digits, with or without a trailing newline.
// Every failure, including a missing file, is a *SizeFileError.
func ReadSizeKB(path string) (uint64, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, &SizeFileError{Path: path, Err: err}
	}
	line := bytes.TrimSuffix(b, []byte{'\n'})
	if len(line) == 0 || bytes.IndexFunc(line, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
		return 0, &SizeFileError{Path: path, Err: ErrMalformedSize}
	}
	kb, err := strconv.ParseUint(string(line), 10, 64)
	if err != nil {
		return 0, &SizeFileError{Path: path, Err: err}
	}
	return kb, nil
}
