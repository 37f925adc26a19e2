// makeindex writes the HTML index of one directory of one build to stdout.
// The driver calls it once per directory, bottom-up, after size_kb has been computed for the whole build.
//
//	usage:
//	   makeindex ROOT BUILD DIRECTORY
//	e.g.
//	   makeindex /mnt/kaldi-asr-data 6 trunk/egs/wsj/s5 > index.html
//
// DIRECTORY may be the empty string for the top of the build.
// On any error, nothing is written to stdout, the error goes to stderr and syslog, and the exit code is 1.
package main

import (
	"io"
	"os"
	"strings"

	"gitlab.com/efronlicht/dlindex/internal/dirindex"
	"gitlab.com/efronlicht/dlindex/internal/logging"
	"gitlab.com/efronlicht/dlindex/internal/mirror"
	"go.uber.org/zap"
)

const usage = "makeindex ROOT BUILD DIRECTORY"

func main() {
	logger, done := logging.New(logging.OptionsFromEnv("makeindex"), os.Stderr)
	undo := zap.RedirectStdLog(logger)
	err := run(logger, os.Args, os.Stdout)
	if err != nil {
		logger.Error("makeindex failed", zap.Error(err), zap.Strings("args", os.Args))
	}
	undo()
	done()
	if err != nil {
		os.Exit(1)
	}
}

func run(logger *zap.Logger, args []string, stdout io.Writer) error {
	if len(args) != 4 { // note: first argument is the program name
		return &mirror.UsageError{Args: args, Usage: usage}
	}
	root, build, dir := strings.TrimRight(args[1], "/"), args[2], strings.Trim(args[3], "/")
	cfg := mirror.ConfigFromEnv()
	p, err := dirindex.Build(cfg, mirror.Layout{Root: root}, build, dir)
	if err != nil {
		return err
	}
	if err := p.Render(stdout); err != nil {
		return err
	}
	logger.Debug("wrote index",
		zap.String("build", build),
		zap.String("dir", dir),
		zap.Int("subdirs", len(p.Subdirs)),
		zap.Int("files", len(p.Files)),
		zap.Int("links", len(p.Links)),
		zap.Uint64("size_kb", p.SizeKB),
	)
	return nil
}
