// makebranchindex writes the HTML index of one directory of one branch to stdout: a table of every build that has
// the directory, and links to every subdirectory found in any of them.
//
//	usage:
//	   makebranchindex ROOT BRANCH DESTDIR INPUTDIR...
//	e.g.
//	   makebranchindex /mnt/kaldi-asr-data trunk /mnt/kaldi-asr-data/tree.temp/trunk/egs/wsj \
//	       /mnt/kaldi-asr-data/build/{1,15,17}/trunk/egs/wsj > index.html
//
// On any error, nothing is written to stdout, the error goes to stderr and syslog, and the exit code is 1.
package main

import (
	"io"
	"os"
	"strings"

	"gitlab.com/efronlicht/dlindex/internal/branchindex"
	"gitlab.com/efronlicht/dlindex/internal/logging"
	"gitlab.com/efronlicht/dlindex/internal/mirror"
	"go.uber.org/zap"
)

const usage = "makebranchindex ROOT BRANCH DESTDIR INPUTDIR..."

func main() {
	logger, done := logging.New(logging.OptionsFromEnv("makebranchindex"), os.Stderr)
	undo := zap.RedirectStdLog(logger)
	err := run(logger, os.Args, os.Stdout)
	if err != nil {
		logger.Error("makebranchindex failed", zap.Error(err), zap.Strings("args", os.Args))
	}
	undo()
	done()
	if err != nil {
		os.Exit(1)
	}
}

func run(logger *zap.Logger, args []string, stdout io.Writer) error {
	if len(args) < 5 { // program name, root, branch, destdir, and at least one input.
		return &mirror.UsageError{Args: args, Usage: usage}
	}
	root, branch, destdir, inputs := strings.TrimRight(args[1], "/"), args[2], strings.TrimRight(args[3], "/"), args[4:]
	cfg := mirror.ConfigFromEnv()
	p, err := branchindex.Build(cfg, mirror.Layout{Root: root}, branch, destdir, inputs)
	if err != nil {
		return err
	}
	if err := p.Render(stdout); err != nil {
		return err
	}
	logger.Debug("wrote branch index",
		zap.String("branch", branch),
		zap.String("url", p.URL),
		zap.Int("builds", len(p.Builds)),
		zap.Int("subdirs", len(p.Subdirs)),
	)
	return nil
}
