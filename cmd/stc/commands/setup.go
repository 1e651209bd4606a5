package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"

	"martianoff/stc/internal/ast"
	"martianoff/stc/internal/config"
	"martianoff/stc/internal/loader"
)

var (
	configPath  string
	searchPaths []string
	debug       bool
	verbose     bool
)

// session is the configuration and logger shared by the commands of one run.
type session struct {
	cfg *config.Config
	log *logrus.Entry
}

func newSession(stderr io.Writer) (*session, error) {
	path := configPath
	if path == "" {
		found, err := config.FindConfig(".")
		if err != nil {
			return nil, err
		}
		path = found
	}
	cfg := config.DefaultConfig()
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if len(searchPaths) > 0 {
		cfg.SearchPaths = searchPaths
	}
	if debug {
		cfg.Debug = true
	}

	logger := logrus.New()
	logger.SetOutput(stderr)
	logger.SetLevel(cfg.Level())
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	entry := logrus.NewEntry(logger)
	if path != "" {
		entry.WithField("config", path).Debug("loaded configuration")
	}
	return &session{cfg: cfg, log: entry}, nil
}

// load reads every unit named on the command line. Units that fail to load
// are reported to stderr and skipped.
func (s *session) load(stderr io.Writer, paths []string) ([]*ast.Unit, []string, bool) {
	l := loader.New(s.cfg.SearchPaths, loader.WithLogger(s.log))
	var units []*ast.Unit
	var names []string
	ok := true
	for _, p := range paths {
		u, err := l.LoadFile(p)
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", p, err)
			ok = false
			continue
		}
		units = append(units, u)
		names = append(names, p)
	}
	return units, names, ok
}

// colorEnabled reports whether w is a terminal that accepts ANSI colors.
func colorEnabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
