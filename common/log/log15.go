package log

import (
	"io"
	"os"
	"path"
	"strings"

	"github.com/inconshreveable/log15"
	"github.com/mattn/go-colorable"
	"github.com/pkg/errors"
)

const (
	FormatLogfmt   = "logfmt"
	FormatTerminal = "terminal"
	FormatJSON     = "json"
)

// Config selects the log backend and its verbosity.
type Config struct {
	// Level is one of debug, info, warn, error, crit.
	Level string
	// Format is logfmt, terminal (colored, log15) or json (zap).
	Format string
	// ErrorFile, when set, additionally receives error records as JSON.
	ErrorFile string
}

// root is the log15 logger every DefaultLogger handed out by GetLogger
// derives from. Setup swaps its handler, which reaches loggers created
// before Setup ran.
var root = newStderr()

// Setup builds the backend described by cfg and installs it as the default.
// The json format routes every log15 record through zap.
func Setup(cfg Config) (Logger, error) {
	switch cfg.Format {
	case FormatJSON:
		z, err := NewZapLogger(cfg.Level)
		if err != nil {
			return nil, err
		}
		root.SetHandler(zapHandler{s: z.s})
		SetLogger(z)
		return z, nil
	case "", FormatLogfmt, FormatTerminal:
		handler, err := newHandler(cfg)
		if err != nil {
			return nil, err
		}
		root.SetHandler(handler)
		l := &DefaultLogger{Logger: root}
		SetLogger(l)
		return l, nil
	default:
		return nil, errors.Errorf("unknown log format [%s]", cfg.Format)
	}
}

func newHandler(cfg Config) (log15.Handler, error) {
	lvl := log15.LvlInfo
	if cfg.Level != "" {
		var err error
		if lvl, err = log15.LvlFromString(cfg.Level); err != nil {
			return nil, errors.Wrapf(err, "invalid log level [%s]", cfg.Level)
		}
	}

	var stream log15.Handler
	if cfg.Format == FormatTerminal {
		stream = log15.StreamHandler(colorable.NewColorableStderr(), log15.TerminalFormat())
	} else {
		stream = log15.StreamHandler(os.Stderr, log15.LogfmtFormat())
	}
	handlers := []log15.Handler{log15.LvlFilterHandler(lvl, stream)}

	if cfg.ErrorFile != "" {
		if _, err := CreateDirIfMissing(path.Dir(cfg.ErrorFile)); err != nil {
			return nil, err
		}
		fh, err := log15.FileHandler(cfg.ErrorFile, log15.JsonFormat())
		if err != nil {
			return nil, errors.Wrapf(err, "error opening log file [%s]", cfg.ErrorFile)
		}
		handlers = append(handlers, log15.LvlFilterHandler(log15.LvlError, fh))
	}
	return log15.SyncHandler(log15.MultiHandler(handlers...)), nil
}

func newStderr(ctx ...interface{}) log15.Logger {
	lg := log15.New(ctx...)
	lg.SetHandler(log15.StreamHandler(os.Stderr, log15.LogfmtFormat()))
	return lg
}

// CreateDirIfMissing creates a dir for dirPath if not already exists. If the dir is empty it returns true
func CreateDirIfMissing(dirPath string) (bool, error) {
	// if dirPath does not end with a path separator, it leaves out the last segment while creating directories
	if !strings.HasSuffix(dirPath, "/") {
		dirPath = dirPath + "/"
	}
	err := os.MkdirAll(path.Dir(dirPath), 0755)
	if err != nil {
		return false, errors.Wrapf(err, "error creating dir [%s]", dirPath)
	}
	return DirEmpty(dirPath)
}

// DirEmpty returns true if the dir at dirPath is empty
func DirEmpty(dirPath string) (bool, error) {
	f, err := os.Open(dirPath)
	if err != nil {
		return false, errors.Wrapf(err, "error opening dir [%s]", dirPath)
	}
	defer f.Close()

	_, err = f.Readdir(1)
	if err == io.EOF {
		return true, nil
	}
	err = errors.Wrapf(err, "error checking if dir [%s] is empty", dirPath)
	return false, err
}
