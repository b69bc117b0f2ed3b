package log

import (
	"os"
	"path"
	"path/filepath"
	"testing"

	"github.com/inconshreveable/log15"
	"github.com/mattn/go-colorable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSetLogger(t *testing.T) {
	dir, err := os.MkdirTemp("", "logs")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	errorFile := path.Join(dir, "error.json")

	l := log15.New("setLogger", "test")
	l.SetHandler(log15.SyncHandler(log15.MultiHandler(
		log15.LvlFilterHandler(log15.LvlError, log15.Must.FileHandler(errorFile, log15.JsonFormat())),
		log15.LvlFilterHandler(log15.LvlDebug, log15.StreamHandler(colorable.NewColorableStderr(), log15.TerminalFormat())),
	)))

	SetLogger(&DefaultLogger{Logger: l})
	GetLogger().Info("The logger are so cool!", "errorFilePath", errorFile)
	GetLogger("module", "test").Error("written to the error file", "code", 7)

	data, err := os.ReadFile(errorFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to the error file")
	assert.NotContains(t, string(data), "so cool")
}

func TestSetupFormats(t *testing.T) {
	for _, format := range []string{"", FormatLogfmt, FormatTerminal, FormatJSON} {
		l, err := Setup(Config{Level: "debug", Format: format})
		require.NoError(t, err, format)
		l.New("format", format).Debug("setup ok")
	}

	_, err := Setup(Config{Format: "xml"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown log format [xml]")

	_, err = Setup(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestSetupErrorFileCreatesDir(t *testing.T) {
	dir, err := os.MkdirTemp("", "logs")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	errorFile := filepath.Join(dir, "nested", "error.json")
	_, err = Setup(Config{ErrorFile: errorFile})
	require.NoError(t, err)
	GetLogger().Error("boom")

	_, err = os.Stat(errorFile)
	assert.NoError(t, err)
}

func TestNonStringMessage(t *testing.T) {
	z := WrapZap(zap.NewNop())
	assert.NotPanics(t, func() {
		z.Info(42, "k", "v")
		(&DefaultLogger{Logger: newStderr()}).Warning(errNotString{})
	})
}

type errNotString struct{}

func (errNotString) String() string { return "not a string" }

func TestSetupReachesEarlierLoggers(t *testing.T) {
	_, err := Setup(Config{})
	require.NoError(t, err)
	early := GetLogger("module", "early")

	dir, err := os.MkdirTemp("", "logs")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	errorFile := filepath.Join(dir, "error.json")
	_, err = Setup(Config{Level: "error", ErrorFile: errorFile})
	require.NoError(t, err)

	early.Error("logged after setup")
	data, err := os.ReadFile(errorFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "logged after setup")
	assert.Contains(t, string(data), "early")
}
