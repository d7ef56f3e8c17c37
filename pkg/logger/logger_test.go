package logger

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// captureOutput routes the process logger into a buffer for one test.
func captureOutput(t *testing.T, lvl int8) (*logr.Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	ws := zapcore.AddSync(&buf)
	log := Get(lvl, ws)
	t.Cleanup(func() {
		sink.release(ws)
		level.SetLevel(zapcore.InfoLevel)
	})
	return log, &buf
}

func TestGetReturnsSameInstance(t *testing.T) {
	l1 := Get(0)
	l2 := Get(0)
	require.NotNil(t, l1)
	assert.Same(t, l1, l2)
	assert.Same(t, l1, GetGlobalLogger())
}

func TestGetWritesJSONWithBuildFields(t *testing.T) {
	log, buf := captureOutput(t, 0)
	log.Info("opened", PathKey, `HKEY_CURRENT_USER\Environment`)

	out := buf.String()
	assert.Contains(t, out, `"message":"opened"`)
	assert.Contains(t, out, `"path":"HKEY_CURRENT_USER\\Environment"`)
	assert.Contains(t, out, `"`+VersionKey+`":`)
	assert.Contains(t, out, `"`+TimeStampKey+`":`)
}

func TestGetAppliesLevelOnEveryCall(t *testing.T) {
	log, buf := captureOutput(t, 0)
	log.V(1).Info("hidden")
	assert.Empty(t, buf.String())

	Get(-1)
	log.V(1).Info("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestGetWithoutSinkKeepsOutput(t *testing.T) {
	log, buf := captureOutput(t, 0)
	Get(0)
	log.Info("still captured")
	assert.Contains(t, buf.String(), "still captured")
}

func TestWithLogger(t *testing.T) {
	ctx := context.Background()
	log := Get(0)

	withLog := WithLogger(ctx, log)
	assert.Same(t, log, withLog.Value(loggerContextKey{}))
	assert.Equal(t, withLog, WithLogger(withLog, log), "same logger reuses the context")

	other := logr.Discard()
	replaced := WithLogger(withLog, &other)
	assert.Same(t, &other, replaced.Value(loggerContextKey{}))
}

func TestFromContext(t *testing.T) {
	log := Get(0)
	other := logr.Discard()

	assert.Same(t, &other, FromContext(WithLogger(context.Background(), &other)))
	assert.Same(t, log, FromContext(context.Background()))
}

func TestFallbacksBeforeGet(t *testing.T) {
	orig := globalLogrLogger
	globalLogrLogger = nil
	defer func() { globalLogrLogger = orig }()

	assert.Same(t, &noopLogger, GetGlobalLogger())
	assert.Same(t, &noopLogger, FromContext(context.Background()))
}

func TestSyncWithoutLogger(t *testing.T) {
	orig := globalZapLogger
	globalZapLogger = nil
	defer func() { globalZapLogger = orig }()

	assert.NotPanics(t, Sync)
}

func TestIsIgnorableSyncError(t *testing.T) {
	assert.True(t, isIgnorableSyncError(&os.PathError{Op: "sync", Path: "/dev/stderr", Err: syscall.EINVAL}))
	assert.True(t, isIgnorableSyncError(syscall.ENOTTY))
	assert.True(t, isIgnorableSyncError(&os.PathError{Op: "sync", Path: "CONOUT$", Err: errString("The handle is invalid.")}))
	assert.False(t, isIgnorableSyncError(syscall.ENOSPC))
}

type errString string

func (e errString) Error() string { return string(e) }

func TestWithValuesReturnsNewLogger(t *testing.T) {
	log := Get(0)
	withValues := WithValues(log, FieldKey, "Path")
	require.NotNil(t, withValues)
	assert.NotSame(t, log, withValues)
	assert.NotSame(t, log, WithValues(log))
}

func TestOpenSessionLogCreatesFileInDir(t *testing.T) {
	dir := t.TempDir()
	ws, closeFn, err := OpenSessionLog(filepath.Join(dir, "nested"), "")
	require.NoError(t, err)
	_, err = ws.Write([]byte("line\n"))
	require.NoError(t, err)
	require.NoError(t, closeFn())

	data, err := os.ReadFile(filepath.Join(dir, "nested", SessionLogName))
	require.NoError(t, err)
	assert.Equal(t, "line\n", string(data))
}

func TestOpenSessionLogExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.log")
	_, closeFn, err := OpenSessionLog("", path)
	require.NoError(t, err)
	require.NoError(t, closeFn())
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestOpenSessionLogNeedsDirOrPath(t *testing.T) {
	_, _, err := OpenSessionLog("", "")
	assert.Error(t, err)
}

func TestSessionLogReceivesLinesUntilClosed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.log")
	ws, closeFn, err := OpenSessionLog("", path)
	require.NoError(t, err)

	log := Get(0, ws)
	log.Info("inside session")
	require.NoError(t, closeFn())
	assert.NotSame(t, ws, sink.out, "closing moves the logger off the file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "inside session"))
}
