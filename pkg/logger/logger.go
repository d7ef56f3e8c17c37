// Package logger is the process-wide zap logger, exposed as a logr.Logger.
package logger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/oakwood-commons/hivedit/pkg/settings"
)

type loggerContextKey struct{}

// Structured log keys.
const (
	RootCommandKey = "root_command"
	SubCommandKey  = "sub_command"
	CommitKey      = "commit"
	VersionKey     = "version"
	BuildTimeKey   = "build_time"
	GoVersionKey   = "go_version"
	TimeStampKey   = "timestamp"
	MessageKey     = "message"
	StepKey        = "step"
	PathKey        = "path"
	FieldKey       = "field"
	EventKey       = "event"
)

// SessionLogName is the file interactive sessions log to, inside the store base directory.
const SessionLogName = "hivedit.log"

var (
	once sync.Once

	globalZapLogger  *zap.Logger
	globalLogrLogger *logr.Logger
	noopLogger       = logr.Discard()

	level = zap.NewAtomicLevel()
	sink  = &switchSink{out: zapcore.AddSync(os.Stderr)}
)

// switchSink lets the output move to a session file and back without
// rebuilding the logger.
type switchSink struct {
	mu  sync.Mutex
	out zapcore.WriteSyncer
}

func (s *switchSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.out.Write(p)
}

func (s *switchSink) Sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.out.Sync()
}

func (s *switchSink) swap(out zapcore.WriteSyncer) zapcore.WriteSyncer {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.out
	s.out = out
	return prev
}

// release points the sink back at stderr if it still writes to out.
func (s *switchSink) release(out zapcore.WriteSyncer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.out == out {
		s.out = zapcore.AddSync(os.Stderr)
	}
}

// Get returns the process logger, building it on first use. Every call sets
// the minimum level; a non-nil sink replaces the output (stderr by default),
// which is how the terminal UI keeps log lines off the screen.
// logLevel is a zapcore level; negative values enable logr V-levels (V(1) == -1).
func Get(logLevel int8, out ...zapcore.WriteSyncer) *logr.Logger {
	level.SetLevel(zapcore.Level(logLevel))
	if len(out) > 0 && out[0] != nil {
		sink.swap(out[0])
	}
	once.Do(func() {
		encoderCfg := zap.NewProductionEncoderConfig()
		encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoderCfg.TimeKey = TimeStampKey
		encoderCfg.MessageKey = MessageKey

		goVersion := "unknown"
		if bi, ok := debug.ReadBuildInfo(); ok {
			goVersion = bi.GoVersion
		}
		core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), sink, level).With([]zapcore.Field{
			zap.String(CommitKey, settings.VersionInformation.Commit),
			zap.String(VersionKey, settings.VersionInformation.BuildVersion),
			zap.String(BuildTimeKey, settings.VersionInformation.BuildTime),
			zap.String(GoVersionKey, goVersion),
		})
		globalZapLogger = zap.New(core,
			zap.AddCaller(),
			zap.AddStacktrace(zap.ErrorLevel),
			zap.WithFatalHook(zapcore.WriteThenPanic),
		)
		gl := zapr.NewLogger(globalZapLogger)
		globalLogrLogger = &gl
	})
	if globalLogrLogger == nil {
		return &noopLogger
	}
	return globalLogrLogger
}

// WithLogger attaches log to ctx, reusing ctx when it already carries log.
func WithLogger(ctx context.Context, log *logr.Logger) context.Context {
	if lp, ok := ctx.Value(loggerContextKey{}).(*logr.Logger); ok && lp == log {
		return ctx
	}
	return context.WithValue(ctx, loggerContextKey{}, log)
}

// FromContext returns the logger of ctx, then the process logger, then a
// discarding logger.
func FromContext(ctx context.Context) *logr.Logger {
	if log, ok := ctx.Value(loggerContextKey{}).(*logr.Logger); ok {
		return log
	}
	return GetGlobalLogger()
}

// GetGlobalLogger returns the process logger, or a discarding logger before Get.
func GetGlobalLogger() *logr.Logger {
	if globalLogrLogger != nil {
		return globalLogrLogger
	}
	return &noopLogger
}

// WithValues returns lgr with keysAndValues attached.
func WithValues(lgr *logr.Logger, keysAndValues ...any) *logr.Logger {
	nlgr := lgr.WithValues(keysAndValues...)
	return &nlgr
}

// Sync flushes buffered entries. Errors that terminals and pipes report for
// fsync are not worth a warning.
func Sync() {
	if globalZapLogger == nil {
		return
	}
	if err := globalZapLogger.Sync(); err != nil && !isIgnorableSyncError(err) {
		fmt.Fprintf(os.Stderr, "WARNING: failed to sync zap logger: %v\n", err)
	}
}

func isIgnorableSyncError(err error) bool {
	for _, errno := range []error{syscall.ENOTTY, syscall.EINVAL, syscall.EIO, syscall.EBADF} {
		if errors.Is(err, errno) {
			return true
		}
	}
	// Windows consoles wrap ERROR_INVALID_HANDLE in *os.PathError.
	return strings.Contains(err.Error(), "The handle is invalid")
}

// OpenSessionLog opens (appending) the log file used while the terminal UI owns
// the screen. An empty path selects SessionLogName inside dir. The returned
// close function moves the process logger back to stderr before closing.
func OpenSessionLog(dir, path string) (zapcore.WriteSyncer, func() error, error) {
	if path == "" {
		if dir == "" {
			return nil, nil, errors.New("no log directory")
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
		path = filepath.Join(dir, SessionLogName)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open session log: %w", err)
	}
	ws := zapcore.AddSync(f)
	return ws, func() error {
		sink.release(ws)
		return f.Close()
	}, nil
}
