package utils

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents the level of logging verbosity
type LogLevel int

const (
	// LevelQuiet suppresses all output except errors
	LevelQuiet LogLevel = iota
	// LevelNormal shows run progress and the report
	LevelNormal
	// LevelVerbose shows detailed information about each check
	LevelVerbose
	// LevelDebug shows all debugging information
	LevelDebug
)

var (
	// CurrentLogLevel is the global log level setting
	CurrentLogLevel LogLevel = LevelNormal

	logger atomic.Pointer[zap.SugaredLogger]
)

func init() {
	logger.Store(newLogger(os.Stdout, os.Stderr))
}

// newLogger builds a message-only console logger. Errors go to errOut,
// everything else to out.
func newLogger(out, errOut io.Writer) *zap.SugaredLogger {
	encoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		MessageKey: "msg",
		LineEnding: zapcore.DefaultLineEnding,
	})
	belowError := zap.LevelEnablerFunc(func(l zapcore.Level) bool { return l < zapcore.ErrorLevel })

	core := zapcore.NewTee(
		zapcore.NewCore(encoder, zapcore.AddSync(out), belowError),
		zapcore.NewCore(encoder, zapcore.AddSync(errOut), zapcore.ErrorLevel),
	)
	return zap.New(core).Sugar()
}

// SetLogLevel sets the global logging level
func SetLogLevel(level LogLevel) {
	CurrentLogLevel = level
}

// SetOutput redirects log output, mostly for tests
func SetOutput(out, errOut io.Writer) {
	logger.Store(newLogger(out, errOut))
}

// Logger returns the structured logger behind the Log* helpers
func Logger() *zap.SugaredLogger {
	return logger.Load()
}

// Sync flushes buffered log entries
func Sync() {
	_ = logger.Load().Sync()
}

// LogLevelFromString converts a string level name to LogLevel
func LogLevelFromString(level string) LogLevel {
	switch strings.ToLower(level) {
	case "quiet", "q":
		return LevelQuiet
	case "normal", "n":
		return LevelNormal
	case "verbose", "v":
		return LevelVerbose
	case "debug", "d":
		return LevelDebug
	default:
		return LevelNormal
	}
}

// LogError logs an error message (always shown)
func LogError(format string, args ...interface{}) {
	logger.Load().Error(Error(fmt.Sprintf(format, args...)))
}

// LogInfo logs an informational message at Normal+ level
func LogInfo(format string, args ...interface{}) {
	if CurrentLogLevel >= LevelNormal {
		logger.Load().Info(Info(fmt.Sprintf(format, args...)))
	}
}

// LogSuccess logs a success message at Normal+ level
func LogSuccess(format string, args ...interface{}) {
	if CurrentLogLevel >= LevelNormal {
		logger.Load().Info(Success(fmt.Sprintf(format, args...)))
	}
}

// LogVerbose logs a message at Verbose+ level
func LogVerbose(format string, args ...interface{}) {
	if CurrentLogLevel >= LevelVerbose {
		logger.Load().Debug("\t" + Info(fmt.Sprintf(format, args...)))
	}
}

// LogDebug logs a debug message at Debug level
func LogDebug(format string, args ...interface{}) {
	if CurrentLogLevel >= LevelDebug {
		logger.Load().Debug("\t" + Debug(fmt.Sprintf(format, args...)))
	}
}

// LogWarning logs a warning message at Normal+ level
func LogWarning(format string, args ...interface{}) {
	if CurrentLogLevel >= LevelNormal {
		logger.Load().Warn(Warning(fmt.Sprintf(format, args...)))
	}
}
