// Package logging wires wax's structured logger: a zap.Logger built from
// teed cores (a plain stderr core for user-facing status, and a file core
// under the cache directory's logs/wax.log), plus a verbose-mode helper,
// grounded on the teacher's pkg/logger/logger.go and
// pkg/logger/printer/verbose.go.
package logging

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.Mutex
	global *zap.Logger = zap.NewNop()
)

const rotateThreshold = 10 << 20 // 10 MiB

// Init builds the global logger with a stderr core at the given level plus
// a file core writing to logDir/wax.log. The log file is rotated to
// wax.log.1 on Init if it has grown past rotateThreshold, grounded on the
// teacher's logs/ directory convention without pulling in a rotation
// library the pack never exercises for this concern.
func Init(logDir string, level zapcore.Level) error {
	mu.Lock()
	defer mu.Unlock()

	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return err
	}
	logPath := logDir + string(os.PathSeparator) + "wax.log"
	rotateIfLarge(logPath)

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	consoleEncoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	fileEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())

	core := zapcore.NewTee(
		zapcore.NewCore(consoleEncoder, zapcore.Lock(zapcore.AddSync(os.Stderr)), level),
		zapcore.NewCore(fileEncoder, zapcore.Lock(zapcore.AddSync(f)), zapcore.DebugLevel),
	)
	global = zap.New(core)
	return nil
}

func rotateIfLarge(path string) {
	info, err := os.Stat(path)
	if err != nil || info.Size() < rotateThreshold {
		return
	}
	_ = os.Rename(path, path+".1")
}

// L returns the global logger.
func L() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	return global
}

var verbose bool

func init() {
	v := strings.ToLower(os.Getenv("WAX_VERBOSE"))
	verbose = v == "1" || v == "true" || v == "enable"
}

// Verbose logs a message to stderr only when WAX_VERBOSE is set, and always
// mirrors it to the structured logger at debug level.
func Verbose(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	L().Debug(msg)
	if verbose {
		fmt.Fprintln(os.Stderr, "verbose:", msg)
	}
}
