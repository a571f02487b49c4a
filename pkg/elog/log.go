package elog

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns the logger both commands narrate through, writing to
// stderr. Verbosity 0 logs at Info, anything higher turns on Debug.
func New(verbosity int) *zap.SugaredLogger { return NewTo(os.Stderr, verbosity) }

// NewTo is New, writing to w instead of stderr.
func NewTo(w io.Writer, verbosity int) *zap.SugaredLogger {
	level := zapcore.InfoLevel
	if verbosity > 0 {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(zapcore.AddSync(w)), level)
	return zap.New(core).Sugar()
}

// Nop is what library code logs to when the caller didn't hand it a logger.
func Nop() *zap.SugaredLogger { return zap.NewNop().Sugar() }
