package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Dir         string
	Level       string // debug | info | warn | error; empty means info
	Development bool   // console encoder on stdout instead of JSON
}

// New writes JSON to a rotating file under opts.Dir and mirrors it to
// stdout.
func New(opts Options) (*zap.Logger, error) {
	level := zap.InfoLevel
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return nil, fmt.Errorf("log level %q: %w", opts.Level, err)
		}
	}

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, err
	}
	w := zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(opts.Dir, "pollrelay.log"),
		MaxSize:    10, // MB
		MaxBackups: 5,
		MaxAge:     14, // days
		Compress:   true,
	})
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(cfg), w, level)

	var stdoutEnc zapcore.Encoder
	if opts.Development {
		dev := zap.NewDevelopmentEncoderConfig()
		dev.TimeKey = "ts"
		dev.EncodeLevel = zapcore.CapitalColorLevelEncoder
		stdoutEnc = zapcore.NewConsoleEncoder(dev)
	} else {
		stdoutEnc = zapcore.NewJSONEncoder(cfg)
	}
	stdoutCore := zapcore.NewCore(stdoutEnc, zapcore.Lock(os.Stdout), level)

	return zap.New(zapcore.NewTee(fileCore, stdoutCore)), nil
}
