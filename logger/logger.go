/*
Copyright 2026 The Flux authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package logger

import (
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	flagLogEncoding = "log-encoding"
	flagLogLevel    = "log-level"
)

var levelStrings = map[string]zapcore.Level{
	// zap doesn't include trace level as a const, but it accepts any
	// int8; logr will convert a log.V(n) to zap's scheme, so e.g.,
	// V(2) will be custom debug level -2 in zap (i.e., `trace`
	// below).
	"trace": zapcore.DebugLevel - 1,
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"error": zapcore.ErrorLevel,
}

// These are for convenience when doing log.V(...) to log at a particular level. They correspond to the logr
// equivalents of the zap levels above.
const (
	TraceLevel = 2
	DebugLevel = 1
	InfoLevel  = 0
)

var stackLevelStrings = map[string]zapcore.Level{
	"trace": zapcore.ErrorLevel,
	"debug": zapcore.ErrorLevel,
	"info":  zapcore.PanicLevel,
	"error": zapcore.PanicLevel,
}

// Options contains the configuration options for the command line logger.
type Options struct {
	LogEncoding string
	LogLevel    string
}

// BindFlags will parse the given pflag.FlagSet for logger option flags and set the Options accordingly.
func (o *Options) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.LogEncoding, flagLogEncoding, "console",
		"Log encoding format. Can be 'json' or 'console'.")
	fs.StringVar(&o.LogLevel, flagLogLevel, "info",
		"Log verbosity level. Can be one of 'trace', 'debug', 'info', 'error'.")
}

// Validate checks the encoding and level are known.
func (o *Options) Validate() error {
	switch o.LogEncoding {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log encoding %q (must be one of: %q)", o.LogEncoding, []string{"json", "console"})
	}
	if _, ok := levelStrings[o.LogLevel]; !ok {
		return fmt.Errorf("invalid log level %q (must be one of: %q)", o.LogLevel, []string{"trace", "debug", "info", "error"})
	}
	return nil
}

// NewLogger returns a logger writing to stderr, configured with the given
// Options, and timestamps set to the ISO8601 format.
func NewLogger(opts Options) logr.Logger {
	return newLogger(opts, zapcore.Lock(os.Stderr))
}

func newLogger(opts Options, out zapcore.WriteSyncer) logr.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch opts.LogEncoding {
	case "console":
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	default:
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	level := zapcore.InfoLevel
	if l, ok := levelStrings[opts.LogLevel]; ok {
		level = l
	}
	stackLevel := zapcore.PanicLevel
	if l, ok := stackLevelStrings[opts.LogLevel]; ok {
		stackLevel = l
	}

	core := zapcore.NewCore(encoder, out, zap.NewAtomicLevelAt(level))
	return zapr.NewLogger(zap.New(core, zap.AddStacktrace(stackLevel)))
}
