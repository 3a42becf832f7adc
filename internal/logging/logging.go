// MIT License
//
// Copyright (c) 2025 Mike Lane
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package logging installs the process-wide logger. Components never hold a
// logger of their own: they take it from the context with log.FromContext.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-logr/logr"
	"go.uber.org/zap/zapcore"
	"sigs.k8s.io/controller-runtime/pkg/log"
	crzap "sigs.k8s.io/controller-runtime/pkg/log/zap"
)

// Formats
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// New builds a zap-backed logger. level is a zap level name (debug, info,
// warn, error); format is console or json.
func New(w io.Writer, level, format string) (logr.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return logr.Discard(), fmt.Errorf("invalid log level %q: %w", level, err)
	}

	opts := []crzap.Opts{
		crzap.WriteTo(w),
		crzap.Level(lvl),
	}
	switch strings.ToLower(format) {
	case FormatJSON:
		opts = append(opts, crzap.JSONEncoder())
	case FormatConsole, "":
		opts = append(opts, crzap.UseDevMode(true), crzap.ConsoleEncoder())
	default:
		return logr.Discard(), fmt.Errorf("invalid log format %q: want %s or %s", format, FormatConsole, FormatJSON)
	}
	return crzap.New(opts...), nil
}

// Setup builds a logger with New and installs it as the controller-runtime
// root logger.
func Setup(w io.Writer, level, format string) (logr.Logger, error) {
	logger, err := New(w, level, format)
	if err != nil {
		return logger, err
	}
	log.SetLogger(logger)
	return logger, nil
}
