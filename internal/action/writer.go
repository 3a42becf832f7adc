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

package action

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Writer emits outputs and annotations for one step.
type Writer struct {
	out        io.Writer
	outputFile string
}

// NewWriter returns a Writer printing workflow commands to out and appending
// outputs to outputFile. An empty outputFile prints outputs as set-output
// commands instead.
func NewWriter(out io.Writer, outputFile string) *Writer {
	return &Writer{out: out, outputFile: outputFile}
}

// FromEnv returns a Writer for the current runner.
func FromEnv() *Writer {
	return NewWriter(os.Stdout, os.Getenv("GITHUB_OUTPUT"))
}

// SetOutputs writes outputs in key order.
func (w *Writer) SetOutputs(outputs map[string]string) error {
	keys := make([]string, 0, len(outputs))
	for k := range outputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if w.outputFile == "" {
		for _, k := range keys {
			fmt.Fprintf(w.out, "::set-output name=%s::%s\n", k, escapeData(outputs[k]))
		}
		return nil
	}

	f, err := os.OpenFile(w.outputFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open output file: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	for _, k := range keys {
		v := outputs[k]
		if !strings.ContainsAny(v, "\r\n") {
			fmt.Fprintf(&b, "%s=%s\n", k, v)
			continue
		}
		delim := "ghadelimiter_" + uuid.NewString()
		fmt.Fprintf(&b, "%s<<%s\n%s\n%s\n", k, delim, v, delim)
	}
	if _, err := f.WriteString(b.String()); err != nil {
		return fmt.Errorf("failed to write outputs: %w", err)
	}
	return nil
}

// Notice prints a notice annotation.
func (w *Writer) Notice(msg string) { w.command("notice", msg) }

// Warning prints a warning annotation.
func (w *Writer) Warning(msg string) { w.command("warning", msg) }

// Error prints an error annotation.
func (w *Writer) Error(msg string) { w.command("error", msg) }

func (w *Writer) command(name, msg string) {
	fmt.Fprintf(w.out, "::%s::%s\n", name, escapeData(msg))
}

var dataEscaper = strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A")

func escapeData(s string) string {
	return dataEscaper.Replace(s)
}
