// Package process runs external executables to completion and reports their
// captured output the way the shell prints it.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// ErrSpawn is returned when the executable cannot be started at all
// (missing, not executable, bad interpreter).
var ErrSpawn = errors.New("cannot start process")

// Result holds the fully captured output of a finished process.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Success reports whether the process exited with status zero.
func (r *Result) Success() bool { return r.ExitCode == 0 }

// StdoutText returns stdout with invalid UTF-8 replaced by U+FFFD.
func (r *Result) StdoutText() string { return Lossy(r.Stdout) }

// StderrText returns stderr with invalid UTF-8 replaced by U+FFFD.
func (r *Result) StderrText() string { return Lossy(r.Stderr) }

// Run starts name with args, waits for it and captures stdout and stderr in
// full. A non-zero exit is reported through Result, not as an error; only a
// failure to start the process returns an error, wrapping ErrSpawn.
// Stdin is not connected.
func Run(ctx context.Context, name string, args []string) (*Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%w %s: %w", ErrSpawn, name, err)
		}
		return &Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes(), ExitCode: exitErr.ExitCode()}, nil
	}

	return &Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}, nil
}

// Report prints stdout for a successful process and "Error: <stderr>" for a
// failed one, always terminated by a newline.
func Report(w io.Writer, r *Result) {
	if r.Success() {
		fmt.Fprint(w, withNewline(r.StdoutText()))
		return
	}
	fmt.Fprint(w, withNewline("Error: "+r.StderrText()))
}

// Lossy decodes b as UTF-8, replacing invalid sequences with U+FFFD.
func Lossy(b []byte) string {
	return strings.ToValidUTF8(string(b), "�")
}

func withNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
