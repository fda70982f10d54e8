package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// LineReader yields one input line per call. It returns io.EOF when the user
// ends the session (Ctrl-D, Ctrl-C or end of input).
type LineReader interface {
	ReadLine() (string, error)
	Close() error
}

// NewLineReader returns a line editor with completion when in is a
// terminal, and a plain scanner otherwise.
func NewLineReader(in *os.File, out io.Writer, prompt string, c *Completer) (LineReader, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return NewScanReader(in, out, prompt), nil
	}

	// Try raw mode once so an unusable terminal fails at startup.
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("initializing terminal: %w", err)
	}
	if err := term.Restore(fd, state); err != nil {
		return nil, fmt.Errorf("restoring terminal: %w", err)
	}

	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{in, out}, prompt)

	if c != nil {
		tab := &tabHandler{c: c, w: t}
		t.AutoCompleteCallback = tab.handle
	}
	return &terminalReader{fd: fd, term: t}, nil
}

// terminalReader edits lines with golang.org/x/term. Raw mode is only held
// while a line is being read so commands run on a cooked terminal.
type terminalReader struct {
	fd   int
	term *term.Terminal
}

func (r *terminalReader) ReadLine() (string, error) {
	state, err := term.MakeRaw(r.fd)
	if err != nil {
		return "", fmt.Errorf("entering raw mode: %w", err)
	}
	defer term.Restore(r.fd, state)

	if w, h, err := term.GetSize(r.fd); err == nil {
		_ = r.term.SetSize(w, h)
	}

	line, err := r.term.ReadLine()
	if err != nil {
		return "", err
	}
	return line, nil
}

func (r *terminalReader) Close() error { return nil }

// ScanReader reads newline-terminated lines from a non-interactive input.
// Lines may be of any length.
type ScanReader struct {
	in     *bufio.Reader
	out    io.Writer
	prompt string
}

// NewScanReader creates a reader that prints prompt to out before each line.
// A nil out suppresses the prompt.
func NewScanReader(in io.Reader, out io.Writer, prompt string) *ScanReader {
	return &ScanReader{in: bufio.NewReader(in), out: out, prompt: prompt}
}

func (r *ScanReader) ReadLine() (string, error) {
	if r.out != nil && r.prompt != "" {
		fmt.Fprint(r.out, r.prompt)
	}
	line, err := r.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", err
	}
	// A final line without a newline is returned before io.EOF.
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}

func (r *ScanReader) Close() error { return nil }

// isEOF reports whether err ends the session normally.
func isEOF(err error) bool {
	return errors.Is(err, io.EOF)
}
