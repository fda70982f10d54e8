package shell

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Completer suggests built-ins and plugin names for a partial line.
type Completer struct {
	plugins func() []string
}

// NewCompleter creates a completer. plugins is called on every request so
// newly installed plugins are offered immediately.
func NewCompleter(plugins func() []string) *Completer {
	return &Completer{plugins: plugins}
}

// candidates returns built-ins followed by plugin names, without duplicates.
func (c *Completer) candidates() []string {
	out := make([]string, 0, len(Builtins))
	seen := make(map[string]bool)
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, b := range Builtins {
		add(b)
	}
	if c.plugins != nil {
		for _, p := range c.plugins() {
			add(p)
		}
	}
	return out
}

// Complete returns every candidate starting with line, sorted.
func (c *Completer) Complete(line string) []string {
	var matches []string
	for _, cand := range c.candidates() {
		if strings.HasPrefix(cand, line) {
			matches = append(matches, cand)
		}
	}
	sort.Strings(matches)
	return matches
}

// Hint returns the rest of the first candidate that extends line, built-ins
// first. An empty line gets no hint.
func (c *Completer) Hint(line string) string {
	if line == "" {
		return ""
	}
	for _, cand := range c.candidates() {
		if strings.HasPrefix(cand, line) {
			return cand[len(line):]
		}
	}
	return ""
}

// Expand performs tab completion on line. It returns the new line and
// true when the line changed; otherwise the candidates worth listing.
func (c *Completer) Expand(line string) (string, bool, []string) {
	matches := c.Complete(line)
	switch len(matches) {
	case 0:
		return line, false, nil
	case 1:
		return matches[0] + " ", true, nil
	}

	if prefix := commonPrefix(matches); len(prefix) > len(line) {
		return prefix, true, nil
	}
	return line, false, matches
}

// tabHandler applies Tab presses to the line being edited. A Tab that cannot
// extend the line lists the candidates along with the hinted command, and a
// second Tab on the same line accepts that hint.
type tabHandler struct {
	c       *Completer
	w       io.Writer
	pending string
}

// handle has the signature of term.Terminal.AutoCompleteCallback.
func (h *tabHandler) handle(line string, pos int, key rune) (string, int, bool) {
	if key != '\t' {
		return "", 0, false
	}
	prefix := line[:pos]

	expanded, changed, options := h.c.Expand(prefix)
	if changed {
		h.pending = ""
		return expanded + line[pos:], len(expanded), true
	}
	if len(options) == 0 {
		h.pending = ""
		return "", 0, false
	}

	hint := h.c.Hint(prefix)
	if hint != "" && h.pending == prefix {
		h.pending = ""
		accepted := prefix + hint + " "
		return accepted + line[pos:], len(accepted), true
	}

	h.pending = prefix
	listing := strings.Join(options, "  ")
	if hint != "" {
		listing += "  " + hintStyle.Render("(tab again: "+prefix+hint+")")
	}
	fmt.Fprintln(h.w, listing)
	return "", 0, false
}

func commonPrefix(words []string) string {
	if len(words) == 0 {
		return ""
	}
	prefix := words[0]
	for _, w := range words[1:] {
		for !strings.HasPrefix(w, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}
	return prefix
}
