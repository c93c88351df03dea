// Package diag renders bundler and minifier messages for humans. Each
// message is printed as "file:line:col: kind: text" followed by the
// offending source line and a caret; on a terminal the source line is
// syntax highlighted.
package diag

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/evanw/esbuild/pkg/api"
	"golang.org/x/term"
)

// Options controls rendering.
type Options struct {
	Kind  string // "error" or "warning"
	Color bool
}

// Write renders msgs to w.
func Write(w io.Writer, msgs []api.Message, opts Options) {
	kind := opts.Kind
	if kind == "" {
		kind = "error"
	}
	for _, m := range msgs {
		fmt.Fprintln(w, header(m, kind))
		loc := m.Location
		if loc == nil || loc.LineText == "" {
			continue
		}
		line := loc.LineText
		if opts.Color {
			line = highlightLine(line, loc.File)
		}
		fmt.Fprintf(w, "    %s\n", line)
		fmt.Fprintf(w, "    %s^\n", caretPad(loc.LineText, loc.Column))
		for _, n := range m.Notes {
			fmt.Fprintf(w, "  note: %s\n", n.Text)
		}
	}
}

// MessageError carries the messages behind a failed build or transform so
// the CLI can render them with source context.
type MessageError struct {
	Messages []api.Message
}

func (e *MessageError) Error() string {
	lines := make([]string, len(e.Messages))
	for i, m := range e.Messages {
		lines[i] = header(m, "error")
	}
	return strings.Join(lines, "\n")
}

// Error folds msgs into one error whose text is the plain rendering of each
// message, or nil when msgs is empty.
func Error(msgs []api.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	return &MessageError{Messages: append([]api.Message(nil), msgs...)}
}

// Messages returns the messages carried anywhere in err's chain.
func Messages(err error) []api.Message {
	var me *MessageError
	if errors.As(err, &me) {
		return me.Messages
	}
	return nil
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func header(m api.Message, kind string) string {
	prefix := ""
	if m.PluginName != "" {
		prefix = "[" + m.PluginName + "] "
	}
	if m.Location == nil {
		return fmt.Sprintf("%s: %s%s", kind, prefix, m.Text)
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s%s", m.Location.File, m.Location.Line, m.Location.Column, kind, prefix, m.Text)
}

// caretPad keeps tabs so the caret lines up under the column.
func caretPad(line string, col int) string {
	if col > len(line) {
		col = len(line)
	}
	if col < 0 {
		col = 0
	}
	var b strings.Builder
	for _, r := range line[:col] {
		if r == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

func highlightLine(line string, filename string) string {
	lexer := lexers.Match(filename)
	if lexer == nil {
		ext := filepath.Ext(filename)
		if ext == "" {
			ext = ".js"
		}
		lexer = lexers.Match("file" + ext)
	}
	if lexer == nil {
		return line
	}

	lexer = chroma.Coalesce(lexer)

	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		return line
	}

	iterator, err := lexer.Tokenise(nil, line)
	if err != nil {
		return line
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return line
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
