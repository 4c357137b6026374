package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer formats counts with thousand separators.
//
//nolint:gochecknoglobals // Global printer is idiomatic for x/text/message usage.
var printer = message.NewPrinter(language.English)

// formatCount formats n with thousand separators, e.g. 18248 -> "18,248".
func formatCount(n int) string {
	return printer.Sprintf("%d", n)
}

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// isWriterTerminal reports whether w is an *os.File attached to a terminal.
// Buffers used in tests are never terminals.
func isWriterTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isTerminal(f)
	}
	return false
}

// Status marks and their colors.
const (
	markOK   = "✓"
	markFail = "✗"

	colorOK   = lipgloss.Color("42")
	colorFail = lipgloss.Color("196")
	colorDim  = lipgloss.Color("245")
)

// statusLine writes msg prefixed by a success or failure mark. The mark is
// only added, and colored, when w is a terminal, so piped output stays plain.
func statusLine(w io.Writer, ok bool, msg string) {
	if !isWriterTerminal(w) {
		_, _ = fmt.Fprintln(w, msg)
		return
	}

	mark, color := markOK, colorOK
	if !ok {
		mark, color = markFail, colorFail
	}
	style := lipgloss.NewStyle().Bold(true).Foreground(color)
	_, _ = fmt.Fprintf(w, "%s %s\n", style.Render(mark), msg)
}

// dimLine writes secondary information, greyed on a terminal.
func dimLine(w io.Writer, msg string) {
	if isWriterTerminal(w) {
		msg = lipgloss.NewStyle().Foreground(colorDim).Render(msg)
	}
	_, _ = fmt.Fprintln(w, msg)
}
