package shell

import (
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"

	"github.com/home-lang/den/interp"
)

// RenderPrompt expands a small PS1/PS2 escape set: \u \h \H \w \W \$ \n \\
// and ANSI passthrough via \[...\]  (the \[ \]
// markers are stripped; den has no line editor to account for their
// zero-width effect on cursor math, so they only need to not corrupt the
// visible prompt text).
func RenderPrompt(r *interp.Runner, format string) string {
	var b strings.Builder
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '\\' || i+1 >= len(format) {
			b.WriteByte(c)
			continue
		}
		i++
		switch format[i] {
		case 'u':
			b.WriteString(currentUser())
		case 'h':
			b.WriteString(shortHostname())
		case 'H':
			b.WriteString(fullHostname())
		case 'w':
			b.WriteString(collapseHome(r.Dir))
		case 'W':
			b.WriteString(filepath.Base(r.Dir))
		case '$':
			if isRoot() {
				b.WriteByte('#')
			} else {
				b.WriteByte('$')
			}
		case 'n':
			b.WriteByte('\n')
		case '\\':
			b.WriteByte('\\')
		case '[', ']':
			// ANSI passthrough markers: no-op without a line editor.
		default:
			b.WriteByte('\\')
			b.WriteByte(format[i])
		}
	}
	return b.String()
}

func currentUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "user"
}

func shortHostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "localhost"
	}
	if i := strings.IndexByte(h, '.'); i >= 0 {
		return h[:i]
	}
	return h
}

func fullHostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "localhost"
	}
	return h
}

func collapseHome(dir string) string {
	home, err := os.UserHomeDir()
	if err == nil && strings.HasPrefix(dir, home) {
		return "~" + strings.TrimPrefix(dir, home)
	}
	return dir
}

func isRoot() bool { return os.Geteuid() == 0 }

// TerminalSize queries the controlling terminal's width/height for
// $COLUMNS/$LINES bookkeeping, falling back to 80x24 when stdout isn't a
// tty (piped output, redirected scripts).
func TerminalSize() (cols, lines int) {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 80, 24
	}
	w, h, err := term.GetSize(fd)
	if err != nil {
		return 80, 24
	}
	return w, h
}
