package interp

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/google/renameio/v2"
)

// History holds the in-memory command history buffer and persists it to
// $HISTFILE. There is no interactive line-editor populating this
// directly; Append is called by the script/shell driver after each
// top-level command it reads.
type History struct {
	lines []string
	size  int
	file  string
}

func NewHistory() *History { return &History{size: 500} }

func (h *History) SetSize(n int) { h.size = n }

func (h *History) SetFile(path string) { h.file = path }

func (h *History) Append(line string) {
	line = strings.TrimRight(line, "\n")
	if line == "" {
		return
	}
	h.lines = append(h.lines, line)
	if h.size > 0 && len(h.lines) > h.size {
		h.lines = h.lines[len(h.lines)-h.size:]
	}
}

func (h *History) Lines() []string { return h.lines }

// Load reads HISTFILE into memory, appending to any in-memory lines
// already present (as bash does when HISTFILE is read at startup).
func (h *History) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		h.lines = append(h.lines, sc.Text())
	}
	return sc.Err()
}

// Save atomically rewrites HISTFILE, trimmed to HISTSIZE, using
// renameio so a crash mid-write never truncates history to zero bytes.
func (h *History) Save() error {
	if h.file == "" {
		return nil
	}
	t, err := renameio.TempFile("", h.file)
	if err != nil {
		return err
	}
	defer t.Cleanup()
	w := bufio.NewWriter(t)
	lines := h.lines
	if h.size > 0 && len(lines) > h.size {
		lines = lines[len(lines)-h.size:]
	}
	for _, line := range lines {
		if _, err := w.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return t.CloseAtomicallyReplace()
}

// ParseHistSize parses the $HISTSIZE value, defaulting to 500 on error.
func ParseHistSize(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 500
	}
	return n
}
