package interp

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/home-lang/den/expand"
	"golang.org/x/term"
)

func init() {
	register("read", biRead)
	register("mapfile", biMapfile)
	register("readarray", biMapfile)
}

// biRead implements "read [-r] [-s] [-p prompt] [-a array] [name...]".
// Other options such as -n are not recognized and are taken as variable
// names. With no names, the line is stored in REPLY, matching bash.
func biRead(ctx context.Context, r *Runner, args []string) error {
	raw := false
	silent := false
	prompt := ""
	arrayName := ""
	var names []string

	rest := args[1:]
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case "-r":
			raw = true
		case "-s":
			silent = true
		case "-p":
			i++
			if i < len(rest) {
				prompt = rest[i]
			}
		case "-a":
			i++
			if i < len(rest) {
				arrayName = rest[i]
			}
		default:
			names = append(names, rest[i])
		}
	}
	if prompt != "" {
		fmt.Fprint(r.Stderr, prompt)
	}

	var line string
	var err error
	if silent {
		if f, ok := r.Stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			var b []byte
			b, err = term.ReadPassword(int(f.Fd()))
			line = string(b)
			fmt.Fprintln(r.Stderr)
		} else {
			line, err = readLine(r.Stdin)
		}
	} else {
		line, err = readLine(r.Stdin)
	}
	if err != nil && line == "" {
		r.setStatus(1)
		return nil
	}
	if !raw {
		line = unescapeBackslashes(line)
	}

	if arrayName != "" {
		fields := strings.Fields(line)
		r.Vars.Set(arrayName, expand.Variable{Set: true, Kind: expand.Indexed, List: fields})
		r.setStatus(0)
		return nil
	}

	if len(names) == 0 {
		names = []string{"REPLY"}
	}
	cfg := r.expandConfig(ctx)
	ifs := " \t\n"
	if v := cfg.Env.Get("IFS"); v.IsSet() {
		ifs = v.String()
	}
	fields := splitFieldsOn(line, ifs, len(names))
	for i, name := range names {
		val := ""
		if i < len(fields) {
			val = fields[i]
		}
		r.Vars.Set(name, expand.Variable{Set: true, Kind: expand.String, Str: val})
	}
	r.setStatus(0)
	return nil
}

// readLine reads exactly one line from in, one byte at a time, so a loop
// like "while read line; do ...; done < file" doesn't lose data to a
// bufio.Reader's read-ahead buffer between iterations.
func readLine(in io.Reader) (string, error) {
	var b strings.Builder
	buf := make([]byte, 1)
	for {
		n, err := in.Read(buf)
		if n == 1 {
			if buf[0] == '\n' {
				return strings.TrimSuffix(b.String(), "\r"), nil
			}
			b.WriteByte(buf[0])
		}
		if err != nil {
			if b.Len() == 0 {
				return "", err
			}
			return b.String(), err
		}
	}
}

func unescapeBackslashes(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			b.WriteByte(s[i])
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// splitFieldsOn splits s on any of the ifs bytes into at most n fields,
// with the final field absorbing any remaining separators and text
// (bash's "extra words go to the last variable" read semantics).
func splitFieldsOn(s, ifs string, n int) []string {
	if n <= 0 {
		return nil
	}
	var fields []string
	cur := strings.Builder{}
	isSep := func(b byte) bool { return strings.IndexByte(ifs, b) >= 0 }
	i := 0
	for i < len(s) {
		if len(fields) == n-1 {
			break
		}
		if isSep(s[i]) {
			if cur.Len() > 0 {
				fields = append(fields, cur.String())
				cur.Reset()
			}
			i++
			continue
		}
		cur.WriteByte(s[i])
		i++
	}
	rest := strings.TrimLeft(s[i:], ifs)
	if cur.Len() > 0 || rest != "" {
		fields = append(fields, cur.String()+rest)
	}
	return fields
}

func biMapfile(ctx context.Context, r *Runner, args []string) error {
	name := "MAPFILE"
	for _, a := range args[1:] {
		if !strings.HasPrefix(a, "-") {
			name = a
		}
	}
	sc := bufio.NewScanner(r.Stdin)
	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	r.Vars.Set(name, expand.Variable{Set: true, Kind: expand.Indexed, List: lines})
	return nil
}
