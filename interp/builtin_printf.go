package interp

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// biPrintf implements the printf builtin's subset of POSIX conversions
// (%s %d %i %u %o %x %X %c %b %q %%), cycling the format string over the
// argument list the way bash's printf does when there are more arguments
// than conversions.
func biPrintf(ctx context.Context, r *Runner, args []string) error {
	if len(args) < 2 {
		return newShellErrorf(2, "printf: usage: printf format [arguments]")
	}
	format := args[1]
	vals := args[2:]

	if len(vals) == 0 {
		out, err := renderPrintf(format, &vals)
		if err != nil {
			return newShellErrorf(1, "printf: %v", err)
		}
		fmt.Fprint(r.Stdout, out)
		return nil
	}
	for len(vals) > 0 {
		before := len(vals)
		out, err := renderPrintf(format, &vals)
		if err != nil {
			return newShellErrorf(1, "printf: %v", err)
		}
		fmt.Fprint(r.Stdout, out)
		if len(vals) == before {
			break
		}
	}
	return nil
}

func renderPrintf(format string, vals *[]string) (string, error) {
	var b strings.Builder
	next := func() string {
		if len(*vals) == 0 {
			return ""
		}
		v := (*vals)[0]
		*vals = (*vals)[1:]
		return v
	}

	i := 0
	for i < len(format) {
		c := format[i]
		if c == '\\' && i+1 < len(format) {
			b.WriteString(interpretEchoEscapes(format[i : i+2]))
			i += 2
			continue
		}
		if c != '%' {
			b.WriteByte(c)
			i++
			continue
		}
		i++
		if i < len(format) && format[i] == '%' {
			b.WriteByte('%')
			i++
			continue
		}
		start := i
		for i < len(format) && strings.IndexByte("-+ 0#123456789.", format[i]) >= 0 {
			i++
		}
		if i >= len(format) {
			return "", fmt.Errorf("missing conversion")
		}
		verb := format[i]
		flags := format[start:i]
		i++

		arg := next()
		switch verb {
		case 's':
			fmt.Fprintf(&b, "%"+flags+"s", arg)
		case 'd', 'i':
			n, _ := strconv.ParseInt(strings.TrimSpace(arg), 0, 64)
			fmt.Fprintf(&b, "%"+flags+"d", n)
		case 'u':
			n, _ := strconv.ParseUint(strings.TrimSpace(arg), 0, 64)
			fmt.Fprintf(&b, "%"+flags+"d", n)
		case 'o':
			n, _ := strconv.ParseInt(strings.TrimSpace(arg), 0, 64)
			fmt.Fprintf(&b, "%"+flags+"o", n)
		case 'x':
			n, _ := strconv.ParseInt(strings.TrimSpace(arg), 0, 64)
			fmt.Fprintf(&b, "%"+flags+"x", n)
		case 'X':
			n, _ := strconv.ParseInt(strings.TrimSpace(arg), 0, 64)
			fmt.Fprintf(&b, "%"+flags+"X", n)
		case 'c':
			if len(arg) > 0 {
				b.WriteByte(arg[0])
			}
		case 'b':
			b.WriteString(interpretEchoEscapes(arg))
		case 'q':
			b.WriteString(strconv.Quote(arg))
		default:
			return "", fmt.Errorf("%%%c: invalid conversion", verb)
		}
	}
	return b.String(), nil
}
