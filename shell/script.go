package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/home-lang/den/interp"
	"github.com/home-lang/den/syntax"
)

// RunFile parses and executes the script at path with args bound as
// positional parameters, returning the process exit code.
func RunFile(ctx context.Context, r *interp.Runner, path string, args []string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "den: %v\n", err)
		return 1
	}
	f, err := syntax.Parse(data, path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "den: %v\n", err)
		return 2
	}
	r.Reset()
	if err := interp.WithParams(args...)(r); err != nil {
		fmt.Fprintf(os.Stderr, "den: %v\n", err)
		return 1
	}
	err = r.Run(ctx, f)
	r.WaitBackground()
	if code, ok := interp.IsExitStatus(err); ok {
		return int(code)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "den: %v\n", err)
		return 1
	}
	return int(r.LastStatus())
}

// RunString parses and executes src as a single chunk, the way "den -c"
// and "den exec" do.
func RunString(ctx context.Context, r *interp.Runner, src string) (int, error) {
	f, err := syntax.Parse([]byte(src), "-c")
	if err != nil {
		return 2, err
	}
	err = r.Run(ctx, f)
	r.WaitBackground()
	if code, ok := interp.IsExitStatus(err); ok {
		return int(code), nil
	}
	if err != nil {
		return 1, err
	}
	return int(r.LastStatus()), nil
}

// REPL runs an interactive read-eval-print loop against in/out, rendering
// PS1/PS2 and appending each accepted command line to History. It parses
// one top-level chunk at a time so a syntactically incomplete line (an
// open quote, an unterminated heredoc, a dangling "&&") reprompts with PS2
// and keeps reading instead of failing the whole session.
func REPL(ctx context.Context, r *interp.Runner, in io.Reader, out io.Writer) {
	br := bufio.NewReader(in)
	var pending strings.Builder
	for {
		prompt := RenderPrompt(r, ps1(r))
		if pending.Len() > 0 {
			prompt = RenderPrompt(r, ps2(r))
		}
		fmt.Fprint(out, prompt)

		line, err := br.ReadString('\n')
		if line == "" && err != nil {
			fmt.Fprintln(out)
			return
		}
		pending.WriteString(line)

		f, perr := syntax.Parse([]byte(pending.String()), "<stdin>")
		if perr != nil && syntax.IsIncomplete(perr) {
			if err != nil {
				fmt.Fprintf(os.Stderr, "den: %v\n", perr)
				return
			}
			continue
		}
		r.History.Append(strings.TrimRight(pending.String(), "\n"))
		pending.Reset()
		if perr != nil {
			fmt.Fprintf(os.Stderr, "den: %v\n", perr)
			if err != nil {
				return
			}
			continue
		}
		runErr := r.Run(ctx, f)
		if code, ok := interp.IsExitStatus(runErr); ok {
			_ = code
			return
		}
		if err != nil {
			return
		}
	}
}

func ps1(r *interp.Runner) string {
	if v := r.Vars.Get("PS1"); v.IsSet() {
		return v.String()
	}
	return `\u@\h:\w\$ `
}

func ps2(r *interp.Runner) string {
	if v := r.Vars.Get("PS2"); v.IsSet() {
		return v.String()
	}
	return "> "
}
