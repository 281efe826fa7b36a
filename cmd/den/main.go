// Command den is a POSIX-compatible command shell, usable as a login
// shell, an interactive shell, or a script interpreter.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/home-lang/den/interp"
	"github.com/home-lang/den/shell"
)

var version = "den, den-dev"

func main() {
	os.Exit(main1())
}

// main1 is the indirection testscript.RunMain hooks into to run den as a
// subprocess command inside end-to-end .txtar scripts.
func main1() int {
	return run(os.Args[1:])
}

func run(argv []string) int {
	flags := pflag.NewFlagSet("den", pflag.ContinueOnError)
	cmdStr := flags.StringP("command", "c", "", "run CMD and exit")
	configPath := flags.String("config", "", "load a configuration file instead of the default startup files")
	asJSON := flags.Bool("json", false, "wrap -c's result as JSON")
	noRC := flags.Bool("norc", false, "skip startup files")
	login := flags.Bool("login", false, "run as a login shell")
	flags.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: den [options] [script [args...]]")
		flags.PrintDefaults()
	}
	if err := flags.Parse(argv); err != nil {
		return 2
	}
	rest := flags.Args()

	if len(rest) > 0 {
		switch rest[0] {
		case "version":
			fmt.Println(version)
			return 0
		case "help":
			flags.Usage()
			return 0
		}
	}

	r, err := interp.New(
		interp.WithStdin(os.Stdin),
		interp.WithStdout(os.Stdout),
		interp.WithStderr(os.Stderr),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "den: %v\n", err)
		return 1
	}
	ctx := context.Background()

	interactive := *cmdStr == "" && isShellSubcommand(rest)
	if hf := os.Getenv("HISTFILE"); hf != "" {
		r.History.SetFile(hf)
		_ = r.History.Load(hf)
	}
	if hs := os.Getenv("HISTSIZE"); hs != "" {
		r.History.SetSize(interp.ParseHistSize(hs))
	}
	defer r.History.Save()

	if !*noRC {
		if err := shell.LoadStartup(ctx, r, *login, interactive, *configPath); err != nil {
			fmt.Fprintf(os.Stderr, "den: %v\n", err)
		}
	}

	switch {
	case *cmdStr != "":
		code, runErr := shell.RunString(ctx, r, *cmdStr)
		if *asJSON {
			emitJSON(code, runErr)
		} else if runErr != nil {
			fmt.Fprintf(os.Stderr, "den: %v\n", runErr)
		}
		return code

	case len(rest) > 0 && rest[0] == "exec":
		code, runErr := shell.RunString(ctx, r, strings.Join(rest[1:], " "))
		if runErr != nil {
			fmt.Fprintf(os.Stderr, "den: %v\n", runErr)
		}
		return code

	case len(rest) > 0 && rest[0] == "shell":
		shell.REPL(ctx, r, os.Stdin, os.Stdout)
		return int(r.LastStatus())

	case len(rest) > 0:
		return shell.RunFile(ctx, r, rest[0], rest[1:])

	default:
		shell.REPL(ctx, r, os.Stdin, os.Stdout)
		return int(r.LastStatus())
	}
}

func isShellSubcommand(rest []string) bool {
	return len(rest) == 0 || rest[0] == "shell"
}

func emitJSON(code int, err error) {
	out := map[string]interface{}{"exit_code": code}
	if err != nil {
		out["error"] = err.Error()
	}
	b, _ := json.Marshal(out)
	fmt.Println(string(b))
}
