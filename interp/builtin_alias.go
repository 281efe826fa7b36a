package interp

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/home-lang/den/expand"
)

func init() {
	register("alias", biAlias)
	register("unalias", biUnalias)
	register("hash", biHash)
	register("shopt", biShopt)
	register("getopts", biGetopts)
}

func biAlias(ctx context.Context, r *Runner, args []string) error {
	if len(args) == 1 {
		for _, name := range r.Aliases.Names() {
			exp, _ := r.Aliases.Get(name)
			fmt.Fprintf(r.Stdout, "alias %s=%q\n", name, exp)
		}
		return nil
	}
	for _, a := range args[1:] {
		name, val, hasVal := strings.Cut(a, "=")
		if !hasVal {
			if exp, ok := r.Aliases.Get(name); ok {
				fmt.Fprintf(r.Stdout, "alias %s=%q\n", name, exp)
			} else {
				fmt.Fprintf(r.Stderr, "alias: %s: not found\n", name)
				r.setStatus(1)
			}
			continue
		}
		r.Aliases.Set(name, val)
	}
	return nil
}

func biUnalias(ctx context.Context, r *Runner, args []string) error {
	for _, name := range args[1:] {
		if name == "-a" {
			for _, n := range r.Aliases.Names() {
				r.Aliases.Unset(n)
			}
			continue
		}
		r.Aliases.Unset(name)
	}
	return nil
}

func biHash(ctx context.Context, r *Runner, args []string) error {
	if len(args) > 1 && args[1] == "-r" {
		r.Path.Reset()
		return nil
	}
	for name, path := range r.Path.Entries() {
		fmt.Fprintf(r.Stdout, "%s=%s\n", name, path)
	}
	return nil
}

func biShopt(ctx context.Context, r *Runner, args []string) error {
	rest := args[1:]
	mode := ""
	var names []string
	for _, a := range rest {
		switch a {
		case "-s", "-u", "-p", "-q":
			mode = a
		default:
			names = append(names, a)
		}
	}
	if mode == "-s" || mode == "-u" {
		on := mode == "-s"
		for _, n := range names {
			r.Opts.ShoptSet(n, on)
		}
		return nil
	}
	for _, l := range r.Opts.Lines() {
		fmt.Fprintln(r.Stdout, l)
	}
	return nil
}

// biGetopts implements "getopts optstring name", advancing OPTIND each
// call and setting name/OPTARG the way the POSIX utility does.
func biGetopts(ctx context.Context, r *Runner, args []string) error {
	if len(args) < 3 {
		return newShellErrorf(2, "getopts: usage: getopts optstring name [arg]")
	}
	optstring := args[1]
	varName := args[2]
	argv := args[3:]
	if len(argv) == 0 {
		argv = r.params
	}

	optind := 1
	if v := r.Vars.Get("OPTIND"); v.IsSet() {
		if n, err := strconv.Atoi(v.String()); err == nil {
			optind = n
		}
	}
	if optind < 1 || optind > len(argv) {
		r.setStatus(1)
		return nil
	}
	arg := argv[optind-1]
	if len(arg) < 2 || arg[0] != '-' || arg == "--" {
		r.setStatus(1)
		return nil
	}
	opt := arg[1]
	idx := strings.IndexByte(optstring, opt)
	if idx < 0 {
		r.Vars.Set(varName, expand.Variable{Set: true, Kind: expand.String, Str: "?"})
		r.Vars.Set("OPTIND", expand.Variable{Set: true, Kind: expand.String, Str: strconv.Itoa(optind + 1)})
		r.setStatus(0)
		return nil
	}
	r.Vars.Set(varName, expand.Variable{Set: true, Kind: expand.String, Str: string(opt)})
	needsArg := idx+1 < len(optstring) && optstring[idx+1] == ':'
	if needsArg {
		if len(arg) > 2 {
			r.Vars.Set("OPTARG", expand.Variable{Set: true, Kind: expand.String, Str: arg[2:]})
			optind++
		} else if optind < len(argv) {
			r.Vars.Set("OPTARG", expand.Variable{Set: true, Kind: expand.String, Str: argv[optind]})
			optind += 2
		}
	} else {
		optind++
	}
	r.Vars.Set("OPTIND", expand.Variable{Set: true, Kind: expand.String, Str: strconv.Itoa(optind)})
	r.setStatus(0)
	return nil
}
