package interp

import (
	"context"
	"fmt"
	"sort"
)

func init() {
	register("enable", biEnable)
	register("disable", biDisable)
}

// allBuiltinNames returns every registered builtin and special builtin
// name, sorted, for "enable -a"/"enable" with no args.
func allBuiltinNames() []string {
	var names []string
	for n := range specialBuiltins {
		names = append(names, n)
	}
	for n := range builtins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// biEnable implements "enable [-n] [-a] [name...]": with no name it lists
// builtins (enabled ones by default, disabled ones under -n); with names it
// masks ("-n") or unmasks them without touching the underlying registry, so
// a later "enable name" brings back exactly the builtin that was there
// before.
func biEnable(ctx context.Context, r *Runner, args []string) error {
	disableMode := false
	listAll := false
	var names []string
	for _, a := range args[1:] {
		switch a {
		case "-n":
			disableMode = true
		case "-a":
			listAll = true
		default:
			names = append(names, a)
		}
	}

	if len(names) == 0 {
		for _, n := range allBuiltinNames() {
			disabled := r.disabledBuiltins[n]
			if disableMode && !disabled {
				continue
			}
			if !disableMode && !listAll && disabled {
				continue
			}
			prefix := "enable "
			if disabled {
				prefix = "enable -n "
			}
			fmt.Fprintf(r.Stdout, "%s%s\n", prefix, n)
		}
		return nil
	}

	for _, n := range names {
		if _, sok := specialBuiltins[n]; !sok {
			if _, ok := builtins[n]; !ok {
				fmt.Fprintf(r.Stderr, "enable: %s: not a shell builtin\n", n)
				r.setStatus(1)
				continue
			}
		}
		r.disabledBuiltins[n] = disableMode
	}
	return nil
}

// biDisable implements "disable name...", equivalent to "enable -n name...".
func biDisable(ctx context.Context, r *Runner, args []string) error {
	enableArgs := append([]string{"enable", "-n"}, args[1:]...)
	return biEnable(ctx, r, enableArgs)
}
