package interp

import (
	"context"
	"fmt"
	"strings"

	"github.com/home-lang/den/expand"
)

func init() {
	register("pushd", biPushd)
	register("popd", biPopd)
	register("dirs", biDirs)
}

func biPushd(ctx context.Context, r *Runner, args []string) error {
	if len(args) < 2 {
		if len(r.dirStack) == 0 {
			return newShellErrorf(1, "pushd: no other directory")
		}
		top := r.dirStack[len(r.dirStack)-1]
		r.dirStack = r.dirStack[:len(r.dirStack)-1]
		r.dirStack = append(r.dirStack, r.Dir)
		r.Dir = top
		printDirs(r)
		return nil
	}
	r.dirStack = append(r.dirStack, r.Dir)
	target := args[1]
	if !strings.HasPrefix(target, "/") {
		target = r.Dir + "/" + target
	}
	r.Dir = target
	r.Vars.Set("PWD", expand.Variable{Set: true, Kind: expand.String, Str: r.Dir, Exported: true})
	printDirs(r)
	return nil
}

func biPopd(ctx context.Context, r *Runner, args []string) error {
	if len(r.dirStack) == 0 {
		return newShellErrorf(1, "popd: directory stack empty")
	}
	r.Dir = r.dirStack[len(r.dirStack)-1]
	r.dirStack = r.dirStack[:len(r.dirStack)-1]
	r.Vars.Set("PWD", expand.Variable{Set: true, Kind: expand.String, Str: r.Dir, Exported: true})
	printDirs(r)
	return nil
}

func biDirs(ctx context.Context, r *Runner, args []string) error {
	printDirs(r)
	return nil
}

func printDirs(r *Runner) {
	parts := append([]string{r.Dir}, reverseStrs(r.dirStack)...)
	fmt.Fprintln(r.Stdout, strings.Join(parts, " "))
}

func reverseStrs(s []string) []string {
	out := make([]string, len(s))
	for i, v := range s {
		out[len(s)-1-i] = v
	}
	return out
}
