package interp

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/home-lang/den/expand"
	"github.com/home-lang/den/syntax"
	"golang.org/x/sys/unix"
)

// Builtin is a command implemented in-process rather than exec'd, resolved
// by execName between aliases/functions and $PATH lookup.
type Builtin struct {
	Name string
	Run  func(ctx context.Context, r *Runner, args []string) error
}

// specialBuiltins are POSIX special builtins: they run before shell
// functions of the same name, assignments on their command line persist
// after they return, and a failure in one is fatal to a non-interactive
// shell. den models the first property (lookup order); the other two are
// approximated by the individual Run funcs where it matters (e.g. "exit").
var specialBuiltins = map[string]*Builtin{}

// builtins are the regular (non-special) builtin commands.
var builtins = map[string]*Builtin{}

func registerSpecial(name string, fn func(context.Context, *Runner, []string) error) {
	specialBuiltins[name] = &Builtin{Name: name, Run: fn}
}

func register(name string, fn func(context.Context, *Runner, []string) error) {
	builtins[name] = &Builtin{Name: name, Run: fn}
}

func init() {
	registerSpecial(":", biTrue)
	registerSpecial("true", biTrue)
	register("false", biFalse)
	registerSpecial("break", biBreak)
	registerSpecial("continue", biContinue)
	registerSpecial("return", biReturn)
	registerSpecial("exit", biExit)
	registerSpecial("eval", biEval)
	registerSpecial("exec", biExec)
	registerSpecial("export", biExport)
	registerSpecial("readonly", biReadonly)
	registerSpecial("unset", biUnset)
	registerSpecial("shift", biShift)
	registerSpecial("set", biSet)
	registerSpecial("trap", biTrap)
	registerSpecial("times", biTimes)
	registerSpecial(".", biSource)
	register("source", biSourceArg0Self)
	register("cd", biCd)
	register("pwd", biPwd)
	register("echo", biEcho)
	register("printf", biPrintf)
	register("type", biType)
	register("command", biCommand)
	register("local", biLocal)
	register("declare", biDeclare)
	register("typeset", biDeclare)
	register("nameref", biNameref)
	register("umask", biUmask)
	register("test", biTest)
	register("[", biBracket)
	register("help", biHelp)
}

func biTrue(ctx context.Context, r *Runner, args []string) error {
	r.setStatus(0)
	return nil
}

func biFalse(ctx context.Context, r *Runner, args []string) error {
	r.setStatus(1)
	return nil
}

func biBreak(ctx context.Context, r *Runner, args []string) error {
	n := 1
	if len(args) > 1 {
		if v, err := strconv.Atoi(args[1]); err == nil && v > 0 {
			n = v
		}
	}
	return loopBreak{n: n}
}

func biContinue(ctx context.Context, r *Runner, args []string) error {
	n := 1
	if len(args) > 1 {
		if v, err := strconv.Atoi(args[1]); err == nil && v > 0 {
			n = v
		}
	}
	return loopContinue{n: n}
}

func biReturn(ctx context.Context, r *Runner, args []string) error {
	n := r.lastStatus
	if len(args) > 1 {
		if v, err := strconv.Atoi(args[1]); err == nil {
			n = uint8(v)
		}
	}
	if r.funcDepth == 0 {
		return ExitStatus(n)
	}
	return funcReturn(n)
}

func biExit(ctx context.Context, r *Runner, args []string) error {
	n := r.lastStatus
	if len(args) > 1 {
		if v, err := strconv.Atoi(args[1]); err == nil {
			n = uint8(v)
		} else {
			n = 2
		}
	}
	return ExitStatus(n)
}

func biEval(ctx context.Context, r *Runner, args []string) error {
	src := strings.Join(args[1:], " ")
	f, err := syntax.Parse([]byte(src), "eval")
	if err != nil {
		return newShellErrorf(2, "eval: %v", err)
	}
	return r.Run(ctx, f)
}

func biExec(ctx context.Context, r *Runner, args []string) error {
	if len(args) == 1 {
		return nil
	}
	path, err := r.Path.Lookup(args[1], r.Vars)
	if err != nil {
		return newShellErrorf(127, "den: %s: command not found", args[1])
	}
	return r.runExternalProcess(ctx, path, args[1:])
}

func biExport(ctx context.Context, r *Runner, args []string) error {
	if len(args) == 1 {
		for _, kv := range r.Vars.ExportedPairs() {
			fmt.Fprintf(r.Stdout, "export %s\n", kv)
		}
		return nil
	}
	for _, a := range args[1:] {
		name, val, hasVal := strings.Cut(a, "=")
		v := r.Vars.Get(name)
		if hasVal {
			v.Str, v.Set, v.Kind = val, true, expand.String
		}
		v.Exported = true
		r.Vars.Set(name, v)
	}
	return nil
}

func biReadonly(ctx context.Context, r *Runner, args []string) error {
	for _, a := range args[1:] {
		name, val, hasVal := strings.Cut(a, "=")
		v := r.Vars.Get(name)
		if hasVal {
			v.Str, v.Set, v.Kind = val, true, expand.String
		}
		v.ReadOnly = true
		r.Vars.Set(name, v)
	}
	return nil
}

func biUnset(ctx context.Context, r *Runner, args []string) error {
	for _, name := range args[1:] {
		if name == "-f" || name == "-v" {
			continue
		}
		delete(r.Funcs, name)
		r.Vars.Unset(name)
	}
	return nil
}

func biShift(ctx context.Context, r *Runner, args []string) error {
	n := 1
	if len(args) > 1 {
		if v, err := strconv.Atoi(args[1]); err == nil {
			n = v
		}
	}
	if n > len(r.params) {
		return newShellErrorf(1, "shift: shift count out of range")
	}
	r.params = r.params[n:]
	return nil
}

func biSet(ctx context.Context, r *Runner, args []string) error {
	rest := args[1:]
	i := 0
	for i < len(rest) {
		a := rest[i]
		if a == "--" {
			i++
			break
		}
		if a == "-o" || a == "+o" {
			on := a == "-o"
			i++
			if i < len(rest) {
				r.Opts.SetByName(rest[i], on)
				i++
			} else {
				for _, l := range r.Opts.Lines() {
					fmt.Fprintln(r.Stdout, l)
				}
			}
			continue
		}
		if len(a) >= 2 && (a[0] == '-' || a[0] == '+') {
			on := a[0] == '-'
			for _, letter := range a[1:] {
				r.Opts.SetByLetter(byte(letter), on)
			}
			i++
			continue
		}
		break
	}
	if i < len(rest) {
		r.params = rest[i:]
	}
	return nil
}

func biTrap(ctx context.Context, r *Runner, args []string) error {
	if len(args) == 1 {
		for _, spec := range r.Traps.Specs() {
			fmt.Fprintf(r.Stdout, "trap -- %q %s\n", spec, spec)
		}
		return nil
	}
	if args[1] == "-p" {
		specs := args[2:]
		if len(specs) == 0 {
			specs = r.Traps.Specs()
		}
		for _, spec := range specs {
			if stmt, ok := r.Traps.Get(spec); ok {
				_ = stmt
				fmt.Fprintf(r.Stdout, "trap -- %s\n", spec)
			}
		}
		return nil
	}
	action := args[1]
	for _, spec := range args[2:] {
		if action == "-" {
			r.Traps.Clear(spec)
			continue
		}
		f, err := syntax.Parse([]byte(action), "trap")
		if err != nil {
			return newShellErrorf(1, "trap: %v", err)
		}
		r.Traps.Set(spec, &syntax.Stmt{Cmd: &syntax.Block{Stmts: f.Stmts}})
	}
	return nil
}

func biTimes(ctx context.Context, r *Runner, args []string) error {
	fmt.Fprintln(r.Stdout, "0m0.000s 0m0.000s")
	fmt.Fprintln(r.Stdout, "0m0.000s 0m0.000s")
	return nil
}

func biSource(ctx context.Context, r *Runner, args []string) error {
	if len(args) < 2 {
		return newShellErrorf(1, ".: filename argument required")
	}
	path := args[1]
	data, err := os.ReadFile(path)
	if err != nil {
		return newShellErrorf(1, ".: %v", err)
	}
	f, err := syntax.Parse(data, path)
	if err != nil {
		return newShellErrorf(2, "%s: %v", path, err)
	}
	oldParams := r.params
	if len(args) > 2 {
		r.params = args[2:]
	}
	defer func() { r.params = oldParams }()
	return r.runStmts(ctx, f.Stmts)
}

func biSourceArg0Self(ctx context.Context, r *Runner, args []string) error {
	return biSource(ctx, r, args)
}

func biCd(ctx context.Context, r *Runner, args []string) error {
	target := ""
	if len(args) > 1 {
		target = args[1]
	}
	if target == "" {
		target = r.Vars.Get("HOME").String()
	}
	if target == "-" {
		target = r.Vars.Get("OLDPWD").String()
		fmt.Fprintln(r.Stdout, target)
	}
	if !strings.HasPrefix(target, "/") {
		target = r.Dir + "/" + target
	}
	info, err := os.Stat(target)
	if err != nil || !info.IsDir() {
		return newShellErrorf(1, "cd: %s: No such file or directory", target)
	}
	oldpwd := r.Dir
	r.Dir = target
	r.Vars.Set("OLDPWD", expand.Variable{Set: true, Kind: expand.String, Str: oldpwd, Exported: true})
	r.Vars.Set("PWD", expand.Variable{Set: true, Kind: expand.String, Str: target, Exported: true})
	return nil
}

func biPwd(ctx context.Context, r *Runner, args []string) error {
	fmt.Fprintln(r.Stdout, r.Dir)
	return nil
}

func biEcho(ctx context.Context, r *Runner, args []string) error {
	rest := args[1:]
	newline := true
	interpret := false
	for len(rest) > 0 {
		switch rest[0] {
		case "-n":
			newline = false
		case "-e":
			interpret = true
		case "-E":
			interpret = false
		default:
			goto doneFlags
		}
		rest = rest[1:]
	}
doneFlags:
	out := strings.Join(rest, " ")
	if interpret {
		out = interpretEchoEscapes(out)
	}
	fmt.Fprint(r.Stdout, out)
	if newline {
		fmt.Fprintln(r.Stdout)
	}
	return nil
}

func interpretEchoEscapes(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '\\':
			b.WriteByte('\\')
		case 'a':
			b.WriteByte('\a')
		case 'c':
			return b.String()
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func biType(ctx context.Context, r *Runner, args []string) error {
	status := uint8(0)
	for _, name := range args[1:] {
		switch {
		case isKeyword(name):
			fmt.Fprintf(r.Stdout, "%s is a shell keyword\n", name)
		case func() bool { _, ok := r.Aliases.Get(name); return ok }():
			exp, _ := r.Aliases.Get(name)
			fmt.Fprintf(r.Stdout, "%s is aliased to `%s'\n", name, exp)
		case func() bool { _, ok := r.Funcs[name]; return ok }():
			fmt.Fprintf(r.Stdout, "%s is a function\n", name)
		case func() bool { _, ok := specialBuiltins[name]; return ok }(),
			func() bool { _, ok := builtins[name]; return ok }():
			fmt.Fprintf(r.Stdout, "%s is a shell builtin\n", name)
		default:
			if path, err := r.Path.Lookup(name, r.Vars); err == nil {
				fmt.Fprintf(r.Stdout, "%s is %s\n", name, path)
			} else {
				fmt.Fprintf(r.Stderr, "type: %s: not found\n", name)
				status = 1
			}
		}
	}
	r.setStatus(status)
	return nil
}

func isKeyword(name string) bool {
	switch name {
	case "if", "then", "else", "elif", "fi", "for", "while", "until", "do", "done",
		"case", "esac", "function", "select", "time", "{", "}", "!", "[[", "]]":
		return true
	}
	return false
}

func biCommand(ctx context.Context, r *Runner, args []string) error {
	rest := args[1:]
	for len(rest) > 0 && strings.HasPrefix(rest[0], "-") {
		rest = rest[1:]
	}
	if len(rest) == 0 {
		return nil
	}
	path, err := r.Path.Lookup(rest[0], r.Vars)
	if err != nil {
		return newShellErrorf(127, "den: %s: command not found", rest[0])
	}
	return r.runExternalProcess(ctx, path, rest)
}

func biLocal(ctx context.Context, r *Runner, args []string) error {
	cfg := r.expandConfig(ctx)
	for _, a := range args[1:] {
		name, val, hasVal := strings.Cut(a, "=")
		vb := expand.Variable{Set: true, Kind: expand.String}
		if hasVal {
			vb.Str = val
		}
		_ = cfg
		r.Vars.SetLocal(name, vb)
	}
	return nil
}

func biDeclare(ctx context.Context, r *Runner, args []string) error {
	var opts []string
	var assigns []string
	for _, a := range args[1:] {
		if strings.HasPrefix(a, "-") {
			opts = append(opts, a)
			continue
		}
		assigns = append(assigns, a)
	}
	if len(assigns) == 0 {
		var names []string
		r.Vars.Each(func(name string, v expand.Variable) bool { names = append(names, name); return true })
		sort.Strings(names)
		for _, name := range names {
			v := r.Vars.Get(name)
			fmt.Fprintf(r.Stdout, "%s=%s\n", name, v.String())
		}
		return nil
	}
	for _, a := range assigns {
		name, val, hasVal := strings.Cut(a, "=")
		vb := r.Vars.Get(name)
		vb.Set = true
		if vb.Kind == expand.Unknown {
			vb.Kind = expand.String
		}
		for _, opt := range opts {
			switch opt {
			case "-x":
				vb.Exported = true
			case "-r":
				vb.ReadOnly = true
			case "-i":
				vb.Integer = true
			}
		}
		if hasVal {
			vb.Str = val
		}
		r.Vars.Set(name, vb)
	}
	return nil
}

func biNameref(ctx context.Context, r *Runner, args []string) error {
	for _, a := range args[1:] {
		name, target, hasVal := strings.Cut(a, "=")
		if !hasVal {
			continue
		}
		r.Vars.Set(name, expand.Variable{Set: true, Kind: expand.NameRef, Str: target})
	}
	return nil
}

func biUmask(ctx context.Context, r *Runner, args []string) error {
	if len(args) == 1 {
		fmt.Fprintf(r.Stdout, "%04o\n", r.Opts.Umask)
		return nil
	}
	n, err := strconv.ParseUint(args[1], 8, 32)
	if err != nil {
		return newShellErrorf(1, "umask: %s: invalid mode", args[1])
	}
	r.Opts.Umask = int(n)
	unix.Umask(r.Opts.Umask)
	return nil
}

func biTest(ctx context.Context, r *Runner, args []string) error {
	words := make([]*syntax.Word, len(args)-1)
	for i, a := range args[1:] {
		words[i] = litWord(a)
	}
	cfg := r.expandConfig(ctx)
	ok, err := evalTest(cfg, words)
	if err != nil {
		r.setStatus(2)
		return nil
	}
	if ok {
		r.setStatus(0)
	} else {
		r.setStatus(1)
	}
	return nil
}

func biBracket(ctx context.Context, r *Runner, args []string) error {
	if len(args) == 0 || args[len(args)-1] != "]" {
		return newShellErrorf(2, "[: missing closing ]")
	}
	return biTest(ctx, r, args[:len(args)-1])
}

func litWord(s string) *syntax.Word {
	return &syntax.Word{Parts: []syntax.WordPart{&syntax.Lit{Value: s}}}
}

func biHelp(ctx context.Context, r *Runner, args []string) error {
	var names []string
	for n := range builtins {
		names = append(names, n)
	}
	for n := range specialBuiltins {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintln(r.Stdout, n)
	}
	return nil
}
