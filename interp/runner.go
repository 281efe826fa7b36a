// Package interp implements den's executor: statement and pipeline
// execution, variable scoping, alias/function resolution, job control and
// traps, following the shape of mvdan.cc/sh's interp package but replacing
// its io.Pipe/goroutine pipeline model with real OS processes and process
// groups (see DESIGN.md for why).
package interp

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/home-lang/den/expand"
	"github.com/home-lang/den/pattern"
	"github.com/home-lang/den/syntax"
	"golang.org/x/sync/errgroup"
)

// ExitStatus is returned by Run to carry a program's exit code through the
// normal Go error path.
type ExitStatus uint8

func (e ExitStatus) Error() string { return fmt.Sprintf("exit status %d", e) }

// IsExitStatus reports whether err is (or wraps) an ExitStatus, and returns
// its code.
func IsExitStatus(err error) (uint8, bool) {
	if e, ok := err.(ExitStatus); ok {
		return uint8(e), true
	}
	return 0, false
}

// shellError carries a non-exit runtime error together with the status
// code the shell should report for it (den: prefix applied by callers).
type shellError struct {
	msg    string
	status uint8
}

func (e *shellError) Error() string { return e.msg }

func newShellErrorf(status uint8, format string, a ...interface{}) error {
	return &shellError{msg: fmt.Sprintf(format, a...), status: status}
}

// RunnerOption configures a Runner at construction time, following the
// teacher's functional-options pattern.
type RunnerOption func(*Runner) error

// Runner executes a parsed *syntax.File or individual statements. A zero
// Runner is not ready for use; construct one with New.
type Runner struct {
	Vars    *Scope
	Aliases *AliasTable
	Funcs   map[string]*syntax.FuncDecl
	Opts    *Options
	Jobs    *JobTable
	Traps   *TrapTable
	History *History
	Path    *PathHash

	Dir string // $PWD

	Stdin          io.Reader
	Stdout, Stderr io.Writer

	lastStatus       uint8
	params           []string
	name0            string
	funcDepth        int
	execDepth        int
	inPipeline       bool
	dirStack         []string
	bgJobs           *errgroup.Group
	disabledBuiltins map[string]bool

	// origStdin/Out/Err preserve the caller's original streams across a
	// Reset, so Reset can restore them instead of clearing them to nil.
	origStdin          io.Reader
	origStdout, origStderr io.Writer
}

// New builds a Runner with the given options applied.
func New(opts ...RunnerOption) (*Runner, error) {
	r := &Runner{}
	r.Reset()
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	if r.Stdin == nil {
		r.Stdin = os.Stdin
	}
	if r.Stdout == nil {
		r.Stdout = os.Stdout
	}
	if r.Stderr == nil {
		r.Stderr = os.Stderr
	}
	r.origStdin, r.origStdout, r.origStderr = r.Stdin, r.Stdout, r.Stderr
	return r, nil
}

// Reset clears all mutable shell state (variables, functions, aliases,
// jobs, traps, last status) while preserving the caller-supplied I/O
// streams and options, so a Runner can be reused across scripts.
func (r *Runner) Reset() {
	origIn, origOut, origErr := r.origStdin, r.origStdout, r.origStderr
	opts := r.Opts
	*r = Runner{
		Vars:             NewScope(expand.ListEnviron(os.Environ())),
		Aliases:          NewAliasTable(),
		Funcs:            map[string]*syntax.FuncDecl{},
		Opts:             opts,
		Jobs:             NewJobTable(),
		Traps:            NewTrapTable(),
		History:          NewHistory(),
		Path:             NewPathHash(),
		bgJobs:           &errgroup.Group{},
		disabledBuiltins: map[string]bool{},
	}
	if r.Opts == nil {
		r.Opts = NewOptions()
	}
	if wd, err := os.Getwd(); err == nil {
		r.Dir = wd
	}
	r.Stdin, r.Stdout, r.Stderr = origIn, origOut, origErr
	r.origStdin, r.origStdout, r.origStderr = origIn, origOut, origErr
}

// Stdin/Stdout/Stderr/Dir/Params are RunnerOptions set via With-style
// constructors below.

func WithStdin(r io.Reader) RunnerOption  { return func(rn *Runner) error { rn.Stdin = r; return nil } }
func WithStdout(w io.Writer) RunnerOption { return func(rn *Runner) error { rn.Stdout = w; return nil } }
func WithStderr(w io.Writer) RunnerOption { return func(rn *Runner) error { rn.Stderr = w; return nil } }
func WithDir(dir string) RunnerOption {
	return func(rn *Runner) error {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return err
		}
		rn.Dir = abs
		return nil
	}
}
func WithParams(params ...string) RunnerOption {
	return func(rn *Runner) error { rn.params = params; return nil }
}

// LastStatus returns $? as set by the most recently completed command.
func (r *Runner) LastStatus() uint8 { return r.lastStatus }

func (r *Runner) setStatus(n uint8) { r.lastStatus = n }

// exitf aborts the current Run call with an ExitStatus error.
func (r *Runner) exitf(n uint8) error { return ExitStatus(n) }

// Run executes every statement in f in order, honoring "exit" and
// "set -e". It returns a non-nil error of type ExitStatus if an "exit"
// builtin ran or errexit fired; other errors indicate an internal failure
// (I/O, parse-time-detected issues surfaced late, etc).
func (r *Runner) Run(ctx context.Context, f *syntax.File) error {
	r.name0 = f.Name
	var err error
	for _, stmt := range f.Stmts {
		err = r.runStmt(ctx, stmt)
		if err != nil {
			break
		}
	}
	if err != nil {
		if code, ok := IsExitStatus(err); ok {
			r.runExitTrap(ctx)
			return ExitStatus(code)
		}
		return err
	}
	return nil
}

func (r *Runner) runExitTrap(ctx context.Context) {
	if stmt, ok := r.Traps.Get("EXIT"); ok {
		_ = r.runStmt(ctx, stmt)
	}
}

// runStmt executes one statement: redirections and assignments are applied
// (assignments persist only for the statement's duration if it has a
// command; otherwise they persist in the current scope), then Cmd runs,
// honoring Negated/Background.
func (r *Runner) runStmt(ctx context.Context, stmt *syntax.Stmt) error {
	if stmt.Background {
		return r.runBackground(ctx, stmt)
	}

	restore, err := r.applyRedirects(stmt.Redirs)
	if err != nil {
		return r.statusErrFromErr(err)
	}
	defer restore()

	if stmt.Cmd == nil {
		return r.applyAssigns(stmt.Assigns, false)
	}

	if len(stmt.Assigns) > 0 {
		if _, isCall := stmt.Cmd.(*syntax.CallExpr); isCall {
			restoreVars := r.applyTempAssigns(stmt.Assigns)
			defer restoreVars()
		} else {
			if err := r.applyAssigns(stmt.Assigns, false); err != nil {
				return err
			}
		}
	}

	err = r.runCommand(ctx, stmt.Cmd)
	status := r.statusFromErr(err)
	if stmt.Negated {
		if status == 0 {
			status = 1
		} else {
			status = 0
		}
		r.setStatus(status)
		err = nil
	}
	if err != nil {
		switch err.(type) {
		case loopBreak, loopContinue, funcReturn:
			return err
		}
		if _, isExit := IsExitStatus(err); isExit {
			return err
		}
		r.reportError(err)
		r.setStatus(status)
		err = nil
	}

	if status, ok := extractExitCode(err); ok {
		r.setStatus(status)
	}

	if r.lastStatus != 0 {
		if trapStmt, ok := r.Traps.Get("ERR"); ok && !r.Opts.Get("errtrace-suppressed") {
			_ = r.runStmt(ctx, trapStmt)
		}
		if r.Opts.ErrExit && !r.inConditionalContext(stmt) {
			return r.exitf(r.lastStatus)
		}
	}
	return nil
}

func extractExitCode(err error) (uint8, bool) {
	if err == nil {
		return 0, false
	}
	if code, ok := IsExitStatus(err); ok {
		return code, true
	}
	return 0, false
}

func (r *Runner) statusFromErr(err error) uint8 {
	if err == nil {
		return 0
	}
	if code, ok := IsExitStatus(err); ok {
		return code
	}
	if se, ok := err.(*shellError); ok {
		return se.status
	}
	return 1
}

func (r *Runner) statusErrFromErr(err error) error {
	r.setStatus(1)
	r.reportError(err)
	return nil
}

func (r *Runner) reportError(err error) {
	fmt.Fprintf(r.Stderr, "den: %v\n", err)
}

// inConditionalContext approximates bash's errexit exemption list: the
// tested half of && / ||, an if/while/until condition, and a negated
// command are all exempt. Tracking the exact AST ancestry would need a
// parent-pointer walk; runStmt instead checks the immediate Cmd shape,
// which covers the common exemptions.
func (r *Runner) inConditionalContext(stmt *syntax.Stmt) bool {
	return stmt.Negated
}

func (r *Runner) runBackground(ctx context.Context, stmt *syntax.Stmt) error {
	job := r.Jobs.New(stmt)
	sub := r.sub()
	r.bgJobs.Go(func() error {
		bg := *stmt
		bg.Background = false
		err := sub.runStmt(ctx, &bg)
		job.Finish(sub.statusFromErr(err))
		return nil
	})
	fmt.Fprintf(r.Stdout, "[%d] %d\n", job.ID, job.ID)
	return nil
}

// WaitBackground blocks until every "&"-launched job started on this
// Runner has finished, for clean shutdown at the end of an interactive
// session or script.
func (r *Runner) WaitBackground() { _ = r.bgJobs.Wait() }

// runCommand dispatches on the command's concrete type.
func (r *Runner) runCommand(ctx context.Context, cmd syntax.Command) error {
	switch c := cmd.(type) {
	case *syntax.CallExpr:
		return r.runCall(ctx, c)
	case *syntax.Pipeline:
		return r.runPipeline(ctx, c)
	case *syntax.BinaryCmd:
		return r.runBinary(ctx, c)
	case *syntax.Block:
		return r.runStmts(ctx, c.Stmts)
	case *syntax.Subshell:
		return r.runSubshell(ctx, c.Stmts)
	case *syntax.IfClause:
		return r.runIf(ctx, c)
	case *syntax.WhileClause:
		return r.runWhile(ctx, c)
	case *syntax.ForClause:
		return r.runFor(ctx, c)
	case *syntax.CaseClause:
		return r.runCase(ctx, c)
	case *syntax.FuncDecl:
		r.Funcs[c.Name] = c
		return nil
	case *syntax.ArithCmd:
		return r.runArithCmd(ctx, c)
	case *syntax.TestClause:
		return r.runTestClause(ctx, c)
	case *syntax.TimeClause:
		return r.runTimeClause(ctx, c)
	}
	return fmt.Errorf("unsupported command %T", cmd)
}

func (r *Runner) runStmts(ctx context.Context, stmts []*syntax.Stmt) error {
	var err error
	for _, s := range stmts {
		err = r.runStmt(ctx, s)
		if err != nil {
			break
		}
	}
	return err
}

func (r *Runner) runBinary(ctx context.Context, b *syntax.BinaryCmd) error {
	err := r.runStmt(ctx, b.X)
	if err != nil {
		return err
	}
	ok := r.lastStatus == 0
	if (b.Op == syntax.AndStmt && ok) || (b.Op == syntax.OrStmt && !ok) {
		return r.runStmt(ctx, b.Y)
	}
	return nil
}

func (r *Runner) runIf(ctx context.Context, c *syntax.IfClause) error {
	if err := r.runStmts(ctx, c.Cond); err != nil {
		return err
	}
	if r.lastStatus == 0 {
		return r.runStmts(ctx, c.Then)
	}
	for _, elif := range c.Elifs {
		if err := r.runStmts(ctx, elif.Cond); err != nil {
			return err
		}
		if r.lastStatus == 0 {
			return r.runStmts(ctx, elif.Then)
		}
	}
	if c.Else != nil {
		return r.runStmts(ctx, c.Else)
	}
	r.setStatus(0)
	return nil
}

func (r *Runner) runWhile(ctx context.Context, c *syntax.WhileClause) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.runStmts(ctx, c.Cond); err != nil {
			return err
		}
		cont := r.lastStatus == 0
		if c.Until {
			cont = !cont
		}
		if !cont {
			r.setStatus(0)
			return nil
		}
		err := r.runStmts(ctx, c.Do)
		if brk, ok := err.(loopBreak); ok {
			if brk.n > 1 {
				return loopBreak{n: brk.n - 1}
			}
			return nil
		}
		if cont, ok := err.(loopContinue); ok {
			if cont.n > 1 {
				return loopContinue{n: cont.n - 1}
			}
			continue
		}
		if err != nil {
			return err
		}
	}
}

type loopBreak struct{ n int }

func (loopBreak) Error() string { return "break" }

type loopContinue struct{ n int }

func (loopContinue) Error() string { return "continue" }

func (r *Runner) runFor(ctx context.Context, c *syntax.ForClause) error {
	runBody := func() (stop bool, err error) {
		err = r.runStmts(ctx, c.Do)
		if brk, ok := err.(loopBreak); ok {
			if brk.n > 1 {
				return true, loopBreak{n: brk.n - 1}
			}
			return true, nil
		}
		if cont, ok := err.(loopContinue); ok {
			if cont.n > 1 {
				return true, loopContinue{n: cont.n - 1}
			}
			return false, nil
		}
		if err != nil {
			return true, err
		}
		return false, nil
	}

	switch loop := c.Loop.(type) {
	case *syntax.WordIter:
		items := loop.Items
		var words []string
		if loop.HasIn {
			cfg := r.expandConfig(ctx)
			var err error
			words, err = expand.Fields(cfg, items)
			if err != nil {
				return err
			}
		} else {
			words = r.params
		}
		for _, w := range words {
			r.Vars.Set(loop.Name, expand.Variable{Set: true, Kind: expand.String, Str: w})
			stop, err := runBody()
			if err != nil {
				return err
			}
			if stop {
				break
			}
		}
	case *syntax.CStyleLoop:
		cfg := r.expandConfig(ctx)
		if loop.Init != "" {
			if _, err := expand.Arithmetic(cfg, loop.Init); err != nil {
				return err
			}
		}
		for {
			if loop.Cond != "" {
				n, err := expand.Arithmetic(cfg, loop.Cond)
				if err != nil {
					return err
				}
				if n == 0 {
					break
				}
			}
			stop, err := runBody()
			if err != nil {
				return err
			}
			if stop {
				break
			}
			if loop.Post != "" {
				if _, err := expand.Arithmetic(cfg, loop.Post); err != nil {
					return err
				}
			}
		}
	}
	r.setStatus(0)
	return nil
}

func (r *Runner) runCase(ctx context.Context, c *syntax.CaseClause) error {
	cfg := r.expandConfig(ctx)
	word, err := expand.Literal(cfg, c.Word)
	if err != nil {
		return err
	}
	matchedIdx := -1
	for i, item := range c.Items {
		for _, p := range item.Patterns {
			pat, err := expand.Pattern(cfg, p)
			if err != nil {
				return err
			}
			re, err := patternRegexp(pat)
			if err != nil {
				continue
			}
			if re.MatchString(word) {
				matchedIdx = i
				break
			}
		}
		if matchedIdx >= 0 {
			break
		}
	}
	if matchedIdx < 0 {
		r.setStatus(0)
		return nil
	}
	for i := matchedIdx; i < len(c.Items); i++ {
		item := c.Items[i]
		if err := r.runStmts(ctx, item.Stmts); err != nil {
			return err
		}
		if item.Op != syntax.CaseFallthr && item.Op != syntax.CaseContMatch {
			break
		}
		if item.Op == syntax.CaseFallthr {
			continue
		}
	}
	return nil
}

func (r *Runner) runSubshell(ctx context.Context, stmts []*syntax.Stmt) error {
	sub := r.sub()
	err := sub.runStmts(ctx, stmts)
	r.lastStatus = sub.lastStatus
	return err
}

// sub produces a struct-copy subshell for constructs that do not need a
// real OS process (brace-group-like "( list )" used purely for scoping);
// pipeline stages that must be isolated at the OS level go through
// runPipeline/execExternal instead. Every piece of mutable shell state
// (variables, functions, aliases, traps, options) is given to the child as
// a copy-on-write snapshot so its mutations never flow back to the parent.
func (r *Runner) sub() *Runner {
	cp := *r
	cp.Vars = r.Vars.sub()
	cp.Aliases = r.Aliases.sub()
	cp.Traps = r.Traps.sub()
	cp.Opts = r.Opts.sub()
	cp.Funcs = map[string]*syntax.FuncDecl{}
	for k, v := range r.Funcs {
		cp.Funcs[k] = v
	}
	cp.disabledBuiltins = map[string]bool{}
	for k, v := range r.disabledBuiltins {
		cp.disabledBuiltins[k] = v
	}
	return &cp
}

func (r *Runner) runArithCmd(ctx context.Context, c *syntax.ArithCmd) error {
	cfg := r.expandConfig(ctx)
	n, err := expand.Arithmetic(cfg, c.Expr)
	if err != nil {
		return err
	}
	if n == 0 {
		r.setStatus(1)
	} else {
		r.setStatus(0)
	}
	return nil
}

func (r *Runner) runTestClause(ctx context.Context, c *syntax.TestClause) error {
	cfg := r.expandConfig(ctx)
	ok, err := evalTest(cfg, c.Args)
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

func (r *Runner) runTimeClause(ctx context.Context, c *syntax.TimeClause) error {
	start := time.Now()
	err := r.runStmt(ctx, c.Stmt)
	elapsed := time.Since(start)
	if c.PosixFmt {
		fmt.Fprintf(r.Stderr, "real %.3f\n", elapsed.Seconds())
	} else {
		fmt.Fprintf(r.Stderr, "\nreal\t%.3fs\n", elapsed.Seconds())
	}
	return err
}

func patternRegexp(pat string) (*regexp.Regexp, error) {
	return pattern.Regexp(pat, pattern.EntireString)
}

func (r *Runner) expandConfig(ctx context.Context) *expand.Config {
	return &expand.Config{
		Env:      r.Vars,
		NoUnset:  r.Opts.NoUnset,
		NoGlob:   r.Opts.NoGlob,
		NullGlob: r.Opts.NullGlob,
		FailGlob: r.Opts.FailGlob,
		DotGlob:  r.Opts.DotGlob,
		GlobStar: r.Opts.GlobStar,
		Dir:      r.Dir,
		Params:   r.params,
		Name0:    r.name0,
		CmdSubst: func(cs *syntax.CmdSubst) (string, error) {
			return r.captureOutput(ctx, cs.Stmts)
		},
		ReadDir: func(dir string) ([]string, error) { return readDirNames(dir) },
	}
}

func readDirNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names, nil
}

// captureOutput runs stmts in a sub-runner with Stdout redirected to an
// in-memory buffer, for command substitution.
func (r *Runner) captureOutput(ctx context.Context, stmts []*syntax.Stmt) (string, error) {
	var buf strings.Builder
	sub := r.sub()
	sub.Stdout = &buf
	err := sub.runStmts(ctx, stmts)
	r.lastStatus = sub.lastStatus
	if err != nil {
		if _, ok := IsExitStatus(err); !ok {
			return buf.String(), err
		}
	}
	return buf.String(), nil
}

func (r *Runner) applyAssigns(assigns []*syntax.Assign, local bool) error {
	cfg := r.expandConfig(context.Background())
	for _, a := range assigns {
		if err := r.applySingleAssign(cfg, a, local); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) applySingleAssign(cfg *expand.Config, a *syntax.Assign, local bool) error {
	existing := r.Vars.Get(a.Name)
	var vb expand.Variable
	switch {
	case a.Array != nil:
		vals, err := expand.Fields(cfg, a.Array.Elems)
		if err != nil {
			return err
		}
		vb = expand.Variable{Set: true, Kind: expand.Indexed, List: vals}
	case a.Value != nil:
		s, err := expand.Literal(cfg, a.Value)
		if err != nil {
			return err
		}
		if a.Append && existing.IsSet() {
			s = existing.String() + s
		}
		vb = expand.Variable{Set: true, Kind: expand.String, Str: s}
	default:
		vb = expand.Variable{Set: true, Kind: expand.String, Str: ""}
	}
	vb.ReadOnly = existing.ReadOnly
	vb.Exported = existing.Exported
	if vb.ReadOnly {
		return newShellErrorf(1, "%s: readonly variable", a.Name)
	}
	if local {
		return r.Vars.SetLocal(a.Name, vb)
	}
	return r.Vars.Set(a.Name, vb)
}

// applyTempAssigns applies assignments that should only be visible to the
// single command they prefix (e.g. "FOO=bar printenv FOO"), returning a
// restore func.
func (r *Runner) applyTempAssigns(assigns []*syntax.Assign) func() {
	cfg := r.expandConfig(context.Background())
	type saved struct {
		name    string
		hadOld  bool
		old     expand.Variable
	}
	var savedList []saved
	for _, a := range assigns {
		old := r.Vars.Get(a.Name)
		savedList = append(savedList, saved{name: a.Name, hadOld: old.IsSet(), old: old})
		_ = r.applySingleAssign(cfg, a, false)
	}
	return func() {
		for _, s := range savedList {
			if s.hadOld {
				r.Vars.Set(s.name, s.old)
			} else {
				r.Vars.Unset(s.name)
			}
		}
	}
}

func (r *Runner) runCall(ctx context.Context, c *syntax.CallExpr) error {
	if len(c.Args) == 0 {
		r.setStatus(0)
		return nil
	}
	cfg := r.expandConfig(ctx)
	args, err := expand.Fields(cfg, c.Args)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		r.setStatus(0)
		return nil
	}
	return r.execName(ctx, args, 0)
}

// execName resolves and runs a command name in the usual shell order:
// alias -> function -> special builtin -> function -> regular builtin ->
// external. aliasDepth bounds recursive alias expansion.
func (r *Runner) execName(ctx context.Context, args []string, aliasDepth int) error {
	name := args[0]

	if aliasDepth < maxAliasDepth {
		if expansion, ok := r.Aliases.Get(name); ok {
			expanded := append(strings.Fields(expansion), args[1:]...)
			if len(expanded) > 0 && expanded[0] != name {
				return r.execName(ctx, expanded, aliasDepth+1)
			}
		}
	}

	if sb, ok := specialBuiltins[name]; ok && !r.disabledBuiltins[name] {
		return r.runBuiltin(ctx, sb, args)
	}
	if fn, ok := r.Funcs[name]; ok {
		return r.callFunc(ctx, fn, args)
	}
	if b, ok := builtins[name]; ok && !r.disabledBuiltins[name] {
		return r.runBuiltin(ctx, b, args)
	}
	return r.execExternal(ctx, args)
}

const maxAliasDepth = 64

func (r *Runner) callFunc(ctx context.Context, fn *syntax.FuncDecl, args []string) error {
	oldParams := r.params
	r.params = args[1:]
	r.Vars.pushFuncFrame()
	r.funcDepth++
	defer func() {
		r.funcDepth--
		r.Vars.popFuncFrame()
		r.params = oldParams
	}()
	err := r.runStmt(ctx, fn.Body)
	if n, ok := err.(funcReturn); ok {
		r.setStatus(uint8(n))
		return nil
	}
	return err
}

type funcReturn uint8

func (funcReturn) Error() string { return "return" }

func (r *Runner) runBuiltin(ctx context.Context, b *Builtin, args []string) error {
	return b.Run(ctx, r, args)
}

func (r *Runner) execExternal(ctx context.Context, args []string) error {
	path, err := r.Path.Lookup(args[0], r.Vars)
	if err != nil {
		r.setStatus(127)
		fmt.Fprintf(r.Stderr, "den: %s: command not found\n", args[0])
		return nil
	}
	return r.runExternalProcess(ctx, path, args)
}

// applyRedirects opens each redirection target and swaps it onto the
// Runner's Stdin/Stdout/Stderr, returning a restore func. There is no
// numbered-fd table: a target can only become one of those three streams.
func (r *Runner) applyRedirects(redirs []*syntax.Redirect) (func(), error) {
	if len(redirs) == 0 {
		return func() {}, nil
	}
	var closers []io.Closer
	oldIn, oldOut, oldErr := r.Stdin, r.Stdout, r.Stderr
	restore := func() {
		for _, c := range closers {
			c.Close()
		}
		r.Stdin, r.Stdout, r.Stderr = oldIn, oldOut, oldErr
	}
	cfg := r.expandConfig(context.Background())
	for _, rd := range redirs {
		fd := defaultFD(rd.Op)
		if rd.N != nil {
			if lit, ok := rd.N.Lit(); ok {
				if n, err := strconv.Atoi(lit); err == nil {
					fd = n
				}
			}
		}
		if err := r.applyOneRedirect(cfg, rd, fd, &closers); err != nil {
			restore()
			return nil, err
		}
	}
	return restore, nil
}

func defaultFD(op syntax.RedirOp) int {
	if op == syntax.RedirLess || op == syntax.RedirHeredoc || op == syntax.RedirHeredocDash || op == syntax.RedirHereStr {
		return 0
	}
	return 1
}

func (r *Runner) applyOneRedirect(cfg *expand.Config, rd *syntax.Redirect, fd int, closers *[]io.Closer) error {
	switch rd.Op {
	case syntax.RedirHeredoc, syntax.RedirHeredocDash, syntax.RedirHereStr:
		s, err := expand.Literal(cfg, rd.Hdoc)
		if err != nil {
			return err
		}
		r.Stdin = strings.NewReader(s)
		return nil
	}
	target, err := expand.Literal(cfg, rd.Word)
	if err != nil {
		return err
	}
	switch rd.Op {
	case syntax.RedirLess:
		f, err := os.Open(target)
		if err != nil {
			return err
		}
		*closers = append(*closers, f)
		r.Stdin = f
	case syntax.RedirGreat, syntax.RedirClobber:
		f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		*closers = append(*closers, f)
		assignStream(r, fd, f)
	case syntax.RedirDblGreat:
		f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			return err
		}
		*closers = append(*closers, f)
		assignStream(r, fd, f)
	case syntax.RedirRdWr:
		f, err := os.OpenFile(target, os.O_RDWR|os.O_CREATE, 0644)
		if err != nil {
			return err
		}
		*closers = append(*closers, f)
		assignStream(r, fd, f)
	case syntax.RedirGreatAnd, syntax.RedirLessAnd:
		if target == "-" {
			return nil
		}
		n, err := strconv.Atoi(target)
		if err != nil {
			return nil
		}
		src := streamFor(r, n)
		assignStream(r, fd, src)
	}
	return nil
}

func assignStream(r *Runner, fd int, v interface{}) {
	switch fd {
	case 0:
		if rd, ok := v.(io.Reader); ok {
			r.Stdin = rd
		}
	case 1:
		if w, ok := v.(io.Writer); ok {
			r.Stdout = w
		}
	case 2:
		if w, ok := v.(io.Writer); ok {
			r.Stderr = w
		}
	}
}

func streamFor(r *Runner, fd int) interface{} {
	switch fd {
	case 0:
		return r.Stdin
	case 1:
		return r.Stdout
	case 2:
		return r.Stderr
	}
	return nil
}
