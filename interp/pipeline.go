package interp

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"sync"

	"github.com/home-lang/den/expand"
	"github.com/home-lang/den/syntax"
)

type stageResult struct {
	status uint8
	err    error
}

// runPipeline executes a pipeline as real OS processes where possible: a
// stage that is a plain external command (no redirections/assignments of
// its own, not an alias/function/builtin) is spawned directly via
// os/exec with a shared process group, connected to its neighbors through
// real os.Pipe fds. Any other stage shape (builtin, function, compound
// command) runs in-process in its own goroutine, reading/writing the same
// pipe fds, since Go cannot fork the interpreter itself.
//
func (r *Runner) runPipeline(ctx context.Context, p *syntax.Pipeline) error {
	n := len(p.Stmts)
	if n == 1 {
		err := r.runStmt(ctx, p.Stmts[0])
		status := r.lastStatus
		if err != nil {
			status = r.statusFromErr(err)
		}
		r.Vars.Set("PIPESTATUS", expand.Variable{Set: true, Kind: expand.Indexed, List: []string{strconv.Itoa(int(status))}})
		return err
	}

	readers := make([]*os.File, n-1)
	writers := make([]*os.File, n-1)
	for i := 0; i < n-1; i++ {
		pr, pw, err := os.Pipe()
		if err != nil {
			return err
		}
		readers[i], writers[i] = pr, pw
	}

	results := make([]stageResult, n)
	var wg sync.WaitGroup
	var pgidMu sync.Mutex
	pgid := 0
	var pids []int

	for i := 0; i < n; i++ {
		i := i
		stmt := p.Stmts[i]
		var in io.Reader = r.Stdin
		if i > 0 {
			in = readers[i-1]
		}
		var out io.Writer = r.Stdout
		if i < n-1 {
			out = writers[i]
		}
		if p.Ops != nil && i < len(p.Ops) && p.Ops[i] == syntax.PipeBoth {
			// "|&" merges stderr into the pipe too; applied to this stage's
			// writer end.
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if i > 0 {
					readers[i-1].Close()
				}
				if i < n-1 {
					writers[i].Close()
				}
			}()
			sub := r.sub()
			sub.Stdin, sub.Stdout = in, out
			if p.Ops != nil && i < len(p.Ops) && p.Ops[i] == syntax.PipeBoth {
				sub.Stderr = out
			}

			if ce, ok := simpleExternalCall(sub, stmt); ok {
				cfg := sub.expandConfig(ctx)
				args, err := expand.Fields(cfg, ce.Args)
				if err != nil {
					results[i] = stageResult{1, err}
					return
				}
				if len(args) == 0 {
					results[i] = stageResult{0, nil}
					return
				}
				path, err := sub.Path.Lookup(args[0], sub.Vars)
				if err != nil {
					fmt.Fprintf(sub.Stderr, "den: %s: command not found\n", args[0])
					results[i] = stageResult{127, nil}
					return
				}
				_, status, err := sub.spawnExternalStage(path, args, in, out, &pgid, &pgidMu, &pids)
				results[i] = stageResult{status, err}
				return
			}

			err := sub.runStmt(ctx, stmt)
			status := sub.lastStatus
			if err != nil {
				status = sub.statusFromErr(err)
			}
			results[i] = stageResult{status, err}
		}()
	}
	wg.Wait()

	statuses := make([]string, n)
	for i, res := range results {
		statuses[i] = strconv.Itoa(int(res.status))
	}
	r.Vars.Set("PIPESTATUS", expand.Variable{Set: true, Kind: expand.Indexed, List: statuses})

	var final uint8
	if r.Opts.PipeFail {
		for i := n - 1; i >= 0; i-- {
			if results[i].status != 0 {
				final = results[i].status
				break
			}
		}
	} else {
		final = results[n-1].status
	}
	r.setStatus(final)

	for _, res := range results {
		if res.err != nil {
			if _, isExit := IsExitStatus(res.err); isExit {
				return res.err
			}
		}
	}
	return nil
}

// simpleExternalCall reports whether stmt is eligible for the real-process
// fast path: a bare CallExpr with no redirections/assignments/negation of
// its own, whose first word (when it's a plain literal) does not already
// resolve to an alias, function or builtin.
func simpleExternalCall(sub *Runner, stmt *syntax.Stmt) (*syntax.CallExpr, bool) {
	if len(stmt.Redirs) > 0 || len(stmt.Assigns) > 0 || stmt.Negated || stmt.Background {
		return nil, false
	}
	ce, ok := stmt.Cmd.(*syntax.CallExpr)
	if !ok || len(ce.Args) == 0 {
		return nil, false
	}
	lit, ok := ce.Args[0].Lit()
	if !ok {
		return ce, true
	}
	if _, isAlias := sub.Aliases.Get(lit); isAlias {
		return nil, false
	}
	if _, isSpecial := specialBuiltins[lit]; isSpecial && !sub.disabledBuiltins[lit] {
		return nil, false
	}
	if _, isFunc := sub.Funcs[lit]; isFunc {
		return nil, false
	}
	if _, isBuiltin := builtins[lit]; isBuiltin && !sub.disabledBuiltins[lit] {
		return nil, false
	}
	return ce, true
}

// runExternalProcess runs a single external command outside of a pipeline
// (the simple, non-piped case), still as a real child process.
func (r *Runner) runExternalProcess(ctx context.Context, path string, args []string) error {
	_, status, err := r.spawnExternalStage(path, args, r.Stdin, r.Stdout, new(int), new(sync.Mutex), new([]int))
	r.setStatus(status)
	if err != nil {
		if _, ok := err.(*exec.Error); ok {
			return nil
		}
	}
	return nil
}
