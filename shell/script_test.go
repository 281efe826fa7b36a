package shell

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/home-lang/den/expand"
	"github.com/home-lang/den/interp"
)

func newScriptTestRunner(c *qt.C) (*interp.Runner, *bytes.Buffer) {
	var out bytes.Buffer
	r, err := interp.New(interp.WithStdout(&out), interp.WithStderr(&out))
	c.Assert(err, qt.IsNil)
	return r, &out
}

func TestRunFileExecutesScript(t *testing.T) {
	c := qt.New(t)
	r, out := newScriptTestRunner(c)
	dir := t.TempDir()
	path := filepath.Join(dir, "s.sh")
	c.Assert(os.WriteFile(path, []byte("echo hi $1\n"), 0o644), qt.IsNil)

	code := RunFile(context.Background(), r, path, []string{"there"})
	c.Assert(code, qt.Equals, 0)
	c.Assert(out.String(), qt.Equals, "hi there\n")
}

func TestRunFileMissingFile(t *testing.T) {
	c := qt.New(t)
	r, _ := newScriptTestRunner(c)
	code := RunFile(context.Background(), r, filepath.Join(t.TempDir(), "nope.sh"), nil)
	c.Assert(code, qt.Equals, 1)
}

func TestRunFileExitStatusPropagates(t *testing.T) {
	c := qt.New(t)
	r, _ := newScriptTestRunner(c)
	dir := t.TempDir()
	path := filepath.Join(dir, "s.sh")
	c.Assert(os.WriteFile(path, []byte("exit 7\n"), 0o644), qt.IsNil)
	code := RunFile(context.Background(), r, path, nil)
	c.Assert(code, qt.Equals, 7)
}

func TestRunStringExecutes(t *testing.T) {
	c := qt.New(t)
	r, out := newScriptTestRunner(c)
	code, err := RunString(context.Background(), r, "echo from-c")
	c.Assert(err, qt.IsNil)
	c.Assert(code, qt.Equals, 0)
	c.Assert(out.String(), qt.Equals, "from-c\n")
}

func TestRunStringParseError(t *testing.T) {
	c := qt.New(t)
	r, _ := newScriptTestRunner(c)
	code, err := RunString(context.Background(), r, "case $x esac")
	c.Assert(err, qt.Not(qt.IsNil))
	c.Assert(code, qt.Equals, 2)
}

func TestREPLRunsSingleLineCommand(t *testing.T) {
	c := qt.New(t)
	r, out := newScriptTestRunner(c)
	in := strings.NewReader("echo one\n")
	REPL(context.Background(), r, in, &bytes.Buffer{})
	c.Assert(out.String(), qt.Contains, "one\n")
}

func TestREPLContinuesAcrossUnclosedBlock(t *testing.T) {
	c := qt.New(t)
	r, out := newScriptTestRunner(c)
	in := strings.NewReader("if true; then\necho inside\nfi\n")
	REPL(context.Background(), r, in, &bytes.Buffer{})
	c.Assert(out.String(), qt.Contains, "inside\n")
}

func TestREPLRecordsHistory(t *testing.T) {
	c := qt.New(t)
	r, _ := newScriptTestRunner(c)
	in := strings.NewReader("echo tracked\n")
	REPL(context.Background(), r, in, &bytes.Buffer{})
	c.Assert(r.History.Lines(), qt.DeepEquals, []string{"echo tracked"})
}

func TestPS1DefaultAndOverride(t *testing.T) {
	c := qt.New(t)
	r, err := interp.New()
	c.Assert(err, qt.IsNil)
	c.Assert(ps1(r), qt.Equals, `\u@\h:\w\$ `)

	r.Vars.Set("PS1", expand.Variable{Set: true, Kind: expand.String, Str: "custom> "})
	c.Assert(ps1(r), qt.Equals, "custom> ")
}

func TestPS2DefaultAndOverride(t *testing.T) {
	c := qt.New(t)
	r, err := interp.New()
	c.Assert(err, qt.IsNil)
	c.Assert(ps2(r), qt.Equals, "> ")
}
