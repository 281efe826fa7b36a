package interp

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/home-lang/den/expand"
)

func newTestRunner(c *qt.C) (*Runner, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	r, err := New(WithStdout(&out), WithStderr(&errOut))
	c.Assert(err, qt.IsNil)
	return r, &out, &errOut
}

func TestBiTrueFalse(t *testing.T) {
	c := qt.New(t)
	r, _, _ := newTestRunner(c)
	c.Assert(biTrue(context.Background(), r, []string{":"}), qt.IsNil)
	c.Assert(r.LastStatus(), qt.Equals, uint8(0))
	c.Assert(biFalse(context.Background(), r, []string{"false"}), qt.IsNil)
	c.Assert(r.LastStatus(), qt.Equals, uint8(1))
}

func TestBiEchoPlain(t *testing.T) {
	c := qt.New(t)
	r, out, _ := newTestRunner(c)
	c.Assert(biEcho(context.Background(), r, []string{"echo", "hello", "world"}), qt.IsNil)
	c.Assert(out.String(), qt.Equals, "hello world\n")
}

func TestBiEchoNoNewline(t *testing.T) {
	c := qt.New(t)
	r, out, _ := newTestRunner(c)
	c.Assert(biEcho(context.Background(), r, []string{"echo", "-n", "hi"}), qt.IsNil)
	c.Assert(out.String(), qt.Equals, "hi")
}

func TestBiEchoEscapeInterpretation(t *testing.T) {
	c := qt.New(t)
	r, out, _ := newTestRunner(c)
	c.Assert(biEcho(context.Background(), r, []string{"echo", "-e", `a\tb`}), qt.IsNil)
	c.Assert(out.String(), qt.Equals, "a\tb\n")
}

func TestBiExportAndList(t *testing.T) {
	c := qt.New(t)
	r, out, _ := newTestRunner(c)
	c.Assert(biExport(context.Background(), r, []string{"export", "FOO=bar"}), qt.IsNil)
	c.Assert(r.Vars.Get("FOO").String(), qt.Equals, "bar")
	c.Assert(r.Vars.Get("FOO").Exported, qt.IsTrue)

	out.Reset()
	c.Assert(biExport(context.Background(), r, []string{"export"}), qt.IsNil)
	c.Assert(out.String(), qt.Contains, "export FOO=bar\n")
}

func TestBiUnset(t *testing.T) {
	c := qt.New(t)
	r, _, _ := newTestRunner(c)
	r.Vars.Set("FOO", expand.Variable{Set: true, Kind: expand.String, Str: "bar"})
	c.Assert(biUnset(context.Background(), r, []string{"unset", "FOO"}), qt.IsNil)
	c.Assert(r.Vars.Get("FOO").IsSet(), qt.IsFalse)
}

func TestBiShiftAdvancesParams(t *testing.T) {
	c := qt.New(t)
	r, _, _ := newTestRunner(c)
	r.params = []string{"a", "b", "c"}
	c.Assert(biShift(context.Background(), r, []string{"shift"}), qt.IsNil)
	c.Assert(r.params, qt.DeepEquals, []string{"b", "c"})
}

func TestBiShiftOutOfRange(t *testing.T) {
	c := qt.New(t)
	r, _, _ := newTestRunner(c)
	r.params = []string{"a"}
	err := biShift(context.Background(), r, []string{"shift", "5"})
	c.Assert(err, qt.ErrorMatches, "shift: shift count out of range")
}

func TestBiSetPositionalParams(t *testing.T) {
	c := qt.New(t)
	r, _, _ := newTestRunner(c)
	c.Assert(biSet(context.Background(), r, []string{"set", "--", "a", "b"}), qt.IsNil)
	c.Assert(r.params, qt.DeepEquals, []string{"a", "b"})
}

func TestBiSetOptionLetter(t *testing.T) {
	c := qt.New(t)
	r, _, _ := newTestRunner(c)
	c.Assert(biSet(context.Background(), r, []string{"set", "-e"}), qt.IsNil)
	c.Assert(r.Opts.ErrExit, qt.IsTrue)
}

func TestBiCdAndPwd(t *testing.T) {
	c := qt.New(t)
	r, out, _ := newTestRunner(c)
	dir := t.TempDir()
	c.Assert(biCd(context.Background(), r, []string{"cd", dir}), qt.IsNil)
	c.Assert(r.Dir, qt.Equals, dir)
	c.Assert(biPwd(context.Background(), r, []string{"pwd"}), qt.IsNil)
	c.Assert(out.String(), qt.Equals, dir+"\n")
}

func TestBiCdNoSuchDir(t *testing.T) {
	c := qt.New(t)
	r, _, _ := newTestRunner(c)
	err := biCd(context.Background(), r, []string{"cd", filepath.Join(t.TempDir(), "nope")})
	c.Assert(err, qt.Not(qt.IsNil))
}

func TestBiTypeBuiltin(t *testing.T) {
	c := qt.New(t)
	r, out, _ := newTestRunner(c)
	c.Assert(biType(context.Background(), r, []string{"type", "cd"}), qt.IsNil)
	c.Assert(out.String(), qt.Equals, "cd is a shell builtin\n")
}

func TestBiTypeKeyword(t *testing.T) {
	c := qt.New(t)
	r, out, _ := newTestRunner(c)
	c.Assert(biType(context.Background(), r, []string{"type", "if"}), qt.IsNil)
	c.Assert(out.String(), qt.Equals, "if is a shell keyword\n")
}

func TestBiTypeNotFound(t *testing.T) {
	c := qt.New(t)
	r, _, errOut := newTestRunner(c)
	c.Assert(biType(context.Background(), r, []string{"type", "definitely-not-a-command-xyz"}), qt.IsNil)
	c.Assert(r.LastStatus(), qt.Equals, uint8(1))
	c.Assert(errOut.String(), qt.Contains, "not found")
}

func TestBiAliasSetAndList(t *testing.T) {
	c := qt.New(t)
	r, out, _ := newTestRunner(c)
	c.Assert(biAlias(context.Background(), r, []string{"alias", "ll=ls -l"}), qt.IsNil)
	v, ok := r.Aliases.Get("ll")
	c.Assert(ok, qt.IsTrue)
	c.Assert(v, qt.Equals, "ls -l")

	out.Reset()
	c.Assert(biAlias(context.Background(), r, []string{"alias"}), qt.IsNil)
	c.Assert(out.String(), qt.Contains, "alias ll=")
}

func TestBiUnaliasAll(t *testing.T) {
	c := qt.New(t)
	r, _, _ := newTestRunner(c)
	r.Aliases.Set("ll", "ls -l")
	c.Assert(biUnalias(context.Background(), r, []string{"unalias", "-a"}), qt.IsNil)
	c.Assert(r.Aliases.Names(), qt.HasLen, 0)
}

func TestBiShoptSetAndQuery(t *testing.T) {
	c := qt.New(t)
	r, _, _ := newTestRunner(c)
	c.Assert(biShopt(context.Background(), r, []string{"shopt", "-s", "globstar"}), qt.IsNil)
	c.Assert(r.Opts.GlobStar, qt.IsTrue)
}

func TestBiGetoptsBasic(t *testing.T) {
	c := qt.New(t)
	r, _, _ := newTestRunner(c)
	r.params = []string{"-a", "val", "rest"}
	c.Assert(biGetopts(context.Background(), r, []string{"getopts", "a:", "opt"}), qt.IsNil)
	c.Assert(r.Vars.Get("opt").String(), qt.Equals, "a")
	c.Assert(r.Vars.Get("OPTARG").String(), qt.Equals, "val")
	c.Assert(r.Vars.Get("OPTIND").String(), qt.Equals, "3")
}

func TestBiGetoptsUnknownOption(t *testing.T) {
	c := qt.New(t)
	r, _, _ := newTestRunner(c)
	r.params = []string{"-z"}
	c.Assert(biGetopts(context.Background(), r, []string{"getopts", "a:", "opt"}), qt.IsNil)
	c.Assert(r.Vars.Get("opt").String(), qt.Equals, "?")
}

func TestBiGetoptsDone(t *testing.T) {
	c := qt.New(t)
	r, _, _ := newTestRunner(c)
	r.params = []string{}
	c.Assert(biGetopts(context.Background(), r, []string{"getopts", "a:", "opt"}), qt.IsNil)
	c.Assert(r.LastStatus(), qt.Equals, uint8(1))
}

func TestBiDeclareAssignsAndExports(t *testing.T) {
	c := qt.New(t)
	r, _, _ := newTestRunner(c)
	c.Assert(biDeclare(context.Background(), r, []string{"declare", "-x", "FOO=bar"}), qt.IsNil)
	v := r.Vars.Get("FOO")
	c.Assert(v.String(), qt.Equals, "bar")
	c.Assert(v.Exported, qt.IsTrue)
}

func TestBiLocalInsideFrame(t *testing.T) {
	c := qt.New(t)
	r, _, _ := newTestRunner(c)
	r.Vars.pushFuncFrame()
	c.Assert(biLocal(context.Background(), r, []string{"local", "X=1"}), qt.IsNil)
	c.Assert(r.Vars.Get("X").String(), qt.Equals, "1")
	r.Vars.popFuncFrame()
	c.Assert(r.Vars.Get("X").IsSet(), qt.IsFalse)
}

func TestBiUmaskDisplaysCurrent(t *testing.T) {
	c := qt.New(t)
	r, out, _ := newTestRunner(c)
	c.Assert(biUmask(context.Background(), r, []string{"umask"}), qt.IsNil)
	c.Assert(out.String(), qt.Matches, "[0-7]{4}\n")
}

func TestBiTestAndBracket(t *testing.T) {
	c := qt.New(t)
	r, _, _ := newTestRunner(c)
	c.Assert(biTest(context.Background(), r, []string{"test", "-n", "x"}), qt.IsNil)
	c.Assert(r.LastStatus(), qt.Equals, uint8(0))

	c.Assert(biBracket(context.Background(), r, []string{"[", "-n", "x", "]"}), qt.IsNil)
	c.Assert(r.LastStatus(), qt.Equals, uint8(0))
}

func TestBiBracketMissingClosing(t *testing.T) {
	c := qt.New(t)
	r, _, _ := newTestRunner(c)
	err := biBracket(context.Background(), r, []string{"[", "-n", "x"})
	c.Assert(err, qt.ErrorMatches, "\\[: missing closing \\]")
}

func TestBiSourceRunsFile(t *testing.T) {
	c := qt.New(t)
	r, out, _ := newTestRunner(c)
	dir := t.TempDir()
	file := filepath.Join(dir, "script.sh")
	c.Assert(os.WriteFile(file, []byte("echo from-source\n"), 0o644), qt.IsNil)
	c.Assert(biSource(context.Background(), r, []string{".", file}), qt.IsNil)
	c.Assert(out.String(), qt.Equals, "from-source\n")
}

func TestBiHelpListsBuiltins(t *testing.T) {
	c := qt.New(t)
	r, out, _ := newTestRunner(c)
	c.Assert(biHelp(context.Background(), r, []string{"help"}), qt.IsNil)
	c.Assert(out.String(), qt.Contains, "cd\n")
}
