package syntax

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestIsIncomplete(t *testing.T) {
	c := qt.New(t)

	incomplete := []string{
		`echo "unterminated`,
		`echo 'unterminated`,
		"cat <<EOF\nbody without delimiter\n",
		`if true; then echo hi`,
		`echo $(ls`,
	}
	for _, src := range incomplete {
		_, err := Parse([]byte(src), "test")
		c.Assert(err, qt.Not(qt.IsNil), qt.Commentf("src %q", src))
		c.Assert(IsIncomplete(err), qt.IsTrue, qt.Commentf("src %q: err = %v", src, err))
	}
}

func TestIsIncompleteFalseForRealErrors(t *testing.T) {
	c := qt.New(t)
	_, err := Parse([]byte("case $x esac\n"), "test")
	c.Assert(err, qt.Not(qt.IsNil))
	c.Assert(IsIncomplete(err), qt.IsFalse)
}

func TestWordSingleQuoted(t *testing.T) {
	c := qt.New(t)
	st := parseOne(t, "echo 'a b c'\n")
	ce := st.Cmd.(*CallExpr)
	c.Assert(len(ce.Args), qt.Equals, 2)
	q, ok := ce.Args[1].Parts[0].(*SglQuoted)
	c.Assert(ok, qt.IsTrue)
	c.Assert(q.Value, qt.Equals, "a b c")
}

func TestWordDoubleQuotedWithParamExp(t *testing.T) {
	c := qt.New(t)
	st := parseOne(t, `echo "hello $name"` + "\n")
	ce := st.Cmd.(*CallExpr)
	dq, ok := ce.Args[1].Parts[0].(*DblQuoted)
	c.Assert(ok, qt.IsTrue)
	c.Assert(len(dq.Parts), qt.Equals, 2)
	lit, ok := dq.Parts[0].(*Lit)
	c.Assert(ok, qt.IsTrue)
	c.Assert(lit.Value, qt.Equals, "hello ")
	pe, ok := dq.Parts[1].(*ParamExp)
	c.Assert(ok, qt.IsTrue)
	c.Assert(pe.Param, qt.Equals, "name")
}

func TestWordParamExpBraced(t *testing.T) {
	c := qt.New(t)
	st := parseOne(t, "echo ${name:-default}\n")
	ce := st.Cmd.(*CallExpr)
	pe, ok := ce.Args[1].Parts[0].(*ParamExp)
	c.Assert(ok, qt.IsTrue)
	c.Assert(pe.Param, qt.Equals, "name")
	c.Assert(pe.Op, qt.Equals, ExpColMinus)
	lit, ok := pe.Arg.Lit()
	c.Assert(ok, qt.IsTrue)
	c.Assert(lit, qt.Equals, "default")
}

func TestWordCmdSubst(t *testing.T) {
	c := qt.New(t)
	st := parseOne(t, "echo $(echo hi)\n")
	ce := st.Cmd.(*CallExpr)
	cs, ok := ce.Args[1].Parts[0].(*CmdSubst)
	c.Assert(ok, qt.IsTrue)
	c.Assert(len(cs.Stmts), qt.Equals, 1)
	c.Assert(cs.Backtick, qt.IsFalse)
}

func TestWordBacktickSubst(t *testing.T) {
	c := qt.New(t)
	st := parseOne(t, "echo `echo hi`\n")
	ce := st.Cmd.(*CallExpr)
	cs, ok := ce.Args[1].Parts[0].(*CmdSubst)
	c.Assert(ok, qt.IsTrue)
	c.Assert(cs.Backtick, qt.IsTrue)
}

func TestWordArithExp(t *testing.T) {
	c := qt.New(t)
	st := parseOne(t, "echo $((1+2))\n")
	ce := st.Cmd.(*CallExpr)
	ae, ok := ce.Args[1].Parts[0].(*ArithExp)
	c.Assert(ok, qt.IsTrue)
	c.Assert(ae.Expr, qt.Equals, "1+2")
}

func TestWordTilde(t *testing.T) {
	c := qt.New(t)
	st := parseOne(t, "echo ~/bin\n")
	ce := st.Cmd.(*CallExpr)
	c.Assert(len(ce.Args[1].Parts), qt.Equals, 2)
	first, ok := ce.Args[1].Parts[0].(*Lit)
	c.Assert(ok, qt.IsTrue)
	c.Assert(first.Value, qt.Equals, "~")
	second, ok := ce.Args[1].Parts[1].(*Lit)
	c.Assert(ok, qt.IsTrue)
	c.Assert(second.Value, qt.Equals, "/bin")
}
