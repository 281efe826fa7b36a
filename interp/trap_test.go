package interp

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/home-lang/den/syntax"
)

func parseTrapStmt(c *qt.C, src string) *syntax.Stmt {
	f, err := syntax.Parse([]byte(src), "")
	c.Assert(err, qt.IsNil)
	c.Assert(f.Stmts, qt.HasLen, 1)
	return f.Stmts[0]
}

func TestTrapTableSetGet(t *testing.T) {
	c := qt.New(t)
	tbl := NewTrapTable()
	stmt := parseTrapStmt(c, "echo bye\n")
	tbl.Set("EXIT", stmt)
	got, ok := tbl.Get("EXIT")
	c.Assert(ok, qt.IsTrue)
	c.Assert(got, qt.Equals, stmt)
}

func TestTrapTableGetMissing(t *testing.T) {
	c := qt.New(t)
	tbl := NewTrapTable()
	_, ok := tbl.Get("INT")
	c.Assert(ok, qt.IsFalse)
}

func TestTrapTableClear(t *testing.T) {
	c := qt.New(t)
	tbl := NewTrapTable()
	stmt := parseTrapStmt(c, "echo bye\n")
	tbl.Set("EXIT", stmt)
	tbl.Clear("EXIT")
	_, ok := tbl.Get("EXIT")
	c.Assert(ok, qt.IsFalse)
}

func TestTrapTableSpecs(t *testing.T) {
	c := qt.New(t)
	tbl := NewTrapTable()
	stmt := parseTrapStmt(c, "echo bye\n")
	tbl.Set("EXIT", stmt)
	tbl.Set("INT", stmt)
	specs := tbl.Specs()
	c.Assert(specs, qt.HasLen, 2)
}

func TestTrapTableSubIsCopyOnWrite(t *testing.T) {
	c := qt.New(t)
	tbl := NewTrapTable()
	stmt := parseTrapStmt(c, "echo bye\n")
	tbl.Set("EXIT", stmt)

	child := tbl.sub()
	_, ok := child.Get("EXIT")
	c.Assert(ok, qt.IsTrue)

	child.Clear("EXIT")
	_, ok = tbl.Get("EXIT")
	c.Assert(ok, qt.IsTrue)

	other := parseTrapStmt(c, "echo int\n")
	child.Set("INT", other)
	_, ok = tbl.Get("INT")
	c.Assert(ok, qt.IsFalse)
}
