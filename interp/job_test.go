package interp

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestJobTableNewAssignsIncrementingIDs(t *testing.T) {
	c := qt.New(t)
	tbl := NewJobTable()
	j1 := tbl.New(nil)
	j2 := tbl.New(nil)
	c.Assert(j1.ID, qt.Equals, 1)
	c.Assert(j2.ID, qt.Equals, 2)
}

func TestJobTableGet(t *testing.T) {
	c := qt.New(t)
	tbl := NewJobTable()
	j := tbl.New(nil)
	got, ok := tbl.Get(j.ID)
	c.Assert(ok, qt.IsTrue)
	c.Assert(got, qt.Equals, j)
}

func TestJobTableGetMissing(t *testing.T) {
	c := qt.New(t)
	tbl := NewJobTable()
	_, ok := tbl.Get(99)
	c.Assert(ok, qt.IsFalse)
}

func TestJobTableListSortedByID(t *testing.T) {
	c := qt.New(t)
	tbl := NewJobTable()
	tbl.New(nil)
	tbl.New(nil)
	tbl.New(nil)
	list := tbl.List()
	c.Assert(list, qt.HasLen, 3)
	c.Assert(list[0].ID, qt.Equals, 1)
	c.Assert(list[1].ID, qt.Equals, 2)
	c.Assert(list[2].ID, qt.Equals, 3)
}

func TestJobTableRemove(t *testing.T) {
	c := qt.New(t)
	tbl := NewJobTable()
	j := tbl.New(nil)
	tbl.Remove(j.ID)
	_, ok := tbl.Get(j.ID)
	c.Assert(ok, qt.IsFalse)
}

func TestJobFinishAndState(t *testing.T) {
	c := qt.New(t)
	j := &Job{ID: 1}
	done, status := j.State()
	c.Assert(done, qt.IsFalse)
	c.Assert(status, qt.Equals, uint8(0))

	j.Finish(7)
	done, status = j.State()
	c.Assert(done, qt.IsTrue)
	c.Assert(status, qt.Equals, uint8(7))
}
