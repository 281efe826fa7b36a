package interp

import (
	"context"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestBiPushdAndPopd(t *testing.T) {
	c := qt.New(t)
	r, _, _ := newTestRunner(c)
	start := r.Dir
	dir := t.TempDir()

	c.Assert(biPushd(context.Background(), r, []string{"pushd", dir}), qt.IsNil)
	c.Assert(r.Dir, qt.Equals, dir)
	c.Assert(r.dirStack, qt.DeepEquals, []string{start})

	c.Assert(biPopd(context.Background(), r, []string{"popd"}), qt.IsNil)
	c.Assert(r.Dir, qt.Equals, start)
	c.Assert(r.dirStack, qt.HasLen, 0)
}

func TestBiPopdEmptyStack(t *testing.T) {
	c := qt.New(t)
	r, _, _ := newTestRunner(c)
	err := biPopd(context.Background(), r, []string{"popd"})
	c.Assert(err, qt.ErrorMatches, "popd: directory stack empty")
}

func TestBiPushdNoArgSwapsTop(t *testing.T) {
	c := qt.New(t)
	r, _, _ := newTestRunner(c)
	start := r.Dir
	dir := t.TempDir()
	c.Assert(biPushd(context.Background(), r, []string{"pushd", dir}), qt.IsNil)

	c.Assert(biPushd(context.Background(), r, []string{"pushd"}), qt.IsNil)
	c.Assert(r.Dir, qt.Equals, start)
	c.Assert(r.dirStack, qt.DeepEquals, []string{dir})
}

func TestBiDirsPrintsStack(t *testing.T) {
	c := qt.New(t)
	r, out, _ := newTestRunner(c)
	c.Assert(biDirs(context.Background(), r, []string{"dirs"}), qt.IsNil)
	c.Assert(out.String(), qt.Equals, r.Dir+"\n")
}

func TestReverseStrs(t *testing.T) {
	c := qt.New(t)
	c.Assert(reverseStrs([]string{"a", "b", "c"}), qt.DeepEquals, []string{"c", "b", "a"})
	c.Assert(reverseStrs(nil), qt.HasLen, 0)
}
