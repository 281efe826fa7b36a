package interp

import (
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/home-lang/den/expand"
)

func writeExecutable(c *qt.C, dir, name string) string {
	path := filepath.Join(dir, name)
	c.Assert(os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755), qt.IsNil)
	return path
}

func TestPathHashLookupFindsOnPath(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()
	writeExecutable(c, dir, "mytool")

	h := NewPathHash()
	env := expand.ListEnviron("PATH=" + dir)
	path, err := h.Lookup("mytool", env)
	c.Assert(err, qt.IsNil)
	c.Assert(path, qt.Equals, filepath.Join(dir, "mytool"))
}

func TestPathHashLookupCaches(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()
	writeExecutable(c, dir, "mytool")

	h := NewPathHash()
	env := expand.ListEnviron("PATH=" + dir)
	_, err := h.Lookup("mytool", env)
	c.Assert(err, qt.IsNil)
	c.Assert(h.Entries()["mytool"], qt.Equals, filepath.Join(dir, "mytool"))
}

func TestPathHashLookupNotFound(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()
	h := NewPathHash()
	env := expand.ListEnviron("PATH=" + dir)
	_, err := h.Lookup("nope", env)
	c.Assert(err, qt.ErrorMatches, "nope: not found")
}

func TestPathHashLookupWithSlashBypassesPath(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()
	exe := writeExecutable(c, dir, "mytool")

	h := NewPathHash()
	env := expand.ListEnviron("PATH=/nonexistent")
	path, err := h.Lookup(exe, env)
	c.Assert(err, qt.IsNil)
	c.Assert(path, qt.Equals, exe)
}

func TestPathHashLookupStaleCacheEntryIsRefreshed(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()
	exe := writeExecutable(c, dir, "mytool")

	h := NewPathHash()
	env := expand.ListEnviron("PATH=" + dir)
	_, err := h.Lookup("mytool", env)
	c.Assert(err, qt.IsNil)

	c.Assert(os.Remove(exe), qt.IsNil)
	_, err = h.Lookup("mytool", env)
	c.Assert(err, qt.ErrorMatches, "mytool: not found")
	_, ok := h.Entries()["mytool"]
	c.Assert(ok, qt.IsFalse)
}

func TestPathHashReset(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()
	writeExecutable(c, dir, "mytool")

	h := NewPathHash()
	env := expand.ListEnviron("PATH=" + dir)
	_, err := h.Lookup("mytool", env)
	c.Assert(err, qt.IsNil)
	h.Reset()
	c.Assert(h.Entries(), qt.HasLen, 0)
}
