package shell

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/home-lang/den/interp"
)

func TestStartupFilesConfigPathOverridesAll(t *testing.T) {
	c := qt.New(t)
	c.Assert(StartupFiles(true, true, "/custom/rc"), qt.DeepEquals, []string{"/custom/rc"})
}

func TestStartupFilesNonInteractiveIsEmpty(t *testing.T) {
	c := qt.New(t)
	c.Assert(StartupFiles(false, false, ""), qt.HasLen, 0)
}

func TestStartupFilesLoginOrder(t *testing.T) {
	c := qt.New(t)
	home, err := os.UserHomeDir()
	c.Assert(err, qt.IsNil)
	got := StartupFiles(true, true, "")
	c.Assert(got, qt.DeepEquals, []string{
		"/etc/profile",
		filepath.Join(home, ".den_profile"),
		filepath.Join(home, ".denrc"),
	})
}

func TestStartupFilesNonLoginInteractive(t *testing.T) {
	c := qt.New(t)
	home, err := os.UserHomeDir()
	c.Assert(err, qt.IsNil)
	got := StartupFiles(false, true, "")
	c.Assert(got, qt.DeepEquals, []string{filepath.Join(home, ".denrc")})
}

func TestLoadStartupSkipsMissingFiles(t *testing.T) {
	c := qt.New(t)
	r, err := interp.New()
	c.Assert(err, qt.IsNil)
	err = LoadStartup(context.Background(), r, true, true, filepath.Join(t.TempDir(), "nope"))
	c.Assert(err, qt.IsNil)
}

func TestLoadStartupRunsConfigFile(t *testing.T) {
	c := qt.New(t)
	out, err := os.CreateTemp(t.TempDir(), "out")
	c.Assert(err, qt.IsNil)
	defer out.Close()

	r, err := interp.New(interp.WithStdout(out))
	c.Assert(err, qt.IsNil)

	dir := t.TempDir()
	rc := filepath.Join(dir, "rc")
	c.Assert(os.WriteFile(rc, []byte("echo from-rc\n"), 0o644), qt.IsNil)

	c.Assert(LoadStartup(context.Background(), r, false, false, rc), qt.IsNil)

	data, err := os.ReadFile(out.Name())
	c.Assert(err, qt.IsNil)
	c.Assert(string(data), qt.Equals, "from-rc\n")
}

func TestLoadStartupPropagatesParseError(t *testing.T) {
	c := qt.New(t)
	r, err := interp.New()
	c.Assert(err, qt.IsNil)
	dir := t.TempDir()
	rc := filepath.Join(dir, "rc")
	c.Assert(os.WriteFile(rc, []byte("case $x esac\n"), 0o644), qt.IsNil)
	err = LoadStartup(context.Background(), r, false, false, rc)
	c.Assert(err, qt.Not(qt.IsNil))
}
