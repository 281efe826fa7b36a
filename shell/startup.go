// Package shell implements den's script runner and interactive-session
// surface: startup-file load order, prompt rendering, and running a
// *syntax.File end to end through an interp.Runner.
package shell

import (
	"context"
	"os"
	"path/filepath"

	"github.com/home-lang/den/interp"
	"github.com/home-lang/den/syntax"
)

// StartupFiles returns the ordered list of optional startup scripts to
// source for the given session kind, per den's login/interactive/
// non-interactive rules. configPath, when non-empty, replaces the default
// list entirely (the --config flag).
func StartupFiles(login, interactive bool, configPath string) []string {
	if configPath != "" {
		return []string{configPath}
	}
	if !interactive {
		return nil
	}
	home, _ := os.UserHomeDir()
	if login {
		return []string{
			"/etc/profile",
			filepath.Join(home, ".den_profile"),
			filepath.Join(home, ".denrc"),
		}
	}
	return []string{filepath.Join(home, ".denrc")}
}

// LoadStartup sources every existing file in StartupFiles's result,
// ignoring files that don't exist (they are optional) but surfacing a
// parse or runtime error from one that does.
func LoadStartup(ctx context.Context, r *interp.Runner, login, interactive bool, configPath string) error {
	for _, path := range StartupFiles(login, interactive, configPath) {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}
		f, err := syntax.Parse(data, path)
		if err != nil {
			return err
		}
		if err := r.Run(ctx, f); err != nil {
			if _, isExit := interp.IsExitStatus(err); !isExit {
				return err
			}
		}
	}
	return nil
}
