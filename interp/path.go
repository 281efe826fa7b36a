package interp

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/home-lang/den/expand"
)

// PathHash caches name -> resolved executable path lookups along $PATH,
// mirroring bash's command hash table. Only "hash -r" (Reset) clears it; a
// PATH assignment does not, so a cached entry keeps resolving to its old
// directory for as long as that file stays executable.
type PathHash struct {
	m map[string]string
}

func NewPathHash() *PathHash { return &PathHash{m: map[string]string{}} }

func (h *PathHash) Reset() { h.m = map[string]string{} }

// Lookup resolves name to an executable path, consulting (and populating)
// the hash table unless name contains a slash, in which case it is used
// directly.
func (h *PathHash) Lookup(name string, env expand.Environ) (string, error) {
	if strings.ContainsRune(name, '/') {
		if isExecutable(name) {
			return name, nil
		}
		return "", fmt.Errorf("%s: not found", name)
	}
	if p, ok := h.m[name]; ok {
		if isExecutable(p) {
			return p, nil
		}
		delete(h.m, name)
	}
	pathVar := env.Get("PATH")
	dirs := strings.Split(pathVar.String(), ":")
	for _, dir := range dirs {
		if dir == "" {
			dir = "."
		}
		candidate := filepath.Join(dir, name)
		if isExecutable(candidate) {
			h.m[name] = candidate
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%s: not found", name)
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode()&0111 != 0
}

// Entries returns the cached name->path pairs, for "hash" with no args.
func (h *PathHash) Entries() map[string]string { return h.m }
