package interp

import "sort"

// AliasTable holds shell aliases. execName bounds alias-expansion depth via
// maxAliasDepth rather than detecting cycles structurally, which handles
// both direct and indirect self-reference uniformly.
type AliasTable struct {
	m map[string]string
}

func NewAliasTable() *AliasTable { return &AliasTable{m: map[string]string{}} }

func (t *AliasTable) Get(name string) (string, bool) {
	v, ok := t.m[name]
	return v, ok
}

func (t *AliasTable) Set(name, expansion string) { t.m[name] = expansion }

func (t *AliasTable) Unset(name string) { delete(t.m, name) }

// Names returns every defined alias name, sorted, for "alias" with no args.
func (t *AliasTable) Names() []string {
	var names []string
	for n := range t.m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// sub returns a copy-on-write snapshot for subshells: the child starts with
// every alias the parent currently has, but its Set/Unset calls never write
// back to the parent's table.
func (t *AliasTable) sub() *AliasTable {
	cp := NewAliasTable()
	for k, v := range t.m {
		cp.m[k] = v
	}
	return cp
}
