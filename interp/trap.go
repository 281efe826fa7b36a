package interp

import "github.com/home-lang/den/syntax"

// TrapTable maps a trap specifier ("EXIT", "ERR", "DEBUG", or a signal name
// like "INT") to the parsed statement that runs when it fires.
type TrapTable struct {
	m map[string]*syntax.Stmt
}

func NewTrapTable() *TrapTable { return &TrapTable{m: map[string]*syntax.Stmt{}} }

func (t *TrapTable) Set(spec string, stmt *syntax.Stmt) { t.m[spec] = stmt }

func (t *TrapTable) Clear(spec string) { delete(t.m, spec) }

func (t *TrapTable) Get(spec string) (*syntax.Stmt, bool) {
	s, ok := t.m[spec]
	return s, ok
}

// Specs returns every trap specifier currently registered, for "trap -p".
func (t *TrapTable) Specs() []string {
	var out []string
	for k := range t.m {
		out = append(out, k)
	}
	return out
}

// sub returns a copy-on-write snapshot for subshells: the child inherits the
// parent's traps but registering or clearing one in the child never mutates
// the parent's table.
func (t *TrapTable) sub() *TrapTable {
	cp := NewTrapTable()
	for k, v := range t.m {
		cp.m[k] = v
	}
	return cp
}
