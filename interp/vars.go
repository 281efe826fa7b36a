package interp

import (
	"sort"

	"github.com/home-lang/den/expand"
)

// scopeFrame holds the variables declared "local" to one function
// invocation; frames are pushed/popped as functions call into each other.
type scopeFrame struct {
	vars map[string]expand.Variable
}

// Scope implements expand.WriteEnviron with bash-style dynamic scoping: a
// plain assignment updates the nearest frame (global, or the innermost
// function frame that already declared the name via "local"); "local"
// always creates/updates the innermost frame.
type Scope struct {
	global expand.Environ // process environment seed; read-only from here
	base   map[string]expand.Variable
	frames []*scopeFrame
}

// NewScope creates a Scope seeded from the process environment.
func NewScope(base expand.Environ) *Scope {
	s := &Scope{global: base, base: map[string]expand.Variable{}}
	base.Each(func(name string, v expand.Variable) bool {
		s.base[name] = v
		return true
	})
	return s
}

func (s *Scope) pushFuncFrame() { s.frames = append(s.frames, &scopeFrame{vars: map[string]expand.Variable{}}) }

func (s *Scope) popFuncFrame() {
	if len(s.frames) == 0 {
		return
	}
	s.frames = s.frames[:len(s.frames)-1]
}

// sub returns a Scope for subshells holding a snapshot copy of the
// variables rather than sharing storage, so subshell writes do not leak
// back (subshells run in a forked process model in bash).
func (s *Scope) sub() *Scope {
	cp := &Scope{global: s.global, base: map[string]expand.Variable{}}
	for k, v := range s.base {
		cp.base[k] = v
	}
	for _, f := range s.frames {
		nf := &scopeFrame{vars: map[string]expand.Variable{}}
		for k, v := range f.vars {
			nf.vars[k] = v
		}
		cp.frames = append(cp.frames, nf)
	}
	return cp
}

// Get implements expand.Environ, searching innermost frame outward.
func (s *Scope) Get(name string) expand.Variable {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if v, ok := s.frames[i].vars[name]; ok {
			return v
		}
	}
	if v, ok := s.base[name]; ok {
		return v
	}
	return expand.Variable{}
}

// Set implements expand.WriteEnviron: it updates the innermost frame that
// already declares name, or the global scope if no frame does.
func (s *Scope) Set(name string, vb expand.Variable) error {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if _, ok := s.frames[i].vars[name]; ok {
			s.frames[i].vars[name] = vb
			return nil
		}
	}
	s.base[name] = vb
	return nil
}

// SetLocal declares name in the innermost function frame, shadowing any
// outer variable of the same name for the rest of that call. Outside any
// function call it behaves like Set.
func (s *Scope) SetLocal(name string, vb expand.Variable) error {
	if len(s.frames) == 0 {
		return s.Set(name, vb)
	}
	vb.Local = true
	s.frames[len(s.frames)-1].vars[name] = vb
	return nil
}

// Unset removes name from whichever frame currently holds it.
func (s *Scope) Unset(name string) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if _, ok := s.frames[i].vars[name]; ok {
			delete(s.frames[i].vars, name)
			return
		}
	}
	delete(s.base, name)
}

// Each implements expand.Environ, with innermost-frame values taking
// priority over the same name at an outer scope.
func (s *Scope) Each(fn func(name string, vr expand.Variable) bool) {
	seen := map[string]bool{}
	for i := len(s.frames) - 1; i >= 0; i-- {
		for name, v := range s.frames[i].vars {
			if seen[name] {
				continue
			}
			seen[name] = true
			if !fn(name, v) {
				return
			}
		}
	}
	var names []string
	for name := range s.base {
		if !seen[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		if !fn(name, s.base[name]) {
			return
		}
	}
}

// ExportedPairs returns "NAME=value" for every exported variable, in the
// form external processes expect via os/exec's Env field.
func (s *Scope) ExportedPairs() []string {
	var out []string
	s.Each(func(name string, v expand.Variable) bool {
		if v.Exported && v.IsSet() {
			out = append(out, name+"="+v.String())
		}
		return true
	})
	return out
}
