// Package expand implements den's expansion phase: tilde, parameter,
// command substitution, arithmetic, brace, word-splitting and pathname
// expansion, following the structure of mvdan.cc/sh's expand package.
package expand

import (
	"slices"
	"strings"
)

// ValueKind describes which kind of value a Variable holds.
type ValueKind uint8

const (
	Unknown ValueKind = iota
	String
	NameRef
	Indexed
	Associative
)

// Variable describes a shell variable and its attributes.
type Variable struct {
	Set      bool
	Local    bool
	Exported bool
	ReadOnly bool
	Integer  bool
	CaseForce byte // 0, 'u' (uppercase on assign), 'l' (lowercase on assign)

	Kind ValueKind

	Str string
	List []string
	Map  map[string]string
}

// IsSet reports whether the variable has been assigned a value.
func (v Variable) IsSet() bool { return v.Set }

// Declared reports whether the variable has been declared in any way,
// even if never assigned (e.g. "declare -a foo" or "export foo").
func (v Variable) Declared() bool {
	return v.Set || v.Local || v.Exported || v.ReadOnly || v.Kind != Unknown
}

// String renders the variable's scalar value: Str for String/NameRef kinds,
// element 0 for Indexed, and "" for Associative (which has no natural order).
func (v Variable) String() string {
	switch v.Kind {
	case String, NameRef:
		return v.Str
	case Indexed:
		if len(v.List) > 0 {
			return v.List[0]
		}
	}
	return ""
}

const maxNameRefDepth = 100

// Resolve follows nameref indirection until it reaches a non-nameref
// variable or the depth bound is hit, returning the last followed name.
func (v Variable) Resolve(env Environ) (string, Variable) {
	name := ""
	for i := 0; i < maxNameRefDepth; i++ {
		if v.Kind != NameRef {
			return name, v
		}
		name = v.Str
		v = env.Get(name)
	}
	return name, Variable{}
}

// Environ is the read side of a shell's variable environment.
type Environ interface {
	Get(name string) Variable
	Each(func(name string, vr Variable) bool)
}

// WriteEnviron additionally allows setting and unsetting variables.
type WriteEnviron interface {
	Environ
	Set(name string, vr Variable) error
}

// ListEnviron builds a read-only Environ from "name=value" pairs, as used to
// seed a Runner from os.Environ(). All variables are marked exported.
func ListEnviron(pairs ...string) Environ {
	m := map[string]string{}
	order := make([]string, 0, len(pairs))
	for _, kv := range pairs {
		name, val, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		if _, dup := m[name]; !dup {
			order = append(order, name)
		}
		m[name] = val
	}
	slices.Sort(order)
	return listEnviron{m: m, order: order}
}

type listEnviron struct {
	m     map[string]string
	order []string
}

func (l listEnviron) Get(name string) Variable {
	v, ok := l.m[name]
	if !ok {
		return Variable{}
	}
	return Variable{Set: true, Exported: true, Kind: String, Str: v}
}

func (l listEnviron) Each(fn func(name string, vr Variable) bool) {
	for _, name := range l.order {
		if !fn(name, l.Get(name)) {
			return
		}
	}
}
