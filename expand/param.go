package expand

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/home-lang/den/syntax"
)

// paramFields resolves a ParamExp to its field list: most forms produce
// exactly one field, but unquoted "$@", "${arr[@]}" and "${!prefix@}"
// naturally produce one field per element.
func (cfg *Config) paramFields(pe *syntax.ParamExp) ([]string, error) {
	if pe.Names {
		prefix := pe.Param
		var names []string
		cfg.Env.Each(func(name string, v expandVariable) bool {
			if strings.HasPrefix(name, prefix) {
				names = append(names, name)
			}
			return true
		})
		sort.Strings(names)
		return names, nil
	}

	name := pe.Param
	if pe.Excl {
		indirect := cfg.lookupScalar(name)
		name = indirect
	}

	base, err := cfg.paramBase(pe, name)
	if err != nil {
		return nil, err
	}

	if pe.Length {
		if len(base) == 1 {
			return []string{strconv.Itoa(len(base[0]))}, nil
		}
		return []string{strconv.Itoa(len(base))}, nil
	}

	if pe.Slice != nil {
		return cfg.applySlice(pe, base)
	}

	if pe.Op != syntax.ExpNone {
		return cfg.applyOp(pe, base)
	}

	return base, nil
}

// expandVariable is a local alias so paramFields doesn't need to import the
// Variable type under a different name; kept for readability only.
type expandVariable = Variable

// paramBase resolves the raw, un-sliced/un-transformed value(s) of a
// parameter: a special parameter ($@, $*, $#, positional, $?, ...), an
// array with an index/@/*, or a plain scalar.
func (cfg *Config) paramBase(pe *syntax.ParamExp, name string) ([]string, error) {
	switch name {
	case "@", "*":
		return append([]string{}, cfg.Params...), nil
	case "#":
		return []string{strconv.Itoa(len(cfg.Params))}, nil
	case "0":
		return []string{cfg.Name0}, nil
	}
	if n, err := strconv.Atoi(name); err == nil && n >= 1 {
		if n-1 < len(cfg.Params) {
			return []string{cfg.Params[n-1]}, nil
		}
		return []string{""}, nil
	}

	v := cfg.Env.Get(name)
	_, v = v.Resolve(cfg.Env)

	if pe.Index != nil {
		idxLit, _ := pe.Index.Lit()
		if idxLit == "@" || idxLit == "*" {
			switch v.Kind {
			case Indexed:
				return append([]string{}, v.List...), nil
			case Associative:
				var keys []string
				for k := range v.Map {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				var vals []string
				for _, k := range keys {
					vals = append(vals, v.Map[k])
				}
				return vals, nil
			default:
				if v.IsSet() {
					return []string{v.String()}, nil
				}
				return nil, nil
			}
		}
		idxStr, err := Literal(cfg, pe.Index)
		if err != nil {
			return nil, err
		}
		switch v.Kind {
		case Indexed:
			n, err := Arithmetic(cfg, idxStr)
			if err != nil {
				return nil, err
			}
			if int(n) >= 0 && int(n) < len(v.List) {
				return []string{v.List[n]}, nil
			}
			return []string{""}, nil
		case Associative:
			return []string{v.Map[idxStr]}, nil
		default:
			return []string{v.String()}, nil
		}
	}

	if !v.IsSet() {
		if cfg.NoUnset {
			return nil, &UnsetParameterError{Param: name}
		}
		return []string{""}, nil
	}
	switch v.Kind {
	case Indexed:
		if len(v.List) > 0 {
			return []string{v.List[0]}, nil
		}
		return []string{""}, nil
	case Associative:
		return []string{""}, nil
	default:
		return []string{v.String()}, nil
	}
}

func (cfg *Config) lookupScalar(name string) string {
	v := cfg.Env.Get(name)
	_, v = v.Resolve(cfg.Env)
	return v.String()
}

func (cfg *Config) applySlice(pe *syntax.ParamExp, base []string) ([]string, error) {
	offStr, err := Literal(cfg, pe.Slice.Offset)
	if err != nil {
		return nil, err
	}
	off, err := Arithmetic(cfg, offStr)
	if err != nil {
		return nil, err
	}

	sliceOne := func(s string) string {
		r := []rune(s)
		start := int(off)
		if start < 0 {
			start += len(r)
		}
		if start < 0 {
			start = 0
		}
		if start > len(r) {
			start = len(r)
		}
		end := len(r)
		if pe.Slice.Length != nil {
			lenStr, err := Literal(cfg, pe.Slice.Length)
			if err == nil {
				if n, err := Arithmetic(cfg, lenStr); err == nil {
					if n < 0 {
						end = len(r) + int(n)
					} else {
						end = start + int(n)
					}
				}
			}
		}
		if end > len(r) {
			end = len(r)
		}
		if end < start {
			end = start
		}
		return string(r[start:end])
	}

	if len(base) == 1 {
		return []string{sliceOne(base[0])}, nil
	}
	// Array slice: offset/length address elements, not characters.
	start := int(off)
	if start < 0 {
		start += len(base)
	}
	if start < 0 {
		start = 0
	}
	end := len(base)
	if pe.Slice.Length != nil {
		lenStr, _ := Literal(cfg, pe.Slice.Length)
		if n, err := Arithmetic(cfg, lenStr); err == nil {
			end = start + int(n)
		}
	}
	if start > len(base) {
		start = len(base)
	}
	if end > len(base) {
		end = len(base)
	}
	if end < start {
		end = start
	}
	return append([]string{}, base[start:end]...), nil
}

func (cfg *Config) applyOp(pe *syntax.ParamExp, base []string) ([]string, error) {
	empty := len(base) == 0 || (len(base) == 1 && base[0] == "")
	switch pe.Op {
	case syntax.ExpColMinus, syntax.ExpMinus:
		useDefault := !present(pe, base) || (pe.Op == syntax.ExpColMinus && empty)
		if useDefault {
			s, err := Literal(cfg, pe.Arg)
			if err != nil {
				return nil, err
			}
			return []string{s}, nil
		}
		return base, nil
	case syntax.ExpColAssign, syntax.ExpAssign:
		useDefault := !present(pe, base) || (pe.Op == syntax.ExpColAssign && empty)
		if useDefault {
			s, err := Literal(cfg, pe.Arg)
			if err != nil {
				return nil, err
			}
			if err := cfg.Env.Set(pe.Param, Variable{Set: true, Kind: String, Str: s}); err != nil {
				return nil, err
			}
			return []string{s}, nil
		}
		return base, nil
	case syntax.ExpColQuest, syntax.ExpQuest:
		useErr := !present(pe, base) || (pe.Op == syntax.ExpColQuest && empty)
		if useErr {
			msg, _ := Literal(cfg, pe.Arg)
			if msg == "" {
				msg = "parameter null or not set"
			}
			return nil, fmt.Errorf("%s: %s", pe.Param, msg)
		}
		return base, nil
	case syntax.ExpColPlus, syntax.ExpPlus:
		useAlt := present(pe, base) && !(pe.Op == syntax.ExpColPlus && empty)
		if useAlt {
			s, err := Literal(cfg, pe.Arg)
			if err != nil {
				return nil, err
			}
			return []string{s}, nil
		}
		return []string{""}, nil
	case syntax.ExpRemSmallPrefix, syntax.ExpRemLargePrefix,
		syntax.ExpRemSmallSuffix, syntax.ExpRemLargeSuffix:
		pat, err := Pattern(cfg, pe.Arg)
		if err != nil {
			return nil, err
		}
		out := make([]string, len(base))
		for i, s := range base {
			out[i] = trimPattern(s, pat, pe.Op)
		}
		return out, nil
	case syntax.ExpReplaceOnce, syntax.ExpReplaceAll:
		pat, err := Pattern(cfg, pe.Orig)
		if err != nil {
			return nil, err
		}
		repl, err := Literal(cfg, pe.Arg)
		if err != nil {
			return nil, err
		}
		out := make([]string, len(base))
		for i, s := range base {
			out[i] = replacePattern(s, pat, repl, pe.Op == syntax.ExpReplaceAll)
		}
		return out, nil
	case syntax.ExpUpperFirst, syntax.ExpUpperAll, syntax.ExpLowerFirst, syntax.ExpLowerAll:
		out := make([]string, len(base))
		for i, s := range base {
			out[i] = caseTransform(s, pe.Op)
		}
		return out, nil
	case syntax.ExpOther:
		letter, _ := Literal(cfg, pe.Arg)
		out := make([]string, len(base))
		for i, s := range base {
			out[i] = otherTransform(s, letter)
		}
		return out, nil
	}
	return base, nil
}

func present(pe *syntax.ParamExp, base []string) bool {
	return len(base) > 0
}

func caseTransform(s string, op syntax.ParExpOp) string {
	switch op {
	case syntax.ExpUpperAll:
		return strings.ToUpper(s)
	case syntax.ExpLowerAll:
		return strings.ToLower(s)
	case syntax.ExpUpperFirst:
		if s == "" {
			return s
		}
		return strings.ToUpper(s[:1]) + s[1:]
	case syntax.ExpLowerFirst:
		if s == "" {
			return s
		}
		return strings.ToLower(s[:1]) + s[1:]
	}
	return s
}

func otherTransform(s, letter string) string {
	switch letter {
	case "Q":
		return shellQuote(s)
	case "E":
		return strings.NewReplacer(`\n`, "\n", `\t`, "\t", `\\`, `\`).Replace(s)
	case "U":
		return strings.ToUpper(s)
	case "L":
		return strings.ToLower(s)
	}
	return s
}

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
