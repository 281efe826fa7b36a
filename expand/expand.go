package expand

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/home-lang/den/pattern"
	"github.com/home-lang/den/syntax"
)

// UnsetParameterError is returned when "set -u" is active and a word
// references an unset parameter.
type UnsetParameterError struct {
	Node  syntax.Node
	Param string
}

func (e *UnsetParameterError) Error() string {
	return fmt.Sprintf("%s: unbound variable", e.Param)
}

// Config carries everything the expander needs beyond the AST: the
// variable environment, shell options affecting expansion, and a callback
// to actually run a command substitution's statements (the interp package
// supplies this, since expand must not import interp to avoid a cycle).
type Config struct {
	Env      WriteEnviron
	IFS      string
	NoUnset  bool
	NoGlob   bool
	NullGlob bool
	FailGlob bool
	DotGlob  bool
	GlobStar bool
	NoCaseGlob bool
	ExtGlob  bool
	Dir      string // working directory glob expansion resolves against

	CmdSubst func(cs *syntax.CmdSubst) (string, error)
	ReadDir  func(dir string) ([]string, error) // names only, for globbing

	Params []string // $1, $2, ... for positional parameter expansion
	Name0  string    // $0
}

func (c *Config) ifs() string {
	if c.Env != nil {
		if v := c.Env.Get("IFS"); v.IsSet() {
			return v.String()
		}
	}
	return " \t\n"
}

// Literal expands w to a single string: quote removal is applied, but no
// field splitting or pathname expansion occurs. Used for assignment right-
// hand sides, case patterns' scrutinee, and other single-field contexts.
func Literal(cfg *Config, w *syntax.Word) (string, error) {
	if w == nil {
		return "", nil
	}
	var b strings.Builder
	for _, part := range w.Parts {
		s, _, err := cfg.expandPart(part, true)
		if err != nil {
			return "", err
		}
		b.WriteString(strings.Join(s, ""))
	}
	return b.String(), nil
}

// Pattern expands w the way a glob or case pattern operand is expanded:
// quote removal still happens (quoted metacharacters become literal), but
// unquoted metacharacters are preserved for pattern.Translate.
func Pattern(cfg *Config, w *syntax.Word) (string, error) {
	if w == nil {
		return "", nil
	}
	var b strings.Builder
	for _, part := range w.Parts {
		switch p := part.(type) {
		case *syntax.SglQuoted:
			b.WriteString(pattern.QuoteMeta(p.Value))
		case *syntax.DblQuoted:
			inner, err := Pattern(cfg, &syntax.Word{Parts: p.Parts})
			if err != nil {
				return "", err
			}
			b.WriteString(pattern.QuoteMeta(inner))
		default:
			s, _, err := cfg.expandPart(part, true)
			if err != nil {
				return "", err
			}
			b.WriteString(strings.Join(s, ""))
		}
	}
	return b.String(), nil
}

// Fields fully expands a list of words: parameter/command/arithmetic
// expansion, word splitting on IFS, brace expansion, and pathname
// expansion, producing the final argv-style field list.
func Fields(cfg *Config, words []*syntax.Word) ([]string, error) {
	var out []string
	for _, w := range words {
		fields, quoted, err := cfg.fieldsForWord(w)
		if err != nil {
			return nil, err
		}
		for i, f := range fields {
			var expanded []string
			if !quoted[i] {
				expanded = expandBraces(f)
			} else {
				expanded = []string{f}
			}
			for _, e := range expanded {
				if !quoted[i] && !cfg.NoGlob && pattern.HasMeta(e) {
					matches, err := cfg.glob(e)
					if err != nil {
						return nil, err
					}
					if len(matches) > 0 {
						out = append(out, matches...)
						continue
					}
					if cfg.FailGlob {
						return nil, fmt.Errorf("no match: %s", e)
					}
					if cfg.NullGlob {
						continue
					}
				}
				out = append(out, e)
			}
		}
	}
	return out, nil
}

// fieldsForWord expands one word into its final fields plus a parallel
// "this field came from quoted text" flag (suppresses further splitting
// and globbing on it).
func (cfg *Config) fieldsForWord(w *syntax.Word) ([]string, []bool, error) {
	var result []string
	var quoted []bool
	pending := ""
	pendingQuoted := true
	hasPending := false

	flushPending := func() {
		if hasPending {
			result = append(result, pending)
			quoted = append(quoted, pendingQuoted)
		}
	}

	for i, part := range w.Parts {
		isTilde := i == 0
		sub, partQuoted, err := cfg.expandPart(part, false)
		if err != nil {
			return nil, nil, err
		}
		if isTilde {
			if lit, ok := part.(*syntax.Lit); ok && strings.HasPrefix(lit.Value, "~") {
				sub = []string{expandTilde(cfg, lit.Value)}
				partQuoted = true
			}
		}
		if len(sub) == 0 {
			continue
		}
		if len(sub) == 1 {
			pending += sub[0]
			pendingQuoted = pendingQuoted && partQuoted
			hasPending = true
			continue
		}
		// Multi-field part (unquoted $@ or an unquoted array expansion):
		// join its first field onto pending, flush the middle fields
		// standalone, and carry the last field forward as new pending.
		pending += sub[0]
		hasPending = true
		if len(sub) > 2 {
			flushPending()
			for _, mid := range sub[1 : len(sub)-1] {
				result = append(result, mid)
				quoted = append(quoted, partQuoted)
			}
			pending = ""
			pendingQuoted = true
			hasPending = false
		} else {
			flushPending()
			pending = ""
			pendingQuoted = true
			hasPending = false
		}
		pending = sub[len(sub)-1]
		pendingQuoted = partQuoted
		hasPending = true
	}
	flushPending()
	return result, quoted, nil
}

func expandTilde(cfg *Config, lit string) string {
	name := lit[1:]
	if name == "" {
		if cfg.Env != nil {
			if v := cfg.Env.Get("HOME"); v.IsSet() {
				return v.String()
			}
		}
		return lit
	}
	// ~user lookups require the OS user database, which the expand
	// package deliberately does not import (interp supplies HomeDirs via
	// Config in a future revision); unresolved ~user is left as-is.
	return lit
}

// expandPart expands one WordPart. quotedCtx is true when the part occurs
// inside a double-quoted span (or Literal/Pattern top-level calls), which
// suppresses $@/array multi-field splitting. Returned quoted reports
// whether the result should be treated as already quoted downstream.
func (cfg *Config) expandPart(part syntax.WordPart, quotedCtx bool) (fields []string, quoted bool, err error) {
	switch p := part.(type) {
	case *syntax.Lit:
		return []string{p.Value}, true, nil
	case *syntax.SglQuoted:
		return []string{p.Value}, true, nil
	case *syntax.DblQuoted:
		var b strings.Builder
		for _, inner := range p.Parts {
			sub, _, err := cfg.expandPart(inner, true)
			if err != nil {
				return nil, false, err
			}
			b.WriteString(strings.Join(sub, ""))
		}
		return []string{b.String()}, true, nil
	case *syntax.ParamExp:
		vals, err := cfg.paramFields(p)
		if err != nil {
			return nil, false, err
		}
		if quotedCtx {
			return []string{strings.Join(vals, " ")}, true, nil
		}
		if len(vals) != 1 {
			return vals, false, nil
		}
		return cfg.splitIFS(vals[0])
	case *syntax.CmdSubst:
		s, err := cfg.runCmdSubst(p)
		if err != nil {
			return nil, false, err
		}
		if quotedCtx {
			return []string{s}, true, nil
		}
		return cfg.splitIFS(s)
	case *syntax.ArithExp:
		n, err := Arithmetic(cfg, p.Expr)
		if err != nil {
			return nil, false, err
		}
		return []string{fmt.Sprintf("%d", n)}, true, nil
	case *syntax.ExtGlob:
		return []string{"@(" + p.Pattern + ")"}, false, nil
	}
	return nil, false, fmt.Errorf("expand: unhandled word part %T", part)
}

func (cfg *Config) runCmdSubst(cs *syntax.CmdSubst) (string, error) {
	if cfg.CmdSubst == nil {
		return "", fmt.Errorf("command substitution unsupported in this context")
	}
	out, err := cfg.CmdSubst(cs)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n"), nil
}

func (cfg *Config) splitIFS(s string) ([]string, bool, error) {
	ifs := cfg.ifs()
	if ifs == "" {
		if s == "" {
			return nil, false, nil
		}
		return []string{s}, false, nil
	}
	fields := splitOnIFS(s, ifs)
	if len(fields) == 0 {
		return nil, false, nil
	}
	return fields, false, nil
}

func splitOnIFS(s, ifs string) []string {
	isWS := func(b byte) bool { return b == ' ' || b == '\t' || b == '\n' }
	hasNonWS := strings.IndexFunc(ifs, func(r rune) bool { return !isWS(byte(r)) }) >= 0
	var fields []string
	i := 0
	for i < len(s) {
		for i < len(s) && strings.IndexByte(ifs, s[i]) >= 0 && isWS(s[i]) {
			i++
		}
		if i >= len(s) {
			break
		}
		start := i
		for i < len(s) && strings.IndexByte(ifs, s[i]) < 0 {
			i++
		}
		fields = append(fields, s[start:i])
		if i < len(s) && !isWS(s[i]) && hasNonWS {
			i++
			if i >= len(s) {
				fields = append(fields, "")
			}
		}
	}
	return fields
}

func (cfg *Config) glob(pat string) ([]string, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "."
	}
	mode := pattern.Filenames
	if cfg.GlobStar {
		mode |= pattern.GlobStar
	}
	if cfg.NoCaseGlob {
		mode |= pattern.NoCaseFold
	}
	segments := strings.Split(pat, string(filepath.Separator))
	matches := []string{""}
	if filepath.IsAbs(pat) {
		matches = []string{string(filepath.Separator)}
		segments = segments[1:]
	}
	for si, seg := range segments {
		if seg == "" {
			continue
		}
		var next []string
		for _, base := range matches {
			names, err := cfg.listDir(filepath.Join(dir, base))
			if err != nil {
				continue
			}
			re, err := pattern.Regexp(seg, mode|pattern.EntireString)
			if err != nil {
				return nil, err
			}
			for _, name := range names {
				if !cfg.DotGlob && strings.HasPrefix(name, ".") && strings.HasPrefix(seg, ".") == false {
					continue
				}
				if re.MatchString(name) {
					next = append(next, filepath.Join(base, name))
				}
			}
		}
		_ = si
		matches = next
		if len(matches) == 0 {
			return nil, nil
		}
	}
	sort.Strings(matches)
	return matches, nil
}

func (cfg *Config) listDir(dir string) ([]string, error) {
	if cfg.ReadDir == nil {
		return nil, fmt.Errorf("globbing unsupported: no ReadDir configured")
	}
	return cfg.ReadDir(dir)
}
