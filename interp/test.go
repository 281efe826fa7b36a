package interp

import (
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/home-lang/den/expand"
	"github.com/home-lang/den/syntax"
)

// testParser walks the flat token stream captured by a [[ ... ]] clause
// (and, equivalently, the argv of the "test"/"[" builtin once wrapped in
// *syntax.Word literals) with the usual test(1) precedence: unary file/
// string/numeric operators bind tightest, then binary operators, then
// "!" negation, then "&&"/"||" with "&&" binding tighter than "||".
type testParser struct {
	cfg  *expand.Config
	toks []string
	pos  int
}

func evalTest(cfg *expand.Config, words []*syntax.Word) (bool, error) {
	toks := make([]string, len(words))
	for i, w := range words {
		s, err := expand.Literal(cfg, w)
		if err != nil {
			return false, err
		}
		toks[i] = s
	}
	tp := &testParser{cfg: cfg, toks: toks}
	v, err := tp.parseOr()
	if err != nil {
		return false, err
	}
	if tp.pos != len(tp.toks) {
		return false, fmt.Errorf("test: unexpected token %q", tp.cur())
	}
	return v, nil
}

func (p *testParser) cur() string {
	if p.pos >= len(p.toks) {
		return ""
	}
	return p.toks[p.pos]
}

func (p *testParser) advance() string {
	t := p.cur()
	p.pos++
	return t
}

func (p *testParser) parseOr() (bool, error) {
	v, err := p.parseAnd()
	if err != nil {
		return false, err
	}
	for p.cur() == "||" || p.cur() == "-o" {
		p.advance()
		rhs, err := p.parseAnd()
		if err != nil {
			return false, err
		}
		v = v || rhs
	}
	return v, nil
}

func (p *testParser) parseAnd() (bool, error) {
	v, err := p.parseNot()
	if err != nil {
		return false, err
	}
	for p.cur() == "&&" || p.cur() == "-a" {
		p.advance()
		rhs, err := p.parseNot()
		if err != nil {
			return false, err
		}
		v = v && rhs
	}
	return v, nil
}

func (p *testParser) parseNot() (bool, error) {
	if p.cur() == "!" {
		p.advance()
		v, err := p.parseNot()
		if err != nil {
			return false, err
		}
		return !v, nil
	}
	return p.parsePrimary()
}

func (p *testParser) parsePrimary() (bool, error) {
	if p.cur() == "(" {
		p.advance()
		v, err := p.parseOr()
		if err != nil {
			return false, err
		}
		if p.cur() != ")" {
			return false, fmt.Errorf("test: expected )")
		}
		p.advance()
		return v, nil
	}

	if unary, ok := unaryTestOps[p.cur()]; ok {
		p.advance()
		arg := p.advance()
		return unary(arg)
	}

	lhs := p.advance()
	if bin, ok := binaryTestOps[p.cur()]; ok {
		op := p.advance()
		rhs := p.advance()
		return bin(lhs, rhs, op)
	}
	return lhs != "", nil
}

var unaryTestOps = map[string]func(string) (bool, error){
	"-z": func(s string) (bool, error) { return len(s) == 0, nil },
	"-n": func(s string) (bool, error) { return len(s) != 0, nil },
	"-e": func(s string) (bool, error) { _, err := os.Stat(s); return err == nil, nil },
	"-f": func(s string) (bool, error) {
		fi, err := os.Stat(s)
		return err == nil && fi.Mode().IsRegular(), nil
	},
	"-d": func(s string) (bool, error) {
		fi, err := os.Stat(s)
		return err == nil && fi.IsDir(), nil
	},
	"-L": func(s string) (bool, error) {
		fi, err := os.Lstat(s)
		return err == nil && fi.Mode()&os.ModeSymlink != 0, nil
	},
	"-h": func(s string) (bool, error) {
		fi, err := os.Lstat(s)
		return err == nil && fi.Mode()&os.ModeSymlink != 0, nil
	},
	"-p": func(s string) (bool, error) {
		fi, err := os.Stat(s)
		return err == nil && fi.Mode()&os.ModeNamedPipe != 0, nil
	},
	"-S": func(s string) (bool, error) {
		fi, err := os.Stat(s)
		return err == nil && fi.Mode()&os.ModeSocket != 0, nil
	},
	"-b": func(s string) (bool, error) {
		fi, err := os.Stat(s)
		return err == nil && fi.Mode()&os.ModeDevice != 0, nil
	},
	"-c": func(s string) (bool, error) {
		fi, err := os.Stat(s)
		return err == nil && fi.Mode()&os.ModeCharDevice != 0, nil
	},
	"-s": func(s string) (bool, error) {
		fi, err := os.Stat(s)
		return err == nil && fi.Size() > 0, nil
	},
	"-r": func(s string) (bool, error) { return accessible(s, 4) }, //nolint:mnd
	"-w": func(s string) (bool, error) { return accessible(s, 2) },
	"-x": func(s string) (bool, error) { return accessible(s, 1) },
}

func accessible(path string, bit uint32) (bool, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return false, nil
	}
	perm := uint32(fi.Mode().Perm())
	return perm&(bit<<6) != 0 || perm&(bit<<3) != 0 || perm&bit != 0, nil
}

var binaryTestOps = map[string]func(a, b, op string) (bool, error){
	"=":   strEq,
	"==":  strEq,
	"!=":  strNe,
	"<":   func(a, b, _ string) (bool, error) { return a < b, nil },
	">":   func(a, b, _ string) (bool, error) { return a > b, nil },
	"-eq": numCmp(func(a, b int64) bool { return a == b }),
	"-ne": numCmp(func(a, b int64) bool { return a != b }),
	"-lt": numCmp(func(a, b int64) bool { return a < b }),
	"-le": numCmp(func(a, b int64) bool { return a <= b }),
	"-gt": numCmp(func(a, b int64) bool { return a > b }),
	"-ge": numCmp(func(a, b int64) bool { return a >= b }),
	"=~":  regexMatch,
	"-nt": func(a, b, _ string) (bool, error) { return newerThan(a, b) },
	"-ot": func(a, b, _ string) (bool, error) { return newerThan(b, a) },
}

func strEq(a, b, _ string) (bool, error) { return matchesPatternOrLiteral(a, b) }
func strNe(a, b, _ string) (bool, error) {
	v, err := matchesPatternOrLiteral(a, b)
	return !v, err
}

// matchesPatternOrLiteral treats b as a glob pattern for "=="/"=" the way
// [[ ]] does. Plain "test"/"[" share this evaluator, so they match the
// right-hand side as a glob pattern too.
func matchesPatternOrLiteral(a, pat string) (bool, error) {
	re, err := patternRegexp(pat)
	if err != nil {
		return a == pat, nil
	}
	return re.MatchString(a), nil
}

func regexMatch(a, pat, _ string) (bool, error) {
	re, err := regexp.Compile(pat)
	if err != nil {
		return false, err
	}
	return re.MatchString(a), nil
}

func numCmp(cmp func(a, b int64) bool) func(a, b, op string) (bool, error) {
	return func(a, b, _ string) (bool, error) {
		na, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			return false, fmt.Errorf("test: %s: integer expression expected", a)
		}
		nb, err := strconv.ParseInt(b, 10, 64)
		if err != nil {
			return false, fmt.Errorf("test: %s: integer expression expected", b)
		}
		return cmp(na, nb), nil
	}
}

func newerThan(a, b string) (bool, error) {
	fa, err := os.Stat(a)
	if err != nil {
		return false, nil
	}
	fb, err := os.Stat(b)
	if err != nil {
		return true, nil
	}
	return fa.ModTime().After(fb.ModTime()), nil
}
