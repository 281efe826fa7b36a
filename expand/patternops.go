package expand

import (
	"strings"

	"github.com/home-lang/den/pattern"
	"github.com/home-lang/den/syntax"
)

// trimPattern implements the ${var#pat}/${var##pat}/${var%pat}/${var%%pat}
// family: strip the shortest ("small") or longest ("large") match of pat
// anchored at the start (prefix ops) or end (suffix ops) of s.
func trimPattern(s, pat string, op syntax.ParExpOp) string {
	re, err := pattern.Regexp(pat, pattern.EntireString)
	if err != nil {
		return s
	}
	large := op == syntax.ExpRemLargePrefix || op == syntax.ExpRemLargeSuffix
	suffix := op == syntax.ExpRemSmallSuffix || op == syntax.ExpRemLargeSuffix

	if !suffix {
		if large {
			for i := len(s); i >= 0; i-- {
				if re.MatchString(s[:i]) {
					return s[i:]
				}
			}
		} else {
			for i := 0; i <= len(s); i++ {
				if re.MatchString(s[:i]) {
					return s[i:]
				}
			}
		}
		return s
	}
	if large {
		for i := 0; i <= len(s); i++ {
			if re.MatchString(s[i:]) {
				return s[:i]
			}
		}
	} else {
		for i := len(s); i >= 0; i-- {
			if re.MatchString(s[i:]) {
				return s[:i]
			}
		}
	}
	return s
}

// replacePattern implements ${var/pat/repl} and ${var//pat/repl}.
func replacePattern(s, pat, repl string, all bool) string {
	re, err := pattern.Regexp(pat, 0)
	if err != nil {
		return s
	}
	if !all {
		loc := re.FindStringIndex(s)
		if loc == nil {
			return s
		}
		return s[:loc[0]] + repl + s[loc[1]:]
	}
	var b strings.Builder
	last := 0
	for _, loc := range re.FindAllStringIndex(s, -1) {
		if loc[0] < last {
			continue
		}
		b.WriteString(s[last:loc[0]])
		b.WriteString(repl)
		last = loc[1]
		if loc[0] == loc[1] && last < len(s) {
			b.WriteByte(s[last])
			last++
		}
	}
	b.WriteString(s[last:])
	return b.String()
}
