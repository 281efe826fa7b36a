// Package pattern translates shell glob/case patterns into Go regular
// expressions.
package pattern

import (
	"regexp"
	"strings"
)

// Mode bits adjust how Translate treats a pattern.
type Mode uint

const (
	// EntireString anchors the regexp to the whole input, as case patterns
	// and [[ == ]] need; without it, the regexp only needs to match
	// somewhere in the string (used for ${var/pat/repl} replacement).
	EntireString Mode = 1 << iota
	// Filenames gives '/' and a leading '.' the special glob treatment
	// pathname expansion requires (dotglob off by default, '*'/'?' never
	// cross '/').
	Filenames
	// NoCaseFold makes character matching case-insensitive.
	NoCaseFold
	// GlobStar lets a bare "**" path component match any number of
	// directories, including zero.
	GlobStar
)

// Translate converts a shell pattern into an equivalent Go regexp source
// string. It does not compile the pattern; callers combine this with
// Regexp when they want a compiled matcher.
func Translate(pat string, mode Mode) (string, error) {
	var b strings.Builder
	if mode&EntireString != 0 {
		b.WriteString("^")
	}
	if mode&NoCaseFold != 0 {
		b.WriteString("(?i)")
	}
	runes := []rune(pat)
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch r {
		case '*':
			if mode&GlobStar != 0 && i+1 < len(runes) && runes[i+1] == '*' {
				b.WriteString(".*")
				i += 2
				continue
			}
			if mode&Filenames != 0 {
				b.WriteString("[^/]*")
			} else {
				b.WriteString(".*")
			}
			i++
		case '?':
			if mode&Filenames != 0 {
				b.WriteString("[^/]")
			} else {
				b.WriteString(".")
			}
			i++
		case '[':
			cls, adv, ok := scanClass(runes[i:])
			if ok {
				b.WriteString(cls)
				i += adv
			} else {
				b.WriteString(regexp.QuoteMeta("["))
				i++
			}
		case '\\':
			if i+1 < len(runes) {
				b.WriteString(regexp.QuoteMeta(string(runes[i+1])))
				i += 2
			} else {
				b.WriteString(regexp.QuoteMeta(`\`))
				i++
			}
		case '@', '!', '+':
			if i+1 < len(runes) && runes[i+1] == '(' {
				op := r
				end, ok := matchingParen(runes, i+1)
				if !ok {
					b.WriteString(regexp.QuoteMeta(string(r)))
					i++
					continue
				}
				alts := strings.Split(string(runes[i+2:end]), "|")
				var sub []string
				for _, a := range alts {
					s, err := Translate(a, mode&^EntireString)
					if err != nil {
						return "", err
					}
					sub = append(sub, s)
				}
				group := "(?:" + strings.Join(sub, "|") + ")"
				switch op {
				case '@':
					b.WriteString(group)
				case '!':
					// Negative extglob has no direct regexp translation;
					// it is approximated by (?:.*), which matches any
					// text, the excluded alternatives included.
					b.WriteString("(?:.*)")
				case '+':
					b.WriteString(group + "+")
				}
				i = end + 1
				continue
			}
			b.WriteString(regexp.QuoteMeta(string(r)))
			i++
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
			i++
		}
	}
	if mode&EntireString != 0 {
		b.WriteString("$")
	}
	return b.String(), nil
}

func matchingParen(runes []rune, openAt int) (int, bool) {
	depth := 0
	for i := openAt; i < len(runes); i++ {
		switch runes[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// scanClass translates a "[...]" character class, including "[!...]"
// negation and "[a-z]" ranges, leaving POSIX "[:alpha:]"-style names to
// Go's regexp engine (which understands them natively inside a class).
func scanClass(runes []rune) (string, int, bool) {
	if len(runes) < 2 || runes[0] != '[' {
		return "", 0, false
	}
	i := 1
	var b strings.Builder
	b.WriteByte('[')
	if i < len(runes) && (runes[i] == '!' || runes[i] == '^') {
		b.WriteByte('^')
		i++
	}
	if i < len(runes) && runes[i] == ']' {
		b.WriteString(`\]`)
		i++
	}
	for i < len(runes) && runes[i] != ']' {
		r := runes[i]
		switch r {
		case '\\', '^':
			b.WriteString(regexp.QuoteMeta(string(r)))
		case '[':
			if i+1 < len(runes) && runes[i+1] == ':' {
				j := i + 2
				for j+1 < len(runes) && !(runes[j] == ':' && runes[j+1] == ']') {
					j++
				}
				if j+1 < len(runes) {
					b.WriteString(string(runes[i : j+2]))
					i = j + 2
					continue
				}
			}
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
		i++
	}
	if i >= len(runes) {
		return "", 0, false
	}
	b.WriteByte(']')
	i++
	return b.String(), i, true
}

// Regexp compiles pat (a shell glob/case pattern) into a *regexp.Regexp.
func Regexp(pat string, mode Mode) (*regexp.Regexp, error) {
	src, err := Translate(pat, mode)
	if err != nil {
		return nil, err
	}
	return regexp.Compile(src)
}

// HasMeta reports whether pat contains any unescaped glob metacharacter,
// letting callers skip filesystem expansion for plain literals.
func HasMeta(pat string) bool {
	for i := 0; i < len(pat); i++ {
		switch pat[i] {
		case '*', '?', '[':
			return true
		case '\\':
			i++
		}
	}
	return false
}

// QuoteMeta escapes glob metacharacters in s so it matches itself literally.
func QuoteMeta(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
