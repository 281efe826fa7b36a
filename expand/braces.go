package expand

import (
	"strconv"
	"strings"
)

// expandBraces expands bash brace expressions ("{a,b,c}" and "{1..5[..2]}")
// in a single literal string, returning every resulting literal. Nested
// braces expand outside-in, matching bash's left-to-right, innermost-last
// behavior closely enough for scripting use.
func expandBraces(s string) []string {
	open := strings.IndexByte(s, '{')
	if open < 0 {
		return []string{s}
	}
	close := matchingBrace(s, open)
	if close < 0 {
		return []string{s}
	}
	prefix, body, suffix := s[:open], s[open+1:close], s[close+1:]

	if seq := expandSequence(body); seq != nil {
		var out []string
		for _, item := range seq {
			for _, tail := range expandBraces(suffix) {
				out = append(out, prefix+item+tail)
			}
		}
		return out
	}

	alts := splitTopLevelComma(body)
	if len(alts) < 2 {
		return []string{s}
	}
	var out []string
	for _, alt := range alts {
		for _, head := range expandBraces(prefix + alt) {
			for _, tail := range expandBraces(suffix) {
				out = append(out, head+tail)
			}
		}
	}
	return out
}

func matchingBrace(s string, openAt int) int {
	depth := 0
	for i := openAt; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func splitTopLevelComma(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// expandSequence recognizes "x..y" or "x..y..step" with integer or
// single-letter endpoints; returns nil if body isn't a sequence.
func expandSequence(body string) []string {
	parts := strings.Split(body, "..")
	if len(parts) != 2 && len(parts) != 3 {
		return nil
	}
	from, to := parts[0], parts[1]
	step := 1
	if len(parts) == 3 {
		n, err := strconv.Atoi(parts[2])
		if err != nil || n == 0 {
			return nil
		}
		step = n
		if step < 0 {
			step = -step
		}
	}

	if len(from) == 1 && len(to) == 1 && isAlpha(from[0]) && isAlpha(to[0]) {
		a, b := rune(from[0]), rune(to[0])
		var out []string
		if a <= b {
			for r := a; r <= b; r += rune(step) {
				out = append(out, string(r))
			}
		} else {
			for r := a; r >= b; r -= rune(step) {
				out = append(out, string(r))
			}
		}
		return out
	}

	fromN, err1 := strconv.Atoi(from)
	toN, err2 := strconv.Atoi(to)
	if err1 != nil || err2 != nil {
		return nil
	}
	width := 0
	if strings.HasPrefix(from, "0") && len(from) > 1 || strings.HasPrefix(to, "0") && len(to) > 1 {
		width = len(from)
		if len(to) > width {
			width = len(to)
		}
	}
	var out []string
	if fromN <= toN {
		for n := fromN; n <= toN; n += step {
			out = append(out, padInt(n, width))
		}
	} else {
		for n := fromN; n >= toN; n -= step {
			out = append(out, padInt(n, width))
		}
	}
	return out
}

func padInt(n, width int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	digits := s
	if neg {
		digits = s[1:]
	}
	for len(digits) < width {
		digits = "0" + digits
	}
	if neg {
		return "-" + digits
	}
	return digits
}

func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
