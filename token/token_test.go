package token

import "testing"

func TestKindString(t *testing.T) {
	tests := []struct {
		k    Kind
		want string
	}{
		{EOF, "EOF"},
		{Semicolon, ";"},
		{AndAnd, "&&"},
		{DblLess, "<<"},
		{Kind(999), "unknown"},
	}
	for _, tc := range tests {
		if got := tc.k.String(); got != tc.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tc.k, got, tc.want)
		}
	}
}

func TestIsRedirOp(t *testing.T) {
	redirs := []Kind{Less, Great, DblGreat, LessAnd, GreatAnd, LessGreat, DblLess, DblLessDash, TLess, ClobberGreat}
	for _, k := range redirs {
		if !k.IsRedirOp() {
			t.Errorf("%v.IsRedirOp() = false, want true", k)
		}
	}
	nonRedirs := []Kind{EOF, Word, Semicolon, AndAnd, LParen}
	for _, k := range nonRedirs {
		if k.IsRedirOp() {
			t.Errorf("%v.IsRedirOp() = true, want false", k)
		}
	}
}

func TestReservedWords(t *testing.T) {
	for _, w := range []string{"if", "then", "fi", "while", "do", "done", "case", "esac", "function", "{", "}", "[["} {
		if !Reserved[w] {
			t.Errorf("Reserved[%q] = false, want true", w)
		}
	}
	for _, w := range []string{"echo", "foo", "ls"} {
		if Reserved[w] {
			t.Errorf("Reserved[%q] = true, want false", w)
		}
	}
}
