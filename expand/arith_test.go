package expand

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

// mapEnviron is a minimal WriteEnviron backed by a map, used to exercise
// Arithmetic's variable lookup and assignment without pulling in a whole
// interp.Runner.
type mapEnviron map[string]Variable

func (m mapEnviron) Get(name string) Variable { return m[name] }
func (m mapEnviron) Each(fn func(string, Variable) bool) {
	for k, v := range m {
		if !fn(k, v) {
			return
		}
	}
}
func (m mapEnviron) Set(name string, v Variable) error {
	m[name] = v
	return nil
}

func evalArith(t *testing.T, env mapEnviron, expr string) int64 {
	t.Helper()
	cfg := &Config{Env: env}
	v, err := Arithmetic(cfg, expr)
	qt.Assert(t, err, qt.IsNil, qt.Commentf("expr %q", expr))
	return v
}

func TestArithmeticLiterals(t *testing.T) {
	c := qt.New(t)
	env := mapEnviron{}
	c.Assert(evalArith(t, env, "1 + 2 * 3"), qt.Equals, int64(7))
	c.Assert(evalArith(t, env, "(1 + 2) * 3"), qt.Equals, int64(9))
	c.Assert(evalArith(t, env, "10 % 3"), qt.Equals, int64(1))
	c.Assert(evalArith(t, env, "0x10"), qt.Equals, int64(16))
	c.Assert(evalArith(t, env, "010"), qt.Equals, int64(8))
	c.Assert(evalArith(t, env, "2#101"), qt.Equals, int64(5))
}

func TestArithmeticComparisonsAndLogic(t *testing.T) {
	c := qt.New(t)
	env := mapEnviron{}
	c.Assert(evalArith(t, env, "1 == 1"), qt.Equals, int64(1))
	c.Assert(evalArith(t, env, "1 != 1"), qt.Equals, int64(0))
	c.Assert(evalArith(t, env, "3 > 2 && 2 > 1"), qt.Equals, int64(1))
	c.Assert(evalArith(t, env, "!0"), qt.Equals, int64(1))
	c.Assert(evalArith(t, env, "1 ? 2 : 3"), qt.Equals, int64(2))
	c.Assert(evalArith(t, env, "0 ? 2 : 3"), qt.Equals, int64(3))
}

func TestArithmeticVariables(t *testing.T) {
	c := qt.New(t)
	env := mapEnviron{"x": {Set: true, Kind: String, Str: "5"}}
	c.Assert(evalArith(t, env, "x + 1"), qt.Equals, int64(6))
	c.Assert(evalArith(t, env, "x = 10"), qt.Equals, int64(10))
	c.Assert(env["x"].String(), qt.Equals, "10")
	c.Assert(evalArith(t, env, "x += 5"), qt.Equals, int64(15))
	c.Assert(evalArith(t, env, "x++"), qt.Equals, int64(15))
	c.Assert(env["x"].String(), qt.Equals, "16")
	c.Assert(evalArith(t, env, "++x"), qt.Equals, int64(17))
}

func TestArithmeticDivisionByZero(t *testing.T) {
	c := qt.New(t)
	env := mapEnviron{}
	c.Assert(evalArith(t, env, "5 / 0"), qt.Equals, int64(0))
}

func TestArithmeticTrailingGarbage(t *testing.T) {
	c := qt.New(t)
	_, err := Arithmetic(&Config{Env: mapEnviron{}}, "1 + 2 foo")
	c.Assert(err, qt.Not(qt.IsNil))
}
