package interp

// Options holds the "set -o"/"shopt" flags the shell tracks. Named
// fields back the options execution actually branches
// on; other shopt-style toggles are kept in the generic map so "shopt -p"
// can round-trip them even though they don't change behavior here.
type Options struct {
	ErrExit   bool // set -e
	NoUnset   bool // set -u
	PipeFail  bool // set -o pipefail
	Verbose   bool // set -v
	XTrace    bool // set -x
	NoExec    bool // set -n
	NoGlob    bool // set -f
	NullGlob  bool // shopt -s nullglob
	FailGlob  bool // shopt -s failglob
	DotGlob   bool // shopt -s dotglob
	GlobStar  bool // shopt -s globstar
	Monitor   bool // set -m, job control

	Umask int // current umask, set by the "umask" builtin

	extra map[string]bool
}

func NewOptions() *Options { return &Options{extra: map[string]bool{}, Umask: 0022} }

// Get reports the value of an option not backed by a named field.
func (o *Options) Get(name string) bool { return o.extra[name] }

// Set stores an option not backed by a named field.
func (o *Options) Set(name string, v bool) { o.extra[name] = v }

// SetByLetter applies a "set -X"/"set +X" single-letter option.
func (o *Options) SetByLetter(letter byte, on bool) bool {
	switch letter {
	case 'e':
		o.ErrExit = on
	case 'u':
		o.NoUnset = on
	case 'v':
		o.Verbose = on
	case 'x':
		o.XTrace = on
	case 'n':
		o.NoExec = on
	case 'f':
		o.NoGlob = on
	case 'm':
		o.Monitor = on
	default:
		return false
	}
	return true
}

// SetByName applies a "set -o name"/"set +o name" long option.
func (o *Options) SetByName(name string, on bool) bool {
	switch name {
	case "errexit":
		o.ErrExit = on
	case "nounset":
		o.NoUnset = on
	case "pipefail":
		o.PipeFail = on
	case "verbose":
		o.Verbose = on
	case "xtrace":
		o.XTrace = on
	case "noexec":
		o.NoExec = on
	case "noglob":
		o.NoGlob = on
	case "monitor":
		o.Monitor = on
	default:
		o.extra[name] = on
	}
	return true
}

// ShoptSet applies a "shopt -s/-u name" toggle.
func (o *Options) ShoptSet(name string, on bool) {
	switch name {
	case "nullglob":
		o.NullGlob = on
	case "failglob":
		o.FailGlob = on
	case "dotglob":
		o.DotGlob = on
	case "globstar":
		o.GlobStar = on
	default:
		o.extra[name] = on
	}
}

// sub returns a copy-on-write snapshot for subshells: the child starts with
// the parent's current option values, but "set"/"shopt" inside the child
// never mutates the parent's Options.
func (o *Options) sub() *Options {
	cp := *o
	cp.extra = map[string]bool{}
	for k, v := range o.extra {
		cp.extra[k] = v
	}
	return &cp
}

// Lines renders every option in "set -o"/"shopt -p"-compatible form.
func (o *Options) Lines() []string {
	named := []struct {
		name string
		on   bool
	}{
		{"errexit", o.ErrExit}, {"nounset", o.NoUnset}, {"pipefail", o.PipeFail},
		{"verbose", o.Verbose}, {"xtrace", o.XTrace}, {"noexec", o.NoExec},
		{"noglob", o.NoGlob}, {"monitor", o.Monitor},
		{"nullglob", o.NullGlob}, {"failglob", o.FailGlob},
		{"dotglob", o.DotGlob}, {"globstar", o.GlobStar},
	}
	var out []string
	for _, n := range named {
		state := "off"
		if n.on {
			state = "on"
		}
		out = append(out, n.name+"\t"+state)
	}
	return out
}
