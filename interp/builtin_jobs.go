package interp

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

func init() {
	register("jobs", biJobs)
	register("fg", biFg)
	register("bg", biBg)
	register("wait", biWait)
	register("kill", biKill)
	register("disown", biDisown)
}

func biJobs(ctx context.Context, r *Runner, args []string) error {
	for _, j := range r.Jobs.List() {
		done, status := j.State()
		state := "Running"
		if done {
			state = fmt.Sprintf("Done(%d)", status)
		}
		fmt.Fprintf(r.Stdout, "[%d]  %s\n", j.ID, state)
	}
	return nil
}

func parseJobSpec(r *Runner, spec string) (*Job, error) {
	spec = strings.TrimPrefix(spec, "%")
	id, err := strconv.Atoi(spec)
	if err != nil {
		return nil, fmt.Errorf("%s: no such job", spec)
	}
	j, ok := r.Jobs.Get(id)
	if !ok {
		return nil, fmt.Errorf("%s: no such job", spec)
	}
	return j, nil
}

func biFg(ctx context.Context, r *Runner, args []string) error {
	spec := "%%"
	if len(args) > 1 {
		spec = args[1]
	}
	j, err := latestOrNamed(r, spec)
	if err != nil {
		return newShellErrorf(1, "fg: %v", err)
	}
	if j.PGID > 0 {
		_ = setForeground(0, j.PGID)
	}
	for {
		if done, status := j.State(); done {
			r.setStatus(status)
			return nil
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func biBg(ctx context.Context, r *Runner, args []string) error {
	spec := "%%"
	if len(args) > 1 {
		spec = args[1]
	}
	j, err := latestOrNamed(r, spec)
	if err != nil {
		return newShellErrorf(1, "bg: %v", err)
	}
	fmt.Fprintf(r.Stdout, "[%d] %d\n", j.ID, j.PGID)
	return nil
}

func latestOrNamed(r *Runner, spec string) (*Job, error) {
	if spec == "%%" || spec == "%+" || spec == "" {
		jobs := r.Jobs.List()
		if len(jobs) == 0 {
			return nil, fmt.Errorf("no current job")
		}
		return jobs[len(jobs)-1], nil
	}
	return parseJobSpec(r, spec)
}

func biWait(ctx context.Context, r *Runner, args []string) error {
	if len(args) == 1 {
		for _, j := range r.Jobs.List() {
			for {
				if done, status := j.State(); done {
					r.setStatus(status)
					break
				}
				time.Sleep(20 * time.Millisecond)
			}
		}
		return nil
	}
	var status uint8
	for _, spec := range args[1:] {
		j, err := parseJobSpec(r, spec)
		if err != nil {
			continue
		}
		for {
			if done, s := j.State(); done {
				status = s
				break
			}
			time.Sleep(20 * time.Millisecond)
		}
	}
	r.setStatus(status)
	return nil
}

func biKill(ctx context.Context, r *Runner, args []string) error {
	sig := syscall.SIGTERM
	rest := args[1:]
	if len(rest) > 0 && strings.HasPrefix(rest[0], "-") {
		name := strings.TrimPrefix(rest[0], "-")
		if n, err := strconv.Atoi(name); err == nil {
			sig = syscall.Signal(n)
		} else if s, ok := signalByName[strings.ToUpper(name)]; ok {
			sig = s
		}
		rest = rest[1:]
	}
	for _, target := range rest {
		if strings.HasPrefix(target, "%") {
			j, err := parseJobSpec(r, target)
			if err != nil {
				continue
			}
			if j.PGID > 0 {
				_ = forwardSignal(j.PGID, sig)
			}
			continue
		}
		pid, err := strconv.Atoi(target)
		if err != nil {
			continue
		}
		_ = unix.Kill(pid, sig)
	}
	return nil
}

func biDisown(ctx context.Context, r *Runner, args []string) error {
	for _, spec := range args[1:] {
		if j, err := parseJobSpec(r, spec); err == nil {
			r.Jobs.Remove(j.ID)
		}
	}
	return nil
}

var signalByName = map[string]syscall.Signal{
	"HUP": syscall.SIGHUP, "INT": syscall.SIGINT, "QUIT": syscall.SIGQUIT,
	"KILL": syscall.SIGKILL, "TERM": syscall.SIGTERM, "STOP": syscall.SIGSTOP,
	"CONT": syscall.SIGCONT, "TSTP": syscall.SIGTSTP, "USR1": syscall.SIGUSR1,
	"USR2": syscall.SIGUSR2,
}
