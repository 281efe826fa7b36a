package interp

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"
)

// spawnExternalStage starts path as a real child process with args as its
// argv, wired to in/out, and waits for it to finish. All stages of one
// pipeline share a single process group: the first stage to actually start
// becomes the group leader (pgid set to its own pid), and every later
// stage is placed into that same group, so signals and terminal control
// apply to the whole pipeline at once, the way a POSIX shell's job control
// expects.
func (r *Runner) spawnExternalStage(path string, args []string, in io.Reader, out io.Writer, pgid *int, mu *sync.Mutex, pids *[]int) (int, uint8, error) {
	cmd := exec.Command(path, args[1:]...)
	if len(args) > 0 {
		cmd.Args[0] = args[0]
	}
	cmd.Stdin = in
	cmd.Stdout = out
	cmd.Stderr = r.Stderr
	cmd.Dir = r.Dir
	cmd.Env = r.Vars.ExportedPairs()

	mu.Lock()
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
		Pgid:    *pgid,
	}
	err := cmd.Start()
	if err == nil {
		if *pgid == 0 {
			*pgid = cmd.Process.Pid
		}
		*pids = append(*pids, cmd.Process.Pid)
	}
	mu.Unlock()
	if err != nil {
		return 0, startFailureStatus(err), err
	}

	waitErr := cmd.Wait()
	if waitErr == nil {
		return cmd.Process.Pid, 0, nil
	}
	if exitErr, ok := waitErr.(*exec.ExitError); ok {
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			if ws.Signaled() {
				return cmd.Process.Pid, uint8(128 + int(ws.Signal())), nil
			}
			return cmd.Process.Pid, uint8(ws.ExitStatus()), nil
		}
		return cmd.Process.Pid, 1, nil
	}
	return cmd.Process.Pid, 1, waitErr
}

// startFailureStatus distinguishes "found on PATH but not executable" (126)
// from other Start failures. Path.Lookup has already ruled out "not found"
// (127) by the time spawnExternalStage runs, so a Start error here means the
// file exists but the kernel refused to exec it: permission denied or a bad
// executable format both land on 126, matching what a POSIX shell reports.
func startFailureStatus(err error) uint8 {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		if errors.Is(pathErr.Err, syscall.EACCES) || errors.Is(pathErr.Err, syscall.ENOEXEC) {
			return 126
		}
	}
	return 1
}

// forwardSignal delivers sig to every process in pgid's process group, used
// to propagate SIGINT/SIGTERM/SIGTSTP from the controlling terminal to a
// foreground pipeline as a single unit.
func forwardSignal(pgid int, sig syscall.Signal) error {
	if pgid <= 0 {
		return nil
	}
	return unix.Kill(-pgid, sig)
}

// setForeground hands terminal control of fd to pgid. It does not hand
// control back to the shell afterwards. Errors are ignored by callers
// operating on a non-tty stdin (scripts, pipes), where terminal control is
// meaningless.
func setForeground(fd int, pgid int) error {
	return unix.IoctlSetPointerInt(fd, unix.TIOCSPGRP, pgid)
}

// foregroundPgid reads back the current foreground process group of fd.
func foregroundPgid(fd int) (int, error) {
	return unix.IoctlGetInt(fd, unix.TIOCGPGRP)
}

// waitPgid blocks for any process in pgid to change state and returns
// Wait4's pid, status and error unchanged (ECHILD included). No caller in
// the package uses it.
func waitPgid(pgid int) (pid int, status unix.WaitStatus, err error) {
	var ws unix.WaitStatus
	wpid, err := unix.Wait4(-pgid, &ws, 0, nil)
	return wpid, ws, err
}
