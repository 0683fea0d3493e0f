//go:build !windows

package process

import "syscall"

// KillProcessGroup kills a browser process and all of its children by
// sending SIGKILL to the process group (negative PID). Errors are ignored:
// the group may already be gone.
func KillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
