//go:build windows

package process

import (
	"os/exec"
	"strconv"
)

// KillProcessGroup kills a browser process and its children with taskkill.
// /F forces the kill, /T terminates the whole tree.
func KillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	_ = exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run()
}
