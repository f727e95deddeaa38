//go:build unix

package process

import (
	"os/exec"
	"syscall"
)

// killProcessGroup starts the program in its own process group and makes
// cancellation kill the whole group, so helpers it spawned cannot keep the
// output pipes open.
func killProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
