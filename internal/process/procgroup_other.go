//go:build !unix

package process

import "os/exec"

func killProcessGroup(cmd *exec.Cmd) {}
