//go:build windows

package executor

import "os/exec"

func setProcessGroup(*exec.Cmd) {}

// terminate kills the process; Windows has no SIGTERM delivery.
func terminate(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}
