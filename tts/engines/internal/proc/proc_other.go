//go:build !unix

package proc

import "os/exec"

// Configure bounds the wait after cancellation; there are no process groups
// to manage here.
func Configure(cmd *exec.Cmd) {
	cmd.WaitDelay = waitDelay
}
