//go:build unix

package spawn

import (
	"os"
	"os/exec"
	"syscall"
)

// configureProcessGroup puts the child in its own process group and makes
// cancellation signal the whole group. Killing only the direct child leaves
// grandchildren (ssh, git-remote-https, credential helpers) holding the
// output pipes, which stalls Wait for the full WaitDelay.
func configureProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		if err == syscall.ESRCH {
			return os.ErrProcessDone
		}
		return err
	}
}
