//go:build windows

package spawn

import "os/exec"

// configureProcessGroup is a no-op on Windows; cancellation falls back to
// exec.CommandContext's default kill, with WaitDelay as the backstop.
func configureProcessGroup(cmd *exec.Cmd) {}
