//go:build windows

package workerpool

import "os"

// Windows has no SIGTERM equivalent exposed via syscall.Kill; the closest
// available primitive is a hard process kill.
func defaultKill(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return proc.Kill()
}
