//go:build !windows

package workerpool

import "syscall"

func defaultKill(pid int) error {
	return syscall.Kill(pid, syscall.SIGTERM)
}
