package utils

import (
	"os"

	"golang.org/x/sys/unix"
)

// IOCtl はファイルディスクリプタに対してioctlを発行する
func IOCtl(f *os.File, cmd uintptr, arg uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), cmd, arg)
	if errno != 0 {
		return errno
	}
	return nil
}
