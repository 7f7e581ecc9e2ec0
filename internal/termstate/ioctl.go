package termstate

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// getForeground and setForeground wrap TIOCGPGRP/TIOCSPGRP directly via
// unix.Syscall, the same raw-ioctl style the teacher's ptyutil package uses
// for TIOCGPTN/TIOCGPTPEER: golang.org/x/sys/unix has no typed helper for
// these two terminal-ownership requests.

func getForeground(fd int) (int, error) {
	var pgrp int32
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), unix.TIOCGPGRP, uintptr(unsafe.Pointer(&pgrp)))
	if errno != 0 {
		return 0, errno
	}
	return int(pgrp), nil
}

func setForeground(fd int, pgid int) error {
	pgrp := int32(pgid)
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), unix.TIOCSPGRP, uintptr(unsafe.Pointer(&pgrp)))
	if errno != 0 {
		return errno
	}
	return nil
}
