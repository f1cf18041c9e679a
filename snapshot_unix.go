//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package probe

import "golang.org/x/sys/unix"

func kernelInfo() (release, machine string) {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return "", ""
	}
	return unix.ByteSliceToString(uts.Release[:]), unix.ByteSliceToString(uts.Machine[:])
}
