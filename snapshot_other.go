//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package probe

func kernelInfo() (release, machine string) {
	return "", ""
}
