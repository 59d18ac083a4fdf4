//go:build !(darwin || linux || freebsd || netbsd || openbsd)

package logger

func isTerminal(fd uintptr) bool {
	return false
}
