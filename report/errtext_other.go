//go:build !windows

package report

import (
	"strconv"
	"strings"
	"syscall"
)

func errnoText(errno syscall.Errno) (string, bool) {
	msg := errno.Error()
	if msg == "" || strings.HasPrefix(msg, "errno "+strconv.Itoa(int(errno))) {
		return "", false
	}
	return msg, true
}
