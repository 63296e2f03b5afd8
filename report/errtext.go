package report

import (
	"errors"
	"fmt"
	"syscall"
)

// DescribeError resolves the OS error code inside err to its system message.
func DescribeError(err error) string {
	if err == nil {
		return ""
	}
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return err.Error()
	}
	if msg, ok := errnoText(errno); ok {
		return msg
	}
	return fmt.Sprintf("Could not Get Error Msg for %d", uintptr(errno))
}
