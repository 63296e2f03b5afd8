//go:build windows

package report

import (
	"strings"
	"syscall"

	"golang.org/x/sys/windows"
)

func errnoText(errno syscall.Errno) (string, bool) {
	const (
		flags  = windows.FORMAT_MESSAGE_IGNORE_INSERTS
		langID = 0 // MAKELANGID(LANG_NEUTRAL, SUBLANG_NEUTRAL)
	)
	var buf [512]uint16
	n, err := windows.FormatMessage(flags|windows.FORMAT_MESSAGE_FROM_SYSTEM, 0, uint32(errno), langID, buf[:], nil)
	if err != nil {
		// network errors live in netmsg.dll
		h, lerr := windows.LoadLibraryEx("netmsg.dll", 0, windows.DONT_RESOLVE_DLL_REFERENCES)
		if lerr != nil {
			return "", false
		}
		defer windows.FreeLibrary(h)
		n, err = windows.FormatMessage(flags|windows.FORMAT_MESSAGE_FROM_HMODULE, uintptr(h), uint32(errno), langID, buf[:], nil)
		if err != nil {
			return "", false
		}
	}
	msg := strings.TrimRight(windows.UTF16ToString(buf[:n]), "\r\n. ")
	return msg, msg != ""
}
