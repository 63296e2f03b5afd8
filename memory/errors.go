package memory

import (
	"errors"
	"fmt"
)

var (
	ErrPlatformUnsupported = errors.New("platform unsupported")
	ErrArgumentInvalid     = errors.New("argument invalid")
	ErrRegionUnknown       = errors.New("region unknown")
	ErrNotCommitted        = errors.New("pages not committed")
	ErrNotLocked           = errors.New("pages not locked")
	ErrNoAccess            = errors.New("pages not accessible")
)

const (
	OpReserve  = "Reserve"
	OpCommit   = "Commit"
	OpLock     = "Lock"
	OpUnlock   = "Unlock"
	OpDecommit = "Decommit"
	OpRelease  = "Release"
	OpQuery    = "Query"
)

type OpError struct {
	Op   string
	Addr uintptr
	Size uint64
	Err  error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s addr: %016X, size: %d: %v", e.Op, e.Addr, e.Size, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}
