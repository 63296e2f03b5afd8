package vmem

import (
	"github.com/go-errors/errors"

	"github.com/wnxd/memstate/memory"
)

func opError(op string, addr uintptr, size uint64, err error) error {
	return errors.Wrap(&memory.OpError{Op: op, Addr: addr, Size: size, Err: err}, 1)
}

func calcOverlap(min1, max1, min2, max2 uintptr) (uintptr, uintptr, bool) {
	if max1 < min2 || max2 < min1 {
		return 0, 0, false
	}
	overlapMin := max(min1, min2)
	overlapMax := min(max1, max2)
	return overlapMin, overlapMax, true
}
