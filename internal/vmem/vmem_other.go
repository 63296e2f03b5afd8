//go:build !linux && !windows

package vmem

import "github.com/wnxd/memstate/memory"

func New() (memory.Manager, error) {
	return nil, memory.ErrPlatformUnsupported
}
