//go:build windows

package vmem

import (
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/wnxd/memstate/memory"
)

var (
	kernel32          = windows.NewLazySystemDLL("kernel32.dll")
	procGetSystemInfo = kernel32.NewProc("GetSystemInfo")
)

type systemInfo struct {
	ProcessorArchitecture     uint16
	Reserved                  uint16
	PageSize                  uint32
	MinimumApplicationAddress uintptr
	MaximumApplicationAddress uintptr
	ActiveProcessorMask       uintptr
	NumberOfProcessors        uint32
	ProcessorType             uint32
	AllocationGranularity     uint32
	ProcessorLevel            uint16
	ProcessorRevision         uint16
}

type Windows struct {
	pageSize uint64
}

func New() (memory.Manager, error) {
	return NewWindows()
}

func NewWindows() (*Windows, error) {
	if err := procGetSystemInfo.Find(); err != nil {
		return nil, err
	}
	var info systemInfo
	procGetSystemInfo.Call(uintptr(unsafe.Pointer(&info)))
	return &Windows{pageSize: uint64(info.PageSize)}, nil
}

func (w *Windows) PageSize() uint64 {
	return w.pageSize
}

func (w *Windows) Reserve(size uint64) (uintptr, error) {
	addr, err := windows.VirtualAlloc(0, uintptr(size), windows.MEM_RESERVE, windows.PAGE_NOACCESS)
	if err != nil {
		return 0, opError(memory.OpReserve, 0, size, err)
	}
	return addr, nil
}

func (w *Windows) Commit(addr uintptr, size uint64, prot memory.Protection) (uintptr, error) {
	start, err := windows.VirtualAlloc(addr, uintptr(size), windows.MEM_COMMIT, uint32(prot))
	if err != nil {
		return 0, opError(memory.OpCommit, addr, size, err)
	}
	return start, nil
}

func (w *Windows) Lock(addr uintptr, size uint64) error {
	if err := windows.VirtualLock(addr, uintptr(size)); err != nil {
		return opError(memory.OpLock, addr, size, err)
	}
	return nil
}

func (w *Windows) Unlock(addr uintptr, size uint64) error {
	if err := windows.VirtualUnlock(addr, uintptr(size)); err != nil {
		return opError(memory.OpUnlock, addr, size, err)
	}
	return nil
}

func (w *Windows) Decommit(addr uintptr, size uint64) error {
	if err := windows.VirtualFree(addr, uintptr(size), windows.MEM_DECOMMIT); err != nil {
		return opError(memory.OpDecommit, addr, size, err)
	}
	return nil
}

func (w *Windows) Release(addr uintptr) error {
	if err := windows.VirtualFree(addr, 0, windows.MEM_RELEASE); err != nil {
		return opError(memory.OpRelease, addr, 0, err)
	}
	return nil
}

func (w *Windows) Query(addr uintptr) (memory.Snapshot, error) {
	var mbi windows.MemoryBasicInformation
	if err := windows.VirtualQuery(addr, &mbi, unsafe.Sizeof(mbi)); err != nil {
		return memory.Snapshot{}, opError(memory.OpQuery, addr, 0, err)
	}
	return memory.Snapshot{
		BaseAddress:       mbi.BaseAddress,
		AllocationBase:    mbi.AllocationBase,
		AllocationProtect: memory.Protection(mbi.AllocationProtect),
		RegionSize:        uint64(mbi.RegionSize),
		Protect:           memory.Protection(mbi.Protect),
		State:             memory.State(mbi.State),
		Type:              memory.Type(mbi.Type),
	}, nil
}
