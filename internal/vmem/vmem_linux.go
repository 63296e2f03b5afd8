//go:build linux

package vmem

import (
	"maps"
	"os"
	"slices"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/wnxd/memstate/memory"
)

// TASK_SIZE of 47-bit kernels; the whole address space on 32-bit ones.
const userAddrLimit = uintptr(min(uint64(^uintptr(0)), 0x7FFFFFFFF000))

// The kernel has no notion of reserved pages, so reservation state is tracked here.
type Linux struct {
	pageSize  uint64
	mu        sync.Mutex
	maps      map[uintptr]*mapping
	mapsPath  string
	addrLimit uintptr
}

type mapping struct {
	memory.Region
	data      []byte
	committed []bool
}

func New() (memory.Manager, error) {
	return NewLinux(), nil
}

func NewLinux() *Linux {
	return &Linux{
		pageSize:  uint64(unix.Getpagesize()),
		maps:      make(map[uintptr]*mapping),
		mapsPath:  "/proc/self/maps",
		addrLimit: userAddrLimit,
	}
}

func (l *Linux) PageSize() uint64 {
	return l.pageSize
}

func (l *Linux) Reserve(size uint64) (uintptr, error) {
	if size == 0 {
		return 0, opError(memory.OpReserve, 0, size, memory.ErrArgumentInvalid)
	}
	size = memory.Align(size, l.pageSize)
	data, err := unix.Mmap(-1, 0, int(size), unix.PROT_NONE, unix.MAP_PRIVATE|unix.MAP_ANON|unix.MAP_NORESERVE)
	if err != nil {
		return 0, opError(memory.OpReserve, 0, size, err)
	}
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(data)))
	l.mu.Lock()
	l.maps[addr] = &mapping{
		Region:    memory.Region{Addr: addr, Size: size, Prot: memory.PAGE_NOACCESS},
		data:      data,
		committed: make([]bool, size/l.pageSize),
	}
	l.mu.Unlock()
	return addr, nil
}

func (l *Linux) Commit(addr uintptr, size uint64, prot memory.Protection) (uintptr, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, first, last, err := l.span(addr, size)
	if err != nil {
		return 0, opError(memory.OpCommit, addr, size, err)
	}
	if err = unix.Mprotect(m.pages(first, last, l.pageSize), unixProt(prot)); err != nil {
		return 0, opError(memory.OpCommit, addr, size, err)
	}
	for i := first; i < last; i++ {
		m.committed[i] = true
	}
	return m.Addr + uintptr(uint64(first)*l.pageSize), nil
}

func (l *Linux) Lock(addr uintptr, size uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, first, last, err := l.span(addr, size)
	if err != nil {
		return opError(memory.OpLock, addr, size, err)
	}
	if err = unix.Mlock(m.pages(first, last, l.pageSize)); err != nil {
		return opError(memory.OpLock, addr, size, err)
	}
	return nil
}

func (l *Linux) Unlock(addr uintptr, size uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, first, last, err := l.span(addr, size)
	if err != nil {
		return opError(memory.OpUnlock, addr, size, err)
	}
	if err = unix.Munlock(m.pages(first, last, l.pageSize)); err != nil {
		return opError(memory.OpUnlock, addr, size, err)
	}
	return nil
}

func (l *Linux) Decommit(addr uintptr, size uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, first, last, err := l.span(addr, size)
	if err != nil {
		return opError(memory.OpDecommit, addr, size, err)
	}
	b := m.pages(first, last, l.pageSize)
	if err = unix.Madvise(b, unix.MADV_DONTNEED); err != nil {
		return opError(memory.OpDecommit, addr, size, err)
	}
	if err = unix.Mprotect(b, unix.PROT_NONE); err != nil {
		return opError(memory.OpDecommit, addr, size, err)
	}
	for i := first; i < last; i++ {
		m.committed[i] = false
	}
	return nil
}

func (l *Linux) Release(addr uintptr) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.maps[addr]
	if !ok {
		return opError(memory.OpRelease, addr, 0, memory.ErrRegionUnknown)
	}
	if err := unix.Munmap(m.data); err != nil {
		return opError(memory.OpRelease, addr, 0, err)
	}
	delete(l.maps, addr)
	return nil
}

func (l *Linux) Query(addr uintptr) (memory.Snapshot, error) {
	f, err := os.Open(l.mapsPath)
	if err != nil {
		return memory.Snapshot{}, opError(memory.OpQuery, addr, 0, err)
	}
	entries, err := parseMaps(f)
	f.Close()
	if err != nil {
		return memory.Snapshot{}, opError(memory.OpQuery, addr, 0, err)
	}
	base := memory.AlignDown(addr, uintptr(l.pageSize))
	entry, next := lookupMaps(entries, addr)
	if entry == nil {
		end := max(l.addrLimit, base)
		if next != nil {
			end = next.lo
		}
		return memory.Snapshot{
			BaseAddress: base,
			RegionSize:  uint64(end - base),
			Protect:     memory.PAGE_NOACCESS,
			State:       memory.MEM_FREE,
		}, nil
	}
	snap := memory.Snapshot{
		BaseAddress:       base,
		AllocationBase:    entry.lo,
		AllocationProtect: entry.protection(),
		RegionSize:        uint64(entry.hi - base),
		Protect:           entry.protection(),
		State:             memory.MEM_COMMIT,
		Type:              entry.kind(),
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	m := l.find(addr)
	if m == nil {
		return snap, nil
	}
	// The kernel may have merged our mapping with a neighbour, so the extent
	// comes from our own bookkeeping, clipped to what the kernel reports.
	i := int(uint64(base-m.Addr) / l.pageSize)
	j := i + 1
	for j < len(m.committed) && m.committed[j] == m.committed[i] {
		j++
	}
	end := min(m.Addr+uintptr(uint64(j)*l.pageSize), entry.hi)
	snap.AllocationBase = m.Addr
	snap.AllocationProtect = m.Prot
	snap.RegionSize = uint64(end - base)
	snap.Type = memory.MEM_PRIVATE
	if !m.committed[i] {
		snap.State = memory.MEM_RESERVE
		snap.Protect = memory.PAGE_UNKNOWN
	}
	return snap, nil
}

func (l *Linux) find(addr uintptr) *mapping {
	for _, start := range slices.Sorted(maps.Keys(l.maps)) {
		if m := l.maps[start]; m.Contains(addr) {
			return m
		}
	}
	return nil
}

func (l *Linux) span(addr uintptr, size uint64) (*mapping, int, int, error) {
	if size == 0 {
		return nil, 0, 0, memory.ErrArgumentInvalid
	}
	m := l.find(addr)
	if m == nil {
		return nil, 0, 0, memory.ErrRegionUnknown
	}
	start := memory.AlignDown(addr, uintptr(l.pageSize))
	end := memory.Align(addr+uintptr(size), uintptr(l.pageSize))
	lo, hi, ok := calcOverlap(m.Addr, m.End(), start, end)
	if !ok || lo != start || hi != end {
		return nil, 0, 0, memory.ErrArgumentInvalid
	}
	return m, int(uint64(start-m.Addr) / l.pageSize), int(uint64(end-m.Addr) / l.pageSize), nil
}

func (m *mapping) pages(first, last int, pageSize uint64) []byte {
	return m.data[uint64(first)*pageSize : uint64(last)*pageSize]
}

func unixProt(prot memory.Protection) int {
	var p int
	if prot.Readable() {
		p |= unix.PROT_READ
	}
	if prot.Writable() {
		p |= unix.PROT_WRITE
	}
	if prot.Executable() {
		p |= unix.PROT_EXEC
	}
	return p
}
