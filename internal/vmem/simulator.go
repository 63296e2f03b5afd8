package vmem

import (
	"maps"
	"slices"
	"sync"

	"github.com/wnxd/memstate/memory"
)

const (
	simBase        = 0x400000
	simLimit       = 0x7FFF0000
	simGranularity = 0x10000
)

type Simulator struct {
	pageSize uint64
	mapAddr  uintptr
	mu       sync.Mutex
	allocs   map[uintptr]*allocation
	faults   map[string]error
	events   []string
}

type allocation struct {
	memory.Region
	pages []page
}

type page struct {
	state  memory.State
	prot   memory.Protection
	locked bool
}

func NewSimulator(pageSize uint64) *Simulator {
	return &Simulator{
		pageSize: pageSize,
		mapAddr:  simBase,
		allocs:   make(map[uintptr]*allocation),
		faults:   make(map[string]error),
	}
}

// Fail makes every later call of op return err. A nil err clears the fault.
func (s *Simulator) Fail(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.faults, op)
	} else {
		s.faults[op] = err
	}
}

func (s *Simulator) Events() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.events)
}

func (s *Simulator) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.allocs)
}

func (s *Simulator) PageSize() uint64 {
	return s.pageSize
}

func (s *Simulator) Reserve(size uint64) (uintptr, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(memory.OpReserve, 0, size); err != nil {
		return 0, err
	} else if size == 0 {
		return 0, opError(memory.OpReserve, 0, size, memory.ErrArgumentInvalid)
	}
	size = memory.Align(size, s.pageSize)
	addr := s.mapAddr
	s.mapAddr += uintptr(memory.Align(size, simGranularity))
	a := &allocation{
		Region: memory.Region{Addr: addr, Size: size, Prot: memory.PAGE_NOACCESS},
		pages:  make([]page, size/s.pageSize),
	}
	for i := range a.pages {
		a.pages[i].state = memory.MEM_RESERVE
	}
	s.allocs[addr] = a
	return addr, nil
}

func (s *Simulator) Commit(addr uintptr, size uint64, prot memory.Protection) (uintptr, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(memory.OpCommit, addr, size); err != nil {
		return 0, err
	} else if !prot.Known() || prot.Base() == memory.PAGE_UNKNOWN {
		return 0, opError(memory.OpCommit, addr, size, memory.ErrArgumentInvalid)
	}
	a, first, last, err := s.span(addr, size)
	if err != nil {
		return 0, opError(memory.OpCommit, addr, size, err)
	}
	for i := first; i < last; i++ {
		a.pages[i].state = memory.MEM_COMMIT
		a.pages[i].prot = prot
	}
	return a.Addr + uintptr(uint64(first)*s.pageSize), nil
}

func (s *Simulator) Lock(addr uintptr, size uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(memory.OpLock, addr, size); err != nil {
		return err
	}
	a, first, last, err := s.span(addr, size)
	if err != nil {
		return opError(memory.OpLock, addr, size, err)
	}
	for _, p := range a.pages[first:last] {
		if p.state != memory.MEM_COMMIT {
			return opError(memory.OpLock, addr, size, memory.ErrNotCommitted)
		} else if p.prot.Base() == memory.PAGE_NOACCESS {
			return opError(memory.OpLock, addr, size, memory.ErrNoAccess)
		}
	}
	for i := first; i < last; i++ {
		a.pages[i].locked = true
	}
	return nil
}

func (s *Simulator) Unlock(addr uintptr, size uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(memory.OpUnlock, addr, size); err != nil {
		return err
	}
	a, first, last, err := s.span(addr, size)
	if err != nil {
		return opError(memory.OpUnlock, addr, size, err)
	}
	for _, p := range a.pages[first:last] {
		if !p.locked {
			return opError(memory.OpUnlock, addr, size, memory.ErrNotLocked)
		}
	}
	for i := first; i < last; i++ {
		a.pages[i].locked = false
	}
	return nil
}

func (s *Simulator) Decommit(addr uintptr, size uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(memory.OpDecommit, addr, size); err != nil {
		return err
	}
	a, first, last, err := s.span(addr, size)
	if err != nil {
		return opError(memory.OpDecommit, addr, size, err)
	}
	for i := first; i < last; i++ {
		a.pages[i] = page{state: memory.MEM_RESERVE}
	}
	return nil
}

func (s *Simulator) Release(addr uintptr) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(memory.OpRelease, addr, 0); err != nil {
		return err
	} else if _, ok := s.allocs[addr]; !ok {
		return opError(memory.OpRelease, addr, 0, memory.ErrRegionUnknown)
	}
	delete(s.allocs, addr)
	return nil
}

func (s *Simulator) Query(addr uintptr) (memory.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(memory.OpQuery, addr, 0); err != nil {
		return memory.Snapshot{}, err
	}
	base := memory.AlignDown(addr, uintptr(s.pageSize))
	a := s.find(addr)
	if a == nil {
		end := uintptr(simLimit)
		for _, start := range slices.Sorted(maps.Keys(s.allocs)) {
			if start > base {
				end = start
				break
			}
		}
		return memory.Snapshot{
			BaseAddress: base,
			RegionSize:  uint64(end - base),
			Protect:     memory.PAGE_NOACCESS,
			State:       memory.MEM_FREE,
		}, nil
	}
	i := int(uint64(base-a.Addr) / s.pageSize)
	p := a.pages[i]
	j := i + 1
	for j < len(a.pages) && a.pages[j].state == p.state && a.pages[j].prot == p.prot {
		j++
	}
	return memory.Snapshot{
		BaseAddress:       base,
		AllocationBase:    a.Addr,
		AllocationProtect: a.Prot,
		RegionSize:        uint64(j-i) * s.pageSize,
		Protect:           p.prot,
		State:             p.state,
		Type:              memory.MEM_PRIVATE,
	}, nil
}

func (s *Simulator) enter(op string, addr uintptr, size uint64) error {
	s.events = append(s.events, op)
	if err, ok := s.faults[op]; ok {
		return opError(op, addr, size, err)
	}
	return nil
}

func (s *Simulator) find(addr uintptr) *allocation {
	for _, start := range slices.Sorted(maps.Keys(s.allocs)) {
		if a := s.allocs[start]; a.Contains(addr) {
			return a
		}
	}
	return nil
}

func (s *Simulator) span(addr uintptr, size uint64) (*allocation, int, int, error) {
	if size == 0 {
		return nil, 0, 0, memory.ErrArgumentInvalid
	}
	a := s.find(addr)
	if a == nil {
		return nil, 0, 0, memory.ErrRegionUnknown
	}
	start := memory.AlignDown(addr, uintptr(s.pageSize))
	end := memory.Align(addr+uintptr(size), uintptr(s.pageSize))
	lo, hi, ok := calcOverlap(a.Addr, a.End(), start, end)
	if !ok || lo != start || hi != end {
		return nil, 0, 0, memory.ErrArgumentInvalid
	}
	return a, int(uint64(start-a.Addr) / s.pageSize), int(uint64(end-a.Addr) / s.pageSize), nil
}
