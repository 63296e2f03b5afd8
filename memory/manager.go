package memory

type Manager interface {
	PageSize() uint64
	Reserve(size uint64) (uintptr, error)
	Commit(addr uintptr, size uint64, prot Protection) (uintptr, error)
	Lock(addr uintptr, size uint64) error
	Unlock(addr uintptr, size uint64) error
	Decommit(addr uintptr, size uint64) error
	Release(addr uintptr) error
	Query(addr uintptr) (Snapshot, error)
}
