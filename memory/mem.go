package memory

type Protection uint32

const (
	PAGE_UNKNOWN           Protection = 0x000
	PAGE_NOACCESS          Protection = 0x001
	PAGE_READONLY          Protection = 0x002
	PAGE_READWRITE         Protection = 0x004
	PAGE_WRITECOPY         Protection = 0x008
	PAGE_EXECUTE           Protection = 0x010
	PAGE_EXECUTE_READ      Protection = 0x020
	PAGE_EXECUTE_READWRITE Protection = 0x040
	PAGE_EXECUTE_WRITECOPY Protection = 0x080
	PAGE_GUARD             Protection = 0x100
	PAGE_NOCACHE           Protection = 0x200
	PAGE_WRITECOMBINE      Protection = 0x400

	pageModifiers = PAGE_GUARD | PAGE_NOCACHE | PAGE_WRITECOMBINE
)

type State uint32

const (
	MEM_COMMIT  State = 0x01000
	MEM_RESERVE State = 0x02000
	MEM_FREE    State = 0x10000
)

type Type uint32

const (
	MEM_UNKNOWN_TYPE Type = 0x0000000
	MEM_PRIVATE      Type = 0x0020000
	MEM_MAPPED       Type = 0x0040000
	MEM_IMAGE        Type = 0x1000000
)

type Snapshot struct {
	BaseAddress       uintptr    `report:"BaseAddress"`
	AllocationBase    uintptr    `report:"AllocationBase"`
	AllocationProtect Protection `report:"AllocationProtect"`
	RegionSize        uint64     `report:"RegionSize / PageSize,pages"`
	Protect           Protection `report:"Protect"`
	State             State      `report:"State"`
	Type              Type       `report:"Type"`
}

type Region struct {
	Addr uintptr
	Size uint64
	Prot Protection
}

func (r Region) End() uintptr {
	return r.Addr + uintptr(r.Size)
}

func (r Region) Contains(addr uintptr) bool {
	return addr >= r.Addr && addr < r.End()
}

type ProtectionMode struct {
	Protection Protection
	Name       string
}

var DefaultModes = []ProtectionMode{
	{PAGE_READONLY, "PAGE_READONLY"},
	{PAGE_READWRITE, "PAGE_READWRITE"},
	{PAGE_EXECUTE, "PAGE_EXECUTE"},
	{PAGE_EXECUTE_READ, "PAGE_EXECUTE_READ"},
	{PAGE_EXECUTE_READWRITE, "PAGE_EXECUTE_READWRITE"},
}
