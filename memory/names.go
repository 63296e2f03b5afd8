package memory

import (
	"fmt"
	"strings"
)

var (
	protectionNames = map[Protection]string{
		PAGE_UNKNOWN:           "PAGE_UNKNOWN",
		PAGE_NOACCESS:          "PAGE_NOACCESS",
		PAGE_READONLY:          "PAGE_READONLY",
		PAGE_READWRITE:         "PAGE_READWRITE",
		PAGE_WRITECOPY:         "PAGE_WRITECOPY",
		PAGE_EXECUTE:           "PAGE_EXECUTE",
		PAGE_EXECUTE_READ:      "PAGE_EXECUTE_READ",
		PAGE_EXECUTE_READWRITE: "PAGE_EXECUTE_READWRITE",
		PAGE_EXECUTE_WRITECOPY: "PAGE_EXECUTE_WRITECOPY",
		PAGE_GUARD:             "PAGE_GUARD",
		PAGE_NOCACHE:           "PAGE_NOCACHE",
		PAGE_WRITECOMBINE:      "PAGE_WRITECOMBINE",
	}
	modifierOrder = [...]Protection{PAGE_GUARD, PAGE_NOCACHE, PAGE_WRITECOMBINE}

	stateNames = map[State]string{
		MEM_COMMIT:  "MEM_COMMIT",
		MEM_RESERVE: "MEM_RESERVE",
		MEM_FREE:    "MEM_FREE",
	}

	typeNames = map[Type]string{
		MEM_UNKNOWN_TYPE: "MEM_UNKNOWN_TYPE",
		MEM_IMAGE:        "MEM_IMAGE",
		MEM_MAPPED:       "MEM_MAPPED",
		MEM_PRIVATE:      "MEM_PRIVATE",
	}
)

func (p Protection) Known() bool {
	if _, ok := protectionNames[p]; ok {
		return true
	}
	base := p &^ pageModifiers
	_, ok := protectionNames[base]
	return ok && base != PAGE_UNKNOWN
}

// Base strips PAGE_GUARD, PAGE_NOCACHE and PAGE_WRITECOMBINE.
func (p Protection) Base() Protection {
	return p &^ pageModifiers
}

func (p Protection) String() string {
	if name, ok := protectionNames[p]; ok {
		return name
	}
	if !p.Known() {
		return fmt.Sprintf("PAGE_UNRECOGNIZED(0x%X)", uint32(p))
	}
	parts := []string{protectionNames[p.Base()]}
	for _, m := range modifierOrder {
		if p&m != 0 {
			parts = append(parts, protectionNames[m])
		}
	}
	return strings.Join(parts, "|")
}

func (s State) Known() bool {
	_, ok := stateNames[s]
	return ok
}

func (s State) String() string {
	if s.Known() {
		return stateNames[s]
	}
	return fmt.Sprintf("MEM_UNRECOGNIZED_STATE(0x%X)", uint32(s))
}

func (t Type) Known() bool {
	_, ok := typeNames[t]
	return ok
}

func (t Type) String() string {
	if t.Known() {
		return typeNames[t]
	}
	return fmt.Sprintf("MEM_UNRECOGNIZED_TYPE(0x%X)", uint32(t))
}

func (p Protection) Readable() bool {
	switch p.Base() {
	case PAGE_READONLY, PAGE_READWRITE, PAGE_WRITECOPY, PAGE_EXECUTE_READ, PAGE_EXECUTE_READWRITE, PAGE_EXECUTE_WRITECOPY:
		return true
	}
	return false
}

func (p Protection) Writable() bool {
	switch p.Base() {
	case PAGE_READWRITE, PAGE_WRITECOPY, PAGE_EXECUTE_READWRITE, PAGE_EXECUTE_WRITECOPY:
		return true
	}
	return false
}

func (p Protection) Executable() bool {
	switch p.Base() {
	case PAGE_EXECUTE, PAGE_EXECUTE_READ, PAGE_EXECUTE_READWRITE, PAGE_EXECUTE_WRITECOPY:
		return true
	}
	return false
}

func ProtectionOf(read, write, exec bool) Protection {
	switch {
	case exec && write:
		return PAGE_EXECUTE_READWRITE
	case exec && read:
		return PAGE_EXECUTE_READ
	case exec:
		return PAGE_EXECUTE
	case write:
		return PAGE_READWRITE
	case read:
		return PAGE_READONLY
	}
	return PAGE_NOACCESS
}
