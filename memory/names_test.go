package memory

import "testing"

func TestProtectionString(t *testing.T) {
	tests := []struct {
		prot Protection
		want string
	}{
		{PAGE_UNKNOWN, "PAGE_UNKNOWN"},
		{PAGE_NOACCESS, "PAGE_NOACCESS"},
		{PAGE_READONLY, "PAGE_READONLY"},
		{PAGE_EXECUTE_READWRITE, "PAGE_EXECUTE_READWRITE"},
		{PAGE_GUARD, "PAGE_GUARD"},
		{PAGE_READWRITE | PAGE_GUARD, "PAGE_READWRITE|PAGE_GUARD"},
		{PAGE_EXECUTE_READ | PAGE_WRITECOMBINE | PAGE_NOCACHE, "PAGE_EXECUTE_READ|PAGE_NOCACHE|PAGE_WRITECOMBINE"},
		{Protection(0x1234), "PAGE_UNRECOGNIZED(0x1234)"},
		{PAGE_GUARD | PAGE_NOCACHE, "PAGE_UNRECOGNIZED(0x300)"},
	}
	for _, tt := range tests {
		if got := tt.prot.String(); got != tt.want {
			t.Errorf("Protection(0x%X).String() = %q, want %q", uint32(tt.prot), got, tt.want)
		}
	}
}

func TestStateAndTypeString(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{MEM_COMMIT.String(), "MEM_COMMIT"},
		{MEM_RESERVE.String(), "MEM_RESERVE"},
		{MEM_FREE.String(), "MEM_FREE"},
		{State(0x4000).String(), "MEM_UNRECOGNIZED_STATE(0x4000)"},
		{MEM_UNKNOWN_TYPE.String(), "MEM_UNKNOWN_TYPE"},
		{MEM_PRIVATE.String(), "MEM_PRIVATE"},
		{MEM_MAPPED.String(), "MEM_MAPPED"},
		{MEM_IMAGE.String(), "MEM_IMAGE"},
		{Type(0x80000).String(), "MEM_UNRECOGNIZED_TYPE(0x80000)"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
	if State(7).Known() || !MEM_FREE.Known() || Type(7).Known() || !MEM_IMAGE.Known() {
		t.Error("Known mismatch")
	}
}

func TestProtectionAccess(t *testing.T) {
	tests := []struct {
		prot              Protection
		read, write, exec bool
	}{
		{PAGE_NOACCESS, false, false, false},
		{PAGE_READONLY, true, false, false},
		{PAGE_READWRITE, true, true, false},
		{PAGE_EXECUTE, false, false, true},
		{PAGE_EXECUTE_READ, true, false, true},
		{PAGE_EXECUTE_READWRITE, true, true, true},
	}
	for _, tt := range tests {
		if tt.prot.Readable() != tt.read || tt.prot.Writable() != tt.write || tt.prot.Executable() != tt.exec {
			t.Errorf("%s access mismatch", tt.prot)
		}
		if got := ProtectionOf(tt.read, tt.write, tt.exec); got != tt.prot {
			t.Errorf("ProtectionOf(%v, %v, %v) = %s, want %s", tt.read, tt.write, tt.exec, got, tt.prot)
		}
	}
	if !(PAGE_READWRITE | PAGE_GUARD).Writable() {
		t.Error("modifier bits hide access")
	}
}

func TestDefaultModes(t *testing.T) {
	for _, mode := range DefaultModes {
		if mode.Protection.String() != mode.Name {
			t.Errorf("mode %s has protection %s", mode.Name, mode.Protection)
		}
	}
	if len(DefaultModes) != 5 {
		t.Fatalf("%d default modes", len(DefaultModes))
	}
}

func TestAlign(t *testing.T) {
	if Align(uint64(1), 4096) != 4096 || Align(uint64(4096), 4096) != 4096 || Align(uintptr(0), 4096) != 0 {
		t.Error("Align")
	}
	if AlignDown(uintptr(0x401FFF), 0x1000) != 0x401000 || AlignDown(8192, 4096) != 8192 {
		t.Error("AlignDown")
	}
	r := Region{Addr: 0x1000, Size: 0x2000}
	if !r.Contains(0x1000) || !r.Contains(0x2FFF) || r.Contains(0x3000) || r.End() != 0x3000 {
		t.Error("Region bounds")
	}
}
