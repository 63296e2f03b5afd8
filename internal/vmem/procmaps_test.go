package vmem

import (
	"strings"
	"testing"

	"github.com/wnxd/memstate/memory"
)

const sampleMaps = `00400000-0045c000 r-xp 00000000 08:01 1234                               /usr/bin/memstate
0045c000-0045e000 rw-p 0005c000 08:01 1234                               /usr/bin/memstate
c000000000-c000400000 rw-p 00000000 00:00 0
7f0000000000-7f0000003000 ---p 00000000 00:00 0
7f0000003000-7f0000004000 rw-s 00000000 00:05 42                         /dev/shm/buffer with space
7ffd00000000-7ffd00021000 rw-p 00000000 00:00 0                          [stack]
`

func TestParseMaps(t *testing.T) {
	entries, err := parseMaps(strings.NewReader(sampleMaps))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 6 {
		t.Fatalf("parsed %d entries", len(entries))
	}
	if e := entries[4]; e.path != "/dev/shm/buffer with space" || !e.shared {
		t.Fatalf("entry 4 = %+v", e)
	}

	tests := []struct {
		addr uintptr
		prot memory.Protection
		typ  memory.Type
	}{
		{0x400010, memory.PAGE_EXECUTE_READ, memory.MEM_IMAGE},
		{0x45c000, memory.PAGE_READWRITE, memory.MEM_MAPPED},
		{0xc000001000, memory.PAGE_READWRITE, memory.MEM_PRIVATE},
		{0x7f0000001000, memory.PAGE_NOACCESS, memory.MEM_PRIVATE},
		{0x7f0000003000, memory.PAGE_READWRITE, memory.MEM_MAPPED},
		{0x7ffd00000000, memory.PAGE_READWRITE, memory.MEM_PRIVATE},
	}
	for _, tt := range tests {
		e, _ := lookupMaps(entries, tt.addr)
		if e == nil {
			t.Fatalf("no entry for %X", tt.addr)
		}
		if e.protection() != tt.prot || e.kind() != tt.typ {
			t.Errorf("%X: %s/%s, want %s/%s", tt.addr, e.protection(), e.kind(), tt.prot, tt.typ)
		}
	}

	e, next := lookupMaps(entries, 0x500000)
	if e != nil || next == nil || next.lo != 0xc000000000 {
		t.Fatalf("gap lookup = %v, %v", e, next)
	}
	if e, next = lookupMaps(entries, 0x7fff00000000); e != nil || next != nil {
		t.Fatalf("lookup above all = %v, %v", e, next)
	}
}

func TestParseMapsMalformed(t *testing.T) {
	tests := []string{
		"00400000 r-xp 00000000 08:01 1234\n",
		"zz-0045c000 r-xp 00000000 08:01 1234\n",
		"00400000-0045c000 r 00000000 08:01 1234\n",
		"00400000-0045c000\n",
	}
	for _, input := range tests {
		if _, err := parseMaps(strings.NewReader(input)); err == nil {
			t.Errorf("parseMaps(%q) succeeded", input)
		}
	}
}
