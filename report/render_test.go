package report

import (
	"testing"

	"github.com/wnxd/memstate/memory"
)

func TestRendererSnapshot(t *testing.T) {
	r := NewRenderer(4096)
	snap := memory.Snapshot{
		BaseAddress:       0x1D2A6F10000,
		AllocationBase:    0x1D2A6F10000,
		AllocationProtect: memory.PAGE_NOACCESS,
		RegionSize:        3 * 4096,
		Protect:           memory.PAGE_EXECUTE_READ,
		State:             memory.MEM_COMMIT,
		Type:              memory.MEM_PRIVATE,
	}
	want := []string{
		"             BaseAddress 000001D2A6F10000",
		"          AllocationBase 000001D2A6F10000",
		"       AllocationProtect PAGE_NOACCESS",
		"   RegionSize / PageSize 3",
		"                 Protect PAGE_EXECUTE_READ",
		"                   State MEM_COMMIT",
		"                    Type MEM_PRIVATE",
	}
	got := r.Snapshot(&snap)
	if len(got) != len(want) {
		t.Fatalf("got %d lines, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
	// second call goes through the cached layout
	if again := r.Snapshot(&snap); again[3] != want[3] {
		t.Errorf("cached render = %q", again[3])
	}
}

func TestRendererUnrecognizedCodes(t *testing.T) {
	r := NewRenderer(4096)
	snap := memory.Snapshot{
		AllocationProtect: memory.Protection(0x8000),
		Protect:           memory.PAGE_READWRITE | memory.PAGE_GUARD,
		State:             memory.State(0x4000),
		Type:              memory.Type(0x80000),
	}
	got := r.Snapshot(&snap)
	want := map[int]string{
		2: "       AllocationProtect PAGE_UNRECOGNIZED(0x8000)",
		4: "                 Protect PAGE_READWRITE|PAGE_GUARD",
		5: "                   State MEM_UNRECOGNIZED_STATE(0x4000)",
		6: "                    Type MEM_UNRECOGNIZED_TYPE(0x80000)",
	}
	for i, line := range want {
		if got[i] != line {
			t.Errorf("line %d = %q, want %q", i, got[i], line)
		}
	}
}

func TestRendererHeaders(t *testing.T) {
	r := NewRenderer(65536)
	if got := r.PageSize(); got != "                PageSize 65536" {
		t.Errorf("PageSize() = %q", got)
	}
	if got := r.Case("PAGE_EXECUTE"); len(got) != 2 || got[0] != "" || got[1] != "Case: PAGE_EXECUTE" {
		t.Errorf("Case() = %q", got)
	}
}

type tagged struct {
	Name    string `report:"Name"`
	skipped int
	Hidden  int    `report:"-"`
	Pages   uint64 `report:"Pages,pages"`
	Raw     uint64 `report:"Raw"`
}

func TestRendererTags(t *testing.T) {
	r := NewRenderer(0x1000)
	got := r.fields(&tagged{Name: "x", skipped: 1, Hidden: 2, Pages: 0x3000, Raw: 0x3000})
	want := []string{
		Field("Name", "x"),
		Field("Pages", 3),
		Field("Raw", 0x3000),
	}
	if len(got) != len(want) {
		t.Fatalf("got %q", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}
