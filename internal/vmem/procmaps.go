package vmem

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/wnxd/memstate/memory"
)

type mapsEntry struct {
	lo, hi            uintptr
	read, write, exec bool
	shared            bool
	path              string
}

func parseMaps(r io.Reader) ([]mapsEntry, error) {
	var entries []mapsEntry
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		} else if len(fields) < 5 {
			return nil, fmt.Errorf("maps: malformed line %q", scanner.Text())
		}
		lo, hi, ok := strings.Cut(fields[0], "-")
		if !ok {
			return nil, fmt.Errorf("maps: malformed range %q", fields[0])
		}
		start, err := strconv.ParseUint(lo, 16, 64)
		if err != nil {
			return nil, err
		}
		end, err := strconv.ParseUint(hi, 16, 64)
		if err != nil {
			return nil, err
		}
		perms := fields[1]
		if len(perms) < 4 {
			return nil, fmt.Errorf("maps: malformed perms %q", perms)
		}
		entry := mapsEntry{
			lo:     uintptr(start),
			hi:     uintptr(end),
			read:   perms[0] == 'r',
			write:  perms[1] == 'w',
			exec:   perms[2] == 'x',
			shared: perms[3] == 's',
		}
		if len(fields) > 5 {
			entry.path = strings.Join(fields[5:], " ")
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].lo < entries[j].lo })
	return entries, nil
}

// lookupMaps returns the entry containing addr, or nil and the first entry
// above addr.
func lookupMaps(entries []mapsEntry, addr uintptr) (*mapsEntry, *mapsEntry) {
	i := sort.Search(len(entries), func(i int) bool { return entries[i].hi > addr })
	if i == len(entries) {
		return nil, nil
	} else if entries[i].lo <= addr {
		return &entries[i], nil
	}
	return nil, &entries[i]
}

func (e *mapsEntry) protection() memory.Protection {
	return memory.ProtectionOf(e.read, e.write, e.exec)
}

func (e *mapsEntry) kind() memory.Type {
	switch {
	case e.path == "" || strings.HasPrefix(e.path, "["):
		if e.shared {
			return memory.MEM_MAPPED
		}
		return memory.MEM_PRIVATE
	case e.exec:
		return memory.MEM_IMAGE
	}
	return memory.MEM_MAPPED
}
