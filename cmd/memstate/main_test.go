package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wnxd/memstate/internal/lifecycle"
	"github.com/wnxd/memstate/internal/vmem"
	"github.com/wnxd/memstate/memory"
)

func TestRunWritesLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), lifecycle.DefaultLogPath)
	var stdout bytes.Buffer
	run(&stdout, lifecycle.Config{LogPath: path, Manager: vmem.NewSimulator(4096)})
	if stdout.Len() != 0 {
		t.Fatalf("unexpected output %q", stdout.String())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(data), "\n"); n != 251 {
		t.Fatalf("log has %d lines, want 251", n)
	}
}

func TestRunPrintsFailures(t *testing.T) {
	sim := vmem.NewSimulator(4096)
	sim.Fail(memory.OpLock, memory.ErrNoAccess)
	var stdout bytes.Buffer
	run(&stdout, lifecycle.Config{
		LogPath: filepath.Join(t.TempDir(), lifecycle.DefaultLogPath),
		Manager: sim,
	})
	n := 0
	for _, line := range strings.Split(stdout.String(), "\n") {
		if strings.HasPrefix(line, "Lock ") {
			n++
		}
	}
	if n != 5 {
		t.Fatalf("got %d lock failures on stdout, want 5:\n%s", n, stdout.String())
	}
}

func TestRunPrintsRunError(t *testing.T) {
	var stdout bytes.Buffer
	run(&stdout, lifecycle.Config{
		LogPath: filepath.Join(t.TempDir(), "missing", lifecycle.DefaultLogPath),
		Manager: vmem.NewSimulator(4096),
	})
	if !strings.Contains(stdout.String(), "missing") {
		t.Fatalf("run error not printed, got %q", stdout.String())
	}
}
