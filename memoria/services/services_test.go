package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/devices/disk"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/devices/palloc"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/filesys"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/models"
)

const (
	codeBase = uintptr(0x400000)
	mmapBase = uintptr(0x10000000)
)

func newTestMemory(t *testing.T, frames int, swapPages int) *VirtualMemory {
	t.Helper()
	pool, err := palloc.New(frames)
	if err != nil {
		t.Fatalf("Failed to create user pool: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	return NewVirtualMemory(pool, disk.NewMemDisk(uint32(swapPages*models.SectorsPerPage)), 0)
}

// newTestSpace crea un espacio de direcciones sin pila ni registro en vm.
func newTestSpace(vm *VirtualMemory, pid uint) *AddressSpace {
	return vm.newAddressSpace(pid)
}

func createTestFile(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mapped.bin")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}
	return path
}

func openInto(t *testing.T, as *AddressSpace, path string) int {
	t.Helper()
	file, err := filesys.Open(path)
	if err != nil {
		t.Fatalf("Failed to open file: %v", err)
	}
	return as.Files.Install(file)
}

func readUser(t *testing.T, as *AddressSpace, va uintptr, size int) []byte {
	t.Helper()
	buf := make([]byte, size)
	if err := as.ReadUser(va, buf); err != nil {
		t.Fatalf("Expected read at 0x%x to succeed, got: %v", va, err)
	}
	return buf
}

func writeUser(t *testing.T, as *AddressSpace, va uintptr, data []byte) {
	t.Helper()
	if err := as.WriteUser(va, data); err != nil {
		t.Fatalf("Expected write at 0x%x to succeed, got: %v", va, err)
	}
}
