package services

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/filesys"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/models"
)

func TestMmap_ShortFileCoversWholeLength(t *testing.T) {
	vm := newTestMemory(t, 4, 4)
	as := newTestSpace(vm, 1)
	fd := openInto(t, as, createTestFile(t, []byte{'x'}))

	addr, err := as.Mmap(mmapBase, 10000, true, fd, 0)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if addr != mmapBase {
		t.Errorf("Expected mapping at 0x%x, got 0x%x", mmapBase, addr)
	}
	if as.spt.Len() != 3 {
		t.Errorf("Expected 3 pages, got %d", as.spt.Len())
	}

	first := readUser(t, as, mmapBase, models.PageSize)
	if first[0] != 'x' {
		t.Errorf("Expected first byte 'x', got %q", first[0])
	}
	if !bytes.Equal(first[1:], make([]byte, models.PageSize-1)) {
		t.Error("Expected the rest of the first page to be zero")
	}
	if last := readUser(t, as, mmapBase+2*models.PageSize, 16); !bytes.Equal(last, make([]byte, 16)) {
		t.Error("Expected the last page to be zero")
	}

	if err := as.ReadUser(mmapBase+3*models.PageSize, make([]byte, 1)); !errors.Is(err, ErrSegFault) {
		t.Errorf("Expected access past the mapping to fail, got: %v", err)
	}
}

func TestMunmap_WritesBackOnlyModifiedPages(t *testing.T) {
	vm := newTestMemory(t, 4, 4)
	as := newTestSpace(vm, 1)

	content := append(bytes.Repeat([]byte{'a'}, models.PageSize), bytes.Repeat([]byte{'b'}, models.PageSize)...)
	path := createTestFile(t, content)
	fd := openInto(t, as, path)

	if _, err := as.Mmap(mmapBase, int64(len(content)), true, fd, 0); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	readUser(t, as, mmapBase, 1)
	writeUser(t, as, mmapBase+models.PageSize, []byte("B"))

	// Si la primera página se escribiera de vuelta, pisaría este cambio externo
	external := bytes.Repeat([]byte{'z'}, models.PageSize)
	if err := os.WriteFile(path, append(external, content[models.PageSize:]...), 0644); err != nil {
		t.Fatalf("Failed to rewrite file: %v", err)
	}

	if err := as.Munmap(mmapBase); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	result, _ := os.ReadFile(path)
	if result[0] != 'z' {
		t.Errorf("Expected clean page not to be written back, got %q", result[0])
	}
	if result[models.PageSize] != 'B' {
		t.Errorf("Expected dirty page to be written back, got %q", result[models.PageSize])
	}
	if as.Metrics.FileWrites.Load() != 1 {
		t.Errorf("Expected 1 file write, got %d", as.Metrics.FileWrites.Load())
	}
	if as.spt.Len() != 0 {
		t.Errorf("Expected no pages after munmap, got %d", as.spt.Len())
	}
	if vm.Frames.Len() != 0 {
		t.Errorf("Expected frames to be released, got %d", vm.Frames.Len())
	}
	if len(as.Mappings()) != 0 {
		t.Errorf("Expected no mappings, got %v", as.Mappings())
	}
}

func TestMunmap_Twice(t *testing.T) {
	vm := newTestMemory(t, 2, 2)
	as := newTestSpace(vm, 1)
	fd := openInto(t, as, createTestFile(t, []byte("contenido")))

	as.Mmap(mmapBase, 9, true, fd, 0)
	if err := as.Munmap(mmapBase); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if err := as.Munmap(mmapBase); err != nil {
		t.Errorf("Expected second munmap to be a no-op, got: %v", err)
	}

	// munmap sobre una página que no es de un mapeo tampoco hace nada
	as.AllocatePage(KindAnon, codeBase, true)
	if err := as.Munmap(codeBase); err != nil {
		t.Errorf("Expected no error, got: %v", err)
	}
	if as.spt.Find(codeBase) == nil {
		t.Error("Expected anonymous page to survive munmap")
	}
}

func TestMunmap_FromAddressInsideMapping(t *testing.T) {
	vm := newTestMemory(t, 4, 4)
	as := newTestSpace(vm, 1)
	fd := openInto(t, as, createTestFile(t, bytes.Repeat([]byte{'m'}, 3*models.PageSize)))

	if _, err := as.Mmap(mmapBase, 3*models.PageSize, true, fd, 0); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	readUser(t, as, mmapBase, 1)

	if err := as.Munmap(mmapBase + models.PageSize + 10); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if as.spt.Find(mmapBase) == nil {
		t.Error("Expected the page below the unmapped address to survive")
	}
	for _, va := range []uintptr{mmapBase + models.PageSize, mmapBase + 2*models.PageSize} {
		if as.spt.Find(va) != nil {
			t.Errorf("Expected page 0x%x to be unmapped", va)
		}
	}
	if got := readUser(t, as, mmapBase, 1); got[0] != 'm' {
		t.Errorf("Expected surviving page to keep its content, got %q", got[0])
	}
	if mappings := as.Mappings(); len(mappings) != 1 || mappings[0] != mmapBase {
		t.Errorf("Expected mapping at 0x%x to remain, got %v", mmapBase, mappings)
	}

	if err := as.Munmap(mmapBase); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if as.spt.Len() != 0 || len(as.Mappings()) != 0 {
		t.Errorf("Expected mapping to be gone, got %d pages and %v", as.spt.Len(), as.Mappings())
	}
}

func TestMunmap_EvictedDirtyPageIsWrittenOnEviction(t *testing.T) {
	vm := newTestMemory(t, 1, 1)
	as := newTestSpace(vm, 1)
	path := createTestFile(t, bytes.Repeat([]byte{'a'}, models.PageSize))
	fd := openInto(t, as, path)

	as.Mmap(mmapBase, models.PageSize, true, fd, 0)
	writeUser(t, as, mmapBase, []byte("X"))

	as.AllocatePage(KindAnon, codeBase, true)
	if err := as.ClaimPage(codeBase); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if vm.Swap.Used() != 0 {
		t.Error("Expected file page eviction not to use swap")
	}

	result, _ := os.ReadFile(path)
	if result[0] != 'X' {
		t.Errorf("Expected evicted dirty page to be written to the file, got %q", result[0])
	}

	if got := readUser(t, as, mmapBase, 1); got[0] != 'X' {
		t.Errorf("Expected page to be reloaded from the file, got %q", got[0])
	}
}

func TestMmap_Validation(t *testing.T) {
	vm := newTestMemory(t, 2, 2)
	as := newTestSpace(vm, 1)
	fd := openInto(t, as, createTestFile(t, []byte("contenido")))
	as.AllocatePage(KindAnon, mmapBase+models.PageSize, true)

	cases := []struct {
		name     string
		addr     uintptr
		length   int64
		fd       int
		offset   int64
		expected error
	}{
		{"offset desalineado", mmapBase + 0x10000, 100, fd, 1, ErrMisalignedOffset},
		{"dirección nula", 0, 100, fd, 0, ErrBadAddress},
		{"dirección desalineada", mmapBase + 0x10010, 100, fd, 0, ErrBadAddress},
		{"dirección de kernel", models.KernBase, 100, fd, 0, ErrBadAddress},
		{"largo cero", mmapBase + 0x10000, 0, fd, 0, ErrBadLength},
		{"superposición", mmapBase, 2 * models.PageSize, fd, 0, ErrOverlap},
		{"stdin", mmapBase + 0x10000, 100, filesys.Stdin, 0, ErrStdStream},
		{"stdout", mmapBase + 0x10000, 100, filesys.Stdout, 0, ErrStdStream},
		{"fd inexistente", mmapBase + 0x10000, 100, 99, 0, ErrBadFd},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := as.Mmap(tc.addr, tc.length, true, tc.fd, tc.offset)
			if !errors.Is(err, tc.expected) {
				t.Errorf("Expected %v, got: %v", tc.expected, err)
			}
		})
	}

	if as.spt.Len() != 1 {
		t.Errorf("Expected rejected mappings not to create pages, got %d pages", as.spt.Len())
	}
}

func TestMmap_SurvivesClosingDescriptor(t *testing.T) {
	vm := newTestMemory(t, 2, 2)
	as := newTestSpace(vm, 1)
	fd := openInto(t, as, createTestFile(t, []byte("persistente")))

	as.Mmap(mmapBase, 11, false, fd, 0)
	if err := as.Files.Close(fd); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if got := readUser(t, as, mmapBase, 11); string(got) != "persistente" {
		t.Errorf("Expected mapping to keep its own file handle, got %q", string(got))
	}
	if err := as.WriteUser(mmapBase, []byte("x")); !errors.Is(err, ErrSegFault) {
		t.Errorf("Expected write to a read-only mapping to fail, got: %v", err)
	}
}

func TestMmap_WithOffset(t *testing.T) {
	vm := newTestMemory(t, 2, 2)
	as := newTestSpace(vm, 1)

	content := append(bytes.Repeat([]byte{'a'}, models.PageSize), []byte("segunda")...)
	fd := openInto(t, as, createTestFile(t, content))

	if _, err := as.Mmap(mmapBase, models.PageSize, true, fd, models.PageSize); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if got := readUser(t, as, mmapBase, 7); string(got) != "segunda" {
		t.Errorf("Expected content from the offset, got %q", string(got))
	}
}
