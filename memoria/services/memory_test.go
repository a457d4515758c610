package services

import (
	"errors"
	"os"
	"testing"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/models"
)

func TestVirtualMemory_Lifecycle(t *testing.T) {
	vm := newTestMemory(t, 4, 4)

	as, err := vm.CreateProcess(3)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if as.StackBottom() != models.UserStack-models.PageSize {
		t.Errorf("Expected stack bottom 0x%x, got 0x%x", models.UserStack-models.PageSize, as.StackBottom())
	}
	if vm.Frames.Len() != 1 {
		t.Errorf("Expected the first stack page to be resident, got %d frames", vm.Frames.Len())
	}

	if _, err := vm.CreateProcess(3); !errors.Is(err, ErrProcessExists) {
		t.Errorf("Expected ErrProcessExists, got: %v", err)
	}
	if got, err := vm.Process(3); err != nil || got != as {
		t.Errorf("Expected to find process 3, got %v (%v)", got, err)
	}
	if pids := vm.Pids(); len(pids) != 1 || pids[0] != 3 {
		t.Errorf("Expected pids [3], got %v", pids)
	}

	if err := vm.Exit(3); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if _, err := vm.Process(3); !errors.Is(err, ErrUnknownProcess) {
		t.Errorf("Expected ErrUnknownProcess, got: %v", err)
	}
	if err := vm.Exit(3); !errors.Is(err, ErrUnknownProcess) {
		t.Errorf("Expected ErrUnknownProcess, got: %v", err)
	}
}

func TestVirtualMemory_ForkErrors(t *testing.T) {
	vm := newTestMemory(t, 4, 4)
	newStackProcess(t, vm, 1)

	if _, err := vm.Fork(9, 2); !errors.Is(err, ErrUnknownProcess) {
		t.Errorf("Expected ErrUnknownProcess, got: %v", err)
	}
	if _, err := vm.Fork(1, 1); !errors.Is(err, ErrProcessExists) {
		t.Errorf("Expected ErrProcessExists, got: %v", err)
	}
}

func TestDumpProcess(t *testing.T) {
	vm := newTestMemory(t, 4, 4)
	as := newStackProcess(t, vm, 5)
	as.AllocatePage(KindAnon, codeBase, true)
	writeUser(t, as, codeBase, []byte("dump"))

	path, err := DumpProcess(as, t.TempDir())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Expected dump file, got: %v", err)
	}
	if len(content) != as.spt.Len()*models.PageSize {
		t.Errorf("Expected %d bytes, got %d", as.spt.Len()*models.PageSize, len(content))
	}
	if string(content[:4]) != "dump" {
		t.Errorf("Expected the first page to start with 'dump', got %q", string(content[:4]))
	}
}
