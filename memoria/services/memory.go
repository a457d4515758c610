package services

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/devices/disk"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/mmu"
)

// VirtualMemory reúne la tabla de frames y el swap compartidos y los espacios de
// direcciones de los procesos vivos.
type VirtualMemory struct {
	Frames *FrameTable
	Swap   *SwapTable

	mu     sync.RWMutex
	spaces map[uint]*AddressSpace
}

func NewVirtualMemory(pool UserPool, swapDevice disk.Device, swapDelay time.Duration) *VirtualMemory {
	return &VirtualMemory{
		Frames: NewFrameTable(pool),
		Swap:   NewSwapTable(swapDevice, swapDelay),
		spaces: make(map[uint]*AddressSpace),
	}
}

func (vm *VirtualMemory) newAddressSpace(pid uint) *AddressSpace {
	return NewAddressSpace(pid, vm.Frames, vm.Swap, mmu.NewPageMap())
}

// CreateProcess crea el espacio de direcciones del proceso con su primera página de pila.
func (vm *VirtualMemory) CreateProcess(pid uint) (*AddressSpace, error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	if _, exists := vm.spaces[pid]; exists {
		return nil, fmt.Errorf("%w: %d", ErrProcessExists, pid)
	}

	as := vm.newAddressSpace(pid)
	if err := as.SetupStack(); err != nil {
		as.Destroy()
		return nil, fmt.Errorf("no se pudo crear la pila del proceso %d: %w", pid, err)
	}
	vm.spaces[pid] = as

	slog.Info(fmt.Sprintf("## PID: %d - Proceso Creado - Pila: 0x%x", pid, as.StackBottom()))
	return as, nil
}

func (vm *VirtualMemory) Process(pid uint) (*AddressSpace, error) {
	vm.mu.RLock()
	defer vm.mu.RUnlock()

	as, ok := vm.spaces[pid]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownProcess, pid)
	}
	return as, nil
}

// Fork crea el espacio de direcciones de child como copia del de parent.
func (vm *VirtualMemory) Fork(parent, child uint) (*AddressSpace, error) {
	src, err := vm.Process(parent)
	if err != nil {
		return nil, err
	}

	vm.mu.Lock()
	if _, exists := vm.spaces[child]; exists {
		vm.mu.Unlock()
		return nil, fmt.Errorf("%w: %d", ErrProcessExists, child)
	}
	dst := vm.newAddressSpace(child)
	vm.spaces[child] = dst
	vm.mu.Unlock()

	if err := CopyAddressSpace(dst, src); err != nil {
		vm.mu.Lock()
		delete(vm.spaces, child)
		vm.mu.Unlock()
		dst.Destroy()
		return nil, err
	}

	slog.Info(fmt.Sprintf("## PID: %d - Fork - Hijo: %d - Páginas: %d", parent, child, dst.spt.Len()))
	return dst, nil
}

// Exit destruye el espacio de direcciones del proceso.
func (vm *VirtualMemory) Exit(pid uint) error {
	vm.mu.Lock()
	as, ok := vm.spaces[pid]
	delete(vm.spaces, pid)
	vm.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownProcess, pid)
	}
	as.Destroy()
	return nil
}

func (vm *VirtualMemory) Pids() []uint {
	vm.mu.RLock()
	defer vm.mu.RUnlock()

	pids := make([]uint, 0, len(vm.spaces))
	for pid := range vm.spaces {
		pids = append(pids, pid)
	}
	sort.Slice(pids, func(i, j int) bool { return pids[i] < pids[j] })
	return pids
}
