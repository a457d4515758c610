package services

import (
	"fmt"
	"log/slog"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/models"
)

// HandleFault resuelve un fallo de página en addr. Devuelve false si el fallo es fatal
// para el proceso. user indica si ocurrió en modo usuario; si no, la decisión de
// crecer la pila usa el rsp guardado por EnterKernel en lugar de rsp.
func (as *AddressSpace) HandleFault(addr uintptr, user, write, notPresent bool, rsp uintptr) bool {
	as.Metrics.PageFaults.Add(1)

	if addr == 0 || models.IsKernelVaddr(addr) {
		slog.Debug(fmt.Sprintf("## PID: %d - Fallo en dirección inválida 0x%x", as.Pid, addr))
		return false
	}
	if !notPresent {
		slog.Debug(fmt.Sprintf("## PID: %d - Violación de protección en 0x%x", as.Pid, addr))
		return false
	}
	if !user {
		as.mu.Lock()
		rsp = as.kernelRsp
		as.mu.Unlock()
	}

	if page := as.spt.Find(addr); page != nil {
		if write && !page.Writable {
			slog.Debug(fmt.Sprintf("## PID: %d - Escritura en página de solo lectura 0x%x", as.Pid, page.Va))
			return false
		}
		err := as.frames.Claim(page)
		if err == nil {
			return true
		}
		slog.Warn(fmt.Sprintf("## PID: %d - No se pudo reclamar la página 0x%x: %v", as.Pid, page.Va, err))
	}

	if !stackGrowthAllowed(addr, rsp) {
		return false
	}
	if err := as.growStack(); err != nil {
		slog.Warn(fmt.Sprintf("## PID: %d - No se pudo crecer la pila: %v", as.Pid, err))
		return false
	}
	return true
}

// stackGrowthAllowed acepta accesos hasta una página por debajo del stack pointer y
// dentro de la zona reservada para la pila.
func stackGrowthAllowed(addr, rsp uintptr) bool {
	if addr < models.UserStack-models.StackLimit || addr >= models.UserStack {
		return false
	}
	return addr+models.PageSize >= rsp
}

// growStack agrega una página anónima debajo de la pila actual. No la reclama:
// el acceso se reintenta y el siguiente fallo la encuentra en la SPT.
func (as *AddressSpace) growStack() error {
	as.mu.Lock()
	defer as.mu.Unlock()

	va := as.stackBottom - models.PageSize
	if va < models.UserStack-models.StackLimit {
		return ErrStackLimit
	}
	if err := as.AllocatePage(KindAnon|MarkerStack, va, true); err != nil {
		return err
	}

	as.stackBottom = va
	as.Metrics.StackGrowths.Add(1)
	slog.Debug(fmt.Sprintf("## PID: %d - Crecimiento de pila - Página: 0x%x", as.Pid, va))
	return nil
}

// CheckBuffer valida que [addr, addr+size) esté cubierto por páginas registradas y,
// si write, que todas sean escribibles. Se usa antes de que una syscall toque el buffer.
func (as *AddressSpace) CheckBuffer(addr uintptr, size int, write bool) error {
	if size <= 0 {
		return nil
	}

	end := addr + uintptr(size)
	if addr == 0 || end < addr || models.IsKernelVaddr(end-1) {
		return fmt.Errorf("%w: 0x%x", ErrSegFault, addr)
	}
	for va := models.PageRoundDown(addr); va < end; va += models.PageSize {
		page := as.spt.Find(va)
		if page == nil {
			return fmt.Errorf("%w: 0x%x sin página", ErrSegFault, va)
		}
		if write && !page.Writable {
			return fmt.Errorf("%w: 0x%x es de solo lectura", ErrSegFault, va)
		}
	}
	return nil
}
