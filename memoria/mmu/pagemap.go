// Package mmu simula la tabla de páginas de hardware de un proceso (el equivalente a su pml4).
// Cada entrada guarda el frame físico y los bits present/writable/accessed/dirty que
// la CPU actualizaría en cada acceso.
package mmu

import (
	"fmt"
	"sync"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/models"
)

type pte struct {
	frame    int
	writable bool
	accessed bool
	dirty    bool
}

// Fault es lo que la "CPU" reporta cuando una traducción no se puede completar.
type Fault struct {
	Addr       uintptr
	Write      bool
	NotPresent bool
}

func (f *Fault) Error() string {
	if f.NotPresent {
		return fmt.Sprintf("page fault: página no presente en 0x%x (escritura=%v)", f.Addr, f.Write)
	}
	return fmt.Sprintf("page fault: violación de permisos en 0x%x (escritura=%v)", f.Addr, f.Write)
}

type PageMap struct {
	mu      sync.Mutex
	entries map[uintptr]*pte
}

func NewPageMap() *PageMap {
	return &PageMap{entries: make(map[uintptr]*pte)}
}

// SetPage instala va -> frame. Devuelve false si va ya estaba mapeada o no es de usuario.
func (pm *PageMap) SetPage(va uintptr, frame int, writable bool) bool {
	if !models.IsPageAligned(va) || models.IsKernelVaddr(va) {
		return false
	}
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if _, exists := pm.entries[va]; exists {
		return false
	}
	pm.entries[va] = &pte{frame: frame, writable: writable}
	return true
}

// GetPage devuelve el frame al que está mapeada la página que contiene va.
func (pm *PageMap) GetPage(va uintptr) (int, bool) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	e, ok := pm.entries[models.PageRoundDown(va)]
	if !ok {
		return -1, false
	}
	return e.frame, true
}

// ClearPage marca la página como no presente; el próximo acceso genera un fault.
func (pm *PageMap) ClearPage(va uintptr) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	delete(pm.entries, models.PageRoundDown(va))
}

func (pm *PageMap) IsAccessed(va uintptr) bool {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	e, ok := pm.entries[models.PageRoundDown(va)]
	return ok && e.accessed
}

func (pm *PageMap) SetAccessed(va uintptr, accessed bool) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if e, ok := pm.entries[models.PageRoundDown(va)]; ok {
		e.accessed = accessed
	}
}

func (pm *PageMap) IsDirty(va uintptr) bool {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	e, ok := pm.entries[models.PageRoundDown(va)]
	return ok && e.dirty
}

func (pm *PageMap) SetDirty(va uintptr, dirty bool) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if e, ok := pm.entries[models.PageRoundDown(va)]; ok {
		e.dirty = dirty
	}
}

// Translate hace lo que haría la MMU en un acceso de usuario: resuelve el frame,
// prende el bit de acceso y, si es escritura, el bit dirty. Si no puede, devuelve un *Fault.
func (pm *PageMap) Translate(va uintptr, write bool) (int, error) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	e, ok := pm.entries[models.PageRoundDown(va)]
	if !ok {
		return -1, &Fault{Addr: va, Write: write, NotPresent: true}
	}
	if write && !e.writable {
		return -1, &Fault{Addr: va, Write: write, NotPresent: false}
	}

	e.accessed = true
	if write {
		e.dirty = true
	}
	return e.frame, nil
}

func (pm *PageMap) Len() int {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	return len(pm.entries)
}
