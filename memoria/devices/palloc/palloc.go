// Package palloc administra el user pool: las páginas físicas que se le pueden dar a procesos de usuario.
// La memoria física se simula con una arena anónima reservada con mmap.
package palloc

import (
	"fmt"
	"sync"

	"github.com/bits-and-blooms/bitset"
	"golang.org/x/sys/unix"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/models"
)

type Pool struct {
	mu     sync.Mutex
	arena  []byte
	used   *bitset.BitSet
	frames uint
}

// New reserva una arena de frames páginas.
//
// Parámetros:
//   - frames: cantidad de páginas físicas del user pool
//
// Ejemplo:
//
//	func main() {
//		pool, err := palloc.New(64)
//		if err != nil {
//			panic(err)
//		}
//		defer pool.Close()
//	}
func New(frames int) (*Pool, error) {
	if frames <= 0 {
		return nil, fmt.Errorf("el user pool necesita al menos un frame, se pidieron %d", frames)
	}

	arena, err := unix.Mmap(-1, 0, frames*models.PageSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, fmt.Errorf("no se pudo reservar la memoria física: %w", err)
	}

	return &Pool{
		arena:  arena,
		used:   bitset.New(uint(frames)),
		frames: uint(frames),
	}, nil
}

// GetPage devuelve el número de un frame libre. El segundo valor es false si el pool está agotado.
func (p *Pool) GetPage() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	frame, ok := p.used.NextClear(0)
	if !ok || frame >= p.frames {
		return -1, false
	}
	p.used.Set(frame)
	return int(frame), true
}

// FreePage devuelve el frame al pool. El contenido se descarta.
func (p *Pool) FreePage(frame int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if frame < 0 || uint(frame) >= p.frames || !p.used.Test(uint(frame)) {
		panic(fmt.Sprintf("palloc: liberando frame inválido %d", frame))
	}
	p.used.Clear(uint(frame))

	// Le devolvemos la página al host; en Linux vuelve en cero en el próximo acceso.
	_ = unix.Madvise(p.Page(frame), unix.MADV_DONTNEED)
}

// Page devuelve la vista de kernel (kva) del frame.
func (p *Pool) Page(frame int) []byte {
	start := frame * models.PageSize
	return p.arena[start : start+models.PageSize : start+models.PageSize]
}

func (p *Pool) Len() int {
	return int(p.frames)
}

func (p *Pool) Free() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return int(p.frames - p.used.Count())
}

func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.arena == nil {
		return nil
	}
	err := unix.Munmap(p.arena)
	p.arena = nil
	return err
}
