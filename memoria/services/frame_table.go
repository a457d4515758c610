package services

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/models"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/utils/list"
)

// UserPool es el allocator de frames físicos del que sale la memoria de usuario.
type UserPool interface {
	GetPage() (int, bool)
	FreePage(frame int)
	Page(frame int) []byte
}

// Frame es un frame físico del user pool. page es nil mientras el frame está libre
// dentro de la tabla (por ejemplo, durante un desalojo).
type Frame struct {
	Number int
	Kva    []byte

	page   *Page
	pinned bool
}

// FrameTable registra los frames en uso y elige víctimas con el algoritmo de reloj.
// Su lock protege también el vínculo page<->frame y la variante de cada página.
type FrameTable struct {
	mu     sync.Mutex
	pool   UserPool
	frames list.ArrayList[*Frame]
	hand   int
}

func NewFrameTable(pool UserPool) *FrameTable {
	return &FrameTable{pool: pool}
}

// Claim consigue un frame para la página, lo instala en la tabla de hardware de su
// espacio de direcciones y carga el contenido. Si la página ya está residente no hace nada.
func (ft *FrameTable) Claim(page *Page) error {
	ft.mu.Lock()
	defer ft.mu.Unlock()

	return ft.claim(page)
}

func (ft *FrameTable) claim(page *Page) error {
	if page.frame != nil {
		return nil
	}

	frame, err := ft.install(page)
	if err != nil {
		return err
	}
	if err := page.swapIn(frame.Kva); err != nil {
		page.as.pt.ClearPage(page.Va)
		ft.discard(frame)
		return err
	}
	return nil
}

// install vincula la página con un frame y la mapea en la tabla de hardware sin cargar
// su contenido.
func (ft *FrameTable) install(page *Page) (*Frame, error) {
	frame, err := ft.getFrame()
	if err != nil {
		return nil, err
	}

	frame.page = page
	page.frame = frame

	if !page.as.pt.SetPage(page.Va, frame.Number, page.Writable) {
		ft.discard(frame)
		return nil, fmt.Errorf("%w: 0x%x", ErrMapping, page.Va)
	}
	return frame, nil
}

func (ft *FrameTable) getFrame() (*Frame, error) {
	if number, ok := ft.pool.GetPage(); ok {
		frame := &Frame{Number: number, Kva: ft.pool.Page(number)}
		ft.frames.Add(frame)
		return frame, nil
	}
	return ft.evict()
}

// evict desaloja a la víctima elegida por el reloj y devuelve su frame ya desvinculado.
func (ft *FrameTable) evict() (*Frame, error) {
	victim := ft.victim()
	if victim == nil {
		return nil, ErrNoFrame
	}

	page := victim.page
	if page == nil {
		return victim, nil
	}
	if err := page.swapOut(victim.Kva); err != nil {
		return nil, err
	}

	slog.Debug(fmt.Sprintf("## PID: %d - Desalojo - Página: 0x%x - Frame: %d", page.as.Pid, page.Va, victim.Number))
	page.frame = nil
	victim.page = nil
	return victim, nil
}

// victim recorre la tabla desde la aguja. Una página accedida pierde el bit y se salta;
// la primera no accedida es la víctima y la aguja queda sobre ella. Los frames
// fijados no se consideran. Dos vueltas alcanzan porque la primera limpia todos los bits.
func (ft *FrameTable) victim() *Frame {
	n := ft.frames.Size()
	for i := 0; i < 2*n; i++ {
		if ft.hand >= n {
			ft.hand = 0
		}
		frame, err := ft.frames.Get(ft.hand)
		if err != nil {
			return nil
		}

		if !frame.pinned {
			page := frame.page
			if page == nil || !page.as.pt.IsAccessed(page.Va) {
				return frame
			}
			page.as.pt.SetAccessed(page.Va, false)
		}
		ft.hand++
	}
	return nil
}

// Release destruye la página (write-back de archivos, liberar swap) y, si estaba
// residente, la saca de la tabla de hardware y devuelve el frame al pool.
func (ft *FrameTable) Release(page *Page) error {
	ft.mu.Lock()
	defer ft.mu.Unlock()

	var kva []byte
	if page.frame != nil {
		kva = page.frame.Kva
	}
	err := page.destroy(kva)

	if frame := page.frame; frame != nil {
		page.as.pt.ClearPage(page.Va)
		ft.discard(frame)
	}
	return err
}

// discard desvincula el frame, lo saca de la tabla y lo devuelve al pool.
func (ft *FrameTable) discard(frame *Frame) {
	if frame.page != nil {
		frame.page.frame = nil
		frame.page = nil
	}

	if _, index, found := ft.frames.Find(func(f *Frame) bool { return f == frame }); found {
		ft.frames.Remove(index)
		if index < ft.hand {
			ft.hand--
		}
	}
	ft.pool.FreePage(frame.Number)
}

// Duplicate deja en dst una copia del contenido de src. src se reclama si no está
// residente y queda fijado mientras se consigue el frame de dst. dst no se carga desde
// su respaldo: su contenido es el de src.
func (ft *FrameTable) Duplicate(dst, src *Page) error {
	ft.mu.Lock()
	defer ft.mu.Unlock()

	if dst.frame != nil {
		return fmt.Errorf("%w: 0x%x ya es residente", ErrPageExists, dst.Va)
	}
	if err := ft.claim(src); err != nil {
		return err
	}
	source := src.frame
	source.pinned = true
	defer func() { source.pinned = false }()

	frame, err := ft.install(dst)
	if err != nil {
		return err
	}

	copy(frame.Kva, source.Kva)
	if src.as.pt.IsDirty(src.Va) {
		dst.as.pt.SetDirty(dst.Va, true)
	}
	return nil
}

// Access traduce va con la tabla de hardware y le pasa a fn la vista del frame desde
// el byte apuntado hasta el fin de la página. Devuelve *mmu.Fault si la traducción falla.
func (ft *FrameTable) Access(pt PageTable, va uintptr, write bool, fn func(buf []byte)) error {
	ft.mu.Lock()
	defer ft.mu.Unlock()

	number, err := pt.Translate(va, write)
	if err != nil {
		return err
	}
	fn(ft.pool.Page(number)[models.PageOffset(va):])
	return nil
}

// Snapshot copia el contenido de la página si está residente.
func (ft *FrameTable) Snapshot(page *Page) ([]byte, bool) {
	ft.mu.Lock()
	defer ft.mu.Unlock()

	if page.frame == nil {
		return nil, false
	}
	data := make([]byte, len(page.frame.Kva))
	copy(data, page.frame.Kva)
	return data, true
}

// Resident indica si la página tiene un frame y cuál.
func (ft *FrameTable) Resident(page *Page) (*Frame, bool) {
	ft.mu.Lock()
	defer ft.mu.Unlock()

	return page.frame, page.frame != nil
}

// Lazy indica si la página todavía no fue inicializada y devuelve cómo cargarla.
func (ft *FrameTable) Lazy(page *Page) (Loader, *Segment, bool) {
	ft.mu.Lock()
	defer ft.mu.Unlock()

	if u, ok := page.variant.(*uninitPage); ok {
		return u.loader, u.aux, true
	}
	return nil, nil, false
}

// Segment devuelve el segmento de una página de archivo ya inicializada.
func (ft *FrameTable) Segment(page *Page) (Segment, bool) {
	ft.mu.Lock()
	defer ft.mu.Unlock()

	if f, ok := page.variant.(*filePage); ok {
		return f.Segment, true
	}
	return Segment{}, false
}

func (ft *FrameTable) Len() int {
	return ft.frames.Size()
}

// Frames describe el estado de cada frame en uso, en el orden del reloj.
func (ft *FrameTable) Frames() []models.FrameInfo {
	ft.mu.Lock()
	defer ft.mu.Unlock()

	infos := make([]models.FrameInfo, 0, ft.frames.Size())
	ft.frames.ForEach(func(_ int, frame *Frame) {
		info := models.FrameInfo{Frame: frame.Number, Pinned: frame.pinned}
		if page := frame.page; page != nil {
			info.PID = page.as.Pid
			info.Address = page.Va
			info.Kind = page.kind.String()
			info.Accessed = page.as.pt.IsAccessed(page.Va)
			info.Dirty = page.as.pt.IsDirty(page.Va)
		}
		infos = append(infos, info)
	})
	return infos
}
