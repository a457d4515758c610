package services

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/filesys"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/models"
)

// PageTable es la tabla de páginas de hardware de un proceso.
type PageTable interface {
	SetPage(va uintptr, frame int, writable bool) bool
	ClearPage(va uintptr)
	IsAccessed(va uintptr) bool
	SetAccessed(va uintptr, accessed bool)
	IsDirty(va uintptr) bool
	SetDirty(va uintptr, dirty bool)
	Translate(va uintptr, write bool) (int, error)
}

// AddressSpace es el espacio de direcciones de usuario de un proceso.
type AddressSpace struct {
	Pid     uint
	Files   *filesys.Table
	Metrics *models.Metrics

	spt    *SupplementalPageTable
	pt     PageTable
	frames *FrameTable
	swap   *SwapTable

	mu          sync.Mutex
	stackBottom uintptr
	rsp         uintptr
	kernelRsp   uintptr
	regions     map[uintptr]*mmapRegion
}

func NewAddressSpace(pid uint, frames *FrameTable, swap *SwapTable, pt PageTable) *AddressSpace {
	return &AddressSpace{
		Pid:         pid,
		Files:       filesys.NewTable(),
		Metrics:     &models.Metrics{},
		spt:         NewSupplementalPageTable(),
		pt:          pt,
		frames:      frames,
		swap:        swap,
		stackBottom: models.UserStack,
		rsp:         models.UserStack,
		kernelRsp:   models.UserStack,
		regions:     make(map[uintptr]*mmapRegion),
	}
}

func (as *AddressSpace) SPT() *SupplementalPageTable {
	return as.spt
}

func (as *AddressSpace) PageTable() PageTable {
	return as.pt
}

// StackBottom es la dirección de la página de pila más baja.
func (as *AddressSpace) StackBottom() uintptr {
	as.mu.Lock()
	defer as.mu.Unlock()

	return as.stackBottom
}

func (as *AddressSpace) Rsp() uintptr {
	as.mu.Lock()
	defer as.mu.Unlock()

	return as.rsp
}

// SetRsp actualiza el stack pointer de usuario del proceso.
func (as *AddressSpace) SetRsp(rsp uintptr) {
	as.mu.Lock()
	defer as.mu.Unlock()

	as.rsp = rsp
}

// EnterKernel guarda el stack pointer de usuario al entrar a una syscall. Los fallos
// que ocurran en modo kernel usan este valor para decidir el crecimiento de la pila.
func (as *AddressSpace) EnterKernel(rsp uintptr) {
	as.mu.Lock()
	defer as.mu.Unlock()

	as.kernelRsp = rsp
	as.rsp = rsp
}

// AllocateLazyPage registra una página sin asignarle frame. El contenido se carga con
// loader la primera vez que se reclama; sin loader las anónimas arrancan en cero y las
// de archivo se leen de aux.
func (as *AddressSpace) AllocateLazyPage(kind Kind, va uintptr, writable bool, loader Loader, aux *Segment) error {
	switch kind.Type() {
	case KindAnon:
	case KindFile:
		if aux == nil {
			return fmt.Errorf("%w: página de archivo sin segmento", ErrBadKind)
		}
	default:
		return fmt.Errorf("%w: %v", ErrBadKind, kind)
	}

	va = models.PageRoundDown(va)
	if va == 0 || models.IsKernelVaddr(va) {
		return fmt.Errorf("%w: 0x%x", ErrBadAddress, va)
	}

	page := as.newPage(va, writable, kind, &uninitPage{loader: loader, aux: aux})
	if !as.spt.Insert(page) {
		return fmt.Errorf("%w: 0x%x", ErrPageExists, va)
	}
	return nil
}

// AllocatePage registra una página anónima que arranca en cero al reclamarla.
func (as *AddressSpace) AllocatePage(kind Kind, va uintptr, writable bool) error {
	return as.AllocateLazyPage(kind, va, writable, nil, nil)
}

func (as *AddressSpace) newPage(va uintptr, writable bool, kind Kind, initial variant) *Page {
	return &Page{Va: va, Writable: writable, kind: kind, as: as, variant: initial}
}

// ClaimPage busca la página que contiene va y la hace residente.
func (as *AddressSpace) ClaimPage(va uintptr) error {
	page := as.spt.Find(va)
	if page == nil {
		return fmt.Errorf("%w: 0x%x", ErrPageNotFound, va)
	}
	return as.frames.Claim(page)
}

// SetupStack crea y reclama la primera página de la pila, justo debajo de UserStack.
func (as *AddressSpace) SetupStack() error {
	va := models.UserStack - models.PageSize
	if err := as.AllocatePage(KindAnon|MarkerStack, va, true); err != nil {
		return err
	}
	if err := as.ClaimPage(va); err != nil {
		return err
	}

	as.mu.Lock()
	as.stackBottom = va
	as.rsp = models.UserStack
	as.mu.Unlock()
	return nil
}

// Destroy libera todas las páginas del proceso: escribe en sus archivos las páginas
// mapeadas modificadas, libera slots de swap y frames y cierra los archivos abiertos.
func (as *AddressSpace) Destroy() {
	for _, page := range as.spt.Pages() {
		if err := as.frames.Release(page); err != nil {
			slog.Warn(fmt.Sprintf("## PID: %d - Error liberando la página 0x%x: %v", as.Pid, page.Va, err))
		}
		as.spt.Remove(page)
		if page.region != nil {
			as.releaseRegionPage(page.region)
		}
	}
	as.closeEmptyRegions()
	as.Files.CloseAll()

	m := as.Metrics.Snapshot()
	slog.Info(fmt.Sprintf("## PID: %d - Proceso Destruido - Métricas - Fallos de página: %d; Crecimientos de pila: %d; Bajadas a SWAP: %d; Subidas desde SWAP: %d; Lecturas de archivo: %d; Escrituras de archivo: %d",
		as.Pid, m.PageFaults, m.StackGrowths, m.SwapsOut, m.SwapsIn, m.FileReads, m.FileWrites))
}

// CopyAddressSpace copia en dst todas las páginas de src. Las páginas todavía no
// cargadas se copian como lazy con el mismo loader; el resto se copia con su contenido.
// Cada mapeo de archivo de src se reabre para dst.
func CopyAddressSpace(dst, src *AddressSpace) (err error) {
	regions := make(map[*mmapRegion]*mmapRegion)
	defer func() {
		if err != nil {
			dst.closeEmptyRegions()
		}
	}()

	for _, page := range src.spt.Pages() {
		region, err := dst.cloneRegion(page.region, regions)
		if err != nil {
			return err
		}

		if loader, aux, lazy := src.frames.Lazy(page); lazy {
			if region != nil && aux != nil {
				aux = &Segment{File: region.file, Offset: aux.Offset, ReadBytes: aux.ReadBytes}
			}
			child := dst.newPage(page.Va, page.Writable, page.kind, &uninitPage{loader: loader, aux: aux})
			if err := dst.insertCopy(child, region); err != nil {
				return err
			}
			continue
		}

		var initialized variant = &anonPage{slot: noSlot}
		if seg, ok := src.frames.Segment(page); ok {
			if region != nil {
				seg.File = region.file
			}
			initialized = &filePage{Segment: seg}
		}
		child := dst.newPage(page.Va, page.Writable, page.kind, initialized)
		if err := dst.insertCopy(child, region); err != nil {
			return err
		}
		if err := dst.frames.Duplicate(child, page); err != nil {
			return fmt.Errorf("no se pudo copiar la página 0x%x del proceso %d: %w", page.Va, src.Pid, err)
		}
	}

	src.mu.Lock()
	stackBottom, rsp := src.stackBottom, src.rsp
	src.mu.Unlock()

	dst.mu.Lock()
	dst.stackBottom = stackBottom
	dst.rsp = rsp
	dst.mu.Unlock()
	return nil
}

func (as *AddressSpace) insertCopy(page *Page, region *mmapRegion) error {
	page.region = region
	if !as.spt.Insert(page) {
		return fmt.Errorf("%w: 0x%x", ErrPageExists, page.Va)
	}
	if region != nil {
		as.mu.Lock()
		region.pages++
		as.mu.Unlock()
	}
	return nil
}
