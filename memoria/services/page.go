package services

import (
	"errors"
	"fmt"
	"io"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/filesys"
)

// Kind identifica el comportamiento de una página. Los bits altos son marcadores que
// no cambian el comportamiento (por ejemplo, MarkerStack para las páginas de pila).
type Kind int

const (
	KindUninit Kind = iota
	KindAnon
	KindFile

	MarkerStack Kind = 1 << 3

	kindMask Kind = MarkerStack - 1
)

// Type devuelve el tipo sin marcadores.
func (k Kind) Type() Kind {
	return k & kindMask
}

func (k Kind) String() string {
	var name string
	switch k.Type() {
	case KindUninit:
		name = "uninit"
	case KindAnon:
		name = "anon"
	case KindFile:
		name = "file"
	default:
		name = fmt.Sprintf("kind(%d)", int(k.Type()))
	}
	if k&MarkerStack != 0 {
		name += "+stack"
	}
	return name
}

// Segment describe de dónde sale el contenido de una página respaldada por archivo:
// ReadBytes bytes desde Offset, el resto de la página va en cero.
type Segment struct {
	File      filesys.File
	Offset    int64
	ReadBytes int
}

// Loader carga el contenido inicial de una página la primera vez que se reclama.
type Loader func(page *Page, kva []byte, aux *Segment) error

const noSlot = -1

type variant interface {
	isVariant()
}

// uninitPage todavía no fue reclamada; guarda cómo materializarla.
type uninitPage struct {
	loader Loader
	aux    *Segment
}

type anonPage struct {
	slot int
}

type filePage struct {
	Segment
}

func (*uninitPage) isVariant() {}
func (*anonPage) isVariant()   {}
func (*filePage) isVariant()   {}

// Page es la entrada de la SPT para una página virtual de usuario.
// frame y variant se leen y escriben sólo con FrameTable.mu tomado.
type Page struct {
	Va       uintptr
	Writable bool

	kind   Kind
	as     *AddressSpace
	region *mmapRegion

	frame   *Frame
	variant variant
}

// Type devuelve el tipo que tiene o va a tener la página una vez inicializada.
func (p *Page) Type() Kind {
	return p.kind.Type()
}

func (p *Page) Kind() Kind {
	return p.kind
}

func (p *Page) AddressSpace() *AddressSpace {
	return p.as
}

func (p *Page) swapIn(kva []byte) error {
	switch v := p.variant.(type) {
	case *uninitPage:
		return p.initialize(v, kva)
	case *anonPage:
		return p.anonSwapIn(v, kva)
	case *filePage:
		return p.fileSwapIn(v, kva)
	}
	return fmt.Errorf("variante de página desconocida %T", p.variant)
}

func (p *Page) swapOut(kva []byte) error {
	switch v := p.variant.(type) {
	case *anonPage:
		return p.anonSwapOut(v, kva)
	case *filePage:
		return p.fileSwapOut(v, kva)
	case *uninitPage:
		return fmt.Errorf("la página 0x%x no fue inicializada y no puede desalojarse", p.Va)
	}
	return fmt.Errorf("variante de página desconocida %T", p.variant)
}

// destroy libera lo que la variante tenga tomado. kva es nil si la página no está residente.
func (p *Page) destroy(kva []byte) error {
	switch v := p.variant.(type) {
	case *anonPage:
		p.anonDestroy(v)
	case *filePage:
		return p.fileDestroy(v, kva)
	}
	return nil
}

// initialize convierte una página uninit en anónima o de archivo y carga su contenido.
// Si el loader falla la página queda uninit para poder reintentar.
func (p *Page) initialize(u *uninitPage, kva []byte) error {
	var next variant
	switch p.kind.Type() {
	case KindAnon:
		next = &anonPage{slot: noSlot}
	case KindFile:
		if u.aux == nil {
			return fmt.Errorf("%w: página de archivo 0x%x sin descriptor de carga", ErrBadKind, p.Va)
		}
		next = &filePage{Segment: *u.aux}
	default:
		return fmt.Errorf("%w: %v", ErrBadKind, p.kind)
	}

	var err error
	switch {
	case u.loader != nil:
		err = u.loader(p, kva, u.aux)
	case p.kind.Type() == KindFile:
		err = p.readSegment(&next.(*filePage).Segment, kva)
	default:
		clear(kva)
	}
	if err != nil {
		return err
	}

	p.variant = next
	return nil
}

// LoadSegment es el loader por defecto de las páginas de archivo (ejecutables y mmap).
func LoadSegment(page *Page, kva []byte, aux *Segment) error {
	return page.readSegment(aux, kva)
}

func (p *Page) readSegment(seg *Segment, kva []byte) error {
	if seg.ReadBytes < 0 || seg.ReadBytes > len(kva) {
		return fmt.Errorf("segmento inválido: read_bytes=%d", seg.ReadBytes)
	}

	n, err := seg.File.ReadAt(kva[:seg.ReadBytes], seg.Offset)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("error leyendo %s en offset %d: %w", seg.File.Name(), seg.Offset, err)
	}
	clear(kva[n:])

	p.as.Metrics.FileReads.Add(1)
	return nil
}
