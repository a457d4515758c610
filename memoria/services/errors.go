package services

import (
	"errors"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/filesys"
)

var (
	ErrPageExists     = errors.New("ya existe una página en esa dirección")
	ErrPageNotFound   = errors.New("no hay ninguna página registrada en esa dirección")
	ErrBadKind        = errors.New("tipo de página inválido")
	ErrNoFrame        = errors.New("no hay frames disponibles para desalojar")
	ErrSwapFull       = errors.New("el dispositivo de swap está lleno")
	ErrInvalidSlot    = errors.New("slot de swap inválido o libre")
	ErrMapping        = errors.New("no se pudo instalar la página en la tabla de hardware")
	ErrSegFault       = errors.New("acceso inválido a memoria, el proceso debe finalizar")
	ErrStackLimit     = errors.New("la pila alcanzó su tamaño máximo")
	ErrUnknownProcess = errors.New("proceso inexistente")
	ErrProcessExists  = errors.New("el proceso ya tiene un espacio de direcciones")

	// Validaciones de mmap: se rechazan antes de crear cualquier página.
	ErrMisalignedOffset = errors.New("el offset no está alineado a página")
	ErrBadAddress       = errors.New("dirección de mapeo inválida")
	ErrBadLength        = errors.New("largo de mapeo inválido")
	ErrOverlap          = errors.New("el rango pedido se superpone con páginas existentes")
	ErrStdStream        = errors.New("no se puede mapear la entrada o salida estándar")
	ErrBadFd            = filesys.ErrBadFd
)
