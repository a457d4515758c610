// Package disk modela el dispositivo de bloques sobre el que vive el área de swap.
// Un dispositivo se lee y escribe de a un sector de models.SectorSize bytes.
package disk

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/models"
)

var (
	ErrOutOfRange = errors.New("sector fuera de rango")
	ErrShortIO    = errors.New("transferencia incompleta de sector")
	ErrBufferSize = errors.New("el buffer no tiene el tamaño de un sector")
)

// Device es la interfaz mínima que el swap consume de un disco.
type Device interface {
	ReadSector(sector uint32, buf []byte) error
	WriteSector(sector uint32, buf []byte) error
	// Size devuelve la cantidad de sectores del dispositivo.
	Size() uint32
}

func checkAccess(sector, size uint32, buf []byte) error {
	if sector >= size {
		return fmt.Errorf("%w: %d (tamaño %d)", ErrOutOfRange, sector, size)
	}
	if len(buf) != models.SectorSize {
		return fmt.Errorf("%w: %d bytes", ErrBufferSize, len(buf))
	}
	return nil
}

// FileDisk es un disco respaldado por un archivo regular del host (el swapfile).
type FileDisk struct {
	file    *os.File
	fd      int
	sectors uint32
}

// OpenFileDisk abre (o crea) el archivo en path y lo dimensiona a sectors sectores.
//
// Parámetros:
//   - path: ubicación del archivo de swap
//   - sectors: cantidad de sectores que tiene el disco
//
// Ejemplo:
//
//	func main() {
//		swapDisk, err := disk.OpenFileDisk("./swapfile.bin", 8192)
//		if err != nil {
//			panic(err)
//		}
//		defer swapDisk.Close()
//	}
func OpenFileDisk(path string, sectors uint32) (*FileDisk, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("no se pudo abrir el disco %s: %w", path, err)
	}

	fd := int(file.Fd())
	if err := unix.Ftruncate(fd, int64(sectors)*models.SectorSize); err != nil {
		file.Close()
		return nil, fmt.Errorf("no se pudo dimensionar el disco %s: %w", path, err)
	}

	return &FileDisk{file: file, fd: fd, sectors: sectors}, nil
}

func (d *FileDisk) ReadSector(sector uint32, buf []byte) error {
	if err := checkAccess(sector, d.sectors, buf); err != nil {
		return err
	}
	n, err := unix.Pread(d.fd, buf, int64(sector)*models.SectorSize)
	if err != nil {
		return fmt.Errorf("error leyendo sector %d: %w", sector, err)
	}
	if n != len(buf) {
		return fmt.Errorf("%w: lectura de sector %d (%d bytes)", ErrShortIO, sector, n)
	}
	return nil
}

func (d *FileDisk) WriteSector(sector uint32, buf []byte) error {
	if err := checkAccess(sector, d.sectors, buf); err != nil {
		return err
	}
	n, err := unix.Pwrite(d.fd, buf, int64(sector)*models.SectorSize)
	if err != nil {
		return fmt.Errorf("error escribiendo sector %d: %w", sector, err)
	}
	if n != len(buf) {
		return fmt.Errorf("%w: escritura de sector %d (%d bytes)", ErrShortIO, sector, n)
	}
	return nil
}

func (d *FileDisk) Size() uint32 {
	return d.sectors
}

// Sync fuerza a disco lo escrito en el swapfile.
func (d *FileDisk) Sync() error {
	return unix.Fsync(d.fd)
}

func (d *FileDisk) Close() error {
	return d.file.Close()
}

// MemDisk es un disco en memoria, útil para pruebas y para correr sin swapfile.
type MemDisk struct {
	mu   sync.Mutex
	data []byte
}

func NewMemDisk(sectors uint32) *MemDisk {
	return &MemDisk{data: make([]byte, int(sectors)*models.SectorSize)}
}

func (d *MemDisk) ReadSector(sector uint32, buf []byte) error {
	if err := checkAccess(sector, d.Size(), buf); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	start := int(sector) * models.SectorSize
	copy(buf, d.data[start:start+models.SectorSize])
	return nil
}

func (d *MemDisk) WriteSector(sector uint32, buf []byte) error {
	if err := checkAccess(sector, d.Size(), buf); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	start := int(sector) * models.SectorSize
	copy(d.data[start:start+models.SectorSize], buf)
	return nil
}

func (d *MemDisk) Size() uint32 {
	return uint32(len(d.data) / models.SectorSize)
}
