package services

import (
	"fmt"
	"log/slog"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/filesys"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/models"
)

// mmapRegion agrupa las páginas creadas por un mismo mmap. El archivo es un handle
// propio del mapeo y se cierra cuando se libera la última página.
type mmapRegion struct {
	start uintptr
	file  filesys.File
	pages int
}

// Mmap mapea el archivo abierto en fd a partir de addr.
func (as *AddressSpace) Mmap(addr uintptr, length int64, writable bool, fd int, offset int64) (uintptr, error) {
	if err := validateMapping(addr, length, offset); err != nil {
		return 0, err
	}
	if filesys.IsStdStream(fd) {
		return 0, fmt.Errorf("%w: fd %d", ErrStdStream, fd)
	}

	file, ok := as.Files.Lookup(fd)
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrBadFd, fd)
	}
	return as.MapFile(addr, length, writable, file, offset)
}

// MapFile crea ceil(length/PageSize) páginas de archivo lazy desde addr. Se leen
// min(length, largo del archivo desde offset) bytes; el resto de las páginas queda en cero.
func (as *AddressSpace) MapFile(addr uintptr, length int64, writable bool, file filesys.File, offset int64) (uintptr, error) {
	if err := validateMapping(addr, length, offset); err != nil {
		return 0, err
	}

	end := addr + models.PageRoundUp(uintptr(length))
	if as.spt.AnyInRange(addr, end) {
		return 0, fmt.Errorf("%w: [0x%x, 0x%x)", ErrOverlap, addr, end)
	}

	fileLength, err := file.Length()
	if err != nil {
		return 0, fmt.Errorf("no se pudo obtener el largo de %s: %w", file.Name(), err)
	}
	mapped, err := file.Reopen()
	if err != nil {
		return 0, fmt.Errorf("no se pudo reabrir %s: %w", file.Name(), err)
	}

	readBytes := min(length, max(fileLength-offset, 0))
	region := &mmapRegion{start: addr, file: mapped}
	var created []*Page

	for va := addr; va < end; va += models.PageSize {
		chunk := min(readBytes, models.PageSize)
		seg := &Segment{File: mapped, Offset: offset, ReadBytes: int(chunk)}

		page := as.newPage(va, writable, KindFile, &uninitPage{loader: LoadSegment, aux: seg})
		page.region = region
		if !as.spt.Insert(page) {
			for _, p := range created {
				as.spt.Remove(p)
			}
			mapped.Close()
			return 0, fmt.Errorf("%w: 0x%x", ErrOverlap, va)
		}
		created = append(created, page)

		readBytes -= chunk
		offset += chunk
	}

	as.mu.Lock()
	region.pages = len(created)
	as.regions[addr] = region
	as.mu.Unlock()

	slog.Debug(fmt.Sprintf("## PID: %d - Mmap - Archivo: %s - Dirección: 0x%x - Páginas: %d", as.Pid, mapped.Name(), addr, len(created)))
	return addr, nil
}

func validateMapping(addr uintptr, length int64, offset int64) error {
	if offset < 0 || offset%models.PageSize != 0 {
		return fmt.Errorf("%w: %d", ErrMisalignedOffset, offset)
	}
	if addr == 0 || !models.IsPageAligned(addr) || models.IsKernelVaddr(addr) {
		return fmt.Errorf("%w: 0x%x", ErrBadAddress, addr)
	}
	if length <= 0 {
		return fmt.Errorf("%w: %d", ErrBadLength, length)
	}

	end := addr + models.PageRoundUp(uintptr(length))
	if end <= addr || models.IsKernelVaddr(end-1) {
		return fmt.Errorf("%w: 0x%x + %d", ErrBadAddress, addr, length)
	}
	return nil
}

// Munmap libera las páginas del mapeo que contiene addr desde la página de addr hasta el
// final del mapeo: escribe en el archivo las residentes modificadas y las quita de la SPT.
// Las páginas del mapeo por debajo de addr se conservan. Si addr no pertenece a un mapeo
// no hace nada.
func (as *AddressSpace) Munmap(addr uintptr) error {
	first := as.spt.Find(addr)
	if first == nil || first.region == nil {
		return nil
	}
	region := first.region

	var firstErr error
	released := 0
	for va := first.Va; ; va += models.PageSize {
		page := as.spt.Find(va)
		if page == nil || page.region != region {
			break
		}
		if err := as.frames.Release(page); err != nil && firstErr == nil {
			firstErr = err
		}
		as.spt.Remove(page)
		as.releaseRegionPage(region)
		released++
	}

	slog.Debug(fmt.Sprintf("## PID: %d - Munmap - Dirección: 0x%x - Páginas: %d", as.Pid, addr, released))
	return firstErr
}

func (as *AddressSpace) releaseRegionPage(region *mmapRegion) {
	as.mu.Lock()
	region.pages--
	last := region.pages == 0
	if last {
		delete(as.regions, region.start)
	}
	as.mu.Unlock()

	if last {
		region.file.Close()
	}
}

// cloneRegion reabre para as el archivo de un mapeo de otro proceso. Todas las páginas
// de un mismo mapeo comparten el clon.
func (as *AddressSpace) cloneRegion(region *mmapRegion, clones map[*mmapRegion]*mmapRegion) (*mmapRegion, error) {
	if region == nil {
		return nil, nil
	}
	if clone, ok := clones[region]; ok {
		return clone, nil
	}

	file, err := region.file.Reopen()
	if err != nil {
		return nil, fmt.Errorf("no se pudo reabrir %s: %w", region.file.Name(), err)
	}
	clone := &mmapRegion{start: region.start, file: file}
	clones[region] = clone

	as.mu.Lock()
	as.regions[clone.start] = clone
	as.mu.Unlock()
	return clone, nil
}

// closeEmptyRegions cierra los mapeos que no llegaron a tener páginas, como los
// clonados por un fork que falló antes de copiarlas.
func (as *AddressSpace) closeEmptyRegions() {
	as.mu.Lock()
	var empty []*mmapRegion
	for start, region := range as.regions {
		if region.pages == 0 {
			empty = append(empty, region)
			delete(as.regions, start)
		}
	}
	as.mu.Unlock()

	for _, region := range empty {
		region.file.Close()
	}
}

// Mappings devuelve la dirección de inicio de cada mapeo activo.
func (as *AddressSpace) Mappings() []uintptr {
	as.mu.Lock()
	defer as.mu.Unlock()

	starts := make([]uintptr, 0, len(as.regions))
	for start := range as.regions {
		starts = append(starts, start)
	}
	return starts
}
