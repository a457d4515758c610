package models

import "sync/atomic"

// Layout del espacio de direcciones virtual de un proceso de usuario.
const (
	PageShift      = 12
	PageSize       = 1 << PageShift
	PageOffsetMask = PageSize - 1

	SectorSize     = 512
	SectorsPerPage = PageSize / SectorSize

	// Tope (exclusivo) de la pila de usuario; la pila crece hacia abajo desde acá.
	UserStack uintptr = 0x47480000
	// Límite de crecimiento de la pila: 1 MiB por debajo de UserStack.
	StackLimit uintptr = 0x100000
	// Todo lo que está en KernBase o por encima pertenece al kernel.
	KernBase uintptr = 0x8004000000
)

func PageRoundDown(va uintptr) uintptr {
	return va &^ PageOffsetMask
}

func PageRoundUp(va uintptr) uintptr {
	return (va + PageOffsetMask) &^ PageOffsetMask
}

func PageOffset(va uintptr) int {
	return int(va & PageOffsetMask)
}

func IsPageAligned(va uintptr) bool {
	return va&PageOffsetMask == 0
}

func IsKernelVaddr(va uintptr) bool {
	return va >= KernBase
}

func IsUserVaddr(va uintptr) bool {
	return !IsKernelVaddr(va)
}

// Metrics acumula los eventos de memoria virtual de un proceso. Se loguean al destruirlo.
type Metrics struct {
	PageFaults   atomic.Int64
	StackGrowths atomic.Int64
	SwapsOut     atomic.Int64
	SwapsIn      atomic.Int64
	FileReads    atomic.Int64
	FileWrites   atomic.Int64
}

type MetricsSnapshot struct {
	PageFaults   int64 `json:"page_faults"`
	StackGrowths int64 `json:"stack_growths"`
	SwapsOut     int64 `json:"swaps_out"`
	SwapsIn      int64 `json:"swaps_in"`
	FileReads    int64 `json:"file_reads"`
	FileWrites   int64 `json:"file_writes"`
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		PageFaults:   m.PageFaults.Load(),
		StackGrowths: m.StackGrowths.Load(),
		SwapsOut:     m.SwapsOut.Load(),
		SwapsIn:      m.SwapsIn.Load(),
		FileReads:    m.FileReads.Load(),
		FileWrites:   m.FileWrites.Load(),
	}
}
