package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/bits-and-blooms/bitset"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/devices/disk"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/models"
)

// SwapTable reparte el dispositivo de swap en slots de una página. El slot i ocupa
// los sectores [i*SectorsPerPage, (i+1)*SectorsPerPage).
type SwapTable struct {
	mu    sync.Mutex
	disk  disk.Device
	used  *bitset.BitSet
	slots uint
	delay time.Duration
}

func NewSwapTable(dev disk.Device, delay time.Duration) *SwapTable {
	slots := uint(dev.Size()) / models.SectorsPerPage
	return &SwapTable{
		disk:  dev,
		used:  bitset.New(slots),
		slots: slots,
		delay: delay,
	}
}

// Out guarda la página en el primer slot libre y lo devuelve. El slot se marca
// ocupado recién cuando todos los sectores fueron escritos.
func (st *SwapTable) Out(kva []byte) (int, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	slot, ok := st.used.NextClear(0)
	if !ok || slot >= st.slots {
		return noSlot, ErrSwapFull
	}

	st.wait()
	for i := uint(0); i < models.SectorsPerPage; i++ {
		sector := uint32(slot*models.SectorsPerPage + i)
		chunk := kva[i*models.SectorSize : (i+1)*models.SectorSize]
		if err := st.disk.WriteSector(sector, chunk); err != nil {
			return noSlot, fmt.Errorf("error escribiendo el slot %d: %w", slot, err)
		}
	}
	st.used.Set(slot)
	return int(slot), nil
}

// In lee el slot en kva y lo libera.
func (st *SwapTable) In(slot int, kva []byte) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if !st.valid(slot) || !st.used.Test(uint(slot)) {
		return fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}

	st.wait()
	for i := 0; i < models.SectorsPerPage; i++ {
		sector := uint32(slot*models.SectorsPerPage + i)
		chunk := kva[i*models.SectorSize : (i+1)*models.SectorSize]
		if err := st.disk.ReadSector(sector, chunk); err != nil {
			return fmt.Errorf("error leyendo el slot %d: %w", slot, err)
		}
	}
	st.used.Clear(uint(slot))
	return nil
}

// Free libera un slot sin leerlo. Se usa al destruir páginas anónimas desalojadas.
func (st *SwapTable) Free(slot int) {
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.valid(slot) {
		st.used.Clear(uint(slot))
	}
}

func (st *SwapTable) Used() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	return int(st.used.Count())
}

func (st *SwapTable) Slots() int {
	return int(st.slots)
}

func (st *SwapTable) valid(slot int) bool {
	return slot >= 0 && uint(slot) < st.slots
}

// wait simula la latencia del dispositivo de swap.
func (st *SwapTable) wait() {
	if st.delay > 0 {
		time.Sleep(st.delay)
	}
}
