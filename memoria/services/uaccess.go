package services

import (
	"errors"
	"fmt"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/mmu"
)

// ReadUser copia en buf el contenido de la memoria de usuario desde va. Los fallos de
// página se resuelven como si los hubiera producido el proceso.
func (as *AddressSpace) ReadUser(va uintptr, buf []byte) error {
	return as.access(va, len(buf), false, func(page []byte, done int) int {
		return copy(buf[done:], page)
	})
}

// WriteUser escribe data en la memoria de usuario desde va.
func (as *AddressSpace) WriteUser(va uintptr, data []byte) error {
	return as.access(va, len(data), true, func(page []byte, done int) int {
		return copy(page, data[done:])
	})
}

func (as *AddressSpace) access(va uintptr, size int, write bool, move func(page []byte, done int) int) error {
	for done := 0; done < size; {
		addr := va + uintptr(done)

		var moved int
		err := as.frames.Access(as.pt, addr, write, func(page []byte) {
			moved = move(page, done)
		})

		var fault *mmu.Fault
		if errors.As(err, &fault) {
			if !as.HandleFault(addr, true, write, fault.NotPresent, as.Rsp()) {
				return fmt.Errorf("%w: 0x%x", ErrSegFault, addr)
			}
			continue
		}
		if err != nil {
			return err
		}
		done += moved
	}
	return nil
}
