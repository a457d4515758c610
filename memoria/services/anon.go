package services

import (
	"fmt"
	"log/slog"
)

// anonSwapIn trae la página desde su slot de swap. Una página anónima que nunca
// fue desalojada no tiene slot y arranca en cero.
func (p *Page) anonSwapIn(a *anonPage, kva []byte) error {
	if a.slot == noSlot {
		clear(kva)
		return nil
	}

	if err := p.as.swap.In(a.slot, kva); err != nil {
		return err
	}
	slog.Debug(fmt.Sprintf("## PID: %d - Página 0x%x recuperada de SWAP - Slot: %d", p.as.Pid, p.Va, a.slot))
	a.slot = noSlot
	p.as.Metrics.SwapsIn.Add(1)
	return nil
}

func (p *Page) anonSwapOut(a *anonPage, kva []byte) error {
	slot, err := p.as.swap.Out(kva)
	if err != nil {
		return fmt.Errorf("no se pudo desalojar la página 0x%x del proceso %d: %w", p.Va, p.as.Pid, err)
	}

	a.slot = slot
	p.as.pt.ClearPage(p.Va)
	p.as.Metrics.SwapsOut.Add(1)
	slog.Debug(fmt.Sprintf("## PID: %d - Página 0x%x movida a SWAP - Slot: %d", p.as.Pid, p.Va, slot))
	return nil
}

func (p *Page) anonDestroy(a *anonPage) {
	if a.slot == noSlot {
		return
	}
	p.as.swap.Free(a.slot)
	a.slot = noSlot
}
