package services

import (
	"fmt"
	"log/slog"
)

func (p *Page) fileSwapIn(f *filePage, kva []byte) error {
	return p.readSegment(&f.Segment, kva)
}

// fileSwapOut escribe la página en su archivo sólo si fue modificada y la quita de la tabla de hardware.
func (p *Page) fileSwapOut(f *filePage, kva []byte) error {
	if err := p.writeBack(f, kva); err != nil {
		return err
	}
	p.as.pt.ClearPage(p.Va)
	return nil
}

func (p *Page) fileDestroy(f *filePage, kva []byte) error {
	return p.writeBack(f, kva)
}

func (p *Page) writeBack(f *filePage, kva []byte) error {
	if kva == nil || !p.as.pt.IsDirty(p.Va) {
		return nil
	}

	if _, err := f.File.WriteAt(kva[:f.ReadBytes], f.Offset); err != nil {
		return fmt.Errorf("error escribiendo la página 0x%x en %s: %w", p.Va, f.File.Name(), err)
	}
	p.as.pt.SetDirty(p.Va, false)
	p.as.Metrics.FileWrites.Add(1)
	slog.Debug(fmt.Sprintf("## PID: %d - Página 0x%x escrita en %s - Offset: %d - Bytes: %d", p.as.Pid, p.Va, f.File.Name(), f.Offset, f.ReadBytes))
	return nil
}
