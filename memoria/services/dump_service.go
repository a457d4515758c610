package services

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/helpers"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/models"
)

// DumpProcess escribe en dir una página por cada entrada de la SPT, en orden de
// dirección. Las páginas no residentes se vuelcan en cero.
func DumpProcess(as *AddressSpace, dir string) (string, error) {
	slog.Info(fmt.Sprintf("## PID: %d - Memory Dump solicitado", as.Pid))

	path := filepath.Join(dir, helpers.GetDumpName(as.Pid))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0666)
	if err != nil {
		return "", fmt.Errorf("error al crear el dump %s: %w", path, err)
	}
	defer file.Close()

	empty := make([]byte, models.PageSize)
	for _, page := range as.spt.Pages() {
		data, resident := as.frames.Snapshot(page)
		if !resident {
			data = empty
		}
		if _, err := file.Write(data); err != nil {
			return "", fmt.Errorf("error escribiendo el dump %s: %w", path, err)
		}
	}

	slog.Debug(fmt.Sprintf("## PID: %d - Dump generado en %s", as.Pid, path))
	return path, nil
}
