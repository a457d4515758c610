package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/filesys"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/models"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/services"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/utils/web/server"
)

// MmapHandler abre el archivo en la tabla de descriptores del proceso, lo mapea y
// cierra el descriptor. El mapeo conserva su propio handle del archivo.
func MmapHandler(vm *services.VirtualMemory) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.MmapRequest
		if !decodeRequest(w, r, &req) {
			return
		}

		as, err := vm.Process(req.PID)
		if err != nil {
			sendError(w, err)
			return
		}

		file, err := filesys.Open(req.Path)
		if err != nil {
			sendError(w, fmt.Errorf("%w: %v", services.ErrBadFd, err))
			return
		}
		fd := as.Files.Install(file)
		defer as.Files.Close(fd)

		addr, err := as.Mmap(req.Address, req.Length, req.Writable, fd, req.Offset)
		if err != nil {
			sendError(w, err)
			return
		}
		slog.Info(fmt.Sprintf("## PID: %d - Mmap - Archivo: %s - Dirección: 0x%x - Largo: %d", req.PID, req.Path, addr, req.Length))
		server.SendJsonResponse(w, models.MmapResponse{Address: addr})
	}
}

func MunmapHandler(vm *services.VirtualMemory) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.MunmapRequest
		if !decodeRequest(w, r, &req) {
			return
		}

		as, err := vm.Process(req.PID)
		if err != nil {
			sendError(w, err)
			return
		}
		if err := as.Munmap(req.Address); err != nil {
			sendError(w, err)
			return
		}
		slog.Info(fmt.Sprintf("## PID: %d - Munmap - Dirección: 0x%x", req.PID, req.Address))
		w.WriteHeader(http.StatusOK)
	}
}
