package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/models"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/services"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/utils/web/server"
)

// FaultHandler resuelve un fallo de página reportado por la CPU. Si el fallo es fatal
// responde 409; finalizar el proceso queda a cargo de quien llama.
func FaultHandler(vm *services.VirtualMemory) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.FaultRequest
		if !decodeRequest(w, r, &req) {
			return
		}

		as, err := vm.Process(req.PID)
		if err != nil {
			sendError(w, err)
			return
		}

		resolved := as.HandleFault(req.Address, req.User, req.Write, req.NotPresent, req.Rsp)
		if !resolved {
			slog.Info(fmt.Sprintf("## PID: %d - Fallo de página fatal - Dirección: 0x%x", req.PID, req.Address))
			server.SendJsonStatus(w, http.StatusConflict, models.FaultResponse{Resolved: false})
			return
		}
		server.SendJsonResponse(w, models.FaultResponse{Resolved: true})
	}
}

// SyscallHandler registra la entrada del proceso al kernel con su stack pointer de usuario.
func SyscallHandler(vm *services.VirtualMemory) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.SyscallRequest
		if !decodeRequest(w, r, &req) {
			return
		}

		as, err := vm.Process(req.PID)
		if err != nil {
			sendError(w, err)
			return
		}
		as.EnterKernel(req.Rsp)
		w.WriteHeader(http.StatusOK)
	}
}

func ReadMemoryHandler(vm *services.VirtualMemory) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.ReadRequest
		if !decodeRequest(w, r, &req) {
			return
		}
		if req.Size < 0 {
			server.SendJsonError(w, http.StatusBadRequest, fmt.Errorf("tamaño inválido: %d", req.Size))
			return
		}

		as, err := vm.Process(req.PID)
		if err != nil {
			sendError(w, err)
			return
		}

		data := make([]byte, req.Size)
		if err := as.ReadUser(req.Address, data); err != nil {
			sendError(w, err)
			return
		}
		slog.Info(fmt.Sprintf("## PID: %d - Lectura - Dir. Virtual: 0x%x - Tamaño: %d", req.PID, req.Address, req.Size))
		server.SendJsonResponse(w, models.ReadResponse{Data: data})
	}
}

func WriteMemoryHandler(vm *services.VirtualMemory) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.WriteRequest
		if !decodeRequest(w, r, &req) {
			return
		}

		as, err := vm.Process(req.PID)
		if err != nil {
			sendError(w, err)
			return
		}

		if err := as.WriteUser(req.Address, req.Data); err != nil {
			sendError(w, err)
			return
		}
		slog.Info(fmt.Sprintf("## PID: %d - Escritura - Dir. Virtual: 0x%x - Tamaño: %d", req.PID, req.Address, len(req.Data)))
		w.WriteHeader(http.StatusOK)
	}
}
