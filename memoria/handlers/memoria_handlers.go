package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/models"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/services"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/utils/web/server"
)

// decodeRequest valida el método y decodifica el body en req. Si falla ya respondió al cliente.
func decodeRequest(w http.ResponseWriter, r *http.Request, req any) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		slog.Error("Invalid request", "error", err)
		server.SendJsonError(w, http.StatusBadRequest, fmt.Errorf("request inválido: %w", err))
		return false
	}
	return true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrUnknownProcess):
		return http.StatusNotFound
	case errors.Is(err, services.ErrSegFault):
		return http.StatusConflict
	case errors.Is(err, services.ErrMisalignedOffset),
		errors.Is(err, services.ErrBadAddress),
		errors.Is(err, services.ErrBadLength),
		errors.Is(err, services.ErrOverlap),
		errors.Is(err, services.ErrStdStream),
		errors.Is(err, services.ErrBadFd),
		errors.Is(err, services.ErrProcessExists),
		errors.Is(err, services.ErrPageExists):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func sendError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error(err.Error())
	} else {
		slog.Debug(err.Error())
	}
	server.SendJsonError(w, status, err)
}

func MemoryConfigHandler(w http.ResponseWriter, r *http.Request) {
	server.SendJsonResponse(w, models.MemoryConfig)
}

// CreateProcessHandler crea el espacio de direcciones de un proceso nuevo.
func CreateProcessHandler(vm *services.VirtualMemory) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.PIDRequest
		if !decodeRequest(w, r, &req) {
			return
		}

		if _, err := vm.CreateProcess(req.PID); err != nil {
			sendError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func ForkHandler(vm *services.VirtualMemory) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.ForkRequest
		if !decodeRequest(w, r, &req) {
			return
		}

		if _, err := vm.Fork(req.ParentPID, req.ChildPID); err != nil {
			sendError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

// EndProcessHandler destruye el espacio de direcciones y loguea las métricas del proceso.
func EndProcessHandler(vm *services.VirtualMemory) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.PIDRequest
		if !decodeRequest(w, r, &req) {
			return
		}

		if err := vm.Exit(req.PID); err != nil {
			sendError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func FramesHandler(vm *services.VirtualMemory) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		server.SendJsonResponse(w, vm.Frames.Frames())
	}
}

func SwapHandler(vm *services.VirtualMemory) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		server.SendJsonResponse(w, models.SwapInfo{Slots: vm.Swap.Slots(), Used: vm.Swap.Used()})
	}
}

func DumpHandler(vm *services.VirtualMemory, dumpPath string) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.PIDRequest
		if !decodeRequest(w, r, &req) {
			return
		}

		as, err := vm.Process(req.PID)
		if err != nil {
			sendError(w, err)
			return
		}
		path, err := services.DumpProcess(as, dumpPath)
		if err != nil {
			sendError(w, err)
			return
		}
		server.SendJsonResponse(w, models.DumpResponse{Path: path})
	}
}
