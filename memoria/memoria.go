package main

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/devices/disk"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/devices/palloc"
	memoryHandler "github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/handlers"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/helpers"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/models"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/services"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/utils/web/handlers"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/utils/web/server"
)

const (
	//NO borrar el comentario de ConfigPath
	ConfigPath = "memoria/configs/memoria.json" //"./configs/memoria.json"
	LogPath    = "./logs/memoria.log"           //"./memoria.log"
)

func main() {
	if err := helpers.InitMemory(ConfigPath, LogPath); err != nil {
		panic(err)
	}

	pool, err := palloc.New(models.MemoryConfig.UserPoolFrames)
	if err != nil {
		slog.Error(fmt.Sprintf("error reservando el user pool: %v", err))
		panic(err)
	}
	defer pool.Close()

	swapDisk, err := disk.OpenFileDisk(models.MemoryConfig.SwapFilePath, uint32(models.MemoryConfig.SwapSectors))
	if err != nil {
		slog.Error(fmt.Sprintf("error abriendo el swap: %v", err))
		panic(err)
	}
	defer swapDisk.Close()

	vm := services.NewVirtualMemory(pool, swapDisk, helpers.SwapDelay())
	slog.Debug("Memoria inicializada", "frames", pool.Len(), "slots de swap", vm.Swap.Slots())

	http.HandleFunc("GET /", handlers.HandshakeHandler("memoria", "Bienvenido al módulo de Memoria"))
	http.HandleFunc("GET /memoria", handlers.HandshakeHandler("memoria", "Memoria en funcionamiento 🚀"))
	http.HandleFunc("GET /config/memoria", memoryHandler.MemoryConfigHandler)

	http.HandleFunc("POST /memoria/proceso", memoryHandler.CreateProcessHandler(vm))
	http.HandleFunc("POST /memoria/fork", memoryHandler.ForkHandler(vm))
	http.HandleFunc("POST /memoria/finalizar", memoryHandler.EndProcessHandler(vm))

	http.HandleFunc("POST /memoria/syscall", memoryHandler.SyscallHandler(vm))
	http.HandleFunc("POST /memoria/fault", memoryHandler.FaultHandler(vm))
	http.HandleFunc("POST /memoria/leer", memoryHandler.ReadMemoryHandler(vm))
	http.HandleFunc("POST /memoria/escribir", memoryHandler.WriteMemoryHandler(vm))

	http.HandleFunc("POST /memoria/mmap", memoryHandler.MmapHandler(vm))
	http.HandleFunc("POST /memoria/munmap", memoryHandler.MunmapHandler(vm))

	http.HandleFunc("POST /memoria/dump", memoryHandler.DumpHandler(vm, models.MemoryConfig.DumpPath))
	http.HandleFunc("GET /memoria/frames", memoryHandler.FramesHandler(vm))
	http.HandleFunc("GET /memoria/swap", memoryHandler.SwapHandler(vm))
	slog.Info("Memoria lista")

	err = server.InitServer(models.MemoryConfig.PortMemory)
	if err != nil {
		slog.Error(fmt.Sprintf("error initializing server: %v", err))
		panic(err)
	}
}
