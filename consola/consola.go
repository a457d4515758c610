package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/consola/models"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/consola/services"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/utils/config"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/utils/log"
)

const (
	//NO borrar el comentario de ConfigPath
	ConfigPath = "consola/configs/consola.json" //"./configs/consola.json"
	LogPath    = "./logs/consola.log"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Falta el parámetro [archivo_script]. Ejemplo: ./bin/consola scripts/prueba.txt")
		os.Exit(1)
	}

	config.InitConfig(ConfigPath, &models.ConsoleConfig)
	log.InitLogger(LogPath, models.ConsoleConfig.LogLevel)

	script, err := os.Open(os.Args[1])
	if err != nil {
		slog.Error(fmt.Sprintf("No se pudo abrir el script: %v", err))
		os.Exit(1)
	}
	defer script.Close()

	instructions, err := services.ReadScript(script)
	if err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}

	slog.Debug(fmt.Sprintf("Se ejecutarán %d instrucciones contra %s:%d", len(instructions), models.ConsoleConfig.IpMemory, models.ConsoleConfig.PortMemory))
	executor := services.NewExecutor(models.ConsoleConfig)
	if err := executor.Handshake(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
	if err := executor.Run(instructions); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
	slog.Info("Script finalizado")
}
