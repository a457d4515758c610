package helpers

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/models"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/utils/config"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/utils/log"
)

// crea un directorio en el path especificado.
func CreateDirectory(dir string) error {
	err := os.MkdirAll(dir, os.ModePerm)

	if err != nil {
		slog.Error(fmt.Sprintf("Error al crear el directorio %s: %v", dir, err))
		return err
	}

	slog.Debug(fmt.Sprintf("Directorio %s creado o ya existía.", dir))
	return nil
}

// InitMemory carga la configuración, levanta el logger y prepara los directorios
// del dump y del archivo de swap.
func InitMemory(configPath string, logPath string) error {
	config.InitConfig(configPath, &models.MemoryConfig)
	log.InitLogger(logPath, models.MemoryConfig.LogLevel)

	slog.Debug(fmt.Sprintf("Port Memory: %d", models.MemoryConfig.PortMemory))
	slog.Debug(fmt.Sprintf("User pool: %d frames", models.MemoryConfig.UserPoolFrames))
	slog.Debug(fmt.Sprintf("Swap: %s (%d sectores)", models.MemoryConfig.SwapFilePath, models.MemoryConfig.SwapSectors))

	if err := CreateDirectory(models.MemoryConfig.DumpPath); err != nil {
		return err
	}
	return CreateDirectory(filepath.Dir(models.MemoryConfig.SwapFilePath))
}

// SwapDelay devuelve el retardo configurado para cada acceso al swap.
func SwapDelay() time.Duration {
	return time.Duration(models.MemoryConfig.SwapDelay) * time.Millisecond
}

func GetDumpName(pid uint) string {
	timestamp := time.Now().Format("20060102-150405")
	return fmt.Sprintf("%d-%s.dmp", pid, timestamp)
}
