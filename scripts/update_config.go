package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Para su uso se debe posicionar en la carpeta scripts
// > ./update_config ip_memory 192.168.1.100
// > ./update_config ip_memory 192.168.1.100 port_memory 8002
// > ./update_config user_pool_frames 16 swap_delay 50

// Módulos cuyas carpetas configs se recorren.
var modules = []string{"memoria", "consola"}

func main() {
	updates, err := parseUpdates(os.Args[1:])
	if err != nil {
		fmt.Println(err)
		fmt.Println("Uso: update_config <clave_1> <valor_1> [<clave_2> <valor_2> ...]")
		fmt.Println("Ejemplo: update_config ip_memory 192.168.0.10 swap_delay 100")
		return
	}

	fmt.Println("Valores a actualizar:")
	for k, v := range updates {
		fmt.Printf("  %s: %v\n", k, v)
	}

	for _, module := range modules {
		moduleConfigPath := filepath.Join("..", module, "configs")
		fmt.Printf("\nProcesando módulo: %s (en %s)\n", module, moduleConfigPath)

		err := filepath.Walk(moduleConfigPath, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				fmt.Printf("  Error al acceder %s: %v\n", path, err)
				return nil
			}
			if info.IsDir() || filepath.Ext(path) != ".json" {
				return nil
			}

			modified, err := updateConfigFile(path, updates)
			switch {
			case err != nil:
				fmt.Printf("  %v\n", err)
			case modified:
				fmt.Printf("  El archivo %s ha sido actualizado correctamente.\n", path)
			default:
				fmt.Printf("  No se encontraron claves a actualizar en %s.\n", path)
			}
			return nil
		})

		if err != nil {
			fmt.Printf("Error al buscar archivos en la carpeta %s: %v\n", moduleConfigPath, err)
		}
	}

	fmt.Println("\nProceso de actualización de configuraciones finalizado.")
}

// parseUpdates arma el mapa clave -> valor a partir de pares de argumentos. Los valores
// que son JSON válido (números, booleanos) conservan su tipo; el resto queda como string.
func parseUpdates(args []string) (map[string]any, error) {
	if len(args) < 2 || len(args)%2 != 0 {
		return nil, fmt.Errorf("se esperaban pares clave valor, se recibieron %d argumentos", len(args))
	}

	updates := make(map[string]any)
	for i := 0; i < len(args); i += 2 {
		var parsedValue any
		if err := json.Unmarshal([]byte(args[i+1]), &parsedValue); err != nil {
			parsedValue = args[i+1]
		}
		updates[args[i]] = parsedValue
	}
	return updates, nil
}

// updateConfigFile reemplaza en el archivo las claves que ya existan. Las claves que el
// archivo no tiene se ignoran, así cada módulo recibe sólo lo que le corresponde.
func updateConfigFile(path string, updates map[string]any) (bool, error) {
	fileContent, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("error al leer el archivo %s: %w", path, err)
	}

	var data map[string]any
	if err := json.Unmarshal(fileContent, &data); err != nil {
		return false, fmt.Errorf("error al parsear JSON en el archivo %s: %w", path, err)
	}

	modified := false
	for updateKey, updateValue := range updates {
		if _, ok := data[updateKey]; ok {
			data[updateKey] = updateValue
			fmt.Printf("    Modificada '%s' en %s a '%v'\n", updateKey, path, updateValue)
			modified = true
		}
	}
	if !modified {
		return false, nil
	}

	newJSON, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return false, fmt.Errorf("error al serializar JSON en el archivo %s: %w", path, err)
	}
	if err := os.WriteFile(path, newJSON, 0644); err != nil {
		return false, fmt.Errorf("error al escribir el archivo %s: %w", path, err)
	}
	return true, nil
}
