package config

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
)

// Validator lo implementan las configuraciones que necesitan chequear sus valores después de leerse.
type Validator interface {
	Validate() error
}

// InitConfig lee el archivo de configuración y carga sus valores en config. Si el archivo no existe,
// no se puede parsear o la configuración no es válida, termina con panic.
//
// Parámetros:
//   - filePath: ubicacion donde se encuentra el archivo de configuracion
//   - config: puntero a cualquier tipo de estructura
//
// Ejemplo:
//
//	func main() {
//		config.InitConfig("./configs/memoria.json", &models.MemoryConfig)
//	}
func InitConfig(filePath string, config any) {
	if err := LoadConfig(filePath, config); err != nil {
		panic(fmt.Errorf("error al configurar el archivo %s: %w", filePath, err))
	}
}

// LoadConfig es como InitConfig pero devuelve el error en lugar de terminar.
func LoadConfig(filePath string, config any) error {
	if err := setupConfig(filePath, config); err != nil {
		return err
	}
	return validate(config)
}

// validate acepta tanto *T como **T, que es lo que llega cuando se carga sobre una variable global de tipo *T.
func validate(config any) error {
	if v, ok := config.(Validator); ok {
		return v.Validate()
	}
	value := reflect.ValueOf(config)
	if value.Kind() == reflect.Pointer && !value.IsNil() {
		if v, ok := value.Elem().Interface().(Validator); ok {
			return v.Validate()
		}
	}
	return nil
}

func setupConfig(filePath string, config any) error {
	configFile, err := os.Open(filePath)

	if err != nil {
		return err
	}

	defer configFile.Close()

	jsonParser := json.NewDecoder(configFile)
	jsonParser.DisallowUnknownFields()

	if err := jsonParser.Decode(config); err != nil {
		return fmt.Errorf("json inválido en %s: %w", filePath, err)
	}

	return nil
}
