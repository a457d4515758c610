package services

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/consola/models"
)

// Cantidad mínima de parámetros de cada operación.
var arity = map[string]int{
	"PROCESO":   1, // PROCESO pid
	"FORK":      2, // FORK padre hijo
	"FINALIZAR": 1, // FINALIZAR pid
	"SYSCALL":   2, // SYSCALL pid rsp
	"FAULT":     3, // FAULT pid dirección rsp [W] [K] [P]
	"ESCRIBIR":  3, // ESCRIBIR pid dirección texto...
	"LEER":      3, // LEER pid dirección tamaño
	"MMAP":      5, // MMAP pid dirección largo archivo offset [RO]
	"MUNMAP":    2, // MUNMAP pid dirección
	"DUMP":      1, // DUMP pid
	"FRAMES":    0,
	"SWAP":      0,
}

// ReadScript lee un script de consola. Las líneas vacías y las que empiezan con # se ignoran.
func ReadScript(reader io.Reader) ([]models.Instruction, error) {
	var instructions []models.Instruction
	scanner := bufio.NewScanner(reader)

	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		instruction, err := ParseInstruction(line, text)
		if err != nil {
			return nil, err
		}
		instructions = append(instructions, instruction)
	}
	return instructions, scanner.Err()
}

func ParseInstruction(line int, text string) (models.Instruction, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return models.Instruction{}, fmt.Errorf("línea %d: instrucción vacía", line)
	}

	op := strings.ToUpper(fields[0])
	expected, ok := arity[op]
	if !ok {
		return models.Instruction{}, fmt.Errorf("línea %d: operación desconocida %s", line, fields[0])
	}
	if len(fields)-1 < expected {
		return models.Instruction{}, fmt.Errorf("línea %d: %s espera %d parámetros, se recibieron %d", line, op, expected, len(fields)-1)
	}
	return models.Instruction{Line: line, Op: op, Values: fields[1:]}, nil
}

// parseAddress acepta direcciones en decimal o con prefijo 0x.
func parseAddress(value string) (uintptr, error) {
	address, err := strconv.ParseUint(value, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("dirección inválida %s: %w", value, err)
	}
	return uintptr(address), nil
}

func parsePid(value string) (uint, error) {
	pid, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("pid inválido %s: %w", value, err)
	}
	return uint(pid), nil
}

func hasFlag(values []string, flag string) bool {
	for _, v := range values {
		if strings.EqualFold(v, flag) {
			return true
		}
	}
	return false
}
