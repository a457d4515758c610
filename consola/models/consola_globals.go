package models

import "fmt"

type Config struct {
	IpMemory   string `json:"ip_memory"`
	PortMemory int    `json:"port_memory"`
	LogLevel   string `json:"log_level"`
}

var ConsoleConfig *Config

func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("configuración vacía")
	}
	if c.IpMemory == "" {
		return fmt.Errorf("ip_memory no puede estar vacío")
	}
	if c.PortMemory <= 0 {
		return fmt.Errorf("port_memory inválido: %d", c.PortMemory)
	}
	return nil
}

// Instruction es una línea del script ya separada en operación y parámetros.
type Instruction struct {
	Line   int
	Op     string
	Values []string
}
