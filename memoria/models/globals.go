package models

import "fmt"

type Config struct {
	IpMemory       string `json:"ip_memory"`
	PortMemory     int    `json:"port_memory"`
	UserPoolFrames int    `json:"user_pool_frames"`
	SwapFilePath   string `json:"swap_file_path"`
	SwapSectors    int    `json:"swap_sectors"`
	SwapDelay      int    `json:"swap_delay"`
	LogLevel       string `json:"log_level"`
	DumpPath       string `json:"dump_path"`
}

var MemoryConfig *Config

// Validate revisa que los valores del archivo de configuración sean utilizables antes de levantar la memoria.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("configuración vacía")
	}
	if c.PortMemory <= 0 {
		return fmt.Errorf("port_memory inválido: %d", c.PortMemory)
	}
	if c.UserPoolFrames <= 0 {
		return fmt.Errorf("user_pool_frames debe ser positivo, se recibió %d", c.UserPoolFrames)
	}
	if c.SwapFilePath == "" {
		return fmt.Errorf("swap_file_path no puede estar vacío")
	}
	if c.SwapSectors < SectorsPerPage {
		return fmt.Errorf("swap_sectors debe alcanzar al menos para una página (%d sectores), se recibió %d", SectorsPerPage, c.SwapSectors)
	}
	if c.SwapDelay < 0 {
		return fmt.Errorf("swap_delay no puede ser negativo: %d", c.SwapDelay)
	}
	return nil
}

type PIDRequest struct {
	PID uint `json:"pid"`
}

type ForkRequest struct {
	ParentPID uint `json:"parent_pid"`
	ChildPID  uint `json:"child_pid"`
}

type FaultRequest struct {
	PID        uint    `json:"pid"`
	Address    uintptr `json:"address"`
	User       bool    `json:"user"`
	Write      bool    `json:"write"`
	NotPresent bool    `json:"not_present"`
	Rsp        uintptr `json:"rsp"`
}

type FaultResponse struct {
	Resolved bool `json:"resolved"`
}

// SyscallRequest avisa que el proceso entró al kernel con ese stack pointer de usuario.
type SyscallRequest struct {
	PID uint    `json:"pid"`
	Rsp uintptr `json:"rsp"`
}

type ReadRequest struct {
	PID     uint    `json:"pid"`
	Address uintptr `json:"address"`
	Size    int     `json:"size"`
}

type ReadResponse struct {
	Data []byte `json:"data"`
}

type WriteRequest struct {
	PID     uint    `json:"pid"`
	Address uintptr `json:"address"`
	Data    []byte  `json:"data"`
}

type MmapRequest struct {
	PID      uint    `json:"pid"`
	Address  uintptr `json:"address"`
	Length   int64   `json:"length"`
	Writable bool    `json:"writable"`
	Path     string  `json:"path"`
	Offset   int64   `json:"offset"`
}

type MmapResponse struct {
	Address uintptr `json:"address"`
}

type MunmapRequest struct {
	PID     uint    `json:"pid"`
	Address uintptr `json:"address"`
}

// FrameInfo describe un frame del user pool para los endpoints de inspección.
type FrameInfo struct {
	Frame    int     `json:"frame"`
	PID      uint    `json:"pid"`
	Address  uintptr `json:"address"`
	Kind     string  `json:"kind"`
	Accessed bool    `json:"accessed"`
	Dirty    bool    `json:"dirty"`
	Pinned   bool    `json:"pinned"`
}

type SwapInfo struct {
	Slots int `json:"slots"`
	Used  int `json:"used"`
}

type DumpResponse struct {
	Path string `json:"path"`
}
