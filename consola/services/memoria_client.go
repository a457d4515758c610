package services

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	consoleModels "github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/consola/models"
	memoriaModels "github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/models"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/utils/web/client"
	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/utils/web/handlers"
)

// Executor ejecuta instrucciones de consola contra el módulo de memoria.
type Executor struct {
	Ip   string
	Port int
}

func NewExecutor(config *consoleModels.Config) *Executor {
	return &Executor{Ip: config.IpMemory, Port: config.PortMemory}
}

// Handshake verifica que en la dirección configurada responda el módulo de memoria.
func (e *Executor) Handshake() error {
	var handshake handlers.Handshake
	if err := client.GetJson(e.Port, e.Ip, "memoria", &handshake); err != nil {
		return fmt.Errorf("no se pudo conectar con memoria en %s:%d: %w", e.Ip, e.Port, err)
	}
	if handshake.Module != "memoria" {
		return fmt.Errorf("en %s:%d responde el módulo %q y no memoria", e.Ip, e.Port, handshake.Module)
	}
	slog.Debug(fmt.Sprintf("Handshake con memoria: %s", handshake.Message))
	return nil
}

// Run ejecuta las instrucciones en orden y se detiene en el primer error.
func (e *Executor) Run(instructions []consoleModels.Instruction) error {
	for _, instruction := range instructions {
		if err := e.Execute(instruction); err != nil {
			return fmt.Errorf("línea %d (%s): %w", instruction.Line, instruction.Op, err)
		}
	}
	return nil
}

func (e *Executor) Execute(instruction consoleModels.Instruction) error {
	values := instruction.Values
	slog.Debug(fmt.Sprintf("Ejecutando %s %s", instruction.Op, strings.Join(values, " ")))

	switch instruction.Op {
	case "FRAMES":
		var frames []memoriaModels.FrameInfo
		if err := client.GetJson(e.Port, e.Ip, "memoria/frames", &frames); err != nil {
			return err
		}
		for _, f := range frames {
			slog.Info(fmt.Sprintf("Frame %d - PID: %d - Página: 0x%x - Tipo: %s - Accedida: %v - Modificada: %v", f.Frame, f.PID, f.Address, f.Kind, f.Accessed, f.Dirty))
		}
		return nil
	case "SWAP":
		var swap memoriaModels.SwapInfo
		if err := client.GetJson(e.Port, e.Ip, "memoria/swap", &swap); err != nil {
			return err
		}
		slog.Info(fmt.Sprintf("SWAP - Slots ocupados: %d/%d", swap.Used, swap.Slots))
		return nil
	}

	pid, err := parsePid(values[0])
	if err != nil {
		return err
	}

	switch instruction.Op {
	case "PROCESO":
		return e.post("memoria/proceso", memoriaModels.PIDRequest{PID: pid}, nil)
	case "FINALIZAR":
		return e.post("memoria/finalizar", memoriaModels.PIDRequest{PID: pid}, nil)
	case "FORK":
		child, err := parsePid(values[1])
		if err != nil {
			return err
		}
		return e.post("memoria/fork", memoriaModels.ForkRequest{ParentPID: pid, ChildPID: child}, nil)
	case "SYSCALL":
		rsp, err := parseAddress(values[1])
		if err != nil {
			return err
		}
		return e.post("memoria/syscall", memoriaModels.SyscallRequest{PID: pid, Rsp: rsp}, nil)
	case "FAULT":
		return e.fault(pid, values[1:])
	case "ESCRIBIR":
		address, err := parseAddress(values[1])
		if err != nil {
			return err
		}
		data := []byte(strings.Join(values[2:], " "))
		return e.post("memoria/escribir", memoriaModels.WriteRequest{PID: pid, Address: address, Data: data}, nil)
	case "LEER":
		return e.read(pid, values[1:])
	case "MMAP":
		return e.mmap(pid, values[1:])
	case "MUNMAP":
		address, err := parseAddress(values[1])
		if err != nil {
			return err
		}
		return e.post("memoria/munmap", memoriaModels.MunmapRequest{PID: pid, Address: address}, nil)
	case "DUMP":
		var response memoriaModels.DumpResponse
		if err := e.post("memoria/dump", memoriaModels.PIDRequest{PID: pid}, &response); err != nil {
			return err
		}
		slog.Info(fmt.Sprintf("## PID: %d - Dump en %s", pid, response.Path))
		return nil
	}
	return fmt.Errorf("operación no soportada %s", instruction.Op)
}

func (e *Executor) post(query string, body any, out any) error {
	return client.PostJson(e.Port, e.Ip, query, body, out)
}

func (e *Executor) fault(pid uint, values []string) error {
	address, err := parseAddress(values[0])
	if err != nil {
		return err
	}
	rsp, err := parseAddress(values[1])
	if err != nil {
		return err
	}

	request := memoriaModels.FaultRequest{
		PID:        pid,
		Address:    address,
		User:       !hasFlag(values[2:], "K"),
		Write:      hasFlag(values[2:], "W"),
		NotPresent: !hasFlag(values[2:], "P"),
		Rsp:        rsp,
	}
	var response memoriaModels.FaultResponse
	if err := e.post("memoria/fault", request, &response); err != nil {
		return err
	}
	slog.Info(fmt.Sprintf("## PID: %d - Fallo de página en 0x%x resuelto", pid, address))
	return nil
}

func (e *Executor) read(pid uint, values []string) error {
	address, err := parseAddress(values[0])
	if err != nil {
		return err
	}
	size, err := strconv.Atoi(values[1])
	if err != nil {
		return fmt.Errorf("tamaño inválido %s: %w", values[1], err)
	}

	var response memoriaModels.ReadResponse
	if err := e.post("memoria/leer", memoriaModels.ReadRequest{PID: pid, Address: address, Size: size}, &response); err != nil {
		return err
	}
	slog.Info(fmt.Sprintf("## PID: %d - Lectura en 0x%x: %q", pid, address, response.Data))
	return nil
}

func (e *Executor) mmap(pid uint, values []string) error {
	address, err := parseAddress(values[0])
	if err != nil {
		return err
	}
	length, err := strconv.ParseInt(values[1], 0, 64)
	if err != nil {
		return fmt.Errorf("largo inválido %s: %w", values[1], err)
	}
	offset, err := strconv.ParseInt(values[3], 0, 64)
	if err != nil {
		return fmt.Errorf("offset inválido %s: %w", values[3], err)
	}

	request := memoriaModels.MmapRequest{
		PID:      pid,
		Address:  address,
		Length:   length,
		Writable: !hasFlag(values[4:], "RO"),
		Path:     values[2],
		Offset:   offset,
	}
	var response memoriaModels.MmapResponse
	if err := e.post("memoria/mmap", request, &response); err != nil {
		return err
	}
	slog.Info(fmt.Sprintf("## PID: %d - Archivo %s mapeado en 0x%x", pid, values[2], response.Address))
	return nil
}
