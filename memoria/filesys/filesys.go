// Package filesys expone las primitivas de archivos que consume la memoria virtual:
// lectura/escritura posicional, largo, reapertura y la tabla de descriptores del proceso.
package filesys

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

const (
	Stdin  = 0
	Stdout = 1
)

var ErrBadFd = errors.New("descriptor de archivo inválido")

type File interface {
	io.ReaderAt
	io.WriterAt
	Length() (int64, error)
	// Reopen devuelve un handle independiente sobre el mismo archivo.
	Reopen() (File, error)
	Name() string
	Close() error
}

type OSFile struct {
	file *os.File
}

func Open(path string) (*OSFile, error) {
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("no se pudo abrir %s: %w", path, err)
	}
	return &OSFile{file: file}, nil
}

func (f *OSFile) ReadAt(p []byte, off int64) (int, error) {
	return f.file.ReadAt(p, off)
}

func (f *OSFile) WriteAt(p []byte, off int64) (int, error) {
	return f.file.WriteAt(p, off)
}

func (f *OSFile) Length() (int64, error) {
	info, err := f.file.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (f *OSFile) Reopen() (File, error) {
	return Open(f.file.Name())
}

func (f *OSFile) Name() string {
	return f.file.Name()
}

func (f *OSFile) Close() error {
	return f.file.Close()
}

// Table es la tabla de descriptores de un proceso. Los descriptores 0 y 1 quedan
// reservados para la entrada y salida estándar y nunca resuelven a un archivo.
type Table struct {
	mu    sync.Mutex
	files map[int]File
	next  int
}

func NewTable() *Table {
	return &Table{files: make(map[int]File), next: 2}
}

func (t *Table) Install(f File) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	fd := t.next
	t.files[fd] = f
	t.next++
	return fd
}

func (t *Table) Lookup(fd int) (File, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	f, ok := t.files[fd]
	return f, ok
}

func (t *Table) Close(fd int) error {
	t.mu.Lock()
	f, ok := t.files[fd]
	delete(t.files, fd)
	t.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %d", ErrBadFd, fd)
	}
	return f.Close()
}

// CloseAll cierra todos los descriptores abiertos; se usa al terminar el proceso.
func (t *Table) CloseAll() {
	t.mu.Lock()
	files := t.files
	t.files = make(map[int]File)
	t.mu.Unlock()

	for _, f := range files {
		f.Close()
	}
}

func IsStdStream(fd int) bool {
	return fd == Stdin || fd == Stdout
}
