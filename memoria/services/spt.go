package services

import (
	"sync"

	"github.com/benbjohnson/immutable"

	"github.com/sisoputnfrba/tp-2025-2c-Los-magiOS/memoria/models"
)

type addressComparer struct{}

func (addressComparer) Compare(a, b uintptr) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// SupplementalPageTable indexa las páginas de un proceso por dirección virtual alineada.
// Las lecturas trabajan sobre una versión inmutable del mapa, así que recorrerla no
// bloquea a quien inserta o elimina.
type SupplementalPageTable struct {
	mu    sync.RWMutex
	pages *immutable.SortedMap[uintptr, *Page]
}

func NewSupplementalPageTable() *SupplementalPageTable {
	return &SupplementalPageTable{
		pages: immutable.NewSortedMap[uintptr, *Page](addressComparer{}),
	}
}

// Find devuelve la página que contiene va, o nil.
func (spt *SupplementalPageTable) Find(va uintptr) *Page {
	page, ok := spt.snapshot().Get(models.PageRoundDown(va))
	if !ok {
		return nil
	}
	return page
}

// Insert registra la página si no hay otra en la misma dirección.
func (spt *SupplementalPageTable) Insert(page *Page) bool {
	spt.mu.Lock()
	defer spt.mu.Unlock()

	if _, exists := spt.pages.Get(page.Va); exists {
		return false
	}
	spt.pages = spt.pages.Set(page.Va, page)
	return true
}

// Remove quita la página si es la que está registrada en su dirección.
func (spt *SupplementalPageTable) Remove(page *Page) bool {
	spt.mu.Lock()
	defer spt.mu.Unlock()

	current, ok := spt.pages.Get(page.Va)
	if !ok || current != page {
		return false
	}
	spt.pages = spt.pages.Delete(page.Va)
	return true
}

// Pages devuelve las páginas ordenadas por dirección.
func (spt *SupplementalPageTable) Pages() []*Page {
	pages := spt.snapshot()

	result := make([]*Page, 0, pages.Len())
	itr := pages.Iterator()
	for !itr.Done() {
		_, page, _ := itr.Next()
		result = append(result, page)
	}
	return result
}

// AnyInRange indica si hay alguna página en [start, end).
func (spt *SupplementalPageTable) AnyInRange(start, end uintptr) bool {
	itr := spt.snapshot().Iterator()
	itr.Seek(models.PageRoundDown(start))
	if itr.Done() {
		return false
	}
	va, _, _ := itr.Next()
	return va < end
}

func (spt *SupplementalPageTable) Len() int {
	return spt.snapshot().Len()
}

func (spt *SupplementalPageTable) snapshot() *immutable.SortedMap[uintptr, *Page] {
	spt.mu.RLock()
	defer spt.mu.RUnlock()

	return spt.pages
}
