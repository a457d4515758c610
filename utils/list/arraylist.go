package list

import (
	"fmt"
	"sync"
)

// List define las operaciones de una lista indexada segura para uso concurrente.
type List[T any] interface {
	Add(item T)                                 // Añadir un elemento al final de la lista
	Find(predicate func(T) bool) (T, int, bool) // Permite buscar un elemento de la lista dado un predicado
	ForEach(callback func(int, T))              // A cada elemento (y su índice) se le aplica la función que le pase
	Get(index int) (T, error)                   // Obtener un elemento a partir de un índice dado
	GetAll() []T                                // Retorna una copia de los elementos de la lista
	Remove(index int) (T, error)                // Eliminar un elemento en el índice dado
	Set(index int, newValue T) error            // Modifica el valor de un elemento a partir de su índice
	Size() int                                  // Retornar el tamaño de la lista
}

// ArrayList implements List
type ArrayList[T any] struct {
	mu    sync.RWMutex
	items []T
}

// Add inserta un elemento al final de la lista.
//
// Parámetros:
//   - item: Elemento a insertar.
//
// Ejemplo:
//
//	func main() {
//		frames := &ArrayList[*Frame]{}
//		frames.Add(&Frame{Number: 0})
//		frames.Add(&Frame{Number: 1})
//	}
func (list *ArrayList[T]) Add(item T) {
	list.mu.Lock() // Bloqueo exclusivo para evitar cambios simultáneos
	defer list.mu.Unlock()

	list.items = append(list.items, item)
}

// Find permite buscar un elemento de la lista dado un predicado. Devuelve el elemento, su índice y si se encontró.
//
// Parámetros:
//   - predicate: Función que permite identificar el elemento buscado.
//
// Ejemplo:
//
//	func main() {
//		list := &ArrayList[int]{}
//		list.Add(10)
//		list.Add(20)
//
//		number, index, found := list.Find(func(number int) bool {
//			return number == 20
//		})
//	}
func (list *ArrayList[T]) Find(predicate func(T) bool) (T, int, bool) {
	list.mu.RLock() //Bloqueo de solo lectura: permite otras lecturas concurrentes
	defer list.mu.RUnlock()

	for i, item := range list.items {
		if predicate(item) {
			return item, i, true
		}
	}
	var zero T
	return zero, -1, false
}

// ForEach recorre la lista en orden aplicando callback a cada índice y elemento.
// callback no debe modificar la lista.
func (list *ArrayList[T]) ForEach(callback func(int, T)) {
	list.mu.RLock()
	defer list.mu.RUnlock()

	for i, item := range list.items {
		callback(i, item)
	}
}

// Get devuelve el elemento en el índice proporcionado.
//
// Parámetros:
//   - index: Índice del elemento a obtener.
//
// Ejemplo:
//
//	func main() {
//		list := &ArrayList[int]{}
//		list.Add(10)
//		list.Add(20)
//
//		value, _ := list.Get(1)
//		fmt.Println("Valor: ", value) //Output: 20
//	}
func (list *ArrayList[T]) Get(index int) (T, error) {
	list.mu.RLock()
	defer list.mu.RUnlock()

	if index < 0 || index >= len(list.items) {
		var zero T
		return zero, fmt.Errorf("index out of range: %d", index)
	}
	return list.items[index], nil
}

// GetAll retorna una copia de todos los elementos que se encuentran en la lista.
func (list *ArrayList[T]) GetAll() []T {
	list.mu.RLock()
	defer list.mu.RUnlock()

	// Copia del slice para que modificaciones externas no afecten la lista interna
	itemsCopy := make([]T, len(list.items))
	copy(itemsCopy, list.items)
	return itemsCopy
}

// Remove remueve un elemento de la lista a partir de su índice y lo devuelve.
// Los elementos siguientes se corren una posición hacia adelante.
//
// Ejemplo:
//
//	func main() {
//		list := &ArrayList[int]{}
//		list.Add(10)
//		list.Add(20)
//		list.Add(30)
//		removed, _ := list.Remove(1) // removed = 20, lista = [10, 30]
//	}
func (list *ArrayList[T]) Remove(index int) (T, error) {
	list.mu.Lock()
	defer list.mu.Unlock()

	if index < 0 || index >= len(list.items) {
		var zero T
		return zero, fmt.Errorf("index out of range: %d", index)
	}
	item := list.items[index]
	list.items = append(list.items[:index], list.items[index+1:]...)
	return item, nil
}

// Set modifica el valor de un elemento de la lista a partir de su índice.
func (list *ArrayList[T]) Set(index int, newValue T) error {
	list.mu.Lock()
	defer list.mu.Unlock()

	if index < 0 || index >= len(list.items) {
		return fmt.Errorf("index out of range: %d", index)
	}
	list.items[index] = newValue
	return nil
}

// Size devuelve el tamaño de la lista.
func (list *ArrayList[T]) Size() int {
	list.mu.RLock()
	defer list.mu.RUnlock()

	return len(list.items)
}
