package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrCapacityExceeded  = errors.New("capacidad de bodega excedida")
	ErrDataIntegrity     = errors.New("violación de integridad de datos")
	ErrStorage           = errors.New("falla de almacenamiento")
)

// ValidationError describe un campo de entrada rechazado antes de cualquier escritura.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("entrada inválida: %s", e.Reason)
	}
	return fmt.Sprintf("entrada inválida: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Invalid construye un ValidationError para el campo indicado.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// InsufficientStockError reporta lo disponible frente a lo solicitado.
type InsufficientStockError struct {
	ItemID      string
	WarehouseID string
	Available   int64
	Requested   int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para el ítem %s en la bodega %s: disponible %d, solicitado %d",
		e.ItemID, e.WarehouseID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// CapacityExceededError se usa solo cuando la validación de capacidad está activa.
type CapacityExceededError struct {
	WarehouseID string
	MaxCapacity int64
	Used        int64
	Incoming    int64
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("la bodega %s excede su capacidad: usado %d + entrante %d > máximo %d",
		e.WarehouseID, e.Used, e.Incoming, e.MaxCapacity)
}

func (e *CapacityExceededError) Unwrap() error { return ErrCapacityExceeded }

// DataIntegrityError indica un invariante roto en datos persistidos (cantidad negativa,
// registro en cero). Nunca se corrige en silencio.
type DataIntegrityError struct {
	Entity string
	ID     string
	Detail string
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("integridad de datos (%s %s): %s", e.Entity, e.ID, e.Detail)
}

func (e *DataIntegrityError) Unwrap() error { return ErrDataIntegrity }

// StorageError envuelve fallas del almacén subyacente; errors.Is(err, ErrStorage) es verdadero
// y errors.Is contra la causa original también.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() []error { return []error{ErrStorage, e.Err} }

// Storage envuelve err como falla de almacenamiento. Devuelve nil si err es nil.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
