// Package ledger contiene las operaciones de dominio del libro de
// inventario: cada función valida y aplica una transición de negocio
// completa contra el almacén local, todo o nada.
package ledger

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Epsilon es la tolerancia en kilos bajo la cual un saldo se considera
// agotado: absorbe la deriva de punto flotante y evita filas fantasma.
const Epsilon = 0.001

var (
	// ErrInsufficientStock: el descuento pedido supera el saldo disponible.
	ErrInsufficientStock = errors.New("stock insuficiente")
	// ErrInvalidTransition: una guarda de la máquina de estados falló.
	ErrInvalidTransition = errors.New("transición inválida")
	// ErrNotFound: la entidad referenciada no existe en el almacén.
	ErrNotFound = errors.New("registro no encontrado")
)

func findByID[T any](tx *gorm.DB, id string) (*T, error) {
	var rec T
	if err := tx.First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	return &rec, nil
}
