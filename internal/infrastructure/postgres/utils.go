package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}

// isCheckViolation 23514: una fila violó un CHECK (p. ej. quantity > 0).
func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23514"
}

// isInvalidText 22P02: un parámetro no se pudo convertir al tipo de la columna (p. ej. uuid).
// También cubre el fallo de codificación del lado de pgx, que no llega al servidor.
func isInvalidText(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "22P02"
	}
	return strings.Contains(err.Error(), "failed to encode args")
}

// validID indica si todos los ids tienen formato UUID. Un id mal formado no puede existir en
// una columna uuid: las lecturas lo tratan como "no encontrado" sin consultar.
func validID(ids ...string) bool {
	for _, id := range ids {
		if uuid.Validate(id) != nil {
			return false
		}
	}
	return true
}

// wrap traduce errores de pgx al vocabulario del dominio.
func wrap(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return fmt.Errorf("%s: %w", op, domain.ErrDuplicate)
	case isCheckViolation(err):
		return &domain.DataIntegrityError{Entity: op, Detail: err.Error()}
	case isInvalidText(err):
		return domain.Invalid("id", op+": formato de identificador inválido")
	default:
		return domain.Storage(op, err)
	}
}

// noRows indica pgx.ErrNoRows; los Get* lo convierten en (nil, nil).
func noRows(err error) bool { return errors.Is(err, pgx.ErrNoRows) }

// nullable convierte "" en NULL para columnas de referencia opcionales.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func notFound(entityName, id string) error {
	return fmt.Errorf("%s %s: %w", entityName, id, domain.ErrNotFound)
}
