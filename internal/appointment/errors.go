package appointment

import (
	"errors"
	"fmt"

	"github.com/turnoshq/turnos-api/internal/datekey"
)

// Validation sentinels carry the exact message shown at the front desk, in
// Spanish like the rest of the user-facing surface. Each rejection reason
// is its own error so callers can tell a malformed date apart from a
// weekend booking.
var (
	ErrDateRequired   = errors.New("La fecha es obligatoria.")
	ErrDateFormat     = errors.New("La fecha debe seguir el formato YYYY-MM-DD.")
	ErrDateNotWeekday = errors.New("Solo se permiten citas de lunes a viernes.")

	ErrNameRequired = errors.New("El nombre es obligatorio.")
	ErrNameTooLong  = errors.New("El nombre es demasiado largo.")
	ErrPhoneTooLong = errors.New("El teléfono no puede superar los 30 caracteres.")
	ErrPhoneInvalid = errors.New("Introduce un teléfono válido.")
	ErrNotesTooLong = errors.New("Las notas no pueden superar los 500 caracteres.")

	ErrEmptyUpdate = errors.New("Indica al menos un campo para actualizar.")

	ErrAmbiguousFilter = errors.New("Indica un único filtro (day, week, month o start/end).")
	ErrInvalidRange    = errors.New("Rango inválido: start y end deben estar definidos con formato YYYY-MM-DD.")
	ErrInvalidDay      = errors.New("El parámetro day debe tener formato YYYY-MM-DD.")
	ErrInvalidWeek     = errors.New("El parámetro week debe tener formato YYYY-MM-DD.")
	ErrInvalidMonth    = errors.New("El parámetro month debe tener un mes válido.")
	ErrNoFilter        = errors.New("Indica un filtro: day, week, month o start/end.")
)

// ErrNotFound means the mutation target does not exist, detected by a zero
// affected-row count.
var ErrNotFound = errors.New("appointment not found")

// CapacityError rejects a creation on a date that already reached the
// per-day ceiling. It keeps the offending date so callers can render it.
type CapacityError struct {
	Date string
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("Límite de %d turnos alcanzado para %s.",
		MaxAppointmentsPerDay, datekey.FormatHuman(e.Date))
}
