package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/turnoshq/turnos-api/internal/appointment"
	"github.com/turnoshq/turnos-api/internal/lock"
)

// AppointmentService is the surface the handlers need from the booking
// service. Narrowed to an interface so handler tests can stub it.
type AppointmentService interface {
	Create(ctx context.Context, in appointment.CreateInput) (*appointment.Appointment, error)
	Update(ctx context.Context, id int64, in appointment.UpdateInput) error
	Delete(ctx context.Context, id int64) error
	ListDay(ctx context.Context, day string) ([]appointment.Appointment, error)
	CountRange(ctx context.Context, start, end string) ([]appointment.DayCount, error)
}

const (
	msgInvalidBody   = "El cuerpo de la petición no es válido."
	msgUnknownFields = "La petición contiene campos no permitidos."
	msgInvalidID     = "Identificador inválido."
	msgDayBusy       = "El día está siendo reservado, inténtalo de nuevo."
	msgNotFound      = "No existe la cita indicada."
	msgInternal      = "Error interno, inténtalo más tarde."
)

func decodeStrict(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func decodeError(w http.ResponseWriter, err error) {
	if strings.Contains(err.Error(), "unknown field") {
		writeError(w, http.StatusBadRequest, msgUnknownFields)
		return
	}
	writeError(w, http.StatusBadRequest, msgInvalidBody)
}

func listAppointmentsHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter, err := appointment.ResolveListQuery(appointment.ListQuery{
			Day:   q.Get("day"),
			Week:  q.Get("week"),
			Month: q.Get("month"),
			Start: q.Get("start"),
			End:   q.Get("end"),
		})
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		if filter.Kind == appointment.FilterDay {
			appts, err := svc.ListDay(r.Context(), filter.Day)
			if err != nil {
				writeError(w, http.StatusInternalServerError, msgInternal)
				return
			}
			resp := make([]AppointmentResponse, 0, len(appts))
			for i := range appts {
				resp = append(resp, toAppointmentResponse(&appts[i]))
			}
			writeJSON(w, http.StatusOK, resp)
			return
		}

		counts, err := svc.CountRange(r.Context(), filter.Start, filter.End)
		if err != nil {
			writeError(w, http.StatusInternalServerError, msgInternal)
			return
		}
		resp := make([]DayCountResponse, 0, len(counts))
		for _, c := range counts {
			resp = append(resp, DayCountResponse{Date: c.Date, Count: c.Count})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func createAppointmentHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateAppointmentRequest
		if err := decodeStrict(r, &req); err != nil {
			decodeError(w, err)
			return
		}

		appt, err := svc.Create(r.Context(), appointment.CreateInput{
			Date:  req.Date,
			Name:  req.Name,
			Phone: req.Phone,
			Notes: req.Notes,
		})
		if err != nil {
			handleCreateError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
	}
}

func updateAppointmentHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id <= 0 {
			writeError(w, http.StatusBadRequest, msgInvalidID)
			return
		}

		var req UpdateAppointmentRequest
		if err := decodeStrict(r, &req); err != nil {
			decodeError(w, err)
			return
		}

		err = svc.Update(r.Context(), id, appointment.UpdateInput{
			Name:  req.Name,
			Phone: req.Phone,
			Notes: req.Notes,
		})
		if err != nil {
			handleMutationError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, UpdateResult{Updated: 1})
	}
}

func deleteAppointmentHandler(svc AppointmentService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil || id <= 0 {
			writeError(w, http.StatusBadRequest, msgInvalidID)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			handleMutationError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, DeleteResult{Deleted: 1})
	}
}

func infoHandler(env, version string, requireAuth bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, InfoResponse{
			Name:        "turnos-api",
			Version:     version,
			Env:         env,
			MaxPerDay:   appointment.MaxAppointmentsPerDay,
			RequireAuth: requireAuth,
		})
	}
}

func handleCreateError(w http.ResponseWriter, err error) {
	var capErr *appointment.CapacityError
	switch {
	case errors.As(err, &capErr):
		writeError(w, http.StatusConflict, capErr.Error())
	case errors.Is(err, lock.ErrNotAcquired):
		writeError(w, http.StatusConflict, msgDayBusy)
	case isValidationError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}

func handleMutationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appointment.ErrNotFound):
		writeError(w, http.StatusNotFound, msgNotFound)
	case isValidationError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}

func isValidationError(err error) bool {
	for _, sentinel := range []error{
		appointment.ErrDateRequired,
		appointment.ErrDateFormat,
		appointment.ErrDateNotWeekday,
		appointment.ErrNameRequired,
		appointment.ErrNameTooLong,
		appointment.ErrPhoneTooLong,
		appointment.ErrPhoneInvalid,
		appointment.ErrNotesTooLong,
		appointment.ErrEmptyUpdate,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
