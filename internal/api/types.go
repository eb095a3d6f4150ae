package api

import (
	"time"

	"github.com/turnoshq/turnos-api/internal/appointment"
)

type CreateAppointmentRequest struct {
	Date  string `json:"date"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Notes string `json:"notes,omitempty"`
}

type UpdateAppointmentRequest struct {
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phone,omitempty"`
	Notes *string `json:"notes,omitempty"`
}

type AppointmentResponse struct {
	ID        int64   `json:"id"`
	Date      string  `json:"date"`
	Name      string  `json:"name"`
	Phone     *string `json:"phone"`
	Notes     *string `json:"notes"`
	CreatedAt string  `json:"created_at"`
}

type DayCountResponse struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type UpdateResult struct {
	Updated int `json:"updated"`
}

type DeleteResult struct {
	Deleted int `json:"deleted"`
}

type InfoResponse struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Env         string `json:"env"`
	MaxPerDay   int    `json:"maxPerDay"`
	RequireAuth bool   `json:"requireAuth"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func toAppointmentResponse(a *appointment.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:        a.ID,
		Date:      a.Date,
		Name:      a.Name,
		Phone:     a.Phone,
		Notes:     a.Notes,
		CreatedAt: a.CreatedAt.UTC().Format(time.RFC3339),
	}
}
