package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/turnoshq/turnos-api/internal/appointment"
	"github.com/turnoshq/turnos-api/internal/auth"
	"github.com/turnoshq/turnos-api/internal/ratelimit"
)

// stubService feeds canned responses to the handlers.
type stubService struct {
	createFn func(ctx context.Context, in appointment.CreateInput) (*appointment.Appointment, error)
	updateFn func(ctx context.Context, id int64, in appointment.UpdateInput) error
	deleteFn func(ctx context.Context, id int64) error
	listFn   func(ctx context.Context, day string) ([]appointment.Appointment, error)
	countFn  func(ctx context.Context, start, end string) ([]appointment.DayCount, error)
}

func (s *stubService) Create(ctx context.Context, in appointment.CreateInput) (*appointment.Appointment, error) {
	return s.createFn(ctx, in)
}

func (s *stubService) Update(ctx context.Context, id int64, in appointment.UpdateInput) error {
	return s.updateFn(ctx, id, in)
}

func (s *stubService) Delete(ctx context.Context, id int64) error {
	return s.deleteFn(ctx, id)
}

func (s *stubService) ListDay(ctx context.Context, day string) ([]appointment.Appointment, error) {
	return s.listFn(ctx, day)
}

func (s *stubService) CountRange(ctx context.Context, start, end string) ([]appointment.DayCount, error) {
	return s.countFn(ctx, start, end)
}

func newTestRouter(svc AppointmentService, verifier *auth.Verifier) http.Handler {
	return NewRouter(RouterConfig{
		Service:  svc,
		Verifier: verifier,
		Limiter:  ratelimit.NewLimiter(time.Minute, 1000),
		Logger:   zap.NewNop(),
		Env:      "test",
		Version:  "test",
	})
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateAppointment(t *testing.T) {
	svc := &stubService{
		createFn: func(ctx context.Context, in appointment.CreateInput) (*appointment.Appointment, error) {
			require.Equal(t, "2024-07-08", in.Date)
			return &appointment.Appointment{
				ID:        7,
				Date:      in.Date,
				Name:      in.Name,
				CreatedAt: time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC),
			}, nil
		},
	}
	router := newTestRouter(svc, nil)

	rec := doJSON(t, router, http.MethodPost, "/api/appointments",
		`{"date":"2024-07-08","name":"Ana"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp AppointmentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, int64(7), resp.ID)
	require.Equal(t, "2024-07-08T12:00:00Z", resp.CreatedAt)
}

func TestCreateAppointmentValidationError(t *testing.T) {
	svc := &stubService{
		createFn: func(ctx context.Context, in appointment.CreateInput) (*appointment.Appointment, error) {
			return nil, appointment.ErrDateNotWeekday
		},
	}
	router := newTestRouter(svc, nil)

	rec := doJSON(t, router, http.MethodPost, "/api/appointments",
		`{"date":"2024-07-06","name":"Ana"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, appointment.ErrDateNotWeekday.Error(), resp.Error)
}

func TestCreateAppointmentCapacityConflict(t *testing.T) {
	svc := &stubService{
		createFn: func(ctx context.Context, in appointment.CreateInput) (*appointment.Appointment, error) {
			return nil, &appointment.CapacityError{Date: in.Date}
		},
	}
	router := newTestRouter(svc, nil)

	rec := doJSON(t, router, http.MethodPost, "/api/appointments",
		`{"date":"2024-07-08","name":"Ana"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateAppointmentRejectsUnknownFields(t *testing.T) {
	router := newTestRouter(&stubService{}, nil)

	rec := doJSON(t, router, http.MethodPost, "/api/appointments",
		`{"date":"2024-07-08","name":"Ana","email":"a@b.c"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, msgUnknownFields, resp.Error)
}

func TestCreateAppointmentBadBody(t *testing.T) {
	router := newTestRouter(&stubService{}, nil)

	rec := doJSON(t, router, http.MethodPost, "/api/appointments", `{not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListAppointmentsByDay(t *testing.T) {
	svc := &stubService{
		listFn: func(ctx context.Context, day string) ([]appointment.Appointment, error) {
			require.Equal(t, "2024-07-08", day)
			return []appointment.Appointment{
				{ID: 1, Date: day, Name: "Ana", CreatedAt: time.Now()},
				{ID: 2, Date: day, Name: "Luis", CreatedAt: time.Now()},
			}, nil
		},
	}
	router := newTestRouter(svc, nil)

	rec := doJSON(t, router, http.MethodGet, "/api/appointments?day=2024-07-08", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []AppointmentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	require.Equal(t, "Ana", resp[0].Name)
}

func TestListAppointmentsByMonth(t *testing.T) {
	svc := &stubService{
		countFn: func(ctx context.Context, start, end string) ([]appointment.DayCount, error) {
			require.Equal(t, "2024-07-01", start)
			require.Equal(t, "2024-07-31", end)
			return []appointment.DayCount{{Date: "2024-07-08", Count: 3}}, nil
		},
	}
	router := newTestRouter(svc, nil)

	rec := doJSON(t, router, http.MethodGet, "/api/appointments?month=2024-07", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []DayCountResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, []DayCountResponse{{Date: "2024-07-08", Count: 3}}, resp)
}

func TestListAppointmentsEmptyDayIsJSONArray(t *testing.T) {
	svc := &stubService{
		listFn: func(ctx context.Context, day string) ([]appointment.Appointment, error) {
			return nil, nil
		},
	}
	router := newTestRouter(svc, nil)

	rec := doJSON(t, router, http.MethodGet, "/api/appointments?day=2024-07-08", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestListAppointmentsFilterErrors(t *testing.T) {
	router := newTestRouter(&stubService{}, nil)

	rec := doJSON(t, router, http.MethodGet, "/api/appointments", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/appointments?day=2024-07-08&month=2024-07", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateAppointment(t *testing.T) {
	svc := &stubService{
		updateFn: func(ctx context.Context, id int64, in appointment.UpdateInput) error {
			require.Equal(t, int64(5), id)
			require.Equal(t, "Luis", *in.Name)
			return nil
		},
	}
	router := newTestRouter(svc, nil)

	rec := doJSON(t, router, http.MethodPut, "/api/appointments/5", `{"name":"Luis"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp UpdateResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Updated)
}

func TestUpdateAppointmentNotFound(t *testing.T) {
	svc := &stubService{
		updateFn: func(ctx context.Context, id int64, in appointment.UpdateInput) error {
			return appointment.ErrNotFound
		},
	}
	router := newTestRouter(svc, nil)

	rec := doJSON(t, router, http.MethodPut, "/api/appointments/999", `{"name":"Luis"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateAppointmentInvalidID(t *testing.T) {
	router := newTestRouter(&stubService{}, nil)

	rec := doJSON(t, router, http.MethodPut, "/api/appointments/abc", `{"name":"Luis"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPut, "/api/appointments/-1", `{"name":"Luis"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteAppointment(t *testing.T) {
	svc := &stubService{
		deleteFn: func(ctx context.Context, id int64) error { return nil },
	}
	router := newTestRouter(svc, nil)

	rec := doJSON(t, router, http.MethodDelete, "/api/appointments/5", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp DeleteResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Deleted)
}

func TestInfo(t *testing.T) {
	router := newTestRouter(&stubService{}, nil)

	rec := doJSON(t, router, http.MethodGet, "/api/info", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp InfoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, appointment.MaxAppointmentsPerDay, resp.MaxPerDay)
	require.False(t, resp.RequireAuth)
}

func TestAuthMissingToken(t *testing.T) {
	router := newTestRouter(&stubService{}, auth.NewVerifier("secret"))

	rec := doJSON(t, router, http.MethodPost, "/api/appointments",
		`{"date":"2024-07-08","name":"Ana"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthInvalidToken(t *testing.T) {
	router := newTestRouter(&stubService{}, auth.NewVerifier("secret"))

	req := httptest.NewRequest(http.MethodPost, "/api/appointments",
		strings.NewReader(`{"date":"2024-07-08","name":"Ana"}`))
	req.Header.Set("Authorization", "Bearer bogus")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAuthValidToken(t *testing.T) {
	svc := &stubService{
		createFn: func(ctx context.Context, in appointment.CreateInput) (*appointment.Appointment, error) {
			return &appointment.Appointment{ID: 1, Date: in.Date, Name: in.Name}, nil
		},
	}
	router := newTestRouter(svc, auth.NewVerifier("secret"))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "admin",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/appointments",
		strings.NewReader(`{"date":"2024-07-08","name":"Ana"}`))
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestAuthDoesNotGuardReads(t *testing.T) {
	svc := &stubService{
		listFn: func(ctx context.Context, day string) ([]appointment.Appointment, error) {
			return nil, nil
		},
	}
	router := newTestRouter(svc, auth.NewVerifier("secret"))

	rec := doJSON(t, router, http.MethodGet, "/api/appointments?day=2024-07-08", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimitExceeded(t *testing.T) {
	router := NewRouter(RouterConfig{
		Service: &stubService{
			listFn: func(ctx context.Context, day string) ([]appointment.Appointment, error) {
				return nil, nil
			},
		},
		Limiter: ratelimit.NewLimiter(time.Minute, 2),
		Logger:  zap.NewNop(),
		Env:     "test",
		Version: "test",
	})

	for i := 0; i < 2; i++ {
		rec := doJSON(t, router, http.MethodGet, "/api/appointments?day=2024-07-08", "")
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doJSON(t, router, http.MethodGet, "/api/appointments?day=2024-07-08", "")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
}
