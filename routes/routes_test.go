package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meinhoongagan/healthsphere/controllers"
	"github.com/meinhoongagan/healthsphere/middleware"
	"github.com/meinhoongagan/healthsphere/models"
	"github.com/meinhoongagan/healthsphere/scheduling"
	"github.com/meinhoongagan/healthsphere/scheduling/schedulingtest"
)

const secret = "routes-secret"

func newApp(t *testing.T) *fiber.App {
	t.Helper()
	now := time.Date(2024, time.May, 6, 8, 0, 0, 0, time.UTC)

	mr := miniredis.RunT(t)
	mr.SetTime(now)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	directory := schedulingtest.NewStaticDirectory().AddDoctor(models.Doctor{
		ID:             "doc-1",
		HospitalID:     "hosp-1",
		Specialization: "Cardiology",
		WorkingHours: []models.WorkingHours{
			{DoctorID: "doc-1", DayOfWeek: models.Tuesday, StartTime: "09:00", EndTime: "12:00", IsWorkDay: true},
		},
	})

	registry := prometheus.NewRegistry()
	metrics := scheduling.NewMetrics(registry)
	opts := scheduling.Options{Now: func() time.Time { return now }}
	calc := scheduling.NewCalculator(directory, scheduling.NewRedisLedger(client), opts, metrics)
	workflow := scheduling.NewWorkflow(calc, schedulingtest.NewMemoryStore(), nil, metrics, zerolog.Nop())

	app := fiber.New()
	Setup(app, Controllers{
		Appointments: controllers.NewAppointmentController(calc, workflow, zerolog.Nop()),
		Directory:    controllers.NewDirectoryController(directory, zerolog.Nop()),
		Hospitals:    controllers.NewHospitalController(workflow, zerolog.Nop()),
		WorkingHours: controllers.NewWorkingHourController(directory, directory, zerolog.Nop()),
	}, middleware.Protected(secret), registry)
	return app
}

func token(t *testing.T, id, role string) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":   id,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func call(t *testing.T, app *fiber.App, method, path, bearer string, body interface{}) (int, string) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(out)
}

var booking = map[string]string{
	"patientName":     "Asha Verma",
	"hospitalId":      "hosp-1",
	"doctorId":        "doc-1",
	"date":            "2024-05-07",
	"time":            "10:00",
	"appointmentType": "video",
}

func TestRouteGuards(t *testing.T) {
	app := newApp(t)

	tests := []struct {
		name   string
		method string
		path   string
		bearer string
		body   interface{}
		status int
	}{
		{"timeslots are public", http.MethodGet, "/appointments/timeslots?hospitalId=hosp-1&doctorId=doc-1&date=2024-05-07", "", nil, fiber.StatusOK},
		{"doctor lookup is public", http.MethodGet, "/appointments/doctors?hospitalId=hosp-1&specialization=Cardiology", "", nil, fiber.StatusOK},
		{"specialization lookup is public", http.MethodGet, "/appointments/hospitals/hosp-1/specializations", "", nil, fiber.StatusOK},
		{"hospitals by specialization", http.MethodGet, "/appointments/hospitals/specialization/Cardiology", "", nil, fiber.StatusOK},
		{"booking needs a token", http.MethodPost, "/appointments/pat-1/book", "", booking, fiber.StatusUnauthorized},
		{"booking for someone else", http.MethodPost, "/appointments/pat-2/book", token(t, "pat-1", "patient"), booking, fiber.StatusForbidden},
		{"hospital cannot book", http.MethodPost, "/appointments/pat-1/book", token(t, "hosp-1", "hospital"), booking, fiber.StatusForbidden},
		{"patient history of another patient", http.MethodGet, "/patients/pat-2/appointments", token(t, "pat-1", "patient"), nil, fiber.StatusForbidden},
		{"queue of another hospital", http.MethodGet, "/hospitals/hosp-2/pending-appointments", token(t, "hosp-1", "hospital"), nil, fiber.StatusForbidden},
		{"own queue", http.MethodGet, "/hospitals/hosp-1/pending-appointments", token(t, "hosp-1", "hospital"), nil, fiber.StatusOK},
		{"doctor day", http.MethodGet, "/doctors/doc-1/appointments?date=2024-05-07", token(t, "doc-1", "doctor"), nil, fiber.StatusOK},
		{"patient cannot edit templates", http.MethodGet, "/hospitals/hosp-1/doctors/doc-1/working-hours", token(t, "pat-1", "patient"), nil, fiber.StatusForbidden},
		{"admin reads templates", http.MethodGet, "/hospitals/hosp-1/doctors/doc-1/working-hours", token(t, "ops", "admin"), nil, fiber.StatusOK},
		{"health", http.MethodGet, "/healthz", "", nil, fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := call(t, app, tt.method, tt.path, tt.bearer, tt.body)
			assert.Equal(t, tt.status, status, body)
		})
	}
}

func TestBookThroughRoutesAndMetrics(t *testing.T) {
	app := newApp(t)

	status, body := call(t, app, http.MethodPost, "/appointments/pat-1/book", token(t, "pat-1", "patient"), booking)
	require.Equal(t, fiber.StatusCreated, status, body)
	assert.Contains(t, body, `"appointmentType":"video"`)

	status, body = call(t, app, http.MethodPost, "/appointments/pat-1/book", token(t, "pat-1", "patient"), booking)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.JSONEq(t, `{"message":"SlotTaken"}`, body)

	status, body = call(t, app, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, body, `healthsphere_scheduling_bookings_total{outcome="booked"} 1`)
	assert.Contains(t, body, `healthsphere_scheduling_bookings_total{outcome="slot_taken"} 1`)
}
