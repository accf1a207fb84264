package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/timetrack/internal/application"
	"github.com/example/timetrack/internal/testfixtures"
)

type testEnv struct {
	handler       http.Handler
	workers       *testfixtures.MemoryWorkerRepository
	registrations *testfixtures.MemoryRegistrationRepository
	sessionToken  string
}

// newTestEnv wires real services over in-memory repositories behind the full
// router, with one seeded worker (PIN 1234) and one authenticated admin.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	pinHash, err := application.HashPIN("1234")
	if err != nil {
		t.Fatalf("HashPIN failed: %v", err)
	}
	worker := testfixtures.NewWorkerFixture(
		testfixtures.WithWorkerID("worker-1"),
		testfixtures.WithWorkerPINHash(pinHash),
	)

	workers := testfixtures.NewMemoryWorkerRepository(worker)
	registrations := testfixtures.NewMemoryRegistrationRepository()
	admins := testfixtures.NewMemoryAdminDirectory()
	sessions := testfixtures.NewMemorySessionRepository()

	factory := testfixtures.NewServiceFactory()
	registrationService := factory.NewRegistrationService(testfixtures.RegistrationServiceDeps{
		Registrations: registrations,
		Workers:       workers,
	})
	workerService := factory.NewWorkerService(testfixtures.WorkerServiceDeps{Workers: workers})
	reportService := factory.NewReportService(testfixtures.ReportServiceDeps{
		Registrations: registrations,
		Workers:       workers,
	})
	authService := factory.NewAuthService(testfixtures.AuthServiceDeps{
		Admins:     admins,
		Sessions:   sessions,
		SessionTTL: time.Hour,
	})

	registrationService.SetAfterWrite(reportService.InvalidateCache)

	ctx := context.Background()
	if err := authService.EnsureBootstrapAdmin(ctx, "admin@example.com", "bootstrap-password", "Admin"); err != nil {
		t.Fatalf("EnsureBootstrapAdmin failed: %v", err)
	}
	auth, err := authService.Authenticate(ctx, application.AuthenticateParams{
		Email:    "admin@example.com",
		Password: "bootstrap-password",
	})
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}

	handler := NewRouter(RouterConfig{
		Kiosk:         NewKioskHandler(registrationService, nil),
		Auth:          NewAuthHandler(authService, nil),
		Workers:       NewWorkerHandler(workerService, nil),
		Registrations: NewRegistrationHandler(registrationService, nil),
		Reports:       NewReportHandler(reportService, nil),
		Guard:         RequireSession(authService, nil),
	})

	return &testEnv{
		handler:       handler,
		workers:       workers,
		registrations: registrations,
		sessionToken:  auth.Session.Token,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, authenticated bool) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if authenticated {
		req.Header.Set("Authorization", "Bearer "+e.sessionToken)
	}

	recorder := httptest.NewRecorder()
	e.handler.ServeHTTP(recorder, req)
	return recorder
}

func decodeEnvelope(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var payload map[string]any
	if err := json.NewDecoder(recorder.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v (body %q)", err, recorder.Body.String())
	}
	return payload
}

func TestKioskToggleEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("check-in then check-out round trip", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		first := env.do(t, http.MethodPost, "/api/toggle", map[string]string{"pin": "1234"}, false)
		if first.Code != http.StatusCreated {
			t.Fatalf("expected 201 for check-in, got %d (%s)", first.Code, first.Body.String())
		}
		payload := decodeEnvelope(t, first)
		if payload["success"] != true {
			t.Fatalf("expected success envelope, got %v", payload)
		}
		data := payload["data"].(map[string]any)
		if data["action"] != "check_in" {
			t.Fatalf("expected check_in action, got %v", data["action"])
		}

		second := env.do(t, http.MethodPost, "/api/toggle", map[string]string{"pin": "1234"}, false)
		if second.Code != http.StatusOK {
			t.Fatalf("expected 200 for check-out, got %d", second.Code)
		}
		data = decodeEnvelope(t, second)["data"].(map[string]any)
		if data["action"] != "check_out" {
			t.Fatalf("expected check_out action, got %v", data["action"])
		}
		registration := data["registration"].(map[string]any)
		if registration["status"] != "completed" {
			t.Fatalf("expected completed registration, got %v", registration["status"])
		}
	})

	t.Run("unknown pin yields 401 without detail", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		recorder := env.do(t, http.MethodPost, "/api/toggle", map[string]string{"pin": "9999"}, false)
		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", recorder.Code)
		}
		payload := decodeEnvelope(t, recorder)
		if payload["success"] != false {
			t.Fatalf("expected failure envelope, got %v", payload)
		}
	})

	t.Run("malformed pin yields 400", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		recorder := env.do(t, http.MethodPost, "/api/toggle", map[string]string{"pin": "12"}, false)
		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", recorder.Code)
		}
	})

	t.Run("rejects non-POST methods", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		recorder := env.do(t, http.MethodGet, "/api/toggle", nil, false)
		if recorder.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", recorder.Code)
		}
	})
}

func TestAuthEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("login issues session token via cookie and header", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		recorder := env.do(t, http.MethodPost, "/api/login", map[string]string{
			"email":    "admin@example.com",
			"password": "bootstrap-password",
		}, false)
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", recorder.Code, recorder.Body.String())
		}
		if recorder.Header().Get("X-Session-Token") == "" {
			t.Fatalf("expected session token header")
		}
		foundCookie := false
		for _, cookie := range recorder.Result().Cookies() {
			if cookie.Name == "session_token" && cookie.Value != "" {
				foundCookie = true
			}
		}
		if !foundCookie {
			t.Fatalf("expected session cookie to be set")
		}
	})

	t.Run("login rejects bad credentials uniformly", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		recorder := env.do(t, http.MethodPost, "/api/login", map[string]string{
			"email":    "admin@example.com",
			"password": "wrong",
		}, false)
		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", recorder.Code)
		}
	})

	t.Run("logout revokes the session", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		recorder := env.do(t, http.MethodPost, "/api/logout", nil, true)
		if recorder.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d (%s)", recorder.Code, recorder.Body.String())
		}

		after := env.do(t, http.MethodGet, "/api/workers", nil, true)
		if after.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 after logout, got %d", after.Code)
		}
	})
}

func TestWorkerEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("admin routes require a session", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		recorder := env.do(t, http.MethodGet, "/api/workers", nil, false)
		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", recorder.Code)
		}
	})

	t.Run("create, fetch, and deactivate a worker", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		created := env.do(t, http.MethodPost, "/api/workers", map[string]string{
			"first_name": "Grace",
			"last_name":  "Hopper",
			"department": "Engineering",
			"pin":        "5678",
		}, true)
		if created.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d (%s)", created.Code, created.Body.String())
		}
		data := decodeEnvelope(t, created)["data"].(map[string]any)
		worker := data["worker"].(map[string]any)
		if _, exposed := worker["pin_hash"]; exposed {
			t.Fatalf("pin hash must never leave the service layer")
		}
		id := worker["id"].(string)

		fetched := env.do(t, http.MethodGet, "/api/workers/"+id, nil, true)
		if fetched.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", fetched.Code)
		}

		deleted := env.do(t, http.MethodDelete, "/api/workers/"+id, nil, true)
		if deleted.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", deleted.Code, deleted.Body.String())
		}
		data = decodeEnvelope(t, deleted)["data"].(map[string]any)
		if data["worker"].(map[string]any)["active"] != false {
			t.Fatalf("expected deactivated worker in response")
		}

		listed := env.do(t, http.MethodGet, "/api/workers", nil, true)
		workersPayload := decodeEnvelope(t, listed)["data"].(map[string]any)
		workersList, _ := workersPayload["workers"].([]any)
		for _, entry := range workersList {
			if entry.(map[string]any)["id"] == id {
				t.Fatalf("deactivated worker must be hidden from the default listing")
			}
		}
	})

	t.Run("duplicate pin yields 409", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		recorder := env.do(t, http.MethodPost, "/api/workers", map[string]string{
			"first_name": "Copy",
			"last_name":  "Cat",
			"pin":        "1234",
		}, true)
		if recorder.Code != http.StatusConflict {
			t.Fatalf("expected 409 for duplicate pin, got %d (%s)", recorder.Code, recorder.Body.String())
		}
	})

	t.Run("invalid input yields 422 with field errors", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		recorder := env.do(t, http.MethodPost, "/api/workers", map[string]string{"pin": "12"}, true)
		if recorder.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", recorder.Code)
		}
		payload := decodeEnvelope(t, recorder)
		errPayload := payload["error"].(map[string]any)
		details := errPayload["details"].(map[string]any)
		if _, ok := details["first_name"]; !ok {
			t.Fatalf("expected first_name field error, got %v", details)
		}
	})

	t.Run("rotates a pin over PUT /pin", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		recorder := env.do(t, http.MethodPut, "/api/workers/worker-1/pin", map[string]string{"pin": "4321"}, true)
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", recorder.Code, recorder.Body.String())
		}

		toggle := env.do(t, http.MethodPost, "/api/toggle", map[string]string{"pin": "4321"}, false)
		if toggle.Code != http.StatusCreated {
			t.Fatalf("expected rotated pin to toggle, got %d", toggle.Code)
		}
	})
}

func TestRegistrationEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("manual create flags the intervention", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		checkIn := testfixtures.ReferenceTime().Add(-2 * time.Hour).Format(time.RFC3339)
		recorder := env.do(t, http.MethodPost, "/api/registrations", map[string]string{
			"worker_id": "worker-1",
			"check_in":  checkIn,
			"notes":     "badge left at home",
		}, true)
		if recorder.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d (%s)", recorder.Code, recorder.Body.String())
		}
		data := decodeEnvelope(t, recorder)["data"].(map[string]any)
		registration := data["registration"].(map[string]any)
		if registration["manual_intervention"] != true {
			t.Fatalf("expected manual flag, got %v", registration)
		}
		if registration["notes"] != "badge left at home" {
			t.Fatalf("expected note round trip, got %v", registration["notes"])
		}
	})

	t.Run("patch closes an interval", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		open := testfixtures.NewRegistrationFixture(
			testfixtures.WithRegistrationID("reg-open"),
			testfixtures.WithRegistrationWorker("worker-1"),
			testfixtures.WithRegistrationOpen(),
		)
		if _, err := env.registrations.CreateRegistration(context.Background(), open); err != nil {
			t.Fatalf("failed to seed registration: %v", err)
		}

		checkOut := open.CheckIn.Add(8 * time.Hour).Format(time.RFC3339)
		recorder := env.do(t, http.MethodPatch, "/api/registrations/reg-open", map[string]string{
			"check_out": checkOut,
		}, true)
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", recorder.Code, recorder.Body.String())
		}
		registration := decodeEnvelope(t, recorder)["data"].(map[string]any)["registration"].(map[string]any)
		if registration["status"] != "completed" {
			t.Fatalf("expected completed, got %v", registration["status"])
		}
		if registration["duration_hours"].(float64) != 8 {
			t.Fatalf("expected 8 hour duration, got %v", registration["duration_hours"])
		}
	})

	t.Run("delete removes the registration", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		seeded := testfixtures.NewRegistrationFixture(
			testfixtures.WithRegistrationID("reg-gone"),
			testfixtures.WithRegistrationWorker("worker-1"),
		)
		if _, err := env.registrations.CreateRegistration(context.Background(), seeded); err != nil {
			t.Fatalf("failed to seed registration: %v", err)
		}

		recorder := env.do(t, http.MethodDelete, "/api/registrations/reg-gone", nil, true)
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", recorder.Code, recorder.Body.String())
		}
		if payload := decodeEnvelope(t, recorder); payload["success"] != true {
			t.Fatalf("expected success envelope, got %v", payload)
		}

		again := env.do(t, http.MethodDelete, "/api/registrations/reg-gone", nil, true)
		if again.Code != http.StatusNotFound {
			t.Fatalf("expected 404 on second delete, got %d", again.Code)
		}
	})

	t.Run("list paginates and reports metadata", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		base := testfixtures.ReferenceTime().Add(-48 * time.Hour)
		for i := 0; i < 25; i++ {
			checkIn := base.Add(time.Duration(i) * time.Hour)
			seeded := testfixtures.NewRegistrationFixture(
				testfixtures.WithRegistrationID(fmt.Sprintf("reg-%02d", i)),
				testfixtures.WithRegistrationWorker("worker-1"),
				testfixtures.WithRegistrationWindow(checkIn, checkIn.Add(30*time.Minute)),
			)
			if _, err := env.registrations.CreateRegistration(context.Background(), seeded); err != nil {
				t.Fatalf("failed to seed registration %d: %v", i, err)
			}
		}

		recorder := env.do(t, http.MethodGet, "/api/registrations?page=2&limit=10", nil, true)
		if recorder.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", recorder.Code, recorder.Body.String())
		}
		data := decodeEnvelope(t, recorder)["data"].(map[string]any)
		items := data["registrations"].([]any)
		if len(items) != 10 {
			t.Fatalf("expected 10 items, got %d", len(items))
		}
		pagination := data["pagination"].(map[string]any)
		if pagination["total_items"].(float64) != 25 || pagination["total_pages"].(float64) != 3 {
			t.Fatalf("unexpected pagination: %v", pagination)
		}
		if pagination["has_next"] != true || pagination["has_previous"] != true {
			t.Fatalf("expected both neighbors on page 2: %v", pagination)
		}
	})

	t.Run("invalid query parameters yield 422", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)

		recorder := env.do(t, http.MethodGet, "/api/registrations?page=zero&date_from=yesterday", nil, true)
		if recorder.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", recorder.Code)
		}
		details := decodeEnvelope(t, recorder)["error"].(map[string]any)["details"].(map[string]any)
		for _, field := range []string{"page", "date_from"} {
			if _, ok := details[field]; !ok {
				t.Fatalf("expected %s field error, got %v", field, details)
			}
		}
	})
}

func TestReportEndpoint(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	checkIn := testfixtures.ReferenceTime().Add(-10 * time.Hour)
	seeded := testfixtures.NewRegistrationFixture(
		testfixtures.WithRegistrationWorker("worker-1"),
		testfixtures.WithRegistrationWindow(checkIn, checkIn.Add(8*time.Hour)),
	)
	if _, err := env.registrations.CreateRegistration(context.Background(), seeded); err != nil {
		t.Fatalf("failed to seed registration: %v", err)
	}

	recorder := env.do(t, http.MethodGet, "/api/reports/summary", nil, true)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", recorder.Code, recorder.Body.String())
	}
	summary := decodeEnvelope(t, recorder)["data"].(map[string]any)["summary"].(map[string]any)
	if summary["total_registrations"].(float64) != 1 {
		t.Fatalf("expected 1 registration, got %v", summary["total_registrations"])
	}
	if summary["total_hours"].(float64) != 8 {
		t.Fatalf("expected 8 total hours, got %v", summary["total_hours"])
	}

	if unauthenticated := env.do(t, http.MethodGet, "/api/reports/summary", nil, false); unauthenticated.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a session, got %d", unauthenticated.Code)
	}
}

func TestRouterUnknownPaths(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	recorder := env.do(t, http.MethodGet, "/api/workers/worker-1/unknown", nil, true)
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown subresource, got %d", recorder.Code)
	}

	if !strings.Contains(recorder.Body.String(), "not found") {
		t.Logf("body: %s", recorder.Body.String())
	}
}
