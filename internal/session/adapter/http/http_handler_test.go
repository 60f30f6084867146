package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	memorypersistence "carebridge/internal/session/adapter/persistence/memory"
	"carebridge/internal/session/adapter/security"
	"carebridge/internal/session/config"
	"carebridge/internal/session/usecase"
	"carebridge/internal/shared/eventbus"
	"carebridge/internal/shared/logger"
	"carebridge/internal/shared/refcode"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testFixture struct {
	app     *fiber.App
	handler *HTTPHandler
	tokens  *security.JWTokenService
}

func newFixture(t *testing.T, requireAuth bool) *testFixture {
	t.Helper()

	repo := memorypersistence.NewSessionRepository()
	log := logger.NewLogger()
	bus := eventbus.NewEventBus(log)

	tokens, err := security.NewJWTokenService(config.DefaultConfig())
	require.NoError(t, err)

	realtimeUC := usecase.NewRealtimeUsecase(log)
	sessionUC := usecase.NewSessionUsecase(repo, tokens, bus, log)
	resourceUC := usecase.NewResourceUsecase(repo, bus, log)
	alertUC := usecase.NewAlertUsecase(repo, realtimeUC, bus, log)

	handler := NewHTTPHandler(sessionUC, resourceUC, alertUC, realtimeUC, tokens, log, requireAuth)

	app := fiber.New()
	handler.RegisterRoutes(app.Group("/api/v1"))

	return &testFixture{app: app, handler: handler, tokens: tokens}
}

func (f *testFixture) do(t *testing.T, method, path string, body interface{}, headers ...map[string]string) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, h := range headers {
		for k, v := range h {
			req.Header.Set(k, v)
		}
	}

	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp, decoded
}

func (f *testFixture) createSession(t *testing.T) string {
	t.Helper()
	resp, body := f.do(t, "POST", "/api/v1/sessions", nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	code, _ := body["referenceCode"].(string)
	require.True(t, refcode.IsValid(code), "got code %q", code)
	return code
}

func TestCreateSessionEndpoint(t *testing.T) {
	f := newFixture(t, false)
	code := f.createSession(t)

	resp, body := f.do(t, "GET", "/api/v1/sessions/"+code, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, code, body["referenceCode"])
	assert.Equal(t, "22:00", body["watchChargingTime"])
}

func TestSnapshot_UnknownCodeReturnsEmptyShape(t *testing.T) {
	f := newFixture(t, false)

	resp, body := f.do(t, "GET", "/api/v1/sessions/ZZZZZZ", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Nil(t, body["referenceCode"])
	assert.NotNil(t, body["dailyRoutine"])
	assert.Empty(t, body["dailyRoutine"])
	assert.NotNil(t, body["sosAlerts"])
}

func TestInvalidReferenceCodeIs400(t *testing.T) {
	f := newFixture(t, false)

	resp, body := f.do(t, "GET", "/api/v1/sessions/short", nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "invalid_reference_code", body["error"])
}

func TestLowercaseCodeIsNormalized(t *testing.T) {
	f := newFixture(t, false)
	code := f.createSession(t)

	lower := ""
	for _, r := range code {
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		lower += string(r)
	}

	resp, body := f.do(t, "GET", "/api/v1/sessions/"+lower, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, code, body["referenceCode"])
}

func TestWriteToUnknownCodeIs404(t *testing.T) {
	f := newFixture(t, false)

	resp, body := f.do(t, "POST", "/api/v1/sessions/ZZZZZZ/routine", fiber.Map{"time": "08:00", "activity": "Breakfast"})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "session_not_found", body["error"])

	resp, _ = f.do(t, "POST", "/api/v1/sessions/ZZZZZZ/profile", fiber.Map{"name": "Rosa"})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestLoginEndpoint(t *testing.T) {
	f := newFixture(t, false)
	code := f.createSession(t)

	resp, body := f.do(t, "POST", "/api/v1/login", fiber.Map{"referenceCode": code})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["token"])
	data, ok := body["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, code, data["referenceCode"])

	resp, body = f.do(t, "POST", "/api/v1/login", fiber.Map{"referenceCode": "ZZZZZZ"})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "session_not_found", body["error"])
}

func TestRoutineCRUD(t *testing.T) {
	f := newFixture(t, false)
	code := f.createSession(t)
	base := "/api/v1/sessions/" + code + "/routine"

	resp, _ := f.do(t, "POST", base, fiber.Map{"time": "20:00", "activity": "Dinner"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp, created := f.do(t, "POST", base, fiber.Map{"time": "08:00", "activity": "Breakfast"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	// Missing fields fail validation.
	resp, body := f.do(t, "POST", base, fiber.Map{"time": "10:00"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "validation_failed", body["error"])

	// Listing is sorted by time.
	resp, body = f.do(t, "GET", base, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	entries, ok := body["data"].([]interface{})
	require.True(t, ok)
	require.Len(t, entries, 2)
	first := entries[0].(map[string]interface{})
	assert.Equal(t, "Breakfast", first["activity"])

	// Delete one entry; deleting a missing id is a silent success.
	createdData := created["data"].(map[string]interface{})
	id := strconv.FormatInt(int64(createdData["id"].(float64)), 10)
	resp, body = f.do(t, "DELETE", base+"/"+id, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])

	resp, body = f.do(t, "DELETE", base+"/999999", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])

	resp, body = f.do(t, "GET", base, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, body["data"], 1)
}

func TestMarkMedicineTakenEndpoint(t *testing.T) {
	f := newFixture(t, false)
	code := f.createSession(t)
	base := "/api/v1/sessions/" + code + "/medicines"

	resp, created := f.do(t, "POST", base, fiber.Map{"name": "Aspirin", "time": "08:00"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	data := created["data"].(map[string]interface{})
	id := strconv.FormatInt(int64(data["id"].(float64)), 10)

	resp, body := f.do(t, "POST", base+"/"+id+"/taken", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	taken := body["data"].(map[string]interface{})
	assert.Equal(t, true, taken["taken"])
	assert.NotEmpty(t, taken["takenAt"])

	// Missing id answers 200 with null data.
	resp, body = f.do(t, "POST", base+"/424242/taken", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Nil(t, body["data"])
}

func TestAlertEndpoints(t *testing.T) {
	f := newFixture(t, false)
	code := f.createSession(t)
	base := "/api/v1/sessions/" + code + "/alerts"

	resp, body := f.do(t, "POST", base+"/sos", fiber.Map{"location": fiber.Map{"latitude": -12.05, "longitude": -77.03}})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, true, body["success"])

	resp, _ = f.do(t, "POST", base+"/unknown-person", nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, _ = f.do(t, "POST", base+"/missed-medicine", fiber.Map{"medicineName": "Aspirin"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	// Unknown-person alerts land in the security group.
	resp, body = f.do(t, "GET", base+"/security", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	alerts := body["data"].([]interface{})
	require.Len(t, alerts, 1)
	assert.Equal(t, "unknown_person", alerts[0].(map[string]interface{})["type"])

	resp, body = f.do(t, "GET", base+"/missed-medicines", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	alerts = body["data"].([]interface{})
	require.Len(t, alerts, 1)
	assert.Equal(t, "Aspirin", alerts[0].(map[string]interface{})["medicineName"])
}

func TestAlertEmission_UnknownCodeStillSucceeds(t *testing.T) {
	f := newFixture(t, false)

	resp, body := f.do(t, "POST", "/api/v1/sessions/ZZZZZZ/alerts/sos", nil)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, true, body["success"])
}

func TestWatchChargingEndpoints(t *testing.T) {
	f := newFixture(t, false)
	code := f.createSession(t)
	path := "/api/v1/sessions/" + code + "/watch-charging"

	resp, body := f.do(t, "GET", path, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "22:00", body["time"])

	resp, _ = f.do(t, "POST", path, fiber.Map{"time": "21:30"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, body = f.do(t, "GET", path, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "21:30", body["time"])

	resp, body = f.do(t, "POST", path, fiber.Map{"time": "25:99"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "validation_failed", body["error"])

	// Unknown sessions read the default.
	resp, body = f.do(t, "GET", "/api/v1/sessions/ZZZZZZ/watch-charging", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "22:00", body["time"])
}

func TestProfileMergeEndpoint(t *testing.T) {
	f := newFixture(t, false)
	code := f.createSession(t)
	path := "/api/v1/sessions/" + code + "/profile"

	resp, _ := f.do(t, "POST", path, fiber.Map{"name": "Rosa", "age": 82})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, body := f.do(t, "POST", path, fiber.Map{"condition": "dementia"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "Rosa", data["name"])
	assert.Equal(t, float64(82), data["age"])
	assert.Equal(t, "dementia", data["condition"])
}

func TestAuthGuard(t *testing.T) {
	f := newFixture(t, true)
	code := f.createSession(t)
	path := "/api/v1/sessions/" + code + "/profile"

	// No token.
	resp, body := f.do(t, "POST", path, fiber.Map{"name": "Rosa"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "missing_token", body["error"])

	// Token for this session.
	resp, login := f.do(t, "POST", "/api/v1/login", fiber.Map{"referenceCode": code})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	token := login["token"].(string)

	resp, _ = f.do(t, "POST", path, fiber.Map{"name": "Rosa"},
		map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Token for a different session.
	other := f.createSession(t)
	resp, otherLogin := f.do(t, "POST", "/api/v1/login", fiber.Map{"referenceCode": other})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	otherToken := otherLogin["token"].(string)

	resp, body = f.do(t, "POST", path, fiber.Map{"name": "Eve"},
		map[string]string{"Authorization": "Bearer " + otherToken})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "token_session_mismatch", body["error"])

	// Reads stay open.
	resp, _ = f.do(t, "GET", "/api/v1/sessions/"+code, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
