package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/clinicdesk/internal/logging"
	"github.com/dmitrijs2005/clinicdesk/internal/server/auth"
	"github.com/dmitrijs2005/clinicdesk/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/clinicdesk/internal/server/services"
	"github.com/dmitrijs2005/clinicdesk/internal/server/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const apiSecret = "api-test-secret-0123456789"

type apiEnv struct {
	t      *testing.T
	router *gin.Engine
	clock  *time.Time
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := storage.Open(context.Background(), storage.DialectSQLite, "file:"+name+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rm, err := repomanager.New(storage.DialectSQLite)
	require.NoError(t, err)

	now := time.Now()
	env := &apiEnv{t: t, clock: &now}
	tokens := auth.NewTokenIssuer(apiSecret, auth.DefaultTokenValidity).WithClock(func() time.Time { return *env.clock })

	env.router = NewRouter(Deps{
		Users:     services.NewUserService(db, rm, auth.NewBcryptHasher(bcrypt.MinCost), tokens),
		Patients:  services.NewPatientService(db, rm),
		Dashboard: services.NewDashboardService(db, rm),
		Tokens:    tokens,
		DB:        db,
		Logger:    logging.NewNopLogger(),
		DBTimeout: 5 * time.Second,
	})
	return env
}

func (e *apiEnv) do(method, path, token string, body any) (int, map[string]any) {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(e.t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	out := map[string]any{}
	if w.Body.Len() > 0 {
		require.NoError(e.t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w.Code, out
}

func (e *apiEnv) signup(name, email, password string) (id, token string) {
	e.t.Helper()
	code, body := e.do(http.MethodPost, "/api/users/signup", "", map[string]string{
		"fullName": name, "email": email, "phone": "9876543210", "password": password,
	})
	require.Equal(e.t, http.StatusCreated, code, body)
	user := body["user"].(map[string]any)
	return user["id"].(string), user["token"].(string)
}

func patientNames(t *testing.T, body map[string]any) []string {
	t.Helper()
	list, ok := body["patients"].([]any)
	require.True(t, ok, body)
	names := make([]string, 0, len(list))
	for _, p := range list {
		names = append(names, p.(map[string]any)["fullName"].(string))
	}
	return names
}

func TestAPI_TwoDoctorsAreIsolated(t *testing.T) {
	e := newAPIEnv(t)

	ashaID, ashaTok := e.signup("Asha", "a@x.com", "s3cret")
	bobID, bobTok := e.signup("Bob", "b@x.com", "hunter2")

	code, body := e.do(http.MethodPost, "/api/patients", ashaTok, map[string]any{
		"fullName": "Ravi", "phone": "9000000000", "age": "40", "gender": "male",
	})
	require.Equal(t, http.StatusCreated, code, body)
	ravi := body["patient"].(map[string]any)
	assert.Equal(t, ashaID, ravi["doctorId"])
	assert.Equal(t, float64(40), ravi["age"])
	assert.NotEmpty(t, ravi["id"])
	assert.NotEmpty(t, ravi["createdAt"])

	code, body = e.do(http.MethodGet, "/api/patients", ashaTok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"Ravi"}, patientNames(t, body))

	code, body = e.do(http.MethodGet, "/api/patients", bobTok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, patientNames(t, body))

	// Bob asks for Asha's records by query parameter.
	code, body = e.do(http.MethodGet, "/api/patients?doctorId="+ashaID+"&userId="+ashaID, bobTok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, patientNames(t, body))

	// Bob tries to create a record owned by Asha.
	code, body = e.do(http.MethodPost, "/api/patients", bobTok, map[string]any{
		"fullName": "Kiran", "phone": "1", "age": 9, "gender": "male", "doctorId": ashaID,
	})
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, bobID, body["patient"].(map[string]any)["doctorId"])

	code, body = e.do(http.MethodGet, "/api/patients", ashaTok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"Ravi"}, patientNames(t, body))
}

func TestAPI_SignupAndLogin(t *testing.T) {
	e := newAPIEnv(t)
	id, _ := e.signup("Asha", "a@x.com", "s3cret")

	code, body := e.do(http.MethodPost, "/api/users/signup", "", map[string]string{
		"fullName": "Other", "email": "a@x.com", "phone": "1", "password": "x",
	})
	assert.Equal(t, http.StatusConflict, code, body)

	code, body = e.do(http.MethodPost, "/api/users/login", "", map[string]string{"fullName": "Asha", "password": "s3cret"})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "Login successful", body["message"])
	user := body["user"].(map[string]any)
	assert.Equal(t, id, user["id"])
	assert.Equal(t, "a@x.com", user["email"])
	assert.NotEmpty(t, user["token"])

	code, _ = e.do(http.MethodPost, "/api/users/login", "", map[string]string{"fullName": "Asha", "password": "wrong"})
	wrongPassword := code
	code, _ = e.do(http.MethodPost, "/api/users/login", "", map[string]string{"fullName": "Nobody", "password": "s3cret"})
	assert.Equal(t, http.StatusUnauthorized, wrongPassword)
	assert.Equal(t, wrongPassword, code)

	code, body = e.do(http.MethodPost, "/api/users/login", "", map[string]string{"password": "s3cret"})
	assert.Equal(t, http.StatusBadRequest, code, body)
}

func TestAPI_SignupValidation(t *testing.T) {
	e := newAPIEnv(t)

	code, body := e.do(http.MethodPost, "/api/users/signup", "", map[string]string{"fullName": "Asha", "email": "a@x.com"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body["error"], "phone")
	assert.Contains(t, body["error"], "password")

	code, _ = e.do(http.MethodPost, "/api/users/signup", "", "{not json")
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = e.do(http.MethodPost, "/api/users/login", "", map[string]string{"fullName": "Asha", "password": "s3cret"})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestAPI_InvalidPatientWritesNothing(t *testing.T) {
	e := newAPIEnv(t)
	_, tok := e.signup("Asha", "a@x.com", "s3cret")

	for _, body := range []map[string]any{
		{"phone": "1", "age": 3, "gender": "f"},
		{"fullName": "R", "phone": "1", "age": -1, "gender": "f"},
		{"fullName": "R", "phone": "1", "age": "old", "gender": "f"},
		{"fullName": "R", "phone": "1", "age": "3000000000", "gender": "f"},
		{"fullName": "R", "phone": "1", "age": 3000000000, "gender": "f"},
		{"fullName": "R", "phone": "1", "gender": "f"},
	} {
		code, resp := e.do(http.MethodPost, "/api/patients", tok, body)
		assert.Equal(t, http.StatusBadRequest, code, resp)
	}

	code, body := e.do(http.MethodGet, "/api/patients", tok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, patientNames(t, body))
}

func TestAPI_AuthGate(t *testing.T) {
	e := newAPIEnv(t)
	_, tok := e.signup("Asha", "a@x.com", "s3cret")

	code, _ := e.do(http.MethodGet, "/api/patients", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = e.do(http.MethodGet, "/api/patients", tok+"x", nil)
	assert.Equal(t, http.StatusForbidden, code)

	other := auth.NewTokenIssuer("some-other-secret-0123456789", time.Hour)
	forged, err := other.Issue("whoever", "w@x.com")
	require.NoError(t, err)
	code, _ = e.do(http.MethodGet, "/api/dashboard", forged, nil)
	assert.Equal(t, http.StatusForbidden, code)

	*e.clock = e.clock.Add(8 * 24 * time.Hour)
	code, body := e.do(http.MethodGet, "/api/patients", tok, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, msgInvalidToken, body["error"])
}

func TestAPI_DashboardAndHealth(t *testing.T) {
	e := newAPIEnv(t)
	_, tok := e.signup("Asha", "a@x.com", "s3cret")

	code, body := e.do(http.MethodGet, "/api/dashboard", tok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(0), body["appointments"])
	assert.Equal(t, float64(0), body["totalCollection"])

	code, body = e.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])

	code, _ = e.do(http.MethodGet, "/api/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
}
