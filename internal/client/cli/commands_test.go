package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/clinicdesk/internal/client/api"
	"github.com/dmitrijs2005/clinicdesk/internal/client/config"
	"github.com/dmitrijs2005/clinicdesk/internal/client/session"
	"github.com/dmitrijs2005/clinicdesk/internal/logging"
	"github.com/dmitrijs2005/clinicdesk/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	signupReq api.SignupRequest
	loginReq  api.LoginRequest
	addReq    api.NewPatient
	token     string

	user      *api.User
	patients  []*models.Patient
	summary   *models.DashboardSummary
	err       error
	pingErr   error
	pingCalls int
}

func (f *fakeAPI) Signup(_ context.Context, req api.SignupRequest) (*api.User, error) {
	f.signupReq = req
	return f.user, f.err
}

func (f *fakeAPI) Login(_ context.Context, req api.LoginRequest) (*api.User, error) {
	f.loginReq = req
	return f.user, f.err
}

func (f *fakeAPI) ListPatients(_ context.Context, token string) ([]*models.Patient, error) {
	f.token = token
	return f.patients, f.err
}

func (f *fakeAPI) AddPatient(_ context.Context, token string, p api.NewPatient) (*models.Patient, error) {
	f.token = token
	f.addReq = p
	if f.err != nil {
		return nil, f.err
	}
	return &models.Patient{FullName: p.FullName}, nil
}

func (f *fakeAPI) Dashboard(_ context.Context, token string) (*models.DashboardSummary, error) {
	f.token = token
	return f.summary, f.err
}

func (f *fakeAPI) Ping(context.Context) error {
	f.pingCalls++
	return f.pingErr
}

type fakeStore struct {
	saved   *session.Session
	cleared bool
}

func (s *fakeStore) Load() (*session.Session, error) { return s.saved, nil }
func (s *fakeStore) Save(sess *session.Session) error {
	s.saved = sess
	return nil
}
func (s *fakeStore) Clear() error {
	s.saved = nil
	s.cleared = true
	return nil
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	old := readPassword
	readPassword = func(int) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { readPassword = old })
}

func newTestApp(f *fakeAPI, store *fakeStore, input string) (*App, *bytes.Buffer) {
	out := &bytes.Buffer{}
	cfg := &config.Config{}
	cfg.LoadDefaults()
	return &App{
		config:   cfg,
		api:      f,
		sessions: store,
		logger:   logging.NewNopLogger(),
		reader:   bufio.NewReader(strings.NewReader(input)),
		out:      out,
		mode:     ModeUnknown,
		current:  store.saved,
	}, out
}

func TestSignup_SavesSession(t *testing.T) {
	stubPassword(t, "pw-asha")
	f := &fakeAPI{user: &api.User{ID: "u1", FullName: "Dr. Asha", Email: "asha@x.io", Token: "tok"}}
	store := &fakeStore{}
	a, out := newTestApp(f, store, "Dr. Asha\nasha@x.io\n9876543210\n")

	require.NoError(t, a.Signup(context.Background()))

	assert.Equal(t, api.SignupRequest{FullName: "Dr. Asha", Email: "asha@x.io", Phone: "9876543210", Password: "pw-asha"}, f.signupReq)
	require.NotNil(t, store.saved)
	assert.Equal(t, "tok", store.saved.Token)
	assert.True(t, a.isLoggedIn())
	assert.Contains(t, out.String(), "Signed up as Dr. Asha")
}

func TestLogin_KeyByNameOrEmail(t *testing.T) {
	stubPassword(t, "pw")
	f := &fakeAPI{user: &api.User{ID: "u1", FullName: "Dr. Asha", Token: "tok"}}

	a, _ := newTestApp(f, &fakeStore{}, "Dr. Asha\n")
	require.NoError(t, a.Login(context.Background()))
	assert.Equal(t, api.LoginRequest{FullName: "Dr. Asha", Password: "pw"}, f.loginReq)

	a, _ = newTestApp(f, &fakeStore{}, "asha@x.io\n")
	require.NoError(t, a.Login(context.Background()))
	assert.Equal(t, api.LoginRequest{Email: "asha@x.io", Password: "pw"}, f.loginReq)
}

func TestLogin_FailureKeepsLoggedOut(t *testing.T) {
	stubPassword(t, "bad")
	f := &fakeAPI{err: errors.New("request failed: 401: Invalid credentials")}
	store := &fakeStore{}
	a, out := newTestApp(f, store, "Dr. Asha\n")

	require.Error(t, a.Login(context.Background()))
	assert.False(t, a.isLoggedIn())
	assert.Nil(t, store.saved)
	assert.Contains(t, out.String(), "Login failed")
}

func TestAddPatient_SendsInputWithToken(t *testing.T) {
	f := &fakeAPI{}
	store := &fakeStore{saved: &session.Session{UserID: "u1", FullName: "Dr. Asha", Token: "tok"}}
	a, out := newTestApp(f, store, "Ravi\n222\n40\nM\n\n")

	require.NoError(t, a.AddPatient(context.Background()))

	assert.Equal(t, "tok", f.token)
	assert.Equal(t, api.NewPatient{FullName: "Ravi", Phone: "222", Age: "40", Gender: "M"}, f.addReq)
	assert.Contains(t, out.String(), "Patient added: Ravi")
}

func TestListPatients_Table(t *testing.T) {
	addr := "12 Hill Rd"
	f := &fakeAPI{patients: []*models.Patient{
		{FullName: "Ravi", Age: 40, Gender: "M", Phone: "222", Address: &addr, CreatedAt: time.Now()},
		{FullName: "Mira", Age: 7, Gender: "F", Phone: "333", CreatedAt: time.Now()},
	}}
	store := &fakeStore{saved: &session.Session{Token: "tok"}}
	a, out := newTestApp(f, store, "")

	require.NoError(t, a.ListPatients(context.Background()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "NAME"))
	assert.Contains(t, lines[1], "12 Hill Rd")
	assert.Contains(t, lines[2], "Mira")
}

func TestListPatients_Empty(t *testing.T) {
	a, out := newTestApp(&fakeAPI{}, &fakeStore{saved: &session.Session{Token: "tok"}}, "")
	require.NoError(t, a.ListPatients(context.Background()))
	assert.Contains(t, out.String(), "No patients yet")
}

func TestDashboard(t *testing.T) {
	f := &fakeAPI{summary: &models.DashboardSummary{Appointments: 2, TotalCollection: 75050}}
	a, out := newTestApp(f, &fakeStore{saved: &session.Session{Token: "tok"}}, "")

	require.NoError(t, a.Dashboard(context.Background()))
	assert.Contains(t, out.String(), "2")
	assert.Contains(t, out.String(), "750.50")
}

func TestRejectedSessionIsForgotten(t *testing.T) {
	f := &fakeAPI{err: errors.Join(api.ErrUnauthorized, errors.New("403"))}
	store := &fakeStore{saved: &session.Session{Token: "stale"}}
	a, out := newTestApp(f, store, "")

	err := a.Dashboard(context.Background())
	require.ErrorIs(t, err, api.ErrUnauthorized)
	assert.False(t, a.isLoggedIn())
	assert.True(t, store.cleared)
	assert.Contains(t, out.String(), "Session expired")
}

func TestLogout(t *testing.T) {
	store := &fakeStore{saved: &session.Session{Token: "tok"}}
	a, _ := newTestApp(&fakeAPI{}, store, "")

	require.NoError(t, a.Logout(context.Background()))
	assert.False(t, a.isLoggedIn())
	assert.True(t, store.cleared)
}

func TestCommandsWithoutSessionAreNoops(t *testing.T) {
	f := &fakeAPI{}
	a, out := newTestApp(f, &fakeStore{}, "")

	require.NoError(t, a.ListPatients(context.Background()))
	require.NoError(t, a.AddPatient(context.Background()))
	require.NoError(t, a.Dashboard(context.Background()))
	assert.Empty(t, f.token)
	assert.Empty(t, out.String())
}

func TestFormatMinor(t *testing.T) {
	assert.Equal(t, "0.00", formatMinor(0))
	assert.Equal(t, "7.50", formatMinor(750))
	assert.Equal(t, "-0.05", formatMinor(-5))
}
