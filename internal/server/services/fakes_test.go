package services

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/dmitrijs2005/clinicdesk/internal/common"
	"github.com/dmitrijs2005/clinicdesk/internal/dbx"
	"github.com/dmitrijs2005/clinicdesk/internal/server/auth"
	"github.com/dmitrijs2005/clinicdesk/internal/server/models"
	"github.com/dmitrijs2005/clinicdesk/internal/server/repositories/dashboard"
	"github.com/dmitrijs2005/clinicdesk/internal/server/repositories/patients"
	"github.com/dmitrijs2005/clinicdesk/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

var errBoom = errors.New("boom")

type fakeUsersRepo struct {
	mu        sync.Mutex
	byEmail   map[string]*models.User
	createErr error
	findErr   error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byEmail: map[string]*models.User{}}
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return nil, common.ErrAlreadyExists
	}
	f.byEmail[u.Email] = u
	return u, nil
}

func (f *fakeUsersRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUsersRepo) FindUsersByName(_ context.Context, name string) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	out := []*models.User{}
	for _, u := range f.byEmail {
		if u.FullName == name {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type fakePatientsRepo struct {
	mu        sync.Mutex
	rows      []*models.Patient
	createErr error
	listErr   error
	listedFor []string
}

func (f *fakePatientsRepo) Create(_ context.Context, p *models.Patient) (*models.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.rows = append(f.rows, p)
	return p, nil
}

func (f *fakePatientsRepo) ListByDoctor(_ context.Context, doctorID string) ([]*models.Patient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listedFor = append(f.listedFor, doctorID)
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []*models.Patient{}
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].DoctorID == doctorID {
			out = append(out, f.rows[i])
		}
	}
	return out, nil
}

type fakeDashboardRepo struct {
	counts   map[string]int64
	sums     map[string]int64
	countErr error
	sumErr   error
}

func (f *fakeDashboardRepo) CountAppointments(_ context.Context, doctorID string) (int64, error) {
	return f.counts[doctorID], f.countErr
}

func (f *fakeDashboardRepo) SumBills(_ context.Context, doctorID string) (int64, error) {
	return f.sums[doctorID], f.sumErr
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	p *fakePatientsRepo
	d *fakeDashboardRepo
}

func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository         { return m.u }
func (m *fakeRepoManager) Patients(dbx.DBTX) patients.Repository   { return m.p }
func (m *fakeRepoManager) Dashboard(dbx.DBTX) dashboard.Repository { return m.d }

// countingHasher records how many verifications ran.
type countingHasher struct {
	auth.Hasher
	mu       sync.Mutex
	verifies int
}

func newCountingHasher() *countingHasher {
	return &countingHasher{Hasher: auth.NewBcryptHasher(bcrypt.MinCost)}
}

func (h *countingHasher) Verify(password, hash string) error {
	h.mu.Lock()
	h.verifies++
	h.mu.Unlock()
	return h.Hasher.Verify(password, hash)
}
