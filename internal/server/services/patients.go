package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/clinicdesk/internal/common"
	"github.com/dmitrijs2005/clinicdesk/internal/server/auth"
	"github.com/dmitrijs2005/clinicdesk/internal/server/models"
	"github.com/dmitrijs2005/clinicdesk/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// PatientInput is the client-supplied part of a patient record. It has no
// owner field: the owner is always the caller.
type PatientInput struct {
	FullName string
	Phone    string
	// Age is nil when absent or not coercible to an integer.
	Age     *int
	Gender  string
	Address *string
}

type PatientService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

func NewPatientService(db *sql.DB, m repomanager.RepositoryManager) *PatientService {
	return &PatientService{db: db, repomanager: m, now: time.Now}
}

// List returns the caller's patients, newest first.
func (s *PatientService) List(ctx context.Context, id auth.Identity) ([]*models.Patient, error) {
	if id.ID == "" {
		return nil, common.ErrUnauthenticated
	}

	list, err := s.repomanager.Patients(s.db).ListByDoctor(ctx, id.ID)
	if err != nil {
		return nil, fmt.Errorf("error listing patients: %w", err)
	}
	return list, nil
}

// Create validates in and stores it as a patient of the caller. Invalid
// input yields *common.ValidationError and nothing is written.
func (s *PatientService) Create(ctx context.Context, id auth.Identity, in PatientInput) (*models.Patient, error) {
	if id.ID == "" {
		return nil, common.ErrUnauthenticated
	}

	ve := &common.ValidationError{}
	requireField(ve, "fullName", in.FullName)
	requireField(ve, "phone", in.Phone)
	if in.Age == nil || *in.Age < 0 {
		ve.Add("age", "must be a non-negative integer")
	}
	requireField(ve, "gender", in.Gender)
	if err := ve.OrNil(); err != nil {
		return nil, err
	}

	var address *string
	if in.Address != nil {
		if a := strings.TrimSpace(*in.Address); a != "" {
			address = &a
		}
	}

	p := &models.Patient{
		ID:        uuid.NewString(),
		DoctorID:  id.ID,
		FullName:  strings.TrimSpace(in.FullName),
		Phone:     strings.TrimSpace(in.Phone),
		Age:       *in.Age,
		Gender:    strings.TrimSpace(in.Gender),
		Address:   address,
		CreatedAt: s.now().UTC(),
	}

	p, err := s.repomanager.Patients(s.db).Create(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("error creating patient: %w", err)
	}
	return p, nil
}
