package patients

import (
	"context"

	"github.com/dmitrijs2005/clinicdesk/internal/server/models"
)

// Repository persists patient records. Every read is scoped to one doctor.
type Repository interface {
	Create(ctx context.Context, patient *models.Patient) (*models.Patient, error)
	// ListByDoctor returns the doctor's patients, newest first.
	ListByDoctor(ctx context.Context, doctorID string) ([]*models.Patient, error)
}
