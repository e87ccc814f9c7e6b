package ports

import (
	"context"

	"github.com/vncsmyrnk/patients/internal/core/domain"
)

// PatientRepository returns domain.ErrPatientNotFound from GetByID on a miss.
// Save inserts the patient with its history and fills in the generated IDs.
type PatientRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Patient, error)
	Save(ctx context.Context, patient *domain.Patient) error
}

type PatientService interface {
	GetPatient(ctx context.Context, id string) (*domain.Patient, error)
}
