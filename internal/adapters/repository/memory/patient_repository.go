package memory

import (
	"context"
	"sync"

	"github.com/vncsmyrnk/patients/internal/core/domain"
	"github.com/vncsmyrnk/patients/internal/core/ports"
)

type PatientRepository struct {
	mu            sync.RWMutex
	nextID        int64
	nextHistoryID int64
	patients      map[int64]domain.Patient
}

func NewPatientRepository() *PatientRepository {
	return &PatientRepository{
		patients: make(map[int64]domain.Patient),
	}
}

var _ ports.PatientRepository = (*PatientRepository)(nil)

func (r *PatientRepository) GetByID(_ context.Context, id int64) (*domain.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.patients[id]
	if !ok {
		return nil, domain.ErrPatientNotFound
	}
	return clonePatient(p), nil
}

func (r *PatientRepository) Save(_ context.Context, patient *domain.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	patient.ID = r.nextID
	if patient.MedicalHistory == nil {
		patient.MedicalHistory = []domain.PatientHistory{}
	}
	for i := range patient.MedicalHistory {
		r.nextHistoryID++
		patient.MedicalHistory[i].ID = r.nextHistoryID
		patient.MedicalHistory[i].PatientID = patient.ID
	}

	r.patients[patient.ID] = *clonePatient(*patient)
	return nil
}

func clonePatient(p domain.Patient) *domain.Patient {
	history := make([]domain.PatientHistory, len(p.MedicalHistory))
	copy(history, p.MedicalHistory)
	p.MedicalHistory = history
	return &p
}
