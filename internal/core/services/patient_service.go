package services

import (
	"context"
	"strconv"

	"github.com/vncsmyrnk/patients/internal/core/domain"
	"github.com/vncsmyrnk/patients/internal/core/ports"
)

type patientService struct {
	repo ports.PatientRepository
}

func NewPatientService(repo ports.PatientRepository) ports.PatientService {
	return &patientService{
		repo: repo,
	}
}

func (s *patientService) GetPatient(ctx context.Context, id string) (*domain.Patient, error) {
	patientID, err := strconv.ParseInt(id, 10, 64)
	if err != nil || patientID <= 0 {
		return nil, domain.ErrInvalidPatientID
	}

	return s.repo.GetByID(ctx, patientID)
}
