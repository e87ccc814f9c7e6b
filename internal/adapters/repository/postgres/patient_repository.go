package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vncsmyrnk/patients/internal/core/domain"
	"github.com/vncsmyrnk/patients/internal/core/ports"
)

type patientRepository struct {
	db *sql.DB
}

func NewPatientRepository(db *sql.DB) ports.PatientRepository {
	return &patientRepository{
		db: db,
	}
}

func (r *patientRepository) Save(ctx context.Context, patient *domain.Patient) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	queryPatient := `
		INSERT INTO patients (name, age, pesel)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err = tx.QueryRowContext(ctx, queryPatient, patient.Name, patient.Age, patient.Pesel).Scan(&patient.ID)
	if err != nil {
		return fmt.Errorf("failed to insert patient: %w", err)
	}

	queryHistory := `
		INSERT INTO patient_history (patient_id, doctor_id, event_date, event_description)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	stmt, err := tx.PrepareContext(ctx, queryHistory)
	if err != nil {
		return fmt.Errorf("failed to prepare history statement: %w", err)
	}
	defer stmt.Close()

	for i := range patient.MedicalHistory {
		h := &patient.MedicalHistory[i]
		h.PatientID = patient.ID
		err = stmt.QueryRowContext(ctx, h.PatientID, h.DoctorID, h.EventDate, h.EventDescription).Scan(&h.ID)
		if err != nil {
			return fmt.Errorf("failed to insert history entry: %w", err)
		}
	}
	if patient.MedicalHistory == nil {
		patient.MedicalHistory = []domain.PatientHistory{}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *patientRepository) GetByID(ctx context.Context, id int64) (*domain.Patient, error) {
	queryPatient := `
		SELECT id, name, age, pesel
		FROM patients
		WHERE id = $1
	`

	var patient domain.Patient
	err := r.db.QueryRowContext(ctx, queryPatient, id).Scan(
		&patient.ID, &patient.Name, &patient.Age, &patient.Pesel,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPatientNotFound
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	history, err := r.fetchHistory(ctx, patient.ID)
	if err != nil {
		return nil, err
	}
	patient.MedicalHistory = history

	return &patient, nil
}

func (r *patientRepository) fetchHistory(ctx context.Context, patientID int64) ([]domain.PatientHistory, error) {
	queryHistory := `
		SELECT id, patient_id, doctor_id, event_date, event_description
		FROM patient_history
		WHERE patient_id = $1
		ORDER BY event_date, id
	`
	rows, err := r.db.QueryContext(ctx, queryHistory, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to get patient history: %w", err)
	}
	defer rows.Close()

	history := []domain.PatientHistory{}
	for rows.Next() {
		var h domain.PatientHistory
		var doctorID sql.NullInt64
		if err := rows.Scan(&h.ID, &h.PatientID, &doctorID, &h.EventDate, &h.EventDescription); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		if doctorID.Valid {
			h.DoctorID = &doctorID.Int64
		}
		history = append(history, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history: %w", err)
	}
	return history, nil
}
