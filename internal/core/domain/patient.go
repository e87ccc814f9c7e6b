package domain

import (
	"time"
)

type Patient struct {
	ID             int64            `json:"id"`
	Name           string           `json:"name"`
	Age            int              `json:"age"`
	Pesel          string           `json:"pesel"`
	MedicalHistory []PatientHistory `json:"medical_history"`
}

type PatientHistory struct {
	ID               int64     `json:"-"`
	PatientID        int64     `json:"-"`
	DoctorID         *int64    `json:"-"`
	EventDate        time.Time `json:"event_date"`
	EventDescription string    `json:"event_description"`
}
