package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/vncsmyrnk/patients/internal/core/domain"
	"github.com/vncsmyrnk/patients/internal/core/ports"
)

type PatientHandler struct {
	service ports.PatientService
	log     logrus.FieldLogger
}

func NewPatientHandler(service ports.PatientService, log logrus.FieldLogger) *PatientHandler {
	return &PatientHandler{
		service: service,
		log:     log,
	}
}

// GetPatient godoc
// @Summary      Returns one patient record with its medical history
// @Tags         patients
// @Produce      json
// @Param        id   path      int  true  "patient id"
// @Success      200  {object}  domain.Patient
// @Failure      400
// @Failure      401
// @Failure      404
// @Security     BearerAuth
// @Router       /patient/{id} [get]
func (h *PatientHandler) GetPatient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	patient, err := h.service.GetPatient(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPatientID) {
			writeError(w, http.StatusBadRequest, detailInvalidID)
			return
		}
		if errors.Is(err, domain.ErrPatientNotFound) {
			writeError(w, http.StatusNotFound, detailNotFound)
			return
		}

		h.log.WithError(err).WithField("patient_id", id).Error("failed to get patient")
		writeError(w, http.StatusInternalServerError, detailInternal)
		return
	}

	writeJSON(w, http.StatusOK, patient)
}
