package http

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/vncsmyrnk/patients/internal/core/domain"
	"github.com/vncsmyrnk/patients/internal/core/ports"
)

const passwordGrant = "password"

type AuthHandler struct {
	authService ports.AuthService
	log         logrus.FieldLogger
}

func NewAuthHandler(authService ports.AuthService, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		log:         log,
	}
}

type oauthError struct {
	Error string `json:"error"`
}

// Token godoc
// @Summary      Exchanges username and password for a bearer token
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        username    formData  string  true   "username"
// @Param        password    formData  string  true   "password"
// @Param        grant_type  formData  string  false  "must be password when present"
// @Success      200  {object}  domain.AccessToken
// @Failure      400
// @Failure      401
// @Failure      429
// @Router       /token [post]
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse form")
		return
	}

	if grant := r.PostFormValue("grant_type"); grant != "" && grant != passwordGrant {
		writeJSON(w, http.StatusBadRequest, oauthError{Error: "unsupported_grant_type"})
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		writeError(w, http.StatusBadRequest, detailMissingField)
		return
	}

	token, err := h.authService.Login(r.Context(), username, password)
	if err != nil {
		switch {
		case domain.IsAuthError(err):
			writeUnauthorized(w, detailBadLogin)
		case errors.Is(err, domain.ErrRateLimitExceeded):
			writeError(w, http.StatusTooManyRequests, detailRateLimited)
		default:
			h.log.WithError(err).Error("login failed with internal error")
			writeError(w, http.StatusInternalServerError, detailInternal)
		}
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, token)
}
