package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/vncsmyrnk/patients/internal/core/ports"
)

func NewHandler(
	authService ports.AuthService,
	authHandler *AuthHandler,
	patientHandler *PatientHandler,
	userHandler *UserHandler,
	log logrus.FieldLogger,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Post("/token", authHandler.Token)

	r.Group(func(r chi.Router) {
		r.Use(Authenticate(authService, log))

		r.Get("/patient/{id}", patientHandler.GetPatient)
		r.Get("/users/me", userHandler.GetMe)
	})

	return r
}
