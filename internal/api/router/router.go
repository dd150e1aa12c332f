package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/carepulse/intake-platform/internal/appointment"
	httpmiddleware "github.com/carepulse/intake-platform/internal/http/middleware"
	"github.com/carepulse/intake-platform/internal/patient"
	"github.com/carepulse/intake-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	AppointmentHandler *appointment.Handler
	DashboardHandler   *appointment.DashboardHandler
	PatientHandler     *patient.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
	AdminJWTSecret     string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		if cfg.PatientHandler != nil {
			api.Route("/patients", func(r chi.Router) {
				r.Post("/", cfg.PatientHandler.Register)
				r.Get("/{patientID}", cfg.PatientHandler.Get)
				r.Post("/{patientID}/documents", cfg.PatientHandler.UploadIdentification)
			})
			api.Get("/users/{userID}/patient", cfg.PatientHandler.GetByUser)
		}

		if cfg.AppointmentHandler != nil {
			api.Route("/appointments", func(r chi.Router) {
				r.Post("/", cfg.AppointmentHandler.Create)
				r.Get("/{appointmentID}", cfg.AppointmentHandler.Get)
				r.Patch("/{appointmentID}", cfg.AppointmentHandler.Transition)
			})
		}

		if cfg.DashboardHandler != nil {
			api.Route("/admin", func(admin chi.Router) {
				admin.Use(httpmiddleware.AdminJWT(cfg.AdminJWTSecret))
				admin.Get("/appointments", cfg.DashboardHandler.RecentAppointments)
			})
		}
	})

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
