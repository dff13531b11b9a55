// Package httptransport assembles the HTTP surface. It wires the module
// handlers behind the shared middleware chain and the per-route role checks;
// no business logic lives here.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	camphandler "hemocamp/internal/camp/handler"
	notificationhandler "hemocamp/internal/notification/handler"
	"hemocamp/internal/platform/middleware"
	registrationhandler "hemocamp/internal/registration/handler"
	verificationhandler "hemocamp/internal/verification/handler"
	"hemocamp/pkg/domain"
	"hemocamp/pkg/platform/httputil"
)

// requestTimeout bounds every request, including its transaction.
const requestTimeout = 30 * time.Second

// Handlers collects the module handlers the router mounts.
type Handlers struct {
	Camps         *camphandler.Handler
	Registrations *registrationhandler.Handler
	Verifications *verificationhandler.Handler
	Notifications *notificationhandler.Handler
}

// NewRouter builds the full route tree. Ops endpoints stay outside the auth
// chain; everything else requires a valid bearer token and the role the
// route table assigns.
func NewRouter(h Handlers, validator middleware.TokenValidator, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(validator, logger))
		r.Use(middleware.ContentTypeJSON)

		// Camp reads are open to every authenticated role.
		r.Get("/camps", h.Camps.HandleList)
		r.Get("/camps/{campID}", h.Camps.HandleGet)

		r.With(middleware.RequireRole(domain.RoleOrganizer)).
			Post("/camps", h.Camps.HandleCreate)
		r.With(middleware.RequireRole(domain.RoleAdmin)).
			Post("/camps/{campID}/approve", h.Camps.HandleApprove)
		r.With(middleware.RequireRole(domain.RoleAdmin)).
			Post("/camps/{campID}/cancel", h.Camps.HandleCancel)

		r.With(middleware.RequireRole(domain.RoleDonor)).
			Post("/camps/{campID}/registrations", h.Registrations.HandleRegister)
		r.With(middleware.RequireRole(domain.RoleDonor, domain.RoleOrganizer)).
			Delete("/camps/{campID}/registrations", h.Registrations.HandleCancel)

		r.Route("/verifications", func(r chi.Router) {
			r.With(middleware.RequireRole(domain.RoleOrganizer, domain.RoleAdmin)).
				Post("/", h.Verifications.HandleStart)
			r.With(middleware.RequireRole(domain.RoleOrganizer, domain.RoleAdmin)).
				Get("/{verificationID}", h.Verifications.HandleGet)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(domain.RoleOrganizer))
				r.Patch("/{verificationID}/medical-checks", h.Verifications.HandleMedicalChecks)
				r.Patch("/{verificationID}/health-screening", h.Verifications.HandleHealthScreening)
				r.Post("/{verificationID}/donation-details", h.Verifications.HandleDonationDetails)
				r.Post("/{verificationID}/complete", h.Verifications.HandleComplete)
			})

			r.With(middleware.RequireRole(domain.RoleAdmin)).
				Post("/{verificationID}/certificate/retry", h.Verifications.HandleRetryCertificate)
		})

		r.Get("/donors/{donorID}/notifications", h.Notifications.HandleList)
	})

	return r
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
