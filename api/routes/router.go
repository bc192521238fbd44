package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/peptracker/peptracker-backend/api/controllers"
	"github.com/peptracker/peptracker-backend/api/middleware"
	"github.com/peptracker/peptracker-backend/internal/offers"
	"github.com/peptracker/peptracker-backend/internal/stats"
	"github.com/peptracker/peptracker-backend/internal/uploads"
	"github.com/peptracker/peptracker-backend/internal/vendors"
	"github.com/peptracker/peptracker-backend/pkg/config"
	"github.com/peptracker/peptracker-backend/pkg/enums"
	"github.com/peptracker/peptracker-backend/pkg/logger"
	"github.com/peptracker/peptracker-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient *redis.Client,
	uploadService uploads.Service,
	offerService offers.Service,
	vendorService vendors.Service,
	statsService stats.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg.App.Env))
		r.Get("/ready", controllers.HealthReady(cfg.App.Env, logg, dbP, redisClient))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/offers", controllers.ListPublicOffers(offerService, logg))
		r.Get("/offers/{offerID}", controllers.GetOffer(offerService, logg))
		r.Get("/stats", controllers.GetPeptideStats(statsService, logg))
		r.Get("/peptides/{peptide}/offers", controllers.ListPeptideOffers(offerService, logg))
		r.Get("/peptides/{peptide}/stats", controllers.GetStatsForPeptide(statsService, logg))
		r.Get("/vendors", controllers.ListVendors(vendorService, logg))
		r.Get("/vendors/{vendorID}", controllers.GetVendor(vendorService, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/v1/uploads", func(r chi.Router) {
			r.Post("/", controllers.UploadPriceCSV(uploadService, cfg.Uploads.MaxUploadBytes(), logg))
			r.Get("/", controllers.ListUploads(uploadService, logg))
			r.Get("/{uploadID}", controllers.GetUpload(uploadService, logg))
		})

		r.Route("/v1/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin.String(), enums.UserRoleModerator.String()))

			r.Route("/offers", func(r chi.Router) {
				r.Get("/", controllers.AdminListOffers(offerService, logg))
				r.Post("/bulk-verify", controllers.AdminBulkVerifyOffers(offerService, logg))
				r.Post("/bulk-reject", controllers.AdminBulkRejectOffers(offerService, logg))
				r.Post("/bulk-delete", controllers.AdminBulkDeleteOffers(offerService, logg))
				r.Post("/{offerID}/verify", controllers.AdminVerifyOffer(offerService, logg))
				r.Post("/{offerID}/reject", controllers.AdminRejectOffer(offerService, logg))
				r.Delete("/{offerID}", controllers.AdminDeleteOffer(offerService, logg))
			})

			r.Route("/vendors", func(r chi.Router) {
				r.Get("/", controllers.AdminListVendors(vendorService, logg))
				r.Post("/", controllers.AdminCreateVendor(vendorService, logg))
				r.Get("/{vendorID}", controllers.AdminGetVendor(vendorService, logg))
				r.Patch("/{vendorID}", controllers.AdminUpdateVendor(vendorService, logg))
				r.Delete("/{vendorID}", controllers.AdminDeleteVendor(vendorService, logg))
			})
		})
	})

	return r
}
