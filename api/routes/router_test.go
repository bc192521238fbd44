package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/peptracker/peptracker-backend/internal/offers"
	"github.com/peptracker/peptracker-backend/internal/stats"
	"github.com/peptracker/peptracker-backend/internal/uploads"
	"github.com/peptracker/peptracker-backend/internal/vendors"
	pkgAuth "github.com/peptracker/peptracker-backend/pkg/auth"
	"github.com/peptracker/peptracker-backend/pkg/config"
	"github.com/peptracker/peptracker-backend/pkg/enums"
	"github.com/peptracker/peptracker-backend/pkg/logger"
	"github.com/peptracker/peptracker-backend/pkg/pagination"
	"github.com/peptracker/peptracker-backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubOfferService struct{}

func (stubOfferService) GetOffer(ctx context.Context, id uuid.UUID) (*offers.OfferDTO, error) {
	return &offers.OfferDTO{ID: id}, nil
}

func (stubOfferService) ListOffers(ctx context.Context, input offers.ListOffersInput) (*offers.OfferListResult, error) {
	return &offers.OfferListResult{}, nil
}

func (stubOfferService) ListPeptideOffers(ctx context.Context, peptide string, tier *enums.Tier) ([]offers.OfferDTO, error) {
	return []offers.OfferDTO{}, nil
}

func (stubOfferService) Verify(ctx context.Context, id uuid.UUID) (*offers.OfferDTO, error) {
	return &offers.OfferDTO{ID: id, VerificationStatus: enums.VerificationStatusVerified}, nil
}

func (stubOfferService) Reject(ctx context.Context, id uuid.UUID) (*offers.OfferDTO, error) {
	return &offers.OfferDTO{ID: id, VerificationStatus: enums.VerificationStatusRejected}, nil
}

func (stubOfferService) DeleteOffer(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (stubOfferService) BulkDecide(ctx context.Context, filters offers.OfferListFilters, status enums.VerificationStatus) (*offers.BulkResult, error) {
	return &offers.BulkResult{}, nil
}

func (stubOfferService) BulkDelete(ctx context.Context, filters offers.OfferListFilters) (*offers.BulkResult, error) {
	return &offers.BulkResult{}, nil
}

type stubUploadService struct{}

func (stubUploadService) ProcessCSV(ctx context.Context, vendorID uuid.UUID, tier enums.Tier, file io.Reader) (*uploads.UploadResultDTO, error) {
	return &uploads.UploadResultDTO{}, nil
}

func (stubUploadService) GetUpload(ctx context.Context, id uuid.UUID) (*uploads.UploadDTO, error) {
	return &uploads.UploadDTO{ID: id}, nil
}

func (stubUploadService) ListUploads(ctx context.Context, vendorID uuid.UUID, params pagination.Params) (*uploads.UploadListResult, error) {
	return &uploads.UploadListResult{}, nil
}

type stubVendorService struct{}

func (stubVendorService) CreateVendor(ctx context.Context, input vendors.CreateVendorInput) (*vendors.VendorDTO, error) {
	return &vendors.VendorDTO{ID: uuid.New(), Name: input.Name}, nil
}

func (stubVendorService) UpdateVendor(ctx context.Context, id uuid.UUID, input vendors.UpdateVendorInput) (*vendors.VendorDTO, error) {
	return &vendors.VendorDTO{ID: id}, nil
}

func (stubVendorService) DeleteVendor(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (stubVendorService) GetVendor(ctx context.Context, id uuid.UUID) (*vendors.VendorDTO, error) {
	return &vendors.VendorDTO{ID: id}, nil
}

func (stubVendorService) ListVendors(ctx context.Context, params pagination.Params) (*vendors.VendorListResult, error) {
	return &vendors.VendorListResult{}, nil
}

type stubStatsService struct{}

func (stubStatsService) RefreshAll(ctx context.Context) error {
	return nil
}

func (stubStatsService) GetStats(ctx context.Context, tier *enums.Tier, peptideName string) ([]stats.StatDTO, error) {
	return []stats.StatDTO{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		(*redis.Client)(nil),
		stubUploadService{},
		stubOfferService{},
		stubVendorService{},
		stubStatsService{},
	)
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	vendorID := uuid.New()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:   uuid.New(),
		VendorID: &vendorID,
		Role:     role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for liveness got %d", resp.Code)
	}
}

func TestPublicOffersNeedNoToken(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/public/offers", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public offers got %d", resp.Code)
	}
}

func TestPublicStatsNeedNoToken(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/public/stats", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public stats got %d", resp.Code)
	}
}

func TestUploadsRejectMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/uploads", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestUploadsSucceedWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/uploads", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleUser))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for upload listing got %d", resp.Code)
	}
}

func TestAdminOffersRequireElevatedRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	plain := httptest.NewRequest(http.MethodGet, "/api/v1/admin/offers", nil)
	plain.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleUser))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, plain)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for plain user got %d", resp.Code)
	}

	moderator := httptest.NewRequest(http.MethodGet, "/api/v1/admin/offers", nil)
	moderator.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleModerator))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, moderator)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for moderator got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/v1/admin/offers", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestAdminVendorsRequireElevatedRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	plain := httptest.NewRequest(http.MethodGet, "/api/v1/admin/vendors", nil)
	plain.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleUser))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, plain)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for plain user got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/v1/admin/vendors", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestPeptideCompareRoutesArePublic(t *testing.T) {
	router := newTestRouter(testConfig())
	for _, path := range []string{
		"/api/public/peptides/BPC-157/offers",
		"/api/public/peptides/BPC-157/stats",
		"/api/public/vendors",
		"/api/public/vendors/" + uuid.NewString(),
	} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Errorf("expected 200 for %s got %d", path, resp.Code)
		}
	}
}

func TestMetricsEndpointIsExposed(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for metrics got %d", resp.Code)
	}
}

func TestOfferDetailRoutesByID(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/public/offers/"+uuid.NewString(), nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for offer detail got %d", resp.Code)
	}
}
