package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yourorg/hbnb-web/hbnb"
	"github.com/yourorg/hbnb-web/internal/amenity"
	"github.com/yourorg/hbnb-web/internal/logger"
	"github.com/yourorg/hbnb-web/internal/pipeline"
)

type stubAPI struct{}

func (stubAPI) Status(context.Context) (hbnb.Status, error) { return hbnb.Status{Status: hbnb.StatusOK}, nil }
func (stubAPI) Users(context.Context) ([]hbnb.User, error) {
	return []hbnb.User{{ID: "u1", FirstName: "Ann", LastName: "Lee"}}, nil
}
func (stubAPI) Amenities(context.Context) ([]hbnb.Amenity, error) { return nil, nil }
func (stubAPI) SearchPlaces(context.Context, string, *hbnb.SearchFilter) ([]hbnb.PlaceResult, error) {
	return []hbnb.PlaceResult{{Place: hbnb.Place{ID: "p1", UserID: "u1", Name: "Cabin"}}}, nil
}

func testRouter(corsOrigins ...string) http.Handler {
	return BuildRouter(RouterDeps{
		API:             stubAPI{},
		Amenities:       stubAPI{},
		Sessions:        amenity.NewMemoryStore(),
		Variant:         pipeline.GetVariant(),
		Logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		RateLimitPerMin: 100,
		CORSOrigins:     corsOrigins,
	})
}

func TestHealth(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok":true`) {
		t.Fatalf("health = %d %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get(logger.RequestIDHeader) == "" {
		t.Error("request id header not set")
	}
}

func TestRunsDisabledWithoutStore(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/runs", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestPlacesUsesConfiguredVariantLayout(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/places", nil))
	if !strings.Contains(rec.Body.String(), `<div class="title_box"><h2>Cabin</h2>`) {
		t.Fatalf("body = %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/places?variant=post", nil))
	if strings.Contains(rec.Body.String(), "title_box") {
		t.Fatalf("post variant rendered title box: %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/places?variant=post&layout=title_box", nil))
	if !strings.Contains(rec.Body.String(), `<div class="title_box">`) {
		t.Fatalf("layout override ignored: %s", rec.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodOptions, "/amenities/toggle", nil)
	req.Header.Set("Origin", "http://front.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	testRouter("http://front.test").ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://front.test" {
		t.Fatalf("Access-Control-Allow-Origin = %q, want %q", got, "http://front.test")
	}
}

func TestRecovererTurnsPanicInto500(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	BuildRouter(RouterDeps{API: stubAPI{}, Amenities: panicAPI{}, Sessions: amenity.NewMemoryStore(), Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}

type panicAPI struct{ stubAPI }

func (panicAPI) Amenities(context.Context) ([]hbnb.Amenity, error) { panic("boom") }
