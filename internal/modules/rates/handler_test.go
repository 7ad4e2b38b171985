package rates

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func newRatesRouter(t *testing.T) http.Handler {
	t.Helper()
	sink := &mockLeadSink{}
	svc := NewService(warmCache(t, &mockZoneSource{}), sink, testConfig(), testLogger())
	mux := chi.NewRouter()
	NewHandler(svc).RegisterRoutes(mux)
	return mux
}

func TestQuoteEndpointMissingDestination(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/rates", strings.NewReader(`{"rate":{"items":[],"currency":"AUD"}}`))
	rec := httptest.NewRecorder()
	newRatesRouter(t).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("fallback must be an HTTP success, got %d", rec.Code)
	}
	var resp RateResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Rates) != 1 {
		t.Fatalf("expected exactly one rate, got %d", len(resp.Rates))
	}
	rate := resp.Rates[0]
	if rate.ServiceCode != ServiceCodeInquiry {
		t.Errorf("expected %s, got %q", ServiceCodeInquiry, rate.ServiceCode)
	}
	if !strings.Contains(strings.ToLower(rate.Description), "postcode") {
		t.Errorf("description should mention the missing postcode, got %q", rate.Description)
	}
}

func TestQuoteEndpointUndecodableBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/rates", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()
	newRatesRouter(t).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("undecodable body must still get a success response, got %d", rec.Code)
	}
	var resp RateResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Rates[0].ServiceCode != ServiceCodeInquiry {
		t.Errorf("expected inquiry fallback, got %q", resp.Rates[0].ServiceCode)
	}
}
