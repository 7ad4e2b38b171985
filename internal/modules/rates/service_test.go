package rates

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/georgemunganga/shipzone-backend/internal/modules/inquiry"
)

// mockLeadSink records enqueued leads.
type mockLeadSink struct {
	mu      sync.Mutex
	leads   []inquiry.Lead
	err     error
	explode bool
}

func (m *mockLeadSink) Enqueue(lead inquiry.Lead) error {
	if m.explode {
		panic("sink exploded")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leads = append(m.leads, lead)
	return m.err
}

func (m *mockLeadSink) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.leads)
}

func testConfig() Config {
	return Config{ServiceName: "Standard Delivery", FlatRateCents: 1500, DefaultCurrency: "AUD"}
}

func warmCache(t *testing.T, source *mockZoneSource) *ZoneCache {
	t.Helper()
	cache := NewZoneCache(source, time.Hour, testLogger())
	if err := cache.WarmUp(context.Background()); err != nil {
		t.Fatalf("warm up: %v", err)
	}
	return cache
}

func matchedRequest(postcode string) RateRequest {
	return RateRequest{Rate: RatePayload{
		Destination: &Destination{
			PostalCode: postcode,
			Country:    "AU",
			Province:   "VIC",
			City:       "Melbourne",
			FirstName:  "Dana",
			LastName:   "Kapeta",
			Email:      "dana@example.com",
			Phone:      "+61400000000",
		},
		Items: []LineItem{
			{Title: "Corner Sofa", Quantity: 2, Price: 129900, Grams: 45000},
			{Title: "Ottoman", Quantity: 1, Price: 24900, Grams: 9000},
		},
		Currency: "AUD",
	}}
}

func TestQuoteMatchedZone(t *testing.T) {
	zones, whA, _ := overlappingZones()
	source := &mockZoneSource{zones: zones}
	sink := &mockLeadSink{}
	svc := NewService(warmCache(t, source), sink, testConfig(), testLogger())

	resp := svc.Quote(context.Background(), matchedRequest("3005"))
	if len(resp.Rates) != 1 {
		t.Fatalf("expected exactly one rate, got %d", len(resp.Rates))
	}
	rate := resp.Rates[0]
	if rate.ServiceCode != "ZONE_"+whA.String() {
		t.Errorf("expected zone service code for warehouse A, got %q", rate.ServiceCode)
	}
	if rate.TotalPrice != "1500" {
		t.Errorf("expected flat rate 1500, got %q", rate.TotalPrice)
	}
	if rate.Currency != "AUD" {
		t.Errorf("expected request currency, got %q", rate.Currency)
	}
	if sink.count() != 0 {
		t.Errorf("a matched request must not enqueue a lead")
	}
}

func TestQuoteInvalidPostcodeSkipsCache(t *testing.T) {
	source := &mockZoneSource{}
	cache := NewZoneCache(source, time.Hour, testLogger())
	sink := &mockLeadSink{}
	svc := NewService(cache, sink, testConfig(), testLogger())

	resp := svc.Quote(context.Background(), matchedRequest("3-0K0"))
	if got := resp.Rates[0].ServiceCode; got != ServiceCodeInquiry {
		t.Errorf("expected %s fallback, got %q", ServiceCodeInquiry, got)
	}
	time.Sleep(10 * time.Millisecond)
	if source.callCount() != 0 {
		t.Errorf("invalid postcode must not touch the zone cache")
	}
	if sink.count() != 0 {
		t.Errorf("invalid postcode must not enqueue a lead")
	}
}

func TestQuoteMissingDestination(t *testing.T) {
	sink := &mockLeadSink{}
	svc := NewService(warmCache(t, &mockZoneSource{}), sink, testConfig(), testLogger())

	resp := svc.Quote(context.Background(), RateRequest{})
	rate := resp.Rates[0]
	if rate.ServiceCode != ServiceCodeInquiry || rate.TotalPrice != "0" {
		t.Errorf("expected zero-price inquiry fallback, got %+v", rate)
	}
	if rate.Currency != "AUD" {
		t.Errorf("expected default currency fallback, got %q", rate.Currency)
	}
}

func TestQuoteUnmatchedEnqueuesLead(t *testing.T) {
	sink := &mockLeadSink{}
	svc := NewService(warmCache(t, &mockZoneSource{}), sink, testConfig(), testLogger())

	resp := svc.Quote(context.Background(), matchedRequest("9999"))
	if got := resp.Rates[0].ServiceCode; got != ServiceCodeInquiry {
		t.Fatalf("expected %s fallback, got %q", ServiceCodeInquiry, got)
	}
	if sink.count() != 1 {
		t.Fatalf("expected one enqueued lead, got %d", sink.count())
	}

	lead := sink.leads[0]
	if lead.Postcode != "9999" {
		t.Errorf("expected normalized postcode on lead, got %q", lead.Postcode)
	}
	if lead.CustomerName != "Dana Kapeta" {
		t.Errorf("expected split name resolved, got %q", lead.CustomerName)
	}
	if lead.Email != "dana@example.com" {
		t.Errorf("expected email carried over, got %q", lead.Email)
	}
	if lead.Address != "Melbourne, VIC, AU" {
		t.Errorf("unexpected address line %q", lead.Address)
	}
	if len(lead.Items) != 2 || lead.Items[0].Title != "Corner Sofa" {
		t.Errorf("expected cart carried onto lead, got %+v", lead.Items)
	}
}

func TestQuoteSinkFailureStillAnswers(t *testing.T) {
	sink := &mockLeadSink{err: context.DeadlineExceeded}
	svc := NewService(warmCache(t, &mockZoneSource{}), sink, testConfig(), testLogger())

	resp := svc.Quote(context.Background(), matchedRequest("9999"))
	if got := resp.Rates[0].ServiceCode; got != ServiceCodeInquiry {
		t.Errorf("enqueue failure must not surface, got %q", got)
	}
}

func TestQuoteRecoversFromPanic(t *testing.T) {
	sink := &mockLeadSink{explode: true}
	svc := NewService(warmCache(t, &mockZoneSource{}), sink, testConfig(), testLogger())

	resp := svc.Quote(context.Background(), matchedRequest("9999"))
	if len(resp.Rates) != 1 || resp.Rates[0].ServiceCode != ServiceCodeInquiry {
		t.Errorf("panic must degrade to the inquiry fallback, got %+v", resp)
	}
}
