package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fleetxp/ledger"
	"fleetxp/metrics"
	"fleetxp/models"
)

type fakeEngagements struct {
	records []models.EngagementRecord
	err     error
	limit   int
}

func (f *fakeEngagements) RecentEngagements(_ context.Context, limit int) ([]models.EngagementRecord, error) {
	f.limit = limit
	return f.records, f.err
}

func serve(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	r := NewRouter(ledger.NewTable(), nil, metrics.New())
	rec := serve(t, r, "/api/healthz")
	if rec.Code != http.StatusOK || rec.Body.String() != `{"status":"ok"}` {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}
}

func TestListShipsSortedByXP(t *testing.T) {
	table := ledger.NewTable()
	table.GiveXP("rookie", 10)
	table.GiveXP("veteran", 1600)
	r := NewRouter(table, nil, metrics.New())

	rec := serve(t, r, "/api/ships")
	var ships []ShipXP
	if err := json.Unmarshal(rec.Body.Bytes(), &ships); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(ships) != 2 || ships[0].ID != "veteran" || ships[0].Level != 3 || ships[1].Level != 1 {
		t.Fatalf("unexpected ships %+v", ships)
	}
}

func TestGetShipXP(t *testing.T) {
	table := ledger.NewTable()
	table.GiveXP("fm-1", 250)
	r := NewRouter(table, nil, metrics.New())

	rec := serve(t, r, "/api/ships/fm-1/xp")
	var ship ShipXP
	if err := json.Unmarshal(rec.Body.Bytes(), &ship); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ship.ID != "fm-1" || ship.XP != 250 || ship.Level != 1 || ship.NextLevelXP != 1000 {
		t.Fatalf("unexpected ship %+v", ship)
	}

	if rec := serve(t, r, "/api/ships/ghost/xp"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for an unknown ship, got %d", rec.Code)
	}
}

func TestListEngagements(t *testing.T) {
	fake := &fakeEngagements{records: []models.EngagementRecord{{EngagementID: "e1", Contributors: 2, CombatXP: 300}}}
	r := NewRouter(ledger.NewTable(), fake, metrics.New())

	rec := serve(t, r, "/api/engagements?limit=500")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if fake.limit != maxEngagementLimit {
		t.Fatalf("limit must be capped at %d, got %d", maxEngagementLimit, fake.limit)
	}
	var out []Engagement
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil || len(out) != 1 || out[0].CombatXP != 300 {
		t.Fatalf("unexpected engagements %+v (%v)", out, err)
	}

	if rec := serve(t, r, "/api/engagements?limit=zero"); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a bad limit, got %d", rec.Code)
	}
	fake.err = errors.New("db down")
	if rec := serve(t, r, "/api/engagements"); rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 when the store fails, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	m := metrics.New()
	r := NewRouter(ledger.NewTable(), nil, m)
	serve(t, r, "/api/healthz")

	rec := serve(t, r, "/metrics")
	if !strings.Contains(rec.Body.String(), `http_requests_total{route="/api/healthz",status="200"} 1`) {
		t.Fatalf("request was not counted:\n%s", rec.Body.String())
	}
}
