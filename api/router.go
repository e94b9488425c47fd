package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"fleetxp/game/mechanics"
	"fleetxp/ledger"
	"fleetxp/metrics"
	"fleetxp/models"

	"github.com/gorilla/mux"
)

const (
	defaultEngagementLimit = 20
	maxEngagementLimit     = 200
)

// EngagementLister reads the engagement log.
type EngagementLister interface {
	RecentEngagements(ctx context.Context, limit int) ([]models.EngagementRecord, error)
}

type ShipXP struct {
	ID          string  `json:"id"`
	XP          float64 `json:"xp"`
	Level       int     `json:"level"`
	NextLevelXP float64 `json:"next_level_xp"`
}

func newShipXP(id string, xp float64) ShipXP {
	level := mechanics.ShipLevel(xp)
	return ShipXP{ID: id, XP: xp, Level: level, NextLevelXP: mechanics.XPForLevel(level + 1)}
}

type Engagement struct {
	EngagementID string    `json:"engagement_id"`
	Commander    string    `json:"commander"`
	Contributors int       `json:"contributors"`
	Civilians    int       `json:"civilians"`
	CombatXP     float64   `json:"combat_xp"`
	NonCombatXP  float64   `json:"non_combat_xp"`
	RecordedAt   time.Time `json:"recorded_at"`
}

type handler struct {
	table       *ledger.Table
	engagements EngagementLister
}

// NewRouter exposes the ledger read API and the prometheus endpoint.
// engagements may be nil, in which case the engagement log route is not mounted.
func NewRouter(table *ledger.Table, engagements EngagementLister, m *metrics.Metrics) *mux.Router {
	h := &handler{table: table, engagements: engagements}

	r := mux.NewRouter()
	sub := r.PathPrefix("/api").Subrouter()
	sub.Handle("/healthz", m.WrapHandler("/api/healthz", http.HandlerFunc(healthHandler))).Methods(http.MethodGet)
	sub.Handle("/ships", m.WrapHandler("/api/ships", http.HandlerFunc(h.listShips))).Methods(http.MethodGet)
	sub.Handle("/ships/{id}/xp", m.WrapHandler("/api/ships/{id}/xp", http.HandlerFunc(h.getShipXP))).Methods(http.MethodGet)
	if engagements != nil {
		sub.Handle("/engagements", m.WrapHandler("/api/engagements", http.HandlerFunc(h.listEngagements))).Methods(http.MethodGet)
	}
	if m != nil {
		r.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	}
	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func (h *handler) listShips(w http.ResponseWriter, _ *http.Request) {
	ranked := h.table.Ranked()
	resp := make([]ShipXP, 0, len(ranked))
	for _, r := range ranked {
		resp = append(resp, newShipXP(r.MemberID, r.XP))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handler) getShipXP(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	entry, ok := h.table.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "error.ship.not_found")
		return
	}
	writeJSON(w, http.StatusOK, newShipXP(id, entry.XP))
}

func (h *handler) listEngagements(w http.ResponseWriter, r *http.Request) {
	limit := defaultEngagementLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "error.request.invalid_limit")
			return
		}
		limit = min(n, maxEngagementLimit)
	}

	records, err := h.engagements.RecentEngagements(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "error.engagements.unavailable")
		return
	}
	resp := make([]Engagement, 0, len(records))
	for _, rec := range records {
		resp = append(resp, Engagement{
			EngagementID: rec.EngagementID,
			Commander:    rec.Commander,
			Contributors: rec.Contributors,
			Civilians:    rec.Civilians,
			CombatXP:     rec.CombatXP,
			NonCombatXP:  rec.NonCombatXP,
			RecordedAt:   rec.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
