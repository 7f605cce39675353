// Package mockbackend serves the two remote milestone endpoints from memory. It backs the
// mock-backend command and end-to-end tests of the tracker.
package mockbackend

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stacklok/milestone-tracker/internal/api/common"
	"github.com/stacklok/milestone-tracker/internal/backend"
	"github.com/stacklok/milestone-tracker/internal/milestone"
)

// SeedRequest is the body of the admin route that records a first investment
type SeedRequest struct {
	TargetAsset string  `json:"targetAsset"`
	AmountUSD   float64 `json:"amountUsd"`
}

type record struct {
	investment *milestone.FirstInvestment
	visibleAt  time.Time
	celebrated bool
}

// Store holds milestone state per identity
type Store struct {
	mu          sync.Mutex
	records     map[string]*record
	settleDelay time.Duration
	now         func() time.Time
}

// Option is a function that configures the store
type Option func(*Store)

// WithSettleDelay hides seeded investments from status queries until delay has passed
func WithSettleDelay(delay time.Duration) Option {
	return func(s *Store) {
		s.settleDelay = delay
	}
}

// NewStore creates an empty store
func NewStore(opts ...Option) *Store {
	s := &Store{
		records: make(map[string]*record),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Seed records a first investment for identity
func (s *Store) Seed(identity string, req SeedRequest) milestone.FirstInvestment {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	inv := milestone.FirstInvestment{
		TargetAsset: strings.ToUpper(strings.TrimSpace(req.TargetAsset)),
		AmountUSD:   req.AmountUSD,
		CreatedAt:   now.UTC(),
	}
	s.records[identity] = &record{investment: &inv, visibleAt: now.Add(s.settleDelay)}
	return inv
}

// Reset forgets identity
func (s *Store) Reset(identity string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, identity)
}

// Status returns the wire response for identity
func (s *Store) Status(identity string) backend.StatusResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[identity]
	if !ok || s.now().Before(rec.visibleAt) {
		return backend.StatusResponse{Success: true}
	}

	inv := *rec.investment
	return backend.StatusResponse{
		Success:         true,
		HasCompleted:    true,
		ShouldCelebrate: !rec.celebrated,
		FirstInvestment: &inv,
	}
}

// Complete marks the celebration for identity as shown. Repeated calls succeed.
func (s *Store) Complete(identity string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.records[identity]; ok {
		rec.celebrated = true
	}
}

// Router creates the mock backend router
func Router(store *Store) http.Handler {
	r := chi.NewRouter()

	r.Get(backend.StatusPath, statusHandler(store))
	r.Post(backend.CompletePath, completeHandler(store))

	r.Route("/admin/identities/{identity}", func(r chi.Router) {
		r.Post("/first-investment", seedHandler(store))
		r.Delete("/", resetHandler(store))
	})

	return r
}

func statusHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := common.IdentityParam(r, "identity")
		if err != nil {
			common.WriteJSONResponse(w, backend.StatusResponse{Success: false}, http.StatusBadRequest)
			return
		}
		common.WriteJSONResponse(w, store.Status(identity), http.StatusOK)
	}
}

func completeHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req backend.CompleteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Identity) == "" {
			common.WriteJSONResponse(w, backend.CompleteResponse{Success: false}, http.StatusBadRequest)
			return
		}

		store.Complete(req.Identity)
		slog.Info("Milestone celebration recorded", "identity", req.Identity)
		common.WriteJSONResponse(w, backend.CompleteResponse{Success: true}, http.StatusOK)
	}
}

func seedHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := common.IdentityParam(r, "identity")
		if err != nil {
			common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
			return
		}

		var req SeedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.WriteErrorResponse(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.TargetAsset == "" || req.AmountUSD <= 0 {
			common.WriteErrorResponse(w, "targetAsset and a positive amountUsd are required", http.StatusBadRequest)
			return
		}

		inv := store.Seed(identity, req)
		slog.Info("Seeded first investment", "identity", identity, "asset", inv.TargetAsset, "amount_usd", inv.AmountUSD)
		common.WriteJSONResponse(w, inv, http.StatusCreated)
	}
}

func resetHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := common.IdentityParam(r, "identity")
		if err != nil {
			common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
			return
		}
		store.Reset(identity)
		w.WriteHeader(http.StatusNoContent)
	}
}
