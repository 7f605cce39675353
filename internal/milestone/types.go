// Package milestone holds the first-investment milestone domain: the status reported by the
// backend, the celebration payload handed to the presentation layer, and the collaborator
// interfaces the tracker depends on.
package milestone

import (
	"context"
	"time"
)

//go:generate mockgen -destination=mocks/mock_milestone.go -package=mocks -source=types.go StatusQuerier,CompletionRecorder,Presenter

// FirstInvestment describes the investment that completed the milestone
type FirstInvestment struct {
	// TargetAsset is the asset code the user bought, e.g. "BTC"
	TargetAsset string `json:"targetAsset"`

	// AmountUSD is the purchase amount in US dollars
	AmountUSD float64 `json:"amountUsd"`

	// CreatedAt is when the backend recorded the investment
	CreatedAt time.Time `json:"createdAt"`
}

// Status is the backend's current view of the milestone for one identity.
// It is produced fresh on every query and never cached.
type Status struct {
	HasCompleted    bool             `json:"hasCompleted"`
	ShouldCelebrate bool             `json:"shouldCelebrate"`
	FirstInvestment *FirstInvestment `json:"firstInvestment,omitempty"`
}

// Valid reports whether the status honours ShouldCelebrate => HasCompleted
func (s *Status) Valid() bool {
	return s != nil && (!s.ShouldCelebrate || s.HasCompleted)
}

// CelebrationPayload is what the presentation layer renders
type CelebrationPayload struct {
	AssetDisplayName   string `json:"assetDisplayName"`
	PurchaseValueCents int64  `json:"purchaseValueCents"`
	HoldingsQuantity   string `json:"holdingsQuantity"`
	TargetAssetCode    string `json:"targetAssetCode"`
}

// StatusQuerier fetches the milestone status for an identity.
type StatusQuerier interface {
	// Query returns nil when the status could not be obtained for any reason.
	// A nil result means "try again later", never "not completed".
	Query(ctx context.Context, identity string) *Status
}

// CompletionRecorder acknowledges on the backend that the celebration was shown.
type CompletionRecorder interface {
	// RecordCompleted is idempotent on the backend and safe to call more than once.
	RecordCompleted(ctx context.Context, identity string) bool
}

// Presenter renders a celebration. It owns its copy of the payload after the call.
type Presenter interface {
	Present(ctx context.Context, identity string, payload CelebrationPayload) error
}
