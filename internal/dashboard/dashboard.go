// Package dashboard assembles the member dashboard: which tabs a member sees
// and the data behind each tab.
package dashboard

import (
	"attorneyhub/backend/internal/analysis"
	"attorneyhub/backend/internal/complaint"
	"attorneyhub/backend/internal/membership"
	"attorneyhub/backend/internal/models"
	"context"
	"errors"
	"time"
)

// ErrTabNotAvailable is returned when the member may not open a tab.
var ErrTabNotAvailable = errors.New("dashboard tab not available")

const (
	TabMembership         = "membership"
	TabBilling            = "billing"
	TabComplaints         = "complaints"
	TabComplaintsReceived = "complaints-received"
)

// Tab is a dashboard navigation entry. Label is a localization key.
type Tab struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type Authorizer interface {
	HasFeature(ctx context.Context, userID, feature string) bool
	ResolveTier(ctx context.Context, userID string) membership.Tier
}

// Store is the read side the dashboard needs.
type Store interface {
	ActiveSubscriptions(ctx context.Context, userID string, now time.Time) ([]models.Subscription, error)
	ListTransactionsForUser(ctx context.Context, userID string) ([]models.Transaction, error)
	ListListingsByOwner(ctx context.Context, ownerID string) ([]models.Listing, error)
}

type ComplaintLister interface {
	ListByAuthor(ctx context.Context, userID string, page complaint.Page) ([]models.Complaint, error)
	ListAgainstOwner(ctx context.Context, ownerID string, page complaint.Page) ([]models.Complaint, error)
	StatsByAuthor(ctx context.Context, userID string) (analysis.Report, error)
	StatsAgainstOwner(ctx context.Context, ownerID string) (analysis.Report, error)
}

type Service struct {
	Store      Store
	Auth       Authorizer
	Complaints ComplaintLister
	Now        func() time.Time
}

func NewService(store Store, auth Authorizer, complaints ComplaintLister) *Service {
	return &Service{Store: store, Auth: auth, Complaints: complaints, Now: time.Now}
}

// Tabs returns Membership and Billing History for everyone, My Complaints
// for members who may file complaints and Complaints Against Me for
// attorney-pro members.
func (s *Service) Tabs(ctx context.Context, userID string) []Tab {
	tabs := []Tab{
		{ID: TabMembership, Label: "tab.membership"},
		{ID: TabBilling, Label: "tab.billing"},
	}
	if s.Auth.HasFeature(ctx, userID, membership.FeatureComplaints) {
		tabs = append(tabs, Tab{ID: TabComplaints, Label: "tab.complaints"})
	}
	if s.Auth.ResolveTier(ctx, userID) == membership.TierAttorneyPro {
		tabs = append(tabs, Tab{ID: TabComplaintsReceived, Label: "tab.complaints_received"})
	}
	return tabs
}

// SubscriptionView is one active membership as shown on the Membership tab.
type SubscriptionView struct {
	ProductSlug string     `json:"product_slug"`
	Status      string     `json:"status"`
	MemberSince time.Time  `json:"member_since"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	Lifetime    bool       `json:"lifetime"`
}

type MembershipView struct {
	Tier          membership.Tier    `json:"tier"`
	TierName      string             `json:"tier_name"`
	Active        bool               `json:"active"`
	Subscriptions []SubscriptionView `json:"subscriptions"`
	Benefits      []string           `json:"benefits"`
	Capabilities  []string           `json:"capabilities"`
}

func (s *Service) Membership(ctx context.Context, userID string) (*MembershipView, error) {
	subs, err := s.Store.ActiveSubscriptions(ctx, userID, s.Now())
	if err != nil {
		return nil, err
	}
	tier := s.Auth.ResolveTier(ctx, userID)

	view := &MembershipView{
		Tier:          tier,
		TierName:      membership.MembershipName(tier),
		Active:        len(subs) > 0,
		Subscriptions: make([]SubscriptionView, 0, len(subs)),
		Benefits:      membership.TierFeatures(tier),
		Capabilities:  membership.CapabilitiesFor(tier).Strings(),
	}
	for _, sub := range subs {
		view.Subscriptions = append(view.Subscriptions, SubscriptionView{
			ProductSlug: sub.ProductSlug,
			Status:      sub.Status,
			MemberSince: sub.CreatedAt,
			ExpiresAt:   sub.ExpiresAt,
			Lifetime:    sub.ExpiresAt == nil,
		})
	}
	return view, nil
}

// Billing returns the member's transactions, newest first.
func (s *Service) Billing(ctx context.Context, userID string) ([]models.Transaction, error) {
	return s.Store.ListTransactionsForUser(ctx, userID)
}

// ComplaintsView is one page of complaints. Counts and Listings cover every
// complaint, not just the page.
type ComplaintsView struct {
	Items    []models.Complaint      `json:"items"`
	Counts   analysis.StatusCounts   `json:"counts"`
	Listings []analysis.ListingCount `json:"listings,omitempty"`
	// HasListings is false when an attorney has not claimed a listing yet.
	HasListings bool `json:"has_listings"`
}

func (s *Service) MyComplaints(ctx context.Context, userID string, page complaint.Page) (*ComplaintsView, error) {
	if !s.Auth.HasFeature(ctx, userID, membership.FeatureComplaints) {
		return nil, ErrTabNotAvailable
	}
	items, err := s.Complaints.ListByAuthor(ctx, userID, page)
	if err != nil {
		return nil, err
	}
	report, err := s.Complaints.StatsByAuthor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ComplaintsView{Items: items, Counts: report.Counts}, nil
}

func (s *Service) ComplaintsAgainstMe(ctx context.Context, userID string, page complaint.Page) (*ComplaintsView, error) {
	if s.Auth.ResolveTier(ctx, userID) != membership.TierAttorneyPro {
		return nil, ErrTabNotAvailable
	}
	listings, err := s.Store.ListListingsByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(listings) == 0 {
		return &ComplaintsView{Items: []models.Complaint{}}, nil
	}
	items, err := s.Complaints.ListAgainstOwner(ctx, userID, page)
	if err != nil {
		return nil, err
	}
	report, err := s.Complaints.StatsAgainstOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ComplaintsView{Items: items, Counts: report.Counts, Listings: report.Listings, HasListings: true}, nil
}
