// Package directory adds attorney credentials, search filters and
// membership gating on top of the listing directory.
package directory

import (
	"attorneyhub/backend/internal/cache"
	"attorneyhub/backend/internal/config"
	"attorneyhub/backend/internal/events"
	"attorneyhub/backend/internal/membership"
	"attorneyhub/backend/internal/models"
	"attorneyhub/backend/internal/storage"
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"

	"go.uber.org/zap"
)

var (
	ErrNotAttorney     = errors.New("listing is not an attorney listing")
	ErrAlreadyClaimed  = errors.New("listing has already been claimed")
	ErrNotPermitted    = errors.New("membership does not allow this action")
	ErrNotOwner        = errors.New("listing is not owned by this user")
	ErrInvalidArgument = errors.New("invalid credential value")
)

// Authorizer is the capability lookup the directory gates on.
type Authorizer interface {
	UserHas(ctx context.Context, userID string, c membership.Capability) bool
	IsAdmin(ctx context.Context, userID string) bool
	ResolveTier(ctx context.Context, userID string) membership.Tier
}

type Service struct {
	Storage storage.Storage
	Auth    Authorizer
	Bus     *events.Bus
	Cache   *cache.Cache
	Log     *zap.Logger
}

func NewService(s storage.Storage, auth Authorizer, bus *events.Bus, c *cache.Cache, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{Storage: s, Auth: auth, Bus: bus, Cache: c, Log: log}
}

// Register drops cached listing data whenever a listing changes.
func (s *Service) Register(bus *events.Bus) {
	events.Subscribe(bus, func(ctx context.Context, e events.ListingUpdated) {
		s.Cache.ForgetListing(ctx, e.ListingID)
		if e.OwnerID != "" {
			s.Cache.ForgetUser(ctx, e.OwnerID)
		}
	})
}

// GetListing returns a listing, cached.
func (s *Service) GetListing(ctx context.Context, id string) (*models.Listing, error) {
	l, err := cache.Remember(ctx, s.Cache, cache.ListingKey(id), config.DefaultCacheTTL, func(ctx context.Context) (*models.Listing, error) {
		return s.Storage.GetListingByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return l, nil
}

// IsAttorneyListing reports whether l is an attorney profile.
func IsAttorneyListing(l *models.Listing) bool {
	return l != nil && l.ListingType == config.AttorneyListingType
}

// Credentials is the public credential block of an attorney listing.
type Credentials struct {
	BarNumber       string   `json:"bar_number,omitempty"`
	StateAdmission  string   `json:"state_admission,omitempty"`
	PracticeAreas   []string `json:"practice_areas,omitempty"`
	YearsExperience int      `json:"years_experience,omitempty"`
	LawFirm         string   `json:"law_firm,omitempty"`
	LicenseStatus   string   `json:"license_status,omitempty"`
}

// Empty reports whether no credential is set.
func (c Credentials) Empty() bool {
	return c.BarNumber == "" && c.StateAdmission == "" && len(c.PracticeAreas) == 0 &&
		c.YearsExperience == 0 && c.LawFirm == "" && c.LicenseStatus == ""
}

// CredentialsOf extracts the credential block. Empty practice areas are dropped.
func CredentialsOf(l *models.Listing) Credentials {
	areas := make([]string, 0, len(l.PracticeAreas))
	for _, a := range l.PracticeAreas {
		if a = strings.TrimSpace(a); a != "" {
			areas = append(areas, a)
		}
	}
	return Credentials{
		BarNumber:       l.BarNumber,
		StateAdmission:  l.StateAdmission,
		PracticeAreas:   areas,
		YearsExperience: l.YearsExperience,
		LawFirm:         l.LawFirm,
		LicenseStatus:   l.LicenseStatus,
	}
}

// Credentials returns the credentials of an attorney listing.
func (s *Service) Credentials(ctx context.Context, listingID string) (Credentials, error) {
	l, err := s.GetListing(ctx, listingID)
	if err != nil {
		return Credentials{}, err
	}
	if !IsAttorneyListing(l) {
		return Credentials{}, ErrNotAttorney
	}
	return CredentialsOf(l), nil
}

// ListingsOwnedBy returns the listings a user has claimed, cached per user.
func (s *Service) ListingsOwnedBy(ctx context.Context, ownerID string) ([]models.Listing, error) {
	return cache.Remember(ctx, s.Cache, cache.UserListingsKey(ownerID), config.DefaultCacheTTL, func(ctx context.Context) ([]models.Listing, error) {
		return s.Storage.ListListingsByOwner(ctx, ownerID)
	})
}

// AttorneyOptions lists published attorney listings sorted by title, for the
// complaint form's attorney picker.
func (s *Service) AttorneyOptions(ctx context.Context) ([]Option, error) {
	listings, err := s.Storage.ListPublishedListings(ctx, config.AttorneyListingType)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(listings, func(i, j int) bool {
		return strings.ToLower(listings[i].Title) < strings.ToLower(listings[j].Title)
	})
	opts := make([]Option, len(listings))
	for i, l := range listings {
		opts[i] = Option{Value: l.ID, Label: l.Title}
	}
	return opts, nil
}

func (s *Service) CanReview(ctx context.Context, userID string) bool {
	return s.Auth.UserHas(ctx, userID, membership.CapSubmitReview)
}

func (s *Service) CanClaim(ctx context.Context, userID string) bool {
	return s.Auth.UserHas(ctx, userID, membership.CapClaimListing)
}

// ReviewerBadge reports whether the user's reviews carry the verified badge.
func (s *Service) ReviewerBadge(ctx context.Context, userID string) bool {
	if userID == "" {
		return false
	}
	return s.Auth.ResolveTier(ctx, userID).AtLeast(membership.TierVerifiedReviewer)
}

// CanEditField reports whether the user may change field on l. Bar number and
// disciplinary history stay with administrators after a claim; other fields
// are open to the owner while they hold manage_profile.
func (s *Service) CanEditField(ctx context.Context, userID string, l *models.Listing, field string) bool {
	if userID == "" {
		return false
	}
	if s.Auth.IsAdmin(ctx, userID) {
		return true
	}
	if config.AdminOnlyListingFields[field] {
		return false
	}
	return l.IsOwnedBy(userID) && s.Auth.UserHas(ctx, userID, membership.CapManageProfile)
}

// EditableFields are the credential fields accepted by UpdateCredentials.
var EditableFields = []string{
	"bar_number",
	"state_admission",
	"practice_areas",
	"years_experience",
	"law_firm",
	"license_status",
	"disciplinary_history",
}

// Permissions summarizes what a user may do with a listing.
type Permissions struct {
	CanReview      bool     `json:"can_review"`
	CanClaim       bool     `json:"can_claim"`
	IsOwner        bool     `json:"is_owner"`
	EditableFields []string `json:"editable_fields"`
}

func (s *Service) Permissions(ctx context.Context, userID, listingID string) (Permissions, error) {
	l, err := s.GetListing(ctx, listingID)
	if err != nil {
		return Permissions{}, err
	}
	p := Permissions{
		CanReview:      s.CanReview(ctx, userID),
		CanClaim:       IsAttorneyListing(l) && l.OwnerID == nil && s.CanClaim(ctx, userID),
		IsOwner:        l.IsOwnedBy(userID),
		EditableFields: []string{},
	}
	for _, f := range EditableFields {
		if s.CanEditField(ctx, userID, l, f) {
			p.EditableFields = append(p.EditableFields, f)
		}
	}
	return p, nil
}

// Claim assigns an unclaimed attorney listing to the user.
func (s *Service) Claim(ctx context.Context, userID, listingID string) (*models.Listing, error) {
	if !s.CanClaim(ctx, userID) {
		return nil, ErrNotPermitted
	}
	l, err := s.Storage.GetListingByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if !IsAttorneyListing(l) {
		return nil, ErrNotAttorney
	}
	if l.OwnerID != nil {
		return nil, ErrAlreadyClaimed
	}

	ok, err := s.Storage.ClaimListing(ctx, listingID, userID)
	if err != nil {
		return nil, fmt.Errorf("claim listing: %w", err)
	}
	if !ok {
		// Someone else won the race between the read and the update.
		return nil, ErrAlreadyClaimed
	}
	l.OwnerID = &userID

	s.Log.Info("listing claimed", zap.String("listing_id", listingID), zap.String("user_id", userID))
	s.Bus.Publish(ctx, events.ListingUpdated{ListingID: listingID, OwnerID: userID})
	return l, nil
}

// CredentialUpdate carries the fields to change. Nil fields are left alone.
type CredentialUpdate struct {
	BarNumber           *string  `json:"bar_number"`
	StateAdmission      *string  `json:"state_admission"`
	PracticeAreas       []string `json:"practice_areas"`
	YearsExperience     *int     `json:"years_experience"`
	LawFirm             *string  `json:"law_firm"`
	LicenseStatus       *string  `json:"license_status"`
	DisciplinaryHistory *string  `json:"disciplinary_history"`
}

// UpdateCredentials applies the fields of u the user may edit and returns the
// updated listing plus the names of fields that were refused.
func (s *Service) UpdateCredentials(ctx context.Context, userID, listingID string, u CredentialUpdate) (*models.Listing, []string, error) {
	l, err := s.Storage.GetListingByID(ctx, listingID)
	if err != nil {
		return nil, nil, err
	}
	if !IsAttorneyListing(l) {
		return nil, nil, ErrNotAttorney
	}
	if !l.IsOwnedBy(userID) && !s.Auth.IsAdmin(ctx, userID) {
		return nil, nil, ErrNotOwner
	}
	if u.LicenseStatus != nil && !slices.Contains(LicenseStatuses, *u.LicenseStatus) {
		return nil, nil, fmt.Errorf("%w: license_status %q", ErrInvalidArgument, *u.LicenseStatus)
	}
	if u.YearsExperience != nil && *u.YearsExperience < 0 {
		return nil, nil, fmt.Errorf("%w: years_experience", ErrInvalidArgument)
	}

	var refused []string
	apply := func(field string, set func()) {
		if s.CanEditField(ctx, userID, l, field) {
			set()
		} else {
			refused = append(refused, field)
		}
	}
	if u.BarNumber != nil {
		apply("bar_number", func() { l.BarNumber = strings.TrimSpace(*u.BarNumber) })
	}
	if u.StateAdmission != nil {
		apply("state_admission", func() { l.StateAdmission = strings.TrimSpace(*u.StateAdmission) })
	}
	if u.PracticeAreas != nil {
		apply("practice_areas", func() { l.PracticeAreas = u.PracticeAreas })
	}
	if u.YearsExperience != nil {
		apply("years_experience", func() { l.YearsExperience = *u.YearsExperience })
	}
	if u.LawFirm != nil {
		apply("law_firm", func() { l.LawFirm = strings.TrimSpace(*u.LawFirm) })
	}
	if u.LicenseStatus != nil {
		apply("license_status", func() { l.LicenseStatus = *u.LicenseStatus })
	}
	if u.DisciplinaryHistory != nil {
		apply("disciplinary_history", func() { l.DisciplinaryHistory = *u.DisciplinaryHistory })
	}

	if err := s.Storage.SaveListing(ctx, l); err != nil {
		return nil, nil, fmt.Errorf("save listing: %w", err)
	}

	owner := ""
	if l.OwnerID != nil {
		owner = *l.OwnerID
	}
	s.Bus.Publish(ctx, events.ListingUpdated{ListingID: l.ID, OwnerID: owner})
	return l, refused, nil
}
