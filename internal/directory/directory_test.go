package directory_test

import (
	"attorneyhub/backend/internal/cache"
	"attorneyhub/backend/internal/config"
	"attorneyhub/backend/internal/directory"
	"attorneyhub/backend/internal/events"
	"attorneyhub/backend/internal/membership"
	"attorneyhub/backend/internal/models"
	"attorneyhub/backend/internal/storage"
	"attorneyhub/backend/internal/storage/storagemock"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeAuth grants capabilities by tier and treats "admin" as administrator.
type fakeAuth map[string]membership.Tier

func (f fakeAuth) UserHas(_ context.Context, userID string, c membership.Capability) bool {
	if userID == "admin" {
		return true
	}
	tier, ok := f[userID]
	return ok && c != membership.CapViewAdminData && membership.CapabilitiesFor(tier).Has(c)
}

func (f fakeAuth) IsAdmin(_ context.Context, userID string) bool { return userID == "admin" }

func (f fakeAuth) ResolveTier(_ context.Context, userID string) membership.Tier {
	if t, ok := f[userID]; ok {
		return t
	}
	return membership.TierFree
}

func ptr[T any](v T) *T { return &v }

func newService(st *storagemock.MockStorage) (*directory.Service, *[]events.ListingUpdated) {
	auth := fakeAuth{
		"pro":      membership.TierAttorneyPro,
		"reviewer": membership.TierVerifiedReviewer,
		"free":     membership.TierFree,
	}
	bus := events.NewBus(zap.NewNop())
	var updates []events.ListingUpdated
	events.Subscribe(bus, func(_ context.Context, e events.ListingUpdated) { updates = append(updates, e) })
	return directory.NewService(st, auth, bus, nil, zap.NewNop()), &updates
}

func attorney(id string, owner *string) *models.Listing {
	return &models.Listing{ID: id, Title: "Attorney " + id, ListingType: config.AttorneyListingType, OwnerID: owner}
}

func TestSearchFields(t *testing.T) {
	fields := directory.SearchFields()
	require.Len(t, fields, 3)

	assert.Equal(t, "practice_areas", fields[0].Name)
	assert.Len(t, fields[0].Options, 11)
	assert.Equal(t, "practice.criminal-law", fields[0].Options[1].Label)

	assert.Equal(t, "license_status", fields[1].Name)
	assert.Equal(t, []string{"", "active", "inactive", "suspended"}, optionValues(fields[1].Options))

	assert.Equal(t, "min_rating", fields[2].Name)
	assert.Equal(t, []string{"", "1", "2", "3", "4", "5"}, optionValues(fields[2].Options))
}

func optionValues(opts []directory.Option) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.Value
	}
	return out
}

func TestGating(t *testing.T) {
	st := new(storagemock.MockStorage)
	svc, _ := newService(st)
	ctx := context.Background()

	assert.True(t, svc.CanReview(ctx, "reviewer"))
	assert.False(t, svc.CanReview(ctx, "free"))
	assert.False(t, svc.CanClaim(ctx, "reviewer"))
	assert.True(t, svc.CanClaim(ctx, "pro"))

	assert.True(t, svc.ReviewerBadge(ctx, "reviewer"))
	assert.True(t, svc.ReviewerBadge(ctx, "pro"))
	assert.False(t, svc.ReviewerBadge(ctx, "free"))
	assert.False(t, svc.ReviewerBadge(ctx, ""))

	owned := attorney("L1", ptr("pro"))
	assert.True(t, svc.CanEditField(ctx, "pro", owned, "law_firm"))
	assert.False(t, svc.CanEditField(ctx, "pro", owned, "bar_number"))
	assert.False(t, svc.CanEditField(ctx, "pro", owned, "disciplinary_history"))
	assert.True(t, svc.CanEditField(ctx, "admin", owned, "bar_number"))
	assert.False(t, svc.CanEditField(ctx, "reviewer", owned, "law_firm"))
}

func TestClaim(t *testing.T) {
	st := new(storagemock.MockStorage)
	svc, updates := newService(st)
	ctx := context.Background()

	st.On("GetListingByID", mock.Anything, "L1").Return(attorney("L1", nil), nil)
	st.On("ClaimListing", mock.Anything, "L1", "pro").Return(true, nil)

	l, err := svc.Claim(ctx, "pro", "L1")
	require.NoError(t, err)
	assert.True(t, l.IsOwnedBy("pro"))
	require.Len(t, *updates, 1)
	assert.Equal(t, events.ListingUpdated{ListingID: "L1", OwnerID: "pro"}, (*updates)[0])

	_, err = svc.Claim(ctx, "reviewer", "L1")
	assert.ErrorIs(t, err, directory.ErrNotPermitted)
}

func TestClaim_Refusals(t *testing.T) {
	st := new(storagemock.MockStorage)
	svc, updates := newService(st)
	ctx := context.Background()

	st.On("GetListingByID", mock.Anything, "taken").Return(attorney("taken", ptr("someone")), nil)
	st.On("GetListingByID", mock.Anything, "cafe").Return(&models.Listing{ID: "cafe", ListingType: "restaurant"}, nil)
	st.On("GetListingByID", mock.Anything, "raced").Return(attorney("raced", nil), nil)
	st.On("GetListingByID", mock.Anything, "gone").Return(nil, storage.ErrNotFound)
	st.On("ClaimListing", mock.Anything, "raced", "pro").Return(false, nil)

	_, err := svc.Claim(ctx, "pro", "taken")
	assert.ErrorIs(t, err, directory.ErrAlreadyClaimed)
	_, err = svc.Claim(ctx, "pro", "cafe")
	assert.ErrorIs(t, err, directory.ErrNotAttorney)
	_, err = svc.Claim(ctx, "pro", "raced")
	assert.ErrorIs(t, err, directory.ErrAlreadyClaimed)
	_, err = svc.Claim(ctx, "pro", "gone")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.Empty(t, *updates)
}

func TestUpdateCredentials_OwnerCannotTouchAdminFields(t *testing.T) {
	st := new(storagemock.MockStorage)
	svc, updates := newService(st)
	ctx := context.Background()

	listing := attorney("L1", ptr("pro"))
	listing.BarNumber = "CA-123"
	st.On("GetListingByID", mock.Anything, "L1").Return(listing, nil)
	st.On("SaveListing", mock.Anything, listing).Return(nil)

	l, refused, err := svc.UpdateCredentials(ctx, "pro", "L1", directory.CredentialUpdate{
		BarNumber:       ptr("FAKE-1"),
		LawFirm:         ptr("  Hutz & Associates "),
		YearsExperience: ptr(12),
		PracticeAreas:   []string{"family-law"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"bar_number"}, refused)
	assert.Equal(t, "CA-123", l.BarNumber)
	assert.Equal(t, "Hutz & Associates", l.LawFirm)
	assert.Equal(t, 12, l.YearsExperience)
	assert.Len(t, *updates, 1)
}

func TestUpdateCredentials_Refusals(t *testing.T) {
	st := new(storagemock.MockStorage)
	svc, _ := newService(st)
	ctx := context.Background()

	st.On("GetListingByID", mock.Anything, "L1").Return(attorney("L1", ptr("pro")), nil)

	_, _, err := svc.UpdateCredentials(ctx, "reviewer", "L1", directory.CredentialUpdate{LawFirm: ptr("x")})
	assert.ErrorIs(t, err, directory.ErrNotOwner)

	_, _, err = svc.UpdateCredentials(ctx, "pro", "L1", directory.CredentialUpdate{LicenseStatus: ptr("revoked")})
	assert.ErrorIs(t, err, directory.ErrInvalidArgument)

	st.AssertNotCalled(t, "SaveListing", mock.Anything, mock.Anything)
}

func TestPermissionsAndCredentials(t *testing.T) {
	st := new(storagemock.MockStorage)
	svc, _ := newService(st)
	svc.Cache = cache.New(cache.NewMemoryBackend(), zap.NewNop())
	ctx := context.Background()

	l := attorney("L1", nil)
	l.PracticeAreas = []string{"tax-law", " ", ""}
	l.LicenseStatus = "active"
	st.On("GetListingByID", mock.Anything, "L1").Return(l, nil).Once()

	p, err := svc.Permissions(ctx, "pro", "L1")
	require.NoError(t, err)
	assert.True(t, p.CanClaim)
	assert.True(t, p.CanReview)
	assert.False(t, p.IsOwner)
	assert.Empty(t, p.EditableFields)

	creds, err := svc.Credentials(ctx, "L1")
	require.NoError(t, err)
	assert.Equal(t, []string{"tax-law"}, creds.PracticeAreas)
	assert.Equal(t, "active", creds.LicenseStatus)
	assert.False(t, creds.Empty())

	p, err = svc.Permissions(ctx, "admin", "L1")
	require.NoError(t, err)
	assert.Equal(t, directory.EditableFields, p.EditableFields)
	st.AssertNumberOfCalls(t, "GetListingByID", 1)
}

func TestAttorneyOptionsSortedByTitle(t *testing.T) {
	st := new(storagemock.MockStorage)
	svc, _ := newService(st)
	st.On("ListPublishedListings", mock.Anything, config.AttorneyListingType).Return([]models.Listing{
		{ID: "3", Title: "zed"}, {ID: "1", Title: "Alice"}, {ID: "2", Title: "bob"},
	}, nil)

	opts, err := svc.AttorneyOptions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []directory.Option{{Value: "1", Label: "Alice"}, {Value: "2", Label: "bob"}, {Value: "3", Label: "zed"}}, opts)
}
