package membership

import "slices"

// Capability is a named permission checked before a gated action.
type Capability string

const (
	CapFileComplaint Capability = "file_complaint"
	CapSubmitReview  Capability = "submit_review"
	CapClaimListing  Capability = "claim_listing"
	CapManageProfile Capability = "manage_profile"
	CapViewAdminData Capability = "view_admin_data"
)

// AllCapabilities lists every capability in a stable order.
var AllCapabilities = []Capability{
	CapFileComplaint,
	CapSubmitReview,
	CapClaimListing,
	CapManageProfile,
	CapViewAdminData,
}

var tierCapabilities = map[Tier][]Capability{
	TierFree:             {},
	TierVerifiedReviewer: {CapFileComplaint, CapSubmitReview},
	TierAttorneyPro:      {CapFileComplaint, CapSubmitReview, CapClaimListing, CapManageProfile},
}

// Feature names used by menus and dashboard tabs.
const (
	FeatureComplaints              = "complaints"
	FeatureReviews                 = "reviews"
	FeatureClaimListing            = "claim_listing"
	FeatureEditProfile             = "edit_profile"
	FeatureViewComplaintsAgainstMe = "view_complaints_against_me"
)

// featureCapabilities maps feature names to the capability that unlocks them.
var featureCapabilities = map[string]Capability{
	FeatureComplaints:              CapFileComplaint,
	FeatureReviews:                 CapSubmitReview,
	FeatureClaimListing:            CapClaimListing,
	FeatureEditProfile:             CapManageProfile,
	FeatureViewComplaintsAgainstMe: CapManageProfile,
}

// CapabilitySet is a sorted list of distinct capabilities.
type CapabilitySet []Capability

// Has reports whether c is in the set.
func (s CapabilitySet) Has(c Capability) bool {
	return slices.Contains(s, c)
}

// Strings returns the set as plain strings, the form persisted on the user row.
func (s CapabilitySet) Strings() []string {
	out := make([]string, len(s))
	for i, c := range s {
		out[i] = string(c)
	}
	return out
}

// CapabilitiesFor returns the capabilities granted by tier t. Unknown tiers
// get none.
func CapabilitiesFor(t Tier) CapabilitySet {
	return CapabilitySet(slices.Clone(tierCapabilities[t]))
}

// FeatureCapability returns the capability gating a named feature.
func FeatureCapability(feature string) (Capability, bool) {
	c, ok := featureCapabilities[feature]
	return c, ok
}

// isMembershipCapability reports whether c is granted by some tier. Such
// capabilities are rewritten on every sync; anything else on the user row is kept.
func isMembershipCapability(c string) bool {
	for _, caps := range tierCapabilities {
		if slices.Contains(caps, Capability(c)) {
			return true
		}
	}
	return false
}
