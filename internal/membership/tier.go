// Package membership derives a member's tier from their active subscription
// and maps tiers to the capabilities the rest of the hub checks.
package membership

// Tier is a membership level. It is derived from subscriptions and never stored.
type Tier string

const (
	TierFree             Tier = "free"
	TierVerifiedReviewer Tier = "verified-reviewer"
	TierAttorneyPro      Tier = "attorney-pro"
)

// productTiers maps membership product slugs to tiers.
var productTiers = map[string]Tier{
	"free-member":       TierFree,
	"verified-reviewer": TierVerifiedReviewer,
	"attorney-pro":      TierAttorneyPro,
}

var tierRank = map[Tier]int{
	TierFree:             0,
	TierVerifiedReviewer: 1,
	TierAttorneyPro:      2,
}

// TierForProduct returns the tier sold by a product slug.
func TierForProduct(slug string) (Tier, bool) {
	t, ok := productTiers[slug]
	return t, ok
}

// Valid reports whether t is one of the known tiers.
func (t Tier) Valid() bool {
	_, ok := tierRank[t]
	return ok
}

// AtLeast reports whether t ranks at or above other.
func (t Tier) AtLeast(other Tier) bool {
	return tierRank[t] >= tierRank[other]
}

// MembershipName returns the localization key of the tier's display name.
func MembershipName(t Tier) string {
	if !t.Valid() {
		t = TierFree
	}
	return "tier." + string(t)
}

var tierFeatures = map[Tier][]string{
	TierFree: {
		"feature.browse_directory",
		"feature.view_profiles",
	},
	TierVerifiedReviewer: {
		"feature.all_free",
		"feature.submit_reviews",
		"feature.file_complaints",
		"feature.verified_badge",
	},
	TierAttorneyPro: {
		"feature.all_verified",
		"feature.claim_listing",
		"feature.edit_profile",
		"feature.view_complaints_against_me",
		"feature.priority_support",
	},
}

// TierFeatures returns the localization keys of the feature bullets shown to
// a member of tier t.
func TierFeatures(t Tier) []string {
	return append([]string(nil), tierFeatures[t]...)
}
