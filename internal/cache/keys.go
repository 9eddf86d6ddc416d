package cache

const (
	SyncMarkerKey = "user_sync_done"
)

func UserMembershipKey(userID string) string { return "user_memberships_" + userID }
func UserComplaintsKey(userID string) string { return "user_complaints_" + userID }
func UserListingsKey(userID string) string   { return "user_listings_" + userID }

func ListingKey(listingID string) string           { return "listing_" + listingID }
func ListingComplaintsKey(listingID string) string { return "listing_complaints_" + listingID }
func ListingReviewsKey(listingID string) string    { return "listing_reviews_" + listingID }

// UserKeys lists every key scoped to a user.
func UserKeys(userID string) []string {
	return []string{UserMembershipKey(userID), UserComplaintsKey(userID), UserListingsKey(userID)}
}

// ListingKeys lists every key scoped to a listing.
func ListingKeys(listingID string) []string {
	return []string{ListingKey(listingID), ListingComplaintsKey(listingID), ListingReviewsKey(listingID)}
}
