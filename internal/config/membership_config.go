package config

import "time"

const (
	// Complaints
	MinComplaintLength  = 50
	AttorneyListingType = "at_biz_dir"

	// Evidence
	MaxEvidenceSize = 5 * 1024 * 1024

	// Cache
	CachePrefix       = "attorney_hub_"
	DefaultCacheTTL   = 30 * time.Minute
	UserSyncMarkerTTL = 24 * time.Hour

	// Pagination
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// AllowedEvidenceTypes maps sniffed MIME types to the stored file extension.
var AllowedEvidenceTypes = map[string]string{
	"application/pdf": ".pdf",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
}

// AdminOnlyListingFields can only be edited by administrators, even after a claim.
var AdminOnlyListingFields = map[string]bool{
	"bar_number":           true,
	"disciplinary_history": true,
}
