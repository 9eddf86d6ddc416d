// Package analysis summarizes complaint counts for the statistics cards on
// the dashboard and the admin report.
package analysis

import (
	"attorneyhub/backend/internal/models"
	"sort"
)

// StatusCounts is the number of complaints in each status.
type StatusCounts struct {
	Total       int `json:"total"`
	Pending     int `json:"pending"`
	UnderReview int `json:"under_review"`
	Resolved    int `json:"resolved"`
	Dismissed   int `json:"dismissed"`
}

// Open returns the complaints still awaiting a decision.
func (s StatusCounts) Open() int {
	return s.Pending + s.UnderReview
}

// Summarize adds up grouped counts by status. Unknown statuses only count
// toward Total.
func Summarize(rows []models.ComplaintCount) StatusCounts {
	var s StatusCounts
	for _, r := range rows {
		s.Total += r.Count
		switch r.Status {
		case models.StatusPending:
			s.Pending += r.Count
		case models.StatusUnderReview:
			s.UnderReview += r.Count
		case models.StatusResolved:
			s.Resolved += r.Count
		case models.StatusDismissed:
			s.Dismissed += r.Count
		}
	}
	return s
}

// ListingCount is the number of complaints against one listing.
type ListingCount struct {
	ListingID string `json:"listing_id"`
	Count     int    `json:"count"`
	Open      int    `json:"open"`
}

// ByListing totals grouped counts per target listing, most complained-about first.
func ByListing(rows []models.ComplaintCount) []ListingCount {
	idx := make(map[string]int)
	out := make([]ListingCount, 0)
	for _, r := range rows {
		i, ok := idx[r.AttorneyID]
		if !ok {
			i = len(out)
			idx[r.AttorneyID] = i
			out = append(out, ListingCount{ListingID: r.AttorneyID})
		}
		out[i].Count += r.Count
		if r.Status == models.StatusPending || r.Status == models.StatusUnderReview {
			out[i].Open += r.Count
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].ListingID < out[j].ListingID
	})
	return out
}

// Report is the full breakdown of a set of complaints.
type Report struct {
	Counts   StatusCounts   `json:"counts"`
	Listings []ListingCount `json:"listings"`
}

func NewReport(rows []models.ComplaintCount) Report {
	return Report{Counts: Summarize(rows), Listings: ByListing(rows)}
}
