package storage

import (
	"attorneyhub/backend/internal/models"
	"context"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetUserByID returns the user or ErrNotFound.
func (s *Service) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// SaveUser inserts or updates the user.
func (s *Service) SaveUser(ctx context.Context, user *models.User) error {
	return s.DB.WithContext(ctx).Save(user).Error
}

// UpdateUserCapabilities overwrites the persisted capability list of a user.
func (s *Service) UpdateUserCapabilities(ctx context.Context, userID string, caps []string) error {
	res := s.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("capabilities", pq.StringArray(caps))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListUserIDs returns the id of every user.
func (s *Service) ListUserIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.DB.WithContext(ctx).Model(&models.User{}).Order("created_at asc").Pluck("id", &ids).Error
	return ids, err
}

// ActiveSubscriptions returns the user's subscriptions that grant access at now,
// oldest first so the first element is the one the member signed up with.
func (s *Service) ActiveSubscriptions(ctx context.Context, userID string, now time.Time) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := s.DB.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, models.SubscriptionActive).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Order("created_at asc").
		Find(&subs).Error
	return subs, err
}

func (s *Service) GetSubscriptionByID(ctx context.Context, id string) (*models.Subscription, error) {
	var sub models.Subscription
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&sub).Error; err != nil {
		return nil, notFound(err)
	}
	return &sub, nil
}

func (s *Service) SaveSubscription(ctx context.Context, sub *models.Subscription) error {
	return s.DB.WithContext(ctx).Save(sub).Error
}

func (s *Service) GetTransactionByID(ctx context.Context, id string) (*models.Transaction, error) {
	var txn models.Transaction
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&txn).Error; err != nil {
		return nil, notFound(err)
	}
	return &txn, nil
}

func (s *Service) SaveTransaction(ctx context.Context, txn *models.Transaction) error {
	return s.DB.WithContext(ctx).Save(txn).Error
}

// ListTransactionsForUser returns the billing history, newest first.
func (s *Service) ListTransactionsForUser(ctx context.Context, userID string) ([]models.Transaction, error) {
	var txns []models.Transaction
	err := s.DB.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc").Find(&txns).Error
	return txns, err
}

// GetListingByID returns the listing or ErrNotFound.
func (s *Service) GetListingByID(ctx context.Context, id string) (*models.Listing, error) {
	var listing models.Listing
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&listing).Error; err != nil {
		return nil, notFound(err)
	}
	return &listing, nil
}

func (s *Service) SaveListing(ctx context.Context, listing *models.Listing) error {
	return s.DB.WithContext(ctx).Save(listing).Error
}

// ClaimListing sets the owner only if the listing is still unclaimed. It
// reports false when another member got there first.
func (s *Service) ClaimListing(ctx context.Context, listingID, ownerID string) (bool, error) {
	res := s.DB.WithContext(ctx).Model(&models.Listing{}).
		Where("id = ? AND owner_id IS NULL", listingID).
		Update("owner_id", ownerID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ListListingsByOwner returns every listing claimed by ownerID.
func (s *Service) ListListingsByOwner(ctx context.Context, ownerID string) ([]models.Listing, error) {
	var listings []models.Listing
	err := s.DB.WithContext(ctx).Where("owner_id = ?", ownerID).Order("title asc").Find(&listings).Error
	return listings, err
}

// ListPublishedListings returns published listings of one type ordered by title.
func (s *Service) ListPublishedListings(ctx context.Context, listingType string) ([]models.Listing, error) {
	var listings []models.Listing
	err := s.DB.WithContext(ctx).
		Where("listing_type = ? AND status = ?", listingType, models.ListingPublished).
		Order("title asc").
		Find(&listings).Error
	return listings, err
}

// CreateComplaint inserts a new complaint row.
func (s *Service) CreateComplaint(ctx context.Context, complaint *models.Complaint) error {
	return s.DB.WithContext(ctx).Create(complaint).Error
}

func (s *Service) GetComplaintByID(ctx context.Context, id string) (*models.Complaint, error) {
	var complaint models.Complaint
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&complaint).Error; err != nil {
		return nil, notFound(err)
	}
	return &complaint, nil
}

func (s *Service) UpdateComplaintStatus(ctx context.Context, id string, status models.ComplaintStatus) error {
	res := s.DB.WithContext(ctx).Model(&models.Complaint{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) SetComplaintEvidence(ctx context.Context, complaintID, attachmentID string) error {
	return s.DB.WithContext(ctx).Model(&models.Complaint{}).
		Where("id = ?", complaintID).
		Update("evidence_file_id", attachmentID).Error
}

// ListComplaintsByAuthor returns complaints filed by authorID, newest first.
func (s *Service) ListComplaintsByAuthor(ctx context.Context, authorID string, limit, offset int) ([]models.Complaint, error) {
	var complaints []models.Complaint
	err := s.DB.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "filed_at"}, Desc: true}).
		Limit(limit).Offset(offset).
		Find(&complaints).Error
	return complaints, err
}

// ListComplaintsByAttorneys returns complaints against any of attorneyIDs, newest first.
func (s *Service) ListComplaintsByAttorneys(ctx context.Context, attorneyIDs []string, limit, offset int) ([]models.Complaint, error) {
	if len(attorneyIDs) == 0 {
		return nil, nil
	}
	var complaints []models.Complaint
	err := s.DB.WithContext(ctx).
		Where("attorney_id IN ?", attorneyIDs).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "filed_at"}, Desc: true}).
		Limit(limit).Offset(offset).
		Find(&complaints).Error
	return complaints, err
}

// CountComplaintsByAuthor counts every complaint filed by authorID, grouped by target and status.
func (s *Service) CountComplaintsByAuthor(ctx context.Context, authorID string) ([]models.ComplaintCount, error) {
	return s.countComplaints(s.DB.WithContext(ctx).Where("author_id = ?", authorID))
}

// CountComplaintsByAttorneys counts every complaint against attorneyIDs, grouped by target and status.
func (s *Service) CountComplaintsByAttorneys(ctx context.Context, attorneyIDs []string) ([]models.ComplaintCount, error) {
	if len(attorneyIDs) == 0 {
		return nil, nil
	}
	return s.countComplaints(s.DB.WithContext(ctx).Where("attorney_id IN ?", attorneyIDs))
}

func (s *Service) CountAllComplaints(ctx context.Context) ([]models.ComplaintCount, error) {
	return s.countComplaints(s.DB.WithContext(ctx))
}

func (s *Service) countComplaints(q *gorm.DB) ([]models.ComplaintCount, error) {
	var rows []models.ComplaintCount
	err := q.Model(&models.Complaint{}).
		Select("attorney_id, status, COUNT(*) AS count").
		Group("attorney_id, status").
		Scan(&rows).Error
	return rows, err
}

func (s *Service) SaveAttachment(ctx context.Context, attachment *models.Attachment) error {
	return s.DB.WithContext(ctx).Create(attachment).Error
}
