// Package storage persists users, subscriptions, listings and complaints in
// PostgreSQL via GORM and exposes the Redis client used for caching and the
// admin feed.
package storage

import (
	"attorneyhub/backend/internal/models"
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a lookup by id matches no row.
var ErrNotFound = errors.New("record not found")

type Storage interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	SaveUser(ctx context.Context, user *models.User) error
	UpdateUserCapabilities(ctx context.Context, userID string, caps []string) error
	ListUserIDs(ctx context.Context) ([]string, error)

	ActiveSubscriptions(ctx context.Context, userID string, now time.Time) ([]models.Subscription, error)
	GetSubscriptionByID(ctx context.Context, id string) (*models.Subscription, error)
	SaveSubscription(ctx context.Context, sub *models.Subscription) error
	GetTransactionByID(ctx context.Context, id string) (*models.Transaction, error)
	SaveTransaction(ctx context.Context, txn *models.Transaction) error
	ListTransactionsForUser(ctx context.Context, userID string) ([]models.Transaction, error)

	GetListingByID(ctx context.Context, id string) (*models.Listing, error)
	SaveListing(ctx context.Context, listing *models.Listing) error
	ClaimListing(ctx context.Context, listingID, ownerID string) (bool, error)
	ListListingsByOwner(ctx context.Context, ownerID string) ([]models.Listing, error)
	ListPublishedListings(ctx context.Context, listingType string) ([]models.Listing, error)

	CreateComplaint(ctx context.Context, complaint *models.Complaint) error
	GetComplaintByID(ctx context.Context, id string) (*models.Complaint, error)
	UpdateComplaintStatus(ctx context.Context, id string, status models.ComplaintStatus) error
	SetComplaintEvidence(ctx context.Context, complaintID, attachmentID string) error
	ListComplaintsByAuthor(ctx context.Context, authorID string, limit, offset int) ([]models.Complaint, error)
	ListComplaintsByAttorneys(ctx context.Context, attorneyIDs []string, limit, offset int) ([]models.Complaint, error)
	CountComplaintsByAuthor(ctx context.Context, authorID string) ([]models.ComplaintCount, error)
	CountComplaintsByAttorneys(ctx context.Context, attorneyIDs []string) ([]models.ComplaintCount, error)
	CountAllComplaints(ctx context.Context) ([]models.ComplaintCount, error)
	SaveAttachment(ctx context.Context, attachment *models.Attachment) error

	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) *redis.PubSub
}

type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
	}
}

// Migrate creates or updates every table the hub owns.
func (s *Service) Migrate() error {
	return s.DB.AutoMigrate(
		&models.User{},
		&models.Subscription{},
		&models.Transaction{},
		&models.Listing{},
		&models.Complaint{},
		&models.Attachment{},
	)
}

// Publish sends payload on a Redis Pub/Sub channel.
func (s *Service) Publish(ctx context.Context, channel string, payload []byte) error {
	if s.Redis == nil {
		return nil
	}
	return s.Redis.Publish(ctx, channel, payload).Err()
}

// Subscribe opens a Redis Pub/Sub subscription on channel.
func (s *Service) Subscribe(ctx context.Context, channel string) *redis.PubSub {
	return s.Redis.Subscribe(ctx, channel)
}

// notFound maps gorm.ErrRecordNotFound to ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
