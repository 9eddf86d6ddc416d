// Package storagemock provides a testify mock of storage.Storage shared by the
// service and handler tests.
package storagemock

import (
	"attorneyhub/backend/internal/models"
	"attorneyhub/backend/internal/storage"
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
)

var _ storage.Storage = (*MockStorage)(nil)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) SaveUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockStorage) UpdateUserCapabilities(ctx context.Context, userID string, caps []string) error {
	args := m.Called(ctx, userID, caps)
	return args.Error(0)
}

func (m *MockStorage) ListUserIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStorage) ActiveSubscriptions(ctx context.Context, userID string, now time.Time) ([]models.Subscription, error) {
	args := m.Called(ctx, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Subscription), args.Error(1)
}

func (m *MockStorage) GetSubscriptionByID(ctx context.Context, id string) (*models.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *MockStorage) SaveSubscription(ctx context.Context, sub *models.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *MockStorage) GetTransactionByID(ctx context.Context, id string) (*models.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockStorage) SaveTransaction(ctx context.Context, txn *models.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockStorage) ListTransactionsForUser(ctx context.Context, userID string) ([]models.Transaction, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Transaction), args.Error(1)
}

func (m *MockStorage) GetListingByID(ctx context.Context, id string) (*models.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *MockStorage) SaveListing(ctx context.Context, listing *models.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}

func (m *MockStorage) ClaimListing(ctx context.Context, listingID, ownerID string) (bool, error) {
	args := m.Called(ctx, listingID, ownerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) ListListingsByOwner(ctx context.Context, ownerID string) ([]models.Listing, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Listing), args.Error(1)
}

func (m *MockStorage) ListPublishedListings(ctx context.Context, listingType string) ([]models.Listing, error) {
	args := m.Called(ctx, listingType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Listing), args.Error(1)
}

func (m *MockStorage) CreateComplaint(ctx context.Context, complaint *models.Complaint) error {
	args := m.Called(ctx, complaint)
	return args.Error(0)
}

func (m *MockStorage) GetComplaintByID(ctx context.Context, id string) (*models.Complaint, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Complaint), args.Error(1)
}

func (m *MockStorage) UpdateComplaintStatus(ctx context.Context, id string, status models.ComplaintStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockStorage) SetComplaintEvidence(ctx context.Context, complaintID, attachmentID string) error {
	args := m.Called(ctx, complaintID, attachmentID)
	return args.Error(0)
}

func (m *MockStorage) ListComplaintsByAuthor(ctx context.Context, authorID string, limit, offset int) ([]models.Complaint, error) {
	args := m.Called(ctx, authorID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Complaint), args.Error(1)
}

func (m *MockStorage) ListComplaintsByAttorneys(ctx context.Context, attorneyIDs []string, limit, offset int) ([]models.Complaint, error) {
	args := m.Called(ctx, attorneyIDs, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Complaint), args.Error(1)
}

func (m *MockStorage) CountComplaintsByAuthor(ctx context.Context, authorID string) ([]models.ComplaintCount, error) {
	args := m.Called(ctx, authorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ComplaintCount), args.Error(1)
}

func (m *MockStorage) CountComplaintsByAttorneys(ctx context.Context, attorneyIDs []string) ([]models.ComplaintCount, error) {
	args := m.Called(ctx, attorneyIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ComplaintCount), args.Error(1)
}

func (m *MockStorage) CountAllComplaints(ctx context.Context) ([]models.ComplaintCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ComplaintCount), args.Error(1)
}

func (m *MockStorage) SaveAttachment(ctx context.Context, attachment *models.Attachment) error {
	args := m.Called(ctx, attachment)
	return args.Error(0)
}

func (m *MockStorage) Publish(ctx context.Context, channel string, payload []byte) error {
	args := m.Called(ctx, channel, payload)
	return args.Error(0)
}

func (m *MockStorage) Subscribe(ctx context.Context, channel string) *redis.PubSub {
	args := m.Called(ctx, channel)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*redis.PubSub)
}
