package models_test

import (
	"attorneyhub/backend/internal/models"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

// TestUserBeforeCreate_GeneratesUUID verifies that the BeforeCreate hook generates a valid UUID.
func TestUserBeforeCreate_GeneratesUUID(t *testing.T) {
	user := &models.User{
		Email:        "jane@example.com",
		DisplayName:  "Jane",
		Capabilities: pq.StringArray{"file_complaint"},
	}
	assert.Empty(t, user.ID, "User ID should be empty before BeforeCreate")

	err := user.BeforeCreate(nil) // nil *gorm.DB is acceptable for this hook

	assert.NoError(t, err)
	parsed, parseErr := uuid.Parse(user.ID)
	assert.NoError(t, parseErr, "User ID must be a valid UUID string")
	assert.NotEqual(t, uuid.Nil, parsed)
}

// TestUserBeforeCreate_PreservesExistingID verifies that the hook doesn't overwrite an existing ID.
func TestUserBeforeCreate_PreservesExistingID(t *testing.T) {
	existingID := uuid.New().String()
	user := &models.User{ID: existingID, Email: "x@example.com"}

	assert.NoError(t, user.BeforeCreate(nil))
	assert.Equal(t, existingID, user.ID)
}

// TestBeforeCreate_AllRecords checks that every record type gets a distinct id.
func TestBeforeCreate_AllRecords(t *testing.T) {
	complaint := &models.Complaint{}
	listing := &models.Listing{}
	attachment := &models.Attachment{}
	sub := &models.Subscription{}
	txn := &models.Transaction{}

	assert.NoError(t, complaint.BeforeCreate(nil))
	assert.NoError(t, listing.BeforeCreate(nil))
	assert.NoError(t, attachment.BeforeCreate(nil))
	assert.NoError(t, sub.BeforeCreate(nil))
	assert.NoError(t, txn.BeforeCreate(nil))

	ids := map[string]bool{}
	for _, id := range []string{complaint.ID, listing.ID, attachment.ID, sub.ID, txn.ID} {
		assert.NotEmpty(t, id)
		assert.NotContains(t, ids, id)
		ids[id] = true
	}
}

// TestUserStructTags verifies that struct tags are correctly defined for GORM and JSON.
func TestUserStructTags(t *testing.T) {
	userType := reflect.TypeOf(models.User{})

	idField, found := userType.FieldByName("ID")
	assert.True(t, found)
	assert.Contains(t, idField.Tag.Get("gorm"), "primaryKey")
	assert.Contains(t, idField.Tag.Get("json"), "id")

	capsField, found := userType.FieldByName("Capabilities")
	assert.True(t, found)
	assert.Contains(t, capsField.Tag.Get("gorm"), "type:text[]", "Capabilities should use PostgreSQL array type")
}

func TestSubscriptionIsActive(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name string
		sub  models.Subscription
		want bool
	}{
		{"active without expiry", models.Subscription{Status: models.SubscriptionActive}, true},
		{"active not yet expired", models.Subscription{Status: models.SubscriptionActive, ExpiresAt: &future}, true},
		{"active but expired", models.Subscription{Status: models.SubscriptionActive, ExpiresAt: &past}, false},
		{"cancelled", models.Subscription{Status: models.SubscriptionCancelled}, false},
		{"suspended", models.Subscription{Status: models.SubscriptionSuspended, ExpiresAt: &future}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sub.IsActive(now))
		})
	}
}

func TestListingIsOwnedBy(t *testing.T) {
	owner := "user-1"
	listing := models.Listing{OwnerID: &owner}

	assert.True(t, listing.IsOwnedBy("user-1"))
	assert.False(t, listing.IsOwnedBy("user-2"))
	assert.False(t, (&models.Listing{}).IsOwnedBy("user-1"))
}

// BenchmarkUserBeforeCreate measures UUID generation performance.
func BenchmarkUserBeforeCreate(b *testing.B) {
	user := &models.User{Email: "benchmark@example.com"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		user.ID = ""
		_ = user.BeforeCreate(nil)
	}
}
