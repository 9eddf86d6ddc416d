package complaint_test

import (
	"attorneyhub/backend/internal/cache"
	"attorneyhub/backend/internal/complaint"
	"attorneyhub/backend/internal/config"
	"attorneyhub/backend/internal/events"
	"attorneyhub/backend/internal/evidence"
	"attorneyhub/backend/internal/membership"
	"attorneyhub/backend/internal/models"
	"attorneyhub/backend/internal/storage"
	"attorneyhub/backend/internal/storage/storagemock"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const hearingText = "This attorney missed three scheduled hearings without notifying me in advance."

var filedAt = time.Date(2026, 4, 2, 10, 30, 0, 0, time.UTC)

type fakeAuth map[string]bool

func (f fakeAuth) UserHas(_ context.Context, userID string, c membership.Capability) bool {
	return c == membership.CapFileComplaint && f[userID]
}

type MockAttacher struct {
	mock.Mock
}

func (m *MockAttacher) Attach(ctx context.Context, complaintID string, u *evidence.Upload) (*models.Attachment, error) {
	args := m.Called(ctx, complaintID, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attachment), args.Error(1)
}

type fixture struct {
	st       *storagemock.MockStorage
	attacher *MockAttacher
	svc      *complaint.Service
	filed    []events.ComplaintFiled
	changed  []events.ComplaintStatusChanged
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{st: new(storagemock.MockStorage), attacher: new(MockAttacher)}
	bus := events.NewBus(zap.NewNop())
	events.Subscribe(bus, func(_ context.Context, e events.ComplaintFiled) { f.filed = append(f.filed, e) })
	events.Subscribe(bus, func(_ context.Context, e events.ComplaintStatusChanged) { f.changed = append(f.changed, e) })

	auth := fakeAuth{"U": true}
	f.svc = complaint.NewService(f.st, auth, f.attacher, bus, nil, zap.NewNop())
	f.svc.Now = func() time.Time { return filedAt }

	f.st.On("GetListingByID", mock.Anything, "L123").Return(&models.Listing{
		ID: "L123", Title: "Lionel Hutz", ListingType: config.AttorneyListingType, Status: models.ListingPublished,
	}, nil).Maybe()
	f.st.On("GetListingByID", mock.Anything, "P9").Return(&models.Listing{
		ID: "P9", Title: "Pizza Place", ListingType: "restaurant",
	}, nil).Maybe()
	f.st.On("GetListingByID", mock.Anything, "missing").Return(nil, storage.ErrNotFound).Maybe()
	f.st.On("GetUserByID", mock.Anything, "U").Return(&models.User{ID: "U", DisplayName: "Marge"}, nil).Maybe()
	return f
}

func TestSubmit_EndToEnd(t *testing.T) {
	f := newFixture(t)
	f.st.On("CreateComplaint", mock.Anything, mock.AnythingOfType("*models.Complaint")).Return(nil).Once()

	require.GreaterOrEqual(t, len(hearingText), config.MinComplaintLength)
	c, err := f.svc.Submit(context.Background(), complaint.SubmitRequest{UserID: "U", AttorneyID: "L123", Text: hearingText})
	require.NoError(t, err)

	assert.NotEmpty(t, c.ID)
	assert.Equal(t, models.StatusPending, c.Status)
	assert.Equal(t, "U", c.AuthorID)
	assert.Equal(t, "L123", c.AttorneyID)
	assert.Equal(t, "Complaint against Lionel Hutz", c.Title)
	assert.Equal(t, filedAt, c.FiledAt)
	assert.Nil(t, c.EvidenceFileID)

	f.st.AssertNumberOfCalls(t, "CreateComplaint", 1)
	f.attacher.AssertNotCalled(t, "Attach", mock.Anything, mock.Anything, mock.Anything)
	require.Len(t, f.filed, 1)
	assert.Equal(t, "Marge", f.filed[0].AuthorName)
	assert.Equal(t, "Lionel Hutz", f.filed[0].AttorneyTitle)
}

func TestSubmit_LengthBoundary(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{"49 characters", strings.Repeat("a", 49), true},
		{"50 characters", strings.Repeat("a", 50), false},
		{"49 characters padded with whitespace", "   " + strings.Repeat("a", 49) + "  \n", true},
		{"50 multibyte characters", strings.Repeat("é", 50), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.st.On("CreateComplaint", mock.Anything, mock.Anything).Return(nil).Maybe()

			_, err := f.svc.Submit(context.Background(), complaint.SubmitRequest{UserID: "U", AttorneyID: "L123", Text: tt.text})
			if tt.wantErr {
				var verr *complaint.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.True(t, verr.Has(complaint.ProblemTextTooShort))
				f.st.AssertNotCalled(t, "CreateComplaint", mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				f.st.AssertNumberOfCalls(t, "CreateComplaint", 1)
			}
		})
	}
}

func TestSubmit_InvalidTargets(t *testing.T) {
	for _, id := range []string{"missing", "P9"} {
		t.Run(id, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.svc.Submit(context.Background(), complaint.SubmitRequest{UserID: "U", AttorneyID: id, Text: hearingText})

			var verr *complaint.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.True(t, verr.Has(complaint.ProblemInvalidAttorney))
			assert.Len(t, verr.Problems, 1)
			f.st.AssertNotCalled(t, "CreateComplaint", mock.Anything, mock.Anything)
		})
	}
}

func TestSubmit_AggregatesProblems(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Submit(context.Background(), complaint.SubmitRequest{UserID: "U", AttorneyID: "missing", Text: "too short"})

	var verr *complaint.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has(complaint.ProblemTextTooShort))
	assert.True(t, verr.Has(complaint.ProblemInvalidAttorney))

	msgs := verr.Messages(func(code string, args ...any) string { return code })
	assert.Equal(t, []string{complaint.ProblemTextTooShort, complaint.ProblemInvalidAttorney}, msgs)

	_, err = f.svc.Submit(context.Background(), complaint.SubmitRequest{UserID: "U", Text: hearingText})
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has(complaint.ProblemAttorneyRequired))
}

func TestSubmit_AuthorizationComesFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, complaint.SubmitRequest{AttorneyID: "missing", Text: "x"})
	assert.ErrorIs(t, err, complaint.ErrNotAuthenticated)

	_, err = f.svc.Submit(ctx, complaint.SubmitRequest{UserID: "free-user", AttorneyID: "missing", Text: "x"})
	assert.ErrorIs(t, err, complaint.ErrNotPermitted)

	f.st.AssertNotCalled(t, "GetListingByID", mock.Anything, mock.Anything)
}

func TestSubmit_EvidenceAttached(t *testing.T) {
	f := newFixture(t)
	f.st.On("CreateComplaint", mock.Anything, mock.Anything).Return(nil)
	upload := &evidence.Upload{FileName: "letter.pdf", Size: 4, Reader: bytes.NewReader([]byte("%PDF"))}
	f.attacher.On("Attach", mock.Anything, mock.AnythingOfType("string"), upload).Return(&models.Attachment{ID: "A1"}, nil)

	c, err := f.svc.Submit(context.Background(), complaint.SubmitRequest{UserID: "U", AttorneyID: "L123", Text: hearingText, Evidence: upload})
	require.NoError(t, err)
	require.NotNil(t, c.EvidenceFileID)
	assert.Equal(t, "A1", *c.EvidenceFileID)
	assert.True(t, f.filed[0].HasEvidence)
}

func TestSubmit_RejectedEvidenceStillFilesComplaint(t *testing.T) {
	f := newFixture(t)
	f.st.On("CreateComplaint", mock.Anything, mock.Anything).Return(nil).Once()
	upload := &evidence.Upload{FileName: "setup.exe", Size: 6 << 20, Reader: bytes.NewReader(nil)}
	f.attacher.On("Attach", mock.Anything, mock.Anything, upload).Return(nil, evidence.ErrTooLarge)

	c, err := f.svc.Submit(context.Background(), complaint.SubmitRequest{UserID: "U", AttorneyID: "L123", Text: hearingText, Evidence: upload})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, c.Status)
	assert.Nil(t, c.EvidenceFileID)
	assert.Len(t, f.filed, 1)
	assert.False(t, f.filed[0].HasEvidence)
}

func TestSubmit_StorageFailure(t *testing.T) {
	f := newFixture(t)
	f.st.On("CreateComplaint", mock.Anything, mock.Anything).Return(errors.New("db down"))

	_, err := f.svc.Submit(context.Background(), complaint.SubmitRequest{UserID: "U", AttorneyID: "L123", Text: hearingText})
	assert.Error(t, err)
	assert.Empty(t, f.filed)
}

func TestSetStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.st.On("GetComplaintByID", mock.Anything, "c1").Return(&models.Complaint{
		ID: "c1", AuthorID: "U", AttorneyID: "L123", Status: models.StatusPending,
	}, nil).Once()
	f.st.On("UpdateComplaintStatus", mock.Anything, "c1", models.StatusUnderReview).Return(nil)

	c, err := f.svc.SetStatus(ctx, "c1", models.StatusUnderReview)
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnderReview, c.Status)
	require.Len(t, f.changed, 1)
	assert.Equal(t, models.StatusPending, f.changed[0].OldStatus)

	f.st.On("GetComplaintByID", mock.Anything, "c2").Return(&models.Complaint{ID: "c2", Status: models.StatusResolved}, nil)
	_, err = f.svc.SetStatus(ctx, "c2", models.StatusPending)
	assert.ErrorIs(t, err, complaint.ErrTerminalStatus)

	c, err = f.svc.SetStatus(ctx, "c2", models.StatusResolved)
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, c.Status)
	assert.Len(t, f.changed, 1, "same-status write publishes nothing")
	f.st.AssertNotCalled(t, "UpdateComplaintStatus", mock.Anything, "c2", mock.Anything)
}

func TestListAgainstOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.st.On("ListListingsByOwner", mock.Anything, "owner").Return([]models.Listing{{ID: "L1"}, {ID: "L2"}}, nil)
	f.st.On("ListComplaintsByAttorneys", mock.Anything, []string{"L1", "L2"}, config.DefaultPageSize, 0).
		Return([]models.Complaint{{ID: "c2"}, {ID: "c1"}}, nil)
	f.st.On("ListListingsByOwner", mock.Anything, "nobody").Return([]models.Listing{}, nil)

	got, err := f.svc.ListAgainstOwner(ctx, "owner", complaint.Page{})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = f.svc.ListAgainstOwner(ctx, "nobody", complaint.Page{})
	require.NoError(t, err)
	assert.Empty(t, got)
	f.st.AssertNumberOfCalls(t, "ListComplaintsByAttorneys", 1)
}

func TestListByAuthor_CachesFirstPageAndClampsLimit(t *testing.T) {
	f := newFixture(t)
	backend := cache.NewMemoryBackend()
	f.svc.Cache = cache.New(backend, zap.NewNop())
	ctx := context.Background()

	f.st.On("ListComplaintsByAuthor", mock.Anything, "U", config.MaxPageSize, 0).
		Return([]models.Complaint{{ID: "c1"}}, nil).Once()
	f.st.On("ListComplaintsByAuthor", mock.Anything, "U", config.MaxPageSize, 100).
		Return([]models.Complaint{}, nil).Once()

	for range 2 {
		got, err := f.svc.ListByAuthor(ctx, "U", complaint.Page{Limit: 1000})
		require.NoError(t, err)
		assert.Len(t, got, 1)
	}
	_, err := f.svc.ListByAuthor(ctx, "U", complaint.Page{Limit: 1000, Offset: 100})
	require.NoError(t, err)
	f.st.AssertExpectations(t)

	bus := events.NewBus(zap.NewNop())
	complaint.RegisterCacheInvalidation(bus, f.svc.Cache)
	bus.Publish(ctx, events.ComplaintFiled{AuthorID: "U", AttorneyID: "L123"})
	_, err = backend.Get(ctx, "attorney_hub_user_complaints_U")
	assert.ErrorIs(t, err, cache.ErrMiss)
}

func TestStats_CountEveryComplaintNotOnePage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.st.On("ListListingsByOwner", mock.Anything, "owner").Return([]models.Listing{{ID: "L1"}, {ID: "L2"}}, nil)
	f.st.On("CountComplaintsByAttorneys", mock.Anything, []string{"L1", "L2"}).Return([]models.ComplaintCount{
		{AttorneyID: "L1", Status: models.StatusPending, Count: 25},
		{AttorneyID: "L2", Status: models.StatusResolved, Count: 3},
	}, nil)
	f.st.On("CountComplaintsByAuthor", mock.Anything, "U").Return([]models.ComplaintCount{
		{AttorneyID: "L1", Status: models.StatusPending, Count: 21},
	}, nil)
	f.st.On("CountAllComplaints", mock.Anything).Return(nil, errors.New("db down"))

	r, err := f.svc.StatsAgainstOwner(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, 28, r.Counts.Total)
	assert.Equal(t, 25, r.Counts.Pending)
	assert.Equal(t, "L1", r.Listings[0].ListingID)

	r, err = f.svc.StatsByAuthor(ctx, "U")
	require.NoError(t, err)
	assert.Equal(t, 21, r.Counts.Total)

	_, err = f.svc.Stats(ctx)
	assert.Error(t, err)
}
