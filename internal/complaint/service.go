// Package complaint files complaints against attorney listings and moves them
// through their review lifecycle.
package complaint

import (
	"attorneyhub/backend/internal/analysis"
	"attorneyhub/backend/internal/cache"
	"attorneyhub/backend/internal/config"
	"attorneyhub/backend/internal/events"
	"attorneyhub/backend/internal/evidence"
	"attorneyhub/backend/internal/membership"
	"attorneyhub/backend/internal/models"
	"attorneyhub/backend/internal/storage"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNotAuthenticated = errors.New("login required")
	ErrNotPermitted     = errors.New("membership does not allow filing complaints")
)

// Authorizer answers capability checks.
type Authorizer interface {
	UserHas(ctx context.Context, userID string, c membership.Capability) bool
}

// EvidenceAttacher stores an upload and links it to a complaint.
type EvidenceAttacher interface {
	Attach(ctx context.Context, complaintID string, u *evidence.Upload) (*models.Attachment, error)
}

// SubmitRequest is a complaint as received from the form.
type SubmitRequest struct {
	UserID     string
	AttorneyID string
	Text       string
	Evidence   *evidence.Upload
}

// Page selects a window of a newest-first list.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) normalize() Page {
	if p.Limit <= 0 {
		p.Limit = config.DefaultPageSize
	}
	if p.Limit > config.MaxPageSize {
		p.Limit = config.MaxPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// Service handles the business logic for complaints.
type Service struct {
	Storage  storage.Storage
	Auth     Authorizer
	Evidence EvidenceAttacher
	Bus      *events.Bus
	Cache    *cache.Cache
	Log      *zap.Logger
	Now      func() time.Time
}

// NewService creates a new complaint service. evidence may be nil, in which
// case uploads are ignored.
func NewService(s storage.Storage, auth Authorizer, ev EvidenceAttacher, bus *events.Bus, c *cache.Cache, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		Storage:  s,
		Auth:     auth,
		Evidence: ev,
		Bus:      bus,
		Cache:    c,
		Log:      log,
		Now:      time.Now,
	}
}

// Submit files a complaint. Authorization is checked before anything else;
// validation problems are collected into a single *ValidationError. A bad
// evidence file never fails the submission.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*models.Complaint, error) {
	if req.UserID == "" {
		return nil, ErrNotAuthenticated
	}
	if !s.Auth.UserHas(ctx, req.UserID, membership.CapFileComplaint) {
		return nil, ErrNotPermitted
	}

	listing, err := s.validate(ctx, req)
	if err != nil {
		return nil, err
	}

	now := s.Now().UTC()
	c := &models.Complaint{
		ID:         uuid.New().String(),
		AuthorID:   req.UserID,
		AttorneyID: listing.ID,
		Title:      "Complaint against " + listing.Title,
		Body:       strings.TrimSpace(req.Text),
		Status:     models.StatusPending,
		FiledAt:    now,
	}
	if err := s.Storage.CreateComplaint(ctx, c); err != nil {
		return nil, fmt.Errorf("create complaint: %w", err)
	}

	if req.Evidence != nil && s.Evidence != nil {
		att, err := s.Evidence.Attach(ctx, c.ID, req.Evidence)
		if err != nil {
			s.Log.Warn("evidence dropped",
				zap.String("complaint_id", c.ID), zap.String("file", req.Evidence.FileName), zap.Error(err))
		} else {
			c.EvidenceFileID = &att.ID
		}
	}

	s.Log.Info("complaint filed",
		zap.String("complaint_id", c.ID),
		zap.String("author_id", c.AuthorID),
		zap.String("attorney_id", c.AttorneyID),
		zap.Bool("evidence", c.EvidenceFileID != nil))

	s.Bus.Publish(ctx, events.ComplaintFiled{
		ComplaintID:   c.ID,
		AuthorID:      c.AuthorID,
		AuthorName:    s.authorName(ctx, c.AuthorID),
		AttorneyID:    c.AttorneyID,
		AttorneyTitle: listing.Title,
		FiledAt:       c.FiledAt,
		HasEvidence:   c.EvidenceFileID != nil,
	})
	return c, nil
}

func (s *Service) validate(ctx context.Context, req SubmitRequest) (*models.Listing, error) {
	verr := &ValidationError{}

	attorneyID := strings.TrimSpace(req.AttorneyID)
	if attorneyID == "" {
		verr.add("attorney_id", ProblemAttorneyRequired)
	}
	if utf8.RuneCountInString(strings.TrimSpace(req.Text)) < config.MinComplaintLength {
		verr.add("complaint_text", ProblemTextTooShort, config.MinComplaintLength)
	}

	var listing *models.Listing
	if attorneyID != "" {
		l, err := s.Storage.GetListingByID(ctx, attorneyID)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			verr.add("attorney_id", ProblemInvalidAttorney)
		case err != nil:
			return nil, fmt.Errorf("load listing: %w", err)
		case l.ListingType != config.AttorneyListingType:
			verr.add("attorney_id", ProblemInvalidAttorney)
		default:
			listing = l
		}
	}

	if len(verr.Problems) > 0 {
		return nil, verr
	}
	return listing, nil
}

func (s *Service) authorName(ctx context.Context, userID string) string {
	u, err := s.Storage.GetUserByID(ctx, userID)
	if err != nil || u.DisplayName == "" {
		return userID
	}
	return u.DisplayName
}

// Get returns a complaint by id.
func (s *Service) Get(ctx context.Context, id string) (*models.Complaint, error) {
	return s.Storage.GetComplaintByID(ctx, id)
}

// SetStatus moves a complaint to status. Callers must already have checked
// that the actor is an administrator.
func (s *Service) SetStatus(ctx context.Context, id string, status models.ComplaintStatus) (*models.Complaint, error) {
	c, err := s.Storage.GetComplaintByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CanTransition(c.Status, status); err != nil {
		return nil, err
	}
	if c.Status == status {
		return c, nil
	}

	old := c.Status
	if err := s.Storage.UpdateComplaintStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("update complaint status: %w", err)
	}
	c.Status = status

	s.Log.Info("complaint status changed",
		zap.String("complaint_id", id), zap.String("from", string(old)), zap.String("to", string(status)))
	s.Bus.Publish(ctx, events.ComplaintStatusChanged{
		ComplaintID: c.ID,
		AuthorID:    c.AuthorID,
		AttorneyID:  c.AttorneyID,
		OldStatus:   old,
		NewStatus:   status,
	})
	return c, nil
}

type cachedPage struct {
	Limit int                `json:"limit"`
	Items []models.Complaint `json:"items"`
}

// ListByAuthor returns the user's complaints, newest first. The first page
// is cached per user.
func (s *Service) ListByAuthor(ctx context.Context, userID string, page Page) ([]models.Complaint, error) {
	page = page.normalize()
	load := func(ctx context.Context) ([]models.Complaint, error) {
		return s.Storage.ListComplaintsByAuthor(ctx, userID, page.Limit, page.Offset)
	}
	if page.Offset != 0 {
		return load(ctx)
	}

	key := cache.UserComplaintsKey(userID)
	var cached cachedPage
	if s.Cache.Get(ctx, key, &cached) && cached.Limit == page.Limit {
		return cached.Items, nil
	}
	items, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.Cache.Set(ctx, key, cachedPage{Limit: page.Limit, Items: items}, config.DefaultCacheTTL); err != nil {
		s.Log.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	return items, nil
}

// ListAgainstOwner returns complaints filed against any listing the user
// owns, newest first.
func (s *Service) ListAgainstOwner(ctx context.Context, ownerID string, page Page) ([]models.Complaint, error) {
	page = page.normalize()
	listings, err := s.Storage.ListListingsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(listings))
	for _, l := range listings {
		ids = append(ids, l.ID)
	}
	if len(ids) == 0 {
		return []models.Complaint{}, nil
	}
	return s.Storage.ListComplaintsByAttorneys(ctx, ids, page.Limit, page.Offset)
}

// StatsByAuthor counts every complaint the user filed, across all pages.
func (s *Service) StatsByAuthor(ctx context.Context, userID string) (analysis.Report, error) {
	rows, err := s.Storage.CountComplaintsByAuthor(ctx, userID)
	if err != nil {
		return analysis.Report{}, fmt.Errorf("count complaints by author: %w", err)
	}
	return analysis.NewReport(rows), nil
}

// StatsAgainstOwner counts every complaint against the listings the user owns.
func (s *Service) StatsAgainstOwner(ctx context.Context, ownerID string) (analysis.Report, error) {
	listings, err := s.Storage.ListListingsByOwner(ctx, ownerID)
	if err != nil {
		return analysis.Report{}, err
	}
	ids := make([]string, 0, len(listings))
	for _, l := range listings {
		ids = append(ids, l.ID)
	}
	rows, err := s.Storage.CountComplaintsByAttorneys(ctx, ids)
	if err != nil {
		return analysis.Report{}, fmt.Errorf("count complaints by attorneys: %w", err)
	}
	return analysis.NewReport(rows), nil
}

// Stats counts every complaint in the hub.
func (s *Service) Stats(ctx context.Context) (analysis.Report, error) {
	rows, err := s.Storage.CountAllComplaints(ctx)
	if err != nil {
		return analysis.Report{}, fmt.Errorf("count complaints: %w", err)
	}
	return analysis.NewReport(rows), nil
}

// RegisterCacheInvalidation drops cached complaint lists when a complaint
// is filed or changes status.
func RegisterCacheInvalidation(bus *events.Bus, c *cache.Cache) {
	events.Subscribe(bus, func(ctx context.Context, e events.ComplaintFiled) {
		forgetComplaintKeys(ctx, c, e.AuthorID, e.AttorneyID)
	})
	events.Subscribe(bus, func(ctx context.Context, e events.ComplaintStatusChanged) {
		forgetComplaintKeys(ctx, c, e.AuthorID, e.AttorneyID)
	})
}

func forgetComplaintKeys(ctx context.Context, c *cache.Cache, authorID, attorneyID string) {
	c.ForgetUser(ctx, authorID)
	_ = c.Forget(ctx, cache.ListingComplaintsKey(attorneyID))
}
