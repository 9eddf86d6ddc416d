package membership

import (
	"attorneyhub/backend/internal/cache"
	"attorneyhub/backend/internal/config"
	"attorneyhub/backend/internal/models"
	"context"
	"slices"
	"time"

	"go.uber.org/zap"
)

// UserStore is the part of storage the resolver reads and writes users through.
type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateUserCapabilities(ctx context.Context, userID string, caps []string) error
	ListUserIDs(ctx context.Context) ([]string, error)
}

// SubscriptionProvider reports a member's current subscriptions.
type SubscriptionProvider interface {
	ActiveSubscriptions(ctx context.Context, userID string, now time.Time) ([]models.Subscription, error)
}

// Resolver answers "which tier is this user" and "may this user do X".
type Resolver struct {
	Users         UserStore
	Subscriptions SubscriptionProvider
	Cache         *cache.Cache
	Log           *zap.Logger
	Now           func() time.Time
}

// NewResolver builds a Resolver. A nil provider means the membership
// integration is not installed and every member is treated as free.
func NewResolver(users UserStore, subs SubscriptionProvider, c *cache.Cache, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{
		Users:         users,
		Subscriptions: subs,
		Cache:         c,
		Log:           log,
		Now:           time.Now,
	}
}

// IntegrationAvailable reports whether a subscription provider is wired.
func (r *Resolver) IntegrationAvailable() bool {
	return r.Subscriptions != nil
}

// ResolveTier returns the tier of the user's first active subscription.
// Every failure resolves to TierFree.
func (r *Resolver) ResolveTier(ctx context.Context, userID string) Tier {
	if userID == "" || r.Subscriptions == nil {
		return TierFree
	}

	tier, err := cache.Remember(ctx, r.Cache, cache.UserMembershipKey(userID), config.DefaultCacheTTL, func(ctx context.Context) (Tier, error) {
		return r.lookupTier(ctx, userID)
	})
	if err != nil {
		r.Log.Warn("membership lookup failed, treating as free",
			zap.String("user_id", userID), zap.Error(err))
		return TierFree
	}
	return tier
}

func (r *Resolver) lookupTier(ctx context.Context, userID string) (Tier, error) {
	subs, err := r.Subscriptions.ActiveSubscriptions(ctx, userID, r.Now())
	if err != nil {
		return TierFree, err
	}
	if len(subs) == 0 {
		// Absence is a normal state, cache it like any other answer.
		return TierFree, nil
	}

	tier, ok := TierForProduct(subs[0].ProductSlug)
	if !ok {
		r.Log.Warn("unknown membership product",
			zap.String("user_id", userID), zap.String("product", subs[0].ProductSlug))
		return TierFree, nil
	}
	return tier, nil
}

// UserHas reports whether the user holds capability c. Administrators hold
// every capability; view_admin_data is held by nobody else.
func (r *Resolver) UserHas(ctx context.Context, userID string, c Capability) bool {
	if userID == "" {
		return false
	}
	user, err := r.Users.GetUserByID(ctx, userID)
	if err != nil {
		return false
	}
	if user.IsAdmin {
		return true
	}
	if c == CapViewAdminData {
		return false
	}
	return CapabilitiesFor(r.ResolveTier(ctx, userID)).Has(c)
}

// HasFeature checks the capability behind a named feature. Unknown features
// are denied.
func (r *Resolver) HasFeature(ctx context.Context, userID, feature string) bool {
	c, ok := FeatureCapability(feature)
	return ok && r.UserHas(ctx, userID, c)
}

// Capabilities returns the effective capability set of a user.
func (r *Resolver) Capabilities(ctx context.Context, userID string) CapabilitySet {
	if userID == "" {
		return CapabilitySet{}
	}
	user, err := r.Users.GetUserByID(ctx, userID)
	if err != nil {
		return CapabilitySet{}
	}
	if user.IsAdmin {
		return CapabilitySet(slices.Clone(AllCapabilities))
	}
	return CapabilitiesFor(r.ResolveTier(ctx, userID))
}

// IsAdmin reports whether the user carries the administrator override.
func (r *Resolver) IsAdmin(ctx context.Context, userID string) bool {
	if userID == "" {
		return false
	}
	user, err := r.Users.GetUserByID(ctx, userID)
	return err == nil && user.IsAdmin
}

// SyncCapabilities rewrites the membership capabilities persisted on the
// user row from the current tier. Capabilities not granted by any tier are
// left in place. Running it twice writes the same set.
func (r *Resolver) SyncCapabilities(ctx context.Context, userID string) error {
	user, err := r.Users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	// Resolve from the provider, not from a tier cached before the change.
	if err := r.Cache.Forget(ctx, cache.UserMembershipKey(userID)); err != nil {
		r.Log.Warn("cache forget failed", zap.String("user_id", userID), zap.Error(err))
	}
	tier := r.ResolveTier(ctx, userID)

	caps := make([]string, 0, len(user.Capabilities)+4)
	for _, c := range user.Capabilities {
		if !isMembershipCapability(c) && !slices.Contains(caps, c) {
			caps = append(caps, c)
		}
	}
	caps = append(caps, CapabilitiesFor(tier).Strings()...)
	slices.Sort(caps)

	if err := r.Users.UpdateUserCapabilities(ctx, userID, caps); err != nil {
		return err
	}

	r.Cache.ForgetUser(ctx, userID)
	r.Log.Debug("capabilities synced",
		zap.String("user_id", userID), zap.String("tier", string(tier)), zap.Strings("capabilities", caps))
	return nil
}

// SyncAllUsers syncs every user once per marker lifetime. It returns the
// number of users synced, zero when the marker is still present.
func (r *Resolver) SyncAllUsers(ctx context.Context) (int, error) {
	var done bool
	if r.Cache.Get(ctx, cache.SyncMarkerKey, &done) && done {
		return 0, nil
	}

	ids, err := r.Users.ListUserIDs(ctx)
	if err != nil {
		return 0, err
	}

	synced := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return synced, err
		}
		if err := r.SyncCapabilities(ctx, id); err != nil {
			r.Log.Warn("capability sync failed", zap.String("user_id", id), zap.Error(err))
			continue
		}
		synced++
	}

	if err := r.Cache.Set(ctx, cache.SyncMarkerKey, true, config.UserSyncMarkerTTL); err != nil {
		r.Log.Warn("could not store sync marker", zap.Error(err))
	}
	r.Log.Info("synced existing users", zap.Int("synced", synced), zap.Int("total", len(ids)))
	return synced, nil
}
