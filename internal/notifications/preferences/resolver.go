// internal/notifications/preferences/resolver.go
package preferences

import (
	"context"
	"sync"
	"time"

	stderrors "errors"

	"github.com/andeslee444/Project-H-sub007/internal/common/errors"
	"github.com/andeslee444/Project-H-sub007/internal/common/logger"
	"github.com/andeslee444/Project-H-sub007/internal/models"
	"github.com/andeslee444/Project-H-sub007/internal/store"
)

// Resolver loads per-user notification preferences through an in-process
// cache. A store miss or failure falls back to system defaults so callers
// never block on preference availability. Updates write through the store and
// invalidate the cache entry synchronously.
type Resolver struct {
	store  store.Store
	logger logger.Logger

	mu    sync.RWMutex
	cache map[string]*models.NotificationPreferences
}

func NewResolver(st store.Store, log logger.Logger) *Resolver {
	return &Resolver{
		store:  st,
		logger: log.WithFields(map[string]interface{}{"component": "preference-resolver"}),
		cache:  make(map[string]*models.NotificationPreferences),
	}
}

// Resolve returns the user's preferences, from cache when possible. It never
// returns an error: a miss creates defaults lazily and a store failure is
// logged and answered with defaults.
func (r *Resolver) Resolve(ctx context.Context, userID string) *models.NotificationPreferences {
	r.mu.RLock()
	cached, ok := r.cache[userID]
	r.mu.RUnlock()
	if ok {
		return clone(cached)
	}

	prefs, err := r.store.GetPreferences(ctx, userID)
	if err != nil {
		if stderrors.Is(err, store.ErrNotFound) {
			prefs = models.DefaultPreferences(userID)
		} else {
			r.logger.WithError(errors.NewPreferencesLoadFailedError(userID, err)).
				Warn("falling back to default preferences", map[string]interface{}{
					"userId": userID,
				})
			// Do not cache the fallback: the next resolve retries the store.
			return models.DefaultPreferences(userID)
		}
	}

	r.mu.Lock()
	r.cache[userID] = prefs
	r.mu.Unlock()

	return clone(prefs)
}

// Patch is a partial preferences update. Nil fields are left unchanged.
type Patch struct {
	Channels   map[models.Channel]*bool
	Types      map[string]*models.TypePreference
	QuietHours *models.QuietHours
}

// Update applies a patch, persists it, and invalidates the cache entry under
// the same lock so no reader observes a half-applied update.
func (r *Resolver) Update(ctx context.Context, userID string, patch Patch) (*models.NotificationPreferences, error) {
	prefs := r.Resolve(ctx, userID)

	for channel, enabled := range patch.Channels {
		if enabled != nil {
			prefs.Channels[channel] = *enabled
		}
	}
	for notificationType, override := range patch.Types {
		if override != nil {
			if prefs.Types == nil {
				prefs.Types = make(map[string]models.TypePreference)
			}
			prefs.Types[notificationType] = *override
		}
	}
	if patch.QuietHours != nil {
		prefs.QuietHours = *patch.QuietHours
	}
	prefs.UpdatedAt = time.Now().UTC()

	if err := r.store.PutPreferences(ctx, prefs); err != nil {
		return nil, errors.NewPreferencesSaveFailedError(userID, err)
	}

	r.mu.Lock()
	r.cache[userID] = clone(prefs)
	r.mu.Unlock()

	return prefs, nil
}

// Invalidate drops a user's cache entry, forcing the next resolve to hit the
// store. Used when preferences are changed by another process.
func (r *Resolver) Invalidate(userID string) {
	r.mu.Lock()
	delete(r.cache, userID)
	r.mu.Unlock()
}

// EffectiveChannels intersects the template's default channels with the
// user's master switches and any per-type override. The result is always a
// subset of the template defaults, in template order. An empty result is
// valid: the notification is still persisted, just not delivered.
func EffectiveChannels(template models.NotificationTemplate, prefs *models.NotificationPreferences) []models.Channel {
	override, hasOverride := prefs.Types[template.Type]
	if hasOverride && !override.Enabled {
		return []models.Channel{}
	}

	channels := make([]models.Channel, 0, len(template.DefaultChannels))
	for _, channel := range template.DefaultChannels {
		if !prefs.Channels[channel] {
			continue
		}
		if hasOverride && len(override.Channels) > 0 && !containsChannel(override.Channels, channel) {
			continue
		}
		channels = append(channels, channel)
	}
	return channels
}

func containsChannel(channels []models.Channel, channel models.Channel) bool {
	for _, c := range channels {
		if c == channel {
			return true
		}
	}
	return false
}

func clone(prefs *models.NotificationPreferences) *models.NotificationPreferences {
	copied := *prefs
	copied.Channels = make(map[models.Channel]bool, len(prefs.Channels))
	for k, v := range prefs.Channels {
		copied.Channels[k] = v
	}
	copied.Types = make(map[string]models.TypePreference, len(prefs.Types))
	for k, v := range prefs.Types {
		copied.Types[k] = v
	}
	return &copied
}
