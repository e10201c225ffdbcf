// internal/waitlist/service_test.go
package waitlist

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrs "github.com/andeslee444/Project-H-sub007/internal/common/errors"
	"github.com/andeslee444/Project-H-sub007/internal/common/logger"
	"github.com/andeslee444/Project-H-sub007/internal/events"
	"github.com/andeslee444/Project-H-sub007/internal/matching"
	"github.com/andeslee444/Project-H-sub007/internal/models"
	"github.com/andeslee444/Project-H-sub007/internal/notifications/preferences"
	"github.com/andeslee444/Project-H-sub007/internal/notifications/scheduler"
	"github.com/andeslee444/Project-H-sub007/internal/notifications/templates"
	"github.com/andeslee444/Project-H-sub007/internal/store"
)

// ==========================
// Test Helper Functions
// ==========================

type memStore struct {
	store.Store

	entries       map[string]*models.WaitlistEntry
	notifications map[string]*models.Notification
	prefs         map[string]*models.NotificationPreferences
}

func newMemStore() *memStore {
	return &memStore{
		entries:       make(map[string]*models.WaitlistEntry),
		notifications: make(map[string]*models.Notification),
		prefs:         make(map[string]*models.NotificationPreferences),
	}
}

func (m *memStore) GetWaitlistEntry(_ context.Context, id string) (*models.WaitlistEntry, error) {
	e, ok := m.entries[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *e
	return &copied, nil
}

func (m *memStore) PutWaitlistEntry(_ context.Context, entry *models.WaitlistEntry) error {
	copied := *entry
	m.entries[entry.ID] = &copied
	return nil
}

func (m *memStore) ListActiveEntries(_ context.Context, providerID string) ([]models.WaitlistEntry, error) {
	var entries []models.WaitlistEntry
	for _, e := range m.entries {
		if e.Status != models.WaitlistStatusActive {
			continue
		}
		if e.ProviderID != "" && e.ProviderID != providerID {
			continue
		}
		entries = append(entries, *e)
	}
	return entries, nil
}

func (m *memStore) GetPreferences(_ context.Context, userID string) (*models.NotificationPreferences, error) {
	p, ok := m.prefs[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return p, nil
}

func (m *memStore) PutPreferences(_ context.Context, p *models.NotificationPreferences) error {
	m.prefs[p.UserID] = p
	return nil
}

func (m *memStore) InsertNotification(_ context.Context, n *models.Notification) error {
	m.notifications[n.ID] = n
	return nil
}

type staticDirectory struct {
	profiles map[string]*models.CandidateProfile
}

func (d *staticDirectory) GetProvider(_ context.Context, id string) (*models.CandidateProfile, error) {
	p, ok := d.profiles[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return p, nil
}

type nopQueue struct{}

func (nopQueue) Enqueue(context.Context, string, time.Time) error { return nil }

type serviceRig struct {
	service    *Service
	store      *memStore
	bus        *events.Bus
	dispatched []*models.Notification
}

func newServiceRig(t *testing.T, topN int, profiles map[string]*models.CandidateProfile) *serviceRig {
	rig := &serviceRig{store: newMemStore()}
	log := logger.NewTestLogger(t)
	rig.bus = events.NewBus(log)

	registry := templates.NewRegistry(log)
	resolver := preferences.NewResolver(rig.store, log)
	sched := scheduler.New(registry, resolver, rig.store, nopQueue{},
		func(_ context.Context, n *models.Notification) error {
			rig.dispatched = append(rig.dispatched, n)
			return nil
		}, "UTC", log)

	ranker := matching.NewRanker(matching.DefaultHandRaiseBoost)
	rig.service = New(rig.store, &staticDirectory{profiles: profiles}, ranker, sched, rig.bus, topN, log)
	return rig
}

func drChen() *models.CandidateProfile {
	return &models.CandidateProfile{
		ID:                "provider-1",
		Name:              "Dr. Chen",
		Specialties:       []string{"Trauma", "EMDR"},
		AcceptedInsurance: []string{"Aetna", "Blue Cross Blue Shield"},
		Location:          "Brooklyn",
		Virtual:           true,
		InPerson:          true,
	}
}

func activeEntry(id string, createdAt time.Time, criteria models.MatchCriteria) *models.WaitlistEntry {
	return &models.WaitlistEntry{
		ID:        id,
		PatientID: "patient-" + id,
		Criteria:  criteria,
		Status:    models.WaitlistStatusActive,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func openSlot() models.ProviderSlot {
	return models.ProviderSlot{
		ProviderID:   "provider-1",
		ProviderName: "Dr. Chen",
		StartTime:    "2025-03-12T10:00:00Z",
		Virtual:      true,
		Location:     "Brooklyn",
	}
}

// ==========================
// Slot Open Tests
// ==========================

func TestService_HandleSlotOpenNotifiesMatches(t *testing.T) {
	rig := newServiceRig(t, 5, map[string]*models.CandidateProfile{"provider-1": drChen()})
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	ctx := context.Background()

	matchCriteria := models.MatchCriteria{Diagnoses: []string{"PTSD"}, Insurance: "Aetna"}
	require.NoError(t, rig.store.PutWaitlistEntry(ctx, activeEntry("match", base, matchCriteria)))
	require.NoError(t, rig.store.PutWaitlistEntry(ctx,
		activeEntry("near-miss", base, models.MatchCriteria{Diagnoses: []string{"PTSD"}})))

	notified, err := rig.service.HandleSlotOpen(ctx, openSlot())
	require.NoError(t, err)

	require.Len(t, notified, 1)
	assert.Equal(t, "match", notified[0].Entry.ID)
	assert.Equal(t, float64(70), notified[0].Entry.PriorityScore)
	assert.Equal(t, models.WaitlistStatusPending, notified[0].Entry.Status)

	// A near miss is scored but never notified.
	require.Len(t, rig.dispatched, 1)
	n := rig.dispatched[0]
	assert.Equal(t, "patient-match", n.UserID)
	assert.Equal(t, models.TypeWaitlistAvailable, n.Type)
	assert.Contains(t, n.Message, "Dr. Chen")

	// The matched entry's new state was persisted.
	stored := rig.store.entries["match"]
	assert.Equal(t, models.WaitlistStatusPending, stored.Status)
	assert.Equal(t, float64(70), stored.PriorityScore)
}

func TestService_HandleSlotOpenRespectsTopN(t *testing.T) {
	rig := newServiceRig(t, 2, map[string]*models.CandidateProfile{"provider-1": drChen()})
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	ctx := context.Background()
	criteria := models.MatchCriteria{Diagnoses: []string{"PTSD"}, Insurance: "Aetna"}

	for i, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, rig.store.PutWaitlistEntry(ctx,
			activeEntry(id, base.Add(time.Duration(i)*time.Minute), criteria)))
	}

	notified, err := rig.service.HandleSlotOpen(ctx, openSlot())
	require.NoError(t, err)

	require.Len(t, notified, 2)
	// Equal scores fall back to earliest joined.
	assert.Equal(t, "a", notified[0].Entry.ID)
	assert.Equal(t, "b", notified[1].Entry.ID)
	assert.Len(t, rig.dispatched, 2)
}

func TestService_HandleSlotOpenNoEntries(t *testing.T) {
	rig := newServiceRig(t, 5, map[string]*models.CandidateProfile{"provider-1": drChen()})

	notified, err := rig.service.HandleSlotOpen(context.Background(), openSlot())
	require.NoError(t, err)
	assert.Empty(t, notified)
	assert.Empty(t, rig.dispatched)
}

func TestService_HandleSlotOpenUnknownProviderUsesSlotProfile(t *testing.T) {
	rig := newServiceRig(t, 5, map[string]*models.CandidateProfile{})
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	ctx := context.Background()

	// Without a directory profile there are no specialties or insurance, so
	// nothing can reach eligibility; scoring still runs on slot fields.
	require.NoError(t, rig.store.PutWaitlistEntry(ctx,
		activeEntry("near", base, models.MatchCriteria{Location: "Brooklyn", Modality: models.ModalityVirtual})))

	notified, err := rig.service.HandleSlotOpen(ctx, openSlot())
	require.NoError(t, err)
	assert.Empty(t, notified)
}

func TestService_HandleSlotOpenPublishesMatchEvent(t *testing.T) {
	rig := newServiceRig(t, 5, map[string]*models.CandidateProfile{"provider-1": drChen()})
	ch := rig.bus.Subscribe(8)
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	ctx := context.Background()

	require.NoError(t, rig.store.PutWaitlistEntry(ctx, activeEntry("match", base,
		models.MatchCriteria{Diagnoses: []string{"PTSD"}, Insurance: "Aetna"})))

	_, err := rig.service.HandleSlotOpen(ctx, openSlot())
	require.NoError(t, err)

	deadline := time.After(time.Second)
	for {
		select {
		case ev := <-ch:
			if ev.Kind == events.KindWaitlistMatched {
				assert.Equal(t, "provider-1", ev.Payload["providerId"])
				assert.Equal(t, 1, ev.Payload["matched"])
				return
			}
		case <-deadline:
			t.Fatal("expected a waitlist.matched event")
		}
	}
}

// ==========================
// Hand Raise and Lifecycle Tests
// ==========================

func TestService_HandleHandRaise(t *testing.T) {
	rig := newServiceRig(t, 5, map[string]*models.CandidateProfile{"provider-1": drChen()})
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	ctx := context.Background()

	require.NoError(t, rig.store.PutWaitlistEntry(ctx, activeEntry("entry-1", base,
		models.MatchCriteria{Diagnoses: []string{"PTSD"}})))

	entry, err := rig.service.HandleHandRaise(ctx, "entry-1", "provider-1")
	require.NoError(t, err)
	assert.True(t, entry.HandRaised)
	assert.Equal(t, "provider-1", entry.ProviderID)

	stored := rig.store.entries["entry-1"]
	assert.True(t, stored.HandRaised)
}

func TestService_HandleHandRaiseMissingEntry(t *testing.T) {
	rig := newServiceRig(t, 5, nil)

	_, err := rig.service.HandleHandRaise(context.Background(), "absent", "")
	require.Error(t, err)
	assert.True(t, stderrs.IsCode(err, stderrs.ErrCodeWaitlistEntryNotFound))
}

func TestService_ConfirmBooking(t *testing.T) {
	rig := newServiceRig(t, 5, map[string]*models.CandidateProfile{"provider-1": drChen()})
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	ctx := context.Background()

	require.NoError(t, rig.store.PutWaitlistEntry(ctx, activeEntry("entry-1", base,
		models.MatchCriteria{Diagnoses: []string{"PTSD"}, Insurance: "Aetna"})))

	require.NoError(t, rig.service.ConfirmBooking(ctx, "entry-1", openSlot()))

	assert.Equal(t, models.WaitlistStatusScheduled, rig.store.entries["entry-1"].Status)
	require.Len(t, rig.dispatched, 1)
	assert.Equal(t, models.TypeAppointmentConfirmed, rig.dispatched[0].Type)
}

func TestService_Withdraw(t *testing.T) {
	rig := newServiceRig(t, 5, nil)
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	ctx := context.Background()

	require.NoError(t, rig.store.PutWaitlistEntry(ctx, activeEntry("entry-1", base, models.MatchCriteria{})))
	require.NoError(t, rig.service.Withdraw(ctx, "entry-1"))

	assert.Equal(t, models.WaitlistStatusRemoved, rig.store.entries["entry-1"].Status)

	// Withdrawn entries stop matching.
	entries, err := rig.store.ListActiveEntries(ctx, "provider-1")
	require.NoError(t, err)
	assert.Empty(t, entries)
}
