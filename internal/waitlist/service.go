// internal/waitlist/service.go
package waitlist

import (
	"context"
	"strconv"
	"time"

	"github.com/andeslee444/Project-H-sub007/internal/common/errors"
	"github.com/andeslee444/Project-H-sub007/internal/common/logger"
	"github.com/andeslee444/Project-H-sub007/internal/common/metrics"
	"github.com/andeslee444/Project-H-sub007/internal/events"
	"github.com/andeslee444/Project-H-sub007/internal/matching"
	"github.com/andeslee444/Project-H-sub007/internal/models"
	"github.com/andeslee444/Project-H-sub007/internal/notifications/scheduler"
	"github.com/andeslee444/Project-H-sub007/internal/store"
)

// ProviderDirectory resolves a provider id to the profile used for match
// scoring. The engine does not own provider data; callers plug in whatever
// backs their provider records.
type ProviderDirectory interface {
	GetProvider(ctx context.Context, providerID string) (*models.CandidateProfile, error)
}

// Service runs waitlist matching and turns match outcomes into notifications.
type Service struct {
	store     store.Store
	providers ProviderDirectory
	ranker    *matching.Ranker
	scheduler *scheduler.Scheduler
	bus       *events.Bus
	topN      int
	logger    logger.Logger
}

func New(st store.Store, providers ProviderDirectory, ranker *matching.Ranker,
	sched *scheduler.Scheduler, bus *events.Bus, topN int, log logger.Logger) *Service {
	if topN <= 0 {
		topN = 5
	}
	return &Service{
		store:     st,
		providers: providers,
		ranker:    ranker,
		scheduler: sched,
		bus:       bus,
		topN:      topN,
		logger:    log.WithFields(map[string]interface{}{"component": "waitlist"}),
	}
}

// HandleSlotOpen matches an opened slot against active waitlist entries and
// notifies the best matches. Only entries whose hard requirements are met
// count toward the top-N; near misses are scored but never notified.
func (s *Service) HandleSlotOpen(ctx context.Context, slot models.ProviderSlot) ([]models.RankedEntry, error) {
	entries, err := s.store.ListActiveEntries(ctx, slot.ProviderID)
	if err != nil {
		return nil, errors.NewDatabaseQueryFailedError("list active entries", err)
	}
	if len(entries) == 0 {
		s.logger.Debug("no active entries for slot", map[string]interface{}{
			"providerId": slot.ProviderID,
		})
		return nil, nil
	}

	candidate := s.candidateForSlot(ctx, slot)
	ranked := s.ranker.Rank(entries, candidate)
	for _, r := range ranked {
		metrics.MatchingScores.WithLabelValues(strconv.FormatBool(r.Matches)).Inc()
	}

	availableDate, _ := splitSlotTime(slot.StartTime)

	notified := make([]models.RankedEntry, 0, s.topN)
	for _, r := range ranked {
		if len(notified) == s.topN {
			break
		}
		if !r.Matches {
			continue
		}

		entry := r.Entry
		if float64(r.Score) > entry.PriorityScore {
			entry.PriorityScore = float64(r.Score)
		}
		entry.Status = models.WaitlistStatusPending
		if err := s.store.PutWaitlistEntry(ctx, &entry); err != nil {
			s.logger.WithError(err).Error("failed to persist matched entry", map[string]interface{}{
				"entryId": entry.ID,
			})
			continue
		}

		if _, err := s.scheduler.Schedule(ctx, entry.PatientID, models.TypeWaitlistAvailable,
			map[string]string{
				"providerName":  slot.ProviderName,
				"availableDate": availableDate,
			}, scheduler.Options{}); err != nil {
			s.logger.WithError(err).Error("failed to schedule availability notification", map[string]interface{}{
				"entryId":   entry.ID,
				"patientId": entry.PatientID,
			})
			continue
		}

		r.Entry = entry
		notified = append(notified, r)
	}

	if len(notified) > 0 {
		s.bus.Publish(events.Event{
			Kind: events.KindWaitlistMatched,
			Payload: map[string]interface{}{
				"providerId": slot.ProviderID,
				"matched":    len(notified),
			},
		})
	}

	s.logger.Info("slot matched against waitlist", map[string]interface{}{
		"providerId": slot.ProviderID,
		"candidates": len(entries),
		"notified":   len(notified),
	})
	return notified, nil
}

// HandleHandRaise records an explicit provider request on an entry. The boost
// itself is applied at ranking time, so the only persistent change is the flag
// and, when given, the pinned provider.
func (s *Service) HandleHandRaise(ctx context.Context, entryID, providerID string) (*models.WaitlistEntry, error) {
	entry, err := s.store.GetWaitlistEntry(ctx, entryID)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, errors.NewWaitlistEntryNotFoundError(entryID)
		}
		return nil, errors.NewDatabaseQueryFailedError("get waitlist entry", err)
	}

	entry.HandRaised = true
	if providerID != "" {
		entry.ProviderID = providerID
	}
	if err := s.store.PutWaitlistEntry(ctx, entry); err != nil {
		return nil, errors.NewDatabaseQueryFailedError("update waitlist entry", err)
	}

	s.logger.Info("hand raise recorded", map[string]interface{}{
		"entryId":    entryID,
		"providerId": entry.ProviderID,
	})
	return entry, nil
}

// ConfirmBooking converts a matched entry into a booked appointment and sends
// the confirmation.
func (s *Service) ConfirmBooking(ctx context.Context, entryID string, slot models.ProviderSlot) error {
	entry, err := s.store.GetWaitlistEntry(ctx, entryID)
	if err != nil {
		if err == store.ErrNotFound {
			return errors.NewWaitlistEntryNotFoundError(entryID)
		}
		return errors.NewDatabaseQueryFailedError("get waitlist entry", err)
	}

	entry.Status = models.WaitlistStatusScheduled
	if err := s.store.PutWaitlistEntry(ctx, entry); err != nil {
		return errors.NewDatabaseQueryFailedError("update waitlist entry", err)
	}

	date, clock := splitSlotTime(slot.StartTime)
	_, err = s.scheduler.Schedule(ctx, entry.PatientID, models.TypeAppointmentConfirmed,
		map[string]string{
			"providerName":    slot.ProviderName,
			"appointmentDate": date,
			"appointmentTime": clock,
		}, scheduler.Options{})
	return err
}

// Withdraw removes an entry from matching without deleting its history.
func (s *Service) Withdraw(ctx context.Context, entryID string) error {
	entry, err := s.store.GetWaitlistEntry(ctx, entryID)
	if err != nil {
		if err == store.ErrNotFound {
			return errors.NewWaitlistEntryNotFoundError(entryID)
		}
		return errors.NewDatabaseQueryFailedError("get waitlist entry", err)
	}

	entry.Status = models.WaitlistStatusRemoved
	if err := s.store.PutWaitlistEntry(ctx, entry); err != nil {
		return errors.NewDatabaseQueryFailedError("update waitlist entry", err)
	}
	return nil
}

// candidateForSlot resolves the full provider profile, falling back to what
// the slot itself carries when the directory has no record. The fallback
// still supports location and modality scoring.
func (s *Service) candidateForSlot(ctx context.Context, slot models.ProviderSlot) models.CandidateProfile {
	if s.providers != nil {
		if profile, err := s.providers.GetProvider(ctx, slot.ProviderID); err == nil {
			return *profile
		} else if err != store.ErrNotFound {
			s.logger.WithError(err).Warn("provider lookup failed, using slot profile", map[string]interface{}{
				"providerId": slot.ProviderID,
			})
		}
	}
	return models.CandidateProfile{
		ID:       slot.ProviderID,
		Name:     slot.ProviderName,
		Location: slot.Location,
		Virtual:  slot.Virtual,
		InPerson: slot.Location != "",
	}
}

// splitSlotTime formats an RFC 3339 slot start into date and clock strings
// for templates. A start time that does not parse is passed through whole.
func splitSlotTime(startTime string) (string, string) {
	t, err := time.Parse(time.RFC3339, startTime)
	if err != nil {
		return startTime, startTime
	}
	return t.Format("Monday, January 2"), t.Format("3:04 PM")
}
