// internal/store/postgres_test.go
package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andeslee444/Project-H-sub007/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresStore(db), mock
}

func entryColumns() []string {
	return []string{"id", "patient_id", "patient_name", "provider_id", "criteria",
		"priority_score", "status", "hand_raised", "created_at", "updated_at"}
}

func notificationColumns() []string {
	return []string{"id", "user_id", "type", "priority", "title", "message",
		"channels", "data", "scheduled_for", "sent_at", "read_at", "clicked_at",
		"expires_at", "created_at"}
}

// ==========================
// Waitlist Entry Tests
// ==========================

func TestPostgresStore_GetWaitlistEntry(t *testing.T) {
	st, mock := createTestStore(t)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	criteria, _ := json.Marshal(models.MatchCriteria{Diagnoses: []string{"PTSD"}, Insurance: "Aetna"})

	mock.ExpectQuery("SELECT id, patient_id, patient_name, provider_id, criteria").
		WithArgs("entry-1").
		WillReturnRows(sqlmock.NewRows(entryColumns()).
			AddRow("entry-1", "patient-1", "Jordan", nil, criteria, 70.0, "active", false, now, now))

	entry, err := st.GetWaitlistEntry(context.Background(), "entry-1")
	require.NoError(t, err)
	assert.Equal(t, "entry-1", entry.ID)
	assert.Equal(t, "", entry.ProviderID)
	assert.Equal(t, []string{"PTSD"}, entry.Criteria.Diagnoses)
	assert.Equal(t, 70.0, entry.PriorityScore)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetWaitlistEntryNotFound(t *testing.T) {
	st, mock := createTestStore(t)

	mock.ExpectQuery("SELECT id, patient_id, patient_name, provider_id, criteria").
		WithArgs("absent").
		WillReturnRows(sqlmock.NewRows(entryColumns()))

	_, err := st.GetWaitlistEntry(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_PutWaitlistEntryUpserts(t *testing.T) {
	st, mock := createTestStore(t)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	entry := &models.WaitlistEntry{
		ID:            "entry-1",
		PatientID:     "patient-1",
		PatientName:   "Jordan",
		Criteria:      models.MatchCriteria{Diagnoses: []string{"PTSD"}},
		PriorityScore: 70,
		Status:        models.WaitlistStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	mock.ExpectExec("INSERT INTO waitlist_entries").
		WithArgs("entry-1", "patient-1", "Jordan", "", sqlmock.AnyArg(), 70.0,
			models.WaitlistStatusPending, false, now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, st.PutWaitlistEntry(context.Background(), entry))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListActiveEntries(t *testing.T) {
	st, mock := createTestStore(t)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	criteria, _ := json.Marshal(models.MatchCriteria{Insurance: "Aetna"})

	mock.ExpectQuery("FROM waitlist_entries").
		WithArgs("provider-1").
		WillReturnRows(sqlmock.NewRows(entryColumns()).
			AddRow("e-1", "p-1", "", nil, criteria, 0.0, "active", false, now, now).
			AddRow("e-2", "p-2", "", "provider-1", criteria, 10.0, "active", true, now, now))

	entries, err := st.ListActiveEntries(context.Background(), "provider-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "", entries[0].ProviderID)
	assert.Equal(t, "provider-1", entries[1].ProviderID)
	require.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Preferences Tests
// ==========================

func TestPostgresStore_GetPreferences(t *testing.T) {
	st, mock := createTestStore(t)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	settings, _ := json.Marshal(models.DefaultPreferences("user-1"))

	mock.ExpectQuery("FROM notification_preferences").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"settings", "updated_at"}).AddRow(settings, now))

	prefs, err := st.GetPreferences(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", prefs.UserID)
	assert.True(t, prefs.Channels[models.ChannelInApp])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_PutPreferences(t *testing.T) {
	st, mock := createTestStore(t)
	prefs := models.DefaultPreferences("user-1")
	prefs.UpdatedAt = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO notification_preferences").
		WithArgs("user-1", sqlmock.AnyArg(), prefs.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, st.PutPreferences(context.Background(), prefs))
	require.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Notification Tests
// ==========================

func TestPostgresStore_InsertNotification(t *testing.T) {
	st, mock := createTestStore(t)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	n := &models.Notification{
		ID:           "n-1",
		UserID:       "user-1",
		Type:         models.TypeWaitlistAvailable,
		Priority:     models.PriorityHigh,
		Title:        "Appointment Available",
		Message:      "An opening came up",
		Channels:     []models.Channel{models.ChannelInApp},
		ScheduledFor: now,
		CreatedAt:    now,
	}

	mock.ExpectExec("INSERT INTO notifications").
		WithArgs("n-1", "user-1", models.TypeWaitlistAvailable, models.PriorityHigh,
			"Appointment Available", "An opening came up", sqlmock.AnyArg(), sqlmock.AnyArg(),
			now, nil, nil, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, st.InsertNotification(context.Background(), n))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateNotification(t *testing.T) {
	st, mock := createTestStore(t)
	sentAt := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	n := &models.Notification{ID: "n-1", SentAt: &sentAt}

	mock.ExpectExec("UPDATE notifications").
		WithArgs("n-1", &sentAt, nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, st.UpdateNotification(context.Background(), n))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateNotificationMissingRow(t *testing.T) {
	st, mock := createTestStore(t)
	n := &models.Notification{ID: "absent"}

	mock.ExpectExec("UPDATE notifications").
		WithArgs("absent", nil, nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := st.UpdateNotification(context.Background(), n)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetNotification(t *testing.T) {
	st, mock := createTestStore(t)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	channels, _ := json.Marshal([]models.Channel{models.ChannelInApp, models.ChannelEmail})
	data, _ := json.Marshal(map[string]string{"providerName": "Dr. Chen"})

	mock.ExpectQuery("FROM notifications WHERE id").
		WithArgs("n-1").
		WillReturnRows(sqlmock.NewRows(notificationColumns()).
			AddRow("n-1", "user-1", models.TypeWaitlistAvailable, models.PriorityHigh,
				"Appointment Available", "body", channels, data, now, nil, nil, nil, nil, now))

	n, err := st.GetNotification(context.Background(), "n-1")
	require.NoError(t, err)
	assert.Equal(t, []models.Channel{models.ChannelInApp, models.ChannelEmail}, n.Channels)
	assert.Equal(t, "Dr. Chen", n.Data["providerName"])
	assert.Nil(t, n.SentAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListNotificationsFilters(t *testing.T) {
	st, mock := createTestStore(t)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	channels, _ := json.Marshal([]models.Channel{models.ChannelInApp})

	mock.ExpectQuery("FROM notifications WHERE user_id").
		WithArgs("user-1", models.TypeWaitlistAvailable, 10).
		WillReturnRows(sqlmock.NewRows(notificationColumns()).
			AddRow("n-1", "user-1", models.TypeWaitlistAvailable, models.PriorityHigh,
				"t", "b", channels, nil, now, nil, nil, nil, nil, now))

	notifications, err := st.ListNotifications(context.Background(), "user-1", NotificationFilter{
		Type:       models.TypeWaitlistAvailable,
		UnreadOnly: true,
		Limit:      10,
	})
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, "n-1", notifications[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
