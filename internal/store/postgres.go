// internal/store/postgres.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/andeslee444/Project-H-sub007/internal/models"
)

// PostgresStore implements Store on database/sql with the lib/pq driver.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetWaitlistEntry(ctx context.Context, id string) (*models.WaitlistEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, patient_id, patient_name, provider_id, criteria, priority_score,
		       status, hand_raised, created_at, updated_at
		FROM waitlist_entries WHERE id = $1`, id)

	var entry models.WaitlistEntry
	var providerID sql.NullString
	var criteria []byte
	err := row.Scan(&entry.ID, &entry.PatientID, &entry.PatientName, &providerID,
		&criteria, &entry.PriorityScore, &entry.Status, &entry.HandRaised,
		&entry.CreatedAt, &entry.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get waitlist entry: %w", err)
	}

	entry.ProviderID = providerID.String
	if err := json.Unmarshal(criteria, &entry.Criteria); err != nil {
		return nil, fmt.Errorf("decode criteria for entry %s: %w", id, err)
	}
	return &entry, nil
}

func (s *PostgresStore) PutWaitlistEntry(ctx context.Context, entry *models.WaitlistEntry) error {
	criteria, err := json.Marshal(entry.Criteria)
	if err != nil {
		return fmt.Errorf("encode criteria: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO waitlist_entries
			(id, patient_id, patient_name, provider_id, criteria, priority_score,
			 status, hand_raised, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			provider_id = NULLIF($4, ''), criteria = $5, priority_score = $6,
			status = $7, hand_raised = $8, updated_at = $10`,
		entry.ID, entry.PatientID, entry.PatientName, entry.ProviderID, criteria,
		entry.PriorityScore, entry.Status, entry.HandRaised, entry.CreatedAt, entry.UpdatedAt)
	if err != nil {
		return fmt.Errorf("put waitlist entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListActiveEntries(ctx context.Context, providerID string) ([]models.WaitlistEntry, error) {
	query := `
		SELECT id, patient_id, patient_name, provider_id, criteria, priority_score,
		       status, hand_raised, created_at, updated_at
		FROM waitlist_entries
		WHERE status = 'active' AND (provider_id IS NULL OR provider_id = $1)
		ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, providerID)
	if err != nil {
		return nil, fmt.Errorf("list active entries: %w", err)
	}
	defer rows.Close()

	var entries []models.WaitlistEntry
	for rows.Next() {
		var entry models.WaitlistEntry
		var pid sql.NullString
		var criteria []byte
		if err := rows.Scan(&entry.ID, &entry.PatientID, &entry.PatientName, &pid,
			&criteria, &entry.PriorityScore, &entry.Status, &entry.HandRaised,
			&entry.CreatedAt, &entry.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan waitlist entry: %w", err)
		}
		entry.ProviderID = pid.String
		if err := json.Unmarshal(criteria, &entry.Criteria); err != nil {
			return nil, fmt.Errorf("decode criteria for entry %s: %w", entry.ID, err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *PostgresStore) GetPreferences(ctx context.Context, userID string) (*models.NotificationPreferences, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT settings, updated_at FROM notification_preferences WHERE user_id = $1`, userID)

	var settings []byte
	var prefs models.NotificationPreferences
	err := row.Scan(&settings, &prefs.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}

	if err := json.Unmarshal(settings, &prefs); err != nil {
		return nil, fmt.Errorf("decode preferences for %s: %w", userID, err)
	}
	prefs.UserID = userID
	return &prefs, nil
}

func (s *PostgresStore) PutPreferences(ctx context.Context, prefs *models.NotificationPreferences) error {
	settings, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO notification_preferences (user_id, settings, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET settings = $2, updated_at = $3`,
		prefs.UserID, settings, prefs.UpdatedAt)
	if err != nil {
		return fmt.Errorf("put preferences: %w", err)
	}
	return nil
}

func (s *PostgresStore) InsertNotification(ctx context.Context, n *models.Notification) error {
	channels, err := json.Marshal(n.Channels)
	if err != nil {
		return fmt.Errorf("encode channels: %w", err)
	}
	data, err := json.Marshal(n.Data)
	if err != nil {
		return fmt.Errorf("encode data: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO notifications
			(id, user_id, type, priority, title, message, channels, data,
			 scheduled_for, sent_at, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		n.ID, n.UserID, n.Type, n.Priority, n.Title, n.Message, channels, data,
		n.ScheduledFor, n.SentAt, n.ExpiresAt, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateNotification(ctx context.Context, n *models.Notification) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE notifications
		SET sent_at = $2, read_at = $3, clicked_at = $4
		WHERE id = $1`,
		n.ID, n.SentAt, n.ReadAt, n.ClickedAt)
	if err != nil {
		return fmt.Errorf("update notification: %w", err)
	}
	if count, err := res.RowsAffected(); err == nil && count == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) GetNotification(ctx context.Context, id string) (*models.Notification, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, type, priority, title, message, channels, data,
		       scheduled_for, sent_at, read_at, clicked_at, expires_at, created_at
		FROM notifications WHERE id = $1`, id)

	n, err := scanNotification(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get notification: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) ListNotifications(ctx context.Context, userID string, filter NotificationFilter) ([]models.Notification, error) {
	query := `
		SELECT id, user_id, type, priority, title, message, channels, data,
		       scheduled_for, sent_at, read_at, clicked_at, expires_at, created_at
		FROM notifications WHERE user_id = $1`
	args := []interface{}{userID}

	if filter.Type != "" {
		args = append(args, filter.Type)
		query += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if filter.UnreadOnly {
		query += " AND read_at IS NULL"
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		n, err := scanNotification(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, *n)
	}
	return notifications, rows.Err()
}

func scanNotification(scan func(dest ...interface{}) error) (*models.Notification, error) {
	var n models.Notification
	var channels, data []byte
	err := scan(&n.ID, &n.UserID, &n.Type, &n.Priority, &n.Title, &n.Message,
		&channels, &data, &n.ScheduledFor, &n.SentAt, &n.ReadAt, &n.ClickedAt,
		&n.ExpiresAt, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(channels, &n.Channels); err != nil {
		return nil, fmt.Errorf("decode channels: %w", err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &n.Data); err != nil {
			return nil, fmt.Errorf("decode data: %w", err)
		}
	}
	return &n, nil
}
