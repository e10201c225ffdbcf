// internal/store/directory.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/andeslee444/Project-H-sub007/internal/models"
)

// PostgresContactDirectory resolves delivery addresses from the users table.
// It satisfies the channel senders' directory contract.
type PostgresContactDirectory struct {
	db *sql.DB
}

func NewPostgresContactDirectory(db *sql.DB) *PostgresContactDirectory {
	return &PostgresContactDirectory{db: db}
}

func (d *PostgresContactDirectory) Email(ctx context.Context, userID string) (string, error) {
	return d.contactField(ctx, userID, "email")
}

func (d *PostgresContactDirectory) Phone(ctx context.Context, userID string) (string, error) {
	return d.contactField(ctx, userID, "phone")
}

func (d *PostgresContactDirectory) contactField(ctx context.Context, userID, column string) (string, error) {
	query := fmt.Sprintf("SELECT COALESCE(%s, '') FROM users WHERE id = $1", column)

	var value string
	err := d.db.QueryRowContext(ctx, query, userID).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("contact lookup for user %s: %w", userID, err)
	}
	if value == "" {
		return "", ErrNotFound
	}
	return value, nil
}

// PostgresProviderDirectory loads provider profiles for match scoring.
type PostgresProviderDirectory struct {
	db *sql.DB
}

func NewPostgresProviderDirectory(db *sql.DB) *PostgresProviderDirectory {
	return &PostgresProviderDirectory{db: db}
}

func (d *PostgresProviderDirectory) GetProvider(ctx context.Context, providerID string) (*models.CandidateProfile, error) {
	const query = `
		SELECT id, name,
		       COALESCE(specialties, '[]'),
		       COALESCE(accepted_insurance, '[]'),
		       COALESCE(location, ''),
		       virtual_available, in_person_available,
		       COALESCE(gender, '')
		FROM providers
		WHERE id = $1`

	var (
		profile     models.CandidateProfile
		specialties []byte
		insurance   []byte
	)
	err := d.db.QueryRowContext(ctx, query, providerID).Scan(
		&profile.ID, &profile.Name, &specialties, &insurance,
		&profile.Location, &profile.Virtual, &profile.InPerson, &profile.Gender,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("provider lookup for %s: %w", providerID, err)
	}

	if err := json.Unmarshal(specialties, &profile.Specialties); err != nil {
		return nil, fmt.Errorf("provider %s specialties: %w", providerID, err)
	}
	if err := json.Unmarshal(insurance, &profile.AcceptedInsurance); err != nil {
		return nil, fmt.Errorf("provider %s insurance: %w", providerID, err)
	}
	return &profile, nil
}
