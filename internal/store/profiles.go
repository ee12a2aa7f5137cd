package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobscout/internal/errors"
	"jobscout/internal/models"
)

// ProfileStore reads and writes candidate profiles, keyed by user id.
type ProfileStore struct {
	pool *pgxpool.Pool
}

func NewProfileStore(pool *pgxpool.Pool) *ProfileStore {
	return &ProfileStore{pool: pool}
}

const profileColumns = `
	user_id, target_titles, target_locations, industries, skills,
	excluded_companies, keyword_blacklist, location_preference,
	experience_level, min_salary, max_applications_per_run, notes,
	resume_text, created_at, updated_at`

func (s *ProfileStore) GetByUser(ctx context.Context, userID uuid.UUID) (models.Profile, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT`+profileColumns+` FROM user_profiles WHERE user_id = $1`, userID)

	var p models.Profile
	err := row.Scan(
		&p.UserID, &p.TargetTitles, &p.TargetLocations, &p.Industries, &p.Skills,
		&p.ExcludedCompanies, &p.KeywordBlacklist, &p.LocationPreference,
		&p.ExperienceLevel, &p.MinSalary, &p.MaxApplicationsPerRun, &p.Notes,
		&p.ResumeText, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return models.Profile{}, errors.NotFound("profile not found", nil)
	}
	if err != nil {
		return models.Profile{}, errors.Internal("querying profile", err)
	}
	return p, nil
}

// Upsert creates or replaces the user's profile.
func (s *ProfileStore) Upsert(ctx context.Context, p models.Profile) (models.Profile, error) {
	if p.MaxApplicationsPerRun <= 0 {
		p.MaxApplicationsPerRun = 15
	}
	if p.LocationPreference == "" {
		p.LocationPreference = models.LocationRemote
	}
	if p.ExperienceLevel == "" {
		p.ExperienceLevel = models.ExperienceMid
	}

	now := time.Now().UTC()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO user_profiles (
			user_id, target_titles, target_locations, industries, skills,
			excluded_companies, keyword_blacklist, location_preference,
			experience_level, min_salary, max_applications_per_run, notes,
			resume_text, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$14)
		ON CONFLICT (user_id) DO UPDATE SET
			target_titles = EXCLUDED.target_titles,
			target_locations = EXCLUDED.target_locations,
			industries = EXCLUDED.industries,
			skills = EXCLUDED.skills,
			excluded_companies = EXCLUDED.excluded_companies,
			keyword_blacklist = EXCLUDED.keyword_blacklist,
			location_preference = EXCLUDED.location_preference,
			experience_level = EXCLUDED.experience_level,
			min_salary = EXCLUDED.min_salary,
			max_applications_per_run = EXCLUDED.max_applications_per_run,
			notes = EXCLUDED.notes,
			resume_text = EXCLUDED.resume_text,
			updated_at = EXCLUDED.updated_at`,
		p.UserID, p.TargetTitles, p.TargetLocations, p.Industries, p.Skills,
		p.ExcludedCompanies, p.KeywordBlacklist, p.LocationPreference,
		p.ExperienceLevel, p.MinSalary, p.MaxApplicationsPerRun, p.Notes,
		p.ResumeText, now,
	)
	if err != nil {
		return models.Profile{}, errors.Internal("upserting profile", err)
	}
	return s.GetByUser(ctx, p.UserID)
}

// ListUserIDs returns every user that has a profile. Used by the periodic
// scan scheduler.
func (s *ProfileStore) ListUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := s.pool.Query(ctx, `SELECT user_id FROM user_profiles`)
	if err != nil {
		return nil, errors.Internal("listing profile users", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Internal("scanning profile user", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
