package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/advision/internal/readability"
)

// -----------------------------------------------------------------------------
// Ad Copy Methods
// -----------------------------------------------------------------------------

// CreateAdCopies stores copies for a project in one transaction, preserving order
func (db *DB) CreateAdCopies(ctx context.Context, projectID, userID uuid.UUID, contents []string, tone string) ([]AdCopy, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	copies := make([]AdCopy, 0, len(contents))
	for _, content := range contents {
		c := AdCopy{ProjectID: projectID, UserID: userID, Content: content, Tone: tone}
		err := tx.QueryRow(ctx,
			`INSERT INTO ad_copies (project_id, user_id, content, tone)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id, created_at`,
			projectID, userID, content, tone,
		).Scan(&c.ID, &c.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to create ad copy: %w", err)
		}
		copies = append(copies, c)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit ad copies: %w", err)
	}
	return copies, nil
}

// GetAdCopy retrieves an ad copy when it belongs to userID
func (db *DB) GetAdCopy(ctx context.Context, adCopyID, userID uuid.UUID) (*AdCopy, error) {
	var c AdCopy
	err := db.pool.QueryRow(ctx,
		`SELECT id, project_id, user_id, content, tone, created_at
		 FROM ad_copies WHERE id = $1 AND user_id = $2`,
		adCopyID, userID,
	).Scan(&c.ID, &c.ProjectID, &c.UserID, &c.Content, &c.Tone, &c.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get ad copy: %w", err)
	}
	return &c, nil
}

// ListAdCopies returns a project's copies, newest first, each with its
// latest readability snapshot when one exists
func (db *DB) ListAdCopies(ctx context.Context, projectID, userID uuid.UUID) ([]AdCopy, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT a.id, a.project_id, a.user_id, a.content, a.tone, a.created_at,
		        r.id, r.flesch_reading_ease, r.flesch_grade_level, r.gunning_fog,
		        r.flesch_reading_ease_label, r.flesch_grade_level_label, r.gunning_fog_label, r.created_at
		 FROM ad_copies a
		 LEFT JOIN LATERAL (
		     SELECT * FROM readability_scores s
		     WHERE s.ad_copy_id = a.id AND s.user_id = a.user_id
		     ORDER BY s.created_at DESC LIMIT 1
		 ) r ON TRUE
		 WHERE a.project_id = $1 AND a.user_id = $2
		 ORDER BY a.created_at DESC`,
		projectID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list ad copies: %w", err)
	}
	defer rows.Close()

	copies := []AdCopy{}
	for rows.Next() {
		c, err := scanAdCopyWithScore(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ad copy: %w", err)
		}
		copies = append(copies, *c)
	}
	return copies, rows.Err()
}

func scanAdCopyWithScore(rows pgx.Rows) (*AdCopy, error) {
	var (
		c                   AdCopy
		scoreID             *uuid.UUID
		ease, grade, fog    *float64
		easeL, gradeL, fogL *string
		scoredAt            *time.Time
	)
	err := rows.Scan(&c.ID, &c.ProjectID, &c.UserID, &c.Content, &c.Tone, &c.CreatedAt,
		&scoreID, &ease, &grade, &fog, &easeL, &gradeL, &fogL, &scoredAt)
	if err != nil {
		return nil, err
	}
	if scoreID != nil && ease != nil && grade != nil && fog != nil && scoredAt != nil {
		c.Readability = &ReadabilityScore{
			ID:       *scoreID,
			AdCopyID: c.ID,
			UserID:   c.UserID,
			Snapshot: readability.Snapshot{
				FleschReadingEase:      *ease,
				FleschGradeLevel:       *grade,
				GunningFog:             *fog,
				FleschReadingEaseLabel: readability.Label(deref(easeL)),
				FleschGradeLevelLabel:  readability.Label(deref(gradeL)),
				GunningFogLabel:        readability.Label(deref(fogL)),
			},
			CreatedAt: *scoredAt,
		}
	}
	return &c, nil
}

// DeleteAdCopy deletes an ad copy and its readability snapshots
func (db *DB) DeleteAdCopy(ctx context.Context, adCopyID, userID uuid.UUID) (bool, error) {
	return db.deleteOwned(ctx, "ad_copies", adCopyID, userID)
}

// -----------------------------------------------------------------------------
// Readability Methods
// -----------------------------------------------------------------------------

// SaveReadability persists a snapshot for an ad copy owned by userID
func (db *DB) SaveReadability(ctx context.Context, adCopyID, userID uuid.UUID, s readability.Snapshot) (*ReadabilityScore, error) {
	score := ReadabilityScore{AdCopyID: adCopyID, UserID: userID, Snapshot: s}
	err := db.pool.QueryRow(ctx,
		`INSERT INTO readability_scores (ad_copy_id, user_id, flesch_reading_ease, flesch_grade_level,
		     gunning_fog, flesch_reading_ease_label, flesch_grade_level_label, gunning_fog_label)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at`,
		adCopyID, userID, s.FleschReadingEase, s.FleschGradeLevel, s.GunningFog,
		string(s.FleschReadingEaseLabel), string(s.FleschGradeLevelLabel), string(s.GunningFogLabel),
	).Scan(&score.ID, &score.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save readability score: %w", err)
	}
	return &score, nil
}

// LatestReadability returns the newest snapshot for an ad copy, or nil
func (db *DB) LatestReadability(ctx context.Context, adCopyID, userID uuid.UUID) (*ReadabilityScore, error) {
	score := ReadabilityScore{}
	var easeL, gradeL, fogL string
	err := db.pool.QueryRow(ctx,
		`SELECT id, ad_copy_id, user_id, flesch_reading_ease, flesch_grade_level, gunning_fog,
		        flesch_reading_ease_label, flesch_grade_level_label, gunning_fog_label, created_at
		 FROM readability_scores
		 WHERE ad_copy_id = $1 AND user_id = $2
		 ORDER BY created_at DESC LIMIT 1`,
		adCopyID, userID,
	).Scan(&score.ID, &score.AdCopyID, &score.UserID,
		&score.FleschReadingEase, &score.FleschGradeLevel, &score.GunningFog,
		&easeL, &gradeL, &fogL, &score.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get readability score: %w", err)
	}
	score.FleschReadingEaseLabel = readability.Label(easeL)
	score.FleschGradeLevelLabel = readability.Label(gradeL)
	score.GunningFogLabel = readability.Label(fogL)
	return &score, nil
}

// DeleteReadability deletes one snapshot
func (db *DB) DeleteReadability(ctx context.Context, scoreID, userID uuid.UUID) (bool, error) {
	return db.deleteOwned(ctx, "readability_scores", scoreID, userID)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
