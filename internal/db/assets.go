package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/advision/internal/types"
)

// -----------------------------------------------------------------------------
// Keyword Methods
// -----------------------------------------------------------------------------

// CreateKeywords stores keyword records for a project in one transaction
func (db *DB) CreateKeywords(ctx context.Context, projectID, userID uuid.UUID, keywords []types.KeywordSuggestion) ([]Keyword, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	out := make([]Keyword, 0, len(keywords))
	for _, k := range keywords {
		rec := Keyword{ProjectID: projectID, UserID: userID, KeywordSuggestion: k}
		if rec.Suggestions == nil {
			rec.Suggestions = []string{}
		}
		err := tx.QueryRow(ctx,
			`INSERT INTO keywords (project_id, user_id, keyword, search_volume, competition, intent, suggestions)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 RETURNING id, created_at`,
			projectID, userID, k.Keyword, k.SearchVolume, k.Competition, k.Intent, StringArray(rec.Suggestions),
		).Scan(&rec.ID, &rec.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to create keyword %q: %w", k.Keyword, err)
		}
		out = append(out, rec)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit keywords: %w", err)
	}
	return out, nil
}

// ListKeywords returns a project's keywords, newest first
func (db *DB) ListKeywords(ctx context.Context, projectID, userID uuid.UUID) ([]Keyword, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, project_id, user_id, keyword, search_volume, competition, intent, suggestions, created_at
		 FROM keywords WHERE project_id = $1 AND user_id = $2
		 ORDER BY created_at DESC`,
		projectID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list keywords: %w", err)
	}
	defer rows.Close()

	keywords := []Keyword{}
	for rows.Next() {
		var k Keyword
		var suggestions StringArray
		if err := rows.Scan(&k.ID, &k.ProjectID, &k.UserID, &k.Keyword, &k.SearchVolume,
			&k.Competition, &k.Intent, &suggestions, &k.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan keyword: %w", err)
		}
		k.Suggestions = suggestions
		keywords = append(keywords, k)
	}
	return keywords, rows.Err()
}

// DeleteKeyword deletes one keyword record
func (db *DB) DeleteKeyword(ctx context.Context, keywordID, userID uuid.UUID) (bool, error) {
	return db.deleteOwned(ctx, "keywords", keywordID, userID)
}

// -----------------------------------------------------------------------------
// Audience Methods
// -----------------------------------------------------------------------------

// CreateAudiences stores audience segments for a project in one transaction
func (db *DB) CreateAudiences(ctx context.Context, projectID, userID uuid.UUID, segments []types.AudienceSegment) ([]Audience, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	out := make([]Audience, 0, len(segments))
	for _, s := range segments {
		rec := Audience{ProjectID: projectID, UserID: userID, AudienceSegment: s}
		err := tx.QueryRow(ctx,
			`INSERT INTO audiences (project_id, user_id, name, age_range, gender, interests, platforms, purchase_intent)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 RETURNING id, created_at`,
			projectID, userID, s.Name, s.AgeRange, s.Gender, s.Interests, s.Platforms, s.PurchaseIntent,
		).Scan(&rec.ID, &rec.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to create audience %q: %w", s.Name, err)
		}
		out = append(out, rec)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit audiences: %w", err)
	}
	return out, nil
}

// ListAudiences returns a project's audience segments, newest first
func (db *DB) ListAudiences(ctx context.Context, projectID, userID uuid.UUID) ([]Audience, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, project_id, user_id, name, age_range, gender, interests, platforms, purchase_intent, created_at
		 FROM audiences WHERE project_id = $1 AND user_id = $2
		 ORDER BY created_at DESC`,
		projectID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list audiences: %w", err)
	}
	defer rows.Close()

	audiences := []Audience{}
	for rows.Next() {
		var a Audience
		if err := rows.Scan(&a.ID, &a.ProjectID, &a.UserID, &a.Name, &a.AgeRange, &a.Gender,
			&a.Interests, &a.Platforms, &a.PurchaseIntent, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audience: %w", err)
		}
		audiences = append(audiences, a)
	}
	return audiences, rows.Err()
}

// DeleteAudience deletes one audience segment
func (db *DB) DeleteAudience(ctx context.Context, audienceID, userID uuid.UUID) (bool, error) {
	return db.deleteOwned(ctx, "audiences", audienceID, userID)
}

// -----------------------------------------------------------------------------
// Brand Style Methods
// -----------------------------------------------------------------------------

// CreateBrandStyle stores a brand palette for a project
func (db *DB) CreateBrandStyle(ctx context.Context, projectID, userID uuid.UUID, brandName string, colors []string, font string) (*BrandStyle, error) {
	bs := BrandStyle{ProjectID: projectID, UserID: userID, BrandName: brandName, Colors: StringArray(colors), Font: font}
	if bs.Colors == nil {
		bs.Colors = StringArray{}
	}
	err := db.pool.QueryRow(ctx,
		`INSERT INTO brand_styles (project_id, user_id, brand_name, colors, font)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		projectID, userID, brandName, bs.Colors, font,
	).Scan(&bs.ID, &bs.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create brand style: %w", err)
	}
	return &bs, nil
}

// ListBrandStyles returns a project's brand styles, newest first
func (db *DB) ListBrandStyles(ctx context.Context, projectID, userID uuid.UUID) ([]BrandStyle, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, project_id, user_id, brand_name, colors, font, created_at
		 FROM brand_styles WHERE project_id = $1 AND user_id = $2
		 ORDER BY created_at DESC`,
		projectID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list brand styles: %w", err)
	}
	defer rows.Close()

	styles := []BrandStyle{}
	for rows.Next() {
		var bs BrandStyle
		if err := rows.Scan(&bs.ID, &bs.ProjectID, &bs.UserID, &bs.BrandName, &bs.Colors, &bs.Font, &bs.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan brand style: %w", err)
		}
		styles = append(styles, bs)
	}
	return styles, rows.Err()
}

// DeleteBrandStyle deletes one brand style
func (db *DB) DeleteBrandStyle(ctx context.Context, styleID, userID uuid.UUID) (bool, error) {
	return db.deleteOwned(ctx, "brand_styles", styleID, userID)
}
