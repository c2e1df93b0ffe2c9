package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/advision/internal/types"
)

const projectColumns = `id, user_id, name, product_service, target_platform, primary_goal,
	product_description, product_features, created_at`

func scanProject(row interface{ Scan(...any) error }) (*Project, error) {
	var p Project
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.ProductService, &p.TargetPlatform, &p.PrimaryGoal,
		&p.ProductDescription, &p.ProductFeatures, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProject stores a new campaign brief for userID
func (db *DB) CreateProject(ctx context.Context, userID uuid.UUID, name string, brief types.ProjectBrief) (*Project, error) {
	p, err := scanProject(db.pool.QueryRow(ctx,
		`INSERT INTO projects (user_id, name, product_service, target_platform, primary_goal,
		                       product_description, product_features)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+projectColumns,
		userID, name, brief.ProductService, brief.TargetPlatform, brief.PrimaryGoal,
		brief.ProductDescription, brief.ProductFeatures,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return p, nil
}

// GetProject retrieves a project when it belongs to userID
func (db *DB) GetProject(ctx context.Context, projectID, userID uuid.UUID) (*Project, error) {
	p, err := scanProject(db.pool.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1 AND user_id = $2`,
		projectID, userID,
	))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

// ListProjects returns userID's projects, newest first
func (db *DB) ListProjects(ctx context.Context, userID uuid.UUID) ([]Project, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := []Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// DeleteProject deletes a project and its assets (via cascade). It reports
// false when no project with that ID belongs to userID.
func (db *DB) DeleteProject(ctx context.Context, projectID, userID uuid.UUID) (bool, error) {
	return db.deleteOwned(ctx, "projects", projectID, userID)
}
