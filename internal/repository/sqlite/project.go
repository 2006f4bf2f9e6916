package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sebcun/ysws-tracker/internal/apperror"
	"github.com/sebcun/ysws-tracker/internal/model"
	"github.com/sebcun/ysws-tracker/internal/repository"
)

// ProjectStore persists project rows in the identity store.
type ProjectStore struct {
	conn *sql.DB
}

var _ repository.ProjectRepository = (*ProjectStore)(nil)

const projectColumns = `id, user_id, title, description, demo_link, repo_link,
	tracked_projects, hours, hours_paid, status, created_at, updated_at`

func scanProject(row interface{ Scan(...any) error }) (*model.Project, error) {
	var p model.Project
	err := row.Scan(
		&p.ID, &p.UserID, &p.Title, &p.Description, &p.DemoLink, &p.RepoLink,
		&p.TrackedProjects, &p.Hours, &p.HoursPaid, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (db *ProjectStore) Create(ctx context.Context, project *model.Project) error {
	project.ID = xid.New().String()
	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now
	if project.Status == "" {
		project.Status = model.StatusBuilding
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO projects (id, user_id, title, description, demo_link, repo_link,
		     tracked_projects, hours, hours_paid, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		project.ID, project.UserID, project.Title, project.Description,
		project.DemoLink, project.RepoLink, project.TrackedProjects,
		project.Hours, project.HoursPaid, project.Status,
		project.CreatedAt, project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating project: %w", err)
	}

	return nil
}

func (db *ProjectStore) GetByID(ctx context.Context, id string) (*model.Project, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)

	p, err := scanProject(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("project", id)
		}
		return nil, fmt.Errorf("sqlite: getting project %s: %w", id, err)
	}
	return p, nil
}

func (db *ProjectStore) ListByUser(ctx context.Context, userID string) ([]model.Project, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects
		 WHERE user_id = ?
		 ORDER BY created_at ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing projects: %w", err)
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning project row: %w", err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating projects: %w", err)
	}

	return projects, nil
}

// ListPublic returns the owner-stripped view: the join pulls only the
// owner's Slack ID, never the email or nickname.
func (db *ProjectStore) ListPublic(ctx context.Context, filter repository.PublicFilter) ([]model.PublicProject, error) {
	query := `SELECT p.id, p.title, p.description, p.demo_link, p.repo_link,
	       u.slack_id, p.hours, p.status, p.created_at
	  FROM projects p
	  JOIN users u ON u.id = p.user_id`
	var (
		conds []string
		args  []any
	)
	if filter.Status != "" {
		conds = append(conds, "p.status = ?")
		args = append(args, filter.Status)
	}
	if filter.SlackID != "" {
		conds = append(conds, "u.slack_id = ?")
		args = append(args, filter.SlackID)
	}
	for i, c := range conds {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY p.created_at DESC"

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing public projects: %w", err)
	}
	defer rows.Close()

	var projects []model.PublicProject
	for rows.Next() {
		var p model.PublicProject
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Description, &p.DemoLink, &p.RepoLink,
			&p.SlackID, &p.Hours, &p.Status, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning public project row: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating public projects: %w", err)
	}

	return projects, nil
}

func (db *ProjectStore) Update(ctx context.Context, project *model.Project) error {
	project.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE projects
		 SET title = ?, description = ?, demo_link = ?, repo_link = ?,
		     tracked_projects = ?, hours = ?, hours_paid = ?, status = ?, updated_at = ?
		 WHERE id = ?`,
		project.Title, project.Description, project.DemoLink, project.RepoLink,
		project.TrackedProjects, project.Hours, project.HoursPaid, project.Status,
		project.UpdatedAt, project.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating project %s: %w", project.ID, err)
	}

	return checkFound(result, "project", project.ID)
}

func (db *ProjectStore) UpdateHours(ctx context.Context, id string, hours float64) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE projects SET hours = ?, updated_at = ? WHERE id = ?`,
		hours, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating project hours %s: %w", id, err)
	}
	return checkFound(result, "project", id)
}

func (db *ProjectStore) UpdateStatus(ctx context.Context, id string, status model.Status) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE projects SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating project status %s: %w", id, err)
	}
	return checkFound(result, "project", id)
}

func (db *ProjectStore) Delete(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting project %s: %w", id, err)
	}
	return checkFound(result, "project", id)
}

func (db *ProjectStore) TrackerNamesInUse(ctx context.Context, userID, excludeProjectID string) (map[string]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, tracked_projects FROM projects WHERE user_id = ? AND id != ?`,
		userID, excludeProjectID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing tracker names: %w", err)
	}
	defer rows.Close()

	inUse := make(map[string]string)
	for rows.Next() {
		var projectID, tracked string
		if err := rows.Scan(&projectID, &tracked); err != nil {
			return nil, fmt.Errorf("sqlite: scanning tracker row: %w", err)
		}
		for _, name := range model.SplitTrackerNames(tracked) {
			inUse[name] = projectID
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating tracker rows: %w", err)
	}

	return inUse, nil
}

// checkFound translates "no rows affected" into a NotFound error.
func checkFound(result sql.Result, resource, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound(resource, id)
	}
	return nil
}
