package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateProject inserts a project and its contiguous 0..N-1 segment rows in
// one transaction. Segment rows start in pending with empty prompts.
func (s *Store) CreateProject(ctx context.Context, project *Project) (*Project, error) {
	if project == nil {
		return nil, errors.New("project is nil")
	}
	if project.SegmentCount <= 0 {
		return nil, errors.New("project segment count must be positive")
	}

	now := time.Now().UTC()
	ts := timestamp(now)
	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	if project.Status == "" {
		project.Status = ProjectCreated
	}

	ctx = ensureContext(ctx)
	err := retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO projects (
                id, name, story_prompt, target_seconds, segment_seconds, segment_count,
                voice_id, seed_frame, final_video, published_url, status, error_message,
                created_at, updated_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			project.ID,
			project.Name,
			nullableString(project.StoryPrompt),
			project.TargetSeconds,
			project.SegmentSeconds,
			project.SegmentCount,
			nullableString(project.VoiceID),
			nullableString(project.SeedFrame),
			nil,
			nil,
			project.Status,
			nil,
			ts,
			ts,
		); err != nil {
			return fmt.Errorf("insert project: %w", err)
		}

		for i := 0; i < project.SegmentCount; i++ {
			if _, err := tx.ExecContext(
				ctx,
				`INSERT INTO segments (
                    id, project_id, idx, status, prompt_approved, duration_sec,
                    created_at, updated_at
                ) VALUES (?, ?, ?, ?, 0, ?, ?, ?)`,
				uuid.NewString(),
				project.ID,
				i,
				SegmentPending,
				project.SegmentSeconds,
				ts,
				ts,
			); err != nil {
				return fmt.Errorf("insert segment %d: %w", i, err)
			}
		}

		return tx.Commit()
	})
	if err != nil {
		return nil, err
	}

	return s.GetProject(ctx, project.ID)
}

// GetProject fetches a project by identifier.
func (s *Store) GetProject(ctx context.Context, id string) (*Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	project, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return project, nil
}

// FindProjectByName returns the newest project matching a name.
func (s *Store) FindProjectByName(ctx context.Context, name string) (*Project, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+projectColumns+` FROM projects WHERE name = ? ORDER BY created_at DESC LIMIT 1`,
		name,
	)
	project, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find project by name: %w", err)
	}
	return project, nil
}

// ListProjects returns projects filtered by status set (or all projects when
// no status is provided), ordered by creation time.
func (s *Store) ListProjects(ctx context.Context, statuses ...ProjectStatus) ([]*Project, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + projectColumns + ` FROM projects`
	orderClause := ` ORDER BY created_at`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		rows, err = s.db.QueryContext(ctx, baseQuery+` WHERE status IN (`+placeholders+`)`+orderClause, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

// UpdateProject persists changes to an existing project.
func (s *Store) UpdateProject(ctx context.Context, project *Project) error {
	if project == nil {
		return errors.New("project is nil")
	}
	project.UpdatedAt = time.Now().UTC()
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE projects
         SET name = ?, story_prompt = ?, target_seconds = ?, segment_seconds = ?,
             segment_count = ?, voice_id = ?, seed_frame = ?, final_video = ?,
             published_url = ?, status = ?, error_message = ?, updated_at = ?
         WHERE id = ?`,
		project.Name,
		nullableString(project.StoryPrompt),
		project.TargetSeconds,
		project.SegmentSeconds,
		project.SegmentCount,
		nullableString(project.VoiceID),
		nullableString(project.SeedFrame),
		nullableString(project.FinalVideo),
		nullableString(project.PublishedURL),
		project.Status,
		nullableString(project.ErrorMessage),
		timestamp(project.UpdatedAt),
		project.ID,
	); err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return nil
}

// RemoveProject deletes a project and, via cascade, its segments.
func (s *Store) RemoveProject(ctx context.Context, id string) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete project: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
