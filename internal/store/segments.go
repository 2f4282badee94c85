package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GetSegment fetches a segment by identifier.
func (s *Store) GetSegment(ctx context.Context, id string) (*Segment, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+segmentColumns+` FROM segments WHERE id = ?`, id)
	segment, err := scanSegment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get segment: %w", err)
	}
	return segment, nil
}

// SegmentByIndex fetches a project's segment at the given index.
func (s *Store) SegmentByIndex(ctx context.Context, projectID string, index int) (*Segment, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+segmentColumns+` FROM segments WHERE project_id = ? AND idx = ?`,
		projectID, index,
	)
	segment, err := scanSegment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("segment by index: %w", err)
	}
	return segment, nil
}

// SegmentsByProject returns all segments for a project ordered by index.
func (s *Store) SegmentsByProject(ctx context.Context, projectID string) ([]*Segment, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+segmentColumns+` FROM segments WHERE project_id = ? ORDER BY idx`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("query segments: %w", err)
	}
	defer rows.Close()

	var segments []*Segment
	for rows.Next() {
		segment, err := scanSegment(rows)
		if err != nil {
			return nil, err
		}
		segments = append(segments, segment)
	}
	return segments, rows.Err()
}

// UpdateSegment persists changes to an existing segment. The index and
// project binding are immutable and deliberately absent from the SET list.
func (s *Store) UpdateSegment(ctx context.Context, segment *Segment) error {
	if segment == nil {
		return errors.New("segment is nil")
	}
	segment.UpdatedAt = time.Now().UTC()
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE segments
         SET video_prompt = ?, narration_text = ?, end_frame_prompt = ?, status = ?,
             prompt_approved = ?, first_frame = ?, first_frame_from = ?, last_frame = ?,
             video_file = ?, audio_file = ?, video_job_id = ?, audio_job_id = ?,
             duration_sec = ?, error_message = ?, updated_at = ?
         WHERE id = ?`,
		nullableString(segment.VideoPrompt),
		nullableString(segment.NarrationText),
		nullableString(segment.EndFramePrompt),
		segment.Status,
		boolToInt(segment.PromptApproved),
		nullableString(segment.FirstFrame),
		nullableString(string(segment.FirstFrameFrom)),
		nullableString(segment.LastFrame),
		nullableString(segment.VideoFile),
		nullableString(segment.AudioFile),
		nullableString(segment.VideoJobID),
		nullableString(segment.AudioJobID),
		segment.DurationSec,
		nullableString(segment.ErrorMessage),
		timestamp(segment.UpdatedAt),
		segment.ID,
	); err != nil {
		return fmt.Errorf("update segment: %w", err)
	}
	return nil
}

// SegmentsByStatus returns a project's segments matching a status, ordered by index.
func (s *Store) SegmentsByStatus(ctx context.Context, projectID string, statuses ...SegmentStatus) ([]*Segment, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	placeholders := makePlaceholders(len(statuses))
	args := make([]any, 0, len(statuses)+1)
	args = append(args, projectID)
	for _, status := range statuses {
		args = append(args, status)
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+segmentColumns+` FROM segments WHERE project_id = ? AND status IN (`+placeholders+`) ORDER BY idx`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("query segments by status: %w", err)
	}
	defer rows.Close()

	var segments []*Segment
	for rows.Next() {
		segment, err := scanSegment(rows)
		if err != nil {
			return nil, err
		}
		segments = append(segments, segment)
	}
	return segments, rows.Err()
}
