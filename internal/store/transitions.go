package store

import (
	"context"
	"fmt"
	"time"
)

// ClaimGeneration atomically moves a segment from the expected status into
// generating. It returns false when another actor already claimed the
// segment, which is how concurrent triggers (a user double-click racing a
// scheduled retry) are prevented from double-submitting provider jobs.
func (s *Store) ClaimGeneration(ctx context.Context, segmentID string, from SegmentStatus) (bool, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE segments
         SET status = ?, error_message = NULL, updated_at = ?
         WHERE id = ? AND status = ?`,
		SegmentGenerating,
		timestamp(time.Now().UTC()),
		segmentID,
		from,
	)
	if err != nil {
		return false, fmt.Errorf("claim generation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// ClaimGenerationChained claims a chain-fed segment, additionally asserting
// that the predecessor still carries the last frame the caller resolved. A
// regeneration of the predecessor landing between resolution and the claim
// clears or replaces that frame, so the claim fails and the caller re-resolves
// on its next pass instead of submitting with a discarded frame.
func (s *Store) ClaimGenerationChained(ctx context.Context, segmentID string, from SegmentStatus, prevID, prevLastFrame string) (bool, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE segments
         SET status = ?, error_message = NULL, updated_at = ?
         WHERE id = ? AND status = ?
           AND EXISTS (
               SELECT 1 FROM segments prev
               WHERE prev.id = ? AND prev.last_frame = ? AND prev.status IN (?, ?)
           )`,
		SegmentGenerating,
		timestamp(time.Now().UTC()),
		segmentID,
		from,
		prevID,
		prevLastFrame,
		SegmentGenerated,
		SegmentApprovedFinal,
	)
	if err != nil {
		return false, fmt.Errorf("claim generation chained: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// ReleaseGeneration returns a claimed segment to its pre-claim status without
// recording a failure. Used when the first frame turns out not to be
// resolvable after the claim, which is a precondition miss rather than an
// error.
func (s *Store) ReleaseGeneration(ctx context.Context, segmentID string, to SegmentStatus) error {
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE segments SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		to,
		timestamp(time.Now().UTC()),
		segmentID,
		SegmentGenerating,
	); err != nil {
		return fmt.Errorf("release generation: %w", err)
	}
	return nil
}

// ResetFailedSegment moves a failed segment back to prompt_ready for a fresh
// operator-driven pass. Prompt approval and any stale job ids are cleared;
// the error message is retained for inspection until the next claim.
func (s *Store) ResetFailedSegment(ctx context.Context, segmentID string) (bool, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE segments
         SET status = ?, prompt_approved = 0, video_job_id = NULL, audio_job_id = NULL, updated_at = ?
         WHERE id = ? AND status = ?`,
		SegmentPromptReady,
		timestamp(time.Now().UTC()),
		segmentID,
		SegmentFailed,
	)
	if err != nil {
		return false, fmt.Errorf("reset failed segment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// CountSegmentsByStatus returns per-status segment counts for a project.
func (s *Store) CountSegmentsByStatus(ctx context.Context, projectID string) (map[SegmentStatus]int, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT status, COUNT(1) FROM segments WHERE project_id = ? GROUP BY status`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("count segments: %w", err)
	}
	defer rows.Close()

	counts := make(map[SegmentStatus]int)
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[SegmentStatus(status)] = count
	}
	return counts, rows.Err()
}
