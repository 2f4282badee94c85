package store

import (
	"database/sql"
	"errors"
	"time"
)

const projectColumns = "id, name, story_prompt, target_seconds, segment_seconds, segment_count, voice_id, seed_frame, final_video, published_url, status, error_message, created_at, updated_at"

const segmentColumns = "id, project_id, idx, video_prompt, narration_text, end_frame_prompt, status, prompt_approved, first_frame, first_frame_from, last_frame, video_file, audio_file, video_job_id, audio_job_id, duration_sec, error_message, created_at, updated_at"

func scanProject(scanner interface{ Scan(dest ...any) error }) (*Project, error) {
	var (
		id             string
		name           string
		storyPrompt    sql.NullString
		targetSeconds  int
		segmentSeconds int
		segmentCount   int
		voiceID        sql.NullString
		seedFrame      sql.NullString
		finalVideo     sql.NullString
		publishedURL   sql.NullString
		statusStr      string
		errorMessage   sql.NullString
		createdRaw     string
		updatedRaw     string
	)

	if err := scanner.Scan(
		&id,
		&name,
		&storyPrompt,
		&targetSeconds,
		&segmentSeconds,
		&segmentCount,
		&voiceID,
		&seedFrame,
		&finalVideo,
		&publishedURL,
		&statusStr,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	project := &Project{
		ID:             id,
		Name:           name,
		StoryPrompt:    storyPrompt.String,
		TargetSeconds:  targetSeconds,
		SegmentSeconds: segmentSeconds,
		SegmentCount:   segmentCount,
		VoiceID:        voiceID.String,
		SeedFrame:      seedFrame.String,
		FinalVideo:     finalVideo.String,
		PublishedURL:   publishedURL.String,
		Status:         ProjectStatus(statusStr),
		ErrorMessage:   errorMessage.String,
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		project.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		project.UpdatedAt = updated
	}
	return project, nil
}

func scanSegment(scanner interface{ Scan(dest ...any) error }) (*Segment, error) {
	var (
		id             string
		projectID      string
		idx            int
		videoPrompt    sql.NullString
		narrationText  sql.NullString
		endFramePrompt sql.NullString
		statusStr      string
		promptApproved sql.NullInt64
		firstFrame     sql.NullString
		firstFrameFrom sql.NullString
		lastFrame      sql.NullString
		videoFile      sql.NullString
		audioFile      sql.NullString
		videoJobID     sql.NullString
		audioJobID     sql.NullString
		durationSec    int
		errorMessage   sql.NullString
		createdRaw     string
		updatedRaw     string
	)

	if err := scanner.Scan(
		&id,
		&projectID,
		&idx,
		&videoPrompt,
		&narrationText,
		&endFramePrompt,
		&statusStr,
		&promptApproved,
		&firstFrame,
		&firstFrameFrom,
		&lastFrame,
		&videoFile,
		&audioFile,
		&videoJobID,
		&audioJobID,
		&durationSec,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	segment := &Segment{
		ID:             id,
		ProjectID:      projectID,
		Index:          idx,
		VideoPrompt:    videoPrompt.String,
		NarrationText:  narrationText.String,
		EndFramePrompt: endFramePrompt.String,
		Status:         SegmentStatus(statusStr),
		FirstFrame:     firstFrame.String,
		FirstFrameFrom: FrameSource(firstFrameFrom.String),
		LastFrame:      lastFrame.String,
		VideoFile:      videoFile.String,
		AudioFile:      audioFile.String,
		VideoJobID:     videoJobID.String,
		AudioJobID:     audioJobID.String,
		DurationSec:    durationSec,
		ErrorMessage:   errorMessage.String,
	}
	if promptApproved.Valid {
		segment.PromptApproved = promptApproved.Int64 != 0
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		segment.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		segment.UpdatedAt = updated
	}
	return segment, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
