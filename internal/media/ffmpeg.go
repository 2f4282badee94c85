package media

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"storyreel/internal/services"
)

// Tools executes ffmpeg/ffprobe with configured binary paths.
type Tools struct {
	ffmpeg  string
	ffprobe string
}

// NewTools constructs media tooling. Empty binary paths fall back to PATH lookup.
func NewTools(ffmpegBin, ffprobeBin string) *Tools {
	if strings.TrimSpace(ffmpegBin) == "" {
		ffmpegBin = "ffmpeg"
	}
	if strings.TrimSpace(ffprobeBin) == "" {
		ffprobeBin = "ffprobe"
	}
	return &Tools{ffmpeg: ffmpegBin, ffprobe: ffprobeBin}
}

func (t *Tools) run(ctx context.Context, operation string, args ...string) error {
	cmd := exec.CommandContext(ctx, t.ffmpeg, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		detail := strings.TrimSpace(string(output))
		if len(detail) > 512 {
			detail = detail[len(detail)-512:]
		}
		return services.Wrap(services.ErrExternalTool, "ffmpeg", operation, detail, err)
	}
	return nil
}

// ProbeDuration returns the duration of a media file in seconds.
func (t *Tools) ProbeDuration(ctx context.Context, path string) (float64, error) {
	result, err := Inspect(ctx, t.ffprobe, path)
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "ffprobe", "probe duration", path, err)
	}
	duration := result.DurationSeconds()
	if duration <= 0 {
		return 0, services.Wrap(services.ErrExternalTool, "ffprobe", "probe duration", fmt.Sprintf("no duration reported for %s", path), nil)
	}
	return duration, nil
}

// ExtractLastFrame writes the final frame of a video as a still image.
// The seek lands 0.1s before the end to stay inside the stream.
func (t *Tools) ExtractLastFrame(ctx context.Context, videoPath, outPath string) error {
	duration, err := t.ProbeDuration(ctx, videoPath)
	if err != nil {
		return err
	}
	position := math.Max(0, duration-0.1)
	return t.run(ctx, "extract last frame",
		"-y",
		"-ss", fmt.Sprintf("%.3f", position),
		"-i", videoPath,
		"-frames:v", "1",
		"-q:v", "2",
		outPath,
	)
}

// ConcatVideos joins video files in the given order using the concat demuxer.
// Ordering is preserved bit-exactly; inputs are never reordered.
func (t *Tools) ConcatVideos(ctx context.Context, inputs []string, outPath string) error {
	return t.concat(ctx, "concat videos", inputs, outPath)
}

// ConcatAudios joins audio files in the given order.
func (t *Tools) ConcatAudios(ctx context.Context, inputs []string, outPath string) error {
	return t.concat(ctx, "concat audios", inputs, outPath)
}

func (t *Tools) concat(ctx context.Context, operation string, inputs []string, outPath string) error {
	if len(inputs) == 0 {
		return services.Wrap(services.ErrValidation, "ffmpeg", operation, "no inputs", nil)
	}
	listPath, cleanup, err := writeConcatList(inputs)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "ffmpeg", operation, "write concat list", err)
	}
	defer cleanup()

	return t.run(ctx, operation,
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		outPath,
	)
}

// Mux combines a video stream and an audio stream into one container. Video
// is stream-copied; audio is re-encoded to AAC for container compatibility.
func (t *Tools) Mux(ctx context.Context, videoPath, audioPath, outPath string) error {
	return t.run(ctx, "mux",
		"-y",
		"-i", videoPath,
		"-i", audioPath,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", "copy",
		"-c:a", "aac",
		"-shortest",
		outPath,
	)
}

// ConformAudioDuration trims or silence-pads audio to the target duration so
// narration lines up with its segment. Inputs already within 0.1s are copied.
func (t *Tools) ConformAudioDuration(ctx context.Context, audioPath string, targetSeconds float64, outPath string) error {
	current, err := t.ProbeDuration(ctx, audioPath)
	if err != nil {
		return err
	}

	switch {
	case math.Abs(current-targetSeconds) < 0.1:
		return t.run(ctx, "conform audio", "-y", "-i", audioPath, "-c", "copy", outPath)
	case current > targetSeconds:
		return t.run(ctx, "conform audio",
			"-y",
			"-i", audioPath,
			"-t", fmt.Sprintf("%.3f", targetSeconds),
			outPath,
		)
	default:
		pad := targetSeconds - current
		return t.run(ctx, "conform audio",
			"-y",
			"-i", audioPath,
			"-af", fmt.Sprintf("apad=pad_dur=%.3f", pad),
			"-t", fmt.Sprintf("%.3f", targetSeconds),
			outPath,
		)
	}
}

// writeConcatList produces a temp file in the concat demuxer's list format.
func writeConcatList(inputs []string) (string, func(), error) {
	file, err := os.CreateTemp("", "storyreel-concat-*.txt")
	if err != nil {
		return "", nil, err
	}
	var b strings.Builder
	for _, input := range inputs {
		abs, err := filepath.Abs(input)
		if err != nil {
			abs = input
		}
		escaped := strings.ReplaceAll(abs, "'", `'\''`)
		fmt.Fprintf(&b, "file '%s'\n", escaped)
	}
	if _, err := file.WriteString(b.String()); err != nil {
		file.Close()
		os.Remove(file.Name())
		return "", nil, err
	}
	if err := file.Close(); err != nil {
		os.Remove(file.Name())
		return "", nil, err
	}
	cleanup := func() { os.Remove(file.Name()) }
	return file.Name(), cleanup, nil
}
