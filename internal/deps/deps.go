// Package deps reports availability of the external binaries storyreel
// shells out to.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"storyreel/internal/config"
)

// Requirement defines an external binary storyreel relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a requirement.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements lists the binaries the daemon needs for the given config.
func Requirements(cfg *config.Config) []Requirement {
	ffmpeg := "ffmpeg"
	ffprobe := "ffprobe"
	if cfg != nil {
		if v := strings.TrimSpace(cfg.Paths.FFmpegBin); v != "" {
			ffmpeg = v
		}
		if v := strings.TrimSpace(cfg.Paths.FFprobeBin); v != "" {
			ffprobe = v
		}
	}
	return []Requirement{
		{Name: "FFmpeg", Command: ffmpeg, Description: "Required for frame extraction and final assembly"},
		{Name: "FFprobe", Command: ffprobe, Description: "Required for media inspection"},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if resolved, err := exec.LookPath(cmd); err == nil {
			status.Command = resolved
			status.Available = true
		} else {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
		}
		results = append(results, status)
	}
	return results
}
